package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/canpai/canpai/pkg/errors"
)

// TestValidateGenerateRequest 生成请求验证测试
func TestValidateGenerateRequest(t *testing.T) {
	validID := uuid.New().String()

	tests := []struct {
		name         string
		req          GenerateRequest
		expectedCode errors.Code
	}{
		{"缺少必填字段", GenerateRequest{}, errors.CodeValidationFail},
		{"餐厅ID格式错误", GenerateRequest{RestaurantID: "not-a-uuid", WeekStart: "2025-03-03"}, errors.CodeInvalidInput},
		{"日期格式错误", GenerateRequest{RestaurantID: validID, WeekStart: "03/03/2025"}, errors.CodeInvalidInput},
		{"非周一起始", GenerateRequest{RestaurantID: validID, WeekStart: "2025-03-04"}, errors.CodeInvalidWeekStart},
		{"合法请求", GenerateRequest{RestaurantID: validID, WeekStart: "2025-03-03"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, appErr := validateGenerateRequest(&tt.req)

			if tt.expectedCode == "" {
				if appErr != nil {
					t.Fatalf("合法请求被拒绝: %v", appErr)
				}
				if id.String() != tt.req.RestaurantID {
					t.Errorf("解析的餐厅ID = %s, 期望 %s", id, tt.req.RestaurantID)
				}
				return
			}

			if appErr == nil {
				t.Fatal("应返回验证错误")
			}
			if appErr.Code != tt.expectedCode {
				t.Errorf("错误码 = %s, 期望 %s", appErr.Code, tt.expectedCode)
			}
		})
	}
}

// TestValidateCheckRequest 冲突检测请求验证测试
func TestValidateCheckRequest(t *testing.T) {
	validID := uuid.New().String()
	badExclude := "not-a-uuid"
	goodExclude := uuid.New().String()

	tests := []struct {
		name         string
		req          CheckRequest
		expectedCode errors.Code
	}{
		{"缺少必填字段", CheckRequest{}, errors.CodeValidationFail},
		{
			"员工ID格式错误",
			CheckRequest{EmployeeID: "bad", Date: "2025-03-03", StartTime: "09:00", EndTime: "17:00"},
			errors.CodeInvalidInput,
		},
		{
			"时间格式错误",
			CheckRequest{EmployeeID: validID, Date: "2025-03-03", StartTime: "9am", EndTime: "17:00"},
			errors.CodeInvalidTimeRange,
		},
		{
			"起止时间相同",
			CheckRequest{EmployeeID: validID, Date: "2025-03-03", StartTime: "09:00", EndTime: "09:00"},
			errors.CodeInvalidTimeRange,
		},
		{
			"排除班次ID格式错误",
			CheckRequest{EmployeeID: validID, Date: "2025-03-03", StartTime: "09:00", EndTime: "17:00", ExcludeShiftID: &badExclude},
			errors.CodeInvalidInput,
		},
		{
			"合法请求",
			CheckRequest{EmployeeID: validID, Date: "2025-03-03", StartTime: "09:00", EndTime: "17:00", ExcludeShiftID: &goodExclude},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, excludeID, appErr := validateCheckRequest(&tt.req)

			if tt.expectedCode == "" {
				if appErr != nil {
					t.Fatalf("合法请求被拒绝: %v", appErr)
				}
				if excludeID == nil || excludeID.String() != goodExclude {
					t.Error("排除班次ID应被解析")
				}
				return
			}

			if appErr == nil {
				t.Fatal("应返回验证错误")
			}
			if appErr.Code != tt.expectedCode {
				t.Errorf("错误码 = %s, 期望 %s", appErr.Code, tt.expectedCode)
			}
		})
	}
}

// TestConflictCheckRejectsWrongMethod 方法不匹配直接拒绝，不触达存储层
func TestConflictCheckRejectsWrongMethod(t *testing.T) {
	h := NewConflictHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/conflicts", nil)
	rec := httptest.NewRecorder()
	h.Check(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, 期望 %d", rec.Code, http.StatusBadRequest)
	}
}

// TestConflictCheckRejectsBadBody 请求体不合法返回400
func TestConflictCheckRejectsBadBody(t *testing.T) {
	h := NewConflictHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts/conflicts", strings.NewReader("{不是JSON"))
	rec := httptest.NewRecorder()
	h.Check(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, 期望 %d", rec.Code, http.StatusBadRequest)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, 期望 application/json", ct)
	}
}

// TestConflictReviewRejectsMissingRange 审阅请求缺少日期范围时返回400
func TestConflictReviewRejectsMissingRange(t *testing.T) {
	h := NewConflictHandler(nil)

	body := `{"restaurant_id":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts/review", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Review(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码 = %d, 期望 %d", rec.Code, http.StatusBadRequest)
	}
}
