// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/canpai/canpai/internal/metrics"
	"github.com/canpai/canpai/internal/repository"
	"github.com/canpai/canpai/pkg/errors"
	"github.com/canpai/canpai/pkg/model"
	"github.com/canpai/canpai/pkg/validator"
)

// ConflictHandler 班次冲突检测处理器
type ConflictHandler struct {
	shifts *repository.ShiftRepository
}

// NewConflictHandler 创建冲突检测处理器
func NewConflictHandler(shifts *repository.ShiftRepository) *ConflictHandler {
	return &ConflictHandler{shifts: shifts}
}

// CheckRequest 冲突检测请求
type CheckRequest struct {
	EmployeeID     string  `json:"employee_id"`
	Date           string  `json:"date"` // YYYY-MM-DD
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	ExcludeShiftID *string `json:"exclude_shift_id,omitempty"` // 编辑场景排除自身
}

// CheckResponse 冲突检测响应
type CheckResponse struct {
	HasConflicts bool                 `json:"has_conflicts"`
	Severity     string               `json:"severity"`
	Conflicts    []validator.Conflict `json:"conflicts"`
}

// Check 检测候选班次与既有班次的冲突
func (h *ConflictHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	employeeID, excludeID, appErr := validateCheckRequest(&req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	shifts, err := h.shifts.ListByEmployee(r.Context(), employeeID, req.Date, req.Date)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询既有班次失败"))
		return
	}

	conflicts := validator.DetectConflicts(employeeID, req.Date, req.StartTime, req.EndTime, shifts, excludeID)
	severity := validator.ClassifySeverity(conflicts)
	metrics.RecordConflictCheck(severity)

	if conflicts == nil {
		conflicts = []validator.Conflict{}
	}

	respondJSON(w, http.StatusOK, CheckResponse{
		HasConflicts: len(conflicts) > 0,
		Severity:     severity,
		Conflicts:    conflicts,
	})
}

// ReviewRequest 周排班审阅请求
type ReviewRequest struct {
	RestaurantID string `json:"restaurant_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// ReviewResponse 周排班审阅响应
type ReviewResponse struct {
	TotalShifts int                            `json:"total_shifts"`
	Conflicted  int                            `json:"conflicted"`
	Conflicts   map[string][]validator.Conflict `json:"conflicts"` // 班次ID -> 冲突列表
}

// Review 对日期范围内的全部班次做两两冲突检测
func (h *ConflictHandler) Review(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		respondError(w, errors.InvalidInput("restaurant_id", "无效的餐厅ID格式"))
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		respondError(w, errors.New(errors.CodeInvalidInput, "日期范围不能为空"))
		return
	}

	shifts, listErr := h.shifts.ListByDateRange(r.Context(), restaurantID, req.StartDate, req.EndDate)
	if listErr != nil {
		respondError(w, errors.Wrap(listErr, errors.CodeDatabaseError, "查询班次失败"))
		return
	}

	all := validator.DetectAll(shifts)
	conflicts := make(map[string][]validator.Conflict, len(all))
	for id, cs := range all {
		conflicts[id.String()] = cs
	}

	respondJSON(w, http.StatusOK, ReviewResponse{
		TotalShifts: len(shifts),
		Conflicted:  len(conflicts),
		Conflicts:   conflicts,
	})
}

// validateCheckRequest 验证冲突检测请求
func validateCheckRequest(req *CheckRequest) (uuid.UUID, *uuid.UUID, *errors.AppError) {
	ve := &errors.ValidationErrors{}

	if req.EmployeeID == "" {
		ve.Add("employee_id", "员工ID不能为空")
	}
	if req.Date == "" {
		ve.Add("date", "日期不能为空")
	}
	if req.StartTime == "" {
		ve.Add("start_time", "开始时间不能为空")
	}
	if req.EndTime == "" {
		ve.Add("end_time", "结束时间不能为空")
	}
	if ve.HasErrors() {
		return uuid.Nil, nil, ve.ToAppError()
	}

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return uuid.Nil, nil, errors.InvalidInput("employee_id", "无效的员工ID格式")
	}

	if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		return uuid.Nil, nil, errors.InvalidInput("date", "日期格式无效，应为YYYY-MM-DD")
	}
	if _, err := time.Parse(model.ClockLayout, req.StartTime); err != nil {
		return uuid.Nil, nil, errors.New(errors.CodeInvalidTimeRange, "开始时间格式无效，应为HH:MM")
	}
	if _, err := time.Parse(model.ClockLayout, req.EndTime); err != nil {
		return uuid.Nil, nil, errors.New(errors.CodeInvalidTimeRange, "结束时间格式无效，应为HH:MM")
	}
	if req.StartTime == req.EndTime {
		return uuid.Nil, nil, errors.New(errors.CodeInvalidTimeRange, "开始时间与结束时间不能相同")
	}

	var excludeID *uuid.UUID
	if req.ExcludeShiftID != nil && *req.ExcludeShiftID != "" {
		id, err := uuid.Parse(*req.ExcludeShiftID)
		if err != nil {
			return uuid.Nil, nil, errors.InvalidInput("exclude_shift_id", "无效的班次ID格式")
		}
		excludeID = &id
	}

	return employeeID, excludeID, nil
}
