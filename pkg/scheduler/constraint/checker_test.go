package constraint

import (
	"testing"

	"github.com/google/uuid"

	"github.com/canpai/canpai/pkg/model"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newTestContext() (*Context, uuid.UUID) {
	ctx := NewContext(uuid.New(), "2025-03-03")
	empID := uuid.New()
	ctx.Employees = []*model.Employee{
		{BaseModel: model.BaseModel{ID: empID}, Name: "张三", Role: model.RoleStaff, IsActive: true},
	}
	return ctx, empID
}

// TestIsAvailableTimeOff 休假覆盖日期时不可排
func TestIsAvailableTimeOff(t *testing.T) {
	ctx, empID := newTestContext()
	ctx.TimeOff[empID] = []*model.TimeOffRequest{
		{EmployeeID: empID, StartDate: "2025-03-04", EndDate: "2025-03-06", Status: "approved"},
	}

	if IsAvailable(ctx, empID, "2025-03-05", "09:00", "17:00") {
		t.Error("休假期间应不可排")
	}
	if !IsAvailable(ctx, empID, "2025-03-07", "09:00", "17:00") {
		t.Error("休假结束后应可排")
	}
}

// TestIsAvailableBlocks 不可用时段挡住窗口时不可排
func TestIsAvailableBlocks(t *testing.T) {
	ctx, empID := newTestContext()

	tests := []struct {
		name     string
		block    *model.EmployeeAvailability
		date     string
		start    string
		end      string
		expected bool
	}{
		{
			"每周三全天不可用",
			&model.EmployeeAvailability{Recurring: true, DayOfWeek: intPtr(2), AllDay: true},
			"2025-03-05", "09:00", "17:00", false,
		},
		{
			"每周三不影响周四",
			&model.EmployeeAvailability{Recurring: true, DayOfWeek: intPtr(2), AllDay: true},
			"2025-03-06", "09:00", "17:00", true,
		},
		{
			"指定日期时段重叠",
			&model.EmployeeAvailability{SpecificDate: strPtr("2025-03-04"), StartTime: strPtr("12:00"), EndTime: strPtr("15:00")},
			"2025-03-04", "09:00", "13:00", false,
		},
		{
			"指定日期时段不重叠",
			&model.EmployeeAvailability{SpecificDate: strPtr("2025-03-04"), StartTime: strPtr("12:00"), EndTime: strPtr("15:00")},
			"2025-03-04", "15:00", "20:00", true,
		},
		{
			"非全天但缺少窗口按全天处理",
			&model.EmployeeAvailability{SpecificDate: strPtr("2025-03-04")},
			"2025-03-04", "09:00", "13:00", false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx.Availability[empID] = []*model.EmployeeAvailability{tt.block}
			got := IsAvailable(ctx, empID, tt.date, tt.start, tt.end)
			if got != tt.expected {
				t.Errorf("IsAvailable = %v, 期望 %v", got, tt.expected)
			}
		})
	}
}

// TestHasAdequateRest 休息时间检查测试
func TestHasAdequateRest(t *testing.T) {
	ctx, empID := newTestContext()

	// 前一日晚班 14:00-22:00，次日 09:00 开工休息 11 小时
	ctx.AddShift(model.NewScheduleShift(empID, "2025-03-03", "14:00", "22:00", nil))

	if !HasAdequateRest(ctx, empID, "2025-03-04", "09:00") {
		t.Error("11 小时休息应满足要求")
	}
	if HasAdequateRest(ctx, empID, "2025-03-04", "05:00") {
		t.Error("7 小时休息不应满足要求")
	}
}

// TestHasAdequateRestFallsBackToMonthShifts 周一回看上周日落库班次
func TestHasAdequateRestFallsBackToMonthShifts(t *testing.T) {
	ctx, empID := newTestContext()

	// 上周日 2025-03-02 的晚班已落库
	ctx.SetMonthShifts([]*model.Shift{
		{
			BaseModel:  model.BaseModel{ID: uuid.New()},
			EmployeeID: empID,
			Date:       "2025-03-02",
			StartTime:  "18:00",
			EndTime:    "23:30",
			Status:     model.ShiftStatusScheduled,
		},
	})

	if HasAdequateRest(ctx, empID, "2025-03-03", "06:00") {
		t.Error("距上周日班次结束仅 6.5 小时，不应满足")
	}
	if !HasAdequateRest(ctx, empID, "2025-03-03", "08:00") {
		t.Error("8.5 小时休息应满足要求")
	}
}

// TestHasAdequateRestNoPriorShift 前一日无班次时不限制
func TestHasAdequateRestNoPriorShift(t *testing.T) {
	ctx, empID := newTestContext()
	if !HasAdequateRest(ctx, empID, "2025-03-04", "06:00") {
		t.Error("前一日无班次时不应限制")
	}
}

// TestExceedsWeeklyHours 周工时上限测试
func TestExceedsWeeklyHours(t *testing.T) {
	ctx, empID := newTestContext()

	// 已排 5 天 8 小时 = 40 小时
	for _, date := range []string{"2025-03-03", "2025-03-04", "2025-03-05", "2025-03-06", "2025-03-07"} {
		ctx.AddShift(model.NewScheduleShift(empID, date, "09:00", "17:00", nil))
	}

	if !ExceedsWeeklyHours(ctx, empID, 4, false) {
		t.Error("40+4 超过标准 40 小时，不允许加班时应拒绝")
	}
	if ExceedsWeeklyHours(ctx, empID, 4, true) {
		t.Error("40+4 未超过 48 小时，允许加班时应通过")
	}
	if !ExceedsWeeklyHours(ctx, empID, 10, true) {
		t.Error("40+10 超过绝对上限 48 小时，任何情况下都应拒绝")
	}
}

// TestCanAssignOrder 硬约束按序执行测试
func TestCanAssignOrder(t *testing.T) {
	ctx, empID := newTestContext()
	ctx.TimeOff[empID] = []*model.TimeOffRequest{
		{EmployeeID: empID, StartDate: "2025-03-03", EndDate: "2025-03-09", Status: "approved"},
	}

	ok, reason := CanAssign(ctx, empID, "2025-03-04", "09:00", "17:00", Options{})
	if ok {
		t.Fatal("休假中的员工不应通过检查")
	}
	if reason == "" {
		t.Error("拒绝时应返回原因")
	}
}

// TestContextMonthHours 月度工时累计测试
func TestContextMonthHours(t *testing.T) {
	ctx, empID := newTestContext()

	ctx.SetMonthShifts([]*model.Shift{
		{
			BaseModel:  model.BaseModel{ID: uuid.New()},
			EmployeeID: empID,
			Date:       "2025-03-01",
			StartTime:  "09:00",
			EndTime:    "17:00",
			Status:     model.ShiftStatusScheduled,
		},
		{
			// 已取消的班次不计入工时
			BaseModel:  model.BaseModel{ID: uuid.New()},
			EmployeeID: empID,
			Date:       "2025-03-02",
			StartTime:  "09:00",
			EndTime:    "17:00",
			Status:     model.ShiftStatusCancelled,
		},
	})
	ctx.AddShift(model.NewScheduleShift(empID, "2025-03-03", "09:00", "13:00", nil))

	if got := ctx.MonthHours(empID); got != 12 {
		t.Errorf("月度工时 = %v, 期望 12", got)
	}
}

// TestConsecutiveRunDaysBefore 连续工作天数测试
func TestConsecutiveRunDaysBefore(t *testing.T) {
	ctx, empID := newTestContext()

	ctx.AddShift(model.NewScheduleShift(empID, "2025-03-03", "09:00", "17:00", nil))
	ctx.AddShift(model.NewScheduleShift(empID, "2025-03-04", "09:00", "17:00", nil))

	if got := ctx.ConsecutiveRunDaysBefore(empID, "2025-03-05"); got != 2 {
		t.Errorf("连续天数 = %d, 期望 2", got)
	}

	// 空档中断连续
	if got := ctx.ConsecutiveRunDaysBefore(empID, "2025-03-07"); got != 0 {
		t.Errorf("空档后的连续天数 = %d, 期望 0", got)
	}
}

// TestPreferencesForDefault 缺失偏好时返回缺省值
func TestPreferencesForDefault(t *testing.T) {
	ctx, empID := newTestContext()

	prefs := ctx.PreferencesFor(empID)
	if !prefs.Defaulted {
		t.Error("缺省偏好应带 Defaulted 标记")
	}
	if prefs.TargetMonthlyHours != 160 || prefs.MaxDaysPerWeek != 6 || !prefs.PrefersWeekends {
		t.Errorf("缺省偏好值不符: %+v", prefs)
	}

	explicit := &model.EmployeePreferences{EmployeeID: empID, TargetMonthlyHours: 120, MaxDaysPerWeek: 5}
	ctx.Preferences[empID] = explicit
	if got := ctx.PreferencesFor(empID); got != explicit {
		t.Error("有显式偏好时应返回显式记录")
	}
}
