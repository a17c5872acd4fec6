package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/canpai/canpai/pkg/model"
)

// fakeStores 内存桩，按需注入各类数据或错误
type fakeStores struct {
	employees    []*model.Employee
	prefs        map[uuid.UUID]*model.EmployeePreferences
	availability map[uuid.UUID][]*model.EmployeeAvailability
	hours        []*model.BusinessHours
	staffing     []*model.StaffingRequirement
	shifts       []*model.Shift
	timeOff      map[uuid.UUID][]*model.TimeOffRequest

	shiftsErr error

	// 记录班次查询范围
	shiftStart string
	shiftEnd   string
}

func (f *fakeStores) ListSchedulable(_ context.Context, _ uuid.UUID) ([]*model.Employee, error) {
	return f.employees, nil
}

func (f *fakeStores) MapByRestaurant(_ context.Context, _ uuid.UUID) (map[uuid.UUID]*model.EmployeePreferences, error) {
	return f.prefs, nil
}

func (f *fakeStores) ListByDateRange(_ context.Context, _ uuid.UUID, startDate, endDate string) ([]*model.Shift, error) {
	f.shiftStart, f.shiftEnd = startDate, endDate
	if f.shiftsErr != nil {
		return nil, f.shiftsErr
	}
	return f.shifts, nil
}

func (f *fakeStores) MapApprovedOverlapping(_ context.Context, _ uuid.UUID, _, _ string) (map[uuid.UUID][]*model.TimeOffRequest, error) {
	return f.timeOff, nil
}

// MapByRestaurant 与偏好接口同名，拆成独立桩
type fakeAvailability struct {
	data map[uuid.UUID][]*model.EmployeeAvailability
}

func (f *fakeAvailability) MapByRestaurant(_ context.Context, _ uuid.UUID) (map[uuid.UUID][]*model.EmployeeAvailability, error) {
	return f.data, nil
}

type fakeBusinessHours struct {
	data []*model.BusinessHours
	err  error
}

func (f *fakeBusinessHours) ListByRestaurant(_ context.Context, _ uuid.UUID) ([]*model.BusinessHours, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type fakeStaffing struct {
	data []*model.StaffingRequirement
}

func (f *fakeStaffing) ListByRestaurant(_ context.Context, _ uuid.UUID) ([]*model.StaffingRequirement, error) {
	return f.data, nil
}

func newTestLoader(f *fakeStores, bh *fakeBusinessHours) *Loader {
	return New(
		f,
		f,
		&fakeAvailability{data: f.availability},
		bh,
		&fakeStaffing{data: f.staffing},
		f,
		f,
		nil,
	)
}

// TestLoadAssemblesContext 装配完整上下文测试
func TestLoadAssemblesContext(t *testing.T) {
	empID := uuid.New()
	f := &fakeStores{
		employees: []*model.Employee{
			{BaseModel: model.BaseModel{ID: empID}, Name: "张三", Role: model.RoleStaff, IsActive: true},
		},
		prefs: map[uuid.UUID]*model.EmployeePreferences{
			empID: {EmployeeID: empID, TargetMonthlyHours: 120, MaxDaysPerWeek: 5},
		},
		staffing: []*model.StaffingRequirement{
			{DayOfWeek: 0, StartTime: "11:00", EndTime: "14:00", MinStaff: 1},
		},
		shifts: []*model.Shift{
			{
				BaseModel:  model.BaseModel{ID: uuid.New()},
				EmployeeID: empID,
				Date:       "2025-03-01",
				StartTime:  "09:00",
				EndTime:    "17:00",
				Status:     model.ShiftStatusScheduled,
			},
		},
		timeOff: map[uuid.UUID][]*model.TimeOffRequest{
			empID: {{EmployeeID: empID, StartDate: "2025-03-05", EndDate: "2025-03-05", Status: "approved"}},
		},
	}
	bh := &fakeBusinessHours{
		data: []*model.BusinessHours{
			{DayOfWeek: 0, OpenTime: "09:00", CloseTime: "21:00"},
			{DayOfWeek: 1, OpenTime: "09:00", CloseTime: "21:00"},
		},
	}

	sc, err := newTestLoader(f, bh).Load(context.Background(), uuid.New(), "2025-03-03")
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}

	if len(sc.Employees) != 1 || sc.Employees[0].ID != empID {
		t.Error("员工列表装配不正确")
	}
	if sc.PreferencesFor(empID).TargetMonthlyHours != 120 {
		t.Error("偏好装配不正确")
	}
	if sc.BusinessHours[0] == nil || sc.BusinessHours[1] == nil || sc.BusinessHours[2] != nil {
		t.Error("营业时间应按星期索引装配")
	}
	if len(sc.Requirements) != 1 {
		t.Error("人员配置需求装配不正确")
	}
	if sc.MonthHours(empID) != 8 {
		t.Errorf("月度工时索引 = %v, 期望 8", sc.MonthHours(empID))
	}
	if len(sc.TimeOff[empID]) != 1 {
		t.Error("休假申请装配不正确")
	}
	if sc.WeekEnd != "2025-03-09" {
		t.Errorf("周末日 = %s, 期望 2025-03-09", sc.WeekEnd)
	}
}

// TestLoadShiftRangeCoversPreviousDay 班次查询范围覆盖周一前一天
func TestLoadShiftRangeCoversPreviousDay(t *testing.T) {
	f := &fakeStores{}
	bh := &fakeBusinessHours{}

	// 2025-09-01 是周一且是月初，休息检查需要回看 8 月 31 日
	if _, err := newTestLoader(f, bh).Load(context.Background(), uuid.New(), "2025-09-01"); err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}

	if f.shiftStart != "2025-08-31" {
		t.Errorf("班次查询起点 = %s, 期望 2025-08-31", f.shiftStart)
	}
	if f.shiftEnd != "2025-09-30" {
		t.Errorf("班次查询终点 = %s, 期望 2025-09-30", f.shiftEnd)
	}
}

// TestLoadShiftRangeCoversWeekEnd 跨月周的班次范围延伸到周末日
func TestLoadShiftRangeCoversWeekEnd(t *testing.T) {
	f := &fakeStores{}
	bh := &fakeBusinessHours{}

	// 2025-03-31 是周一，目标周延伸到 4 月 6 日
	if _, err := newTestLoader(f, bh).Load(context.Background(), uuid.New(), "2025-03-31"); err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}

	if f.shiftStart != "2025-03-01" {
		t.Errorf("班次查询起点 = %s, 期望 2025-03-01", f.shiftStart)
	}
	if f.shiftEnd != "2025-04-06" {
		t.Errorf("班次查询终点 = %s, 期望 2025-04-06", f.shiftEnd)
	}
}

// TestLoadDegradesOnStoreFailure 单项失败降级为空数据
func TestLoadDegradesOnStoreFailure(t *testing.T) {
	empID := uuid.New()
	f := &fakeStores{
		employees: []*model.Employee{
			{BaseModel: model.BaseModel{ID: empID}, Name: "张三", Role: model.RoleStaff, IsActive: true},
		},
		shiftsErr: errors.New("连接超时"),
	}
	bh := &fakeBusinessHours{err: errors.New("连接超时")}

	sc, err := newTestLoader(f, bh).Load(context.Background(), uuid.New(), "2025-03-03")
	if err != nil {
		t.Fatalf("降级加载不应返回错误: %v", err)
	}

	// 失败类目保持空缺省，成功类目正常装配
	if len(sc.Employees) != 1 {
		t.Error("未失败的类目应正常装配")
	}
	if len(sc.MonthShifts) != 0 {
		t.Error("班次加载失败应降级为空")
	}
	if len(sc.BusinessHours) != 0 {
		t.Error("营业时间加载失败应降级为空")
	}
	if sc.MonthHours(empID) != 0 {
		t.Error("降级后月度工时应为 0")
	}
}
