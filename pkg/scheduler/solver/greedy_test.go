package solver

import (
	"testing"

	"github.com/google/uuid"

	"github.com/canpai/canpai/pkg/model"
	"github.com/canpai/canpai/pkg/scheduler/constraint"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newStaff(name string) *model.Employee {
	return &model.Employee{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      name,
		Role:      model.RoleStaff,
		IsActive:  true,
	}
}

// openAllWeek 周一到周日全部营业
func openAllWeek(ctx *constraint.Context, open, close string) {
	for day := 0; day < 7; day++ {
		ctx.BusinessHours[day] = &model.BusinessHours{
			DayOfWeek: day,
			OpenTime:  open,
			CloseTime: close,
		}
	}
}

// TestGenerateBasicCoverage 基础排班测试
// 无人员配置需求时每个营业日兜底排 2 人
func TestGenerateBasicCoverage(t *testing.T) {
	ctx := constraint.NewContext(uuid.New(), "2025-03-03")
	ctx.Employees = []*model.Employee{
		newStaff("张三"), newStaff("李四"), newStaff("王五"), newStaff("赵六"),
	}
	openAllWeek(ctx, "09:00", "17:00")

	result := NewEngine(nil).Generate(ctx, constraint.Options{})

	if len(result.Shifts) == 0 {
		t.Fatal("应生成班次")
	}

	// 每天 2 人，共 14 个班次
	byDate := make(map[string]int)
	for _, s := range result.Shifts {
		byDate[s.Date]++
	}
	for date, count := range byDate {
		if count != DefaultCoverage {
			t.Errorf("%s 排班人数 = %d, 期望 %d", date, count, DefaultCoverage)
		}
	}
	if len(byDate) != 7 {
		t.Errorf("排班天数 = %d, 期望 7", len(byDate))
	}

	if result.Stats == nil || result.Stats.TotalShifts != len(result.Shifts) {
		t.Error("统计应与班次数一致")
	}
}

// TestGenerateRespectsInvariants 生成结果满足硬性不变量
func TestGenerateRespectsInvariants(t *testing.T) {
	ctx := constraint.NewContext(uuid.New(), "2025-03-03")
	ctx.Employees = []*model.Employee{newStaff("张三"), newStaff("李四")}
	openAllWeek(ctx, "08:00", "22:00")

	for day := 0; day < 7; day++ {
		ctx.Requirements = append(ctx.Requirements, &model.StaffingRequirement{
			DayOfWeek: day, StartTime: "08:00", EndTime: "16:00", MinStaff: 1, OptimalStaff: 2,
		})
	}

	result := NewEngine(nil).Generate(ctx, constraint.Options{})

	// 同员工同日期不重复
	seen := make(map[string]bool)
	hours := make(map[uuid.UUID]float64)
	for _, s := range result.Shifts {
		key := s.EmployeeID.String() + s.Date
		if seen[key] {
			t.Errorf("员工 %s 在 %s 被重复排班", s.EmployeeID, s.Date)
		}
		seen[key] = true
		hours[s.EmployeeID] += s.WorkingHours()
	}

	// 默认不允许加班，周工时不超过 40
	for id, h := range hours {
		if h > 40 {
			t.Errorf("员工 %s 周工时 %.1f 超过 40 小时", id, h)
		}
	}
}

// TestGenerateNoSchedulableStaff 无可排班员工时返回空方案加警告
func TestGenerateNoSchedulableStaff(t *testing.T) {
	ctx := constraint.NewContext(uuid.New(), "2025-03-03")
	ctx.Employees = []*model.Employee{
		{BaseModel: model.BaseModel{ID: uuid.New()}, Name: "店长", Role: model.RoleManager, IsActive: true},
		{BaseModel: model.BaseModel{ID: uuid.New()}, Name: "离职员工", Role: model.RoleStaff, IsActive: false},
	}
	openAllWeek(ctx, "09:00", "17:00")

	result := NewEngine(nil).Generate(ctx, constraint.Options{})

	if len(result.Shifts) != 0 {
		t.Errorf("班次数 = %d, 期望 0", len(result.Shifts))
	}
	if len(result.Warnings) == 0 {
		t.Error("应返回解释性警告")
	}
	if result.Stats == nil || result.Stats.TotalShifts != 0 {
		t.Error("空方案应返回全零统计")
	}
}

// TestGenerateWeekFullyClosed 整周歇业时返回空方案加警告
func TestGenerateWeekFullyClosed(t *testing.T) {
	ctx := constraint.NewContext(uuid.New(), "2025-03-03")
	ctx.Employees = []*model.Employee{newStaff("张三")}
	for day := 0; day < 7; day++ {
		ctx.BusinessHours[day] = &model.BusinessHours{DayOfWeek: day, IsClosed: true}
	}

	result := NewEngine(nil).Generate(ctx, constraint.Options{})

	if len(result.Shifts) != 0 {
		t.Error("歇业周不应生成班次")
	}
	if len(result.Warnings) == 0 {
		t.Error("应返回解释性警告")
	}
}

// TestGenerateSkipsClosedDays 歇业日跳过测试
func TestGenerateSkipsClosedDays(t *testing.T) {
	ctx := constraint.NewContext(uuid.New(), "2025-03-03")
	ctx.Employees = []*model.Employee{newStaff("张三"), newStaff("李四"), newStaff("王五")}
	openAllWeek(ctx, "09:00", "17:00")
	// 周一歇业
	ctx.BusinessHours[0] = &model.BusinessHours{DayOfWeek: 0, IsClosed: true}

	result := NewEngine(nil).Generate(ctx, constraint.Options{})

	for _, s := range result.Shifts {
		if s.Date == "2025-03-03" {
			t.Errorf("歇业日 %s 不应有班次", s.Date)
		}
	}
}

// TestGenerateStaffingShortfall 人数不足时产生警告
func TestGenerateStaffingShortfall(t *testing.T) {
	ctx := constraint.NewContext(uuid.New(), "2025-03-03")
	ctx.Employees = []*model.Employee{newStaff("张三")}
	openAllWeek(ctx, "09:00", "17:00")

	// 周一需要最少 3 人，只有 1 名员工
	ctx.Requirements = append(ctx.Requirements, &model.StaffingRequirement{
		DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", MinStaff: 3, OptimalStaff: 3,
	})

	result := NewEngine(nil).Generate(ctx, constraint.Options{})

	found := false
	for _, w := range result.Warnings {
		if w != "" {
			found = true
		}
	}
	if !found {
		t.Error("人数不足应产生警告")
	}
}

// TestGenerateBlockedEmployee 不可用员工不被排班
func TestGenerateBlockedEmployee(t *testing.T) {
	ctx := constraint.NewContext(uuid.New(), "2025-03-03")
	blocked := newStaff("张三")
	free := newStaff("李四")
	ctx.Employees = []*model.Employee{blocked, free}
	openAllWeek(ctx, "09:00", "17:00")

	// 张三整周休假
	ctx.TimeOff[blocked.ID] = []*model.TimeOffRequest{
		{EmployeeID: blocked.ID, StartDate: "2025-03-03", EndDate: "2025-03-09", Status: "approved"},
	}

	result := NewEngine(nil).Generate(ctx, constraint.Options{})

	for _, s := range result.Shifts {
		if s.EmployeeID == blocked.ID {
			t.Errorf("休假员工在 %s 被排班", s.Date)
		}
	}
}

// TestGenerateDeterministic 同输入产出相同方案
func TestGenerateDeterministic(t *testing.T) {
	build := func(empIDs []uuid.UUID) *constraint.Context {
		ctx := constraint.NewContext(uuid.New(), "2025-03-03")
		for i, id := range empIDs {
			ctx.Employees = append(ctx.Employees, &model.Employee{
				BaseModel: model.BaseModel{ID: id},
				Name:      "员工" + string(rune('A'+i)),
				Role:      model.RoleStaff,
				IsActive:  true,
			})
		}
		openAllWeek(ctx, "09:00", "17:00")
		return ctx
	}

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	first := NewEngine(nil).Generate(build(ids), constraint.Options{})
	second := NewEngine(nil).Generate(build(ids), constraint.Options{})

	if len(first.Shifts) != len(second.Shifts) {
		t.Fatalf("两次生成班次数不同: %d vs %d", len(first.Shifts), len(second.Shifts))
	}
	for i := range first.Shifts {
		a, b := first.Shifts[i], second.Shifts[i]
		if a.EmployeeID != b.EmployeeID || a.Date != b.Date || a.StartTime != b.StartTime {
			t.Errorf("第 %d 个班次不一致: %v vs %v", i, a, b)
		}
	}
}

// TestGenerateRequirementPosition 人员配置需求带岗位时写入班次
func TestGenerateRequirementPosition(t *testing.T) {
	ctx := constraint.NewContext(uuid.New(), "2025-03-03")
	ctx.Employees = []*model.Employee{newStaff("张三")}
	openAllWeek(ctx, "09:00", "22:00")

	ctx.Requirements = append(ctx.Requirements, &model.StaffingRequirement{
		DayOfWeek: 0, StartTime: "11:00", EndTime: "14:00", MinStaff: 1, Position: strPtr("服务员"),
	})

	result := NewEngine(nil).Generate(ctx, constraint.Options{})

	found := false
	for _, s := range result.Shifts {
		if s.Date == "2025-03-03" && s.Position != nil && *s.Position == "服务员" {
			found = true
		}
	}
	if !found {
		t.Error("需求岗位应写入生成的班次")
	}
}

// TestGenerateWarningsDeduped 警告去重测试
func TestGenerateWarningsDeduped(t *testing.T) {
	ctx := constraint.NewContext(uuid.New(), "2025-03-03")
	ctx.Employees = []*model.Employee{
		{BaseModel: model.BaseModel{ID: uuid.New()}, Name: "店长", Role: model.RoleManager, IsActive: true},
	}
	openAllWeek(ctx, "09:00", "17:00")

	result := NewEngine(nil).Generate(ctx, constraint.Options{})

	seen := make(map[string]bool)
	for _, w := range result.Warnings {
		if seen[w] {
			t.Errorf("警告重复: %s", w)
		}
		seen[w] = true
	}
}
