// Package constraint 定义排班上下文与硬约束检查
package constraint

import (
	"github.com/google/uuid"

	"github.com/canpai/canpai/pkg/model"
)

// Options 排班生成选项
type Options struct {
	PrioritizeFairness bool `json:"prioritize_fairness"`
	PrioritizeCost     bool `json:"prioritize_cost"`
	AllowOvertime      bool `json:"allow_overtime"`
}

// Context 排班上下文
// 输入数据在一次生成调用内只读；RunShifts 是本次运行的累积结果，只增不删
type Context struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
	WeekStart    string    `json:"week_start"`
	WeekEnd      string    `json:"week_end"`

	Employees     []*model.Employee                          `json:"employees"`
	Preferences   map[uuid.UUID]*model.EmployeePreferences   `json:"preferences"`
	Availability  map[uuid.UUID][]*model.EmployeeAvailability `json:"availability"`
	BusinessHours map[int]*model.BusinessHours               `json:"business_hours"` // 周一=0
	Requirements  []*model.StaffingRequirement               `json:"requirements"`
	MonthShifts   []*model.Shift                             `json:"month_shifts"` // 目标周所在自然月的既有班次
	TimeOff       map[uuid.UUID][]*model.TimeOffRequest      `json:"time_off"`

	// 本次运行产出
	RunShifts []*model.ScheduleShift `json:"run_shifts"`

	// 索引缓存
	runByEmp        map[uuid.UUID][]*model.ScheduleShift
	monthHoursByEmp map[uuid.UUID]float64
	monthByEmpDate  map[uuid.UUID]map[string]*model.Shift
}

// NewContext 创建新的排班上下文
func NewContext(restaurantID uuid.UUID, weekStart string) *Context {
	dates := model.WeekDates(weekStart)
	weekEnd := weekStart
	if len(dates) == 7 {
		weekEnd = dates[6]
	}

	return &Context{
		RestaurantID:  restaurantID,
		WeekStart:     weekStart,
		WeekEnd:       weekEnd,
		Employees:     make([]*model.Employee, 0),
		Preferences:   make(map[uuid.UUID]*model.EmployeePreferences),
		Availability:  make(map[uuid.UUID][]*model.EmployeeAvailability),
		BusinessHours: make(map[int]*model.BusinessHours),
		Requirements:  make([]*model.StaffingRequirement, 0),
		MonthShifts:   make([]*model.Shift, 0),
		TimeOff:       make(map[uuid.UUID][]*model.TimeOffRequest),
		RunShifts:     make([]*model.ScheduleShift, 0),
		runByEmp:      make(map[uuid.UUID][]*model.ScheduleShift),
	}
}

// SetMonthShifts 设置月度既有班次并重建工时索引
func (c *Context) SetMonthShifts(shifts []*model.Shift) {
	c.MonthShifts = shifts
	c.monthHoursByEmp = make(map[uuid.UUID]float64)
	c.monthByEmpDate = make(map[uuid.UUID]map[string]*model.Shift)

	for _, s := range shifts {
		if s.Status == model.ShiftStatusCancelled {
			continue
		}
		c.monthHoursByEmp[s.EmployeeID] += s.WorkingHours()
		if c.monthByEmpDate[s.EmployeeID] == nil {
			c.monthByEmpDate[s.EmployeeID] = make(map[string]*model.Shift)
		}
		c.monthByEmpDate[s.EmployeeID][s.Date] = s
	}
}

// AddShift 向本次运行追加一个班次
func (c *Context) AddShift(s *model.ScheduleShift) {
	c.RunShifts = append(c.RunShifts, s)
	c.runByEmp[s.EmployeeID] = append(c.runByEmp[s.EmployeeID], s)
}

// EmployeeRunShifts 获取员工在本次运行中已分配的班次
func (c *Context) EmployeeRunShifts(empID uuid.UUID) []*model.ScheduleShift {
	return c.runByEmp[empID]
}

// RunShiftCount 员工在本次运行中的班次数
func (c *Context) RunShiftCount(empID uuid.UUID) int {
	return len(c.runByEmp[empID])
}

// RunHours 员工在本次运行中已累计的工时
func (c *Context) RunHours(empID uuid.UUID) float64 {
	var hours float64
	for _, s := range c.runByEmp[empID] {
		hours += s.WorkingHours()
	}
	return hours
}

// RunShiftOn 员工在本次运行中指定日期的班次（至多返回第一条）
func (c *Context) RunShiftOn(empID uuid.UUID, date string) *model.ScheduleShift {
	for _, s := range c.runByEmp[empID] {
		if s.Date == date {
			return s
		}
	}
	return nil
}

// MonthShiftOn 员工在既有月度班次中指定日期的班次
func (c *Context) MonthShiftOn(empID uuid.UUID, date string) *model.Shift {
	if byDate, ok := c.monthByEmpDate[empID]; ok {
		return byDate[date]
	}
	return nil
}

// MonthHours 员工本月累计工时：既有班次加本次运行产出
// 用于公平性评分，不参与冲突检查
func (c *Context) MonthHours(empID uuid.UUID) float64 {
	return c.monthHoursByEmp[empID] + c.RunHours(empID)
}

// PreferencesFor 获取员工偏好，缺失时返回缺省偏好
func (c *Context) PreferencesFor(empID uuid.UUID) *model.EmployeePreferences {
	if p, ok := c.Preferences[empID]; ok && p != nil {
		return p
	}
	return model.DefaultPreferences(empID)
}

// RequirementsForDay 按星期过滤人员配置需求（周一=0）
func (c *Context) RequirementsForDay(dayOfWeek int) []*model.StaffingRequirement {
	var result []*model.StaffingRequirement
	for _, r := range c.Requirements {
		if r.DayOfWeek == dayOfWeek {
			result = append(result, r)
		}
	}
	return result
}

// ConsecutiveRunDaysBefore 员工在目标日期前连续工作的天数
// 只回看本次运行的班次，遇到第一个空档即停止
func (c *Context) ConsecutiveRunDaysBefore(empID uuid.UUID, date string) int {
	count := 0
	current := model.PreviousDate(date)
	for current != "" && c.RunShiftOn(empID, current) != nil {
		count++
		if count > 30 {
			break
		}
		current = model.PreviousDate(current)
	}
	return count
}

// HasOpenDay 检查目标周是否存在营业日
func (c *Context) HasOpenDay() bool {
	for _, bh := range c.BusinessHours {
		if bh != nil && bh.IsOpen() {
			return true
		}
	}
	return false
}
