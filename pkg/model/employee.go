// Package model 定义排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// 员工角色
const (
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// Employee 员工
// 排班运行期间视为只读快照
type Employee struct {
	BaseModel
	RestaurantID uuid.UUID `json:"restaurant_id" db:"restaurant_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email,omitempty" db:"email"`
	Role         string    `json:"role" db:"role"`
	Position     *string   `json:"position,omitempty" db:"position"`
	HourlyRate   *float64  `json:"hourly_rate,omitempty" db:"hourly_rate"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}

// IsSchedulable 检查员工是否参与自动排班
// 管理者不参与排班
func (e *Employee) IsSchedulable() bool {
	return e.IsActive && e.Role != RoleManager
}

// EmployeePreferences 员工偏好（软约束）
// Defaulted 标记该记录是否为缺省注入，避免静默默认引发的误判
type EmployeePreferences struct {
	EmployeeID           uuid.UUID `json:"employee_id" db:"employee_id"`
	TargetMonthlyHours   float64   `json:"target_monthly_hours" db:"target_monthly_hours"` // [40,200]
	PreferredStartTime   *string   `json:"preferred_start_time,omitempty" db:"preferred_start_time"`
	PreferredShiftLength *float64  `json:"preferred_shift_length,omitempty" db:"preferred_shift_length"` // 小时
	MaxDaysPerWeek       int       `json:"max_days_per_week" db:"max_days_per_week"`                     // [1,7]
	PrefersWeekends      bool      `json:"prefers_weekends" db:"prefers_weekends"`
	Defaulted            bool      `json:"-" db:"-"`
}

// DefaultPreferences 返回员工的缺省偏好
func DefaultPreferences(employeeID uuid.UUID) *EmployeePreferences {
	return &EmployeePreferences{
		EmployeeID:         employeeID,
		TargetMonthlyHours: 160,
		MaxDaysPerWeek:     6,
		PrefersWeekends:    true,
		Defaulted:          true,
	}
}

// WeeklyTargetHours 月度目标工时折算为周目标工时
func (p *EmployeePreferences) WeeklyTargetHours() float64 {
	return p.TargetMonthlyHours / 4.33
}

// EmployeeAvailability 员工不可用时段（硬约束）
// 要么是按星期重复的时段，要么是指定日期的时段；命中即不可排
type EmployeeAvailability struct {
	BaseModel
	EmployeeID   uuid.UUID `json:"employee_id" db:"employee_id"`
	RestaurantID uuid.UUID `json:"restaurant_id" db:"restaurant_id"`
	Recurring    bool      `json:"recurring" db:"recurring"`
	DayOfWeek    *int      `json:"day_of_week,omitempty" db:"day_of_week"` // 周一=0，仅 recurring
	SpecificDate *string   `json:"specific_date,omitempty" db:"specific_date"`
	AllDay       bool      `json:"all_day" db:"all_day"`
	StartTime    *string   `json:"start_time,omitempty" db:"start_time"` // HH:MM，非全天时有效
	EndTime      *string   `json:"end_time,omitempty" db:"end_time"`
	Reason       *string   `json:"reason,omitempty" db:"reason"`
}

// AppliesTo 检查不可用时段是否作用于指定日期
func (a *EmployeeAvailability) AppliesTo(date string) bool {
	if a.Recurring {
		return a.DayOfWeek != nil && *a.DayOfWeek == WeekdayIndexOf(date)
	}
	return a.SpecificDate != nil && *a.SpecificDate == date
}

// Blocks 检查不可用时段是否挡住指定时间窗口
func (a *EmployeeAvailability) Blocks(date, start, end string) bool {
	if !a.AppliesTo(date) {
		return false
	}
	if a.AllDay {
		return true
	}
	if a.StartTime == nil || a.EndTime == nil {
		// 非全天却缺少时间窗口，按全天处理
		return true
	}
	return Overlaps(start, end, *a.StartTime, *a.EndTime)
}

// TimeOffRequest 休假申请
// 上下文只加载已批准且与目标周相交的申请
type TimeOffRequest struct {
	BaseModel
	EmployeeID   uuid.UUID `json:"employee_id" db:"employee_id"`
	RestaurantID uuid.UUID `json:"restaurant_id" db:"restaurant_id"`
	StartDate    string    `json:"start_date" db:"start_date"`
	EndDate      string    `json:"end_date" db:"end_date"`
	Status       string    `json:"status" db:"status"` // pending/approved/rejected
	Reason       *string   `json:"reason,omitempty" db:"reason"`
}

// Covers 检查休假是否覆盖指定日期
func (t *TimeOffRequest) Covers(date string) bool {
	return DateRange{StartDate: t.StartDate, EndDate: t.EndDate}.Contains(date)
}
