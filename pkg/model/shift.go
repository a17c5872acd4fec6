// Package model 定义排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// 班次状态
const (
	ShiftStatusScheduled = "scheduled"
	ShiftStatusConfirmed = "confirmed"
	ShiftStatusCompleted = "completed"
	ShiftStatusCancelled = "cancelled"
)

// Shift 已落库的班次
// 上下文加载目标周所在自然月的班次，用于月度工时与成本参照
type Shift struct {
	BaseModel
	RestaurantID uuid.UUID `json:"restaurant_id" db:"restaurant_id"`
	EmployeeID   uuid.UUID `json:"employee_id" db:"employee_id"`
	Date         string    `json:"date" db:"date"` // YYYY-MM-DD
	StartTime    string    `json:"start_time" db:"start_time"`
	EndTime      string    `json:"end_time" db:"end_time"`
	Position     *string   `json:"position,omitempty" db:"position"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`
	Status       string    `json:"status" db:"status"`
}

// WorkingHours 班次工时（小时），跨午夜安全
func (s *Shift) WorkingHours() float64 {
	return DurationHours(s.StartTime, s.EndTime)
}

// ScheduleShift 本次生成运行产出的班次
// 运行期间只增不删，最终整体返回给调用方，由调用方决定是否落库
type ScheduleShift struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	Date       string    `json:"date"` // YYYY-MM-DD
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Position   *string   `json:"position,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
}

// NewScheduleShift 创建生成班次
func NewScheduleShift(employeeID uuid.UUID, date, start, end string, position *string) *ScheduleShift {
	return &ScheduleShift{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		Position:   position,
	}
}

// WorkingHours 班次工时（小时），跨午夜安全
func (s *ScheduleShift) WorkingHours() float64 {
	return DurationHours(s.StartTime, s.EndTime)
}

// IsOnDate 检查班次是否在指定日期
func (s *ScheduleShift) IsOnDate(date string) bool {
	return s.Date == date
}
