// Package model 定义排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// Restaurant 餐厅
type Restaurant struct {
	BaseModel
	Name     string  `json:"name" db:"name"`
	Code     string  `json:"code" db:"code"`
	Timezone string  `json:"timezone,omitempty" db:"timezone"`
	Address  *string `json:"address,omitempty" db:"address"`
}

// BusinessHours 营业时间（每个星期一条，周一=0）
// 缺失或标记歇业的日子整天跳过
type BusinessHours struct {
	BaseModel
	RestaurantID uuid.UUID `json:"restaurant_id" db:"restaurant_id"`
	DayOfWeek    int       `json:"day_of_week" db:"day_of_week"` // 周一=0
	OpenTime     string    `json:"open_time" db:"open_time"`     // HH:MM
	CloseTime    string    `json:"close_time" db:"close_time"`
	IsClosed     bool      `json:"is_closed" db:"is_closed"`
}

// IsOpen 检查该日是否营业
func (b *BusinessHours) IsOpen() bool {
	return !b.IsClosed && b.OpenTime != "" && b.CloseTime != ""
}

// StaffingRequirement 人员配置需求
// 每个星期可以有多条；决定该时段发起多少次分配尝试
type StaffingRequirement struct {
	BaseModel
	RestaurantID uuid.UUID `json:"restaurant_id" db:"restaurant_id"`
	DayOfWeek    int       `json:"day_of_week" db:"day_of_week"` // 周一=0
	StartTime    string    `json:"start_time" db:"start_time"`   // HH:MM
	EndTime      string    `json:"end_time" db:"end_time"`
	MinStaff     int       `json:"min_staff" db:"min_staff"`
	OptimalStaff int       `json:"optimal_staff" db:"optimal_staff"`
	Position     *string   `json:"position,omitempty" db:"position"` // 指定岗位，空则不限
}

// TargetStaff 返回该时段的目标分配人数
func (r *StaffingRequirement) TargetStaff() int {
	if r.OptimalStaff > 0 {
		return r.OptimalStaff
	}
	return r.MinStaff
}
