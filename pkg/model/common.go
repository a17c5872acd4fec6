// Package model 定义排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// 日期与时间的字符串格式约定
const (
	DateLayout  = "2006-01-02" // YYYY-MM-DD
	ClockLayout = "15:04"      // HH:MM
)

const minutesPerDay = 24 * 60

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ClockMinutes 将 "HH:MM" 转换为当日分钟数
// 仅处理格式正确的输入，格式校验属于外部接口职责
func ClockMinutes(clock string) int {
	if len(clock) < 5 {
		return 0
	}
	h := int(clock[0]-'0')*10 + int(clock[1]-'0')
	m := int(clock[3]-'0')*10 + int(clock[4]-'0')
	return h*60 + m
}

// normalizeRange 返回时间段的分钟表示
// 结束时间早于开始时间视为跨午夜，结束时间加一天
func normalizeRange(start, end string) (int, int) {
	s := ClockMinutes(start)
	e := ClockMinutes(end)
	if e < s {
		e += minutesPerDay
	}
	return s, e
}

// Overlaps 检查同一天上的两个 "HH:MM" 时间段是否重叠
// 半开区间语义：端点相接不算重叠；跨午夜的段会延伸到次日
func Overlaps(startA, endA, startB, endB string) bool {
	sA, eA := normalizeRange(startA, endA)
	sB, eB := normalizeRange(startB, endB)

	// 跨午夜的段与另一段的次日部分也可能重叠，平移一天再比一次
	return halfOpenOverlap(sA, eA, sB, eB) ||
		halfOpenOverlap(sA+minutesPerDay, eA+minutesPerDay, sB, eB) ||
		halfOpenOverlap(sA, eA, sB+minutesPerDay, eB+minutesPerDay)
}

// halfOpenOverlap 半开区间重叠判定
func halfOpenOverlap(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// DurationHours 计算 "HH:MM" 时间段的时长（小时），跨午夜安全
func DurationHours(start, end string) float64 {
	s, e := normalizeRange(start, end)
	return float64(e-s) / 60.0
}

// RestHoursBetween 计算前一日班次结束到次日班次开始之间的休息时长（小时）
// 候选班次的开始时间按次日计算；前一日班次跨午夜时结束时间落在次日
func RestHoursBetween(prevStart, prevEnd, nextStart string) float64 {
	_, prevEndNorm := normalizeRange(prevStart, prevEnd)
	next := ClockMinutes(nextStart) + minutesPerDay
	return float64(next-prevEndNorm) / 60.0
}

// WeekdayIndex 返回以周一为 0 的星期索引
// 唯一的星期换算点，加载器、约束和评分共用
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekdayIndexOf 返回日期字符串的周一为 0 星期索引
func WeekdayIndexOf(date string) int {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0
	}
	return WeekdayIndex(t)
}

// IsWeekend 判断日期是否为周六或周日
func IsWeekend(date string) bool {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// PreviousDate 获取前一天日期
func PreviousDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(DateLayout)
}

// NextDate 获取后一天日期
func NextDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format(DateLayout)
}

// MonthRange 返回包含指定日期的自然月起止日期
func MonthRange(date string) (string, string) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", ""
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout)
}

// WeekDates 返回从周起始日开始的 7 个连续日期
func WeekDates(weekStart string) []string {
	t, err := time.Parse(DateLayout, weekStart)
	if err != nil {
		return nil
	}
	dates := make([]string, 7)
	for i := 0; i < 7; i++ {
		dates[i] = t.AddDate(0, 0, i).Format(DateLayout)
	}
	return dates
}

// IsMonday 判断日期是否为周一
func IsMonday(date string) bool {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	return t.Weekday() == time.Monday
}

// DateRange 日期范围（闭区间）
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Contains 检查日期是否落在范围内
func (dr DateRange) Contains(date string) bool {
	return date >= dr.StartDate && date <= dr.EndDate
}

// OverlapsRange 检查两个日期范围是否相交
func (dr DateRange) OverlapsRange(other DateRange) bool {
	return dr.StartDate <= other.EndDate && other.StartDate <= dr.EndDate
}
