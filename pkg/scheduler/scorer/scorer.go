// Package scorer 计算候选员工对时段的匹配得分
package scorer

import (
	"math"

	"github.com/canpai/canpai/pkg/model"
	"github.com/canpai/canpai/pkg/scheduler/constraint"
)

// 评分参数
const (
	baseScore = 100.0

	costBaselineRate = 15.0 // 时薪基准（美元）
	costRateSpan     = 15.0
	costMaxPenalty   = 10.0

	softCapPenalty = 100.0 // 超过期望周天数的软性淘汰分
)

// Score 计算把员工分配到候选时段的期望度得分
// 纯函数：只依赖只读上下文与本次运行已累积的班次
func Score(ctx *constraint.Context, emp *model.Employee, date, start, end string, opts constraint.Options) float64 {
	score := baseScore
	prefs := ctx.PreferencesFor(emp.ID)

	score += fairnessAdjustment(ctx, emp, prefs, opts)
	score += startTimeAdjustment(prefs, start)
	score += lengthAdjustment(prefs, start, end)
	score += weekendAdjustment(prefs, date)
	score += consecutiveDaysAdjustment(ctx, emp, date)

	if opts.PrioritizeCost && emp.HourlyRate != nil {
		score -= (*emp.HourlyRate - costBaselineRate) / costRateSpan * costMaxPenalty
	}

	// 软性淘汰：不是硬约束，没有其他人选时仍可能被选中
	if ctx.RunShiftCount(emp.ID) >= prefs.MaxDaysPerWeek {
		score -= softCapPenalty
	}

	return score
}

// fairnessAdjustment 月度工时相对目标的公平性调整
// 区间互斥，按优先级顺序判定
func fairnessAdjustment(ctx *constraint.Context, emp *model.Employee, prefs *model.EmployeePreferences, opts constraint.Options) float64 {
	if prefs.TargetMonthlyHours <= 0 {
		return 0
	}

	pct := ctx.MonthHours(emp.ID) / prefs.TargetMonthlyHours * 100

	var adj float64
	switch {
	case pct < 90:
		adj = 30
	case pct < 100:
		adj = 15
	case pct > 110:
		adj = -30
	case pct > 100:
		adj = -15
	}

	if opts.PrioritizeFairness {
		adj *= 2
	}
	return adj
}

// startTimeAdjustment 偏好开始时间的接近度调整
func startTimeAdjustment(prefs *model.EmployeePreferences, start string) float64 {
	if prefs.PreferredStartTime == nil {
		return 0
	}

	diff := math.Abs(float64(model.ClockMinutes(start) - model.ClockMinutes(*prefs.PreferredStartTime)))
	switch {
	case diff <= 30:
		return 10
	case diff > 120:
		return -10
	}
	return 0
}

// lengthAdjustment 偏好班次时长的接近度调整
func lengthAdjustment(prefs *model.EmployeePreferences, start, end string) float64 {
	if prefs.PreferredShiftLength == nil {
		return 0
	}

	diff := math.Abs(model.DurationHours(start, end) - *prefs.PreferredShiftLength)
	switch {
	case diff <= 0.5:
		return 10
	case diff > 2:
		return -10
	}
	return 0
}

// weekendAdjustment 周末意愿调整
func weekendAdjustment(prefs *model.EmployeePreferences, date string) float64 {
	if !model.IsWeekend(date) {
		return 0
	}
	if prefs.PrefersWeekends {
		return 10
	}
	return -20
}

// consecutiveDaysAdjustment 连续工作天数调整
// 只回看本次运行的班次，遇到空档即停止
func consecutiveDaysAdjustment(ctx *constraint.Context, emp *model.Employee, date string) float64 {
	consecutive := ctx.ConsecutiveRunDaysBefore(emp.ID, date)
	switch {
	case consecutive >= 5:
		return -15
	case consecutive == 0:
		return 5
	}
	return 0
}
