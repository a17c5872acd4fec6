// Package stats 提供排班统计与公平性校验
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/canpai/canpai/pkg/model"
)

// DefaultHourlyRate 未设置时薪时的成本估算基准（美元/小时）
const DefaultHourlyRate = 20.0

// 公平性警告阈值：实际工时低于周目标工时的该比例时告警
const fairnessFloorRatio = 0.7

// ScheduleStats 排班统计
type ScheduleStats struct {
	TotalShifts        int     `json:"total_shifts"`
	TotalHours         float64 `json:"total_hours"`
	EstimatedCost      float64 `json:"estimated_cost"`
	EmployeesScheduled int     `json:"employees_scheduled"`
	FairnessScore      float64 `json:"fairness_score"` // 0-100
}

// Compute 计算排班方案的统计信息
// 无论生成成功与否都会被调用，空方案返回全零统计
func Compute(shifts []*model.ScheduleShift, employees []*model.Employee) *ScheduleStats {
	s := &ScheduleStats{}
	if len(shifts) == 0 {
		return s
	}

	rateByEmp := make(map[uuid.UUID]float64)
	for _, emp := range employees {
		rate := DefaultHourlyRate
		if emp.HourlyRate != nil {
			rate = *emp.HourlyRate
		}
		rateByEmp[emp.ID] = rate
	}

	hoursByEmp := make(map[uuid.UUID]float64)
	for _, shift := range shifts {
		hours := shift.WorkingHours()
		s.TotalShifts++
		s.TotalHours += hours
		hoursByEmp[shift.EmployeeID] += hours

		rate, ok := rateByEmp[shift.EmployeeID]
		if !ok {
			rate = DefaultHourlyRate
		}
		s.EstimatedCost += hours * rate
	}

	s.EmployeesScheduled = len(hoursByEmp)
	s.FairnessScore = fairnessScore(hoursByEmp)
	return s
}

// fairnessScore 基于人均工时标准差的公平性评分
// 无人排班为 0，只排一人为 100
func fairnessScore(hoursByEmp map[uuid.UUID]float64) float64 {
	if len(hoursByEmp) == 0 {
		return 0
	}
	if len(hoursByEmp) == 1 {
		return 100
	}

	values := make([]float64, 0, len(hoursByEmp))
	for _, h := range hoursByEmp {
		values = append(values, h)
	}

	_, stdDev := meanStdDev(values)
	return math.Max(0, 100-stdDev*10)
}

// meanStdDev 计算平均值与标准差
func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return mean, math.Sqrt(sumSquares / float64(len(values)))
}

// FairnessWarnings 扫描排班方案，对工时远低于目标的员工告警
// 只对有显式偏好记录的员工生效，缺省注入的偏好不触发告警
func FairnessWarnings(
	shifts []*model.ScheduleShift,
	employees []*model.Employee,
	preferences map[uuid.UUID]*model.EmployeePreferences,
) []string {
	hoursByEmp := make(map[uuid.UUID]float64)
	for _, shift := range shifts {
		hoursByEmp[shift.EmployeeID] += shift.WorkingHours()
	}

	// 稳定的告警顺序
	sorted := make([]*model.Employee, len(employees))
	copy(sorted, employees)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var warnings []string
	for _, emp := range sorted {
		prefs, ok := preferences[emp.ID]
		if !ok || prefs == nil || prefs.Defaulted {
			continue
		}

		weeklyTarget := prefs.WeeklyTargetHours()
		if weeklyTarget <= 0 {
			continue
		}

		actual := hoursByEmp[emp.ID]
		if actual < weeklyTarget*fairnessFloorRatio {
			warnings = append(warnings, fmt.Sprintf(
				"员工 %s 本周仅排 %.1f 小时，低于目标周工时 %.1f 的 70%%",
				emp.Name, actual, weeklyTarget,
			))
		}
	}

	return warnings
}

// Dedupe 去除重复警告，保留首次出现的顺序
func Dedupe(warnings []string) []string {
	seen := make(map[string]bool, len(warnings))
	result := make([]string, 0, len(warnings))
	for _, w := range warnings {
		if seen[w] {
			continue
		}
		seen[w] = true
		result = append(result, w)
	}
	return result
}
