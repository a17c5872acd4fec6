// Package solver 实现贪心排班引擎
// 单遍生成：按天、按时段顺序为每个空位挑选当前得分最高的员工，
// 不做回溯或全局优化，保证结果可解释且耗时可预测
package solver

import (
	"fmt"
	"time"

	"github.com/canpai/canpai/pkg/logger"
	"github.com/canpai/canpai/pkg/model"
	"github.com/canpai/canpai/pkg/scheduler/constraint"
	"github.com/canpai/canpai/pkg/scheduler/scorer"
	"github.com/canpai/canpai/pkg/stats"
)

// DefaultCoverage 营业日没有人员配置需求时的默认排班人数
const DefaultCoverage = 2

// Result 一次排班生成的完整产出
// Shifts 未落库，由调用方决定持久化
type Result struct {
	Shifts   []*model.ScheduleShift `json:"shifts"`
	Warnings []string               `json:"warnings"`
	Stats    *stats.ScheduleStats   `json:"stats"`
}

// Engine 贪心排班引擎
type Engine struct {
	log *logger.SchedulerLogger
}

// NewEngine 创建排班引擎
func NewEngine(log *logger.SchedulerLogger) *Engine {
	if log == nil {
		log = logger.NewSchedulerLogger()
	}
	return &Engine{log: log}
}

// Generate 为目标周生成排班方案
// 任何输入都会返回结果：生成不出班次时以警告说明原因，不返回错误
func (e *Engine) Generate(ctx *constraint.Context, opts constraint.Options) *Result {
	start := time.Now()
	e.log.StartGeneration(ctx.RestaurantID.String(), ctx.WeekStart, len(ctx.Employees))

	var warnings []string

	schedulable := schedulableEmployees(ctx.Employees)
	if len(schedulable) == 0 {
		warnings = append(warnings, "没有可排班的员工，无法生成排班")
	}
	if !ctx.HasOpenDay() {
		warnings = append(warnings, "目标周没有营业日，无法生成排班")
	}
	if len(warnings) > 0 {
		return e.finish(ctx, warnings, start)
	}

	dates := model.WeekDates(ctx.WeekStart)
	for dayOfWeek, date := range dates {
		bh := ctx.BusinessHours[dayOfWeek]
		if bh == nil || !bh.IsOpen() {
			continue
		}

		reqs := ctx.RequirementsForDay(dayOfWeek)
		if len(reqs) == 0 {
			warnings = append(warnings, e.fillDefault(ctx, schedulable, date, bh, opts)...)
			continue
		}

		for _, req := range reqs {
			warnings = append(warnings, e.fillRequirement(ctx, schedulable, date, req, opts)...)
		}
	}

	if len(ctx.RunShifts) == 0 {
		warnings = append(warnings, "未能生成任何班次，请检查员工可用性与营业时间配置")
	}

	return e.finish(ctx, warnings, start)
}

// fillRequirement 按人员配置需求填充时段
// 按最优人数尝试，低于最低人数才告警
func (e *Engine) fillRequirement(
	ctx *constraint.Context,
	employees []*model.Employee,
	date string,
	req *model.StaffingRequirement,
	opts constraint.Options,
) []string {
	target := req.TargetStaff()
	assigned := 0
	for i := 0; i < target; i++ {
		if e.assignBest(ctx, employees, date, req.StartTime, req.EndTime, req.Position, opts) {
			assigned++
		}
	}

	if assigned < req.MinStaff {
		e.log.SlotUnfilled(date, req.StartTime, req.EndTime, assigned, req.MinStaff)
		return []string{fmt.Sprintf(
			"%s %s-%s 仅排到 %d 人，低于最低要求 %d 人",
			date, req.StartTime, req.EndTime, assigned, req.MinStaff,
		)}
	}
	return nil
}

// fillDefault 没有人员配置需求时的兜底填充
// 按整个营业窗口排默认人数
func (e *Engine) fillDefault(
	ctx *constraint.Context,
	employees []*model.Employee,
	date string,
	bh *model.BusinessHours,
	opts constraint.Options,
) []string {
	assigned := 0
	for i := 0; i < DefaultCoverage; i++ {
		if e.assignBest(ctx, employees, date, bh.OpenTime, bh.CloseTime, nil, opts) {
			assigned++
		}
	}

	if assigned < DefaultCoverage {
		e.log.SlotUnfilled(date, bh.OpenTime, bh.CloseTime, assigned, DefaultCoverage)
		return []string{fmt.Sprintf(
			"%s 仅排到 %d 人，低于默认配置 %d 人",
			date, assigned, DefaultCoverage,
		)}
	}
	return nil
}

// assignBest 为单个空位挑选得分最高的员工
// 同分时保留先遍历到的候选人，保证结果确定
func (e *Engine) assignBest(
	ctx *constraint.Context,
	employees []*model.Employee,
	date, start, end string,
	position *string,
	opts constraint.Options,
) bool {
	var best *model.Employee
	var bestScore float64

	for _, emp := range employees {
		// 一天至多一个班次，顺带保证本次运行内无重叠
		if ctx.RunShiftOn(emp.ID, date) != nil {
			continue
		}
		if ok, _ := constraint.CanAssign(ctx, emp.ID, date, start, end, opts); !ok {
			continue
		}

		score := scorer.Score(ctx, emp, date, start, end, opts)
		if best == nil || score > bestScore {
			best = emp
			bestScore = score
		}
	}

	if best == nil {
		return false
	}

	ctx.AddShift(model.NewScheduleShift(best.ID, date, start, end, position))
	return true
}

// finish 汇总统计与去重后的警告
func (e *Engine) finish(ctx *constraint.Context, warnings []string, start time.Time) *Result {
	warnings = append(warnings, stats.FairnessWarnings(ctx.RunShifts, ctx.Employees, ctx.Preferences)...)

	result := &Result{
		Shifts:   ctx.RunShifts,
		Warnings: stats.Dedupe(warnings),
		Stats:    stats.Compute(ctx.RunShifts, ctx.Employees),
	}

	e.log.GenerationComplete(ctx.RestaurantID.String(), len(result.Shifts), len(result.Warnings), time.Since(start))
	return result
}

// schedulableEmployees 过滤出可排班员工
func schedulableEmployees(employees []*model.Employee) []*model.Employee {
	var result []*model.Employee
	for _, emp := range employees {
		if emp.IsSchedulable() {
			result = append(result, emp)
		}
	}
	return result
}
