// Package constraint 定义排班上下文与硬约束检查
package constraint

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/canpai/canpai/pkg/model"
)

// 劳动法规工时上限
const (
	MinRestHours       = 8.0  // 跨日班次间最小休息时间
	StandardWeekHours  = 40.0 // 不允许加班时的周工时上限
	AbsoluteWeekHours  = 48.0 // 任何情况下的周工时上限
)

// IsAvailable 检查员工在指定时间窗口是否可排
// 已批准休假覆盖该日期，或任一不可用时段挡住该窗口，即不可排
func IsAvailable(ctx *Context, empID uuid.UUID, date, start, end string) bool {
	for _, req := range ctx.TimeOff[empID] {
		if req.Covers(date) {
			return false
		}
	}

	for _, block := range ctx.Availability[empID] {
		if block.Blocks(date, start, end) {
			return false
		}
	}

	return true
}

// HasAdequateRest 检查与前一日班次之间的休息时间是否足够
// 优先查看本次运行产出；运行中没有时回退到已落库的月度班次，
// 避免周一早班紧跟上周日晚班的欠休息情况
func HasAdequateRest(ctx *Context, empID uuid.UUID, date, start string) bool {
	prevDate := model.PreviousDate(date)
	if prevDate == "" {
		return true
	}

	var prevStart, prevEnd string
	if s := ctx.RunShiftOn(empID, prevDate); s != nil {
		prevStart, prevEnd = s.StartTime, s.EndTime
	} else if s := ctx.MonthShiftOn(empID, prevDate); s != nil {
		prevStart, prevEnd = s.StartTime, s.EndTime
	} else {
		return true
	}

	return model.RestHoursBetween(prevStart, prevEnd, start) >= MinRestHours
}

// ExceedsWeeklyHours 检查加入候选班次后是否突破周工时上限
// 返回 true 表示超限（应拒绝）
func ExceedsWeeklyHours(ctx *Context, empID uuid.UUID, candidateHours float64, allowOvertime bool) bool {
	total := ctx.RunHours(empID) + candidateHours
	if total > AbsoluteWeekHours {
		return true
	}
	if !allowOvertime && total > StandardWeekHours {
		return true
	}
	return false
}

// CanAssign 按固定顺序执行三项硬约束检查
// 顺序为性能考量：先做淘汰率高且代价低的检查
func CanAssign(ctx *Context, empID uuid.UUID, date, start, end string, opts Options) (bool, string) {
	if !IsAvailable(ctx, empID, date, start, end) {
		return false, "员工在该时段不可用"
	}
	if !HasAdequateRest(ctx, empID, date, start) {
		return false, fmt.Sprintf("与前一日班次间休息不足 %.0f 小时", MinRestHours)
	}
	if ExceedsWeeklyHours(ctx, empID, model.DurationHours(start, end), opts.AllowOvertime) {
		return false, "周工时超限"
	}
	return true, ""
}
