// Package validator 提供班次冲突检测
package validator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/canpai/canpai/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictTimeOverlap ConflictType = "time_overlap" // 时间重叠
)

// 冲突严重级别
const (
	SeverityNone    = "none"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Conflict 冲突信息
type Conflict struct {
	Type       ConflictType `json:"type"`
	Severity   string       `json:"severity"`
	EmployeeID uuid.UUID    `json:"employee_id"`
	Date       string       `json:"date"`
	Message    string       `json:"message"`
	ShiftID    uuid.UUID    `json:"shift_id"` // 与之冲突的既有班次
}

// DetectConflicts 检测候选班次与既有班次的冲突
// 只比较同员工、同日期的班次；excludeID 用于编辑场景排除自身
func DetectConflicts(employeeID uuid.UUID, date, start, end string, shifts []*model.Shift, excludeID *uuid.UUID) []Conflict {
	var conflicts []Conflict

	for _, s := range shifts {
		if s.EmployeeID != employeeID || s.Date != date {
			continue
		}
		if excludeID != nil && s.ID == *excludeID {
			continue
		}
		if s.Status == model.ShiftStatusCancelled {
			continue
		}

		if model.Overlaps(start, end, s.StartTime, s.EndTime) {
			conflicts = append(conflicts, Conflict{
				Type:       ConflictTimeOverlap,
				Severity:   SeverityError,
				EmployeeID: employeeID,
				Date:       date,
				Message:    fmt.Sprintf("与 %s %s-%s 的班次时间重叠", s.Date, s.StartTime, s.EndTime),
				ShiftID:    s.ID,
			})
		}
	}

	return conflicts
}

// HasConflicts 检查候选班次是否存在冲突
func HasConflicts(employeeID uuid.UUID, date, start, end string, shifts []*model.Shift, excludeID *uuid.UUID) bool {
	return len(DetectConflicts(employeeID, date, start, end, shifts, excludeID)) > 0
}

// DetectAll 对班次集合做两两冲突检测
// 用于渲染已有周排班的审阅视图，O(n²)
func DetectAll(shifts []*model.Shift) map[uuid.UUID][]Conflict {
	result := make(map[uuid.UUID][]Conflict)

	for _, s := range shifts {
		id := s.ID
		conflicts := DetectConflicts(s.EmployeeID, s.Date, s.StartTime, s.EndTime, shifts, &id)
		if len(conflicts) > 0 {
			result[s.ID] = conflicts
		}
	}

	return result
}

// ClassifySeverity 冲突集合的严重级别
// 任何时间重叠都是 error
func ClassifySeverity(conflicts []Conflict) string {
	if len(conflicts) == 0 {
		return SeverityNone
	}
	for _, c := range conflicts {
		if c.Type == ConflictTimeOverlap {
			return SeverityError
		}
	}
	return SeverityWarning
}
