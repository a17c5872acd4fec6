// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/canpai/canpai/internal/repository"
	"github.com/canpai/canpai/pkg/errors"
	"github.com/canpai/canpai/pkg/model"
	"github.com/canpai/canpai/pkg/stats"
)

// StatsHandler 排班统计处理器
type StatsHandler struct {
	shifts      *repository.ShiftRepository
	employees   *repository.EmployeeRepository
	preferences *repository.PreferenceRepository
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(
	shifts *repository.ShiftRepository,
	employees *repository.EmployeeRepository,
	preferences *repository.PreferenceRepository,
) *StatsHandler {
	return &StatsHandler{shifts: shifts, employees: employees, preferences: preferences}
}

// FairnessRequest 公平性统计请求
type FairnessRequest struct {
	RestaurantID string `json:"restaurant_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// FairnessResponse 公平性统计响应
type FairnessResponse struct {
	Stats    *stats.ScheduleStats `json:"stats"`
	Warnings []string             `json:"warnings"`
}

// Fairness 计算日期范围内已落库排班的统计与公平性
func (h *StatsHandler) Fairness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req FairnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		respondError(w, errors.InvalidInput("restaurant_id", "无效的餐厅ID格式"))
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		respondError(w, errors.New(errors.CodeInvalidInput, "日期范围不能为空"))
		return
	}

	persisted, listErr := h.shifts.ListByDateRange(r.Context(), restaurantID, req.StartDate, req.EndDate)
	if listErr != nil {
		respondError(w, errors.Wrap(listErr, errors.CodeDatabaseError, "查询班次失败"))
		return
	}

	employees, empErr := h.employees.ListSchedulable(r.Context(), restaurantID)
	if empErr != nil {
		respondError(w, errors.Wrap(empErr, errors.CodeDatabaseError, "查询员工失败"))
		return
	}

	prefs, prefErr := h.preferences.MapByRestaurant(r.Context(), restaurantID)
	if prefErr != nil {
		respondError(w, errors.Wrap(prefErr, errors.CodeDatabaseError, "查询员工偏好失败"))
		return
	}

	// 统计口径与生成结果一致，已取消的班次不计入
	shifts := make([]*model.ScheduleShift, 0, len(persisted))
	for _, s := range persisted {
		if s.Status == model.ShiftStatusCancelled {
			continue
		}
		shifts = append(shifts, &model.ScheduleShift{
			ID:         s.ID,
			EmployeeID: s.EmployeeID,
			Date:       s.Date,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			Position:   s.Position,
		})
	}

	warnings := stats.FairnessWarnings(shifts, employees, prefs)
	if warnings == nil {
		warnings = []string{}
	}

	respondJSON(w, http.StatusOK, FairnessResponse{
		Stats:    stats.Compute(shifts, employees),
		Warnings: warnings,
	})
}
