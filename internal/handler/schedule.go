// Package handler 提供HTTP请求处理器
package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/canpai/canpai/internal/database"
	"github.com/canpai/canpai/internal/loader"
	"github.com/canpai/canpai/internal/metrics"
	"github.com/canpai/canpai/internal/repository"
	"github.com/canpai/canpai/pkg/errors"
	"github.com/canpai/canpai/pkg/logger"
	"github.com/canpai/canpai/pkg/model"
	"github.com/canpai/canpai/pkg/scheduler/constraint"
	"github.com/canpai/canpai/pkg/scheduler/solver"
	"github.com/canpai/canpai/pkg/stats"
)

// ScheduleHandler 排班处理器
type ScheduleHandler struct {
	db     *database.DB
	loader *loader.Loader
	engine *solver.Engine
	runs   *repository.GenerationRunRepository
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(db *database.DB, l *loader.Loader, engine *solver.Engine) *ScheduleHandler {
	return &ScheduleHandler{
		db:     db,
		loader: l,
		engine: engine,
		runs:   repository.NewGenerationRunRepository(db),
	}
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	RestaurantID string              `json:"restaurant_id"`
	WeekStart    string              `json:"week_start"` // YYYY-MM-DD，必须是周一
	Options      *constraint.Options `json:"options,omitempty"`
	Persist      bool                `json:"persist,omitempty"` // 是否直接落库
}

// ShiftOutput 班次输出
type ShiftOutput struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Position   string  `json:"position,omitempty"`
	Hours      float64 `json:"hours"`
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	Success   bool                 `json:"success"`
	Shifts    []ShiftOutput        `json:"shifts"`
	Warnings  []string             `json:"warnings"`
	Stats     *stats.ScheduleStats `json:"stats"`
	Persisted bool                 `json:"persisted"`
	Duration  string               `json:"duration"`
}

// Generate 生成排班
// 生成本身总会返回方案（可能为空方案加警告）；只有输入不合法或落库失败才报错
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	restaurantID, appErr := validateGenerateRequest(&req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	opts := constraint.Options{}
	if req.Options != nil {
		opts = *req.Options
	}

	start := time.Now()

	sc, err := h.loader.Load(r.Context(), restaurantID, req.WeekStart)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载排班上下文失败"))
		return
	}

	result := h.engine.Generate(sc, opts)
	duration := time.Since(start)

	metrics.RecordScheduleGeneration(req.RestaurantID, len(result.Shifts) > 0, duration)
	if result.Stats != nil {
		metrics.SetFairnessScore(req.RestaurantID, result.Stats.FairnessScore)
	}

	persisted := false
	if req.Persist && len(result.Shifts) > 0 {
		err := h.db.Transaction(r.Context(), func(tx *sql.Tx) error {
			return repository.NewShiftRepository(tx).BulkCreate(r.Context(), restaurantID, result.Shifts)
		})
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "排班落库失败"))
			return
		}
		persisted = true
	}

	h.recordRun(r, restaurantID, &req, result, duration)

	shifts := make([]ShiftOutput, len(result.Shifts))
	for i, s := range result.Shifts {
		out := ShiftOutput{
			ID:         s.ID.String(),
			EmployeeID: s.EmployeeID.String(),
			Date:       s.Date,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			Hours:      s.WorkingHours(),
		}
		if s.Position != nil {
			out.Position = *s.Position
		}
		shifts[i] = out
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		Success:   true,
		Shifts:    shifts,
		Warnings:  result.Warnings,
		Stats:     result.Stats,
		Persisted: persisted,
		Duration:  duration.String(),
	})
}

// recordRun 写入生成审计记录，失败只记日志
func (h *ScheduleHandler) recordRun(r *http.Request, restaurantID uuid.UUID, req *GenerateRequest, result *solver.Result, duration time.Duration) {
	run := &repository.GenerationRun{
		RestaurantID: restaurantID,
		WeekStart:    req.WeekStart,
		ShiftCount:   len(result.Shifts),
		WarningCount: len(result.Warnings),
		DurationMs:   duration.Milliseconds(),
	}
	if result.Stats != nil {
		run.FairnessScore = result.Stats.FairnessScore
	}
	if req.Options != nil {
		run.Options = map[string]interface{}{
			"prioritize_fairness": req.Options.PrioritizeFairness,
			"prioritize_cost":     req.Options.PrioritizeCost,
			"allow_overtime":      req.Options.AllowOvertime,
		}
	}

	if err := h.runs.Create(r.Context(), run); err != nil {
		logger.WithContext(r.Context()).Warn().Err(err).Msg("写入生成记录失败")
	}
}

// ListRuns 查询最近的生成记录
func (h *ScheduleHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	restaurantID, err := uuid.Parse(r.URL.Query().Get("restaurant_id"))
	if err != nil {
		respondError(w, errors.InvalidInput("restaurant_id", "无效的餐厅ID格式"))
		return
	}

	runs, listErr := h.runs.ListByRestaurant(r.Context(), restaurantID, 20)
	if listErr != nil {
		respondError(w, errors.Wrap(listErr, errors.CodeDatabaseError, "查询生成记录失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// validateGenerateRequest 验证生成请求
func validateGenerateRequest(req *GenerateRequest) (uuid.UUID, *errors.AppError) {
	ve := &errors.ValidationErrors{}

	if req.RestaurantID == "" {
		ve.Add("restaurant_id", "餐厅ID不能为空")
	}
	if req.WeekStart == "" {
		ve.Add("week_start", "周起始日不能为空")
	}
	if ve.HasErrors() {
		return uuid.Nil, ve.ToAppError()
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		return uuid.Nil, errors.InvalidInput("restaurant_id", "无效的餐厅ID格式")
	}

	if _, err := time.Parse(model.DateLayout, req.WeekStart); err != nil {
		return uuid.Nil, errors.InvalidInput("week_start", "日期格式无效，应为YYYY-MM-DD")
	}
	if !model.IsMonday(req.WeekStart) {
		return uuid.Nil, errors.InvalidWeekStart(req.WeekStart)
	}

	return restaurantID, nil
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
		"fields":  err.Fields,
	})
}
