// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/canpai/canpai/pkg/model"
)

// ShiftRepository 班次仓储
type ShiftRepository struct {
	db DB
}

// NewShiftRepository 创建班次仓储
func NewShiftRepository(db DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// Create 创建班次
func (r *ShiftRepository) Create(ctx context.Context, shift *model.Shift) error {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	now := time.Now()
	shift.CreatedAt = now
	shift.UpdatedAt = now

	query := `
		INSERT INTO shifts (
			id, restaurant_id, employee_id, date, start_time, end_time,
			position, notes, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		shift.ID, shift.RestaurantID, shift.EmployeeID, shift.Date,
		shift.StartTime, shift.EndTime, shift.Position, shift.Notes,
		shift.Status, shift.CreatedAt, shift.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建班次失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取班次
func (r *ShiftRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	query := `
		SELECT id, restaurant_id, employee_id, date, start_time, end_time,
			position, notes, status, created_at, updated_at
		FROM shifts
		WHERE id = $1 AND deleted_at IS NULL
	`

	shift := &model.Shift{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&shift.ID, &shift.RestaurantID, &shift.EmployeeID, &shift.Date,
		&shift.StartTime, &shift.EndTime, &shift.Position, &shift.Notes,
		&shift.Status, &shift.CreatedAt, &shift.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}

	return shift, nil
}

// ListByDateRange 获取餐厅在日期范围内的班次
func (r *ShiftRepository) ListByDateRange(ctx context.Context, restaurantID uuid.UUID, startDate, endDate string) ([]*model.Shift, error) {
	query := `
		SELECT id, restaurant_id, employee_id, date, start_time, end_time,
			position, notes, status, created_at, updated_at
		FROM shifts
		WHERE restaurant_id = $1 AND date >= $2 AND date <= $3 AND deleted_at IS NULL
		ORDER BY date, start_time
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	defer rows.Close()

	return r.collectShifts(rows)
}

// ListByEmployee 获取员工在日期范围内的班次
func (r *ShiftRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID, startDate, endDate string) ([]*model.Shift, error) {
	query := `
		SELECT id, restaurant_id, employee_id, date, start_time, end_time,
			position, notes, status, created_at, updated_at
		FROM shifts
		WHERE employee_id = $1 AND date >= $2 AND date <= $3 AND deleted_at IS NULL
		ORDER BY date, start_time
	`

	rows, err := r.db.QueryContext(ctx, query, employeeID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	defer rows.Close()

	return r.collectShifts(rows)
}

// BulkCreate 批量落库生成的班次
// 一次生成的结果整体写入，调用方通常包在事务里
func (r *ShiftRepository) BulkCreate(ctx context.Context, restaurantID uuid.UUID, shifts []*model.ScheduleShift) error {
	if len(shifts) == 0 {
		return nil
	}

	var values []string
	var args []interface{}
	argIndex := 1

	now := time.Now()
	for _, s := range shifts {
		id := s.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			argIndex, argIndex+1, argIndex+2, argIndex+3, argIndex+4, argIndex+5,
			argIndex+6, argIndex+7, argIndex+8, argIndex+9, argIndex+10,
		))
		args = append(args,
			id, restaurantID, s.EmployeeID, s.Date, s.StartTime, s.EndTime,
			s.Position, s.Notes, model.ShiftStatusScheduled, now, now,
		)
		argIndex += 11
	}

	query := fmt.Sprintf(`
		INSERT INTO shifts (
			id, restaurant_id, employee_id, date, start_time, end_time,
			position, notes, status, created_at, updated_at
		) VALUES %s
	`, strings.Join(values, ", "))

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("批量创建班次失败: %w", err)
	}

	return nil
}

// UpdateStatus 更新班次状态
func (r *ShiftRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE shifts SET status = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("更新班次状态失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("班次不存在")
	}

	return nil
}

// Delete 软删除班次
func (r *ShiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE shifts SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除班次失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("班次不存在")
	}

	return nil
}

// collectShifts 收集查询结果
func (r *ShiftRepository) collectShifts(rows *sql.Rows) ([]*model.Shift, error) {
	var shifts []*model.Shift
	for rows.Next() {
		shift := &model.Shift{}
		if err := rows.Scan(
			&shift.ID, &shift.RestaurantID, &shift.EmployeeID, &shift.Date,
			&shift.StartTime, &shift.EndTime, &shift.Position, &shift.Notes,
			&shift.Status, &shift.CreatedAt, &shift.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		shifts = append(shifts, shift)
	}
	return shifts, nil
}

// GenerationRun 一次排班生成的审计记录
type GenerationRun struct {
	ID            uuid.UUID              `json:"id"`
	RestaurantID  uuid.UUID              `json:"restaurant_id"`
	WeekStart     string                 `json:"week_start"`
	Options       map[string]interface{} `json:"options"`
	ShiftCount    int                    `json:"shift_count"`
	WarningCount  int                    `json:"warning_count"`
	FairnessScore float64                `json:"fairness_score"`
	DurationMs    int64                  `json:"duration_ms"`
	CreatedAt     time.Time              `json:"created_at"`
}

// GenerationRunRepository 生成审计仓储
type GenerationRunRepository struct {
	db DB
}

// NewGenerationRunRepository 创建生成审计仓储
func NewGenerationRunRepository(db DB) *GenerationRunRepository {
	return &GenerationRunRepository{db: db}
}

// Create 记录一次生成
func (r *GenerationRunRepository) Create(ctx context.Context, run *GenerationRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.CreatedAt = time.Now()

	optionsJSON, _ := json.Marshal(run.Options)

	query := `
		INSERT INTO generation_runs (
			id, restaurant_id, week_start, options, shift_count,
			warning_count, fairness_score, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.RestaurantID, run.WeekStart, optionsJSON, run.ShiftCount,
		run.WarningCount, run.FairnessScore, run.DurationMs, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("记录排班生成失败: %w", err)
	}

	return nil
}

// ListByRestaurant 获取餐厅最近的生成记录
func (r *GenerationRunRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit int) ([]*GenerationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, restaurant_id, week_start, options, shift_count,
			warning_count, fairness_score, duration_ms, created_at
		FROM generation_runs
		WHERE restaurant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询生成记录失败: %w", err)
	}
	defer rows.Close()

	var runs []*GenerationRun
	for rows.Next() {
		run := &GenerationRun{}
		var optionsJSON []byte
		if err := rows.Scan(
			&run.ID, &run.RestaurantID, &run.WeekStart, &optionsJSON, &run.ShiftCount,
			&run.WarningCount, &run.FairnessScore, &run.DurationMs, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		json.Unmarshal(optionsJSON, &run.Options)
		runs = append(runs, run)
	}

	return runs, nil
}
