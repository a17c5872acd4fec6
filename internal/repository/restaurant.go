// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/canpai/canpai/pkg/model"
)

// RestaurantRepository 餐厅仓储
type RestaurantRepository struct {
	db DB
}

// NewRestaurantRepository 创建餐厅仓储
func NewRestaurantRepository(db DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// Create 创建餐厅
func (r *RestaurantRepository) Create(ctx context.Context, rest *model.Restaurant) error {
	if rest.ID == uuid.Nil {
		rest.ID = uuid.New()
	}
	now := time.Now()
	rest.CreatedAt = now
	rest.UpdatedAt = now

	query := `
		INSERT INTO restaurants (id, name, code, timezone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		rest.ID, rest.Name, rest.Code, rest.Timezone, rest.Address, rest.CreatedAt, rest.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建餐厅失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取餐厅
func (r *RestaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	query := `
		SELECT id, name, code, timezone, address, created_at, updated_at
		FROM restaurants
		WHERE id = $1 AND deleted_at IS NULL
	`

	rest := &model.Restaurant{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rest.ID, &rest.Name, &rest.Code, &rest.Timezone, &rest.Address,
		&rest.CreatedAt, &rest.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询餐厅失败: %w", err)
	}

	return rest, nil
}

// GetByCode 根据编码获取餐厅
func (r *RestaurantRepository) GetByCode(ctx context.Context, code string) (*model.Restaurant, error) {
	query := `
		SELECT id, name, code, timezone, address, created_at, updated_at
		FROM restaurants
		WHERE code = $1 AND deleted_at IS NULL
	`

	rest := &model.Restaurant{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&rest.ID, &rest.Name, &rest.Code, &rest.Timezone, &rest.Address,
		&rest.CreatedAt, &rest.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询餐厅失败: %w", err)
	}

	return rest, nil
}

// List 查询餐厅列表
func (r *RestaurantRepository) List(ctx context.Context, filter ListFilter) ([]*model.Restaurant, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM restaurants WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, code, timezone, address, created_at, updated_at
		FROM restaurants
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var restaurants []*model.Restaurant
	for rows.Next() {
		rest := &model.Restaurant{}
		if err := rows.Scan(
			&rest.ID, &rest.Name, &rest.Code, &rest.Timezone, &rest.Address,
			&rest.CreatedAt, &rest.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("扫描行失败: %w", err)
		}
		restaurants = append(restaurants, rest)
	}

	return restaurants, total, nil
}

// BusinessHoursRepository 营业时间仓储
type BusinessHoursRepository struct {
	db DB
}

// NewBusinessHoursRepository 创建营业时间仓储
func NewBusinessHoursRepository(db DB) *BusinessHoursRepository {
	return &BusinessHoursRepository{db: db}
}

// ListByRestaurant 获取餐厅的全部营业时间配置
func (r *BusinessHoursRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*model.BusinessHours, error) {
	query := `
		SELECT id, restaurant_id, day_of_week, open_time, close_time, is_closed, created_at, updated_at
		FROM business_hours
		WHERE restaurant_id = $1 AND deleted_at IS NULL
		ORDER BY day_of_week
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("查询营业时间失败: %w", err)
	}
	defer rows.Close()

	var hours []*model.BusinessHours
	for rows.Next() {
		bh := &model.BusinessHours{}
		if err := rows.Scan(
			&bh.ID, &bh.RestaurantID, &bh.DayOfWeek, &bh.OpenTime, &bh.CloseTime,
			&bh.IsClosed, &bh.CreatedAt, &bh.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		hours = append(hours, bh)
	}

	return hours, nil
}

// Upsert 按餐厅和星期写入营业时间
func (r *BusinessHoursRepository) Upsert(ctx context.Context, bh *model.BusinessHours) error {
	if bh.ID == uuid.Nil {
		bh.ID = uuid.New()
	}
	now := time.Now()
	bh.UpdatedAt = now

	query := `
		INSERT INTO business_hours (id, restaurant_id, day_of_week, open_time, close_time, is_closed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (restaurant_id, day_of_week)
		DO UPDATE SET open_time = $4, close_time = $5, is_closed = $6, updated_at = $7
	`

	_, err := r.db.ExecContext(ctx, query,
		bh.ID, bh.RestaurantID, bh.DayOfWeek, bh.OpenTime, bh.CloseTime, bh.IsClosed, now,
	)
	if err != nil {
		return fmt.Errorf("写入营业时间失败: %w", err)
	}

	return nil
}

// StaffingRepository 人员配置需求仓储
type StaffingRepository struct {
	db DB
}

// NewStaffingRepository 创建人员配置需求仓储
func NewStaffingRepository(db DB) *StaffingRepository {
	return &StaffingRepository{db: db}
}

// ListByRestaurant 获取餐厅的全部人员配置需求
func (r *StaffingRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*model.StaffingRequirement, error) {
	query := `
		SELECT id, restaurant_id, day_of_week, start_time, end_time, min_staff, optimal_staff, position, created_at, updated_at
		FROM staffing_requirements
		WHERE restaurant_id = $1 AND deleted_at IS NULL
		ORDER BY day_of_week, start_time
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("查询人员配置需求失败: %w", err)
	}
	defer rows.Close()

	var reqs []*model.StaffingRequirement
	for rows.Next() {
		req := &model.StaffingRequirement{}
		if err := rows.Scan(
			&req.ID, &req.RestaurantID, &req.DayOfWeek, &req.StartTime, &req.EndTime,
			&req.MinStaff, &req.OptimalStaff, &req.Position, &req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		reqs = append(reqs, req)
	}

	return reqs, nil
}

// Create 创建人员配置需求
func (r *StaffingRepository) Create(ctx context.Context, req *model.StaffingRequirement) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	query := `
		INSERT INTO staffing_requirements (
			id, restaurant_id, day_of_week, start_time, end_time,
			min_staff, optimal_staff, position, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.RestaurantID, req.DayOfWeek, req.StartTime, req.EndTime,
		req.MinStaff, req.OptimalStaff, req.Position, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建人员配置需求失败: %w", err)
	}

	return nil
}
