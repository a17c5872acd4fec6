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

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, emp *model.Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	now := time.Now()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	query := `
		INSERT INTO employees (
			id, restaurant_id, name, email, role, position, hourly_rate, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.RestaurantID, emp.Name, emp.Email, emp.Role,
		emp.Position, emp.HourlyRate, emp.IsActive, emp.CreatedAt, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取员工
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	query := `
		SELECT id, restaurant_id, name, email, role, position, hourly_rate, is_active, created_at, updated_at
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	return r.scanEmployee(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新员工
func (r *EmployeeRepository) Update(ctx context.Context, emp *model.Employee) error {
	emp.UpdatedAt = time.Now()

	query := `
		UPDATE employees SET
			name = $2, email = $3, role = $4, position = $5,
			hourly_rate = $6, is_active = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Email, emp.Role, emp.Position,
		emp.HourlyRate, emp.IsActive, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// Delete 软删除员工
func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE employees SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// List 查询员工列表
func (r *EmployeeRepository) List(ctx context.Context, filter ListFilter) ([]*model.Employee, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.RestaurantID != nil {
		conditions = append(conditions, fmt.Sprintf("restaurant_id = $%d", argIndex))
		args = append(args, *filter.RestaurantID)
		argIndex++
	}

	if filter.Status == "active" {
		conditions = append(conditions, "is_active = true")
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if role, ok := filter.Extra["role"].(string); ok && role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIndex))
		args = append(args, role)
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, restaurant_id, name, email, role, position, hourly_rate, is_active, created_at, updated_at
		FROM employees
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := r.scanEmployeeRow(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, emp)
	}

	return employees, total, nil
}

// ListSchedulable 获取餐厅下参与排班的员工
// 管理者不参与自动排班，在 SQL 层直接过滤掉
func (r *EmployeeRepository) ListSchedulable(ctx context.Context, restaurantID uuid.UUID) ([]*model.Employee, error) {
	query := `
		SELECT id, restaurant_id, name, email, role, position, hourly_rate, is_active, created_at, updated_at
		FROM employees
		WHERE restaurant_id = $1 AND is_active = true AND role != $2 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID, model.RoleManager)
	if err != nil {
		return nil, fmt.Errorf("查询可排班员工失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := r.scanEmployeeRow(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	return employees, nil
}

// scanEmployee 扫描单行员工数据
func (r *EmployeeRepository) scanEmployee(row *sql.Row) (*model.Employee, error) {
	emp := &model.Employee{}
	err := row.Scan(
		&emp.ID, &emp.RestaurantID, &emp.Name, &emp.Email, &emp.Role,
		&emp.Position, &emp.HourlyRate, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描员工数据失败: %w", err)
	}
	return emp, nil
}

// scanEmployeeRow 扫描Rows中的员工数据
func (r *EmployeeRepository) scanEmployeeRow(rows *sql.Rows) (*model.Employee, error) {
	emp := &model.Employee{}
	err := rows.Scan(
		&emp.ID, &emp.RestaurantID, &emp.Name, &emp.Email, &emp.Role,
		&emp.Position, &emp.HourlyRate, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描员工数据失败: %w", err)
	}
	return emp, nil
}

// PreferenceRepository 员工偏好仓储
type PreferenceRepository struct {
	db DB
}

// NewPreferenceRepository 创建员工偏好仓储
func NewPreferenceRepository(db DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByEmployee 获取员工偏好，不存在时返回 nil
func (r *PreferenceRepository) GetByEmployee(ctx context.Context, employeeID uuid.UUID) (*model.EmployeePreferences, error) {
	query := `
		SELECT employee_id, target_monthly_hours, preferred_start_time,
			preferred_shift_length, max_days_per_week, prefers_weekends
		FROM employee_preferences
		WHERE employee_id = $1
	`

	p := &model.EmployeePreferences{}
	err := r.db.QueryRowContext(ctx, query, employeeID).Scan(
		&p.EmployeeID, &p.TargetMonthlyHours, &p.PreferredStartTime,
		&p.PreferredShiftLength, &p.MaxDaysPerWeek, &p.PrefersWeekends,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询员工偏好失败: %w", err)
	}

	return p, nil
}

// MapByRestaurant 获取餐厅下全部员工偏好，按员工ID索引
func (r *PreferenceRepository) MapByRestaurant(ctx context.Context, restaurantID uuid.UUID) (map[uuid.UUID]*model.EmployeePreferences, error) {
	query := `
		SELECT p.employee_id, p.target_monthly_hours, p.preferred_start_time,
			p.preferred_shift_length, p.max_days_per_week, p.prefers_weekends
		FROM employee_preferences p
		JOIN employees e ON e.id = p.employee_id
		WHERE e.restaurant_id = $1 AND e.deleted_at IS NULL
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("查询员工偏好失败: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]*model.EmployeePreferences)
	for rows.Next() {
		p := &model.EmployeePreferences{}
		if err := rows.Scan(
			&p.EmployeeID, &p.TargetMonthlyHours, &p.PreferredStartTime,
			&p.PreferredShiftLength, &p.MaxDaysPerWeek, &p.PrefersWeekends,
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		result[p.EmployeeID] = p
	}

	return result, nil
}

// Upsert 写入员工偏好
func (r *PreferenceRepository) Upsert(ctx context.Context, p *model.EmployeePreferences) error {
	query := `
		INSERT INTO employee_preferences (
			employee_id, target_monthly_hours, preferred_start_time,
			preferred_shift_length, max_days_per_week, prefers_weekends
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (employee_id)
		DO UPDATE SET target_monthly_hours = $2, preferred_start_time = $3,
			preferred_shift_length = $4, max_days_per_week = $5, prefers_weekends = $6
	`

	_, err := r.db.ExecContext(ctx, query,
		p.EmployeeID, p.TargetMonthlyHours, p.PreferredStartTime,
		p.PreferredShiftLength, p.MaxDaysPerWeek, p.PrefersWeekends,
	)
	if err != nil {
		return fmt.Errorf("写入员工偏好失败: %w", err)
	}

	return nil
}

// AvailabilityRepository 员工不可用时段仓储
type AvailabilityRepository struct {
	db DB
}

// NewAvailabilityRepository 创建员工不可用时段仓储
func NewAvailabilityRepository(db DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// MapByRestaurant 获取餐厅下全部不可用时段，按员工ID分组
func (r *AvailabilityRepository) MapByRestaurant(ctx context.Context, restaurantID uuid.UUID) (map[uuid.UUID][]*model.EmployeeAvailability, error) {
	query := `
		SELECT id, employee_id, restaurant_id, recurring, day_of_week,
			specific_date, all_day, start_time, end_time, reason, created_at, updated_at
		FROM employee_availability
		WHERE restaurant_id = $1 AND deleted_at IS NULL
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("查询不可用时段失败: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]*model.EmployeeAvailability)
	for rows.Next() {
		a := &model.EmployeeAvailability{}
		if err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.RestaurantID, &a.Recurring, &a.DayOfWeek,
			&a.SpecificDate, &a.AllDay, &a.StartTime, &a.EndTime, &a.Reason,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		result[a.EmployeeID] = append(result[a.EmployeeID], a)
	}

	return result, nil
}

// Create 创建不可用时段
func (r *AvailabilityRepository) Create(ctx context.Context, a *model.EmployeeAvailability) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
		INSERT INTO employee_availability (
			id, employee_id, restaurant_id, recurring, day_of_week,
			specific_date, all_day, start_time, end_time, reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.EmployeeID, a.RestaurantID, a.Recurring, a.DayOfWeek,
		a.SpecificDate, a.AllDay, a.StartTime, a.EndTime, a.Reason, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建不可用时段失败: %w", err)
	}

	return nil
}

// TimeOffRepository 休假申请仓储
type TimeOffRepository struct {
	db DB
}

// NewTimeOffRepository 创建休假申请仓储
func NewTimeOffRepository(db DB) *TimeOffRepository {
	return &TimeOffRepository{db: db}
}

// MapApprovedOverlapping 获取与日期范围相交的已批准休假，按员工ID分组
func (r *TimeOffRepository) MapApprovedOverlapping(ctx context.Context, restaurantID uuid.UUID, startDate, endDate string) (map[uuid.UUID][]*model.TimeOffRequest, error) {
	query := `
		SELECT id, employee_id, restaurant_id, start_date, end_date, status, reason, created_at, updated_at
		FROM time_off_requests
		WHERE restaurant_id = $1 AND status = 'approved'
			AND start_date <= $3 AND end_date >= $2
			AND deleted_at IS NULL
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("查询休假申请失败: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]*model.TimeOffRequest)
	for rows.Next() {
		t := &model.TimeOffRequest{}
		if err := rows.Scan(
			&t.ID, &t.EmployeeID, &t.RestaurantID, &t.StartDate, &t.EndDate,
			&t.Status, &t.Reason, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		result[t.EmployeeID] = append(result[t.EmployeeID], t)
	}

	return result, nil
}

// Create 创建休假申请
func (r *TimeOffRepository) Create(ctx context.Context, t *model.TimeOffRequest) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	query := `
		INSERT INTO time_off_requests (
			id, employee_id, restaurant_id, start_date, end_date, status, reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.EmployeeID, t.RestaurantID, t.StartDate, t.EndDate, t.Status, t.Reason, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建休假申请失败: %w", err)
	}

	return nil
}

// UpdateStatus 更新休假申请状态
func (r *TimeOffRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE time_off_requests SET status = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("更新休假申请失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("休假申请不存在")
	}

	return nil
}
