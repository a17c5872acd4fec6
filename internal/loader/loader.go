// Package loader 负责为排班生成装配只读上下文
// 一次加载覆盖员工、偏好、不可用时段、营业时间、人员配置需求、
// 月度既有班次与休假申请；单项失败降级为空数据并告警，不中断生成
package loader

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/canpai/canpai/pkg/logger"
	"github.com/canpai/canpai/pkg/model"
	"github.com/canpai/canpai/pkg/scheduler/constraint"
)

// EmployeeStore 员工读取接口
type EmployeeStore interface {
	ListSchedulable(ctx context.Context, restaurantID uuid.UUID) ([]*model.Employee, error)
}

// PreferenceStore 偏好读取接口
type PreferenceStore interface {
	MapByRestaurant(ctx context.Context, restaurantID uuid.UUID) (map[uuid.UUID]*model.EmployeePreferences, error)
}

// AvailabilityStore 不可用时段读取接口
type AvailabilityStore interface {
	MapByRestaurant(ctx context.Context, restaurantID uuid.UUID) (map[uuid.UUID][]*model.EmployeeAvailability, error)
}

// BusinessHoursStore 营业时间读取接口
type BusinessHoursStore interface {
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*model.BusinessHours, error)
}

// StaffingStore 人员配置需求读取接口
type StaffingStore interface {
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*model.StaffingRequirement, error)
}

// ShiftStore 既有班次读取接口
type ShiftStore interface {
	ListByDateRange(ctx context.Context, restaurantID uuid.UUID, startDate, endDate string) ([]*model.Shift, error)
}

// TimeOffStore 休假申请读取接口
type TimeOffStore interface {
	MapApprovedOverlapping(ctx context.Context, restaurantID uuid.UUID, startDate, endDate string) (map[uuid.UUID][]*model.TimeOffRequest, error)
}

// Loader 上下文加载器
type Loader struct {
	employees     EmployeeStore
	preferences   PreferenceStore
	availability  AvailabilityStore
	businessHours BusinessHoursStore
	staffing      StaffingStore
	shifts        ShiftStore
	timeOff       TimeOffStore
	log           *logger.SchedulerLogger
}

// New 创建上下文加载器
func New(
	employees EmployeeStore,
	preferences PreferenceStore,
	availability AvailabilityStore,
	businessHours BusinessHoursStore,
	staffing StaffingStore,
	shifts ShiftStore,
	timeOff TimeOffStore,
	log *logger.SchedulerLogger,
) *Loader {
	if log == nil {
		log = logger.NewSchedulerLogger()
	}
	return &Loader{
		employees:     employees,
		preferences:   preferences,
		availability:  availability,
		businessHours: businessHours,
		staffing:      staffing,
		shifts:        shifts,
		timeOff:       timeOff,
		log:           log,
	}
}

// Load 装配目标周的排班上下文
// 七类数据并发加载，互不依赖；任一类失败按空数据处理并记录降级日志
func (l *Loader) Load(ctx context.Context, restaurantID uuid.UUID, weekStart string) (*constraint.Context, error) {
	sc := constraint.NewContext(restaurantID, weekStart)

	// 休息检查要看周一前一天，月度范围不够时向两端扩
	shiftStart, shiftEnd := model.MonthRange(weekStart)
	if prev := model.PreviousDate(weekStart); prev != "" && prev < shiftStart {
		shiftStart = prev
	}
	if sc.WeekEnd > shiftEnd {
		shiftEnd = sc.WeekEnd
	}

	var wg sync.WaitGroup
	wg.Add(7)

	go func() {
		defer wg.Done()
		employees, err := l.employees.ListSchedulable(ctx, restaurantID)
		if err != nil {
			l.log.LoadDegraded("employees", err)
			return
		}
		sc.Employees = employees
	}()

	go func() {
		defer wg.Done()
		prefs, err := l.preferences.MapByRestaurant(ctx, restaurantID)
		if err != nil {
			l.log.LoadDegraded("preferences", err)
			return
		}
		sc.Preferences = prefs
	}()

	go func() {
		defer wg.Done()
		availability, err := l.availability.MapByRestaurant(ctx, restaurantID)
		if err != nil {
			l.log.LoadDegraded("availability", err)
			return
		}
		sc.Availability = availability
	}()

	go func() {
		defer wg.Done()
		hours, err := l.businessHours.ListByRestaurant(ctx, restaurantID)
		if err != nil {
			l.log.LoadDegraded("business_hours", err)
			return
		}
		byDay := make(map[int]*model.BusinessHours, len(hours))
		for _, bh := range hours {
			byDay[bh.DayOfWeek] = bh
		}
		sc.BusinessHours = byDay
	}()

	go func() {
		defer wg.Done()
		reqs, err := l.staffing.ListByRestaurant(ctx, restaurantID)
		if err != nil {
			l.log.LoadDegraded("staffing_requirements", err)
			return
		}
		sc.Requirements = reqs
	}()

	go func() {
		defer wg.Done()
		shifts, err := l.shifts.ListByDateRange(ctx, restaurantID, shiftStart, shiftEnd)
		if err != nil {
			l.log.LoadDegraded("month_shifts", err)
			return
		}
		sc.SetMonthShifts(shifts)
	}()

	go func() {
		defer wg.Done()
		timeOff, err := l.timeOff.MapApprovedOverlapping(ctx, restaurantID, weekStart, sc.WeekEnd)
		if err != nil {
			l.log.LoadDegraded("time_off", err)
			return
		}
		sc.TimeOff = timeOff
	}()

	wg.Wait()
	return sc, nil
}
