// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotelplan/hotelplan/pkg/model"
)

// ScheduleRepository 周排班仓储
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository 创建周排班仓储
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create 保存周排班及其全部班次
// 排班与班次写在同一事务语义下由调用方的事务封装保证
func (r *ScheduleRepository) Create(ctx context.Context, schedule *model.Schedule) error {
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	now := time.Now()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	query := `
		INSERT INTO schedules (
			id, property_id, week_start, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		schedule.ID, schedule.PropertyID, schedule.WeekStart, schedule.Status,
		schedule.CreatedAt, schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存排班失败: %w", err)
	}

	if err := r.insertAssignments(ctx, schedule.ID, schedule.Assignments); err != nil {
		return err
	}

	return nil
}

// insertAssignments 批量写入班次
func (r *ScheduleRepository) insertAssignments(ctx context.Context, scheduleID uuid.UUID, assignments []model.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(assignments))
	args := make([]interface{}, 0, len(assignments)*4+1)
	args = append(args, scheduleID)
	argIndex := 2

	for _, a := range assignments {
		valueStrings = append(valueStrings,
			fmt.Sprintf("($1, $%d, $%d, $%d)", argIndex, argIndex+1, argIndex+2))
		args = append(args, a.StaffID, int(a.Day), string(a.Shift))
		argIndex += 3
	}

	query := fmt.Sprintf(`
		INSERT INTO schedule_assignments (schedule_id, staff_id, day, shift)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("保存班次失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取周排班（含全部班次）
func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	query := `
		SELECT id, property_id, week_start, status, created_at, updated_at
		FROM schedules
		WHERE id = $1 AND deleted_at IS NULL
	`

	schedule, err := r.scanSchedule(r.db.QueryRowContext(ctx, query, id))
	if err != nil || schedule == nil {
		return schedule, err
	}

	schedule.Assignments, err = r.loadAssignments(ctx, schedule.ID)
	return schedule, err
}

// GetByWeek 获取酒店某周的排班
func (r *ScheduleRepository) GetByWeek(ctx context.Context, propertyID uuid.UUID, weekStart string) (*model.Schedule, error) {
	query := `
		SELECT id, property_id, week_start, status, created_at, updated_at
		FROM schedules
		WHERE property_id = $1 AND week_start = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	schedule, err := r.scanSchedule(r.db.QueryRowContext(ctx, query, propertyID, weekStart))
	if err != nil || schedule == nil {
		return schedule, err
	}

	schedule.Assignments, err = r.loadAssignments(ctx, schedule.ID)
	return schedule, err
}

// List 查询排班列表（不含班次明细）
func (r *ScheduleRepository) List(ctx context.Context, filter ListFilter) ([]*model.Schedule, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.PropertyID != nil {
		conditions = append(conditions, fmt.Sprintf("property_id = $%d", argIndex))
		args = append(args, *filter.PropertyID)
		argIndex++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("week_start >= $%d", argIndex))
		args = append(args, filter.StartDate)
		argIndex++
	}

	if filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("week_start <= $%d", argIndex))
		args = append(args, filter.EndDate)
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM schedules WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "week_start"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "desc"
	}

	query := fmt.Sprintf(`
		SELECT id, property_id, week_start, status, created_at, updated_at
		FROM schedules
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, orderBy, orderDir, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var schedules []*model.Schedule
	for rows.Next() {
		schedule := &model.Schedule{}
		if err := rows.Scan(
			&schedule.ID, &schedule.PropertyID, &schedule.WeekStart, &schedule.Status,
			&schedule.CreatedAt, &schedule.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("扫描排班数据失败: %w", err)
		}
		schedules = append(schedules, schedule)
	}

	return schedules, total, nil
}

// Delete 软删除周排班
func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE schedules SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除排班失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("排班不存在")
	}

	return nil
}

// loadAssignments 加载排班的全部班次
func (r *ScheduleRepository) loadAssignments(ctx context.Context, scheduleID uuid.UUID) ([]model.Assignment, error) {
	query := `
		SELECT staff_id, day, shift
		FROM schedule_assignments
		WHERE schedule_id = $1
		ORDER BY day, shift, staff_id
	`

	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		var day int
		var shift string
		if err := rows.Scan(&a.StaffID, &day, &shift); err != nil {
			return nil, fmt.Errorf("扫描班次数据失败: %w", err)
		}
		a.Day = model.Weekday(day)
		a.Shift = model.ShiftKind(shift)
		assignments = append(assignments, a)
	}

	return assignments, nil
}

// scanSchedule 扫描单行排班数据
func (r *ScheduleRepository) scanSchedule(row *sql.Row) (*model.Schedule, error) {
	schedule := &model.Schedule{}

	err := row.Scan(
		&schedule.ID, &schedule.PropertyID, &schedule.WeekStart, &schedule.Status,
		&schedule.CreatedAt, &schedule.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描排班数据失败: %w", err)
	}

	return schedule, nil
}
