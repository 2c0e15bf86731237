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
	"github.com/hotelplan/hotelplan/pkg/model"
)

// StaffRepository 员工仓储
type StaffRepository struct {
	db DB
}

// NewStaffRepository 创建员工仓储
func NewStaffRepository(db DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create 创建员工
func (r *StaffRepository) Create(ctx context.Context, staff *model.StaffMember) error {
	if staff.ID == uuid.Nil {
		staff.ID = uuid.New()
	}
	now := time.Now()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	skillsJSON, _ := json.Marshal(staff.Skills)

	query := `
		INSERT INTO staff_members (
			id, property_id, first_name, last_name, role, contract_type,
			skills, available, absence_days, unavailability_note,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		staff.ID, staff.PropertyID, staff.FirstName, staff.LastName, staff.Role, staff.Contract,
		skillsJSON, staff.Available, staff.AbsenceDays, staff.UnavailabilityNote,
		staff.CreatedAt, staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取员工
func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.StaffMember, error) {
	query := `
		SELECT id, property_id, first_name, last_name, role, contract_type,
			skills, available, absence_days, unavailability_note,
			created_at, updated_at
		FROM staff_members
		WHERE id = $1 AND deleted_at IS NULL
	`

	return r.scanStaff(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新员工
func (r *StaffRepository) Update(ctx context.Context, staff *model.StaffMember) error {
	staff.UpdatedAt = time.Now()

	skillsJSON, _ := json.Marshal(staff.Skills)

	query := `
		UPDATE staff_members SET
			first_name = $2, last_name = $3, role = $4, contract_type = $5,
			skills = $6, available = $7, absence_days = $8, unavailability_note = $9,
			updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		staff.ID, staff.FirstName, staff.LastName, staff.Role, staff.Contract,
		skillsJSON, staff.Available, staff.AbsenceDays, staff.UnavailabilityNote,
		staff.UpdatedAt,
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
func (r *StaffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE staff_members SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

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
func (r *StaffRepository) List(ctx context.Context, filter ListFilter) ([]*model.StaffMember, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.PropertyID != nil {
		conditions = append(conditions, fmt.Sprintf("property_id = $%d", argIndex))
		args = append(args, *filter.PropertyID)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	// 岗位过滤
	if role, ok := filter.Extra["role"].(string); ok && role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIndex))
		args = append(args, role)
		argIndex++
	}

	// 合同过滤
	if contract, ok := filter.Extra["contract_type"].(string); ok && contract != "" {
		conditions = append(conditions, fmt.Sprintf("contract_type = $%d", argIndex))
		args = append(args, contract)
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	// 查询总数
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM staff_members WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	// 查询列表
	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "desc"
	}

	query := fmt.Sprintf(`
		SELECT id, property_id, first_name, last_name, role, contract_type,
			skills, available, absence_days, unavailability_note,
			created_at, updated_at
		FROM staff_members
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

	var members []*model.StaffMember
	for rows.Next() {
		staff, err := r.scanStaffRow(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, staff)
	}

	return members, total, nil
}

// LoadRoster 加载酒店的完整员工名单（排班输入快照）
func (r *StaffRepository) LoadRoster(ctx context.Context, propertyID uuid.UUID) (model.Roster, error) {
	filter := DefaultListFilter().WithPropertyID(propertyID).WithLimit(10000)
	filter.OrderBy = "created_at"
	filter.OrderDir = "asc"

	members, _, err := r.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return model.Roster(members), nil
}

// SetAvailability 更新员工本周可用性
func (r *StaffRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool, absenceDays int, note string) error {
	query := `
		UPDATE staff_members SET
			available = $2, absence_days = $3, unavailability_note = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, available, absenceDays, note, time.Now())
	if err != nil {
		return fmt.Errorf("更新可用性失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// scanStaff 扫描单行员工数据
func (r *StaffRepository) scanStaff(row *sql.Row) (*model.StaffMember, error) {
	staff := &model.StaffMember{}
	var skillsJSON []byte

	err := row.Scan(
		&staff.ID, &staff.PropertyID, &staff.FirstName, &staff.LastName, &staff.Role, &staff.Contract,
		&skillsJSON, &staff.Available, &staff.AbsenceDays, &staff.UnavailabilityNote,
		&staff.CreatedAt, &staff.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描员工数据失败: %w", err)
	}

	json.Unmarshal(skillsJSON, &staff.Skills)

	return staff, nil
}

// scanStaffRow 扫描Rows中的员工数据
func (r *StaffRepository) scanStaffRow(rows *sql.Rows) (*model.StaffMember, error) {
	staff := &model.StaffMember{}
	var skillsJSON []byte

	err := rows.Scan(
		&staff.ID, &staff.PropertyID, &staff.FirstName, &staff.LastName, &staff.Role, &staff.Contract,
		&skillsJSON, &staff.Available, &staff.AbsenceDays, &staff.UnavailabilityNote,
		&staff.CreatedAt, &staff.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描员工数据失败: %w", err)
	}

	json.Unmarshal(skillsJSON, &staff.Skills)

	return staff, nil
}
