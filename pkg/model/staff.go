// Package model 定义周计划引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// Role 前台岗位
type Role string

const (
	RoleSupervisor   Role = "supervisor"   // 值班主管
	RoleReceptionist Role = "receptionist" // 接待员
	RoleConcierge    Role = "concierge"    // 礼宾员
)

// AllRoles 岗位全集（封闭枚举）
var AllRoles = [3]Role{RoleSupervisor, RoleReceptionist, RoleConcierge}

// Valid 检查岗位是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleSupervisor, RoleReceptionist, RoleConcierge:
		return true
	}
	return false
}

// ContractType 合同类型（决定每周应工作天数）
type ContractType string

const (
	ContractFullTime     ContractType = "full_time"      // 全职 5天
	ContractPartTime4Day ContractType = "part_time_4day" // 兼职 4天
	ContractPartTime3Day ContractType = "part_time_3day" // 兼职 3天
	ContractNight        ContractType = "night"          // 夜班 5天（仅夜班）
)

// ContractedDays 返回合同约定的每周工作天数
// 天数完全由合同类型决定，不允许偏离
func (c ContractType) ContractedDays() int {
	switch c {
	case ContractFullTime, ContractNight:
		return 5
	case ContractPartTime4Day:
		return 4
	case ContractPartTime3Day:
		return 3
	default:
		return 0
	}
}

// Valid 检查合同类型是否合法
func (c ContractType) Valid() bool {
	switch c {
	case ContractFullTime, ContractPartTime4Day, ContractPartTime3Day, ContractNight:
		return true
	}
	return false
}

// StaffMember 前台员工
type StaffMember struct {
	BaseModel
	PropertyID uuid.UUID    `json:"property_id" db:"property_id"`
	FirstName  string       `json:"first_name" db:"first_name"`
	LastName   string       `json:"last_name" db:"last_name"`
	Role       Role         `json:"role" db:"role"`
	Contract   ContractType `json:"contract_type" db:"contract_type"`
	Skills     []string     `json:"skills,omitempty" db:"skills"`

	// 本周可用性
	Available          bool   `json:"available" db:"available"`
	AbsenceDays        int    `json:"absence_days" db:"absence_days"` // 0-7
	UnavailabilityNote string `json:"unavailability_note,omitempty" db:"unavailability_note"`
}

// FullName 返回员工全名
func (s *StaffMember) FullName() string {
	return s.FirstName + " " + s.LastName
}

// ContractedDays 返回合同约定的每周工作天数
func (s *StaffMember) ContractedDays() int {
	return s.Contract.ContractedDays()
}

// MaxWorkableDays 返回本周实际可工作天数
// 不可用或缺勤满一周时为0，否则为合同天数减去缺勤天数（下限0）
func (s *StaffMember) MaxWorkableDays() int {
	if !s.Available || s.AbsenceDays >= 7 {
		return 0
	}
	d := s.ContractedDays() - s.AbsenceDays
	if d < 0 {
		return 0
	}
	return d
}

// IsNightContract 检查是否为夜班合同
func (s *StaffMember) IsNightContract() bool {
	return s.Contract == ContractNight
}

// IsDayCapable 检查是否可排白班（主管或非夜班接待员）
func (s *StaffMember) IsDayCapable() bool {
	if s.IsNightContract() {
		return false
	}
	return s.Role == RoleSupervisor || s.Role == RoleReceptionist
}

// HasSkill 检查员工是否具备某技能
func (s *StaffMember) HasSkill(skill string) bool {
	for _, sk := range s.Skills {
		if sk == skill {
			return true
		}
	}
	return false
}

// Roster 一周排班使用的员工名单快照
type Roster []*StaffMember

// ByID 按ID查找员工
func (r Roster) ByID(id uuid.UUID) *StaffMember {
	for _, s := range r {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// AvailableByRole 返回某岗位的可用员工
func (r Roster) AvailableByRole(role Role) Roster {
	var out Roster
	for _, s := range r {
		if s.Role == role && s.MaxWorkableDays() > 0 {
			out = append(out, s)
		}
	}
	return out
}

// AvailableNightReceptionists 返回可用的夜班接待员
func (r Roster) AvailableNightReceptionists() Roster {
	var out Roster
	for _, s := range r {
		if s.Role == RoleReceptionist && s.IsNightContract() && s.MaxWorkableDays() > 0 {
			out = append(out, s)
		}
	}
	return out
}

// AvailableDayReceptionists 返回可用的白班接待员（非夜班合同）
func (r Roster) AvailableDayReceptionists() Roster {
	var out Roster
	for _, s := range r {
		if s.Role == RoleReceptionist && !s.IsNightContract() && s.MaxWorkableDays() > 0 {
			out = append(out, s)
		}
	}
	return out
}

// SampleRoster 创建一个合规的15人示例团队
// 5名主管、6名白班接待员、3名夜班接待员、1名礼宾员
func SampleRoster(propertyID uuid.UUID) Roster {
	type seed struct {
		first, last string
		role        Role
		contract    ContractType
	}
	seeds := []seed{
		{"Marie", "Dupont", RoleSupervisor, ContractFullTime},
		{"Pierre", "Martin", RoleSupervisor, ContractFullTime},
		{"Sophie", "Bernard", RoleSupervisor, ContractFullTime},
		{"Luc", "Moreau", RoleSupervisor, ContractFullTime},
		{"Claire", "Petit", RoleSupervisor, ContractFullTime},
		{"Julien", "Roux", RoleReceptionist, ContractFullTime},
		{"Emma", "Fournier", RoleReceptionist, ContractFullTime},
		{"Hugo", "Girard", RoleReceptionist, ContractFullTime},
		{"Lea", "Bonnet", RoleReceptionist, ContractFullTime},
		{"Nina", "Lambert", RoleReceptionist, ContractPartTime4Day},
		{"Paul", "Rousseau", RoleReceptionist, ContractPartTime3Day},
		{"Marc", "Blanc", RoleReceptionist, ContractNight},
		{"Julie", "Henry", RoleReceptionist, ContractNight},
		{"Tom", "Garnier", RoleReceptionist, ContractNight},
		{"Alice", "Faure", RoleConcierge, ContractFullTime},
	}

	roster := make(Roster, 0, len(seeds))
	for _, s := range seeds {
		roster = append(roster, &StaffMember{
			BaseModel:  NewBaseModel(),
			PropertyID: propertyID,
			FirstName:  s.first,
			LastName:   s.last,
			Role:       s.role,
			Contract:   s.contract,
			Available:  true,
		})
	}
	return roster
}
