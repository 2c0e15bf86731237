// Package constraint 将一周排班规则编译为可检查的线性约束模型
//
// 模型中的决策变量为 (员工,天,班次) 的0/1变量，所有约束均为
// 单位系数的线性求和约束，独立于具体的求解后端。
package constraint

import (
	"fmt"

	"github.com/hotelplan/hotelplan/pkg/model"
)

// Kind 约束类型标识
type Kind string

const (
	KindUnavailable     Kind = "unavailable"      // 不可用员工强制为0
	KindDayExclusivity  Kind = "day_exclusivity"  // 每人每天至多一个班次
	KindWeeklyCap       Kind = "weekly_cap"       // 每周班次数不超过可工作天数
	KindConsecutiveCap  Kind = "consecutive_cap"  // 任意6天窗口内至多5天
	KindNightExclusive  Kind = "night_exclusive"  // 夜班仅限夜班合同接待员
	KindNightContract   Kind = "night_contract"   // 夜班合同仅限夜班
	KindNightHeadcount  Kind = "night_headcount"  // 夜班人数精确等于目标
	KindSupervisorFloor Kind = "supervisor_floor" // 白班至少一名主管
	KindDayHeadcount    Kind = "day_headcount"    // 白班人数下限（按可用性截断）
	KindConciergeSlot   Kind = "concierge_slot"   // 礼宾员仅限工作日早班
	KindCapacityCeiling Kind = "capacity_ceiling" // 单班次人数硬上限
)

// Sense 约束比较方向
type Sense string

const (
	SenseLE Sense = "<="
	SenseGE Sense = ">="
	SenseEQ Sense = "=="
)

// Constraint 单条线性约束：sum(vars) Sense Bound
type Constraint struct {
	Kind  Kind   `json:"kind"`
	Sense Sense  `json:"sense"`
	Bound int    `json:"bound"`
	Vars  []int  `json:"vars"`
	Label string `json:"label"`
}

// Holds 检查给定变量求和是否满足约束
func (c *Constraint) Holds(sum int) bool {
	switch c.Sense {
	case SenseLE:
		return sum <= c.Bound
	case SenseGE:
		return sum >= c.Bound
	default:
		return sum == c.Bound
	}
}

// Sum 计算约束在某个取值向量下的求和
func (c *Constraint) Sum(values []int8) int {
	sum := 0
	for _, v := range c.Vars {
		if values[v] == 1 {
			sum++
		}
	}
	return sum
}

// String 返回约束的可读描述
func (c *Constraint) String() string {
	return fmt.Sprintf("[%s] sum(%d vars) %s %d: %s", c.Kind, len(c.Vars), c.Sense, c.Bound, c.Label)
}

// Var 单个决策变量的含义
type Var struct {
	StaffIdx int             `json:"staff_idx"`
	Day      model.Weekday   `json:"day"`
	Shift    model.ShiftKind `json:"shift"`
}

// Model 一周排班的完整约束模型
type Model struct {
	Roster      model.Roster            `json:"-"`
	Table       *model.RequirementTable `json:"-"`
	Constraints []Constraint            `json:"constraints"`

	numStaff int
}

// NumVars 返回变量总数（员工数 × 7天 × 3班次）
func (m *Model) NumVars() int {
	return m.numStaff * 21
}

// NumStaff 返回员工数量
func (m *Model) NumStaff() int {
	return m.numStaff
}

// VarID 返回(员工,天,班次)对应的变量编号
func (m *Model) VarID(staffIdx int, day model.Weekday, shift model.ShiftKind) int {
	return staffIdx*21 + int(day)*3 + shiftOffset(shift)
}

// VarAt 返回变量编号对应的含义
func (m *Model) VarAt(id int) Var {
	return Var{
		StaffIdx: id / 21,
		Day:      model.Weekday((id % 21) / 3),
		Shift:    model.AllShifts[id%3],
	}
}

func shiftOffset(shift model.ShiftKind) int {
	switch shift {
	case model.ShiftMorning:
		return 0
	case model.ShiftAfternoon:
		return 1
	default:
		return 2
	}
}

// Violated 返回给定取值向量违反的所有约束
func (m *Model) Violated(values []int8) []*Constraint {
	var out []*Constraint
	for i := range m.Constraints {
		c := &m.Constraints[i]
		if !c.Holds(c.Sum(values)) {
			out = append(out, c)
		}
	}
	return out
}

// Feasible 检查取值向量是否满足全部约束
func (m *Model) Feasible(values []int8) bool {
	for i := range m.Constraints {
		c := &m.Constraints[i]
		if !c.Holds(c.Sum(values)) {
			return false
		}
	}
	return true
}

// ToSchedule 将取值向量转换为排班结果
func (m *Model) ToSchedule(values []int8) []model.Assignment {
	var out []model.Assignment
	for id, v := range values {
		if v != 1 {
			continue
		}
		meta := m.VarAt(id)
		out = append(out, model.Assignment{
			StaffID: m.Roster[meta.StaffIdx].ID,
			Day:     meta.Day,
			Shift:   meta.Shift,
		})
	}
	return out
}
