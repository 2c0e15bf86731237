// Package constraint 将一周排班规则编译为可检查的线性约束模型
package constraint

import (
	"fmt"

	"github.com/hotelplan/hotelplan/pkg/errors"
	"github.com/hotelplan/hotelplan/pkg/model"
)

// MaxDayShiftStaff 单个白班的人数硬上限
const MaxDayShiftStaff = 4

// MaxDaysPerWindow 任意6天滑动窗口内的最大工作天数
const MaxDaysPerWindow = 5

// Build 根据员工快照与需求表构建约束模型
// 纯函数：不修改输入，不依赖求解后端
func Build(roster model.Roster, table *model.RequirementTable) (*Model, error) {
	if len(roster) == 0 {
		return nil, errors.Configuration("员工名单为空")
	}
	if table == nil {
		return nil, errors.Configuration("缺少需求表")
	}

	m := &Model{
		Roster:   roster,
		Table:    table,
		numStaff: len(roster),
	}

	m.addAvailabilityConstraints()
	m.addExclusivityConstraints()
	m.addWeeklyCapConstraints()
	m.addConsecutiveCapConstraints()
	m.addNightConstraints()
	m.addSupervisorConstraints()
	m.addHeadcountConstraints()
	m.addConciergeConstraints()
	m.addCapacityConstraints()

	return m, nil
}

func (m *Model) add(c Constraint) {
	m.Constraints = append(m.Constraints, c)
}

// allVarsFor 返回某员工的全部21个变量
func (m *Model) allVarsFor(staffIdx int) []int {
	vars := make([]int, 0, 21)
	for _, day := range model.AllWeekdays {
		for _, shift := range model.AllShifts {
			vars = append(vars, m.VarID(staffIdx, day, shift))
		}
	}
	return vars
}

// 规则1：不可用员工的所有变量强制为0
func (m *Model) addAvailabilityConstraints() {
	for i, s := range m.Roster {
		if s.Available {
			continue
		}
		m.add(Constraint{
			Kind:  KindUnavailable,
			Sense: SenseEQ,
			Bound: 0,
			Vars:  m.allVarsFor(i),
			Label: fmt.Sprintf("%s 本周不可用", s.FullName()),
		})
	}
}

// 规则2：每人每天至多一个班次
func (m *Model) addExclusivityConstraints() {
	for i, s := range m.Roster {
		for _, day := range model.AllWeekdays {
			vars := make([]int, 0, 3)
			for _, shift := range model.AllShifts {
				vars = append(vars, m.VarID(i, day, shift))
			}
			m.add(Constraint{
				Kind:  KindDayExclusivity,
				Sense: SenseLE,
				Bound: 1,
				Vars:  vars,
				Label: fmt.Sprintf("%s %s 至多一个班次", s.FullName(), day),
			})
		}
	}
}

// 规则3：每周班次数不超过本周可工作天数
func (m *Model) addWeeklyCapConstraints() {
	for i, s := range m.Roster {
		m.add(Constraint{
			Kind:  KindWeeklyCap,
			Sense: SenseLE,
			Bound: s.MaxWorkableDays(),
			Vars:  m.allVarsFor(i),
			Label: fmt.Sprintf("%s 每周至多 %d 天", s.FullName(), s.MaxWorkableDays()),
		})
	}
}

// 规则4：任意6天滑动窗口内至多5个工作日
func (m *Model) addConsecutiveCapConstraints() {
	for i, s := range m.Roster {
		for start := 0; start+6 <= 7; start++ {
			vars := make([]int, 0, 18)
			for d := start; d < start+6; d++ {
				for _, shift := range model.AllShifts {
					vars = append(vars, m.VarID(i, model.Weekday(d), shift))
				}
			}
			m.add(Constraint{
				Kind:  KindConsecutiveCap,
				Sense: SenseLE,
				Bound: MaxDaysPerWindow,
				Vars:  vars,
				Label: fmt.Sprintf("%s 第%d-%d天窗口至多%d天", s.FullName(), start+1, start+6, MaxDaysPerWindow),
			})
		}
	}
}

// 规则5：夜班仅限可用的夜班合同接待员，人数精确等于目标；
// 夜班合同员工反向仅限夜班
func (m *Model) addNightConstraints() {
	for i, s := range m.Roster {
		nightEligible := s.Role == model.RoleReceptionist && s.IsNightContract() && s.MaxWorkableDays() > 0

		if !nightEligible {
			vars := make([]int, 0, 7)
			for _, day := range model.AllWeekdays {
				vars = append(vars, m.VarID(i, day, model.ShiftNight))
			}
			m.add(Constraint{
				Kind:  KindNightExclusive,
				Sense: SenseEQ,
				Bound: 0,
				Vars:  vars,
				Label: fmt.Sprintf("%s 不可排夜班", s.FullName()),
			})
		}

		if s.IsNightContract() {
			vars := make([]int, 0, 14)
			for _, day := range model.AllWeekdays {
				vars = append(vars, m.VarID(i, day, model.ShiftMorning))
				vars = append(vars, m.VarID(i, day, model.ShiftAfternoon))
			}
			m.add(Constraint{
				Kind:  KindNightContract,
				Sense: SenseEQ,
				Bound: 0,
				Vars:  vars,
				Label: fmt.Sprintf("%s 夜班合同不可排白班", s.FullName()),
			})
		}
	}

	for _, day := range model.AllWeekdays {
		required := m.Table.Get(day, model.ShiftNight).ReceptionistsRequired
		vars := make([]int, 0, m.numStaff)
		for i, s := range m.Roster {
			if s.Role == model.RoleReceptionist && s.IsNightContract() && s.MaxWorkableDays() > 0 {
				vars = append(vars, m.VarID(i, day, model.ShiftNight))
			}
		}
		if len(vars) == 0 {
			continue
		}
		// required=0 时强制空夜班而不是无解等式
		m.add(Constraint{
			Kind:  KindNightHeadcount,
			Sense: SenseEQ,
			Bound: required,
			Vars:  vars,
			Label: fmt.Sprintf("%s 夜班恰好 %d 名接待员", day, required),
		})
	}
}

// 规则6：有可用主管时，每个白班至少一名主管
func (m *Model) addSupervisorConstraints() {
	supervisors := make([]int, 0, m.numStaff)
	for i, s := range m.Roster {
		if s.Role == model.RoleSupervisor && s.MaxWorkableDays() > 0 {
			supervisors = append(supervisors, i)
		}
	}
	if len(supervisors) == 0 {
		return
	}

	for _, day := range model.AllWeekdays {
		for _, shift := range []model.ShiftKind{model.ShiftMorning, model.ShiftAfternoon} {
			vars := make([]int, 0, len(supervisors))
			for _, idx := range supervisors {
				vars = append(vars, m.VarID(idx, day, shift))
			}
			m.add(Constraint{
				Kind:  KindSupervisorFloor,
				Sense: SenseGE,
				Bound: 1,
				Vars:  vars,
				Label: fmt.Sprintf("%s %s 至少一名主管", day, shift),
			})
		}
	}
}

// 规则7：白班人数下限，需求按可用池规模截断，避免构造性无解
func (m *Model) addHeadcountConstraints() {
	dayPool := make([]int, 0, m.numStaff)
	for i, s := range m.Roster {
		if s.IsDayCapable() && s.MaxWorkableDays() > 0 {
			dayPool = append(dayPool, i)
		}
	}

	for _, day := range model.AllWeekdays {
		for _, shift := range []model.ShiftKind{model.ShiftMorning, model.ShiftAfternoon} {
			required := m.Table.Get(day, shift).TotalPersonnel
			if required > len(dayPool) {
				required = len(dayPool)
			}
			if required <= 0 {
				continue
			}
			vars := make([]int, 0, len(dayPool))
			for _, idx := range dayPool {
				vars = append(vars, m.VarID(idx, day, shift))
			}
			m.add(Constraint{
				Kind:  KindDayHeadcount,
				Sense: SenseGE,
				Bound: required,
				Vars:  vars,
				Label: fmt.Sprintf("%s %s 至少 %d 名白班人员", day, shift, required),
			})
		}
	}
}

// 规则8：礼宾员仅限工作日早班；有名额且有可用礼宾员时恰好一人
func (m *Model) addConciergeConstraints() {
	concierges := make([]int, 0, m.numStaff)
	for i, s := range m.Roster {
		if s.Role == model.RoleConcierge && s.MaxWorkableDays() > 0 {
			concierges = append(concierges, i)
		}
	}

	// 禁排区：午班、夜班与周末全部班次
	for i, s := range m.Roster {
		if s.Role != model.RoleConcierge {
			continue
		}
		vars := make([]int, 0, 21)
		for _, day := range model.AllWeekdays {
			vars = append(vars, m.VarID(i, day, model.ShiftAfternoon))
			vars = append(vars, m.VarID(i, day, model.ShiftNight))
			if day.IsWeekend() {
				vars = append(vars, m.VarID(i, day, model.ShiftMorning))
			}
		}
		m.add(Constraint{
			Kind:  KindConciergeSlot,
			Sense: SenseEQ,
			Bound: 0,
			Vars:  vars,
			Label: fmt.Sprintf("%s 仅限工作日早班", s.FullName()),
		})
	}

	if len(concierges) == 0 {
		return
	}

	for _, day := range model.AllWeekdays {
		if day.IsWeekend() {
			continue
		}
		slot := m.Table.Get(day, model.ShiftMorning).ConciergeSlot
		vars := make([]int, 0, len(concierges))
		for _, idx := range concierges {
			vars = append(vars, m.VarID(idx, day, model.ShiftMorning))
		}
		m.add(Constraint{
			Kind:  KindConciergeSlot,
			Sense: SenseEQ,
			Bound: slot,
			Vars:  vars,
			Label: fmt.Sprintf("%s 早班礼宾名额 %d", day, slot),
		})
	}
}

// 规则9：单个白班总人数不超过硬上限
func (m *Model) addCapacityConstraints() {
	for _, day := range model.AllWeekdays {
		for _, shift := range []model.ShiftKind{model.ShiftMorning, model.ShiftAfternoon} {
			vars := make([]int, 0, m.numStaff)
			for i := range m.Roster {
				vars = append(vars, m.VarID(i, day, shift))
			}
			m.add(Constraint{
				Kind:  KindCapacityCeiling,
				Sense: SenseLE,
				Bound: MaxDayShiftStaff,
				Vars:  vars,
				Label: fmt.Sprintf("%s %s 总人数不超过 %d", day, shift, MaxDayShiftStaff),
			})
		}
	}
}
