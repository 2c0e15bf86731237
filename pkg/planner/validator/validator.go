// Package validator 对已生成的周计划做独立复核与统计分析
//
// 复核不信任求解器的结论：近似解或人工改动过的计划都可能
// 违反规则，每一处违反都会被记录，绝不静默丢弃。
package validator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/model"
)

// ViolationKind 违规类型
type ViolationKind string

const (
	ViolationNightHeadcount  ViolationKind = "night_headcount"  // 夜班人数不符
	ViolationNightRole       ViolationKind = "night_role"       // 夜班出现主管或礼宾员
	ViolationSupervisorFloor ViolationKind = "supervisor_floor" // 白班缺少主管
	ViolationConcierge       ViolationKind = "concierge"        // 礼宾员名额或位置不符
	ViolationCapacity        ViolationKind = "capacity"         // 白班人数超过上限
	ViolationUnderstaffed    ViolationKind = "understaffed"     // 白班无人值守
	ViolationWeeklyCap       ViolationKind = "weekly_cap"       // 超过本周可工作天数
	ViolationContract        ViolationKind = "contract"         // 超过合同约定天数
)

// Violation 单条违规记录
type Violation struct {
	Kind     ViolationKind   `json:"kind"`
	Day      model.Weekday   `json:"day,omitempty"`
	Shift    model.ShiftKind `json:"shift,omitempty"`
	StaffID  uuid.UUID       `json:"staff_id,omitempty"`
	Expected int             `json:"expected"`
	Observed int             `json:"observed"`
	Message  string          `json:"message"`
}

// StaffStats 单个员工的周统计
type StaffStats struct {
	StaffID    uuid.UUID  `json:"staff_id"`
	Name       string     `json:"name"`
	Role       model.Role `json:"role"`
	DaysWorked int        `json:"days_worked"`
	Shifts     int        `json:"shifts"`
	Hours      int        `json:"hours"`
	Contracted int        `json:"contracted_days"`
	Compliant  bool       `json:"compliant"`
}

// ShiftCoverage 单个(天,班次)的人员构成
type ShiftCoverage struct {
	Day           model.Weekday   `json:"day"`
	Shift         model.ShiftKind `json:"shift"`
	Total         int             `json:"total"`
	Supervisors   int             `json:"supervisors"`
	Receptionists int             `json:"receptionists"`
	Concierges    int             `json:"concierges"`
	StaffIDs      []uuid.UUID     `json:"staff_ids,omitempty"`
}

// WeekTotals 一周汇总
type WeekTotals struct {
	TotalShifts int `json:"total_shifts"`
	TotalHours  int `json:"total_hours"`
	ActiveStaff int `json:"active_staff"`
}

// Report 复核报告
type Report struct {
	Valid      bool            `json:"valid"`
	Violations []Violation     `json:"violations,omitempty"`
	PerStaff   []StaffStats    `json:"per_staff"`
	Coverage   []ShiftCoverage `json:"coverage"`
	Totals     WeekTotals      `json:"totals"`
}

// Validator 周计划复核器
type Validator struct{}

// NewValidator 创建复核器
func NewValidator() *Validator {
	return &Validator{}
}

// Validate 独立复核排班并计算统计
// 纯函数：不修改输入，重复调用结果一致
func (v *Validator) Validate(roster model.Roster, schedule *model.Schedule) *Report {
	report := &Report{Valid: true}

	v.checkNightShifts(roster, schedule, report)
	v.checkDayShifts(roster, schedule, report)
	v.checkConcierge(roster, schedule, report)
	v.checkStaffCaps(roster, schedule, report)

	v.analyzeStaff(roster, schedule, report)
	v.analyzeCoverage(roster, schedule, report)

	report.Valid = len(report.Violations) == 0
	return report
}

func (r *Report) addViolation(violation Violation) {
	r.Violations = append(r.Violations, violation)
}

// checkNightShifts 夜班人数与岗位规则
func (v *Validator) checkNightShifts(roster model.Roster, schedule *model.Schedule, report *Report) {
	nightPool := len(roster.AvailableNightReceptionists())
	expected := 2
	if nightPool < expected {
		expected = nightPool
	}

	for _, day := range model.AllWeekdays {
		cell := schedule.Cell(day, model.ShiftNight)

		receptionists := 0
		for _, id := range cell {
			staff := roster.ByID(id)
			if staff == nil {
				continue
			}
			switch staff.Role {
			case model.RoleReceptionist:
				receptionists++
			default:
				report.addViolation(Violation{
					Kind:     ViolationNightRole,
					Day:      day,
					Shift:    model.ShiftNight,
					StaffID:  id,
					Expected: 0,
					Observed: 1,
					Message:  fmt.Sprintf("%s 夜班出现%s %s", day, staff.Role, staff.FullName()),
				})
			}
		}

		if receptionists != expected {
			report.addViolation(Violation{
				Kind:     ViolationNightHeadcount,
				Day:      day,
				Shift:    model.ShiftNight,
				Expected: expected,
				Observed: receptionists,
				Message:  fmt.Sprintf("%s 夜班接待员 %d 人，应为 %d 人", day, receptionists, expected),
			})
		}
	}
}

// checkDayShifts 白班主管下限、人数上限与空班
func (v *Validator) checkDayShifts(roster model.Roster, schedule *model.Schedule, report *Report) {
	supervisorPool := len(roster.AvailableByRole(model.RoleSupervisor))
	dayPool := supervisorPool + len(roster.AvailableDayReceptionists())

	for _, day := range model.AllWeekdays {
		for _, shift := range []model.ShiftKind{model.ShiftMorning, model.ShiftAfternoon} {
			cell := schedule.Cell(day, shift)

			if len(cell) > 4 {
				report.addViolation(Violation{
					Kind:     ViolationCapacity,
					Day:      day,
					Shift:    shift,
					Expected: 4,
					Observed: len(cell),
					Message:  fmt.Sprintf("%s %s 共 %d 人，超过上限4人", day, shift, len(cell)),
				})
			}

			if len(cell) == 0 && dayPool > 0 {
				report.addViolation(Violation{
					Kind:     ViolationUnderstaffed,
					Day:      day,
					Shift:    shift,
					Expected: 1,
					Observed: 0,
					Message:  fmt.Sprintf("%s %s 无人值守", day, shift),
				})
			}

			supervisors := 0
			for _, id := range cell {
				if staff := roster.ByID(id); staff != nil && staff.Role == model.RoleSupervisor {
					supervisors++
				}
			}
			if supervisorPool > 0 && supervisors < 1 {
				report.addViolation(Violation{
					Kind:     ViolationSupervisorFloor,
					Day:      day,
					Shift:    shift,
					Expected: 1,
					Observed: supervisors,
					Message:  fmt.Sprintf("%s %s 没有主管在岗", day, shift),
				})
			}
		}
	}
}

// checkConcierge 礼宾员仅限工作日早班，名额恰好一人
func (v *Validator) checkConcierge(roster model.Roster, schedule *model.Schedule, report *Report) {
	conciergePool := len(roster.AvailableByRole(model.RoleConcierge))

	for _, day := range model.AllWeekdays {
		for _, shift := range model.AllShifts {
			concierges := 0
			for _, id := range schedule.Cell(day, shift) {
				if staff := roster.ByID(id); staff != nil && staff.Role == model.RoleConcierge {
					concierges++
				}
			}

			expected := 0
			if shift == model.ShiftMorning && !day.IsWeekend() && conciergePool > 0 {
				expected = 1
			}
			if concierges != expected {
				report.addViolation(Violation{
					Kind:     ViolationConcierge,
					Day:      day,
					Shift:    shift,
					Expected: expected,
					Observed: concierges,
					Message:  fmt.Sprintf("%s %s 礼宾员 %d 人，应为 %d 人", day, shift, concierges, expected),
				})
			}
		}
	}
}

// checkStaffCaps 每周天数上限与合同合规
func (v *Validator) checkStaffCaps(roster model.Roster, schedule *model.Schedule, report *Report) {
	for _, staff := range roster {
		days := schedule.DaysWorked(staff.ID)

		if maxDays := staff.MaxWorkableDays(); days > maxDays {
			report.addViolation(Violation{
				Kind:     ViolationWeeklyCap,
				StaffID:  staff.ID,
				Expected: maxDays,
				Observed: days,
				Message:  fmt.Sprintf("%s 本周工作 %d 天，超过可工作上限 %d 天", staff.FullName(), days, maxDays),
			})
		}

		if contracted := staff.ContractedDays(); days > contracted {
			report.addViolation(Violation{
				Kind:     ViolationContract,
				StaffID:  staff.ID,
				Expected: contracted,
				Observed: days,
				Message:  fmt.Sprintf("%s 本周工作 %d 天，超过合同约定 %d 天", staff.FullName(), days, contracted),
			})
		}
	}
}

// analyzeStaff 逐员工统计工作天数与工时
func (v *Validator) analyzeStaff(roster model.Roster, schedule *model.Schedule, report *Report) {
	totals := WeekTotals{}

	for _, staff := range roster {
		days := schedule.DaysWorked(staff.ID)
		shifts := schedule.ShiftsWorked(staff.ID)
		hours := shifts * model.ShiftHours

		report.PerStaff = append(report.PerStaff, StaffStats{
			StaffID:    staff.ID,
			Name:       staff.FullName(),
			Role:       staff.Role,
			DaysWorked: days,
			Shifts:     shifts,
			Hours:      hours,
			Contracted: staff.ContractedDays(),
			Compliant:  days <= staff.ContractedDays(),
		})

		totals.TotalShifts += shifts
		totals.TotalHours += hours
		if shifts > 0 {
			totals.ActiveStaff++
		}
	}

	report.Totals = totals
}

// analyzeCoverage 逐(天,班次)统计人员构成
func (v *Validator) analyzeCoverage(roster model.Roster, schedule *model.Schedule, report *Report) {
	for _, day := range model.AllWeekdays {
		for _, shift := range model.AllShifts {
			cell := schedule.Cell(day, shift)
			coverage := ShiftCoverage{
				Day:      day,
				Shift:    shift,
				Total:    len(cell),
				StaffIDs: cell,
			}
			for _, id := range cell {
				staff := roster.ByID(id)
				if staff == nil {
					continue
				}
				switch staff.Role {
				case model.RoleSupervisor:
					coverage.Supervisors++
				case model.RoleReceptionist:
					coverage.Receptionists++
				case model.RoleConcierge:
					coverage.Concierges++
				}
			}
			report.Coverage = append(report.Coverage, coverage)
		}
	}
}
