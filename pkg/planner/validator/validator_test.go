package validator

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/model"
)

func staffByRole(roster model.Roster, role model.Role, n int) *model.StaffMember {
	count := 0
	for _, s := range roster {
		if s.Role == role {
			if count == n {
				return s
			}
			count++
		}
	}
	return nil
}

// compliantWeek 构造一个满足全部规则的排班
func compliantWeek(roster model.Roster) *model.Schedule {
	schedule := model.NewSchedule(uuid.New(), "2026-08-31")

	sup := [2]*model.StaffMember{staffByRole(roster, model.RoleSupervisor, 0), staffByRole(roster, model.RoleSupervisor, 1)}
	sup2 := [2]*model.StaffMember{staffByRole(roster, model.RoleSupervisor, 2), staffByRole(roster, model.RoleSupervisor, 3)}
	concierge := staffByRole(roster, model.RoleConcierge, 0)

	var nights model.Roster
	for _, s := range roster {
		if s.IsNightContract() {
			nights = append(nights, s)
		}
	}

	for _, day := range model.AllWeekdays {
		// 白班主管：周一到周五用前两名，周末换班避免超过5天
		pair := sup
		if day.IsWeekend() {
			pair = sup2
		}
		schedule.Assignments = append(schedule.Assignments,
			model.Assignment{StaffID: pair[0].ID, Day: day, Shift: model.ShiftMorning},
			model.Assignment{StaffID: pair[1].ID, Day: day, Shift: model.ShiftAfternoon},
		)

		// 夜班轮换：三人中取两人
		a := nights[int(day)%3]
		b := nights[(int(day)+1)%3]
		schedule.Assignments = append(schedule.Assignments,
			model.Assignment{StaffID: a.ID, Day: day, Shift: model.ShiftNight},
			model.Assignment{StaffID: b.ID, Day: day, Shift: model.ShiftNight},
		)

		// 工作日早班礼宾员
		if !day.IsWeekend() {
			schedule.Assignments = append(schedule.Assignments,
				model.Assignment{StaffID: concierge.ID, Day: day, Shift: model.ShiftMorning})
		}
	}
	return schedule
}

func countKind(report *Report, kind ViolationKind) int {
	n := 0
	for _, v := range report.Violations {
		if v.Kind == kind {
			n++
		}
	}
	return n
}

func TestValidate_CompliantSchedule(t *testing.T) {
	roster := model.SampleRoster(uuid.New())
	schedule := compliantWeek(roster)

	report := NewValidator().Validate(roster, schedule)
	if !report.Valid {
		for _, v := range report.Violations {
			t.Errorf("意外违规: %s", v.Message)
		}
	}
}

func TestValidate_NightViolations(t *testing.T) {
	roster := model.SampleRoster(uuid.New())
	schedule := compliantWeek(roster)

	// 往周一夜班塞进一名主管
	sup := staffByRole(roster, model.RoleSupervisor, 4)
	schedule.Assignments = append(schedule.Assignments,
		model.Assignment{StaffID: sup.ID, Day: model.Monday, Shift: model.ShiftNight})

	report := NewValidator().Validate(roster, schedule)
	if report.Valid {
		t.Fatal("夜班出现主管应该判违规")
	}
	if countKind(report, ViolationNightRole) != 1 {
		t.Errorf("夜班岗位违规数 = %d, expected 1", countKind(report, ViolationNightRole))
	}
}

func TestValidate_NightHeadcount(t *testing.T) {
	roster := model.SampleRoster(uuid.New())
	schedule := compliantWeek(roster)

	// 删除周二夜班的一名接待员
	var kept []model.Assignment
	removed := false
	for _, a := range schedule.Assignments {
		if !removed && a.Day == model.Tuesday && a.Shift == model.ShiftNight {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	schedule.Assignments = kept

	report := NewValidator().Validate(roster, schedule)
	if countKind(report, ViolationNightHeadcount) != 1 {
		t.Errorf("夜班人数违规数 = %d, expected 1", countKind(report, ViolationNightHeadcount))
	}
}

func TestValidate_SupervisorFloor(t *testing.T) {
	roster := model.SampleRoster(uuid.New())
	schedule := compliantWeek(roster)

	// 删除周三早班的主管
	var kept []model.Assignment
	for _, a := range schedule.Assignments {
		staff := roster.ByID(a.StaffID)
		if a.Day == model.Wednesday && a.Shift == model.ShiftMorning && staff.Role == model.RoleSupervisor {
			continue
		}
		kept = append(kept, a)
	}
	schedule.Assignments = kept

	report := NewValidator().Validate(roster, schedule)
	if countKind(report, ViolationSupervisorFloor) == 0 {
		t.Error("白班缺主管应该判违规")
	}
}

func TestValidate_ConciergePlacement(t *testing.T) {
	roster := model.SampleRoster(uuid.New())
	schedule := compliantWeek(roster)
	concierge := staffByRole(roster, model.RoleConcierge, 0)

	// 周六早班排礼宾员
	schedule.Assignments = append(schedule.Assignments,
		model.Assignment{StaffID: concierge.ID, Day: model.Saturday, Shift: model.ShiftMorning})

	report := NewValidator().Validate(roster, schedule)
	if countKind(report, ViolationConcierge) == 0 {
		t.Error("周末排礼宾员应该判违规")
	}
}

func TestValidate_NoConciergeNoViolation(t *testing.T) {
	// 没有可用礼宾员时名额空缺不算违规
	roster := model.SampleRoster(uuid.New())
	schedule := compliantWeek(roster)

	var kept []model.Assignment
	for _, a := range schedule.Assignments {
		if roster.ByID(a.StaffID).Role == model.RoleConcierge {
			continue
		}
		kept = append(kept, a)
	}
	schedule.Assignments = kept
	for _, s := range roster {
		if s.Role == model.RoleConcierge {
			s.Available = false
		}
	}

	report := NewValidator().Validate(roster, schedule)
	if countKind(report, ViolationConcierge) != 0 {
		t.Error("无可用礼宾员时名额空缺不应判违规")
	}
}

func TestValidate_ContractCompliance(t *testing.T) {
	// 兼职3天缺勤2天 → 可工作1天，排2天必须双重违规
	roster := model.SampleRoster(uuid.New())
	var pt3 *model.StaffMember
	for _, s := range roster {
		if s.Contract == model.ContractPartTime3Day {
			pt3 = s
			break
		}
	}
	pt3.AbsenceDays = 2

	schedule := compliantWeek(roster)
	schedule.Assignments = append(schedule.Assignments,
		model.Assignment{StaffID: pt3.ID, Day: model.Monday, Shift: model.ShiftMorning},
		model.Assignment{StaffID: pt3.ID, Day: model.Tuesday, Shift: model.ShiftMorning},
	)

	report := NewValidator().Validate(roster, schedule)
	if countKind(report, ViolationWeeklyCap) != 1 {
		t.Errorf("周上限违规数 = %d, expected 1", countKind(report, ViolationWeeklyCap))
	}

	for _, stats := range report.PerStaff {
		if stats.StaffID == pt3.ID {
			if stats.DaysWorked != 2 {
				t.Errorf("工作天数 = %d, expected 2", stats.DaysWorked)
			}
			if !stats.Compliant {
				// 2天 ≤ 合同3天，合同标志仍然合规，违规在周上限
				t.Error("2天未超合同3天，合同标志应该合规")
			}
		}
	}
}

func TestValidate_CapacityCeiling(t *testing.T) {
	roster := model.SampleRoster(uuid.New())
	schedule := compliantWeek(roster)

	// 周五午班塞满5人
	added := 0
	for _, s := range roster {
		if s.Role == model.RoleReceptionist && !s.IsNightContract() && added < 4 {
			schedule.Assignments = append(schedule.Assignments,
				model.Assignment{StaffID: s.ID, Day: model.Friday, Shift: model.ShiftAfternoon})
			added++
		}
	}

	report := NewValidator().Validate(roster, schedule)
	if countKind(report, ViolationCapacity) == 0 {
		t.Error("白班超员应该判违规")
	}
}

func TestValidate_StatsAndTotals(t *testing.T) {
	roster := model.SampleRoster(uuid.New())
	schedule := compliantWeek(roster)

	report := NewValidator().Validate(roster, schedule)

	// 2白班×7 + 2夜班×7 + 5礼宾 = 33个班次
	if report.Totals.TotalShifts != 33 {
		t.Errorf("总班次 = %d, expected 33", report.Totals.TotalShifts)
	}
	if report.Totals.TotalHours != 33*model.ShiftHours {
		t.Errorf("总工时 = %d, expected %d", report.Totals.TotalHours, 33*model.ShiftHours)
	}
	if len(report.Coverage) != 21 {
		t.Errorf("覆盖格子数 = %d, expected 21", len(report.Coverage))
	}
	if len(report.PerStaff) != len(roster) {
		t.Errorf("员工统计数 = %d, expected %d", len(report.PerStaff), len(roster))
	}
}

func TestValidate_Idempotent(t *testing.T) {
	roster := model.SampleRoster(uuid.New())
	schedule := compliantWeek(roster)
	v := NewValidator()

	first := v.Validate(roster, schedule)
	second := v.Validate(roster, schedule)

	if !reflect.DeepEqual(first, second) {
		t.Error("同一排班两次复核结果应该完全一致")
	}
}
