package model

import (
	"testing"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/errors"
)

func fullWeekMap(value int) map[string]int {
	m := make(map[string]int, 7)
	for _, day := range AllWeekdays {
		m[day.String()] = value
	}
	return m
}

func TestForecastFromMaps(t *testing.T) {
	f, err := ForecastFromMaps(fullWeekMap(120), fullWeekMap(80))
	if err != nil {
		t.Fatalf("合法预测不应报错: %v", err)
	}
	if f.CheckIns[Wednesday] != 120 || f.CheckOuts[Sunday] != 80 {
		t.Error("预测数值映射错误")
	}
}

func TestForecastFromMaps_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		checkIns  map[string]int
		checkOuts map[string]int
	}{
		{"缺少一天", map[string]int{"monday": 1}, fullWeekMap(0)},
		{"负数", fullWeekMap(-5), fullWeekMap(0)},
		{"未知日期", func() map[string]int {
			m := fullWeekMap(0)
			delete(m, "monday")
			m["someday"] = 1
			return m
		}(), fullWeekMap(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ForecastFromMaps(tt.checkIns, tt.checkOuts)
			if err == nil {
				t.Fatal("应该返回配置错误")
			}
			if !errors.Is(err, errors.CodeConfiguration) {
				t.Errorf("错误码 = %v, expected CONFIGURATION_ERROR", errors.GetCode(err))
			}
		})
	}
}

func TestRequirementTable_GetSet(t *testing.T) {
	var table RequirementTable
	table.Set(DailyRequirement{
		Day:            Tuesday,
		Shift:          ShiftMorning,
		TotalPersonnel: 3,
		MinSupervisors: 1,
		ConciergeSlot:  1,
	})

	req := table.Get(Tuesday, ShiftMorning)
	if req.TotalPersonnel != 3 || req.MinSupervisors != 1 || req.ConciergeSlot != 1 {
		t.Errorf("需求读写不一致: %+v", req)
	}

	if table.Get(Tuesday, ShiftNight).TotalPersonnel != 0 {
		t.Error("未写入的格子应该为零值")
	}
}

func TestSchedule_Helpers(t *testing.T) {
	s := NewSchedule(uuid.New(), "2026-08-31")
	alice := uuid.New()
	bob := uuid.New()

	s.Assignments = []Assignment{
		{StaffID: alice, Day: Monday, Shift: ShiftMorning},
		{StaffID: alice, Day: Tuesday, Shift: ShiftAfternoon},
		{StaffID: bob, Day: Monday, Shift: ShiftMorning},
	}

	if got := s.DaysWorked(alice); got != 2 {
		t.Errorf("DaysWorked(alice) = %d, expected 2", got)
	}
	if got := s.ShiftsWorked(bob); got != 1 {
		t.Errorf("ShiftsWorked(bob) = %d, expected 1", got)
	}
	if !s.WorksOn(alice, Monday) {
		t.Error("alice 周一应该有班")
	}
	if s.WorksOn(bob, Tuesday) {
		t.Error("bob 周二不应该有班")
	}

	cell := s.Cell(Monday, ShiftMorning)
	if len(cell) != 2 {
		t.Errorf("周一早班应该有2人, got %d", len(cell))
	}
	if s.TotalAssignments() != 3 {
		t.Errorf("总班次数 = %d, expected 3", s.TotalAssignments())
	}
}
