package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestContractType_ContractedDays(t *testing.T) {
	tests := []struct {
		contract ContractType
		expected int
	}{
		{ContractFullTime, 5},
		{ContractPartTime4Day, 4},
		{ContractPartTime3Day, 3},
		{ContractNight, 5},
		{ContractType("unknown"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.contract), func(t *testing.T) {
			if got := tt.contract.ContractedDays(); got != tt.expected {
				t.Errorf("ContractedDays() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestStaffMember_MaxWorkableDays(t *testing.T) {
	tests := []struct {
		name        string
		contract    ContractType
		available   bool
		absenceDays int
		expected    int
	}{
		{"全职无缺勤", ContractFullTime, true, 0, 5},
		{"全职缺勤2天", ContractFullTime, true, 2, 3},
		{"不可用", ContractFullTime, false, 0, 0},
		{"缺勤满一周", ContractFullTime, true, 7, 0},
		{"兼职3天缺勤2天", ContractPartTime3Day, true, 2, 1},
		{"兼职3天缺勤5天", ContractPartTime3Day, true, 5, 0},
		{"夜班合同缺勤1天", ContractNight, true, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &StaffMember{
				Contract:    tt.contract,
				Available:   tt.available,
				AbsenceDays: tt.absenceDays,
			}
			if got := s.MaxWorkableDays(); got != tt.expected {
				t.Errorf("MaxWorkableDays() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestStaffMember_IsDayCapable(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		contract ContractType
		expected bool
	}{
		{"主管", RoleSupervisor, ContractFullTime, true},
		{"白班接待员", RoleReceptionist, ContractFullTime, true},
		{"兼职接待员", RoleReceptionist, ContractPartTime4Day, true},
		{"夜班接待员", RoleReceptionist, ContractNight, false},
		{"礼宾员", RoleConcierge, ContractFullTime, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &StaffMember{Role: tt.role, Contract: tt.contract}
			if got := s.IsDayCapable(); got != tt.expected {
				t.Errorf("IsDayCapable() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestRoster_Pools(t *testing.T) {
	roster := SampleRoster(uuid.New())

	if len(roster) != 15 {
		t.Fatalf("示例团队应该有15人, got %d", len(roster))
	}

	if n := len(roster.AvailableByRole(RoleSupervisor)); n != 5 {
		t.Errorf("可用主管 = %d, expected 5", n)
	}
	if n := len(roster.AvailableNightReceptionists()); n != 3 {
		t.Errorf("可用夜班接待员 = %d, expected 3", n)
	}
	if n := len(roster.AvailableDayReceptionists()); n != 6 {
		t.Errorf("可用白班接待员 = %d, expected 6", n)
	}
	if n := len(roster.AvailableByRole(RoleConcierge)); n != 1 {
		t.Errorf("可用礼宾员 = %d, expected 1", n)
	}
}

func TestRoster_PoolsExcludeUnavailable(t *testing.T) {
	roster := SampleRoster(uuid.New())
	for _, s := range roster {
		if s.Role == RoleSupervisor {
			s.Available = false
		}
	}

	if n := len(roster.AvailableByRole(RoleSupervisor)); n != 0 {
		t.Errorf("不可用主管不应计入可用池, got %d", n)
	}
}

func TestRoster_ByID(t *testing.T) {
	roster := SampleRoster(uuid.New())

	found := roster.ByID(roster[3].ID)
	if found == nil || found.ID != roster[3].ID {
		t.Error("ByID 应该找到已存在的员工")
	}

	if roster.ByID(uuid.New()) != nil {
		t.Error("ByID 对未知ID应该返回nil")
	}
}
