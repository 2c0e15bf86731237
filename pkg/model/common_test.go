package model

import (
	"testing"
)

func TestWeekday_IsWeekend(t *testing.T) {
	tests := []struct {
		day      Weekday
		expected bool
	}{
		{Monday, false},
		{Tuesday, false},
		{Wednesday, false},
		{Thursday, false},
		{Friday, false},
		{Saturday, true},
		{Sunday, true},
	}

	for _, tt := range tests {
		t.Run(tt.day.String(), func(t *testing.T) {
			if got := tt.day.IsWeekend(); got != tt.expected {
				t.Errorf("IsWeekend() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestParseWeekday(t *testing.T) {
	for _, day := range AllWeekdays {
		parsed, ok := ParseWeekday(day.String())
		if !ok {
			t.Errorf("ParseWeekday(%q) 应该成功", day.String())
		}
		if parsed != day {
			t.Errorf("ParseWeekday(%q) = %v, expected %v", day.String(), parsed, day)
		}
	}

	if _, ok := ParseWeekday("someday"); ok {
		t.Error("未知日期名称应该解析失败")
	}
}

func TestShiftKind_IsDayShift(t *testing.T) {
	if !ShiftMorning.IsDayShift() {
		t.Error("早班应该是白班")
	}
	if !ShiftAfternoon.IsDayShift() {
		t.Error("午班应该是白班")
	}
	if ShiftNight.IsDayShift() {
		t.Error("夜班不应该是白班")
	}
}

func TestNewBaseModel(t *testing.T) {
	base := NewBaseModel()

	if base.ID.String() == "" {
		t.Error("ID should not be empty")
	}
	if base.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
	if base.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should not be zero")
	}
}
