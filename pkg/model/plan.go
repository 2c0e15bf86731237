// Package model 定义周计划引擎的核心数据模型
package model

import (
	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/errors"
)

// Forecast 一周的入住/退房预测（按天）
type Forecast struct {
	CheckIns  [7]int `json:"check_ins"`
	CheckOuts [7]int `json:"check_outs"`
}

// ForecastFromMaps 从按天名称的映射构建预测
// 两个映射必须恰好覆盖七天，且计数非负
func ForecastFromMaps(checkIns, checkOuts map[string]int) (*Forecast, error) {
	f := &Forecast{}
	for _, pair := range []struct {
		name string
		src  map[string]int
		dst  *[7]int
	}{
		{"check_ins", checkIns, &f.CheckIns},
		{"check_outs", checkOuts, &f.CheckOuts},
	} {
		if len(pair.src) != 7 {
			return nil, errors.Configuration("预测 " + pair.name + " 必须覆盖七天")
		}
		for name, count := range pair.src {
			day, ok := ParseWeekday(name)
			if !ok {
				return nil, errors.Configuration("预测包含未知日期名称: " + name)
			}
			if count < 0 {
				return nil, errors.Configuration("预测 " + pair.name + " 在 " + name + " 为负数")
			}
			pair.dst[day] = count
		}
	}
	return f, nil
}

// Validate 校验预测数据
func (f *Forecast) Validate() error {
	for _, day := range AllWeekdays {
		if f.CheckIns[day] < 0 {
			return errors.Configuration("入住预测在 " + day.String() + " 为负数")
		}
		if f.CheckOuts[day] < 0 {
			return errors.Configuration("退房预测在 " + day.String() + " 为负数")
		}
	}
	return nil
}

// DailyRequirement 单个(天,班次)的人力需求
type DailyRequirement struct {
	Day            Weekday   `json:"day"`
	Shift          ShiftKind `json:"shift"`
	TotalPersonnel int       `json:"total_personnel"`
	MinSupervisors int       `json:"min_supervisors"`
	ConciergeSlot  int       `json:"concierge_slot"` // 0或1

	// 夜班专用：目标接待员人数（结构上为2，受可用性封顶）
	ReceptionistsRequired int `json:"receptionists_required,omitempty"`
}

// RequirementTable 一周21个(天,班次)格子的需求表
type RequirementTable struct {
	Cells [7][3]DailyRequirement `json:"cells"`
}

// Get 返回某(天,班次)的需求
func (t *RequirementTable) Get(day Weekday, shift ShiftKind) *DailyRequirement {
	return &t.Cells[day][shiftIndex(shift)]
}

// Set 写入某(天,班次)的需求
func (t *RequirementTable) Set(req DailyRequirement) {
	t.Cells[req.Day][shiftIndex(req.Shift)] = req
}

func shiftIndex(shift ShiftKind) int {
	switch shift {
	case ShiftMorning:
		return 0
	case ShiftAfternoon:
		return 1
	default:
		return 2
	}
}

// Assignment 一个(员工,天,班次)的排班决定
type Assignment struct {
	StaffID uuid.UUID `json:"staff_id" db:"staff_id"`
	Day     Weekday   `json:"day" db:"day"`
	Shift   ShiftKind `json:"shift" db:"shift"`
}

// Schedule 一周的排班结果
type Schedule struct {
	BaseModel
	PropertyID  uuid.UUID    `json:"property_id" db:"property_id"`
	WeekStart   string       `json:"week_start" db:"week_start"` // YYYY-MM-DD
	Status      SolveStatus  `json:"status" db:"status"`
	Assignments []Assignment `json:"assignments" db:"-"`
}

// NewSchedule 创建空排班
func NewSchedule(propertyID uuid.UUID, weekStart string) *Schedule {
	return &Schedule{
		BaseModel:  NewBaseModel(),
		PropertyID: propertyID,
		WeekStart:  weekStart,
	}
}

// Cell 返回某(天,班次)上的员工ID列表
func (s *Schedule) Cell(day Weekday, shift ShiftKind) []uuid.UUID {
	var out []uuid.UUID
	for _, a := range s.Assignments {
		if a.Day == day && a.Shift == shift {
			out = append(out, a.StaffID)
		}
	}
	return out
}

// DaysWorked 返回某员工本周的工作天数
func (s *Schedule) DaysWorked(staffID uuid.UUID) int {
	days := make(map[Weekday]bool)
	for _, a := range s.Assignments {
		if a.StaffID == staffID {
			days[a.Day] = true
		}
	}
	return len(days)
}

// ShiftsWorked 返回某员工本周的班次数
func (s *Schedule) ShiftsWorked(staffID uuid.UUID) int {
	n := 0
	for _, a := range s.Assignments {
		if a.StaffID == staffID {
			n++
		}
	}
	return n
}

// WorksOn 检查某员工某天是否有班
func (s *Schedule) WorksOn(staffID uuid.UUID, day Weekday) bool {
	for _, a := range s.Assignments {
		if a.StaffID == staffID && a.Day == day {
			return true
		}
	}
	return false
}

// TotalAssignments 返回总班次数
func (s *Schedule) TotalAssignments() int {
	return len(s.Assignments)
}
