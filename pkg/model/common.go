// Package model 定义周计划引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Weekday 一周中的某一天（周一为一周起点）
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// AllWeekdays 一周七天的固定顺序
var AllWeekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayNames = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// String 返回日期名称
func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return "unknown"
	}
	return weekdayNames[d]
}

// IsWeekend 检查是否为周末
func (d Weekday) IsWeekend() bool {
	return d == Saturday || d == Sunday
}

// ParseWeekday 解析日期名称
func ParseWeekday(name string) (Weekday, bool) {
	for i, n := range weekdayNames {
		if n == name {
			return Weekday(i), true
		}
	}
	return 0, false
}

// ShiftKind 班次类型
type ShiftKind string

const (
	ShiftMorning   ShiftKind = "morning"   // 早班
	ShiftAfternoon ShiftKind = "afternoon" // 午班
	ShiftNight     ShiftKind = "night"     // 夜班
)

// AllShifts 每天三个班次的固定顺序
var AllShifts = [3]ShiftKind{ShiftMorning, ShiftAfternoon, ShiftNight}

// IsDayShift 检查是否为白班（早班或午班）
func (s ShiftKind) IsDayShift() bool {
	return s == ShiftMorning || s == ShiftAfternoon
}

// ShiftHours 每个班次的固定时长（小时）
const ShiftHours = 8

// SolveStatus 求解终态
type SolveStatus string

const (
	StatusOptimal     SolveStatus = "optimal"     // 已验证最优
	StatusApproximate SolveStatus = "approximate" // 预算内的最佳可行解
	StatusInfeasible  SolveStatus = "infeasible"  // 无可行解
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}
