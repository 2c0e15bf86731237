// Package stats 提供周计划统计分析功能
package stats

import (
	"github.com/hotelplan/hotelplan/pkg/model"
)

// CoverageMetrics 需求覆盖指标
type CoverageMetrics struct {
	RequiredSlots   int     `json:"required_slots"`   // 需求名额总数
	FilledSlots     int     `json:"filled_slots"`     // 已满足名额数
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	// 按(天,班次)统计
	CellCoverage []CellCoverage `json:"cell_coverage"`

	// 按班次类型统计
	ShiftKindCoverage map[model.ShiftKind]float64 `json:"shift_kind_coverage"`

	// 人手不足的格子
	Shortfalls []Shortfall `json:"shortfalls,omitempty"`
}

// CellCoverage 单个(天,班次)的覆盖情况
type CellCoverage struct {
	Day      model.Weekday   `json:"day"`
	Shift    model.ShiftKind `json:"shift"`
	Required int             `json:"required"`
	Assigned int             `json:"assigned"`
	Rate     float64         `json:"rate"`
}

// Shortfall 人手不足记录
type Shortfall struct {
	Day      model.Weekday   `json:"day"`
	Shift    model.ShiftKind `json:"shift"`
	Required int             `json:"required"`
	Assigned int             `json:"assigned"`
	Shortage int             `json:"shortage"`
}

// CoverageAnalyzer 需求覆盖分析器
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 对照需求表分析排班的覆盖情况
func (c *CoverageAnalyzer) Analyze(table *model.RequirementTable, schedule *model.Schedule) *CoverageMetrics {
	metrics := &CoverageMetrics{
		ShiftKindCoverage: make(map[model.ShiftKind]float64),
	}
	if table == nil || schedule == nil {
		metrics.OverallCoverage = 100
		return metrics
	}

	kindRequired := make(map[model.ShiftKind]int)
	kindFilled := make(map[model.ShiftKind]int)

	for _, day := range model.AllWeekdays {
		for _, shift := range model.AllShifts {
			required := cellRequired(table.Get(day, shift))
			assigned := len(schedule.Cell(day, shift))

			filled := assigned
			if filled > required {
				filled = required
			}

			metrics.RequiredSlots += required
			metrics.FilledSlots += filled
			kindRequired[shift] += required
			kindFilled[shift] += filled

			rate := 100.0
			if required > 0 {
				rate = float64(filled) / float64(required) * 100
			}
			metrics.CellCoverage = append(metrics.CellCoverage, CellCoverage{
				Day:      day,
				Shift:    shift,
				Required: required,
				Assigned: assigned,
				Rate:     rate,
			})

			if assigned < required {
				metrics.Shortfalls = append(metrics.Shortfalls, Shortfall{
					Day:      day,
					Shift:    shift,
					Required: required,
					Assigned: assigned,
					Shortage: required - assigned,
				})
			}
		}
	}

	metrics.OverallCoverage = 100
	if metrics.RequiredSlots > 0 {
		metrics.OverallCoverage = float64(metrics.FilledSlots) / float64(metrics.RequiredSlots) * 100
	}
	for _, shift := range model.AllShifts {
		rate := 100.0
		if kindRequired[shift] > 0 {
			rate = float64(kindFilled[shift]) / float64(kindRequired[shift]) * 100
		}
		metrics.ShiftKindCoverage[shift] = rate
	}

	return metrics
}

// cellRequired 单个格子的名额需求
// 早班名额包含礼宾位，夜班按接待员目标计
func cellRequired(req *model.DailyRequirement) int {
	if req.Shift == model.ShiftNight {
		return req.ReceptionistsRequired
	}
	return req.TotalPersonnel + req.ConciergeSlot
}
