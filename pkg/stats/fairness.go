// Package stats 提供周计划统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/model"
)

// WorkloadMetrics 工作量公平性指标
type WorkloadMetrics struct {
	// 工时公平性
	WorkloadGini     float64 `json:"workload_gini"`       // 工时基尼系数 (0=完全公平, 1=完全不公平)
	WorkloadVariance float64 `json:"workload_variance"`   // 工时方差
	WorkloadStdDev   float64 `json:"workload_std_dev"`    // 工时标准差
	AvgHoursPerStaff float64 `json:"avg_hours_per_staff"` // 人均工时
	MaxHours         float64 `json:"max_hours"`           // 最大工时
	MinHours         float64 `json:"min_hours"`           // 最小工时
	HoursRange       float64 `json:"hours_range"`         // 工时极差

	// 班次类型公平性
	NightShiftGini   float64 `json:"night_shift_gini"`   // 夜班分配基尼系数
	WeekendShiftGini float64 `json:"weekend_shift_gini"` // 周末班分配基尼系数

	// 员工级别统计
	StaffStats []StaffWorkload `json:"staff_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 0-100
}

// StaffWorkload 单个员工的工作量
type StaffWorkload struct {
	StaffID       uuid.UUID  `json:"staff_id"`
	Name          string     `json:"name"`
	Role          model.Role `json:"role"`
	TotalHours    float64    `json:"total_hours"`
	Shifts        int        `json:"shifts"`
	NightShifts   int        `json:"night_shifts"`
	WeekendShifts int        `json:"weekend_shifts"`
	Deviation     float64    `json:"deviation"` // 与平均工时的偏差百分比
}

// WorkloadAnalyzer 工作量公平性分析器
type WorkloadAnalyzer struct{}

// NewWorkloadAnalyzer 创建工作量分析器
func NewWorkloadAnalyzer() *WorkloadAnalyzer {
	return &WorkloadAnalyzer{}
}

// Analyze 分析一周排班的工作量分布
// 只统计本周有班的员工，避免不可用员工拉低公平性
func (w *WorkloadAnalyzer) Analyze(roster model.Roster, schedule *model.Schedule) *WorkloadMetrics {
	if schedule == nil || len(schedule.Assignments) == 0 {
		return &WorkloadMetrics{OverallFairnessScore: 100}
	}

	staffStats := w.calculateStaffStats(roster, schedule)

	hours := make([]float64, len(staffStats))
	nightShifts := make([]float64, len(staffStats))
	weekendShifts := make([]float64, len(staffStats))
	for i, stat := range staffStats {
		hours[i] = stat.TotalHours
		nightShifts[i] = float64(stat.NightShifts)
		weekendShifts[i] = float64(stat.WeekendShifts)
	}

	avgHours := mean(hours)
	wlVariance := variance(hours, avgHours)
	stdDev := math.Sqrt(wlVariance)
	maxHours, minHours := valueRange(hours)

	for i := range staffStats {
		if avgHours > 0 {
			staffStats[i].Deviation = (staffStats[i].TotalHours - avgHours) / avgHours * 100
		}
	}

	workloadGini := gini(hours)
	nightGini := gini(nightShifts)
	weekendGini := gini(weekendShifts)

	return &WorkloadMetrics{
		WorkloadGini:         workloadGini,
		WorkloadVariance:     wlVariance,
		WorkloadStdDev:       stdDev,
		AvgHoursPerStaff:     avgHours,
		MaxHours:             maxHours,
		MinHours:             minHours,
		HoursRange:           maxHours - minHours,
		NightShiftGini:       nightGini,
		WeekendShiftGini:     weekendGini,
		StaffStats:           staffStats,
		OverallFairnessScore: overallScore(workloadGini, nightGini, weekendGini, stdDev, avgHours),
	}
}

// calculateStaffStats 统计有班员工的工作量
func (w *WorkloadAnalyzer) calculateStaffStats(roster model.Roster, schedule *model.Schedule) []StaffWorkload {
	statMap := make(map[uuid.UUID]*StaffWorkload)

	for _, a := range schedule.Assignments {
		stat, exists := statMap[a.StaffID]
		if !exists {
			stat = &StaffWorkload{StaffID: a.StaffID}
			if staff := roster.ByID(a.StaffID); staff != nil {
				stat.Name = staff.FullName()
				stat.Role = staff.Role
			}
			statMap[a.StaffID] = stat
		}

		stat.Shifts++
		stat.TotalHours += model.ShiftHours
		if a.Shift == model.ShiftNight {
			stat.NightShifts++
		}
		if a.Day.IsWeekend() {
			stat.WeekendShifts++
		}
	}

	result := make([]StaffWorkload, 0, len(statMap))
	for _, stat := range statMap {
		result = append(result, *stat)
	}

	// 按工时降序
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalHours != result[j].TotalHours {
			return result[i].TotalHours > result[j].TotalHours
		}
		return result[i].Name < result[j].Name
	})

	return result
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance 计算方差
func variance(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// valueRange 计算极值
func valueRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}

// overallScore 计算综合公平性评分
func overallScore(workloadGini, nightGini, weekendGini, stdDev, avgHours float64) float64 {
	const (
		workloadWeight = 0.4
		nightWeight    = 0.25
		weekendWeight  = 0.25
		stdDevWeight   = 0.1
	)

	workloadScore := (1 - workloadGini) * 100
	nightScore := (1 - nightGini) * 100
	weekendScore := (1 - weekendGini) * 100

	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := workloadWeight*workloadScore +
		nightWeight*nightScore +
		weekendWeight*weekendScore +
		stdDevWeight*cvScore

	return math.Max(0, math.Min(100, score))
}
