package stats

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/model"
)

func TestWorkloadAnalyze_EmptySchedule(t *testing.T) {
	analyzer := NewWorkloadAnalyzer()
	roster := model.SampleRoster(uuid.New())

	metrics := analyzer.Analyze(roster, model.NewSchedule(uuid.New(), "2026-08-31"))
	if metrics.OverallFairnessScore != 100 {
		t.Errorf("空排班公平性评分 = %.1f, expected 100", metrics.OverallFairnessScore)
	}
}

func TestWorkloadAnalyze_UniformLoad(t *testing.T) {
	analyzer := NewWorkloadAnalyzer()
	roster := model.SampleRoster(uuid.New())

	// 每人各2班，完全均匀
	schedule := model.NewSchedule(uuid.New(), "2026-08-31")
	for i, s := range roster {
		day := model.Weekday(i % 7)
		schedule.Assignments = append(schedule.Assignments,
			model.Assignment{StaffID: s.ID, Day: day, Shift: model.ShiftMorning},
			model.Assignment{StaffID: s.ID, Day: model.Weekday((i + 3) % 7), Shift: model.ShiftAfternoon},
		)
	}

	metrics := analyzer.Analyze(roster, schedule)
	if metrics.WorkloadGini > 0.001 {
		t.Errorf("均匀负载基尼系数 = %.4f, expected ~0", metrics.WorkloadGini)
	}
	if math.Abs(metrics.AvgHoursPerStaff-2*model.ShiftHours) > 0.001 {
		t.Errorf("人均工时 = %.1f, expected %d", metrics.AvgHoursPerStaff, 2*model.ShiftHours)
	}
	if metrics.HoursRange != 0 {
		t.Errorf("工时极差 = %.1f, expected 0", metrics.HoursRange)
	}
}

func TestWorkloadAnalyze_SkewedLoad(t *testing.T) {
	analyzer := NewWorkloadAnalyzer()
	roster := model.SampleRoster(uuid.New())

	// 一人5班，另一人1班
	schedule := model.NewSchedule(uuid.New(), "2026-08-31")
	for d := 0; d < 5; d++ {
		schedule.Assignments = append(schedule.Assignments,
			model.Assignment{StaffID: roster[0].ID, Day: model.Weekday(d), Shift: model.ShiftMorning})
	}
	schedule.Assignments = append(schedule.Assignments,
		model.Assignment{StaffID: roster[1].ID, Day: model.Monday, Shift: model.ShiftAfternoon})

	metrics := analyzer.Analyze(roster, schedule)
	if metrics.WorkloadGini <= 0.1 {
		t.Errorf("倾斜负载基尼系数 = %.4f, 应该明显大于0", metrics.WorkloadGini)
	}
	if metrics.MaxHours != 5*model.ShiftHours {
		t.Errorf("最大工时 = %.1f, expected %d", metrics.MaxHours, 5*model.ShiftHours)
	}
	if metrics.MinHours != model.ShiftHours {
		t.Errorf("最小工时 = %.1f, expected %d", metrics.MinHours, model.ShiftHours)
	}

	// 统计按工时降序
	if len(metrics.StaffStats) != 2 || metrics.StaffStats[0].Shifts != 5 {
		t.Errorf("员工统计排序错误: %+v", metrics.StaffStats)
	}
}

func TestWorkloadAnalyze_NightAndWeekendCounts(t *testing.T) {
	analyzer := NewWorkloadAnalyzer()
	roster := model.SampleRoster(uuid.New())

	schedule := model.NewSchedule(uuid.New(), "2026-08-31")
	schedule.Assignments = []model.Assignment{
		{StaffID: roster[0].ID, Day: model.Monday, Shift: model.ShiftNight},
		{StaffID: roster[0].ID, Day: model.Saturday, Shift: model.ShiftMorning},
		{StaffID: roster[0].ID, Day: model.Sunday, Shift: model.ShiftNight},
	}

	metrics := analyzer.Analyze(roster, schedule)
	if len(metrics.StaffStats) != 1 {
		t.Fatalf("员工统计数 = %d, expected 1", len(metrics.StaffStats))
	}
	stat := metrics.StaffStats[0]
	if stat.NightShifts != 2 {
		t.Errorf("夜班数 = %d, expected 2", stat.NightShifts)
	}
	if stat.WeekendShifts != 2 {
		t.Errorf("周末班数 = %d, expected 2", stat.WeekendShifts)
	}
}

func TestGini(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
		delta    float64
	}{
		{"完全均匀", []float64{10, 10, 10, 10}, 0, 0.001},
		{"完全集中", []float64{0, 0, 0, 40}, 0.75, 0.01},
		{"空列表", nil, 0, 0.001},
		{"全零", []float64{0, 0, 0}, 0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gini(tt.values)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("gini() = %.4f, expected %.4f ± %.3f", got, tt.expected, tt.delta)
			}
		})
	}
}
