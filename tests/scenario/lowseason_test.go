package scenario

import (
	"testing"

	"github.com/hotelplan/hotelplan/pkg/model"
	"github.com/hotelplan/hotelplan/pkg/planner/requirement"
)

// TestLowSeasonZeroTraffic 测试淡季零客流的白班需求
// 工作日零入住零退房时，早午班各保留1人值守
func TestLowSeasonZeroTraffic(t *testing.T) {
	engine := requirement.NewEngine()
	roster := model.SampleRoster(testPropertyID())

	table, err := engine.Compute(roster, uniformForecast(0, 0))
	if err != nil {
		t.Fatalf("计算需求表失败: %v", err)
	}

	for _, day := range []model.Weekday{model.Monday, model.Wednesday, model.Friday} {
		morning := table.Get(day, model.ShiftMorning)
		afternoon := table.Get(day, model.ShiftAfternoon)

		t.Logf("%s: 早班=%d 午班=%d", day, morning.TotalPersonnel, afternoon.TotalPersonnel)

		if morning.TotalPersonnel != 1 {
			t.Errorf("%s 早班零客流应为1人，实际 %d", day, morning.TotalPersonnel)
		}
		if afternoon.TotalPersonnel != 1 {
			t.Errorf("%s 午班零客流应为1人，实际 %d", day, afternoon.TotalPersonnel)
		}
	}
}

// TestLowSeasonReliefLadder 测试低入住率减员的阶梯行为
func TestLowSeasonReliefLadder(t *testing.T) {
	engine := requirement.NewEngine()
	roster := model.SampleRoster(testPropertyID())

	testCases := []struct {
		name              string
		checkIns          int
		checkOuts         int
		expectedMorning   int
		expectedAfternoon int
	}{
		// 合计99 < 100，触发减员：午班 ceil(60/50)=2 → 1，早班已是下限1
		{"阈值之下", 60, 39, 1, 1},
		// 合计刚好100，不触发减员
		{"阈值临界", 60, 40, 1, 2},
		// 合计远超阈值
		{"正常客流", 120, 110, 3, 3},
		// 低客流但已是1人，减员不低于1
		{"减员下限", 20, 20, 1, 1},
	}

	for _, tc := range testCases {
		f := uniformForecast(tc.checkIns, tc.checkOuts)
		table, err := engine.Compute(roster, f)
		if err != nil {
			t.Fatalf("%s: 计算需求表失败: %v", tc.name, err)
		}

		// 早班看退房量、午班看入住量，用周一（工作日）检验
		morning := table.Get(model.Monday, model.ShiftMorning)
		afternoon := table.Get(model.Monday, model.ShiftAfternoon)

		if morning.TotalPersonnel != tc.expectedMorning {
			t.Errorf("%s: 早班期望%d人，实际%d人", tc.name, tc.expectedMorning, morning.TotalPersonnel)
		}
		if afternoon.TotalPersonnel != tc.expectedAfternoon {
			t.Errorf("%s: 午班期望%d人，实际%d人", tc.name, tc.expectedAfternoon, afternoon.TotalPersonnel)
		}
	}
}
