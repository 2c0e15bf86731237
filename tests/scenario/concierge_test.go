package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/hotelplan/hotelplan/pkg/model"
	"github.com/hotelplan/hotelplan/pkg/planner"
	"github.com/hotelplan/hotelplan/pkg/planner/solver"
	"github.com/hotelplan/hotelplan/pkg/planner/validator"
)

// TestNoConciergeAvailable 测试无礼宾员时的整条流水线
// 需求表仍保留工作日早班的礼宾工位，但求解器不排入礼宾员，
// 复核也不报礼宾违规（没人可排就不要求存在）
func TestNoConciergeAvailable(t *testing.T) {
	roster := rosterWithout(model.RoleConcierge)

	p := planner.New(solver.Options{TimeBudget: 3 * time.Second, Workers: 2})
	result, err := p.GenerateWeek(context.Background(), testPropertyID(), "2026-08-31", roster, uniformForecast(150, 150))
	if err != nil {
		t.Fatalf("流水线执行失败: %v", err)
	}

	// 需求表结构上保留礼宾工位
	for _, day := range model.AllWeekdays {
		morning := result.Requirements.Get(day, model.ShiftMorning)
		wantSlot := 1
		if day.IsWeekend() {
			wantSlot = 0
		}
		if morning.ConciergeSlot != wantSlot {
			t.Errorf("%s 早班礼宾工位应为%d，实际 %d", day, wantSlot, morning.ConciergeSlot)
		}
	}

	if !result.Feasibility.Feasible {
		t.Fatalf("缺礼宾员只是警告不是阻断: %v", result.Feasibility.BlockerMessages())
	}
	if result.Schedule == nil {
		t.Fatal("应生成排班")
	}

	t.Logf("求解状态=%s 班次数=%d", result.Schedule.Status, result.Schedule.TotalAssignments())

	// 排班中不应出现礼宾员（名单里根本没有）
	for _, a := range result.Schedule.Assignments {
		staff := roster.ByID(a.StaffID)
		if staff == nil {
			t.Fatalf("排班引用了名单外的员工: %s", a.StaffID)
		}
		if staff.Role == model.RoleConcierge {
			t.Errorf("不应排入礼宾员")
		}
	}

	// 复核不应报礼宾违规
	for _, v := range result.Validation.Violations {
		if v.Kind == validator.ViolationConcierge {
			t.Errorf("无礼宾员可用时不应报礼宾违规: %s", v.Message)
		}
	}
}

// TestConciergeWeekdayMorningOnly 测试礼宾员只上工作日早班
func TestConciergeWeekdayMorningOnly(t *testing.T) {
	roster := model.SampleRoster(testPropertyID())

	p := planner.New(solver.Options{TimeBudget: 3 * time.Second, Workers: 2})
	result, err := p.GenerateWeek(context.Background(), testPropertyID(), "2026-08-31", roster, uniformForecast(150, 150))
	if err != nil {
		t.Fatalf("流水线执行失败: %v", err)
	}
	if result.Schedule == nil {
		t.Fatalf("应生成排班: %v", result.Feasibility.BlockerMessages())
	}

	for _, a := range result.Schedule.Assignments {
		staff := roster.ByID(a.StaffID)
		if staff == nil || staff.Role != model.RoleConcierge {
			continue
		}
		if a.Shift != model.ShiftMorning {
			t.Errorf("礼宾员不应上%s班", a.Shift)
		}
		if a.Day.IsWeekend() {
			t.Errorf("礼宾员不应在周末出勤")
		}
	}

	// 有礼宾员可用时，每个工作日早班恰好1名
	for _, day := range model.AllWeekdays {
		if day.IsWeekend() {
			continue
		}
		concierges := 0
		for _, id := range result.Schedule.Cell(day, model.ShiftMorning) {
			if staff := roster.ByID(id); staff != nil && staff.Role == model.RoleConcierge {
				concierges++
			}
		}
		if concierges != 1 {
			t.Errorf("%s 早班应有恰好1名礼宾员，实际 %d", day, concierges)
		}
	}
}
