package constraint

import (
	"testing"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/errors"
	"github.com/hotelplan/hotelplan/pkg/model"
	"github.com/hotelplan/hotelplan/pkg/planner/requirement"
)

func buildTestModel(t *testing.T, roster model.Roster) *Model {
	t.Helper()
	engine := requirement.NewEngine()
	forecast := &model.Forecast{}
	for _, day := range model.AllWeekdays {
		forecast.CheckIns[day] = 100
		forecast.CheckOuts[day] = 100
	}
	table, err := engine.Compute(roster, forecast)
	if err != nil {
		t.Fatalf("需求计算失败: %v", err)
	}
	m, err := Build(roster, table)
	if err != nil {
		t.Fatalf("模型构建失败: %v", err)
	}
	return m
}

func countKind(m *Model, kind Kind) int {
	n := 0
	for _, c := range m.Constraints {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func TestBuild_InvalidInput(t *testing.T) {
	table := &model.RequirementTable{}
	if _, err := Build(model.Roster{}, table); !errors.Is(err, errors.CodeConfiguration) {
		t.Error("空名单应该返回配置错误")
	}
	if _, err := Build(model.SampleRoster(uuid.New()), nil); !errors.Is(err, errors.CodeConfiguration) {
		t.Error("缺少需求表应该返回配置错误")
	}
}

func TestBuild_VariableLayout(t *testing.T) {
	m := buildTestModel(t, model.SampleRoster(uuid.New()))

	if m.NumVars() != 15*21 {
		t.Errorf("变量总数 = %d, expected %d", m.NumVars(), 15*21)
	}

	// 编号与含义必须互逆
	for staffIdx := 0; staffIdx < m.NumStaff(); staffIdx++ {
		for _, day := range model.AllWeekdays {
			for _, shift := range model.AllShifts {
				id := m.VarID(staffIdx, day, shift)
				v := m.VarAt(id)
				if v.StaffIdx != staffIdx || v.Day != day || v.Shift != shift {
					t.Fatalf("VarID/VarAt 不互逆: id=%d got=%+v", id, v)
				}
			}
		}
	}
}

func TestBuild_ConstraintCounts(t *testing.T) {
	roster := model.SampleRoster(uuid.New())
	m := buildTestModel(t, roster)

	tests := []struct {
		kind     Kind
		expected int
	}{
		{KindDayExclusivity, 15 * 7},
		{KindWeeklyCap, 15},
		{KindConsecutiveCap, 15 * 2}, // 两个6天窗口
		{KindNightExclusive, 12},     // 非夜班合同的12人
		{KindNightContract, 3},       // 3名夜班接待员
		{KindNightHeadcount, 7},      // 每天一条
		{KindSupervisorFloor, 14},    // 7天×2个白班
		{KindCapacityCeiling, 14},    // 7天×2个白班
		{KindUnavailable, 0},         // 全员可用
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := countKind(m, tt.kind); got != tt.expected {
				t.Errorf("约束 %s 数量 = %d, expected %d", tt.kind, got, tt.expected)
			}
		})
	}
}

func TestBuild_UnavailableForcedZero(t *testing.T) {
	roster := model.SampleRoster(uuid.New())
	roster[5].Available = false
	m := buildTestModel(t, roster)

	if got := countKind(m, KindUnavailable); got != 1 {
		t.Fatalf("不可用约束数量 = %d, expected 1", got)
	}

	// 构造一个给不可用员工排班的取值向量，必须违反
	values := make([]int8, m.NumVars())
	values[m.VarID(5, model.Monday, model.ShiftMorning)] = 1
	violated := m.Violated(values)

	found := false
	for _, c := range violated {
		if c.Kind == KindUnavailable {
			found = true
		}
	}
	if !found {
		t.Error("不可用员工的排班应该违反约束")
	}
}

func TestBuild_NightHeadcountNeverUnsatisfiable(t *testing.T) {
	// 没有夜班接待员时不生成空变量的等式约束
	roster := model.SampleRoster(uuid.New())
	for _, s := range roster {
		if s.IsNightContract() {
			s.Available = false
		}
	}
	m := buildTestModel(t, roster)

	for _, c := range m.Constraints {
		if c.Kind == KindNightHeadcount && len(c.Vars) == 0 {
			t.Errorf("不应生成空变量的夜班人数约束: %s", c.Label)
		}
	}

	// 空排班在夜班人数约束上必须可满足（required 被池封顶为0）
	values := make([]int8, m.NumVars())
	for _, c := range m.Violated(values) {
		if c.Kind == KindNightHeadcount {
			t.Errorf("无人可排时夜班约束不应被违反: %s", c.Label)
		}
	}
}

func TestBuild_ConciergeForbiddenZones(t *testing.T) {
	roster := model.SampleRoster(uuid.New())
	m := buildTestModel(t, roster)

	conciergeIdx := -1
	for i, s := range roster {
		if s.Role == model.RoleConcierge {
			conciergeIdx = i
			break
		}
	}
	if conciergeIdx < 0 {
		t.Fatal("示例团队应该包含礼宾员")
	}

	tests := []struct {
		name  string
		day   model.Weekday
		shift model.ShiftKind
	}{
		{"周一午班", model.Monday, model.ShiftAfternoon},
		{"周三夜班", model.Wednesday, model.ShiftNight},
		{"周六早班", model.Saturday, model.ShiftMorning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := make([]int8, m.NumVars())
			values[m.VarID(conciergeIdx, tt.day, tt.shift)] = 1
			violated := false
			for _, c := range m.Violated(values) {
				if c.Kind == KindConciergeSlot {
					violated = true
				}
			}
			if !violated {
				t.Error("礼宾员禁排区应该被约束覆盖")
			}
		})
	}
}

func TestBuild_WeeklyCapUsesAbsence(t *testing.T) {
	roster := model.SampleRoster(uuid.New())
	roster[0].AbsenceDays = 3 // 全职5天 → 可工作2天
	m := buildTestModel(t, roster)

	for _, c := range m.Constraints {
		if c.Kind == KindWeeklyCap && len(c.Vars) == 21 && c.Vars[0] == m.VarID(0, model.Monday, model.ShiftMorning) {
			if c.Bound != 2 {
				t.Errorf("缺勤3天的全职员工周上限 = %d, expected 2", c.Bound)
			}
			return
		}
	}
	t.Error("没有找到员工0的周上限约束")
}
