// Package integration 提供API集成测试
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/internal/handler"
	"github.com/hotelplan/hotelplan/pkg/model"
	"github.com/hotelplan/hotelplan/pkg/planner/solver"
)

// testServer 组装与生产环境一致的路由
func testServer() *httptest.Server {
	opts := solver.Options{TimeBudget: 5 * time.Second, Workers: 2}

	planningHandler := handler.NewPlanningHandler(opts, nil)
	statsHandler := handler.NewStatsHandler()
	rulesHandler := handler.NewRulesHandler()
	rosterHandler := handler.NewRosterHandler(nil)
	swapHandler := handler.NewSwapHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/planning/requirements", planningHandler.Requirements)
	mux.HandleFunc("/api/v1/planning/feasibility", planningHandler.Feasibility)
	mux.HandleFunc("/api/v1/planning/generate", planningHandler.Generate)
	mux.HandleFunc("/api/v1/planning/validate", planningHandler.Validate)
	mux.HandleFunc("/api/v1/rules/library", rulesHandler.Library)
	mux.HandleFunc("/api/v1/stats/workload", statsHandler.Workload)
	mux.HandleFunc("/api/v1/stats/coverage", statsHandler.Coverage)
	mux.HandleFunc("/api/v1/roster/sample", rosterHandler.Sample)
	mux.HandleFunc("/api/v1/swaps/evaluate", swapHandler.Evaluate)
	mux.HandleFunc("/api/v1/swaps/recommend", swapHandler.Recommend)

	return httptest.NewServer(mux)
}

// sampleStaffInputs 示例团队的请求格式
func sampleStaffInputs() []handler.StaffInput {
	var inputs []handler.StaffInput
	for _, s := range model.SampleRoster(uuid.New()) {
		inputs = append(inputs, handler.StaffInput{
			ID:        s.ID.String(),
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Role:      string(s.Role),
			Contract:  string(s.Contract),
		})
	}
	return inputs
}

// uniformWeek 每天相同数值的预测映射
func uniformWeek(n int) map[string]int {
	out := make(map[string]int, 7)
	for _, day := range model.AllWeekdays {
		out[day.String()] = n
	}
	return out
}

func postJSON(t *testing.T, url string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("序列化请求失败: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("读取响应失败: %v", err)
	}
	return resp, buf.Bytes()
}

// TestRequirementsAPI 测试需求计算端点
func TestRequirementsAPI(t *testing.T) {
	server := testServer()
	defer server.Close()

	resp, body := postJSON(t, server.URL+"/api/v1/planning/requirements", handler.PlanningRequest{
		WeekStart: "2026-08-31",
		Staff:     sampleStaffInputs(),
		CheckIns:  uniformWeek(150),
		CheckOuts: uniformWeek(150),
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200, body=%s", resp.StatusCode, body)
	}

	var out struct {
		Requirements []model.DailyRequirement `json:"requirements"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(out.Requirements) != 21 {
		t.Errorf("需求表应有21格，实际 %d", len(out.Requirements))
	}
}

// TestGenerateAPI 测试生成端点的成功路径
func TestGenerateAPI(t *testing.T) {
	server := testServer()
	defer server.Close()

	resp, body := postJSON(t, server.URL+"/api/v1/planning/generate", handler.PlanningRequest{
		PropertyID: uuid.New().String(),
		WeekStart:  "2026-08-31",
		Staff:      sampleStaffInputs(),
		CheckIns:   uniformWeek(120),
		CheckOuts:  uniformWeek(120),
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200, body=%s", resp.StatusCode, body)
	}

	var out handler.GenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	if out.Status != string(model.StatusOptimal) && out.Status != string(model.StatusApproximate) {
		t.Errorf("求解状态 = %s", out.Status)
	}
	if len(out.Assignments) == 0 {
		t.Error("应返回班次列表")
	}
	if out.Validation == nil || !out.Validation.Valid {
		t.Error("生成的排班应通过复核")
	}
	if out.ScheduleID == "" {
		t.Error("应返回排班ID")
	}

	t.Logf("生成 %d 个班次, 状态=%s, 节点=%d",
		len(out.Assignments), out.Status, out.Statistics.NodesExplored)
}

// TestGenerateAPIFeasibilityBlocked 测试可行性阻断返回422
func TestGenerateAPIFeasibilityBlocked(t *testing.T) {
	server := testServer()
	defer server.Close()

	// 没有夜班接待员的名单
	var staff []handler.StaffInput
	for _, in := range sampleStaffInputs() {
		if in.Contract != string(model.ContractNight) {
			staff = append(staff, in)
		}
	}

	resp, body := postJSON(t, server.URL+"/api/v1/planning/generate", handler.PlanningRequest{
		WeekStart: "2026-08-31",
		Staff:     staff,
		CheckIns:  uniformWeek(120),
		CheckOuts: uniformWeek(120),
	})

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("状态码 = %d, 期望 422, body=%s", resp.StatusCode, body)
	}

	var out struct {
		Error   bool   `json:"error"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if out.Code != "FEASIBILITY_BLOCKED" {
		t.Errorf("错误码 = %s, 期望 FEASIBILITY_BLOCKED", out.Code)
	}
}

// TestGenerateAPIBadInput 测试非法输入返回400
func TestGenerateAPIBadInput(t *testing.T) {
	server := testServer()
	defer server.Close()

	testCases := []struct {
		name string
		req  handler.PlanningRequest
	}{
		{
			name: "空名单",
			req: handler.PlanningRequest{
				WeekStart: "2026-08-31",
				CheckIns:  uniformWeek(100),
				CheckOuts: uniformWeek(100),
			},
		},
		{
			name: "岗位无效",
			req: handler.PlanningRequest{
				WeekStart: "2026-08-31",
				Staff: []handler.StaffInput{
					{FirstName: "X", LastName: "Y", Role: "manager", Contract: "full_time"},
				},
				CheckIns:  uniformWeek(100),
				CheckOuts: uniformWeek(100),
			},
		},
		{
			name: "预测缺天",
			req: handler.PlanningRequest{
				WeekStart: "2026-08-31",
				Staff:     sampleStaffInputs(),
				CheckIns:  map[string]int{"monday": 100},
				CheckOuts: uniformWeek(100),
			},
		},
	}

	for _, tc := range testCases {
		resp, body := postJSON(t, server.URL+"/api/v1/planning/generate", tc.req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: 状态码 = %d, 期望 400, body=%s", tc.name, resp.StatusCode, body)
		}
	}
}

// TestValidateAPI 测试复核端点
func TestValidateAPI(t *testing.T) {
	server := testServer()
	defer server.Close()

	staff := sampleStaffInputs()

	// 手排一份残缺排班：只有周一早班两个人
	resp, body := postJSON(t, server.URL+"/api/v1/planning/validate", handler.ValidateRequest{
		WeekStart: "2026-08-31",
		Staff:     staff,
		Assignments: []handler.AssignmentInput{
			{StaffID: staff[0].ID, Day: "monday", Shift: "morning"},
			{StaffID: staff[5].ID, Day: "monday", Shift: "morning"},
		},
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200, body=%s", resp.StatusCode, body)
	}

	var out struct {
		Valid      bool `json:"valid"`
		Violations []struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"violations"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	// 残缺排班必然有违规（夜班无人、其余白班无人值守），复核应忠实报告
	if out.Valid {
		t.Error("残缺排班不应通过复核")
	}
	for _, v := range out.Violations {
		t.Logf("违规: [%s] %s", v.Kind, v.Message)
	}
}

// TestRulesLibraryAPI 测试规则目录端点
func TestRulesLibraryAPI(t *testing.T) {
	server := testServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/rules/library")
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200", resp.StatusCode)
	}

	var out struct {
		Library []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"library"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	if len(out.Library) == 0 {
		t.Fatal("规则目录不应为空")
	}

	names := make(map[string]bool)
	for _, rule := range out.Library {
		names[rule.Name] = true
	}
	for _, want := range []string{"service_ratio", "shift_capacity", "night_contract_only", "supervisor_floor"} {
		if !names[want] {
			t.Errorf("规则目录缺少 %s", want)
		}
	}
}

// TestRosterSampleAPI 测试示例名单端点
func TestRosterSampleAPI(t *testing.T) {
	server := testServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/roster/sample")
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200", resp.StatusCode)
	}

	var out struct {
		Staff []model.StaffMember `json:"staff"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(out.Staff) != 15 {
		t.Errorf("示例名单应有15人，实际 %d", len(out.Staff))
	}
}

// TestStatsWorkloadAPI 测试工作量统计端点
func TestStatsWorkloadAPI(t *testing.T) {
	server := testServer()
	defer server.Close()

	staff := sampleStaffInputs()

	resp, body := postJSON(t, server.URL+"/api/v1/stats/workload", handler.StatsRequest{
		WeekStart: "2026-08-31",
		Staff:     staff,
		Assignments: []handler.AssignmentInput{
			{StaffID: staff[0].ID, Day: "monday", Shift: "morning"},
			{StaffID: staff[0].ID, Day: "tuesday", Shift: "morning"},
			{StaffID: staff[5].ID, Day: "monday", Shift: "afternoon"},
		},
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200, body=%s", resp.StatusCode, body)
	}

	var out struct {
		WorkloadGini     float64 `json:"workload_gini"`
		AvgHoursPerStaff float64 `json:"avg_hours_per_staff"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if out.WorkloadGini <= 0 {
		t.Errorf("倾斜负载的基尼系数应大于0，实际 %f", out.WorkloadGini)
	}
	if out.AvgHoursPerStaff <= 0 {
		t.Errorf("人均工时应大于0，实际 %f", out.AvgHoursPerStaff)
	}
}

// TestSwapEvaluateAPI 测试换班评估端点
func TestSwapEvaluateAPI(t *testing.T) {
	server := testServer()
	defer server.Close()

	staff := sampleStaffInputs()

	// staff[5]（接待员）的周一早班由空闲的 staff[6] 接手
	resp, body := postJSON(t, server.URL+"/api/v1/swaps/evaluate", handler.SwapRequest{
		WeekStart: "2026-08-31",
		Staff:     staff,
		Assignments: []handler.AssignmentInput{
			{StaffID: staff[0].ID, Day: "monday", Shift: "morning"},
			{StaffID: staff[5].ID, Day: "monday", Shift: "morning"},
		},
		Source:   handler.AssignmentInput{StaffID: staff[5].ID, Day: "monday", Shift: "morning"},
		TargetID: staff[6].ID,
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200, body=%s", resp.StatusCode, body)
	}

	var out struct {
		Feasible bool    `json:"feasible"`
		Score    float64 `json:"score"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if !out.Feasible {
		t.Errorf("空闲接待员接手白班应可行, body=%s", body)
	}
}

// TestMethodNotAllowed 测试方法校验
func TestMethodNotAllowed(t *testing.T) {
	server := testServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/planning/generate")
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("GET生成端点状态码 = %d, 期望 400", resp.StatusCode)
	}
}
