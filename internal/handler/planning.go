// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/internal/metrics"
	"github.com/hotelplan/hotelplan/internal/repository"
	"github.com/hotelplan/hotelplan/pkg/errors"
	"github.com/hotelplan/hotelplan/pkg/logger"
	"github.com/hotelplan/hotelplan/pkg/model"
	"github.com/hotelplan/hotelplan/pkg/planner"
	"github.com/hotelplan/hotelplan/pkg/planner/feasibility"
	"github.com/hotelplan/hotelplan/pkg/planner/solver"
	"github.com/hotelplan/hotelplan/pkg/planner/validator"
	"github.com/hotelplan/hotelplan/pkg/stats"
)

// PlanningHandler 周计划处理器
// scheduleRepo 为空时不持久化，生成端点照常工作
type PlanningHandler struct {
	solverOpts   solver.Options
	workload     *stats.WorkloadAnalyzer
	coverage     *stats.CoverageAnalyzer
	scheduleRepo *repository.ScheduleRepository
}

// NewPlanningHandler 创建周计划处理器
func NewPlanningHandler(opts solver.Options, scheduleRepo *repository.ScheduleRepository) *PlanningHandler {
	return &PlanningHandler{
		solverOpts:   opts,
		workload:     stats.NewWorkloadAnalyzer(),
		coverage:     stats.NewCoverageAnalyzer(),
		scheduleRepo: scheduleRepo,
	}
}

// StaffInput 员工输入
type StaffInput struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Role        string   `json:"role"`          // supervisor/receptionist/concierge
	Contract    string   `json:"contract_type"` // full_time/part_time_4day/part_time_3day/night
	Skills      []string `json:"skills,omitempty"`
	Available   *bool    `json:"available,omitempty"` // 缺省为可用
	AbsenceDays int      `json:"absence_days,omitempty"`
	Note        string   `json:"unavailability_note,omitempty"`
}

// PlanningRequest 周计划请求
type PlanningRequest struct {
	PropertyID string             `json:"property_id"`
	WeekStart  string             `json:"week_start"`
	Staff      []StaffInput       `json:"staff"`
	CheckIns   map[string]int     `json:"check_ins"`
	CheckOuts  map[string]int     `json:"check_outs"`
	Options    *SolveOptionsInput `json:"options,omitempty"`
}

// SolveOptionsInput 求解选项
type SolveOptionsInput struct {
	TimeBudgetSeconds int   `json:"time_budget_seconds,omitempty"`
	MaxNodes          int64 `json:"max_nodes,omitempty"`
	Workers           int   `json:"workers,omitempty"`
}

// AssignmentOutput 班次输出
type AssignmentOutput struct {
	StaffID   string `json:"staff_id"`
	StaffName string `json:"staff_name,omitempty"`
	Role      string `json:"role,omitempty"`
	Day       string `json:"day"`
	Shift     string `json:"shift"`
	Hours     int    `json:"hours"`
}

// GenerateResponse 周计划生成响应
type GenerateResponse struct {
	Status       string                   `json:"status"` // optimal/approximate
	ScheduleID   string                   `json:"schedule_id"`
	WeekStart    string                   `json:"week_start"`
	Assignments  []AssignmentOutput       `json:"assignments"`
	Requirements []model.DailyRequirement `json:"requirements"`
	Feasibility  *feasibility.Report      `json:"feasibility"`
	Validation   *validator.Report        `json:"validation"`
	Workload     *stats.WorkloadMetrics   `json:"workload"`
	Coverage     *stats.CoverageMetrics   `json:"coverage"`
	Statistics   solver.Statistics        `json:"statistics"`
	Duration     string                   `json:"duration"`
	Message      string                   `json:"message,omitempty"`
}

// Requirements 计算一周人力需求表
func (h *PlanningHandler) Requirements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req PlanningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	roster, forecast, appErr := h.parseInputs(&req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	p := planner.New(h.solverOpts)
	table, err := p.ComputeRequirements(roster, forecast)
	if err != nil {
		respondError(w, asAppError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"requirements": flattenTable(table),
	})
}

// Feasibility 检查人力配置可行性
func (h *PlanningHandler) Feasibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req PlanningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	roster, appErr := h.parseRoster(&req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	p := planner.New(h.solverOpts)
	report, err := p.CheckFeasibility(roster)
	if err != nil {
		respondError(w, asAppError(err))
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Generate 生成周排班
func (h *PlanningHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req PlanningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	roster, forecast, appErr := h.parseInputs(&req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	propertyID := uuid.Nil
	if req.PropertyID != "" {
		id, err := uuid.Parse(req.PropertyID)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的酒店ID格式"))
			return
		}
		propertyID = id
	}

	opts := h.solverOpts
	if req.Options != nil {
		if req.Options.TimeBudgetSeconds > 0 {
			opts.TimeBudget = time.Duration(req.Options.TimeBudgetSeconds) * time.Second
		}
		if req.Options.MaxNodes > 0 {
			opts.MaxNodes = req.Options.MaxNodes
		}
		if req.Options.Workers > 0 {
			opts.Workers = req.Options.Workers
		}
	}

	p := planner.New(opts)
	result, err := p.GenerateWeek(r.Context(), propertyID, req.WeekStart, roster, forecast)
	if err != nil {
		respondError(w, asAppError(err))
		return
	}

	// 可行性阻断：422，带阻断明细
	if !result.Feasibility.Feasible {
		for _, b := range result.Feasibility.Blockers {
			metrics.RecordFeasibilityBlocked(string(b.Kind))
		}
		respondError(w, errors.FeasibilityBlocked(result.Feasibility.BlockerMessages()).
			WithField("feasibility", result.Feasibility))
		return
	}

	metrics.RecordPlanGeneration(string(result.Solve.Status), result.Duration, result.Solve.Statistics.NodesExplored)

	// 无可行解：422，带求解统计
	if result.Solve.Status == model.StatusInfeasible {
		respondError(w, errors.NoFeasibleSolution(result.Solve.Message).
			WithField("statistics", result.Solve.Statistics))
		return
	}

	for _, v := range result.Validation.Violations {
		metrics.RecordValidationViolation(string(v.Kind))
	}

	// 持久化为可选：数据库未接入时只返回结果
	if h.scheduleRepo != nil {
		if err := h.scheduleRepo.Create(r.Context(), result.Schedule); err != nil {
			logger.Warn().Err(err).Str("week_start", req.WeekStart).Msg("保存排班失败")
		}
	}

	workload := h.workload.Analyze(roster, result.Schedule)
	coverage := h.coverage.Analyze(result.Requirements, result.Schedule)
	if propertyID != uuid.Nil {
		metrics.SetFairnessGini(propertyID.String(), "workload", workload.WorkloadGini)
		metrics.SetCoverageRate(propertyID.String(), coverage.OverallCoverage)
	}

	resp := GenerateResponse{
		Status:       string(result.Solve.Status),
		ScheduleID:   result.Schedule.ID.String(),
		WeekStart:    req.WeekStart,
		Assignments:  assignmentOutputs(roster, result.Schedule.Assignments),
		Requirements: flattenTable(result.Requirements),
		Feasibility:  result.Feasibility,
		Validation:   result.Validation,
		Workload:     workload,
		Coverage:     coverage,
		Statistics:   result.Solve.Statistics,
		Duration:     result.Duration.String(),
		Message:      result.Solve.Message,
	}

	respondJSON(w, http.StatusOK, resp)
}

// ValidateRequest 排班复核请求
type ValidateRequest struct {
	PropertyID  string            `json:"property_id"`
	WeekStart   string            `json:"week_start"`
	Staff       []StaffInput      `json:"staff"`
	Assignments []AssignmentInput `json:"assignments"`
}

// AssignmentInput 班次输入
type AssignmentInput struct {
	StaffID string `json:"staff_id"`
	Day     string `json:"day"`
	Shift   string `json:"shift"`
}

// Validate 复核一份排班（含人工改动过的）
func (h *PlanningHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	roster, appErr := buildRoster(req.PropertyID, req.Staff)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	schedule := model.NewSchedule(uuid.Nil, req.WeekStart)
	for _, a := range req.Assignments {
		staffID, err := uuid.Parse(a.StaffID)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+a.StaffID))
			return
		}
		day, ok := model.ParseWeekday(a.Day)
		if !ok {
			respondError(w, errors.New(errors.CodeInvalidInput, "无效的日期名称: "+a.Day))
			return
		}
		shift := model.ShiftKind(a.Shift)
		if shift != model.ShiftMorning && shift != model.ShiftAfternoon && shift != model.ShiftNight {
			respondError(w, errors.New(errors.CodeInvalidInput, "无效的班次类型: "+a.Shift))
			return
		}
		schedule.Assignments = append(schedule.Assignments, model.Assignment{
			StaffID: staffID,
			Day:     day,
			Shift:   shift,
		})
	}

	p := planner.New(h.solverOpts)
	report := p.ValidateSchedule(roster, schedule)
	for _, v := range report.Violations {
		metrics.RecordValidationViolation(string(v.Kind))
	}

	respondJSON(w, http.StatusOK, report)
}

// Schedules 查询历史排班：GET列表，带week_start时返回该周最新一份
func (h *PlanningHandler) Schedules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	if h.scheduleRepo == nil {
		respondError(w, errors.New(errors.CodeInternal, "数据库未接入，历史排班不可用"))
		return
	}

	query := r.URL.Query()

	var propertyID *uuid.UUID
	if raw := query.Get("property_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的酒店ID格式"))
			return
		}
		propertyID = &id
	}

	if weekStart := query.Get("week_start"); weekStart != "" {
		if propertyID == nil {
			respondError(w, errors.New(errors.CodeInvalidInput, "按周查询需要提供酒店ID"))
			return
		}
		schedule, err := h.scheduleRepo.GetByWeek(r.Context(), *propertyID, weekStart)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询排班失败"))
			return
		}
		if schedule == nil {
			respondError(w, errors.NotFound("排班", weekStart))
			return
		}
		respondJSON(w, http.StatusOK, schedule)
		return
	}

	filter := repository.DefaultListFilter()
	filter.PropertyID = propertyID
	filter.Status = query.Get("status")
	filter.StartDate = query.Get("from")
	filter.EndDate = query.Get("to")

	schedules, total, err := h.scheduleRepo.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询排班列表失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"schedules": schedules,
		"total":     total,
	})
}

// parseInputs 解析员工名单与预测
func (h *PlanningHandler) parseInputs(req *PlanningRequest) (model.Roster, *model.Forecast, *errors.AppError) {
	roster, appErr := h.parseRoster(req)
	if appErr != nil {
		return nil, nil, appErr
	}

	forecast, err := model.ForecastFromMaps(req.CheckIns, req.CheckOuts)
	if err != nil {
		return nil, nil, asAppError(err)
	}

	return roster, forecast, nil
}

// parseRoster 解析员工名单
func (h *PlanningHandler) parseRoster(req *PlanningRequest) (model.Roster, *errors.AppError) {
	return buildRoster(req.PropertyID, req.Staff)
}

// buildRoster 将员工输入转换为名单快照
func buildRoster(propertyID string, inputs []StaffInput) (model.Roster, *errors.AppError) {
	if len(inputs) == 0 {
		return nil, errors.Configuration("员工名单为空")
	}

	pid := uuid.Nil
	if propertyID != "" {
		id, err := uuid.Parse(propertyID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的酒店ID格式")
		}
		pid = id
	}

	roster := make(model.Roster, 0, len(inputs))
	for _, in := range inputs {
		id := uuid.New()
		if in.ID != "" {
			parsed, err := uuid.Parse(in.ID)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+in.ID)
			}
			id = parsed
		}

		role := model.Role(in.Role)
		if !role.Valid() {
			return nil, errors.Configuration("员工 " + in.FirstName + " " + in.LastName + " 岗位无效: " + in.Role)
		}
		contract := model.ContractType(in.Contract)
		if !contract.Valid() {
			return nil, errors.Configuration("员工 " + in.FirstName + " " + in.LastName + " 合同类型无效: " + in.Contract)
		}
		if in.AbsenceDays < 0 || in.AbsenceDays > 7 {
			return nil, errors.Configuration("员工 " + in.FirstName + " " + in.LastName + " 缺勤天数超出0-7范围")
		}

		available := true
		if in.Available != nil {
			available = *in.Available
		}

		staff := &model.StaffMember{
			BaseModel:          model.BaseModel{ID: id},
			PropertyID:         pid,
			FirstName:          in.FirstName,
			LastName:           in.LastName,
			Role:               role,
			Contract:           contract,
			Skills:             in.Skills,
			Available:          available,
			AbsenceDays:        in.AbsenceDays,
			UnavailabilityNote: in.Note,
		}
		roster = append(roster, staff)
	}

	return roster, nil
}

// flattenTable 将需求表展开为21格列表
func flattenTable(table *model.RequirementTable) []model.DailyRequirement {
	out := make([]model.DailyRequirement, 0, 21)
	for _, day := range model.AllWeekdays {
		for _, shift := range model.AllShifts {
			out = append(out, *table.Get(day, shift))
		}
	}
	return out
}

// assignmentOutputs 将班次转换为响应格式
func assignmentOutputs(roster model.Roster, assignments []model.Assignment) []AssignmentOutput {
	out := make([]AssignmentOutput, len(assignments))
	for i, a := range assignments {
		o := AssignmentOutput{
			StaffID: a.StaffID.String(),
			Day:     a.Day.String(),
			Shift:   string(a.Shift),
			Hours:   model.ShiftHours,
		}
		if staff := roster.ByID(a.StaffID); staff != nil {
			o.StaffName = staff.FullName()
			o.Role = string(staff.Role)
		}
		out[i] = o
	}
	return out
}

// asAppError 统一错误类型
func asAppError(err error) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	return errors.Wrap(err, errors.CodeInternal, "内部错误")
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
		"fields":  err.Fields,
	})
}
