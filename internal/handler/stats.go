// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/errors"
	"github.com/hotelplan/hotelplan/pkg/model"
	"github.com/hotelplan/hotelplan/pkg/planner/requirement"
	"github.com/hotelplan/hotelplan/pkg/stats"
)

// StatsHandler 统计分析处理器
type StatsHandler struct {
	workload *stats.WorkloadAnalyzer
	coverage *stats.CoverageAnalyzer
	engine   *requirement.Engine
}

// NewStatsHandler 创建统计分析处理器
func NewStatsHandler() *StatsHandler {
	return &StatsHandler{
		workload: stats.NewWorkloadAnalyzer(),
		coverage: stats.NewCoverageAnalyzer(),
		engine:   requirement.NewEngine(),
	}
}

// StatsRequest 统计请求
type StatsRequest struct {
	PropertyID  string            `json:"property_id"`
	WeekStart   string            `json:"week_start"`
	Staff       []StaffInput      `json:"staff"`
	Assignments []AssignmentInput `json:"assignments"`

	// 覆盖率分析需要预测来重建需求表
	CheckIns  map[string]int `json:"check_ins,omitempty"`
	CheckOuts map[string]int `json:"check_outs,omitempty"`
}

// Workload 工作量公平性分析API
func (h *StatsHandler) Workload(w http.ResponseWriter, r *http.Request) {
	roster, schedule, appErr := h.parseStatsRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	respondJSON(w, http.StatusOK, h.workload.Analyze(roster, schedule))
}

// Coverage 需求覆盖分析API
func (h *StatsHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	roster, appErr := buildRoster(req.PropertyID, req.Staff)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	forecast, err := model.ForecastFromMaps(req.CheckIns, req.CheckOuts)
	if err != nil {
		respondError(w, asAppError(err))
		return
	}

	table, err := h.engine.Compute(roster, forecast)
	if err != nil {
		respondError(w, asAppError(err))
		return
	}

	schedule, appErr := buildSchedule(req.WeekStart, req.Assignments)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	respondJSON(w, http.StatusOK, h.coverage.Analyze(table, schedule))
}

// parseStatsRequest 解析工作量统计请求
func (h *StatsHandler) parseStatsRequest(r *http.Request) (model.Roster, *model.Schedule, *errors.AppError) {
	if r.Method != http.MethodPost {
		return nil, nil, errors.New(errors.CodeInvalidInput, "仅支持POST方法")
	}

	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}

	roster, appErr := buildRoster(req.PropertyID, req.Staff)
	if appErr != nil {
		return nil, nil, appErr
	}

	schedule, appErr := buildSchedule(req.WeekStart, req.Assignments)
	if appErr != nil {
		return nil, nil, appErr
	}

	return roster, schedule, nil
}

// buildSchedule 将班次输入转换为排班
func buildSchedule(weekStart string, inputs []AssignmentInput) (*model.Schedule, *errors.AppError) {
	schedule := model.NewSchedule(uuid.Nil, weekStart)
	for _, a := range inputs {
		staffID, err := uuid.Parse(a.StaffID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+a.StaffID)
		}
		day, ok := model.ParseWeekday(a.Day)
		if !ok {
			return nil, errors.New(errors.CodeInvalidInput, "无效的日期名称: "+a.Day)
		}
		shift := model.ShiftKind(a.Shift)
		if shift != model.ShiftMorning && shift != model.ShiftAfternoon && shift != model.ShiftNight {
			return nil, errors.New(errors.CodeInvalidInput, "无效的班次类型: "+a.Shift)
		}
		schedule.Assignments = append(schedule.Assignments, model.Assignment{
			StaffID: staffID,
			Day:     day,
			Shift:   shift,
		})
	}
	return schedule, nil
}
