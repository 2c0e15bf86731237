// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/errors"
	"github.com/hotelplan/hotelplan/pkg/model"
	"github.com/hotelplan/hotelplan/pkg/swap"
)

// SwapHandler 换班处理器
type SwapHandler struct {
	evaluator   *swap.Evaluator
	recommender *swap.Recommender
}

// NewSwapHandler 创建换班处理器
func NewSwapHandler() *SwapHandler {
	return &SwapHandler{
		evaluator:   swap.NewEvaluator(),
		recommender: swap.NewRecommender(),
	}
}

// SwapRequest 换班请求
type SwapRequest struct {
	PropertyID  string            `json:"property_id"`
	WeekStart   string            `json:"week_start"`
	Staff       []StaffInput      `json:"staff"`
	Assignments []AssignmentInput `json:"assignments"`

	Source      AssignmentInput `json:"source"`
	TargetID    string          `json:"target_id,omitempty"`
	Exchange    bool            `json:"exchange,omitempty"`
	TargetDay   string          `json:"target_day,omitempty"`
	TargetShift string          `json:"target_shift,omitempty"`

	MaxResults int     `json:"max_results,omitempty"`
	MinScore   float64 `json:"min_score,omitempty"`
}

// Evaluate 评估一次换班
func (h *SwapHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	req, roster, schedule, appErr := h.parse(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	source, appErr := parseAssignment(req.Source)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的目标员工ID格式"))
		return
	}

	swapReq := &swap.Request{
		Source:   source,
		TargetID: targetID,
		Exchange: req.Exchange,
	}
	if req.Exchange {
		day, ok := model.ParseWeekday(req.TargetDay)
		if !ok {
			respondError(w, errors.New(errors.CodeInvalidInput, "无效的目标日期名称: "+req.TargetDay))
			return
		}
		swapReq.TargetDay = day
		swapReq.TargetShift = model.ShiftKind(req.TargetShift)
	}

	respondJSON(w, http.StatusOK, h.evaluator.Evaluate(roster, schedule, swapReq))
}

// Recommend 为一个班次推荐可接手的员工
func (h *SwapHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	req, roster, schedule, appErr := h.parse(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	source, appErr := parseAssignment(req.Source)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	opts := swap.DefaultOptions()
	if req.MaxResults > 0 {
		opts.MaxResults = req.MaxResults
	}
	if req.MinScore > 0 {
		opts.MinScore = req.MinScore
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": h.recommender.Recommend(roster, schedule, source, opts),
	})
}

// parse 解析换班请求的公共部分
func (h *SwapHandler) parse(r *http.Request) (*SwapRequest, model.Roster, *model.Schedule, *errors.AppError) {
	if r.Method != http.MethodPost {
		return nil, nil, nil, errors.New(errors.CodeInvalidInput, "仅支持POST方法")
	}

	var req SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, nil, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}

	roster, appErr := buildRoster(req.PropertyID, req.Staff)
	if appErr != nil {
		return nil, nil, nil, appErr
	}

	schedule, appErr := buildSchedule(req.WeekStart, req.Assignments)
	if appErr != nil {
		return nil, nil, nil, appErr
	}

	return &req, roster, schedule, nil
}

// parseAssignment 解析单个班次输入
func parseAssignment(in AssignmentInput) (model.Assignment, *errors.AppError) {
	staffID, err := uuid.Parse(in.StaffID)
	if err != nil {
		return model.Assignment{}, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+in.StaffID)
	}
	day, ok := model.ParseWeekday(in.Day)
	if !ok {
		return model.Assignment{}, errors.New(errors.CodeInvalidInput, "无效的日期名称: "+in.Day)
	}
	shift := model.ShiftKind(in.Shift)
	if shift != model.ShiftMorning && shift != model.ShiftAfternoon && shift != model.ShiftNight {
		return model.Assignment{}, errors.New(errors.CodeInvalidInput, "无效的班次类型: "+in.Shift)
	}
	return model.Assignment{StaffID: staffID, Day: day, Shift: shift}, nil
}
