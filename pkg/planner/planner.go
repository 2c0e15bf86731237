// Package planner 将需求计算、可行性检查、求解与复核组合为一条流水线
//
// 一次调用处理一个酒店一周的排班：员工快照在整个求解期间只读，
// 调用方持有返回结果的所有权。
package planner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/logger"
	"github.com/hotelplan/hotelplan/pkg/model"
	"github.com/hotelplan/hotelplan/pkg/planner/constraint"
	"github.com/hotelplan/hotelplan/pkg/planner/feasibility"
	"github.com/hotelplan/hotelplan/pkg/planner/requirement"
	"github.com/hotelplan/hotelplan/pkg/planner/solver"
	"github.com/hotelplan/hotelplan/pkg/planner/validator"
)

// Planner 周计划流水线
type Planner struct {
	engine    *requirement.Engine
	checker   *feasibility.Checker
	solver    *solver.Solver
	validator *validator.Validator
	log       *logger.PlannerLogger
}

// New 创建周计划流水线
func New(opts solver.Options) *Planner {
	return &Planner{
		engine:    requirement.NewEngine(),
		checker:   feasibility.NewChecker(),
		solver:    solver.New(opts),
		validator: validator.NewValidator(),
		log:       logger.NewPlannerLogger(),
	}
}

// Result 一次完整流水线的产出
// Feasibility 不可行时 Solve/Validation 为空，求解器不会被调用
type Result struct {
	Requirements *model.RequirementTable `json:"requirements"`
	Feasibility  *feasibility.Report     `json:"feasibility"`
	Solve        *solver.Result          `json:"solve,omitempty"`
	Schedule     *model.Schedule         `json:"schedule,omitempty"`
	Validation   *validator.Report       `json:"validation,omitempty"`
	Duration     time.Duration           `json:"duration"`
}

// GenerateWeek 为一周生成排班
// 只有输入错误才返回 error；可行性阻断与无解都是结构化结果
func (p *Planner) GenerateWeek(ctx context.Context, propertyID uuid.UUID, weekStart string, roster model.Roster, forecast *model.Forecast) (*Result, error) {
	startTime := time.Now()

	table, err := p.engine.Compute(roster, forecast)
	if err != nil {
		return nil, err
	}

	report, err := p.checker.Check(roster)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Requirements: table,
		Feasibility:  report,
	}

	if !report.Feasible {
		p.log.FeasibilityBlocked(propertyID.String(), report.BlockerMessages())
		result.Duration = time.Since(startTime)
		return result, nil
	}

	m, err := constraint.Build(roster, table)
	if err != nil {
		return nil, err
	}

	solveResult, err := p.solver.Solve(ctx, m)
	if err != nil {
		return nil, err
	}
	result.Solve = solveResult

	schedule := model.NewSchedule(propertyID, weekStart)
	schedule.Status = solveResult.Status
	schedule.Assignments = solveResult.Assignments
	result.Schedule = schedule

	// 独立复核，不信任求解器的结论
	result.Validation = p.validator.Validate(roster, schedule)
	for _, v := range result.Validation.Violations {
		p.log.ConstraintViolation(string(v.Kind), v.Message)
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// ComputeRequirements 单独计算需求表
func (p *Planner) ComputeRequirements(roster model.Roster, forecast *model.Forecast) (*model.RequirementTable, error) {
	return p.engine.Compute(roster, forecast)
}

// CheckFeasibility 单独做可行性检查
func (p *Planner) CheckFeasibility(roster model.Roster) (*feasibility.Report, error) {
	return p.checker.Check(roster)
}

// ValidateSchedule 单独复核一份排班（含人工改动过的）
func (p *Planner) ValidateSchedule(roster model.Roster, schedule *model.Schedule) *validator.Report {
	return p.validator.Validate(roster, schedule)
}
