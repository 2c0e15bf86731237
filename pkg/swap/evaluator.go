// Package swap 提供排班发布后的换班/顶班评估与推荐
package swap

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/model"
	"github.com/hotelplan/hotelplan/pkg/planner/validator"
)

// Evaluator 换班评估器
// 在模拟后的排班上重新跑一遍复核，不维护任何增量状态
type Evaluator struct {
	validator *validator.Validator
}

// NewEvaluator 创建换班评估器
func NewEvaluator() *Evaluator {
	return &Evaluator{validator: validator.NewValidator()}
}

// Request 换班请求
// Target 接手 Source 的班次；Exchange 模式下 Source 员工同时接手 TargetDay/TargetShift
type Request struct {
	Source      model.Assignment `json:"source"`
	TargetID    uuid.UUID        `json:"target_id"`
	Exchange    bool             `json:"exchange,omitempty"`
	TargetDay   model.Weekday    `json:"target_day,omitempty"`
	TargetShift model.ShiftKind  `json:"target_shift,omitempty"`
}

// Issue 换班问题
type Issue struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"` // error/warning
	Message  string `json:"message"`
}

// Evaluation 换班评估结果
type Evaluation struct {
	Feasible       bool    `json:"feasible"`
	Score          float64 `json:"score"` // 0-100
	Issues         []Issue `json:"issues,omitempty"`
	HoursChange    int     `json:"hours_change"` // 目标员工工时变化
	Recommendation string  `json:"recommendation"`
}

func (ev *Evaluation) addError(kind, message string) {
	ev.Feasible = false
	ev.Issues = append(ev.Issues, Issue{Kind: kind, Severity: "error", Message: message})
}

func (ev *Evaluation) addWarning(kind, message string) {
	ev.Issues = append(ev.Issues, Issue{Kind: kind, Severity: "warning", Message: message})
}

// Evaluate 评估一次换班
// 先做结构检查，再在模拟排班上复核，任何新增违规都视为不可行
func (e *Evaluator) Evaluate(roster model.Roster, schedule *model.Schedule, req *Request) *Evaluation {
	ev := &Evaluation{Feasible: true, Score: 100}

	source := roster.ByID(req.Source.StaffID)
	target := roster.ByID(req.TargetID)
	if source == nil || target == nil {
		ev.addError("unknown_staff", "换班双方必须都在名单中")
		return ev
	}
	if source.ID == target.ID {
		ev.addError("self_swap", "不能和自己换班")
		return ev
	}
	if !hasAssignment(schedule, req.Source) {
		ev.addError("missing_assignment", "源班次不在排班中")
		return ev
	}

	if target.MaxWorkableDays() == 0 {
		ev.addError("target_unavailable", target.FullName()+" 本周不可用")
		return ev
	}

	// 岗位兼容性
	if req.Source.Shift == model.ShiftNight {
		if !(target.Role == model.RoleReceptionist && target.IsNightContract()) {
			ev.addError("role_mismatch", "夜班只能由夜班合同的接待员接手")
		}
	} else {
		if sourceRole(roster, req.Source) == model.RoleConcierge {
			if target.Role != model.RoleConcierge {
				ev.addError("role_mismatch", "礼宾工位只能由礼宾员接手")
			}
		} else if !target.IsDayCapable() {
			ev.addError("role_mismatch", target.FullName()+" 不能排白班")
		}
	}
	if !ev.Feasible {
		return ev
	}

	// 每日单班：接手方当天不能已有班次；互换时双方在对方的日子都必须空闲
	if !req.Exchange {
		if schedule.WorksOn(target.ID, req.Source.Day) {
			ev.addError("day_conflict", target.FullName()+" 当天已有班次")
			return ev
		}
	} else {
		if req.TargetDay == req.Source.Day {
			ev.addError("day_conflict", "不能在同一天互换")
			return ev
		}
		if schedule.WorksOn(target.ID, req.Source.Day) {
			ev.addError("day_conflict", target.FullName()+" 在源班次当天已有班次")
			return ev
		}
		if schedule.WorksOn(source.ID, req.TargetDay) {
			ev.addError("day_conflict", source.FullName()+" 在目标班次当天已有班次")
			return ev
		}
	}

	simulated := e.simulate(schedule, req)
	before := e.validator.Validate(roster, schedule)
	after := e.validator.Validate(roster, simulated)

	// 只关心换班新引入的违规
	for _, v := range newViolations(before, after) {
		ev.addError(string(v.Kind), v.Message)
	}
	if !ev.Feasible {
		return ev
	}

	ev.HoursChange = hoursChange(schedule, simulated, target.ID)
	ev.Score = e.score(schedule, target, req, ev)
	ev.Recommendation = recommendation(ev)
	return ev
}

// simulate 构造换班后的排班副本
func (e *Evaluator) simulate(schedule *model.Schedule, req *Request) *model.Schedule {
	out := model.NewSchedule(schedule.PropertyID, schedule.WeekStart)
	out.Status = schedule.Status

	for _, a := range schedule.Assignments {
		switch {
		case a == req.Source:
			out.Assignments = append(out.Assignments, model.Assignment{
				StaffID: req.TargetID, Day: a.Day, Shift: a.Shift,
			})
		case req.Exchange && a.StaffID == req.TargetID && a.Day == req.TargetDay && a.Shift == req.TargetShift:
			out.Assignments = append(out.Assignments, model.Assignment{
				StaffID: req.Source.StaffID, Day: a.Day, Shift: a.Shift,
			})
		default:
			out.Assignments = append(out.Assignments, a)
		}
	}
	return out
}

// score 以公平性为主的启发式评分
func (e *Evaluator) score(schedule *model.Schedule, target *model.StaffMember, req *Request, ev *Evaluation) float64 {
	score := 100.0

	// 目标员工越接近天数上限，接手的余量越小
	days := schedule.DaysWorked(target.ID)
	if !req.Exchange {
		days++
	}
	headroom := target.MaxWorkableDays() - days
	switch {
	case headroom < 0:
		score -= 60
	case headroom == 0:
		score -= 20
		ev.addWarning("at_cap", target.FullName()+" 换班后达到每周上限")
	case headroom == 1:
		score -= 5
	}

	if score < 0 {
		score = 0
	}
	return score
}

func recommendation(ev *Evaluation) string {
	switch {
	case !ev.Feasible:
		return "不可换班，存在硬规则冲突"
	case ev.Score >= 90:
		return "推荐，换班后无新增违规"
	case ev.Score >= 70:
		return "可以换班，注意目标员工的工时余量"
	default:
		return "谨慎换班，目标员工负荷偏高"
	}
}

// sourceRole 判断源班次占的是否礼宾工位
func sourceRole(roster model.Roster, a model.Assignment) model.Role {
	if staff := roster.ByID(a.StaffID); staff != nil {
		return staff.Role
	}
	return ""
}

func hasAssignment(schedule *model.Schedule, want model.Assignment) bool {
	for _, a := range schedule.Assignments {
		if a == want {
			return true
		}
	}
	return false
}

// newViolations 返回换班后新出现的违规
func newViolations(before, after *validator.Report) []validator.Violation {
	seen := make(map[string]bool, len(before.Violations))
	for _, v := range before.Violations {
		seen[violationKey(v)] = true
	}

	var out []validator.Violation
	for _, v := range after.Violations {
		if !seen[violationKey(v)] {
			out = append(out, v)
		}
	}
	return out
}

func violationKey(v validator.Violation) string {
	return fmt.Sprintf("%s|%d|%s|%s|%d|%d", v.Kind, v.Day, v.Shift, v.StaffID, v.Expected, v.Observed)
}

func hoursChange(before, after *model.Schedule, staffID uuid.UUID) int {
	return (after.ShiftsWorked(staffID) - before.ShiftsWorked(staffID)) * model.ShiftHours
}
