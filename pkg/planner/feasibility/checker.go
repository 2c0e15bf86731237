// Package feasibility 在求解前检查人力配置是否满足最低开班条件
package feasibility

import (
	"fmt"

	"github.com/hotelplan/hotelplan/pkg/errors"
	"github.com/hotelplan/hotelplan/pkg/model"
)

// ProblemKind 问题类型
type ProblemKind string

const (
	// 阻断性问题（不可求解）
	ProblemNoSupervisor     ProblemKind = "no_supervisor"      // 没有可用主管
	ProblemNightShortage    ProblemKind = "night_shortage"     // 夜班接待员不足2人
	ProblemDayStaffShortage ProblemKind = "day_staff_shortage" // 白班可用人力不足3人

	// 建议性问题（可求解但有风险）
	WarningSingleSupervisor ProblemKind = "single_supervisor" // 仅一名可用主管
	WarningNoConcierge      ProblemKind = "no_concierge"      // 没有可用礼宾员
)

// Problem 单个可行性问题
type Problem struct {
	Kind    ProblemKind `json:"kind"`
	Message string      `json:"message"`
}

// Pools 按岗位划分的可用员工池
type Pools struct {
	Supervisors        model.Roster `json:"-"`
	DayReceptionists   model.Roster `json:"-"`
	NightReceptionists model.Roster `json:"-"`
	Concierges         model.Roster `json:"-"`
}

// PoolStats 员工池统计
type PoolStats struct {
	AvailableSupervisors        int `json:"available_supervisors"`
	AvailableDayReceptionists   int `json:"available_day_receptionists"`
	AvailableNightReceptionists int `json:"available_night_receptionists"`
	AvailableConcierges         int `json:"available_concierges"`
	TotalStaff                  int `json:"total_staff"`
}

// Report 可行性检查结果
type Report struct {
	Feasible bool      `json:"feasible"`
	Blockers []Problem `json:"blockers,omitempty"`
	Warnings []Problem `json:"warnings,omitempty"`
	Pools    PoolStats `json:"pools"`
}

// BlockerMessages 返回阻断问题的文本列表
func (r *Report) BlockerMessages() []string {
	out := make([]string, 0, len(r.Blockers))
	for _, b := range r.Blockers {
		out = append(out, b.Message)
	}
	return out
}

// Checker 可行性检查器
type Checker struct{}

// NewChecker 创建可行性检查器
func NewChecker() *Checker {
	return &Checker{}
}

// SplitPools 将员工快照按岗位划分为可用池
func SplitPools(roster model.Roster) Pools {
	return Pools{
		Supervisors:        roster.AvailableByRole(model.RoleSupervisor),
		DayReceptionists:   roster.AvailableDayReceptionists(),
		NightReceptionists: roster.AvailableNightReceptionists(),
		Concierges:         roster.AvailableByRole(model.RoleConcierge),
	}
}

// Check 检查人力配置，返回阻断问题与建议
// 调用方在 feasible=false 时不得调用求解器
func (c *Checker) Check(roster model.Roster) (*Report, error) {
	if len(roster) == 0 {
		return nil, errors.Configuration("员工名单为空")
	}

	pools := SplitPools(roster)
	report := &Report{
		Feasible: true,
		Pools: PoolStats{
			AvailableSupervisors:        len(pools.Supervisors),
			AvailableDayReceptionists:   len(pools.DayReceptionists),
			AvailableNightReceptionists: len(pools.NightReceptionists),
			AvailableConcierges:         len(pools.Concierges),
			TotalStaff:                  len(roster),
		},
	}

	if len(pools.Supervisors) == 0 {
		report.block(ProblemNoSupervisor, "没有可用主管，白班无法满足最低监督要求")
	}
	if len(pools.NightReceptionists) < 2 {
		report.block(ProblemNightShortage,
			fmt.Sprintf("夜班接待员仅 %d 人，至少需要2人", len(pools.NightReceptionists)))
	}
	dayCapable := len(pools.Supervisors) + len(pools.DayReceptionists)
	if dayCapable < 3 {
		report.block(ProblemDayStaffShortage,
			fmt.Sprintf("白班可用人力仅 %d 人（主管+接待员），至少需要3人", dayCapable))
	}

	if len(pools.Supervisors) == 1 {
		report.warn(WarningSingleSupervisor, "仅一名可用主管，排班弹性不足")
	}
	if len(pools.Concierges) == 0 {
		report.warn(WarningNoConcierge, "没有可用礼宾员，工作日早班礼宾名额将空缺")
	}

	return report, nil
}

func (r *Report) block(kind ProblemKind, message string) {
	r.Feasible = false
	r.Blockers = append(r.Blockers, Problem{Kind: kind, Message: message})
}

func (r *Report) warn(kind ProblemKind, message string) {
	r.Warnings = append(r.Warnings, Problem{Kind: kind, Message: message})
}
