// Package solver 提供周排班0/1分配问题的分支定界求解器
package solver

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hotelplan/hotelplan/pkg/errors"
	"github.com/hotelplan/hotelplan/pkg/logger"
	"github.com/hotelplan/hotelplan/pkg/model"
	"github.com/hotelplan/hotelplan/pkg/planner/constraint"
)

// Options 求解器配置
type Options struct {
	// TimeBudget 软时间预算，超时后降级返回当前最优可行解
	TimeBudget time.Duration
	// MaxNodes 搜索节点上限，0使用默认值
	MaxNodes int64
	// Workers 并行搜索线程数，1为单线程
	Workers int
}

// DefaultOptions 返回默认求解配置
func DefaultOptions() Options {
	return Options{
		TimeBudget: 5 * time.Second,
		MaxNodes:   5_000_000,
		Workers:    4,
	}
}

// Statistics 求解统计
type Statistics struct {
	NodesExplored    int64 `json:"nodes_explored"`
	TotalAssignments int   `json:"total_assignments"`
	Workers          int   `json:"workers"`
	Exhaustive       bool  `json:"exhaustive"`
}

// Result 求解结果
// 终态永远携带一个排班（Infeasible 时为空），只有输入错误才返回 error
type Result struct {
	Status      model.SolveStatus  `json:"status"`
	Assignments []model.Assignment `json:"assignments"`
	Objective   int                `json:"objective"`
	Statistics  Statistics         `json:"statistics"`
	Duration    time.Duration      `json:"duration"`
	Message     string             `json:"message,omitempty"`
}

// Solver 分支定界求解器
type Solver struct {
	opts Options
	log  *logger.PlannerLogger
}

// New 创建求解器
func New(opts Options) *Solver {
	if opts.TimeBudget <= 0 {
		opts.TimeBudget = DefaultOptions().TimeBudget
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultOptions().MaxNodes
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Solver{
		opts: opts,
		log:  logger.NewPlannerLogger(),
	}
}

// Name 返回求解器名称
func (s *Solver) Name() string {
	return "BranchAndBoundSolver"
}

// Solve 求解约束模型，最小化总班次数
// 状态机：Built → Solving → {Optimal, Approximate, Infeasible}
func (s *Solver) Solve(ctx context.Context, m *constraint.Model) (*Result, error) {
	if m == nil || m.NumVars() == 0 {
		return nil, errors.Configuration("约束模型为空")
	}

	startTime := time.Now()
	s.log.StartSolve("", m.NumStaff(), m.NumVars())

	deadline := startTime.Add(s.opts.TimeBudget)
	stop := &atomic.Bool{}

	var outcome workerOutcome
	if s.opts.Workers > 1 {
		outcome = s.runPortfolio(ctx, m, deadline, stop)
	} else {
		w := newSearch(m, cellMajorOrder(m), ctx, deadline, s.opts.MaxNodes, stop)
		w.run()
		outcome = w.outcome()
	}

	result := &Result{
		Objective: outcome.bestObj,
		Duration:  time.Since(startTime),
		Statistics: Statistics{
			NodesExplored: outcome.nodes,
			Workers:       s.opts.Workers,
			Exhaustive:    outcome.exhaustive,
		},
	}

	switch {
	case outcome.found && outcome.exhaustive:
		result.Status = model.StatusOptimal
		result.Assignments = m.ToSchedule(outcome.bestVals)
		result.Message = fmt.Sprintf("最优解，总班次数 %d", outcome.bestObj)
	case outcome.found:
		result.Status = model.StatusApproximate
		result.Assignments = m.ToSchedule(outcome.bestVals)
		result.Message = fmt.Sprintf("预算内最佳可行解，总班次数 %d（未验证最优）", outcome.bestObj)
	case outcome.exhaustive:
		result.Status = model.StatusInfeasible
		result.Message = "不存在满足全部硬约束的排班"
	default:
		result.Status = model.StatusInfeasible
		result.Message = "预算内未找到可行解"
	}
	result.Statistics.TotalAssignments = len(result.Assignments)

	s.log.SolveComplete("", string(result.Status), result.Duration, len(result.Assignments))
	return result, nil
}

// workerOutcome 单个搜索线程的结果
type workerOutcome struct {
	found      bool
	exhaustive bool
	bestObj    int
	bestVals   []int8
	nodes      int64
}

// search 一次深度优先分支定界搜索
type search struct {
	m       *constraint.Model
	varCons [][]int32 // 变量 → 所属约束
	sum     []int     // 约束当前已赋1的数量
	free    []int     // 约束当前未赋值变量数量
	values  []int8    // -1未赋值 / 0 / 1
	order   []int
	trail   []int

	// 下界用：每个(天,班次)格子内的 GE/EQ 约束，按变量相交性分组
	// 组之间变量互不相交，缺口可以相加
	cellGroups [21][][]int32

	curOnes  int
	found    bool
	bestObj  int
	bestVals []int8

	nodes    int64
	maxNodes int64
	ctx      context.Context
	deadline time.Time
	stop     *atomic.Bool
	stopped  bool
}

func newSearch(m *constraint.Model, order []int, ctx context.Context, deadline time.Time, maxNodes int64, stop *atomic.Bool) *search {
	n := m.NumVars()
	s := &search{
		m:        m,
		varCons:  make([][]int32, n),
		sum:      make([]int, len(m.Constraints)),
		free:     make([]int, len(m.Constraints)),
		values:   make([]int8, n),
		order:    order,
		maxNodes: maxNodes,
		ctx:      ctx,
		deadline: deadline,
		stop:     stop,
	}
	for i := range s.values {
		s.values[i] = -1
	}
	var cellCons [21][]int32
	for ci := range m.Constraints {
		c := &m.Constraints[ci]
		s.free[ci] = len(c.Vars)
		for _, v := range c.Vars {
			s.varCons[v] = append(s.varCons[v], int32(ci))
		}
		if c.Sense == constraint.SenseGE || c.Sense == constraint.SenseEQ {
			if cell, ok := cellOf(c); ok {
				cellCons[cell] = append(cellCons[cell], int32(ci))
			}
		}
	}
	for cell := range cellCons {
		s.cellGroups[cell] = groupDisjoint(m, cellCons[cell])
	}
	return s
}

// groupDisjoint 将同一格子的约束按是否共享变量合并成组
// 同一格子可能携带变量不相交的多条需求（如白班下限与礼宾名额），
// 各组缺口在下界中必须相加而不是取最大
func groupDisjoint(m *constraint.Model, cons []int32) [][]int32 {
	var groups [][]int32
	var groupVars []map[int]struct{}

	for _, ci := range cons {
		set := make(map[int]struct{}, len(m.Constraints[ci].Vars))
		for _, v := range m.Constraints[ci].Vars {
			set[v] = struct{}{}
		}

		merged := []int32{ci}
		keptGroups := groups[:0:0]
		keptVars := groupVars[:0:0]
		for gi, g := range groups {
			if intersects(groupVars[gi], set) {
				merged = append(merged, g...)
				for v := range groupVars[gi] {
					set[v] = struct{}{}
				}
			} else {
				keptGroups = append(keptGroups, g)
				keptVars = append(keptVars, groupVars[gi])
			}
		}
		groups = append(keptGroups, merged)
		groupVars = append(keptVars, set)
	}
	return groups
}

func intersects(a, b map[int]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for v := range a {
		if _, ok := b[v]; ok {
			return true
		}
	}
	return false
}

// cellOf 检查约束是否局限于单个(天,班次)格子
func cellOf(c *constraint.Constraint) (int, bool) {
	if len(c.Vars) == 0 {
		return 0, false
	}
	cell := c.Vars[0] % 21
	for _, v := range c.Vars[1:] {
		if v%21 != cell {
			return 0, false
		}
	}
	return cell, true
}

func (s *search) run() {
	s.dfs(0)
}

func (s *search) outcome() workerOutcome {
	return workerOutcome{
		found:      s.found,
		exhaustive: !s.stopped,
		bestObj:    s.bestObj,
		bestVals:   s.bestVals,
		nodes:      s.nodes,
	}
}

// dfs 深度优先搜索，0优先取值（最小化启发）
func (s *search) dfs(orderIdx int) {
	if s.stopped {
		return
	}
	s.nodes++
	if s.nodes%2048 == 0 && s.shouldStop() {
		s.stopped = true
		return
	}

	// 目标下界剪枝
	if s.found && s.lowerBound() >= s.bestObj {
		return
	}

	i := orderIdx
	for i < len(s.order) && s.values[s.order[i]] != -1 {
		i++
	}
	if i == len(s.order) {
		// 完整赋值：一致性已在增量检查中保证
		if !s.found || s.curOnes < s.bestObj {
			s.found = true
			s.bestObj = s.curOnes
			s.bestVals = append(s.bestVals[:0], s.values...)
		}
		return
	}

	v := s.order[i]
	for _, val := range [2]int8{0, 1} {
		mark := len(s.trail)
		if s.assign(v, val) {
			s.dfs(i + 1)
		}
		s.undo(mark)
		if s.stopped {
			return
		}
	}
}

func (s *search) shouldStop() bool {
	if s.stop.Load() {
		return true
	}
	if s.ctx.Err() != nil {
		return true
	}
	if s.nodes >= s.maxNodes {
		return true
	}
	return time.Now().After(s.deadline)
}

// assign 赋值并传播强制推导，失败时调用方负责回滚trail
// 计数更新必须先走完全部约束再检查一致性：undo 按变量整体回滚，
// 中途返回会让未更新的约束计数与回滚量不匹配
func (s *search) assign(v int, val int8) bool {
	s.values[v] = val
	s.trail = append(s.trail, v)
	if val == 1 {
		s.curOnes++
	}
	for _, ci := range s.varCons[v] {
		s.free[ci]--
		if val == 1 {
			s.sum[ci]++
		}
	}
	for _, ci := range s.varCons[v] {
		if !s.consistent(int(ci)) {
			return false
		}
	}
	for _, ci := range s.varCons[v] {
		if !s.propagate(int(ci)) {
			return false
		}
	}
	return true
}

func (s *search) consistent(ci int) bool {
	c := &s.m.Constraints[ci]
	switch c.Sense {
	case constraint.SenseLE:
		return s.sum[ci] <= c.Bound
	case constraint.SenseGE:
		return s.sum[ci]+s.free[ci] >= c.Bound
	default:
		return s.sum[ci] <= c.Bound && s.sum[ci]+s.free[ci] >= c.Bound
	}
}

// propagate 对约束做强制推导：上界打满强制0，下界贴紧强制1
func (s *search) propagate(ci int) bool {
	c := &s.m.Constraints[ci]
	if s.free[ci] == 0 {
		return true
	}

	forceZero := (c.Sense == constraint.SenseLE || c.Sense == constraint.SenseEQ) && s.sum[ci] == c.Bound
	forceOne := (c.Sense == constraint.SenseGE || c.Sense == constraint.SenseEQ) && s.sum[ci]+s.free[ci] == c.Bound
	if !forceZero && !forceOne {
		return true
	}

	val := int8(0)
	if forceOne {
		val = 1
	}
	for _, v := range c.Vars {
		if s.values[v] == -1 {
			if !s.assign(v, val) {
				return false
			}
		}
	}
	return true
}

func (s *search) undo(mark int) {
	for i := len(s.trail) - 1; i >= mark; i-- {
		v := s.trail[i]
		val := s.values[v]
		if val == 1 {
			s.curOnes--
		}
		for _, ci := range s.varCons[v] {
			s.free[ci]++
			if val == 1 {
				s.sum[ci]--
			}
		}
		s.values[v] = -1
	}
	s.trail = s.trail[:mark]
}

// lowerBound 当前部分赋值下目标值的可容许下界
// 格子之间变量互不相交，格子内只对共享变量的约束取最大缺口
func (s *search) lowerBound() int {
	lb := s.curOnes
	for cell := 0; cell < 21; cell++ {
		for _, group := range s.cellGroups[cell] {
			deficit := 0
			for _, ci := range group {
				d := s.m.Constraints[ci].Bound - s.sum[ci]
				if d > deficit {
					deficit = d
				}
			}
			lb += deficit
		}
	}
	return lb
}
