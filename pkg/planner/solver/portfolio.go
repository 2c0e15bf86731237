// Package solver 提供周排班0/1分配问题的分支定界求解器
package solver

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hotelplan/hotelplan/pkg/model"
	"github.com/hotelplan/hotelplan/pkg/planner/constraint"
)

// runPortfolio 并行组合搜索：多个线程用不同的变量顺序独立搜索，
// 第一个完成穷尽搜索的线程使其余线程短路
func (s *Solver) runPortfolio(ctx context.Context, m *constraint.Model, deadline time.Time, stop *atomic.Bool) workerOutcome {
	workers := s.opts.Workers
	orders := portfolioOrders(m, workers)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var exhaustiveOutcome *workerOutcome
	best := workerOutcome{}
	var totalNodes int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(order []int) {
			defer wg.Done()

			w := newSearch(m, order, ctx, deadline, s.opts.MaxNodes, stop)
			w.run()
			out := w.outcome()

			mu.Lock()
			defer mu.Unlock()
			totalNodes += out.nodes

			if out.exhaustive {
				// 穷尽搜索的结论是确定的，短路其余线程
				if exhaustiveOutcome == nil {
					o := out
					exhaustiveOutcome = &o
					stop.Store(true)
				}
				return
			}
			if out.found && (!best.found || out.bestObj < best.bestObj) {
				best = out
			}
		}(orders[i])
	}

	wg.Wait()

	if exhaustiveOutcome != nil {
		exhaustiveOutcome.nodes = totalNodes
		return *exhaustiveOutcome
	}
	best.nodes = totalNodes
	return best
}

// portfolioOrders 为每个线程生成不同的变量探索顺序
func portfolioOrders(m *constraint.Model, workers int) [][]int {
	orders := make([][]int, workers)
	for i := 0; i < workers; i++ {
		switch i {
		case 0:
			orders[i] = cellMajorOrder(m)
		case 1:
			orders[i] = staffMajorOrder(m)
		case 2:
			orders[i] = reversed(cellMajorOrder(m))
		default:
			orders[i] = shuffled(cellMajorOrder(m), int64(i))
		}
	}
	return orders
}

// cellMajorOrder 按(天,班次)格子逐格分配员工
func cellMajorOrder(m *constraint.Model) []int {
	order := make([]int, 0, m.NumVars())
	for _, day := range model.AllWeekdays {
		for _, shift := range model.AllShifts {
			for staffIdx := 0; staffIdx < m.NumStaff(); staffIdx++ {
				order = append(order, m.VarID(staffIdx, day, shift))
			}
		}
	}
	return order
}

// staffMajorOrder 按员工逐人分配一周
func staffMajorOrder(m *constraint.Model) []int {
	order := make([]int, m.NumVars())
	for i := range order {
		order[i] = i
	}
	return order
}

func reversed(order []int) []int {
	out := make([]int, len(order))
	for i, v := range order {
		out[len(order)-1-i] = v
	}
	return out
}

func shuffled(order []int, seed int64) []int {
	out := make([]int, len(order))
	copy(out, order)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
