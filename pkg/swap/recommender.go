// Package swap 提供排班发布后的换班/顶班评估与推荐
package swap

import (
	"sort"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/model"
)

// Recommender 顶班推荐器
type Recommender struct {
	evaluator *Evaluator
}

// NewRecommender 创建顶班推荐器
func NewRecommender() *Recommender {
	return &Recommender{evaluator: NewEvaluator()}
}

// Recommendation 一条顶班推荐
type Recommendation struct {
	TargetID   uuid.UUID   `json:"target_id"`
	TargetName string      `json:"target_name"`
	Role       model.Role  `json:"role"`
	Score      float64     `json:"score"`
	Rank       int         `json:"rank"`
	Evaluation *Evaluation `json:"evaluation"`
}

// Options 推荐选项
type Options struct {
	MaxResults int         // 最大推荐数量
	MinScore   float64     // 最低得分
	Exclude    []uuid.UUID // 排除的员工
}

// DefaultOptions 返回默认推荐选项
func DefaultOptions() *Options {
	return &Options{
		MaxResults: 5,
		MinScore:   50,
	}
}

// Recommend 为一个班次推荐可接手的员工
func (r *Recommender) Recommend(roster model.Roster, schedule *model.Schedule, source model.Assignment, opts *Options) []Recommendation {
	if opts == nil {
		opts = DefaultOptions()
	}

	exclude := make(map[uuid.UUID]bool, len(opts.Exclude)+1)
	exclude[source.StaffID] = true
	for _, id := range opts.Exclude {
		exclude[id] = true
	}

	var out []Recommendation
	for _, staff := range roster {
		if exclude[staff.ID] {
			continue
		}

		ev := r.evaluator.Evaluate(roster, schedule, &Request{
			Source:   source,
			TargetID: staff.ID,
		})
		if !ev.Feasible || ev.Score < opts.MinScore {
			continue
		}

		out = append(out, Recommendation{
			TargetID:   staff.ID,
			TargetName: staff.FullName(),
			Role:       staff.Role,
			Score:      ev.Score,
			Evaluation: ev,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > opts.MaxResults {
		out = out[:opts.MaxResults]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// CoverAbsence 为临时缺勤的员工找当天每个班次的最佳替换
func (r *Recommender) CoverAbsence(roster model.Roster, schedule *model.Schedule, staffID uuid.UUID, day model.Weekday) map[model.ShiftKind]*Recommendation {
	out := make(map[model.ShiftKind]*Recommendation)

	for _, a := range schedule.Assignments {
		if a.StaffID != staffID || a.Day != day {
			continue
		}
		recs := r.Recommend(roster, schedule, a, &Options{MaxResults: 1, MinScore: 0})
		if len(recs) > 0 {
			out[a.Shift] = &recs[0]
		} else {
			out[a.Shift] = nil
		}
	}
	return out
}
