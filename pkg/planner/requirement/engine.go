// Package requirement 将入住/退房预测转换为每天每班次的人力需求
package requirement

import (
	"github.com/hotelplan/hotelplan/pkg/errors"
	"github.com/hotelplan/hotelplan/pkg/model"
)

const (
	// ServiceRatio 服务比例：一名员工接待50位客人
	ServiceRatio = 50
	// WeekendShiftCapacity 周末单班次人数上限
	WeekendShiftCapacity = 4
	// WeekdayShiftCapacity 工作日单班次人数上限（为礼宾员预留一个名额）
	WeekdayShiftCapacity = 3
	// LowOccupancyThreshold 低入住率减员阈值
	LowOccupancyThreshold = 100
	// NightReceptionistsTarget 夜班接待员目标人数
	NightReceptionistsTarget = 2
)

// Engine 人力需求计算引擎
type Engine struct{}

// NewEngine 创建需求引擎
func NewEngine() *Engine {
	return &Engine{}
}

// ShiftCapacity 返回某天白班的人数上限
func ShiftCapacity(day model.Weekday) int {
	if day.IsWeekend() {
		return WeekendShiftCapacity
	}
	return WeekdayShiftCapacity
}

// Compute 根据预测和员工快照计算一周需求表
func (e *Engine) Compute(roster model.Roster, forecast *model.Forecast) (*model.RequirementTable, error) {
	if forecast == nil {
		return nil, errors.Configuration("缺少预测数据")
	}
	if err := forecast.Validate(); err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, errors.Configuration("员工名单为空")
	}

	nightPool := len(roster.AvailableNightReceptionists())

	table := &model.RequirementTable{}
	for _, day := range model.AllWeekdays {
		checkOuts := forecast.CheckOuts[day]
		checkIns := forecast.CheckIns[day]

		morning := staffForLoad(checkOuts)
		afternoon := staffForLoad(checkIns)

		capacity := ShiftCapacity(day)
		if morning > capacity {
			morning = capacity
		}
		if afternoon > capacity {
			afternoon = capacity
		}

		// 低入住率减员，下限1人
		if checkIns+checkOuts < LowOccupancyThreshold {
			if morning > 1 {
				morning--
			}
			if afternoon > 1 {
				afternoon--
			}
		}

		conciergeSlot := 0
		if !day.IsWeekend() {
			conciergeSlot = 1
		}

		table.Set(model.DailyRequirement{
			Day:            day,
			Shift:          model.ShiftMorning,
			TotalPersonnel: morning,
			MinSupervisors: 1,
			ConciergeSlot:  conciergeSlot,
		})
		table.Set(model.DailyRequirement{
			Day:            day,
			Shift:          model.ShiftAfternoon,
			TotalPersonnel: afternoon,
			MinSupervisors: 1,
		})

		nightRequired := NightReceptionistsTarget
		if nightPool < nightRequired {
			nightRequired = nightPool
		}
		table.Set(model.DailyRequirement{
			Day:                   day,
			Shift:                 model.ShiftNight,
			TotalPersonnel:        nightRequired,
			ReceptionistsRequired: nightRequired,
		})
	}

	return table, nil
}

// staffForLoad 按服务比例计算所需人数，下限1人
func staffForLoad(guests int) int {
	n := (guests + ServiceRatio - 1) / ServiceRatio
	if n < 1 {
		n = 1
	}
	return n
}
