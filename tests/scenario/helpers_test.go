// Package scenario 提供场景测试
package scenario

import (
	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/pkg/model"
)

// testPropertyID 返回测试用酒店ID
func testPropertyID() uuid.UUID {
	return uuid.New()
}

// newStaff 构建一名可用员工
func newStaff(name string, role model.Role, contract model.ContractType) *model.StaffMember {
	return &model.StaffMember{
		BaseModel: model.NewBaseModel(),
		FirstName: name,
		LastName:  "Test",
		Role:      role,
		Contract:  contract,
		Available: true,
	}
}

// uniformForecast 构建每天相同客流的一周预测
func uniformForecast(checkIns, checkOuts int) *model.Forecast {
	f := &model.Forecast{}
	for _, day := range model.AllWeekdays {
		f.CheckIns[day] = checkIns
		f.CheckOuts[day] = checkOuts
	}
	return f
}

// rosterWithout 返回示例团队中剔除某岗位后的名单
func rosterWithout(role model.Role) model.Roster {
	var out model.Roster
	for _, s := range model.SampleRoster(uuid.New()) {
		if s.Role != role {
			out = append(out, s)
		}
	}
	return out
}
