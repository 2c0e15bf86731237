// Package rules 排班规则目录
package rules

// RuleParam 规则参数定义
type RuleParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float, string, bool, array
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// RuleDefinition 规则定义
type RuleDefinition struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Type        string      `json:"type"`     // hard 硬规则, demand 需求计算规则
	Category    string      `json:"category"` // 分类
	Description string      `json:"description"`
	Shifts      []string    `json:"shifts"` // 适用班次
	Params      []RuleParam `json:"params"`
}

// LibraryResponse 规则库响应
type LibraryResponse struct {
	Library []RuleDefinition `json:"library"`
}

// GetLibrary 获取完整的规则库
// 目录仅作展示和文档用途，引擎内的规则集是封闭的
func GetLibrary() []RuleDefinition {
	return []RuleDefinition{
		// =====================================================
		// 需求计算规则
		// =====================================================
		{
			Name:        "service_ratio",
			DisplayName: "服务配比",
			Type:        "demand",
			Category:    "需求计算",
			Description: "按预测客流计算白班人力：早班看退房量、晚班看入住量，每50位客人配1名员工，向上取整，单班至少1人。",
			Shifts:      []string{"morning", "afternoon"},
			Params: []RuleParam{
				{Name: "guests_per_staff", Type: "int", Description: "每名员工服务的客人数", Default: "50"},
			},
		},
		{
			Name:        "shift_capacity",
			DisplayName: "班次容量上限",
			Type:        "demand",
			Category:    "需求计算",
			Description: "前台工位有限：周末白班最多4人，工作日白班最多3人（有一个工位留给礼宾）。需求计算结果超过容量时截断。",
			Shifts:      []string{"morning", "afternoon"},
			Params: []RuleParam{
				{Name: "weekend_capacity", Type: "int", Description: "周末白班容量", Default: "4"},
				{Name: "weekday_capacity", Type: "int", Description: "工作日白班容量", Default: "3"},
			},
		},
		{
			Name:        "low_occupancy_relief",
			DisplayName: "低入住率减员",
			Type:        "demand",
			Category:    "需求计算",
			Description: "当天入住加退房合计不足100时，各白班需求减1人，但不低于1人。",
			Shifts:      []string{"morning", "afternoon"},
			Params: []RuleParam{
				{Name: "threshold", Type: "int", Description: "客流阈值", Default: "100"},
			},
		},
		{
			Name:        "night_headcount",
			DisplayName: "夜班人数目标",
			Type:        "demand",
			Category:    "需求计算",
			Description: "每晚目标2名夜班接待员，可用夜班人数不足时按实际人数封顶。",
			Shifts:      []string{"night"},
			Params: []RuleParam{
				{Name: "target", Type: "int", Description: "目标人数", Default: "2"},
			},
		},

		// =====================================================
		// 硬规则
		// =====================================================
		{
			Name:        "availability",
			DisplayName: "员工可用性",
			Type:        "hard",
			Category:    "时间限制",
			Description: "不可用员工整周不排班；缺勤天数从合同天数中扣除，缺勤满一周视同不可用。",
			Shifts:      []string{"morning", "afternoon", "night"},
			Params:      []RuleParam{},
		},
		{
			Name:        "day_exclusivity",
			DisplayName: "每日单班",
			Type:        "hard",
			Category:    "休息保障",
			Description: "员工每天最多上一个班次，不允许连班。",
			Shifts:      []string{"morning", "afternoon", "night"},
			Params:      []RuleParam{},
		},
		{
			Name:        "weekly_cap",
			DisplayName: "每周工作天数上限",
			Type:        "hard",
			Category:    "工时限制",
			Description: "每周工作天数不超过合同天数减缺勤：全职与夜班5天、四天制兼职4天、三天制兼职3天。",
			Shifts:      []string{"morning", "afternoon", "night"},
			Params:      []RuleParam{},
		},
		{
			Name:        "consecutive_cap",
			DisplayName: "连续工作限制",
			Type:        "hard",
			Category:    "休息保障",
			Description: "任意连续6天内最多工作5天，保证每周期至少一个休息日。",
			Shifts:      []string{"morning", "afternoon", "night"},
			Params: []RuleParam{
				{Name: "window_days", Type: "int", Description: "滑动窗口天数", Default: "6"},
				{Name: "max_days", Type: "int", Description: "窗口内最大工作天数", Default: "5"},
			},
		},
		{
			Name:        "night_contract_only",
			DisplayName: "夜班合同限定",
			Type:        "hard",
			Category:    "岗位限制",
			Description: "夜班合同的接待员只上夜班；夜班只能由夜班接待员承担。",
			Shifts:      []string{"night"},
			Params:      []RuleParam{},
		},
		{
			Name:        "supervisor_floor",
			DisplayName: "白班主管保底",
			Type:        "hard",
			Category:    "岗位限制",
			Description: "每个白班至少1名值班主管在岗。",
			Shifts:      []string{"morning", "afternoon"},
			Params: []RuleParam{
				{Name: "min_supervisors", Type: "int", Description: "最少主管人数", Default: "1"},
			},
		},
		{
			Name:        "concierge_slot",
			DisplayName: "礼宾工位",
			Type:        "hard",
			Category:    "岗位限制",
			Description: "礼宾员只在工作日早班出勤，每个工作日早班恰好占用1个礼宾工位；周末和晚间无礼宾服务。",
			Shifts:      []string{"morning"},
			Params:      []RuleParam{},
		},
	}
}
