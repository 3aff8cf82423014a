package workflow

import "math"

// BudgetRequest 预算计算所需的申请快照
type BudgetRequest struct {
	Status      Status
	TotalAmount int64
}

// BudgetUsage 预算使用情况
type BudgetUsage struct {
	Enabled     bool  `json:"enabled"`     // totalBudget <= 0 时预算跟踪关闭
	TotalBudget int64 `json:"totalBudget"` // 项目预算总额
	UsedAmount  int64 `json:"usedAmount"`  // 已占用金额
	Percent     int   `json:"percent"`     // 使用百分比(四舍五入)
	Warning     bool  `json:"warning"`     // 达到预警阈值
	Exceeded    bool  `json:"exceeded"`    // 达到或超出预算
}

// DefaultBudgetWarningThreshold 默认预算预警阈值(百分比)
const DefaultBudgetWarningThreshold = 85

// CountsTowardBudget 判断状态是否计入预算占用
// 通过初审之后的申请(reviewed/approved/settled)都视为将要支付的金额
func CountsTowardBudget(s Status) bool {
	switch s {
	case StatusReviewed, StatusApproved, StatusSettled:
		return true
	}
	return false
}

// CalcBudgetUsage 计算项目预算使用情况
//
// totalBudget <= 0 表示项目未配置预算,预算跟踪关闭,不产生预警信号,
// 这是合法状态而非错误。warningThreshold <= 0 时使用默认值 85。
func CalcBudgetUsage(totalBudget int64, warningThreshold int, requests []BudgetRequest) BudgetUsage {
	if warningThreshold <= 0 {
		warningThreshold = DefaultBudgetWarningThreshold
	}

	var used int64
	for _, r := range requests {
		if CountsTowardBudget(r.Status) {
			used += r.TotalAmount
		}
	}

	if totalBudget <= 0 {
		return BudgetUsage{Enabled: false, TotalBudget: totalBudget, UsedAmount: used}
	}

	percent := int(math.Round(float64(used) / float64(totalBudget) * 100))

	return BudgetUsage{
		Enabled:     true,
		TotalBudget: totalBudget,
		UsedAmount:  used,
		Percent:     percent,
		Warning:     percent >= warningThreshold,
		Exceeded:    percent >= 100,
	}
}
