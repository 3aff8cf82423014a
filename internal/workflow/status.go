package workflow

// Status 报销申请状态
type Status string

const (
	StatusPending       Status = "pending"        // 已提交,等待审核
	StatusReviewed      Status = "reviewed"       // 已审核,等待批准
	StatusApproved      Status = "approved"       // 已批准,等待结算
	StatusRejected      Status = "rejected"       // 已驳回(终态,可重新提交)
	StatusSettled       Status = "settled"        // 已结算(终态)
	StatusCancelled     Status = "cancelled"      // 已撤回(终态,可重新提交)
	StatusForceRejected Status = "force_rejected" // 批准后强制驳回(终态,可重新提交)
)

// IsValid 判断状态是否合法
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusApproved, StatusRejected,
		StatusSettled, StatusCancelled, StatusForceRejected:
		return true
	}
	return false
}

// IsTerminal 判断是否为终态
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusSettled, StatusCancelled, StatusForceRejected:
		return true
	}
	return false
}

// IsResubmittable 判断该状态下的申请能否重新提交
func (s Status) IsResubmittable() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusForceRejected:
		return true
	}
	return false
}

// Action 状态机动作
type Action string

const (
	ActionReview      Action = "review"       // pending → reviewed
	ActionApprove     Action = "approve"      // reviewed → approved
	ActionReject      Action = "reject"       // pending|reviewed → rejected
	ActionForceReject Action = "force_reject" // approved → force_rejected
	ActionCancel      Action = "cancel"       // pending → cancelled
	ActionSettle      Action = "settle"       // approved → settled
)

// transitions 状态转换表: 动作 → 允许的前置状态与目标状态
var transitions = map[Action]struct {
	from []Status
	to   Status
}{
	ActionReview:      {from: []Status{StatusPending}, to: StatusReviewed},
	ActionApprove:     {from: []Status{StatusReviewed}, to: StatusApproved},
	ActionReject:      {from: []Status{StatusPending, StatusReviewed}, to: StatusRejected},
	ActionForceReject: {from: []Status{StatusApproved}, to: StatusForceRejected},
	ActionCancel:      {from: []Status{StatusPending}, to: StatusCancelled},
	ActionSettle:      {from: []Status{StatusApproved}, to: StatusSettled},
}

// CanTransition 判断当前状态能否执行指定动作
func CanTransition(current Status, action Action) bool {
	t, ok := transitions[action]
	if !ok {
		return false
	}
	for _, s := range t.from {
		if s == current {
			return true
		}
	}
	return false
}

// NextStatus 返回执行动作后的目标状态
// 当前状态不允许该动作时返回 ErrInvalidTransition
func NextStatus(current Status, action Action) (Status, error) {
	if !CanTransition(current, action) {
		return "", NewConflictError("request is %s, cannot %s", current, action)
	}
	return transitions[action].to, nil
}
