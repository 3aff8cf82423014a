package workflow

// Actor 执行动作的用户上下文
// 显式传入每次权限/转换调用,核心不持有任何全局会话状态
type Actor struct {
	UID  string
	Name string
	Role Role
}

// RequestView 权限判断所需的申请快照
type RequestView struct {
	RequesterUID  string
	RequesterRole Role // 计算批准人池时解析的是申请人的角色
	Committee     Committee
	Status        Status
	TotalAmount   int64
}

// Authorize 判断 actor 能否对申请执行指定动作
//
// 全局不变量: actor 是申请人本人时,任何动作一律拒绝。
// cancel 是唯一的例外方向——只有申请人本人可以撤回。
func Authorize(actor Actor, req RequestView, action Action, directorThreshold int64) error {
	self := actor.UID == req.RequesterUID

	if action == ActionCancel {
		if !self {
			return NewUnauthorizedError("only the requester can cancel a request")
		}
		return nil
	}

	if self {
		return NewUnauthorizedError("cannot %s your own request", action)
	}

	switch action {
	case ActionReview:
		if !CanReview(actor.Role, req.Committee) {
			return NewUnauthorizedError("role %s cannot review %s requests", actor.Role, req.Committee)
		}
	case ActionApprove:
		isDirectorRequest := req.RequesterRole.IsDirectorLevel()
		if !CanFinalApprove(actor.Role, req.Committee, req.TotalAmount, directorThreshold, isDirectorRequest) {
			if isDirectorRequest {
				return NewUnauthorizedError("director requests require session director approval")
			}
			if directorThreshold > 0 && req.TotalAmount > directorThreshold {
				return NewUnauthorizedError("amount %d exceeds threshold %d, director approval required", req.TotalAmount, directorThreshold)
			}
			return NewUnauthorizedError("role %s cannot approve %s requests", actor.Role, req.Committee)
		}
	case ActionReject:
		if !CanReject(actor.Role, req.Committee, req.Status) {
			return NewUnauthorizedError("role %s cannot reject %s requests in status %s", actor.Role, req.Committee, req.Status)
		}
	case ActionForceReject:
		if !CanForceReject(actor.Role) {
			return NewUnauthorizedError("role %s cannot force-reject requests", actor.Role)
		}
	case ActionSettle:
		if !CanSettle(actor.Role) {
			return NewUnauthorizedError("role %s cannot settle requests", actor.Role)
		}
	default:
		return NewUnauthorizedError("unknown action %s", action)
	}

	return nil
}
