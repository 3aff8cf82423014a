package workflow

// 角色权限矩阵。全部为无状态纯函数,基于封闭的 Role/Committee 枚举做穷举匹配,
// 新增或删除角色时编译期即可发现遗漏分支。
// 注意: 本人操作禁令(申请人不能操作自己的申请)由 Authorize 统一强制,
// 这里只回答"该角色在该委员会是否具备能力"。

// reviewCommittee 返回审核员角色负责的委员会集合
func reviewCommittees(role Role) []Committee {
	switch role {
	case RoleReviewerOps:
		return []Committee{CommitteeOperations}
	case RoleReviewerPrep:
		return []Committee{CommitteePreparation}
	case RoleReviewerAll:
		return []Committee{CommitteeOperations, CommitteePreparation}
	}
	return nil
}

// CanReview 判断角色能否审核指定委员会的申请 (pending → reviewed)
func CanReview(role Role, committee Committee) bool {
	if role == RoleAdmin {
		return true
	}
	for _, c := range reviewCommittees(role) {
		if c == committee {
			return true
		}
	}
	return false
}

// isCommitteeApprover 判断角色是否为指定委员会的普通批准人
func isCommitteeApprover(role Role, committee Committee) bool {
	switch role {
	case RoleApproverOps:
		return committee == CommitteeOperations
	case RoleApproverPrep:
		return committee == CommitteePreparation
	}
	return false
}

// isCommitteeDirector 判断角色是否为指定委员会的主管
func isCommitteeDirector(role Role, committee Committee) bool {
	switch role {
	case RoleDirectorOps:
		return committee == CommitteeOperations
	case RoleDirectorPrep:
		return committee == CommitteePreparation
	}
	return false
}

// CanFinalApprove 判断角色能否对申请做最终批准 (reviewed → approved)
//
// 规则(按优先级):
//  1. admin 无条件批准。
//  2. 申请人本身是主管级角色时,批准权收敛到总负责人/管理员,
//     同级或本委员会主管都不能批准 (isDirectorRequest)。
//  3. 金额超过项目主管批准阈值时,普通批准人被挡,只有本委员会主管、
//     总负责人可批。阈值不作用于驳回与审核。
//  4. 其余情况,本委员会批准人/主管及总负责人均可批准。
func CanFinalApprove(role Role, committee Committee, amount int64, threshold int64, isDirectorRequest bool) bool {
	if role == RoleAdmin {
		return true
	}
	if isDirectorRequest {
		return role == RoleSessionDirector
	}
	if threshold > 0 && amount > threshold {
		return role == RoleSessionDirector || isCommitteeDirector(role, committee)
	}
	return role == RoleSessionDirector ||
		isCommitteeDirector(role, committee) ||
		isCommitteeApprover(role, committee)
}

// CanReject 判断角色能否驳回当前状态下的申请
//
// 驳回权限取决于申请当前状态: pending 阶段沿用审核员规则,
// reviewed 阶段沿用批准人规则。金额阈值不限制驳回。
func CanReject(role Role, committee Committee, status Status) bool {
	if role == RoleAdmin {
		return true
	}
	switch status {
	case StatusPending:
		return CanReview(role, committee)
	case StatusReviewed:
		return role == RoleSessionDirector ||
			isCommitteeDirector(role, committee) ||
			isCommitteeApprover(role, committee)
	}
	return false
}

// CanForceReject 判断角色能否强制驳回已批准的申请 (approved → force_rejected)
// 用于结算前撤销批准,仅限总负责人与管理员。
func CanForceReject(role Role) bool {
	return role == RoleSessionDirector || role == RoleAdmin
}

// CanSettle 判断角色能否执行结算合并
func CanSettle(role Role) bool {
	return role == RoleSessionDirector || role == RoleAdmin
}
