package workflow

// Role 用户角色（封闭枚举,所有权限判断基于此类型做穷举匹配）
type Role string

const (
	RoleMember          Role = "member"           // 普通成员,仅能提交申请
	RoleReviewerOps     Role = "reviewer_ops"     // 运营委员会审核员
	RoleReviewerPrep    Role = "reviewer_prep"    // 筹备委员会审核员
	RoleReviewerAll     Role = "reviewer_all"     // 双委员会审核员
	RoleApproverOps     Role = "approver_ops"     // 运营委员会批准人
	RoleApproverPrep    Role = "approver_prep"    // 筹备委员会批准人
	RoleDirectorOps     Role = "director_ops"     // 运营委员会主管
	RoleDirectorPrep    Role = "director_prep"    // 筹备委员会主管
	RoleSessionDirector Role = "session_director" // 总负责人,跨委员会最终批准
	RoleAdmin           Role = "admin"            // 管理员,拥有全部权限
)

// Committee 委员会
type Committee string

const (
	CommitteeOperations  Committee = "operations"  // 运营委员会
	CommitteePreparation Committee = "preparation" // 筹备委员会
)

// AllRoles 所有角色列表
func AllRoles() []Role {
	return []Role{
		RoleMember,
		RoleReviewerOps,
		RoleReviewerPrep,
		RoleReviewerAll,
		RoleApproverOps,
		RoleApproverPrep,
		RoleDirectorOps,
		RoleDirectorPrep,
		RoleSessionDirector,
		RoleAdmin,
	}
}

// ParseRole 解析角色字符串
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles() {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// ParseCommittee 解析委员会字符串
func ParseCommittee(s string) (Committee, bool) {
	switch Committee(s) {
	case CommitteeOperations:
		return CommitteeOperations, true
	case CommitteePreparation:
		return CommitteePreparation, true
	}
	return "", false
}

// IsValid 判断角色是否合法
func (r Role) IsValid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// IsDirectorLevel 判断是否为主管级角色
// 主管级角色提交的申请只能由总负责人或管理员批准
func (r Role) IsDirectorLevel() bool {
	switch r {
	case RoleDirectorOps, RoleDirectorPrep, RoleSessionDirector:
		return true
	}
	return false
}
