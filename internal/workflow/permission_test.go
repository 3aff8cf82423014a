package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
)

// TestCanReview 测试审核权限的委员会归属
func TestCanReview(t *testing.T) {
	cases := []struct {
		role      workflow.Role
		committee workflow.Committee
		want      bool
	}{
		{workflow.RoleReviewerOps, workflow.CommitteeOperations, true},
		{workflow.RoleReviewerOps, workflow.CommitteePreparation, false},
		{workflow.RoleReviewerPrep, workflow.CommitteePreparation, true},
		{workflow.RoleReviewerPrep, workflow.CommitteeOperations, false},
		{workflow.RoleReviewerAll, workflow.CommitteeOperations, true},
		{workflow.RoleReviewerAll, workflow.CommitteePreparation, true},
		{workflow.RoleAdmin, workflow.CommitteeOperations, true},
		{workflow.RoleAdmin, workflow.CommitteePreparation, true},
		// 批准人和主管没有审核能力,审批链不允许越级
		{workflow.RoleApproverOps, workflow.CommitteeOperations, false},
		{workflow.RoleDirectorOps, workflow.CommitteeOperations, false},
		{workflow.RoleSessionDirector, workflow.CommitteeOperations, false},
		{workflow.RoleMember, workflow.CommitteeOperations, false},
	}

	for _, c := range cases {
		got := workflow.CanReview(c.role, c.committee)
		assert.Equal(t, c.want, got, "role %s committee %s", c.role, c.committee)
	}
}

// TestCanFinalApprove 测试批准权限矩阵(普通申请,金额未超阈值)
func TestCanFinalApprove(t *testing.T) {
	const amount = 100000
	const threshold = 600000

	cases := []struct {
		role      workflow.Role
		committee workflow.Committee
		want      bool
	}{
		{workflow.RoleApproverOps, workflow.CommitteeOperations, true},
		{workflow.RoleApproverOps, workflow.CommitteePreparation, false},
		{workflow.RoleApproverPrep, workflow.CommitteePreparation, true},
		{workflow.RoleApproverPrep, workflow.CommitteeOperations, false},
		{workflow.RoleDirectorOps, workflow.CommitteeOperations, true},
		{workflow.RoleDirectorOps, workflow.CommitteePreparation, false},
		{workflow.RoleDirectorPrep, workflow.CommitteePreparation, true},
		{workflow.RoleSessionDirector, workflow.CommitteeOperations, true},
		{workflow.RoleSessionDirector, workflow.CommitteePreparation, true},
		{workflow.RoleAdmin, workflow.CommitteeOperations, true},
		{workflow.RoleReviewerOps, workflow.CommitteeOperations, false},
		{workflow.RoleMember, workflow.CommitteeOperations, false},
	}

	for _, c := range cases {
		got := workflow.CanFinalApprove(c.role, c.committee, amount, threshold, false)
		assert.Equal(t, c.want, got, "role %s committee %s", c.role, c.committee)
	}
}

// TestCanFinalApprove_AmountThreshold 测试金额超过阈值时批准权收敛到主管级
func TestCanFinalApprove_AmountThreshold(t *testing.T) {
	const threshold = 600000
	const overAmount = 600001

	// 普通批准人被金额阈值挡住
	assert.False(t, workflow.CanFinalApprove(workflow.RoleApproverOps, workflow.CommitteeOperations, overAmount, threshold, false))
	// 本委员会主管、总负责人、管理员不受影响
	assert.True(t, workflow.CanFinalApprove(workflow.RoleDirectorOps, workflow.CommitteeOperations, overAmount, threshold, false))
	assert.True(t, workflow.CanFinalApprove(workflow.RoleSessionDirector, workflow.CommitteeOperations, overAmount, threshold, false))
	assert.True(t, workflow.CanFinalApprove(workflow.RoleAdmin, workflow.CommitteeOperations, overAmount, threshold, false))
	// 他委员会主管仍然不能批
	assert.False(t, workflow.CanFinalApprove(workflow.RoleDirectorPrep, workflow.CommitteeOperations, overAmount, threshold, false))

	// 金额恰好等于阈值,普通批准人仍可批准
	assert.True(t, workflow.CanFinalApprove(workflow.RoleApproverOps, workflow.CommitteeOperations, threshold, threshold, false))

	// 阈值 <= 0 表示金额门禁关闭
	assert.True(t, workflow.CanFinalApprove(workflow.RoleApproverOps, workflow.CommitteeOperations, overAmount, 0, false))
	assert.True(t, workflow.CanFinalApprove(workflow.RoleApproverOps, workflow.CommitteeOperations, overAmount, -1, false))
}

// TestCanFinalApprove_DirectorRequest 测试主管级申请人的批准权收敛
// 申请人本身是主管时,同级/本委员会主管都不能批,只有总负责人或管理员可批
func TestCanFinalApprove_DirectorRequest(t *testing.T) {
	const amount = 100000
	const threshold = 600000

	assert.False(t, workflow.CanFinalApprove(workflow.RoleApproverOps, workflow.CommitteeOperations, amount, threshold, true))
	assert.False(t, workflow.CanFinalApprove(workflow.RoleDirectorOps, workflow.CommitteeOperations, amount, threshold, true))
	assert.False(t, workflow.CanFinalApprove(workflow.RoleDirectorPrep, workflow.CommitteePreparation, amount, threshold, true))

	assert.True(t, workflow.CanFinalApprove(workflow.RoleSessionDirector, workflow.CommitteeOperations, amount, threshold, true))
	assert.True(t, workflow.CanFinalApprove(workflow.RoleAdmin, workflow.CommitteeOperations, amount, threshold, true))
}

// TestCanReject 测试驳回权限按申请状态分阶段
func TestCanReject(t *testing.T) {
	// pending 阶段沿用审核员规则
	assert.True(t, workflow.CanReject(workflow.RoleReviewerOps, workflow.CommitteeOperations, workflow.StatusPending))
	assert.False(t, workflow.CanReject(workflow.RoleReviewerOps, workflow.CommitteePreparation, workflow.StatusPending))
	assert.True(t, workflow.CanReject(workflow.RoleReviewerAll, workflow.CommitteePreparation, workflow.StatusPending))
	// 批准人在 pending 阶段不能驳回
	assert.False(t, workflow.CanReject(workflow.RoleApproverOps, workflow.CommitteeOperations, workflow.StatusPending))

	// reviewed 阶段沿用批准人规则
	assert.True(t, workflow.CanReject(workflow.RoleApproverOps, workflow.CommitteeOperations, workflow.StatusReviewed))
	assert.True(t, workflow.CanReject(workflow.RoleDirectorOps, workflow.CommitteeOperations, workflow.StatusReviewed))
	assert.True(t, workflow.CanReject(workflow.RoleSessionDirector, workflow.CommitteePreparation, workflow.StatusReviewed))
	// 审核员在 reviewed 阶段不能驳回
	assert.False(t, workflow.CanReject(workflow.RoleReviewerOps, workflow.CommitteeOperations, workflow.StatusReviewed))

	// admin 两个阶段都可以
	assert.True(t, workflow.CanReject(workflow.RoleAdmin, workflow.CommitteeOperations, workflow.StatusPending))
	assert.True(t, workflow.CanReject(workflow.RoleAdmin, workflow.CommitteeOperations, workflow.StatusReviewed))

	// 其他状态一律不能驳回
	assert.False(t, workflow.CanReject(workflow.RoleAdmin, workflow.CommitteeOperations, workflow.StatusApproved))
	assert.False(t, workflow.CanReject(workflow.RoleAdmin, workflow.CommitteeOperations, workflow.StatusSettled))
}

// TestCanForceReject 测试强制驳回仅限总负责人与管理员
func TestCanForceReject(t *testing.T) {
	assert.True(t, workflow.CanForceReject(workflow.RoleSessionDirector))
	assert.True(t, workflow.CanForceReject(workflow.RoleAdmin))

	assert.False(t, workflow.CanForceReject(workflow.RoleDirectorOps))
	assert.False(t, workflow.CanForceReject(workflow.RoleDirectorPrep))
	assert.False(t, workflow.CanForceReject(workflow.RoleApproverOps))
	assert.False(t, workflow.CanForceReject(workflow.RoleReviewerAll))
	assert.False(t, workflow.CanForceReject(workflow.RoleMember))
}

// TestCanSettle 测试结算权限仅限总负责人与管理员
func TestCanSettle(t *testing.T) {
	assert.True(t, workflow.CanSettle(workflow.RoleSessionDirector))
	assert.True(t, workflow.CanSettle(workflow.RoleAdmin))

	assert.False(t, workflow.CanSettle(workflow.RoleDirectorOps))
	assert.False(t, workflow.CanSettle(workflow.RoleApproverPrep))
	assert.False(t, workflow.CanSettle(workflow.RoleMember))
}

// TestRole_IsDirectorLevel 测试主管级角色判断
func TestRole_IsDirectorLevel(t *testing.T) {
	assert.True(t, workflow.RoleDirectorOps.IsDirectorLevel())
	assert.True(t, workflow.RoleDirectorPrep.IsDirectorLevel())
	assert.True(t, workflow.RoleSessionDirector.IsDirectorLevel())

	assert.False(t, workflow.RoleAdmin.IsDirectorLevel())
	assert.False(t, workflow.RoleApproverOps.IsDirectorLevel())
	assert.False(t, workflow.RoleMember.IsDirectorLevel())
}

// TestParseRole 测试角色字符串解析
func TestParseRole(t *testing.T) {
	for _, r := range workflow.AllRoles() {
		parsed, ok := workflow.ParseRole(string(r))
		assert.True(t, ok)
		assert.Equal(t, r, parsed)
	}

	_, ok := workflow.ParseRole("superuser")
	assert.False(t, ok)
	_, ok = workflow.ParseRole("")
	assert.False(t, ok)
}

// TestParseCommittee 测试委员会字符串解析
func TestParseCommittee(t *testing.T) {
	c, ok := workflow.ParseCommittee("operations")
	assert.True(t, ok)
	assert.Equal(t, workflow.CommitteeOperations, c)

	c, ok = workflow.ParseCommittee("preparation")
	assert.True(t, ok)
	assert.Equal(t, workflow.CommitteePreparation, c)

	_, ok = workflow.ParseCommittee("finance")
	assert.False(t, ok)
}
