package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustspirit/reimburse-gin/internal/service"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
)

// TestSettlementService_Consolidate_GroupsByPayee 测试同收款人申请合并为一条结算
func TestSettlementService_Consolidate_GroupsByPayee(t *testing.T) {
	env := newTestEnv(t, 0)
	env.seedProject(t, "proj-001")
	env.seedUser(t, "user-001", workflow.RoleMember, "proj-001")
	operator := env.seedUser(t, "sd-001", workflow.RoleSessionDirector)
	ctx := context.Background()

	env.seedApprovedRequest(t, "req-001", "user-001", "110-001", 300000)
	env.seedApprovedRequest(t, "req-002", "user-001", "110-001", 200000)

	settlements, err := env.settlementSvc.Consolidate(ctx, operator, &service.ConsolidateRequest{
		ProjectID:  "proj-001",
		RequestIDs: []string{"req-001", "req-002"},
	})
	require.NoError(t, err)
	require.Len(t, settlements, 1)

	settlement := settlements[0]
	assert.Equal(t, []string{"req-001", "req-002"}, settlement.RequestIDs)
	assert.Equal(t, "user-001", settlement.Payee.UID)
	assert.Equal(t, int64(500000), settlement.TotalAmount)
	assert.Len(t, settlement.Items, 2)
	// 申请人的默认签名附在结算上
	assert.Equal(t, "sig-user-001", settlement.RequestedBySignature)
	assert.Equal(t, "sd-001", settlement.CreatedBy)

	// 成员申请全部翻转为 settled 并回链结算 ID
	for _, id := range []string{"req-001", "req-002"} {
		member, err := env.requestRepo.FindByID(id)
		require.NoError(t, err)
		assert.Equal(t, string(workflow.StatusSettled), member.Status)
		assert.Equal(t, settlement.ID, member.SettlementID)
		assert.Equal(t, 2, member.Version)

		histories, err := env.historyRepo.FindByRequestID(id)
		require.NoError(t, err)
		require.Len(t, histories, 1)
		assert.Equal(t, string(workflow.StatusSettled), histories[0].ToStatus)
	}
}

// TestSettlementService_Consolidate_SplitsByBankAccount 测试银行账号不同即拆分结算
// 用户中途更新账号后,新旧申请不能合并付款
func TestSettlementService_Consolidate_SplitsByBankAccount(t *testing.T) {
	env := newTestEnv(t, 0)
	env.seedProject(t, "proj-001")
	env.seedUser(t, "user-001", workflow.RoleMember, "proj-001")
	operator := env.seedUser(t, "sd-001", workflow.RoleSessionDirector)
	ctx := context.Background()

	env.seedApprovedRequest(t, "req-001", "user-001", "110-001", 300000)
	env.seedApprovedRequest(t, "req-002", "user-001", "110-002", 200000)
	env.seedApprovedRequest(t, "req-003", "user-001", "110-001", 100000)

	settlements, err := env.settlementSvc.Consolidate(ctx, operator, &service.ConsolidateRequest{
		ProjectID:  "proj-001",
		RequestIDs: []string{"req-001", "req-002", "req-003"},
	})
	require.NoError(t, err)
	require.Len(t, settlements, 2)

	// 分组按选择顺序稳定输出
	assert.Equal(t, []string{"req-001", "req-003"}, settlements[0].RequestIDs)
	assert.Equal(t, int64(400000), settlements[0].TotalAmount)
	assert.Equal(t, []string{"req-002"}, settlements[1].RequestIDs)
	assert.Equal(t, int64(200000), settlements[1].TotalAmount)
}

// TestSettlementService_Consolidate_Unauthorized 测试结算权限
func TestSettlementService_Consolidate_Unauthorized(t *testing.T) {
	env := newTestEnv(t, 0)
	env.seedProject(t, "proj-001")
	env.seedUser(t, "user-001", workflow.RoleMember, "proj-001")
	director := env.seedUser(t, "dir-001", workflow.RoleDirectorOps)
	ctx := context.Background()

	env.seedApprovedRequest(t, "req-001", "user-001", "110-001", 300000)

	_, err := env.settlementSvc.Consolidate(ctx, director, &service.ConsolidateRequest{
		ProjectID:  "proj-001",
		RequestIDs: []string{"req-001"},
	})
	assert.ErrorIs(t, err, workflow.ErrUnauthorized)
}

// TestSettlementService_Consolidate_Validation 测试选择集校验
func TestSettlementService_Consolidate_Validation(t *testing.T) {
	env := newTestEnv(t, 0)
	env.seedProject(t, "proj-001")
	env.seedUser(t, "user-001", workflow.RoleMember, "proj-001")
	operator := env.seedUser(t, "sd-001", workflow.RoleSessionDirector)
	ctx := context.Background()

	env.seedApprovedRequest(t, "req-001", "user-001", "110-001", 300000)

	// 空选择
	_, err := env.settlementSvc.Consolidate(ctx, operator, &service.ConsolidateRequest{
		ProjectID: "proj-001",
	})
	assert.ErrorIs(t, err, workflow.ErrValidation)

	// 未知 ID
	_, err = env.settlementSvc.Consolidate(ctx, operator, &service.ConsolidateRequest{
		ProjectID:  "proj-001",
		RequestIDs: []string{"req-001", "req-missing"},
	})
	assert.ErrorIs(t, err, workflow.ErrValidation)

	// 项目不匹配
	_, err = env.settlementSvc.Consolidate(ctx, operator, &service.ConsolidateRequest{
		ProjectID:  "proj-other",
		RequestIDs: []string{"req-001"},
	})
	assert.ErrorIs(t, err, workflow.ErrValidation)
}

// TestSettlementService_Consolidate_OnlyApproved 测试非 approved 成员导致整批拒绝
func TestSettlementService_Consolidate_OnlyApproved(t *testing.T) {
	env := newTestEnv(t, 0)
	env.seedProject(t, "proj-001")
	env.seedUser(t, "user-001", workflow.RoleMember, "proj-001")
	operator := env.seedUser(t, "sd-001", workflow.RoleSessionDirector)
	ctx := context.Background()

	env.seedApprovedRequest(t, "req-001", "user-001", "110-001", 300000)
	pending := env.seedApprovedRequest(t, "req-002", "user-001", "110-001", 200000)
	require.NoError(t, env.db.Model(pending).Update("status", "reviewed").Error)

	_, err := env.settlementSvc.Consolidate(ctx, operator, &service.ConsolidateRequest{
		ProjectID:  "proj-001",
		RequestIDs: []string{"req-001", "req-002"},
	})
	assert.ErrorIs(t, err, workflow.ErrPrecondition)

	// 任一失败整批零副作用
	untouched, findErr := env.requestRepo.FindByID("req-001")
	require.NoError(t, findErr)
	assert.Equal(t, string(workflow.StatusApproved), untouched.Status)
	assert.Empty(t, untouched.SettlementID)

	settlements, listErr := env.settlementSvc.ListByProject("proj-001")
	require.NoError(t, listErr)
	assert.Empty(t, settlements)
}

// TestSettlementService_Consolidate_MissingSignature 测试缺少批准签名的成员导致整批拒绝
func TestSettlementService_Consolidate_MissingSignature(t *testing.T) {
	env := newTestEnv(t, 0)
	env.seedProject(t, "proj-001")
	env.seedUser(t, "user-001", workflow.RoleMember, "proj-001")
	operator := env.seedUser(t, "sd-001", workflow.RoleSessionDirector)
	ctx := context.Background()

	env.seedApprovedRequest(t, "req-001", "user-001", "110-001", 300000)
	unsigned := env.seedApprovedRequest(t, "req-002", "user-001", "110-001", 200000)
	require.NoError(t, env.db.Model(unsigned).Update("approval_signature", "").Error)

	_, err := env.settlementSvc.Consolidate(ctx, operator, &service.ConsolidateRequest{
		ProjectID:  "proj-001",
		RequestIDs: []string{"req-001", "req-002"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrPrecondition)
	// 错误信息按收款人姓名提示,方便操作员定位
	assert.Contains(t, err.Error(), "user user-001")

	untouched, findErr := env.requestRepo.FindByID("req-001")
	require.NoError(t, findErr)
	assert.Equal(t, string(workflow.StatusApproved), untouched.Status)
}

// TestSettlementService_Consolidate_BatchLimit 测试批次写操作上限
func TestSettlementService_Consolidate_BatchLimit(t *testing.T) {
	// 上限 3: 两个分组 + 两条申请 = 4 次写,超限
	env := newTestEnv(t, 3)
	env.seedProject(t, "proj-001")
	env.seedUser(t, "user-001", workflow.RoleMember, "proj-001")
	env.seedUser(t, "user-002", workflow.RoleMember, "proj-001")
	operator := env.seedUser(t, "sd-001", workflow.RoleSessionDirector)
	ctx := context.Background()

	env.seedApprovedRequest(t, "req-001", "user-001", "110-001", 300000)
	env.seedApprovedRequest(t, "req-002", "user-002", "110-002", 200000)

	_, err := env.settlementSvc.Consolidate(ctx, operator, &service.ConsolidateRequest{
		ProjectID:  "proj-001",
		RequestIDs: []string{"req-001", "req-002"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrPrecondition)
	assert.Contains(t, err.Error(), "narrow your selection")

	// 同上限下单分组可以通过: 1 个分组 + 2 条申请 = 3 次写
	env.seedApprovedRequest(t, "req-003", "user-001", "110-001", 100000)
	settlements, err := env.settlementSvc.Consolidate(ctx, operator, &service.ConsolidateRequest{
		ProjectID:  "proj-001",
		RequestIDs: []string{"req-001", "req-003"},
	})
	require.NoError(t, err)
	assert.Len(t, settlements, 1)
}

// TestSettlementService_GetAndList 测试结算查询
func TestSettlementService_GetAndList(t *testing.T) {
	env := newTestEnv(t, 0)
	env.seedProject(t, "proj-001")
	env.seedUser(t, "user-001", workflow.RoleMember, "proj-001")
	operator := env.seedUser(t, "sd-001", workflow.RoleSessionDirector)
	ctx := context.Background()

	env.seedApprovedRequest(t, "req-001", "user-001", "110-001", 300000)

	settlements, err := env.settlementSvc.Consolidate(ctx, operator, &service.ConsolidateRequest{
		ProjectID:  "proj-001",
		RequestIDs: []string{"req-001"},
	})
	require.NoError(t, err)
	require.Len(t, settlements, 1)

	found, err := env.settlementSvc.Get(settlements[0].ID)
	require.NoError(t, err)
	assert.Equal(t, settlements[0].ID, found.ID)
	assert.Equal(t, int64(300000), found.TotalAmount)

	_, err = env.settlementSvc.Get("missing")
	assert.ErrorIs(t, err, workflow.ErrValidation)

	listed, err := env.settlementSvc.ListByProject("proj-001")
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
