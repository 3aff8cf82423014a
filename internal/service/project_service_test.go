package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustspirit/reimburse-gin/internal/model"
	"github.com/trustspirit/reimburse-gin/internal/service"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
)

// newProjectService 构建带默认阈值的项目服务
func newProjectService(t *testing.T) (service.ProjectService, *testEnv) {
	t.Helper()
	env := newTestEnv(t, 0)
	return service.NewProjectService(env.projectRepo, nil, 600000, 85), env
}

// TestProjectService_Create 测试项目创建与阈值默认值
func TestProjectService_Create(t *testing.T) {
	svc, _ := newProjectService(t)
	admin := workflow.Actor{UID: "admin-001", Role: workflow.RoleAdmin}
	ctx := context.Background()

	project, err := svc.Create(ctx, admin, &service.CreateProjectRequest{
		Name:         "2026 하계 수련회",
		BudgetConfig: model.BudgetConfig{TotalBudget: 2000000},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)
	// 未指定阈值时使用配置默认值
	assert.Equal(t, int64(600000), project.DirectorApprovalThreshold)
	assert.Equal(t, 85, project.BudgetWarningThreshold)

	// 显式指定阈值
	threshold := int64(800000)
	warning := 90
	custom, err := svc.Create(ctx, admin, &service.CreateProjectRequest{
		Name:                      "운영위 상비예산",
		DirectorApprovalThreshold: &threshold,
		BudgetWarningThreshold:    &warning,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(800000), custom.DirectorApprovalThreshold)
	assert.Equal(t, 90, custom.BudgetWarningThreshold)

	projects, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

// TestProjectService_Create_Validation 测试项目创建校验
func TestProjectService_Create_Validation(t *testing.T) {
	svc, _ := newProjectService(t)
	ctx := context.Background()

	// 仅管理员可创建
	member := workflow.Actor{UID: "user-001", Role: workflow.RoleMember}
	_, err := svc.Create(ctx, member, &service.CreateProjectRequest{Name: "행사"})
	assert.ErrorIs(t, err, workflow.ErrUnauthorized)

	admin := workflow.Actor{UID: "admin-001", Role: workflow.RoleAdmin}

	_, err = svc.Create(ctx, admin, &service.CreateProjectRequest{Name: "  "})
	assert.ErrorIs(t, err, workflow.ErrValidation)

	_, err = svc.Create(ctx, admin, &service.CreateProjectRequest{Name: "<script>alert(1)</script>"})
	assert.ErrorIs(t, err, workflow.ErrValidation)

	// 预警阈值超出 0-100
	warning := 120
	_, err = svc.Create(ctx, admin, &service.CreateProjectRequest{
		Name:                   "행사",
		BudgetWarningThreshold: &warning,
	})
	assert.ErrorIs(t, err, workflow.ErrValidation)
}

// TestProjectService_UpdateBudget 测试预算配置部分更新
func TestProjectService_UpdateBudget(t *testing.T) {
	svc, _ := newProjectService(t)
	admin := workflow.Actor{UID: "admin-001", Role: workflow.RoleAdmin}
	ctx := context.Background()

	project, err := svc.Create(ctx, admin, &service.CreateProjectRequest{
		Name:         "2026 하계 수련회",
		BudgetConfig: model.BudgetConfig{TotalBudget: 2000000},
	})
	require.NoError(t, err)

	// 仅管理员可更新
	member := workflow.Actor{UID: "user-001", Role: workflow.RoleMember}
	_, err = svc.UpdateBudget(ctx, member, project.ID, &service.UpdateBudgetRequest{})
	assert.ErrorIs(t, err, workflow.ErrUnauthorized)

	// 省略的字段保持不变
	threshold := int64(900000)
	updated, err := svc.UpdateBudget(ctx, admin, project.ID, &service.UpdateBudgetRequest{
		DirectorApprovalThreshold: &threshold,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(900000), updated.DirectorApprovalThreshold)
	assert.Equal(t, int64(2000000), updated.BudgetConfig.TotalBudget)
	assert.Equal(t, 85, updated.BudgetWarningThreshold)

	// 未知项目
	_, err = svc.UpdateBudget(ctx, admin, "proj-missing", &service.UpdateBudgetRequest{})
	assert.ErrorIs(t, err, workflow.ErrValidation)
}
