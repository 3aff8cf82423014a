package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/trustspirit/reimburse-gin/internal/model"
	"github.com/trustspirit/reimburse-gin/internal/repository"
	"github.com/trustspirit/reimburse-gin/internal/utils"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
	"gorm.io/gorm"
)

// ProjectService 项目服务接口
type ProjectService interface {
	Create(ctx context.Context, actor workflow.Actor, req *CreateProjectRequest) (*model.ProjectModel, error)
	Get(id string) (*model.ProjectModel, error)
	List() ([]*model.ProjectModel, error)
	UpdateBudget(ctx context.Context, actor workflow.Actor, id string, req *UpdateBudgetRequest) (*model.ProjectModel, error)
}

// CreateProjectRequest 创建项目的请求参数
// @Description 创建项目的请求参数,仅管理员可调用
type CreateProjectRequest struct {
	Name                      string             `json:"name" example:"2026 하계 수련회" binding:"required"`
	BudgetConfig              model.BudgetConfig `json:"budgetConfig"`
	DirectorApprovalThreshold *int64             `json:"directorApprovalThreshold"` // 省略时用配置默认值
	BudgetWarningThreshold    *int               `json:"budgetWarningThreshold"`    // 省略时默认 85
}

// UpdateBudgetRequest 更新项目预算配置的请求参数
// @Description 更新预算总额/分项额度/阈值,省略的字段保持不变
type UpdateBudgetRequest struct {
	BudgetConfig              *model.BudgetConfig `json:"budgetConfig"`
	DirectorApprovalThreshold *int64              `json:"directorApprovalThreshold"`
	BudgetWarningThreshold    *int                `json:"budgetWarningThreshold"`
}

type projectService struct {
	projectRepo repository.ProjectRepository
	auditLogSvc AuditLogService
	// defaultDirectorThreshold 创建时未指定主管批准阈值的回退值
	defaultDirectorThreshold int64
	defaultWarningThreshold  int
}

// NewProjectService 创建项目服务
func NewProjectService(
	projectRepo repository.ProjectRepository,
	auditLogSvc AuditLogService,
	defaultDirectorThreshold int64,
	defaultWarningThreshold int,
) ProjectService {
	return &projectService{
		projectRepo:              projectRepo,
		auditLogSvc:              auditLogSvc,
		defaultDirectorThreshold: defaultDirectorThreshold,
		defaultWarningThreshold:  defaultWarningThreshold,
	}
}

// Create 创建项目(仅管理员)
func (s *projectService) Create(ctx context.Context, actor workflow.Actor, req *CreateProjectRequest) (*model.ProjectModel, error) {
	if actor.Role != workflow.RoleAdmin {
		return nil, workflow.NewUnauthorizedError("only admin can create projects")
	}
	if err := utils.ValidateName(req.Name); err != nil {
		return nil, workflow.NewValidationError("%s", err.Error())
	}

	directorThreshold := s.defaultDirectorThreshold
	if req.DirectorApprovalThreshold != nil {
		directorThreshold = *req.DirectorApprovalThreshold
	}
	warningThreshold := s.defaultWarningThreshold
	if req.BudgetWarningThreshold != nil {
		warningThreshold = *req.BudgetWarningThreshold
	}

	now := time.Now()
	project := &model.ProjectModel{
		ID:                        uuid.New().String(),
		Name:                      req.Name,
		BudgetConfig:              req.BudgetConfig,
		DirectorApprovalThreshold: directorThreshold,
		BudgetWarningThreshold:    warningThreshold,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	if err := project.Validate(); err != nil {
		return nil, workflow.NewValidationError("%s", err.Error())
	}
	if err := s.projectRepo.Save(project); err != nil {
		return nil, err
	}

	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor.UID, "create", "project", project.ID, map[string]interface{}{
			"name": project.Name,
		})
	}
	return project, nil
}

// Get 获取项目详情
func (s *projectService) Get(id string) (*model.ProjectModel, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.NewValidationError("project %s not found", id)
		}
		return nil, err
	}
	return project, nil
}

// List 查询所有项目
func (s *projectService) List() ([]*model.ProjectModel, error) {
	return s.projectRepo.FindAll()
}

// UpdateBudget 更新项目预算配置(仅管理员)
func (s *projectService) UpdateBudget(ctx context.Context, actor workflow.Actor, id string, req *UpdateBudgetRequest) (*model.ProjectModel, error) {
	if actor.Role != workflow.RoleAdmin {
		return nil, workflow.NewUnauthorizedError("only admin can update project budget")
	}

	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.NewValidationError("project %s not found", id)
		}
		return nil, err
	}

	if req.BudgetConfig != nil {
		project.BudgetConfig = *req.BudgetConfig
	}
	if req.DirectorApprovalThreshold != nil {
		project.DirectorApprovalThreshold = *req.DirectorApprovalThreshold
	}
	if req.BudgetWarningThreshold != nil {
		project.BudgetWarningThreshold = *req.BudgetWarningThreshold
	}
	project.UpdatedAt = time.Now()

	if err := project.Validate(); err != nil {
		return nil, workflow.NewValidationError("%s", err.Error())
	}
	if err := s.projectRepo.Save(project); err != nil {
		return nil, err
	}

	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor.UID, "update_budget", "project", id, nil)
	}
	return project, nil
}
