package service

import (
	"errors"

	"github.com/trustspirit/reimburse-gin/internal/repository"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
	"gorm.io/gorm"
)

// BudgetService 预算服务接口
type BudgetService interface {
	GetUsage(projectID string) (*workflow.BudgetUsage, error)
}

type budgetService struct {
	projectRepo repository.ProjectRepository
	requestRepo repository.RequestRepository
}

// NewBudgetService 创建预算服务
func NewBudgetService(projectRepo repository.ProjectRepository, requestRepo repository.RequestRepository) BudgetService {
	return &budgetService{projectRepo: projectRepo, requestRepo: requestRepo}
}

// GetUsage 计算项目当前的预算占用
//
// 只统计 reviewed/approved/settled 三种状态,pending 与各类终止态不占额度。
func (s *budgetService) GetUsage(projectID string) (*workflow.BudgetUsage, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.NewValidationError("project %s not found", projectID)
		}
		return nil, err
	}

	requests, err := s.requestRepo.FindByProjectStatuses(projectID, []string{
		string(workflow.StatusReviewed),
		string(workflow.StatusApproved),
		string(workflow.StatusSettled),
	})
	if err != nil {
		return nil, err
	}

	usage := workflow.CalcBudgetUsage(
		project.BudgetConfig.TotalBudget,
		project.BudgetWarningThreshold,
		repository.BudgetRequests(requests),
	)
	return &usage, nil
}
