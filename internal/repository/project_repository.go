package repository

import (
	"github.com/trustspirit/reimburse-gin/internal/model"
	"gorm.io/gorm"
)

// ProjectRepository 项目仓储接口
type ProjectRepository interface {
	Save(project *model.ProjectModel) error
	FindByID(id string) (*model.ProjectModel, error)
	FindAll() ([]*model.ProjectModel, error)
}

// projectRepository 项目仓储实现
type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Save 保存项目
func (r *projectRepository) Save(project *model.ProjectModel) error {
	return r.db.Save(project).Error
}

// FindByID 根据 ID 查找项目
func (r *projectRepository) FindByID(id string) (*model.ProjectModel, error) {
	var project model.ProjectModel
	if err := r.db.Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindAll 查找所有项目
func (r *projectRepository) FindAll() ([]*model.ProjectModel, error) {
	var projects []*model.ProjectModel
	err := r.db.Order("created_at DESC").Find(&projects).Error
	return projects, err
}
