package repository

import (
	"github.com/trustspirit/reimburse-gin/internal/model"
	"gorm.io/gorm"
)

// SettlementRepository 结算仓储接口
type SettlementRepository interface {
	Create(settlement *model.SettlementModel) error
	FindByID(id string) (*model.SettlementModel, error)
	FindByProject(projectID string) ([]*model.SettlementModel, error)
	WithTx(tx *gorm.DB) SettlementRepository
}

// settlementRepository 结算仓储实现
type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository 创建结算仓储
func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

// WithTx 返回绑定事务的仓储
func (r *settlementRepository) WithTx(tx *gorm.DB) SettlementRepository {
	return &settlementRepository{db: tx}
}

// Create 创建结算记录
func (r *settlementRepository) Create(settlement *model.SettlementModel) error {
	return r.db.Create(settlement).Error
}

// FindByID 根据 ID 查找结算记录
func (r *settlementRepository) FindByID(id string) (*model.SettlementModel, error) {
	var settlement model.SettlementModel
	if err := r.db.Where("id = ?", id).First(&settlement).Error; err != nil {
		return nil, err
	}
	return &settlement, nil
}

// FindByProject 查找项目下的全部结算记录
func (r *settlementRepository) FindByProject(projectID string) ([]*model.SettlementModel, error) {
	var settlements []*model.SettlementModel
	err := r.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&settlements).Error
	return settlements, err
}
