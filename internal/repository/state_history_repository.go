package repository

import (
	"github.com/trustspirit/reimburse-gin/internal/model"
	"gorm.io/gorm"
)

// StateHistoryRepository 状态历史仓储接口
type StateHistoryRepository interface {
	Save(history *model.StateHistoryModel) error
	FindByRequestID(requestID string) ([]*model.StateHistoryModel, error)
	WithTx(tx *gorm.DB) StateHistoryRepository
}

// stateHistoryRepository 状态历史仓储实现
type stateHistoryRepository struct {
	db *gorm.DB
}

// NewStateHistoryRepository 创建状态历史仓储
func NewStateHistoryRepository(db *gorm.DB) StateHistoryRepository {
	return &stateHistoryRepository{db: db}
}

// WithTx 返回绑定事务的仓储
func (r *stateHistoryRepository) WithTx(tx *gorm.DB) StateHistoryRepository {
	return &stateHistoryRepository{db: tx}
}

// Save 保存状态历史
func (r *stateHistoryRepository) Save(history *model.StateHistoryModel) error {
	return r.db.Save(history).Error
}

// FindByRequestID 根据申请 ID 查找状态历史
func (r *stateHistoryRepository) FindByRequestID(requestID string) ([]*model.StateHistoryModel, error) {
	var histories []*model.StateHistoryModel
	err := r.db.Where("request_id = ?", requestID).Order("created_at ASC").Find(&histories).Error
	return histories, err
}
