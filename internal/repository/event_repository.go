package repository

import (
	"github.com/trustspirit/reimburse-gin/internal/model"
	"gorm.io/gorm"
)

// EventRepository 事件仓储接口(通知 outbox)
type EventRepository interface {
	Save(event *model.EventModel) error
	FindByRequestID(requestID string) ([]*model.EventModel, error)
	FindPending() ([]*model.EventModel, error)
	MarkProcessed(id string, success bool) error
	WithTx(tx *gorm.DB) EventRepository
}

// eventRepository 事件仓储实现
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository 创建事件仓储
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// WithTx 返回绑定事务的仓储
func (r *eventRepository) WithTx(tx *gorm.DB) EventRepository {
	return &eventRepository{db: tx}
}

// Save 保存事件
func (r *eventRepository) Save(event *model.EventModel) error {
	return r.db.Save(event).Error
}

// FindByRequestID 根据申请 ID 查找事件
func (r *eventRepository) FindByRequestID(requestID string) ([]*model.EventModel, error) {
	var events []*model.EventModel
	err := r.db.Where("request_id = ?", requestID).Order("created_at ASC").Find(&events).Error
	return events, err
}

// FindPending 查找待投递的事件
func (r *eventRepository) FindPending() ([]*model.EventModel, error) {
	var events []*model.EventModel
	err := r.db.Where("status = ?", "pending").Order("created_at ASC").Find(&events).Error
	return events, err
}

// MarkProcessed 标记事件投递结果
func (r *eventRepository) MarkProcessed(id string, success bool) error {
	status := "success"
	if !success {
		status = "failed"
	}
	return r.db.Model(&model.EventModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"retry_count": gorm.Expr("retry_count + 1"),
		}).Error
}
