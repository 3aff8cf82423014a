package model

import (
	"errors"
	"time"
)

// 事件类型: 状态转换发生后写入 outbox,供邮件通知等协作方消费
const (
	EventRequestCreated       = "request.created"
	EventRequestReviewed      = "request.reviewed"
	EventRequestApproved      = "request.approved"
	EventRequestRejected      = "request.rejected"
	EventRequestForceRejected = "request.force_rejected"
	EventRequestCancelled     = "request.cancelled"
	EventRequestResubmitted   = "request.resubmitted"
	EventSettlementCreated    = "settlement.created"
)

// EventModel 事件数据模型(通知 outbox)
type EventModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)"`
	RequestID  string    `gorm:"type:varchar(64);not null;index"`
	Type       string    `gorm:"type:varchar(32);not null;index"`
	Data       []byte    `gorm:"type:jsonb;not null"`                         // 序列化后的事件数据(旧/新状态 + 申请快照)
	Status     string    `gorm:"type:varchar(32);not null;default:'pending'"` // pending/success/failed
	RetryCount int       `gorm:"type:int;default:0"`
	CreatedAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName 指定表名
func (EventModel) TableName() string {
	return "events"
}

// Validate 验证事件模型
func (em *EventModel) Validate() error {
	if em.ID == "" {
		return errors.New("event ID is required")
	}
	if em.RequestID == "" {
		return errors.New("request ID is required")
	}
	if em.Type == "" {
		return errors.New("event type is required")
	}
	if len(em.Data) == 0 {
		return errors.New("event data is required")
	}
	if em.Status == "" {
		em.Status = "pending"
	}
	return nil
}
