package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/trustspirit/reimburse-gin/internal/model"
	"github.com/trustspirit/reimburse-gin/internal/repository"
)

// Broadcaster 事件实时推送通道(WebSocket Hub 实现)
type Broadcaster interface {
	TryBroadcast(message []byte)
}

// Notifier 状态转换通知接口
//
// 核心只负责宣告"发生了一次转换,这是旧/新状态与申请快照";
// 邮件投递由消费 outbox 的外部协作方完成,投递失败不影响状态机。
type Notifier interface {
	RequestChanged(eventType string, req *model.PaymentRequestModel, oldStatus string, newStatus string)
	SettlementCreated(settlement *model.SettlementModel)
}

// requestEventPayload 转换事件载荷
type requestEventPayload struct {
	Type      string                      `json:"type"`
	OldStatus string                      `json:"oldStatus,omitempty"`
	NewStatus string                      `json:"newStatus"`
	Request   *model.PaymentRequestModel  `json:"request,omitempty"`
	Settlement *model.SettlementModel     `json:"settlement,omitempty"`
}

// outboxNotifier 基于事件 outbox + WebSocket 广播的通知实现
type outboxNotifier struct {
	eventRepo   repository.EventRepository
	broadcaster Broadcaster
}

// NewNotifier 创建通知器。broadcaster 可为 nil(如迁移命令场景)
func NewNotifier(eventRepo repository.EventRepository, broadcaster Broadcaster) Notifier {
	return &outboxNotifier{
		eventRepo:   eventRepo,
		broadcaster: broadcaster,
	}
}

// RequestChanged 记录申请状态转换事件
func (n *outboxNotifier) RequestChanged(eventType string, req *model.PaymentRequestModel, oldStatus string, newStatus string) {
	payload := requestEventPayload{
		Type:      eventType,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Request:   req,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	now := time.Now()
	_ = n.eventRepo.Save(&model.EventModel{
		ID:        uuid.New().String(),
		RequestID: req.ID,
		Type:      eventType,
		Data:      data,
		Status:    "pending",
		CreatedAt: now,
		UpdatedAt: now,
	})

	if n.broadcaster != nil {
		n.broadcaster.TryBroadcast(data)
	}
}

// SettlementCreated 记录结算创建事件
func (n *outboxNotifier) SettlementCreated(settlement *model.SettlementModel) {
	payload := requestEventPayload{
		Type:       model.EventSettlementCreated,
		NewStatus:  "settled",
		Settlement: settlement,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	now := time.Now()
	for _, requestID := range settlement.RequestIDs {
		_ = n.eventRepo.Save(&model.EventModel{
			ID:        uuid.New().String(),
			RequestID: requestID,
			Type:      model.EventSettlementCreated,
			Data:      data,
			Status:    "pending",
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if n.broadcaster != nil {
		n.broadcaster.TryBroadcast(data)
	}
}

// NopNotifier 空通知器(测试/迁移场景)
type NopNotifier struct{}

// RequestChanged 空实现
func (NopNotifier) RequestChanged(string, *model.PaymentRequestModel, string, string) {}

// SettlementCreated 空实现
func (NopNotifier) SettlementCreated(*model.SettlementModel) {}
