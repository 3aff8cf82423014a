package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustspirit/reimburse-gin/internal/model"
	"github.com/trustspirit/reimburse-gin/internal/repository"
	"github.com/trustspirit/reimburse-gin/internal/service"
)

// captureBroadcaster 记录广播消息的测试替身
type captureBroadcaster struct {
	messages [][]byte
}

func (b *captureBroadcaster) TryBroadcast(message []byte) {
	b.messages = append(b.messages, message)
}

// TestNotifier_RequestChanged 测试转换事件写入 outbox 并广播
func TestNotifier_RequestChanged(t *testing.T) {
	env := newTestEnv(t, 0)
	eventRepo := repository.NewEventRepository(env.db)
	broadcaster := &captureBroadcaster{}
	notifier := service.NewNotifier(eventRepo, broadcaster)

	req := &model.PaymentRequestModel{
		ID:          "req-001",
		ProjectID:   "proj-001",
		Status:      "reviewed",
		TotalAmount: 300000,
	}
	notifier.RequestChanged(model.EventRequestReviewed, req, "pending", "reviewed")

	events, err := eventRepo.FindByRequestID("req-001")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventRequestReviewed, events[0].Type)
	assert.Equal(t, "pending", events[0].Status)
	assert.Contains(t, string(events[0].Data), `"oldStatus":"pending"`)
	assert.Contains(t, string(events[0].Data), `"newStatus":"reviewed"`)

	require.Len(t, broadcaster.messages, 1)
	assert.Contains(t, string(broadcaster.messages[0]), "request.reviewed")
}

// TestNotifier_SettlementCreated 测试结算事件按成员申请逐条写入 outbox
func TestNotifier_SettlementCreated(t *testing.T) {
	env := newTestEnv(t, 0)
	eventRepo := repository.NewEventRepository(env.db)
	broadcaster := &captureBroadcaster{}
	notifier := service.NewNotifier(eventRepo, broadcaster)

	settlement := &model.SettlementModel{
		ID:          "stl-001",
		ProjectID:   "proj-001",
		RequestIDs:  []string{"req-001", "req-002"},
		Committee:   "operations",
		TotalAmount: 500000,
		CreatedAt:   time.Now(),
	}
	notifier.SettlementCreated(settlement)

	for _, requestID := range settlement.RequestIDs {
		events, err := eventRepo.FindByRequestID(requestID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, model.EventSettlementCreated, events[0].Type)
	}

	// 广播一次,不按成员重复推送
	assert.Len(t, broadcaster.messages, 1)
}

// TestNotifier_NilBroadcaster 测试无广播通道时仅写 outbox
func TestNotifier_NilBroadcaster(t *testing.T) {
	env := newTestEnv(t, 0)
	eventRepo := repository.NewEventRepository(env.db)
	notifier := service.NewNotifier(eventRepo, nil)

	req := &model.PaymentRequestModel{ID: "req-001", Status: "pending"}
	notifier.RequestChanged(model.EventRequestCreated, req, "", "pending")

	events, err := eventRepo.FindByRequestID("req-001")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
