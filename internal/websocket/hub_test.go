package websocket_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustspirit/reimburse-gin/internal/websocket"
)

// waitFor 轮询等待条件成立
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

// TestHub_RegisterUnregister 测试客户端注册与注销
func TestHub_RegisterUnregister(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	client := websocket.NewClient("client-001", "user-001", hub, nil)
	hub.Register <- client
	waitFor(t, func() bool { return hub.HasClient("client-001") })
	assert.Equal(t, 1, hub.GetClientCount())

	hub.Unregister <- client
	waitFor(t, func() bool { return !hub.HasClient("client-001") })
	assert.Equal(t, 0, hub.GetClientCount())
}

// TestHub_Broadcast 测试广播消息分发到所有客户端
func TestHub_Broadcast(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	first := websocket.NewClient("client-001", "user-001", hub, nil)
	second := websocket.NewClient("client-002", "user-002", hub, nil)
	hub.Register <- first
	hub.Register <- second
	waitFor(t, func() bool { return hub.GetClientCount() == 2 })

	hub.Broadcast <- []byte(`{"type":"request.created"}`)

	for _, client := range []*websocket.Client{first, second} {
		select {
		case msg := <-client.Send:
			assert.Equal(t, `{"type":"request.created"}`, string(msg))
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive broadcast", client.ID)
		}
	}
}

// TestHub_TryBroadcast_NeverBlocks 测试无消费者时非阻塞广播直接丢弃
func TestHub_TryBroadcast_NeverBlocks(t *testing.T) {
	// 不启动 Run,Broadcast 通道没有消费者
	hub := websocket.NewHub()

	done := make(chan struct{})
	go func() {
		hub.TryBroadcast([]byte("dropped"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TryBroadcast blocked without a consumer")
	}
}

// TestHub_BroadcastToUser 测试定向用户广播
func TestHub_BroadcastToUser(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	target := websocket.NewClient("client-001", "user-001", hub, nil)
	other := websocket.NewClient("client-002", "user-002", hub, nil)
	hub.Register <- target
	hub.Register <- other
	waitFor(t, func() bool { return hub.GetClientCount() == 2 })

	hub.BroadcastToUser("user-001", []byte("personal"))

	select {
	case msg := <-target.Send:
		require.Equal(t, "personal", string(msg))
	case <-time.After(time.Second):
		t.Fatal("target did not receive message")
	}

	select {
	case <-other.Send:
		t.Fatal("other user should not receive message")
	default:
	}
}
