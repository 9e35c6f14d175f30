package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 4096,
	}
}

func newTestClient(id string, h *Hub, buffer int) *Client {
	return &Client{
		ID:     id,
		Hub:    h,
		Send:   make(chan []byte, buffer),
		config: testConfig(),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(testConfig())
	go h.Run()
	return h
}

func recvPayload(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.Send:
		return data
	case <-time.After(time.Second):
		t.Fatalf("client %s received nothing", c.ID)
		return nil
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	h := startHub(t)

	a := newTestClient("a", h, 16)
	b := newTestClient("b", h, 16)
	h.Register(a)
	h.Register(b)

	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.Broadcast(map[string]string{"type": "receive_message", "text": "hi"}))

	for _, c := range []*Client{a, b} {
		var got map[string]string
		require.NoError(t, json.Unmarshal(recvPayload(t, c), &got))
		assert.Equal(t, "hi", got["text"])
	}
}

func TestUnregisterClosesSendQueue(t *testing.T) {
	h := startHub(t)

	c := newTestClient("c", h, 16)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)
}

func TestSlowConsumerIsEvicted(t *testing.T) {
	h := startHub(t)

	// Queue of one and nobody draining it: the second broadcast cannot be
	// delivered and must evict the client instead of blocking the loop.
	slow := newTestClient("slow", h, 1)
	h.Register(slow)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.Broadcast(map[string]string{"n": "1"}))
	require.NoError(t, h.Broadcast(map[string]string{"n": "2"}))

	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSendMessageAfterEvictionIsNoOp(t *testing.T) {
	h := startHub(t)

	slow := newTestClient("slow", h, 1)
	h.Register(slow)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.Broadcast(map[string]string{"n": "1"}))
	require.NoError(t, h.Broadcast(map[string]string{"n": "2"}))
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	// The read pump keeps handling frames after eviction; replying to
	// one must not panic on the closed send queue.
	require.NotPanics(t, func() {
		require.NoError(t, slow.SendMessage(map[string]string{"type": "error"}))
	})
}

func TestBroadcastRejectsUnmarshalablePayload(t *testing.T) {
	h := startHub(t)
	assert.Error(t, h.Broadcast(make(chan int)))
}

func TestSendMessageDropsWhenQueueFull(t *testing.T) {
	c := newTestClient("c", nil, 1)

	require.NoError(t, c.SendMessage(map[string]string{"n": "1"}))
	require.NoError(t, c.SendMessage(map[string]string{"n": "2"}))

	var got map[string]string
	require.NoError(t, json.Unmarshal(<-c.Send, &got))
	assert.Equal(t, "1", got["n"])

	select {
	case data := <-c.Send:
		t.Fatalf("expected dropped message, got %s", data)
	default:
	}
}
