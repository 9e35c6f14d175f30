package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/clauseiq/clauseiq/internal/domain"
	"github.com/clauseiq/clauseiq/internal/logging"
)

// Entry is one row of the client-side message log. Pending entries have
// been displayed optimistically but not yet confirmed durable.
type Entry struct {
	CorrelationID string
	Text          string
	Sender        domain.Sender
	ID            string
	CreatedAt     int64
	Pending       bool
}

// Chat maintains the ordered client-side message log and the realtime
// connection. The connection has an explicit lifecycle: Connect once,
// Close when done. Insertion order is receipt order.
type Chat struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	entries []Entry

	// OnUpdate, when set, is called after every change to the log.
	OnUpdate func()

	done chan struct{}
}

// NewChat creates a disconnected chat client.
func NewChat() *Chat {
	return &Chat{
		done: make(chan struct{}),
	}
}

// Connect dials the relay websocket endpoint and starts the read loop.
func (c *Chat) Connect(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial relay: %w", err)
	}
	c.conn = conn

	go c.readLoop()
	return nil
}

// Close tears down the connection.
func (c *Chat) Close() error {
	close(c.done)
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Send appends the message optimistically and forwards it to the relay.
// It does not wait for the durable echo.
func (c *Chat) Send(text string) (string, error) {
	corrID := uuid.New().String()

	c.mu.Lock()
	c.entries = append(c.entries, Entry{
		CorrelationID: corrID,
		Text:          text,
		Sender:        domain.SenderUser,
		Pending:       true,
	})
	c.mu.Unlock()
	c.notify()

	ev := domain.SendMessageEvent{
		Type:          domain.EventSendMessage,
		Text:          text,
		Sender:        domain.SenderUser,
		CorrelationID: corrID,
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(&ev); err != nil {
		return corrID, fmt.Errorf("send message: %w", err)
	}
	return corrID, nil
}

// Entries returns a snapshot of the message log.
func (c *Chat) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Chat) readLoop() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var base domain.BaseEvent
		if err := json.Unmarshal(frame, &base); err != nil {
			continue
		}

		switch base.Type {
		case domain.EventReceiveMessage:
			var ev domain.ReceiveMessageEvent
			if err := json.Unmarshal(frame, &ev); err != nil {
				continue
			}
			c.apply(&ev)

		case domain.EventError:
			var ev domain.ErrorEvent
			if err := json.Unmarshal(frame, &ev); err != nil {
				continue
			}
			logging.L().Warn().Str("code", ev.Code).Str("detail", ev.Message).Msg("relay error")
		}
	}
}

// apply merges one relayed event into the log. Echoes of our own sends
// are matched by correlation id; an event without one falls back to the
// (text, sender) heuristic, which can collapse two identical messages
// from the same session into one.
func (c *Chat) apply(ev *domain.ReceiveMessageEvent) {
	c.mu.Lock()

	if ev.CorrelationID != "" {
		for i := range c.entries {
			if c.entries[i].CorrelationID == ev.CorrelationID {
				if ev.Durable() {
					c.entries[i].ID = ev.ID
					c.entries[i].CreatedAt = ev.CreatedAt
					c.entries[i].Pending = false
				}
				// Optimistic echo of a message we already display.
				c.mu.Unlock()
				c.notify()
				return
			}
		}
		c.entries = append(c.entries, Entry{
			CorrelationID: ev.CorrelationID,
			Text:          ev.Text,
			Sender:        ev.Sender,
			ID:            ev.ID,
			CreatedAt:     ev.CreatedAt,
			Pending:       !ev.Durable(),
		})
		c.mu.Unlock()
		c.notify()
		return
	}

	// No correlation id: dedup heuristic on (text, sender).
	for i := range c.entries {
		if c.entries[i].Text == ev.Text && c.entries[i].Sender == ev.Sender {
			if ev.Durable() && c.entries[i].ID == "" {
				c.entries[i].ID = ev.ID
				c.entries[i].CreatedAt = ev.CreatedAt
				c.entries[i].Pending = false
			}
			c.mu.Unlock()
			c.notify()
			return
		}
	}

	c.entries = append(c.entries, Entry{
		Text:      ev.Text,
		Sender:    ev.Sender,
		ID:        ev.ID,
		CreatedAt: ev.CreatedAt,
		Pending:   !ev.Durable(),
	})
	c.mu.Unlock()
	c.notify()
}

func (c *Chat) notify() {
	if c.OnUpdate != nil {
		c.OnUpdate()
	}
}
