package domain

// WebSocket event types from client.
const (
	EventSendMessage = "send_message"
)

// WebSocket event types to client.
const (
	EventReceiveMessage = "receive_message"
	EventError          = "error"
)

// Error codes
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// BaseEvent is the envelope shared by all WebSocket events.
type BaseEvent struct {
	Type string `json:"type"`
}

// SendMessageEvent is the client -> server chat submission. CorrelationID
// is generated by the sending client so it can reconcile the durable echo
// with its optimistic local entry; the server passes it through opaquely.
type SendMessageEvent struct {
	Type          string `json:"type"`
	Text          string `json:"text"`
	Sender        Sender `json:"sender"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// ReceiveMessageEvent is the server -> client relay. It is emitted twice
// per submission: first optimistically with only text/sender/correlation
// id, then again once persisted with ID and CreatedAt filled in.
type ReceiveMessageEvent struct {
	Type          string `json:"type"`
	Text          string `json:"text"`
	Sender        Sender `json:"sender"`
	CorrelationID string `json:"correlation_id,omitempty"`
	ID            string `json:"id,omitempty"`
	CreatedAt     int64  `json:"created_at,omitempty"`
}

// Durable reports whether the event carries a persisted identity.
func (e *ReceiveMessageEvent) Durable() bool {
	return e.ID != ""
}

// ErrorEvent is sent to a single client when its submission fails.
type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorEvent builds an error event.
func NewErrorEvent(code, message string) *ErrorEvent {
	return &ErrorEvent{
		Type:    EventError,
		Code:    code,
		Message: message,
	}
}
