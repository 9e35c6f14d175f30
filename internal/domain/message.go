package domain

import (
	"time"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Valid reports whether s is a known sender value.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// Message is a persisted chat message. ID and CreatedAt are assigned by
// the store on persist and are empty until then. Messages are immutable
// once created.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateMessageRequest is the POST /api/chat request body.
type CreateMessageRequest struct {
	Content string `json:"content" binding:"required"`
	Sender  Sender `json:"sender"`
}

// MessageModel is the database representation of a Message.
type MessageModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Content   string    `gorm:"type:text;not null"`
	Sender    string    `gorm:"type:varchar(16);not null;default:user"`
	CreatedAt time.Time `gorm:"index;autoCreateTime"`
}

// TableName overrides the GORM table name.
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts the database model to a domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:        m.ID,
		Content:   m.Content,
		Sender:    Sender(m.Sender),
		CreatedAt: m.CreatedAt,
	}
}

// MessageToModel converts a domain Message to its database model.
func MessageToModel(msg *Message) *MessageModel {
	return &MessageModel{
		ID:        msg.ID,
		Content:   msg.Content,
		Sender:    string(msg.Sender),
		CreatedAt: msg.CreatedAt,
	}
}
