package service

import (
	"context"
	"errors"
	"io"

	"github.com/clauseiq/clauseiq/internal/domain"
)

var (
	ErrEmptyContent    = errors.New("message content is empty")
	ErrInvalidSender   = errors.New("sender must be 'user' or 'bot'")
	ErrNoFiles         = errors.New("no files uploaded")
	ErrMissingFileName = errors.New("missing file name")
)

// Broadcaster fans an event out to every connected realtime client.
// Implemented by hub.Hub.
type Broadcaster interface {
	Broadcast(message interface{}) error
}

// ChatService implements the chat relay protocol and the HTTP chat log.
type ChatService interface {
	// Relay broadcasts a submission optimistically, persists it, then
	// broadcasts the durable echo. The returned Message carries the
	// store-assigned ID and CreatedAt.
	Relay(ctx context.Context, ev *domain.SendMessageEvent) (*domain.Message, error)

	// Post persists a message submitted over HTTP (no relay).
	Post(ctx context.Context, req *domain.CreateMessageRequest) (*domain.Message, error)

	// History returns every message, oldest first.
	History(ctx context.Context) ([]domain.Message, error)
}

// UploadFile is one file taken from a multipart upload request.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// FileService implements the server-side upload flow.
type FileService interface {
	// Upload stores each file in the object store and, only after the
	// store confirms, persists its metadata record.
	Upload(ctx context.Context, files []UploadFile) ([]domain.StoredFile, error)

	// ListPDFs returns stored PDF metadata, newest first.
	ListPDFs(ctx context.Context) ([]domain.StoredFile, error)
}
