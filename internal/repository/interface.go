package repository

import (
	"context"

	"github.com/clauseiq/clauseiq/internal/domain"
)

// MessageRepository defines the interface for chat message persistence.
// The store assigns durable identity: Create fills in ID and CreatedAt.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListAll(ctx context.Context) ([]domain.Message, error)
}

// FileRepository defines the interface for stored file metadata.
type FileRepository interface {
	Create(ctx context.Context, file *domain.StoredFile) error
	ListPDFs(ctx context.Context) ([]domain.StoredFile, error)
}
