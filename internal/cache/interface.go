package cache

import (
	"context"
	"time"

	"github.com/clauseiq/clauseiq/internal/domain"
)

// MessageCache caches the full ordered chat log served by GET /api/chat.
// It is invalidated on every new persisted message.
type MessageCache interface {
	Get(ctx context.Context) ([]domain.Message, error)
	Set(ctx context.Context, messages []domain.Message, ttl time.Duration) error
	Invalidate(ctx context.Context) error
	Close() error
}
