package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clauseiq/clauseiq/internal/domain"
	"github.com/clauseiq/clauseiq/internal/logging"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create persists a message, assigning its durable ID and CreatedAt.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	l := logging.Ctx(ctx)

	msg.ID = uuid.New().String()

	model := domain.MessageToModel(msg)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to create message in db")
		return result.Error
	}

	// Pick up the store-assigned timestamp.
	msg.CreatedAt = model.CreatedAt
	l.Debug().Str(logging.FieldMessageID, msg.ID).Msg("message created in db")
	return nil
}

// ListAll retrieves every message, oldest first.
func (r *GormMessageRepository) ListAll(ctx context.Context) ([]domain.Message, error) {
	l := logging.Ctx(ctx)

	var models []domain.MessageModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		l.Error().Err(err).Msg("failed to list messages from db")
		return nil, err
	}

	messages := make([]domain.Message, len(models))
	for i, model := range models {
		messages[i] = *model.ToDomain()
	}

	return messages, nil
}
