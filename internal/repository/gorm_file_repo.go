package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clauseiq/clauseiq/internal/domain"
	"github.com/clauseiq/clauseiq/internal/logging"
)

// GormFileRepository implements FileRepository using GORM.
type GormFileRepository struct {
	db *gorm.DB
}

// NewGormFileRepository creates a new GORM-based file metadata repository.
func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

// Create persists a stored-file record. Callers must only invoke this
// after the object-store write has succeeded.
func (r *GormFileRepository) Create(ctx context.Context, file *domain.StoredFile) error {
	l := logging.Ctx(ctx)

	model := &domain.StoredFileModel{
		ID:   uuid.New().String(),
		Name: file.Name,
		Type: file.Type,
		Size: file.Size,
		URL:  file.URL,
	}

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(logging.FieldFileName, file.Name).Msg("failed to create file record in db")
		return result.Error
	}

	file.UploadedAt = model.UploadedAt
	l.Debug().Str(logging.FieldFileName, file.Name).Str(logging.FieldKey, model.ID).Msg("file record created in db")
	return nil
}

// ListPDFs retrieves metadata for files whose mimetype contains "pdf",
// newest first.
func (r *GormFileRepository) ListPDFs(ctx context.Context) ([]domain.StoredFile, error) {
	l := logging.Ctx(ctx)

	var models []domain.StoredFileModel
	err := r.db.WithContext(ctx).
		Where("LOWER(type) LIKE ?", "%pdf%").
		Order("uploaded_at DESC").
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Msg("failed to list pdf files from db")
		return nil, err
	}

	files := make([]domain.StoredFile, len(models))
	for i, model := range models {
		files[i] = *model.ToDomain()
	}

	return files, nil
}
