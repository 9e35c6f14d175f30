package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/clauseiq/clauseiq/internal/domain"
	"github.com/clauseiq/clauseiq/internal/logging"
	"github.com/clauseiq/clauseiq/internal/repository"
	"github.com/clauseiq/clauseiq/internal/storage"
)

const (
	keyPrefix = "pdfs"
	urlExpiry = 7 * 24 * time.Hour
)

type fileService struct {
	store storage.ObjectStore
	repo  repository.FileRepository
	now   func() time.Time
}

// NewFileService creates the upload flow service.
func NewFileService(store storage.ObjectStore, repo repository.FileRepository) FileService {
	return &fileService{
		store: store,
		repo:  repo,
		now:   time.Now,
	}
}

// Upload processes the batch sequentially. For each file the object
// store write must succeed before the metadata record is created, so a
// failure can never leave a record pointing at a missing object. A
// mid-batch failure fails the request; files already fully stored remain.
func (s *fileService) Upload(ctx context.Context, files []UploadFile) ([]domain.StoredFile, error) {
	l := logging.Ctx(ctx)

	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	stored := make([]domain.StoredFile, 0, len(files))
	for _, f := range files {
		name := sanitizeName(f.Name)
		if name == "" {
			return nil, ErrMissingFileName
		}
		if f.Size < 0 {
			return nil, fmt.Errorf("%w: negative size for %q", ErrMissingFileName, name)
		}

		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		key := fmt.Sprintf("%s/%d-%s", keyPrefix, s.now().UnixMilli(), name)

		if err := s.store.Write(ctx, key, f.Reader, f.Size, contentType); err != nil {
			l.Error().Err(err).Str(logging.FieldFileName, name).Str(logging.FieldKey, key).Msg("object store write failed")
			return nil, fmt.Errorf("object store write for %q: %w", name, err)
		}

		url, err := s.store.URL(ctx, key, urlExpiry)
		if err != nil {
			l.Error().Err(err).Str(logging.FieldKey, key).Msg("object store url failed")
			return nil, fmt.Errorf("object store url for %q: %w", name, err)
		}

		file := &domain.StoredFile{
			Name: name,
			Type: contentType,
			Size: f.Size,
			URL:  url,
		}
		if err := s.repo.Create(ctx, file); err != nil {
			return nil, fmt.Errorf("persist metadata for %q: %w", name, err)
		}

		l.Info().
			Str(logging.FieldFileName, name).
			Int64(logging.FieldFileSize, f.Size).
			Str(logging.FieldKey, key).
			Msg("file uploaded")

		stored = append(stored, *file)
	}

	return stored, nil
}

// ListPDFs returns stored PDF metadata, newest first.
func (s *fileService) ListPDFs(ctx context.Context) ([]domain.StoredFile, error) {
	return s.repo.ListPDFs(ctx)
}

// sanitizeName strips any directory components from a declared filename.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || strings.Contains(base, "..") {
		return ""
	}
	return base
}
