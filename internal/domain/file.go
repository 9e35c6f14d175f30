package domain

import (
	"time"
)

// StoredFile is the metadata record for an uploaded document. URL always
// refers to an object that was durably written before this record was
// created; the record is immutable and never deleted.
type StoredFile struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UploadResponse is the POST /api/pdf/upload success body.
type UploadResponse struct {
	Message string       `json:"message"`
	Files   []StoredFile `json:"files"`
}

// StoredFileModel is the database representation of a StoredFile.
type StoredFileModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Type       string    `gorm:"type:varchar(128);index"`
	Size       int64     `gorm:"not null"`
	URL        string    `gorm:"type:text;not null"`
	UploadedAt time.Time `gorm:"index;autoCreateTime"`
}

// TableName overrides the GORM table name.
func (StoredFileModel) TableName() string {
	return "stored_files"
}

// ToDomain converts the database model to a domain StoredFile.
func (m *StoredFileModel) ToDomain() *StoredFile {
	return &StoredFile{
		Name:       m.Name,
		Type:       m.Type,
		Size:       m.Size,
		URL:        m.URL,
		UploadedAt: m.UploadedAt,
	}
}
