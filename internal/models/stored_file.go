package models

import "time"

// StoredFile is the host file service record for an uploaded blob.
type StoredFile struct {
	ID          string `gorm:"primaryKey;size:36"`
	StorageKey  string `gorm:"size:512;not null"`
	FileName    string `gorm:"size:255"`
	ContentType string `gorm:"size:127"`
	Size        int64
	UploadedBy  uint // host User.ID
	CreatedAt   time.Time
}
