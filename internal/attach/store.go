package attach

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/themadorg/maildrop/internal/db"
)

// Store is the database-backed Fetcher used by body resolution and by
// explicit download requests.
type Store struct {
	db *gorm.DB
}

func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// Fetch implements Fetcher.
func (s *Store) Fetch(ctx context.Context, messageID, attachmentID string) (string, []byte, error) {
	var att db.Attachment
	err := s.db.WithContext(ctx).
		Where("id = ? AND message_id = ?", attachmentID, messageID).
		First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("failed to fetch attachment: %w", err)
	}
	return att.MediaType, att.Content, nil
}

// Manifest lists a message's attachments without loading their bytes.
func (s *Store) Manifest(ctx context.Context, messageID string) ([]ManifestEntry, error) {
	var atts []db.Attachment
	err := s.db.WithContext(ctx).
		Select("id", "filename", "media_type").
		Where("message_id = ?", messageID).
		Find(&atts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	manifest := make([]ManifestEntry, len(atts))
	for i, att := range atts {
		manifest[i] = ManifestEntry{ID: att.ID, Filename: att.Filename, MediaType: att.MediaType}
	}
	return manifest, nil
}
