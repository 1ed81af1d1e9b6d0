package models

import (
	"time"
)

// MaxAttachmentsPerTarget caps how many images may hang off one post or
// comment.
const MaxAttachmentsPerTarget = 4

// Attachment associates a stored image with a post or comment. The binary
// payload lives in the external blob store under StorageKey; this row only
// records the association. URL is a time-limited retrieval URL resolved at
// read time and never persisted.
type Attachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TargetType  string    `gorm:"size:8;not null;index:idx_attachments_target,priority:1" json:"target_type"`
	TargetID    uint      `gorm:"not null;index:idx_attachments_target,priority:2" json:"target_id"`
	StorageKey  string    `gorm:"size:128;not null" json:"-"`
	ContentType string    `gorm:"size:64;not null" json:"content_type"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time `json:"created_at"`

	URL string `gorm:"-" json:"url,omitempty"`
}
