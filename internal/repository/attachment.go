package repository

import (
	"context"

	"alphaboard/internal/models"

	"gorm.io/gorm"
)

// AttachmentRepository records image associations for posts and comments.
// The binary payloads live in the external blob store.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	ListByTarget(ctx context.Context, targetType string, targetID uint) ([]models.Attachment, error)
	ListByTargets(ctx context.Context, targetType string, targetIDs []uint) (map[uint][]models.Attachment, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	return wrapStoreErr(r.db.WithContext(ctx).Create(attachment).Error)
}

func (r *attachmentRepository) ListByTarget(ctx context.Context, targetType string, targetID uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("position asc").
		Find(&attachments).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return attachments, nil
}

func (r *attachmentRepository) ListByTargets(ctx context.Context, targetType string, targetIDs []uint) (map[uint][]models.Attachment, error) {
	byTarget := make(map[uint][]models.Attachment, len(targetIDs))
	if len(targetIDs) == 0 {
		return byTarget, nil
	}
	var attachments []models.Attachment
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id IN ?", targetType, targetIDs).
		Order("position asc").
		Find(&attachments).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	for _, a := range attachments {
		byTarget[a.TargetID] = append(byTarget[a.TargetID], a)
	}
	return byTarget, nil
}
