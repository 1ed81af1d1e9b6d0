package service

import (
	"context"
	"log/slog"

	"alphaboard/internal/models"
	"alphaboard/internal/observability"
	"alphaboard/internal/repository"
)

// BlobStore is the external image store collaborator. The engine only ever
// holds storage keys; payload bytes go straight through to the store and
// retrieval happens via short-lived signed URLs resolved at read time.
type BlobStore interface {
	Store(ctx context.Context, contentType string, payload []byte) (string, error)
	SignedURL(ctx context.Context, key string) (string, error)
}

// ImageUpload is one inbound image attached to a post or comment.
type ImageUpload struct {
	ContentType string
	Data        []byte
}

// maxImageBytes caps a single upload payload.
const maxImageBytes = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// storeImages pushes uploads to the blob store and records the associations.
// A blob-store outage must not fail the surrounding text write, so failures
// here are logged and skipped.
func storeImages(ctx context.Context, blobs BlobStore, attachRepo repository.AttachmentRepository, targetType string, targetID uint, images []ImageUpload) []models.Attachment {
	if len(images) == 0 || blobs == nil {
		return nil
	}
	stored := make([]models.Attachment, 0, len(images))
	for i, img := range images {
		key, err := blobs.Store(ctx, img.ContentType, img.Data)
		if err != nil {
			logBlobFailure(ctx, targetType, targetID, err)
			continue
		}
		att := models.Attachment{
			TargetType:  targetType,
			TargetID:    targetID,
			StorageKey:  key,
			ContentType: img.ContentType,
			Position:    i,
		}
		if err := attachRepo.Create(ctx, &att); err != nil {
			logBlobFailure(ctx, targetType, targetID, err)
			continue
		}
		if url, err := blobs.SignedURL(ctx, key); err == nil {
			att.URL = url
		}
		stored = append(stored, att)
	}
	return stored
}

// resolveURLs turns stored attachment keys into time-limited retrieval URLs.
// An unresolved URL is not fatal; the attachment is returned without one.
func resolveURLs(ctx context.Context, blobs BlobStore, attachments []models.Attachment) []models.Attachment {
	if len(attachments) == 0 || blobs == nil {
		return attachments
	}
	for i := range attachments {
		url, err := blobs.SignedURL(ctx, attachments[i].StorageKey)
		if err != nil {
			logBlobFailure(ctx, attachments[i].TargetType, attachments[i].TargetID, err)
			continue
		}
		attachments[i].URL = url
	}
	return attachments
}

// logBlobFailure records an attachment-store failure without failing the
// surrounding write; the text content still persists.
func logBlobFailure(ctx context.Context, targetType string, targetID uint, err error) {
	observability.GlobalLogger.LogWithContext(ctx, slog.LevelWarn, "attachment store failure",
		slog.String("target_type", targetType),
		slog.Uint64("target_id", uint64(targetID)),
		slog.String("error", err.Error()),
	)
}
