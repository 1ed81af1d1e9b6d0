package repository

import (
	"context"
	"time"

	"alphaboard/internal/cache"
	"alphaboard/internal/models"
	"alphaboard/internal/observability"

	"gorm.io/gorm"
)

// maxPathRetries bounds how often a comment insert is retried after losing a
// path race to a concurrent sibling.
const maxPathRetries = 3

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	// Create assigns the materialized path and depth for the new comment and
	// inserts it, bumping the parent post's comment_count and
	// last_activity_at in the same transaction. parent is nil for a root
	// comment and must belong to the same post otherwise.
	Create(ctx context.Context, comment *models.Comment, parent *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	SoftDelete(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create performs MAX-based path assignment inside one transaction. Two
// concurrent siblings can still read the same MAX; the unique index on
// (post_id, path) catches the loser, which retries with a fresh MAX. After
// maxPathRetries collisions the conflict surfaces to the caller instead of
// looping forever.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment, parent *models.Comment) error {
	var lastErr error
	for attempt := 0; attempt < maxPathRetries; attempt++ {
		if attempt > 0 {
			observability.PathConflictRetries.Inc()
		}

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			maxPath, err := r.maxSiblingPath(tx, comment.PostID, parent)
			if err != nil {
				return err
			}
			comment.Path, comment.Depth = assignPath(parent, maxPath)

			if err := tx.Create(comment).Error; err != nil {
				return err
			}

			// The counter bump rides the same transaction so a failed insert
			// never leaves the post counters out of step with the store.
			return tx.Model(&models.Post{}).
				Where("id = ?", comment.PostID).
				UpdateColumns(map[string]interface{}{
					"comment_count":    gorm.Expr("comment_count + 1"),
					"last_activity_at": time.Now().UTC(),
				}).Error
		})
		if err == nil {
			cache.InvalidatePost(ctx, comment.PostID)
			return nil
		}
		if isUniqueViolation(err) {
			// Lost the sibling race; reset and try again with a fresh MAX.
			comment.ID = 0
			lastErr = err
			continue
		}
		return wrapStoreErr(err)
	}
	return models.NewConflictError("could not assign a comment position after repeated conflicts: " + lastErr.Error())
}

func (r *commentRepository) maxSiblingPath(tx *gorm.DB, postID uint, parent *models.Comment) (string, error) {
	var maxPath *string
	q := tx.Model(&models.Comment{}).Where("post_id = ?", postID)
	if parent == nil {
		q = q.Where("parent_comment_id IS NULL")
	} else {
		q = q.Where("parent_comment_id = ?", parent.ID)
	}
	if err := q.Select("MAX(path)").Scan(&maxPath).Error; err != nil {
		return "", err
	}
	if maxPath == nil {
		return "", nil
	}
	return *maxPath, nil
}

// GetByID returns a live comment; tombstoned comments report record-not-found.
func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		First(&comment, id).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return &comment, nil
}

// ListByPost returns the post's full comment list in path order, tombstones
// included: a deleted comment still occupies its position so its descendants
// keep their place in the tree. Masking the tombstone's content is the
// service's job.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("path asc").
		Find(&comments).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return comments, nil
}

// Update persists the author-editable body only; the score counters are
// owned by the vote ledger and must not be written back from a stale read.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return wrapStoreErr(r.db.WithContext(ctx).
		Model(comment).
		Select("body", "updated_at").
		Updates(models.Comment{Body: comment.Body}).Error)
}

// SoftDelete tombstones the comment and decrements the post's comment_count:
// the counter reflects non-tombstoned comments only. The path row stays so
// replies keep their ancestry.
func (r *commentRepository) SoftDelete(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Comment{}).
			Where("id = ? AND is_deleted = ?", comment.ID, false).
			Update("is_deleted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND comment_count > 0", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
	if err != nil {
		return wrapStoreErr(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}
