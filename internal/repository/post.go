package repository

import (
	"context"
	"time"

	"alphaboard/internal/cache"
	"alphaboard/internal/models"
	"alphaboard/internal/pagination"

	"gorm.io/gorm"
)

// PostListQuery describes one page of a ranked post listing.
//
// Limit is the number of rows to fetch, not the page size: the service asks
// for one extra row to decide whether a next cursor exists. Since is the
// inclusive created_at cutoff for the "top" timeframe; the zero value means
// no window. After, when set, pins the keyset position of the previous page's
// last row.
type PostListQuery struct {
	Ticker string
	Sort   string
	Since  time.Time
	After  *pagination.Cursor
	Limit  int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, q PostListQuery) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	SoftDelete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.LastActivityAt.IsZero() {
		post.LastActivityAt = time.Now().UTC()
	}
	return wrapStoreErr(r.db.WithContext(ctx).Create(post).Error)
}

// GetByID returns a live post; tombstoned posts report record-not-found.
// Anonymous reads go through the cache since they carry no per-user vote
// annotation.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).
			Where("is_deleted = ?", false).
			First(&post, id).Error
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &post, nil
}

// List serves the ranked listings with keyset pagination. The tie-break rule
// is "equal sort value, smaller id", matching the DESC order, so rows with
// identical sort values are neither duplicated nor skipped across pages.
func (r *postRepository) List(ctx context.Context, q PostListQuery) ([]*models.Post, error) {
	db := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("ticker = ? AND is_deleted = ?", q.Ticker, false)

	if !q.Since.IsZero() {
		db = db.Where("created_at >= ?", q.Since)
	}

	switch q.Sort {
	case models.SortTop:
		if q.After != nil {
			db = db.Where(
				"score < ? OR (score = ? AND id < ?)",
				q.After.Value, q.After.Value, q.After.ID,
			)
		}
		db = db.Order("score DESC, id DESC")
	case models.SortNew:
		if q.After != nil {
			t := time.Unix(0, q.After.Value).UTC()
			db = db.Where(
				"created_at < ? OR (created_at = ? AND id < ?)",
				t, t, q.After.ID,
			)
		}
		db = db.Order("created_at DESC, id DESC")
	default: // hot
		if q.After != nil {
			t := time.Unix(0, q.After.Value).UTC()
			db = db.Where(
				"last_activity_at < ? OR (last_activity_at = ? AND id < ?)",
				t, t, q.After.ID,
			)
		}
		db = db.Order("last_activity_at DESC, id DESC")
	}

	var posts []*models.Post
	if err := db.Limit(q.Limit).Find(&posts).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return posts, nil
}

// Update persists the author-editable columns only. The counters belong to
// the vote ledger and comment writes; a full-row save could silently roll
// back a recount that committed after this post was read.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Select("title", "body", "updated_at").
		Updates(models.Post{Title: post.Title, Body: post.Body}).Error
	if err != nil {
		return wrapStoreErr(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// SoftDelete tombstones the post. Comments are left untouched so thread
// shape survives for descendants.
func (r *postRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return wrapStoreErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
