package repository

import (
	"context"
	"testing"
	"time"

	"alphaboard/internal/models"
	"alphaboard/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{
		Ticker:        "AAPL",
		Title:         "Margin expansion thesis",
		Body:          "Services mix keeps improving.",
		AuthorID:      1,
		AuthorDisplay: "analyst-1",
	}
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)
	assert.False(t, post.LastActivityAt.IsZero())

	fetched, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, fetched.Title)
	assert.Equal(t, "AAPL", fetched.Ticker)
}

func TestPostRepositoryTombstoneHidesPost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Ticker: "AAPL", Title: "t", Body: "b", AuthorID: 1, AuthorDisplay: "a"}
	require.NoError(t, repo.Create(ctx, post))
	require.NoError(t, repo.SoftDelete(ctx, post.ID))

	_, err := repo.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Deleting again reports not-found, not success.
	err = repo.SoftDelete(ctx, post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	posts, err := repo.List(ctx, PostListQuery{Ticker: "AAPL", Sort: models.SortNew, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

// seedListingPosts creates n posts with strictly increasing created_at and
// matching last_activity_at.
func seedListingPosts(t *testing.T, db *gorm.DB, ticker string, n int) []*models.Post {
	t.Helper()
	repo := NewPostRepository(db)
	base := time.Now().UTC().Truncate(time.Microsecond).Add(-time.Duration(n) * time.Hour)
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		p := &models.Post{
			Ticker:         ticker,
			Title:          "post",
			Body:           "body",
			AuthorID:       1,
			AuthorDisplay:  "analyst-1",
			CreatedAt:      ts,
			LastActivityAt: ts,
		}
		require.NoError(t, repo.Create(context.Background(), p))
		posts = append(posts, p)
	}
	return posts
}

func TestPostRepositoryListNewKeysetPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	posts := seedListingPosts(t, db, "AAPL", 3)

	// Page 1: newest two.
	page1, err := repo.List(ctx, PostListQuery{Ticker: "AAPL", Sort: models.SortNew, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, posts[2].ID, page1[0].ID)
	assert.Equal(t, posts[1].ID, page1[1].ID)

	// Page 2 resumes from the last returned row.
	last := page1[len(page1)-1]
	page2, err := repo.List(ctx, PostListQuery{
		Ticker: "AAPL",
		Sort:   models.SortNew,
		Limit:  2,
		After: &pagination.Cursor{
			Sort:  models.SortNew,
			Value: last.CreatedAt.UnixNano(),
			ID:    last.ID,
		},
	})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, posts[0].ID, page2[0].ID)
}

func TestPostRepositoryListTopTieBreak(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	posts := seedListingPosts(t, db, "AAPL", 4)

	// Give every post the same score so only the id tie-break orders them.
	for _, p := range posts {
		require.NoError(t, db.Model(&models.Post{}).Where("id = ?", p.ID).Update("score", 5).Error)
	}

	page1, err := repo.List(ctx, PostListQuery{Ticker: "AAPL", Sort: models.SortTop, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, posts[3].ID, page1[0].ID)
	assert.Equal(t, posts[2].ID, page1[1].ID)

	page2, err := repo.List(ctx, PostListQuery{
		Ticker: "AAPL",
		Sort:   models.SortTop,
		Limit:  2,
		After:  &pagination.Cursor{Sort: models.SortTop, Value: 5, ID: page1[1].ID},
	})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	// Loss-free and duplicate-free across the tie.
	assert.Equal(t, posts[1].ID, page2[0].ID)
	assert.Equal(t, posts[0].ID, page2[1].ID)
}

func TestPostRepositoryListHotOrdersByActivity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	posts := seedListingPosts(t, db, "AAPL", 3)

	// The oldest post gets fresh activity and should lead the hot listing.
	bump := time.Now().UTC().Truncate(time.Microsecond).Add(time.Hour)
	require.NoError(t, db.Model(&models.Post{}).
		Where("id = ?", posts[0].ID).
		Update("last_activity_at", bump).Error)

	listed, err := repo.List(ctx, PostListQuery{Ticker: "AAPL", Sort: models.SortHot, Limit: 10})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, posts[0].ID, listed[0].ID)
}

func TestPostRepositoryListSinceWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	posts := seedListingPosts(t, db, "AAPL", 3)

	// Cut off everything older than the newest post.
	since := posts[2].CreatedAt.Add(-time.Minute)
	listed, err := repo.List(ctx, PostListQuery{
		Ticker: "AAPL",
		Sort:   models.SortTop,
		Since:  since,
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, posts[2].ID, listed[0].ID)
}

func TestPostRepositoryListScopedToTicker(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	seedListingPosts(t, db, "AAPL", 2)
	seedListingPosts(t, db, "MSFT", 1)

	listed, err := repo.List(ctx, PostListQuery{Ticker: "MSFT", Sort: models.SortNew, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestPostRepositoryUpdateKeepsConcurrentCounters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{
		Ticker:        "AAPL",
		Title:         "original title",
		Body:          "original body",
		AuthorID:      1,
		AuthorDisplay: "analyst-1",
	}
	require.NoError(t, repo.Create(ctx, post))

	read, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)

	// A vote recount and a comment land between the author's read and save.
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).
		UpdateColumns(map[string]interface{}{
			"score": 3, "upvotes": 4, "downvotes": 1, "comment_count": 2,
		}).Error)

	read.Title = "edited title"
	read.Body = "edited body"
	require.NoError(t, repo.Update(ctx, read))

	stored, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited title", stored.Title)
	assert.Equal(t, "edited body", stored.Body)
	assert.Equal(t, 3, stored.Score)
	assert.Equal(t, 4, stored.Upvotes)
	assert.Equal(t, 1, stored.Downvotes)
	assert.Equal(t, 2, stored.CommentCount)
}

func TestPostRepositoryListNewSubMicrosecondTimestamps(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	// Two rows inside the same microsecond; only the nanoseconds differ.
	base := time.Now().UTC().Truncate(time.Microsecond)
	var posts []*models.Post
	for _, ns := range []time.Duration{200, 700} {
		p := &models.Post{
			Ticker:         "AAPL",
			Title:          "post",
			Body:           "body",
			AuthorID:       1,
			AuthorDisplay:  "analyst-1",
			CreatedAt:      base.Add(ns),
			LastActivityAt: base.Add(ns),
		}
		require.NoError(t, repo.Create(ctx, p))
		posts = append(posts, p)
	}

	page1, err := repo.List(ctx, PostListQuery{Ticker: "AAPL", Sort: models.SortNew, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page1, 1)
	assert.Equal(t, posts[1].ID, page1[0].ID)

	page2, err := repo.List(ctx, PostListQuery{
		Ticker: "AAPL",
		Sort:   models.SortNew,
		Limit:  1,
		After: &pagination.Cursor{
			Sort:  models.SortNew,
			Value: page1[0].CreatedAt.UnixNano(),
			ID:    page1[0].ID,
		},
	})
	require.NoError(t, err)
	require.Len(t, page2, 1, "row in the same microsecond must not be skipped")
	assert.Equal(t, posts[0].ID, page2[0].ID)
}
