// Package seed provides helpers to create demo discussion data for
// development and testing only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"alphaboard/internal/models"
	"alphaboard/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options shapes the generated dataset.
type Options struct {
	Tickers         []string
	PostsPerTicker  int
	CommentsPerPost int
	Voters          int
	MaxDays         int
}

// DefaultOptions is a small but realistic dataset.
func DefaultOptions() Options {
	return Options{
		Tickers:         []string{"AAPL", "MSFT", "NVDA", "TSLA", "AMZN"},
		PostsPerTicker:  8,
		CommentsPerPost: 12,
		Voters:          25,
		MaxDays:         30,
	}
}

// Factory builds discussion entities through the real repositories so paths,
// counters and last-activity timestamps come out exactly as production writes
// would produce them.
type Factory struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	voteRepo    repository.VoteRepository
	opts        Options
	rng         *rand.Rand
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		voteRepo:    repository.NewVoteRepository(db),
		opts:        opts,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run populates the database per the factory's options.
func (f *Factory) Run(ctx context.Context) error {
	for _, ticker := range f.opts.Tickers {
		for i := 0; i < f.opts.PostsPerTicker; i++ {
			post, err := f.createPost(ctx, ticker)
			if err != nil {
				return fmt.Errorf("seeding post on %s: %w", ticker, err)
			}
			if err := f.createThread(ctx, post); err != nil {
				return fmt.Errorf("seeding thread on post %d: %w", post.ID, err)
			}
			if err := f.castVotes(ctx, models.TargetPost, post.ID); err != nil {
				return fmt.Errorf("seeding votes on post %d: %w", post.ID, err)
			}
		}
	}
	return nil
}

func (f *Factory) createPost(ctx context.Context, ticker string) (*models.Post, error) {
	authorID := uint(f.rng.Intn(f.opts.Voters) + 1)
	post := &models.Post{
		Ticker: ticker,
		Title: fmt.Sprintf("%s: %s", ticker,
			strings.TrimSuffix(gofakeit.Sentence(6), ".")),
		Body:          gofakeit.Paragraph(2, 4, 8, "\n\n"),
		AuthorID:      authorID,
		AuthorDisplay: gofakeit.Username(),
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	back := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute
	post.CreatedAt = time.Now().UTC().Add(-back)
	post.LastActivityAt = post.CreatedAt

	if err := f.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// createThread grows a reply tree under the post. Each comment picks a
// random earlier comment as parent (or none), skipping parents already at
// the depth ceiling, so the seeded trees exercise every depth.
func (f *Factory) createThread(ctx context.Context, post *models.Post) error {
	var created []*models.Comment
	for i := 0; i < f.opts.CommentsPerPost; i++ {
		var parent *models.Comment
		if len(created) > 0 && f.rng.Intn(100) < 60 {
			candidate := created[f.rng.Intn(len(created))]
			if candidate.Depth < models.MaxCommentDepth {
				parent = candidate
			}
		}

		comment := &models.Comment{
			PostID:        post.ID,
			Body:          gofakeit.Paragraph(1, 2, 6, " "),
			AuthorID:      uint(f.rng.Intn(f.opts.Voters) + 1),
			AuthorDisplay: gofakeit.Username(),
		}
		if parent != nil {
			comment.ParentCommentID = &parent.ID
		}
		if err := f.commentRepo.Create(ctx, comment, parent); err != nil {
			return err
		}
		created = append(created, comment)

		if err := f.castVotes(ctx, models.TargetComment, comment.ID); err != nil {
			return err
		}
	}
	return nil
}

// castVotes has a random subset of the voter pool vote on the target,
// leaning positive so scores spread out.
func (f *Factory) castVotes(ctx context.Context, targetType string, targetID uint) error {
	for userID := 1; userID <= f.opts.Voters; userID++ {
		roll := f.rng.Intn(100)
		var value int
		switch {
		case roll < 30:
			value = 1
		case roll < 40:
			value = -1
		default:
			continue
		}
		if _, err := f.voteRepo.Cast(ctx, uint(userID), targetType, targetID, &value); err != nil {
			return err
		}
	}
	return nil
}
