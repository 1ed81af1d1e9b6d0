package service

import (
	"context"
	"errors"
	"testing"

	"alphaboard/internal/models"
	"alphaboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, uint) (*models.Post, error)
	listFn       func(context.Context, repository.PostListQuery) ([]*models.Post, error)
	updateFn     func(context.Context, *models.Post) error
	softDeleteFn func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, q repository.PostListQuery) ([]*models.Post, error) {
	return s.listFn(ctx, q)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Ticker: "AAPL", Title: "t", Body: "b", AuthorID: 1}, nil
		},
		listFn:       func(_ context.Context, _ repository.PostListQuery) ([]*models.Post, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Post) error { return nil },
		softDeleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	updateFn     func(context.Context, *models.Comment) error
	softDeleteFn func(context.Context, *models.Comment) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment, parent *models.Comment) error {
	return s.createFn(ctx, comment, parent)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) SoftDelete(ctx context.Context, comment *models.Comment) error {
	return s.softDeleteFn(ctx, comment)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c, _ *models.Comment) error {
			c.ID = 1
			c.Path = "0001"
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1, Body: "c", AuthorID: 1}, nil
		},
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		softDeleteFn: func(_ context.Context, _ *models.Comment) error { return nil },
	}
}

// voteRepoStub is a stub for repository.VoteRepository.
type voteRepoStub struct {
	castFn      func(context.Context, uint, string, uint, *int) (*models.Aggregate, error)
	userVotesFn func(context.Context, uint, string, []uint) (map[uint]int, error)
}

func (s *voteRepoStub) Cast(ctx context.Context, userID uint, targetType string, targetID uint, value *int) (*models.Aggregate, error) {
	return s.castFn(ctx, userID, targetType, targetID, value)
}
func (s *voteRepoStub) UserVotes(ctx context.Context, userID uint, targetType string, targetIDs []uint) (map[uint]int, error) {
	return s.userVotesFn(ctx, userID, targetType, targetIDs)
}

func noopVoteRepo() *voteRepoStub {
	return &voteRepoStub{
		castFn: func(_ context.Context, _ uint, _ string, _ uint, _ *int) (*models.Aggregate, error) {
			return &models.Aggregate{}, nil
		},
		userVotesFn: func(_ context.Context, _ uint, _ string, _ []uint) (map[uint]int, error) {
			return map[uint]int{}, nil
		},
	}
}

// attachRepoStub is a stub for repository.AttachmentRepository.
type attachRepoStub struct {
	createFn        func(context.Context, *models.Attachment) error
	listByTargetFn  func(context.Context, string, uint) ([]models.Attachment, error)
	listByTargetsFn func(context.Context, string, []uint) (map[uint][]models.Attachment, error)
}

func (s *attachRepoStub) Create(ctx context.Context, a *models.Attachment) error {
	return s.createFn(ctx, a)
}
func (s *attachRepoStub) ListByTarget(ctx context.Context, targetType string, targetID uint) ([]models.Attachment, error) {
	return s.listByTargetFn(ctx, targetType, targetID)
}
func (s *attachRepoStub) ListByTargets(ctx context.Context, targetType string, targetIDs []uint) (map[uint][]models.Attachment, error) {
	return s.listByTargetsFn(ctx, targetType, targetIDs)
}

func noopAttachRepo() *attachRepoStub {
	return &attachRepoStub{
		createFn: func(_ context.Context, _ *models.Attachment) error { return nil },
		listByTargetFn: func(_ context.Context, _ string, _ uint) ([]models.Attachment, error) {
			return nil, nil
		},
		listByTargetsFn: func(_ context.Context, _ string, _ []uint) (map[uint][]models.Attachment, error) {
			return map[uint][]models.Attachment{}, nil
		},
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}
