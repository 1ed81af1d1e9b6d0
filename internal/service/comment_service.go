package service

import (
	"context"
	"strings"

	"alphaboard/internal/middleware"
	"alphaboard/internal/models"
	"alphaboard/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	voteRepo    repository.VoteRepository
	attachRepo  repository.AttachmentRepository
	blobs       BlobStore
}

type CreateCommentInput struct {
	PostID          uint
	ParentCommentID *uint
	Body            string
	Author          middleware.Identity
	Images          []ImageUpload
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Body      string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	voteRepo repository.VoteRepository,
	attachRepo repository.AttachmentRepository,
	blobs BlobStore,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		voteRepo:    voteRepo,
		attachRepo:  attachRepo,
		blobs:       blobs,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(body) > maxBodyLen {
		return nil, models.NewValidationError("Body too long (max 40000 characters)")
	}
	if len(in.Images) > models.MaxAttachmentsPerTarget {
		return nil, models.NewValidationError("Too many images (max 4)")
	}
	for _, img := range in.Images {
		if err := validateImage(img); err != nil {
			return nil, err
		}
	}

	// The post must be live; replying under a tombstoned post is rejected the
	// same way as a missing one.
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, orNotFound(err, "post", in.PostID)
	}

	var parent *models.Comment
	if in.ParentCommentID != nil {
		p, err := s.commentRepo.GetByID(ctx, *in.ParentCommentID)
		if err != nil {
			return nil, orNotFound(err, "comment", *in.ParentCommentID)
		}
		// A parent from another post is indistinguishable from a missing one
		// as far as this thread is concerned.
		if p.PostID != in.PostID {
			return nil, models.NewNotFoundError("comment", *in.ParentCommentID)
		}
		if p.Depth >= models.MaxCommentDepth {
			return nil, models.NewMaxDepthError()
		}
		parent = p
	}

	comment := &models.Comment{
		PostID:          in.PostID,
		ParentCommentID: in.ParentCommentID,
		Body:            body,
		AuthorID:        in.Author.UserID,
		AuthorDisplay:   in.Author.DisplayName,
	}
	if err := s.commentRepo.Create(ctx, comment, parent); err != nil {
		return nil, err
	}

	comment.Attachments = storeImages(ctx, s.blobs, s.attachRepo, models.TargetComment, comment.ID, in.Images)
	comment.Replies = make([]*models.Comment, 0)
	return comment, nil
}

// ListComments returns the post's full reply tree. Tombstoned comments stay
// in the tree as placeholders so live descendants keep their position, but
// their body and author are blanked.
func (s *CommentService) ListComments(ctx context.Context, postID, callerID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, orNotFound(err, "post", postID)
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.annotateComments(ctx, comments, callerID); err != nil {
		return nil, err
	}
	for _, c := range comments {
		if c.IsDeleted {
			maskTombstone(c)
		}
	}
	return BuildCommentTree(comments), nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(body) > maxBodyLen {
		return nil, models.NewValidationError("Body too long (max 40000 characters)")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, orNotFound(err, "comment", in.CommentID)
	}
	if comment.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("Only the author can edit this comment")
	}

	comment.Body = body
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return orNotFound(err, "comment", in.CommentID)
	}
	if comment.AuthorID != in.UserID {
		return models.NewForbiddenError("Only the author can delete this comment")
	}
	return s.commentRepo.SoftDelete(ctx, comment)
}

func (s *CommentService) annotateComments(ctx context.Context, comments []*models.Comment, callerID uint) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}

	if callerID != 0 {
		votes, err := s.voteRepo.UserVotes(ctx, callerID, models.TargetComment, ids)
		if err != nil {
			return err
		}
		for _, c := range comments {
			c.MyVote = votes[c.ID]
		}
	}

	byTarget, err := s.attachRepo.ListByTargets(ctx, models.TargetComment, ids)
	if err != nil {
		return err
	}
	for _, c := range comments {
		c.Attachments = resolveURLs(ctx, s.blobs, byTarget[c.ID])
	}
	return nil
}

// maskTombstone blanks everything user-authored on a deleted comment.
// Structural fields (path, depth, parent) survive so the tree keeps its
// shape; vote counters survive because the ledger rows do.
func maskTombstone(c *models.Comment) {
	c.Body = ""
	c.AuthorID = 0
	c.AuthorDisplay = ""
	c.MyVote = 0
	c.Attachments = nil
}
