// Package service implements the discussion engine's business rules on top
// of the repository layer.
package service

import (
	"context"
	"strings"
	"time"

	"alphaboard/internal/middleware"
	"alphaboard/internal/models"
	"alphaboard/internal/pagination"
	"alphaboard/internal/repository"
	"alphaboard/internal/validation"
)

const (
	maxTitleLen = 300
	maxBodyLen  = 40000

	defaultPageSize = 20
	maxPageSize     = 100
)

type PostService struct {
	postRepo   repository.PostRepository
	voteRepo   repository.VoteRepository
	attachRepo repository.AttachmentRepository
	blobs      BlobStore
}

type CreatePostInput struct {
	Ticker string
	Title  string
	Body   string
	Author middleware.Identity
	Images []ImageUpload
}

type ListPostsInput struct {
	Ticker    string
	Sort      string
	Timeframe string
	Cursor    string
	Limit     int
	// CallerID annotates each post with the caller's own vote; zero means
	// anonymous.
	CallerID uint
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	Title  string
	Body   string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	voteRepo repository.VoteRepository,
	attachRepo repository.AttachmentRepository,
	blobs BlobStore,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		voteRepo:   voteRepo,
		attachRepo: attachRepo,
		blobs:      blobs,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	ticker := normalizeTicker(in.Ticker)
	if err := validation.ValidateTicker(ticker); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Body)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
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

	post := &models.Post{
		Ticker:        ticker,
		Title:         title,
		Body:          body,
		AuthorID:      in.Author.UserID,
		AuthorDisplay: in.Author.DisplayName,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	post.Attachments = storeImages(ctx, s.blobs, s.attachRepo, models.TargetPost, post.ID, in.Images)
	post.MyVote = 0
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, postID, callerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, orNotFound(err, "post", postID)
	}
	if err := s.annotatePosts(ctx, []*models.Post{post}, callerID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*models.PostPage, error) {
	sort, err := normalizeSort(in.Sort)
	if err != nil {
		return nil, err
	}

	q := repository.PostListQuery{
		Ticker: normalizeTicker(in.Ticker),
		Sort:   sort,
		Limit:  clampLimit(in.Limit) + 1,
	}
	if err := validation.ValidateTicker(q.Ticker); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if sort == models.SortTop {
		since, err := timeframeCutoff(in.Timeframe)
		if err != nil {
			return nil, err
		}
		q.Since = since
	}

	if in.Cursor != "" {
		cur, err := pagination.Decode(in.Cursor, sort)
		if err != nil {
			return nil, models.NewValidationError("Invalid cursor")
		}
		q.After = cur
	}

	posts, err := s.postRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	page := &models.PostPage{}
	pageSize := q.Limit - 1
	if len(posts) > pageSize {
		// The extra row only proves another page exists; the cursor is built
		// from the last row actually returned.
		posts = posts[:pageSize]
		last := posts[len(posts)-1]
		page.NextCursor = pagination.Cursor{
			Sort:  sort,
			Value: cursorValue(last, sort),
			ID:    last.ID,
		}.Encode()
	}

	if err := s.annotatePosts(ctx, posts, in.CallerID); err != nil {
		return nil, err
	}
	page.Posts = posts
	return page, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Body)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if body == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(body) > maxBodyLen {
		return nil, models.NewValidationError("Body too long (max 40000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, orNotFound(err, "post", in.PostID)
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("Only the author can edit this post")
	}

	post.Title = title
	post.Body = body
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	if err := s.annotatePosts(ctx, []*models.Post{post}, in.UserID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return orNotFound(err, "post", in.PostID)
	}
	if post.AuthorID != in.UserID {
		return models.NewForbiddenError("Only the author can delete this post")
	}
	if err := s.postRepo.SoftDelete(ctx, in.PostID); err != nil {
		return orNotFound(err, "post", in.PostID)
	}
	return nil
}

// annotatePosts fills the per-caller vote and the attachment URLs for a
// batch of posts with one query each.
func (s *PostService) annotatePosts(ctx context.Context, posts []*models.Post, callerID uint) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	if callerID != 0 {
		votes, err := s.voteRepo.UserVotes(ctx, callerID, models.TargetPost, ids)
		if err != nil {
			return err
		}
		for _, p := range posts {
			p.MyVote = votes[p.ID]
		}
	}

	byTarget, err := s.attachRepo.ListByTargets(ctx, models.TargetPost, ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.Attachments = resolveURLs(ctx, s.blobs, byTarget[p.ID])
	}
	return nil
}

func validateImage(img ImageUpload) error {
	if !allowedImageTypes[img.ContentType] {
		return models.NewValidationError("Unsupported image type")
	}
	if len(img.Data) == 0 {
		return models.NewValidationError("Empty image payload")
	}
	if len(img.Data) > maxImageBytes {
		return models.NewValidationError("Image too large (max 5 MiB)")
	}
	return nil
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func normalizeSort(sort string) (string, error) {
	switch sort {
	case "":
		return models.SortHot, nil
	case models.SortHot, models.SortNew, models.SortTop:
		return sort, nil
	default:
		return "", models.NewValidationError("Invalid sort")
	}
}

// timeframeCutoff turns a "top" timeframe into an inclusive created_at lower
// bound. The cutoff is computed here rather than in SQL so the query stays
// portable across drivers.
func timeframeCutoff(timeframe string) (time.Time, error) {
	now := time.Now().UTC()
	switch timeframe {
	case "", models.TimeframeAll:
		return time.Time{}, nil
	case models.TimeframeDay:
		return now.Add(-24 * time.Hour), nil
	case models.TimeframeWeek:
		return now.Add(-7 * 24 * time.Hour), nil
	default:
		return time.Time{}, models.NewValidationError("Invalid timeframe")
	}
}

// cursorValue extracts the keyset position of a row under the given sort.
// Timestamps travel at nanosecond precision so the equality branch of the
// keyset predicate holds on both drivers: sqlite stores nanoseconds and
// postgres stores microseconds, and both round-trip exactly through UnixNano.
func cursorValue(post *models.Post, sort string) int64 {
	switch sort {
	case models.SortTop:
		return int64(post.Score)
	case models.SortNew:
		return post.CreatedAt.UnixNano()
	default:
		return post.LastActivityAt.UnixNano()
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
