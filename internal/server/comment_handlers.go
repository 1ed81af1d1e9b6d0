package server

import (
	"strconv"
	"strings"

	"alphaboard/internal/featureflags"
	"alphaboard/internal/models"
	"alphaboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comments.
//
// parent_comment_id, when set, nests the comment under an existing comment
// of the same post. Accepts JSON or multipart form data like CreatePost.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in := service.CreateCommentInput{
		PostID: postID,
		Author: s.identity(c),
	}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid multipart body"))
		}
		in.Body = formValue(form, "body")
		if raw := formValue(form, "parent_comment_id"); raw != "" {
			parentID, err := strconv.ParseUint(raw, 10, 32)
			if err != nil || parentID == 0 {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Invalid parent_comment_id"))
			}
			id := uint(parentID)
			in.ParentCommentID = &id
		}
		images, err := readImages(form.File["images"])
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unable to read uploaded file"))
		}
		if len(images) > 0 && s.flags.Enabled(featureflags.FlagDisableImageUploads, in.Author.UserID) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Image uploads are temporarily disabled"))
		}
		in.Images = images
	} else {
		var req struct {
			Body            string `json:"body"`
			ParentCommentID *uint  `json:"parent_comment_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.Body = req.Body
		in.ParentCommentID = req.ParentCommentID
	}

	comment, err := s.commentService.CreateComment(ctx, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ListComments handles GET /api/posts/:id/comments.
//
// Returns the post's full reply tree; deleted comments appear as blanked
// placeholders so live descendants keep their position.
func (s *Server) ListComments(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	tree, err := s.commentService.ListComments(ctx, postID, s.optionalUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tree)
}

// UpdateComment handles PUT /api/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(ctx, service.UpdateCommentInput{
		UserID:    s.identity(c).UserID,
		CommentID: commentID,
		Body:      req.Body,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(ctx, service.DeleteCommentInput{
		UserID:    s.identity(c).UserID,
		CommentID: commentID,
	}); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
