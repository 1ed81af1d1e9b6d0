package server

import (
	"io"
	"mime/multipart"
	"strings"

	"alphaboard/internal/featureflags"
	"alphaboard/internal/models"
	"alphaboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/tickers/:ticker/posts.
//
// Accepts JSON (title/body) or multipart form data with up to four image
// parts named "images".
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	author := s.identity(c)
	ticker := c.Params("ticker")

	in := service.CreatePostInput{
		Ticker: ticker,
		Author: author,
	}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid multipart body"))
		}
		in.Title = formValue(form, "title")
		in.Body = formValue(form, "body")
		images, err := readImages(form.File["images"])
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unable to read uploaded file"))
		}
		if len(images) > 0 && s.flags.Enabled(featureflags.FlagDisableImageUploads, author.UserID) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Image uploads are temporarily disabled"))
		}
		in.Images = images
	} else {
		var req struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.Title = req.Title
		in.Body = req.Body
	}

	post, err := s.postService.CreatePost(ctx, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ListPosts handles GET /api/tickers/:ticker/posts.
//
// Query parameters: sort (hot|new|top, default hot), timeframe (24h|7d|all,
// top only), cursor (opaque), limit (1-100, default 20).
func (s *Server) ListPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()

	page, err := s.postService.ListPosts(ctx, service.ListPostsInput{
		Ticker:    c.Params("ticker"),
		Sort:      c.Query("sort"),
		Timeframe: c.Query("timeframe"),
		Cursor:    c.Query("cursor"),
		Limit:     c.QueryInt("limit"),
		CallerID:  s.optionalUserID(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(ctx, id, s.optionalUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		UserID: s.identity(c).UserID,
		PostID: id,
		Title:  req.Title,
		Body:   req.Body,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(ctx, service.DeletePostInput{
		UserID: s.identity(c).UserID,
		PostID: id,
	}); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func readImages(files []*multipart.FileHeader) ([]service.ImageUpload, error) {
	if len(files) == 0 {
		return nil, nil
	}
	images := make([]service.ImageUpload, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(src)
		_ = src.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, service.ImageUpload{
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return images, nil
}
