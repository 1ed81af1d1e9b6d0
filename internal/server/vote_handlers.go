package server

import (
	"encoding/json"

	"alphaboard/internal/models"
	"alphaboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// voteRequest distinguishes an explicit null value (remove the vote) from a
// missing "value" key, which is rejected.
type voteRequest struct {
	Value *int `json:"value"`
}

func parseVoteRequest(c *fiber.Ctx) (*voteRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return nil, models.NewValidationError("Invalid request body")
	}
	raw, ok := fields["value"]
	if !ok {
		return nil, models.NewValidationError("value is required")
	}
	var req voteRequest
	if err := json.Unmarshal(raw, &req.Value); err != nil {
		return nil, models.NewValidationError("Invalid request body")
	}
	return &req, nil
}

// VotePost handles POST /api/posts/:id/vote with body {"value": -1|1|null}.
func (s *Server) VotePost(c *fiber.Ctx) error {
	return s.castVote(c, models.TargetPost, "id")
}

// VoteComment handles POST /api/comments/:commentId/vote.
func (s *Server) VoteComment(c *fiber.Ctx) error {
	return s.castVote(c, models.TargetComment, "commentId")
}

func (s *Server) castVote(c *fiber.Ctx, targetType, param string) error {
	ctx := c.UserContext()
	targetID, err := s.parseID(c, param)
	if err != nil {
		return nil
	}

	req, err := parseVoteRequest(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	agg, err := s.voteService.CastVote(ctx, service.CastVoteInput{
		UserID:     s.identity(c).UserID,
		TargetType: targetType,
		TargetID:   targetID,
		Value:      req.Value,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(agg)
}
