package service

import (
	"context"

	"alphaboard/internal/models"
	"alphaboard/internal/observability"
	"alphaboard/internal/repository"
)

type VoteService struct {
	voteRepo repository.VoteRepository
}

// CastVoteInput carries one vote mutation. Value nil removes the caller's
// vote; +1 and -1 set it.
type CastVoteInput struct {
	UserID     uint
	TargetType string
	TargetID   uint
	Value      *int
}

func NewVoteService(voteRepo repository.VoteRepository) *VoteService {
	return &VoteService{voteRepo: voteRepo}
}

func (s *VoteService) CastVote(ctx context.Context, in CastVoteInput) (*models.Aggregate, error) {
	switch in.TargetType {
	case models.TargetPost, models.TargetComment:
	default:
		return nil, models.NewValidationError("Invalid vote target")
	}
	if in.Value != nil && *in.Value != 1 && *in.Value != -1 {
		return nil, models.NewValidationError("Vote value must be -1, 1 or null")
	}

	agg, err := s.voteRepo.Cast(ctx, in.UserID, in.TargetType, in.TargetID, in.Value)
	if err != nil {
		return nil, orNotFound(err, in.TargetType, in.TargetID)
	}

	action := "remove"
	if in.Value != nil {
		if *in.Value > 0 {
			action = "up"
		} else {
			action = "down"
		}
	}
	observability.VotesCast.WithLabelValues(in.TargetType, action).Inc()

	return agg, nil
}
