package repository

import (
	"context"
	"time"

	"alphaboard/internal/cache"
	"alphaboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteRepository is the vote ledger plus the aggregate maintainer: every
// mutation recomputes the target's counters from the ledger inside the same
// transaction, so the denormalized score stays re-derivable at rest.
type VoteRepository interface {
	// Cast upserts (value = ±1) or removes (value = nil) the caller's vote on
	// the target and returns the fresh aggregate. Voting on a missing or
	// tombstoned target reports record-not-found.
	Cast(ctx context.Context, userID uint, targetType string, targetID uint, value *int) (*models.Aggregate, error)
	// UserVotes returns the caller's votes on the given targets as a map of
	// target id to value. Missing entries mean no vote.
	UserVotes(ctx context.Context, userID uint, targetType string, targetIDs []uint) (map[uint]int, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new VoteRepository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Cast(ctx context.Context, userID uint, targetType string, targetID uint, value *int) (*models.Aggregate, error) {
	var agg models.Aggregate

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the target row first. This serializes concurrent voters on the
		// same target, so the recompute below always sees every committed
		// ledger row. It also doubles as the liveness check.
		if err := r.lockTarget(tx, targetType, targetID); err != nil {
			return err
		}

		if value == nil {
			// Removing a vote that does not exist is a no-op, not an error.
			if err := tx.Where(
				"user_id = ? AND target_type = ? AND target_id = ?",
				userID, targetType, targetID,
			).Delete(&models.Vote{}).Error; err != nil {
				return err
			}
		} else {
			vote := models.Vote{
				UserID:     userID,
				TargetType: targetType,
				TargetID:   targetID,
				Value:      *value,
			}
			// One row per (user, target): an opposite prior vote becomes a
			// switch, a same-value prior vote a no-op overwrite.
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "user_id"}, {Name: "target_type"}, {Name: "target_id"},
				},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"value":      *value,
					"updated_at": time.Now().UTC(),
				}),
			}).Create(&vote).Error; err != nil {
				return err
			}
		}

		up, down, err := r.recount(tx, targetType, targetID)
		if err != nil {
			return err
		}
		agg = models.Aggregate{
			Score:     up - down,
			Upvotes:   up,
			Downvotes: down,
		}
		if value != nil {
			agg.MyVote = *value
		}

		return r.writeCounters(tx, targetType, targetID, agg)
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	if targetType == models.TargetPost {
		cache.InvalidatePost(ctx, targetID)
	}
	return &agg, nil
}

func (r *voteRepository) lockTarget(tx *gorm.DB, targetType string, targetID uint) error {
	locked := tx.Clauses(clause.Locking{Strength: "UPDATE"})
	switch targetType {
	case models.TargetPost:
		var post models.Post
		return locked.Select("id").
			Where("id = ? AND is_deleted = ?", targetID, false).
			First(&post).Error
	default:
		var comment models.Comment
		return locked.Select("id").
			Where("id = ? AND is_deleted = ?", targetID, false).
			First(&comment).Error
	}
}

func (r *voteRepository) recount(tx *gorm.DB, targetType string, targetID uint) (int, int, error) {
	var up, down int64
	base := tx.Model(&models.Vote{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Session(&gorm.Session{})
	if err := base.Where("value = ?", 1).Count(&up).Error; err != nil {
		return 0, 0, err
	}
	if err := base.Where("value = ?", -1).Count(&down).Error; err != nil {
		return 0, 0, err
	}
	return int(up), int(down), nil
}

func (r *voteRepository) writeCounters(tx *gorm.DB, targetType string, targetID uint, agg models.Aggregate) error {
	updates := map[string]interface{}{
		"score":     agg.Score,
		"upvotes":   agg.Upvotes,
		"downvotes": agg.Downvotes,
	}
	if targetType == models.TargetPost {
		return tx.Model(&models.Post{}).Where("id = ?", targetID).UpdateColumns(updates).Error
	}
	return tx.Model(&models.Comment{}).Where("id = ?", targetID).UpdateColumns(updates).Error
}

func (r *voteRepository) UserVotes(ctx context.Context, userID uint, targetType string, targetIDs []uint) (map[uint]int, error) {
	votes := make(map[uint]int, len(targetIDs))
	if userID == 0 || len(targetIDs) == 0 {
		return votes, nil
	}
	var rows []models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, targetType, targetIDs).
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	for _, v := range rows {
		votes[v.TargetID] = v.Value
	}
	return votes, nil
}
