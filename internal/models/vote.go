package models

import (
	"time"
)

// Vote target types.
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// Vote is the durable ledger record of one user's vote on one target.
//
// The unique index enforces at most one row per (user, target). Value is
// +1 or -1; removing a vote deletes the row instead of storing zero. The
// ledger is the source of truth: the counters on Post and Comment are
// recomputed from these rows inside the same transaction that mutates them.
type Vote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_votes_user_target,priority:1" json:"user_id"`
	TargetType string    `gorm:"size:8;not null;uniqueIndex:idx_votes_user_target,priority:2" json:"target_type"`
	TargetID   uint      `gorm:"not null;uniqueIndex:idx_votes_user_target,priority:3;index" json:"target_id"`
	Value      int       `gorm:"not null" json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Aggregate is the fresh counter state returned after a vote mutation.
type Aggregate struct {
	Score     int `json:"score"`
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	MyVote    int `json:"my_vote"`
}
