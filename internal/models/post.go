// Package models contains data structures for the discussion engine's domain.
package models

import (
	"time"
)

// Post represents a discussion thread attached to a ticker symbol.
//
// Score, Upvotes and Downvotes are a cached projection of the vote ledger;
// they are written only by the vote repository and must stay re-derivable
// from the Vote rows for this post. IsDeleted is a tombstone: deleted posts
// keep their row so descendants and vote history stay intact.
type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Ticker        string    `gorm:"size:12;not null;index" json:"ticker"`
	Title         string    `gorm:"not null" json:"title"`
	Body          string    `gorm:"type:text;not null" json:"body"`
	AuthorID      uint      `gorm:"not null;index" json:"author_id"`
	AuthorDisplay string    `gorm:"size:64;not null" json:"author_display"`
	Score         int       `gorm:"not null;default:0" json:"score"`
	Upvotes       int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes     int       `gorm:"not null;default:0" json:"downvotes"`
	CommentCount  int       `gorm:"not null;default:0" json:"comment_count"`
	IsDeleted     bool      `gorm:"not null;default:false;index" json:"is_deleted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	// LastActivityAt is bumped whenever a comment lands on this post; it
	// drives the "hot" sort.
	LastActivityAt time.Time `gorm:"index" json:"last_activity_at"`

	// MyVote is the requesting user's vote on this post (computed, -1/0/+1)
	MyVote int `gorm:"-" json:"my_vote"`
	// Attachments are resolved from the attachment store at read time
	Attachments []Attachment `gorm:"-" json:"attachments,omitempty"`
}

// Sort orders served by the post listing.
const (
	SortHot = "hot"
	SortNew = "new"
	SortTop = "top"
)

// Timeframes restricting the "top" sort.
const (
	TimeframeDay  = "24h"
	TimeframeWeek = "7d"
	TimeframeAll  = "all"
)

// PostPage is one page of a cursor-paginated post listing.
type PostPage struct {
	Posts      []*Post `json:"posts"`
	NextCursor string  `json:"next_cursor,omitempty"`
}
