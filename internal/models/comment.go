package models

import (
	"time"
)

// MaxCommentDepth is the hard ceiling on reply nesting. A comment at this
// depth cannot be replied to.
const MaxCommentDepth = 6

// PathSegmentWidth is the zero-padded width of one materialized-path segment.
const PathSegmentWidth = 4

// Comment is one node of a post's reply tree, stored flat.
//
// Path is a materialized path: a dot-separated sequence of fixed-width,
// zero-padded integers. Sorting a post's comments by Path ascending yields
// exactly the pre-order traversal of the tree, so the tree can be rebuilt in
// a single pass. The unique index on (post_id, path) is what serializes
// concurrent siblings: two inserts racing to the same segment collide there
// and one of them retries with a fresh MAX.
type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PostID          uint      `gorm:"not null;index;uniqueIndex:idx_comments_post_path,priority:1" json:"post_id"`
	ParentCommentID *uint     `gorm:"index" json:"parent_comment_id,omitempty"`
	Depth           int       `gorm:"not null" json:"depth"`
	Path            string    `gorm:"size:64;not null;uniqueIndex:idx_comments_post_path,priority:2" json:"path"`
	Body            string    `gorm:"type:text;not null" json:"body"`
	AuthorID        uint      `gorm:"not null;index" json:"author_id"`
	AuthorDisplay   string    `gorm:"size:64;not null" json:"author_display"`
	Score           int       `gorm:"not null;default:0" json:"score"`
	Upvotes         int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes       int       `gorm:"not null;default:0" json:"downvotes"`
	IsDeleted       bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// MyVote is the requesting user's vote on this comment (computed)
	MyVote int `gorm:"-" json:"my_vote"`
	// Replies is filled by the tree builder; never persisted
	Replies []*Comment `gorm:"-" json:"replies"`
	// Attachments are resolved from the attachment store at read time
	Attachments []Attachment `gorm:"-" json:"attachments,omitempty"`
}
