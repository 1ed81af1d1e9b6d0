package service

import (
	"alphaboard/internal/models"
)

// BuildCommentTree reassembles the nested reply structure from a flat,
// path-ordered comment list in a single pass. Because the input is sorted by
// path ascending, a parent always precedes its children, and appending in
// input order keeps every Replies slice in pre-order without another sort.
//
// A comment whose parent is missing from the input is promoted to the root
// level rather than dropped.
func BuildCommentTree(flat []*models.Comment) []*models.Comment {
	byID := make(map[uint]*models.Comment, len(flat))
	roots := make([]*models.Comment, 0, len(flat))

	for _, c := range flat {
		c.Replies = make([]*models.Comment, 0)
		byID[c.ID] = c

		if c.ParentCommentID != nil {
			if parent, ok := byID[*c.ParentCommentID]; ok {
				parent.Replies = append(parent.Replies, c)
				continue
			}
		}
		roots = append(roots, c)
	}

	return roots
}
