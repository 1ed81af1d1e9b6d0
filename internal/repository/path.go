package repository

import (
	"fmt"
	"strconv"
	"strings"

	"alphaboard/internal/models"
)

// firstPathSegment is the segment assigned when a comment has no siblings yet.
const firstPathSegment = "0001"

// nextPathSegment derives the next sibling segment from the greatest existing
// sibling path. Segments are fixed-width and zero-padded so lexicographic
// comparison of whole paths matches numeric pre-order comparison.
func nextPathSegment(maxSiblingPath string) string {
	if maxSiblingPath == "" {
		return firstPathSegment
	}
	last := maxSiblingPath
	if i := strings.LastIndex(maxSiblingPath, "."); i >= 0 {
		last = maxSiblingPath[i+1:]
	}
	n, err := strconv.Atoi(last)
	if err != nil {
		// A malformed path row would poison every sibling after it; treat it
		// as absent rather than propagating garbage.
		return firstPathSegment
	}
	return fmt.Sprintf("%0*d", models.PathSegmentWidth, n+1)
}

// assignPath computes the materialized path and depth for a new comment given
// its parent (nil for a root comment) and the greatest existing sibling path.
func assignPath(parent *models.Comment, maxSiblingPath string) (string, int) {
	seg := nextPathSegment(maxSiblingPath)
	if parent == nil {
		return seg, 0
	}
	return parent.Path + "." + seg, parent.Depth + 1
}
