// Package pagination implements the opaque composite cursor used by ranked
// listings.
//
// A cursor pins a position in one specific ordering: the sort's value for the
// last returned row plus that row's id as a tie-break. Together they form a
// total order, so pages never duplicate or skip rows whose sort values
// collide. The token is base64url-encoded JSON; clients must treat it as
// opaque.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cursor is the decoded form of a pagination token.
//
// Value holds the sort field of the last returned row: a UnixNano timestamp
// for time-ordered sorts, a raw score for "top". ID breaks ties between rows
// with equal Value.
type Cursor struct {
	Sort  string `json:"s"`
	Value int64  `json:"v"`
	ID    uint   `json:"id"`
}

// Encode serializes the cursor into an opaque token.
func (c Cursor) Encode() string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses a token produced by Encode. The sort the cursor was built
// for must match the sort of the request it is replayed against; a cursor
// from a "new" listing makes no sense on a "top" listing.
func Decode(token, sort string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}
	if c.Sort != sort {
		return nil, fmt.Errorf("cursor was issued for sort %q, not %q", c.Sort, sort)
	}
	if c.ID == 0 {
		return nil, fmt.Errorf("malformed cursor: missing id")
	}
	return &c, nil
}
