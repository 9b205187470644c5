// Package reaction implements the like/dislike engine shared by comments and posts.
//
// A target owns a State: a per-user Ledger of reaction records and an Aggregate of
// like/dislike totals that is maintained incrementally from (old, new) transitions.
package reaction

import (
	"errors"
	"fmt"
)

// Status is a user's reaction to a target. None means "no active reaction", not "no record".
type Status string

const (
	None    Status = "None"
	Like    Status = "Like"
	Dislike Status = "Dislike"
)

// ErrInvalidStatus is returned by ParseStatus for anything outside None, Like and Dislike.
var ErrInvalidStatus = errors.New("invalid like status")

// ParseStatus converts the wire spelling into a Status. Matching is case-sensitive.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case None, Like, Dislike:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
