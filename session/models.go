package session

import (
	"time"

	"smartmatch/listing"
)

// Session is one executed smart-match search. LeadID and ConvertedAt are set
// together, at most once.
type Session struct {
	ID          string
	Token       string
	Criteria    listing.Criteria
	CreatedAt   time.Time
	LeadID      *string
	ConvertedAt *time.Time
}

func (s Session) Converted() bool {
	return s.LeadID != nil
}

// MatchRecord is an insert-only row per surfaced match, ranked from 1.
type MatchRecord struct {
	SessionID string
	ListingID string
	Score     int
	Reasons   []string
	Rank      int
	CreatedAt time.Time
}

type ConvertParams struct {
	SessionID string
	ListingID string
	FullName  string
	Phone     string
	Email     *string
}

type ConvertResult struct {
	LeadID  string
	Session Session
}
