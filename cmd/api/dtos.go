package main

import (
	"errors"
	"fmt"
	"time"

	"smartmatch/availability"
	"smartmatch/listing"
	"smartmatch/matching"
	"smartmatch/session"
	"smartmatch/wizard"
)

type rangeRequest struct {
	Min *float64 `json:"min" validate:"omitempty,gte=0"`
	Max *float64 `json:"max" validate:"omitempty,gte=0"`
}

type criteriaRequest struct {
	Purpose      string        `json:"purpose" validate:"required,oneof=BUY RENT INVEST"`
	PropertyType *string       `json:"propertyType" validate:"omitempty,oneof=HOUSE CONDO TOWNHOME LAND OFFICE WAREHOUSE COMMERCIAL"`
	OfficeSize   *rangeRequest `json:"officeSize"`
	Budget       *rangeRequest `json:"budget"`
	Area         *string       `json:"area" validate:"omitempty,max=120"`
	NearTransit  *bool         `json:"nearTransit"`
}

func (r criteriaRequest) criteria() listing.Criteria {
	c := listing.Criteria{
		Purpose:     listing.Purpose(r.Purpose),
		Area:        r.Area,
		NearTransit: r.NearTransit,
	}
	if r.PropertyType != nil {
		t := listing.PropertyType(*r.PropertyType)
		c.PropertyType = &t
	}
	if r.OfficeSize != nil {
		c.OfficeSize = &listing.Range{Min: r.OfficeSize.Min, Max: r.OfficeSize.Max}
	}
	if r.Budget != nil {
		c.Budget = &listing.Range{Min: r.Budget.Min, Max: r.Budget.Max}
	}
	return c
}

type budgetRangeRequest struct {
	ID    string   `json:"id" validate:"required,max=40"`
	Label string   `json:"label" validate:"max=80"`
	Min   *float64 `json:"min" validate:"omitempty,gte=0"`
	Max   *float64 `json:"max" validate:"omitempty,gte=0"`
}

// budgetsRequest is the criteria plus optional caller-supplied buckets.
type budgetsRequest struct {
	criteriaRequest
	BudgetRanges []budgetRangeRequest `json:"budgetRanges" validate:"omitempty,max=20,dive"`
}

var errInvertedBudgetRange = errors.New("budget range min exceeds max")

// ranges returns nil when the caller sent none, so the purpose defaults apply.
func (r budgetsRequest) ranges() ([]availability.BudgetRange, error) {
	if len(r.BudgetRanges) == 0 {
		return nil, nil
	}
	out := make([]availability.BudgetRange, 0, len(r.BudgetRanges))
	for _, b := range r.BudgetRanges {
		if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
			return nil, fmt.Errorf("%w: %s", errInvertedBudgetRange, b.ID)
		}
		out = append(out, availability.BudgetRange{
			ID:    b.ID,
			Label: b.Label,
			Range: listing.Range{Min: b.Min, Max: b.Max},
		})
	}
	return out, nil
}

type convertRequest struct {
	SessionID string  `json:"sessionId" validate:"required,uuid"`
	ListingID string  `json:"listingId" validate:"required"`
	FullName  string  `json:"fullName" validate:"required,max=200"`
	Phone     string  `json:"phone" validate:"required,min=6,max=32"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

type wizardSelectRequest struct {
	Token    string `json:"token" validate:"required"`
	OptionID string `json:"optionId" validate:"required"`
}

type wizardTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type availabilityResponse struct {
	Available []string `json:"available"`
}

type officeSizeResponse struct {
	Size  string `json:"size"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type searchResponse struct {
	SessionID    *string                  `json:"sessionId,omitempty"`
	SessionToken *string                  `json:"sessionToken,omitempty"`
	Matches      []matching.PropertyMatch `json:"matches"`
}

type convertResponse struct {
	LeadID      string    `json:"leadId"`
	SessionID   string    `json:"sessionId"`
	ConvertedAt time.Time `json:"convertedAt"`
}

type matchRecordResponse struct {
	Rank      int      `json:"rank"`
	ListingID string   `json:"listingId"`
	Score     int      `json:"score"`
	Reasons   []string `json:"reasons"`
}

type sessionResponse struct {
	ID          string                `json:"id"`
	Token       string                `json:"token"`
	Criteria    listing.Criteria      `json:"criteria"`
	CreatedAt   time.Time             `json:"createdAt"`
	LeadID      *string               `json:"leadId,omitempty"`
	ConvertedAt *time.Time            `json:"convertedAt,omitempty"`
	Matches     []matchRecordResponse `json:"matches"`
}

type wizardResponse struct {
	Token string       `json:"token"`
	Step  float64      `json:"stepNumber"`
	State wizard.State `json:"state"`
}

func officeSizesResponse(counts []availability.SizeCount) []officeSizeResponse {
	out := make([]officeSizeResponse, 0, len(counts))
	for _, c := range counts {
		label := c.Size
		if s, ok := availability.FindOfficeSize(c.Size); ok {
			label = s.Label
		}
		out = append(out, officeSizeResponse{Size: c.Size, Label: label, Count: c.Count})
	}
	return out
}

func toSessionResponse(s session.Session, records []session.MatchRecord) sessionResponse {
	matches := make([]matchRecordResponse, 0, len(records))
	for _, r := range records {
		matches = append(matches, matchRecordResponse{Rank: r.Rank, ListingID: r.ListingID, Score: r.Score, Reasons: r.Reasons})
	}
	return sessionResponse{
		ID:          s.ID,
		Token:       s.Token,
		Criteria:    s.Criteria,
		CreatedAt:   s.CreatedAt,
		LeadID:      s.LeadID,
		ConvertedAt: s.ConvertedAt,
		Matches:     matches,
	}
}
