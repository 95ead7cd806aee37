package lead

import "time"

type Source string

const SourceSmartMatch Source = "SMART_MATCH"

type Stage string

const StageNew Stage = "NEW"

type ActivityType string

const ActivityPropertyInterest ActivityType = "PROPERTY_INTEREST"

// Lead mirrors the leads table columns written by smart-match conversion.
type Lead struct {
	ID        string
	FullName  string
	Phone     string
	Email     *string
	Source    Source
	Stage     Stage
	Note      string
	CreatedAt time.Time
}

// Activity is an append-only event on a lead's timeline.
type Activity struct {
	ID        string
	LeadID    string
	Type      ActivityType
	Note      string
	Payload   []byte
	CreatedAt time.Time
}

type CreateLeadParams struct {
	FullName string
	Phone    string
	Email    *string
	Source   Source
	Stage    Stage
	Note     string
}

type CreateActivityParams struct {
	LeadID  string
	Type    ActivityType
	Note    string
	Payload map[string]any
}
