package lead

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

var (
	ErrMissingName  = errors.New("lead: full name required")
	ErrMissingPhone = errors.New("lead: phone required")
)

// Writer is the lead-store capability conversion needs. Both calls run in the
// caller's transaction.
type Writer interface {
	CreateLead(ctx context.Context, tx pgx.Tx, params CreateLeadParams) (Lead, error)
	CreateActivity(ctx context.Context, tx pgx.Tx, params CreateActivityParams) (Activity, error)
}

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) CreateLead(ctx context.Context, tx pgx.Tx, params CreateLeadParams) (Lead, error) {
	if strings.TrimSpace(params.FullName) == "" {
		return Lead{}, ErrMissingName
	}
	if strings.TrimSpace(params.Phone) == "" {
		return Lead{}, ErrMissingPhone
	}
	if params.Stage == "" {
		params.Stage = StageNew
	}

	const query = `
INSERT INTO leads (full_name, phone, email, source, stage, note)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text, full_name, phone, email, source, stage, note, created_at
`
	var l Lead
	if err := tx.QueryRow(ctx, query,
		params.FullName,
		params.Phone,
		params.Email,
		params.Source,
		params.Stage,
		params.Note,
	).Scan(
		&l.ID,
		&l.FullName,
		&l.Phone,
		&l.Email,
		&l.Source,
		&l.Stage,
		&l.Note,
		&l.CreatedAt,
	); err != nil {
		return Lead{}, fmt.Errorf("lead: insert lead: %w", err)
	}
	return l, nil
}

func (r *Repository) CreateActivity(ctx context.Context, tx pgx.Tx, params CreateActivityParams) (Activity, error) {
	if params.LeadID == "" {
		return Activity{}, fmt.Errorf("lead: activity missing lead id")
	}

	payload, err := json.Marshal(params.Payload)
	if err != nil {
		return Activity{}, fmt.Errorf("lead: encode activity payload: %w", err)
	}

	const query = `
INSERT INTO lead_activities (lead_id, type, note, payload)
VALUES ($1, $2, $3, $4::jsonb)
RETURNING id::text, lead_id::text, type, note, payload, created_at
`
	var a Activity
	if err := tx.QueryRow(ctx, query, params.LeadID, params.Type, params.Note, payload).Scan(
		&a.ID,
		&a.LeadID,
		&a.Type,
		&a.Note,
		&a.Payload,
		&a.CreatedAt,
	); err != nil {
		return Activity{}, fmt.Errorf("lead: insert activity: %w", err)
	}
	return a, nil
}
