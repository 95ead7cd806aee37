// Package session persists executed searches, their ranked matches and the
// later conversion of a search into a lead.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"smartmatch/lead"
	"smartmatch/listing"
)

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Recorder struct {
	pool           TxBeginner
	repo           Repository
	leads          lead.Writer
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
}

func NewRecorder(pool TxBeginner, repo Repository, leads lead.Writer) *Recorder {
	if leads == nil {
		leads = lead.NewRepository()
	}
	return &Recorder{
		pool:           pool,
		repo:           repo,
		leads:          leads,
		idGenerator:    func() string { return uuid.NewString() },
		tokenGenerator: newToken,
		now:            time.Now,
	}
}

func (r *Recorder) WithIDGenerator(gen func() string) *Recorder {
	r.idGenerator = gen
	return r
}

func (r *Recorder) WithTokenGenerator(gen func() string) *Recorder {
	r.tokenGenerator = gen
	return r
}

func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// Start persists a new session holding a snapshot of criteria.
func (r *Recorder) Start(ctx context.Context, criteria listing.Criteria) (Session, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("session: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := r.repo.Create(ctx, tx, Session{
		ID:        r.idGenerator(),
		Token:     r.tokenGenerator(),
		Criteria:  criteria.Clone(),
		CreatedAt: r.now().UTC(),
	})
	if err != nil {
		return Session{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Session{}, fmt.Errorf("session: commit start: %w", err)
	}
	return created, nil
}

// RecordMatches stores records in the given order, assigning ranks 1..N.
func (r *Recorder) RecordMatches(ctx context.Context, sessionID string, records []MatchRecord) error {
	if sessionID == "" {
		return fmt.Errorf("session: record matches missing session id")
	}
	if len(records) == 0 {
		return nil
	}

	at := r.now().UTC()
	ranked := make([]MatchRecord, len(records))
	for i, rec := range records {
		rec.SessionID = sessionID
		rec.Rank = i + 1
		rec.CreatedAt = at
		ranked[i] = rec
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("session: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.repo.InsertMatches(ctx, tx, ranked); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("session: commit matches: %w", err)
	}
	return nil
}

// Convert creates a lead for the session and links the two in a single
// transaction. The session row is locked first so concurrent conversions of
// the same session serialise; the loser sees ErrAlreadyConverted.
func (r *Recorder) Convert(ctx context.Context, params ConvertParams) (ConvertResult, error) {
	if params.SessionID == "" {
		return ConvertResult{}, fmt.Errorf("session: convert missing session id")
	}
	if params.ListingID == "" {
		return ConvertResult{}, fmt.Errorf("session: convert missing listing id")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ConvertResult{}, fmt.Errorf("session: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := r.repo.GetForUpdate(ctx, tx, params.SessionID)
	if err != nil {
		return ConvertResult{}, err
	}
	if current.Converted() {
		return ConvertResult{}, ErrAlreadyConverted
	}

	created, err := r.leads.CreateLead(ctx, tx, lead.CreateLeadParams{
		FullName: strings.TrimSpace(params.FullName),
		Phone:    strings.TrimSpace(params.Phone),
		Email:    params.Email,
		Source:   lead.SourceSmartMatch,
		Stage:    lead.StageNew,
		Note:     fmt.Sprintf("Smart Match session %s", current.Token),
	})
	if err != nil {
		return ConvertResult{}, err
	}

	updated, err := r.repo.MarkConverted(ctx, tx, current.ID, created.ID, r.now().UTC())
	if err != nil {
		return ConvertResult{}, err
	}

	if _, err := r.leads.CreateActivity(ctx, tx, lead.CreateActivityParams{
		LeadID: created.ID,
		Type:   lead.ActivityPropertyInterest,
		Note:   fmt.Sprintf("Interested in listing %s", params.ListingID),
		Payload: map[string]any{
			"listing_id":    params.ListingID,
			"session_id":    current.ID,
			"session_token": current.Token,
		},
	}); err != nil {
		return ConvertResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ConvertResult{}, fmt.Errorf("session: commit convert: %w", err)
	}

	return ConvertResult{LeadID: created.ID, Session: updated}, nil
}

// Lookup returns a session and its ranked match records by token.
func (r *Recorder) Lookup(ctx context.Context, token string) (Session, []MatchRecord, error) {
	if strings.TrimSpace(token) == "" {
		return Session{}, nil, ErrNotFound
	}
	s, err := r.repo.GetByToken(ctx, token)
	if err != nil {
		return Session{}, nil, err
	}
	records, err := r.repo.ListMatches(ctx, s.ID)
	if err != nil {
		return Session{}, nil, err
	}
	return s, records, nil
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
