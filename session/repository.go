package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound         = errors.New("session: not found")
	ErrAlreadyConverted = errors.New("session: already converted")
	ErrDuplicateToken   = errors.New("session: duplicate token")
)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, s Session) (Session, error)
	InsertMatches(ctx context.Context, tx pgx.Tx, records []MatchRecord) error
	GetByToken(ctx context.Context, token string) (Session, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Session, error)
	MarkConverted(ctx context.Context, tx pgx.Tx, id, leadID string, at time.Time) (Session, error)
	ListMatches(ctx context.Context, sessionID string) ([]MatchRecord, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const sessionColumns = `id::text, token, criteria, created_at, lead_id::text, converted_at`

func (r *PGRepository) Create(ctx context.Context, tx pgx.Tx, s Session) (Session, error) {
	criteria, err := json.Marshal(s.Criteria)
	if err != nil {
		return Session{}, fmt.Errorf("session: encode criteria: %w", err)
	}

	query := `
		INSERT INTO search_sessions (id, token, criteria, created_at)
		VALUES ($1, $2, $3::jsonb, $4)
		RETURNING ` + sessionColumns

	created, err := scanSession(tx.QueryRow(ctx, query, s.ID, s.Token, criteria, s.CreatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Session{}, ErrDuplicateToken
		}
		return Session{}, fmt.Errorf("session: insert: %w", err)
	}
	return created, nil
}

func (r *PGRepository) InsertMatches(ctx context.Context, tx pgx.Tx, records []MatchRecord) error {
	const query = `
		INSERT INTO match_records (session_id, listing_id, score, reasons, rank, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, rec := range records {
		if _, err := tx.Exec(ctx, query, rec.SessionID, rec.ListingID, rec.Score, rec.Reasons, rec.Rank, rec.CreatedAt); err != nil {
			return fmt.Errorf("session: insert match rank %d: %w", rec.Rank, err)
		}
	}
	return nil
}

func (r *PGRepository) GetByToken(ctx context.Context, token string) (Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM search_sessions WHERE token = $1`

	s, err := scanSession(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("session: get by token: %w", err)
	}
	return s, nil
}

func (r *PGRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM search_sessions WHERE id = $1 FOR UPDATE`

	s, err := scanSession(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("session: get for update: %w", err)
	}
	return s, nil
}

// MarkConverted links the session to its lead. A session that already has a
// lead is left untouched and reported as ErrAlreadyConverted.
func (r *PGRepository) MarkConverted(ctx context.Context, tx pgx.Tx, id, leadID string, at time.Time) (Session, error) {
	query := `
		UPDATE search_sessions
		SET lead_id = $2,
		    converted_at = $3
		WHERE id = $1 AND lead_id IS NULL
		RETURNING ` + sessionColumns

	s, err := scanSession(tx.QueryRow(ctx, query, id, leadID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrAlreadyConverted
		}
		return Session{}, fmt.Errorf("session: mark converted: %w", err)
	}
	return s, nil
}

func (r *PGRepository) ListMatches(ctx context.Context, sessionID string) ([]MatchRecord, error) {
	const query = `
		SELECT session_id::text, listing_id::text, score, reasons, rank, created_at
		FROM match_records
		WHERE session_id = $1
		ORDER BY rank ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session: list matches: %w", err)
	}
	defer rows.Close()

	records := make([]MatchRecord, 0, 5)
	for rows.Next() {
		var rec MatchRecord
		if err := rows.Scan(&rec.SessionID, &rec.ListingID, &rec.Score, &rec.Reasons, &rec.Rank, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("session: scan match: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session: iterate matches: %w", err)
	}
	return records, nil
}

func scanSession(row pgx.Row) (Session, error) {
	var (
		s        Session
		criteria []byte
	)
	if err := row.Scan(&s.ID, &s.Token, &criteria, &s.CreatedAt, &s.LeadID, &s.ConvertedAt); err != nil {
		return Session{}, err
	}
	if len(criteria) > 0 {
		if err := json.Unmarshal(criteria, &s.Criteria); err != nil {
			return Session{}, fmt.Errorf("session: decode criteria: %w", err)
		}
	}
	return s, nil
}
