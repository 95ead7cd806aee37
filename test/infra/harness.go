package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/jackc/pgx/v5/pgxpool"

	"smartmatch/listing"
)

// Harness owns the database behind an integration run: where it came from,
// the migrated pool, and how to tear it down.
type Harness struct {
	container *PGContainer
	pool      *pgxpool.Pool
	teardown  func(context.Context) error
	dsn       string
}

// Open finds a database for the run. An explicit DSN or SMARTMATCH_TEST_PG_DSN
// is shared and gets an isolated schema; otherwise a container is started
// when Docker answers, falling back to a local Postgres.
func Open(ctx context.Context, overrideDSN string) (*Harness, error) {
	var (
		h      = &Harness{}
		shared bool
		err    error
	)

	switch {
	case overrideDSN != "" || os.Getenv(DSNEnv) != "":
		h.container, h.dsn, err = StartPostgres16(ctx, overrideDSN)
		shared = true
	case dockerAvailable(ctx):
		h.container, h.dsn, err = StartPostgres16(ctx, "")
	default:
		h.dsn, err = InitLocalDatabase(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("infra: provision database: %w", err)
	}

	h.pool, h.teardown, err = ApplyMigrations(ctx, h.dsn, shared)
	if err != nil {
		_ = h.container.Terminate(ctx)
		return nil, err
	}
	return h, nil
}

func (h *Harness) Pool() *pgxpool.Pool {
	return h.pool
}

func (h *Harness) DSN() string {
	return h.dsn
}

// Close releases the pool, drops an isolated schema and stops the container.
func (h *Harness) Close(ctx context.Context) error {
	if h.pool != nil {
		h.pool.Close()
	}
	var firstErr error
	if h.teardown != nil {
		firstErr = h.teardown(ctx)
	}
	if err := h.container.Terminate(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Reset truncates every table so the next scenario starts clean.
func (h *Harness) Reset(ctx context.Context) error {
	tables := []string{
		"match_records",
		"search_sessions",
		"lead_activities",
		"leads",
		"listings",
	}

	tx, err := h.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("infra: reset begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, tbl := range tables {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+tbl+" CASCADE"); err != nil {
			return fmt.Errorf("infra: truncate %s: %w", tbl, err)
		}
	}
	return tx.Commit(ctx)
}

// SeedListings inserts listings and returns their generated ids in order.
func (h *Harness) SeedListings(ctx context.Context, listings []listing.Listing) ([]string, error) {
	const query = `
		INSERT INTO listings (
			title, description, status, listing_type, property_type,
			price, original_price, rental_price, original_rental_price,
			price_per_area, rent_per_area, floor_area,
			district, subdistrict, province, popular_area,
			near_bts, near_mrt, transit_station, image_url
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING id::text
	`

	ids := make([]string, 0, len(listings))
	for i, l := range listings {
		status := l.Status
		if status == "" {
			status = listing.StatusActive
		}
		var id string
		err := h.pool.QueryRow(ctx, query,
			l.Title, l.Description, string(status), string(l.ListingType), string(l.PropertyType),
			l.Price, l.OriginalPrice, l.RentalPrice, l.OriginalRentalPrice,
			l.PricePerArea, l.RentPerArea, l.FloorArea,
			l.District, l.Subdistrict, l.Province, l.PopularArea,
			l.NearBTS, l.NearMRT, l.TransitStation, l.ImageURL,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("infra: seed listing %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func dockerAvailable(ctx context.Context) bool {
	if _, err := exec.LookPath("docker"); err != nil {
		return false
	}
	c := exec.CommandContext(ctx, "docker", "info")
	c.Stdout = io.Discard
	c.Stderr = io.Discard
	return c.Run() == nil
}
