package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartmatch/listing"
	"smartmatch/search"
	"smartmatch/session"
)

// Ticket is a recorded search a converter may turn into a lead.
type Ticket struct {
	SessionID string
	ListingID string
}

// Searcher runs searches for random criteria. Every search that recorded a
// session and found a match is offered twice on tickets so converters race
// over it.
func Searcher(ctx context.Context, svc *search.Service, criteria []listing.Criteria, tickets chan<- Ticket, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		c := criteria[rand.IntN(len(criteria))]
		res, err := svc.Search(ctx, c)
		if err != nil {
			if transient(err) {
				continue
			}
			return fmt.Errorf("searcher: %w", err)
		}
		if res.SessionID != nil && len(res.Matches) > 0 {
			t := Ticket{SessionID: *res.SessionID, ListingID: res.Matches[0].ListingID}
			for range 2 {
				select {
				case tickets <- t:
				case <-ctx.Done():
					return ctx.Err()
				case <-stop:
					return nil
				}
			}
		}
		time.Sleep(time.Duration(5+rand.IntN(20)) * time.Millisecond)
	}
}

// Converter turns tickets into leads. Losing the race for a session is
// expected and ignored.
func Converter(ctx context.Context, svc *search.Service, tickets <-chan Ticket, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case t := <-tickets:
			_, err := svc.ConvertToLead(ctx, session.ConvertParams{
				SessionID: t.SessionID,
				ListingID: t.ListingID,
				FullName:  fmt.Sprintf("Buyer %d", rand.IntN(100000)),
				Phone:     fmt.Sprintf("08%08d", rand.IntN(100000000)),
			})
			switch {
			case err == nil, errors.Is(err, session.ErrAlreadyConverted):
			case transient(err):
			default:
				return fmt.Errorf("converter %s: %w", t.SessionID, err)
			}
		}
	}
}

// Churner keeps inventory moving underneath the searches: listings drop in
// and out of ACTIVE and get repriced.
func Churner(ctx context.Context, pool *pgxpool.Pool, listingIDs []string, stop <-chan struct{}) error {
	statuses := []listing.Status{listing.StatusActive, listing.StatusActive, listing.StatusPending, listing.StatusInactive}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		id := listingIDs[rand.IntN(len(listingIDs))]
		status := statuses[rand.IntN(len(statuses))]
		factor := 0.9 + rand.Float64()*0.2
		_, err := pool.Exec(ctx, `
			UPDATE listings
			SET status = $2,
			    price = CASE WHEN price IS NULL THEN NULL ELSE round(price * $3::numeric, 2) END,
			    updated_at = now()
			WHERE id = $1`, id, string(status), factor)
		if err != nil && !transient(err) {
			return fmt.Errorf("churner: %w", err)
		}
		time.Sleep(time.Duration(20+rand.IntN(40)) * time.Millisecond)
	}
}

// transient reports errors the run expects: shutdown, and backends killed by
// the chaos loop.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "57P01" {
		return true
	}
	return pgconn.SafeToRetry(err)
}
