package listing

import (
	"context"
	"fmt"
)

// DefaultPageSize is the page size Walk uses when filter.Limit is unset.
const DefaultPageSize = 500

// Walk pages through every listing matching filter in keyset order, using
// filter.Limit as the page size. visit returns false to stop early.
func Walk(ctx context.Context, store Store, filter Filter, visit func(page []Listing) bool) error {
	if filter.Limit <= 0 || filter.Limit > maxFindLimit {
		filter.Limit = DefaultPageSize
	}
	for {
		page, err := store.Find(ctx, filter)
		if err != nil {
			return fmt.Errorf("listing: walk: %w", err)
		}
		if len(page) == 0 || !visit(page) || len(page) < filter.Limit {
			return nil
		}
		next := CursorAt(page[len(page)-1])
		filter.After = &next
	}
}
