// Package availability answers, before a wizard step is rendered, which of
// its options still have at least one live listing behind them. Answers are
// advisory: a failing store yields an empty answer, never an error.
package availability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"smartmatch/listing"
	"smartmatch/location"
	"smartmatch/logging"
)

type Filter struct {
	store     listing.Store
	locations *location.Normalizer
	cache     Cache
	log       logrus.FieldLogger
	pageSize  int
}

func NewFilter(store listing.Store, locations *location.Normalizer, log logrus.FieldLogger) *Filter {
	if locations == nil {
		locations = location.Default()
	}
	return &Filter{
		store:     store,
		locations: locations,
		log:       logging.OrDefault(log),
		pageSize:  listing.DefaultPageSize,
	}
}

func (f *Filter) WithCache(c Cache) *Filter {
	f.cache = c
	return f
}

// WithPageSize sets how many listings each store round trip fetches. Checks
// always cover the whole inventory.
func (f *Filter) WithPageSize(n int) *Filter {
	if n > 0 {
		f.pageSize = n
	}
	return f
}

// CheckPurpose returns the purposes with any active inventory.
func (f *Filter) CheckPurpose(ctx context.Context) []string {
	return remember(ctx, f, "purpose", listing.Criteria{}, func(ctx context.Context) ([]string, error) {
		found := make([]bool, len(listing.Purposes))
		g, gctx := errgroup.WithContext(ctx)
		for i, p := range listing.Purposes {
			g.Go(func() error {
				rows, err := f.store.Find(gctx, listing.FilterFor(listing.Criteria{Purpose: p}, 1))
				if err != nil {
					return fmt.Errorf("probe %s: %w", p, err)
				}
				found[i] = len(rows) > 0
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		out := []string{}
		for i, p := range listing.Purposes {
			if found[i] {
				out = append(out, string(p))
			}
		}
		return out, nil
	})
}

// CheckPropertyType returns the property types on offer for purpose, in
// catalogue order.
func (f *Filter) CheckPropertyType(ctx context.Context, purpose listing.Purpose) []string {
	scope := listing.Criteria{Purpose: purpose}
	return remember(ctx, f, "property-type", scope, func(ctx context.Context) ([]string, error) {
		present := map[listing.PropertyType]bool{}
		err := f.walk(ctx, scope, func(page []listing.Listing) bool {
			for _, l := range page {
				present[l.PropertyType] = true
			}
			return len(present) < len(listing.PropertyTypes)
		})
		if err != nil {
			return nil, err
		}
		out := []string{}
		for _, t := range listing.PropertyTypes {
			if present[t] {
				out = append(out, string(t))
			}
		}
		return out, nil
	})
}

// CheckOfficeSize counts live offices per size bucket for purpose. Buckets
// with no offices are omitted.
func (f *Filter) CheckOfficeSize(ctx context.Context, purpose listing.Purpose) []SizeCount {
	office := listing.PropertyOffice
	scope := listing.Criteria{Purpose: purpose, PropertyType: &office}
	return remember(ctx, f, "office-size", scope, func(ctx context.Context) ([]SizeCount, error) {
		counts := make([]int, len(OfficeSizes))
		err := f.walk(ctx, scope, func(page []listing.Listing) bool {
			for _, l := range page {
				if l.FloorArea == nil {
					continue
				}
				for i, s := range OfficeSizes {
					if s.Holds(*l.FloorArea) {
						counts[i]++
						break
					}
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		out := []SizeCount{}
		for i, s := range OfficeSizes {
			if counts[i] > 0 {
				out = append(out, SizeCount{Size: s.ID, Count: counts[i]})
			}
		}
		return out, nil
	})
}

// CheckBudget returns the ids of ranges holding at least one listing scoped
// to purpose, property type and office size. Unpriced listings fit every
// range; offices with a per-area rate but no floor area fit none. Nil ranges
// means the default buckets for the purpose.
func (f *Filter) CheckBudget(ctx context.Context, c listing.Criteria, ranges []BudgetRange) []string {
	if ranges == nil {
		ranges = DefaultBudgetRanges[c.Purpose]
	}
	scope := listing.Criteria{Purpose: c.Purpose, PropertyType: c.PropertyType, OfficeSize: c.OfficeSize}
	key := struct {
		Scope  listing.Criteria
		Ranges []BudgetRange
	}{scope, ranges}
	return remember(ctx, f, "budget", key, func(ctx context.Context) ([]string, error) {
		hit := make([]bool, len(ranges))
		left := len(ranges)
		err := f.walk(ctx, scope, func(page []listing.Listing) bool {
			for _, l := range page {
				view := listing.BudgetPrice(l, c.Purpose)
				for i, r := range ranges {
					if !hit[i] && view.Fits(r.Range) {
						hit[i] = true
						left--
					}
				}
			}
			return left > 0
		})
		if err != nil {
			return nil, err
		}
		out := []string{}
		for i, r := range ranges {
			if hit[i] {
				out = append(out, r.ID)
			}
		}
		return out, nil
	})
}

// CheckTransit reports whether near-transit and any-location choices have
// inventory, scoped to everything before the transit step.
func (f *Filter) CheckTransit(ctx context.Context, c listing.Criteria) []string {
	scope := listing.Criteria{Purpose: c.Purpose, PropertyType: c.PropertyType, OfficeSize: c.OfficeSize, Budget: c.Budget}
	return remember(ctx, f, "transit", scope, func(ctx context.Context) ([]string, error) {
		near, some := false, false
		err := f.walk(ctx, scope, func(page []listing.Listing) bool {
			for _, l := range page {
				if !fitsBudget(l, scope) {
					continue
				}
				some = true
				if l.NearTransit() {
					near = true
					return false
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		out := []string{}
		if near {
			out = append(out, NearTransit)
		}
		if some {
			out = append(out, AnyLocation)
		}
		return out, nil
	})
}

// CheckLocation returns the curated areas, in table order, that some listing
// within every earlier choice (transit preference included) mentions.
func (f *Filter) CheckLocation(ctx context.Context, c listing.Criteria) []string {
	scope := listing.Criteria{Purpose: c.Purpose, PropertyType: c.PropertyType, OfficeSize: c.OfficeSize, Budget: c.Budget, NearTransit: c.NearTransit}
	return remember(ctx, f, "location", scope, func(ctx context.Context) ([]string, error) {
		areas := f.locations.Areas()
		hit := make([]bool, len(areas))
		left := len(areas)
		err := f.walk(ctx, scope, func(page []listing.Listing) bool {
			for _, l := range page {
				if !fitsBudget(l, scope) {
					continue
				}
				for i, area := range areas {
					if hit[i] {
						continue
					}
					if location.Same(area, l.PopularArea) ||
						f.locations.Mentions(area, l.PopularArea, l.District, l.Subdistrict, l.Title, l.Description) {
						hit[i] = true
						left--
					}
				}
			}
			return left > 0
		})
		if err != nil {
			return nil, err
		}
		out := []string{}
		for i, area := range areas {
			if hit[i] {
				out = append(out, area)
			}
		}
		return out, nil
	})
}

// walk visits every live listing within scope's structural choices.
func (f *Filter) walk(ctx context.Context, scope listing.Criteria, visit func([]listing.Listing) bool) error {
	return listing.Walk(ctx, f.store, listing.FilterFor(scope, f.pageSize), visit)
}

func fitsBudget(l listing.Listing, c listing.Criteria) bool {
	if c.Budget == nil {
		return true
	}
	return listing.BudgetPrice(l, c.Purpose).Fits(*c.Budget)
}

// remember runs compute through the optional cache. Failures are logged and
// turn into an empty answer; they are never cached.
func remember[T any](ctx context.Context, f *Filter, check string, scope any, compute func(context.Context) (T, error)) T {
	var zero T
	key := ""
	if f.cache != nil {
		raw, err := json.Marshal(scope)
		if err == nil {
			key = check + ":" + string(raw)
			if hit, ok, err := f.cache.Get(ctx, key); err != nil {
				f.log.WithError(err).WithField("check", check).Warn("availability cache read failed")
			} else if ok {
				var cached T
				if err := json.Unmarshal(hit, &cached); err == nil {
					return cached
				}
			}
		}
	}

	out, err := compute(ctx)
	if err != nil {
		f.log.WithError(err).WithField("check", check).Warn("availability check failed")
		return emptyOf(zero)
	}

	if key != "" {
		if raw, err := json.Marshal(out); err == nil {
			if err := f.cache.Set(ctx, key, raw); err != nil {
				f.log.WithError(err).WithField("check", check).Warn("availability cache write failed")
			}
		}
	}
	return out
}

// emptyOf turns a nil slice answer into an empty one so callers serialise
// "[]" rather than "null".
func emptyOf[T any](v T) T {
	switch any(v).(type) {
	case []string:
		return any([]string{}).(T)
	case []SizeCount:
		return any([]SizeCount{}).(T)
	}
	return v
}
