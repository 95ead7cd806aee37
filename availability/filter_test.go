package availability

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartmatch/listing"
)

func num(v float64) *float64 { return &v }

func ptr[T any](v T) *T { return &v }

// memStore applies the structural part of a listing.Filter in memory, in
// keyset order and honouring Limit and After like the SQL store.
type memStore struct {
	mu       sync.Mutex
	listings []listing.Listing
	err      error
	calls    []listing.Filter
}

func (s *memStore) Find(_ context.Context, f listing.Filter) ([]listing.Listing, error) {
	s.mu.Lock()
	s.calls = append(s.calls, f)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	sorted := slices.Clone(s.listings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return listing.CursorAt(sorted[i]).Precedes(sorted[j])
	})
	out := []listing.Listing{}
	for _, l := range sorted {
		if !matches(l, f) || (f.After != nil && !f.After.Precedes(l)) {
			continue
		}
		out = append(out, l)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) Get(_ context.Context, id string) (listing.Listing, error) {
	for _, l := range s.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return listing.Listing{}, listing.ErrNotFound
}

func matches(l listing.Listing, f listing.Filter) bool {
	if len(f.Statuses) > 0 && !contains(f.Statuses, l.Status) {
		return false
	}
	if len(f.ListingTypes) > 0 && !contains(f.ListingTypes, l.ListingType) {
		return false
	}
	if f.PropertyType != nil && *f.PropertyType != l.PropertyType {
		return false
	}
	if f.FloorAreaMin != nil && (l.FloorArea == nil || *l.FloorArea < *f.FloorAreaMin) {
		return false
	}
	if f.FloorAreaMax != nil && (l.FloorArea == nil || *l.FloorArea >= *f.FloorAreaMax) {
		return false
	}
	if f.NearTransit && !l.NearTransit() {
		return false
	}
	return true
}

func contains[T comparable](in []T, v T) bool {
	for _, x := range in {
		if x == v {
			return true
		}
	}
	return false
}

func active(id string, lt listing.ListingType, pt listing.PropertyType) listing.Listing {
	return listing.Listing{ID: id, Status: listing.StatusActive, ListingType: lt, PropertyType: pt}
}

func quietFilter(store listing.Store) (*Filter, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return NewFilter(store, nil, logger), hook
}

func TestCheckPurpose(t *testing.T) {
	store := &memStore{listings: []listing.Listing{
		active("rent-1", listing.ListingTypeRent, listing.PropertyCondo),
		{ID: "sold", Status: listing.StatusSold, ListingType: listing.ListingTypeSale, PropertyType: listing.PropertyHouse},
	}}
	f, _ := quietFilter(store)

	assert.Equal(t, []string{"RENT"}, f.CheckPurpose(context.Background()))
	require.Len(t, store.calls, 3)
	for _, c := range store.calls {
		assert.Equal(t, 1, c.Limit)
	}

	store.listings = append(store.listings, active("both", listing.ListingTypeSaleAndRent, listing.PropertyHouse))
	assert.Equal(t, []string{"BUY", "RENT", "INVEST"}, f.CheckPurpose(context.Background()))
}

func TestCheckPropertyTypeKeepsCatalogueOrder(t *testing.T) {
	store := &memStore{listings: []listing.Listing{
		active("1", listing.ListingTypeSale, listing.PropertyOffice),
		active("2", listing.ListingTypeSale, listing.PropertyCondo),
		active("3", listing.ListingTypeSale, listing.PropertyCondo),
		active("4", listing.ListingTypeRent, listing.PropertyLand),
	}}
	f, _ := quietFilter(store)

	assert.Equal(t, []string{"CONDO", "OFFICE"}, f.CheckPropertyType(context.Background(), listing.PurposeBuy))
	assert.Equal(t, []string{"LAND"}, f.CheckPropertyType(context.Background(), listing.PurposeRent))
}

func TestCheckOfficeSize(t *testing.T) {
	office := func(id string, area *float64) listing.Listing {
		l := active(id, listing.ListingTypeRent, listing.PropertyOffice)
		l.FloorArea = area
		return l
	}
	store := &memStore{listings: []listing.Listing{
		office("a", num(80)),
		office("b", num(100)),
		office("c", num(299.5)),
		office("d", num(1500)),
		office("e", nil),
		active("condo", listing.ListingTypeRent, listing.PropertyCondo),
	}}
	f, _ := quietFilter(store)

	got := f.CheckOfficeSize(context.Background(), listing.PurposeRent)

	assert.Equal(t, []SizeCount{{Size: "S", Count: 1}, {Size: "M", Count: 2}, {Size: "XL", Count: 1}}, got)
}

func TestCheckBudgetWildcardFitsEveryBucket(t *testing.T) {
	store := &memStore{listings: []listing.Listing{
		active("on-request", listing.ListingTypeSale, listing.PropertyCondo),
	}}
	f, _ := quietFilter(store)

	got := f.CheckBudget(context.Background(), listing.Criteria{Purpose: listing.PurposeBuy}, nil)
	assert.Equal(t, []string{"under-2m", "2m-3m", "3m-5m", "5m-10m", "10m-plus"}, got)

	zero := active("zero", listing.ListingTypeRent, listing.PropertyCondo)
	zero.RentalPrice = num(0)
	store.listings = []listing.Listing{zero}
	got = f.CheckBudget(context.Background(), listing.Criteria{Purpose: listing.PurposeRent}, nil)
	assert.Equal(t, []string{"under-10k", "10k-20k", "20k-50k", "50k-100k", "100k-plus"}, got)
}

func TestCheckBudgetPricedAndOfficeRules(t *testing.T) {
	condo := active("condo", listing.ListingTypeSale, listing.PropertyCondo)
	condo.Price = num(4_000_000)

	derived := active("derived", listing.ListingTypeSale, listing.PropertyOffice)
	derived.PricePerArea = num(60_000)
	derived.FloorArea = num(200)

	ambiguous := active("ambiguous", listing.ListingTypeSale, listing.PropertyOffice)
	ambiguous.PricePerArea = num(50_000)

	store := &memStore{listings: []listing.Listing{condo, derived, ambiguous}}
	f, _ := quietFilter(store)

	all := f.CheckBudget(context.Background(), listing.Criteria{Purpose: listing.PurposeBuy}, nil)
	assert.Equal(t, []string{"3m-5m", "10m-plus"}, all)

	onlyOffices := f.CheckBudget(context.Background(), listing.Criteria{
		Purpose:      listing.PurposeBuy,
		PropertyType: ptr(listing.PropertyOffice),
	}, nil)
	assert.Equal(t, []string{"10m-plus"}, onlyOffices)

	custom := []BudgetRange{{ID: "tiny", Range: *listing.Between(0, 1)}}
	assert.Equal(t, []string{}, f.CheckBudget(context.Background(), listing.Criteria{Purpose: listing.PurposeBuy}, custom))
}

func TestCheckBudgetScopesOfficeSize(t *testing.T) {
	small := active("small", listing.ListingTypeRent, listing.PropertyOffice)
	small.FloorArea = num(50)
	small.RentalPrice = num(15_000)
	big := active("big", listing.ListingTypeRent, listing.PropertyOffice)
	big.FloorArea = num(500)
	big.RentalPrice = num(300_000)
	store := &memStore{listings: []listing.Listing{small, big}}
	f, _ := quietFilter(store)

	size, _ := FindOfficeSize("L")
	got := f.CheckBudget(context.Background(), listing.Criteria{
		Purpose:      listing.PurposeRent,
		PropertyType: ptr(listing.PropertyOffice),
		OfficeSize:   size.Range(),
	}, nil)

	assert.Equal(t, []string{"100k-plus"}, got)
}

func TestCheckTransit(t *testing.T) {
	near := active("near", listing.ListingTypeSale, listing.PropertyCondo)
	near.NearBTS = true
	near.Price = num(9_000_000)
	far := active("far", listing.ListingTypeSale, listing.PropertyCondo)
	far.Price = num(2_500_000)
	store := &memStore{listings: []listing.Listing{near, far}}
	f, _ := quietFilter(store)

	assert.Equal(t, []string{NearTransit, AnyLocation}, f.CheckTransit(context.Background(), listing.Criteria{Purpose: listing.PurposeBuy}))

	cheap := listing.Criteria{Purpose: listing.PurposeBuy, Budget: listing.Between(2_000_000, 3_000_000), NearTransit: ptr(true)}
	assert.Equal(t, []string{AnyLocation}, f.CheckTransit(context.Background(), cheap))
	assert.False(t, store.calls[len(store.calls)-1].NearTransit, "transit check must not filter on its own step")
}

func TestCheckLocation(t *testing.T) {
	rama9 := active("rama9", listing.ListingTypeRent, listing.PropertyCondo)
	rama9.Title = "Ideal condo, Rama IX"
	rama9.NearMRT = true
	silom := active("silom", listing.ListingTypeRent, listing.PropertyCondo)
	silom.PopularArea = "สีลม"
	ari := active("ari", listing.ListingTypeRent, listing.PropertyCondo)
	ari.District = "Phaya Thai"
	ari.RentalPrice = num(90_000)
	store := &memStore{listings: []listing.Listing{rama9, silom, ari}}
	f, _ := quietFilter(store)

	all := f.CheckLocation(context.Background(), listing.Criteria{Purpose: listing.PurposeRent})
	assert.Equal(t, []string{"พระราม 9", "สีลม", "อารีย์"}, all)

	transitOnly := f.CheckLocation(context.Background(), listing.Criteria{Purpose: listing.PurposeRent, NearTransit: ptr(true)})
	assert.Equal(t, []string{"พระราม 9"}, transitOnly)

	budget := f.CheckLocation(context.Background(), listing.Criteria{Purpose: listing.PurposeRent, Budget: listing.Between(50_000, 100_000)})
	assert.Equal(t, []string{"พระราม 9", "สีลม", "อารีย์"}, budget, "unpriced listings stay in every budget")

	tight := f.CheckLocation(context.Background(), listing.Criteria{Purpose: listing.PurposeRent, Budget: listing.Between(50_000, 100_000), Area: ptr("ignored")})
	assert.Equal(t, budget, tight)
}

// recentCondosOlderHouse holds a full page of freshly updated condos ahead of
// one older house, so the house only shows up on the second page.
func recentCondosOlderHouse() []listing.Listing {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	var out []listing.Listing
	for i := 0; i < listing.DefaultPageSize; i++ {
		c := active(fmt.Sprintf("c%03d", i), listing.ListingTypeSale, listing.PropertyCondo)
		c.Price = num(2_500_000)
		c.PopularArea = "สีลม"
		c.UpdatedAt = now.Add(-time.Duration(i) * time.Minute)
		out = append(out, c)
	}
	house := active("house-1", listing.ListingTypeSale, listing.PropertyHouse)
	house.Price = num(4_000_000)
	house.PopularArea = "พระราม 9"
	house.UpdatedAt = now.AddDate(0, -6, 0)
	return append(out, house)
}

func TestChecksCoverInventoryBeyondOnePage(t *testing.T) {
	store := &memStore{listings: recentCondosOlderHouse()}
	f, _ := quietFilter(store)
	ctx := context.Background()

	assert.Equal(t, []string{"HOUSE", "CONDO"}, f.CheckPropertyType(ctx, listing.PurposeBuy))
	require.Len(t, store.calls, 2)
	assert.Nil(t, store.calls[0].After)
	require.NotNil(t, store.calls[1].After)
	assert.Equal(t, "c499", store.calls[1].After.ID)

	buy := listing.Criteria{Purpose: listing.PurposeBuy}
	assert.Equal(t, []string{"2m-3m", "3m-5m"}, f.CheckBudget(ctx, buy, nil))
	assert.Equal(t, []string{AnyLocation}, f.CheckTransit(ctx, listing.Criteria{Purpose: listing.PurposeBuy, Budget: listing.Between(3_000_000, 5_000_000)}))
	assert.Equal(t, []string{"พระราม 9", "สีลม"}, f.CheckLocation(ctx, buy))
}

func TestChecksStopPagingOnceAnswered(t *testing.T) {
	store := &memStore{listings: recentCondosOlderHouse()}
	f, _ := quietFilter(store)
	f.WithPageSize(10)

	got := f.CheckBudget(context.Background(), listing.Criteria{Purpose: listing.PurposeBuy}, []BudgetRange{
		{ID: "cheap", Range: *listing.Between(2_000_000, 3_000_000)},
	})

	assert.Equal(t, []string{"cheap"}, got)
	assert.Len(t, store.calls, 1)
	assert.Equal(t, 10, store.calls[0].Limit)
}

func TestChecksFailOpenOnStoreError(t *testing.T) {
	store := &memStore{err: errors.New("connection refused")}
	f, hook := quietFilter(store)
	ctx := context.Background()
	c := listing.Criteria{Purpose: listing.PurposeBuy}

	assert.Equal(t, []string{}, f.CheckPurpose(ctx))
	assert.Equal(t, []string{}, f.CheckPropertyType(ctx, listing.PurposeBuy))
	assert.Equal(t, []SizeCount{}, f.CheckOfficeSize(ctx, listing.PurposeBuy))
	assert.Equal(t, []string{}, f.CheckBudget(ctx, c, nil))
	assert.Equal(t, []string{}, f.CheckTransit(ctx, c))
	assert.Equal(t, []string{}, f.CheckLocation(ctx, c))

	require.Len(t, hook.AllEntries(), 6)
	for _, e := range hook.AllEntries() {
		assert.Equal(t, logrus.WarnLevel, e.Level)
		assert.Equal(t, "availability check failed", e.Message)
	}
}

type mapCache struct {
	data   map[string][]byte
	getErr error
	sets   int
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte) error {
	c.sets++
	c.data[key] = value
	return nil
}

func TestCachedAnswersSkipTheStore(t *testing.T) {
	store := &memStore{listings: []listing.Listing{active("1", listing.ListingTypeSale, listing.PropertyCondo)}}
	cache := &mapCache{data: map[string][]byte{}}
	f, _ := quietFilter(store)
	f.WithCache(cache)

	first := f.CheckPropertyType(context.Background(), listing.PurposeBuy)
	second := f.CheckPropertyType(context.Background(), listing.PurposeBuy)

	assert.Equal(t, []string{"CONDO"}, first)
	assert.Equal(t, first, second)
	assert.Len(t, store.calls, 1)
	assert.Equal(t, 1, cache.sets)
}

func TestFailuresAreNotCached(t *testing.T) {
	store := &memStore{err: errors.New("timeout")}
	cache := &mapCache{data: map[string][]byte{}}
	f, _ := quietFilter(store)
	f.WithCache(cache)

	assert.Equal(t, []string{}, f.CheckPropertyType(context.Background(), listing.PurposeBuy))
	assert.Zero(t, cache.sets)

	store.err = nil
	store.listings = []listing.Listing{active("1", listing.ListingTypeSale, listing.PropertyHouse)}
	assert.Equal(t, []string{"HOUSE"}, f.CheckPropertyType(context.Background(), listing.PurposeBuy))
}

func TestCacheReadErrorFallsThrough(t *testing.T) {
	store := &memStore{listings: []listing.Listing{active("1", listing.ListingTypeSale, listing.PropertyHouse)}}
	cache := &mapCache{data: map[string][]byte{}, getErr: errors.New("redis down")}
	f, hook := quietFilter(store)
	f.WithCache(cache)

	assert.Equal(t, []string{"HOUSE"}, f.CheckPropertyType(context.Background(), listing.PurposeBuy))
	assert.Equal(t, "availability cache read failed", hook.Entries[0].Message)
}
