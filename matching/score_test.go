package matching

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartmatch/listing"
)

func num(v float64) *float64 { return &v }

func ptr[T any](v T) *T { return &v }

func rama9Criteria() listing.Criteria {
	return listing.Criteria{
		Purpose:      listing.PurposeBuy,
		Budget:       listing.Between(3_000_000, 5_000_000),
		Area:         ptr("พระราม 9"),
		NearTransit:  ptr(true),
		PropertyType: ptr(listing.PropertyCondo),
	}
}

func rama9Condo() listing.Listing {
	return listing.Listing{
		ID:           "l-1",
		Status:       listing.StatusActive,
		ListingType:  listing.ListingTypeSale,
		Price:        num(4_000_000),
		PopularArea:  "พระราม 9",
		NearMRT:      true,
		PropertyType: listing.PropertyCondo,
	}
}

func TestScoreFullMatchClampsTo100(t *testing.T) {
	res := NewScorer(nil).Score(rama9Condo(), rama9Criteria())

	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 130, res.Raw())
	assert.Equal(t, []Factor{
		{Label: "price", Points: 40},
		{Label: "purpose", Points: 20},
		{Label: "area", Points: 30},
		{Label: "transit", Points: 10},
		{Label: "propertyType", Points: 30},
	}, res.Breakdown)
	assert.Len(t, res.Reasons, 5)
	assert.Equal(t, "Price ฿4,000,000 fits your budget", res.Reasons[0])
}

func TestScoreTypeMismatchPenalty(t *testing.T) {
	l := rama9Condo()
	l.PropertyType = listing.PropertyHouse

	res := NewScorer(nil).Score(l, rama9Criteria())

	assert.Equal(t, 80, res.Score)
	require.Len(t, res.Breakdown, 5)
	assert.Equal(t, Factor{Label: "propertyType", Points: -20}, res.Breakdown[4])
	assert.Equal(t, "Property type is House, not Condo", res.Reasons[4])
}

func TestScorePriceTiers(t *testing.T) {
	tests := []struct {
		name   string
		price  *float64
		budget *listing.Range
		want   int
	}{
		{"inside range", num(4_000_000), listing.Between(3_000_000, 5_000_000), 40},
		{"range upper bound inclusive", num(5_000_000), listing.Between(3_000_000, 5_000_000), 40},
		{"range within 15 percent over", num(5_700_000), listing.Between(3_000_000, 5_000_000), 30},
		{"range beyond 15 percent", num(5_800_000), listing.Between(3_000_000, 5_000_000), 0},
		{"range exactly 15 percent over 50K", num(57_500), listing.Between(20_000, 50_000), 30},
		{"range exactly 15 percent over 100K", num(115_000), listing.Between(50_000, 100_000), 30},
		{"range exactly 15 percent over 3M", num(3_450_000), listing.Between(2_000_000, 3_000_000), 30},
		{"range one baht past 15 percent", num(57_501), listing.Between(20_000, 50_000), 0},
		{"range below min", num(2_000_000), listing.Between(3_000_000, 5_000_000), 0},
		{"max only within", num(5_000_000), &listing.Range{Max: num(5_000_000)}, 40},
		{"max only within 10 percent", num(5_400_000), &listing.Range{Max: num(5_000_000)}, 25},
		{"max only beyond 10 percent", num(5_600_000), &listing.Range{Max: num(5_000_000)}, 0},
		{"max only exactly 10 percent over 50K", num(55_000), &listing.Range{Max: num(50_000)}, 25},
		{"max only exactly 10 percent over 100K", num(110_000), &listing.Range{Max: num(100_000)}, 25},
		{"max only exactly 10 percent over 3M", num(3_300_000), &listing.Range{Max: num(3_000_000)}, 25},
		{"max only one baht past 10 percent", num(110_001), &listing.Range{Max: num(100_000)}, 0},
		{"min only", num(9_000_000), listing.AtLeast(5_000_000), 40},
		{"min only below", num(4_000_000), listing.AtLeast(5_000_000), 0},
		{"zero price earns nothing", num(0), listing.Between(0, 5_000_000), 0},
		{"nil price earns nothing", nil, listing.Between(0, 5_000_000), 0},
		{"no budget", num(4_000_000), nil, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := listing.Listing{ListingType: listing.ListingTypeRent, Price: tc.price, PropertyType: listing.PropertyCondo}
			res := NewScorer(nil).Score(l, listing.Criteria{Purpose: listing.PurposeBuy, Budget: tc.budget})
			assert.Equal(t, tc.want, res.Score)
		})
	}
}

func TestScoreAreaFallbacks(t *testing.T) {
	c := listing.Criteria{Purpose: listing.PurposeRent, Area: ptr("Rama 9")}
	base := listing.Listing{ListingType: listing.ListingTypeSale}

	synonym := base
	synonym.Title = "คอนโดใกล้ MRT พระราม 9"
	assert.Equal(t, 25, NewScorer(nil).Score(synonym, c).Score)

	metro := base
	metro.Province = "กรุงเทพมหานคร"
	assert.Equal(t, 10, NewScorer(nil).Score(metro, c).Score)

	nowhere := base
	nowhere.Province = "Chiang Mai"
	assert.Equal(t, 0, NewScorer(nil).Score(nowhere, c).Score)

	exact := base
	exact.PopularArea = "rama 9"
	res := NewScorer(nil).Score(exact, c)
	assert.Equal(t, 30, res.Score)
	assert.Equal(t, []Factor{{Label: "area", Points: 30}}, res.Breakdown)
}

func TestScoreTransitBonusWithoutPreference(t *testing.T) {
	l := listing.Listing{ListingType: listing.ListingTypeRent, NearBTS: true, TransitStation: "BTS Ari"}

	noPref := NewScorer(nil).Score(l, listing.Criteria{Purpose: listing.PurposeRent})
	assert.Equal(t, 25, noPref.Score)
	assert.Equal(t, "Near BTS Ari", noPref.Reasons[1])

	anyLocation := NewScorer(nil).Score(l, listing.Criteria{Purpose: listing.PurposeRent, NearTransit: ptr(false)})
	assert.Equal(t, 25, anyLocation.Score)

	requested := NewScorer(nil).Score(l, listing.Criteria{Purpose: listing.PurposeRent, NearTransit: ptr(true)})
	assert.Equal(t, 30, requested.Score)

	far := NewScorer(nil).Score(listing.Listing{ListingType: listing.ListingTypeRent}, listing.Criteria{Purpose: listing.PurposeRent, NearTransit: ptr(true)})
	assert.Equal(t, 20, far.Score)
}

func TestScoreOfficeAreaPricing(t *testing.T) {
	l := listing.Listing{
		ListingType:  listing.ListingTypeSale,
		PropertyType: listing.PropertyOffice,
		PricePerArea: num(500),
		FloorArea:    num(100),
	}
	c := listing.Criteria{Purpose: listing.PurposeBuy, Budget: listing.Between(40_000, 60_000)}

	res := NewScorer(nil).Score(l, c)
	assert.Equal(t, Factor{Label: "price", Points: 40}, res.Breakdown[0])
}

func TestScoreAlwaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	types := append([]listing.PropertyType{}, listing.PropertyTypes...)
	listingTypes := []listing.ListingType{listing.ListingTypeSale, listing.ListingTypeRent, listing.ListingTypeSaleAndRent}
	areas := []string{"พระราม 9", "Silom", "Chiang Mai", ""}
	scorer := NewScorer(nil)

	for i := 0; i < 2000; i++ {
		l := listing.Listing{
			ListingType:  listingTypes[rng.IntN(len(listingTypes))],
			PropertyType: types[rng.IntN(len(types))],
			Price:        num(float64(rng.IntN(12_000_000))),
			RentalPrice:  num(float64(rng.IntN(150_000))),
			PopularArea:  areas[rng.IntN(len(areas))],
			Province:     "Bangkok",
			NearBTS:      rng.IntN(2) == 0,
		}
		c := listing.Criteria{
			Purpose:      listing.Purposes[rng.IntN(len(listing.Purposes))],
			PropertyType: ptr(types[rng.IntN(len(types))]),
			Budget:       listing.Between(float64(rng.IntN(3_000_000)), float64(3_000_000+rng.IntN(5_000_000))),
			Area:         ptr(areas[rng.IntN(len(areas))]),
			NearTransit:  ptr(rng.IntN(2) == 0),
		}

		res := scorer.Score(l, c)
		require.GreaterOrEqual(t, res.Score, 0)
		require.LessOrEqual(t, res.Score, 100)
		require.Len(t, res.Reasons, len(res.Breakdown))
	}
}
