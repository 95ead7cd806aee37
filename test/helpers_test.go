package test

import (
	"context"
	"flag"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"smartmatch/lead"
	"smartmatch/listing"
	"smartmatch/matching"
	"smartmatch/search"
	"smartmatch/session"
	"smartmatch/test/infra"
)

var flDSN = flag.String("dsn", "", "existing Postgres DSN to reuse (avoids Docker)")

func openHarness(t *testing.T) *infra.Harness {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	h, err := infra.Open(ctx, *flDSN)
	if err != nil {
		t.Skipf("no database available: %v", err)
	}
	t.Cleanup(func() {
		if err := h.Close(context.Background()); err != nil {
			t.Logf("teardown warning: %v", err)
		}
	})
	return h
}

type fixedRand struct{}

func (fixedRand) IntN(int) int { return 0 }

func newSearchService(h *infra.Harness, log logrus.FieldLogger) *search.Service {
	if log == nil {
		log, _ = logtest.NewNullLogger()
	}
	pool := h.Pool()
	recorder := session.NewRecorder(pool, session.NewRepository(pool), lead.NewRepository())
	engine := matching.NewEngine(nil).WithRand(fixedRand{})
	return search.NewService(listing.NewRepository(pool), engine, recorder, log)
}

func num(v float64) *float64 { return &v }

func str(v string) *string { return &v }

func yes() *bool {
	v := true
	return &v
}


// fixtureListings is a small Bangkok inventory spanning every purpose.
func fixtureListings() []listing.Listing {
	return []listing.Listing{
		{
			Title: "Rama 9 skyline condo", ListingType: listing.ListingTypeSale, PropertyType: listing.PropertyCondo,
			Price: num(4_500_000), FloorArea: num(45), PopularArea: "พระราม 9", District: "ห้วยขวาง",
			Province: "กรุงเทพมหานคร", NearMRT: true, TransitStation: "MRT Phra Ram 9",
		},
		{
			Title: "Asok studio for rent", ListingType: listing.ListingTypeRent, PropertyType: listing.PropertyCondo,
			RentalPrice: num(18_000), FloorArea: num(30), PopularArea: "สุขุมวิท", District: "วัฒนา",
			Province: "กรุงเทพมหานคร", NearBTS: true, TransitStation: "BTS Asok",
		},
		{
			Title: "Silom grade A office", ListingType: listing.ListingTypeSaleAndRent, PropertyType: listing.PropertyOffice,
			RentPerArea: num(900), PricePerArea: num(150_000), FloorArea: num(250), PopularArea: "สีลม",
			District: "บางรัก", Province: "กรุงเทพมหานคร", NearBTS: true,
		},
		{
			Title: "Bang Na family house", ListingType: listing.ListingTypeSale, PropertyType: listing.PropertyHouse,
			Price: num(7_900_000), FloorArea: num(180), PopularArea: "บางนา", District: "บางนา",
			Province: "กรุงเทพมหานคร",
		},
		{
			Title: "Nonthaburi townhome", ListingType: listing.ListingTypeSale, PropertyType: listing.PropertyTownhome,
			OriginalPrice: num(3_200_000), FloorArea: num(120), Province: "นนทบุรี",
		},
		{
			Title: "Sold Ari condo", Status: listing.StatusSold, ListingType: listing.ListingTypeSale,
			PropertyType: listing.PropertyCondo, Price: num(4_000_000), PopularArea: "อารีย์", NearBTS: true,
		},
	}
}
