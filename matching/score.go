// Package matching scores listings against wizard criteria and ranks the
// survivors for display.
package matching

import (
	"fmt"

	"smartmatch/listing"
	"smartmatch/location"
)

const (
	pricePoints        = 40
	priceRangeSoft     = 30
	priceMaxOnlySoft   = 25
	purposePoints      = 20
	areaExactPoints    = 30
	areaSynonymPoints  = 25
	areaMetroPoints    = 10
	transitPoints      = 10
	transitBonusPoints = 5
	typeMatchPoints    = 30
	typeMismatchPoints = -20

	// Soft tolerance above the budget ceiling, in percent of the ceiling: a
	// min+max range allows 15%, a max-only budget allows 10%. Bounds are
	// inclusive and compared as price*100 <= ceiling*pct so round ceilings
	// stay exact.
	rangeTolerancePct   = 115
	maxOnlyTolerancePct = 110
)

// Factor is one non-zero contribution to a score.
type Factor struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
}

type Result struct {
	Score     int
	Reasons   []string
	Breakdown []Factor
}

// Raw is the unclamped sum of the breakdown.
func (r Result) Raw() int {
	total := 0
	for _, f := range r.Breakdown {
		total += f.Points
	}
	return total
}

type Scorer struct {
	locations *location.Normalizer
}

func NewScorer(locations *location.Normalizer) *Scorer {
	if locations == nil {
		locations = location.Default()
	}
	return &Scorer{locations: locations}
}

// Score weighs l against c. Factors are evaluated in a fixed order (price,
// purpose, area, transit, property type) and the total is clamped to [0,100].
func (s *Scorer) Score(l listing.Listing, c listing.Criteria) Result {
	var res Result
	add := func(label string, points int, reason string) {
		if points == 0 {
			return
		}
		res.Breakdown = append(res.Breakdown, Factor{Label: label, Points: points})
		res.Reasons = append(res.Reasons, reason)
	}

	price := listing.EffectivePrice(l, c.Purpose)
	if pts := priceScore(price, c.Budget); pts > 0 {
		add("price", pts, priceReason(pts, price))
	}

	if c.Purpose.Accepts(l.ListingType) {
		add("purpose", purposePoints, purposeReason(c.Purpose))
	}

	if c.Area != nil && *c.Area != "" {
		area := *c.Area
		switch {
		case location.Same(area, l.PopularArea):
			add("area", areaExactPoints, fmt.Sprintf("Located in %s", l.PopularArea))
		case s.locations.Mentions(area, l.PopularArea, l.District, l.Subdistrict, l.Title, l.Description):
			add("area", areaSynonymPoints, fmt.Sprintf("Close to %s", area))
		case s.locations.InMetro(l.Province):
			add("area", areaMetroPoints, fmt.Sprintf("Within greater %s", l.Province))
		}
	}

	if l.NearTransit() {
		if c.WantsTransit() {
			add("transit", transitPoints, transitReason(l))
		} else {
			add("transit", transitBonusPoints, transitReason(l))
		}
	}

	if c.PropertyType != nil {
		if *c.PropertyType == l.PropertyType {
			add("propertyType", typeMatchPoints, fmt.Sprintf("Property type is %s", typeLabel(l.PropertyType)))
		} else {
			add("propertyType", typeMismatchPoints, fmt.Sprintf("Property type is %s, not %s", typeLabel(l.PropertyType), typeLabel(*c.PropertyType)))
		}
	}

	res.Score = clamp(res.Raw(), 0, 100)
	return res
}

func priceScore(price float64, budget *listing.Range) int {
	if price <= 0 || budget == nil {
		return 0
	}
	lo, hi := budget.Min, budget.Max
	switch {
	case lo != nil && hi != nil:
		if price >= *lo && price <= *hi {
			return pricePoints
		}
		if price > *hi && withinPct(price, *hi, rangeTolerancePct) {
			return priceRangeSoft
		}
	case hi != nil:
		if price <= *hi {
			return pricePoints
		}
		if withinPct(price, *hi, maxOnlyTolerancePct) {
			return priceMaxOnlySoft
		}
	case lo != nil:
		if price >= *lo {
			return pricePoints
		}
	}
	return 0
}

func withinPct(price, ceiling float64, pct int) bool {
	return price*100 <= ceiling*float64(pct)
}

func priceReason(points int, price float64) string {
	if points == pricePoints {
		return fmt.Sprintf("Price %s fits your budget", formatBaht(price))
	}
	return fmt.Sprintf("Price %s is slightly above your budget", formatBaht(price))
}

func purposeReason(p listing.Purpose) string {
	if p == listing.PurposeRent {
		return "Available for rent"
	}
	return "Available for sale"
}

func transitReason(l listing.Listing) string {
	if l.TransitStation != "" {
		return fmt.Sprintf("Near %s", l.TransitStation)
	}
	if l.NearMRT && !l.NearBTS {
		return "Near MRT"
	}
	return "Near BTS/MRT"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
