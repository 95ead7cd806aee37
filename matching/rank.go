package matching

import (
	"math/rand/v2"
	"slices"
	"sort"

	"smartmatch/listing"
	"smartmatch/location"
)

const (
	// MinScore is the exclusive cutoff: matches must score strictly above it.
	MinScore = 30
	// TopN caps the number of surfaced matches.
	TopN = 5

	commuteNearTransit = 15
	commuteOther       = 30
	commuteJitter      = 11
)

// Rand is the randomness source for display-only heuristics.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// PropertyMatch is one ranked listing as shown to the user.
type PropertyMatch struct {
	ListingID      string               `json:"listingId"`
	Title          string               `json:"title"`
	Price          float64              `json:"price"`
	ImageURL       string               `json:"imageUrl,omitempty"`
	Score          int                  `json:"score"`
	Reasons        []string             `json:"reasons"`
	Breakdown      []Factor             `json:"breakdown,omitempty"`
	ListingType    listing.ListingType  `json:"listingType"`
	PropertyType   listing.PropertyType `json:"propertyType"`
	PopularArea    string               `json:"popularArea,omitempty"`
	District       string               `json:"district,omitempty"`
	Province       string               `json:"province,omitempty"`
	FloorArea      *float64             `json:"floorArea,omitempty"`
	NearTransit    bool                 `json:"nearTransit"`
	TransitStation string               `json:"transitStation,omitempty"`
	CommuteMinutes int                  `json:"commuteMinutes"`
}

type Engine struct {
	scorer *Scorer
	rng    Rand
}

func NewEngine(locations *location.Normalizer) *Engine {
	return &Engine{
		scorer: NewScorer(locations),
		rng:    globalRand{},
	}
}

func (e *Engine) WithRand(r Rand) *Engine {
	e.rng = r
	return e
}

// Score exposes the underlying scorer.
func (e *Engine) Score(l listing.Listing, c listing.Criteria) Result {
	return e.scorer.Score(l, c)
}

// Rank scores every candidate, drops those at or below MinScore, orders the
// rest by score descending (ties keep candidate order) and keeps the top N.
func (e *Engine) Rank(candidates []listing.Listing, c listing.Criteria) []PropertyMatch {
	r := e.NewRanking(c)
	r.Offer(candidates...)
	return r.Matches()
}

type scored struct {
	l   listing.Listing
	res Result
}

// Ranking keeps a running top N over candidates offered in scan order, so a
// search can score the whole inventory one page at a time.
type Ranking struct {
	engine   *Engine
	criteria listing.Criteria
	kept     []scored
}

func (e *Engine) NewRanking(c listing.Criteria) *Ranking {
	return &Ranking{engine: e, criteria: c, kept: make([]scored, 0, TopN+1)}
}

// Offer scores candidates and keeps them if they make the current top N.
// A candidate tying an already kept one ranks after it.
func (r *Ranking) Offer(candidates ...listing.Listing) {
	for _, l := range candidates {
		res := r.engine.scorer.Score(l, r.criteria)
		if res.Score <= MinScore {
			continue
		}
		at := sort.Search(len(r.kept), func(i int) bool {
			return r.kept[i].res.Score < res.Score
		})
		if at >= TopN {
			continue
		}
		r.kept = slices.Insert(r.kept, at, scored{l: l, res: res})
		if len(r.kept) > TopN {
			r.kept = r.kept[:TopN]
		}
	}
}

// Matches presents the current top N, best first.
func (r *Ranking) Matches() []PropertyMatch {
	out := make([]PropertyMatch, 0, len(r.kept))
	for _, s := range r.kept {
		out = append(out, r.engine.present(s.l, s.res, r.criteria.Purpose))
	}
	return out
}

func (e *Engine) present(l listing.Listing, res Result, p listing.Purpose) PropertyMatch {
	return PropertyMatch{
		ListingID:      l.ID,
		Title:          l.Title,
		Price:          listing.EffectivePrice(l, p),
		ImageURL:       l.ImageURL,
		Score:          res.Score,
		Reasons:        res.Reasons,
		Breakdown:      res.Breakdown,
		ListingType:    l.ListingType,
		PropertyType:   l.PropertyType,
		PopularArea:    l.PopularArea,
		District:       l.District,
		Province:       l.Province,
		FloorArea:      l.FloorArea,
		NearTransit:    l.NearTransit(),
		TransitStation: l.TransitStation,
		CommuteMinutes: e.commuteMinutes(l),
	}
}

// commuteMinutes is a rough display estimate. It never feeds the score.
func (e *Engine) commuteMinutes(l listing.Listing) int {
	base := commuteOther
	if l.NearTransit() {
		base = commuteNearTransit
	}
	return base + e.rng.IntN(commuteJitter)
}
