package availability

import "smartmatch/listing"

// Transit step option ids.
const (
	NearTransit = "NEAR_TRANSIT"
	AnyLocation = "ANY_LOCATION"
)

// BudgetRange is one selectable budget bucket. Bounds are inclusive.
type BudgetRange struct {
	ID    string
	Label string
	Range listing.Range
}

func budget(id, label string, lo float64, hi *float64) BudgetRange {
	return BudgetRange{ID: id, Label: label, Range: listing.Range{Min: &lo, Max: hi}}
}

func bound(v float64) *float64 { return &v }

var saleBudgets = []BudgetRange{
	budget("under-2m", "Under ฿2M", 0, bound(2_000_000)),
	budget("2m-3m", "฿2M - ฿3M", 2_000_000, bound(3_000_000)),
	budget("3m-5m", "฿3M - ฿5M", 3_000_000, bound(5_000_000)),
	budget("5m-10m", "฿5M - ฿10M", 5_000_000, bound(10_000_000)),
	budget("10m-plus", "฿10M+", 10_000_000, nil),
}

var rentBudgets = []BudgetRange{
	budget("under-10k", "Under ฿10K / month", 0, bound(10_000)),
	budget("10k-20k", "฿10K - ฿20K / month", 10_000, bound(20_000)),
	budget("20k-50k", "฿20K - ฿50K / month", 20_000, bound(50_000)),
	budget("50k-100k", "฿50K - ฿100K / month", 50_000, bound(100_000)),
	budget("100k-plus", "฿100K+ / month", 100_000, nil),
}

// DefaultBudgetRanges are the budget buckets offered per purpose.
var DefaultBudgetRanges = map[listing.Purpose][]BudgetRange{
	listing.PurposeBuy:    saleBudgets,
	listing.PurposeInvest: saleBudgets,
	listing.PurposeRent:   rentBudgets,
}

// FindBudgetRange looks up a bucket id among the defaults for purpose.
func FindBudgetRange(p listing.Purpose, id string) (BudgetRange, bool) {
	for _, r := range DefaultBudgetRanges[p] {
		if r.ID == id {
			return r, true
		}
	}
	return BudgetRange{}, false
}

// OfficeSize is a floor-area bucket in square metres. MaxArea is exclusive;
// nil means unbounded.
type OfficeSize struct {
	ID      string
	Label   string
	MinArea float64
	MaxArea *float64
}

var OfficeSizes = []OfficeSize{
	{ID: "S", Label: "Under 100 sqm", MinArea: 0, MaxArea: bound(100)},
	{ID: "M", Label: "100 - 300 sqm", MinArea: 100, MaxArea: bound(300)},
	{ID: "L", Label: "300 - 1,000 sqm", MinArea: 300, MaxArea: bound(1000)},
	{ID: "XL", Label: "1,000+ sqm", MinArea: 1000},
}

func FindOfficeSize(id string) (OfficeSize, bool) {
	for _, s := range OfficeSizes {
		if s.ID == id {
			return s, true
		}
	}
	return OfficeSize{}, false
}

func (s OfficeSize) Holds(area float64) bool {
	return area >= s.MinArea && (s.MaxArea == nil || area < *s.MaxArea)
}

// Range converts the bucket into criteria form.
func (s OfficeSize) Range() *listing.Range {
	lo := s.MinArea
	r := &listing.Range{Min: &lo}
	if s.MaxArea != nil {
		hi := *s.MaxArea
		r.Max = &hi
	}
	return r
}

// SizeCount reports how many live offices fall in a bucket.
type SizeCount struct {
	Size  string `json:"size"`
	Count int    `json:"count"`
}
