package listing

// EffectivePrice resolves the price a listing is judged on for purpose.
// The chain is: primary price for the purpose, its "original" fallback,
// per-area price times floor area for offices, then the other purpose's
// primary and original prices. Zero means no usable price.
func EffectivePrice(l Listing, p Purpose) float64 {
	if v, ok := purposePrice(l, p); ok {
		return v
	}
	if v, ok := areaPrice(l, p); ok {
		return v
	}
	if v, ok := purposePrice(l, crossPurpose(p)); ok {
		return v
	}
	return 0
}

type PriceKind int

const (
	// Priced carries a usable total price.
	Priced PriceKind = iota
	// Wildcard is "price on request": compatible with every budget.
	Wildcard
	// Ambiguous has a per-area price but no floor area to total it with.
	Ambiguous
)

type BudgetView struct {
	Kind  PriceKind
	Value float64
}

// Fits reports whether the listing may be offered under budget r.
func (b BudgetView) Fits(r Range) bool {
	switch b.Kind {
	case Wildcard:
		return true
	case Priced:
		return r.Contains(b.Value)
	default:
		return false
	}
}

// BudgetPrice is the availability view of a listing's price. It never crosses
// purposes: a sale price says nothing about a monthly rent bucket.
func BudgetPrice(l Listing, p Purpose) BudgetView {
	if v, ok := purposePrice(l, p); ok {
		return BudgetView{Kind: Priced, Value: v}
	}
	if l.PropertyType.IsOffice() {
		if v, ok := areaPrice(l, p); ok {
			return BudgetView{Kind: Priced, Value: v}
		}
		if positive(perArea(l, p)) && !positive(l.FloorArea) {
			return BudgetView{Kind: Ambiguous}
		}
	}
	return BudgetView{Kind: Wildcard}
}

func purposePrice(l Listing, p Purpose) (float64, bool) {
	primary, original := l.Price, l.OriginalPrice
	if p == PurposeRent {
		primary, original = l.RentalPrice, l.OriginalRentalPrice
	}
	if positive(primary) {
		return *primary, true
	}
	if positive(original) {
		return *original, true
	}
	return 0, false
}

func areaPrice(l Listing, p Purpose) (float64, bool) {
	if !l.PropertyType.IsOffice() {
		return 0, false
	}
	rate := perArea(l, p)
	if !positive(rate) || !positive(l.FloorArea) {
		return 0, false
	}
	return *rate * *l.FloorArea, true
}

func perArea(l Listing, p Purpose) *float64 {
	if p == PurposeRent {
		return l.RentPerArea
	}
	return l.PricePerArea
}

func crossPurpose(p Purpose) Purpose {
	if p == PurposeRent {
		return PurposeBuy
	}
	return PurposeRent
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}
