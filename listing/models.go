package listing

import "time"

type Purpose string

const (
	PurposeBuy    Purpose = "BUY"
	PurposeRent   Purpose = "RENT"
	PurposeInvest Purpose = "INVEST"
)

// Purposes lists the wizard's first-step choices in display order.
var Purposes = []Purpose{PurposeBuy, PurposeRent, PurposeInvest}

func (p Purpose) Valid() bool {
	switch p {
	case PurposeBuy, PurposeRent, PurposeInvest:
		return true
	}
	return false
}

type ListingType string

const (
	ListingTypeSale        ListingType = "SALE"
	ListingTypeRent        ListingType = "RENT"
	ListingTypeSaleAndRent ListingType = "SALE_AND_RENT"
)

// ListingTypes maps a purpose onto the listing types that can satisfy it.
func (p Purpose) ListingTypes() []ListingType {
	if p == PurposeRent {
		return []ListingType{ListingTypeRent, ListingTypeSaleAndRent}
	}
	return []ListingType{ListingTypeSale, ListingTypeSaleAndRent}
}

// Accepts reports whether a listing of type t can serve purpose p.
func (p Purpose) Accepts(t ListingType) bool {
	for _, lt := range p.ListingTypes() {
		if lt == t {
			return true
		}
	}
	return false
}

type PropertyType string

const (
	PropertyHouse      PropertyType = "HOUSE"
	PropertyCondo      PropertyType = "CONDO"
	PropertyTownhome   PropertyType = "TOWNHOME"
	PropertyLand       PropertyType = "LAND"
	PropertyOffice     PropertyType = "OFFICE"
	PropertyWarehouse  PropertyType = "WAREHOUSE"
	PropertyCommercial PropertyType = "COMMERCIAL"
)

var PropertyTypes = []PropertyType{
	PropertyHouse,
	PropertyCondo,
	PropertyTownhome,
	PropertyLand,
	PropertyOffice,
	PropertyWarehouse,
	PropertyCommercial,
}

func (t PropertyType) Valid() bool {
	for _, known := range PropertyTypes {
		if known == t {
			return true
		}
	}
	return false
}

// IsOffice reports whether the type is priced and sized as office space.
func (t PropertyType) IsOffice() bool {
	return t == PropertyOffice
}

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusPending  Status = "PENDING"
	StatusSold     Status = "SOLD"
	StatusRented   Status = "RENTED"
	StatusInactive Status = "INACTIVE"
)

// Listing is a read-only property record. Nil price pointers mean the field
// was never filled in; zero is kept as-is and treated as "price on request".
type Listing struct {
	ID                  string
	Title               string
	Description         string
	Status              Status
	ListingType         ListingType
	PropertyType        PropertyType
	Price               *float64
	OriginalPrice       *float64
	RentalPrice         *float64
	OriginalRentalPrice *float64
	PricePerArea        *float64
	RentPerArea         *float64
	FloorArea           *float64
	District            string
	Subdistrict         string
	Province            string
	PopularArea         string
	NearBTS             bool
	NearMRT             bool
	TransitStation      string
	ImageURL            string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (l Listing) NearTransit() bool {
	return l.NearBTS || l.NearMRT
}

// Filter narrows a Find call. Zero values mean "no constraint".
// FloorAreaMax is exclusive so adjacent size buckets never overlap.
type Filter struct {
	Statuses     []Status
	ListingTypes []ListingType
	PropertyType *PropertyType
	FloorAreaMin *float64
	FloorAreaMax *float64
	NearTransit  bool
	Limit        int
	// After resumes a scan strictly past this position in
	// (updated_at DESC, id DESC) order.
	After *Cursor
}

// Cursor is a keyset position in the listing scan order.
type Cursor struct {
	UpdatedAt time.Time
	ID        string
}

// CursorAt returns the position of l in the scan order.
func CursorAt(l Listing) Cursor {
	return Cursor{UpdatedAt: l.UpdatedAt, ID: l.ID}
}

// Precedes reports whether l comes strictly after c in the scan order.
func (c Cursor) Precedes(l Listing) bool {
	if l.UpdatedAt.Equal(c.UpdatedAt) {
		return l.ID < c.ID
	}
	return l.UpdatedAt.Before(c.UpdatedAt)
}
