package listing

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPurpose      = errors.New("listing: invalid purpose")
	ErrInvalidPropertyType = errors.New("listing: invalid property type")
	ErrOfficeSizeNotOffice = errors.New("listing: office size requires office property type")
	ErrInvalidRange        = errors.New("listing: range min exceeds max")
)

// Range is an optional lower/upper pair. A nil bound is open.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Between builds a closed range.
func Between(lo, hi float64) *Range {
	return &Range{Min: &lo, Max: &hi}
}

// AtLeast builds a range open at the top.
func AtLeast(lo float64) *Range {
	return &Range{Min: &lo}
}

// Contains treats both bounds as inclusive.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func (r Range) valid() bool {
	return r.Min == nil || r.Max == nil || *r.Min <= *r.Max
}

func (r *Range) clone() *Range {
	if r == nil {
		return nil
	}
	out := &Range{}
	if r.Min != nil {
		v := *r.Min
		out.Min = &v
	}
	if r.Max != nil {
		v := *r.Max
		out.Max = &v
	}
	return out
}

// Criteria is what the wizard has locked in so far.
type Criteria struct {
	Purpose      Purpose       `json:"purpose"`
	PropertyType *PropertyType `json:"propertyType,omitempty"`
	OfficeSize   *Range        `json:"officeSize,omitempty"`
	Budget       *Range        `json:"budget,omitempty"`
	Area         *string       `json:"area,omitempty"`
	NearTransit  *bool         `json:"nearTransit,omitempty"`
}

// OfficeMode reports whether the office-size step applies.
func (c Criteria) OfficeMode() bool {
	return c.PropertyType != nil && c.PropertyType.IsOffice()
}

// WantsTransit is true only for an explicit near-transit request.
func (c Criteria) WantsTransit() bool {
	return c.NearTransit != nil && *c.NearTransit
}

func (c Criteria) Validate() error {
	if !c.Purpose.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPurpose, c.Purpose)
	}
	if c.PropertyType != nil && !c.PropertyType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPropertyType, *c.PropertyType)
	}
	if c.OfficeSize != nil && !c.OfficeMode() {
		return ErrOfficeSizeNotOffice
	}
	if c.OfficeSize != nil && !c.OfficeSize.valid() {
		return fmt.Errorf("%w: office size", ErrInvalidRange)
	}
	if c.Budget != nil && !c.Budget.valid() {
		return fmt.Errorf("%w: budget", ErrInvalidRange)
	}
	return nil
}

// Clone returns a deep copy so a running search cannot observe later edits.
func (c Criteria) Clone() Criteria {
	out := Criteria{
		Purpose:    c.Purpose,
		OfficeSize: c.OfficeSize.clone(),
		Budget:     c.Budget.clone(),
	}
	if c.PropertyType != nil {
		v := *c.PropertyType
		out.PropertyType = &v
	}
	if c.Area != nil {
		v := *c.Area
		out.Area = &v
	}
	if c.NearTransit != nil {
		v := *c.NearTransit
		out.NearTransit = &v
	}
	return out
}

// FilterFor builds the store filter for active listings serving purpose and
// matching the structural criteria already locked in. Budget and area are
// evaluated in memory by the callers because of the price fallback rules.
func FilterFor(c Criteria, limit int) Filter {
	f := Filter{
		Statuses:     []Status{StatusActive},
		ListingTypes: c.Purpose.ListingTypes(),
		Limit:        limit,
	}
	if c.PropertyType != nil {
		v := *c.PropertyType
		f.PropertyType = &v
	}
	if c.OfficeSize != nil && c.OfficeMode() {
		f.FloorAreaMin = c.OfficeSize.Min
		f.FloorAreaMax = c.OfficeSize.Max
	}
	f.NearTransit = c.WantsTransit()
	return f
}
