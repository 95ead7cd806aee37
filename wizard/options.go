package wizard

import (
	"context"

	"smartmatch/availability"
	"smartmatch/listing"
)

var purposeLabels = map[listing.Purpose]string{
	listing.PurposeBuy:    "Buy",
	listing.PurposeRent:   "Rent",
	listing.PurposeInvest: "Invest",
}

var propertyTypeLabels = map[listing.PropertyType]string{
	listing.PropertyHouse:      "House",
	listing.PropertyCondo:      "Condo",
	listing.PropertyTownhome:   "Townhome",
	listing.PropertyLand:       "Land",
	listing.PropertyOffice:     "Office",
	listing.PropertyWarehouse:  "Warehouse",
	listing.PropertyCommercial: "Commercial",
}

// loadOptions fills st.Options for the current step. An empty availability
// answer means the check could not narrow anything, so every option stays
// enabled.
func (c *Controller) loadOptions(ctx context.Context, st *State) {
	var (
		opts      []Option
		available []string
	)

	switch st.Step {
	case StepPurpose:
		for _, p := range listing.Purposes {
			opts = append(opts, Option{ID: string(p), Label: purposeLabels[p]})
		}
		available = c.avail.CheckPurpose(ctx)

	case StepPropertyType:
		for _, t := range listing.PropertyTypes {
			opts = append(opts, Option{ID: string(t), Label: propertyTypeLabels[t]})
		}
		available = c.avail.CheckPropertyType(ctx, st.Criteria.Purpose)

	case StepOfficeSize:
		counts := map[string]int{}
		for _, sc := range c.avail.CheckOfficeSize(ctx, st.Criteria.Purpose) {
			counts[sc.Size] = sc.Count
			available = append(available, sc.Size)
		}
		for _, s := range availability.OfficeSizes {
			opts = append(opts, Option{ID: s.ID, Label: s.Label, Count: counts[s.ID]})
		}

	case StepBudget:
		for _, r := range availability.DefaultBudgetRanges[st.Criteria.Purpose] {
			opts = append(opts, Option{ID: r.ID, Label: r.Label})
		}
		available = c.avail.CheckBudget(ctx, st.Criteria, nil)

	case StepTransit:
		opts = []Option{
			{ID: availability.NearTransit, Label: "Near BTS/MRT"},
			{ID: availability.AnyLocation, Label: "Any location"},
		}
		available = c.avail.CheckTransit(ctx, st.Criteria)

	case StepArea:
		for _, a := range c.locations.Areas() {
			opts = append(opts, Option{ID: a, Label: a})
		}
		available = c.avail.CheckLocation(ctx, st.Criteria)

	default:
		st.Options = nil
		return
	}

	markAvailable(opts, available)
	st.Options = opts
}

func markAvailable(opts []Option, available []string) {
	if len(available) == 0 {
		for i := range opts {
			opts[i].Available = true
		}
		return
	}
	set := make(map[string]struct{}, len(available))
	for _, id := range available {
		set[id] = struct{}{}
	}
	for i := range opts {
		_, opts[i].Available = set[opts[i].ID]
	}
}
