// Package wizard drives the guided smart-match search. Each transition takes
// the client's State and returns the next one; nothing is kept server side.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"smartmatch/availability"
	"smartmatch/listing"
	"smartmatch/location"
	"smartmatch/logging"
	"smartmatch/search"
)

const (
	defaultPacing = 1500 * time.Millisecond

	searchFailedMessage = "We couldn't complete your search. Please try again."
)

var (
	ErrInvalidOption  = errors.New("wizard: invalid option")
	ErrNotSelectable  = errors.New("wizard: step takes no selection")
	ErrNoPreviousStep = errors.New("wizard: no previous step")
	ErrNotSearching   = errors.New("wizard: search not ready")
)

// Availability is the inventory pre-check consulted before each step.
type Availability interface {
	CheckPurpose(ctx context.Context) []string
	CheckPropertyType(ctx context.Context, purpose listing.Purpose) []string
	CheckOfficeSize(ctx context.Context, purpose listing.Purpose) []availability.SizeCount
	CheckBudget(ctx context.Context, c listing.Criteria, ranges []availability.BudgetRange) []string
	CheckTransit(ctx context.Context, c listing.Criteria) []string
	CheckLocation(ctx context.Context, c listing.Criteria) []string
}

type Searcher interface {
	Search(ctx context.Context, c listing.Criteria) (search.Result, error)
}

// Flags reports runtime feature switches.
type Flags interface {
	TransitQuestionEnabled(ctx context.Context) bool
}

type Controller struct {
	avail     Availability
	searcher  Searcher
	flags     Flags
	locations *location.Normalizer
	log       logrus.FieldLogger
	pacing    time.Duration
}

func NewController(avail Availability, searcher Searcher, flags Flags, log logrus.FieldLogger) *Controller {
	return &Controller{
		avail:     avail,
		searcher:  searcher,
		flags:     flags,
		locations: location.Default(),
		log:       logging.OrDefault(log),
		pacing:    defaultPacing,
	}
}

// WithPacing sets the pause between a finished search and the results step.
func (c *Controller) WithPacing(d time.Duration) *Controller {
	if d >= 0 {
		c.pacing = d
	}
	return c
}

func (c *Controller) WithLocations(n *location.Normalizer) *Controller {
	if n != nil {
		c.locations = n
	}
	return c
}

// Start opens a fresh wizard on the purpose step. Whether the transit step is
// part of this run is decided here and kept for the life of the state.
func (c *Controller) Start(ctx context.Context) State {
	st := State{
		Step:           StepPurpose,
		TransitEnabled: c.flags != nil && c.flags.TransitQuestionEnabled(ctx),
	}
	c.loadOptions(ctx, &st)
	return st
}

// Reset discards every choice and returns to the purpose step.
func (c *Controller) Reset(ctx context.Context) State {
	return c.Start(ctx)
}

// Select applies optionID to the current step and advances. Options are
// validated against the step's catalogue only; availability is advisory.
func (c *Controller) Select(ctx context.Context, st State, optionID string) (State, error) {
	optionID = strings.TrimSpace(optionID)
	next := st
	next.Error = ""

	switch st.Step {
	case StepPurpose:
		p := listing.Purpose(optionID)
		if !p.Valid() {
			return st, fmt.Errorf("%w: purpose %q", ErrInvalidOption, optionID)
		}
		next.clearFrom(StepPurpose)
		next.Criteria.Purpose = p
		next.Step = StepPropertyType

	case StepPropertyType:
		t := listing.PropertyType(optionID)
		if !t.Valid() {
			return st, fmt.Errorf("%w: property type %q", ErrInvalidOption, optionID)
		}
		next.clearFrom(StepPropertyType)
		next.Criteria.PropertyType = &t
		next.OfficeMode = t.IsOffice()
		if next.OfficeMode {
			next.Step = StepOfficeSize
		} else {
			next.Step = StepBudget
		}

	case StepOfficeSize:
		size, ok := availability.FindOfficeSize(optionID)
		if !ok {
			return st, fmt.Errorf("%w: office size %q", ErrInvalidOption, optionID)
		}
		next.clearFrom(StepOfficeSize)
		next.Criteria.OfficeSize = size.Range()
		next.Step = StepBudget

	case StepBudget:
		r, ok := availability.FindBudgetRange(st.Criteria.Purpose, optionID)
		if !ok {
			return st, fmt.Errorf("%w: budget %q", ErrInvalidOption, optionID)
		}
		next.clearFrom(StepBudget)
		budget := r.Range
		next.Criteria.Budget = &budget
		next.Step = c.afterBudget(next)

	case StepTransit:
		var near bool
		switch optionID {
		case availability.NearTransit:
			near = true
		case availability.AnyLocation:
		default:
			return st, fmt.Errorf("%w: transit %q", ErrInvalidOption, optionID)
		}
		next.clearFrom(StepTransit)
		next.Criteria.NearTransit = &near
		next.Step = StepArea

	case StepArea:
		if optionID == "" {
			return st, fmt.Errorf("%w: empty area", ErrInvalidOption)
		}
		next.clearFrom(StepArea)
		next.Criteria.Area = &optionID
		next.Step = StepSearching

	default:
		return st, fmt.Errorf("%w: %s", ErrNotSelectable, st.Step)
	}

	next.Criteria = next.Criteria.Clone()
	c.loadOptions(ctx, &next)
	return next, nil
}

// Back returns to the previous step, clearing the choice made there and
// every later one.
func (c *Controller) Back(ctx context.Context, st State) (State, error) {
	var prev Step
	switch st.Step {
	case StepPropertyType:
		prev = StepPurpose
	case StepOfficeSize:
		prev = StepPropertyType
	case StepBudget:
		if st.OfficeMode {
			prev = StepOfficeSize
		} else {
			prev = StepPropertyType
		}
	case StepTransit:
		prev = StepBudget
	case StepArea:
		prev = c.afterBudget(st)
		if prev == StepArea {
			prev = StepBudget
		}
	case StepSearching, StepResults:
		prev = StepArea
	default:
		return st, ErrNoPreviousStep
	}

	next := st
	next.Criteria = st.Criteria.Clone()
	next.clearFrom(prev)
	next.Step = prev
	c.loadOptions(ctx, &next)
	return next, nil
}

// Run executes the search for a state on the searching step. Criteria are
// frozen at entry. On success the state moves to results after the pacing
// delay; on failure it resets to the purpose step carrying an error message.
func (c *Controller) Run(ctx context.Context, st State) (State, error) {
	if st.Step != StepSearching {
		return st, fmt.Errorf("%w: at %s", ErrNotSearching, st.Step)
	}
	frozen := st.Criteria.Clone()

	res, err := c.searcher.Search(ctx, frozen)
	if err != nil {
		c.log.WithError(err).WithField("purpose", frozen.Purpose).Error("smart match search failed")
		failed := State{Step: StepPurpose, TransitEnabled: st.TransitEnabled, Error: searchFailedMessage}
		c.loadOptions(ctx, &failed)
		return failed, nil
	}

	if err := pause(ctx, c.pacing); err != nil {
		return st, err
	}

	done := st
	done.Criteria = frozen
	done.Step = StepResults
	done.Options = nil
	done.Results = res.Matches
	done.SessionID = res.SessionID
	done.SessionToken = res.SessionToken
	done.Error = ""
	return done, nil
}

func (c *Controller) afterBudget(st State) Step {
	if st.TransitEnabled {
		return StepTransit
	}
	return StepArea
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
