package wizard

import (
	"smartmatch/listing"
	"smartmatch/matching"
)

type Step string

const (
	StepPurpose      Step = "PURPOSE"
	StepPropertyType Step = "PROPERTY_TYPE"
	StepOfficeSize   Step = "OFFICE_SIZE"
	StepBudget       Step = "BUDGET"
	StepTransit      Step = "TRANSIT"
	StepArea         Step = "AREA"
	StepSearching    Step = "SEARCHING"
	StepResults      Step = "RESULTS"
)

// flow is the full step order; optional steps are skipped at runtime.
var flow = []Step{
	StepPurpose,
	StepPropertyType,
	StepOfficeSize,
	StepBudget,
	StepTransit,
	StepArea,
	StepSearching,
	StepResults,
}

var stepNumbers = map[Step]float64{
	StepPurpose:      1,
	StepPropertyType: 1.5,
	StepOfficeSize:   1.7,
	StepBudget:       2,
	StepTransit:      2.5,
	StepArea:         3,
	StepSearching:    4,
	StepResults:      9,
}

// Number is the step's position as shown in the UI.
func (s Step) Number() float64 {
	return stepNumbers[s]
}

func (s Step) index() int {
	for i, f := range flow {
		if f == s {
			return i
		}
	}
	return -1
}

// Option is one choice on the current step. Unavailable options have no live
// inventory behind them and are shown disabled.
type Option struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Count     int    `json:"count,omitempty"`
	Available bool   `json:"available"`
}

// State is the whole wizard, held by the client and passed back on every
// transition.
type State struct {
	Step           Step                     `json:"step"`
	Criteria       listing.Criteria         `json:"criteria"`
	OfficeMode     bool                     `json:"officeMode"`
	TransitEnabled bool                     `json:"transitEnabled"`
	Options        []Option                 `json:"options,omitempty"`
	SessionID      *string                  `json:"sessionId,omitempty"`
	SessionToken   *string                  `json:"sessionToken,omitempty"`
	Results        []matching.PropertyMatch `json:"results,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

// clearFrom drops every choice made on step s or after it.
func (st *State) clearFrom(s Step) {
	at := s.index()
	if at <= StepPurpose.index() {
		st.Criteria = listing.Criteria{}
	}
	if at <= StepPropertyType.index() {
		st.Criteria.PropertyType = nil
		st.OfficeMode = false
	}
	if at <= StepOfficeSize.index() {
		st.Criteria.OfficeSize = nil
	}
	if at <= StepBudget.index() {
		st.Criteria.Budget = nil
	}
	if at <= StepTransit.index() {
		st.Criteria.NearTransit = nil
	}
	if at <= StepArea.index() {
		st.Criteria.Area = nil
	}
	st.Results = nil
	st.SessionID = nil
	st.SessionToken = nil
	st.Error = ""
}
