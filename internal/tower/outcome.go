package tower

import (
	"github.com/google/uuid"
)

type OutcomeKind int

const (
	Unresolved OutcomeKind = iota
	Resolved
	Ambiguous
)

func (k OutcomeKind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case Ambiguous:
		return "ambiguous"
	}
	return "unresolved"
}

// Stats counts the work done for one call.
type Stats struct {
	Probes     int // Levels looked up
	Skipped    int // Levels left out because their scope was known to be empty
	Dropped    int // Scheduler steps abandoned after a better group succeeded
	Tasks      int
	Candidates int // Candidates submitted to the collectors
}

// Probe describes one level lookup.
type Probe struct {
	Group  Group
	Level  string
	Call   string
	Found  int
	Empty  bool
	Invoke bool // Made by the invoke fallback
}

// Outcome is the result of resolving one call.
//
// Candidates holds the contributing candidates: the applicable ones of the
// best successful group, or the inapplicable ones of the best group when
// nothing succeeded. Best is nil when nothing was found at all.
type Outcome struct {
	SessionID     uuid.UUID
	Call          *Call
	Kind          OutcomeKind
	Candidates    []*Candidate
	Best          *Group
	Applicability Applicability
	Records       []*Record
	Stats         Stats
}

// Single returns the only candidate of a successful resolution.
func (o *Outcome) Single() (*Candidate, bool) {
	if o.Kind != Resolved || len(o.Candidates) != 1 || !o.Applicability.IsSuccess() {
		return nil, false
	}
	return o.Candidates[0], true
}

// Tracer observes the lookups of a resolution.
type Tracer interface {
	Probe(p Probe)
	Skip(level string, group Group)
}

// Reporter receives exactly one terminal signal per resolved call.
type Reporter interface {
	Resolved(call *Call, candidates []*Candidate)
	Unresolved(call *Call)
	Ambiguous(call *Call, candidates []*Candidate)
}
