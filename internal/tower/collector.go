package tower

// Oracle decides whether a candidate can be called with the arguments of a call.
type Oracle interface {
	IsApplicable(candidate *Candidate, call *Call) Applicability
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(candidate *Candidate, call *Call) Applicability

func (f OracleFunc) IsApplicable(candidate *Candidate, call *Call) Applicability {
	return f(candidate, call)
}

// Record is one submission to a Collector.
type Record struct {
	Candidate *Candidate
	// Contributing is false once a better group or a better verdict replaced the candidate.
	Contributing bool
}

// Collector accumulates the candidates of one call. Until something succeeds
// the best verdict wins; once a group succeeded only a strictly better group
// can replace it, and the verdict only breaks ties inside one group. The
// watermark only ever improves.
type Collector struct {
	oracle Oracle

	best          Group
	hasBest       bool
	applicability Applicability
	current       []*Record
	records       []*Record
}

// NewCollector creates an empty collector judging candidates with oracle.
func NewCollector(oracle Oracle) *Collector {
	return &Collector{oracle: oracle}
}

// Submit asks the oracle about candidate, stamps it with group and keeps it
// if it is at least as good as the current best set.
func (c *Collector) Submit(candidate *Candidate, group Group) Applicability {
	candidate.Group = group
	candidate.Applicability = c.oracle.IsApplicable(candidate, candidate.Call)
	rec := &Record{Candidate: candidate}
	c.records = append(c.records, rec)

	app := candidate.Applicability
	if c.replacedBy(app, group) {
		for _, r := range c.current {
			r.Contributing = false
		}
		c.current = nil
		c.best = group
		c.hasBest = true
		c.applicability = app
	}
	if app == c.applicability && group.Equal(c.best) {
		rec.Contributing = true
		c.current = append(c.current, rec)
	}
	return app
}

// replacedBy reports whether a candidate judged app at group displaces the
// current best set.
func (c *Collector) replacedBy(app Applicability, group Group) bool {
	switch {
	case !c.hasBest:
		return true
	case app.IsSuccess() && c.applicability.IsSuccess():
		return group.Less(c.best) || (group.Equal(c.best) && app > c.applicability)
	case app.IsSuccess() != c.applicability.IsSuccess():
		return app.IsSuccess()
	}
	return group.Less(c.best)
}

// IsSuccess reports whether some candidate was found applicable (or uncertain).
func (c *Collector) IsSuccess() bool {
	return c.hasBest && c.applicability.IsSuccess()
}

// IsSuccessfulAtOrAbove reports whether a successful candidate exists at
// group or at a better one.
func (c *Collector) IsSuccessfulAtOrAbove(group Group) bool {
	return c.IsSuccess() && c.best.Compare(group) <= 0
}

// ShouldStopAt reports whether a group strictly better than group already succeeded.
func (c *Collector) ShouldStopAt(group Group) bool {
	return c.IsSuccess() && c.best.Less(group)
}

// CurrentBest returns the group of the current best set.
func (c *Collector) CurrentBest() (Group, bool) {
	return c.best, c.hasBest
}

// Applicability returns the verdict shared by the current best set.
func (c *Collector) Applicability() Applicability {
	return c.applicability
}

// Candidates returns the current best set in submission order.
func (c *Collector) Candidates() []*Candidate {
	out := make([]*Candidate, len(c.current))
	for i, r := range c.current {
		out[i] = r.Candidate
	}
	return out
}

// Records returns every submission in order.
func (c *Collector) Records() []*Record {
	return c.records
}

// Reset forgets the current best set. Past records stay.
func (c *Collector) Reset() {
	for _, r := range c.current {
		r.Contributing = false
	}
	c.current = nil
	c.hasBest = false
	c.best = Group{}
	c.applicability = Inapplicable
}
