package diagnostics

import (
	"log/slog"
	"sync"

	"github.com/funvibe/tower/internal/tower"
)

// Reporter is a tower.Reporter collecting diagnostics for every call that
// did not resolve to exactly one applicable candidate.
type Reporter struct {
	logger *slog.Logger

	mu       sync.Mutex
	errors   []*DiagnosticError
	resolved int
}

var _ tower.Reporter = (*Reporter)(nil)

// NewReporter creates a reporter logging every diagnostic at warn level.
// A nil logger disables logging.
func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{logger: logger}
}

func (r *Reporter) Resolved(call *tower.Call, candidates []*tower.Candidate) {
	switch applicability(candidates) {
	case tower.Applicable:
		r.mu.Lock()
		r.resolved++
		r.mu.Unlock()
	case tower.Uncertain:
		r.add(withCandidates(NewError(ErrR004, call.String(), "applicability depends on untyped arguments"), candidates))
	default:
		r.add(withCandidates(NewError(ErrR002, call.String(), "%d candidate(s) found, none applicable", len(candidates)), candidates))
	}
}

func (r *Reporter) Unresolved(call *tower.Call) {
	r.add(NewError(ErrR001, call.String(), "%s", call.Name))
}

func (r *Reporter) Ambiguous(call *tower.Call, candidates []*tower.Candidate) {
	r.add(withCandidates(NewError(ErrR003, call.String(), "%d candidates are equally applicable", len(candidates)), candidates))
}

// Errors returns the collected diagnostics in report order.
func (r *Reporter) Errors() []*DiagnosticError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*DiagnosticError, len(r.errors))
	copy(out, r.errors)
	return out
}

// ResolvedCount returns the number of calls resolved without diagnostic.
func (r *Reporter) ResolvedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}

// Reset forgets everything collected so far.
func (r *Reporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = nil
	r.resolved = 0
}

func (r *Reporter) add(err *DiagnosticError) {
	r.mu.Lock()
	r.errors = append(r.errors, err)
	r.mu.Unlock()
	if r.logger != nil {
		r.logger.Warn("diagnostic", "code", string(err.Code), "subject", err.Subject, "message", err.Message)
	}
}

func applicability(candidates []*tower.Candidate) tower.Applicability {
	if len(candidates) == 0 {
		return tower.Inapplicable
	}
	return candidates[0].Applicability
}

func withCandidates(err *DiagnosticError, candidates []*tower.Candidate) *DiagnosticError {
	for _, c := range candidates {
		err.Candidates = append(err.Candidates, c.String())
	}
	return err
}
