package tower_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/tower/internal/checker"
	"github.com/funvibe/tower/internal/symbols"
	"github.com/funvibe/tower/internal/tower"
)

// traceRecorder keeps every lookup of a resolution.
type traceRecorder struct {
	probes []tower.Probe
	skips  []string
}

func (r *traceRecorder) Probe(p tower.Probe) { r.probes = append(r.probes, p) }

func (r *traceRecorder) Skip(level string, group tower.Group) {
	r.skips = append(r.skips, level+" @"+group.String())
}

// mainProbes returns the probes not made by the invoke fallback.
func (r *traceRecorder) mainProbes() []tower.Probe {
	var out []tower.Probe
	for _, p := range r.probes {
		if !p.Invoke {
			out = append(out, p)
		}
	}
	return out
}

func (r *traceRecorder) groups() []string {
	out := make([]string, len(r.probes))
	for i, p := range r.probes {
		out[i] = p.Group.String()
	}
	return out
}

type countingReporter struct {
	resolved, unresolved, ambiguous int
}

func (r *countingReporter) Resolved(*tower.Call, []*tower.Candidate)  { r.resolved++ }
func (r *countingReporter) Unresolved(*tower.Call)                    { r.unresolved++ }
func (r *countingReporter) Ambiguous(*tower.Call, []*tower.Candidate) { r.ambiguous++ }

func (r *countingReporter) total() int { return r.resolved + r.unresolved + r.ambiguous }

type fixture struct {
	universe *symbols.Universe
	trace    *traceRecorder
	reporter *countingReporter
	resolver *tower.Resolver
}

func newFixture(u *symbols.Universe, opts ...tower.Option) *fixture {
	f := &fixture{universe: u, trace: &traceRecorder{}, reporter: &countingReporter{}}
	opts = append([]tower.Option{tower.WithTracer(f.trace), tower.WithReporter(f.reporter)}, opts...)
	f.resolver = tower.NewResolver(u, checker.New(u), opts...)
	return f
}

func (f *fixture) resolve(t *testing.T, env *tower.Environment, call *tower.Call) *tower.Outcome {
	t.Helper()
	out, err := f.resolver.Resolve(context.Background(), env, call)
	require.NoError(t, err)
	require.Equal(t, 1, f.reporter.total(), "exactly one terminal signal per call")
	return out
}

func mustEnv(t *testing.T, elements []tower.Element, locals, imports []symbols.Scope) *tower.Environment {
	t.Helper()
	env, err := tower.NewEnvironment(elements, locals, imports)
	require.NoError(t, err)
	return env
}

func single(t *testing.T, out *tower.Outcome) *tower.Candidate {
	t.Helper()
	c, ok := out.Single()
	require.Truef(t, ok, "expected a single successful candidate, got %s with %d candidate(s)", out.Kind, len(out.Candidates))
	return c
}

func best(t *testing.T, out *tower.Outcome) string {
	t.Helper()
	require.NotNil(t, out.Best)
	return out.Best.String()
}

// receiverOf declares a class and returns an implicit receiver of its type.
func receiverOf(u *symbols.Universe, c *symbols.Class) *tower.ImplicitReceiver {
	u.DeclareClass("app", c)
	return tower.NewImplicitReceiver(c.Name, c.Type())
}
