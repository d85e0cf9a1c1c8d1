package tower_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/tower/internal/config"
	"github.com/funvibe/tower/internal/logging"
	"github.com/funvibe/tower/internal/symbols"
	"github.com/funvibe/tower/internal/tower"
	"github.com/funvibe/tower/internal/typesystem"
)

func TestTopLevelFunctionBehindImplicitReceiver(t *testing.T) {
	u := symbols.NewUniverse("")
	this := receiverOf(u, symbols.NewClass("Foo", symbols.ClassKindClass))
	list := typesystem.MustParse("MutableList<Int>")
	addTo := u.Define("app", symbols.NewFunction("addTo", typesystem.Unit, list, typesystem.Int))
	env := mustEnv(t, []tower.Element{
		{Receiver: this},
		{Scope: u.Package("app")},
	}, nil, nil)

	f := newFixture(u)
	out := f.resolve(t, env, tower.NewCall("addTo", list, typesystem.TIntLiteral{Value: 1}))

	c := single(t, out)
	assert.Same(t, addTo, c.Symbol)
	assert.Equal(t, "NonLocal(1)", best(t, out))
	assert.Equal(t, tower.NoExplicitReceiver, c.ExplicitReceiverKind)
	assert.Equal(t, 1, f.reporter.resolved)

	main := f.trace.mainProbes()
	require.Len(t, main, 3)
	assert.Equal(t, "Implicit(0).Member", main[0].Group.String())
	assert.True(t, main[0].Empty)
	assert.Equal(t, "Implicit(0).NonLocal(1)", main[1].Group.String())
	assert.False(t, main[1].Empty, "top-level function is seen but does not fit an extension receiver")
	assert.Zero(t, main[1].Found)
	assert.Equal(t, "NonLocal(1)", main[2].Group.String())
}

func TestLocalFunctionBeatsImplicitMember(t *testing.T) {
	u := symbols.NewUniverse("")
	foo := symbols.NewClass("Foo", symbols.ClassKindClass)
	foo.AddMember(symbols.NewFunction("bar", typesystem.Unit, typesystem.Int))
	this := receiverOf(u, foo)
	local := symbols.NewTable("block", symbols.ScopeBlock)
	bar := local.Define(symbols.NewFunction("bar", typesystem.Unit, typesystem.Int))
	env := mustEnv(t, []tower.Element{{Receiver: this}}, []symbols.Scope{local}, nil)

	out := newFixture(u).resolve(t, env, tower.NewCall("bar", typesystem.Int))

	assert.Same(t, bar, single(t, out).Symbol)
	assert.Equal(t, "Local(0)", best(t, out))
}

func TestLocalExtensionOnInnerReceiverBeatsOuterMember(t *testing.T) {
	u := symbols.NewUniverse("")
	outer := symbols.NewClass("Outer", symbols.ClassKindClass)
	outer.AddMember(symbols.NewFunction("baz", typesystem.Unit))
	inner := receiverOf(u, symbols.NewClass("Inner", symbols.ClassKindClass))
	outerThis := receiverOf(u, outer)
	local := symbols.NewTable("block", symbols.ScopeBlock)
	ext := local.Define(symbols.NewExtension(typesystem.Con("Inner"), "baz", typesystem.Unit))
	env := mustEnv(t, []tower.Element{{Receiver: inner}, {Receiver: outerThis}}, []symbols.Scope{local}, nil)

	f := newFixture(u)
	out := f.resolve(t, env, tower.NewCall("baz"))

	c := single(t, out)
	assert.Same(t, ext, c.Symbol)
	assert.Equal(t, "Implicit(0).Local(0)", best(t, out))
	assert.Same(t, inner, c.ExtensionReceiver)
	for _, p := range f.trace.probes {
		assert.NotEqual(t, "Implicit(1).Member", p.Group.String(), "outer member must not be looked up")
	}
}

func TestMemberBeatsExtensionOnSameReceiver(t *testing.T) {
	u := symbols.NewUniverse("")
	foo := symbols.NewClass("Foo", symbols.ClassKindClass)
	member := foo.AddMember(symbols.NewFunction("size", typesystem.Int))
	this := receiverOf(u, foo)
	local := symbols.NewTable("block", symbols.ScopeBlock)
	local.Define(symbols.NewExtension(foo.Type(), "size", typesystem.Int))
	env := mustEnv(t, []tower.Element{{Receiver: this}}, []symbols.Scope{local}, nil)

	out := newFixture(u).resolve(t, env, tower.NewCall("size"))

	c := single(t, out)
	assert.Same(t, member, c.Symbol)
	assert.Equal(t, "Implicit(0).Member", best(t, out))
	assert.Same(t, this, c.DispatchReceiver)
}

func TestDelegatedMember(t *testing.T) {
	u := symbols.NewUniverse("")
	a := symbols.NewClass("A", symbols.ClassKindInterface)
	a.AddMember(symbols.NewFunction("foo", typesystem.Unit))
	c := symbols.NewClass("C", symbols.ClassKindClass).AddDelegation(a, "b")
	u.DeclareClass("app", a)
	u.DeclareClass("app", c)
	env := mustEnv(t, nil, nil, nil)

	call := tower.NewCall("foo")
	call.ExplicitReceiver = tower.NewExpressionReceiver("c", c.Type())
	out := newFixture(u).resolve(t, env, call)

	cand := single(t, out)
	assert.Equal(t, "Member", best(t, out))
	assert.Equal(t, symbols.OriginDelegated, cand.Symbol.Origin)
	assert.Equal(t, "C", cand.Owner())
	assert.Equal(t, tower.DispatchReceiver, cand.ExplicitReceiverKind)
}

func TestUnresolvedCall(t *testing.T) {
	u := symbols.NewUniverse("")
	u.Define("app", symbols.NewFunction("present", typesystem.Unit))
	env := mustEnv(t, []tower.Element{{Scope: u.Package("app")}}, nil, nil)

	f := newFixture(u)
	out := f.resolve(t, env, tower.NewCall("missing"))

	assert.Equal(t, tower.Unresolved, out.Kind)
	assert.Nil(t, out.Best)
	assert.Empty(t, out.Candidates)
	assert.Equal(t, 1, f.reporter.unresolved)
	_, ok := out.Single()
	assert.False(t, ok)
}

func TestInapplicableCandidatesAreReported(t *testing.T) {
	u := symbols.NewUniverse("")
	fn := u.Define("app", symbols.NewFunction("f", typesystem.Unit, typesystem.String))
	env := mustEnv(t, []tower.Element{{Scope: u.Package("app")}}, nil, nil)

	f := newFixture(u)
	out := f.resolve(t, env, tower.NewCall("f", typesystem.Int))

	assert.Equal(t, tower.Resolved, out.Kind)
	assert.Equal(t, tower.Inapplicable, out.Applicability)
	require.Len(t, out.Candidates, 1)
	assert.Same(t, fn, out.Candidates[0].Symbol)
	_, ok := out.Single()
	assert.False(t, ok)
	assert.Equal(t, 1, f.reporter.resolved)
}

func TestAmbiguousCall(t *testing.T) {
	u := symbols.NewUniverse("")
	u.DeclareClass("builtins", symbols.NewClass("Int", symbols.ClassKindClass))
	u.DeclareClass("builtins", symbols.NewClass("Long", symbols.ClassKindClass))
	local := symbols.NewTable("block", symbols.ScopeBlock)
	local.Define(symbols.NewFunction("f", typesystem.Unit, typesystem.Int))
	local.Define(symbols.NewFunction("f", typesystem.Unit, typesystem.Long))
	env := mustEnv(t, nil, []symbols.Scope{local}, nil)

	f := newFixture(u)
	out := f.resolve(t, env, tower.NewCall("f", typesystem.TIntLiteral{Value: 7}))

	assert.Equal(t, tower.Ambiguous, out.Kind)
	assert.Len(t, out.Candidates, 2)
	assert.Equal(t, 1, f.reporter.ambiguous)
}

func TestUncertainArgument(t *testing.T) {
	u := symbols.NewUniverse("")
	local := symbols.NewTable("block", symbols.ScopeBlock)
	local.Define(symbols.NewFunction("run", typesystem.Unit, typesystem.Func(typesystem.Unit)))
	env := mustEnv(t, nil, []symbols.Scope{local}, nil)

	call := &tower.Call{Name: "run", Arguments: []tower.Argument{{Type: nil}}}
	out := newFixture(u).resolve(t, env, call)

	single(t, out)
	assert.Equal(t, tower.Uncertain, out.Applicability)
}

func TestProbesNeverPassTheWinningGroup(t *testing.T) {
	u := symbols.NewUniverse("")
	outer := symbols.NewClass("Outer", symbols.ClassKindClass)
	outer.AddMember(symbols.NewFunction("baz", typesystem.Unit))
	inner := receiverOf(u, symbols.NewClass("Inner", symbols.ClassKindClass))
	outerThis := receiverOf(u, outer)
	local := symbols.NewTable("block", symbols.ScopeBlock)
	local.Define(symbols.NewExtension(typesystem.Con("Inner"), "baz", typesystem.Unit))
	u.Define("app", symbols.NewFunction("baz", typesystem.Unit))
	env := mustEnv(t, []tower.Element{
		{Receiver: inner},
		{Scope: u.Package("app"), Receiver: outerThis},
	}, []symbols.Scope{local}, nil)

	f := newFixture(u)
	out := f.resolve(t, env, tower.NewCall("baz"))
	require.NotNil(t, out.Best)

	for _, p := range f.trace.probes {
		assert.Falsef(t, out.Best.Less(p.Group), "probe %s after winner %s", p.Group, out.Best)
	}
	for _, r := range out.Records {
		if r.Contributing {
			assert.True(t, r.Candidate.Group.Equal(*out.Best))
		}
	}
	assert.Positive(t, out.Stats.Dropped)
}

func TestProbeCountIsLinearInTowerDepth(t *testing.T) {
	const depth = 4
	u := symbols.NewUniverse("")
	var elements []tower.Element
	for i := range depth {
		name := string(rune('A' + i))
		cls := symbols.NewClass(name, symbols.ClassKindClass)
		cls.AddMember(symbols.NewFunction("unrelated", typesystem.Unit))
		scope := symbols.NewTable(name, symbols.ScopeClass)
		scope.Define(symbols.NewFunction("unrelated", typesystem.Unit))
		elements = append(elements, tower.Element{Scope: scope, Receiver: receiverOf(u, cls)})
	}
	env := mustEnv(t, elements, nil, nil)

	f := newFixture(u)
	out := f.resolve(t, env, tower.NewCall("absent"))

	assert.Equal(t, tower.Unresolved, out.Kind)
	assert.Len(t, f.trace.mainProbes(), 2*depth)
	assert.NotEmpty(t, f.trace.skips)
}

func TestVariableAccessDoesNotSkipScopesEmptyForExtensions(t *testing.T) {
	u := symbols.NewUniverse("")
	this := receiverOf(u, symbols.NewClass("Foo", symbols.ClassKindClass))
	obj := symbols.NewClass("Registry", symbols.ClassKindObject)
	u.DeclareClass("app", obj)
	env := mustEnv(t, []tower.Element{{Receiver: this}, {Scope: u.Package("app")}}, nil, nil)

	call := &tower.Call{Name: "Registry", Kind: tower.CallVariableAccess}
	out := newFixture(u).resolve(t, env, call)

	c := single(t, out)
	assert.Same(t, obj.ObjectSymbol(), c.Symbol)
	assert.Equal(t, "NonLocal(1)", best(t, out))
}

func TestForcedCallableReferenceKeepsSearching(t *testing.T) {
	u := symbols.NewUniverse("")
	u.Define("app", symbols.NewFunction("x", typesystem.Unit))
	local := symbols.NewTable("block", symbols.ScopeBlock)
	prop := local.Define(symbols.NewProperty("x", typesystem.Int))
	env := mustEnv(t, []tower.Element{{Scope: u.Package("app")}}, []symbols.Scope{local}, nil)

	plain := newFixture(u)
	ref := &tower.Call{Name: "x", Kind: tower.CallCallableReference}
	out := plain.resolve(t, env, ref)
	assert.Same(t, prop, single(t, out).Symbol)
	assert.NotContains(t, plain.trace.groups(), "NonLocal(0)")
	assert.Equal(t, 1, out.Stats.Dropped)

	forced := newFixture(u)
	out = forced.resolve(t, env, ref.WithStubReceiver(tower.NewExpressionReceiver("A", typesystem.Con("A"))))
	assert.Same(t, prop, single(t, out).Symbol)
	assert.Equal(t, "Local(0)", best(t, out))
	assert.Contains(t, forced.trace.groups(), "NonLocal(0)")
	assert.Zero(t, out.Stats.Dropped)
}

func TestForcedCallableReferenceKeepsUncertainLocal(t *testing.T) {
	u := symbols.NewUniverse("")
	u.Define("app", symbols.NewProperty("x", typesystem.Int))
	local := symbols.NewTable("block", symbols.ScopeBlock)
	prop := local.Define(symbols.NewProperty("x", typesystem.Int))
	env := mustEnv(t, []tower.Element{{Scope: u.Package("app")}}, []symbols.Scope{local}, nil)

	oracle := tower.OracleFunc(func(c *tower.Candidate, _ *tower.Call) tower.Applicability {
		if c.Symbol == prop {
			return tower.Uncertain
		}
		return tower.Applicable
	})
	trace := &traceRecorder{}
	r := tower.NewResolver(u, oracle, tower.WithTracer(trace))
	ref := &tower.Call{Name: "x", Kind: tower.CallCallableReference}
	out, err := r.Resolve(context.Background(), env, ref.WithStubReceiver(tower.NewExpressionReceiver("A", typesystem.Con("A"))))
	require.NoError(t, err)

	assert.Contains(t, trace.groups(), "NonLocal(0)", "forced references visit every level")
	assert.Same(t, prop, single(t, out).Symbol)
	assert.Equal(t, "Local(0)", best(t, out))
	assert.Equal(t, tower.Uncertain, out.Applicability)
}

func TestResolverLogsProbes(t *testing.T) {
	u := symbols.NewUniverse("")
	u.Define("app", symbols.NewFunction("f", typesystem.Unit))
	env := mustEnv(t, []tower.Element{{Scope: u.Package("app")}}, nil, nil)

	var buf bytes.Buffer
	f := newFixture(u, tower.WithLogger(logging.New("debug", config.JSONLogFormat, &buf)))
	out := f.resolve(t, env, tower.NewCall("f"))

	single(t, out)
	assert.Contains(t, buf.String(), `"msg":"probe"`)
	assert.Contains(t, buf.String(), `"msg":"resolved"`)
	assert.Contains(t, buf.String(), out.SessionID.String())
}

func TestResolveRejectsInvalidInput(t *testing.T) {
	u := symbols.NewUniverse("")
	r := tower.NewResolver(u, tower.OracleFunc(func(*tower.Candidate, *tower.Call) tower.Applicability {
		return tower.Applicable
	}))
	ctx := context.Background()
	env := &tower.Environment{}

	tests := []struct {
		name string
		env  *tower.Environment
		call *tower.Call
	}{
		{"nil call", env, nil},
		{"empty name", env, &tower.Call{}},
		{"untyped receiver", env, tower.NewCall("f").WithReceiver(&tower.ExpressionReceiver{Label: "x"})},
		{"typed nil receiver", env, tower.NewCall("f").WithReceiver((*tower.ExpressionReceiver)(nil))},
		{"class qualifier without class", env, tower.NewCall("f").WithReceiver(&tower.QualifierReceiver{Kind: tower.ClassQualifier})},
		{"nil environment", nil, tower.NewCall("f")},
		{"empty element", &tower.Environment{Elements: []tower.Element{{}}}, tower.NewCall("f")},
		{"nil local scope", &tower.Environment{Locals: []symbols.Scope{nil}}, tower.NewCall("f")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(ctx, tt.env, tt.call)
			assert.Error(t, err)
		})
	}

	_, err := r.ResolveDelegatingConstructor(ctx, env, tower.NewCall("this"), nil)
	assert.Error(t, err)
	_, err = tower.NewResolver(nil, nil).Resolve(ctx, env, tower.NewCall("f"))
	assert.Error(t, err)
}

func TestNewEnvironmentValidates(t *testing.T) {
	r := tower.NewImplicitReceiver("a", typesystem.Con("A"))
	_, err := tower.NewEnvironment([]tower.Element{{Receiver: r}, {Receiver: r}}, nil, nil)
	assert.Error(t, err, "a receiver declared twice")

	_, err = tower.NewEnvironment([]tower.Element{{Receiver: tower.NewImplicitReceiver("b", nil)}}, nil, nil)
	assert.Error(t, err)

	_, err = tower.NewEnvironment(nil, nil, []symbols.Scope{nil})
	assert.Error(t, err)

	outer := tower.NewImplicitReceiver("outer", typesystem.Con("Outer"))
	env, err := tower.NewEnvironment([]tower.Element{
		{Scope: symbols.NewTable("f", symbols.ScopeFunction), Local: true},
		{Receiver: outer},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, outer.Depth)
	assert.Equal(t, []*tower.ImplicitReceiver{outer}, env.ImplicitReceivers())
}

func TestNewEnvironmentRejectsSharedReceiver(t *testing.T) {
	shared := tower.NewImplicitReceiver("shared", typesystem.Con("Shared"))
	inner := tower.NewImplicitReceiver("inner", typesystem.Con("Inner"))
	first, err := tower.NewEnvironment([]tower.Element{{Receiver: inner}, {Receiver: shared}}, nil, nil)
	require.NoError(t, err)

	_, err = tower.NewEnvironment([]tower.Element{{Receiver: shared}}, nil, nil)
	assert.ErrorContains(t, err, `implicit receiver "shared" already belongs to another environment`)
	assert.Equal(t, 1, shared.Depth)
	assert.NoError(t, first.Validate())

	// A receiver rejected by validation stays free for another environment.
	loose := tower.NewImplicitReceiver("loose", typesystem.Con("Loose"))
	_, err = tower.NewEnvironment([]tower.Element{{Receiver: loose}, {Receiver: loose}}, nil, nil)
	require.Error(t, err)
	_, err = tower.NewEnvironment([]tower.Element{{Receiver: loose}}, nil, nil)
	assert.NoError(t, err)
}

func TestResolveCancelled(t *testing.T) {
	u := symbols.NewUniverse("")
	env := mustEnv(t, []tower.Element{{Scope: u.Package("app")}}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newFixture(u)
	_, err := f.resolver.Resolve(ctx, env, tower.NewCall("f"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.reporter.total())
}
