// Package tower implements tower-based overload resolution.
//
// A call is resolved by walking the scope tower of its environment in strict
// priority order: qualifier and classifier scopes, the members of the
// explicit receiver, local scopes, and for every enclosing declaration its
// scope and its implicit receiver. Every level is keyed by a Group; the
// first group holding an applicable candidate wins and every worse level is
// dropped by the scheduler before it runs.
package tower

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/funvibe/tower/internal/config"
	"github.com/funvibe/tower/internal/symbols"
	"github.com/funvibe/tower/internal/typesystem"
)

// ScopeProvider maps types and classifiers to lookup scopes. A nil scope
// means the type could not be resolved; the level is then empty.
type ScopeProvider interface {
	MemberScope(t typesystem.Type) symbols.Scope
	StaticScope(c *symbols.Class) symbols.Scope
	NestedScope(c *symbols.Class) symbols.Scope
	PackageScope(pkg string) symbols.Scope
	ConstructorScope(c *symbols.Class) symbols.ConstructorScope
}

// Resolver resolves calls against environments. It holds no per-call state
// and may be shared by goroutines resolving different calls.
type Resolver struct {
	provider ScopeProvider
	oracle   Oracle
	cfg      *config.Config
	logger   *slog.Logger
	reporter Reporter
	tracer   Tracer
}

type Option func(*Resolver)

// WithConfig sets the configuration. The default is config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(r *Resolver) { r.cfg = cfg }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithReporter sets the receiver of terminal signals.
func WithReporter(reporter Reporter) Option {
	return func(r *Resolver) { r.reporter = reporter }
}

// WithTracer sets an observer of every lookup.
func WithTracer(tracer Tracer) Option {
	return func(r *Resolver) { r.tracer = tracer }
}

// NewResolver creates a resolver looking scopes up in provider and asking
// oracle about applicability.
func NewResolver(provider ScopeProvider, oracle Oracle, opts ...Option) *Resolver {
	r := &Resolver{provider: provider, oracle: oracle}
	for _, opt := range opts {
		opt(r)
	}
	if r.cfg == nil {
		r.cfg = config.Default()
	}
	r.cfg.Normalize()
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Config returns the effective configuration.
func (r *Resolver) Config() *config.Config {
	return r.cfg
}

// Resolve finds the best candidates for call in env. Resolution failures
// are reported through the outcome; errors mean invalid input or a
// cancelled context.
func (r *Resolver) Resolve(ctx context.Context, env *Environment, call *Call) (*Outcome, error) {
	if err := r.check(env, call); err != nil {
		return nil, err
	}
	s := r.newSession(ctx, env, call)
	s.runResolution()
	return r.finish(ctx, s)
}

// ResolveDelegatingConstructor resolves a `this(...)`/`super(...)` constructor
// delegation to target from a constructor whose tower is env.
func (r *Resolver) ResolveDelegatingConstructor(ctx context.Context, env *Environment, call *Call, target *symbols.Class) (*Outcome, error) {
	if err := r.check(env, call); err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.New("delegating constructor call without target class")
	}
	s := r.newSession(ctx, env, call)
	s.runDelegatingConstructor(target)
	return r.finish(ctx, s)
}

func (r *Resolver) check(env *Environment, call *Call) error {
	if r.provider == nil || r.oracle == nil {
		return errors.New("resolver needs a scope provider and an applicability oracle")
	}
	if call == nil {
		return errors.New("call is nil")
	}
	if call.Name == "" {
		return errors.New("call has no name")
	}
	if err := checkReceiver(call.ExplicitReceiver); err != nil {
		return errors.Wrapf(err, "call %s", call.Name)
	}
	if err := env.Validate(); err != nil {
		return errors.Wrapf(err, "call %s", call.Name)
	}
	return nil
}

func checkReceiver(recv Receiver) error {
	switch r := recv.(type) {
	case nil:
		return nil
	case *ExpressionReceiver:
		if r == nil || r.ValueType == nil {
			return errors.New("expression receiver without type")
		}
	case *ImplicitReceiver:
		if r == nil || r.ValueType == nil {
			return errors.New("implicit receiver without type")
		}
	case *QualifierReceiver:
		if r == nil {
			return errors.New("nil qualifier receiver")
		}
		if r.Kind == ClassQualifier && r.Class == nil {
			return errors.New("class qualifier without class")
		}
	case *SuperReceiver:
		if r == nil {
			return errors.New("nil super receiver")
		}
	}
	return nil
}

func (r *Resolver) finish(ctx context.Context, s *session) (*Outcome, error) {
	if err := s.manager.run(ctx); err != nil {
		return nil, errors.Wrapf(err, "resolving %s", s.call.Name)
	}
	out := s.outcome()
	r.logger.InfoContext(ctx, "resolved",
		"session", out.SessionID.String(),
		"call", s.call.String(),
		"outcome", out.Kind.String(),
		"candidates", len(out.Candidates),
		"probes", out.Stats.Probes,
	)
	if r.reporter != nil {
		switch out.Kind {
		case Unresolved:
			r.reporter.Unresolved(s.call)
		case Ambiguous:
			r.reporter.Ambiguous(s.call, out.Candidates)
		default:
			r.reporter.Resolved(s.call, out.Candidates)
		}
	}
	return out, nil
}
