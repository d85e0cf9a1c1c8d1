package tower

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/funvibe/tower/internal/config"
	"github.com/funvibe/tower/internal/symbols"
)

// session resolves one call. It owns the collector, the scheduler and the
// lazily derived views of the environment.
type session struct {
	id       uuid.UUID
	ctx      context.Context
	call     *Call
	env      *Environment
	cfg      *config.Config
	provider ScopeProvider
	oracle   Oracle
	logger   *slog.Logger
	tracer   Tracer

	collector *Collector
	manager   *taskManager
	invoke    *invokeResolver

	locals         []symbols.Scope
	localsDone     bool
	receivers      []*ImplicitReceiver
	receiversDone  bool
	primarySuccess bool
	stats          Stats
}

func (r *Resolver) newSession(ctx context.Context, env *Environment, call *Call) *session {
	s := &session{
		id:        uuid.New(),
		ctx:       ctx,
		call:      call,
		env:       env,
		cfg:       r.cfg,
		provider:  r.provider,
		oracle:    r.oracle,
		logger:    r.logger,
		tracer:    r.tracer,
		collector: NewCollector(r.oracle),
	}
	s.manager = newTaskManager(s.drop)
	s.invoke = &invokeResolver{session: s}
	return s
}

// localScopes returns the local scopes that may hold the call's name (or
// the invoke operator for function calls), innermost first.
func (s *session) localScopes() []symbols.Scope {
	if s.localsDone {
		return s.locals
	}
	s.localsDone = true
	for _, scope := range s.env.Locals {
		if scope.MayContainName(s.call.Name) ||
			(s.call.Kind == CallFunction && scope.MayContainName(s.cfg.InvokeName)) {
			s.locals = append(s.locals, scope)
		}
	}
	return s.locals
}

func (s *session) implicitReceivers() []*ImplicitReceiver {
	if !s.receiversDone {
		s.receiversDone = true
		s.receivers = s.env.ImplicitReceivers()
	}
	return s.receivers
}

// enumerateTowerLevels visits the local scopes, then for every tower
// element from the innermost: its scope (unless local) and its implicit
// receiver. Every task protocol walks the tower through this function.
func (s *session) enumerateTowerLevels(parent Group, onScope func(symbols.Scope, Group), onImplicitReceiver func(*ImplicitReceiver, Group)) {
	for index, scope := range s.localScopes() {
		onScope(scope, parent.Local(index))
	}
	for depth, el := range s.env.Elements {
		if !el.Local && el.Scope != nil {
			onScope(el.Scope, parent.NonLocal(depth))
		}
		if el.Receiver != nil {
			onImplicitReceiver(el.Receiver, parent.Implicit(depth))
		}
	}
}

// runResolution enqueues the main task for the receiver shape of the call,
// then the invoke fallback. The main task is enqueued first and wins ties.
func (s *session) runResolution() {
	call := s.call
	main := s.newTask(s.collector, false)
	main.onSuccess = func(Group) {
		for _, c := range s.collector.Candidates() {
			if c.Invoked == nil {
				s.primarySuccess = true
				return
			}
		}
	}

	var primary func()
	var fallback func()
	switch r := call.ExplicitReceiver.(type) {
	case nil:
		primary = func() { main.runForNoReceiver(call) }
		fallback = func() { s.invoke.enqueueForNoReceiver(call) }
	case *QualifierReceiver:
		primary = func() { main.runForQualifier(call, r) }
		fallback = func() { s.invoke.enqueueForQualifier(call, r) }
	case *SuperReceiver:
		primary = func() { main.runForSuper(call, r) }
	default:
		primary = func() { main.runForExpression(call, r, EmptyRoot) }
		fallback = func() { s.invoke.enqueueForExpression(call, r) }
	}

	if fallback == nil || !s.cfg.Scheduler.DeferInvoke {
		main.enqueue(Start, primary)
		if fallback != nil {
			fallback()
		}
		return
	}
	main.enqueue(Start, func() {
		primary()
		if !main.abandoned && !s.primarySuccess {
			fallback()
		}
	})
}

func (s *session) runDelegatingConstructor(target *symbols.Class) {
	main := s.newTask(s.collector, false)
	main.enqueue(Start, func() { main.runForDelegatingConstructor(s.call, target) })
}

// drop tells the scheduler whether a step requesting group must not run.
func (s *session) drop(t *pendingTask, group Group) bool {
	if s.call.forcedReference() {
		return false
	}
	if s.collector.ShouldStopAt(group) {
		s.debug("prune", "group", group.String(), "invoke", t.invoke)
		return true
	}
	return false
}

// handleLevel runs one lookup and submits the fitting candidates. It
// reports whether the level holds no symbol of the name.
func (s *session) handleLevel(t *resolveTask, level ScopeLevel, call *Call, group Group, kind ExplicitReceiverKind) bool {
	empty := true
	found := 0
	for m := range lookup(level, call, s.provider, kind) {
		empty = false
		if !m.fits {
			continue
		}
		if t.decorate != nil {
			t.decorate(m.candidate)
		}
		t.collector.Submit(m.candidate, group)
		found++
	}
	s.stats.Probes++
	s.stats.Candidates += found
	probe := Probe{Group: group, Level: level.String(), Call: call.String(), Found: found, Empty: empty, Invoke: t.invoke}
	if s.tracer != nil {
		s.tracer.Probe(probe)
	}
	s.debug("probe", "group", probe.Group.String(), "level", probe.Level, "found", found, "empty", empty)
	return empty
}

// skipped records a level left out because its scope is known to be empty.
func (s *session) skipped(subject fmt.Stringer, group Group) {
	s.stats.Skipped++
	if s.tracer != nil {
		s.tracer.Skip(subject.String(), group)
	}
	s.debug("skip", "group", group.String(), "level", subject.String())
}

func (s *session) callableScope(q *QualifierReceiver) symbols.Scope {
	switch q.Kind {
	case ClassQualifier:
		return s.provider.StaticScope(q.Class)
	case PackageQualifier:
		return s.provider.PackageScope(q.Package)
	}
	return nil
}

func (s *session) classifierScope(q *QualifierReceiver) symbols.Scope {
	if q.Kind != ClassQualifier {
		return nil
	}
	return s.provider.NestedScope(q.Class)
}

func (s *session) debug(msg string, args ...any) {
	if !s.logger.Enabled(s.ctx, slog.LevelDebug) {
		return
	}
	args = append([]any{"session", s.id.String(), "call", s.call.Name}, args...)
	s.logger.DebugContext(s.ctx, msg, args...)
}

// outcome classifies the collector content.
func (s *session) outcome() *Outcome {
	out := &Outcome{
		SessionID:  s.id,
		Call:       s.call,
		Candidates: s.collector.Candidates(),
		Records:    s.collector.Records(),
		Stats:      s.stats,
	}
	out.Stats.Tasks = s.manager.tasks
	out.Stats.Dropped = s.manager.dropped
	if best, ok := s.collector.CurrentBest(); ok {
		out.Best = &best
		out.Applicability = s.collector.Applicability()
	}
	switch {
	case len(out.Candidates) == 0:
		out.Kind = Unresolved
	case len(out.Candidates) > 1 && out.Applicability.IsSuccess():
		out.Kind = Ambiguous
	default:
		out.Kind = Resolved
	}
	return out
}
