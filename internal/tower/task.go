package tower

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/tower/internal/symbols"
	"github.com/funvibe/tower/internal/typesystem"
)

// resolveTask walks the tower for one receiver shape and feeds a collector.
// Its body runs as an iterator: every level is first requested from the
// scheduler by yielding its group.
type resolveTask struct {
	session   *session
	collector *Collector
	invoke    bool

	// intercept maps the natural group of a level to the group the level is
	// submitted with.
	intercept func(Group) Group
	// onSuccess runs after every level that leaves the collector successful.
	onSuccess func(Group)
	// decorate adjusts every candidate before submission.
	decorate func(*Candidate)

	yield     func(Group) bool
	abandoned bool
}

func (s *session) newTask(collector *Collector, invoke bool) *resolveTask {
	return &resolveTask{session: s, collector: collector, invoke: invoke}
}

// enqueue schedules body on the session's scheduler.
func (t *resolveTask) enqueue(start Group, body func()) {
	t.session.manager.enqueue(start, t.invoke, func(yield func(Group) bool) {
		t.yield = yield
		body()
	})
}

// processLevel requests group from the scheduler, looks the call up in level
// and submits every candidate whose shape fits. onEmpty runs when the level
// holds no symbol of the name at all.
func (t *resolveTask) processLevel(level ScopeLevel, call *Call, group Group, kind ExplicitReceiverKind, onEmpty func()) {
	if t.abandoned {
		return
	}
	if t.intercept != nil {
		group = t.intercept(group)
	}
	if !t.yield(group) {
		t.abandoned = true
		return
	}
	empty := t.session.handleLevel(t, level, call, group, kind)
	if t.collector.IsSuccess() && t.onSuccess != nil {
		t.onSuccess(group)
	}
	if empty && onEmpty != nil {
		onEmpty()
	}
}

// processExtensionsThatHideMembers searches the import scopes for extensions
// whose names are configured to take priority over members.
func (t *resolveTask) processExtensionsThatHideMembers(call *Call, explicit Receiver, parent Group) {
	s := t.session
	if call.Kind != CallFunction || !s.cfg.IsHidesMembersName(call.Name) {
		return
	}
	for index, scope := range s.env.Imports {
		if explicit != nil {
			t.processLevel(&LexicalLevel{Scope: scope, ExtensionReceiver: explicit, ExtensionsOnly: true},
				call, parent.TopPrioritized(index), ExtensionReceiver, nil)
			continue
		}
		for _, r := range s.implicitReceivers() {
			t.processLevel(&LexicalLevel{Scope: scope, ExtensionReceiver: r, ExtensionsOnly: true},
				call, parent.TopPrioritized(index).Implicit(r.Depth), NoExplicitReceiver, nil)
		}
	}
}

// runForQualifier resolves `Q.name` where Q names a package or a class.
func (t *resolveTask) runForQualifier(call *Call, q *QualifierReceiver) {
	if call.IsPotentialQualifierPart {
		t.processClassifierScope(call, q, true)
		t.processQualifierScope(call, q)
	} else {
		t.processQualifierScope(call, q)
		t.processClassifierScope(call, q, false)
	}

	if q.Kind != ClassQualifier || q.Class == nil {
		return
	}
	noValue := typesystem.IsNoValue(q.Type())
	if call.Kind == CallCallableReference {
		if call.StubReceiver == nil && noValue {
			return
		}
	} else if noValue {
		return
	}
	t.runForExpression(call, q.valueReceiver(), QualifierValue)
}

func (t *resolveTask) processQualifierScope(call *Call, q *QualifierReceiver) {
	scope := t.session.callableScope(q)
	if scope == nil {
		return
	}
	t.processLevel(&LexicalLevel{Scope: scope}, call.WithoutStubReceiver(), Qualifier, NoExplicitReceiver, nil)
}

func (t *resolveTask) processClassifierScope(call *Call, q *QualifierReceiver, prioritized bool) {
	if call.Kind != CallCallableReference && q.aliased() {
		return
	}
	scope := t.session.classifierScope(q)
	if scope == nil {
		return
	}
	group := Classifier
	if prioritized {
		group = ClassifierPrioritized
	}
	t.processLevel(&LexicalLevel{Scope: scope}, call.WithoutStubReceiver(), group, NoExplicitReceiver, nil)
}

// runForExpression resolves `a.name` against the value a.
func (t *resolveTask) runForExpression(call *Call, receiver Receiver, parent Group) {
	t.processExtensionsThatHideMembers(call, receiver, parent)

	t.processLevel(&MemberLevel{DispatchReceiver: receiver}, call, parent.Member(), DispatchReceiver, nil)

	// Extensions are not searched on integer literals.
	if call.Kind == CallFunction && typesystem.IsIntegerLiteral(receiver.Type()) {
		return
	}

	t.session.enumerateTowerLevels(parent,
		func(scope symbols.Scope, group Group) {
			t.processLevel(&LexicalLevel{Scope: scope, ExtensionReceiver: receiver}, call, group, ExtensionReceiver, nil)
		},
		func(implicit *ImplicitReceiver, group Group) {
			t.processLevel(&MemberLevel{DispatchReceiver: implicit, ExtensionReceiver: receiver},
				call, group.Member(), ExtensionReceiver, nil)
		},
	)
}

// runForNoReceiver resolves a call without written receiver.
func (t *resolveTask) runForNoReceiver(call *Call) {
	t.processExtensionsThatHideMembers(call, nil, EmptyRoot)

	emptyScopes := set.New[symbols.Scope](0)
	emptyReceivers := set.New[*ImplicitReceiver](0)
	markEmpty := func(scope symbols.Scope) func() {
		if call.Kind == CallVariableAccess {
			return nil
		}
		return func() { emptyScopes.Insert(scope) }
	}

	t.session.enumerateTowerLevels(EmptyRoot,
		func(scope symbols.Scope, group Group) {
			// Objects are only found without extension receiver, so a scope
			// empty for extensions is not empty for variable access.
			if call.Kind != CallVariableAccess && emptyScopes.Contains(scope) {
				t.session.skipped(scope, group)
				return
			}
			t.processLevel(&LexicalLevel{Scope: scope, IncludeInnerConstructors: true}, call, group, NoExplicitReceiver, markEmpty(scope))
		},
		func(implicit *ImplicitReceiver, group Group) {
			t.processImplicitReceiverAsValue(call, implicit, group, emptyScopes, emptyReceivers)
		},
	)
}

// processImplicitReceiverAsValue searches the members of an implicit
// receiver, then every extension that could take it as receiver.
func (t *resolveTask) processImplicitReceiverAsValue(call *Call, receiver *ImplicitReceiver, parent Group,
	emptyScopes *set.Set[symbols.Scope], emptyReceivers *set.Set[*ImplicitReceiver]) {
	s := t.session
	markEmpty := func(r *ImplicitReceiver) func() {
		return func() { emptyReceivers.Insert(r) }
	}
	if emptyReceivers.Contains(receiver) {
		s.skipped(receiver, parent.Member())
	} else {
		t.processLevel(&MemberLevel{DispatchReceiver: receiver}, call, parent.Member(), NoExplicitReceiver, markEmpty(receiver))
	}

	s.enumerateTowerLevels(parent,
		func(scope symbols.Scope, group Group) {
			if emptyScopes.Contains(scope) {
				s.skipped(scope, group)
				return
			}
			t.processLevel(&LexicalLevel{Scope: scope, ExtensionReceiver: receiver}, call, group, NoExplicitReceiver, func() {
				emptyScopes.Insert(scope)
			})
		},
		func(implicit *ImplicitReceiver, group Group) {
			if emptyReceivers.Contains(implicit) {
				s.skipped(implicit, group)
				return
			}
			// Emptiness of a member scope does not depend on the extension receiver.
			t.processLevel(&MemberLevel{DispatchReceiver: implicit, ExtensionReceiver: receiver}, call, group, NoExplicitReceiver, markEmpty(implicit))
		},
	)
}

// runForSuper resolves `super.name` in the merged scope of the written supertypes.
func (t *resolveTask) runForSuper(call *Call, receiver *SuperReceiver) {
	s := t.session
	scopes := make([]symbols.Scope, 0, len(receiver.Supertypes))
	for _, st := range receiver.Supertypes {
		scopes = append(scopes, s.provider.MemberScope(st))
	}
	scope := symbols.NewCompositeScope(scopes...)
	if scope == nil {
		return
	}
	t.processLevel(&MemberLevel{DispatchReceiver: receiver, Scope: scope}, call, Member, DispatchReceiver, nil)
}

// runForDelegatingConstructor resolves `this(...)`/`super(...)` delegation to
// the constructors of target.
func (t *resolveTask) runForDelegatingConstructor(call *Call, target *symbols.Class) {
	s := t.session
	if target.Inner {
		// The innermost receiver is the instance under construction.
		receivers := s.implicitReceivers()
		if len(receivers) > 0 {
			receivers = receivers[1:]
		}
		renamed := call.WithName(target.Name)
		for _, r := range receivers {
			t.processLevel(&MemberLevel{DispatchReceiver: r}, renamed, EmptyRoot.Implicit(r.Depth), NoExplicitReceiver, nil)
		}
		return
	}
	scope := s.provider.ConstructorScope(target)
	if scope == nil {
		return
	}
	t.processLevel(&ConstructorLevel{Scope: scope}, call, Member, NoExplicitReceiver, nil)
}
