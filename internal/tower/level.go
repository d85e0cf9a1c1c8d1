package tower

import (
	"iter"

	"github.com/funvibe/tower/internal/symbols"
)

// ScopeLevel is one lookup source of the tower. Variants: LexicalLevel,
// ConstructorLevel, MemberLevel.
type ScopeLevel interface {
	String() string
	isLevel()
}

// LexicalLevel looks a name up in a lexical scope. With ExtensionReceiver set
// only extensions are candidates and they are paired with that receiver.
type LexicalLevel struct {
	Scope                    symbols.Scope
	ExtensionReceiver        Receiver
	ExtensionsOnly           bool
	IncludeInnerConstructors bool
}

func (*LexicalLevel) isLevel() {}

func (l *LexicalLevel) String() string {
	s := l.Scope.String()
	if l.ExtensionReceiver != nil {
		s += " for " + l.ExtensionReceiver.String()
	}
	if l.ExtensionsOnly {
		s += " (extensions only)"
	}
	return s
}

// ConstructorLevel yields the non-inner constructors of one class.
type ConstructorLevel struct {
	Scope symbols.ConstructorScope
}

func (*ConstructorLevel) isLevel() {}

func (l *ConstructorLevel) String() string {
	return "constructors of " + l.Scope.String()
}

// MemberLevel looks a name up in the member scope of DispatchReceiver. With
// ExtensionReceiver set it finds member extensions (`fun B.foo()` declared in
// the dispatch receiver's class).
type MemberLevel struct {
	DispatchReceiver  Receiver
	ExtensionReceiver Receiver
	// Scope overrides the member scope of the dispatch receiver's type
	// (super calls search the merged scope of the written supertypes).
	Scope symbols.Scope
	// ExtensionInvoke looks for plain invoke members taking ExtensionReceiver
	// as their first argument.
	ExtensionInvoke bool
}

func (*MemberLevel) isLevel() {}

func (l *MemberLevel) String() string {
	s := "members of " + l.DispatchReceiver.String()
	if l.ExtensionReceiver != nil {
		s += " for " + l.ExtensionReceiver.String()
	}
	return s
}

// match is one symbol found by a lookup. Symbols whose receiver shape does
// not fit the level still make the level non-empty.
type match struct {
	candidate *Candidate
	fits      bool
}

// lookup enumerates everything named call.Name that level can see.
func lookup(level ScopeLevel, call *Call, provider ScopeProvider, kind ExplicitReceiverKind) iter.Seq[match] {
	return func(yield func(match) bool) {
		switch l := level.(type) {
		case *LexicalLevel:
			lexicalLookup(l, call, kind, yield)
		case *ConstructorLevel:
			for sym := range l.Scope.DeclaredConstructors() {
				if sym.Inner {
					continue
				}
				if !yield(match{candidate: newCandidate(sym, call, nil, nil, kind, l), fits: true}) {
					return
				}
			}
		case *MemberLevel:
			memberLookup(l, call, provider, kind, yield)
		}
	}
}

func newCandidate(sym *symbols.Symbol, call *Call, dispatch, extension Receiver, kind ExplicitReceiverKind, level ScopeLevel) *Candidate {
	return &Candidate{
		Symbol:               sym,
		Call:                 call,
		DispatchReceiver:     dispatch,
		ExtensionReceiver:    extension,
		ExplicitReceiverKind: kind,
		Level:                level.String(),
	}
}

func lexicalLookup(l *LexicalLevel, call *Call, kind ExplicitReceiverKind, yield func(match) bool) {
	fits := func(sym *symbols.Symbol) bool {
		if sym.IsExtension() != (l.ExtensionReceiver != nil) {
			return false
		}
		return !l.ExtensionsOnly || sym.IsExtension()
	}
	emit := func(sym *symbols.Symbol) bool {
		c := newCandidate(sym, call, nil, l.ExtensionReceiver, kind, l)
		return yield(match{candidate: c, fits: fits(sym)})
	}
	emitClassifier := func(cls *symbols.Class, constructors, objects bool) bool {
		if constructors {
			for _, ctor := range cls.Constructors() {
				if ctor.Inner && !l.IncludeInnerConstructors {
					continue
				}
				c := newCandidate(ctor, call, nil, nil, kind, l)
				if !yield(match{candidate: c, fits: l.ExtensionReceiver == nil && !l.ExtensionsOnly}) {
					return false
				}
			}
		}
		// Objects are not searched with an extension receiver.
		if objects && l.ExtensionReceiver == nil && !l.ExtensionsOnly {
			if obj := cls.ValueSymbol(); obj != nil {
				c := newCandidate(obj, call, nil, nil, kind, l)
				if !yield(match{candidate: c, fits: true}) {
					return false
				}
			}
		}
		return true
	}

	functions := call.Kind != CallVariableAccess
	properties := call.Kind != CallFunction
	if functions {
		for sym := range l.Scope.Functions(call.Name) {
			if !emit(sym) {
				return
			}
		}
	}
	if properties {
		for sym := range l.Scope.Properties(call.Name) {
			if !emit(sym) {
				return
			}
		}
	}
	for cls := range l.Scope.Classifiers(call.Name) {
		if !emitClassifier(cls, functions, call.Kind == CallVariableAccess) {
			return
		}
	}
}

func memberLookup(l *MemberLevel, call *Call, provider ScopeProvider, kind ExplicitReceiverKind, yield func(match) bool) {
	scope := l.Scope
	if scope == nil {
		scope = provider.MemberScope(l.DispatchReceiver.Type())
	}
	if scope == nil {
		return
	}
	fits := func(sym *symbols.Symbol) bool {
		if l.ExtensionInvoke {
			return !sym.IsExtension()
		}
		return sym.IsExtension() == (l.ExtensionReceiver != nil)
	}
	emit := func(sym *symbols.Symbol) bool {
		c := newCandidate(sym, call, l.DispatchReceiver, l.ExtensionReceiver, kind, l)
		c.ExtensionInvoke = l.ExtensionInvoke
		return yield(match{candidate: c, fits: fits(sym)})
	}

	functions := call.Kind != CallVariableAccess
	if functions {
		for sym := range scope.Functions(call.Name) {
			if !emit(sym) {
				return
			}
		}
		// Inner classes are constructed through an instance of the outer class.
		for cls := range scope.Classifiers(call.Name) {
			for _, ctor := range cls.Constructors() {
				c := newCandidate(ctor, call, l.DispatchReceiver, nil, kind, l)
				if !yield(match{candidate: c, fits: l.ExtensionReceiver == nil && !l.ExtensionInvoke}) {
					return
				}
			}
		}
	}
	if call.Kind != CallFunction {
		for sym := range scope.Properties(call.Name) {
			if !emit(sym) {
				return
			}
		}
	}
}
