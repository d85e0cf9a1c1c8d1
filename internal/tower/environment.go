package tower

import (
	"github.com/pkg/errors"

	"github.com/funvibe/tower/internal/symbols"
)

// Element is one lexical level of the tower: a declaration body with an
// optional lookup scope and an optional implicit receiver.
type Element struct {
	Scope    symbols.Scope
	Receiver *ImplicitReceiver
	// Local elements contribute their scope through Environment.Locals only.
	Local bool
}

// Environment is the scope tower of one enclosing declaration. It is built
// once, never mutated by the resolver and shared by all calls inside the
// declaration.
type Environment struct {
	Elements []Element       // Innermost first
	Locals   []symbols.Scope // Innermost first
	Imports  []symbols.Scope // Highest priority first; searched for extensions that hide members
}

// NewEnvironment builds an environment and assigns every implicit receiver
// its depth. Receivers already used by another environment are rejected.
func NewEnvironment(elements []Element, locals, imports []symbols.Scope) (*Environment, error) {
	env := &Environment{Elements: elements, Locals: locals, Imports: imports}
	for _, el := range env.Elements {
		if r := el.Receiver; r != nil && r.owner != nil {
			return nil, errors.Errorf("implicit receiver %q already belongs to another environment", r.Label)
		}
	}
	for depth := range env.Elements {
		if r := env.Elements[depth].Receiver; r != nil {
			r.Depth = depth
			r.owner = env
		}
	}
	if err := env.Validate(); err != nil {
		for _, el := range env.Elements {
			if el.Receiver != nil {
				el.Receiver.owner = nil
			}
		}
		return nil, err
	}
	return env, nil
}

// Validate checks the structural invariants of the tower.
func (e *Environment) Validate() error {
	if e == nil {
		return errors.New("environment is nil")
	}
	seen := make(map[*ImplicitReceiver]bool)
	for depth, el := range e.Elements {
		if el.Scope == nil && el.Receiver == nil {
			return errors.Errorf("tower element %d has neither scope nor receiver", depth)
		}
		r := el.Receiver
		if r == nil {
			continue
		}
		if r.ValueType == nil {
			return errors.Errorf("implicit receiver %q at depth %d has no type", r.Label, depth)
		}
		if r.Depth != depth {
			return errors.Errorf("implicit receiver %q is tagged with depth %d but declared at depth %d", r.Label, r.Depth, depth)
		}
		if seen[r] {
			return errors.Errorf("implicit receiver %q is declared twice", r.Label)
		}
		seen[r] = true
	}
	for i, s := range e.Locals {
		if s == nil {
			return errors.Errorf("local scope %d is nil", i)
		}
	}
	for i, s := range e.Imports {
		if s == nil {
			return errors.Errorf("import scope %d is nil", i)
		}
	}
	return nil
}

// ImplicitReceivers returns the implicit receivers innermost first.
func (e *Environment) ImplicitReceivers() []*ImplicitReceiver {
	var receivers []*ImplicitReceiver
	for _, el := range e.Elements {
		if el.Receiver != nil {
			receivers = append(receivers, el.Receiver)
		}
	}
	return receivers
}
