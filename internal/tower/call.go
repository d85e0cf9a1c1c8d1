package tower

import (
	"strings"

	"github.com/funvibe/tower/internal/typesystem"
)

type CallKind int

const (
	CallFunction CallKind = iota
	CallVariableAccess
	CallCallableReference
)

func (k CallKind) String() string {
	switch k {
	case CallVariableAccess:
		return "variable"
	case CallCallableReference:
		return "reference"
	}
	return "function"
}

// Argument is one value argument of a call. Type is nil when the argument
// has not been typed yet (e.g. a lambda waiting for its expected type).
type Argument struct {
	Name string // Set for named arguments
	Type typesystem.Type
}

// Call describes one call site. A Call is never mutated once built; the
// With* helpers return modified copies.
type Call struct {
	Name                     string
	Arguments                []Argument
	ExplicitReceiver         Receiver // nil when the call has no written receiver
	Kind                     CallKind
	IsPotentialQualifierPart bool     // The call may be the head of a longer qualified name (a.b.c)
	StubReceiver             Receiver // Receiver of an unbound callable reference (A::foo)
}

// NewCall creates a function call with positional argument types.
func NewCall(name string, args ...typesystem.Type) *Call {
	c := &Call{Name: name, Kind: CallFunction}
	for _, a := range args {
		c.Arguments = append(c.Arguments, Argument{Type: a})
	}
	return c
}

func (c *Call) clone() *Call {
	cp := *c
	return &cp
}

// WithName returns a copy of c calling name instead.
func (c *Call) WithName(name string) *Call {
	cp := c.clone()
	cp.Name = name
	return cp
}

// WithReceiver returns a copy of c with another explicit receiver.
func (c *Call) WithReceiver(r Receiver) *Call {
	cp := c.clone()
	cp.ExplicitReceiver = r
	return cp
}

// WithStubReceiver returns a copy of c with the stub receiver of a callable reference attached.
func (c *Call) WithStubReceiver(r Receiver) *Call {
	cp := c.clone()
	cp.StubReceiver = r
	return cp
}

// WithoutStubReceiver returns a copy of c without stub receiver.
func (c *Call) WithoutStubReceiver() *Call {
	cp := c.clone()
	cp.StubReceiver = nil
	return cp
}

// AsVariableAccess returns the property access that resolves the callee of c.
func (c *Call) AsVariableAccess() *Call {
	cp := c.clone()
	cp.Kind = CallVariableAccess
	cp.Arguments = nil
	cp.IsPotentialQualifierPart = false
	return cp
}

// ArgumentTypes returns the argument types in order.
func (c *Call) ArgumentTypes() []typesystem.Type {
	types := make([]typesystem.Type, len(c.Arguments))
	for i, a := range c.Arguments {
		types[i] = a.Type
	}
	return types
}

// forcedReference reports whether the call is a callable reference whose
// resolution must not be short-circuited.
func (c *Call) forcedReference() bool {
	return c.Kind == CallCallableReference && c.StubReceiver != nil
}

func (c *Call) String() string {
	var sb strings.Builder
	if c.ExplicitReceiver != nil {
		sb.WriteString(c.ExplicitReceiver.String())
		if c.Kind == CallCallableReference {
			sb.WriteString("::")
		} else {
			sb.WriteString(".")
		}
	} else if c.Kind == CallCallableReference {
		sb.WriteString("::")
	}
	sb.WriteString(c.Name)
	if c.Kind == CallFunction {
		sb.WriteString("(")
		for i, a := range c.Arguments {
			if i > 0 {
				sb.WriteString(", ")
			}
			if a.Name != "" {
				sb.WriteString(a.Name)
				sb.WriteString(" = ")
			}
			if a.Type == nil {
				sb.WriteString("?")
			} else {
				sb.WriteString(a.Type.String())
			}
		}
		sb.WriteString(")")
	}
	return sb.String()
}
