package tower

import (
	"strings"

	"github.com/funvibe/tower/internal/symbols"
)

// Applicability is the oracle's verdict on a candidate. Higher is better.
type Applicability int

const (
	Inapplicable Applicability = iota
	Uncertain                  // Could not be decided yet (e.g. untyped lambda argument)
	Applicable
)

func (a Applicability) String() string {
	switch a {
	case Uncertain:
		return "uncertain"
	case Applicable:
		return "applicable"
	}
	return "inapplicable"
}

// IsSuccess reports whether a candidate with this verdict may be selected.
func (a Applicability) IsSuccess() bool {
	return a >= Uncertain
}

// ExplicitReceiverKind tells which receiver of a candidate the written receiver binds to.
type ExplicitReceiverKind int

const (
	NoExplicitReceiver ExplicitReceiverKind = iota
	DispatchReceiver
	ExtensionReceiver
)

func (k ExplicitReceiverKind) String() string {
	switch k {
	case DispatchReceiver:
		return "dispatch"
	case ExtensionReceiver:
		return "extension"
	}
	return "none"
}

// Candidate is a symbol found at some tower level, paired with the receivers
// it would be called with.
type Candidate struct {
	Symbol               *symbols.Symbol
	Call                 *Call // The call the candidate was found for (an invoke call for invoke candidates)
	DispatchReceiver     Receiver
	ExtensionReceiver    Receiver
	ExplicitReceiverKind ExplicitReceiverKind
	Group                Group
	Applicability        Applicability
	Level                string

	// Invoked is the variable whose value an invoke candidate is called on.
	Invoked *Candidate
	// ExtensionInvoke is set when ExtensionReceiver is passed as the first
	// argument of an invoke operator of an extension function type.
	ExtensionInvoke bool
}

func (c *Candidate) String() string {
	var sb strings.Builder
	if c.Invoked != nil {
		sb.WriteString(c.Invoked.Symbol.Name)
		sb.WriteString(".")
	}
	sb.WriteString(c.Symbol.String())
	sb.WriteString(" @")
	sb.WriteString(c.Group.String())
	return sb.String()
}

// Owner returns the name of the class or package declaring the symbol.
func (c *Candidate) Owner() string {
	sym := c.Symbol
	if sym.Owner != nil {
		return sym.Owner.Name
	}
	return sym.Package
}
