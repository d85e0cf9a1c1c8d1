// Package checker decides whether a candidate can be called with the
// arguments of a call: receivers first, then value arguments matched by
// position, by name and through a trailing vararg.
package checker

import (
	"github.com/funvibe/tower/internal/symbols"
	"github.com/funvibe/tower/internal/tower"
	"github.com/funvibe/tower/internal/typesystem"
)

// Subtyping answers subtype queries. *symbols.Universe implements it.
type Subtyping interface {
	IsSubtype(sub, super typesystem.Type) bool
}

// Checker is a tower.Oracle based on arity and subtyping.
type Checker struct {
	types Subtyping
}

var _ tower.Oracle = (*Checker)(nil)

func New(types Subtyping) *Checker {
	return &Checker{types: types}
}

// IsApplicable implements tower.Oracle.
func (c *Checker) IsApplicable(candidate *tower.Candidate, call *tower.Call) tower.Applicability {
	sym := candidate.Symbol
	args := call.Arguments

	if candidate.ExtensionInvoke {
		if candidate.ExtensionReceiver == nil {
			return tower.Inapplicable
		}
		args = append([]tower.Argument{{Type: candidate.ExtensionReceiver.Type()}}, args...)
	} else if sym.IsExtension() {
		recv := candidate.ExtensionReceiver
		if recv == nil || !c.types.IsSubtype(recv.Type(), sym.Receiver) {
			return tower.Inapplicable
		}
	}

	switch sym.Kind {
	case symbols.PropertySymbol, symbols.ObjectSymbol:
		if call.Kind == tower.CallFunction {
			return tower.Inapplicable
		}
		return tower.Applicable
	}
	if call.Kind != tower.CallFunction {
		// References and variable reads of functions carry no arguments.
		return tower.Applicable
	}
	return c.checkArguments(sym.Params, args)
}

func (c *Checker) checkArguments(params []symbols.Param, args []tower.Argument) tower.Applicability {
	assigned := make([]bool, len(params))
	result := tower.Applicable
	check := func(arg tower.Argument, param symbols.Param) bool {
		if arg.Type == nil {
			result = tower.Uncertain
			return true
		}
		return c.types.IsSubtype(arg.Type, param.Type)
	}

	named := false
	pos := 0
	for _, arg := range args {
		if arg.Name != "" {
			named = true
			i := indexOfParam(params, arg.Name)
			if i < 0 || (assigned[i] && !params[i].Vararg) {
				return tower.Inapplicable
			}
			assigned[i] = true
			if !check(arg, params[i]) {
				return tower.Inapplicable
			}
			continue
		}
		if named {
			// Positional arguments may not follow named ones.
			return tower.Inapplicable
		}
		if pos >= len(params) {
			return tower.Inapplicable
		}
		param := params[pos]
		assigned[pos] = true
		if !check(arg, param) {
			return tower.Inapplicable
		}
		if !param.Vararg {
			pos++
		}
	}
	for i, p := range params {
		if !assigned[i] && !p.HasDefault && !p.Vararg {
			return tower.Inapplicable
		}
	}
	return result
}

func indexOfParam(params []symbols.Param, name string) int {
	for i, p := range params {
		if p.Name == name {
			return i
		}
	}
	return -1
}
