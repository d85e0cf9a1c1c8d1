package typesystem

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/tower/internal/config"
)

// Type is the interface for all types seen by the resolver.
type Type interface {
	String() string
	Equal(Type) bool
	isType()
}

// TCon represents a nominal type, optionally applied to arguments (e.g. List<Int>).
type TCon struct {
	Name string
	Args []Type
}

func (TCon) isType() {}

func (t TCon) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	return t.Name + "<" + joinTypes(t.Args) + ">"
}

func (t TCon) Equal(other Type) bool {
	o, ok := other.(TCon)
	if !ok || o.Name != t.Name {
		return false
	}
	return equalTypes(t.Args, o.Args)
}

// TFunc represents a function type (e.g. (Int) -> Unit) or, when Receiver is
// set, an extension function type (e.g. String.(Int) -> Unit).
type TFunc struct {
	Receiver   Type
	Params     []Type
	ReturnType Type
}

func (TFunc) isType() {}

func (t TFunc) String() string {
	s := "(" + joinTypes(t.Params) + ") -> " + typeString(t.ReturnType)
	if t.Receiver != nil {
		return t.Receiver.String() + "." + s
	}
	return s
}

func (t TFunc) Equal(other Type) bool {
	o, ok := other.(TFunc)
	if !ok {
		return false
	}
	return equalType(t.Receiver, o.Receiver) && equalType(t.ReturnType, o.ReturnType) && equalTypes(t.Params, o.Params)
}

// InvokeParams returns the parameters of the function's invoke operator:
// the receiver (if any) followed by the declared parameters.
func (t TFunc) InvokeParams() []Type {
	if t.Receiver == nil {
		return t.Params
	}
	params := make([]Type, 0, len(t.Params)+1)
	params = append(params, t.Receiver)
	return append(params, t.Params...)
}

// TIntLiteral is the type of an integer constant before it is defaulted to
// one of config.IntegerLiteralTargets.
type TIntLiteral struct {
	Value int64
}

func (TIntLiteral) isType() {}

func (t TIntLiteral) String() string {
	return "IntegerLiteral(" + strconv.FormatInt(t.Value, 10) + ")"
}

func (t TIntLiteral) Equal(other Type) bool {
	o, ok := other.(TIntLiteral)
	return ok && o.Value == t.Value
}

// TNoValue is the implicit type of a qualifier that denotes no value
// (a package or a class without companion).
type TNoValue struct{}

func (TNoValue) isType() {}

func (TNoValue) String() string { return config.UnitTypeName + "(no value)" }

func (TNoValue) Equal(other Type) bool {
	_, ok := other.(TNoValue)
	return ok
}

// NoValue is the shared TNoValue instance.
var NoValue Type = TNoValue{}

// Con builds a nominal type.
func Con(name string, args ...Type) TCon {
	return TCon{Name: name, Args: args}
}

// Func builds a function type without receiver.
func Func(ret Type, params ...Type) TFunc {
	return TFunc{Params: params, ReturnType: ret}
}

// Common built-in types
var (
	Any     = Con(config.AnyTypeName)
	Nothing = Con(config.NothingTypeName)
	Unit    = Con(config.UnitTypeName)
	Int     = Con(config.IntTypeName)
	Long    = Con(config.LongTypeName)
	String  = Con(config.StringTypeName)
	Boolean = Con(config.BooleanTypeName)
)

// IsIntegerLiteral reports whether t is an integer literal type.
func IsIntegerLiteral(t Type) bool {
	_, ok := t.(TIntLiteral)
	return ok
}

// IsNoValue reports whether t is the implicit no-value type (or missing).
func IsNoValue(t Type) bool {
	if t == nil {
		return true
	}
	_, ok := t.(TNoValue)
	return ok
}

// ClassName returns the nominal class name of t, or "" for structural types.
func ClassName(t Type) string {
	if c, ok := t.(TCon); ok {
		return c.Name
	}
	return ""
}

func typeString(t Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

func joinTypes(types []Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = typeString(t)
	}
	return strings.Join(parts, ", ")
}

func equalType(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func equalTypes(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalType(a[i], b[i]) {
			return false
		}
	}
	return true
}

// MustParse parses a type expression and panics on error. Intended for tests
// and static tables.
func MustParse(s string) Type {
	t, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("typesystem.MustParse(%q): %v", s, err))
	}
	return t
}
