package symbols

import (
	"strconv"
	"strings"

	"github.com/funvibe/tower/internal/typesystem"
)

type SymbolKind int

const (
	FunctionSymbol SymbolKind = iota
	PropertySymbol
	ConstructorSymbol
	ObjectSymbol // Singleton value of an object declaration or companion
)

func (k SymbolKind) String() string {
	switch k {
	case FunctionSymbol:
		return "function"
	case PropertySymbol:
		return "property"
	case ConstructorSymbol:
		return "constructor"
	case ObjectSymbol:
		return "object"
	}
	return "unknown"
}

// Origin tells where a member symbol comes from.
type Origin int

const (
	OriginSource    Origin = iota // Declared directly
	OriginDelegated               // Synthesized for an interface delegation (class C : A by b)
	OriginSynthetic               // Synthesized by the universe (e.g. invoke of a function type)
)

func (o Origin) String() string {
	switch o {
	case OriginDelegated:
		return "delegated"
	case OriginSynthetic:
		return "synthetic"
	}
	return "source"
}

// Param is a value parameter of a function or constructor.
type Param struct {
	Name       string
	Type       typesystem.Type
	HasDefault bool
	Vararg     bool
}

// Symbol is a callable declaration: a function, property, constructor or object value.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Receiver typesystem.Type // Extension receiver type; nil for plain members and top-level callables
	Owner    *Class          // Declaring class for members and constructors
	Params   []Param
	Type     typesystem.Type // Return type for functions, value type for properties and objects
	Inner    bool            // Constructor of an inner class
	Origin   Origin
	Package  string  // Package of top-level declarations
	Delegate *Symbol // Member of the delegate type for OriginDelegated symbols
	Field    string  // Delegate field for OriginDelegated symbols
}

// IsExtension reports whether the symbol declares an extension receiver.
func (s *Symbol) IsExtension() bool {
	return s.Receiver != nil
}

// IsMember reports whether the symbol is dispatched on an instance of its owner.
func (s *Symbol) IsMember() bool {
	return s.Owner != nil && s.Kind != ConstructorSymbol && s.Kind != ObjectSymbol
}

// String renders a short declaration-like description, e.g. "fun B.foo(Int): Unit in A".
func (s *Symbol) String() string {
	var sb strings.Builder
	switch s.Kind {
	case FunctionSymbol:
		sb.WriteString("fun ")
	case PropertySymbol:
		sb.WriteString("val ")
	case ConstructorSymbol:
		sb.WriteString("constructor ")
	case ObjectSymbol:
		sb.WriteString("object ")
	}
	if s.Receiver != nil {
		sb.WriteString(s.Receiver.String())
		sb.WriteString(".")
	}
	sb.WriteString(s.Name)
	if s.Kind == FunctionSymbol || s.Kind == ConstructorSymbol {
		sb.WriteString("(")
		for i, p := range s.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			if p.Vararg {
				sb.WriteString("vararg ")
			}
			sb.WriteString(p.Type.String())
		}
		sb.WriteString(")")
	}
	if s.Type != nil && s.Kind != ConstructorSymbol && s.Kind != ObjectSymbol {
		sb.WriteString(": ")
		sb.WriteString(s.Type.String())
	}
	if s.Owner != nil && s.Kind != ObjectSymbol {
		sb.WriteString(" in ")
		sb.WriteString(s.Owner.Name)
	} else if s.Package != "" {
		sb.WriteString(" in ")
		sb.WriteString(s.Package)
	}
	return sb.String()
}

// sameSignature reports whether two symbols would override each other.
func sameSignature(a, b *Symbol) bool {
	if a.Name != b.Name || a.Kind != b.Kind || len(a.Params) != len(b.Params) {
		return false
	}
	if (a.Receiver == nil) != (b.Receiver == nil) {
		return false
	}
	if a.Receiver != nil && !a.Receiver.Equal(b.Receiver) {
		return false
	}
	for i := range a.Params {
		if !a.Params[i].Type.Equal(b.Params[i].Type) {
			return false
		}
	}
	return true
}

// NewFunction creates a function symbol with positional parameter types.
func NewFunction(name string, ret typesystem.Type, params ...typesystem.Type) *Symbol {
	sym := &Symbol{Name: name, Kind: FunctionSymbol, Type: ret}
	for i, p := range params {
		sym.Params = append(sym.Params, Param{Name: paramName(i), Type: p})
	}
	return sym
}

// NewExtension creates an extension function symbol.
func NewExtension(receiver typesystem.Type, name string, ret typesystem.Type, params ...typesystem.Type) *Symbol {
	sym := NewFunction(name, ret, params...)
	sym.Receiver = receiver
	return sym
}

// NewProperty creates a property symbol.
func NewProperty(name string, t typesystem.Type) *Symbol {
	return &Symbol{Name: name, Kind: PropertySymbol, Type: t}
}

func paramName(i int) string {
	return "p" + strconv.Itoa(i)
}
