package symbols

import (
	"iter"
	"strings"
)

// Scope is one lookup source. Lookups are lazy; a scope never reports an
// error, an unknown name simply yields nothing.
type Scope interface {
	// MayContainName reports whether any lookup of name could yield a symbol.
	MayContainName(name string) bool
	Functions(name string) iter.Seq[*Symbol]
	Properties(name string) iter.Seq[*Symbol]
	Classifiers(name string) iter.Seq[*Class]
	String() string
}

// ConstructorScope exposes the declared constructors of one class.
type ConstructorScope interface {
	Scope
	DeclaredConstructors() iter.Seq[*Symbol]
}

type ScopeType int

const (
	ScopeImport   ScopeType = iota // Default and explicit imports of a file
	ScopePackage                   // Top-level declarations of a package
	ScopeClass                     // Static scope of a class body
	ScopeFunction                  // Parameters and local declarations of a function
	ScopeBlock                     // Local declarations of a block or lambda
)

func (t ScopeType) String() string {
	switch t {
	case ScopeImport:
		return "import"
	case ScopePackage:
		return "package"
	case ScopeClass:
		return "class"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	}
	return "scope"
}

// Table is a lexical scope: a flat name -> declarations map. Chains of
// tables are built by the caller as an explicit ordered list.
type Table struct {
	name       string
	scopeType  ScopeType
	functions  map[string][]*Symbol
	properties map[string][]*Symbol
	classes    map[string]*Class
}

// NewTable creates an empty lexical scope.
func NewTable(name string, scopeType ScopeType) *Table {
	return &Table{
		name:       name,
		scopeType:  scopeType,
		functions:  make(map[string][]*Symbol),
		properties: make(map[string][]*Symbol),
		classes:    make(map[string]*Class),
	}
}

// Define adds a function or property (top-level, local or extension).
func (t *Table) Define(sym *Symbol) *Symbol {
	switch sym.Kind {
	case PropertySymbol, ObjectSymbol:
		t.properties[sym.Name] = append(t.properties[sym.Name], sym)
	default:
		t.functions[sym.Name] = append(t.functions[sym.Name], sym)
	}
	return sym
}

// DefineClass makes a classifier visible by its simple name.
func (t *Table) DefineClass(c *Class) *Class {
	t.classes[c.Name] = c
	return c
}

// Import copies every declaration of another table into this one.
func (t *Table) Import(other *Table) {
	for name, syms := range other.functions {
		t.functions[name] = append(t.functions[name], syms...)
	}
	for name, syms := range other.properties {
		t.properties[name] = append(t.properties[name], syms...)
	}
	for name, c := range other.classes {
		t.classes[name] = c
	}
}

func (t *Table) Type() ScopeType { return t.scopeType }

func (t *Table) MayContainName(name string) bool {
	if _, ok := t.classes[name]; ok {
		return true
	}
	return len(t.functions[name]) > 0 || len(t.properties[name]) > 0
}

func (t *Table) Functions(name string) iter.Seq[*Symbol] {
	return sliceSeq(t.functions[name])
}

func (t *Table) Properties(name string) iter.Seq[*Symbol] {
	return sliceSeq(t.properties[name])
}

func (t *Table) Classifiers(name string) iter.Seq[*Class] {
	c, ok := t.classes[name]
	return func(yield func(*Class) bool) {
		if ok {
			yield(c)
		}
	}
}

func (t *Table) String() string {
	return t.scopeType.String() + " " + t.name
}

// CompositeScope merges several scopes, e.g. the supertypes of `super<A & B>`.
type CompositeScope struct {
	Scopes []Scope
}

// NewCompositeScope merges non-nil scopes. Returns nil when nothing remains.
func NewCompositeScope(scopes ...Scope) Scope {
	var kept []Scope
	for _, s := range scopes {
		if s != nil {
			kept = append(kept, s)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &CompositeScope{Scopes: kept}
}

func (c *CompositeScope) MayContainName(name string) bool {
	for _, s := range c.Scopes {
		if s.MayContainName(name) {
			return true
		}
	}
	return false
}

func (c *CompositeScope) Functions(name string) iter.Seq[*Symbol] {
	return func(yield func(*Symbol) bool) {
		for _, s := range c.Scopes {
			for sym := range s.Functions(name) {
				if !yield(sym) {
					return
				}
			}
		}
	}
}

func (c *CompositeScope) Properties(name string) iter.Seq[*Symbol] {
	return func(yield func(*Symbol) bool) {
		for _, s := range c.Scopes {
			for sym := range s.Properties(name) {
				if !yield(sym) {
					return
				}
			}
		}
	}
}

func (c *CompositeScope) Classifiers(name string) iter.Seq[*Class] {
	return func(yield func(*Class) bool) {
		for _, s := range c.Scopes {
			for cls := range s.Classifiers(name) {
				if !yield(cls) {
					return
				}
			}
		}
	}
}

func (c *CompositeScope) String() string {
	parts := make([]string, len(c.Scopes))
	for i, s := range c.Scopes {
		parts[i] = s.String()
	}
	return "composite(" + strings.Join(parts, ", ") + ")"
}

func sliceSeq[T any](items []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}
