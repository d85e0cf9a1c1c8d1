package symbols

import (
	"github.com/funvibe/tower/internal/typesystem"
)

type ClassKind int

const (
	ClassKindClass ClassKind = iota
	ClassKindInterface
	ClassKindObject
)

func (k ClassKind) String() string {
	switch k {
	case ClassKindInterface:
		return "interface"
	case ClassKindObject:
		return "object"
	}
	return "class"
}

// Delegation records `class C : Interface by field`.
type Delegation struct {
	Interface *Class
	Field     string
}

// Class is a classifier declaration. Members are keyed by name; the
// universe computes the full (inherited + delegated) member table on Seal.
type Class struct {
	Name        string
	Package     string
	Kind        ClassKind
	Inner       bool // Inner classes capture an instance of Outer
	Outer       *Class
	Supertypes  []*Class
	Delegations []Delegation
	Companion   *Class

	members      map[string][]*Symbol
	statics      map[string][]*Symbol
	nested       map[string]*Class
	nestedOrder  []*Class
	constructors []*Symbol
	object       *Symbol
}

// NewClass creates an empty class of the given kind.
func NewClass(name string, kind ClassKind) *Class {
	c := &Class{
		Name:    name,
		Kind:    kind,
		members: make(map[string][]*Symbol),
		statics: make(map[string][]*Symbol),
		nested:  make(map[string]*Class),
	}
	if kind == ClassKindObject {
		c.object = &Symbol{Name: name, Kind: ObjectSymbol, Owner: c, Type: c.Type()}
	}
	return c
}

// Type returns the nominal type of instances of the class.
func (c *Class) Type() typesystem.TCon {
	return typesystem.Con(c.Name)
}

// AddSupertype appends a supertype.
func (c *Class) AddSupertype(super *Class) *Class {
	c.Supertypes = append(c.Supertypes, super)
	return c
}

// AddDelegation declares `c : iface by field`; the interface also becomes a supertype.
func (c *Class) AddDelegation(iface *Class, field string) *Class {
	c.Delegations = append(c.Delegations, Delegation{Interface: iface, Field: field})
	return c.AddSupertype(iface)
}

// AddMember declares a member (function, property or member extension).
func (c *Class) AddMember(sym *Symbol) *Symbol {
	sym.Owner = c
	c.members[sym.Name] = append(c.members[sym.Name], sym)
	return sym
}

// AddStatic declares a callable reachable only through the class qualifier.
func (c *Class) AddStatic(sym *Symbol) *Symbol {
	c.statics[sym.Name] = append(c.statics[sym.Name], sym)
	return sym
}

// AddConstructor declares a constructor with positional parameter types.
func (c *Class) AddConstructor(params ...typesystem.Type) *Symbol {
	sym := NewFunction(c.Name, c.Type(), params...)
	sym.Kind = ConstructorSymbol
	sym.Owner = c
	sym.Inner = c.Inner
	c.constructors = append(c.constructors, sym)
	return sym
}

// AddNested declares a nested (or inner) class.
func (c *Class) AddNested(nested *Class) *Class {
	nested.Outer = c
	for _, ctor := range nested.constructors {
		ctor.Inner = nested.Inner
	}
	if _, ok := c.nested[nested.Name]; !ok {
		c.nestedOrder = append(c.nestedOrder, nested)
	}
	c.nested[nested.Name] = nested
	return nested
}

// SetCompanion attaches a companion object.
func (c *Class) SetCompanion(companion *Class) *Class {
	if companion.Kind != ClassKindObject {
		companion.Kind = ClassKindObject
		companion.object = &Symbol{Name: companion.Name, Kind: ObjectSymbol, Owner: companion, Type: companion.Type()}
	}
	c.Companion = companion
	return c.AddNested(companion)
}

// Constructors returns the declared constructors. Objects and interfaces have none.
func (c *Class) Constructors() []*Symbol {
	if c.Kind != ClassKindClass {
		return nil
	}
	return c.constructors
}

// DeclaredMembers returns members declared directly in the class.
func (c *Class) DeclaredMembers(name string) []*Symbol {
	return c.members[name]
}

// Nested returns a nested class by name.
func (c *Class) Nested(name string) (*Class, bool) {
	n, ok := c.nested[name]
	return n, ok
}

// ObjectSymbol returns the value symbol of an object declaration, nil for other classes.
func (c *Class) ObjectSymbol() *Symbol {
	if c.Kind != ClassKindObject {
		return nil
	}
	return c.object
}

// ValueSymbol returns the symbol denoted by the class name used as an
// expression: the object itself or its companion.
func (c *Class) ValueSymbol() *Symbol {
	if c.Kind == ClassKindObject {
		return c.ObjectSymbol()
	}
	if c.Companion != nil {
		return c.Companion.ObjectSymbol()
	}
	return nil
}

// QualifierValueType returns the type of the value a qualifier naming this
// class denotes: the object, its companion, or NoValue.
func (c *Class) QualifierValueType() typesystem.Type {
	if v := c.ValueSymbol(); v != nil {
		return v.Type
	}
	return typesystem.NoValue
}
