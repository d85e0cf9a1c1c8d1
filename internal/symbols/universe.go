package symbols

import (
	"slices"
	"sync"

	"github.com/funvibe/tower/internal/config"
	"github.com/funvibe/tower/internal/typesystem"
)

// Universe owns every declaration of a program: packages, classes and the
// sealed member tables. It is the scope provider of the resolver and the
// subtyping authority of the applicability checker.
//
// Declarations are added before the first lookup; the first lookup seals the
// universe and it is read-only afterwards.
type Universe struct {
	invokeName string
	packages   map[string]*Table
	classes    map[string]*Class
	order      []*Class

	sealOnce sync.Once
	members  map[*Class]*memberTable
}

// NewUniverse creates an empty universe. invokeName names the operator
// synthesized on function-typed values.
func NewUniverse(invokeName string) *Universe {
	if invokeName == "" {
		invokeName = config.InvokeName
	}
	return &Universe{
		invokeName: invokeName,
		packages:   make(map[string]*Table),
		classes:    make(map[string]*Class),
	}
}

// Package returns the top-level scope of pkg, creating it on first use.
func (u *Universe) Package(pkg string) *Table {
	t, ok := u.packages[pkg]
	if !ok {
		t = NewTable(pkg, ScopePackage)
		u.packages[pkg] = t
	}
	return t
}

// Define declares a top-level callable in pkg.
func (u *Universe) Define(pkg string, sym *Symbol) *Symbol {
	sym.Package = pkg
	return u.Package(pkg).Define(sym)
}

// DeclareClass registers c (and its nested classes) in pkg. Top-level
// classes become visible by simple name in the package scope.
func (u *Universe) DeclareClass(pkg string, c *Class) *Class {
	c.Package = pkg
	if c.object != nil {
		c.object.Package = pkg
	}
	if _, ok := u.classes[c.Name]; !ok {
		u.order = append(u.order, c)
	}
	u.classes[c.Name] = c
	if c.Outer == nil {
		u.Package(pkg).DefineClass(c)
	}
	for _, nested := range c.nestedOrder {
		u.DeclareClass(pkg, nested)
	}
	return c
}

// Class finds a class by name.
func (u *Universe) Class(name string) (*Class, bool) {
	c, ok := u.classes[name]
	return c, ok
}

// Classes returns all classes in declaration order.
func (u *Universe) Classes() []*Class {
	return u.order
}

// Seal computes the member tables. Further declarations are not observed.
func (u *Universe) Seal() {
	u.sealOnce.Do(func() {
		u.members = make(map[*Class]*memberTable, len(u.order))
		visiting := make(map[*Class]bool)
		for _, c := range u.order {
			u.buildMembers(c, visiting)
		}
	})
}

func (u *Universe) buildMembers(c *Class, visiting map[*Class]bool) *memberTable {
	if t, ok := u.members[c]; ok {
		return t
	}
	if visiting[c] {
		// Cyclic hierarchy: the class contributes only its own members.
		return newMemberTable()
	}
	visiting[c] = true
	defer delete(visiting, c)

	t := newMemberTable()
	for _, syms := range c.members {
		for _, sym := range syms {
			t.add(sym)
		}
	}
	for _, d := range c.Delegations {
		for sym := range u.buildMembers(d.Interface, visiting).all() {
			t.add(delegatedMember(c, d, sym))
		}
	}
	for _, super := range c.Supertypes {
		st := u.buildMembers(super, visiting)
		for sym := range st.all() {
			t.add(sym)
		}
		for name, inner := range st.inner {
			if _, ok := t.inner[name]; !ok {
				t.inner[name] = inner
			}
		}
	}
	for _, nested := range c.nestedOrder {
		if nested.Inner {
			t.inner[nested.Name] = nested
		}
	}
	u.members[c] = t
	return t
}

func delegatedMember(c *Class, d Delegation, target *Symbol) *Symbol {
	return &Symbol{
		Name:     target.Name,
		Kind:     target.Kind,
		Receiver: target.Receiver,
		Owner:    c,
		Params:   target.Params,
		Type:     target.Type,
		Origin:   OriginDelegated,
		Delegate: target,
		Field:    d.Field,
	}
}

// MemberScope returns the member scope of values of type t, or nil when t
// does not resolve to any class.
func (u *Universe) MemberScope(t typesystem.Type) Scope {
	u.Seal()
	switch typ := t.(type) {
	case typesystem.TCon:
		c, ok := u.classes[typesystem.ClassName(typ)]
		if !ok {
			return nil
		}
		return &classMemberScope{class: c, table: u.members[c]}
	case typesystem.TIntLiteral:
		for _, target := range config.IntegerLiteralTargets {
			if s := u.MemberScope(typesystem.Con(target)); s != nil {
				return s
			}
		}
		return nil
	case typesystem.TFunc:
		return newFunctionTypeScope(typ, u.invokeName)
	}
	return nil
}

// StaticScope returns the callables reachable through a class qualifier.
func (u *Universe) StaticScope(c *Class) Scope {
	if c == nil {
		return nil
	}
	return &staticScope{class: c}
}

// NestedScope returns the classifiers declared inside c.
func (u *Universe) NestedScope(c *Class) Scope {
	if c == nil {
		return nil
	}
	return &nestedScope{class: c}
}

// PackageScope returns the top-level scope of pkg, nil if the package is unknown.
func (u *Universe) PackageScope(pkg string) Scope {
	t, ok := u.packages[pkg]
	if !ok {
		return nil
	}
	return t
}

// ConstructorScope returns the scope whose declared constructors are those of c.
func (u *Universe) ConstructorScope(c *Class) ConstructorScope {
	if c == nil {
		return nil
	}
	u.Seal()
	return &classMemberScope{class: c, table: u.members[c]}
}

// IsSubtype reports whether a value of type sub can be used where super is expected.
func (u *Universe) IsSubtype(sub, super typesystem.Type) bool {
	if sub == nil || super == nil {
		return false
	}
	if super.Equal(typesystem.Any) {
		return true
	}
	if sub.Equal(typesystem.Nothing) || sub.Equal(super) {
		return true
	}
	switch s := sub.(type) {
	case typesystem.TIntLiteral:
		for _, target := range config.IntegerLiteralTargets {
			if u.IsSubtype(typesystem.Con(target), super) {
				return true
			}
		}
		return false
	case typesystem.TCon:
		p, ok := super.(typesystem.TCon)
		if !ok {
			return false
		}
		if len(p.Args) > 0 && len(s.Args) > 0 && !typesListEqual(s.Args, p.Args) {
			return false
		}
		return u.isSubclass(s.Name, p.Name)
	case typesystem.TFunc:
		p, ok := super.(typesystem.TFunc)
		if !ok || len(s.Params) != len(p.Params) {
			return false
		}
		if (s.Receiver == nil) != (p.Receiver == nil) {
			return false
		}
		if s.Receiver != nil && !u.IsSubtype(p.Receiver, s.Receiver) {
			return false
		}
		for i := range s.Params {
			if !u.IsSubtype(p.Params[i], s.Params[i]) {
				return false
			}
		}
		return u.IsSubtype(s.ReturnType, p.ReturnType)
	}
	return false
}

func (u *Universe) isSubclass(sub, super string) bool {
	if sub == super {
		return true
	}
	start, ok := u.classes[sub]
	if !ok {
		return false
	}
	seen := map[*Class]bool{start: true}
	queue := []*Class{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, st := range c.Supertypes {
			if st.Name == super {
				return true
			}
			if !seen[st] {
				seen[st] = true
				queue = append(queue, st)
			}
		}
	}
	return false
}

func typesListEqual(a, b []typesystem.Type) bool {
	return slices.EqualFunc(a, b, func(x, y typesystem.Type) bool { return x.Equal(y) })
}
