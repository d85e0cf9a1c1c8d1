package symbols

import (
	"iter"

	"github.com/funvibe/tower/internal/typesystem"
)

// memberTable is the sealed instance member table of a class: declared
// members, synthesized delegation members and inherited members, in that
// precedence order.
type memberTable struct {
	functions  map[string][]*Symbol
	properties map[string][]*Symbol
	inner      map[string]*Class
}

func newMemberTable() *memberTable {
	return &memberTable{
		functions:  make(map[string][]*Symbol),
		properties: make(map[string][]*Symbol),
		inner:      make(map[string]*Class),
	}
}

func (t *memberTable) bucket(sym *Symbol) map[string][]*Symbol {
	if sym.Kind == PropertySymbol {
		return t.properties
	}
	return t.functions
}

// add appends sym unless a symbol with the same signature is already present.
func (t *memberTable) add(sym *Symbol) bool {
	bucket := t.bucket(sym)
	for _, existing := range bucket[sym.Name] {
		if existing == sym || sameSignature(existing, sym) {
			return false
		}
	}
	bucket[sym.Name] = append(bucket[sym.Name], sym)
	return true
}

func (t *memberTable) all() iter.Seq[*Symbol] {
	return func(yield func(*Symbol) bool) {
		for _, bucket := range []map[string][]*Symbol{t.functions, t.properties} {
			for _, syms := range bucket {
				for _, sym := range syms {
					if !yield(sym) {
						return
					}
				}
			}
		}
	}
}

// classMemberScope is the member scope of an instance of a class.
type classMemberScope struct {
	class *Class
	table *memberTable
}

func (s *classMemberScope) MayContainName(name string) bool {
	if _, ok := s.table.inner[name]; ok {
		return true
	}
	return len(s.table.functions[name]) > 0 || len(s.table.properties[name]) > 0
}

func (s *classMemberScope) Functions(name string) iter.Seq[*Symbol] {
	return sliceSeq(s.table.functions[name])
}

func (s *classMemberScope) Properties(name string) iter.Seq[*Symbol] {
	return sliceSeq(s.table.properties[name])
}

// Classifiers yields only inner classes: nested classes are not reachable
// through an instance.
func (s *classMemberScope) Classifiers(name string) iter.Seq[*Class] {
	c, ok := s.table.inner[name]
	return func(yield func(*Class) bool) {
		if ok {
			yield(c)
		}
	}
}

func (s *classMemberScope) DeclaredConstructors() iter.Seq[*Symbol] {
	return sliceSeq(s.class.Constructors())
}

func (s *classMemberScope) String() string {
	return "members of " + s.class.Name
}

// staticScope holds the callables reachable through a class qualifier.
type staticScope struct {
	class *Class
}

func (s *staticScope) MayContainName(name string) bool {
	return len(s.class.statics[name]) > 0
}

func (s *staticScope) Functions(name string) iter.Seq[*Symbol] {
	return s.filter(name, false)
}

func (s *staticScope) Properties(name string) iter.Seq[*Symbol] {
	return s.filter(name, true)
}

func (s *staticScope) filter(name string, properties bool) iter.Seq[*Symbol] {
	return func(yield func(*Symbol) bool) {
		for _, sym := range s.class.statics[name] {
			if (sym.Kind == PropertySymbol) != properties {
				continue
			}
			if !yield(sym) {
				return
			}
		}
	}
}

func (s *staticScope) Classifiers(string) iter.Seq[*Class] {
	return sliceSeq[*Class](nil)
}

func (s *staticScope) String() string {
	return "statics of " + s.class.Name
}

// nestedScope holds the classifiers declared inside a class.
type nestedScope struct {
	class *Class
}

func (s *nestedScope) MayContainName(name string) bool {
	_, ok := s.class.nested[name]
	return ok
}

func (s *nestedScope) Functions(string) iter.Seq[*Symbol]  { return sliceSeq[*Symbol](nil) }
func (s *nestedScope) Properties(string) iter.Seq[*Symbol] { return sliceSeq[*Symbol](nil) }

func (s *nestedScope) Classifiers(name string) iter.Seq[*Class] {
	c, ok := s.class.nested[name]
	return func(yield func(*Class) bool) {
		if ok {
			yield(c)
		}
	}
}

func (s *nestedScope) String() string {
	return "nested classifiers of " + s.class.Name
}

// functionTypeScope is the member scope of a function-typed value: a single
// synthesized invoke operator.
type functionTypeScope struct {
	fn     typesystem.TFunc
	invoke *Symbol
}

func newFunctionTypeScope(fn typesystem.TFunc, invokeName string) *functionTypeScope {
	invoke := &Symbol{
		Name:   invokeName,
		Kind:   FunctionSymbol,
		Type:   fn.ReturnType,
		Origin: OriginSynthetic,
	}
	for i, p := range fn.InvokeParams() {
		invoke.Params = append(invoke.Params, Param{Name: paramName(i), Type: p})
	}
	return &functionTypeScope{fn: fn, invoke: invoke}
}

func (s *functionTypeScope) MayContainName(name string) bool {
	return name == s.invoke.Name
}

func (s *functionTypeScope) Functions(name string) iter.Seq[*Symbol] {
	if name != s.invoke.Name {
		return sliceSeq[*Symbol](nil)
	}
	return sliceSeq([]*Symbol{s.invoke})
}

func (s *functionTypeScope) Properties(string) iter.Seq[*Symbol] { return sliceSeq[*Symbol](nil) }
func (s *functionTypeScope) Classifiers(string) iter.Seq[*Class] { return sliceSeq[*Class](nil) }

func (s *functionTypeScope) String() string {
	return "members of " + s.fn.String()
}
