package scenario

import (
	"strconv"

	"github.com/funvibe/tower/internal/config"
	"github.com/funvibe/tower/internal/diagnostics"
	"github.com/funvibe/tower/internal/symbols"
	"github.com/funvibe/tower/internal/tower"
	"github.com/funvibe/tower/internal/typesystem"
)

// Scenario is a built scenario, ready to resolve.
type Scenario struct {
	Path        string
	Description string
	Config      *config.Config
	Universe    *symbols.Universe
	Env         *tower.Environment
	Cases       []*Case
}

// Case is one call of a scenario.
type Case struct {
	Index  int
	Call   *tower.Call
	Target *symbols.Class // Set for delegating constructor calls
	Expect *Expect
}

type builder struct {
	path     string
	universe *symbols.Universe
	classes  map[string]*symbols.Class
}

// Build declares everything the file describes and prepares its calls.
func (f *File) Build(path string) (*Scenario, error) {
	cfg := f.Config
	if cfg == nil {
		cfg = config.Default()
	}
	b := &builder{
		path:     path,
		universe: symbols.NewUniverse(cfg.InvokeName),
		classes:  make(map[string]*symbols.Class),
	}

	for _, decl := range f.Classes {
		if _, err := b.createClass(decl); err != nil {
			return nil, err
		}
	}
	for _, decl := range f.Classes {
		if err := b.fillClass(decl); err != nil {
			return nil, err
		}
	}
	for _, decl := range f.Classes {
		pkg := decl.Package
		if pkg == "" {
			pkg = DefaultPackage
		}
		b.universe.DeclareClass(pkg, b.classes[decl.Name])
	}
	for _, p := range f.Packages {
		b.universe.Package(p.Name)
		for _, fn := range p.Functions {
			sym, err := b.function(fn)
			if err != nil {
				return nil, err
			}
			b.universe.Define(p.Name, sym)
		}
		for _, prop := range p.Properties {
			sym, err := b.property(prop)
			if err != nil {
				return nil, err
			}
			b.universe.Define(p.Name, sym)
		}
	}

	env, err := b.environment(f)
	if err != nil {
		return nil, err
	}
	s := &Scenario{
		Path:        path,
		Description: f.Description,
		Config:      cfg,
		Universe:    b.universe,
		Env:         env,
	}
	for i, decl := range f.Calls {
		c, err := b.call(i, decl)
		if err != nil {
			return nil, err
		}
		s.Cases = append(s.Cases, c)
	}
	return s, nil
}

// LoadScenario loads and builds a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return f.Build(path)
}

func (b *builder) malformed(format string, args ...any) error {
	return diagnostics.NewError(diagnostics.ErrS001, b.path, format, args...)
}

func (b *builder) unknown(format string, args ...any) error {
	return diagnostics.NewError(diagnostics.ErrS002, b.path, format, args...)
}

func (b *builder) parseType(s string) (typesystem.Type, error) {
	t, err := typesystem.Parse(s)
	if err != nil {
		return nil, b.malformed("%v", err)
	}
	return t, nil
}

func (b *builder) lookupClass(name string) (*symbols.Class, error) {
	c, ok := b.classes[name]
	if !ok {
		return nil, b.unknown("class %q is not declared", name)
	}
	return c, nil
}

// createClass registers decl and its nested classes. Class names are unique
// across the scenario.
func (b *builder) createClass(decl Class) (*symbols.Class, error) {
	if decl.Name == "" {
		return nil, b.malformed("class without name")
	}
	if _, dup := b.classes[decl.Name]; dup {
		return nil, b.malformed("class %q declared twice", decl.Name)
	}
	var kind symbols.ClassKind
	switch decl.Kind {
	case "", "class":
		kind = symbols.ClassKindClass
	case "interface":
		kind = symbols.ClassKindInterface
	case "object":
		kind = symbols.ClassKindObject
	default:
		return nil, b.malformed("class %q: unknown kind %q", decl.Name, decl.Kind)
	}
	c := symbols.NewClass(decl.Name, kind)
	c.Inner = decl.Inner
	b.classes[decl.Name] = c

	for _, nested := range decl.Nested {
		n, err := b.createClass(nested)
		if err != nil {
			return nil, err
		}
		c.AddNested(n)
	}
	if decl.Companion != nil {
		companion, err := b.createClass(*decl.Companion)
		if err != nil {
			return nil, err
		}
		c.SetCompanion(companion)
	}
	return c, nil
}

// fillClass adds supertypes and members once every class exists.
func (b *builder) fillClass(decl Class) error {
	c := b.classes[decl.Name]
	for _, name := range decl.Supertypes {
		super, err := b.lookupClass(name)
		if err != nil {
			return err
		}
		c.AddSupertype(super)
	}
	for _, d := range decl.Delegates {
		iface, err := b.lookupClass(d.Interface)
		if err != nil {
			return err
		}
		c.AddDelegation(iface, d.Field)
	}
	for _, fn := range decl.Members {
		sym, err := b.function(fn)
		if err != nil {
			return err
		}
		c.AddMember(sym)
	}
	for _, prop := range decl.Properties {
		sym, err := b.property(prop)
		if err != nil {
			return err
		}
		c.AddMember(sym)
	}
	for _, fn := range decl.Statics {
		sym, err := b.function(fn)
		if err != nil {
			return err
		}
		c.AddStatic(sym)
	}
	for _, ctor := range decl.Constructors {
		params, err := b.params(ctor.Params)
		if err != nil {
			return err
		}
		c.AddConstructor().Params = params
	}
	for _, nested := range decl.Nested {
		if err := b.fillClass(nested); err != nil {
			return err
		}
	}
	if decl.Companion != nil {
		return b.fillClass(*decl.Companion)
	}
	return nil
}

func (b *builder) params(decls []Param) ([]symbols.Param, error) {
	params := make([]symbols.Param, 0, len(decls))
	for i, p := range decls {
		t, err := b.parseType(p.Type)
		if err != nil {
			return nil, err
		}
		name := p.Name
		if name == "" {
			// Same naming as symbols.NewFunction.
			name = "p" + strconv.Itoa(i)
		}
		params = append(params, symbols.Param{Name: name, Type: t, HasDefault: p.Default, Vararg: p.Vararg})
	}
	return params, nil
}

func (b *builder) function(decl Function) (*symbols.Symbol, error) {
	if decl.Name == "" {
		return nil, b.malformed("function without name")
	}
	ret := typesystem.Type(typesystem.Unit)
	if decl.Returns != "" {
		t, err := b.parseType(decl.Returns)
		if err != nil {
			return nil, err
		}
		ret = t
	}
	sym := symbols.NewFunction(decl.Name, ret)
	params, err := b.params(decl.Params)
	if err != nil {
		return nil, err
	}
	sym.Params = params
	if decl.Receiver != "" {
		recv, err := b.parseType(decl.Receiver)
		if err != nil {
			return nil, err
		}
		sym.Receiver = recv
	}
	return sym, nil
}

func (b *builder) property(decl Property) (*symbols.Symbol, error) {
	if decl.Name == "" || decl.Type == "" {
		return nil, b.malformed("property needs a name and a type")
	}
	t, err := b.parseType(decl.Type)
	if err != nil {
		return nil, err
	}
	return symbols.NewProperty(decl.Name, t), nil
}

func (b *builder) packageScope(name string) (symbols.Scope, error) {
	scope := b.universe.PackageScope(name)
	if scope == nil {
		return nil, b.unknown("package %q is not declared", name)
	}
	return scope, nil
}

func (b *builder) environment(f *File) (*tower.Environment, error) {
	var elements []tower.Element
	for _, decl := range f.Tower {
		var el tower.Element
		if decl.Scope != "" {
			scope, err := b.packageScope(decl.Scope)
			if err != nil {
				return nil, err
			}
			el.Scope = scope
		}
		if decl.Receiver != "" {
			t, err := b.parseType(decl.Receiver)
			if err != nil {
				return nil, err
			}
			label := decl.Label
			if label == "" {
				label = decl.Receiver
			}
			el.Receiver = tower.NewImplicitReceiver(label, t)
		}
		el.Local = decl.Local
		elements = append(elements, el)
	}

	var locals []symbols.Scope
	for i, decl := range f.Locals {
		name := decl.Name
		if name == "" {
			name = "local" + strconv.Itoa(i)
		}
		table := symbols.NewTable(name, symbols.ScopeBlock)
		for _, fn := range decl.Functions {
			sym, err := b.function(fn)
			if err != nil {
				return nil, err
			}
			table.Define(sym)
		}
		for _, prop := range decl.Properties {
			sym, err := b.property(prop)
			if err != nil {
				return nil, err
			}
			table.Define(sym)
		}
		locals = append(locals, table)
	}

	var imports []symbols.Scope
	for _, name := range f.Imports {
		scope, err := b.packageScope(name)
		if err != nil {
			return nil, err
		}
		imports = append(imports, scope)
	}

	env, err := tower.NewEnvironment(elements, locals, imports)
	if err != nil {
		return nil, b.malformed("%v", err)
	}
	return env, nil
}

func (b *builder) call(index int, decl Call) (*Case, error) {
	c := &tower.Call{Name: decl.Name, IsPotentialQualifierPart: decl.QualifierPart}
	switch decl.Kind {
	case "variable":
		c.Kind = tower.CallVariableAccess
	case "reference":
		c.Kind = tower.CallCallableReference
	default:
		c.Kind = tower.CallFunction
	}
	for _, a := range decl.Args {
		arg := tower.Argument{Name: a.Name}
		if a.Type != "?" {
			t, err := b.parseType(a.Type)
			if err != nil {
				return nil, err
			}
			arg.Type = t
		}
		c.Arguments = append(c.Arguments, arg)
	}
	if decl.Receiver != nil {
		recv, err := b.receiver(*decl.Receiver)
		if err != nil {
			return nil, err
		}
		c.ExplicitReceiver = recv
	}
	if decl.Stub != "" {
		t, err := b.parseType(decl.Stub)
		if err != nil {
			return nil, err
		}
		c.StubReceiver = tower.NewExpressionReceiver(decl.Stub, t)
	}

	kase := &Case{Index: index, Call: c, Expect: decl.Expect}
	if decl.Delegating != "" {
		target, err := b.lookupClass(decl.Delegating)
		if err != nil {
			return nil, err
		}
		kase.Target = target
	}
	return kase, nil
}

func (b *builder) receiver(decl Receiver) (tower.Receiver, error) {
	switch {
	case decl.Type != "":
		t, err := b.parseType(decl.Type)
		if err != nil {
			return nil, err
		}
		return tower.NewExpressionReceiver(decl.Label, t), nil
	case decl.Class != "":
		c, err := b.lookupClass(decl.Class)
		if err != nil {
			return nil, err
		}
		q := tower.NewClassQualifier(c)
		if decl.Alias != "" {
			q.Original = symbols.NewClass(decl.Alias, symbols.ClassKindClass)
		}
		return q, nil
	case decl.Package != "":
		if _, err := b.packageScope(decl.Package); err != nil {
			return nil, err
		}
		return tower.NewPackageQualifier(decl.Package), nil
	}
	super := &tower.SuperReceiver{Label: decl.Label}
	for _, s := range decl.Super {
		t, err := b.parseType(s)
		if err != nil {
			return nil, err
		}
		super.Supertypes = append(super.Supertypes, t)
	}
	return super, nil
}
