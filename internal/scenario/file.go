// Package scenario reads resolution scenarios from YAML files.
//
// A scenario declares a small program (packages, classes, imports), the
// scope tower of one enclosing declaration and a list of calls made inside
// it, each with an optional expectation:
//
//	packages:
//	  - name: app
//	    functions:
//	      - {name: addTo, params: ["MutableList<Int>", Int]}
//	classes:
//	  - name: Foo
//	tower:
//	  - receiver: Foo
//	  - scope: app
//	calls:
//	  - name: addTo
//	    args: ["MutableList<Int>", "IntegerLiteral(1)"]
//	    expect: {outcome: resolved, group: NonLocal(1), owner: app}
//
// Build turns a File into a universe, an environment and resolvable cases.
package scenario

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/tower/internal/config"
	"github.com/funvibe/tower/internal/diagnostics"
)

// DefaultPackage is the package of classes declared without one.
const DefaultPackage = "main"

// File is the top-level structure of a scenario file.
type File struct {
	// Description is printed by the CLI next to the file name.
	Description string `yaml:"description,omitempty"`

	// Config overrides the resolver configuration for this scenario.
	Config *config.Config `yaml:"config,omitempty"`

	// Packages declare top-level functions and properties.
	Packages []Package `yaml:"packages,omitempty"`

	// Classes declare classifiers; nested and companion classes are
	// declared inside their outer class.
	Classes []Class `yaml:"classes,omitempty"`

	// Imports name the packages searched for extensions that hide members,
	// highest priority first.
	Imports []string `yaml:"imports,omitempty"`

	// Tower lists the enclosing declarations, innermost first.
	Tower []Element `yaml:"tower,omitempty"`

	// Locals lists the local scopes, innermost first.
	Locals []Local `yaml:"locals,omitempty"`

	Calls []Call `yaml:"calls"`
}

// Package is a set of top-level declarations.
type Package struct {
	Name       string     `yaml:"name"`
	Functions  []Function `yaml:"functions,omitempty"`
	Properties []Property `yaml:"properties,omitempty"`
}

// Function declares a function, a member function or an extension.
type Function struct {
	Name string `yaml:"name"`

	// Receiver is the extension receiver type; empty for plain functions.
	Receiver string `yaml:"receiver,omitempty"`

	Params []Param `yaml:"params,omitempty"`

	// Returns defaults to Unit.
	Returns string `yaml:"returns,omitempty"`
}

// Property declares a property of the given type.
type Property struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Param is a value parameter. It is written either as a bare type
// (`Int`) or as a mapping (`{name: x, type: Int, default: true}`).
type Param struct {
	Name    string `yaml:"name,omitempty"`
	Type    string `yaml:"type"`
	Default bool   `yaml:"default,omitempty"`
	Vararg  bool   `yaml:"vararg,omitempty"`
}

// UnmarshalYAML accepts the scalar shorthand.
func (p *Param) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Type = node.Value
		return nil
	}
	type plain Param
	return node.Decode((*plain)(p))
}

// Class declares a classifier.
type Class struct {
	Name string `yaml:"name"`

	// Package defaults to DefaultPackage. Nested classes share the package
	// of their outer class.
	Package string `yaml:"package,omitempty"`

	// Kind is class (default), interface or object.
	Kind string `yaml:"kind,omitempty"`

	// Inner classes capture an instance of their outer class.
	Inner bool `yaml:"inner,omitempty"`

	Supertypes []string     `yaml:"supertypes,omitempty"`
	Delegates  []Delegation `yaml:"delegates,omitempty"`

	// Members are instance functions; a receiver makes them member extensions.
	Members    []Function `yaml:"members,omitempty"`
	Properties []Property `yaml:"properties,omitempty"`

	// Statics are reachable through the class qualifier only.
	Statics []Function `yaml:"statics,omitempty"`

	Constructors []Constructor `yaml:"constructors,omitempty"`
	Nested       []Class       `yaml:"nested,omitempty"`
	Companion    *Class        `yaml:"companion,omitempty"`
}

// Delegation declares `class C : Interface by field`.
type Delegation struct {
	Interface string `yaml:"interface"`
	Field     string `yaml:"field"`
}

// Constructor declares one constructor overload.
type Constructor struct {
	Params []Param `yaml:"params,omitempty"`
}

// Element is one tower element.
type Element struct {
	// Scope names a package whose top-level declarations the element sees.
	Scope string `yaml:"scope,omitempty"`

	// Receiver is the type of the element's implicit receiver.
	Receiver string `yaml:"receiver,omitempty"`
	Label    string `yaml:"label,omitempty"`

	// Local elements contribute their scope through the locals list.
	Local bool `yaml:"local,omitempty"`
}

// Local is a local scope.
type Local struct {
	Name       string     `yaml:"name"`
	Functions  []Function `yaml:"functions,omitempty"`
	Properties []Property `yaml:"properties,omitempty"`
}

// Call is one call site to resolve.
type Call struct {
	Name string `yaml:"name"`

	// Kind is function (default), variable or reference.
	Kind string `yaml:"kind,omitempty"`

	Receiver *Receiver `yaml:"receiver,omitempty"`
	Args     []Arg     `yaml:"args,omitempty"`

	// QualifierPart marks calls that may be the head of a longer qualified name.
	QualifierPart bool `yaml:"qualifier_part,omitempty"`

	// Stub is the type of the stub receiver of an unbound callable reference.
	Stub string `yaml:"stub,omitempty"`

	// Delegating names the target class of a `this(...)`/`super(...)` call.
	Delegating string `yaml:"delegating,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Receiver is the explicit receiver of a call. Exactly one of Type,
// Class, Package and Super is set.
type Receiver struct {
	// Type makes an expression receiver of that type.
	Type  string `yaml:"type,omitempty"`
	Label string `yaml:"label,omitempty"`

	// Class makes a class qualifier; Alias is the type alias it was written through.
	Class string `yaml:"class,omitempty"`
	Alias string `yaml:"alias,omitempty"`

	// Package makes a package qualifier.
	Package string `yaml:"package,omitempty"`

	// Super lists the supertypes of a super receiver.
	Super []string `yaml:"super,omitempty"`
}

// Arg is a value argument, written as a bare type or as `{name: x, type: Int}`.
// The type `?` stands for an argument not typed yet.
type Arg struct {
	Name string `yaml:"name,omitempty"`
	Type string `yaml:"type"`
}

// UnmarshalYAML accepts the scalar shorthand.
func (a *Arg) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		a.Type = node.Value
		return nil
	}
	type plain Arg
	return node.Decode((*plain)(a))
}

// Expect is what a call must resolve to. Empty fields are not checked.
type Expect struct {
	// Outcome is resolved, unresolved or ambiguous.
	Outcome string `yaml:"outcome,omitempty"`

	// Group is the rendered group of the winning candidates.
	Group string `yaml:"group,omitempty"`

	// Owner is the class or package declaring the single winning candidate.
	Owner string `yaml:"owner,omitempty"`

	// Applicability is applicable, uncertain or inapplicable.
	Applicability string `yaml:"applicability,omitempty"`

	// Invoked is the name of the variable an invoke candidate is called on.
	Invoked string `yaml:"invoked,omitempty"`

	// Candidates is the number of winning candidates.
	Candidates int `yaml:"candidates,omitempty"`
}

// Load reads and parses a scenario file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading scenario %s", path)
	}
	return Parse(data, path)
}

// Parse parses scenario content from bytes.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, diagnostics.NewError(diagnostics.ErrS001, path, "%v", err)
	}
	if err := f.validate(path); err != nil {
		return nil, err
	}
	if f.Config != nil {
		f.Config.Normalize()
	}
	return &f, nil
}

// IsScenarioFile reports whether path has a scenario file extension.
func IsScenarioFile(path string) bool {
	for _, ext := range config.ScenarioFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func malformed(path, format string, args ...any) error {
	return diagnostics.NewError(diagnostics.ErrS001, path, format, args...)
}

// validate checks the file for structural errors. Name resolution is left
// to Build.
func (f *File) validate(path string) error {
	if len(f.Calls) == 0 {
		return malformed(path, "no calls defined")
	}
	for i, p := range f.Packages {
		if p.Name == "" {
			return malformed(path, "packages[%d]: name is required", i)
		}
	}
	for i, el := range f.Tower {
		if el.Scope == "" && el.Receiver == "" {
			return malformed(path, "tower[%d]: scope or receiver is required", i)
		}
	}
	for i, c := range f.Calls {
		if c.Name == "" {
			return malformed(path, "calls[%d]: name is required", i)
		}
		switch c.Kind {
		case "", "function", "variable", "reference":
		default:
			return malformed(path, "calls[%d] (%s): unknown kind %q", i, c.Name, c.Kind)
		}
		if r := c.Receiver; r != nil {
			set := 0
			for _, present := range []bool{r.Type != "", r.Class != "", r.Package != "", len(r.Super) > 0} {
				if present {
					set++
				}
			}
			if set != 1 {
				return malformed(path, "calls[%d] (%s): receiver needs exactly one of type, class, package or super", i, c.Name)
			}
			if r.Alias != "" && r.Class == "" {
				return malformed(path, "calls[%d] (%s): alias is only valid with class", i, c.Name)
			}
		}
		if c.Delegating != "" && c.Receiver != nil {
			return malformed(path, "calls[%d] (%s): delegating calls have no receiver", i, c.Name)
		}
		if e := c.Expect; e != nil {
			switch e.Outcome {
			case "", "resolved", "unresolved", "ambiguous":
			default:
				return malformed(path, "calls[%d] (%s): unknown expected outcome %q", i, c.Name, e.Outcome)
			}
		}
	}
	return nil
}
