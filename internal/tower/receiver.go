package tower

import (
	"strconv"
	"strings"

	"github.com/funvibe/tower/internal/symbols"
	"github.com/funvibe/tower/internal/typesystem"
)

// Receiver is the value a call is made on. Variants:
// *ExpressionReceiver, *ImplicitReceiver, *QualifierReceiver, *SuperReceiver.
type Receiver interface {
	// Type is the static type of the receiver value.
	Type() typesystem.Type
	String() string
	isReceiver()
}

// ExpressionReceiver wraps an evaluated expression value, e.g. `a` in `a.foo()`.
type ExpressionReceiver struct {
	Label     string
	ValueType typesystem.Type
}

func (*ExpressionReceiver) isReceiver() {}

func (r *ExpressionReceiver) Type() typesystem.Type { return r.ValueType }

func (r *ExpressionReceiver) String() string {
	if r.Label != "" {
		return r.Label
	}
	return "<" + typeName(r.ValueType) + ">"
}

// NewExpressionReceiver creates an expression receiver of type t.
func NewExpressionReceiver(label string, t typesystem.Type) *ExpressionReceiver {
	return &ExpressionReceiver{Label: label, ValueType: t}
}

// ImplicitReceiver is an enclosing this-context. Depth is the index of the
// tower element declaring it (0 is innermost) and is assigned by NewEnvironment.
// A receiver belongs to the first environment built with it.
type ImplicitReceiver struct {
	Label     string
	ValueType typesystem.Type
	Depth     int

	owner *Environment
}

func (*ImplicitReceiver) isReceiver() {}

func (r *ImplicitReceiver) Type() typesystem.Type { return r.ValueType }

func (r *ImplicitReceiver) String() string {
	label := r.Label
	if label == "" {
		label = typeName(r.ValueType)
	}
	return "this@" + label + "#" + strconv.Itoa(r.Depth)
}

// NewImplicitReceiver creates an implicit receiver of type t.
func NewImplicitReceiver(label string, t typesystem.Type) *ImplicitReceiver {
	return &ImplicitReceiver{Label: label, ValueType: t}
}

type QualifierKind int

const (
	ClassQualifier QualifierKind = iota
	PackageQualifier
	PseudoPackageQualifier // A package prefix that is not a package by itself (e.g. `kotlin` of `kotlin.io`)
)

func (k QualifierKind) String() string {
	switch k {
	case PackageQualifier:
		return "package"
	case PseudoPackageQualifier:
		return "pseudo-package"
	}
	return "class"
}

// QualifierReceiver is a resolved package or class name written before a call.
type QualifierReceiver struct {
	Kind    QualifierKind
	Package string
	Class   *symbols.Class
	// Original is set when the qualifier was written through a type alias;
	// Class is then the expanded class.
	Original *symbols.Class
}

func (*QualifierReceiver) isReceiver() {}

// Type is the type of the value the qualifier denotes: an object or a
// companion, NoValue otherwise.
func (r *QualifierReceiver) Type() typesystem.Type {
	if r.Kind != ClassQualifier || r.Class == nil {
		return typesystem.NoValue
	}
	return r.Class.QualifierValueType()
}

func (r *QualifierReceiver) String() string {
	if r.Kind == ClassQualifier && r.Class != nil {
		if r.Original != nil {
			return r.Original.Name
		}
		return r.Class.Name
	}
	return r.Package
}

// aliased reports whether the qualifier names a class through a type alias.
func (r *QualifierReceiver) aliased() bool {
	return r.Kind == ClassQualifier && r.Original != nil && r.Original != r.Class
}

// valueReceiver returns the qualifier used as an expression.
func (r *QualifierReceiver) valueReceiver() *ExpressionReceiver {
	return &ExpressionReceiver{Label: r.String(), ValueType: r.Type()}
}

// NewClassQualifier creates a qualifier naming class c.
func NewClassQualifier(c *symbols.Class) *QualifierReceiver {
	return &QualifierReceiver{Kind: ClassQualifier, Class: c, Package: c.Package}
}

// NewPackageQualifier creates a qualifier naming package pkg.
func NewPackageQualifier(pkg string) *QualifierReceiver {
	return &QualifierReceiver{Kind: PackageQualifier, Package: pkg}
}

// SuperReceiver is a written `super` reference. Several supertypes are
// searched as one merged scope.
type SuperReceiver struct {
	Label      string
	Supertypes []typesystem.Type
}

func (*SuperReceiver) isReceiver() {}

func (r *SuperReceiver) Type() typesystem.Type {
	if len(r.Supertypes) == 1 {
		return r.Supertypes[0]
	}
	return typesystem.Any
}

func (r *SuperReceiver) String() string {
	if len(r.Supertypes) == 1 {
		return "super<" + typeName(r.Supertypes[0]) + ">"
	}
	parts := make([]string, len(r.Supertypes))
	for i, t := range r.Supertypes {
		parts[i] = typeName(t)
	}
	return "super<" + strings.Join(parts, " & ") + ">"
}

func typeName(t typesystem.Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}
