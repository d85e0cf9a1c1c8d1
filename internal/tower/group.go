package tower

import (
	"strconv"
	"strings"
)

type category int

const (
	categoryStart category = iota
	categoryClassifierPrioritized
	categoryQualifier
	categoryClassifier
	categoryTopPrioritized
	categoryMember
	categoryLocal
	categoryNonLocal
	categoryImplicit
	categoryInvokeExtension
	categoryQualifierValue
	categoryLast
)

var categoryNames = [...]string{
	categoryStart:                 "Start",
	categoryClassifierPrioritized: "ClassifierPrioritized",
	categoryQualifier:             "Qualifier",
	categoryClassifier:            "Classifier",
	categoryTopPrioritized:        "TopPrioritized",
	categoryMember:                "Member",
	categoryLocal:                 "Local",
	categoryNonLocal:              "NonLocal",
	categoryImplicit:              "Implicit",
	categoryInvokeExtension:       "InvokeExtension",
	categoryQualifierValue:        "QualifierValue",
	categoryLast:                  "Last",
}

// Kind is one (category, index) step of a Group.
type Kind struct {
	category category
	index    int
}

// rank orders kinds. NonLocal and Implicit share a rank so that, for the
// same depth, a scope and its implicit receiver stay adjacent; the category
// then breaks the tie.
func (k Kind) rank() int {
	if k.category == categoryImplicit {
		return int(categoryNonLocal)
	}
	return int(k.category)
}

func (k Kind) compare(other Kind) int {
	if r, o := k.rank(), other.rank(); r != o {
		return cmpInt(r, o)
	}
	if k.index != other.index {
		return cmpInt(k.index, other.index)
	}
	return cmpInt(int(k.category), int(other.category))
}

func (k Kind) hasIndex() bool {
	switch k.category {
	case categoryTopPrioritized, categoryLocal, categoryNonLocal, categoryImplicit:
		return true
	}
	return false
}

func (k Kind) String() string {
	name := categoryNames[k.category]
	if k.hasIndex() {
		return name + "(" + strconv.Itoa(k.index) + ")"
	}
	return name
}

// InvokePriority orders candidates produced by the invoke convention
// against ordinary candidates of the same group.
type InvokePriority int

const (
	InvokeNone InvokePriority = iota
	InvokeReceiverPriority
	CommonInvoke
	InvokeExtensionPriority
)

func (p InvokePriority) String() string {
	switch p {
	case InvokeReceiverPriority:
		return "receiver"
	case CommonInvoke:
		return "invoke"
	case InvokeExtensionPriority:
		return "extension-invoke"
	}
	return ""
}

// Group is the priority key of a tower level: lower groups are searched
// first and win over higher ones. Groups are immutable values; every
// derivation copies.
type Group struct {
	kinds  []Kind
	invoke InvokePriority
	inner  []Kind // Group of the invoke operator relative to its receiver value
}

// Root groups
var (
	EmptyRoot             = Group{}
	Start                 = EmptyRoot.child(categoryStart, 0)
	ClassifierPrioritized = EmptyRoot.child(categoryClassifierPrioritized, 0)
	Qualifier             = EmptyRoot.child(categoryQualifier, 0)
	Classifier            = EmptyRoot.child(categoryClassifier, 0)
	Member                = EmptyRoot.child(categoryMember, 0)
	InvokeExtension       = EmptyRoot.child(categoryInvokeExtension, 0)
	QualifierValue        = EmptyRoot.child(categoryQualifierValue, 0)
	Last                  = EmptyRoot.child(categoryLast, 0)
)

func (g Group) child(c category, index int) Group {
	kinds := make([]Kind, len(g.kinds), len(g.kinds)+1)
	copy(kinds, g.kinds)
	return Group{kinds: append(kinds, Kind{category: c, index: index}), invoke: g.invoke, inner: g.inner}
}

// Member is the member scope of this group's receiver.
func (g Group) Member() Group { return g.child(categoryMember, 0) }

// Local is the local scope at index (0 is innermost).
func (g Group) Local(index int) Group { return g.child(categoryLocal, index) }

// NonLocal is the non-local scope of the tower element at depth.
func (g Group) NonLocal(depth int) Group { return g.child(categoryNonLocal, depth) }

// Implicit is the implicit receiver of the tower element at depth.
func (g Group) Implicit(depth int) Group { return g.child(categoryImplicit, depth) }

// TopPrioritized is the import scope at index searched for extensions that hide members.
func (g Group) TopPrioritized(index int) Group { return g.child(categoryTopPrioritized, index) }

// InvokeExtension nests g under the extension-invoke category.
func (g Group) InvokeExtension() Group { return g.child(categoryInvokeExtension, 0) }

// Join appends the kinds of other after the kinds of g.
func (g Group) Join(other Group) Group {
	kinds := make([]Kind, 0, len(g.kinds)+len(other.kinds))
	kinds = append(kinds, g.kinds...)
	kinds = append(kinds, other.kinds...)
	return Group{kinds: kinds, invoke: other.invoke, inner: other.inner}
}

// WithInvokePriority returns g with the given invoke priority.
func (g Group) WithInvokePriority(p InvokePriority) Group {
	return Group{kinds: g.kinds, invoke: p, inner: g.inner}
}

// InvokeOn records the group an invoke operator was found at, relative to
// the value it is invoked on. It only breaks ties between invoke candidates
// sharing a receiver group.
func (g Group) InvokeOn(inner Group) Group {
	return Group{kinds: g.kinds, invoke: g.invoke, inner: inner.kinds}
}

// InvokePriority returns the invoke priority of g.
func (g Group) InvokePriority() InvokePriority { return g.invoke }

// Compare orders groups: kinds lexicographically (a prefix sorts first),
// then invoke priority, then the invoke operator's own group.
func (g Group) Compare(other Group) int {
	if c := compareKinds(g.kinds, other.kinds); c != 0 {
		return c
	}
	if g.invoke != other.invoke {
		return cmpInt(int(g.invoke), int(other.invoke))
	}
	return compareKinds(g.inner, other.inner)
}

// Less reports whether g has strictly higher priority than other.
func (g Group) Less(other Group) bool { return g.Compare(other) < 0 }

// Equal reports whether both groups denote the same priority.
func (g Group) Equal(other Group) bool { return g.Compare(other) == 0 }

func (g Group) String() string {
	if len(g.kinds) == 0 && g.invoke == InvokeNone {
		return "EmptyRoot"
	}
	var sb strings.Builder
	writeKinds(&sb, g.kinds)
	if g.invoke != InvokeNone {
		sb.WriteString("[")
		sb.WriteString(g.invoke.String())
		if len(g.inner) > 0 {
			sb.WriteString(" ")
			writeKinds(&sb, g.inner)
		}
		sb.WriteString("]")
	}
	return sb.String()
}

func writeKinds(sb *strings.Builder, kinds []Kind) {
	for i, k := range kinds {
		if i > 0 {
			sb.WriteString(".")
		}
		sb.WriteString(k.String())
	}
}

func compareKinds(a, b []Kind) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		if c := a[i].compare(b[i]); c != 0 {
			return c
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
