package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/tower/internal/symbols"
	"github.com/funvibe/tower/internal/tower"
	"github.com/funvibe/tower/internal/typesystem"
)

func newTestUniverse() *symbols.Universe {
	u := symbols.NewUniverse("")
	animal := symbols.NewClass("Animal", symbols.ClassKindInterface)
	dog := symbols.NewClass("Dog", symbols.ClassKindClass).AddSupertype(animal)
	u.DeclareClass("app", animal)
	u.DeclareClass("app", dog)
	u.DeclareClass("builtins", symbols.NewClass("Int", symbols.ClassKindClass))
	return u
}

func args(types ...typesystem.Type) []tower.Argument {
	out := make([]tower.Argument, len(types))
	for i, t := range types {
		out[i] = tower.Argument{Type: t}
	}
	return out
}

func TestCheckArguments(t *testing.T) {
	animal := typesystem.Con("Animal")
	dog := typesystem.Con("Dog")
	c := New(newTestUniverse())

	withDefault := []symbols.Param{{Name: "a", Type: typesystem.Int}, {Name: "b", Type: typesystem.Int, HasDefault: true}}
	vararg := []symbols.Param{{Name: "first", Type: typesystem.String}, {Name: "rest", Type: typesystem.Int, Vararg: true}}

	tests := []struct {
		name   string
		params []symbols.Param
		args   []tower.Argument
		want   tower.Applicability
	}{
		{"exact", []symbols.Param{{Name: "a", Type: typesystem.Int}}, args(typesystem.Int), tower.Applicable},
		{"subtype", []symbols.Param{{Name: "a", Type: animal}}, args(dog), tower.Applicable},
		{"supertype", []symbols.Param{{Name: "a", Type: dog}}, args(animal), tower.Inapplicable},
		{"integer literal", []symbols.Param{{Name: "a", Type: typesystem.Long}}, args(typesystem.TIntLiteral{Value: 3}), tower.Applicable},
		{"too many", []symbols.Param{{Name: "a", Type: typesystem.Int}}, args(typesystem.Int, typesystem.Int), tower.Inapplicable},
		{"missing", []symbols.Param{{Name: "a", Type: typesystem.Int}}, nil, tower.Inapplicable},
		{"default omitted", withDefault, args(typesystem.Int), tower.Applicable},
		{"default given", withDefault, args(typesystem.Int, typesystem.Int), tower.Applicable},
		{"named", withDefault, []tower.Argument{{Name: "b", Type: typesystem.Int}, {Name: "a", Type: typesystem.Int}}, tower.Applicable},
		{"unknown name", withDefault, []tower.Argument{{Name: "c", Type: typesystem.Int}}, tower.Inapplicable},
		{"named twice", withDefault, []tower.Argument{{Name: "a", Type: typesystem.Int}, {Name: "a", Type: typesystem.Int}}, tower.Inapplicable},
		{"positional after named", withDefault, []tower.Argument{{Name: "a", Type: typesystem.Int}, {Type: typesystem.Int}}, tower.Inapplicable},
		{"vararg empty", vararg, args(typesystem.String), tower.Applicable},
		{"vararg many", vararg, args(typesystem.String, typesystem.Int, typesystem.Int, typesystem.Int), tower.Applicable},
		{"vararg wrong element", vararg, args(typesystem.String, typesystem.Int, typesystem.String), tower.Inapplicable},
		{"untyped argument", []symbols.Param{{Name: "a", Type: typesystem.Func(typesystem.Unit)}}, args(nil), tower.Uncertain},
		{"untyped but wrong arity", []symbols.Param{{Name: "a", Type: typesystem.Int}}, args(nil, nil), tower.Inapplicable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.checkArguments(tt.params, tt.args))
		})
	}
}

func TestIsApplicableReceivers(t *testing.T) {
	c := New(newTestUniverse())
	dog := tower.NewExpressionReceiver("d", typesystem.Con("Dog"))
	animal := tower.NewExpressionReceiver("a", typesystem.Con("Animal"))
	speak := symbols.NewExtension(typesystem.Con("Animal"), "speak", typesystem.Unit)
	bark := symbols.NewExtension(typesystem.Con("Dog"), "bark", typesystem.Unit)

	call := tower.NewCall("speak")
	assert.Equal(t, tower.Applicable, c.IsApplicable(&tower.Candidate{Symbol: speak, ExtensionReceiver: dog}, call))
	assert.Equal(t, tower.Inapplicable, c.IsApplicable(&tower.Candidate{Symbol: bark, ExtensionReceiver: animal}, call))
	assert.Equal(t, tower.Inapplicable, c.IsApplicable(&tower.Candidate{Symbol: speak}, call), "extension without receiver")
}

func TestIsApplicableByCallKind(t *testing.T) {
	c := New(newTestUniverse())
	prop := symbols.NewProperty("size", typesystem.Int)
	fn := symbols.NewFunction("size", typesystem.Int, typesystem.Int)

	variable := &tower.Call{Name: "size", Kind: tower.CallVariableAccess}
	ref := &tower.Call{Name: "size", Kind: tower.CallCallableReference}
	call := tower.NewCall("size")

	assert.Equal(t, tower.Applicable, c.IsApplicable(&tower.Candidate{Symbol: prop}, variable))
	assert.Equal(t, tower.Inapplicable, c.IsApplicable(&tower.Candidate{Symbol: prop}, call))
	assert.Equal(t, tower.Applicable, c.IsApplicable(&tower.Candidate{Symbol: fn}, ref), "references carry no arguments")
	assert.Equal(t, tower.Inapplicable, c.IsApplicable(&tower.Candidate{Symbol: fn}, call))
}

func TestIsApplicableExtensionInvoke(t *testing.T) {
	c := New(newTestUniverse())
	fn := typesystem.MustParse("Dog.(Int) -> Unit").(typesystem.TFunc)
	invoke := &symbols.Symbol{Name: "invoke", Kind: symbols.FunctionSymbol, Type: fn.ReturnType}
	for i, p := range fn.InvokeParams() {
		invoke.Params = append(invoke.Params, symbols.Param{Name: "p" + string(rune('0'+i)), Type: p})
	}
	call := tower.NewCall("invoke", typesystem.Int)

	dog := tower.NewExpressionReceiver("d", typesystem.Con("Dog"))
	assert.Equal(t, tower.Applicable, c.IsApplicable(&tower.Candidate{Symbol: invoke, ExtensionReceiver: dog, ExtensionInvoke: true}, call))

	animal := tower.NewExpressionReceiver("a", typesystem.Con("Animal"))
	assert.Equal(t, tower.Inapplicable, c.IsApplicable(&tower.Candidate{Symbol: invoke, ExtensionReceiver: animal, ExtensionInvoke: true}, call))
	assert.Equal(t, tower.Inapplicable, c.IsApplicable(&tower.Candidate{Symbol: invoke, ExtensionInvoke: true}, call))
}
