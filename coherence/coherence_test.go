package coherence

import (
	"testing"

	"github.com/cottand/traits/trait"
	"github.com/cottand/traits/types"
	"github.com/cottand/traits/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	intType = types.New("int")
	strType = types.New("str")
	p0      = types.Param{Index: 0}
)

func toStr(self types.Type) *trait.Reference {
	return &trait.Reference{ID: "ToStr", Self: self}
}

func bound(id string) *trait.ParamDef {
	return &trait.ParamDef{Bounds: []*trait.Reference{{ID: id, Self: p0}}}
}

func TestCheck(t *testing.T) {
	testCases := []struct {
		name     string
		impls    []*trait.Impl
		expected []Conflict
	}{
		{
			name: "same concrete type twice",
			impls: []*trait.Impl{
				{ID: "ToStrInt1", Trait: toStr(intType)},
				{ID: "ToStrInt2", Trait: toStr(intType)},
			},
			expected: []Conflict{util.NewPair("ToStrInt1", "ToStrInt2")},
		},
		{
			name: "different concrete types",
			impls: []*trait.Impl{
				{ID: "ToStrInt", Trait: toStr(intType)},
				{ID: "ToStrStr", Trait: toStr(strType)},
			},
		},
		{
			name: "unconstrained generic impl overlaps a concrete one",
			impls: []*trait.Impl{
				{ID: "ToStrInt", Trait: toStr(intType)},
				{ID: "ToStrAny", Params: []*trait.ParamDef{{}}, Trait: toStr(p0)},
			},
			expected: []Conflict{util.NewPair("ToStrInt", "ToStrAny")},
		},
		{
			name: "two generic impls with open bounds overlap",
			impls: []*trait.Impl{
				{ID: "ToStrFoo", Params: []*trait.ParamDef{bound("Foo")}, Trait: toStr(p0)},
				{ID: "ToStrBar", Params: []*trait.ParamDef{bound("Bar")}, Trait: toStr(p0)},
			},
			expected: []Conflict{util.NewPair("ToStrFoo", "ToStrBar")},
		},
		{
			name: "generic impl bounded by an unimplemented trait",
			impls: []*trait.Impl{
				{ID: "ToStrInt", Trait: toStr(intType)},
				{ID: "ToStrAnyFoo", Params: []*trait.ParamDef{bound("Foo")}, Trait: toStr(p0)},
			},
		},
		{
			name: "generic impl bounded by a trait the type implements",
			impls: []*trait.Impl{
				{ID: "FooInt", Trait: &trait.Reference{ID: "Foo", Self: intType}},
				{ID: "ToStrInt", Trait: toStr(intType)},
				{ID: "ToStrAnyFoo", Params: []*trait.ParamDef{bound("Foo")}, Trait: toStr(p0)},
			},
			expected: []Conflict{util.NewPair("ToStrInt", "ToStrAnyFoo")},
		},
		{
			name: "different traits never conflict",
			impls: []*trait.Impl{
				{ID: "ToStrInt", Trait: toStr(intType)},
				{ID: "EqInt", Trait: &trait.Reference{ID: "Eq", Self: intType}},
			},
		},
		{
			name: "trait parameters must unify too",
			impls: []*trait.Impl{
				{ID: "IntoInt", Trait: &trait.Reference{ID: "Into", Self: strType, Params: []types.Type{intType}}},
				{ID: "IntoStr", Trait: &trait.Reference{ID: "Into", Self: strType, Params: []types.Type{strType}}},
				{ID: "IntoAny", Params: []*trait.ParamDef{{}}, Trait: &trait.Reference{ID: "Into", Self: strType, Params: []types.Type{p0}}},
			},
			expected: []Conflict{util.NewPair("IntoInt", "IntoAny"), util.NewPair("IntoStr", "IntoAny")},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conflicts, err := Check(trait.NewProgram(nil, tc.impls))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, conflicts)
		})
	}
}

func TestCheckMalformed(t *testing.T) {
	program := trait.NewProgram(nil, []*trait.Impl{
		{ID: "A", Trait: toStr(types.New("list", intType))},
		{ID: "B", Trait: toStr(types.New("list"))},
	})

	_, err := Check(program)

	var malformed *types.MalformedError
	assert.ErrorAs(t, err, &malformed)
}
