package trait

import (
	"testing"

	"github.com/cottand/traits/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	intType   = types.New("int")
	floatType = types.New("float")
	fooType   = types.New("foo")
	strType   = types.New("str")
	p0        = types.Param{Index: 0}
)

func list(t types.Type) types.Type { return types.New("list", t) }

func ref(id string, self types.Type, params ...types.Type) *Reference {
	return &Reference{ID: id, Self: self, Params: params}
}

func bounded(bounds ...*Reference) *ParamDef {
	return &ParamDef{Bounds: bounds}
}

func impl(id string, trait *Reference, params ...*ParamDef) *Impl {
	return &Impl{ID: id, Params: params, Trait: trait}
}

func confirmations(r *Result) []string {
	var out []string
	for _, c := range r.Confirmed {
		out = append(out, c.String())
	}
	return out
}

func TestResolveBasic(t *testing.T) {
	program := NewProgram(nil, []*Impl{
		impl("ToStrInt", ref("ToStr", intType)),
		impl("ToStrFloat", ref("ToStr", floatType)),
	})

	result, err := Resolve(program, types.NewEnv(), []*Obligation{
		NewObligation("ToStr/int", ref("ToStr", intType)),
		NewObligation("ToStr/float", ref("ToStr", floatType)),
		NewObligation("ToStr/str", ref("ToStr", fooType)),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ToStr/int -> ToStrInt<>", "ToStr/float -> ToStrFloat<>"}, confirmations(result))
	assert.Empty(t, result.Deferred)
	assert.Empty(t, result.Overflow)
	assert.Equal(t, []string{"ToStr/str"}, IDs(result.NoImpl))
	assert.Equal(t, NoImpl, result.Outcome("ToStr/str"))
	assert.Equal(t, Unknown, result.Outcome("nope"))
}

func TestResolveGenericImpl(t *testing.T) {
	// impl<T: ToStr> ToStr for list<T> matches list<int> but not list<foo>
	program := NewProgram(nil, []*Impl{
		impl("ToStrInt", ref("ToStr", intType)),
		impl("ToStrList", ref("ToStr", list(p0)), bounded(ref("ToStr", p0))),
	})

	result, err := Resolve(program, types.NewEnv(), []*Obligation{
		NewObligation("ToStr(List<int>)", ref("ToStr", list(intType))),
		NewObligation("ToStr(List<foo>)", ref("ToStr", list(fooType))),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ToStr(List<int>) -> ToStrList<${0:int}>",
		"ToStr(List<foo>) -> ToStrList<${1:foo}>",
		"ToStr(List<int>).0 -> ToStrInt<>",
	}, confirmations(result))
	assert.Empty(t, result.Deferred)
	assert.Empty(t, result.Overflow)
	assert.Equal(t, []string{"ToStr(List<foo>).0"}, IDs(result.NoImpl))
	assert.Equal(t, 1, result.NoImpl[0].Depth)
}

func TestResolveOpenEndedImpl(t *testing.T) {
	// impl<T: Foo> ToStr for list<T> against list<$0> is deferred even though
	// nothing implements Foo yet, as $0 could still become a type that does
	env := types.NewEnv()
	v0 := env.Fresh()
	program := NewProgram(nil, []*Impl{
		impl("ToStr", ref("ToStr", list(p0)), bounded(ref("Foo", p0))),
	})

	result, err := Resolve(program, env, []*Obligation{
		NewObligation("ToStr(List<V0>)", ref("ToStr", list(v0))),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ToStr(List<V0>) -> ToStr<${1:$0}>"}, confirmations(result))
	assert.Equal(t, []string{"ToStr(List<V0>).0"}, IDs(result.Deferred))
	assert.Empty(t, result.Overflow)
	assert.Empty(t, result.NoImpl)
}

func TestResolveDuplicateImpl(t *testing.T) {
	program := NewProgram(nil, []*Impl{
		impl("ToStrInt", ref("ToStr", intType)),
		impl("ToStrInt", ref("ToStr", intType)),
	})
	env := types.NewEnv()

	result, err := Resolve(program, env, []*Obligation{NewObligation("A", ref("ToStr", intType))})
	require.NoError(t, err)

	assert.Empty(t, result.Confirmed)
	assert.Equal(t, []string{"A"}, IDs(result.Deferred))
	assert.Zero(t, env.Len())
}

func TestResolveInference(t *testing.T) {
	t.Run("insufficient type information", func(t *testing.T) {
		env := types.NewEnv()
		v := env.Fresh()
		program := NewProgram(nil, []*Impl{
			impl("ToStrInt", ref("ToStr", intType)),
			impl("ToStrFloat", ref("ToStr", floatType)),
		})

		result, err := Resolve(program, env, []*Obligation{NewObligation("A", ref("ToStr", v))})
		require.NoError(t, err)

		assert.Equal(t, []string{"A"}, IDs(result.Deferred))
		assert.False(t, v.IsBound())
		assert.Zero(t, env.Len())
	})

	t.Run("single impl binds the variable", func(t *testing.T) {
		env := types.NewEnv()
		v := env.Fresh()
		program := NewProgram(nil, []*Impl{impl("ToStrInt", ref("ToStr", intType))})

		result, err := Resolve(program, env, []*Obligation{NewObligation("A", ref("ToStr", v))})
		require.NoError(t, err)

		assert.Equal(t, []string{"A"}, result.ConfirmedIDs())
		assert.Equal(t, intType, types.Resolve(v))
	})

	t.Run("iterator element type", func(t *testing.T) {
		// list<int>: Iterable<$0> has a single impl, so $0 must be int
		env := types.NewEnv()
		v := env.Fresh()
		array := func(t types.Type) types.Type { return types.New("array", t) }
		program := NewProgram(nil, []*Impl{
			impl("IterableList", ref("Iterable", list(p0), p0), bounded()),
			impl("IterableArray", ref("Iterable", array(p0), p0), bounded()),
		})

		result, err := Resolve(program, env, []*Obligation{NewObligation("A", ref("Iterable", list(intType), v))})
		require.NoError(t, err)

		assert.Equal(t, []string{"A"}, result.ConfirmedIDs())
		assert.Equal(t, intType, types.Resolve(v))
	})

	t.Run("ambiguous iterator element type", func(t *testing.T) {
		// str implements both Iterable<char> and Iterable<u8>
		env := types.NewEnv()
		v := env.Fresh()
		program := NewProgram(nil, []*Impl{
			impl("IterableChar", ref("Iterable", strType, types.New("char"))),
			impl("IterableByte", ref("Iterable", strType, types.New("u8"))),
		})

		result, err := Resolve(program, env, []*Obligation{NewObligation("A", ref("Iterable", strType, v))})
		require.NoError(t, err)

		assert.Empty(t, result.Confirmed)
		assert.Equal(t, []string{"A"}, IDs(result.Deferred))
		assert.False(t, v.IsBound())
	})
}

func TestResolveBoundsDisambiguate(t *testing.T) {
	// both impls unify with list<int>, but only the first has satisfiable bounds
	program := NewProgram(nil, []*Impl{
		impl("FooInt", ref("Foo", intType)),
		impl("ToStrFooList", ref("ToStr", list(p0)), bounded(ref("Foo", p0))),
		impl("ToStrBarList", ref("ToStr", list(p0)), bounded(ref("Bar", p0))),
	})
	env := types.NewEnv()

	result, err := Resolve(program, env, []*Obligation{NewObligation("A", ref("ToStr", list(intType)))})
	require.NoError(t, err)

	require.Len(t, result.Confirmed, 2)
	assert.Equal(t, "ToStrFooList", result.Confirmed[0].Impl.ID)
	assert.Equal(t, "A.0", result.Confirmed[1].Obligation.ID)
	assert.Equal(t, "FooInt", result.Confirmed[1].Impl.ID)
	assert.Empty(t, result.NoImpl)
}

func TestResolveOverflow(t *testing.T) {
	self := NewProgram(nil, []*Impl{
		// impl<T: ToStr> ToStr for T
		impl("ToStr", ref("ToStr", p0), bounded(ref("ToStr", p0))),
	})
	mutual := NewProgram(nil, []*Impl{
		// impl<T: Y> X for T
		impl("XForY", ref("X", p0), bounded(ref("Y", p0))),
		// impl<U: X> Y for U
		impl("YForX", ref("Y", p0), bounded(ref("X", p0))),
	})
	expectedConfirmed := []string{"A", "A.0", "A.0.0", "A.0.0.0", "A.0.0.0.0"}

	testCases := []struct {
		name    string
		program *Program
		trait   string
	}{
		{"self referential impl", self, "ToStr"},
		{"mutually recursive impls", mutual, "X"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Resolve(tc.program, types.NewEnv(), []*Obligation{NewObligation("A", ref(tc.trait, strType))})
			require.NoError(t, err)

			assert.Equal(t, expectedConfirmed, result.ConfirmedIDs())
			for depth, c := range result.Confirmed {
				assert.Equal(t, depth, c.Obligation.Depth)
			}
			assert.Empty(t, result.Deferred)
			assert.Equal(t, []string{"A.0.0.0.0.0"}, IDs(result.Overflow))
			assert.Equal(t, 5, result.Overflow[0].Depth)
			assert.Empty(t, result.NoImpl)
		})
	}

	t.Run("configured depth", func(t *testing.T) {
		result, err := Config{MaxDepth: 1}.Resolve(self, types.NewEnv(), []*Obligation{NewObligation("A", ref("ToStr", strType))})
		require.NoError(t, err)

		assert.Equal(t, []string{"A", "A.0"}, result.ConfirmedIDs())
		assert.Equal(t, []string{"A.0.0"}, IDs(result.Overflow))
	})
}

func TestResolveDeterministic(t *testing.T) {
	program := NewProgram(nil, []*Impl{
		impl("ToStrInt", ref("ToStr", intType)),
		impl("ToStrList", ref("ToStr", list(p0)), bounded(ref("ToStr", p0))),
		impl("ToStrAny", ref("ToStr", p0), bounded(ref("Display", p0))),
	})
	run := func() string {
		env := types.NewEnv()
		v := env.Fresh()
		result, err := Resolve(program, env, []*Obligation{
			NewObligation("A", ref("ToStr", list(list(intType)))),
			NewObligation("B", ref("ToStr", v)),
			NewObligation("C", ref("ToStr", fooType)),
		})
		require.NoError(t, err)
		return result.String()
	}

	first := run()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, run())
	}
}

func TestResolveMalformed(t *testing.T) {
	program := NewProgram(nil, []*Impl{
		impl("IterableList", ref("Iterable", list(p0), p0), bounded()),
	})

	_, err := Resolve(program, types.NewEnv(), []*Obligation{NewObligation("A", ref("Iterable", list(intType)))})

	var malformed *types.MalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, err.Error(), "inconsistent number of type parameters")
}

func TestResolveUnsubstitutedParam(t *testing.T) {
	program := NewProgram(nil, []*Impl{
		impl("ToStrAny", ref("ToStr", p0), bounded()),
	})
	env := types.NewEnv()

	result, err := Resolve(program, env, []*Obligation{NewObligation("A", ref("ToStr", list(p0)))})

	assert.Nil(t, result)
	var malformed *types.MalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, err.Error(), "un-substituted type parameter")
	assert.Zero(t, env.Len(), "bindings made before aborting are rolled back")
}

func TestProgram(t *testing.T) {
	toStr := &Trait{ID: "ToStr", Fundeps: []bool{true}, Methods: []*Method{{ID: "to_str", SelfType: types.New("Ref", p0)}}}
	impls := []*Impl{
		impl("A", ref("ToStr", intType)),
		impl("B", ref("Eq", intType)),
		impl("C", ref("ToStr", floatType)),
	}
	program := NewProgram([]*Trait{toStr}, impls)

	assert.Equal(t, []*Impl{impls[0], impls[2]}, program.ImplsOf("ToStr"))
	assert.Nil(t, program.ImplsOf("Missing"))
	assert.Equal(t, impls, program.Impls())

	found, ok := program.Trait("ToStr")
	require.True(t, ok)
	assert.Same(t, toStr, found)
	assert.Zero(t, found.Arity())

	m, ok := found.Method("to_str")
	require.True(t, ok)
	assert.Equal(t, "Ref<P0>", m.SelfType.String())
	_, ok = found.Method("missing")
	assert.False(t, ok)
}

func TestReference(t *testing.T) {
	env := types.NewEnv()
	iterable := &Trait{ID: "Iterable", Fundeps: []bool{true, false}}

	r := iterable.FreshReference(env, list(intType))
	assert.Equal(t, "Iterable<$0> for list<int>", r.String())
	assert.False(t, r.FullyBound())

	other := ref("Iterable", list(p0), p0).Subst([]types.Type{intType})
	assert.Equal(t, "Iterable<int> for list<int>", other.String())
	assert.True(t, UnifyReferences(env, r, other))
	assert.True(t, r.FullyBound())
	assert.Equal(t, "Iterable<int> for list<int>", r.Resolve().String())

	assert.False(t, UnifyReferences(env, r, ref("Iterable", list(intType), floatType)))
}
