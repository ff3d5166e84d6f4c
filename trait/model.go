// Package trait holds the trait catalogue data model and the obligation resolver,
// which decides which impl, if any, satisfies each trait obligation.
package trait

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cottand/traits/types"
	"github.com/cottand/traits/util"
)

// Trait declares methods over Self and the trait's own type parameters.
//
// Fundeps has one entry per type parameter, Self included at position 0, and
// marks the positions that determine the others.
type Trait struct {
	ID      string
	Fundeps []bool
	Methods []*Method
}

// Arity is the number of type parameters of the trait, not counting Self
func (t *Trait) Arity() int {
	if len(t.Fundeps) == 0 {
		return 0
	}
	return len(t.Fundeps) - 1
}

func (t *Trait) Method(name string) (*Method, bool) {
	for _, m := range t.Methods {
		if m.ID == name {
			return m, true
		}
	}
	return nil, false
}

// FreshReference returns a reference to t for self, with a fresh variable for
// each trait type parameter
func (t *Trait) FreshReference(env *types.Env, self types.Type) *Reference {
	return &Reference{
		ID:     t.ID,
		Self:   self,
		Params: env.FreshN(t.Arity()),
	}
}

func (t *Trait) String() string { return t.ID }

// Method is a trait method. SelfType is the type of its receiver, written in terms
// of the trait's parameters: types.Param{Index: 0} is Self, and the trait's own
// type parameters follow from index 1.
type Method struct {
	ID       string
	SelfType types.Type
}

// ParamDef is a type parameter of an impl, <T: Bounds...>
type ParamDef struct {
	Bounds []*Reference
}

// Impl is impl<Params...> Trait for Type
type Impl struct {
	ID     string
	Params []*ParamDef
	Trait  *Reference
}

func (i *Impl) String() string { return i.ID }

// Instantiate returns fresh variables for the parameters of i, and the trait
// reference of i substituted with them
func (i *Impl) Instantiate(env *types.Env) ([]types.Type, *Reference) {
	vars := env.FreshN(len(i.Params))
	return vars, i.Trait.Subst(vars)
}

// Bounds returns the bounds of every parameter of i, substituted with replacements,
// in declaration order
func (i *Impl) Bounds(replacements []types.Type) []*Reference {
	var bounds []*Reference
	for _, def := range i.Params {
		for _, bound := range def.Bounds {
			bounds = append(bounds, bound.Subst(replacements))
		}
	}
	return bounds
}

// Reference is Trait<Params...> for Self
type Reference struct {
	ID     string
	Self   types.Type
	Params []types.Type
}

func (r *Reference) Subst(replacements []types.Type) *Reference {
	return &Reference{
		ID:     r.ID,
		Self:   types.Subst(r.Self, replacements),
		Params: types.SubstAll(r.Params, replacements),
	}
}

// Resolve returns r with its bound variables replaced by their values
func (r *Reference) Resolve() *Reference {
	return &Reference{
		ID:     r.ID,
		Self:   types.Resolve(r.Self),
		Params: util.Map(r.Params, types.Resolve),
	}
}

// FullyBound reports whether no unbound variable is reachable from r
func (r *Reference) FullyBound() bool {
	return types.FullyBound(append([]types.Type{r.Self}, r.Params...)...)
}

func (r *Reference) String() string {
	sb := strings.Builder{}
	sb.WriteString(r.ID)
	if len(r.Params) > 0 {
		sb.WriteString("<")
		sb.WriteString(util.JoinStrings(r.Params, ", "))
		sb.WriteString(">")
	}
	sb.WriteString(" for ")
	sb.WriteString(r.Self.String())
	return sb.String()
}

func (r *Reference) LogValue() slog.Value {
	return slog.StringValue(r.Resolve().String())
}

// UnifyReferences unifies the self types and then the parameters of a and b,
// keeping the bindings only if all of them unify
func UnifyReferences(env *types.Env, a, b *Reference) bool {
	if len(a.Params) != len(b.Params) {
		types.Fatalf("inconsistent number of type parameters: %v vs %v", a, b)
	}
	return env.Attempt(func() bool {
		return env.Unify(a.Self, b.Self) && env.UnifyAll(a.Params, b.Params)
	})
}

// Obligation requires that some impl satisfies Trait.
//
// ID encodes where the obligation came from: a nested obligation of "A" is "A.0".
// Depth is how many impl bounds away from a top-level obligation it is.
type Obligation struct {
	ID    string
	Trait *Reference
	Depth int
}

func NewObligation(id string, ref *Reference) *Obligation {
	return &Obligation{ID: id, Trait: ref}
}

func (o *Obligation) nested(bound int, ref *Reference) *Obligation {
	return &Obligation{
		ID:    fmt.Sprintf("%s.%d", o.ID, bound),
		Trait: ref,
		Depth: o.Depth + 1,
	}
}

func (o *Obligation) String() string { return o.ID }

func (o *Obligation) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", o.ID),
		slog.Any("trait", o.Trait),
		slog.Int("depth", o.Depth),
	)
}
