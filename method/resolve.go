// Package method resolves a method call against a receiver type, inserting
// auto-deref and auto-ref adjustments the way a Rust-like type checker does.
package method

import (
	"log/slog"

	"github.com/cottand/traits/internal/log"
	"github.com/cottand/traits/trait"
	"github.com/cottand/traits/types"
	"github.com/hashicorp/go-set/v2"
)

var logger = log.Section("method")

// Resolve resolves receiver.name(...) with trait.DefaultConfig
func Resolve(program *trait.Program, env *types.Env, receiver types.Type, traits []*trait.Trait, name string) (Result, error) {
	return ResolveWith(trait.DefaultConfig(), program, env, receiver, traits, name)
}

// ResolveWith resolves receiver.name(...) where name is a method of one of the
// in-scope traits.
//
// The receiver is dereferenced through Deref impls until exactly one trait
// declaring name cannot be ruled out for the dereferenced type, then the method's
// receiver type is reconciled against the chain by auto-referencing. Bindings made
// by a Match are kept in env.
func ResolveWith(config trait.Config, program *trait.Program, env *types.Env, receiver types.Type, traits []*trait.Trait, name string) (result Result, err error) {
	defer types.Recover(&err)
	cx := &lookup{
		config:  config,
		program: program,
		env:     env,
		traits:  declaring(traits, name),
		name:    name,
		logger:  logger.With("method", name),
	}
	return cx.search(&Unadjusted{T: receiver}, 0), nil
}

type lookup struct {
	config  trait.Config
	program *trait.Program
	env     *types.Env
	// traits are the in-scope traits that declare the method
	traits []*trait.Trait
	name   string
	logger *slog.Logger
}

// declaring returns the traits declaring a method called name, without repeats
func declaring(traits []*trait.Trait, name string) []*trait.Trait {
	seen := set.New[string](len(traits))
	var out []*trait.Trait
	for _, t := range traits {
		if _, ok := t.Method(name); !ok {
			continue
		}
		if seen.Insert(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

func (cx *lookup) search(adjusted Adjusted, derefs int) Result {
	var applicable []*trait.Trait
	for _, t := range cx.traits {
		// keep the trait if we cannot rule it out
		possible := types.Probe(cx.env, func() bool {
			_, results := cx.resolveTrait(adjusted.Type(), t, "method")
			return len(results.NoImpl) == 0
		})
		if possible {
			applicable = append(applicable, t)
		}
	}

	switch len(applicable) {
	case 0:
		return cx.searchAfterDeref(adjusted, derefs)
	case 1:
	default:
		cx.logger.Debug("ambiguous", "receiver", adjusted, "traits", len(applicable))
		return &Ambiguous{Traits: applicable}
	}

	// fundeps and coherence mean at most one impl can apply, even if it is not
	// known yet, so resolve for real this time
	chosen := applicable[0]
	ref, results := cx.resolveTrait(adjusted.Type(), chosen, "method")
	if len(results.NoImpl) != 0 {
		types.Fatalf("trait %v was applicable to %v when probed but not when resolved", chosen.ID, adjusted)
	}
	m, _ := chosen.Method(cx.name)
	return cx.reconcile(adjusted, m, ref, results)
}

func (cx *lookup) searchAfterDeref(adjusted Adjusted, derefs int) Result {
	if derefs >= cx.config.MaxAutoderef {
		cx.logger.Debug("autoderef limit reached", "receiver", adjusted)
		return &CannotDeref{Type: adjusted.Type()}
	}
	ref, results := cx.resolveTrait(adjusted.Type(), DerefTrait, "deref")

	// Deref is either definitely not implemented, or not known to be
	if len(results.NoImpl) != 0 || len(results.Confirmed) == 0 {
		cx.logger.Debug("cannot deref", "receiver", adjusted)
		return &CannotDeref{Type: adjusted.Type()}
	}

	// the deref method returns &Target, but the receiver type after deref is
	// Target itself: autoref finds methods taking &self on it anyway
	next := &Dereferenced{Input: adjusted, Trait: ref, Results: results}
	cx.logger.Debug("dereferenced", "receiver", adjusted, "target", next.Type())
	return cx.search(next, derefs+1)
}

// reconcile finds the adjustment of the receiver that the method's declared
// receiver type accepts: the receiver itself, &receiver or &mut receiver, peeling
// back dereferences when none of them match
func (cx *lookup) reconcile(adjusted Adjusted, m *trait.Method, ref *trait.Reference, results *trait.Result) Result {
	selfType := types.Subst(m.SelfType, append([]types.Type{ref.Self}, ref.Params...))
	match := func(a Adjusted) *Match {
		return &Match{Trait: ref, Method: m, Adjusted: a, Results: results}
	}

	for current := adjusted; current != nil; current = inner(current) {
		if cx.env.Attempt(func() bool { return cx.env.Unify(selfType, current.Type()) }) {
			return match(current)
		}
		if cx.env.Attempt(func() bool { return cx.env.Unify(selfType, Ref(current.Type())) }) {
			return match(&Referenced{Input: current})
		}

		snapshot := cx.env.Snapshot()
		if cx.env.Unify(selfType, RefMut(current.Type())) {
			mutable, ok := cx.makeMutable(current)
			if !ok {
				cx.env.Rollback(snapshot)
				return &CannotRefMut{Adjusted: current}
			}
			return match(&MutReferenced{Input: mutable})
		}
		cx.logger.Debug("self type does not match, peeling", "selfType", selfType, "receiver", current)
	}
	return &CannotReconcileSelfType{SelfType: selfType, Trait: ref}
}

// makeMutable replays the dereferences of adjusted through DerefMut instead of Deref
func (cx *lookup) makeMutable(adjusted Adjusted) (Adjusted, bool) {
	switch a := adjusted.(type) {
	case *Unadjusted, *MutReferenced:
		return a, true
	case *Referenced:
		return nil, false
	case *Dereferenced:
		if a.Trait.ID == DerefMutTrait.ID {
			return a, true
		}
		input, ok := cx.makeMutable(a.Input)
		if !ok {
			return nil, false
		}
		ref := &trait.Reference{ID: DerefMutTrait.ID, Self: input.Type(), Params: a.Trait.Params}
		results, err := cx.config.Resolve(cx.program, cx.env, []*trait.Obligation{trait.NewObligation("deref_mut", ref)})
		if err != nil {
			panic(err)
		}
		if len(results.NoImpl) != 0 || len(results.Confirmed) == 0 {
			cx.logger.Debug("cannot make mutable", "receiver", a)
			return nil, false
		}
		return &Dereferenced{Input: input, Trait: ref, Results: results}, true
	}
	types.Fatalf("unknown adjustment %T", adjusted)
	return nil, false
}

func (cx *lookup) resolveTrait(self types.Type, t *trait.Trait, id string) (*trait.Reference, *trait.Result) {
	ref := t.FreshReference(cx.env, self)
	results, err := cx.config.Resolve(cx.program, cx.env, []*trait.Obligation{trait.NewObligation(id, ref)})
	if err != nil {
		// keep unwinding to ResolveWith, which recovers it
		panic(err)
	}
	return ref, results
}
