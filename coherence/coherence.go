// Package coherence finds pairs of impls that could both apply to the same types
package coherence

import (
	"fmt"

	"github.com/cottand/traits/internal/log"
	"github.com/cottand/traits/trait"
	"github.com/cottand/traits/types"
	"github.com/cottand/traits/util"
)

var logger = log.Section("coherence")

// Conflict is a pair of ids of overlapping impls, in catalogue order
type Conflict = util.Pair[string, string]

// Check returns every pair of impls of the same trait that overlap, using
// trait.DefaultConfig to check their bounds
func Check(program *trait.Program) ([]Conflict, error) {
	return CheckWith(trait.DefaultConfig(), program)
}

// CheckWith returns every pair of impls of the same trait that overlap.
//
// Two impls overlap when some substitution of their type parameters makes their
// trait references equal and neither impl's bounds are then provably
// unsatisfiable. Bounds that are merely deferred count as satisfiable.
func CheckWith(config trait.Config, program *trait.Program) (conflicts []Conflict, err error) {
	defer types.Recover(&err)
	impls := program.Impls()
	for i, first := range impls {
		for _, second := range impls[i+1:] {
			if first.Trait.ID != second.Trait.ID {
				continue
			}
			if overlap(config, program, first, second) {
				logger.Debug("conflict", "first", first.ID, "second", second.ID, "trait", first.Trait.ID)
				conflicts = append(conflicts, util.NewPair(first.ID, second.ID))
			}
		}
	}
	return conflicts, nil
}

func overlap(config trait.Config, program *trait.Program, first, second *trait.Impl) bool {
	env := types.NewEnv()

	firstVars, firstRef := first.Instantiate(env)
	secondVars, secondRef := second.Instantiate(env)

	if !trait.UnifyReferences(env, firstRef, secondRef) {
		return false
	}
	return boundsCouldHold(config, program, env, first, firstVars) &&
		boundsCouldHold(config, program, env, second, secondVars)
}

// boundsCouldHold reports whether the bounds of impl, instantiated with vars, are
// not provably unsatisfiable
func boundsCouldHold(config trait.Config, program *trait.Program, env *types.Env, impl *trait.Impl, vars []types.Type) bool {
	var obligations []*trait.Obligation
	for p, def := range impl.Params {
		for b, bound := range def.Bounds {
			id := fmt.Sprintf("%s[P=%d,B=%d]", impl.ID, p, b)
			obligations = append(obligations, trait.NewObligation(id, bound.Subst(vars)))
		}
	}
	if len(obligations) == 0 {
		return true
	}

	result, err := config.Resolve(program, env, obligations)
	if err != nil {
		panic(err)
	}
	if len(result.NoImpl) > 0 {
		logger.Debug("bounds cannot hold", "impl", impl.ID, "noImpl", trait.IDs(result.NoImpl))
		return false
	}
	return true
}
