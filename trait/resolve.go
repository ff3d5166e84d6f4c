package trait

import (
	"log/slog"

	"github.com/cottand/traits/internal/log"
	"github.com/cottand/traits/types"
)

var resolveLogger = log.Section("resolve")

// Resolve resolves obligations against program with DefaultConfig
func Resolve(program *Program, env *types.Env, obligations []*Obligation) (*Result, error) {
	return DefaultConfig().Resolve(program, env, obligations)
}

// Resolve decides, for every obligation and every obligation nested under a
// confirmed one, whether a unique impl satisfies it.
//
// Bindings needed to confirm an obligation are kept in env. The returned error is
// a *types.MalformedError when program or obligations violate the data model.
func (c Config) Resolve(program *Program, env *types.Env, obligations []*Obligation) (result *Result, err error) {
	defer types.Recover(&err)
	r := &resolver{
		config:  c,
		program: program,
		env:     env,
		logger:  resolveLogger,
	}
	return r.resolve(obligations), nil
}

type resolver struct {
	config  Config
	program *Program
	env     *types.Env
	logger  *slog.Logger
}

func (r *resolver) resolve(obligations []*Obligation) *Result {
	result := &Result{}
	// obligations found while confirming are appended to pending and resolved in this same pass
	pending := append([]*Obligation(nil), obligations...)

	for i := 0; i < len(pending); i++ {
		obligation := pending[i]

		if obligation.Depth > r.config.MaxDepth {
			r.logger.Debug("overflow", "obligation", obligation)
			result.Overflow = append(result.Overflow, obligation)
			continue
		}

		candidates := r.unifiable(obligation)
		// with exactly one candidate confirm straight away, it gives better errors for its bounds
		if len(candidates) != 1 {
			candidates = r.viable(obligation, candidates)
		}

		switch len(candidates) {
		case 1:
			r.logger.Debug("confirmed", "obligation", obligation, "impl", candidates[0].ID)
			pending = append(pending, r.confirm(result, obligation, candidates[0])...)
		case 0:
			if obligation.Trait.FullyBound() {
				r.logger.Debug("no impl", "obligation", obligation)
				result.NoImpl = append(result.NoImpl, obligation)
			} else {
				r.logger.Debug("deferred, not enough type information", "obligation", obligation)
				result.Deferred = append(result.Deferred, obligation)
			}
		default:
			r.logger.Debug("deferred, ambiguous", "obligation", obligation, "candidates", len(candidates))
			result.Deferred = append(result.Deferred, obligation)
		}
	}
	return result
}

// unifiable returns the impls of the obligation's trait whose trait reference
// unifies with the obligation's
func (r *resolver) unifiable(obligation *Obligation) []*Impl {
	var candidates []*Impl
	for _, impl := range r.program.ImplsOf(obligation.Trait.ID) {
		ok := types.Probe(r.env, func() bool {
			_, ok := r.instantiate(impl, obligation)
			return ok
		})
		if ok {
			candidates = append(candidates, impl)
		}
	}
	return candidates
}

// viable returns the candidates whose bounds are not provably unsatisfiable
func (r *resolver) viable(obligation *Obligation, candidates []*Impl) []*Impl {
	var viable []*Impl
	for _, impl := range candidates {
		ok := types.Probe(r.env, func() bool {
			nested, ok := r.nestedObligations(impl, obligation)
			if !ok {
				return false
			}
			return len(r.resolve(nested).NoImpl) == 0
		})
		if ok {
			viable = append(viable, impl)
		} else {
			r.logger.Debug("discarding candidate with unsatisfiable bounds", "obligation", obligation, "impl", impl.ID)
		}
	}
	return viable
}

// confirm records impl as the one satisfying obligation, keeping the bindings
// that make it apply, and returns the obligations arising from impl's bounds
func (r *resolver) confirm(result *Result, obligation *Obligation, impl *Impl) []*Obligation {
	replacements, ok := r.instantiate(impl, obligation)
	if !ok {
		types.Fatalf("candidate %v no longer unifies with obligation %v", impl.ID, obligation.ID)
	}
	result.Confirmed = append(result.Confirmed, Confirmation{
		Obligation:   obligation,
		Impl:         impl,
		Replacements: replacements,
	})
	return nestedOf(obligation, impl, replacements)
}

func (r *resolver) nestedObligations(impl *Impl, obligation *Obligation) ([]*Obligation, bool) {
	replacements, ok := r.instantiate(impl, obligation)
	if !ok {
		return nil, false
	}
	return nestedOf(obligation, impl, replacements), true
}

// instantiate gives impl fresh variables and unifies its trait reference with the
// obligation's, returning the variables
func (r *resolver) instantiate(impl *Impl, obligation *Obligation) ([]types.Type, bool) {
	replacements, ref := impl.Instantiate(r.env)
	if !UnifyReferences(r.env, ref, obligation.Trait) {
		return nil, false
	}
	return replacements, true
}

func nestedOf(obligation *Obligation, impl *Impl, replacements []types.Type) []*Obligation {
	bounds := impl.Bounds(replacements)
	nested := make([]*Obligation, len(bounds))
	for i, bound := range bounds {
		nested[i] = obligation.nested(i, bound)
	}
	return nested
}
