package catalogue

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cottand/traits/coherence"
	"github.com/cottand/traits/method"
	"github.com/cottand/traits/trait"
	"github.com/cottand/traits/types"
	"github.com/hashicorp/go-set/v2"
)

// Report is everything running a catalogue produced
type Report struct {
	Resolution *trait.Result
	Conflicts  []coherence.Conflict
	Methods    []MethodOutcome
	// Vars are the final values of the inference variables of the catalogue
	Vars map[string]types.Type
}

type MethodOutcome struct {
	Query  *Query
	Result method.Result
}

// Run resolves the obligations of c, checks its impls for coherence and then
// resolves its method queries, in that order. Bindings made by resolving the
// obligations are visible to the method queries.
//
// Run binds variables of c.Env, so it should be called once per Catalogue.
func (c *Catalogue) Run() (*Report, error) {
	resolution, err := c.Config.Resolve(c.Program, c.Env, c.Obligations)
	if err != nil {
		return nil, fmt.Errorf("resolving obligations: %w", err)
	}
	conflicts, err := coherence.CheckWith(c.Config, c.Program)
	if err != nil {
		return nil, fmt.Errorf("checking coherence: %w", err)
	}

	report := &Report{
		Resolution: resolution,
		Conflicts:  conflicts,
		Vars:       make(map[string]types.Type, len(c.Vars)),
	}
	for _, q := range c.Queries {
		result, err := method.ResolveWith(c.Config, c.Program, c.Env, q.Receiver, q.Traits, q.Method)
		if err != nil {
			return nil, fmt.Errorf("resolving method %s: %w", q.ID, err)
		}
		logger.Debug("resolved method", "query", q.ID, "result", method.Kind(result))
		report.Methods = append(report.Methods, MethodOutcome{Query: q, Result: result})
	}
	for name, v := range c.Vars {
		report.Vars[name] = types.Resolve(v)
	}
	return report, nil
}

func (r *Report) String() string {
	sb := &strings.Builder{}
	sb.WriteString(r.Resolution.String())

	sb.WriteString("conflicts:\n")
	for _, conflict := range r.Conflicts {
		_, _ = fmt.Fprintf(sb, "  %v\n", conflict)
	}

	sb.WriteString("methods:\n")
	for _, m := range r.Methods {
		_, _ = fmt.Fprintf(sb, "  %s -> %v\n", m.Query.ID, m.Result)
	}

	if len(r.Vars) > 0 {
		sb.WriteString("vars:\n")
		names := make([]string, 0, len(r.Vars))
		for name := range r.Vars {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			_, _ = fmt.Fprintf(sb, "  ?%s = %v\n", name, r.Vars[name])
		}
	}
	return sb.String()
}

// Check compares the report against expect and describes every difference.
// Obligations and conflicts not mentioned in expect are not checked, except that
// when expect lists conflicts it must list all of them.
func (r *Report) Check(expect *Expectations) []string {
	if expect == nil {
		return nil
	}
	var mismatches []string
	outcomes := []struct {
		ids     []string
		outcome trait.Outcome
	}{
		{expect.Confirmed, trait.Confirmed},
		{expect.Deferred, trait.Deferred},
		{expect.Overflow, trait.Overflow},
		{expect.NoImpl, trait.NoImpl},
	}
	for _, expected := range outcomes {
		for _, id := range expected.ids {
			if got := r.Resolution.Outcome(id); got != expected.outcome {
				mismatches = append(mismatches, fmt.Sprintf("obligation %s: expected %v, got %v", id, expected.outcome, got))
			}
		}
	}

	if expect.Conflicts != nil {
		want := set.New[string](len(expect.Conflicts))
		for _, pair := range expect.Conflicts {
			want.Insert(conflictKey(pair[0], pair[1]))
		}
		got := set.New[string](len(r.Conflicts))
		for _, conflict := range r.Conflicts {
			got.Insert(conflictKey(conflict.Fst, conflict.Snd))
		}
		for _, missing := range sorted(want.Difference(got)) {
			mismatches = append(mismatches, fmt.Sprintf("expected conflict %s", missing))
		}
		for _, extra := range sorted(got.Difference(want)) {
			mismatches = append(mismatches, fmt.Sprintf("unexpected conflict %s", extra))
		}
	}

	if expect.Methods != nil {
		if len(expect.Methods) != len(r.Methods) {
			mismatches = append(mismatches, fmt.Sprintf("expected %d method results, got %d", len(expect.Methods), len(r.Methods)))
		}
		for i := 0; i < min(len(expect.Methods), len(r.Methods)); i++ {
			if got := method.Kind(r.Methods[i].Result); got != expect.Methods[i] {
				mismatches = append(mismatches, fmt.Sprintf("method %s: expected %s, got %v", r.Methods[i].Query.ID, expect.Methods[i], r.Methods[i].Result))
			}
		}
	}
	return mismatches
}

// conflictKey identifies a conflict regardless of the order of its impls
func conflictKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("(%s, %s)", a, b)
}

func sorted(items set.Collection[string]) []string {
	s := items.Slice()
	slices.Sort(s)
	return s
}
