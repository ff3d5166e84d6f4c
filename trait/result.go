package trait

import (
	"fmt"
	"strings"

	"github.com/cottand/traits/types"
	"github.com/cottand/traits/util"
)

// Outcome is the bucket an obligation ends up in after resolution
type Outcome int

const (
	Unknown Outcome = iota
	// Confirmed obligations are satisfied by exactly one impl
	Confirmed
	// Deferred obligations may be satisfied once more types are known
	Deferred
	// Overflow obligations were nested deeper than Config.MaxDepth
	Overflow
	// NoImpl obligations can never be satisfied
	NoImpl
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Deferred:
		return "deferred"
	case Overflow:
		return "overflow"
	case NoImpl:
		return "noImpl"
	default:
		return "unknown"
	}
}

// Confirmation records the impl selected for an obligation, and the variables its
// type parameters were instantiated with
type Confirmation struct {
	Obligation   *Obligation
	Impl         *Impl
	Replacements []types.Type
}

func (c Confirmation) String() string {
	return fmt.Sprintf("%s -> %s<%s>", c.Obligation.ID, c.Impl.ID, util.JoinStrings(c.Replacements, ", "))
}

// Result partitions every obligation seen during a resolution, in the order they
// were processed
type Result struct {
	Confirmed []Confirmation
	Deferred  []*Obligation
	Overflow  []*Obligation
	NoImpl    []*Obligation
}

// Outcome returns where the obligation with the given id ended up
func (r *Result) Outcome(id string) Outcome {
	for _, c := range r.Confirmed {
		if c.Obligation.ID == id {
			return Confirmed
		}
	}
	buckets := []struct {
		obligations []*Obligation
		outcome     Outcome
	}{
		{r.Deferred, Deferred},
		{r.Overflow, Overflow},
		{r.NoImpl, NoImpl},
	}
	for _, bucket := range buckets {
		for _, o := range bucket.obligations {
			if o.ID == id {
				return bucket.outcome
			}
		}
	}
	return Unknown
}

// ConfirmedIDs returns the ids of the confirmed obligations
func (r *Result) ConfirmedIDs() []string {
	return util.Map(r.Confirmed, func(c Confirmation) string { return c.Obligation.ID })
}

func IDs(obligations []*Obligation) []string {
	return util.Map(obligations, func(o *Obligation) string { return o.ID })
}

func (r *Result) String() string {
	sb := &strings.Builder{}
	sb.WriteString("confirmed:\n")
	for _, c := range r.Confirmed {
		_, _ = fmt.Fprintf(sb, "  %v\n", c)
	}
	for _, bucket := range []struct {
		name        string
		obligations []*Obligation
	}{
		{"deferred", r.Deferred},
		{"overflow", r.Overflow},
		{"noImpl", r.NoImpl},
	} {
		_, _ = fmt.Fprintf(sb, "%s:\n", bucket.name)
		for _, o := range bucket.obligations {
			_, _ = fmt.Fprintf(sb, "  %s: %v\n", o.ID, o.Trait)
		}
	}
	return sb.String()
}
