package method

import (
	"fmt"

	"github.com/cottand/traits/trait"
	"github.com/cottand/traits/types"
	"github.com/cottand/traits/util"
)

// Result is the outcome of resolving a method call. It is one of *Match,
// *Ambiguous, *CannotDeref, *CannotRefMut or *CannotReconcileSelfType.
type Result interface {
	fmt.Stringer
	isResult()
}

// Match is a successful resolution: Method of Trait is called on Adjusted
type Match struct {
	Trait    *trait.Reference
	Method   *trait.Method
	Adjusted Adjusted
	Results  *trait.Result
}

// Ambiguous means more than one trait could still provide the method
type Ambiguous struct {
	Traits []*trait.Trait
}

// CannotDeref means no trait provides the method for any type reached by
// dereferencing, and Type cannot be dereferenced further
type CannotDeref struct {
	Type types.Type
}

// CannotRefMut means the method takes &mut self but Adjusted goes through a
// dereference that cannot be made mutable
type CannotRefMut struct {
	Adjusted Adjusted
}

// CannotReconcileSelfType means the method's receiver type SelfType matches no
// adjustment of the receiver
type CannotReconcileSelfType struct {
	SelfType types.Type
	Trait    *trait.Reference
}

func (*Match) isResult()                   {}
func (*Ambiguous) isResult()               {}
func (*CannotDeref) isResult()             {}
func (*CannotRefMut) isResult()            {}
func (*CannotReconcileSelfType) isResult() {}

func (r *Match) String() string {
	return fmt.Sprintf("Match(%v, %v)", r.Adjusted, r.Trait.Resolve())
}

func (r *Ambiguous) String() string {
	return fmt.Sprintf("Ambiguous(%s)", util.JoinStrings(r.Traits, ", "))
}

func (r *CannotDeref) String() string {
	return fmt.Sprintf("CannotDeref(%v)", types.Resolve(r.Type))
}

func (r *CannotRefMut) String() string {
	return fmt.Sprintf("CannotRefMut(%v)", r.Adjusted)
}

func (r *CannotReconcileSelfType) String() string {
	return fmt.Sprintf("CannotReconcileSelfType(%v, %v)", types.Resolve(r.SelfType), r.Trait.Resolve())
}

// Kind names the variant of r, as in "Match" or "CannotDeref"
func Kind(r Result) string {
	switch r.(type) {
	case *Match:
		return "Match"
	case *Ambiguous:
		return "Ambiguous"
	case *CannotDeref:
		return "CannotDeref"
	case *CannotRefMut:
		return "CannotRefMut"
	case *CannotReconcileSelfType:
		return "CannotReconcileSelfType"
	default:
		return "Unknown"
	}
}
