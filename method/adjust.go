package method

import (
	"fmt"

	"github.com/cottand/traits/trait"
	"github.com/cottand/traits/types"
)

// Adjusted is a receiver type together with the adjustments applied to reach it.
// It is one of *Unadjusted, *Dereferenced, *Referenced or *MutReferenced.
type Adjusted interface {
	fmt.Stringer
	// Type is the receiver type after all adjustments
	Type() types.Type
	isAdjusted()
}

// Unadjusted is the receiver as written
type Unadjusted struct {
	T types.Type
}

// Dereferenced is one application of Deref (or DerefMut) to Input
type Dereferenced struct {
	Input Adjusted
	// Trait is Deref<Target> for Input.Type()
	Trait   *trait.Reference
	Results *trait.Result
}

// Referenced takes a & reference to Input
type Referenced struct {
	Input Adjusted
}

// MutReferenced takes a &mut reference to Input
type MutReferenced struct {
	Input Adjusted
}

func (*Unadjusted) isAdjusted()    {}
func (*Dereferenced) isAdjusted()  {}
func (*Referenced) isAdjusted()    {}
func (*MutReferenced) isAdjusted() {}

func (a *Unadjusted) Type() types.Type    { return a.T }
func (a *Dereferenced) Type() types.Type  { return a.Trait.Params[0] }
func (a *Referenced) Type() types.Type    { return Ref(a.Input.Type()) }
func (a *MutReferenced) Type() types.Type { return RefMut(a.Input.Type()) }

func (a *Unadjusted) String() string { return types.Resolve(a.T).String() }
func (a *Dereferenced) String() string {
	return fmt.Sprintf("%s(%v)", a.Trait.ID, a.Input)
}
func (a *Referenced) String() string    { return fmt.Sprintf("&(%v)", a.Input) }
func (a *MutReferenced) String() string { return fmt.Sprintf("&mut(%v)", a.Input) }

// Derefs counts the Dereferenced layers of a
func Derefs(a Adjusted) int {
	n := 0
	for a != nil {
		if _, ok := a.(*Dereferenced); ok {
			n++
		}
		a = inner(a)
	}
	return n
}

// inner returns the adjusted type a was built on, or nil if a is Unadjusted
func inner(a Adjusted) Adjusted {
	switch a := a.(type) {
	case *Dereferenced:
		return a.Input
	case *Referenced:
		return a.Input
	case *MutReferenced:
		return a.Input
	default:
		return nil
	}
}
