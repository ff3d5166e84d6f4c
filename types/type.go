// Package types is the unification substrate of the trait engine: nominal types,
// positional type parameters and mutable unification variables owned by an Env.
package types

import (
	"fmt"
	"strings"
)

// Type is one of *Con, *Var or Param
type Type interface {
	fmt.Stringer
	isType()
}

// Con is a nominal type constructor applied to its type arguments, like List<int>.
// It is immutable once constructed.
type Con struct {
	ID     string
	Params []Type
}

// New returns the type id<params...>
func New(id string, params ...Type) *Con {
	return &Con{ID: id, Params: params}
}

func (*Con) isType() {}

func (c *Con) String() string {
	if len(c.Params) == 0 {
		return c.ID
	}
	sb := strings.Builder{}
	sb.WriteString(c.ID)
	sb.WriteString("<")
	for i, p := range c.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(">")
	return sb.String()
}

// Param is a placeholder for the type at position Index of the enclosing impl's
// or trait's parameter list. It must be eliminated with Subst before unification.
type Param struct {
	Index int
}

func (Param) isType() {}

func (p Param) String() string {
	return fmt.Sprintf("P%d", p.Index)
}

// Var is a unification variable. Only the Env that created it may bind it.
type Var struct {
	index int
	value Type
}

func (*Var) isType() {}

func (v *Var) Index() int { return v.index }

func (v *Var) IsBound() bool { return v.value != nil }

// Value returns what v is bound to, which may be another Var
func (v *Var) Value() (Type, bool) {
	return v.value, v.value != nil
}

func (v *Var) String() string {
	if v.value == nil {
		return fmt.Sprintf("$%d", v.index)
	}
	return fmt.Sprintf("${%d:%s}", v.index, v.value)
}
