package types

import (
	"sort"

	"github.com/xtgo/set"
)

// Subst replaces every Param in t by replacements[Param.Index].
// Variables are left untouched, bound or not.
func Subst(t Type, replacements []Type) Type {
	switch t := t.(type) {
	case Param:
		if t.Index < 0 || t.Index >= len(replacements) {
			Fatalf("type parameter %v out of range of %d replacements", t, len(replacements))
		}
		replacement := replacements[t.Index]
		if _, isParam := replacement.(Param); isParam {
			Fatalf("cannot substitute %v with another type parameter %v", t, replacement)
		}
		return replacement
	case *Con:
		if len(t.Params) == 0 {
			return t
		}
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = Subst(p, replacements)
		}
		return &Con{ID: t.ID, Params: params}
	case *Var:
		return t
	}
	Fatalf("unknown type %T", t)
	return nil
}

// SubstAll is Subst over a slice
func SubstAll(ts []Type, replacements []Type) []Type {
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = Subst(t, replacements)
	}
	return out
}

// Resolve returns t with every bound variable replaced by its value, recursively.
// Unbound variables are kept.
func Resolve(t Type) Type {
	switch t := Shallow(t).(type) {
	case *Con:
		if len(t.Params) == 0 {
			return t
		}
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = Resolve(p)
		}
		return &Con{ID: t.ID, Params: params}
	default:
		return t
	}
}

// FreeVars returns the sorted indices of the unbound variables reachable from ts
func FreeVars(ts ...Type) []int {
	var indices []int
	var collect func(Type)
	collect = func(t Type) {
		switch t := Shallow(t).(type) {
		case *Var:
			indices = append(indices, t.index)
		case *Con:
			for _, p := range t.Params {
				collect(p)
			}
		}
	}
	for _, t := range ts {
		collect(t)
	}
	sort.Ints(indices)
	return indices[:set.Uniq(sort.IntSlice(indices))]
}

// FullyBound reports whether no unbound variable is reachable from ts
func FullyBound(ts ...Type) bool {
	return len(FreeVars(ts...)) == 0
}

// HasParams reports whether any Param occurs in t
func HasParams(t Type) bool {
	switch t := Shallow(t).(type) {
	case Param:
		return true
	case *Con:
		for _, p := range t.Params {
			if HasParams(p) {
				return true
			}
		}
	}
	return false
}
