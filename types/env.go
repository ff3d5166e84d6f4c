package types

import "github.com/cottand/traits/internal/log"

// Env owns unification variables and the trail of their bindings.
// It is not safe for concurrent use.
//
// The zero value is an empty Env ready to use.
type Env struct {
	count int
	trail []*Var
}

var logger = log.Section("types")

func NewEnv() *Env {
	return &Env{}
}

// Snapshot marks a point Rollback can return to
type Snapshot struct {
	trail int
	count int
}

// Fresh returns a new unbound variable
func (e *Env) Fresh() *Var {
	v := &Var{index: e.count}
	e.count++
	return v
}

// FreshN returns n new unbound variables, suitable as Subst replacements
func (e *Env) FreshN(n int) []Type {
	vars := make([]Type, n)
	for i := range vars {
		vars[i] = e.Fresh()
	}
	return vars
}

// Len is the number of bindings currently on the trail
func (e *Env) Len() int { return len(e.trail) }

// Count is the number of variables created and not rolled back
func (e *Env) Count() int { return e.count }

func (e *Env) Snapshot() Snapshot {
	return Snapshot{trail: len(e.trail), count: e.count}
}

// Rollback unbinds, in reverse order, every variable bound since s and forgets the
// variables created since s. Variables created after s must not be used afterwards.
func (e *Env) Rollback(s Snapshot) {
	if s.trail > len(e.trail) {
		Fatalf("rollback to trail length %d past current length %d", s.trail, len(e.trail))
	}
	if undone := len(e.trail) - s.trail; undone > 0 {
		logger.Debug("rolling back bindings", "undone", undone, "trail", s.trail)
	}
	for len(e.trail) > s.trail {
		last := len(e.trail) - 1
		e.trail[last].value = nil
		e.trail[last] = nil
		e.trail = e.trail[:last]
	}
	e.count = s.count
}

// Attempt runs f and keeps its bindings only if it returns true
func (e *Env) Attempt(f func() bool) (ok bool) {
	s := e.Snapshot()
	defer func() {
		if !ok {
			e.Rollback(s)
		}
	}()
	return f()
}

// Probe runs f and then undoes every binding it made, whatever the result
func Probe[R any](e *Env, f func() R) R {
	s := e.Snapshot()
	defer e.Rollback(s)
	return f()
}

func (e *Env) bind(v *Var, value Type) {
	if v.value != nil {
		Fatalf("variable %v is already bound", v)
	}
	if HasParams(value) {
		Fatalf("cannot bind %v to %v, which has an un-substituted type parameter", v, value)
	}
	e.trail = append(e.trail, v)
	v.value = value
}
