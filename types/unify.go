package types

// Unify makes a and b structurally equal by binding variables, reporting whether
// that is possible. On failure the bindings made along the way are undone.
//
// Unify panics with a *MalformedError when it meets a Param, even one nested in a
// type a variable would be bound to, or when two constructors with the same ID
// have different arities.
func (e *Env) Unify(a, b Type) bool {
	a, b = Shallow(a), Shallow(b)
	switch a := a.(type) {
	case *Var:
		switch b := b.(type) {
		case *Var:
			return e.unifyVars(a, b)
		case *Con:
			return e.unifyVarCon(a, b)
		}
	case *Con:
		switch b := b.(type) {
		case *Var:
			return e.unifyVarCon(b, a)
		case *Con:
			return e.unifyCons(a, b)
		}
	}
	Fatalf("cannot unify un-substituted type parameter in %v ~ %v", a, b)
	return false
}

// UnifyAll unifies as and bs pairwise, all or nothing
func (e *Env) UnifyAll(as, bs []Type) bool {
	if len(as) != len(bs) {
		Fatalf("inconsistent number of type parameters: %v vs %v", as, bs)
	}
	return e.Attempt(func() bool {
		for i := range as {
			if !e.Unify(as[i], bs[i]) {
				return false
			}
		}
		return true
	})
}

func (e *Env) unifyVars(a, b *Var) bool {
	switch {
	case a == b:
		return true
	case a.index < b.index:
		e.bind(b, a)
	default:
		e.bind(a, b)
	}
	return true
}

func (e *Env) unifyVarCon(v *Var, c *Con) bool {
	if occurs(v, c) {
		logger.Debug("occurs check failed", "var", v, "type", c)
		return false
	}
	e.bind(v, c)
	return true
}

func (e *Env) unifyCons(a, b *Con) bool {
	if a.ID != b.ID {
		return false
	}
	if len(a.Params) != len(b.Params) {
		Fatalf("inconsistent number of type parameters: %v vs %v", a, b)
	}
	return e.UnifyAll(a.Params, b.Params)
}

// Shallow follows the chain of bindings starting at t until it reaches an
// unbound variable or something that is not a variable
func Shallow(t Type) Type {
	for {
		v, ok := t.(*Var)
		if !ok || v.value == nil {
			return t
		}
		t = v.value
	}
}

func occurs(v *Var, in Type) bool {
	switch in := Shallow(in).(type) {
	case *Var:
		return in == v
	case *Con:
		for _, p := range in.Params {
			if occurs(v, p) {
				return true
			}
		}
	}
	return false
}
