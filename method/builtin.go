package method

import (
	"github.com/cottand/traits/trait"
	"github.com/cottand/traits/types"
)

// Ref is &t
func Ref(t types.Type) types.Type { return types.New("Ref", t) }

// RefMut is &mut t
func RefMut(t types.Type) types.Type { return types.New("RefMut", t) }

var (
	// DerefTrait is trait Deref<A> { fn deref(&self) -> &A }
	DerefTrait = &trait.Trait{
		ID:      "Deref",
		Fundeps: []bool{false, true},
		Methods: []*trait.Method{{ID: "deref", SelfType: Ref(types.Param{Index: 0})}},
	}

	// DerefMutTrait is trait DerefMut<A> { fn deref_mut(&mut self) -> &mut A }
	DerefMutTrait = &trait.Trait{
		ID:      "DerefMut",
		Fundeps: []bool{false, true},
		Methods: []*trait.Method{{ID: "deref_mut", SelfType: RefMut(types.Param{Index: 0})}},
	}
)
