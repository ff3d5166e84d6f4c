package trait

import (
	"github.com/benbjohnson/immutable"
)

// Program is the immutable catalogue of traits and impls a resolution runs against
type Program struct {
	traits []*Trait
	impls  []*Impl

	traitsByID   *immutable.Map[string, *Trait]
	implsByTrait *immutable.Map[string, *immutable.List[*Impl]]
}

// NewProgram indexes traits and impls. The order of impls is preserved and
// determines the order in which candidates are considered.
func NewProgram(traits []*Trait, impls []*Impl) *Program {
	traitsByID := immutable.NewMap[string, *Trait](nil)
	for _, t := range traits {
		if _, ok := traitsByID.Get(t.ID); !ok {
			traitsByID = traitsByID.Set(t.ID, t)
		}
	}
	implsByTrait := immutable.NewMap[string, *immutable.List[*Impl]](nil)
	for _, impl := range impls {
		list, ok := implsByTrait.Get(impl.Trait.ID)
		if !ok {
			list = immutable.NewList[*Impl]()
		}
		implsByTrait = implsByTrait.Set(impl.Trait.ID, list.Append(impl))
	}
	return &Program{
		traits:       append([]*Trait(nil), traits...),
		impls:        append([]*Impl(nil), impls...),
		traitsByID:   traitsByID,
		implsByTrait: implsByTrait,
	}
}

func (p *Program) Traits() []*Trait {
	return append([]*Trait(nil), p.traits...)
}

func (p *Program) Impls() []*Impl {
	return append([]*Impl(nil), p.impls...)
}

func (p *Program) Trait(id string) (*Trait, bool) {
	return p.traitsByID.Get(id)
}

// ImplsOf returns the impls of the trait id, in catalogue order
func (p *Program) ImplsOf(id string) []*Impl {
	list, ok := p.implsByTrait.Get(id)
	if !ok {
		return nil
	}
	impls := make([]*Impl, list.Len())
	for i := range impls {
		impls[i] = list.Get(i)
	}
	return impls
}
