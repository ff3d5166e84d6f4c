package catalogue

import (
	"fmt"

	"github.com/cottand/traits/internal/log"
	"github.com/cottand/traits/method"
	"github.com/cottand/traits/trait"
	"github.com/cottand/traits/types"
	"github.com/cottand/traits/util"
	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"
)

var logger = log.Section("catalogue")

// Catalogue is a compiled Document, ready to Run
type Catalogue struct {
	Config  trait.Config
	Program *trait.Program
	// Env owns the inference variables of Obligations and Queries
	Env         *types.Env
	Obligations []*trait.Obligation
	Queries     []*Query
	// Vars are the inference variables of the document by name, without the ?
	Vars   map[string]*types.Var
	Expect *Expectations
}

// Query is a method call to resolve
type Query struct {
	ID       string
	Receiver types.Type
	Method   string
	Traits   []*trait.Trait
}

func (q *Query) String() string {
	return fmt.Sprintf("%s: %v.%s()", q.ID, types.Resolve(q.Receiver), q.Method)
}

// Builtins are the traits every catalogue declares implicitly
func Builtins() []*trait.Trait {
	return []*trait.Trait{method.DerefTrait, method.DerefMutTrait}
}

// Compile checks the type expressions of doc and builds the program, obligations
// and method queries it describes
func Compile(doc *Document) (*Catalogue, error) {
	c := &compiler{
		traits: make(map[string]*trait.Trait),
		env:    types.NewEnv(),
		vars:   make(map[string]*types.Var),
	}
	for _, builtin := range Builtins() {
		c.traits[builtin.ID] = builtin
	}
	return c.compile(doc)
}

// Read loads and compiles the catalogue at path
func Read(path string) (*Catalogue, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	c, err := Compile(doc)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return c, nil
}

type compiler struct {
	traits map[string]*trait.Trait
	env    *types.Env
	vars   map[string]*types.Var
}

func (c *compiler) compile(doc *Document) (*Catalogue, error) {
	config := trait.DefaultConfig()
	if doc.Config != nil {
		config = *doc.Config
	}

	traits := Builtins()
	for _, td := range doc.Traits {
		t, err := c.trait(td)
		if err != nil {
			return nil, errors.Wrapf(err, "trait %s", td.ID)
		}
		traits = append(traits, t)
	}

	implIDs := set.New[string](len(doc.Impls))
	impls := make([]*trait.Impl, 0, len(doc.Impls))
	for _, id := range doc.Impls {
		if !implIDs.Insert(id.ID) {
			return nil, errors.Errorf("impl %s is declared more than once", id.ID)
		}
		impl, err := c.impl(id)
		if err != nil {
			return nil, errors.Wrapf(err, "impl %s", id.ID)
		}
		impls = append(impls, impl)
	}

	obligationIDs := set.New[string](len(doc.Obligations))
	obligations := make([]*trait.Obligation, 0, len(doc.Obligations))
	for _, od := range doc.Obligations {
		if !obligationIDs.Insert(od.ID) {
			return nil, errors.Errorf("obligation %s is declared more than once", od.ID)
		}
		ref, err := parseReference(od.Trait, c.inferenceScope(), nil)
		if err == nil {
			err = c.checkArity(ref)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "obligation %s", od.ID)
		}
		obligations = append(obligations, trait.NewObligation(od.ID, ref))
	}

	queries := make([]*Query, 0, len(doc.Methods))
	for i, md := range doc.Methods {
		q, err := c.query(md)
		if err != nil {
			return nil, errors.Wrapf(err, "method %d", i)
		}
		queries = append(queries, q)
	}

	logger.Debug("compiled catalogue",
		"traits", len(traits),
		"impls", len(impls),
		"obligations", len(obligations),
		"methods", len(queries),
		"vars", len(c.vars))

	return &Catalogue{
		Config:      config,
		Program:     trait.NewProgram(traits, impls),
		Env:         c.env,
		Obligations: obligations,
		Queries:     queries,
		Vars:        c.vars,
		Expect:      doc.Expect,
	}, nil
}

func (c *compiler) trait(td TraitDoc) (*trait.Trait, error) {
	if _, ok := c.traits[td.ID]; ok {
		return nil, errors.New("trait is declared more than once, or shadows a builtin")
	}
	params, err := paramIndices(append([]string{"Self"}, td.Params...))
	if err != nil {
		return nil, err
	}

	fundeps := td.Fundeps
	if fundeps == nil {
		fundeps = make([]bool, len(td.Params)+1)
	}
	if len(fundeps) != len(td.Params)+1 {
		return nil, errors.Errorf("expected %d fundeps, one for Self and one per param, got %d", len(td.Params)+1, len(fundeps))
	}

	t := &trait.Trait{ID: td.ID, Fundeps: fundeps}
	methodIDs := set.New[string](len(td.Methods))
	for _, sig := range td.Methods {
		if !methodIDs.Insert(sig.ID) {
			return nil, errors.Errorf("method %s is declared more than once", sig.ID)
		}
		self, err := parseType(sig.Self, scope{params: params})
		if err != nil {
			return nil, errors.Wrapf(err, "method %s", sig.ID)
		}
		t.Methods = append(t.Methods, &trait.Method{ID: sig.ID, SelfType: self})
	}
	// registered last so methods cannot refer to the trait being declared
	c.traits[t.ID] = t
	return t, nil
}

func (c *compiler) impl(id ImplDoc) (*trait.Impl, error) {
	params, err := paramIndices(util.Map(id.Params, func(p ParamDoc) string { return p.Name }))
	if err != nil {
		return nil, err
	}
	sc := scope{params: params}

	ref, err := parseReference(id.Trait, sc, nil)
	if err != nil {
		return nil, err
	}
	if err := c.checkArity(ref); err != nil {
		return nil, err
	}

	impl := &trait.Impl{ID: id.ID, Trait: ref}
	for i, pd := range id.Params {
		def := &trait.ParamDef{}
		for _, src := range pd.Bounds {
			bound, err := parseReference(src, sc, types.Param{Index: i})
			if err == nil {
				err = c.checkArity(bound)
			}
			if err != nil {
				return nil, errors.Wrapf(err, "bound of %s", pd.Name)
			}
			def.Bounds = append(def.Bounds, bound)
		}
		impl.Params = append(impl.Params, def)
	}
	return impl, nil
}

func (c *compiler) query(md MethodDoc) (*Query, error) {
	receiver, err := parseType(md.Receiver, c.inferenceScope())
	if err != nil {
		return nil, errors.Wrap(err, "receiver")
	}
	q := &Query{
		ID:       md.ID,
		Receiver: receiver,
		Method:   md.Method,
	}
	if q.ID == "" {
		q.ID = fmt.Sprintf("%s.%s", md.Receiver, md.Method)
	}
	for _, id := range md.Traits {
		t, ok := c.traits[id]
		if !ok {
			return nil, errors.Errorf("unknown trait %s", id)
		}
		q.Traits = append(q.Traits, t)
	}
	return q, nil
}

func (c *compiler) inferenceScope() scope {
	return scope{vars: c.vars, env: c.env}
}

func (c *compiler) checkArity(ref *trait.Reference) error {
	t, ok := c.traits[ref.ID]
	if !ok {
		return errors.Errorf("unknown trait %s", ref.ID)
	}
	if len(ref.Params) != t.Arity() {
		return errors.Errorf("trait %s takes %d type parameters, got %d in %v", t.ID, t.Arity(), len(ref.Params), ref)
	}
	return nil
}

func paramIndices(names []string) (map[string]int, error) {
	indices := make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := indices[name]; ok {
			return nil, errors.Errorf("type parameter %s is declared more than once", name)
		}
		indices[name] = i
	}
	return indices, nil
}
