package catalogue

import (
	"fmt"
	"strings"
	"text/scanner"

	"github.com/cottand/traits/trait"
	"github.com/cottand/traits/types"
)

// scope resolves names inside type expressions
type scope struct {
	// params maps type parameter names to their index
	params map[string]int
	// vars holds the inference variables of the document, created on first use.
	// A nil vars means variables are not allowed in this scope.
	vars map[string]*types.Var
	env  *types.Env
}

// parser reads one type expression or trait reference
type parser struct {
	s     scanner.Scanner
	tok   rune
	src   string
	scope scope
	err   error
}

func newParser(src string, sc scope) *parser {
	p := &parser{src: src, scope: sc}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.fail("%s", msg)
	}
	p.next()
	return p
}

func (p *parser) next() {
	p.tok = p.s.Scan()
}

func (p *parser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf("%q at column %d: %s", p.src, p.s.Position.Column, fmt.Sprintf(format, args...))
	}
}

func (p *parser) expect(tok rune) {
	if p.tok != tok {
		p.fail("expected %s, found %s", scanner.TokenString(tok), scanner.TokenString(p.tok))
	}
	p.next()
}

func (p *parser) ident() string {
	if p.tok != scanner.Ident {
		p.fail("expected a name, found %s", scanner.TokenString(p.tok))
		p.next()
		return ""
	}
	name := p.s.TokenText()
	p.next()
	return name
}

// typ parses Name, Name<T, ...> or ?name
func (p *parser) typ() types.Type {
	if p.err != nil {
		return nil
	}
	if p.tok == '?' {
		p.next()
		return p.variable(p.ident())
	}
	name := p.ident()
	if index, ok := p.scope.params[name]; ok {
		if p.tok == '<' {
			p.fail("type parameter %s cannot take arguments", name)
		}
		return types.Param{Index: index}
	}
	return types.New(name, p.args()...)
}

// args parses an optional <T, ...> list
func (p *parser) args() []types.Type {
	if p.tok != '<' {
		return nil
	}
	p.next()
	args := []types.Type{p.typ()}
	for p.tok == ',' && p.err == nil {
		p.next()
		args = append(args, p.typ())
	}
	p.expect('>')
	return args
}

func (p *parser) variable(name string) types.Type {
	if p.scope.vars == nil {
		p.fail("inference variable ?%s is not allowed here", name)
		return nil
	}
	v, ok := p.scope.vars[name]
	if !ok {
		v = p.scope.env.Fresh()
		p.scope.vars[name] = v
	}
	return v
}

// reference parses Trait<T, ...> for Type. When self is not nil the "for Type"
// part must be omitted and self is used instead.
func (p *parser) reference(self types.Type) *trait.Reference {
	ref := &trait.Reference{ID: p.ident()}
	ref.Params = p.args()
	if self != nil {
		ref.Self = self
		return ref
	}
	if p.tok != scanner.Ident || p.s.TokenText() != "for" {
		p.fail("expected 'for', found %s", scanner.TokenString(p.tok))
		return ref
	}
	p.next()
	ref.Self = p.typ()
	return ref
}

func (p *parser) end() error {
	if p.err == nil && p.tok != scanner.EOF {
		p.fail("unexpected %s", scanner.TokenString(p.tok))
	}
	return p.err
}

// ParseType parses a type expression such as List<int> with no type parameters
// in scope. Inference variables are not allowed.
func ParseType(src string) (types.Type, error) {
	return parseType(src, scope{})
}

func parseType(src string, sc scope) (types.Type, error) {
	p := newParser(src, sc)
	t := p.typ()
	if err := p.end(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseReference(src string, sc scope, self types.Type) (*trait.Reference, error) {
	p := newParser(src, sc)
	ref := p.reference(self)
	if err := p.end(); err != nil {
		return nil, err
	}
	return ref, nil
}
