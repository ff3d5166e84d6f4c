// Package catalogue reads trait catalogues written in YAML: traits, impls, and the
// obligations and method calls to resolve against them.
package catalogue

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cottand/traits/trait"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SupportedVersions is the range of document versions this package reads
const SupportedVersions = "^1.0"

// Document is the YAML form of a catalogue
type Document struct {
	// Version of the document format, as a semantic version
	Version string        `yaml:"version" validate:"required"`
	Config  *trait.Config `yaml:"config,omitempty"`

	Traits      []TraitDoc      `yaml:"traits,omitempty" validate:"dive"`
	Impls       []ImplDoc       `yaml:"impls,omitempty" validate:"dive"`
	Obligations []ObligationDoc `yaml:"obligations,omitempty" validate:"dive"`
	Methods     []MethodDoc     `yaml:"methods,omitempty" validate:"dive"`

	// Expect lists what running the catalogue should produce, see Check
	Expect *Expectations `yaml:"expect,omitempty"`
}

// TraitDoc declares a trait.
//
//	id: Deref
//	params: [A]
//	fundeps: [false, true]
//	methods: [{id: deref, self: "Ref<Self>"}]
type TraitDoc struct {
	ID string `yaml:"id" validate:"required"`
	// Params names the trait's type parameters. Self is always implicitly first.
	Params []string `yaml:"params,omitempty" validate:"dive,required"`
	// Fundeps has one entry for Self followed by one for each of Params.
	// It defaults to all false.
	Fundeps []bool      `yaml:"fundeps,omitempty"`
	Methods []MethodSig `yaml:"methods,omitempty" validate:"dive"`
}

type MethodSig struct {
	ID string `yaml:"id" validate:"required"`
	// Self is the receiver type, in terms of Self and the trait's Params
	Self string `yaml:"self" validate:"required"`
}

// ImplDoc declares an impl.
//
//	id: ToStrList
//	params: [{name: T, bounds: [ToStr]}]
//	trait: "ToStr for List<T>"
type ImplDoc struct {
	ID     string     `yaml:"id" validate:"required"`
	Params []ParamDoc `yaml:"params,omitempty" validate:"dive"`
	Trait  string     `yaml:"trait" validate:"required"`
}

type ParamDoc struct {
	Name string `yaml:"name" validate:"required"`
	// Bounds are trait references without "for", as in Iterable<int>
	Bounds []string `yaml:"bounds,omitempty" validate:"dive,required"`
}

// ObligationDoc requests that Trait be satisfied. Its types may use inference
// variables such as ?x, shared by name across the whole document.
type ObligationDoc struct {
	ID    string `yaml:"id" validate:"required"`
	Trait string `yaml:"trait" validate:"required"`
}

// MethodDoc requests resolving receiver.method(...) with traits in scope
type MethodDoc struct {
	ID       string   `yaml:"id,omitempty"`
	Receiver string   `yaml:"receiver" validate:"required"`
	Method   string   `yaml:"method" validate:"required"`
	Traits   []string `yaml:"traits" validate:"required,min=1,dive,required"`
}

// Expectations are checked by Check after running the catalogue
type Expectations struct {
	Confirmed []string   `yaml:"confirmed,omitempty"`
	Deferred  []string   `yaml:"deferred,omitempty"`
	Overflow  []string   `yaml:"overflow,omitempty"`
	NoImpl    []string   `yaml:"noImpl,omitempty"`
	Conflicts [][]string `yaml:"conflicts,omitempty" validate:"dive,len=2"`
	// Methods are the result kinds of the method queries, in order, like Match or Ambiguous
	Methods []string `yaml:"methods,omitempty" validate:"dive,oneof=Match Ambiguous CannotDeref CannotRefMut CannotReconcileSelfType"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their YAML names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode reads and validates a Document from r
func Decode(r io.Reader) (*Document, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	// fields missing from the config section keep their defaults
	config := trait.DefaultConfig()
	doc := &Document{Config: &config}
	if err := decoder.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty catalogue")
		}
		return nil, fmt.Errorf("could not decode catalogue: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load reads a Document from the file at path
func Load(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read catalogue: %w", err)
	}
	doc, err := Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks the structure of the document and its version. Type expressions
// are checked later, by Compile.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return formatValidationErrors(validationErrs)
		}
		return fmt.Errorf("invalid catalogue: %w", err)
	}

	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("invalid supported versions %q: %w", SupportedVersions, err)
	}
	version, err := semver.NewVersion(d.Version)
	if err != nil {
		return fmt.Errorf("invalid catalogue version %q: %w", d.Version, err)
	}
	if !constraint.Check(version) {
		return fmt.Errorf("unsupported catalogue version %v, expected %s", version, SupportedVersions)
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, formatValidationError(fe))
	}
	return fmt.Errorf("invalid catalogue:\n  %s", strings.Join(msgs, "\n  "))
}

func formatValidationError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Document.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s elements", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have exactly %s elements", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
