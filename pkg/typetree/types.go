// Package typetree holds the language-neutral result of projecting a
// selection set onto a schema. Trees are immutable once returned; renderers
// read them and never modify them.
package typetree

import (
	"strings"

	"github.com/jzeiders/gqlshape/pkg/scalars"
)

// Result is the projection of one selection set. The implementations are
// closed: *ObjectShape and *DiscriminatedUnion.
type Result interface {
	// Symbol is the name assigned in the result's naming scope
	Symbol() string
	isResult()
}

// ObjectShape is a single object type with an ordered field list
type ObjectShape struct {
	// Scope is the root symbol of the naming scope that named this shape.
	// Scope and Name together are unique within a run.
	Scope string
	Name  string
	// TypeCondition is the schema type the fields were selected on
	TypeCondition string
	Fields        []*Field
	// FragmentMixins lists the fragments whose fields were merged in, in
	// spread order
	FragmentMixins []Mixin
}

// DiscriminatedUnion is produced for a polymorphic parent with
// type-conditioned selections. Variants follow schema declaration order and
// each one starts with a non-null __typename discriminator.
type DiscriminatedUnion struct {
	Scope    string
	Name     string
	Parent   string
	Variants []*Variant
}

// Variant is the shape of one concrete possible type
type Variant struct {
	TypeCondition string
	Shape         *ObjectShape
}

// Mixin names a fragment contributing fields to a shape
type Mixin struct {
	Name     string
	External bool
}

// Field is one projected response field
type Field struct {
	// Name is the response key, the alias when one is present
	Name string
	// SchemaName is the name of the schema field
	SchemaName string
	Type       Type
	// Conditional marks fields selected under @skip or @include
	Conditional bool
}

func (s *ObjectShape) Symbol() string        { return s.Name }
func (u *DiscriminatedUnion) Symbol() string { return u.Name }

func (*ObjectShape) isResult()        {}
func (*DiscriminatedUnion) isResult() {}

// Field returns the field with the given response key
func (s *ObjectShape) Field(name string) (*Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FieldNames returns the response keys in order
func (s *ObjectShape) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Variant returns the variant for a concrete type
func (u *DiscriminatedUnion) Variant(typeName string) (*Variant, bool) {
	for _, v := range u.Variants {
		if v.TypeCondition == typeName {
			return v, true
		}
	}
	return nil, false
}

// Type is a projected field type. The implementations are closed: Scalar,
// EnumRef, ObjectRef, Typename, Nullable and List. A position is non-null
// unless wrapped in Nullable.
type Type interface {
	String() string
	isType()
}

// Scalar is a leaf mapped to a primitive tag
type Scalar struct {
	Name string
	Tag  scalars.Tag
}

// EnumRef references a schema enum by name
type EnumRef struct {
	Name     string
	Override string
}

// ObjectRef references a nested projection
type ObjectRef struct {
	Target Result
}

// Typename is the __typename leaf, restricted to the listed concrete types
type Typename struct {
	Values []string
}

// Nullable marks the wrapped type as nullable
type Nullable struct {
	Of Type
}

// List wraps a type in a list
type List struct {
	Of Type
}

func (Scalar) isType()    {}
func (EnumRef) isType()   {}
func (ObjectRef) isType() {}
func (Typename) isType()  {}
func (Nullable) isType()  {}
func (List) isType()      {}

func (s Scalar) String() string { return string(s.Tag) }

func (e EnumRef) String() string {
	if e.Override != "" {
		return e.Override
	}
	return e.Name
}

func (o ObjectRef) String() string {
	if o.Target == nil {
		return "<nil>"
	}
	return o.Target.Symbol()
}

func (t Typename) String() string {
	quoted := make([]string, 0, len(t.Values))
	for _, v := range t.Values {
		quoted = append(quoted, "'"+v+"'")
	}
	return strings.Join(quoted, " | ")
}

func (n Nullable) String() string { return n.Of.String() + "?" }
func (l List) String() string     { return "[" + l.Of.String() + "]" }

// Base strips Nullable and List wrappers
func Base(t Type) Type {
	for {
		switch w := t.(type) {
		case Nullable:
			t = w.Of
		case List:
			t = w.Of
		default:
			return t
		}
	}
}

// WithConditional returns a copy of the field marked conditional
func (f *Field) WithConditional() *Field {
	out := *f
	out.Conditional = true
	return &out
}
