package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Schema is an immutable, fully resolved view of a GraphQL schema. Named type
// references are checked once at construction so lookups during projection
// cannot silently miss.
type Schema struct {
	raw   *ast.Schema
	types map[string]Type
	names []string
	hash  string

	queryType        string
	mutationType     string
	subscriptionType string
}

// Load parses and validates SDL sources with gqlparser and resolves the result
func Load(sources ...*ast.Source) (*Schema, error) {
	raw, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}

	s, err := FromAST(raw)
	if err != nil {
		return nil, err
	}

	digest := xxhash.New()
	for _, src := range sources {
		_, _ = digest.WriteString(src.Name)
		_, _ = digest.WriteString("\x00")
		_, _ = digest.WriteString(src.Input)
	}
	s.hash = fmt.Sprintf("%016x", digest.Sum64())
	return s, nil
}

// FromAST builds a Schema from a gqlparser schema
func FromAST(raw *ast.Schema) (*Schema, error) {
	if raw == nil {
		return nil, fmt.Errorf("nil schema")
	}

	s := &Schema{
		raw:   raw,
		types: make(map[string]Type, len(raw.Types)),
	}
	if raw.Query != nil {
		s.queryType = raw.Query.Name
	}
	if raw.Mutation != nil {
		s.mutationType = raw.Mutation.Name
	}
	if raw.Subscription != nil {
		s.subscriptionType = raw.Subscription.Name
	}

	for name, def := range raw.Types {
		t, err := convertDefinition(raw, def)
		if err != nil {
			return nil, err
		}
		s.types[name] = t
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)

	if err := s.checkReferences(); err != nil {
		return nil, err
	}
	return s, nil
}

// Raw returns the underlying gqlparser schema, used for document validation
func (s *Schema) Raw() *ast.Schema { return s.raw }

// Hash identifies the schema sources; empty when built with FromAST
func (s *Schema) Hash() string { return s.hash }

// TypeNames returns every type name in lexical order
func (s *Schema) TypeNames() []string {
	return append([]string(nil), s.names...)
}

// QueryType returns the name of the query root type
func (s *Schema) QueryType() string { return s.queryType }

// MutationType returns the name of the mutation root type, if any
func (s *Schema) MutationType() string { return s.mutationType }

// SubscriptionType returns the name of the subscription root type, if any
func (s *Schema) SubscriptionType() string { return s.subscriptionType }

// Type looks up a named type
func (s *Schema) Type(name string) (Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Resolve looks up a named type, failing with *UnknownTypeError
func (s *Schema) Resolve(name string) (Type, error) {
	t, ok := s.types[name]
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	return t, nil
}

// Field looks up a field on an object or interface type. Other kinds have no
// selectable fields.
func (s *Schema) Field(parent Type, name string) (*Field, bool) {
	switch p := parent.(type) {
	case *Object:
		return p.Field(name)
	case *Interface:
		return p.Field(name)
	default:
		return nil, false
	}
}

// PossibleTypes returns the concrete object types a value of t can have at
// runtime, in schema declaration order: union members as declared, interface
// implementers in definition order, an object type itself.
func (s *Schema) PossibleTypes(t Type) []*Object {
	var names []string
	switch t := t.(type) {
	case *Object:
		return []*Object{t}
	case *Union:
		names = t.Members
	case *Interface:
		names = t.ImplementedBy
	default:
		return nil
	}

	out := make([]*Object, 0, len(names))
	for _, name := range names {
		if obj, ok := s.types[name].(*Object); ok {
			out = append(out, obj)
		}
	}
	return out
}

// IsPossibleType reports whether objectName is a possible runtime type of t
func (s *Schema) IsPossibleType(t Type, objectName string) bool {
	for _, obj := range s.PossibleTypes(t) {
		if obj.TypeName == objectName {
			return true
		}
	}
	return false
}

// IsSubset reports whether every possible type of sub is a possible type of super
func (s *Schema) IsSubset(sub, super Type) bool {
	if sub.Name() == super.Name() {
		return true
	}
	for _, obj := range s.PossibleTypes(sub) {
		if !s.IsPossibleType(super, obj.TypeName) {
			return false
		}
	}
	return true
}

func (s *Schema) checkReferences() error {
	var missing []string
	check := func(owner string, ref TypeRef) {
		name := Unwrap(ref).Base
		if _, ok := s.types[name]; !ok {
			missing = append(missing, fmt.Sprintf("%s references %s", owner, name))
		}
	}
	for _, name := range s.names {
		switch t := s.types[name].(type) {
		case *Object:
			for _, f := range t.Fields {
				check(name+"."+f.Name, f.Type)
			}
		case *Interface:
			for _, f := range t.Fields {
				check(name+"."+f.Name, f.Type)
			}
		case *InputObject:
			for _, f := range t.Fields {
				check(name+"."+f.Name, f.Type)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("unresolved type references: %s", strings.Join(missing, "; "))
	}
	return nil
}

func convertDefinition(raw *ast.Schema, def *ast.Definition) (Type, error) {
	switch def.Kind {
	case ast.Scalar:
		return &Scalar{TypeName: def.Name, BuiltIn: def.BuiltIn}, nil
	case ast.Enum:
		values := make([]string, 0, len(def.EnumValues))
		for _, v := range def.EnumValues {
			values = append(values, v.Name)
		}
		return &Enum{TypeName: def.Name, Values: values}, nil
	case ast.Object:
		return &Object{
			TypeName:   def.Name,
			Fields:     convertFields(def.Fields),
			Interfaces: append([]string(nil), def.Interfaces...),
		}, nil
	case ast.Interface:
		var implementers []string
		for _, possible := range raw.GetPossibleTypes(def) {
			if possible.Kind == ast.Object {
				implementers = append(implementers, possible.Name)
			}
		}
		return &Interface{
			TypeName:      def.Name,
			Fields:        convertFields(def.Fields),
			ImplementedBy: implementers,
		}, nil
	case ast.Union:
		return &Union{
			TypeName: def.Name,
			Members:  append([]string(nil), def.Types...),
		}, nil
	case ast.InputObject:
		return &InputObject{
			TypeName: def.Name,
			Fields:   convertFields(def.Fields),
		}, nil
	default:
		return nil, fmt.Errorf("type %s: unexpected kind %q", def.Name, def.Kind)
	}
}

func convertFields(list ast.FieldList) []*Field {
	fields := make([]*Field, 0, len(list))
	for _, f := range list {
		field := &Field{
			Name: f.Name,
			Type: convertTypeRef(f.Type),
		}
		for _, arg := range f.Arguments {
			field.Args = append(field.Args, &Argument{Name: arg.Name, Type: convertTypeRef(arg.Type)})
		}
		fields = append(fields, field)
	}
	return fields
}

func convertTypeRef(t *ast.Type) TypeRef {
	var ref TypeRef
	if t.Elem != nil {
		ref = List{Of: convertTypeRef(t.Elem)}
	} else {
		ref = Named{Name: t.NamedType}
	}
	if t.NonNull {
		ref = NonNull{Of: ref}
	}
	return ref
}
