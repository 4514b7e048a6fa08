package schema

import "strings"

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// Type is a named GraphQL type. The implementations are closed: *Scalar,
// *Enum, *Object, *Interface, *Union and *InputObject.
type Type interface {
	Name() string
	Kind() TypeKind
	isType()
}

// Field represents a field in an object, interface or input object
type Field struct {
	Name string
	Type TypeRef
	Args []*Argument
}

// Argument represents a field argument
type Argument struct {
	Name string
	Type TypeRef
}

// Scalar represents a GraphQL scalar type
type Scalar struct {
	TypeName string
	BuiltIn  bool
}

// Enum represents a GraphQL enum type
type Enum struct {
	TypeName string
	Values   []string
}

// Object represents a GraphQL object type
type Object struct {
	TypeName   string
	Fields     []*Field
	Interfaces []string
}

// Interface represents a GraphQL interface type
type Interface struct {
	TypeName      string
	Fields        []*Field
	ImplementedBy []string
}

// Union represents a GraphQL union type
type Union struct {
	TypeName string
	Members  []string
}

// InputObject represents a GraphQL input object type
type InputObject struct {
	TypeName string
	Fields   []*Field
}

func (s *Scalar) Name() string      { return s.TypeName }
func (s *Scalar) Kind() TypeKind    { return TypeKindScalar }
func (e *Enum) Name() string        { return e.TypeName }
func (e *Enum) Kind() TypeKind      { return TypeKindEnum }
func (o *Object) Name() string      { return o.TypeName }
func (o *Object) Kind() TypeKind    { return TypeKindObject }
func (i *Interface) Name() string   { return i.TypeName }
func (i *Interface) Kind() TypeKind { return TypeKindInterface }
func (u *Union) Name() string       { return u.TypeName }
func (u *Union) Kind() TypeKind     { return TypeKindUnion }
func (i *InputObject) Name() string { return i.TypeName }
func (i *InputObject) Kind() TypeKind {
	return TypeKindInputObject
}

func (*Scalar) isType()      {}
func (*Enum) isType()        {}
func (*Object) isType()      {}
func (*Interface) isType()   {}
func (*Union) isType()       {}
func (*InputObject) isType() {}

// Field looks up a field by name
func (o *Object) Field(name string) (*Field, bool) { return findField(o.Fields, name) }

// Field looks up a field by name
func (i *Interface) Field(name string) (*Field, bool) { return findField(i.Fields, name) }

// Implements reports whether the object declares the interface
func (o *Object) Implements(iface string) bool {
	for _, name := range o.Interfaces {
		if name == iface {
			return true
		}
	}
	return false
}

func findField(fields []*Field, name string) (*Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// IsAbstract reports whether values of t are resolved to a concrete object at runtime
func IsAbstract(t Type) bool {
	switch t.(type) {
	case *Interface, *Union:
		return true
	default:
		return false
	}
}

// IsLeaf reports whether t is a scalar or an enum
func IsLeaf(t Type) bool {
	switch t.(type) {
	case *Scalar, *Enum:
		return true
	default:
		return false
	}
}

// TypeRef is a possibly wrapped reference to a named type. The
// implementations are closed: Named, NonNull and List. NonNull never wraps
// NonNull directly.
type TypeRef interface {
	String() string
	isTypeRef()
}

// Named references a named type
type Named struct{ Name string }

// NonNull marks the wrapped reference as non-nullable
type NonNull struct{ Of TypeRef }

// List wraps a reference in a list
type List struct{ Of TypeRef }

func (Named) isTypeRef()   {}
func (NonNull) isTypeRef() {}
func (List) isTypeRef()    {}

func (n Named) String() string   { return n.Name }
func (n NonNull) String() string { return n.Of.String() + "!" }
func (l List) String() string    { return "[" + l.Of.String() + "]" }

// Unwrapped is the outside-in record of a TypeRef's wrappers
type Unwrapped struct {
	// Base is the innermost named type
	Base string
	// Nullable is the nullability of the outermost position
	Nullable bool
	// ListDepths holds, for every list level from the outside in, whether
	// that list's items are nullable. The last entry describes the innermost
	// item. Empty when the reference is not a list.
	ListDepths []bool
}

// Unwrap walks NonNull and List wrappers outside-in
func Unwrap(ref TypeRef) Unwrapped {
	var out Unwrapped
	nullable := true
	first := true
	for {
		switch r := ref.(type) {
		case NonNull:
			nullable = false
			ref = r.Of
			continue
		case List:
			if first {
				out.Nullable = nullable
				first = false
			} else {
				out.ListDepths = append(out.ListDepths, nullable)
			}
			nullable = true
			ref = r.Of
			continue
		case Named:
			if first {
				out.Nullable = nullable
			} else {
				out.ListDepths = append(out.ListDepths, nullable)
			}
			out.Base = r.Name
			return out
		default:
			return out
		}
	}
}

// ParseTypeRef parses SDL type notation such as "[String!]!"
func ParseTypeRef(s string) TypeRef {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "!") {
		return NonNull{Of: ParseTypeRef(strings.TrimSuffix(s, "!"))}
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return List{Of: ParseTypeRef(s[1 : len(s)-1])}
	}
	return Named{Name: s}
}
