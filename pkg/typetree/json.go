package typetree

import (
	"encoding/json"
	"fmt"

	"github.com/jzeiders/gqlshape/pkg/naming"
)

type jsonTree struct {
	Kind          Kind                `json:"kind"`
	Name          string              `json:"name,omitempty"`
	RootSymbol    string              `json:"rootSymbol"`
	TypeCondition string              `json:"typeCondition"`
	Location      string              `json:"location,omitempty"`
	Root          json.RawMessage     `json:"root"`
	Assignments   []naming.Assignment `json:"assignments"`
}

type jsonShape struct {
	Kind           string      `json:"kind"`
	Scope          string      `json:"scope"`
	Name           string      `json:"name"`
	TypeCondition  string      `json:"typeCondition"`
	Fields         []jsonField `json:"fields"`
	FragmentMixins []Mixin     `json:"fragmentMixins,omitempty"`
}

type jsonUnion struct {
	Kind     string        `json:"kind"`
	Scope    string        `json:"scope"`
	Name     string        `json:"name"`
	Parent   string        `json:"parent"`
	Variants []jsonVariant `json:"variants"`
}

type jsonVariant struct {
	TypeCondition string    `json:"typeCondition"`
	Shape         jsonShape `json:"shape"`
}

type jsonField struct {
	Name        string   `json:"name"`
	SchemaName  string   `json:"schemaName"`
	Type        jsonType `json:"type"`
	Conditional bool     `json:"conditional,omitempty"`
}

type jsonType struct {
	Kind     string          `json:"kind"`
	Name     string          `json:"name,omitempty"`
	Tag      string          `json:"tag,omitempty"`
	Override string          `json:"override,omitempty"`
	Values   []string        `json:"values,omitempty"`
	Of       *jsonType       `json:"of,omitempty"`
	Target   json.RawMessage `json:"target,omitempty"`
}

// MarshalJSON encodes the tree with a "kind" tag on every variant value, for
// renderers running out of process.
func (t *Tree) MarshalJSON() ([]byte, error) {
	root, err := marshalResult(t.Root)
	if err != nil {
		return nil, fmt.Errorf("encoding %s %s: %w", t.Kind, t.RootSymbol, err)
	}
	out := jsonTree{
		Kind:          t.Kind,
		Name:          t.Name,
		RootSymbol:    t.RootSymbol,
		TypeCondition: t.TypeCondition,
		Root:          root,
		Assignments:   t.Assignments,
	}
	if !t.Location.IsZero() {
		out.Location = t.Location.String()
	}
	return json.Marshal(out)
}

func (s *ObjectShape) MarshalJSON() ([]byte, error) {
	encoded, err := encodeShape(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(encoded)
}

func (u *DiscriminatedUnion) MarshalJSON() ([]byte, error) {
	out := jsonUnion{
		Kind:   "discriminatedUnion",
		Scope:  u.Scope,
		Name:   u.Name,
		Parent: u.Parent,
	}
	for _, v := range u.Variants {
		shape, err := encodeShape(v.Shape)
		if err != nil {
			return nil, err
		}
		out.Variants = append(out.Variants, jsonVariant{TypeCondition: v.TypeCondition, Shape: shape})
	}
	return json.Marshal(out)
}

func marshalResult(r Result) (json.RawMessage, error) {
	switch r := r.(type) {
	case *ObjectShape:
		return r.MarshalJSON()
	case *DiscriminatedUnion:
		return r.MarshalJSON()
	case nil:
		return json.RawMessage("null"), nil
	default:
		return nil, fmt.Errorf("unexpected result %T", r)
	}
}

func encodeShape(s *ObjectShape) (jsonShape, error) {
	out := jsonShape{
		Kind:           "object",
		Scope:          s.Scope,
		Name:           s.Name,
		TypeCondition:  s.TypeCondition,
		Fields:         make([]jsonField, 0, len(s.Fields)),
		FragmentMixins: s.FragmentMixins,
	}
	for _, f := range s.Fields {
		typ, err := encodeType(f.Type)
		if err != nil {
			return jsonShape{}, fmt.Errorf("field %s.%s: %w", s.Name, f.Name, err)
		}
		out.Fields = append(out.Fields, jsonField{
			Name:        f.Name,
			SchemaName:  f.SchemaName,
			Type:        typ,
			Conditional: f.Conditional,
		})
	}
	return out, nil
}

func encodeType(t Type) (jsonType, error) {
	switch t := t.(type) {
	case Scalar:
		return jsonType{Kind: "scalar", Name: t.Name, Tag: string(t.Tag)}, nil
	case EnumRef:
		return jsonType{Kind: "enum", Name: t.Name, Override: t.Override}, nil
	case Typename:
		return jsonType{Kind: "typename", Values: t.Values}, nil
	case ObjectRef:
		target, err := marshalResult(t.Target)
		if err != nil {
			return jsonType{}, err
		}
		return jsonType{Kind: "object", Name: t.String(), Target: target}, nil
	case Nullable:
		of, err := encodeType(t.Of)
		if err != nil {
			return jsonType{}, err
		}
		return jsonType{Kind: "nullable", Of: &of}, nil
	case List:
		of, err := encodeType(t.Of)
		if err != nil {
			return jsonType{}, err
		}
		return jsonType{Kind: "list", Of: &of}, nil
	default:
		return jsonType{}, fmt.Errorf("unexpected type %T", t)
	}
}
