package typescript_operations

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/plugins/base"
	"github.com/jzeiders/gqlshape/pkg/scalars"
	"github.com/jzeiders/gqlshape/pkg/schema"
	"github.com/jzeiders/gqlshape/pkg/typetree"
)

type generator struct {
	schema *schema.Schema
	config operationsConfig
	mapper *scalars.Mapper

	// emitted holds qualified shape names already rendered. Fragment
	// projections are shared between trees and render once.
	emitted map[string]bool
	// enums and inputs referenced by output fields or variables
	enums  map[string]bool
	inputs map[string]bool

	usesVariableHelpers bool
}

func newGenerator(s *schema.Schema, cfg operationsConfig, mapper *scalars.Mapper) *generator {
	return &generator{
		schema:  s,
		config:  cfg,
		mapper:  mapper,
		emitted: make(map[string]bool),
		enums:   make(map[string]bool),
		inputs:  make(map[string]bool),
	}
}

func (g *generator) export() string {
	if g.config.NoExport {
		return "type"
	}
	return "export type"
}

func (g *generator) alias(name string, t tsType) string {
	return fmt.Sprintf("%s %s = %s;", g.export(), name, t.Render(""))
}

// renderTree renders every shape reachable from the tree's root, parents
// before children
func (g *generator) renderTree(tree *typetree.Tree) []string {
	var sections []string
	typetree.Shapes(tree.Root, func(r typetree.Result) {
		name := base.QualifiedName(r)
		if g.emitted[name] {
			return
		}
		g.emitted[name] = true

		switch r := r.(type) {
		case *typetree.ObjectShape:
			sections = append(sections, g.alias(name, g.renderObject(r)))
		case *typetree.DiscriminatedUnion:
			options := make([]tsType, 0, len(r.Variants))
			for _, v := range r.Variants {
				options = append(options, &tsPrimitive{Code: base.QualifiedName(v.Shape)})
			}
			sections = append(sections, g.alias(name, &tsUnion{Options: options}))
		}
	})
	return sections
}

func (g *generator) renderObject(shape *typetree.ObjectShape) tsType {
	fields := make([]*tsField, 0, len(shape.Fields))
	for _, f := range shape.Fields {
		fields = append(fields, &tsField{
			Name:     f.Name,
			Optional: f.Conditional && !g.config.AvoidOptionals,
			Readonly: g.config.ImmutableTypes,
			Type:     g.renderType(f.Type),
		})
	}
	return &tsObject{Fields: fields}
}

func (g *generator) renderType(t typetree.Type) tsType {
	switch t := t.(type) {
	case typetree.Scalar:
		// overrides that are not built-in tags name a TypeScript type directly
		return &tsPrimitive{Code: string(t.Tag)}
	case typetree.EnumRef:
		if t.Override != "" {
			return &tsPrimitive{Code: t.Override}
		}
		g.enums[t.Name] = true
		return &tsPrimitive{Code: t.Name}
	case typetree.ObjectRef:
		return &tsPrimitive{Code: base.QualifiedName(t.Target)}
	case typetree.Typename:
		return &tsPrimitive{Code: t.String()}
	case typetree.Nullable:
		return &tsNullable{Inner: g.renderType(t.Of)}
	case typetree.List:
		return &tsArray{Elem: g.renderType(t.Of), Immutable: g.config.ImmutableTypes}
	default:
		return &tsPrimitive{Code: "unknown"}
	}
}

func (g *generator) renderVariables(tree *typetree.Tree, op *documents.Operation) string {
	g.usesVariableHelpers = true
	name := tree.RootSymbol + "Variables"

	if op == nil || len(op.Variables) == 0 {
		return fmt.Sprintf("%s %s = Exact<{ [key: string]: never; }>;", g.export(), name)
	}

	lines := make([]string, 0, len(op.Variables))
	for _, v := range op.Variables {
		ref := schema.ParseTypeRef(v.Type)
		_, nonNull := ref.(schema.NonNull)
		optional := (!nonNull || v.HasDefault) && !g.config.AvoidOptionals
		if optional {
			lines = append(lines, fmt.Sprintf("  %s?: %s;", v.Name, g.renderInputRef(ref)))
		} else {
			lines = append(lines, fmt.Sprintf("  %s: %s;", v.Name, g.renderInputRef(ref)))
		}
	}
	return fmt.Sprintf("%s %s = Exact<{\n%s\n}>;", g.export(), name, strings.Join(lines, "\n"))
}

func (g *generator) renderInputRef(ref schema.TypeRef) string {
	if nn, ok := ref.(schema.NonNull); ok {
		return g.renderInputBase(nn.Of)
	}
	return fmt.Sprintf("InputMaybe<%s>", g.renderInputBase(ref))
}

func (g *generator) renderInputBase(ref schema.TypeRef) string {
	switch r := ref.(type) {
	case schema.List:
		listType := "Array"
		if g.config.ImmutableTypes {
			listType = "ReadonlyArray"
		}
		return fmt.Sprintf("%s<%s>", listType, g.renderInputRef(r.Of))
	case schema.NonNull:
		return g.renderInputBase(r.Of)
	case schema.Named:
		t, ok := g.schema.Type(r.Name)
		if !ok {
			return "unknown"
		}
		switch t.(type) {
		case *schema.Scalar:
			return string(g.mapper.MapScalar(r.Name))
		case *schema.Enum:
			ref := g.mapper.MapEnum(r.Name)
			if ref.Override != "" {
				return ref.Override
			}
			g.enums[r.Name] = true
			return r.Name
		case *schema.InputObject:
			g.collectInput(r.Name)
			return r.Name
		}
		return r.Name
	default:
		return "unknown"
	}
}

// collectInput marks an input object and the inputs and enums its fields
// reference
func (g *generator) collectInput(name string) {
	if g.inputs[name] {
		return
	}
	g.inputs[name] = true
	t, ok := g.schema.Type(name)
	if !ok {
		return
	}
	if input, ok := t.(*schema.InputObject); ok {
		for _, f := range input.Fields {
			g.renderInputRef(f.Type)
		}
	}
}

// renderDeclarations renders the enums and input objects referenced so far,
// sorted by name
func (g *generator) renderDeclarations() []string {
	var sections []string

	for _, name := range sortedKeys(g.enums) {
		t, ok := g.schema.Type(name)
		if !ok {
			continue
		}
		enum, ok := t.(*schema.Enum)
		if !ok {
			continue
		}
		values := make([]tsType, 0, len(enum.Values))
		for _, v := range enum.Values {
			values = append(values, &tsPrimitive{Code: "'" + v + "'"})
		}
		sections = append(sections, g.alias(name, &tsUnion{Options: values}))
	}

	for _, name := range sortedKeys(g.inputs) {
		t, ok := g.schema.Type(name)
		if !ok {
			continue
		}
		input, ok := t.(*schema.InputObject)
		if !ok {
			continue
		}
		fields := make([]*tsField, 0, len(input.Fields))
		for _, f := range input.Fields {
			_, nonNull := f.Type.(schema.NonNull)
			fields = append(fields, &tsField{
				Name:     f.Name,
				Optional: !nonNull && !g.config.AvoidOptionals,
				Readonly: g.config.ImmutableTypes,
				Type:     &tsPrimitive{Code: g.renderInputRef(f.Type)},
			})
		}
		sections = append(sections, g.alias(name, &tsObject{Fields: fields}))
	}

	return sections
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
