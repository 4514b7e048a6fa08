package documents

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

// FromAST converts a gqlparser query document into a Document. The AST is
// not retained.
func FromAST(doc *ast.QueryDocument, filePath, content string) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil query document")
	}

	out := &Document{
		FilePath: filePath,
		Content:  content,
		Hash:     ComputeHash([]byte(content)),
	}

	for _, op := range doc.Operations {
		converted, err := convertOperation(op)
		if err != nil {
			return nil, err
		}
		out.Operations = append(out.Operations, converted)
	}

	for _, frag := range doc.Fragments {
		selections := convertSelectionSet(frag.SelectionSet)
		out.Fragments = append(out.Fragments, &Fragment{
			Name:          frag.Name,
			TypeCondition: frag.TypeCondition,
			SelectionSet:  selections,
			UsedFragments: selections.FragmentSpreads(),
			Location:      location(frag.Position),
		})
	}

	return out, nil
}

// MarkExternal flags the document and all of its fragments as external
func (d *Document) MarkExternal() {
	d.External = true
	for _, frag := range d.Fragments {
		frag.External = true
	}
}

func convertOperation(op *ast.OperationDefinition) (*Operation, error) {
	var typ OperationType
	switch op.Operation {
	case ast.Query, "":
		typ = OperationTypeQuery
	case ast.Mutation:
		typ = OperationTypeMutation
	case ast.Subscription:
		typ = OperationTypeSubscription
	default:
		return nil, fmt.Errorf("unexpected operation kind %q at %s", op.Operation, location(op.Position))
	}

	var variables []*Variable
	for _, v := range op.VariableDefinitions {
		variables = append(variables, &Variable{
			Name:       v.Variable,
			Type:       v.Type.String(),
			HasDefault: v.DefaultValue != nil,
		})
	}

	selections := convertSelectionSet(op.SelectionSet)
	return &Operation{
		Name:          op.Name,
		Type:          typ,
		Variables:     variables,
		SelectionSet:  selections,
		UsedFragments: selections.FragmentSpreads(),
		Location:      location(op.Position),
	}, nil
}

func convertSelectionSet(set ast.SelectionSet) SelectionSet {
	if len(set) == 0 {
		return nil
	}
	out := make(SelectionSet, 0, len(set))
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			alias := s.Alias
			if alias == s.Name {
				alias = ""
			}
			out = append(out, &Field{
				Alias:        alias,
				Name:         s.Name,
				Directives:   directiveNames(s.Directives),
				SelectionSet: convertSelectionSet(s.SelectionSet),
				Location:     location(s.Position),
			})
		case *ast.FragmentSpread:
			out = append(out, &FragmentSpread{
				Name:       s.Name,
				Directives: directiveNames(s.Directives),
				Location:   location(s.Position),
			})
		case *ast.InlineFragment:
			out = append(out, &InlineFragment{
				TypeCondition: s.TypeCondition,
				Directives:    directiveNames(s.Directives),
				SelectionSet:  convertSelectionSet(s.SelectionSet),
				Location:      location(s.Position),
			})
		}
	}
	return out
}

func directiveNames(list ast.DirectiveList) []string {
	if len(list) == 0 {
		return nil
	}
	names := make([]string, 0, len(list))
	for _, d := range list {
		names = append(names, d.Name)
	}
	return names
}

func location(pos *ast.Position) Location {
	if pos == nil {
		return Location{}
	}
	loc := Location{Line: pos.Line, Column: pos.Column}
	if pos.Src != nil {
		loc.File = pos.Src.Name
	}
	return loc
}
