// Package testutil builds generate requests for renderer tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/plugin"
	"github.com/jzeiders/gqlshape/pkg/projection"
	"github.com/jzeiders/gqlshape/pkg/schema"
)

// Doc is an in-memory GraphQL document
type Doc struct {
	Name     string
	Content  string
	External bool
}

// LoadSchema parses sdl or fails the test
func LoadSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	s, err := schema.Load(&ast.Source{Name: "schema.graphql", Input: sdl})
	require.NoError(t, err)
	return s
}

// ParseDocuments parses docs in order or fails the test
func ParseDocuments(t *testing.T, docs ...Doc) []*documents.Document {
	t.Helper()
	out := make([]*documents.Document, 0, len(docs))
	for _, d := range docs {
		raw, err := parser.ParseQuery(&ast.Source{Name: d.Name, Input: d.Content})
		require.NoError(t, err, "parsing %s", d.Name)
		doc, err := documents.FromAST(raw, d.Name, d.Content)
		require.NoError(t, err)
		if d.External {
			doc.MarkExternal()
		}
		out = append(out, doc)
	}
	return out
}

// NewRequest projects docs against sdl and returns a request carrying the
// trees. Every root must project.
func NewRequest(t *testing.T, sdl string, opts projection.Options, config map[string]interface{}, docs ...Doc) *plugin.GenerateRequest {
	t.Helper()

	s := LoadSchema(t, sdl)
	parsed := ParseDocuments(t, docs...)
	res, err := projection.Project(context.Background(), s, parsed, opts)
	require.NoError(t, err)
	require.NoError(t, res.Err())

	if config == nil {
		config = map[string]interface{}{}
	}
	return &plugin.GenerateRequest{
		Schema:     s,
		Documents:  parsed,
		Trees:      res.Trees,
		Scalars:    opts.Scalars,
		Enums:      opts.Enums,
		Config:     config,
		OutputPath: "generated/types.ts",
	}
}
