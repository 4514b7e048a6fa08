package typetree_json

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzeiders/gqlshape/pkg/plugin"
	"github.com/jzeiders/gqlshape/pkg/plugins/testutil"
	"github.com/jzeiders/gqlshape/pkg/projection"
)

const testSDL = `
type Query {
	viewer: User!
}

type User {
	id: ID!
	name: String
}
`

type decodedTree struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	RootSymbol string `json:"rootSymbol"`
	Root       struct {
		Kind   string `json:"kind"`
		Name   string `json:"name"`
		Fields []struct {
			Name string `json:"name"`
			Type struct {
				Kind string `json:"kind"`
				Name string `json:"name"`
			} `json:"type"`
		} `json:"fields"`
	} `json:"root"`
}

func TestGenerate(t *testing.T) {
	req := testutil.NewRequest(t, testSDL, projection.Options{}, nil, testutil.Doc{
		Name:    "viewer.graphql",
		Content: `query Viewer { viewer { id name } }`,
	})

	resp, err := New().Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Files, 1)

	content := resp.Files[0].Content
	assert.True(t, strings.HasSuffix(string(content), "}\n"))
	assert.Contains(t, string(content), "\n  \"trees\": [")

	var decoded struct {
		SchemaHash string        `json:"schemaHash"`
		Trees      []decodedTree `json:"trees"`
	}
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, req.Schema.Hash(), decoded.SchemaHash)
	require.Len(t, decoded.Trees, 1)

	tree := decoded.Trees[0]
	assert.Equal(t, "query", tree.Kind)
	assert.Equal(t, "Viewer", tree.Name)
	assert.Equal(t, "ViewerQuery", tree.RootSymbol)
	assert.Equal(t, "object", tree.Root.Kind)
	require.Len(t, tree.Root.Fields, 1)
	assert.Equal(t, "viewer", tree.Root.Fields[0].Name)
	assert.Equal(t, "object", tree.Root.Fields[0].Type.Kind)
	assert.Equal(t, "Viewer", tree.Root.Fields[0].Type.Name)
}

func TestGenerate_Compact(t *testing.T) {
	resp, err := New().Generate(context.Background(), &plugin.GenerateRequest{
		Config:     map[string]interface{}{"indent": 0},
		OutputPath: "trees.json",
	})
	require.NoError(t, err)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "{\"trees\":[]}\n", string(resp.Files[0].Content))
}

func TestValidateConfig(t *testing.T) {
	p := New()
	assert.NoError(t, p.ValidateConfig(p.DefaultConfig()))
	assert.NoError(t, p.ValidateConfig(nil))
	assert.NoError(t, p.ValidateConfig(map[string]interface{}{"indent": float64(4)}))
	assert.EqualError(t, p.ValidateConfig(map[string]interface{}{"indent": "wide"}), "indent must be a non-negative integer, got wide")
}
