package loader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzeiders/gqlshape/pkg/config"
	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/schema"
)

const blogSDL = `
type Query {
	user(id: ID!): User
	posts: [Post!]!
}

type User {
	id: ID!
	name: String!
	posts: [Post!]!
}

type Post {
	id: ID!
	title: String!
	author: User!
}
`

func loadBlogSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := NewSchemaLoader().LoadString(blogSDL, "blog.graphql")
	require.NoError(t, err)
	return s
}

func newDocumentLoader(t *testing.T) *DocumentLoader {
	t.Helper()
	l, err := NewDocumentLoader(0)
	require.NoError(t, err)
	return l
}

func names(docs []*documents.Document) []string {
	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		out = append(out, filepath.Base(doc.FilePath))
	}
	return out
}

func TestDocumentLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "user.graphql"), `
query GetUser($id: ID!) {
	user(id: $id) {
		...UserName
		posts { ...PostTitle }
	}
}
`)
	writeFile(t, filepath.Join(dir, "src", "fragments", "user.gql"), `
fragment UserName on User {
	name
}
`)
	writeFile(t, filepath.Join(dir, "src", "generated", "skip.graphql"), `
query Skipped { posts { id } }
`)
	writeFile(t, filepath.Join(dir, "src", "notes.txt"), "not graphql")
	writeFile(t, filepath.Join(dir, "shared", "post.graphql"), `
fragment PostTitle on Post {
	title
}
`)

	local := config.Documents{
		Include: []string{
			filepath.Join(dir, "src", "**", "*.graphql"),
			filepath.Join(dir, "src", "**", "*.gql"),
			filepath.Join(dir, "src", "*"),
		},
		Exclude: []string{filepath.Join(dir, "src", "generated", "**")},
	}
	external := config.Documents{
		Include: []string{filepath.Join(dir, "shared", "*.graphql")},
	}

	docs, err := newDocumentLoader(t).Load(context.Background(), loadBlogSchema(t), local, external)
	require.NoError(t, err)
	require.Equal(t, []string{"user.graphql", "user.gql", "post.graphql"}, names(docs))

	operationDoc, fragmentsDoc, sharedDoc := docs[0], docs[1], docs[2]
	assert.False(t, fragmentsDoc.External)
	assert.False(t, operationDoc.External)
	assert.True(t, sharedDoc.External)
	assert.True(t, sharedDoc.Fragments[0].External)

	require.Len(t, operationDoc.Operations, 1)
	assert.Equal(t, "GetUser", operationDoc.Operations[0].Name)
	assert.Equal(t, []string{"UserName", "PostTitle"}, operationDoc.Operations[0].UsedFragments)
}

func TestDocumentLoader_ExternalWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.graphql"), `fragment A on User { id }`)

	patterns := config.Documents{Include: []string{filepath.Join(dir, "*.graphql")}}
	docs, err := newDocumentLoader(t).Load(context.Background(), nil, patterns, patterns)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.True(t, docs[0].External)
}

func TestDocumentLoader_Validation(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name: "fragment used from another file",
			files: map[string]string{
				"op.graphql":   `query Posts { posts { ...PostFields } }`,
				"frag.graphql": `fragment PostFields on Post { id title }`,
			},
		},
		{
			name: "unused fragment",
			files: map[string]string{
				"frag.graphql": `fragment Unused on Post { id }`,
			},
		},
		{
			name: "anonymous operations in separate files",
			files: map[string]string{
				"a.graphql": `{ posts { id } }`,
				"b.graphql": `{ user(id: "1") { id } }`,
			},
		},
		{
			name: "named operation repeated in another file",
			files: map[string]string{
				"a.graphql": `query Posts { posts { id } }`,
				"b.graphql": `{ posts { title } }

query Posts { posts { title } }`,
			},
			wantErr: `b.graphql:3:1: There can be only one operation named "Posts".`,
		},
		{
			name: "unknown field",
			files: map[string]string{
				"op.graphql": `query Posts {
  posts { wingspan }
}`,
			},
			wantErr: `op.graphql:2:11: Cannot query field "wingspan" on type "Post".`,
		},
		{
			name: "unknown fragment",
			files: map[string]string{
				"op.graphql": `query Posts { posts { ...Missing } }`,
			},
			wantErr: `Unknown fragment "Missing".`,
		},
		{
			name: "missing argument",
			files: map[string]string{
				"op.graphql": `query User { user { id } }`,
			},
			wantErr: `argument "id" of type "ID!" is required`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, filepath.Join(dir, name), content)
			}

			_, err := newDocumentLoader(t).Load(
				context.Background(),
				loadBlogSchema(t),
				config.Documents{Include: []string{filepath.Join(dir, "*.graphql")}},
				config.Documents{},
			)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDocumentLoader_ParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.graphql"), `query { posts { id }`)

	_, err := newDocumentLoader(t).Load(
		context.Background(),
		nil,
		config.Documents{Include: []string{filepath.Join(dir, "*.graphql")}},
		config.Documents{},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing "+filepath.Join(dir, "broken.graphql"))
}

func TestDocumentLoader_ParseCache(t *testing.T) {
	l := newDocumentLoader(t)

	first, err := l.LoadString(`fragment A on User { id }`, "a.graphql")
	require.NoError(t, err)
	assert.Equal(t, 1, l.CacheLen())

	second, err := l.LoadString(`fragment A on User { id }`, "a.graphql")
	require.NoError(t, err)
	assert.Equal(t, 1, l.CacheLen())

	// each load converts into a fresh document
	first.MarkExternal()
	assert.False(t, second.External)
	assert.False(t, second.Fragments[0].External)

	_, err = l.LoadString(`fragment A on User { id name }`, "a.graphql")
	require.NoError(t, err)
	assert.Equal(t, 2, l.CacheLen())
}

func TestDocumentLoader_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.graphql"), `query A { posts { id } }`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newDocumentLoader(t).Load(ctx, nil,
		config.Documents{Include: []string{filepath.Join(dir, "*.graphql")}},
		config.Documents{},
	)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.graphql", "b.gql", "c.ts", "nested/d.graphql", "nested/deeper/e.graphql"} {
		writeFile(t, filepath.Join(dir, name), "{ a }")
	}

	files, err := expandGlobs(
		[]string{filepath.Join(dir, "**", "*"), filepath.Join(dir, "*.graphql")},
		[]string{filepath.Join(dir, "nested", "deeper", "**")},
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.graphql"),
		filepath.Join(dir, "b.gql"),
		filepath.Join(dir, "nested", "d.graphql"),
	}, files)

	_, err = expandGlobs([]string{filepath.Join(dir, "[")}, nil)
	assert.Error(t, err)
}
