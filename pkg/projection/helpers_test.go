package projection_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/projection"
	"github.com/jzeiders/gqlshape/pkg/schema"
	"github.com/jzeiders/gqlshape/pkg/typetree"
)

const testSDL = `
scalar DateTime

type Query {
	hero(episode: Episode): Character
	human(id: ID!): Human
	search(text: String!): [SearchResult!]!
	matrix: [[Int]!]!
	tags: [String]!
	codes: [String!]
	entry: Entry
	feed: [Entry!]!
	me: User
	when: DateTime
	favoriteEpisode: Episode!
}

type Mutation {
	createReview(episode: Episode, review: ReviewInput!): Review
}

enum Episode { NEWHOPE EMPIRE JEDI }

interface Character {
	id: ID!
	name: String!
	friends: [Character]
}

type Human implements Character {
	id: ID!
	name: String!
	friends: [Character]
	height: Float
}

type Droid implements Character {
	id: ID!
	name: String!
	friends: [Character]
	primaryFunction: String
}

type Starship {
	id: ID!
	length: Float
}

union SearchResult = Starship | Droid | Human

type Entry {
	id: ID!
	createdAt: DateTime!
	repository: Repository!
}

type Repository {
	description: String
	owner: User
}

type User {
	id: ID!
	name: String!
	favFriend: User
	profile: Profile
}

type Profile {
	email: String
}

type Review {
	stars: Int!
	commentary: String
}

input ReviewInput {
	stars: Int!
}
`

func loadSchema(t testing.TB) *schema.Schema {
	t.Helper()
	s, err := schema.Load(&ast.Source{Name: "schema.graphql", Input: testSDL})
	require.NoError(t, err)
	return s
}

func parseDoc(t testing.TB, name, src string) *documents.Document {
	t.Helper()
	doc, err := parser.ParseQuery(&ast.Source{Name: name, Input: src})
	require.NoError(t, err)
	out, err := documents.FromAST(doc, name, src)
	require.NoError(t, err)
	return out
}

func run(t *testing.T, opts projection.Options, docs ...*documents.Document) *projection.Result {
	t.Helper()
	res, err := projection.Project(context.Background(), loadSchema(t), docs, opts)
	require.NoError(t, err)
	return res
}

func tree(t *testing.T, res *projection.Result, rootSymbol string) *typetree.Tree {
	t.Helper()
	tr, ok := res.Tree(rootSymbol)
	require.True(t, ok, "no tree %s", rootSymbol)
	return tr
}

func asShape(t *testing.T, r typetree.Result) *typetree.ObjectShape {
	t.Helper()
	shape, ok := r.(*typetree.ObjectShape)
	require.True(t, ok, "expected object shape, got %T", r)
	return shape
}

func asUnion(t *testing.T, r typetree.Result) *typetree.DiscriminatedUnion {
	t.Helper()
	union, ok := r.(*typetree.DiscriminatedUnion)
	require.True(t, ok, "expected discriminated union, got %T", r)
	return union
}

// field returns a field of shape and the projection its type refers to
func field(t *testing.T, shape *typetree.ObjectShape, name string) *typetree.Field {
	t.Helper()
	f, ok := shape.Field(name)
	require.True(t, ok, "%s has no field %s (fields: %v)", shape.Name, name, shape.FieldNames())
	return f
}

func target(t *testing.T, f *typetree.Field) typetree.Result {
	t.Helper()
	ref, ok := typetree.Base(f.Type).(typetree.ObjectRef)
	require.True(t, ok, "field %s is not an object reference: %s", f.Name, f.Type)
	return ref.Target
}

func variantNames(u *typetree.DiscriminatedUnion) []string {
	out := make([]string, 0, len(u.Variants))
	for _, v := range u.Variants {
		out = append(out, v.TypeCondition)
	}
	return out
}
