package typetree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/naming"
	"github.com/jzeiders/gqlshape/pkg/scalars"
)

func profileShape(scope, name string) *ObjectShape {
	return &ObjectShape{
		Scope:         scope,
		Name:          name,
		TypeCondition: "Profile",
		Fields: []*Field{
			{Name: "email", SchemaName: "email", Type: Nullable{Of: Scalar{Name: "String", Tag: scalars.TagString}}},
		},
	}
}

func heroUnion() *DiscriminatedUnion {
	variant := func(typ string, extra *Field) *Variant {
		return &Variant{TypeCondition: typ, Shape: &ObjectShape{
			Scope:         "HeroQuery",
			Name:          "Hero" + typ,
			TypeCondition: typ,
			Fields: []*Field{
				{Name: "__typename", SchemaName: "__typename", Type: Typename{Values: []string{typ}}},
				{Name: "name", SchemaName: "name", Type: Scalar{Name: "String", Tag: scalars.TagString}},
				extra,
			},
		}}
	}
	return &DiscriminatedUnion{
		Scope:  "HeroQuery",
		Name:   "Hero",
		Parent: "Character",
		Variants: []*Variant{
			variant("Human", &Field{Name: "height", SchemaName: "height", Type: Nullable{Of: Scalar{Name: "Float", Tag: scalars.TagNumber}}}),
			variant("Droid", &Field{Name: "primaryFunction", SchemaName: "primaryFunction", Type: Nullable{Of: Scalar{Name: "String", Tag: scalars.TagString}}}),
		},
	}
}

func TestFingerprint_IgnoresNames(t *testing.T) {
	a := profileShape("GetUserQuery", "Profile")
	b := profileShape("OtherQuery", "FavFriend2Profile")

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotZero(t, Fingerprint(a))
}

func TestFingerprint_SensitiveToContent(t *testing.T) {
	base := profileShape("S", "Profile")

	renamed := profileShape("S", "Profile")
	renamed.Fields[0].Name = "mail"

	nonNull := profileShape("S", "Profile")
	nonNull.Fields[0].Type = Scalar{Name: "String", Tag: scalars.TagString}

	conditional := profileShape("S", "Profile")
	conditional.Fields[0] = conditional.Fields[0].WithConditional()

	mixin := profileShape("S", "Profile")
	mixin.FragmentMixins = []Mixin{{Name: "ProfileFields"}}

	for name, other := range map[string]*ObjectShape{
		"response key": renamed,
		"nullability":  nonNull,
		"conditional":  conditional,
		"mixin":        mixin,
	} {
		assert.NotEqual(t, Fingerprint(base), Fingerprint(other), name)
	}
}

func TestFingerprint_NestedRefsUseContent(t *testing.T) {
	outer := func(inner *ObjectShape) *ObjectShape {
		return &ObjectShape{
			Name:          "FavFriend",
			TypeCondition: "User",
			Fields:        []*Field{{Name: "profile", SchemaName: "profile", Type: ObjectRef{Target: inner}}},
		}
	}
	assert.Equal(t,
		Fingerprint(outer(profileShape("A", "Profile"))),
		Fingerprint(outer(profileShape("A", "FavFriend2Profile"))),
	)
}

func TestShapes(t *testing.T) {
	root := &ObjectShape{
		Name: "HeroQuery",
		Fields: []*Field{
			{Name: "hero", Type: Nullable{Of: ObjectRef{Target: heroUnion()}}},
			{Name: "profiles", Type: List{Of: ObjectRef{Target: profileShape("HeroQuery", "Profiles")}}},
		},
	}

	var visited []string
	Shapes(root, func(r Result) { visited = append(visited, r.Symbol()) })
	assert.Equal(t, []string{"HeroQuery", "Hero", "HeroHuman", "HeroDroid", "Profiles"}, visited)
}

func TestTypeHelpers(t *testing.T) {
	typ := Nullable{Of: List{Of: Nullable{Of: EnumRef{Name: "Episode"}}}}
	assert.Equal(t, EnumRef{Name: "Episode"}, Base(typ))
	assert.Equal(t, "[Episode?]?", typ.String())
	assert.Equal(t, "EpisodeEnum", EnumRef{Name: "Episode", Override: "EpisodeEnum"}.String())
	assert.Equal(t, "'Human' | 'Droid'", Typename{Values: []string{"Human", "Droid"}}.String())

	shape := profileShape("S", "Profile")
	f, ok := shape.Field("email")
	require.True(t, ok)
	assert.False(t, f.Conditional)
	assert.True(t, f.WithConditional().Conditional)
	assert.False(t, f.Conditional)
	assert.Equal(t, []string{"email"}, shape.FieldNames())

	v, ok := heroUnion().Variant("Droid")
	require.True(t, ok)
	assert.Equal(t, "HeroDroid", v.Shape.Name)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindQuery, KindOf(documents.OperationTypeQuery))
	assert.Equal(t, KindMutation, KindOf(documents.OperationTypeMutation))
	assert.Equal(t, KindSubscription, KindOf(documents.OperationTypeSubscription))
}

func TestTreeMarshalJSON(t *testing.T) {
	tree := &Tree{
		Kind:          KindQuery,
		Name:          "Hero",
		RootSymbol:    "HeroQuery",
		TypeCondition: "Query",
		Root: &ObjectShape{
			Scope:         "HeroQuery",
			Name:          "HeroQuery",
			TypeCondition: "Query",
			Fields:        []*Field{{Name: "hero", SchemaName: "hero", Type: Nullable{Of: ObjectRef{Target: heroUnion()}}}},
		},
		Assignments: []naming.Assignment{{Path: naming.Path{}, Symbol: "HeroQuery"}},
		Location:    documents.Location{File: "hero.graphql", Line: 1, Column: 1},
	}

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "query", decoded["kind"])
	assert.Equal(t, "hero.graphql:1:1", decoded["location"])

	root := decoded["root"].(map[string]any)
	assert.Equal(t, "object", root["kind"])

	hero := root["fields"].([]any)[0].(map[string]any)["type"].(map[string]any)
	assert.Equal(t, "nullable", hero["kind"])
	target := hero["of"].(map[string]any)["target"].(map[string]any)
	assert.Equal(t, "discriminatedUnion", target["kind"])
	assert.Len(t, target["variants"], 2)
}
