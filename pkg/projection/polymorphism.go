package projection

import (
	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/naming"
	"github.com/jzeiders/gqlshape/pkg/schema"
	"github.com/jzeiders/gqlshape/pkg/typetree"
)

// resolvePolymorphism builds one variant per possible type of parent, in
// schema declaration order. Every variant holds the discriminator, the
// shared fields and the extras selected for its type, later sources
// replacing earlier ones by response key.
func (w *walker) resolvePolymorphism(parent schema.Type, c *collected, path naming.Path) (typetree.Result, error) {
	union := &typetree.DiscriminatedUnion{
		Scope:  w.scope.Root(),
		Parent: parent.Name(),
	}

	for _, obj := range w.schema.PossibleTypes(parent) {
		variantPath := path.Child(naming.On(obj.TypeName))
		discriminator := &typetree.Field{
			Name:       documents.TypenameField,
			SchemaName: documents.TypenameField,
			Type:       typetree.Typename{Values: []string{obj.TypeName}},
		}

		fields := newFieldSet()
		fields.set(discriminator)
		for _, f := range c.fields.list() {
			fields.set(narrowTypename(f, obj.TypeName))
		}
		mixins := append([]typetree.Mixin(nil), c.mixins...)

		if items := c.perType[obj.TypeName]; len(items) > 0 {
			extra, err := w.collect(obj, items, variantPath)
			if err != nil {
				return nil, err
			}
			for _, f := range extra.fields.list() {
				fields.set(f)
			}
			for _, m := range extra.mixins {
				mixins = appendMixin(mixins, m)
			}
		}
		// the discriminator stays non-null and unconditional whatever
		// else selected __typename
		fields.set(discriminator)

		shape := &typetree.ObjectShape{
			Scope:          w.scope.Root(),
			TypeCondition:  obj.TypeName,
			Fields:         fields.list(),
			FragmentMixins: mixins,
		}
		shape.Name = w.scope.Assign(variantPath, typetree.Fingerprint(shape))
		union.Variants = append(union.Variants, &typetree.Variant{
			TypeCondition: obj.TypeName,
			Shape:         shape,
		})
	}

	union.Name = w.scope.Assign(path, typetree.Fingerprint(union))
	return union, nil
}

// narrowTypename restricts a __typename field selected on the abstract
// parent to the variant's concrete type
func narrowTypename(f *typetree.Field, typeName string) *typetree.Field {
	if _, ok := f.Type.(typetree.Typename); !ok {
		return f
	}
	out := *f
	out.Type = typetree.Typename{Values: []string{typeName}}
	return &out
}
