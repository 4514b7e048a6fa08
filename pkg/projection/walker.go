package projection

import (
	"fmt"

	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/naming"
	"github.com/jzeiders/gqlshape/pkg/schema"
	"github.com/jzeiders/gqlshape/pkg/typetree"
)

// walker projects selection sets of one root. It owns the root's naming
// scope and is used by a single goroutine.
type walker struct {
	*run
	scope *naming.Scope
}

// item is a selection with the conditional state inherited from enclosing
// fragments
type item struct {
	sel         documents.Selection
	conditional bool
}

func itemsOf(set documents.SelectionSet, conditional bool) []item {
	items := make([]item, 0, len(set))
	for _, sel := range set {
		items = append(items, item{sel: sel, conditional: conditional})
	}
	return items
}

// collected is the accumulated, not yet named, projection of a selection set
type collected struct {
	fields      *fieldSet
	mixins      []typetree.Mixin
	perType     map[string][]item
	polymorphic bool
}

func (c *collected) addMixin(m typetree.Mixin) {
	c.mixins = appendMixin(c.mixins, m)
}

func (c *collected) deferTo(typeName string, it item) {
	c.perType[typeName] = append(c.perType[typeName], it)
	c.polymorphic = true
}

func appendMixin(list []typetree.Mixin, m typetree.Mixin) []typetree.Mixin {
	for _, existing := range list {
		if existing.Name == m.Name {
			return list
		}
	}
	return append(list, m)
}

// fieldSet is an ordered set of fields keyed by response key. Setting an
// existing key replaces the field and keeps its position.
type fieldSet struct {
	order []string
	byKey map[string]*typetree.Field
}

func newFieldSet() *fieldSet {
	return &fieldSet{byKey: make(map[string]*typetree.Field)}
}

func (s *fieldSet) set(f *typetree.Field) {
	if _, ok := s.byKey[f.Name]; !ok {
		s.order = append(s.order, f.Name)
	}
	s.byKey[f.Name] = f
}

func (s *fieldSet) has(key string) bool {
	_, ok := s.byKey[key]
	return ok
}

func (s *fieldSet) list() []*typetree.Field {
	out := make([]*typetree.Field, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byKey[key])
	}
	return out
}

// walk projects items against parent and names the result at path
func (w *walker) walk(parent schema.Type, items []item, path naming.Path) (typetree.Result, error) {
	c, err := w.collect(parent, items, path)
	if err != nil {
		return nil, err
	}
	if c.polymorphic {
		return w.resolvePolymorphism(parent, c, path)
	}

	fields := c.fields.list()
	if w.opts.AddTypename && !c.fields.has(documents.TypenameField) {
		fields = append([]*typetree.Field{w.typenameField(documents.TypenameField, parent, false)}, fields...)
	}
	shape := &typetree.ObjectShape{
		Scope:          w.scope.Root(),
		TypeCondition:  parent.Name(),
		Fields:         fields,
		FragmentMixins: c.mixins,
	}
	shape.Name = w.scope.Assign(path, typetree.Fingerprint(shape))
	return shape, nil
}

// step is one entry of a selection set in document order: a group of fields
// sharing a response key, a fragment spread or a deferred inline fragment.
type step struct {
	group *fieldGroup
	item  item
}

type fieldGroup struct {
	key    string
	first  *documents.Field
	nested []item
	// conditional holds only if every occurrence is conditional
	conditional bool
	seen        bool
	placed      bool
}

func (g *fieldGroup) add(field *documents.Field, conditional bool) {
	if g.first == nil {
		g.first = field
	}
	g.nested = append(g.nested, itemsOf(field.SelectionSet, false)...)
	if !g.seen {
		g.conditional = conditional
		g.seen = true
		return
	}
	g.conditional = g.conditional && conditional
}

// collect partitions items, projects plain fields, merges spread fragments
// and defers type-conditioned selections per concrete type.
//
// A field that a spread fragment also selects under the same response key
// is merged with the plain occurrences in document order, as if the
// fragment had been written inline.
func (w *walker) collect(parent schema.Type, items []item, path naming.Path) (*collected, error) {
	flat, err := w.flatten(parent, items)
	if err != nil {
		return nil, err
	}

	plain := make(map[string]bool)
	for _, it := range flat {
		if field, ok := it.sel.(*documents.Field); ok {
			plain[field.ResponseKey()] = true
		}
	}

	var steps []step
	groups := make(map[string]*fieldGroup)
	groupFor := func(key string) *fieldGroup {
		g, ok := groups[key]
		if !ok {
			g = &fieldGroup{key: key}
			groups[key] = g
		}
		return g
	}
	merged := make(map[*documents.FragmentSpread]map[string]bool)

	for _, it := range flat {
		switch sel := it.sel.(type) {
		case *documents.Field:
			g := groupFor(sel.ResponseKey())
			g.add(sel, it.conditional || documents.IsConditional(sel.Directives))
			if !g.placed {
				g.placed = true
				steps = append(steps, step{group: g})
			}
		case *documents.FragmentSpread:
			conditional := it.conditional || documents.IsConditional(sel.Directives)
			fields, ok, err := w.spreadFields(parent, sel, conditional)
			if err != nil {
				return nil, err
			}
			if ok {
				keys := make(map[string]bool)
				for _, fi := range fields {
					field := fi.sel.(*documents.Field)
					key := field.ResponseKey()
					if !plain[key] {
						continue
					}
					groupFor(key).add(field, fi.conditional || documents.IsConditional(field.Directives))
					keys[key] = true
				}
				merged[sel] = keys
			}
			steps = append(steps, step{item: it})
		default:
			steps = append(steps, step{item: it})
		}
	}

	c := &collected{
		fields:  newFieldSet(),
		perType: make(map[string][]item),
	}
	for _, st := range steps {
		if st.group != nil {
			f, err := w.projectField(parent, st.group, path)
			if err != nil {
				return nil, err
			}
			c.fields.set(f)
			continue
		}

		switch sel := st.item.sel.(type) {
		case *documents.FragmentSpread:
			conditional := st.item.conditional || documents.IsConditional(sel.Directives)
			if err := w.collectSpread(parent, sel, conditional, merged[sel], c); err != nil {
				return nil, err
			}
		case *documents.InlineFragment:
			conditional := st.item.conditional || documents.IsConditional(sel.Directives)
			if err := w.deferInline(parent, sel, conditional, c); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected selection %T at %s", sel, sel.Pos())
		}
	}
	return c, nil
}

// spreadFields returns the fields a spread contributes to every value of
// parent, with nested spreads expanded. ok is false when the fragment is
// type-conditioned below parent and so cannot be merged field by field.
func (w *walker) spreadFields(parent schema.Type, spread *documents.FragmentSpread, conditional bool) ([]item, bool, error) {
	frag, err := w.registry.Lookup(spread.Name, spread.Location)
	if err != nil {
		return nil, false, err
	}
	onType, err := w.resolve(frag.TypeCondition, frag.Location)
	if err != nil {
		return nil, false, err
	}

	_, isObject := parent.(*schema.Object)
	if isObject && !w.schema.IsPossibleType(onType, parent.Name()) {
		return nil, true, nil
	}
	if !isObject && onType.Name() != parent.Name() {
		return nil, false, nil
	}

	flat, err := w.flatten(parent, itemsOf(frag.SelectionSet, conditional))
	if err != nil {
		return nil, false, err
	}
	var out []item
	for _, it := range flat {
		switch sel := it.sel.(type) {
		case *documents.Field:
			out = append(out, it)
		case *documents.FragmentSpread:
			inner, ok, err := w.spreadFields(parent, sel, it.conditional || documents.IsConditional(sel.Directives))
			if err != nil || !ok {
				return nil, ok, err
			}
			out = append(out, inner...)
		default:
			return nil, false, nil
		}
	}
	return out, true, nil
}

type inlineMode int

const (
	inlineSplice inlineMode = iota
	inlineDrop
	inlineDefer
)

// flatten splices inline fragments that apply to every value of parent into
// the surrounding list, drops those that can never apply and keeps the rest.
func (w *walker) flatten(parent schema.Type, items []item) ([]item, error) {
	out := make([]item, 0, len(items))
	for _, it := range items {
		inline, ok := it.sel.(*documents.InlineFragment)
		if !ok {
			out = append(out, it)
			continue
		}
		mode, err := w.inlineMode(parent, inline)
		if err != nil {
			return nil, err
		}
		switch mode {
		case inlineSplice:
			conditional := it.conditional || documents.IsConditional(inline.Directives)
			inner, err := w.flatten(parent, itemsOf(inline.SelectionSet, conditional))
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		case inlineDefer:
			out = append(out, it)
		}
	}
	return out, nil
}

func (w *walker) inlineMode(parent schema.Type, inline *documents.InlineFragment) (inlineMode, error) {
	if inline.TypeCondition == "" || inline.TypeCondition == parent.Name() {
		return inlineSplice, nil
	}
	cond, err := w.resolve(inline.TypeCondition, inline.Location)
	if err != nil {
		return 0, err
	}
	if _, ok := parent.(*schema.Object); ok {
		if w.schema.IsPossibleType(cond, parent.Name()) {
			return inlineSplice, nil
		}
		return inlineDrop, nil
	}
	return inlineDefer, nil
}

func (w *walker) deferInline(parent schema.Type, inline *documents.InlineFragment, conditional bool, c *collected) error {
	cond, err := w.resolve(inline.TypeCondition, inline.Location)
	if err != nil {
		return err
	}
	c.polymorphic = true
	for _, obj := range w.schema.PossibleTypes(parent) {
		if !w.schema.IsPossibleType(cond, obj.TypeName) {
			continue
		}
		for _, it := range itemsOf(inline.SelectionSet, conditional) {
			c.deferTo(obj.TypeName, it)
		}
	}
	return nil
}

// collectSpread merges a fragment's projection into c. A fragment that
// applies to every value of parent is projected once against parent through
// the memo cache; one that applies to only some possible types is deferred
// to those types. Fields under a key in skip were already merged into a
// plain field group.
func (w *walker) collectSpread(parent schema.Type, spread *documents.FragmentSpread, conditional bool, skip map[string]bool, c *collected) error {
	frag, err := w.registry.Lookup(spread.Name, spread.Location)
	if err != nil {
		return err
	}
	onType, err := w.resolve(frag.TypeCondition, frag.Location)
	if err != nil {
		return err
	}

	_, isObject := parent.(*schema.Object)
	if isObject && !w.schema.IsPossibleType(onType, parent.Name()) {
		return nil
	}

	if isObject || onType.Name() == parent.Name() {
		entry := w.fragment(frag, parent)
		if entry.err != nil {
			return entry.err
		}
		c.addMixin(typetree.Mixin{Name: frag.Name, External: frag.External})

		switch res := entry.result.(type) {
		case *typetree.ObjectShape:
			for _, f := range res.Fields {
				if skip[f.Name] {
					continue
				}
				if conditional && !f.Conditional {
					f = f.WithConditional()
				}
				c.fields.set(f)
			}
		case *typetree.DiscriminatedUnion:
			// type-conditioned inside: project it per concrete type
			for _, obj := range w.schema.PossibleTypes(parent) {
				c.deferTo(obj.TypeName, item{sel: spread, conditional: conditional})
			}
		}
		return nil
	}

	c.polymorphic = true
	for _, obj := range w.schema.PossibleTypes(parent) {
		if w.schema.IsPossibleType(onType, obj.TypeName) {
			c.deferTo(obj.TypeName, item{sel: spread, conditional: conditional})
		}
	}
	return nil
}

func (w *walker) projectField(parent schema.Type, g *fieldGroup, path naming.Path) (*typetree.Field, error) {
	field := g.first
	if field.IsTypename() {
		return w.typenameField(g.key, parent, g.conditional), nil
	}

	def, ok := w.schema.Field(parent, field.Name)
	if !ok {
		return nil, &schema.UnknownFieldError{Parent: parent.Name(), Field: field.Name, Location: field.Location}
	}
	base, err := w.resolve(schema.Unwrap(def.Type).Base, field.Location)
	if err != nil {
		return nil, err
	}

	var leaf typetree.Type
	switch b := base.(type) {
	case *schema.Scalar:
		leaf = typetree.Scalar{Name: b.TypeName, Tag: w.mapper.MapScalar(b.TypeName)}
	case *schema.Enum:
		ref := w.mapper.MapEnum(b.TypeName)
		leaf = typetree.EnumRef{Name: ref.Name, Override: ref.Override}
	case *schema.Object, *schema.Interface, *schema.Union:
		res, err := w.walk(b, g.nested, path.Child(g.key))
		if err != nil {
			return nil, err
		}
		leaf = typetree.ObjectRef{Target: res}
	default:
		return nil, fmt.Errorf("field %q on type %q at %s has non-output type %s", field.Name, parent.Name(), field.Location, base.Name())
	}

	return &typetree.Field{
		Name:        g.key,
		SchemaName:  field.Name,
		Type:        mirror(def.Type, leaf),
		Conditional: g.conditional,
	}, nil
}

func (w *walker) typenameField(key string, parent schema.Type, conditional bool) *typetree.Field {
	possible := w.schema.PossibleTypes(parent)
	values := make([]string, 0, len(possible))
	for _, obj := range possible {
		values = append(values, obj.TypeName)
	}
	return &typetree.Field{
		Name:        key,
		SchemaName:  documents.TypenameField,
		Type:        typetree.Typename{Values: values},
		Conditional: conditional,
	}
}

// mirror wraps leaf the way ref wraps its named type: every position is
// Nullable unless the schema marks it NonNull.
func mirror(ref schema.TypeRef, leaf typetree.Type) typetree.Type {
	if nn, ok := ref.(schema.NonNull); ok {
		return mirrorNonNull(nn.Of, leaf)
	}
	return typetree.Nullable{Of: mirrorNonNull(ref, leaf)}
}

func mirrorNonNull(ref schema.TypeRef, leaf typetree.Type) typetree.Type {
	if list, ok := ref.(schema.List); ok {
		return typetree.List{Of: mirror(list.Of, leaf)}
	}
	return leaf
}
