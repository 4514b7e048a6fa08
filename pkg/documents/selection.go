package documents

// Selection is one entry of a selection set. The set of implementations is
// closed: *Field, *FragmentSpread and *InlineFragment.
type Selection interface {
	isSelection()
	Pos() Location
}

// SelectionSet is an ordered list of selections
type SelectionSet []Selection

// TypenameField is the discriminator meta-field name
const TypenameField = "__typename"

// Field selects a schema field, optionally under an alias
type Field struct {
	Alias        string
	Name         string
	Directives   []string
	SelectionSet SelectionSet
	Location     Location
}

// ResponseKey is the key the field occupies in the response object
func (f *Field) ResponseKey() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IsTypename reports whether the field requests the discriminator
func (f *Field) IsTypename() bool { return f.Name == TypenameField }

// FragmentSpread references a named fragment
type FragmentSpread struct {
	Name       string
	Directives []string
	Location   Location
}

// InlineFragment is an optionally type-conditioned sub-selection
type InlineFragment struct {
	TypeCondition string
	Directives    []string
	SelectionSet  SelectionSet
	Location      Location
}

func (*Field) isSelection()          {}
func (*FragmentSpread) isSelection() {}
func (*InlineFragment) isSelection() {}

func (f *Field) Pos() Location          { return f.Location }
func (s *FragmentSpread) Pos() Location { return s.Location }
func (i *InlineFragment) Pos() Location { return i.Location }

// IsConditional reports whether the directives make a selection conditional
func IsConditional(directives []string) bool {
	for _, d := range directives {
		if d == "skip" || d == "include" {
			return true
		}
	}
	return false
}

// FragmentSpreads returns the names of every fragment spread reachable in the
// selection set without following spreads, in first occurrence order.
func (s SelectionSet) FragmentSpreads() []string {
	var names []string
	seen := make(map[string]bool)
	var visit func(SelectionSet)
	visit = func(set SelectionSet) {
		for _, sel := range set {
			switch sel := sel.(type) {
			case *Field:
				visit(sel.SelectionSet)
			case *InlineFragment:
				visit(sel.SelectionSet)
			case *FragmentSpread:
				if !seen[sel.Name] {
					seen[sel.Name] = true
					names = append(names, sel.Name)
				}
			}
		}
	}
	visit(s)
	return names
}

// SpreadSites is like FragmentSpreads but keeps every spread node, so callers
// can report the spreading location.
func (s SelectionSet) SpreadSites() []*FragmentSpread {
	var sites []*FragmentSpread
	var visit func(SelectionSet)
	visit = func(set SelectionSet) {
		for _, sel := range set {
			switch sel := sel.(type) {
			case *Field:
				visit(sel.SelectionSet)
			case *InlineFragment:
				visit(sel.SelectionSet)
			case *FragmentSpread:
				sites = append(sites, sel)
			}
		}
	}
	visit(s)
	return sites
}
