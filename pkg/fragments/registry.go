package fragments

import (
	"fmt"
	"strings"

	"github.com/jzeiders/gqlshape/pkg/documents"
)

// DuplicateFragmentNameError is fatal to the whole run: later lookups would be ambiguous
type DuplicateFragmentNameError struct {
	Name   string
	First  documents.Location
	Second documents.Location
}

func (e *DuplicateFragmentNameError) Error() string {
	return fmt.Sprintf("duplicate fragment name %q: defined at %s and %s", e.Name, e.First, e.Second)
}

// UnknownFragmentError reports a spread with no matching definition
type UnknownFragmentError struct {
	Name     string
	Location documents.Location
}

func (e *UnknownFragmentError) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("unknown fragment %q", e.Name)
	}
	return fmt.Sprintf("unknown fragment %q spread at %s", e.Name, e.Location)
}

// CyclicFragmentSpreadError lists a spread cycle, first and last entries equal
type CyclicFragmentSpreadError struct {
	Path []string
}

func (e *CyclicFragmentSpreadError) Error() string {
	return fmt.Sprintf("cyclic fragment spread: %s", strings.Join(e.Path, " -> "))
}

// Registry indexes every fragment definition available to a document set,
// local and external alike. Build it once, check it with AssertAcyclic, then
// share it read-only between walks.
type Registry struct {
	byName map[string]*documents.Fragment
	order  []*documents.Fragment
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*documents.Fragment),
	}
}

// Register adds fragment definitions in order, failing on the first name
// that is already registered.
func (r *Registry) Register(frags ...*documents.Fragment) error {
	for _, frag := range frags {
		if frag == nil {
			return fmt.Errorf("fragment cannot be nil")
		}
		if frag.Name == "" {
			return fmt.Errorf("fragment name cannot be empty")
		}
		if existing, ok := r.byName[frag.Name]; ok {
			return &DuplicateFragmentNameError{
				Name:   frag.Name,
				First:  existing.Location,
				Second: frag.Location,
			}
		}
		r.byName[frag.Name] = frag
		r.order = append(r.order, frag)
	}
	return nil
}

// Lookup retrieves a fragment by name. at is the spreading location carried
// by the error for diagnostics.
func (r *Registry) Lookup(name string, at documents.Location) (*documents.Fragment, error) {
	frag, ok := r.byName[name]
	if !ok {
		return nil, &UnknownFragmentError{Name: name, Location: at}
	}
	return frag, nil
}

// Has checks if a fragment is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// All returns the fragments in registration order
func (r *Registry) All() []*documents.Fragment {
	return append([]*documents.Fragment(nil), r.order...)
}

// Len returns the number of registered fragments
func (r *Registry) Len() int { return len(r.order) }

// AssertAcyclic runs a depth-first search over spread edges and fails if a
// fragment transitively spreads itself. Spreads of unknown fragments are not
// edges; the walk reports them against the spreading root.
func (r *Registry) AssertAcyclic() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(r.order))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case inProgress:
			start := 0
			for i, n := range stack {
				if n == name {
					start = i
					break
				}
			}
			path := append(append([]string(nil), stack[start:]...), name)
			return &CyclicFragmentSpreadError{Path: path}
		}

		state[name] = inProgress
		stack = append(stack, name)
		for _, next := range r.byName[name].UsedFragments {
			if _, ok := r.byName[next]; !ok {
				continue
			}
			if err := visit(next); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	for _, frag := range r.order {
		if state[frag.Name] == unvisited {
			if err := visit(frag.Name); err != nil {
				return err
			}
		}
	}
	return nil
}
