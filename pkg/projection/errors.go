package projection

import (
	"fmt"
	"strings"

	"github.com/jzeiders/gqlshape/pkg/typetree"
)

// RootError is a structural failure scoped to one operation or fragment.
// Other roots of the same run are unaffected.
type RootError struct {
	Kind typetree.Kind
	Name string
	Err  error
}

func (e *RootError) Error() string {
	name := e.Name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, name, e.Err)
}

func (e *RootError) Unwrap() error { return e.Err }

// RootErrors collects the failed roots of a run
type RootErrors []*RootError

func (e RootErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d definitions failed to project:", len(e))
	for _, err := range e {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes every root failure to errors.Is and errors.As
func (e RootErrors) Unwrap() []error {
	out := make([]error, len(e))
	for i, err := range e {
		out[i] = err
	}
	return out
}
