package schema

import (
	"fmt"

	"github.com/jzeiders/gqlshape/pkg/documents"
)

// UnknownTypeError reports a reference to a type the schema does not define
type UnknownTypeError struct {
	Name     string
	Location documents.Location
}

func (e *UnknownTypeError) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("unknown type %q", e.Name)
	}
	return fmt.Sprintf("unknown type %q at %s", e.Name, e.Location)
}

// UnknownFieldError reports a selection of a field the parent type does not define
type UnknownFieldError struct {
	Parent   string
	Field    string
	Location documents.Location
}

func (e *UnknownFieldError) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("unknown field %q on type %q", e.Field, e.Parent)
	}
	return fmt.Sprintf("unknown field %q on type %q at %s", e.Field, e.Parent, e.Location)
}
