package typetree

import (
	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/naming"
)

// Kind is the definition a tree was projected from
type Kind string

const (
	KindQuery        Kind = "query"
	KindMutation     Kind = "mutation"
	KindSubscription Kind = "subscription"
	KindFragment     Kind = "fragment"
)

// KindOf maps an operation type to a tree kind
func KindOf(op documents.OperationType) Kind {
	switch op {
	case documents.OperationTypeMutation:
		return KindMutation
	case documents.OperationTypeSubscription:
		return KindSubscription
	default:
		return KindQuery
	}
}

// Tree is the projection of one operation or fragment
type Tree struct {
	Kind Kind
	// Name is the definition name, empty for anonymous operations
	Name       string
	RootSymbol string
	// TypeCondition is the root type: the operation root type or the
	// fragment's type condition
	TypeCondition string
	Root          Result
	// Assignments are the root naming scope's assignments
	Assignments []naming.Assignment
	Location    documents.Location
}

// Shapes visits every result reachable from r, parents before children,
// fields and variants in order.
func Shapes(r Result, visit func(Result)) {
	if r == nil {
		return
	}
	visit(r)
	switch r := r.(type) {
	case *ObjectShape:
		for _, f := range r.Fields {
			if ref, ok := Base(f.Type).(ObjectRef); ok {
				Shapes(ref.Target, visit)
			}
		}
	case *DiscriminatedUnion:
		for _, v := range r.Variants {
			Shapes(v.Shape, visit)
		}
	}
}
