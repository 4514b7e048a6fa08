package documents

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Document represents a parsed GraphQL document with operations and fragments
type Document struct {
	// File path where this document was found
	FilePath string

	// Raw content of the document
	Content string

	// Operations defined in this document, in source order
	Operations []*Operation

	// Fragments defined in this document, in source order
	Fragments []*Fragment

	// Hash of the document content
	Hash string

	// External marks documents whose fragments are supplied out-of-band.
	// Their operations are ignored and their fragments produce no tree.
	External bool
}

// OperationType represents the type of GraphQL operation
type OperationType string

const (
	OperationTypeQuery        OperationType = "query"
	OperationTypeMutation     OperationType = "mutation"
	OperationTypeSubscription OperationType = "subscription"
)

// Operation represents a GraphQL operation (query, mutation, or subscription)
type Operation struct {
	// Name of the operation (may be empty for anonymous operations)
	Name string

	// Type of operation: query, mutation, or subscription
	Type OperationType

	// Variables declared by the operation, in source order
	Variables []*Variable

	SelectionSet SelectionSet

	// Fragments spread anywhere inside this operation, first occurrence order
	UsedFragments []string

	Location Location
}

// Variable is an operation variable definition
type Variable struct {
	Name string

	// Type in GraphQL notation, e.g. "[ID!]!"
	Type string

	// HasDefault is set when the definition carries a default value
	HasDefault bool
}

// Fragment represents a GraphQL fragment definition
type Fragment struct {
	Name string

	// TypeCondition is the type this fragment applies to
	TypeCondition string

	SelectionSet SelectionSet

	// Other fragments used by this fragment
	UsedFragments []string

	// External is surfaced to renderers for import decisions
	External bool

	Location Location
}

// Location represents a position in a source file
type Location struct {
	File   string
	Line   int
	Column int
}

// IsZero reports whether the location carries no position
func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0 && l.Column == 0
}

func (l Location) String() string {
	if l.IsZero() {
		return "<unknown>"
	}
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// CollectAllOperations returns the operations of every non-external document
func CollectAllOperations(docs []*Document) []*Operation {
	var ops []*Operation
	for _, doc := range docs {
		if doc == nil || doc.External {
			continue
		}
		ops = append(ops, doc.Operations...)
	}
	return ops
}

// CollectAllFragments returns the fragments of every document, external ones included
func CollectAllFragments(docs []*Document) []*Fragment {
	var frags []*Fragment
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		frags = append(frags, doc.Fragments...)
	}
	return frags
}

// ComputeHash returns the hex xxhash of the given content
func ComputeHash(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}
