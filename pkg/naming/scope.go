// Package naming assigns deterministic, unique symbols to the anonymous
// object shapes of one operation or fragment.
package naming

import (
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

const variantPrefix = "... on "

// Path is a structural path: the response keys from a root to a nested
// selection. Type-conditioned variants of a polymorphic selection append a
// segment built with On.
type Path []string

// On returns the path segment of the variant for a concrete type
func On(typeName string) string {
	return variantPrefix + typeName
}

// Child returns a copy of the path extended by one segment
func (p Path) Child(segment string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, segment)
}

func (p Path) String() string {
	if len(p) == 0 {
		return "<root>"
	}
	return strings.Join(p, ".")
}

func (p Path) key() string {
	return strings.Join(p, "\x00")
}

// Assignment records the symbol given to a structural path
type Assignment struct {
	Path        Path   `json:"path"`
	Symbol      string `json:"symbol"`
	Fingerprint uint64 `json:"fingerprint,omitempty"`
}

// Scope is the namespace of one operation or fragment root. It is not safe
// for concurrent use; every walk owns its scope.
type Scope struct {
	root   string
	dedupe bool

	byPath        map[string]string
	owner         map[string]string // symbol -> path key
	byFingerprint map[uint64]string
	assignments   []Assignment
}

// NewScope creates a scope whose root path is bound to rootSymbol. With
// dedupe set, shapes with equal non-zero fingerprints share one symbol.
func NewScope(rootSymbol string, dedupe bool) *Scope {
	s := &Scope{
		root:          rootSymbol,
		dedupe:        dedupe,
		byPath:        make(map[string]string),
		owner:         make(map[string]string),
		byFingerprint: make(map[uint64]string),
	}
	s.bind(Path{}, rootSymbol, 0)
	return s
}

// Root returns the symbol of the root path
func (s *Scope) Root() string { return s.root }

// Lookup returns the symbol already assigned to a path
func (s *Scope) Lookup(path Path) (string, bool) {
	sym, ok := s.byPath[path.key()]
	return sym, ok
}

// Assign returns the symbol for path, assigning one on first use. A path
// keeps its symbol for the lifetime of the scope.
func (s *Scope) Assign(path Path, fingerprint uint64) string {
	key := path.key()
	if sym, ok := s.byPath[key]; ok {
		return sym
	}

	if s.dedupe && fingerprint != 0 {
		if sym, ok := s.byFingerprint[fingerprint]; ok {
			s.byPath[key] = sym
			s.assignments = append(s.assignments, Assignment{Path: append(Path(nil), path...), Symbol: sym, Fingerprint: fingerprint})
			return sym
		}
	}

	for _, candidate := range s.candidates(path) {
		if _, taken := s.owner[candidate]; !taken {
			s.bind(path, candidate, fingerprint)
			return candidate
		}
	}

	// every legible candidate is taken; fall back to a counter on the
	// longest one, which is still stable across runs
	base := s.qualified(path)
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if _, taken := s.owner[candidate]; !taken {
			s.bind(path, candidate, fingerprint)
			return candidate
		}
	}
}

// Assignments returns every assignment in the order it was made, the root
// first.
func (s *Scope) Assignments() []Assignment {
	out := make([]Assignment, len(s.assignments))
	copy(out, s.assignments)
	return out
}

func (s *Scope) bind(path Path, symbol string, fingerprint uint64) {
	key := path.key()
	s.byPath[key] = symbol
	s.owner[symbol] = key
	if fingerprint != 0 {
		if _, ok := s.byFingerprint[fingerprint]; !ok {
			s.byFingerprint[fingerprint] = symbol
		}
	}
	s.assignments = append(s.assignments, Assignment{
		Path:        append(Path(nil), path...),
		Symbol:      symbol,
		Fingerprint: fingerprint,
	})
}

// candidates lists symbols in preference order: the natural name, then the
// natural name prefixed by one more ancestor segment at a time, then the
// fully qualified name under the root symbol.
func (s *Scope) candidates(path Path) []string {
	if len(path) == 0 {
		return []string{s.root}
	}

	terminal := len(path) - 1
	if isVariant(path[terminal]) {
		// a variant is named after its polymorphic parent
		terminal--
	}
	if terminal < 0 {
		return []string{s.root + segmentName(path[len(path)-1])}
	}

	var out []string
	for start := terminal; start >= 0; start-- {
		out = append(out, joinSegments(path[start:]))
	}
	out = append(out, s.qualified(path))
	return out
}

func (s *Scope) qualified(path Path) string {
	return s.root + joinSegments(path)
}

func joinSegments(segments []string) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(segmentName(seg))
	}
	return b.String()
}

func segmentName(seg string) string {
	if isVariant(seg) {
		return strcase.ToCamel(strings.TrimPrefix(seg, variantPrefix))
	}
	return strcase.ToCamel(seg)
}

func isVariant(seg string) bool {
	return strings.HasPrefix(seg, variantPrefix)
}

// Pascal upper-cases the first letter and keeps the rest of a definition
// name as written.
func Pascal(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FragmentSymbol is the root symbol of a fragment's own scope
func FragmentSymbol(fragment string) string {
	return Pascal(fragment) + "Fragment"
}
