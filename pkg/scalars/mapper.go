// Package scalars maps schema scalar and enum names to target-neutral tags.
package scalars

// Tag is a target-neutral primitive tag. Renderers translate tags to
// concrete types; user overrides may introduce arbitrary tags.
type Tag string

const (
	TagString  Tag = "string"
	TagNumber  Tag = "number"
	TagBoolean Tag = "boolean"
	// TagUnknown is the permissive result for unregistered custom scalars
	TagUnknown Tag = "unknown"
)

var defaultScalars = map[string]Tag{
	"ID":      TagString,
	"String":  TagString,
	"Int":     TagNumber,
	"Float":   TagNumber,
	"Boolean": TagBoolean,
}

// Mapper resolves scalar tags and enum references. It is immutable after
// construction and safe for concurrent use.
type Mapper struct {
	scalars map[string]Tag
	enums   map[string]string
}

// NewMapper creates a mapper. Scalar overrides take precedence over the
// defaults unconditionally; enum overrides rename the reference surfaced to
// renderers.
func NewMapper(scalarOverrides, enumOverrides map[string]string) *Mapper {
	m := &Mapper{
		scalars: make(map[string]Tag, len(scalarOverrides)),
		enums:   make(map[string]string, len(enumOverrides)),
	}
	for name, tag := range scalarOverrides {
		m.scalars[name] = Tag(tag)
	}
	for name, target := range enumOverrides {
		m.enums[name] = target
	}
	return m
}

// MapScalar returns the tag for a scalar name. Unregistered custom scalars
// map to TagUnknown rather than failing.
func (m *Mapper) MapScalar(name string) Tag {
	if m != nil {
		if tag, ok := m.scalars[name]; ok {
			return tag
		}
	}
	if tag, ok := defaultScalars[name]; ok {
		return tag
	}
	return TagUnknown
}

// EnumRef is a by-reference enum projection. Values are resolved lazily by
// renderers from the schema.
type EnumRef struct {
	Name     string
	Override string
}

// MapEnum returns the reference for an enum name
func (m *Mapper) MapEnum(name string) EnumRef {
	ref := EnumRef{Name: name}
	if m != nil {
		ref.Override = m.enums[name]
	}
	return ref
}
