package typetree

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the structure of a result: field names, types,
// conditions and variants, recursively. Assigned symbols and scopes are not
// part of it, so two shapes with identical content have equal fingerprints
// wherever they were named. The result is never zero.
func Fingerprint(r Result) uint64 {
	d := xxhash.New()
	writeResult(d, r)
	sum := d.Sum64()
	if sum == 0 {
		sum = 1
	}
	return sum
}

func writeResult(d *xxhash.Digest, r Result) {
	switch r := r.(type) {
	case *ObjectShape:
		writeShape(d, r)
	case *DiscriminatedUnion:
		_, _ = d.WriteString("union(")
		_, _ = d.WriteString(r.Parent)
		for _, v := range r.Variants {
			_, _ = d.WriteString("|")
			_, _ = d.WriteString(v.TypeCondition)
			_, _ = d.WriteString(":")
			writeShape(d, v.Shape)
		}
		_, _ = d.WriteString(")")
	default:
		_, _ = d.WriteString("nil")
	}
}

func writeShape(d *xxhash.Digest, s *ObjectShape) {
	_, _ = d.WriteString("{")
	_, _ = d.WriteString(s.TypeCondition)
	for _, f := range s.Fields {
		_, _ = d.WriteString(";")
		_, _ = d.WriteString(f.Name)
		_, _ = d.WriteString("=")
		_, _ = d.WriteString(f.SchemaName)
		_, _ = d.WriteString(":")
		writeType(d, f.Type)
		if f.Conditional {
			_, _ = d.WriteString("@cond")
		}
	}
	for _, m := range s.FragmentMixins {
		_, _ = d.WriteString("&")
		_, _ = d.WriteString(m.Name)
		_, _ = d.WriteString(strconv.FormatBool(m.External))
	}
	_, _ = d.WriteString("}")
}

func writeType(d *xxhash.Digest, t Type) {
	switch t := t.(type) {
	case Nullable:
		_, _ = d.WriteString("?")
		writeType(d, t.Of)
	case List:
		_, _ = d.WriteString("[")
		writeType(d, t.Of)
		_, _ = d.WriteString("]")
	case Scalar:
		_, _ = d.WriteString("s:")
		_, _ = d.WriteString(t.Name)
		_, _ = d.WriteString("/")
		_, _ = d.WriteString(string(t.Tag))
	case EnumRef:
		_, _ = d.WriteString("e:")
		_, _ = d.WriteString(t.Name)
		_, _ = d.WriteString("/")
		_, _ = d.WriteString(t.Override)
	case Typename:
		_, _ = d.WriteString("t:")
		for _, v := range t.Values {
			_, _ = d.WriteString(v)
			_, _ = d.WriteString(",")
		}
	case ObjectRef:
		writeResult(d, t.Target)
	}
}
