package typescript_operations

import (
	"fmt"
	"strings"
)

type tsType interface {
	Render(indent string) string
}

type tsPrimitive struct {
	Code string
}

func (p *tsPrimitive) Render(_ string) string {
	return p.Code
}

type tsNullable struct {
	Inner tsType
}

func (n *tsNullable) Render(indent string) string {
	return n.Inner.Render(indent) + " | null"
}

type tsArray struct {
	Elem      tsType
	Immutable bool
}

func (a *tsArray) Render(indent string) string {
	listType := "Array"
	if a.Immutable {
		listType = "ReadonlyArray"
	}
	return fmt.Sprintf("%s<%s>", listType, a.Elem.Render(indent))
}

type tsUnion struct {
	Options []tsType
}

func (u *tsUnion) Render(indent string) string {
	parts := make([]string, len(u.Options))
	for i, opt := range u.Options {
		parts[i] = opt.Render(indent)
	}
	return strings.Join(parts, " | ")
}

type tsObject struct {
	Fields []*tsField
}

func (o *tsObject) Render(indent string) string {
	if len(o.Fields) == 0 {
		return "{}"
	}
	parts := make([]string, len(o.Fields))
	for i, field := range o.Fields {
		parts[i] = field.Render(indent)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

type tsField struct {
	Name     string
	Optional bool
	Readonly bool
	Type     tsType
}

func (f *tsField) Render(indent string) string {
	var sb strings.Builder
	if f.Readonly {
		sb.WriteString("readonly ")
	}
	sb.WriteString(f.Name)
	if f.Optional {
		sb.WriteString("?")
	}
	sb.WriteString(": ")
	sb.WriteString(f.Type.Render(indent))
	return sb.String()
}
