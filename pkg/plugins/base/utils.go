// Package base holds helpers shared by the built-in renderers.
package base

import (
	"strings"

	"github.com/jzeiders/gqlshape/pkg/typetree"
)

// GetBool safely gets a boolean value from a map
func GetBool(m map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := m[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultValue
}

// GetString safely gets a string value from a map
func GetString(m map[string]interface{}, key string, defaultValue string) string {
	if val, ok := m[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return defaultValue
}

// GetInt safely gets an integer value from a map. YAML decodes numbers as
// int; JSON-shaped maps carry float64.
func GetInt(m map[string]interface{}, key string, defaultValue int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultValue
}

// EnsureTrailingNewline appends a newline unless s is empty or has one
func EnsureTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// QualifiedName is the module-wide name of a projected result. Shape names
// are unique only within their naming scope, so nested shapes are prefixed
// with the scope's root symbol.
func QualifiedName(r typetree.Result) string {
	var scope, name string
	switch r := r.(type) {
	case *typetree.ObjectShape:
		scope, name = r.Scope, r.Name
	case *typetree.DiscriminatedUnion:
		scope, name = r.Scope, r.Name
	default:
		return ""
	}
	if scope == "" || name == scope {
		return name
	}
	return scope + "_" + name
}
