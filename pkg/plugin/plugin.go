// Package plugin defines the contract between the pipeline and renderers.
// A renderer receives the projected type trees and returns file content.
package plugin

import (
	"context"
	"fmt"
	"sort"

	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/schema"
	"github.com/jzeiders/gqlshape/pkg/typetree"
)

// Plugin is the main interface that all renderers must implement
type Plugin interface {
	// Name returns the unique name of the plugin
	Name() string

	// Description returns a brief description of what the plugin generates
	Description() string

	// Generate renders the request's trees
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// DefaultConfig returns the default configuration for the plugin
	DefaultConfig() map[string]interface{}

	// ValidateConfig validates the plugin configuration
	ValidateConfig(config map[string]interface{}) error
}

// GenerateRequest contains all the input data for rendering
type GenerateRequest struct {
	// Schema is the resolved GraphQL schema
	Schema *schema.Schema

	// Documents are the loaded documents, external ones included
	Documents []*documents.Document

	// Trees are the projected operations and fragments in document order
	Trees []*typetree.Tree

	// Scalars and Enums are the configured override tables
	Scalars map[string]string
	Enums   map[string]string

	// Config is the plugin-specific configuration
	Config map[string]interface{}

	// OutputPath is the target output file path
	OutputPath string
}

// Placement of generated content relative to what earlier plugins produced
// for the same file
const (
	PlacementAppend  = "append"
	PlacementPrepend = "prepend"
	PlacementContent = "content"
)

// GeneratedFile is one piece of output. An empty Path means the target's
// output path; a relative Path is resolved against its directory.
type GeneratedFile struct {
	Path      string
	Content   []byte
	Placement string
}

// GenerateResponse contains the generated code
type GenerateResponse struct {
	Files []GeneratedFile

	// Warnings are reported but do not fail the target
	Warnings []string
}

// Registry manages available plugins
type Registry interface {
	// Register registers a new plugin
	Register(plugin Plugin) error

	// Get retrieves a plugin by name
	Get(name string) (Plugin, bool)

	// List returns all registered plugin names, sorted
	List() []string

	// Has checks if a plugin is registered
	Has(name string) bool
}

// DefaultRegistry is a basic in-memory plugin registry
type DefaultRegistry struct {
	plugins map[string]Plugin
}

// NewRegistry creates a registry holding plugins
func NewRegistry(plugins ...Plugin) (*DefaultRegistry, error) {
	r := &DefaultRegistry{
		plugins: make(map[string]Plugin),
	}
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register registers a new plugin
func (r *DefaultRegistry) Register(plugin Plugin) error {
	if plugin == nil {
		return fmt.Errorf("plugin cannot be nil")
	}

	name := plugin.Name()
	if name == "" {
		return fmt.Errorf("plugin name cannot be empty")
	}

	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin %q already registered", name)
	}

	r.plugins[name] = plugin
	return nil
}

// Get retrieves a plugin by name
func (r *DefaultRegistry) Get(name string) (Plugin, bool) {
	plugin, ok := r.plugins[name]
	return plugin, ok
}

// List returns all registered plugin names
func (r *DefaultRegistry) List() []string {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if a plugin is registered
func (r *DefaultRegistry) Has(name string) bool {
	_, ok := r.plugins[name]
	return ok
}

// Writer handles writing generated files to disk
type Writer interface {
	// Write writes content to the specified path
	Write(path string, content []byte) error
}
