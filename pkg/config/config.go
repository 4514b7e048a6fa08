package config

import (
	"fmt"
	"path/filepath"
)

// SchemaSource represents a source for GraphQL schema SDL
type SchemaSource struct {
	Type    string            `yaml:"type,omitempty"`    // "file" | "url"
	Path    string            `yaml:"path,omitempty"`    // For file-based schemas
	URL     string            `yaml:"url,omitempty"`     // For remote SDL
	Headers map[string]string `yaml:"headers,omitempty"` // For authentication
}

// Documents defines where to find GraphQL operations and fragments
type Documents struct {
	Include []string `yaml:"include"` // Glob patterns for files to include
	Exclude []string `yaml:"exclude"` // Glob patterns for files to exclude
}

// OutputTarget defines a code generation target
type OutputTarget struct {
	Path    string                 `yaml:"path"`             // Output file path
	Plugins []string               `yaml:"plugins"`          // Plugins to use for generation
	Config  map[string]interface{} `yaml:"config,omitempty"` // Plugin-specific configuration
}

// Projection tunes the type projection engine
type Projection struct {
	DedupeIdenticalShapes bool `yaml:"dedupeIdenticalShapes"`
	OmitOperationSuffix   bool `yaml:"omitOperationSuffix"`
	AddTypename           bool `yaml:"addTypename"`
	Concurrency           int  `yaml:"concurrency"` // 0 = GOMAXPROCS
}

// Config represents the full configuration
type Config struct {
	Schema    []SchemaSource `yaml:"schema"`    // Schema sources
	Documents Documents      `yaml:"documents"` // Document sources
	// ExternalFragments are fragment-only documents shared with other
	// projects. Their fragments serve spreads but produce no types.
	ExternalFragments Documents               `yaml:"externalFragments"`
	Scalars           map[string]string       `yaml:"scalars"` // Custom scalar tags
	Enums             map[string]string       `yaml:"enums"`   // Enum reference overrides
	Projection        Projection              `yaml:"projection"`
	Generates         map[string]OutputTarget `yaml:"generates"` // Output targets
	Verbose           bool                    `yaml:"verbose"`   // Verbose output
}

// setDefaults sets default values for the configuration
func (c *Config) setDefaults() error {
	// Set default schema type if not specified
	for i := range c.Schema {
		if c.Schema[i].Type == "" {
			if c.Schema[i].Path != "" {
				c.Schema[i].Type = "file"
			} else if c.Schema[i].URL != "" {
				c.Schema[i].Type = "url"
			}
		}
	}

	// Set default document includes if empty
	if len(c.Documents.Include) == 0 {
		c.Documents.Include = []string{
			"**/*.graphql",
			"**/*.gql",
		}
	}

	if c.Scalars == nil {
		c.Scalars = make(map[string]string)
	}
	if c.Enums == nil {
		c.Enums = make(map[string]string)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Schema) == 0 {
		return fmt.Errorf("at least one schema source is required")
	}

	for i, source := range c.Schema {
		if source.Type == "" {
			return fmt.Errorf("schema[%d]: type is required", i)
		}

		switch source.Type {
		case "file":
			if source.Path == "" {
				return fmt.Errorf("schema[%d]: path is required for file type", i)
			}
		case "url":
			if source.URL == "" {
				return fmt.Errorf("schema[%d]: url is required for url type", i)
			}
		default:
			return fmt.Errorf("schema[%d]: invalid type %q", i, source.Type)
		}
	}

	if len(c.Documents.Include) == 0 {
		return fmt.Errorf("documents.include cannot be empty")
	}

	if len(c.ExternalFragments.Exclude) > 0 && len(c.ExternalFragments.Include) == 0 {
		return fmt.Errorf("externalFragments.exclude requires externalFragments.include")
	}

	if c.Projection.Concurrency < 0 {
		return fmt.Errorf("projection.concurrency cannot be negative")
	}

	for name, tag := range c.Scalars {
		if tag == "" {
			return fmt.Errorf("scalars.%s: tag cannot be empty", name)
		}
	}

	if len(c.Generates) == 0 {
		return fmt.Errorf("at least one generation target is required")
	}

	for path, target := range c.Generates {
		if path == "" {
			return fmt.Errorf("output path cannot be empty")
		}
		if len(target.Plugins) == 0 {
			return fmt.Errorf("output %q: at least one plugin is required", path)
		}
	}

	return nil
}

// ResolveRelativePaths resolves all relative paths in the config relative to the config file
func (c *Config) ResolveRelativePaths(configPath string) {
	baseDir := filepath.Dir(configPath)

	// Resolve schema paths
	for i := range c.Schema {
		if c.Schema[i].Path != "" && !filepath.IsAbs(c.Schema[i].Path) {
			c.Schema[i].Path = filepath.Join(baseDir, c.Schema[i].Path)
		}
	}

	resolvePatterns(baseDir, c.Documents.Include)
	resolvePatterns(baseDir, c.Documents.Exclude)
	resolvePatterns(baseDir, c.ExternalFragments.Include)
	resolvePatterns(baseDir, c.ExternalFragments.Exclude)

	// Resolve output paths
	newGenerates := make(map[string]OutputTarget)
	for path, target := range c.Generates {
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		target.Path = path
		newGenerates[path] = target
	}
	c.Generates = newGenerates
}

func resolvePatterns(baseDir string, patterns []string) {
	for i := range patterns {
		if !filepath.IsAbs(patterns[i]) {
			patterns[i] = filepath.Join(baseDir, patterns[i])
		}
	}
}
