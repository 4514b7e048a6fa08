package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// matches ${NAME} and $NAME
var envRef = regexp.MustCompile(`\$\{([^}]+)\}|\$(\w+)`)

// LoadFile reads a YAML configuration, fills in defaults, resolves paths
// against the file's directory and validates the result.
func LoadFile(path string) (*Config, error) {
	if !IsSupportedConfigFile(path) {
		return nil, fmt.Errorf("unsupported config file %s: expected .yaml or .yml", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}
	cfg.ResolveRelativePaths(path)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration after expanding environment
// variables. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(expandEnvVars(data)))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML config: %w", err)
	}
	return &cfg, nil
}

// IsSupportedConfigFile reports whether path has a YAML extension
func IsSupportedConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// expandEnvVars substitutes references to set, non-empty variables. Other
// references stay as written.
func expandEnvVars(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		m := envRef.FindSubmatch(ref)
		name := m[1]
		if len(name) == 0 {
			name = m[2]
		}
		if value, ok := os.LookupEnv(string(name)); ok && value != "" {
			return []byte(value)
		}
		return ref
	})
}
