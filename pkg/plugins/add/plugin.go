// Package add places fixed content, such as headers or lint directives, in
// generated files.
package add

import (
	"context"
	"fmt"
	"strings"

	"github.com/jzeiders/gqlshape/pkg/plugin"
	"github.com/jzeiders/gqlshape/pkg/plugins/base"
)

// ConfigKey is the target config entry the plugin reads. It holds either
// the content string or a map with content and placement.
const ConfigKey = "add"

// Plugin adds custom content to generated files
type Plugin struct{}

// Config for the add plugin
type Config struct {
	// Content to add to the file
	Content string `yaml:"content" json:"content"`
	// Placement is one of prepend, append or content
	Placement string `yaml:"placement" json:"placement"`
}

// New creates a new add plugin
func New() *Plugin {
	return &Plugin{}
}

// Name returns the plugin name
func (p *Plugin) Name() string {
	return "add"
}

// Description returns a brief description of what the plugin generates
func (p *Plugin) Description() string {
	return "Adds custom content to generated files"
}

// DefaultConfig returns the default configuration for the plugin
func (p *Plugin) DefaultConfig() map[string]interface{} {
	return map[string]interface{}{}
}

// ValidateConfig validates the plugin configuration
func (p *Plugin) ValidateConfig(config map[string]interface{}) error {
	switch placement := strings.ToLower(p.parseConfig(config[ConfigKey]).Placement); placement {
	case plugin.PlacementPrepend, plugin.PlacementAppend, plugin.PlacementContent:
		return nil
	default:
		return fmt.Errorf("add: invalid placement %q", placement)
	}
}

// Generate returns the configured content for the target's output file
func (p *Plugin) Generate(ctx context.Context, req *plugin.GenerateRequest) (*plugin.GenerateResponse, error) {
	if err := p.ValidateConfig(req.Config); err != nil {
		return nil, err
	}
	config := p.parseConfig(req.Config[ConfigKey])

	if config.Content == "" {
		return &plugin.GenerateResponse{}, nil
	}

	return &plugin.GenerateResponse{
		Files: []plugin.GeneratedFile{{
			Path:      req.OutputPath,
			Content:   []byte(base.EnsureTrailingNewline(config.Content)),
			Placement: strings.ToLower(config.Placement),
		}},
	}, nil
}

// parseConfig parses the plugin configuration
func (p *Plugin) parseConfig(cfg interface{}) *Config {
	config := &Config{
		Placement: plugin.PlacementPrepend,
	}

	if cfg == nil {
		return config
	}

	switch v := cfg.(type) {
	case string:
		// If config is just a string, use it as content
		config.Content = v
	case map[string]interface{}:
		config.Content = base.GetString(v, "content", "")
		config.Placement = base.GetString(v, "placement", config.Placement)
	default:
		config.Content = fmt.Sprintf("%v", cfg)
	}

	return config
}
