// Package typetree_json writes the projected type trees as JSON for
// renderers that run out of process.
package typetree_json

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jzeiders/gqlshape/pkg/plugin"
	"github.com/jzeiders/gqlshape/pkg/plugins/base"
	"github.com/jzeiders/gqlshape/pkg/typetree"
)

// Plugin serializes type trees
type Plugin struct{}

// New creates a new type tree JSON plugin
func New() plugin.Plugin {
	return &Plugin{}
}

// Name returns the plugin name
func (p *Plugin) Name() string {
	return "typetree-json"
}

// Description returns the plugin description
func (p *Plugin) Description() string {
	return "Writes the projected type trees of every operation and fragment as JSON"
}

// DefaultConfig returns the default configuration
func (p *Plugin) DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"indent": 2,
	}
}

// ValidateConfig validates the plugin configuration
func (p *Plugin) ValidateConfig(config map[string]interface{}) error {
	if _, ok := config["indent"]; !ok {
		return nil
	}
	if indent := base.GetInt(config, "indent", -1); indent < 0 {
		return fmt.Errorf("indent must be a non-negative integer, got %v", config["indent"])
	}
	return nil
}

type output struct {
	SchemaHash string           `json:"schemaHash,omitempty"`
	Trees      []*typetree.Tree `json:"trees"`
}

// Generate encodes the request's trees into one file
func (p *Plugin) Generate(ctx context.Context, req *plugin.GenerateRequest) (*plugin.GenerateResponse, error) {
	if err := p.ValidateConfig(req.Config); err != nil {
		return nil, err
	}
	indent := base.GetInt(req.Config, "indent", 2)

	out := output{Trees: req.Trees}
	if out.Trees == nil {
		out.Trees = []*typetree.Tree{}
	}
	if req.Schema != nil {
		out.SchemaHash = req.Schema.Hash()
	}

	var (
		data []byte
		err  error
	)
	if indent == 0 {
		data, err = json.Marshal(out)
	} else {
		data, err = json.MarshalIndent(out, "", strings.Repeat(" ", indent))
	}
	if err != nil {
		return nil, fmt.Errorf("encoding type trees: %w", err)
	}

	return &plugin.GenerateResponse{
		Files: []plugin.GeneratedFile{{
			Path:    req.OutputPath,
			Content: append(data, '\n'),
		}},
	}, nil
}
