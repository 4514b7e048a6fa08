// Package typescript_operations renders projected type trees as TypeScript
// type aliases.
package typescript_operations

import (
	"context"
	"fmt"
	"strings"

	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/plugin"
	"github.com/jzeiders/gqlshape/pkg/plugins/base"
	"github.com/jzeiders/gqlshape/pkg/scalars"
	"github.com/jzeiders/gqlshape/pkg/typetree"
)

// Plugin generates TypeScript types for GraphQL operations and fragments
type Plugin struct{}

// New creates a new TypeScript operations plugin
func New() plugin.Plugin {
	return &Plugin{}
}

// Name returns the plugin name
func (p *Plugin) Name() string {
	return "typescript-operations"
}

// Description returns the plugin description
func (p *Plugin) Description() string {
	return "Generates TypeScript types for GraphQL operations (queries, mutations, subscriptions) and fragments"
}

// DefaultConfig returns the default configuration
func (p *Plugin) DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"immutableTypes": false,
		"noExport":       false,
		"avoidOptionals": false,
		"skipVariables":  false,
	}
}

// ValidateConfig validates the plugin configuration
func (p *Plugin) ValidateConfig(config map[string]interface{}) error {
	for key, value := range config {
		switch key {
		case "immutableTypes", "noExport", "avoidOptionals", "skipVariables":
			if _, ok := value.(bool); !ok {
				return fmt.Errorf("%s must be a boolean, got %T", key, value)
			}
		}
	}
	return nil
}

// Generate renders every tree of the request into one file
func (p *Plugin) Generate(ctx context.Context, req *plugin.GenerateRequest) (*plugin.GenerateResponse, error) {
	if req.Schema == nil {
		return nil, fmt.Errorf("schema is required")
	}
	if err := p.ValidateConfig(req.Config); err != nil {
		return nil, err
	}
	cfg := parseConfig(req.Config)

	if len(req.Trees) == 0 {
		return &plugin.GenerateResponse{
			Files: []plugin.GeneratedFile{{
				Path:    req.OutputPath,
				Content: []byte("// No GraphQL operations found\n"),
			}},
		}, nil
	}

	operations := make(map[documents.Location]*documents.Operation)
	for _, op := range documents.CollectAllOperations(req.Documents) {
		operations[op.Location] = op
	}

	gen := newGenerator(req.Schema, cfg, scalars.NewMapper(req.Scalars, req.Enums))

	var sections []string
	for _, tree := range req.Trees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if tree.Kind != typetree.KindFragment && !cfg.SkipVariables {
			sections = append(sections, gen.renderVariables(tree, operations[tree.Location]))
		}
		sections = append(sections, gen.renderTree(tree)...)
	}

	declarations := gen.renderDeclarations()
	if gen.usesVariableHelpers {
		declarations = append([]string{variableHelpers}, declarations...)
	}
	content := strings.Join(filterNonEmpty(append(declarations, sections...)), "\n\n")

	return &plugin.GenerateResponse{
		Files: []plugin.GeneratedFile{{
			Path:    req.OutputPath,
			Content: []byte(base.EnsureTrailingNewline(content)),
		}},
	}, nil
}

const variableHelpers = `type Exact<T extends { [key: string]: unknown }> = { [K in keyof T]: T[K] };
type InputMaybe<T> = T | null;`

func filterNonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

type operationsConfig struct {
	ImmutableTypes bool
	NoExport       bool
	AvoidOptionals bool
	SkipVariables  bool
}

func parseConfig(cfg map[string]interface{}) operationsConfig {
	return operationsConfig{
		ImmutableTypes: base.GetBool(cfg, "immutableTypes", false),
		NoExport:       base.GetBool(cfg, "noExport", false),
		AvoidOptionals: base.GetBool(cfg, "avoidOptionals", false),
		SkipVariables:  base.GetBool(cfg, "skipVariables", false),
	}
}
