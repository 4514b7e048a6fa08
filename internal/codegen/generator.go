// Package codegen runs the generation pipeline: load the schema and
// documents, project every operation and fragment, render each target and
// write the results.
package codegen

import (
	"context"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/jzeiders/gqlshape/internal/loader"
	"github.com/jzeiders/gqlshape/pkg/config"
	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/plugin"
	"github.com/jzeiders/gqlshape/pkg/projection"
	"github.com/jzeiders/gqlshape/pkg/schema"
	"github.com/jzeiders/gqlshape/pkg/typetree"
)

// Generator is the main code generation engine
type Generator struct {
	config   *config.Config
	registry plugin.Registry
	writer   plugin.Writer

	schemaLoader *loader.SchemaLoader
	docLoader    *loader.DocumentLoader

	log   *zap.Logger
	out   io.Writer
	quiet bool

	schema *schema.Schema
	docs   []*documents.Document
	trees  []*typetree.Tree
}

type Option func(*Generator)

// WithLogger sets the logger passed to the loaders and the engine
func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// WithWriter replaces the file writer
func WithWriter(w plugin.Writer) Option {
	return func(g *Generator) {
		g.writer = w
	}
}

// WithSchemaLoader replaces the default schema loader
func WithSchemaLoader(l *loader.SchemaLoader) Option {
	return func(g *Generator) {
		g.schemaLoader = l
	}
}

// WithProgress prints progress lines to w. Nothing is printed by default.
func WithProgress(w io.Writer) Option {
	return func(g *Generator) {
		g.out = w
		g.quiet = w == nil
	}
}

// NewGenerator creates a new code generator
func NewGenerator(cfg *config.Config, registry plugin.Registry, opts ...Option) (*Generator, error) {
	g := &Generator{
		config:   cfg,
		registry: registry,
		writer:   &DefaultFileWriter{},
		log:      zap.NewNop(),
		quiet:    true,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.schemaLoader == nil {
		g.schemaLoader = loader.NewSchemaLoader(loader.WithSchemaLogger(g.log))
	}
	docLoader, err := loader.NewDocumentLoader(0, loader.WithDocumentLogger(g.log))
	if err != nil {
		return nil, err
	}
	g.docLoader = docLoader
	return g, nil
}

func (g *Generator) printf(format string, args ...interface{}) {
	if g.quiet {
		return
	}
	fmt.Fprintf(g.out, format, args...)
}

// Generate runs the code generation process
func (g *Generator) Generate(ctx context.Context) error {
	if err := g.loadSchema(ctx); err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	if err := g.loadDocuments(ctx); err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}

	if err := g.project(ctx); err != nil {
		return err
	}

	// targets run in path order so output and errors are reproducible
	paths := make([]string, 0, len(g.config.Generates))
	for path := range g.config.Generates {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, outputPath := range paths {
		g.printf("Generating %s...\n", outputPath)
		if err := g.generateTarget(ctx, outputPath, g.config.Generates[outputPath]); err != nil {
			return fmt.Errorf("generating %s: %w", outputPath, err)
		}
	}
	return nil
}

func (g *Generator) loadSchema(ctx context.Context) error {
	g.printf("Loading schema...\n")
	s, err := g.schemaLoader.Load(ctx, g.config.Schema)
	if err != nil {
		return err
	}
	g.schema = s
	g.printf("Schema loaded (hash: %s, %d types)\n", s.Hash(), len(s.TypeNames()))
	return nil
}

func (g *Generator) loadDocuments(ctx context.Context) error {
	g.printf("Loading documents...\n")
	// schema files are never documents, even when an include pattern
	// matches them
	local := g.config.Documents
	local.Exclude = append([]string(nil), local.Exclude...)
	for _, src := range g.config.Schema {
		if src.Type == "file" {
			local.Exclude = append(local.Exclude, src.Path)
		}
	}

	docs, err := g.docLoader.Load(ctx, g.schema, local, g.config.ExternalFragments)
	if err != nil {
		return err
	}
	g.docs = docs
	g.printf("Found %d documents (%d operations, %d fragments)\n",
		len(docs), len(documents.CollectAllOperations(docs)), len(documents.CollectAllFragments(docs)))
	return nil
}

func (g *Generator) project(ctx context.Context) error {
	opts := projection.Options{
		Scalars:               g.config.Scalars,
		Enums:                 g.config.Enums,
		DedupeIdenticalShapes: g.config.Projection.DedupeIdenticalShapes,
		OmitOperationSuffix:   g.config.Projection.OmitOperationSuffix,
		AddTypename:           g.config.Projection.AddTypename,
		Concurrency:           g.config.Projection.Concurrency,
		Logger:                g.log,
	}
	res, err := projection.Project(ctx, g.schema, g.docs, opts)
	if err != nil {
		return fmt.Errorf("projecting documents: %w", err)
	}
	for _, rootErr := range res.Errors {
		g.log.Error("projection failed",
			zap.String("kind", string(rootErr.Kind)),
			zap.String("name", rootErr.Name),
			zap.Error(rootErr.Err),
		)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("projecting documents: %w", err)
	}
	g.trees = res.Trees
	g.printf("Projected %d definitions (memo hits: %d, misses: %d)\n",
		len(res.Trees), res.Stats.Hits, res.Stats.Misses)
	return nil
}

// generateTarget runs the target's plugins in order and writes the merged
// files
func (g *Generator) generateTarget(ctx context.Context, outputPath string, target config.OutputTarget) error {
	combinedFiles := make(map[string][]byte)

	for _, pluginName := range target.Plugins {
		p, ok := g.registry.Get(pluginName)
		if !ok {
			return fmt.Errorf("plugin %q not found", pluginName)
		}

		pluginConfig := mergeConfig(p.DefaultConfig(), target.Config)
		if err := p.ValidateConfig(pluginConfig); err != nil {
			return fmt.Errorf("plugin %q: invalid config: %w", pluginName, err)
		}

		req := &plugin.GenerateRequest{
			Schema:     g.schema,
			Documents:  g.docs,
			Trees:      g.trees,
			Scalars:    g.config.Scalars,
			Enums:      g.config.Enums,
			Config:     pluginConfig,
			OutputPath: outputPath,
		}

		resp, err := p.Generate(ctx, req)
		if err != nil {
			return fmt.Errorf("plugin %q: %w", pluginName, err)
		}

		mergeGenerateResponse(combinedFiles, outputPath, resp)

		for _, warning := range resp.Warnings {
			g.log.Warn(warning, zap.String("plugin", pluginName), zap.String("target", outputPath))
		}
	}

	paths := make([]string, 0, len(combinedFiles))
	for path := range combinedFiles {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		content := combinedFiles[path]
		if err := g.writer.Write(path, content); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		g.printf("  Generated: %s (%d bytes)\n", path, len(content))
	}
	return nil
}

// mergeConfig overlays the target config on a plugin's defaults
func mergeConfig(defaults, overlay map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(defaults)+len(overlay))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range overlay {
		merged[key] = value
	}
	return merged
}
