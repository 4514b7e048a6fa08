package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jzeiders/gqlshape/internal/codegen"
	"github.com/jzeiders/gqlshape/pkg/config"
	"github.com/jzeiders/gqlshape/pkg/plugin"
	add_plugin "github.com/jzeiders/gqlshape/pkg/plugins/add"
	ts_ops_plugin "github.com/jzeiders/gqlshape/pkg/plugins/typescript_operations"
	typetree_json_plugin "github.com/jzeiders/gqlshape/pkg/plugins/typetree_json"
)

func newRegistry() (*plugin.DefaultRegistry, error) {
	registry, err := plugin.NewRegistry(
		ts_ops_plugin.New(),
		typetree_json_plugin.New(),
		add_plugin.New(),
	)
	if err != nil {
		return nil, fmt.Errorf("registering plugins: %w", err)
	}
	return registry, nil
}

// runGenerate loads the configuration and runs the pipeline
func runGenerate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, err := config.DiscoverConfig(cfgFile, ".")
	if err != nil {
		return fmt.Errorf("discovering config: %w", err)
	}
	if !quiet {
		fmt.Printf("Loading config from: %s\n", configPath)
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := newLogger(verbose || cfg.Verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	registry, err := newRegistry()
	if err != nil {
		return err
	}
	log.Debug("registered plugins", zap.Strings("plugins", registry.List()))

	opts := []codegen.Option{codegen.WithLogger(log)}
	if !quiet {
		opts = append(opts, codegen.WithProgress(os.Stdout))
	}
	gen, err := codegen.NewGenerator(cfg, registry, opts...)
	if err != nil {
		return err
	}
	if err := gen.Generate(ctx); err != nil {
		return err
	}

	if !quiet {
		fmt.Println("Generation completed successfully")
	}
	return nil
}
