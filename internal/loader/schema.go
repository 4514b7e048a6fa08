// Package loader reads schemas and documents named by the configuration
// and turns them into the engine's inputs.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"

	"github.com/jzeiders/gqlshape/pkg/config"
	"github.com/jzeiders/gqlshape/pkg/schema"
)

var schemaExtensions = map[string]bool{
	".graphql":  true,
	".gql":      true,
	".graphqls": true,
}

// SchemaLoader loads SDL from files and URLs and combines every source into
// one schema
type SchemaLoader struct {
	httpClient *http.Client
	retries    int
	backoff    time.Duration
	log        *zap.Logger
}

type SchemaLoaderOption func(*SchemaLoader)

func WithHTTPClient(client *http.Client) SchemaLoaderOption {
	return func(l *SchemaLoader) {
		l.httpClient = client
	}
}

// WithRetries sets the number of attempts made for a URL source
func WithRetries(retries int) SchemaLoaderOption {
	return func(l *SchemaLoader) {
		if retries > 0 {
			l.retries = retries
		}
	}
}

// WithBackoff sets the delay before the second attempt. It doubles for
// every further attempt.
func WithBackoff(backoff time.Duration) SchemaLoaderOption {
	return func(l *SchemaLoader) {
		l.backoff = backoff
	}
}

func WithSchemaLogger(log *zap.Logger) SchemaLoaderOption {
	return func(l *SchemaLoader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewSchemaLoader creates a schema loader
func NewSchemaLoader(opts ...SchemaLoaderOption) *SchemaLoader {
	l := &SchemaLoader{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retries: 3,
		backoff: time.Second,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every source and builds a single schema from them
func (l *SchemaLoader) Load(ctx context.Context, sources []config.SchemaSource) (*schema.Schema, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no schema sources")
	}

	var astSources []*ast.Source
	for _, source := range sources {
		switch source.Type {
		case "file":
			loaded, err := l.loadFiles(source.Path)
			if err != nil {
				return nil, fmt.Errorf("loading file schema %s: %w", source.Path, err)
			}
			astSources = append(astSources, loaded...)

		case "url":
			content, err := l.loadFromURL(ctx, source.URL, source.Headers)
			if err != nil {
				return nil, fmt.Errorf("loading URL schema %s: %w", source.URL, err)
			}
			astSources = append(astSources, &ast.Source{Name: source.URL, Input: content})

		default:
			return nil, fmt.Errorf("unsupported schema source type: %s", source.Type)
		}
	}

	s, err := schema.Load(astSources...)
	if err != nil {
		return nil, err
	}

	l.log.Debug("schema loaded",
		zap.Int("sources", len(astSources)),
		zap.Int("types", len(s.TypeNames())),
		zap.String("hash", s.Hash()),
	)
	return s, nil
}

// LoadString builds a schema from SDL held in memory
func (l *SchemaLoader) LoadString(sdl, sourceName string) (*schema.Schema, error) {
	return schema.Load(&ast.Source{Name: sourceName, Input: sdl})
}

// loadFiles reads a schema path, which may be a glob pattern
func (l *SchemaLoader) loadFiles(path string) ([]*ast.Source, error) {
	paths := []string{path}
	if hasMeta(path) {
		matches, err := doublestar.FilepathGlob(path, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", path, err)
		}
		paths = paths[:0]
		for _, match := range matches {
			if schemaExtensions[filepath.Ext(match)] {
				paths = append(paths, match)
			}
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no schema files match %s", path)
		}
	}

	sources := make([]*ast.Source, 0, len(paths))
	for _, p := range paths {
		if ext := filepath.Ext(p); !schemaExtensions[ext] {
			return nil, fmt.Errorf("unsupported file extension: %s", ext)
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading file: %w", err)
		}
		sources = append(sources, &ast.Source{Name: p, Input: string(content)})
	}
	return sources, nil
}

// loadFromURL fetches SDL with retries and exponential backoff
func (l *SchemaLoader) loadFromURL(ctx context.Context, urlStr string, headers map[string]string) (string, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https scheme")
	}

	var lastErr error
	delay := l.backoff
	for attempt := 0; attempt < l.retries; attempt++ {
		if attempt > 0 {
			l.log.Debug("retrying schema fetch",
				zap.String("url", urlStr),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		content, err := l.fetch(ctx, urlStr, headers)
		if err == nil {
			return content, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}

	return "", fmt.Errorf("failed after %d attempts: %w", l.retries, lastErr)
}

func (l *SchemaLoader) fetch(ctx context.Context, urlStr string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
