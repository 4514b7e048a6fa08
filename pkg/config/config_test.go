package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		envVars  map[string]string
		wantErr  string
		validate func(t *testing.T, dir string, cfg *Config)
	}{
		{
			name: "basic valid config",
			yaml: `
schema:
  - path: schema.graphql
documents:
  include:
    - "src/**/*.graphql"
generates:
  types.ts:
    plugins:
      - typescript-operations
`,
			validate: func(t *testing.T, dir string, cfg *Config) {
				require.Len(t, cfg.Schema, 1)
				assert.Equal(t, filepath.Join(dir, "schema.graphql"), cfg.Schema[0].Path)
				assert.Equal(t, "file", cfg.Schema[0].Type)
				assert.Equal(t, []string{filepath.Join(dir, "src/**/*.graphql")}, cfg.Documents.Include)
				assert.Contains(t, cfg.Generates, filepath.Join(dir, "types.ts"))
				assert.Empty(t, cfg.ExternalFragments.Include)
			},
		},
		{
			name: "default document includes resolve against the config directory",
			yaml: `
schema:
  - path: schema.graphql
generates:
  types.ts:
    plugins:
      - typescript-operations
`,
			validate: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, []string{
					filepath.Join(dir, "**/*.graphql"),
					filepath.Join(dir, "**/*.gql"),
				}, cfg.Documents.Include)
			},
		},
		{
			name: "environment variable expansion",
			yaml: `
schema:
  - url: ${GRAPHQL_SCHEMA_URL}
    headers:
      Authorization: "Bearer ${API_TOKEN}"
generates:
  types.ts:
    plugins:
      - typescript-operations
`,
			envVars: map[string]string{
				"GRAPHQL_SCHEMA_URL": "https://api.example.com/schema.graphql",
				"API_TOKEN":          "secret-token",
			},
			validate: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, "url", cfg.Schema[0].Type)
				assert.Equal(t, "https://api.example.com/schema.graphql", cfg.Schema[0].URL)
				assert.Equal(t, "Bearer secret-token", cfg.Schema[0].Headers["Authorization"])
			},
		},
		{
			name: "external fragments, overrides and projection",
			yaml: `
schema:
  - path: base.graphql
  - path: extensions.graphql
documents:
  include:
    - "src/**/*.graphql"
  exclude:
    - "src/generated/**"
externalFragments:
  include:
    - "../shared/**/*.graphql"
scalars:
  DateTime: string
  BigInt: number
enums:
  Episode: EpisodeEnum
projection:
  dedupeIdenticalShapes: true
  omitOperationSuffix: true
  addTypename: true
  concurrency: 4
generates:
  types.ts:
    plugins:
      - typescript-operations
    config:
      immutableTypes: true
`,
			validate: func(t *testing.T, dir string, cfg *Config) {
				assert.Len(t, cfg.Schema, 2)
				assert.Equal(t, []string{filepath.Join(dir, "src/generated/**")}, cfg.Documents.Exclude)
				assert.Equal(t, []string{filepath.Join(filepath.Dir(dir), "shared/**/*.graphql")}, cfg.ExternalFragments.Include)
				assert.Equal(t, "number", cfg.Scalars["BigInt"])
				assert.Equal(t, "EpisodeEnum", cfg.Enums["Episode"])
				assert.Equal(t, Projection{
					DedupeIdenticalShapes: true,
					OmitOperationSuffix:   true,
					AddTypename:           true,
					Concurrency:           4,
				}, cfg.Projection)

				target := cfg.Generates[filepath.Join(dir, "types.ts")]
				assert.Equal(t, filepath.Join(dir, "types.ts"), target.Path)
				assert.Equal(t, true, target.Config["immutableTypes"])
			},
		},
		{
			name: "missing schema",
			yaml: `
generates:
  types.ts:
    plugins:
      - typescript-operations
`,
			wantErr: "at least one schema source is required",
		},
		{
			name: "missing generates",
			yaml: `
schema:
  - path: schema.graphql
`,
			wantErr: "at least one generation target is required",
		},
		{
			name: "invalid schema type",
			yaml: `
schema:
  - type: introspection
    path: schema.json
generates:
  types.ts:
    plugins:
      - typescript-operations
`,
			wantErr: `invalid type "introspection"`,
		},
		{
			name: "unknown key",
			yaml: `
schema:
  - path: schema.graphql
watch: true
generates:
  types.ts:
    plugins:
      - typescript-operations
`,
			wantErr: "field watch not found",
		},
		{
			name: "negative concurrency",
			yaml: `
schema:
  - path: schema.graphql
projection:
  concurrency: -1
generates:
  types.ts:
    plugins:
      - typescript-operations
`,
			wantErr: "projection.concurrency cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "gqlshape.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := LoadFile(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, dir, cfg)
			}
		})
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	_, err := LoadFile("codegen.ts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file codegen.ts")
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := &Config{
		Schema: []SchemaSource{
			{Path: "schema.graphql"},
			{URL: "https://api.example.com/schema.graphql"},
		},
	}

	require.NoError(t, cfg.setDefaults())

	assert.Equal(t, "file", cfg.Schema[0].Type)
	assert.Equal(t, "url", cfg.Schema[1].Type)
	assert.Equal(t, []string{"**/*.graphql", "**/*.gql"}, cfg.Documents.Include)
	assert.NotNil(t, cfg.Scalars)
	assert.Empty(t, cfg.Scalars)
	assert.NotNil(t, cfg.Enums)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Schema: []SchemaSource{
				{Type: "file", Path: "schema.graphql"},
			},
			Documents: Documents{
				Include: []string{"**/*.graphql"},
			},
			Generates: map[string]OutputTarget{
				"types.ts": {
					Plugins: []string{"typescript-operations"},
				},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "empty schema",
			mutate:  func(c *Config) { c.Schema = nil },
			wantErr: "at least one schema source is required",
		},
		{
			name:    "schema without type",
			mutate:  func(c *Config) { c.Schema = []SchemaSource{{}} },
			wantErr: "type is required",
		},
		{
			name:    "file schema without path",
			mutate:  func(c *Config) { c.Schema = []SchemaSource{{Type: "file"}} },
			wantErr: "path is required for file type",
		},
		{
			name:    "url schema without url",
			mutate:  func(c *Config) { c.Schema = []SchemaSource{{Type: "url"}} },
			wantErr: "url is required for url type",
		},
		{
			name:    "empty documents",
			mutate:  func(c *Config) { c.Documents.Include = []string{} },
			wantErr: "documents.include cannot be empty",
		},
		{
			name: "external excludes without includes",
			mutate: func(c *Config) {
				c.ExternalFragments.Exclude = []string{"vendor/**"}
			},
			wantErr: "externalFragments.exclude requires externalFragments.include",
		},
		{
			name:    "empty scalar tag",
			mutate:  func(c *Config) { c.Scalars = map[string]string{"DateTime": ""} },
			wantErr: "scalars.DateTime: tag cannot be empty",
		},
		{
			name:    "no generates",
			mutate:  func(c *Config) { c.Generates = map[string]OutputTarget{} },
			wantErr: "at least one generation target is required",
		},
		{
			name: "generate without plugins",
			mutate: func(c *Config) {
				c.Generates = map[string]OutputTarget{"types.ts": {Plugins: []string{}}}
			},
			wantErr: "at least one plugin is required",
		},
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ResolveRelativePaths(t *testing.T) {
	cfg := &Config{
		Schema: []SchemaSource{
			{Path: "schema.graphql"},
			{Path: "/absolute/path.graphql"},
			{URL: "https://api.example.com/schema.graphql"},
		},
		Documents: Documents{
			Include: []string{
				"src/**/*.graphql",
				"/absolute/include/*.graphql",
			},
			Exclude: []string{
				"src/generated/**",
				"/absolute/exclude/**",
			},
		},
		ExternalFragments: Documents{
			Include: []string{"../shared/*.graphql"},
		},
		Generates: map[string]OutputTarget{
			"types.ts": {
				Plugins: []string{"typescript-operations"},
			},
			"/absolute/types.ts": {
				Plugins: []string{"typescript-operations"},
			},
		},
	}

	cfg.ResolveRelativePaths("/project/gqlshape.yaml")

	assert.Equal(t, "/project/schema.graphql", cfg.Schema[0].Path)
	assert.Equal(t, "/absolute/path.graphql", cfg.Schema[1].Path)
	assert.Equal(t, "https://api.example.com/schema.graphql", cfg.Schema[2].URL)

	assert.Equal(t, "/project/src/**/*.graphql", cfg.Documents.Include[0])
	assert.Equal(t, "/absolute/include/*.graphql", cfg.Documents.Include[1])
	assert.Equal(t, "/project/src/generated/**", cfg.Documents.Exclude[0])
	assert.Equal(t, "/absolute/exclude/**", cfg.Documents.Exclude[1])
	assert.Equal(t, "/shared/*.graphql", cfg.ExternalFragments.Include[0])

	assert.Contains(t, cfg.Generates, "/project/types.ts")
	assert.Contains(t, cfg.Generates, "/absolute/types.ts")
	assert.Equal(t, "/project/types.ts", cfg.Generates["/project/types.ts"].Path)
}

func TestDiscoverConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "web", "src")
	require.NoError(t, os.MkdirAll(nested, 0755))

	_, err := DiscoverConfig("", nested)
	require.Error(t, err)

	path := filepath.Join(root, "gqlshape.yml")
	require.NoError(t, os.WriteFile(path, []byte("schema: []\n"), 0644))

	found, err := DiscoverConfig("", nested)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	explicit := filepath.Join(nested, "custom.yaml")
	_, err = DiscoverConfig(explicit, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	require.NoError(t, os.WriteFile(explicit, []byte("schema: []\n"), 0644))
	found, err = DiscoverConfig(explicit, "")
	require.NoError(t, err)
	assert.Equal(t, explicit, found)
}

func TestExpandEnvVars(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		envVars map[string]string
		want    string
	}{
		{
			name:  "no env vars",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "single env var with braces",
			input: "url: ${API_URL}",
			envVars: map[string]string{
				"API_URL": "https://api.example.com",
			},
			want: "url: https://api.example.com",
		},
		{
			name:  "single env var without braces",
			input: "token: $TOKEN",
			envVars: map[string]string{
				"TOKEN": "secret",
			},
			want: "token: secret",
		},
		{
			name:  "multiple env vars",
			input: "Bearer ${TOKEN} for ${GQLSHAPE_USER}",
			envVars: map[string]string{
				"TOKEN":         "abc123",
				"GQLSHAPE_USER": "john",
			},
			want: "Bearer abc123 for john",
		},
		{
			name:  "undefined env var",
			input: "value: ${GQLSHAPE_UNDEFINED_VAR}",
			want:  "value: ${GQLSHAPE_UNDEFINED_VAR}",
		},
		{
			name:  "mixed defined and undefined",
			input: "${DEFINED} and ${GQLSHAPE_UNDEFINED}",
			envVars: map[string]string{
				"DEFINED": "value",
			},
			want: "value and ${GQLSHAPE_UNDEFINED}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			assert.Equal(t, tt.want, string(expandEnvVars([]byte(tt.input))))
		})
	}
}
