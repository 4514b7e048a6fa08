package config

import (
	"fmt"
	"os"
	"path/filepath"
)

var DefaultConfigFileNames = []string{
	"gqlshape.yaml",
	"gqlshape.yml",
	"gqlshape.config.yaml",
	"gqlshape.config.yml",
}

// DiscoverConfig returns explicit when it names an existing file, otherwise
// searches dir and its parents for a default config file name.
func DiscoverConfig(explicit, dir string) (string, error) {
	if explicit != "" {
		if !fileExists(explicit) {
			return "", fmt.Errorf("config file %s not found", explicit)
		}
		return explicit, nil
	}

	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}

	for {
		for _, name := range DefaultConfigFileNames {
			path := filepath.Join(dir, name)
			if fileExists(path) {
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no configuration file found (looked for %v)", DefaultConfigFileNames)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
