package codegen

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileWriter writes generated files to disk, creating parent
// directories as needed
type DefaultFileWriter struct{}

// Write writes a single file
func (w *DefaultFileWriter) Write(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
