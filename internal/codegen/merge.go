package codegen

import (
	"path/filepath"
	"strings"

	"github.com/jzeiders/gqlshape/pkg/plugin"
)

func mergeGenerateResponse(combined map[string][]byte, basePath string, resp *plugin.GenerateResponse) {
	if resp == nil {
		return
	}

	for _, file := range resp.Files {
		resolvedPath := normalizeOutputPath(basePath, file.Path)
		if resolvedPath == "" {
			continue
		}
		combined[resolvedPath] = mergeContent(combined[resolvedPath], file.Content, file.Placement)
	}
}

// normalizeOutputPath resolves a plugin file path: empty means the target
// path, relative paths are taken from the target's directory
func normalizeOutputPath(basePath, rawPath string) string {
	finalPath := rawPath
	if finalPath == "" {
		finalPath = basePath
	}
	if finalPath == "" {
		return ""
	}
	if filepath.IsAbs(finalPath) {
		return finalPath
	}
	if basePath == "" || finalPath == basePath {
		return finalPath
	}
	return filepath.Join(filepath.Dir(basePath), finalPath)
}

func mergeContent(existing []byte, addition []byte, placement string) []byte {
	if addition == nil {
		if placement == plugin.PlacementContent {
			return nil
		}
		return existing
	}

	switch strings.ToLower(placement) {
	case plugin.PlacementPrepend:
		if len(addition) == 0 {
			return existing
		}
		merged := make([]byte, 0, len(addition)+len(existing))
		merged = append(merged, addition...)
		merged = append(merged, existing...)
		return merged
	case plugin.PlacementContent:
		if len(addition) == 0 {
			return nil
		}
		return append([]byte{}, addition...)
	default:
		if len(addition) == 0 {
			return existing
		}
		merged := make([]byte, 0, len(existing)+len(addition))
		merged = append(merged, existing...)
		return append(merged, addition...)
	}
}
