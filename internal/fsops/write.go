// Package fsops performs the file operations behind the export tool, confined
// to a single output directory.
package fsops

import (
	"os"
	"path/filepath"

	"github.com/petasbytes/sqlagent/internal/safety"
)

// WriteFile writes data to relPath under root and returns the absolute path written.
// It validates the path via safety and creates parent directories (including root) as needed.
func WriteFile(root, relPath string, data []byte) (string, error) {
	absRoot, err := safety.ResolveRoot(root)
	if err != nil {
		return "", err
	}

	absPath, err := safety.ValidateWritePath(absRoot, relPath)
	if err != nil {
		return "", err // propagate ToolError unchanged
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return "", err
	}
	return absPath, nil
}
