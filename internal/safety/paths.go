// Package safety keeps file writes requested by the model inside a fixed
// output directory.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ToolError is a machine-readable error body for surfacing back to the agent as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool_result payloads small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// ResolveRoot returns dir as an absolute path with symlinks resolved where
// possible. An empty dir means the current working directory.
func ResolveRoot(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs(%s): %w", dir, err)
	}
	return resolveExisting(abs), nil
}

// resolveExisting resolves symlinks in the deepest existing ancestor of abs
// and re-attaches the missing tail.
func resolveExisting(abs string) string {
	existing := abs
	var tail []string
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...)
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs
		}
		tail = append([]string{filepath.Base(existing)}, tail...)
		existing = parent
	}
}

// ValidateWritePath resolves relPath under absRoot for writing. It rejects
// empty and absolute inputs, parent traversal, symlink escapes through an
// existing ancestor, and hidden directories. A hidden file name such as
// ".report.csv" is allowed.
func ValidateWritePath(absRoot, relPath string) (string, error) {
	if strings.TrimSpace(relPath) == "" {
		return "", ToolError{Code: "ERR_EMPTY_PATH", Message: "file name is required"}
	}
	if filepath.IsAbs(relPath) {
		return "", ToolError{Code: "ERR_PATH_OUTSIDE_ROOT", Message: "absolute paths are not allowed"}
	}

	cleaned := filepath.Clean(relPath)
	if cleaned == "." {
		return "", ToolError{Code: "ERR_EMPTY_PATH", Message: "file name is required"}
	}
	// A symlinked ancestor must not redirect the write. The leaf itself
	// usually does not exist yet.
	absRoot = resolveExisting(absRoot)
	candidate := resolveExisting(filepath.Join(absRoot, cleaned))

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", ToolError{Code: "ERR_PATH_OUTSIDE_ROOT", Message: "requested path resolves outside the output directory"}
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, dir := range parts[:len(parts)-1] {
		if strings.HasPrefix(dir, ".") {
			return "", ToolError{Code: "ERR_DENIED_WRITE", Message: "hidden directories are not allowed"}
		}
	}

	if fi, err := os.Stat(candidate); err == nil && fi.IsDir() {
		return "", ToolError{Code: "ERR_NOT_A_FILE", Message: "path is a directory"}
	}
	return candidate, nil
}
