package tools

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/petasbytes/sqlagent/internal/sqlite"
)

// DefaultOutputDir is where CSV exports land, relative to the working directory.
const DefaultOutputDir = "files"

// Env carries the session state the tools close over.
type Env struct {
	DB        sqlite.Conn
	History   *sqlite.History // optional
	OutputDir string          // defaults to DefaultOutputDir
	Log       *slog.Logger    // optional
}

func (e Env) logger() *slog.Logger {
	if e.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Log.With("component", "tools")
}

func (e Env) outputDir() string {
	if e.OutputDir == "" {
		return DefaultOutputDir
	}
	return e.OutputDir
}

// Registry returns all tool definitions wired for the agent
func Registry(env Env) []ToolDefinition {
	return []ToolDefinition{executeSQLTool(env), getSchemaTool(env), saveDataToCSVTool(env)}
}

func decodeInput(input json.RawMessage, v any) error {
	if len(bytes.TrimSpace(input)) == 0 {
		return nil
	}
	return json.Unmarshal(input, v)
}
