package tools

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
)

// ToolDefinition describes one tool offered to the model.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema anthropic.ToolInputSchemaParam
	Function    func(ctx context.Context, input json.RawMessage) Result
}

// Result is what a tool hands back to the reasoning loop. Content is the text
// the model reads; IsError tags it as a failure observation.
type Result struct {
	Content string
	IsError bool
}

func ok(content string) Result   { return Result{Content: content} }
func fail(content string) Result { return Result{Content: content, IsError: true} }

// GenerateSchema derives a tool input schema from T's struct tags.
func GenerateSchema[T any]() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
		Required:   schema.Required,
	}
}
