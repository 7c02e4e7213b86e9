package windowing_test

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/petasbytes/sqlagent/internal/windowing"
)

// Text block constructor
func Text(text string) anthropic.ContentBlockParamUnion {
	return anthropic.NewTextBlock(text)
}

// SchemaCall is a get_schema tool_use. It carries no input, so it counts as overhead only.
func SchemaCall(id string) anthropic.ContentBlockParamUnion {
	return anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{ID: id, Name: "get_schema"}}
}

// QueryCall is an execute_sql tool_use with its statement as raw JSON input.
func QueryCall(id, query string) anthropic.ContentBlockParamUnion {
	in, _ := json.Marshal(map[string]string{"query": query})
	return anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{ID: id, Name: "execute_sql", Input: json.RawMessage(in)}}
}

// Result is a tool_result without payload, for grouping tests where size is irrelevant.
func Result(id string, isErr bool) anthropic.ContentBlockParamUnion {
	tr := anthropic.ToolResultBlockParam{ToolUseID: id}
	if isErr {
		tr.IsError = param.NewOpt(true)
	}
	return anthropic.ContentBlockParamUnion{OfToolResult: &tr}
}

// Rows is a tool_result carrying query output text, e.g. "[(1, 'Alice')]".
func Rows(id, s string) anthropic.ContentBlockParamUnion {
	return anthropic.NewToolResultBlock(id, s, false)
}

// SQLError is a failed execute_sql result.
func SQLError(id, msg string) anthropic.ContentBlockParamUnion {
	return anthropic.NewToolResultBlock(id, "Error: "+msg, true)
}

// NestedRows is a tool_result whose payload is split over several text blocks.
func NestedRows(id string, nested []anthropic.ContentBlockParamUnion) anthropic.ContentBlockParamUnion {
	content := make([]anthropic.ToolResultBlockParamContentUnion, 0, len(nested))
	for _, block := range nested {
		if tb := block.OfText; tb != nil {
			content = append(content, anthropic.ToolResultBlockParamContentUnion{OfText: tb})
		}
	}
	return anthropic.ContentBlockParamUnion{
		OfToolResult: &anthropic.ToolResultBlockParam{ToolUseID: id, Content: content},
	}
}

// Asst builds an assistant message.
func Asst(blocks ...anthropic.ContentBlockParamUnion) anthropic.MessageParam {
	return anthropic.MessageParam{Role: anthropic.MessageParamRoleAssistant, Content: blocks}
}

// User builds a user message.
func User(blocks ...anthropic.ContentBlockParamUnion) anthropic.MessageParam {
	return anthropic.MessageParam{Role: anthropic.MessageParamRoleUser, Content: blocks}
}

// Intervening returns an assistant message that breaks adjacency between a
// tool_use message and its expected tool_result reply.
func Intervening(text string) anthropic.MessageParam {
	return Asst(Text(text))
}

func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].Kind != want[i].Kind || got[i].Start != want[i].Start || got[i].End != want[i].End {
			return false
		}
	}
	return true
}
