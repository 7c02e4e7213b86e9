package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/sqlagent/internal/telemetry"
	"github.com/petasbytes/sqlagent/internal/windowing"
	"github.com/petasbytes/sqlagent/tools"
)

// DefaultMaxTokens caps each model response.
const DefaultMaxTokens = 4000

// Config tunes requests made by a Runner. Zero values take defaults.
type Config struct {
	System      string // system prompt; omitted when empty
	MaxTokens   int64  // DefaultMaxTokens when 0
	TokenBudget int    // input budget for windowing; 0 sends the whole conversation
	Logger      *slog.Logger
}

type Runner struct {
	Client  *anthropic.Client
	Tools   []tools.ToolDefinition
	Counter windowing.TokenCounter

	cfg Config
	log *slog.Logger
}

func New(client *anthropic.Client, toolDefs []tools.ToolDefinition, cfg Config) *Runner {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		Client:  client,
		Tools:   toolDefs,
		Counter: windowing.HeuristicCounter{},
		cfg:     cfg,
		log:     log.With("component", "runner"),
	}
}

func (r *Runner) anthropicTools() []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(r.Tools))
	for _, t := range r.Tools {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: t.InputSchema,
		}})
	}
	return out
}

// Think sends the conversation, windowed when a token budget is set, and
// returns the assistant's reply. Tools are always offered because earlier
// turns may contain tool_use blocks.
func (r *Runner) Think(ctx context.Context, model anthropic.Model, conv []anthropic.MessageParam) (*anthropic.Message, error) {
	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = telemetry.NewID()
		ctx = telemetry.WithTurnID(ctx, turnID)
	}

	window := conv
	if r.cfg.TokenBudget > 0 {
		var stats windowing.Stats
		window, stats = windowing.PrepareSendWindow(conv, r.cfg.TokenBudget, r.Counter)

		telemetry.EmitContext(ctx, "window_prepared", map[string]any{
			"model":              string(model),
			"budget":             stats.Budget,
			"pinned":             stats.Pinned,
			"total_estimated":    stats.Total,
			"included_groups":    stats.IncludedGroups,
			"skipped_groups":     stats.SkippedGroups,
			"over_budget_newest": stats.OverBudgetNewest,
		})
		r.log.Debug("window prepared",
			"budget", stats.Budget, "est_total", stats.Total,
			"groups_in", stats.IncludedGroups, "groups_skip", stats.SkippedGroups)

		// The question plus the newest exchange must always fit; anything else
		// means the budget is set too low for the tool output sizes.
		if stats.OverBudgetNewest {
			return nil, fmt.Errorf("windowing: newest exchange exceeds token budget %d; raise the budget", r.cfg.TokenBudget)
		}
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: r.cfg.MaxTokens,
		Messages:  window,
		Tools:     r.anthropicTools(),
	}
	if r.cfg.System != "" {
		params.System = []anthropic.TextBlockParam{{
			Text:         r.cfg.System,
			CacheControl: anthropic.NewCacheControlEphemeralParam(),
		}}
	}

	msg, err := r.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("messages.new: %w", err)
	}
	return msg, nil
}

// Act runs every tool_use in msg, in order, and returns the matching
// tool_result blocks. It returns nil when msg asks for no tools.
func (r *Runner) Act(ctx context.Context, msg *anthropic.Message) []anthropic.ContentBlockParamUnion {
	var results []anthropic.ContentBlockParamUnion
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			// Pass raw JSON input through to the tool implementation
			input := json.RawMessage(v.JSON.Input.Raw())
			results = append(results, r.execTool(ctx, v.ID, v.Name, input))
		}
	}
	return results
}

// RunOneStep is Think followed by Act on the reply, for callers that drive a
// single turn (mainly tests). The agent loop calls Think and Act separately
// so it can track the acting state between them.
func (r *Runner) RunOneStep(ctx context.Context, model anthropic.Model, conv []anthropic.MessageParam) (*anthropic.Message, []anthropic.ContentBlockParamUnion, error) {
	// Share one turn ID between the request and its tool executions.
	if _, ok := telemetry.TurnIDFromContext(ctx); !ok {
		ctx = telemetry.WithTurnID(ctx, telemetry.NewID())
	}
	msg, err := r.Think(ctx, model, conv)
	if err != nil {
		return nil, nil, err
	}
	return msg, r.Act(ctx, msg), nil
}

func (r *Runner) execTool(ctx context.Context, id, name string, input json.RawMessage) anthropic.ContentBlockParamUnion {
	var def *tools.ToolDefinition
	for i := range r.Tools {
		if r.Tools[i].Name == name {
			def = &r.Tools[i]
			break
		}
	}

	// Helper to emit a tool_exec event
	emit := func(durationMs int64, inputSize int, outputSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   name,
			"duration_ms": durationMs,
			"input_size":  inputSize,
			"output_size": outputSize,
		}
		if errStr != "" {
			fields["error"] = errStr
		} else {
			fields["error"] = nil
		}
		telemetry.EmitContext(ctx, "tool_exec", fields)
	}

	start := time.Now()
	inSize := len(input)

	// Handle "tool not found" as an error result and emit telemetry
	if def == nil {
		r.log.Warn("tool not found", "tool", name)
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool not found")
		return anthropic.NewToolResultBlock(id, "tool not found", true)
	}

	res := def.Function(ctx, input)
	if res.IsError {
		// Emit a generic error string to avoid leaking raw payloads in telemetry
		emit(time.Since(start).Milliseconds(), inSize, len(res.Content), "tool error")
		return anthropic.NewToolResultBlock(id, res.Content, true)
	}
	emit(time.Since(start).Milliseconds(), inSize, len(res.Content), "")
	return anthropic.NewToolResultBlock(id, res.Content, false)
}
