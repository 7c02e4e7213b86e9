// Package agent answers natural-language questions about a SQLite database
// by running a bounded Think/Act/Observe loop over the SQL tools.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/sqlagent/internal/provider"
	"github.com/petasbytes/sqlagent/internal/runner"
	"github.com/petasbytes/sqlagent/internal/sqlite"
	"github.com/petasbytes/sqlagent/internal/telemetry"
	"github.com/petasbytes/sqlagent/tools"
)

// DefaultMaxIterations bounds the tool rounds per question.
const DefaultMaxIterations = 7

// Config is the LLM and loop configuration for an Agent.
type Config struct {
	Model         anthropic.Model // provider.DefaultModel when empty
	MaxTokens     int64           // runner.DefaultMaxTokens when 0
	MaxIterations int             // DefaultMaxIterations when 0
	TokenBudget   int             // 0 sends the whole conversation
	OutputDir     string          // CSV export directory; tools.DefaultOutputDir when empty
	Logger        *slog.Logger
}

// Validate fills defaults and rejects impossible values.
func (cfg *Config) Validate() error {
	if cfg.Model == "" {
		cfg.Model = provider.DefaultModel
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.MaxIterations < 0 {
		return errors.New("max iterations must be greater than 0")
	}
	if cfg.MaxTokens < 0 {
		return errors.New("max tokens must not be negative")
	}
	if cfg.TokenBudget < 0 {
		return errors.New("token budget must not be negative")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return nil
}

// Agent holds one session: a connection, its query history and the tools
// bound to them. It is not safe for concurrent use.
type Agent struct {
	cfg     Config
	log     *slog.Logger
	runner  *runner.Runner
	history *sqlite.History
}

// New binds the SQL tools to db and history. db is owned by the caller and
// must stay open for the life of the Agent. A nil history records nothing.
func New(cfg Config, client *anthropic.Client, db sqlite.Conn, history *sqlite.History) (*Agent, error) {
	if client == nil {
		return nil, errors.New("LLM client is required")
	}
	if db == nil {
		return nil, errors.New("database connection is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	defs := tools.Registry(tools.Env{
		DB:        db,
		History:   history,
		OutputDir: cfg.OutputDir,
		Log:       cfg.Logger,
	})
	r := runner.New(client, defs, runner.Config{
		System:      SystemPrompt,
		MaxTokens:   cfg.MaxTokens,
		TokenBudget: cfg.TokenBudget,
		Logger:      cfg.Logger,
	})
	return &Agent{
		cfg:     cfg,
		log:     cfg.Logger.With("component", "agent"),
		runner:  r,
		history: history,
	}, nil
}

// Ask answers question, using initialSchema as the starting view of the
// database. It returns an error only when the model cannot be reached; tool
// failures are fed back to the model instead.
func (a *Agent) Ask(ctx context.Context, question, initialSchema string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, errors.New("question is empty")
	}
	if _, ok := telemetry.SessionIDFromContext(ctx); !ok {
		ctx = telemetry.WithSessionID(ctx, telemetry.NewID())
	}
	telemetry.EmitQuestionFeatures(ctx, question)

	start := time.Now()
	queriesBefore := a.history.Len()
	conv := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(questionPrompt(question, initialSchema))),
	}
	ans := &Answer{State: StateThinking}

	for {
		turnCtx := telemetry.WithTurnID(ctx, telemetry.NewID())
		a.log.Info("agent: thinking", "iteration", ans.Iterations+1, "max_iterations", a.cfg.MaxIterations)

		msg, err := a.runner.Think(turnCtx, a.cfg.Model, conv)
		if err != nil {
			return nil, fmt.Errorf("think: %w", err)
		}
		conv = append(conv, msg.ToParam())
		thought := messageText(msg)

		ans.State = StateActing
		results := a.runner.Act(turnCtx, msg)
		if len(results) == 0 {
			ans.State = StateDone
			ans.Text = thought
			break
		}

		ans.State = StateObserving
		ans.Iterations++
		step := Step{Iteration: ans.Iterations, Thought: thought, Calls: toolCalls(msg, results)}
		ans.Trajectory = append(ans.Trajectory, step)
		a.emitStep(turnCtx, step)

		if ans.Iterations >= a.cfg.MaxIterations {
			ans.State = StateIterationLimitReached
			a.log.Warn("agent: iteration limit reached, requesting final answer", "iterations", ans.Iterations)
			text, err := a.finalize(ctx, conv, results)
			if err != nil {
				return nil, err
			}
			ans.Text = text
			break
		}

		conv = append(conv, anthropic.NewUserMessage(results...))
		ans.State = StateThinking
	}

	if h := a.history.Queries(); len(h) > queriesBefore {
		ans.Queries = h[queriesBefore:]
	}
	a.log.Info("agent: done", "state", ans.State.String(), "iterations", ans.Iterations)
	telemetry.EmitContext(ctx, "agent_done", map[string]any{
		"state":        ans.State.String(),
		"iterations":   ans.Iterations,
		"queries":      len(ans.Queries),
		"answer_bytes": len(ans.Text),
		"duration_ms":  time.Since(start).Milliseconds(),
	})
	return ans, nil
}

// finalize sends the last observation together with FinalizationPrompt and
// returns the reply text. Tool calls in the reply are not executed.
func (a *Agent) finalize(ctx context.Context, conv []anthropic.MessageParam, results []anthropic.ContentBlockParamUnion) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(results)+1)
	blocks = append(blocks, results...)
	blocks = append(blocks, anthropic.NewTextBlock(FinalizationPrompt))
	conv = append(conv, anthropic.NewUserMessage(blocks...))

	turnCtx := telemetry.WithTurnID(ctx, telemetry.NewID())
	msg, err := a.runner.Think(turnCtx, a.cfg.Model, conv)
	if err != nil {
		return "", fmt.Errorf("finalize: %w", err)
	}
	text := messageText(msg)
	if text == "" {
		text = fmt.Sprintf("No final answer was produced within %d tool rounds.", a.cfg.MaxIterations)
	}
	return text, nil
}

func (a *Agent) emitStep(ctx context.Context, step Step) {
	names := make([]string, 0, len(step.Calls))
	failed := 0
	for _, c := range step.Calls {
		names = append(names, c.Name)
		if c.IsError {
			failed++
		}
		a.log.Debug("agent: tool result", "iteration", step.Iteration, "tool", c.Name, "is_error", c.IsError)
	}
	telemetry.EmitContext(ctx, "agent_step", map[string]any{
		"iteration":   step.Iteration,
		"tools":       names,
		"tool_errors": failed,
	})
}

// messageText joins the text blocks of msg.
func messageText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, blk := range msg.Content {
		if t, ok := blk.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(t.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// toolCalls pairs each tool_use in msg with its result. Act returns results
// in tool_use order, one per call.
func toolCalls(msg *anthropic.Message, results []anthropic.ContentBlockParamUnion) []ToolCall {
	var calls []ToolCall
	for _, blk := range msg.Content {
		tu, ok := blk.AsAny().(anthropic.ToolUseBlock)
		if !ok {
			continue
		}
		call := ToolCall{ID: tu.ID, Name: tu.Name, Input: json.RawMessage(tu.JSON.Input.Raw())}
		if i := len(calls); i < len(results) {
			if tr := results[i].OfToolResult; tr != nil {
				call.IsError = tr.IsError.Value
				for _, c := range tr.Content {
					if c.OfText != nil {
						call.Output += c.OfText.Text
					}
				}
			}
		}
		calls = append(calls, call)
	}
	return calls
}
