package agent

import "encoding/json"

// State is a position in the reasoning loop.
//
//	Thinking -> Acting -> Observing -> Thinking ... -> Done
//	                                 \-> IterationLimitReached
type State int

const (
	StateThinking State = iota
	StateActing
	StateObserving
	StateDone
	StateIterationLimitReached
)

func (s State) String() string {
	switch s {
	case StateThinking:
		return "thinking"
	case StateActing:
		return "acting"
	case StateObserving:
		return "observing"
	case StateDone:
		return "done"
	case StateIterationLimitReached:
		return "iteration_limit_reached"
	default:
		return "unknown"
	}
}

// Terminal reports whether the loop stops in s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateIterationLimitReached
}

// ToolCall is one tool invocation and what it returned.
type ToolCall struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Input   json.RawMessage `json:"input"`
	Output  string          `json:"output"`
	IsError bool            `json:"is_error"`
}

// Step records one tool round: the model's reasoning text and the calls it made.
type Step struct {
	Iteration int        `json:"iteration"`
	Thought   string     `json:"thought,omitempty"`
	Calls     []ToolCall `json:"calls"`
}

// Answer is the outcome of Ask.
type Answer struct {
	Text       string
	State      State
	Iterations int      // tool rounds used
	Trajectory []Step   // one entry per tool round
	Queries    []string // statements sent to execute_sql during this question
}
