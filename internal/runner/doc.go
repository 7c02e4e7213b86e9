// Package runner coordinates message exchange with the Anthropic Messages API
// and dispatches tool calls.
//
// Invariant:
//   - tool_use and the corresponding tool_result are kept adjacent within a turn
//     to preserve execution context and simplify follow-up reasoning.
//   - tool calls from one assistant message run sequentially, in order.
//
// Flow:
//
//	Think: user(question) -> assistant(tool_use)
//	Act:   tool_use -> user(tool_result)
//	...repeated until the assistant answers with text only.
package runner
