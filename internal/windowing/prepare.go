package windowing

import (
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
)

// Stats summarizes the result of window preparation.
//
// Fields:
// - Total: estimated tokens for everything sent, pinned message included.
// - Budget: the input token budget used.
// - Pinned: estimated tokens of the pinned first message (0 when nothing is pinned).
// - IncludedGroups: groups sent after the pinned message.
// - SkippedGroups: groups dropped from the middle of the conversation.
// - OverBudgetNewest: the pinned message plus the newest group alone exceed Budget.
type Stats struct {
	Total            int
	Budget           int
	Pinned           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareSendWindow returns the messages to send within budget, oldest first.
//
// A leading user message is pinned: it carries the question and the initial
// schema, so it is always sent. After it come the newest whole groups that
// still fit; older groups are dropped. A tool_use is never sent without its
// tool_result. If the pinned message and the newest group do not fit
// together, or budget <= 0, the window is empty and OverBudgetNewest is set.
func PrepareSendWindow(msgs []anthropic.MessageParam, budget int, c TokenCounter) ([]anthropic.MessageParam, Stats) {
	if len(msgs) == 0 {
		return nil, Stats{Budget: budget}
	}

	groups := GroupBlocks(msgs)
	stats := Stats{Budget: budget}

	var pinned []anthropic.MessageParam
	rest := groups
	if g := groups[0]; g.Kind == GroupSingleton && msgs[0].Role == anthropic.MessageParamRoleUser {
		pinned = msgs[g.Start:g.End]
		stats.Pinned = c.CountGroup(g, msgs)
		rest = groups[1:]
	}

	if budget <= 0 || stats.Pinned > budget {
		stats.SkippedGroups = len(rest)
		stats.OverBudgetNewest = true
		return nil, stats
	}

	remaining := budget - stats.Pinned
	startIdx := len(rest) // exclusive sentinel; lowered as groups are included
	used := 0
	for gi := len(rest) - 1; gi >= 0; gi-- {
		cost := c.CountGroup(rest[gi], msgs)
		if used+cost > remaining {
			if gi == len(rest)-1 {
				slog.Debug("windowing: newest group over budget", "budget", budget, "pinned", stats.Pinned, "cost", cost)
				stats.SkippedGroups = len(rest)
				stats.OverBudgetNewest = true
				return nil, stats
			}
			break
		}
		used += cost
		startIdx = gi
	}

	stats.IncludedGroups = len(rest) - startIdx
	stats.SkippedGroups = startIdx
	stats.Total = stats.Pinned + used

	window := make([]anthropic.MessageParam, 0, len(pinned)+len(msgs))
	window = append(window, pinned...)
	if startIdx < len(rest) {
		window = append(window, msgs[rest[startIdx].Start:]...)
	}
	if stats.SkippedGroups > 0 {
		slog.Debug("windowing: dropped older groups", "skipped", stats.SkippedGroups, "total", stats.Total, "budget", budget)
	}
	return window, stats
}
