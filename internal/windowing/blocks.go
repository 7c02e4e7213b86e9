// Package windowing trims a conversation to an input-token budget without
// separating a tool_use from its tool_result.
package windowing

import (
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
)

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupPair
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
// Kind indicates whether it is a singleton or a validated pair.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into msgs
	End   int // exclusive index into msgs
}

// GroupBlocks splits msgs into units that must be kept or dropped together.
// A pair is an assistant message with tool_use blocks immediately followed by
// a user message whose leading tool_result blocks answer exactly those ids
// (text may follow the results). Error results pair like any other. Anything
// else is a singleton.
func GroupBlocks(msgs []anthropic.MessageParam) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		if reason := pairRejection(msgs, i); reason == "" {
			groups = append(groups, Group{Kind: GroupPair, Start: i, End: i + 2})
			i += 2
			continue
		} else if reason != "no_tool_use" {
			slog.Debug("windowing: exclude pair", "reason", reason, "idx", i)
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

// pairRejection returns "" when msgs[i:i+2] forms a valid pair, otherwise a reason code.
func pairRejection(msgs []anthropic.MessageParam, i int) string {
	m := msgs[i]
	if m.Role != anthropic.MessageParamRoleAssistant {
		return "no_tool_use"
	}
	useIDs := toolUseIDs(m)
	if len(useIDs) == 0 {
		return "no_tool_use"
	}
	if i+1 >= len(msgs) || msgs[i+1].Role != anthropic.MessageParamRoleUser {
		return "not_followed_by_user"
	}
	resultIDs, ordered := leadingToolResultIDs(msgs[i+1])
	switch {
	case !ordered:
		return "ordering_invalid"
	case !subset(useIDs, resultIDs):
		return "missing_results"
	case !subset(resultIDs, useIDs):
		return "extra_results"
	}
	return ""
}

// toolUseIDs returns the set of tool_use ids present in an assistant message.
func toolUseIDs(m anthropic.MessageParam) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, blk := range m.Content {
		if tu := blk.OfToolUse; tu != nil && tu.ID != "" {
			ids[tu.ID] = struct{}{}
		}
	}
	return ids
}

// leadingToolResultIDs collects tool_result ids from the start of a user
// message. ordered is false when a tool_result follows any other block.
func leadingToolResultIDs(m anthropic.MessageParam) (ids map[string]struct{}, ordered bool) {
	ids = make(map[string]struct{})
	pastResults := false
	for _, blk := range m.Content {
		tr := blk.OfToolResult
		if tr == nil {
			pastResults = true
			continue
		}
		if pastResults {
			return ids, false
		}
		if tr.ToolUseID != "" {
			ids[tr.ToolUseID] = struct{}{}
		}
	}
	return ids, true
}

// subset reports whether every id in a is also in b.
func subset(a, b map[string]struct{}) bool {
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
