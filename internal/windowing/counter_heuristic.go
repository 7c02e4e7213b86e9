package windowing

import (
	"encoding/json"
	"log/slog"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
)

// TokenCounter estimates input-token cost for messages or groups.
type TokenCounter interface {
	CountMessage(m anthropic.MessageParam) int
	CountGroup(g Group, all []anthropic.MessageParam) int
}

// HeuristicCounter is a deterministic estimator: one unit per rune of text,
// tool_result text and raw tool_use input, plus a fixed overhead per block.
type HeuristicCounter struct{}

// Fixed per-block overhead for deterministic counts; changing this requires updating the guard test.
const blockOverhead = 4

func (HeuristicCounter) CountMessage(m anthropic.MessageParam) int {
	total := 0
	for _, blk := range m.Content {
		total += countBlock(blk)
	}
	return total
}

func (h HeuristicCounter) CountGroup(g Group, all []anthropic.MessageParam) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}

func countBlock(blk anthropic.ContentBlockParamUnion) int {
	switch {
	case blk.OfText != nil:
		return utf8.RuneCountInString(blk.OfText.Text) + blockOverhead

	case blk.OfToolUse != nil:
		// SQL statements travel in tool_use input and can be long.
		switch in := blk.OfToolUse.Input.(type) {
		case json.RawMessage:
			return utf8.RuneCount(in) + blockOverhead
		case string:
			return utf8.RuneCountInString(in) + blockOverhead
		case nil:
			return blockOverhead
		default:
			b, err := json.Marshal(in)
			if err != nil {
				return blockOverhead
			}
			return utf8.RuneCount(b) + blockOverhead
		}

	case blk.OfToolResult != nil:
		subtotal := 0
		for _, nb := range blk.OfToolResult.Content {
			if nt := nb.OfText; nt != nil {
				subtotal += utf8.RuneCountInString(nt.Text)
			}
		}
		if subtotal == 0 && len(blk.OfToolResult.Content) > 0 {
			slog.Debug("windowing: tool_result without text counted as overhead only")
		}
		return subtotal + blockOverhead
	}

	// thinking, images, documents: overhead only
	return blockOverhead
}
