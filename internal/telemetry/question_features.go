package telemetry

import (
	"context"

	"github.com/petasbytes/sqlagent/internal/metrics"
)

// EmitQuestionFeatures records the shape of the user's question without its text.
func EmitQuestionFeatures(ctx context.Context, question string) {
	if !ObserveEnabled() {
		return
	}
	f := metrics.DescribeQuestion(question)
	EmitContext(ctx, "question_features", map[string]any{
		"features_version": "2",
		"question": map[string]any{
			"bytes":      f.Bytes,
			"runes":      f.Runes,
			"words":      f.Words,
			"lines":      f.Lines,
			"numbers":    f.Numbers,
			"quoted":     f.Quoted,
			"aggregates": f.Aggregates,
			"intent":     f.Intent,
		},
	})
}
