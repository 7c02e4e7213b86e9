package telemetry

import (
	"os"
)

// DefaultArtifactsDir holds events.jsonl unless SQLAGENT_ARTIFACTS_DIR is set.
const DefaultArtifactsDir = ".sqlagent"

var observeEnabled bool

func init() {
	// Read once at process start. Mid-run environment changes have no effect.
	observeEnabled = os.Getenv("SQLAGENT_OBSERVE_JSON") == "1"
}

// ObserveEnabled reports whether JSONL emission was enabled at startup.
func ObserveEnabled() bool {
	// Preserve startup-evaluated default, but allow tests to enable mid-run via env override.
	if os.Getenv("SQLAGENT_OBSERVE_JSON") == "1" {
		return true
	}
	return observeEnabled
}

// ArtifactsDir returns the directory that receives events.jsonl.
func ArtifactsDir() string {
	if v := os.Getenv("SQLAGENT_ARTIFACTS_DIR"); v != "" {
		return v
	}
	return DefaultArtifactsDir
}
