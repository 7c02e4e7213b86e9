package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is one answered question.
type Entry struct {
	Time     time.Time `json:"time"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	State    string    `json:"state"`
	Queries  []string  `json:"queries,omitempty"`
}

// LoadTranscript reads the transcript at path. A missing file is an empty
// transcript.
func LoadTranscript(path string) ([]Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decoding transcript %s: %w", path, err)
	}
	return entries, nil
}

// SaveTranscript writes entries to path, creating parent directories.
func SaveTranscript(path string, entries []Entry) error {
	b, err := json.MarshalIndent(entries, "", " ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// AppendTranscript adds e to the transcript at path.
func AppendTranscript(path string, e Entry) error {
	entries, err := LoadTranscript(path)
	if err != nil {
		return err
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	return SaveTranscript(path, append(entries, e))
}
