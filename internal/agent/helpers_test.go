package agent_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/sqlagent/internal/agent"
	"github.com/petasbytes/sqlagent/internal/sqlite"
	"github.com/petasbytes/sqlagent/tools"
)

// scriptedTransport answers each Messages request with the next scripted
// body, repeating the last one when the script runs out.
type scriptedTransport struct {
	mu       sync.Mutex
	status   int
	replies  []string
	requests [][]byte
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()

	s.mu.Lock()
	i := len(s.requests)
	s.requests = append(s.requests, b)
	s.mu.Unlock()

	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	status := s.status
	if status == 0 {
		status = http.StatusOK
	}
	resp := &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(s.replies[i]))),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func (s *scriptedTransport) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *scriptedTransport) request(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.requests[i])
}

func newClient(rt http.RoundTripper) *anthropic.Client {
	c := anthropic.NewClient(
		option.WithHTTPClient(&http.Client{Transport: rt}),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
	return &c
}

func textReply(text string) string {
	return `{"role":"assistant","content":[{"type":"text","text":` + quote(text) + `}]}`
}

func toolReply(id, name, input string) string {
	return `{"role":"assistant","content":[{"type":"tool_use","id":"` + id + `","name":"` + name + `","input":` + input + `}]}`
}

func quote(s string) string {
	var b bytes.Buffer
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func newUsersDB(t *testing.T) sqlite.Conn {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"INSERT INTO users (id, name) VALUES (1, 'Alice'), (2, 'Bob')",
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func newAgent(t *testing.T, rt http.RoundTripper, cfg agent.Config, history *sqlite.History) *agent.Agent {
	t.Helper()
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(t.TempDir(), tools.DefaultOutputDir)
	}
	a, err := agent.New(cfg, newClient(rt), newUsersDB(t), history)
	require.NoError(t, err)
	return a
}
