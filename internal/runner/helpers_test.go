package runner_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/sqlagent/tools"
)

type capture struct {
	method string
	url    string
	body   []byte
}

type fakeTransport struct {
	respStatus int
	respBody   []byte
	captured   *capture
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if f.captured != nil {
		f.captured.method = req.Method
		f.captured.url = req.URL.String()
		f.captured.body = b
	}
	resp := &http.Response{
		StatusCode: f.respStatus,
		Body:       io.NopCloser(bytes.NewReader(f.respBody)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func newClientWithTransport(rt http.RoundTripper) *anthropic.Client {
	c := anthropic.NewClient(
		option.WithHTTPClient(&http.Client{Transport: rt}),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
		// Base URL is irrelevant since transport intercepts
	)
	return &c
}

// echoTool returns its raw input; failTool always reports an error result.
var (
	echoTool = tools.ToolDefinition{
		Name:        "echo",
		Description: "echo input",
		InputSchema: tools.GenerateSchema[struct {
			Text string `json:"text"`
		}](),
		Function: func(_ context.Context, input json.RawMessage) tools.Result {
			return tools.Result{Content: string(input)}
		},
	}
	failTool = tools.ToolDefinition{
		Name:        "fail",
		Description: "always errors",
		InputSchema: tools.GenerateSchema[struct{}](),
		Function: func(context.Context, json.RawMessage) tools.Result {
			return tools.Result{Content: "Error: boom", IsError: true}
		},
	}
)

type sentRequest struct {
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`
	System    []struct {
		Text string `json:"text"`
	} `json:"system"`
	Tools []struct {
		Name string `json:"name"`
	} `json:"tools"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type      string `json:"type"`
			Text      string `json:"text,omitempty"`
			ID        string `json:"id,omitempty"`
			ToolUseID string `json:"tool_use_id,omitempty"`
		} `json:"content"`
	} `json:"messages"`
}

func decodeSent(t *testing.T, c *capture) sentRequest {
	t.Helper()
	if c.body == nil {
		t.Fatal("no request captured")
	}
	var rb sentRequest
	if err := json.Unmarshal(c.body, &rb); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, string(c.body))
	}
	return rb
}

// chdirTemp moves the test into a fresh directory so telemetry lands there.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SQLAGENT_ARTIFACTS_DIR", "")
	return dir
}

// readEventLines returns the non-empty lines of the telemetry file in the cwd.
func readEventLines(t *testing.T) []string {
	t.Helper()
	f, err := os.Open(filepath.Join(".sqlagent", "events.jsonl"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("open events: %v", err)
	}
	defer f.Close()
	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		if txt := strings.TrimSpace(s.Text()); txt != "" {
			lines = append(lines, txt)
		}
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan events: %v", err)
	}
	return lines
}

// lastEvent returns the newest event with the given name, or nil.
func lastEvent(t *testing.T, name string) map[string]any {
	t.Helper()
	lines := readEventLines(t)
	for i := len(lines) - 1; i >= 0; i-- {
		var m map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &m); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if m["event"] == name {
			return m
		}
	}
	return nil
}
