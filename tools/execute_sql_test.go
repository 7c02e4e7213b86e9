package tools_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/petasbytes/sqlagent/internal/sqlite"
	"github.com/petasbytes/sqlagent/internal/tuplefmt"
	"github.com/petasbytes/sqlagent/tools"
)

func TestExecuteSQL_SelectRoundTrip(t *testing.T) {
	db := newUsersDB(t)
	ctx := context.Background()

	res := tools.ExecuteSQL(ctx, db, "SELECT id, name FROM users ORDER BY id", nil)
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.Content)
	}
	if res.Content != "[(1, 'Alice'), (2, 'Bob')]" {
		t.Fatalf("got %q", res.Content)
	}

	// The text parses back into the rows a direct query returns
	direct, err := sqlite.Execute(ctx, db, "SELECT id, name FROM users ORDER BY id")
	if err != nil {
		t.Fatalf("direct: %v", err)
	}
	parsed, err := tuplefmt.Parse(res.Content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := direct.Values()
	if len(parsed) != len(want) {
		t.Fatalf("rows: got %d want %d", len(parsed), len(want))
	}
	for i, row := range want {
		got := parsed[i].([]any)
		for j := range row {
			if got[j] != row[j] {
				t.Fatalf("row %d col %d: got %#v want %#v", i, j, got[j], row[j])
			}
		}
	}
}

func TestExecuteSQL_DMLIsDurable(t *testing.T) {
	db := newUsersDB(t)
	ctx := context.Background()

	res := tools.ExecuteSQL(ctx, db, "INSERT INTO users (id, name) VALUES (3, 'Carol')", nil)
	if res.IsError || res.Content != tools.NoDataMessage {
		t.Fatalf("insert: %+v", res)
	}
	res = tools.ExecuteSQL(ctx, db, "SELECT name FROM users WHERE id = 3", nil)
	if res.Content != "[('Carol',)]" {
		t.Fatalf("got %q", res.Content)
	}

	res = tools.ExecuteSQL(ctx, db, "DELETE FROM users WHERE id = 1", nil)
	if res.Content != tools.NoDataMessage {
		t.Fatalf("delete: %+v", res)
	}
	res = tools.ExecuteSQL(ctx, db, "SELECT COUNT(*) FROM users", nil)
	if res.Content != "[(2,)]" {
		t.Fatalf("got %q", res.Content)
	}
}

func TestExecuteSQL_EmptySelect(t *testing.T) {
	db := newUsersDB(t)
	res := tools.ExecuteSQL(context.Background(), db, "SELECT * FROM users WHERE id < 0", nil)
	if res.IsError || res.Content != "[]" {
		t.Fatalf("got %+v", res)
	}
}

func TestExecuteSQL_MalformedReturnsError(t *testing.T) {
	db := newUsersDB(t)
	for _, q := range []string{"SELEC * FROM users", "SELECT * FROM missing", "INSERT INTO users (id) VALUES (1)"} {
		res := tools.ExecuteSQL(context.Background(), db, q, nil)
		if !res.IsError || !strings.HasPrefix(res.Content, "Error: ") {
			t.Fatalf("query %q: got %+v", q, res)
		}
	}
}

func TestExecuteSQL_HistoryCountsEveryCall(t *testing.T) {
	db := newUsersDB(t)
	h := sqlite.NewHistory()
	queries := []string{
		"SELECT 1",
		"SELEC broken",
		"UPDATE users SET name = 'Al' WHERE id = 1",
		"SELECT * FROM nope",
	}
	for _, q := range queries {
		tools.ExecuteSQL(context.Background(), db, q, h)
	}
	got := h.Queries()
	if len(got) != len(queries) {
		t.Fatalf("history len: got %d want %d", len(got), len(queries))
	}
	for i := range queries {
		if got[i] != queries[i] {
			t.Fatalf("history[%d] = %q want %q", i, got[i], queries[i])
		}
	}
}

func TestExecuteSQL_OneStatementPerCall(t *testing.T) {
	db := newUsersDB(t)
	ctx := context.Background()

	for _, q := range []string{
		"SELECT 1; DELETE FROM users",
		"INSERT INTO users (id, name) VALUES (10, 'x'); INSERT INTO users (id, name) VALUES (11, 'y')",
		"DELETE FROM users WHERE id = 1;\n-- trailing\nDROP TABLE users;",
		"SELECT ';' AS s; UPDATE users SET name = 'z'",
	} {
		res := tools.ExecuteSQL(ctx, db, q, nil)
		if !res.IsError || res.Content != "Error: You can only execute one statement at a time." {
			t.Fatalf("query %q: got %+v", q, res)
		}
	}

	// Nothing from the rejected texts ran
	res := tools.ExecuteSQL(ctx, db, "SELECT id, name FROM users ORDER BY id", nil)
	if res.Content != "[(1, 'Alice'), (2, 'Bob')]" {
		t.Fatalf("table changed: %q", res.Content)
	}
}

func TestExecuteSQL_SingleStatementVariants(t *testing.T) {
	db := newUsersDB(t)
	ctx := context.Background()

	cases := map[string]string{
		"SELECT name FROM users WHERE id = 1;":                "[('Alice',)]",
		"SELECT name FROM users WHERE id = 1; -- first user":  "[('Alice',)]",
		"SELECT name FROM users WHERE id = 1; /* done */ ;":   "[('Alice',)]",
		`SELECT name AS "x;y" FROM users WHERE id = 2`:        "[('Bob',)]",
		"/* lead; */ SELECT [id;x] FROM (SELECT 1 AS [id;x])": "[(1,)]",
		"SELECT 'it''s; fine'":                                `[("it's; fine",)]`,
	}
	for q, want := range cases {
		res := tools.ExecuteSQL(ctx, db, q, nil)
		if res.IsError || res.Content != want {
			t.Fatalf("query %q: got %+v want %q", q, res, want)
		}
	}

	trigger := `CREATE TRIGGER users_audit AFTER INSERT ON users BEGIN
		UPDATE users SET name = upper(name) WHERE id = NEW.id;
	END;`
	if res := tools.ExecuteSQL(ctx, db, trigger, nil); res.IsError {
		t.Fatalf("trigger: %+v", res)
	}
	tools.ExecuteSQL(ctx, db, "INSERT INTO users (id, name) VALUES (3, 'carol')", nil)
	if res := tools.ExecuteSQL(ctx, db, "SELECT name FROM users WHERE id = 3", nil); res.Content != "[('CAROL',)]" {
		t.Fatalf("trigger did not fire: %q", res.Content)
	}
}

func TestExecuteSQL_StoredValuesRoundTrip(t *testing.T) {
	db := newUsersDB(t)
	ctx := context.Background()

	for _, q := range []string{
		"CREATE TABLE events (id INTEGER, day DATE, at DATETIME, stamp TIMESTAMP, price REAL, payload BLOB)",
		`INSERT INTO events VALUES
			(1, '2024-01-02', '2024-03-05T23:30:00-05:00', '2024-01-02 00:00:00', 19.99, x'00ff41'),
			(2, '2024-02-29', '2024-06-01 00:00:00', '2024-06-01 08:15:30.25', -0.5, x'7a')`,
	} {
		if res := tools.ExecuteSQL(ctx, db, q, nil); res.IsError {
			t.Fatalf("setup %q: %+v", q, res)
		}
	}

	res := tools.ExecuteSQL(ctx, db, "SELECT day, at, stamp, price, payload FROM events ORDER BY id", nil)
	want := `[('2024-01-02', '2024-03-05T23:30:00-05:00', '2024-01-02 00:00:00', 19.99, b'\x00\xffA'), ` +
		`('2024-02-29', '2024-06-01 00:00:00', '2024-06-01 08:15:30.25', -0.5, b'z')]`
	if res.IsError || res.Content != want {
		t.Fatalf("got %q\nwant %q", res.Content, want)
	}

	// SQLite's date functions see the same text the tool shows
	res = tools.ExecuteSQL(ctx, db, "SELECT date(at) FROM events WHERE id = 1", nil)
	if res.Content != "[('2024-03-06',)]" {
		t.Fatalf("date(at): %q", res.Content)
	}

	direct, err := sqlite.Execute(ctx, db, "SELECT day, at, stamp, price, payload FROM events ORDER BY id")
	if err != nil {
		t.Fatalf("direct: %v", err)
	}
	parsed, err := tuplefmt.Parse(want)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for i, row := range direct.Values() {
		if got := parsed[i].([]any); !reflect.DeepEqual(got, row) {
			t.Fatalf("row %d: parsed %#v direct %#v", i, got, row)
		}
	}
}

func TestExecuteSQLTool_InvalidInput(t *testing.T) {
	def := findTool(t, tools.Env{DB: newUsersDB(t)}, "execute_sql")
	res := def.Function(context.Background(), json.RawMessage(`{"query": 5}`))
	if !res.IsError || !strings.HasPrefix(res.Content, "Error: invalid input") {
		t.Fatalf("got %+v", res)
	}
}

func TestExecuteSQLTool_UsesEnvHistory(t *testing.T) {
	h := sqlite.NewHistory()
	def := findTool(t, tools.Env{DB: newUsersDB(t), History: h}, "execute_sql")
	res := def.Function(context.Background(), json.RawMessage(`{"query": "SELECT name FROM users WHERE id = 2"}`))
	if res.IsError || res.Content != "[('Bob',)]" {
		t.Fatalf("got %+v", res)
	}
	if h.Len() != 1 {
		t.Fatalf("history len %d", h.Len())
	}
}

func findTool(t *testing.T, env tools.Env, name string) tools.ToolDefinition {
	t.Helper()
	for _, d := range tools.Registry(env) {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("tool %q not registered", name)
	return tools.ToolDefinition{}
}

func TestExecuteSQLTool_EmitsShapeNotText(t *testing.T) {
	base := t.TempDir()
	t.Setenv("SQLAGENT_ARTIFACTS_DIR", base)
	t.Setenv("SQLAGENT_OBSERVE_JSON", "1")

	def := findTool(t, tools.Env{DB: newUsersDB(t)}, "execute_sql")
	def.Function(context.Background(), json.RawMessage(`{"query": "DELETE FROM users WHERE name = 'Zed'"}`))

	b, err := os.ReadFile(filepath.Join(base, "events.jsonl"))
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	var event map[string]any
	if err := json.Unmarshal(b, &event); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if event["event"] != "sql_exec" || event["kind"] != "delete" || event["is_error"] != false {
		t.Fatalf("unexpected event: %#v", event)
	}
	if strings.Contains(string(b), "Zed") {
		t.Fatalf("statement text leaked into telemetry: %s", b)
	}
}
