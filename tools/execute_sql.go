package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/petasbytes/sqlagent/internal/metrics"
	"github.com/petasbytes/sqlagent/internal/sqlite"
	"github.com/petasbytes/sqlagent/internal/telemetry"
	"github.com/petasbytes/sqlagent/internal/tuplefmt"
)

type ExecuteSQLInput struct {
	Query string `json:"query" jsonschema_description:"One valid SQLite statement, e.g. SELECT, INSERT, UPDATE or DELETE."`
}

// NoDataMessage is returned for statements that produce no result set.
const NoDataMessage = "Query executed successfully (no data returned)."

const executeSQLDescription = `Execute one SQL statement against the SQLite database.
Input: query (string, a valid SQL statement such as SELECT, INSERT, UPDATE, DELETE).
Output: for queries returning rows, the rows as a list of tuples, e.g. [(1, 'Alice'), (2, 'Bob')];
otherwise a success message. Failures start with "Error: " followed by the database message.`

// ExecuteSQL records query in history, then runs it. Statements without a
// result set are applied immediately (autocommit). Database errors come back
// as "Error: <text>" results.
func ExecuteSQL(ctx context.Context, conn sqlite.Conn, query string, history *sqlite.History) Result {
	history.Append(query)

	rows, err := sqlite.Execute(ctx, conn, query)
	if err != nil {
		return fail("Error: " + err.Error())
	}
	if !rows.HasResultSet() {
		return ok(NoDataMessage)
	}
	return ok(tuplefmt.FormatRows(rows.Values()))
}

func executeSQLTool(env Env) ToolDefinition {
	return ToolDefinition{
		Name:        "execute_sql",
		Description: executeSQLDescription,
		InputSchema: GenerateSchema[ExecuteSQLInput](),
		Function: func(ctx context.Context, input json.RawMessage) Result {
			var in ExecuteSQLInput
			if err := decodeInput(input, &in); err != nil {
				return fail(fmt.Sprintf("Error: invalid input: %v", err))
			}
			kind := metrics.StatementKind(in.Query)
			env.logger().Info("executing sql", "kind", kind, "query", in.Query)
			start := time.Now()
			res := ExecuteSQL(ctx, env.DB, in.Query, env.History)
			if res.IsError {
				env.logger().Warn("sql failed", "query", in.Query, "error", res.Content)
			}
			// Statement text stays out of telemetry; only its shape is recorded.
			telemetry.EmitContext(ctx, "sql_exec", map[string]any{
				"kind":        kind,
				"duration_ms": time.Since(start).Milliseconds(),
				"query_bytes": len(in.Query),
				"result_size": len(res.Content),
				"is_error":    res.IsError,
			})
			return res
		},
	}
}
