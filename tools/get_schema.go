package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/sqlagent/internal/sqlite"
	"github.com/petasbytes/sqlagent/internal/tuplefmt"
)

type GetSchemaInput struct {
	TableName *string `json:"table_name,omitempty" jsonschema_description:"Table to describe. Omit or null to list every table name."`
}

const getSchemaDescription = `Return the database schema for one table or for all tables.
Input: table_name (string or null). When null, returns the list of all table names, e.g. ['users', 'orders'].
When a table name is given, returns its column names and types in column order, e.g. [('id', 'INTEGER'), ('name', 'TEXT')].
An unknown table yields [].`

// GetSchema lists table names when tableName is nil or empty, otherwise the
// (name, type) pairs of that table's columns.
//
// The table name is interpolated into the PRAGMA text unchanged. It must not
// come from untrusted end users.
func GetSchema(ctx context.Context, conn sqlite.Conn, tableName *string) Result {
	if tableName == nil || *tableName == "" {
		names, err := sqlite.ListTables(ctx, conn)
		if err != nil {
			return fail("Error: " + err.Error())
		}
		return ok(tuplefmt.FormatStrings(names))
	}

	cols, err := sqlite.DescribeTable(ctx, conn, *tableName)
	if err != nil {
		return fail("Error: " + err.Error())
	}
	rows := make([][]any, len(cols))
	for i, c := range cols {
		rows[i] = []any{c.Name, c.Type}
	}
	return ok(tuplefmt.FormatRows(rows))
}

func getSchemaTool(env Env) ToolDefinition {
	return ToolDefinition{
		Name:        "get_schema",
		Description: getSchemaDescription,
		InputSchema: GenerateSchema[GetSchemaInput](),
		Function: func(ctx context.Context, input json.RawMessage) Result {
			var in GetSchemaInput
			if err := decodeInput(input, &in); err != nil {
				return fail(fmt.Sprintf("Error: invalid input: %v", err))
			}
			target := "all tables"
			if in.TableName != nil && *in.TableName != "" {
				target = *in.TableName
			}
			env.logger().Info("getting schema", "table", target)
			res := GetSchema(ctx, env.DB, in.TableName)
			if res.IsError {
				env.logger().Warn("schema lookup failed", "table", target, "error", res.Content)
			}
			return res
		},
	}
}
