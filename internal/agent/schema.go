package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/petasbytes/sqlagent/internal/sqlite"
	"github.com/petasbytes/sqlagent/internal/tuplefmt"
)

// InitialSchema renders every table with its columns, one per line:
//
//	users: [('id', 'INTEGER'), ('name', 'TEXT')]
//
// An empty database yields "".
func InitialSchema(ctx context.Context, db sqlite.Conn) (string, error) {
	tables, err := sqlite.ListTables(ctx, db)
	if err != nil {
		return "", fmt.Errorf("list tables: %w", err)
	}
	var b strings.Builder
	for _, table := range tables {
		cols, err := sqlite.DescribeTable(ctx, db, table)
		if err != nil {
			return "", fmt.Errorf("describe %s: %w", table, err)
		}
		rows := make([][]any, 0, len(cols))
		for _, c := range cols {
			rows = append(rows, []any{c.Name, c.Type})
		}
		fmt.Fprintf(&b, "%s: %s\n", table, tuplefmt.FormatRows(rows))
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}
