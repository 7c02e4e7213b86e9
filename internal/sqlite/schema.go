package sqlite

import (
	"context"
	"fmt"
)

// Column is one entry of PRAGMA table_info.
type Column struct {
	Name string
	Type string
}

// ListTables returns every table name in the catalog, in catalog order.
// Internal tables such as sqlite_sequence are included.
func ListTables(ctx context.Context, conn Conn) ([]string, error) {
	rows, err := conn.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table';")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// DescribeTable returns the columns of table in declaration order. An
// unknown table yields an empty slice, not an error.
//
// The name is placed into the PRAGMA verbatim. Callers exposing this to
// untrusted input must validate it first.
func DescribeTable(ctx context.Context, conn Conn, table string) ([]Column, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s);", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := []Column{}
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, Column{Name: name, Type: ctype})
	}
	return cols, rows.Err()
}
