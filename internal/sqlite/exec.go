package sqlite

import (
	"context"
	"time"

	"github.com/petasbytes/sqlagent/internal/tuplefmt"
)

// Row is one result row; values are nil, int64, float64, string or []byte.
// Text in DATE, DATETIME and TIMESTAMP columns stays text.
type Row []any

// Rows is the outcome of a statement. Columns is empty for statements that
// produce no result set (INSERT, UPDATE, DELETE, DDL).
type Rows struct {
	Columns []string
	Data    []Row
}

// HasResultSet reports whether the statement described any columns.
func (r *Rows) HasResultSet() bool {
	return r != nil && len(r.Columns) > 0
}

// Values returns the data as plain [][]any.
func (r *Rows) Values() [][]any {
	out := make([][]any, len(r.Data))
	for i, row := range r.Data {
		out[i] = row
	}
	return out
}

// Execute runs a single statement. Statements without a result set are
// applied immediately in SQLite's autocommit mode. Text holding more than one
// statement fails with ErrMultipleStatements before anything runs.
func Execute(ctx context.Context, conn Conn, query string) (*Rows, error) {
	if err := CheckSingleStatement(query); err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := &Rows{Columns: cols}

	declTypes := make([]string, len(cols))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			declTypes[i] = ct.DatabaseTypeName()
		}
	}

	for rows.Next() {
		if len(cols) == 0 {
			continue
		}
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		// The driver parses date/time text into time.Time; put the text back.
		for i, v := range raw {
			if t, ok := v.(time.Time); ok {
				raw[i] = tuplefmt.ColumnTime(t, declTypes[i])
			}
		}
		res.Data = append(res.Data, Row(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return res, nil
}
