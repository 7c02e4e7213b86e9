// Package csvexport turns tool-supplied row data into CSV files under the
// export directory.
package csvexport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/petasbytes/sqlagent/internal/fsops"
	"github.com/petasbytes/sqlagent/internal/safety"
	"github.com/petasbytes/sqlagent/internal/tuplefmt"
)

// ErrNotRows reports data that is not a list of rows.
var ErrNotRows = errors.New("data must be a list of tuples or lists")

// Normalize converts data into rows. Accepted shapes are a slice of rows
// ([][]any or []any whose elements are sequences or scalars) and the
// tuple-list text rendered for query results. A scalar element becomes a
// single-field row.
func Normalize(data any) ([][]any, error) {
	switch v := data.(type) {
	case [][]any:
		return v, nil
	case []any:
		rows := make([][]any, 0, len(v))
		for _, el := range v {
			switch f := el.(type) {
			case []any:
				rows = append(rows, f)
			case []string:
				row := make([]any, len(f))
				for i, s := range f {
					row[i] = s
				}
				rows = append(rows, row)
			default:
				rows = append(rows, []any{el})
			}
		}
		return rows, nil
	case string:
		elems, err := tuplefmt.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotRows, err)
		}
		return Normalize(elems)
	default:
		return nil, ErrNotRows
	}
}

// Filename appends ".csv" unless name already ends with it in any case.
func Filename(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		return name
	}
	return name + ".csv"
}

// Encode renders rows as CSV with CRLF record terminators.
func Encode(rows [][]any) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	for _, row := range rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = Field(v)
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Field renders one value as CSV field text.
func Field(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return tuplefmt.FormatFloat(t)
	case []byte:
		return tuplefmt.FormatScalar(t)
	case time.Time:
		return tuplefmt.FormatTime(t)
	default:
		return tuplefmt.FormatScalar(t)
	}
}

// Save writes rows to dir/filename (".csv" appended when missing) and
// returns the absolute path. Existing files are overwritten.
func Save(dir string, rows [][]any, filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", safety.ToolError{Code: "ERR_EMPTY_PATH", Message: "file name is required"}
	}
	data, err := Encode(rows)
	if err != nil {
		return "", fmt.Errorf("encode csv: %w", err)
	}
	return fsops.WriteFile(dir, Filename(filename), data)
}
