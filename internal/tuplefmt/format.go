// Package tuplefmt renders query rows as the compact tuple-list text handed
// back to the model, e.g. [(1, 'Alice'), (2, 'Bob')], and parses that text
// back into values.
package tuplefmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// FormatRows renders rows as a bracketed list of tuples.
func FormatRows(rows [][]any) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(FormatTuple(row))
	}
	b.WriteByte(']')
	return b.String()
}

// FormatTuple renders one row. A one-element tuple keeps its trailing comma.
func FormatTuple(vals []any) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range vals {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(FormatScalar(v))
	}
	if len(vals) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

// FormatStrings renders a flat list of quoted strings, e.g. ['users', 'orders'].
func FormatStrings(vals []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vals {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteString(v))
	}
	b.WriteByte(']')
	return b.String()
}

// FormatScalar renders a single SQLite value.
func FormatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case bool:
		if t {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return FormatFloat(float64(t))
	case float64:
		return FormatFloat(t)
	case string:
		return quoteString(t)
	case []byte:
		return "b" + quoteBytes(t)
	case time.Time:
		return quoteString(FormatTime(t))
	default:
		return quoteString(fmt.Sprint(t))
	}
}

// FormatFloat uses the shortest round-tripping digits, switching to exponent
// form outside [1e-4, 1e16), and always shows a fractional part otherwise.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatTime renders a time the way SQLite stores DATE/DATETIME text.
// The driver converts such columns to time.Time; this restores the text.
func FormatTime(t time.Time) string {
	return ColumnTime(t, "DATE")
}

// ColumnTime renders a time as it is usually stored in a column declared
// declType. A non-UTC offset is kept in ISO 8601 form. DATE columns drop a
// midnight clock; DATETIME and TIMESTAMP columns always carry one.
func ColumnTime(t time.Time, declType string) string {
	if t.Location() != time.UTC {
		return t.Format("2006-01-02T15:04:05.999999999-07:00")
	}
	h, m, s := t.Clock()
	if declType == "DATE" && h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05.999999999")
}

// pickQuote prefers single quotes unless the text contains one and no double quote.
func pickQuote(s string) byte {
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return '"'
	}
	return '\''
}

func quoteString(s string) string {
	q := pickQuote(s)
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(q)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&b, `\x%02x`, s[i])
			i++
			continue
		}
		i += size
		switch {
		case r == rune(q) || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

func quoteBytes(p []byte) string {
	q := pickQuote(string(p))
	var b strings.Builder
	b.Grow(len(p) + 2)
	b.WriteByte(q)
	for _, c := range p {
		switch {
		case c == q || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c >= 0x20 && c < 0x7f:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, `\x%02x`, c)
		}
	}
	b.WriteByte(q)
	return b.String()
}
