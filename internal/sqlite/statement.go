package sqlite

import (
	"errors"
	"strings"
)

// ErrMultipleStatements rejects query text that holds more than one statement.
// The text matches what the sqlite3 command line bindings report.
var ErrMultipleStatements = errors.New("You can only execute one statement at a time.")

// CheckSingleStatement returns ErrMultipleStatements when anything other than
// whitespace, comments or stray semicolons follows the first statement.
// Semicolons inside string literals, quoted identifiers, comments and
// CREATE TRIGGER bodies do not end a statement.
func CheckSingleStatement(query string) error {
	end := firstStatementEnd(query)
	if end < 0 {
		return nil
	}
	more := false
	lex(query[end:], func(tok string, _ int) bool {
		if tok != ";" {
			more = true
			return false
		}
		return true
	})
	if more {
		return ErrMultipleStatements
	}
	return nil
}

// firstStatementEnd returns the offset just past the semicolon that ends the
// first statement, or -1 when the text has no terminating semicolon.
func firstStatementEnd(s string) int {
	end := -1
	n := 0
	var first, prev string
	trigger := false
	lex(s, func(tok string, at int) bool {
		if tok == ";" {
			// A trigger body ends at "END;".
			if !trigger || strings.EqualFold(prev, "END") {
				end = at
				return false
			}
		}
		switch {
		case n == 0:
			first = tok
		case n <= 2 && strings.EqualFold(tok, "TRIGGER"):
			// CREATE [TEMP|TEMPORARY] TRIGGER
			trigger = strings.EqualFold(first, "CREATE")
		}
		n++
		prev = tok
		return true
	})
	return end
}

// lex calls fn with each token of s and the offset just past it. Whitespace
// and comments are skipped; quoted strings and identifiers arrive whole.
// Returning false from fn stops the scan.
func lex(s string, fn func(tok string, end int) bool) {
	i := 0
	for i < len(s) {
		c := s[i]
		start := i
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			i++
			continue
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			j := strings.IndexByte(s[i:], '\n')
			if j < 0 {
				return
			}
			i += j + 1
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			j := strings.Index(s[i+2:], "*/")
			if j < 0 {
				return
			}
			i += j + 4
			continue
		case c == '\'' || c == '"' || c == '`' || c == '[':
			closer := c
			if c == '[' {
				closer = ']'
			}
			i++
			for i < len(s) {
				if s[i] != closer {
					i++
					continue
				}
				// A doubled quote stands for itself.
				if closer != ']' && i+1 < len(s) && s[i+1] == closer {
					i += 2
					continue
				}
				i++
				break
			}
		case isWordByte(c):
			for i < len(s) && isWordByte(s[i]) {
				i++
			}
		default:
			i++
		}
		if !fn(s[start:i], i) {
			return
		}
	}
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '$' || c >= 0x80
}
