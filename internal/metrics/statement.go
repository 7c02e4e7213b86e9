package metrics

import (
	"strings"
)

// StatementKind classifies a SQL statement by its leading keyword, e.g.
// "select", "insert", "create". Leading comments and a WITH clause are
// skipped; an unrecognised or empty statement is "other".
func StatementKind(query string) string {
	s := stripLeadingComments(query)
	word := strings.ToLower(firstWord(s))
	switch word {
	case "select", "insert", "update", "delete", "replace", "pragma", "explain", "values":
		return word
	case "create", "drop", "alter":
		return "ddl"
	case "with":
		// CTE: the kind is the statement after the closing parenthesis of the last CTE.
		depth := 0
		for i, r := range s {
			switch r {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					if k := StatementKind(s[i+1:]); k != "other" {
						return k
					}
				}
			}
		}
		return "select"
	default:
		return "other"
	}
}

func stripLeadingComments(s string) string {
	for {
		s = strings.TrimSpace(s)
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s, "*/")
			if i < 0 {
				return ""
			}
			s = s[i+2:]
		default:
			return s
		}
	}
}

func firstWord(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	if end < 0 {
		return s
	}
	return s[:end]
}
