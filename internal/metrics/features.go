// Package metrics derives size and shape features from text without keeping the text.
package metrics

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Question intents, from the verbs a question uses.
const (
	IntentRead   = "read"
	IntentWrite  = "write"
	IntentExport = "export"
	IntentSchema = "schema"
)

// QuestionFeatures describes the shape of a question put to the SQL agent.
// None of the fields can reproduce the question text.
type QuestionFeatures struct {
	Bytes      int
	Runes      int
	Words      int
	Lines      int
	Numbers    int    // numeric literals, e.g. "2024" or "3.5"
	Quoted     int    // phrases in single or double quotes
	Aggregates int    // words such as "count", "average" or "total"
	Intent     string // one of the Intent constants
}

var (
	exportWords = wordSet("save", "export", "csv", "file", "download")
	writeWords  = wordSet("insert", "add", "update", "change", "set", "delete", "remove", "drop", "create", "rename")
	schemaWords = wordSet("schema", "tables", "columns", "structure", "describe")
	aggWords    = wordSet("count", "many", "number", "average", "avg", "mean", "sum", "total", "max", "maximum", "min", "minimum", "most", "least", "top")
)

// DescribeQuestion computes the features of question.
func DescribeQuestion(question string) QuestionFeatures {
	f := QuestionFeatures{
		Bytes:  len(question),
		Runes:  utf8.RuneCountInString(question),
		Words:  len(strings.Fields(question)),
		Lines:  countLines(question),
		Quoted: countQuoted(question),
		Intent: IntentRead,
	}

	var export, write, schema bool
	for _, w := range strings.FieldsFunc(strings.ToLower(question), isWordSep) {
		w = strings.Trim(w, ".")
		switch {
		case w == "":
		case isNumber(w):
			f.Numbers++
		case aggWords[w]:
			f.Aggregates++
		case exportWords[w]:
			export = true
		case writeWords[w]:
			write = true
		case schemaWords[w]:
			schema = true
		}
	}
	// Exporting usually reads first, so it wins over the other intents.
	switch {
	case export:
		f.Intent = IntentExport
	case write:
		f.Intent = IntentWrite
	case schema:
		f.Intent = IntentSchema
	}
	return f
}

// countLines returns 0 for empty strings; otherwise 1 plus the number of '\n' runes.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}

// countQuoted counts closed '...' and "..." spans. An apostrophe inside a
// word ("user's") does not open a span.
func countQuoted(s string) int {
	n := 0
	var open rune
	prev := ' '
	for _, r := range s {
		switch {
		case open != 0 && r == open:
			n++
			open = 0
		case open == 0 && (r == '"' || r == '\'') && !unicode.IsLetter(prev) && !unicode.IsDigit(prev):
			open = r
		}
		prev = r
	}
	return n
}

func isWordSep(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
}

func isNumber(w string) bool {
	dot := false
	for _, r := range w {
		switch {
		case r == '.' && !dot:
			dot = true
		case r < '0' || r > '9':
			return false
		}
	}
	return true
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
