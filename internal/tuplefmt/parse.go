package tuplefmt

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrSyntax reports text that is not a tuple-list rendering.
var ErrSyntax = errors.New("tuplefmt: invalid syntax")

// Parse reads a bracketed list as produced by FormatRows or FormatStrings.
// Tuples and nested lists come back as []any; everything else is a scalar
// (nil, bool, int64, float64, string or []byte).
func Parse(s string) ([]any, error) {
	p := &parser{s: s}
	p.skipSpace()
	if !p.consume('[') {
		return nil, p.errorf("expected '['")
	}
	elems, err := p.sequence(']', true)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, p.errorf("unexpected trailing text")
	}
	return elems, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) consume(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

// sequence parses comma separated values up to the closing delimiter, which
// has already had its opener consumed. Nested sequences are allowed one level
// down from the outer list only.
func (p *parser) sequence(closer byte, allowNested bool) ([]any, error) {
	out := []any{}
	for {
		p.skipSpace()
		if p.consume(closer) {
			return out, nil
		}
		v, err := p.value(allowNested)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume(closer) {
			return out, nil
		}
		return nil, p.errorf("expected ',' or '%c'", closer)
	}
}

func (p *parser) value(allowNested bool) (any, error) {
	switch c := p.peek(); {
	case c == '(' || c == '[':
		if !allowNested {
			return nil, p.errorf("nested sequence not allowed")
		}
		p.pos++
		closer := byte(')')
		if c == '[' {
			closer = ']'
		}
		return p.sequence(closer, false)
	case c == '\'' || c == '"':
		s, err := p.quoted(false)
		if err != nil {
			return nil, err
		}
		return string(s), nil
	case c == 'b' && p.pos+1 < len(p.s) && (p.s[p.pos+1] == '\'' || p.s[p.pos+1] == '"'):
		p.pos++
		return p.quoted(true)
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case c == 0:
		return nil, p.errorf("unexpected end of input")
	default:
		return p.word()
	}
}

func (p *parser) word() (any, error) {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			p.pos++
			continue
		}
		break
	}
	switch w := p.s[start:p.pos]; w {
	case "None":
		return nil, nil
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "inf":
		return math.Inf(1), nil
	case "nan":
		return math.NaN(), nil
	default:
		p.pos = start
		return nil, p.errorf("unexpected token")
	}
}

func (p *parser) number() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
		if strings.HasPrefix(p.s[p.pos:], "inf") {
			p.pos += 3
			if c == '-' {
				return math.Inf(-1), nil
			}
			return math.Inf(1), nil
		}
	}
	isFloat := false
scan:
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' || c == 'e' || c == 'E':
			isFloat = true
		case (c == '-' || c == '+') && (p.s[p.pos-1] == 'e' || p.s[p.pos-1] == 'E'):
		default:
			break scan
		}
		p.pos++
	}
	text := p.s[start:p.pos]
	if !isFloat {
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return n, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.pos = start
		return nil, p.errorf("bad number %q", text)
	}
	return f, nil
}

// quoted reads a single or double quoted literal. For byte literals \x
// escapes produce raw bytes; for strings they produce code points.
func (p *parser) quoted(raw bool) ([]byte, error) {
	q := p.s[p.pos]
	p.pos++
	var out []byte
	for {
		if p.pos >= len(p.s) {
			return nil, p.errorf("unterminated string")
		}
		c := p.s[p.pos]
		if c == q {
			p.pos++
			return out, nil
		}
		if c != '\\' {
			out = append(out, c)
			p.pos++
			continue
		}
		p.pos++
		if p.pos >= len(p.s) {
			return nil, p.errorf("unterminated escape")
		}
		e := p.s[p.pos]
		p.pos++
		switch e {
		case '\\', '\'', '"':
			out = append(out, e)
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case '0':
			out = append(out, 0)
		case 'a':
			out = append(out, '\a')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'v':
			out = append(out, '\v')
		case 'x', 'u', 'U':
			width := 2
			switch e {
			case 'u':
				width = 4
			case 'U':
				width = 8
			}
			if raw && e != 'x' {
				out = append(out, '\\', e)
				continue
			}
			if p.pos+width > len(p.s) {
				return nil, p.errorf("short \\%c escape", e)
			}
			n, err := strconv.ParseUint(p.s[p.pos:p.pos+width], 16, 32)
			if err != nil {
				return nil, p.errorf("bad \\%c escape", e)
			}
			p.pos += width
			if raw {
				out = append(out, byte(n))
			} else {
				out = utf8.AppendRune(out, rune(n))
			}
		default:
			out = append(out, '\\', e)
		}
	}
}
