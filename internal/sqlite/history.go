package sqlite

// History is the append-only log of statements passed to execute_sql during
// one agent session. A nil *History means no history is kept.
type History struct {
	queries []string
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append records a statement. It is a no-op on a nil receiver.
func (h *History) Append(query string) {
	if h == nil {
		return
	}
	h.queries = append(h.queries, query)
}

// Len returns the number of recorded statements.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.queries)
}

// Queries returns a copy of the recorded statements in call order.
func (h *History) Queries() []string {
	if h == nil {
		return nil
	}
	out := make([]string, len(h.queries))
	copy(out, h.queries)
	return out
}
