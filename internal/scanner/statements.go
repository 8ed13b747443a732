package scanner

import "strings"

// Statement is one logical statement taken from a source line. Text ends
// with its terminator (';' or '{'), is exactly "}" for a closing brace, or
// is empty for a line that only holds a comment.
type Statement struct {
	Text    string
	Comment string
	Line    int
	// Source is the whole trimmed line the statement came from.
	Source string
}

// IsComment reports whether the statement is an own-line comment.
func (s Statement) IsComment() bool {
	return s.Text == ""
}

// Statements splits the lines of a Scanner into statements, with one
// statement of lookahead.
type Statements struct {
	sc      *Scanner
	queue   []Statement
	started bool
	// inside a /* ... */ comment spanning lines
	inBlock bool
}

// NewStatements wraps sc, starting at its current line.
func NewStatements(sc *Scanner) *Statements {
	return &Statements{sc: sc}
}

// Peek returns the next statement without consuming it.
func (st *Statements) Peek() (Statement, bool, error) {
	if err := st.fill(); err != nil {
		return Statement{}, false, err
	}
	if len(st.queue) == 0 {
		return Statement{}, false, nil
	}
	return st.queue[0], true, nil
}

// Next consumes and returns the next statement.
func (st *Statements) Next() (Statement, bool, error) {
	s, ok, err := st.Peek()
	if ok {
		st.queue = st.queue[1:]
	}
	return s, ok, err
}

func (st *Statements) fill() error {
	for len(st.queue) == 0 {
		var (
			line Line
			ok   bool
			err  error
		)
		if !st.started {
			st.started = true
			line, ok = st.sc.Current()
		} else {
			line, ok, err = st.sc.Advance()
		}
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		st.queue = append(st.queue, st.split(line)...)
	}
	return nil
}

// split strips comments from a line and cuts the rest into statements. The
// trailing // comment belongs to the first statement of the line.
func (st *Statements) split(line Line) []Statement {
	var (
		text       strings.Builder
		comment    string
		hasComment bool
		inQuote    bool
	)
	src := line.Text
	for i := 0; i < len(src); i++ {
		c := src[i]
		if st.inBlock {
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				st.inBlock = false
				i++
			}
			continue
		}
		if inQuote {
			text.WriteByte(c)
			if c == '"' {
				inQuote = false
			}
			continue
		}
		switch {
		case c == '"':
			inQuote = true
			text.WriteByte(c)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			comment = strings.TrimSpace(src[i+2:])
			hasComment = true
			i = len(src)
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			st.inBlock = true
			i++
		default:
			text.WriteByte(c)
		}
	}

	var stmts []Statement
	emit := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, Statement{Text: s, Line: line.Number, Source: src})
		}
	}
	var cur strings.Builder
	inQuote = false
	for _, c := range text.String() {
		if inQuote {
			cur.WriteRune(c)
			if c == '"' {
				inQuote = false
			}
			continue
		}
		switch c {
		case '"':
			inQuote = true
			cur.WriteRune(c)
		case ';', '{':
			// a bare ';' is dropped
			if strings.TrimSpace(cur.String()) != "" {
				cur.WriteRune(c)
				emit(cur.String())
			}
			cur.Reset()
		case '}':
			emit(cur.String())
			cur.Reset()
			emit("}")
		default:
			cur.WriteRune(c)
		}
	}
	emit(cur.String())

	if len(stmts) == 0 {
		if !hasComment {
			return nil
		}
		return []Statement{{Comment: comment, Line: line.Number, Source: src}}
	}
	stmts[0].Comment = comment
	return stmts
}
