// Package scanner turns schema source into trimmed, non-blank lines and then
// into comment-aware statements for the declaration parser.
package scanner

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrEmptyInput is returned by New when the input holds no non-blank line.
var ErrEmptyInput = errors.New("empty content")

// Line is a single trimmed, non-blank source line.
type Line struct {
	Text   string
	Number int
}

// Scanner is a lazily advancing cursor over the non-blank lines of a reader.
type Scanner struct {
	br      *bufio.Reader
	current Line
	// physical lines consumed so far
	line int
	// drained is set once the reader returned io.EOF; atEnd once the cursor
	// moved past the last line.
	drained bool
	atEnd   bool
}

// New creates a scanner positioned on the first non-blank line of r.
func New(r io.Reader) (*Scanner, error) {
	s := &Scanner{br: bufio.NewReader(r)}
	_, ok, err := s.Advance()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEmptyInput
	}
	return s, nil
}

// Current returns the line under the cursor; false once the input is
// exhausted.
func (s *Scanner) Current() (Line, bool) {
	if s.atEnd {
		return Line{}, false
	}
	return s.current, true
}

// Advance moves to the next non-blank line, skipping any run of blank lines.
func (s *Scanner) Advance() (Line, bool, error) {
	for !s.drained {
		raw, err := s.br.ReadString('\n')
		if err == io.EOF {
			s.drained = true
		} else if err != nil {
			return Line{}, false, err
		}
		if raw == "" {
			continue
		}
		s.line++
		if text := strings.TrimSpace(raw); text != "" {
			s.current = Line{Text: text, Number: s.line}
			return s.current, true, nil
		}
	}
	s.atEnd = true
	s.current = Line{}
	return Line{}, false, nil
}
