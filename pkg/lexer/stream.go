package lexer

import (
	"bufio"
	"errors"
	"io"

	"rpn/interpreter-go/pkg/token"
)

// Stream is the character source the lexer scans. Peek and Next return false at end of input.
type Stream interface {
	Peek() (rune, bool)
	Next() (rune, bool)
	Position() token.Position
	Err() error
}

type cursor struct {
	source string
	line   int
	column int
}

func newCursor(source string) cursor {
	return cursor{source: source, line: 1, column: 1}
}

func (c *cursor) advance(ch rune) {
	if ch == '\n' {
		c.line++
		c.column = 1
		return
	}
	c.column++
}

func (c cursor) position() token.Position {
	return token.Position{Source: c.source, Line: c.line, Column: c.column}
}

// StringStream reads characters from an in-memory buffer.
type StringStream struct {
	text []rune
	pos  int
	cur  cursor
}

func NewStringStream(name, text string) *StringStream {
	return &StringStream{text: []rune(text), cur: newCursor(name)}
}

func (s *StringStream) Peek() (rune, bool) {
	if s.pos >= len(s.text) {
		return 0, false
	}
	return s.text[s.pos], true
}

func (s *StringStream) Next() (rune, bool) {
	ch, ok := s.Peek()
	if !ok {
		return 0, false
	}
	s.pos++
	s.cur.advance(ch)
	return ch, true
}

func (s *StringStream) Position() token.Position { return s.cur.position() }

func (s *StringStream) Err() error { return nil }

// ReaderStream reads characters from an io.Reader, typically an open script file.
type ReaderStream struct {
	r       *bufio.Reader
	pending rune
	hasNext bool
	done    bool
	err     error
	cur     cursor
}

func NewReaderStream(name string, r io.Reader) *ReaderStream {
	return &ReaderStream{r: bufio.NewReader(r), cur: newCursor(name)}
}

func (s *ReaderStream) fill() {
	if s.hasNext || s.done {
		return
	}
	ch, _, err := s.r.ReadRune()
	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return
	}
	s.pending = ch
	s.hasNext = true
}

func (s *ReaderStream) Peek() (rune, bool) {
	s.fill()
	if !s.hasNext {
		return 0, false
	}
	return s.pending, true
}

func (s *ReaderStream) Next() (rune, bool) {
	ch, ok := s.Peek()
	if !ok {
		return 0, false
	}
	s.hasNext = false
	s.cur.advance(ch)
	return ch, true
}

func (s *ReaderStream) Position() token.Position { return s.cur.position() }

// Err reports the first read failure other than io.EOF.
func (s *ReaderStream) Err() error { return s.err }
