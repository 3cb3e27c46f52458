package lexer

import (
	"io"

	"rpn/interpreter-go/pkg/token"
)

// Multiplexer chains several lexers into one token sequence. Fragments drain
// last-in first-out: the most recently added fragment is read next.
type Multiplexer struct {
	sources []*Lexer
	current *Lexer
}

func NewMultiplexer() *Multiplexer {
	return &Multiplexer{}
}

func (m *Multiplexer) Add(l *Lexer) {
	if l == nil {
		return
	}
	m.sources = append(m.sources, l)
}

func (m *Multiplexer) AddString(name, text string) {
	m.Add(FromString(name, text))
}

func (m *Multiplexer) AddReader(name string, r io.Reader) {
	m.Add(FromReader(name, r))
}

// Pending reports whether any fragment still has tokens or an unreported error.
func (m *Multiplexer) Pending() bool {
	if m.current != nil && !m.current.Done() {
		return true
	}
	for _, src := range m.sources {
		if !src.Done() {
			return true
		}
	}
	return false
}

// Next returns the next token across all fragments, or EOF once every fragment is exhausted.
func (m *Multiplexer) Next() (token.Token, error) {
	for {
		if m.current != nil {
			tok, err := m.current.Peek()
			if err != nil {
				// Drop the broken fragment so later input is not blocked behind it.
				m.current = nil
				return token.Token{}, err
			}
			if !tok.IsEOF() {
				return m.current.Next()
			}
		}
		if len(m.sources) == 0 {
			m.current = nil
			return token.Token{Kind: token.EOF}, nil
		}
		m.current = m.sources[len(m.sources)-1]
		m.sources = m.sources[:len(m.sources)-1]
	}
}

// Reset drops the fragment being read and every queued fragment.
func (m *Multiplexer) Reset() {
	m.current = nil
	m.sources = nil
}
