package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"rpn/interpreter-go/pkg/runtime"
	"rpn/interpreter-go/pkg/token"
)

// Lexer turns a character stream into tokens with one token of lookahead.
type Lexer struct {
	stream  Stream
	pending *token.Token
	err     error
}

func New(stream Stream) *Lexer {
	return &Lexer{stream: stream}
}

func FromString(name, text string) *Lexer {
	return New(NewStringStream(name, text))
}

func FromReader(name string, r io.Reader) *Lexer {
	return New(NewReaderStream(name, r))
}

// Peek returns the next token without consuming it. Repeated calls return the same result.
func (l *Lexer) Peek() (token.Token, error) {
	if l.pending == nil && l.err == nil {
		tok, err := l.read()
		if err != nil {
			l.err = err
		} else {
			l.pending = &tok
		}
	}
	if l.err != nil {
		return token.Token{}, l.err
	}
	return *l.pending, nil
}

// Next returns the next token and advances past it. At end of input it returns an EOF token.
func (l *Lexer) Next() (token.Token, error) {
	tok, err := l.Peek()
	if err != nil {
		return token.Token{}, err
	}
	if !tok.IsEOF() {
		l.pending = nil
	}
	return tok, nil
}

// Done reports whether the lexer has no more tokens. A pending lexical error counts as remaining input.
func (l *Lexer) Done() bool {
	tok, err := l.Peek()
	return err == nil && tok.IsEOF()
}

// All drains the lexer, excluding the trailing EOF token.
func (l *Lexer) All() ([]token.Token, error) {
	var out []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return out, err
		}
		if tok.IsEOF() {
			return out, nil
		}
		out = append(out, tok)
	}
}

func (l *Lexer) read() (token.Token, error) {
	l.skipWhitespace()
	pos := l.stream.Position()
	ch, ok := l.stream.Peek()
	if !ok {
		if err := l.stream.Err(); err != nil {
			return token.Token{}, fmt.Errorf("lexer: read %s: %w", pos.Source, err)
		}
		return token.Token{Kind: token.EOF, Pos: pos}, nil
	}
	switch {
	case ch == '\'' || ch == '"':
		return l.readString(pos)
	case ch >= 'A' && ch <= 'Z':
		return token.NewVariable(l.readRun(""), pos), nil
	case ch == '-' || (ch >= '0' && ch <= '9'):
		return l.readNumber(pos)
	case token.IsBracket(ch):
		l.stream.Next()
		tok, _ := token.NewBracket(ch, pos)
		return tok, nil
	default:
		return token.NewIdentifier(l.readRun(""), pos), nil
	}
}

func (l *Lexer) readNumber(pos token.Position) (token.Token, error) {
	var b strings.Builder
	if ch, ok := l.stream.Peek(); ok && ch == '-' {
		l.stream.Next()
		b.WriteRune(ch)
	}
	for {
		ch, ok := l.stream.Peek()
		if !ok || ch < '0' || ch > '9' {
			break
		}
		l.stream.Next()
		b.WriteRune(ch)
	}
	text := b.String()
	if text == "-" {
		return token.NewIdentifier(l.readRun(text), pos), nil
	}
	return token.NewNumber(text, pos)
}

func (l *Lexer) readString(pos token.Position) (token.Token, error) {
	delimiter, _ := l.stream.Next()
	var b strings.Builder
	for {
		ch, ok := l.stream.Next()
		if !ok {
			if err := l.stream.Err(); err != nil {
				return token.Token{}, fmt.Errorf("lexer: read %s: %w", pos.Source, err)
			}
			return token.Token{}, runtime.Errorf(runtime.KindMalformedInput, pos, "unterminated string literal (missing closing %c)", delimiter)
		}
		if ch == delimiter {
			return token.NewString(b.String(), pos), nil
		}
		b.WriteRune(ch)
	}
}

// readRun accumulates a maximal run of characters that are neither whitespace nor brackets.
func (l *Lexer) readRun(prefix string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for {
		ch, ok := l.stream.Peek()
		if !ok || unicode.IsSpace(ch) || token.IsBracket(ch) {
			return b.String()
		}
		l.stream.Next()
		b.WriteRune(ch)
	}
}

func (l *Lexer) skipWhitespace() {
	for {
		ch, ok := l.stream.Peek()
		if !ok || !unicode.IsSpace(ch) {
			return
		}
		l.stream.Next()
	}
}
