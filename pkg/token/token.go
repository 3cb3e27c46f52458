package token

import (
	"fmt"
	"math/big"
)

// Kind identifies the lexical category of a token.
type Kind int

const (
	EOF Kind = iota
	Number
	String
	Variable
	Identifier
	SquareStart
	SquareEnd
	BraceStart
	BraceEnd
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "eof"
	case Number:
		return "number"
	case String:
		return "string"
	case Variable:
		return "variable"
	case Identifier:
		return "identifier"
	case SquareStart:
		return "square_start"
	case SquareEnd:
		return "square_end"
	case BraceStart:
		return "brace_start"
	case BraceEnd:
		return "brace_end"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Position locates the first character of a token.
type Position struct {
	Source string
	Line   int
	Column int
}

func (p Position) String() string {
	switch {
	case p.Source != "" && p.Line > 0:
		return fmt.Sprintf("%s:%d:%d", p.Source, p.Line, p.Column)
	case p.Line > 0:
		return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
	default:
		return p.Source
	}
}

// Token is an immutable lexical unit. Value is only set for Number tokens.
type Token struct {
	Kind  Kind
	Text  string
	Value *big.Int
	Pos   Position
}

func NewNumber(text string, pos Position) (Token, error) {
	value, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return Token{}, fmt.Errorf("token: invalid number literal %q", text)
	}
	return Token{Kind: Number, Text: text, Value: value, Pos: pos}, nil
}

func NewString(text string, pos Position) Token {
	return Token{Kind: String, Text: text, Pos: pos}
}

func NewVariable(text string, pos Position) Token {
	return Token{Kind: Variable, Text: text, Pos: pos}
}

func NewIdentifier(text string, pos Position) Token {
	return Token{Kind: Identifier, Text: text, Pos: pos}
}

// NewBracket maps one of the four bracket characters to its token.
func NewBracket(ch rune, pos Position) (Token, bool) {
	var kind Kind
	switch ch {
	case '[':
		kind = SquareStart
	case ']':
		kind = SquareEnd
	case '{':
		kind = BraceStart
	case '}':
		kind = BraceEnd
	default:
		return Token{}, false
	}
	return Token{Kind: kind, Text: string(ch), Pos: pos}, true
}

// IsBracket reports whether ch terminates identifier-style runs.
func IsBracket(ch rune) bool {
	switch ch {
	case '[', ']', '{', '}':
		return true
	default:
		return false
	}
}

// IntValue returns a copy of the literal value so callers cannot mutate the token.
func (t Token) IntValue() *big.Int {
	if t.Value == nil {
		return nil
	}
	return new(big.Int).Set(t.Value)
}

func (t Token) IsEOF() bool { return t.Kind == EOF }

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case Number:
		return fmt.Sprintf("Number(%s)", t.Value.String())
	case String:
		return fmt.Sprintf("String(%s)", t.Text)
	case Variable:
		return fmt.Sprintf("Variable(%s)", t.Text)
	case Identifier:
		return fmt.Sprintf("Identifier(%s)", t.Text)
	default:
		return t.Text
	}
}
