package runtime

import (
	"fmt"

	"rpn/interpreter-go/pkg/token"
)

// ErrorKind classifies interpreter failures. Every kind aborts the current run.
type ErrorKind string

const (
	KindMalformedInput       ErrorKind = "MalformedInput"
	KindUnsupportedConstruct ErrorKind = "UnsupportedConstruct"
	KindArityMismatch        ErrorKind = "ArityMismatch"
	KindUnbalancedBlock      ErrorKind = "UnbalancedBlock"
	KindInvalidDefinition    ErrorKind = "InvalidDefinition"
	KindArithmeticFailure    ErrorKind = "ArithmeticFailure"
	KindTypeMismatch         ErrorKind = "TypeMismatch"
)

// Error is the typed failure surfaced by the lexer, evaluator, executor and builtins.
type Error struct {
	Kind    ErrorKind
	Message string
	Pos     token.Position
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches sentinels by kind, so errors.Is(err, ErrArityMismatch) works for any message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrMalformedInput       = &Error{Kind: KindMalformedInput}
	ErrUnsupportedConstruct = &Error{Kind: KindUnsupportedConstruct}
	ErrArityMismatch        = &Error{Kind: KindArityMismatch}
	ErrUnbalancedBlock      = &Error{Kind: KindUnbalancedBlock}
	ErrInvalidDefinition    = &Error{Kind: KindInvalidDefinition}
	ErrArithmeticFailure    = &Error{Kind: KindArithmeticFailure}
	ErrTypeMismatch         = &Error{Kind: KindTypeMismatch}
)

func Errorf(kind ErrorKind, pos token.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// WithPosition returns err with pos attached when err is an *Error lacking a location.
func WithPosition(err error, pos token.Position) error {
	e, ok := err.(*Error)
	if !ok || e.Pos.Line > 0 {
		return err
	}
	located := *e
	located.Pos = pos
	return &located
}
