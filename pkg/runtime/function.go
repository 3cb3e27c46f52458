package runtime

import (
	"io"

	"rpn/interpreter-go/pkg/token"
)

// Executor is the part of the interpreter a builtin may call back into.
type Executor interface {
	// Force schedules a captured block for replay against the current scope. The
	// replay runs after the calling builtin returns; several forces run in call
	// order. Other values pass through.
	Force(v Value) error
	Output() io.Writer
}

// CallContext provides hooks for native functions.
type CallContext struct {
	Context  *Context
	Executor Executor
	Pos      token.Position
}

// NativeFunc receives exactly Arity operands, in push order, and returns the values to push back.
type NativeFunc func(call *CallContext, args []Value) ([]Value, error)

// FunctionDefinition binds a name to a fixed arity and an implementation.
type FunctionDefinition struct {
	name  string
	arity int
	impl  NativeFunc
}

func NewFunctionDefinition(name string, arity int, impl NativeFunc) (*FunctionDefinition, error) {
	if arity < 0 {
		return nil, Errorf(KindInvalidDefinition, token.Position{}, "function %q: only known arity functions are allowed (got %d)", name, arity)
	}
	if name == "" {
		return nil, Errorf(KindInvalidDefinition, token.Position{}, "function name must be non-empty")
	}
	if impl == nil {
		return nil, Errorf(KindInvalidDefinition, token.Position{}, "function %q has no implementation", name)
	}
	return &FunctionDefinition{name: name, arity: arity, impl: impl}, nil
}

// MustFunctionDefinition is NewFunctionDefinition for fixed builtin tables; it panics on error.
func MustFunctionDefinition(name string, arity int, impl NativeFunc) *FunctionDefinition {
	def, err := NewFunctionDefinition(name, arity, impl)
	if err != nil {
		panic(err)
	}
	return def
}

func (d *FunctionDefinition) Name() string { return d.name }

func (d *FunctionDefinition) Arity() int { return d.arity }

func (d *FunctionDefinition) Invoke(call *CallContext, args []Value) ([]Value, error) {
	return d.impl(call, args)
}

func (d *FunctionDefinition) String() string { return "[builtin]" }
