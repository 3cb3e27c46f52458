package interpreter

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"rpn/interpreter-go/pkg/lexer"
	"rpn/interpreter-go/pkg/runtime"
	"rpn/interpreter-go/pkg/token"
)

// Interpreter drains queued source fragments through the evaluator and executes
// the resulting constructs against a chain of scopes.
type Interpreter struct {
	input   *lexer.Multiplexer
	global  *runtime.Context
	current *runtime.Context
	frames  []*replayFrame
	forced  []*replayFrame // non-nil while a builtin runs
	callPos token.Position
	out     io.Writer
	trace   io.Writer
	counter int
}

// State exposes the scope chain for host introspection.
type State struct {
	Global  *runtime.Context
	Current *runtime.Context
}

// New returns an interpreter seeded with the default builtins, writing to stdout.
func New() *Interpreter {
	global := newInitialContext()
	return &Interpreter{
		input:   lexer.NewMultiplexer(),
		global:  global,
		current: global,
		out:     os.Stdout,
	}
}

func (i *Interpreter) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	i.out = w
}

// SetTrace enables one line per executed construct on w; nil disables tracing.
func (i *Interpreter) SetTrace(w io.Writer) {
	i.trace = w
}

func (i *Interpreter) Output() io.Writer { return i.out }

func (i *Interpreter) State() State {
	return State{Global: i.global, Current: i.current}
}

// GlobalContext is the outermost ordinary scope.
func (i *Interpreter) GlobalContext() *runtime.Context { return i.global }

// Register adds an ordinary builtin to the global scope.
func (i *Interpreter) Register(name string, arity int, impl runtime.NativeFunc) error {
	def, err := runtime.NewFunctionDefinition(name, arity, impl)
	if err != nil {
		return err
	}
	return i.global.Define(def)
}

// RegisterSpecial adds a builtin that executes immediately at any block depth.
func (i *Interpreter) RegisterSpecial(name string, arity int, impl runtime.NativeFunc) error {
	def, err := runtime.NewFunctionDefinition(name, arity, impl)
	if err != nil {
		return err
	}
	return i.global.Parent().Define(def)
}

// AppendString queues a fragment under a generated name.
func (i *Interpreter) AppendString(text string) {
	i.counter++
	i.AppendNamed(fmt.Sprintf("<input %d>", i.counter), text)
}

func (i *Interpreter) AppendNamed(name, text string) {
	i.input.AddString(name, text)
}

// AppendReader queues a fragment read lazily from r. The reader must stay valid until Run drains it.
func (i *Interpreter) AppendReader(name string, r io.Reader) {
	i.input.AddReader(name, r)
}

// AppendFile queues the contents of a script file.
func (i *Interpreter) AppendFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	i.input.AddReader(path, bytes.NewReader(data))
	return nil
}

// Pending reports whether queued input or forced blocks remain unexecuted.
func (i *Interpreter) Pending() bool {
	return len(i.frames) > 0 || i.input.Pending()
}

// Run drains every queued fragment. The first failure aborts the run and is
// returned; the scope chain keeps whatever earlier constructs produced.
func (i *Interpreter) Run() error {
	start := i.current
	for {
		c, ok, err := i.next()
		if err != nil {
			return i.abort(start, err)
		}
		if !ok {
			return nil
		}
		if err := i.Execute(c); err != nil {
			return i.abort(start, err)
		}
	}
}

// abort discards the rest of the failed run: unread input, pending replays and
// the blocks the run opened. Blocks left open by earlier runs stay open unless
// the failed run already closed them.
func (i *Interpreter) abort(start *runtime.Context, err error) error {
	i.input.Reset()
	i.frames = nil
	survivors := make(map[*runtime.Context]struct{})
	for ctx := start; ctx != nil; ctx = ctx.Parent() {
		survivors[ctx] = struct{}{}
	}
	target := i.current
	for target != i.global {
		if _, ok := survivors[target]; ok {
			break
		}
		target = target.Parent()
	}
	if target != i.current {
		i.tracef("abort: closing %d open block(s)", i.current.Depth()-target.Depth())
		i.current = target
	}
	return err
}

func (i *Interpreter) tracef(format string, args ...any) {
	if i.trace == nil {
		return
	}
	depth := i.current.Depth() - i.global.Depth()
	for n := 0; n < depth; n++ {
		io.WriteString(i.trace, "  ")
	}
	fmt.Fprintf(i.trace, format+"\n", args...)
}
