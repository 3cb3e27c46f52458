package interpreter

import (
	"rpn/interpreter-go/pkg/runtime"
	"rpn/interpreter-go/pkg/token"
)

// replayFrame is a forced block body waiting to be executed.
type replayFrame struct {
	body []runtime.Value
	next int
	pos  token.Position
}

// next yields the next construct: pending replay frames first, then the token stream.
func (i *Interpreter) next() (Construct, bool, error) {
	for len(i.frames) > 0 {
		top := i.frames[len(i.frames)-1]
		if top.next >= len(top.body) {
			i.frames = i.frames[:len(i.frames)-1]
			continue
		}
		val := top.body[top.next]
		top.next++
		c, err := ConstructFor(val, top.pos)
		if err != nil {
			return nil, false, err
		}
		return c, true, nil
	}
	tok, err := i.input.Next()
	if err != nil {
		return nil, false, err
	}
	if tok.IsEOF() {
		return nil, false, nil
	}
	c, err := Evaluate(tok, i.current)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// Execute runs one construct against the current scope.
func (i *Interpreter) Execute(c Construct) error {
	i.tracef("executing %s", c)
	switch c := c.(type) {
	case Constant:
		i.current.Stack().Push(c.Value)
	case UndefinedIdentifier:
		i.current.Stack().Push(runtime.UndefinedValue{Name: c.Name})
	case BlockStart:
		i.current = runtime.NewContext(i.current)
	case BlockEnd:
		return i.closeBlock(c.Pos)
	case SpecialFunctionCall:
		return i.invoke(c.Definition, c.Pos)
	case FunctionCall:
		if i.current == i.global {
			return i.invoke(c.Definition, c.Pos)
		}
		i.current.Stack().Push(runtime.CallValue{Definition: c.Definition})
	case nil:
		return runtime.Errorf(runtime.KindUnsupportedConstruct, token.Position{}, "nil construct")
	default:
		return runtime.Errorf(runtime.KindUnsupportedConstruct, c.Position(), "unknown construct type %T", c)
	}
	return nil
}

func (i *Interpreter) closeBlock(pos token.Position) error {
	closed := i.current
	parent := closed.Parent()
	if closed == i.global || parent == nil {
		return runtime.Errorf(runtime.KindUnbalancedBlock, pos, "'}' without a matching '{'")
	}
	parent.Stack().Push(runtime.BlockValue{Context: closed, Body: closed.Stack().Values()})
	i.current = parent
	return nil
}

// invoke pops exactly the definition's arity from the current stack, calls the
// implementation and pushes whatever it returns. Blocks forced during the call are
// queued afterwards so they replay in the order they were forced.
func (i *Interpreter) invoke(def *runtime.FunctionDefinition, pos token.Position) error {
	stack := i.current.Stack()
	args, ok := stack.Pop(def.Arity())
	if !ok {
		return runtime.Errorf(runtime.KindArityMismatch, pos, "not enough arguments for %q: needs %d, stack has %d", def.Name(), def.Arity(), stack.Len())
	}
	outer, outerPos := i.forced, i.callPos
	i.forced, i.callPos = []*replayFrame{}, pos
	defer func() { i.forced, i.callPos = outer, outerPos }()

	call := &runtime.CallContext{Context: i.current, Executor: i, Pos: pos}
	results, err := def.Invoke(call, args)
	if err != nil {
		return runtime.WithPosition(err, pos)
	}
	i.current.Stack().Push(results...)
	i.dropFinishedFrames()
	for idx := len(i.forced) - 1; idx >= 0; idx-- {
		i.frames = append(i.frames, i.forced[idx])
	}
	return nil
}

// Force schedules a captured block for replay against the current scope. Inside a
// builtin the replay starts once the builtin has returned and its results are
// pushed; several forces replay in call order. Outside a call the block runs
// before the next token is read. Values that are not blocks are left alone.
func (i *Interpreter) Force(v runtime.Value) error {
	block, ok := v.(runtime.BlockValue)
	if !ok || len(block.Body) == 0 {
		return nil
	}
	body := make([]runtime.Value, len(block.Body))
	copy(body, block.Body)
	frame := &replayFrame{body: body, pos: i.callPos}
	if i.trace != nil {
		i.tracef("forcing %s", runtime.Inspect(block))
	}
	if i.forced != nil {
		i.forced = append(i.forced, frame)
		return nil
	}
	i.dropFinishedFrames()
	i.frames = append(i.frames, frame)
	return nil
}

// dropFinishedFrames pops exhausted frames so a force in tail position does not
// grow the frame stack.
func (i *Interpreter) dropFinishedFrames() {
	for len(i.frames) > 0 {
		top := i.frames[len(i.frames)-1]
		if top.next < len(top.body) {
			return
		}
		i.frames = i.frames[:len(i.frames)-1]
	}
}
