package interpreter

import (
	"fmt"

	"rpn/interpreter-go/pkg/runtime"
	"rpn/interpreter-go/pkg/token"
)

// Construct is the executable form of a token in a scope. The set of
// implementations is closed; Execute switches over all of them.
type Construct interface {
	Position() token.Position
	String() string
	construct()
}

// Constant is a literal ready to be pushed. Replayed blocks also surface as constants.
type Constant struct {
	Value runtime.Value
	Pos   token.Position
}

// UndefinedIdentifier marks a name no visible scope defines.
type UndefinedIdentifier struct {
	Name string
	Pos  token.Position
}

type FunctionCall struct {
	Definition *runtime.FunctionDefinition
	Pos        token.Position
}

// SpecialFunctionCall runs immediately at any block depth.
type SpecialFunctionCall struct {
	Definition *runtime.FunctionDefinition
	Pos        token.Position
}

type BlockStart struct {
	Pos token.Position
}

type BlockEnd struct {
	Pos token.Position
}

func (c Constant) Position() token.Position            { return c.Pos }
func (c UndefinedIdentifier) Position() token.Position { return c.Pos }
func (c FunctionCall) Position() token.Position        { return c.Pos }
func (c SpecialFunctionCall) Position() token.Position { return c.Pos }
func (c BlockStart) Position() token.Position          { return c.Pos }
func (c BlockEnd) Position() token.Position            { return c.Pos }

func (c Constant) String() string            { return runtime.Inspect(c.Value) }
func (c UndefinedIdentifier) String() string { return fmt.Sprintf("undefined(%s)", c.Name) }
func (c FunctionCall) String() string        { return fmt.Sprintf("call(%s)", c.Definition.Name()) }
func (c SpecialFunctionCall) String() string { return fmt.Sprintf("special(%s)", c.Definition.Name()) }
func (c BlockStart) String() string          { return "{" }
func (c BlockEnd) String() string            { return "}" }

func (Constant) construct()            {}
func (UndefinedIdentifier) construct() {}
func (FunctionCall) construct()        {}
func (SpecialFunctionCall) construct() {}
func (BlockStart) construct()          {}
func (BlockEnd) construct()            {}
