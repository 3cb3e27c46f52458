// Package interpreter executes rpn programs. Tokens from the lexer multiplexer are
// resolved against the current scope into constructs and run against the operand
// stack of that scope. Blocks become first-class values that the value builtin
// replays through an explicit frame stack.
package interpreter
