package interpreter

import (
	"rpn/interpreter-go/pkg/runtime"
	"rpn/interpreter-go/pkg/token"
)

// Evaluate maps one token to one construct using ctx for name resolution. It has
// no side effects and keeps no memory of earlier tokens.
func Evaluate(tok token.Token, ctx *runtime.Context) (Construct, error) {
	switch tok.Kind {
	case token.Number:
		return Constant{Value: runtime.IntegerValue{Val: tok.IntValue()}, Pos: tok.Pos}, nil
	case token.String:
		return Constant{Value: runtime.StringValue{Val: tok.Text}, Pos: tok.Pos}, nil
	case token.Identifier, token.Variable:
		return resolve(tok.Text, tok.Pos, ctx), nil
	case token.BraceStart:
		return BlockStart{Pos: tok.Pos}, nil
	case token.BraceEnd:
		return BlockEnd{Pos: tok.Pos}, nil
	case token.SquareStart, token.SquareEnd:
		return nil, runtime.Errorf(runtime.KindUnsupportedConstruct, tok.Pos, "%q is not yet supported", tok.Text)
	default:
		return nil, runtime.Errorf(runtime.KindUnsupportedConstruct, tok.Pos, "unknown token type %s", tok.Kind)
	}
}

func resolve(name string, pos token.Position, ctx *runtime.Context) Construct {
	if ctx == nil {
		return UndefinedIdentifier{Name: name, Pos: pos}
	}
	def, special, ok := ctx.Resolve(name)
	switch {
	case !ok:
		return UndefinedIdentifier{Name: name, Pos: pos}
	case special:
		return SpecialFunctionCall{Definition: def, Pos: pos}
	default:
		return FunctionCall{Definition: def, Pos: pos}
	}
}

// ConstructFor turns a value captured in a block back into the construct that
// produced it, so a forced block runs through the same executor transitions.
func ConstructFor(v runtime.Value, pos token.Position) (Construct, error) {
	switch val := v.(type) {
	case runtime.IntegerValue, runtime.StringValue, runtime.BlockValue:
		return Constant{Value: val, Pos: pos}, nil
	case runtime.UndefinedValue:
		return UndefinedIdentifier{Name: val.Name, Pos: pos}, nil
	case runtime.CallValue:
		return FunctionCall{Definition: val.Definition, Pos: pos}, nil
	default:
		return nil, runtime.Errorf(runtime.KindUnsupportedConstruct, pos, "cannot replay value of kind %s", v.Kind())
	}
}
