package interpreter

import (
	"fmt"
	"math/big"

	"rpn/interpreter-go/pkg/runtime"
)

// newInitialContext builds the two pre-seeded roots: a specials scope at the chain
// root and the global scope of ordinary builtins beneath it.
func newInitialContext() *runtime.Context {
	specials, err := runtime.NewSeededContext(nil, true, specialFunctions()...)
	if err != nil {
		panic(err)
	}
	global, err := runtime.NewSeededContext(specials, false, defaultFunctions()...)
	if err != nil {
		panic(err)
	}
	return global
}

func defaultFunctions() []*runtime.FunctionDefinition {
	return []*runtime.FunctionDefinition{
		runtime.MustFunctionDefinition("+", 2, builtinAdd),
		runtime.MustFunctionDefinition("-", 2, integerOperation("-", func(a, b *big.Int) (*big.Int, error) {
			return new(big.Int).Sub(a, b), nil
		})),
		runtime.MustFunctionDefinition("*", 2, integerOperation("*", func(a, b *big.Int) (*big.Int, error) {
			return new(big.Int).Mul(a, b), nil
		})),
		runtime.MustFunctionDefinition("/", 2, integerOperation("/", floorDiv)),
		runtime.MustFunctionDefinition("puts", 1, builtinPuts),
		runtime.MustFunctionDefinition("value", 1, builtinValue),
	}
}

func specialFunctions() []*runtime.FunctionDefinition {
	return []*runtime.FunctionDefinition{
		runtime.MustFunctionDefinition("/?", 0, builtinDump),
	}
}

func builtinAdd(call *runtime.CallContext, args []runtime.Value) ([]runtime.Value, error) {
	if left, ok := args[0].(runtime.StringValue); ok {
		if right, ok := args[1].(runtime.StringValue); ok {
			return []runtime.Value{runtime.StringValue{Val: left.Val + right.Val}}, nil
		}
	}
	return integerOperation("+", func(a, b *big.Int) (*big.Int, error) {
		return new(big.Int).Add(a, b), nil
	})(call, args)
}

func integerOperation(op string, apply func(a, b *big.Int) (*big.Int, error)) runtime.NativeFunc {
	return func(call *runtime.CallContext, args []runtime.Value) ([]runtime.Value, error) {
		left, err := integerOperand(call, op, args[0])
		if err != nil {
			return nil, err
		}
		right, err := integerOperand(call, op, args[1])
		if err != nil {
			return nil, err
		}
		result, err := apply(left, right)
		if err != nil {
			return nil, runtime.Errorf(runtime.KindArithmeticFailure, call.Pos, "%s: %v", op, err)
		}
		return []runtime.Value{runtime.IntegerValue{Val: result}}, nil
	}
}

func integerOperand(call *runtime.CallContext, op string, v runtime.Value) (*big.Int, error) {
	switch val := v.(type) {
	case runtime.IntegerValue:
		return val.Val, nil
	case runtime.UndefinedValue:
		msg := fmt.Sprintf("%q expects integer operands, got undefined identifier %q", op, val.Name)
		if call.Context != nil {
			if suggestion, ok := suggestName(val.Name, call.Context.VisibleNames()); ok {
				msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
		}
		return nil, runtime.Errorf(runtime.KindTypeMismatch, call.Pos, "%s", msg)
	default:
		return nil, runtime.Errorf(runtime.KindTypeMismatch, call.Pos, "%q expects integer operands, got %s %s", op, v.Kind(), runtime.Inspect(v))
	}
}

// floorDiv rounds toward negative infinity.
func floorDiv(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	q, m := new(big.Int).QuoRem(a, b, new(big.Int))
	if m.Sign() != 0 && m.Sign() != b.Sign() {
		q.Sub(q, big.NewInt(1))
	}
	return q, nil
}

func builtinPuts(call *runtime.CallContext, args []runtime.Value) ([]runtime.Value, error) {
	if _, err := fmt.Fprintln(call.Executor.Output(), runtime.Format(args[0])); err != nil {
		return nil, fmt.Errorf("puts: %w", err)
	}
	return nil, nil
}

// builtinValue forces a captured block; any other operand passes through.
func builtinValue(call *runtime.CallContext, args []runtime.Value) ([]runtime.Value, error) {
	if _, ok := args[0].(runtime.BlockValue); !ok {
		return args, nil
	}
	if err := call.Executor.Force(args[0]); err != nil {
		return nil, err
	}
	return nil, nil
}

func builtinDump(call *runtime.CallContext, _ []runtime.Value) ([]runtime.Value, error) {
	if _, err := fmt.Fprintln(call.Executor.Output(), call.Context.Inspect(true)); err != nil {
		return nil, fmt.Errorf("/?: %w", err)
	}
	return nil, nil
}
