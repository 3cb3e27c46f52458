package runtime

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInteger Kind = iota
	KindString
	KindUndefined
	KindCall
	KindBlock
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindUndefined:
		return "undefined"
	case KindCall:
		return "call"
	case KindBlock:
		return "block"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for everything an operand stack can hold.
type Value interface {
	Kind() Kind
}

type IntegerValue struct {
	Val *big.Int
}

func (v IntegerValue) Kind() Kind { return KindInteger }

func NewInteger(n int64) IntegerValue {
	return IntegerValue{Val: big.NewInt(n)}
}

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// UndefinedValue stands in for a name no visible scope defines. It is data, not an error.
type UndefinedValue struct {
	Name string
}

func (v UndefinedValue) Kind() Kind { return KindUndefined }

// CallValue is a function call recorded, unevaluated, inside an open block.
type CallValue struct {
	Definition *FunctionDefinition
}

func (v CallValue) Kind() Kind { return KindCall }

// BlockValue is a closed block: the finished scope and a snapshot of what it captured,
// bottom of stack first.
type BlockValue struct {
	Context *Context
	Body    []Value
}

func (v BlockValue) Kind() Kind { return KindBlock }

// Format renders a value the way puts prints it.
func Format(v Value) string {
	switch val := v.(type) {
	case IntegerValue:
		return val.Val.String()
	case StringValue:
		return val.Val
	case UndefinedValue:
		return val.Name
	default:
		return Inspect(v)
	}
}

// Inspect renders a value for debug dumps and traces.
func Inspect(v Value) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case IntegerValue:
		return val.Val.String()
	case StringValue:
		return strconv.Quote(val.Val)
	case UndefinedValue:
		return fmt.Sprintf("undefined(%s)", val.Name)
	case CallValue:
		if val.Definition == nil {
			return "call(?)"
		}
		return val.Definition.Name()
	case BlockValue:
		if len(val.Body) == 0 {
			return "{ }"
		}
		parts := make([]string, 0, len(val.Body))
		for _, item := range val.Body {
			parts = append(parts, Inspect(item))
		}
		return "{ " + strings.Join(parts, " ") + " }"
	default:
		return fmt.Sprintf("[%s]", v.Kind())
	}
}
