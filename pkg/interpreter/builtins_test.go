package interpreter

import (
	"errors"
	"strings"
	"testing"

	"rpn/interpreter-go/pkg/runtime"
)

func TestPutsPrintsAndConsumes(t *testing.T) {
	interp, out, err := runSource(t, "1 'hello world' puts abc puts { 1 } puts")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "hello world\nabc\n{ 1 }\n" {
		t.Fatalf("stdout = %q", out.String())
	}
	if got := stackOf(interp.GlobalContext()); got != "[1]" {
		t.Fatalf("stack = %s, want [1]", got)
	}
}

func TestStringConcatenation(t *testing.T) {
	expectStack(t, "'foo' 'bar' +", `["foobar"]`)
}

func TestDivisionByZero(t *testing.T) {
	interp, _, err := runSource(t, "1 0 /")
	if !errors.Is(err, runtime.ErrArithmeticFailure) {
		t.Fatalf("expected ArithmeticFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "division by zero") {
		t.Fatalf("message = %q", err.Error())
	}
	if !interp.GlobalContext().Stack().Empty() {
		t.Fatalf("operands of a failed builtin are consumed")
	}
}

func TestTypeMismatchSuggestsName(t *testing.T) {
	_, _, err := runSource(t, "1 pust +")
	if !errors.Is(err, runtime.ErrTypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), `undefined identifier "pust"`) || !strings.Contains(err.Error(), `did you mean "puts"?`) {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestTypeMismatchOnMixedOperands(t *testing.T) {
	_, _, err := runSource(t, "1 'a' *")
	if !errors.Is(err, runtime.ErrTypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), `"*" expects integer operands, got string "a"`) {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestBuiltinErrorsCarryCallPosition(t *testing.T) {
	_, _, err := runSource(t, "1\n0 /")
	var rerr *runtime.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *runtime.Error, got %T", err)
	}
	if rerr.Pos.Line != 2 || rerr.Pos.Column != 3 {
		t.Fatalf("position = %#v, want line 2 column 3", rerr.Pos)
	}
}

func TestDumpPrintsScopeChain(t *testing.T) {
	_, out, err := runSource(t, "5 { 6 /? }")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	dump := out.String()
	for _, fragment := range []string{
		"current stack:\n    HEAD -> 6",
		"parent context:",
		"HEAD -> 5",
		"puts: { [builtin] }",
		"/?: { [builtin] }",
	} {
		if !strings.Contains(dump, fragment) {
			t.Fatalf("dump missing %q:\n%s", fragment, dump)
		}
	}
}

func TestFloorDiv(t *testing.T) {
	cases := [][3]int64{{7, 2, 3}, {-7, 2, -4}, {7, -2, -4}, {-7, -2, 3}, {6, 3, 2}}
	for _, tc := range cases {
		q, err := floorDiv(runtime.NewInteger(tc[0]).Val, runtime.NewInteger(tc[1]).Val)
		if err != nil {
			t.Fatalf("floorDiv(%d, %d): %v", tc[0], tc[1], err)
		}
		if q.Int64() != tc[2] {
			t.Fatalf("floorDiv(%d, %d) = %s, want %d", tc[0], tc[1], q, tc[2])
		}
	}
}
