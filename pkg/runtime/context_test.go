package runtime

import (
	"errors"
	"strings"
	"testing"
)

func TestResolveWalksOutwardAndReportsSpecials(t *testing.T) {
	specials, err := NewSeededContext(nil, true, MustFunctionDefinition("/?", 0, noop))
	if err != nil {
		t.Fatalf("NewSeededContext: %v", err)
	}
	global, err := NewSeededContext(specials, false, MustFunctionDefinition("+", 2, noop))
	if err != nil {
		t.Fatalf("NewSeededContext: %v", err)
	}
	child := NewContext(global)

	if def, special, ok := child.Resolve("+"); !ok || special || def.Name() != "+" {
		t.Fatalf("Resolve(+) = %v, %v, %v", def, special, ok)
	}
	if def, special, ok := child.Resolve("/?"); !ok || !special || def.Name() != "/?" {
		t.Fatalf("Resolve(/?) = %v, %v, %v", def, special, ok)
	}
	if _, _, ok := child.Resolve("missing"); ok {
		t.Fatalf("Resolve(missing) should fail")
	}
	if child.Depth() != 2 || global.Depth() != 1 || specials.Depth() != 0 {
		t.Fatalf("depths = %d/%d/%d", child.Depth(), global.Depth(), specials.Depth())
	}
}

func TestInnermostDefinitionShadows(t *testing.T) {
	outer := NewContext(nil)
	if err := outer.Define(MustFunctionDefinition("f", 1, noop)); err != nil {
		t.Fatalf("Define: %v", err)
	}
	inner := NewContext(outer)
	if err := inner.Define(MustFunctionDefinition("f", 2, noop)); err != nil {
		t.Fatalf("Define: %v", err)
	}
	def, _, ok := inner.Resolve("f")
	if !ok || def.Arity() != 2 {
		t.Fatalf("inner definition should win, got %v", def)
	}
	if names := inner.VisibleNames(); len(names) != 1 || names[0] != "f" {
		t.Fatalf("VisibleNames = %v", names)
	}
}

func TestDefineRejectsDuplicates(t *testing.T) {
	ctx := NewContext(nil)
	if err := ctx.Define(MustFunctionDefinition("f", 0, noop)); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if err := ctx.Define(MustFunctionDefinition("f", 0, noop)); !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("duplicate Define: %v", err)
	}
	if err := ctx.Define(nil); !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("nil Define: %v", err)
	}
}

func TestStacksArePerScope(t *testing.T) {
	parent := NewContext(nil)
	child := NewContext(parent)
	child.Stack().Push(NewInteger(1))
	if !parent.Stack().Empty() {
		t.Fatalf("child push leaked into parent")
	}
}

func TestInspectDump(t *testing.T) {
	root, _ := NewSeededContext(nil, true, MustFunctionDefinition("/?", 0, noop))
	ctx, _ := NewSeededContext(root, false, MustFunctionDefinition("puts", 1, noop))
	ctx.Stack().Push(NewInteger(1), StringValue{Val: "two"})

	dump := ctx.Inspect(true)
	for _, fragment := range []string{
		"current stack:\n    HEAD -> \"two\"\n            1\n",
		"defined functions:\n    puts: { [builtin] }",
		"parent context:\n    current stack:\n        HEAD -> [ EMPTY ]",
		"        /?: { [builtin] }",
	} {
		if !strings.Contains(dump, fragment) {
			t.Fatalf("dump missing %q:\n%s", fragment, dump)
		}
	}
	if strings.Contains(ctx.Inspect(false), "parent context:") {
		t.Fatalf("shallow dump should not include parents")
	}
}
