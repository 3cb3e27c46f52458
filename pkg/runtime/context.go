package runtime

import (
	"fmt"
	"sort"
	"strings"

	"rpn/interpreter-go/pkg/token"
)

// Context is one scope in the parent chain: a local operand stack plus a local
// mapping from identifier text to function definitions. A child refers to its
// parent but does not own it.
type Context struct {
	parent    *Context
	stack     Stack
	functions map[string]*FunctionDefinition
	specials  bool
}

// NewContext creates an empty scope nested under parent.
func NewContext(parent *Context) *Context {
	return &Context{
		parent:    parent,
		functions: make(map[string]*FunctionDefinition),
	}
}

// NewSeededContext creates a scope pre-populated with definitions. Calls resolved
// in a specials scope run immediately regardless of block depth.
func NewSeededContext(parent *Context, specials bool, defs ...*FunctionDefinition) (*Context, error) {
	ctx := NewContext(parent)
	ctx.specials = specials
	for _, def := range defs {
		if err := ctx.Define(def); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

// Define installs def in the local mapping. Names are unique per scope.
func (c *Context) Define(def *FunctionDefinition) error {
	if def == nil {
		return Errorf(KindInvalidDefinition, token.Position{}, "nil function definition")
	}
	if _, exists := c.functions[def.Name()]; exists {
		return Errorf(KindInvalidDefinition, token.Position{}, "function %q already defined in this scope", def.Name())
	}
	c.functions[def.Name()] = def
	return nil
}

// Resolve walks outward from c. The first scope whose local mapping has name wins;
// special reports whether that scope is a specials scope.
func (c *Context) Resolve(name string) (def *FunctionDefinition, special bool, ok bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if def, found := ctx.functions[name]; found {
			return def, ctx.specials, true
		}
	}
	return nil, false, false
}

// Parent exposes the lexical parent (nil at the chain root).
func (c *Context) Parent() *Context { return c.parent }

func (c *Context) Stack() *Stack { return &c.stack }

func (c *Context) IsSpecials() bool { return c.specials }

// Depth counts the scopes above c.
func (c *Context) Depth() int {
	depth := 0
	for ctx := c.parent; ctx != nil; ctx = ctx.parent {
		depth++
	}
	return depth
}

// Names returns the locally defined function names in sorted order.
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.functions))
	for name := range c.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VisibleNames returns every name resolvable from c, innermost definitions first.
func (c *Context) VisibleNames() []string {
	seen := make(map[string]struct{})
	var out []string
	for ctx := c; ctx != nil; ctx = ctx.parent {
		for _, name := range ctx.Names() {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Inspect renders the debug dump: the stack top first, the local definitions and,
// when deep is set, every parent scope indented beneath.
func (c *Context) Inspect(deep bool) string {
	var lines []string
	lines = append(lines, "current stack:")
	values := c.stack.Values()
	if len(values) == 0 {
		lines = append(lines, "    HEAD -> [ EMPTY ]")
	}
	for i := len(values) - 1; i >= 0; i-- {
		prefix := "            "
		if i == len(values)-1 {
			prefix = "    HEAD -> "
		}
		lines = append(lines, prefix+Inspect(values[i]))
	}
	lines = append(lines, "", "defined functions:")
	for _, name := range c.Names() {
		def := c.functions[name]
		lines = append(lines, fmt.Sprintf("    %s: { %s }", name, def))
	}
	lines = append(lines, "")
	if deep && c.parent != nil {
		lines = append(lines, "parent context:")
		for _, line := range strings.Split(c.parent.Inspect(true), "\n") {
			lines = append(lines, "    "+line)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
