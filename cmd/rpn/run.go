package main

import (
	"fmt"
	"io"
	"os"

	"rpn/interpreter-go/pkg/driver"
	"rpn/interpreter-go/pkg/interpreter"
	"rpn/interpreter-go/pkg/runtime"
)

// runPlan is everything one execution needs; watch mode replays it with a fresh interpreter.
type runPlan struct {
	manifest   *driver.Manifest
	preludes   []driver.Source
	fragments  []fragmentArg
	trace      bool
	printStack bool
}

func runEntry(args []string) int {
	opts, err := parseRunOptions(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		return 1
	}

	manifest, err := loadOptionalManifest(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	program, err := resolveProgram(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare program: %v\n", err)
		return 1
	}

	fragments := opts.fragments
	if len(fragments) == 0 {
		if program.Entry == nil {
			fmt.Fprintln(os.Stderr, "rpn run requires a source file, an -e fragment, or a manifest main entry")
			return 1
		}
		fragments = []fragmentArg{{text: program.Entry.Path}}
	}

	plan := runPlan{
		manifest:   manifest,
		preludes:   program.Preludes,
		fragments:  fragments,
		trace:      opts.trace || (manifest != nil && manifest.Trace),
		printStack: opts.printStack,
	}
	code := executePlan(plan)
	if !opts.watch {
		return code
	}
	return watchPlan(plan)
}

func newInterpreter(trace bool) *interpreter.Interpreter {
	interp := interpreter.New()
	interp.SetOutput(os.Stdout)
	if trace {
		interp.SetTrace(os.Stderr)
	}
	return interp
}

func executePlan(plan runPlan) int {
	interp := newInterpreter(plan.trace)
	if err := queuePlan(interp, plan); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	err := interp.Run()
	if plan.printStack {
		printStack(os.Stdout, interp.GlobalContext())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, interpreter.Describe(err))
		return 1
	}
	return 0
}

// queuePlan appends fragments last-first so the LIFO multiplexer runs preludes,
// then fragments, in the order they were given.
func queuePlan(interp *interpreter.Interpreter, plan runPlan) error {
	for idx := len(plan.fragments) - 1; idx >= 0; idx-- {
		frag := plan.fragments[idx]
		switch {
		case frag.inline:
			interp.AppendNamed(fmt.Sprintf("<-e %d>", idx+1), frag.text)
		case frag.text == stdinPath:
			interp.AppendReader("<stdin>", os.Stdin)
		default:
			if err := interp.AppendFile(frag.text); err != nil {
				return err
			}
		}
	}
	for idx := len(plan.preludes) - 1; idx >= 0; idx-- {
		if err := interp.AppendFile(plan.preludes[idx].Path); err != nil {
			return fmt.Errorf("prelude %s: %w", plan.preludes[idx].Name, err)
		}
	}
	return nil
}

// watchedFiles lists the on-disk sources of the plan, manifest included.
func (p runPlan) watchedFiles() []string {
	var files []string
	if p.manifest != nil && p.manifest.Path != "" {
		files = append(files, p.manifest.Path)
	}
	for _, src := range p.preludes {
		files = append(files, src.Path)
	}
	for _, frag := range p.fragments {
		if !frag.inline && frag.text != stdinPath {
			files = append(files, frag.text)
		}
	}
	return files
}

func printStack(w io.Writer, ctx *runtime.Context) {
	values := ctx.Stack().Values()
	if len(values) == 0 {
		fmt.Fprintln(w, "stack: [ EMPTY ]")
		return
	}
	fmt.Fprintln(w, "stack:")
	for idx := len(values) - 1; idx >= 0; idx-- {
		fmt.Fprintf(w, "  %s\n", runtime.Inspect(values[idx]))
	}
}
