package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"rpn/interpreter-go/pkg/driver"
	"rpn/interpreter-go/pkg/interpreter"
	"rpn/interpreter-go/pkg/lexer"
	"rpn/interpreter-go/pkg/runtime"
	"rpn/interpreter-go/pkg/token"
)

const (
	defaultPrompt  = "rpn> "
	continuePrompt = "...  "
	historyFile    = "history"
)

func runRepl(args []string) int {
	trace := false
	for _, arg := range args {
		switch arg {
		case "--trace":
			trace = true
		default:
			fmt.Fprintf(os.Stderr, "rpn repl does not take arguments (received %s)\n", strings.Join(args, " "))
			return 1
		}
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

	interp := newInterpreter(trace || (manifest != nil && manifest.Trace))
	if len(program.Preludes) > 0 {
		if err := queuePlan(interp, runPlan{preludes: program.Preludes}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := interp.Run(); err != nil {
			fmt.Fprintln(os.Stderr, interpreter.Describe(err))
			return 1
		}
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := replHistoryPath(manifest)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err != nil {
				return
			}
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	prompt := defaultPrompt
	if manifest != nil && manifest.Repl.Prompt != "" {
		prompt = manifest.Repl.Prompt
	}

	session := &replSession{interp: interp, out: os.Stdout, errOut: os.Stderr}
	for {
		code, ok := readBalanced(ln, prompt, continuePrompt)
		if !ok {
			fmt.Fprintln(os.Stdout)
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if session.handle(code) {
			return 0
		}
	}
}

// replHistoryPath prefers the manifest's history file, then $RPN_HOME/history.
func replHistoryPath(manifest *driver.Manifest) string {
	if manifest != nil && manifest.Repl.History != "" {
		if filepath.IsAbs(manifest.Repl.History) {
			return manifest.Repl.History
		}
		return filepath.Join(manifest.Dir(), manifest.Repl.History)
	}
	home, err := resolveRPNHome()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}

type replSession struct {
	interp *interpreter.Interpreter
	out    io.Writer
	errOut io.Writer
}

// handle runs one complete input and reports whether the session should end.
func (s *replSession) handle(code string) bool {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, ":") {
		switch strings.ToLower(trimmed) {
		case ":quit", ":q", ":exit":
			return true
		case ":state":
			fmt.Fprintln(s.out, s.interp.State().Current.Inspect(true))
		case ":stack":
			printStack(s.out, s.interp.State().Current)
		case ":help":
			fmt.Fprintln(s.out, "commands: :state  :stack  :quit")
		default:
			fmt.Fprintf(s.errOut, "unknown command %s. Type :help for commands.\n", trimmed)
		}
		return false
	}
	s.interp.AppendString(code)
	if err := s.interp.Run(); err != nil {
		fmt.Fprintln(s.errOut, interpreter.Describe(err))
	}
	return false
}

func readBalanced(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if inputComplete(b.String()) {
			return b.String(), true
		}
	}
}

// inputComplete reports whether src has no open blocks or unterminated strings,
// so the prompt can keep reading lines until the input is whole.
func inputComplete(src string) bool {
	lx := lexer.FromString("<repl>", src)
	depth := 0
	for {
		tok, err := lx.Next()
		if err != nil {
			return !errors.Is(err, runtime.ErrMalformedInput)
		}
		switch tok.Kind {
		case token.EOF:
			return depth <= 0
		case token.BraceStart:
			depth++
		case token.BraceEnd:
			depth--
		}
	}
}
