package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"rpn/interpreter-go/pkg/interpreter"
	"rpn/interpreter-go/pkg/lexer"
	"rpn/interpreter-go/pkg/token"
)

func runTokens(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "rpn tokens expects exactly one file")
		return 1
	}
	var src io.Reader
	name := args[0]
	if name == stdinPath {
		name = "<stdin>"
		src = os.Stdin
	} else {
		f, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open %s: %v\n", name, err)
			return 1
		}
		defer f.Close()
		src = f
	}
	if err := printTokens(os.Stdout, lexer.FromReader(name, src)); err != nil {
		fmt.Fprintln(os.Stderr, interpreter.Describe(err))
		return 1
	}
	return 0
}

// printTokens writes one "kind text line:col" row per token, stopping at EOF.
func printTokens(w io.Writer, lx *lexer.Lexer) error {
	for {
		tok, err := lx.Next()
		if err != nil {
			return err
		}
		if tok.Kind == token.EOF {
			return nil
		}
		text := tok.Text
		if tok.Kind == token.String {
			text = strconv.Quote(text)
		}
		fmt.Fprintf(w, "%s %s %d:%d\n", tok.Kind, text, tok.Pos.Line, tok.Pos.Column)
	}
}
