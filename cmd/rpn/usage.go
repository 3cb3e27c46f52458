package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  rpn run [--trace] [--print-stack] [--watch] [-e <source>]... [file.rpn ...]")
	fmt.Fprintln(os.Stderr, "  rpn <file.rpn>")
	fmt.Fprintln(os.Stderr, "  rpn repl [--trace]")
	fmt.Fprintln(os.Stderr, "  rpn tokens <file.rpn>")
	fmt.Fprintln(os.Stderr, "  rpn deps install")
	fmt.Fprintln(os.Stderr, "  rpn deps update [prelude ...]")
}
