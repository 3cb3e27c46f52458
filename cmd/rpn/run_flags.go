package main

import (
	"fmt"
	"strings"
)

// fragmentArg is one piece of source named on the command line, either inline (-e) or a file.
type fragmentArg struct {
	inline bool
	text   string
}

const stdinPath = "-"

type runOptions struct {
	trace      bool
	watch      bool
	printStack bool
	fragments  []fragmentArg
}

func parseRunOptions(args []string) (runOptions, error) {
	var opts runOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			for _, rest := range args[i+1:] {
				opts.fragments = append(opts.fragments, fragmentArg{text: rest})
			}
			break
		}
		switch {
		case arg == "--trace":
			opts.trace = true
		case arg == "--watch", arg == "-w":
			opts.watch = true
		case arg == "--print-stack":
			opts.printStack = true
		case arg == "-e", arg == "--eval":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s expects a source fragment", arg)
			}
			opts.fragments = append(opts.fragments, fragmentArg{inline: true, text: args[i+1]})
			i++
		case strings.HasPrefix(arg, "--eval="):
			opts.fragments = append(opts.fragments, fragmentArg{inline: true, text: strings.TrimPrefix(arg, "--eval=")})
		case strings.HasPrefix(arg, "-") && arg != "-":
			return opts, fmt.Errorf("unknown flag %s", arg)
		default:
			opts.fragments = append(opts.fragments, fragmentArg{text: arg})
		}
	}
	if opts.watch && !opts.hasFiles() {
		return opts, fmt.Errorf("--watch requires at least one file")
	}
	return opts, nil
}

func (o runOptions) hasFiles() bool {
	for _, frag := range o.fragments {
		if !frag.inline && frag.text != stdinPath {
			return true
		}
	}
	return false
}
