// Command goscheme runs the Scheme interpreter: with file arguments it
// executes each in order; with none, it executes stdin as a script
// when stdin is not a terminal, or starts an interactive REPL when it
// is.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/go-scheme/goscheme/interp"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "goscheme [files...]",
		Short:         "A standalone Scheme interpreter",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args)
		},
	}
	return cmd
}

func run(files []string) error {
	it := interp.New(interp.Options{})

	path, ok := findStdlib()
	if !ok {
		return fmt.Errorf("stdlib.scm not found")
	}
	if _, err := it.EvalFile(path); err != nil {
		return fmt.Errorf("loading standard library: %w", err)
	}

	if len(files) > 0 {
		for _, f := range files {
			if _, err := it.EvalFile(f); err != nil {
				return err
			}
		}
		return nil
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return it.REPL(context.Background())
	}

	_, err := it.EvalReader(os.Stdin)
	return err
}

// findStdlib looks for stdlib.scm next to the running binary and in
// the current working directory, since the interpreter has no install
// layout of its own to anchor a fixed path.
func findStdlib() (string, bool) {
	candidates := []string{"stdlib.scm"}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "stdlib.scm"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, true
		}
	}
	return "", false
}
