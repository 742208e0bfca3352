// Package interp implements a standalone Scheme interpreter: a reader,
// a trampolined tail-call-eliminating evaluator, a mark-and-sweep
// collector hybridized with stack-reference counting, and the
// language's special forms, macros and built-in procedures.
package interp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/chzyer/readline"
)

// Options configures a new Interpreter, mirroring the shape of the
// host tool's own options struct: zero-value Options is a usable
// interpreter wired to the process's standard streams.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Interpreter owns every piece of mutable state a Scheme program can
// observe or mutate: the heap manager, the symbol table, the global
// scope, and the three standard ports.
type Interpreter struct {
	mgr     *Manager
	symbols *symbolPool
	root    *Object // global scope

	stdin  *Object
	stdout *Object
	stderr *Object

	opts Options
}

// New constructs an interpreter with every special form and builtin
// procedure already bound in its global scope.
func New(opts Options) *Interpreter {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	mgr := newManager()
	interp := &Interpreter{
		mgr:     mgr,
		symbols: newSymbolPool(mgr),
		opts:    opts,
	}

	interp.root = mgr.alloc(&scopeValue{binds: newDict(), global: true})
	mgr.retain(interp.root) // the interpreter itself roots the global scope

	interp.stdin = interp.wrapPort("stdin", opts.Stdin, nil, true)
	interp.stdout = interp.wrapPort("stdout", nil, opts.Stdout, true)
	interp.stderr = interp.wrapPort("stderr", nil, opts.Stderr, true)
	mgr.retain(interp.stdin)
	mgr.retain(interp.stdout)
	mgr.retain(interp.stderr)

	interp.registerSpecialForms(interp.root)
	interp.registerBuiltins(interp.root)
	return interp
}

func (interp *Interpreter) wrapPort(name string, r io.Reader, w io.Writer, std bool) *Object {
	pv := &portValue{name: name, std: std, writer: w}
	if r != nil {
		pv.reader = bufio.NewReader(r)
	}
	return interp.mgr.New(pv)
}

// openFile opens name for reading or writing and wraps it in a port
// object, owning the *os.File as its Closer.
func (interp *Interpreter) openFile(name string, forRead bool) (result *Object, err error) {
	defer recoverEval(&err)
	if forRead {
		f, ferr := os.Open(name)
		if ferr != nil {
			fatal(errResource, "open-input-file: %v", ferr)
		}
		pv := &portValue{name: name, reader: bufio.NewReader(f), closer: f}
		return interp.mgr.New(pv), nil
	}
	f, ferr := os.Create(name)
	if ferr != nil {
		fatal(errResource, "open-output-file: %v", ferr)
	}
	pv := &portValue{name: name, writer: f, closer: f}
	return interp.mgr.New(pv), nil
}

// Eval parses and evaluates every top-level form in src against the
// global scope, returning the last form's value.
func (interp *Interpreter) Eval(src string) (result *Object, err error) {
	defer recoverEval(&err)
	p := newParser(interp, stringsReader(src))
	var last *Object
	for {
		form, ok := p.ReadObject()
		if !ok {
			break
		}
		if last != nil {
			interp.mgr.release(last)
		}
		last = interp.evalEagerPanic(interp.root, form)
		interp.mgr.release(form)
	}
	if last == nil {
		return interp.mgr.retain(interp.mgr.nilObj), nil
	}
	return last, nil
}

// EvalFile reads and evaluates every form in the named file in order.
func (interp *Interpreter) EvalFile(path string) (*Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(errResource, err, "reading %s", path)
	}
	return interp.Eval(string(data))
}

// EvalReader evaluates every form read from r, useful for piping a
// script through stdin.
func (interp *Interpreter) EvalReader(r io.Reader) (result *Object, err error) {
	defer recoverEval(&err)
	p := newParser(interp, r)
	var last *Object
	for {
		form, ok := p.ReadObject()
		if !ok {
			break
		}
		if last != nil {
			interp.mgr.release(last)
		}
		last = interp.evalEagerPanic(interp.root, form)
		interp.mgr.release(form)
	}
	if last == nil {
		return interp.mgr.retain(interp.mgr.nilObj), nil
	}
	return last, nil
}

type stringsReaderT struct {
	s   string
	pos int
}

func stringsReader(s string) io.Reader { return &stringsReaderT{s: s} }

func (r *stringsReaderT) Read(p []byte) (int, error) {
	if r.pos >= len(r.s) {
		return 0, io.EOF
	}
	n := copy(p, r.s[r.pos:])
	r.pos += n
	return n, nil
}

// REPL runs an interactive read-eval-print loop over a readline
// session, one line per evaluation. It stops at end of input (printing
// "bye"), on a read error, or when ctx is cancelled; an interrupt
// discards the current line and the loop continues.
func (interp *Interpreter) REPL(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigCh:
			fmt.Fprintln(interp.opts.Stderr, "\ninterrupted")
			continue
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(interp.opts.Stdout, "bye")
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		result, evalErr := interp.Eval(line)
		if evalErr != nil {
			fmt.Fprintln(interp.opts.Stderr, evalErr)
			continue
		}
		fmt.Fprintln(interp.opts.Stdout, result.String())
		interp.mgr.release(result)
	}
}

// Collect forces a garbage-collection cycle; exposed for tests and for
// any (collect-garbage) builtin a bootstrap library wires up.
func (interp *Interpreter) Collect() { interp.mgr.Collect() }

// ObjectCount reports the number of live heap objects, for tests and
// diagnostics.
func (interp *Interpreter) ObjectCount() int { return interp.mgr.Count() }
