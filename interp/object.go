package interp

import (
	"fmt"
	"io"
)

// Kind identifies the dynamic variant of an Object. It exists for
// diagnostics and fast dispatch decisions the evaluator makes directly
// (is this a pair? a symbol?); per-variant behavior itself lives on
// the Value each Object wraps, not in a central switch.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindChar
	KindString
	KindSymbol
	KindPair
	KindPort
	KindScope
	KindLambda
	KindThunk
	KindNative
	KindSyntax
	KindMacro
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindChar:
		return "character"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindPair:
		return "pair"
	case KindPort:
		return "port"
	case KindScope:
		return "scope"
	case KindLambda:
		return "lambda"
	case KindThunk:
		return "thunk"
	case KindNative:
		return "native"
	case KindSyntax:
		return "syntax"
	case KindMacro:
		return "macro"
	default:
		return "unknown"
	}
}

// Value is the capability every heap variant implements unconditionally:
// a kind tag and a writer. Every other behavior (dispose, invoke,
// mark-children) is an optional capability, type-asserted by the
// manager/evaluator at the point of use, so new variants can be added
// without touching a closed switch anywhere else in the package.
type Value interface {
	Kind() Kind
	WriteTo(w io.Writer, write bool)
}

// disposer releases non-GC resources (e.g. an open file descriptor)
// when an object is swept.
type disposer interface {
	Dispose()
}

// marker exposes direct referents to the garbage collector.
type marker interface {
	MarkChildren(mgr *Manager)
}

// invoker is implemented by native procedures only. Lambdas, syntax
// and macros do not implement it: the evaluator runs lambdas by way of
// thunks.
type invoker interface {
	Invoke(interp *Interpreter, args []*Object) (*Object, error)
}

// Object is the universal heap handle: a type descriptor (the Value),
// a stack-reference count and a mark state, per the data model.
type Object struct {
	val   Value
	refs  int32
	mark  markState
	label string // first name this value was bound under, if any

	// registry bookkeeping, owned by *Manager
	idx int // index into Manager.all, -1 once swept
}

func (o *Object) Kind() Kind  { return o.val.Kind() }
func (o *Object) Value() Value { return o.val }

// Label records the first symbol this object was bound to. Repeated
// calls are no-ops: only the first name sticks, matching the spec's
// "first name a value is bound under".
func (o *Object) Label(name string) {
	if o.label == "" {
		o.label = name
	}
}

func (o *Object) LabelName() string { return o.label }

// WriteTo renders the object in write form (quoted strings, #\name
// characters) or display form by delegating to its Value; pairValue
// walks list structure itself.
func (o *Object) WriteTo(w io.Writer, write bool) {
	o.val.WriteTo(w, write)
}

func (o *Object) String() string {
	var b bareBuffer
	o.WriteTo(&b, true)
	return string(b)
}

// bareBuffer is a minimal io.Writer over a byte slice, avoiding a
// bytes.Buffer import for the common "stringify an Object" path.
type bareBuffer []byte

func (b *bareBuffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

// --- Nil ---

type nilValue struct{}

func (nilValue) Kind() Kind { return KindNil }
func (nilValue) WriteTo(w io.Writer, _ bool) { fmt.Fprint(w, "()") }

// --- Boolean ---

type boolValue bool

func (b boolValue) Kind() Kind { return KindBool }
func (b boolValue) WriteTo(w io.Writer, _ bool) {
	if b {
		fmt.Fprint(w, "#t")
	} else {
		fmt.Fprint(w, "#f")
	}
}

// --- Integer ---

type intValue int64

func (v intValue) Kind() Kind { return KindInt }
func (v intValue) WriteTo(w io.Writer, _ bool) { fmt.Fprintf(w, "%d", int64(v)) }

// --- Character ---

type charValue rune

func (c charValue) Kind() Kind { return KindChar }
func (c charValue) WriteTo(w io.Writer, write bool) {
	if !write {
		fmt.Fprintf(w, "%c", rune(c))
		return
	}
	switch rune(c) {
	case '\n':
		fmt.Fprint(w, `#\newline`)
	case ' ':
		fmt.Fprint(w, `#\space`)
	default:
		fmt.Fprintf(w, `#\%c`, rune(c))
	}
}

// --- String (heap identity, element-mutable) ---

type stringValue struct {
	bytes []byte
}

func (s *stringValue) Kind() Kind { return KindString }
func (s *stringValue) WriteTo(w io.Writer, write bool) {
	if !write {
		w.Write(s.bytes)
		return
	}
	fmt.Fprint(w, `"`)
	for _, c := range s.bytes {
		switch c {
		case '"':
			fmt.Fprint(w, `\"`)
		case '\\':
			fmt.Fprint(w, `\\`)
		case '\n':
			fmt.Fprint(w, `\n`)
		default:
			w.Write([]byte{c})
		}
	}
	fmt.Fprint(w, `"`)
}

// --- Symbol (interned) ---

type symbolValue struct {
	name string
	hash uint64
}

func (s *symbolValue) Kind() Kind { return KindSymbol }
func (s *symbolValue) WriteTo(w io.Writer, _ bool) { fmt.Fprint(w, s.name) }

// --- Pair ---

type pairValue struct {
	car, cdr *Object
}

func (p *pairValue) Kind() Kind { return KindPair }

func (p *pairValue) MarkChildren(mgr *Manager) {
	mgr.mark(p.car)
	mgr.mark(p.cdr)
}

func (p *pairValue) WriteTo(w io.Writer, write bool) {
	fmt.Fprint(w, "(")
	cur := p
	first := true
	for {
		if !first {
			fmt.Fprint(w, " ")
		}
		first = false
		cur.car.WriteTo(w, write)
		switch cdr := cur.cdr.val.(type) {
		case nilValue:
			fmt.Fprint(w, ")")
			return
		case *pairValue:
			cur = cdr
		default:
			fmt.Fprint(w, " . ")
			cur.cdr.WriteTo(w, write)
			fmt.Fprint(w, ")")
			return
		}
	}
}

// --- Port ---

type portValue struct {
	name   string
	reader io.Reader
	writer io.Writer
	closer io.Closer
	std    bool // standard stream: Dispose is a no-op
}

func (p *portValue) Kind() Kind { return KindPort }
func (p *portValue) WriteTo(w io.Writer, _ bool) { fmt.Fprintf(w, "[port@%s]", p.name) }
func (p *portValue) Dispose() {
	if p.std || p.closer == nil {
		return
	}
	p.closer.Close()
}

// --- Scope ---

type scopeValue struct {
	binds  *dict
	parent *Object // another *Object of KindScope, or nil for the root
	global bool
}

func (s *scopeValue) Kind() Kind { return KindScope }
func (s *scopeValue) WriteTo(w io.Writer, _ bool) { fmt.Fprint(w, "[scope]") }

func (s *scopeValue) MarkChildren(mgr *Manager) {
	s.binds.each(func(_ *Object, v *Object) { mgr.mark(v) })
	if s.parent != nil {
		mgr.mark(s.parent)
	}
}

// --- Lambda ---

type lambdaValue struct {
	params   []*Object // symbols, in order
	variadic *Object   // symbol bound to the rest-list, or nil
	body     *Object   // list of body expressions (quoted code)
	scope    *Object   // captured lexical scope
}

func (l *lambdaValue) Kind() Kind { return KindLambda }

func (l *lambdaValue) MarkChildren(mgr *Manager) {
	for _, p := range l.params {
		mgr.mark(p)
	}
	if l.variadic != nil {
		mgr.mark(l.variadic)
	}
	mgr.mark(l.body)
	mgr.mark(l.scope)
}

func (l *lambdaValue) WriteTo(w io.Writer, write bool) {
	fmt.Fprint(w, "(lambda (")
	for i, p := range l.params {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		p.WriteTo(w, write)
	}
	if l.variadic != nil {
		if len(l.params) > 0 {
			fmt.Fprint(w, " . ")
		}
		l.variadic.WriteTo(w, write)
	}
	fmt.Fprint(w, ") ")
	l.body.WriteTo(w, write)
	fmt.Fprint(w, ")")
}

// --- Thunk (deferred call, the trampoline's unit of work) ---

type thunkValue struct {
	proc *Object // lambda
	args []*Object
}

func (t *thunkValue) Kind() Kind { return KindThunk }
func (t *thunkValue) WriteTo(w io.Writer, _ bool) { fmt.Fprint(w, "[thunk]") }

func (t *thunkValue) MarkChildren(mgr *Manager) {
	mgr.mark(t.proc)
	for _, a := range t.args {
		mgr.mark(a)
	}
}

// --- Native procedure ---

type nativeFn func(interp *Interpreter, args []*Object) (*Object, error)

type nativeValue struct {
	name string
	fn   nativeFn
}

func (n *nativeValue) Kind() Kind { return KindNative }
func (n *nativeValue) WriteTo(w io.Writer, _ bool) { fmt.Fprintf(w, "[native@%s]", n.name) }
func (n *nativeValue) Invoke(interp *Interpreter, args []*Object) (*Object, error) {
	return n.fn(interp, args)
}

// --- Syntax (special-form handler) ---

type syntaxFn func(interp *Interpreter, scope *Object, body *Object) (*Object, error)

type syntaxValue struct {
	name string
	fn   syntaxFn
}

func (s *syntaxValue) Kind() Kind { return KindSyntax }
func (s *syntaxValue) WriteTo(w io.Writer, _ bool) { fmt.Fprintf(w, "[syntax@%s]", s.name) }

// --- Macro ---

type macroRule struct {
	pattern  *Object // operand pattern, head keyword already stripped
	template *Object
}

type macroValue struct {
	literals []*Object // symbols treated as literals, not pattern variables
	rules    []macroRule
}

func (m *macroValue) Kind() Kind { return KindMacro }
func (m *macroValue) WriteTo(w io.Writer, _ bool) { fmt.Fprint(w, "[macro]") }

func (m *macroValue) MarkChildren(mgr *Manager) {
	for _, l := range m.literals {
		mgr.mark(l)
	}
	for _, r := range m.rules {
		mgr.mark(r.pattern)
		mgr.mark(r.template)
	}
}

// isTruthy implements the language's single false-ish rule: only
// #f is false, everything else (including 0, "", '()) is true-ish.
func isTruthy(o *Object) bool {
	b, ok := o.val.(boolValue)
	return !ok || bool(b)
}

func isNil(o *Object) bool {
	_, ok := o.val.(nilValue)
	return ok
}

func isPair(o *Object) bool {
	_, ok := o.val.(*pairValue)
	return ok
}

func isSymbol(o *Object) bool {
	_, ok := o.val.(*symbolValue)
	return ok
}
