package interp

// maxArgs bounds the argument vector a single combination may build,
// per the evaluator's implementation-defined capacity limit.
const maxArgs = 4096

// evalLazy evaluates expr in scope and returns either a final value or
// a thunk (a deferred lambda application) the caller may force later.
// The caller owns exactly one stack-reference on the result.
func (interp *Interpreter) evalLazy(scope, expr *Object) (result *Object, err error) {
	defer recoverEval(&err)
	return interp.evalLazyPanic(scope, expr), nil
}

func (interp *Interpreter) evalLazyPanic(scope, expr *Object) *Object {
	switch expr.val.(type) {
	case *symbolValue:
		v, ok := interp.lookup(scope, expr)
		if !ok {
			fatal(errName, "undefined variable: %s", symbolName(expr))
		}
		return interp.mgr.retain(v)
	case *pairValue:
		return interp.evalCombination(scope, expr)
	default:
		return interp.mgr.retain(expr)
	}
}

// force drives a lazy result to a final value: while it is a thunk,
// invoke its lambda with its captured arguments, releasing the old
// handle before replacing it. This loop is the trampoline.
func (interp *Interpreter) force(v *Object) (result *Object, err error) {
	defer recoverEval(&err)
	return interp.forcePanic(v), nil
}

func (interp *Interpreter) forcePanic(v *Object) *Object {
	for {
		th, ok := v.val.(*thunkValue)
		if !ok {
			return v
		}
		next := interp.stepThunk(th)
		interp.mgr.release(v)
		v = next
	}
}

// evalEager evaluates and fully forces expr, for any context that is
// not in tail position (operator/operand positions, test expressions).
func (interp *Interpreter) evalEager(scope, expr *Object) (*Object, error) {
	v, err := interp.evalLazy(scope, expr)
	if err != nil {
		return nil, err
	}
	return interp.force(v)
}

func (interp *Interpreter) evalEagerPanic(scope, expr *Object) *Object {
	return interp.forcePanic(interp.evalLazyPanic(scope, expr))
}

// evalCombination implements the head-dispatch rule: evaluate head; if
// it is syntax, hand tail over unevaluated; if a macro, expand and
// re-evaluate; otherwise evaluate every operand left-to-right and
// apply.
func (interp *Interpreter) evalCombination(scope, expr *Object) *Object {
	pv := expr.val.(*pairValue)
	head := interp.evalEagerPanic(scope, pv.car)
	defer interp.mgr.release(head)

	switch hv := head.val.(type) {
	case *syntaxValue:
		res, err := hv.fn(interp, scope, pv.cdr)
		if err != nil {
			panic(toEvalError(err))
		}
		return res
	case *macroValue:
		expansion := interp.expandMacro(hv, pv.cdr)
		defer interp.mgr.release(expansion)
		return interp.evalLazyPanic(scope, expansion)
	default:
		args := interp.evalArgsPanic(scope, pv.cdr)
		return interp.applyLazy(head, args)
	}
}

func toEvalError(err error) *evalError {
	if ee, ok := err.(*evalError); ok {
		return ee
	}
	return newError(errInternal, "%v", err)
}

// evalArgsPanic evaluates each element of a Scheme list left-to-right,
// eagerly, producing an argument vector. Each element carries a fresh
// stack-reference the callee (native or thunk) takes ownership of.
func (interp *Interpreter) evalArgsPanic(scope, list *Object) []*Object {
	var args []*Object
	cur := list
	for !isNil(cur) {
		pv, ok := cur.val.(*pairValue)
		if !ok {
			fatal(errSyntax, "improper argument list")
		}
		if len(args) >= maxArgs {
			fatal(errInternal, "argument vector exceeds capacity")
		}
		args = append(args, interp.evalEagerPanic(scope, pv.car))
		cur = pv.cdr
	}
	return args
}

// applyLazy dispatches a call to a resolved callee. Native procedures
// run immediately; lambdas are packaged into a thunk for the
// trampoline. Either way, ownership of args is transferred into the
// call: the args are released once the call has consumed them,
// matching the rule that storing a handle (here: into an argument
// array a thunk owns, or the transient array a native reads) retires
// the stack reference that protected it en route.
func (interp *Interpreter) applyLazy(proc *Object, args []*Object) *Object {
	switch pv := proc.val.(type) {
	case *nativeValue:
		res, err := pv.fn(interp, args)
		for _, a := range args {
			interp.mgr.release(a)
		}
		if err != nil {
			panic(toEvalError(err))
		}
		return res
	case *lambdaValue:
		checkArity(proc.LabelName(), pv, len(args))
		th := interp.mgr.New(&thunkValue{proc: interp.mgr.retain(proc), args: args})
		for _, a := range args {
			interp.mgr.release(a)
		}
		return th
	default:
		fatal(errType, "attempt to call a non-procedure value of kind %s", proc.Kind())
		panic("unreachable")
	}
}

func checkArity(name string, lv *lambdaValue, got int) {
	n := len(lv.params)
	if lv.variadic == nil {
		if got != n {
			label := name
			if label == "" {
				label = "lambda"
			}
			fatalArity(label, n, got)
		}
		return
	}
	if got < n {
		label := name
		if label == "" {
			label = "lambda"
		}
		fatal(errArity, "Expected at least %d arguments for %s, got %d", n, label, got)
	}
}

// stepThunk performs one trampoline step: bind the thunk's arguments
// into a fresh child scope of the lambda's captured scope, then
// evaluate the body, returning its (possibly still-lazy) result.
func (interp *Interpreter) stepThunk(th *thunkValue) *Object {
	lv := th.proc.val.(*lambdaValue)
	childScope := interp.newScope(lv.scope)

	n := len(lv.params)
	for i, p := range lv.params {
		interp.bind(childScope, p, th.args[i])
	}
	if lv.variadic != nil {
		interp.bind(childScope, lv.variadic, interp.buildListPanic(th.args[n:]))
	}

	result := interp.evalBlockPanic(childScope, lv.body)
	interp.mgr.release(childScope)
	return result
}

// evalBlock evaluates every expression in a body list in textual
// order, forcing and releasing each intermediate result; the final
// expression is returned lazily so the enclosing trampoline may keep
// driving it without consuming host stack.
func (interp *Interpreter) evalBlockPanic(scope, body *Object) *Object {
	if isNil(body) {
		return interp.mgr.retain(interp.mgr.nilObj)
	}
	cur := body
	for {
		pv := cur.val.(*pairValue)
		if isNil(pv.cdr) {
			return interp.evalLazyPanic(scope, pv.car)
		}
		v := interp.evalEagerPanic(scope, pv.car)
		interp.mgr.release(v)
		cur = pv.cdr
	}
}

func (interp *Interpreter) evalBlock(scope, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	return interp.evalBlockPanic(scope, body), nil
}

// buildListPanic conses a Go slice into a Scheme list, consuming
// (transferring) ownership of every element.
func (interp *Interpreter) buildListPanic(items []*Object) *Object {
	result := interp.mgr.retain(interp.mgr.nilObj)
	for i := len(items) - 1; i >= 0; i-- {
		next := interp.cons(items[i], result)
		interp.mgr.release(result)
		result = next
	}
	return result
}

// cons allocates a new pair. Per the container-storage rule, it does
// not retain car/cdr: whatever stack-reference protected them before
// the call is the caller's to release once the pair holds them.
func (interp *Interpreter) cons(car, cdr *Object) *Object {
	return interp.mgr.New(&pairValue{car: car, cdr: cdr})
}

// listToSlice walks a proper list into a Go slice without consuming
// any references (a read-only traversal); used by builtins and macro
// matching.
func listToSlice(list *Object) []*Object {
	var out []*Object
	cur := list
	for {
		pv, ok := cur.val.(*pairValue)
		if !ok {
			return out
		}
		out = append(out, pv.car)
		cur = pv.cdr
	}
}
