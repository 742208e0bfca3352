package interp

// registerSpecialForms installs the built-in syntax handlers into a
// scope. Each handler receives (scope, body) with body already
// unevaluated, per the object model's invoke contract for syntax
// values.
func (interp *Interpreter) registerSpecialForms(scope *Object) {
	forms := map[string]syntaxFn{
		"quote":        sfQuote,
		"if":           sfIf,
		"define":       sfDefine,
		"set!":         sfSet,
		"lambda":       sfLambda,
		"let":          sfLet,
		"let*":         sfLetStar,
		"letrec":       sfLetrec,
		"cond":         sfCond,
		"and":          sfAnd,
		"or":           sfOr,
		"syntax-rules": sfSyntaxRules,
		"define-syntax": sfDefineSyntax,
	}
	for name, fn := range forms {
		sym := interp.symbols.wrap(name)
		sv := interp.mgr.New(&syntaxValue{name: name, fn: fn})
		interp.bind(scope, sym, sv)
		interp.mgr.release(sym)
	}
}

func bodyList(body *Object) []*Object { return listToSlice(body) }

func sfQuote(interp *Interpreter, scope *Object, body *Object) (*Object, error) {
	pv, ok := body.val.(*pairValue)
	if !ok {
		return nil, newError(errSyntax, "quote: expected one argument")
	}
	return interp.mgr.retain(pv.car), nil
}

func sfIf(interp *Interpreter, scope *Object, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	items := bodyList(body)
	if len(items) < 2 || len(items) > 3 {
		fatal(errSyntax, "if: expected (if test consequent [alternative])")
	}
	test := interp.evalEagerPanic(scope, items[0])
	truth := isTruthy(test)
	interp.mgr.release(test)
	if truth {
		return interp.evalLazyPanic(scope, items[1]), nil
	}
	if len(items) == 3 {
		return interp.evalLazyPanic(scope, items[2]), nil
	}
	return interp.mgr.retain(interp.mgr.nilObj), nil
}

// parseParams splits a lambda parameter spec into a fixed list and an
// optional variadic tail symbol: `(a b . rest)` or a bare symbol for
// an all-variadic lambda.
func parseParams(spec *Object) (fixed []*Object, variadic *Object) {
	if isSymbol(spec) {
		return nil, spec
	}
	cur := spec
	for {
		if isNil(cur) {
			return fixed, nil
		}
		pv, ok := cur.val.(*pairValue)
		if !ok {
			if isSymbol(cur) {
				return fixed, cur
			}
			fatal(errSyntax, "malformed parameter list")
		}
		if !isSymbol(pv.car) {
			fatal(errSyntax, "malformed parameter list: expected symbol")
		}
		fixed = append(fixed, pv.car)
		cur = pv.cdr
	}
}

func sfLambda(interp *Interpreter, scope *Object, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	pv, ok := body.val.(*pairValue)
	if !ok {
		fatal(errSyntax, "lambda: expected (lambda params body...)")
	}
	fixed, variadic := parseParams(pv.car)
	lv := &lambdaValue{params: fixed, variadic: variadic, body: pv.cdr, scope: scope}
	return interp.mgr.New(lv), nil
}

func sfDefine(interp *Interpreter, scope *Object, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	pv, ok := body.val.(*pairValue)
	if !ok {
		fatal(errSyntax, "define: expected (define name expr) or (define (name . params) body...)")
	}

	if target, ok := pv.car.val.(*pairValue); ok {
		// (define (name . params) body...) == (define name (lambda params body...))
		name := target.car
		fixed, variadic := parseParams(target.cdr)
		lv := interp.mgr.New(&lambdaValue{params: fixed, variadic: variadic, body: pv.cdr, scope: scope})
		lv.Label(symbolName(name))
		interp.bind(scope, name, lv)
		interp.mgr.release(lv)
		return interp.mgr.retain(interp.mgr.nilObj), nil
	}

	name, ok := pv.car.val.(*symbolValue)
	_ = name
	if !ok {
		fatal(errSyntax, "define: expected a symbol name")
	}
	exprItems := bodyList(pv.cdr)
	if len(exprItems) != 1 {
		fatal(errSyntax, "define: expected exactly one value expression")
	}
	value := interp.evalEagerPanic(scope, exprItems[0])
	value.Label(symbolName(pv.car))
	interp.bind(scope, pv.car, value)
	interp.mgr.release(value)
	return interp.mgr.retain(interp.mgr.nilObj), nil
}

func sfSet(interp *Interpreter, scope *Object, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	items := bodyList(body)
	if len(items) != 2 {
		fatal(errSyntax, "set!: expected (set! name expr)")
	}
	if !isSymbol(items[0]) {
		fatal(errSyntax, "set!: expected a symbol name")
	}
	value := interp.evalEagerPanic(scope, items[1])
	interp.assign(scope, items[0], value)
	interp.mgr.release(value)
	return interp.mgr.retain(interp.mgr.nilObj), nil
}

// bindingPairs reads a `((k e) (k e) ...)` binding-list into parallel
// key/expr slices.
func bindingPairs(list *Object) (keys, exprs []*Object) {
	for _, b := range listToSlice(list) {
		pv, ok := b.val.(*pairValue)
		if !ok || !isSymbol(pv.car) {
			fatal(errSyntax, "malformed binding")
		}
		rest := bodyList(pv.cdr)
		if len(rest) != 1 {
			fatal(errSyntax, "malformed binding: expected exactly one expression")
		}
		keys = append(keys, pv.car)
		exprs = append(exprs, rest[0])
	}
	return keys, exprs
}

func sfLet(interp *Interpreter, scope *Object, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	pv, ok := body.val.(*pairValue)
	if !ok {
		fatal(errSyntax, "let: expected (let (bindings...) body...)")
	}
	keys, exprs := bindingPairs(pv.car)
	values := make([]*Object, len(exprs))
	for i, e := range exprs {
		values[i] = interp.evalEagerPanic(scope, e)
	}
	child := interp.newScope(scope)
	for i, k := range keys {
		interp.bind(child, k, values[i])
		interp.mgr.release(values[i])
	}
	res := interp.evalBlockPanic(child, pv.cdr)
	interp.mgr.release(child)
	return res, nil
}

func sfLetStar(interp *Interpreter, scope *Object, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	pv, ok := body.val.(*pairValue)
	if !ok {
		fatal(errSyntax, "let*: expected (let* (bindings...) body...)")
	}
	keys, exprs := bindingPairs(pv.car)
	cur := scope
	var created []*Object
	for i, k := range keys {
		v := interp.evalEagerPanic(cur, exprs[i])
		child := interp.newScope(cur)
		interp.bind(child, k, v)
		interp.mgr.release(v)
		created = append(created, child)
		cur = child
	}
	if len(created) == 0 {
		cur = interp.newScope(scope)
		created = append(created, cur)
	}
	res := interp.evalBlockPanic(cur, pv.cdr)
	for _, c := range created {
		interp.mgr.release(c)
	}
	return res, nil
}

func sfLetrec(interp *Interpreter, scope *Object, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	pv, ok := body.val.(*pairValue)
	if !ok {
		fatal(errSyntax, "letrec: expected (letrec (bindings...) body...)")
	}
	keys, exprs := bindingPairs(pv.car)
	child := interp.newScope(scope)
	for _, k := range keys {
		interp.bind(child, k, interp.mgr.nilObj)
	}
	for i, k := range keys {
		v := interp.evalEagerPanic(child, exprs[i])
		interp.assign(child, k, v)
		interp.mgr.release(v)
	}
	res := interp.evalBlockPanic(child, pv.cdr)
	interp.mgr.release(child)
	return res, nil
}

func sfCond(interp *Interpreter, scope *Object, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	elseSym := interp.symbols.wrap("else")
	defer interp.mgr.release(elseSym)

	for _, clause := range bodyList(body) {
		pv, ok := clause.val.(*pairValue)
		if !ok {
			fatal(errSyntax, "cond: malformed clause")
		}
		isElse := isSymbol(pv.car) && symbolName(pv.car) == "else"
		if isElse {
			return interp.evalBlockPanic(scope, pv.cdr), nil
		}
		test := interp.evalEagerPanic(scope, pv.car)
		if isTruthy(test) {
			if isNil(pv.cdr) {
				return test, nil
			}
			interp.mgr.release(test)
			return interp.evalBlockPanic(scope, pv.cdr), nil
		}
		interp.mgr.release(test)
	}
	return interp.mgr.retain(interp.mgr.nilObj), nil
}

func sfAnd(interp *Interpreter, scope *Object, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	items := bodyList(body)
	if len(items) == 0 {
		return interp.mgr.retain(interp.mgr.trueObj), nil
	}
	for _, e := range items[:len(items)-1] {
		v := interp.evalEagerPanic(scope, e)
		if !isTruthy(v) {
			return v, nil
		}
		interp.mgr.release(v)
	}
	return interp.evalLazyPanic(scope, items[len(items)-1]), nil
}

func sfOr(interp *Interpreter, scope *Object, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	items := bodyList(body)
	if len(items) == 0 {
		return interp.mgr.retain(interp.mgr.falseObj), nil
	}
	for _, e := range items[:len(items)-1] {
		v := interp.evalEagerPanic(scope, e)
		if isTruthy(v) {
			return v, nil
		}
		interp.mgr.release(v)
	}
	return interp.evalLazyPanic(scope, items[len(items)-1]), nil
}

func sfSyntaxRules(interp *Interpreter, scope *Object, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	return interp.mgr.retain(interp.buildMacro(body)), nil
}

func sfDefineSyntax(interp *Interpreter, scope *Object, body *Object) (result *Object, err error) {
	defer recoverEval(&err)
	items := bodyList(body)
	if len(items) != 2 {
		fatal(errSyntax, "define-syntax: expected (define-syntax name (syntax-rules ...))")
	}
	if !isSymbol(items[0]) {
		fatal(errSyntax, "define-syntax: expected a symbol name")
	}
	rulesPair, ok := items[1].val.(*pairValue)
	if !ok || !isSymbol(rulesPair.car) || symbolName(rulesPair.car) != "syntax-rules" {
		fatal(errSyntax, "define-syntax: expected a syntax-rules form")
	}
	macro := interp.buildMacro(rulesPair.cdr)
	interp.bind(scope, items[0], macro)
	interp.mgr.release(macro)
	return interp.mgr.retain(interp.mgr.nilObj), nil
}
