package interp

import (
	"bufio"
	"fmt"
)

// registerBuiltins installs every native procedure into scope.
func (interp *Interpreter) registerBuiltins(scope *Object) {
	natives := map[string]nativeFn{
		"car":        nativeCar,
		"cdr":        nativeCdr,
		"cons":       nativeCons,
		"set-car!":   nativeSetCar,
		"set-cdr!":   nativeSetCdr,
		"pair?":      nativePairP,
		"null?":      nativeNullP,
		"symbol?":    nativeSymbolP,
		"string?":    nativeStringP,
		"procedure?": nativeProcedureP,
		"boolean?":   nativeBooleanP,
		"list":       nativeList,
		"reverse":    nativeReverse,
		"fold":       nativeFold,
		"+":          nativeAdd,
		"-":          nativeSub,
		"*":          nativeMul,
		"/":          nativeDiv,
		"modulo":     nativeModulo,
		"=":          nativeNumEq,
		"<":          nativeLt,
		"eq?":        nativeEqP,
		"equal?":     nativeEqualP,
		"not":        nativeNot,
		"write":      nativeWrite,
		"display":    nativeDisplay,
		"newline":    nativeNewline,
		"read-char":  nativeReadChar,
		"open-input-file":  nativeOpenInputFile,
		"open-output-file": nativeOpenOutputFile,
		"close-port":       nativeClosePort,

		"string-length":  nativeStringLength,
		"string-ref":     nativeStringRef,
		"string-set!":    nativeStringSet,
		"string-copy":    nativeStringCopy,
		"string-append":  nativeStringAppend,
		"substring":      nativeSubstring,
		"string=?":       nativeStringEq,
		"string->list":   nativeStringToList,
		"list->string":   nativeListToString,
		"symbol->string": nativeSymbolToString,
		"string->symbol": nativeStringToSymbol,
	}
	for name, fn := range natives {
		sym := interp.symbols.wrap(name)
		nv := interp.mgr.New(&nativeValue{name: name, fn: fn})
		nv.Label(name)
		interp.bind(scope, sym, nv)
		interp.mgr.release(sym)
	}
}

func checkArgc(op string, args []*Object, n int) {
	if len(args) != n {
		fatalArity(op, n, len(args))
	}
}

func checkArgcRange(op string, args []*Object, min, max int) {
	if len(args) < min || len(args) > max {
		fatal(errArity, "%s: expected between %d and %d arguments, got %d", op, min, max, len(args))
	}
}

func asPair(op string, pos int, o *Object) *pairValue {
	pv, ok := o.val.(*pairValue)
	if !ok {
		fatalType(op, pos, KindPair, o)
	}
	return pv
}

func asInt(op string, pos int, o *Object) int64 {
	v, ok := o.val.(intValue)
	if !ok {
		fatalType(op, pos, KindInt, o)
	}
	return int64(v)
}

func asString(op string, pos int, o *Object) *stringValue {
	v, ok := o.val.(*stringValue)
	if !ok {
		fatalType(op, pos, KindString, o)
	}
	return v
}

func asChar(op string, pos int, o *Object) rune {
	v, ok := o.val.(charValue)
	if !ok {
		fatalType(op, pos, KindChar, o)
	}
	return rune(v)
}

func (interp *Interpreter) boolObj(b bool) *Object {
	if b {
		return interp.mgr.retain(interp.mgr.trueObj)
	}
	return interp.mgr.retain(interp.mgr.falseObj)
}

// --- pairs ---

func nativeCar(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("car", args, 1)
	pv := asPair("car", 1, args[0])
	return interp.mgr.retain(pv.car), nil
}

func nativeCdr(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("cdr", args, 1)
	pv := asPair("cdr", 1, args[0])
	return interp.mgr.retain(pv.cdr), nil
}

func nativeCons(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("cons", args, 2)
	return interp.mgr.New(&pairValue{car: interp.mgr.retain(args[0]), cdr: interp.mgr.retain(args[1])}), nil
}

func nativeSetCar(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("set-car!", args, 2)
	pv := asPair("set-car!", 1, args[0])
	pv.car = args[1]
	return interp.mgr.retain(interp.mgr.nilObj), nil
}

func nativeSetCdr(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("set-cdr!", args, 2)
	pv := asPair("set-cdr!", 1, args[0])
	pv.cdr = args[1]
	return interp.mgr.retain(interp.mgr.nilObj), nil
}

func nativePairP(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("pair?", args, 1)
	return interp.boolObj(isPair(args[0])), nil
}

func nativeNullP(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("null?", args, 1)
	return interp.boolObj(isNil(args[0])), nil
}

func nativeSymbolP(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("symbol?", args, 1)
	return interp.boolObj(isSymbol(args[0])), nil
}

func nativeStringP(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("string?", args, 1)
	_, ok := args[0].val.(*stringValue)
	return interp.boolObj(ok), nil
}

func nativeProcedureP(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("procedure?", args, 1)
	switch args[0].val.(type) {
	case *nativeValue, *lambdaValue:
		return interp.boolObj(true), nil
	default:
		return interp.boolObj(false), nil
	}
}

func nativeBooleanP(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("boolean?", args, 1)
	_, ok := args[0].val.(boolValue)
	return interp.boolObj(ok), nil
}

func nativeList(interp *Interpreter, args []*Object) (*Object, error) {
	result := interp.mgr.retain(interp.mgr.nilObj)
	for i := len(args) - 1; i >= 0; i-- {
		next := interp.mgr.New(&pairValue{car: interp.mgr.retain(args[i]), cdr: result})
		result = next
	}
	return result, nil
}

func nativeReverse(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("reverse", args, 1)
	result := interp.mgr.retain(interp.mgr.nilObj)
	cur := args[0]
	for {
		pv, ok := cur.val.(*pairValue)
		if !ok {
			break
		}
		result = interp.mgr.New(&pairValue{car: interp.mgr.retain(pv.car), cdr: result})
		cur = pv.cdr
	}
	return result, nil
}

// fold implements a left fold: (fold proc init list). proc is
// invoked eagerly, one element at a time, accumulating the result.
func nativeFold(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgcRange("fold", args, 3, 3)
	proc, acc, list := args[0], args[1], args[2]
	accHandle := interp.mgr.retain(acc)
	items := listToSlice(list)
	for _, item := range items {
		callArgs := []*Object{interp.mgr.retain(accHandle), interp.mgr.retain(item)}
		interp.mgr.release(accHandle)
		res, err := interp.applyNative(proc, callArgs)
		if err != nil {
			return nil, err
		}
		accHandle = res
	}
	return accHandle, nil
}

// applyNative forces proc's application to args to a final value from
// native code, where no trampoline loop is already driving evaluation.
func (interp *Interpreter) applyNative(proc *Object, args []*Object) (result *Object, err error) {
	defer recoverEval(&err)
	return interp.forcePanic(interp.applyLazy(proc, args)), nil
}

// --- arithmetic ---

func nativeAdd(interp *Interpreter, args []*Object) (*Object, error) {
	var sum int64
	for i, a := range args {
		sum += asInt("+", i+1, a)
	}
	return interp.mgr.New(intValue(sum)), nil
}

func nativeSub(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("-", args, 2)
	a, b := asInt("-", 1, args[0]), asInt("-", 2, args[1])
	return interp.mgr.New(intValue(a - b)), nil
}

func nativeMul(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("*", args, 2)
	a, b := asInt("*", 1, args[0]), asInt("*", 2, args[1])
	return interp.mgr.New(intValue(a * b)), nil
}

func nativeDiv(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("/", args, 2)
	a, b := asInt("/", 1, args[0]), asInt("/", 2, args[1])
	if b == 0 {
		fatal(errResource, "/: division by zero")
	}
	return interp.mgr.New(intValue(a / b)), nil
}

func nativeModulo(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("modulo", args, 2)
	a, b := asInt("modulo", 1, args[0]), asInt("modulo", 2, args[1])
	if b == 0 {
		fatal(errResource, "modulo: division by zero")
	}
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return interp.mgr.New(intValue(m)), nil
}

func nativeNumEq(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("=", args, 2)
	a, b := asInt("=", 1, args[0]), asInt("=", 2, args[1])
	return interp.boolObj(a == b), nil
}

func nativeLt(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("<", args, 2)
	a, b := asInt("<", 1, args[0]), asInt("<", 2, args[1])
	return interp.boolObj(a < b), nil
}

// --- identity / equality ---

func nativeEqP(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("eq?", args, 2)
	a, b := args[0], args[1]
	if a == b {
		return interp.boolObj(true), nil
	}
	switch av := a.val.(type) {
	case intValue:
		bv, ok := b.val.(intValue)
		return interp.boolObj(ok && av == bv), nil
	case boolValue:
		bv, ok := b.val.(boolValue)
		return interp.boolObj(ok && av == bv), nil
	case charValue:
		bv, ok := b.val.(charValue)
		return interp.boolObj(ok && av == bv), nil
	case nilValue:
		_, ok := b.val.(nilValue)
		return interp.boolObj(ok), nil
	case *symbolValue:
		bv, ok := b.val.(*symbolValue)
		return interp.boolObj(ok && av.name == bv.name), nil
	default:
		return interp.boolObj(false), nil
	}
}

func equalObj(a, b *Object) bool {
	if a == b {
		return true
	}
	switch av := a.val.(type) {
	case *pairValue:
		bv, ok := b.val.(*pairValue)
		return ok && equalObj(av.car, bv.car) && equalObj(av.cdr, bv.cdr)
	case *stringValue:
		bv, ok := b.val.(*stringValue)
		return ok && string(av.bytes) == string(bv.bytes)
	default:
		return equalLiteral(a, b) || (isSymbol(a) && isSymbol(b) && symbolName(a) == symbolName(b))
	}
}

func nativeEqualP(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("equal?", args, 2)
	return interp.boolObj(equalObj(args[0], args[1])), nil
}

func nativeNot(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("not", args, 1)
	return interp.boolObj(!isTruthy(args[0])), nil
}

// --- I/O ---

func (interp *Interpreter) resolvePort(args []*Object, idx int, fallback *Object) *Object {
	if idx < len(args) {
		if _, ok := args[idx].val.(*portValue); !ok {
			fatalType("port argument", idx+1, KindPort, args[idx])
		}
		return args[idx]
	}
	return fallback
}

func nativeWrite(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgcRange("write", args, 1, 2)
	port := interp.resolvePort(args, 1, interp.stdout)
	pv := port.val.(*portValue)
	args[0].WriteTo(pv.writer, true)
	return interp.mgr.retain(interp.mgr.nilObj), nil
}

func nativeDisplay(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgcRange("display", args, 1, 2)
	port := interp.resolvePort(args, 1, interp.stdout)
	pv := port.val.(*portValue)
	args[0].WriteTo(pv.writer, false)
	return interp.mgr.retain(interp.mgr.nilObj), nil
}

func nativeNewline(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgcRange("newline", args, 0, 1)
	port := interp.resolvePort(args, 0, interp.stdout)
	pv := port.val.(*portValue)
	fmt.Fprintln(pv.writer)
	return interp.mgr.retain(interp.mgr.nilObj), nil
}

func nativeReadChar(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgcRange("read-char", args, 0, 1)
	port := interp.resolvePort(args, 0, interp.stdin)
	pv := port.val.(*portValue)
	if pv.reader == nil {
		fatal(errType, "read-char: port is not open for input")
	}
	br, ok := pv.bufReader()
	if !ok {
		fatal(errInternal, "read-char: port has no buffered reader")
	}
	ch, _, err := br.ReadRune()
	if err != nil {
		return interp.boolObj(false), nil // conventional eof-object stand-in
	}
	return interp.mgr.New(charValue(ch)), nil
}

func (p *portValue) bufReader() (*bufio.Reader, bool) {
	if br, ok := p.reader.(*bufio.Reader); ok {
		return br, true
	}
	return nil, false
}

func nativeOpenInputFile(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("open-input-file", args, 1)
	name := asString("open-input-file", 1, args[0])
	return interp.openFile(string(name.bytes), true)
}

func nativeOpenOutputFile(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("open-output-file", args, 1)
	name := asString("open-output-file", 1, args[0])
	return interp.openFile(string(name.bytes), false)
}

func nativeClosePort(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("close-port", args, 1)
	pv, ok := args[0].val.(*portValue)
	if !ok {
		fatalType("close-port", 1, KindPort, args[0])
	}
	pv.Dispose()
	return interp.mgr.retain(interp.mgr.nilObj), nil
}

// --- strings ---

func nativeStringLength(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("string-length", args, 1)
	s := asString("string-length", 1, args[0])
	return interp.mgr.New(intValue(len(s.bytes))), nil
}

func nativeStringRef(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("string-ref", args, 2)
	s := asString("string-ref", 1, args[0])
	i := asInt("string-ref", 2, args[1])
	if i < 0 || int(i) >= len(s.bytes) {
		fatal(errResource, "string-ref: index %d out of bounds for length %d", i, len(s.bytes))
	}
	return interp.mgr.New(charValue(rune(s.bytes[i]))), nil
}

func nativeStringSet(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("string-set!", args, 3)
	s := asString("string-set!", 1, args[0])
	i := asInt("string-set!", 2, args[1])
	c := asChar("string-set!", 3, args[2])
	if i < 0 || int(i) >= len(s.bytes) {
		fatal(errResource, "string-set!: index %d out of bounds for length %d", i, len(s.bytes))
	}
	s.bytes[i] = byte(c)
	return interp.mgr.retain(interp.mgr.nilObj), nil
}

func nativeStringCopy(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("string-copy", args, 1)
	s := asString("string-copy", 1, args[0])
	cp := make([]byte, len(s.bytes))
	copy(cp, s.bytes)
	return interp.mgr.New(&stringValue{bytes: cp}), nil
}

func nativeStringAppend(interp *Interpreter, args []*Object) (*Object, error) {
	var buf []byte
	for i, a := range args {
		s := asString("string-append", i+1, a)
		buf = append(buf, s.bytes...)
	}
	return interp.mgr.New(&stringValue{bytes: buf}), nil
}

func nativeSubstring(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("substring", args, 3)
	s := asString("substring", 1, args[0])
	start := asInt("substring", 2, args[1])
	end := asInt("substring", 3, args[2])
	if start < 0 || end > int64(len(s.bytes)) || start > end {
		fatal(errResource, "substring: invalid range [%d, %d) for length %d", start, end, len(s.bytes))
	}
	cp := make([]byte, end-start)
	copy(cp, s.bytes[start:end])
	return interp.mgr.New(&stringValue{bytes: cp}), nil
}

func nativeStringEq(interp *Interpreter, args []*Object) (*Object, error) {
	if len(args) < 2 {
		fatal(errArity, "Expected at least 2 arguments for string=?, got %d", len(args))
	}
	first := asString("string=?", 1, args[0])
	for i, a := range args[1:] {
		s := asString("string=?", i+2, a)
		if string(s.bytes) != string(first.bytes) {
			return interp.boolObj(false), nil
		}
	}
	return interp.boolObj(true), nil
}

func nativeStringToList(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("string->list", args, 1)
	s := asString("string->list", 1, args[0])
	result := interp.mgr.retain(interp.mgr.nilObj)
	for i := len(s.bytes) - 1; i >= 0; i-- {
		ch := interp.mgr.New(charValue(rune(s.bytes[i])))
		result = interp.mgr.New(&pairValue{car: ch, cdr: result})
	}
	return result, nil
}

func nativeListToString(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("list->string", args, 1)
	var buf []byte
	for i, item := range listToSlice(args[0]) {
		buf = append(buf, byte(asChar("list->string", i+1, item)))
	}
	return interp.mgr.New(&stringValue{bytes: buf}), nil
}

func nativeSymbolToString(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("symbol->string", args, 1)
	if !isSymbol(args[0]) {
		fatalType("symbol->string", 1, KindSymbol, args[0])
	}
	return interp.mgr.New(&stringValue{bytes: []byte(symbolName(args[0]))}), nil
}

func nativeStringToSymbol(interp *Interpreter, args []*Object) (*Object, error) {
	checkArgc("string->symbol", args, 1)
	s := asString("string->symbol", 1, args[0])
	return interp.symbols.wrap(string(s.bytes)), nil
}
