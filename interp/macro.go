package interp

// macroBinding is a syntax-rules pattern variable's capture: either a
// single matched subexpression, or (under an ellipsis) the ordered
// slice of subexpressions matched across each repetition.
type macroBinding struct {
	multi bool
	one   *Object
	many  []*Object
}

const ellipsisName = "..."

// buildMacro parses a (syntax-rules (literal...) (pattern template)...)
// tail (the keyword itself already stripped) into a macroValue.
func (interp *Interpreter) buildMacro(tail *Object) *Object {
	items := listToSlice(tail)
	if len(items) < 1 {
		fatal(errSyntax, "syntax-rules: expected a literals list")
	}
	literals := listToSlice(items[0])
	var rules []macroRule
	for _, clause := range items[1:] {
		parts := listToSlice(clause)
		if len(parts) != 2 {
			fatal(errSyntax, "syntax-rules: malformed rule, expected (pattern template)")
		}
		patPair, ok := parts[0].val.(*pairValue)
		if !ok {
			fatal(errSyntax, "syntax-rules: pattern must begin with the macro keyword")
		}
		rules = append(rules, macroRule{pattern: patPair.cdr, template: parts[1]})
	}
	return interp.mgr.New(&macroValue{literals: literals, rules: rules})
}

// expandMacro finds the first rule whose pattern matches operands and
// instantiates its template against the captured bindings.
func (interp *Interpreter) expandMacro(hv *macroValue, operands *Object) *Object {
	for _, rule := range hv.rules {
		bindings := map[string]macroBinding{}
		if interp.matchPattern(rule.pattern, operands, hv.literals, bindings) {
			return interp.instantiate(rule.template, bindings)
		}
	}
	fatal(errMacro, "no matching syntax-rules clause for this form")
	panic("unreachable")
}

func isLiteralName(name string, literals []*Object) bool {
	for _, l := range literals {
		if symbolName(l) == name {
			return true
		}
	}
	return false
}

// properListItems walks a (possibly improper) list, returning its
// elements in order and the final tail (nilValue for a proper list).
func properListItems(o *Object) ([]*Object, *Object) {
	var items []*Object
	cur := o
	for {
		pv, ok := cur.val.(*pairValue)
		if !ok {
			return items, cur
		}
		items = append(items, pv.car)
		cur = pv.cdr
	}
}

// patternLength counts a pattern's fixed leading cons cells, ignoring
// any dotted or ellipsis tail; used to know how many trailing elements
// an ellipsis's following pattern needs reserved.
func patternLength(o *Object) int {
	n := 0
	cur := o
	for {
		pv, ok := cur.val.(*pairValue)
		if !ok {
			return n
		}
		n++
		cur = pv.cdr
	}
}

// patternVars collects every pattern-variable name reachable in a
// pattern (excluding "_", "...", and literals).
func patternVars(o *Object, literals []*Object) []string {
	var out []string
	var walk func(*Object)
	walk = func(p *Object) {
		switch v := p.val.(type) {
		case *symbolValue:
			if v.name == "_" || v.name == ellipsisName || isLiteralName(v.name, literals) {
				return
			}
			out = append(out, v.name)
		case *pairValue:
			walk(v.car)
			walk(v.cdr)
		}
	}
	walk(o)
	return out
}

func equalLiteral(a, b *Object) bool {
	switch av := a.val.(type) {
	case intValue:
		bv, ok := b.val.(intValue)
		return ok && av == bv
	case boolValue:
		bv, ok := b.val.(boolValue)
		return ok && av == bv
	case charValue:
		bv, ok := b.val.(charValue)
		return ok && av == bv
	case *stringValue:
		bv, ok := b.val.(*stringValue)
		return ok && string(av.bytes) == string(bv.bytes)
	case nilValue:
		_, ok := b.val.(nilValue)
		return ok
	default:
		return false
	}
}

// matchPattern attempts to match expr against pattern, recording
// pattern-variable captures into bindings. It reports whether the
// match succeeded; on failure bindings may hold partial state the
// caller must discard (each rule gets a fresh map).
func (interp *Interpreter) matchPattern(pattern, expr *Object, literals []*Object, bindings map[string]macroBinding) bool {
	switch pv := pattern.val.(type) {
	case *symbolValue:
		if pv.name == "_" {
			return true
		}
		if isLiteralName(pv.name, literals) {
			return isSymbol(expr) && symbolName(expr) == pv.name
		}
		bindings[pv.name] = macroBinding{one: expr}
		return true
	case nilValue:
		return isNil(expr)
	case *pairValue:
		if cdrPair, ok := pv.cdr.val.(*pairValue); ok && isSymbol(cdrPair.car) && symbolName(cdrPair.car) == ellipsisName {
			subPattern := pv.car
			restPattern := cdrPair.cdr
			restLen := patternLength(restPattern)

			exprItems, exprTail := properListItems(expr)
			if len(exprItems) < restLen {
				return false
			}
			nMatch := len(exprItems) - restLen

			varNames := patternVars(subPattern, literals)
			multi := make(map[string][]*Object, len(varNames))
			for _, n := range varNames {
				multi[n] = nil
			}
			for i := 0; i < nMatch; i++ {
				sub := map[string]macroBinding{}
				if !interp.matchPattern(subPattern, exprItems[i], literals, sub) {
					return false
				}
				for _, n := range varNames {
					multi[n] = append(multi[n], sub[n].one)
				}
			}
			for n, vals := range multi {
				bindings[n] = macroBinding{multi: true, many: vals}
			}

			rest := exprTail
			for i := len(exprItems) - 1; i >= nMatch; i-- {
				rest = interp.cons(exprItems[i], rest)
			}
			matched := interp.matchPattern(restPattern, rest, literals, bindings)
			releaseSpine(interp, rest, exprTail)
			return matched
		}

		exprPair, ok := expr.val.(*pairValue)
		if !ok {
			return false
		}
		if !interp.matchPattern(pv.car, exprPair.car, literals, bindings) {
			return false
		}
		return interp.matchPattern(pv.cdr, exprPair.cdr, literals, bindings)
	default:
		return equalLiteral(pattern, expr)
	}
}

// releaseSpine releases the synthetic cons cells matchPattern built to
// represent a trailing sublist, stopping at the original tail (which
// the caller does not own).
func releaseSpine(interp *Interpreter, built, stopAt *Object) {
	cur := built
	for cur != stopAt {
		pv, ok := cur.val.(*pairValue)
		if !ok {
			return
		}
		next := pv.cdr
		interp.mgr.release(cur)
		cur = next
	}
}

// instantiate rebuilds a template with every pattern variable replaced
// by its captured binding, expanding `sub ...` by repeating `sub` once
// per captured repetition. Every object instantiate returns or conses
// carries a fresh stack-reference.
func (interp *Interpreter) instantiate(template *Object, bindings map[string]macroBinding) *Object {
	switch tv := template.val.(type) {
	case *symbolValue:
		if b, ok := bindings[tv.name]; ok {
			if b.multi {
				fatal(errMacro, "pattern variable %s used without ellipsis", tv.name)
			}
			return interp.mgr.retain(b.one)
		}
		return interp.mgr.retain(template)
	case *pairValue:
		if cdrPair, ok := tv.cdr.val.(*pairValue); ok && isSymbol(cdrPair.car) && symbolName(cdrPair.car) == ellipsisName {
			sub := tv.car
			vars := templateEllipsisVars(sub, bindings)
			n := -1
			for _, name := range vars {
				if b := bindings[name]; b.multi {
					if n == -1 {
						n = len(b.many)
					} else if len(b.many) != n {
						fatal(errMacro, "mismatched ellipsis repetition counts")
					}
				}
			}
			if n == -1 {
				n = 0
			}
			rest := interp.instantiate(cdrPair.cdr, bindings)
			items := make([]*Object, n)
			for i := 0; i < n; i++ {
				items[i] = interp.instantiate(sub, narrowBindings(bindings, vars, i))
			}
			result := rest
			for i := n - 1; i >= 0; i-- {
				next := interp.cons(items[i], result)
				interp.mgr.release(result)
				result = next
			}
			return result
		}
		car := interp.instantiate(tv.car, bindings)
		cdr := interp.instantiate(tv.cdr, bindings)
		result := interp.cons(car, cdr)
		interp.mgr.release(car)
		interp.mgr.release(cdr)
		return result
	default:
		return interp.mgr.retain(template)
	}
}

func templateEllipsisVars(sub *Object, bindings map[string]macroBinding) []string {
	var out []string
	var walk func(*Object)
	walk = func(o *Object) {
		switch v := o.val.(type) {
		case *symbolValue:
			if _, ok := bindings[v.name]; ok {
				out = append(out, v.name)
			}
		case *pairValue:
			walk(v.car)
			walk(v.cdr)
		}
	}
	walk(sub)
	return out
}

// narrowBindings produces the bindings map to use for repetition index
// i: every multi-valued variable named in vars collapses to its i-th
// capture; everything else passes through unchanged.
func narrowBindings(bindings map[string]macroBinding, vars []string, i int) map[string]macroBinding {
	out := make(map[string]macroBinding, len(bindings))
	for k, v := range bindings {
		out[k] = v
	}
	for _, name := range vars {
		if b, ok := bindings[name]; ok && b.multi {
			out[name] = macroBinding{one: b.many[i]}
		}
	}
	return out
}
