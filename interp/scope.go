package interp

// newScope allocates a child scope object. parent may be nil only for
// the root scope.
func (interp *Interpreter) newScope(parent *Object) *Object {
	sv := &scopeValue{binds: newDict(), parent: parent}
	return interp.mgr.New(sv)
}

func asScope(o *Object) *scopeValue {
	sv, ok := o.val.(*scopeValue)
	if !ok {
		fatal(errInternal, "expected scope, got %s", o.Kind())
	}
	return sv
}

// bind inserts key -> value in this scope only. Rebinding an
// already-present key in the same scope is forbidden. The root scope
// additionally retains the value for its lifetime, since the root
// scope itself is part of the GC root set.
func (interp *Interpreter) bind(scope *Object, key *Object, value *Object) {
	sv := asScope(scope)
	name := symbolName(key)
	if sv.binds.has(name) {
		fatal(errName, "%s is already bound", name)
	}
	sv.binds.put(key, name, value)
	if sv.global {
		interp.mgr.retain(value)
	}
}

// lookup walks the parent chain and returns the bound value, or
// (nil, false) if the symbol is unbound anywhere in the chain.
func (interp *Interpreter) lookup(scope *Object, key *Object) (*Object, bool) {
	name := symbolName(key)
	for s := scope; s != nil; s = asScope(s).parent {
		if v, ok := asScope(s).binds.get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// assign walks the parent chain to find the scope owning key and
// updates the binding in place. It is fatal if the key is unbound
// anywhere in the chain. Root-scope retention is rebalanced: the new
// value is retained and the old one released when the mutated scope
// is the root.
func (interp *Interpreter) assign(scope *Object, key *Object, value *Object) {
	name := symbolName(key)
	for s := scope; s != nil; s = asScope(s).parent {
		sv := asScope(s)
		if old, ok := sv.binds.get(name); ok {
			sv.binds.put(key, name, value)
			if sv.global {
				interp.mgr.retain(value)
				interp.mgr.release(old)
			}
			return
		}
	}
	fatal(errName, "set!: unbound variable %s", name)
}
