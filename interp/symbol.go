package interp

// symbolName extracts the interned name from a symbol object, fatal if
// o is not a symbol. It is the one place scope code needs to reach
// into a symbol's payload.
func symbolName(o *Object) string {
	sv, ok := o.val.(*symbolValue)
	if !ok {
		fatal(errInternal, "expected symbol, got %s", o.Kind())
	}
	return sv.name
}

// symbolPool interns symbols by name, using the same open-addressed
// dict shape as scopes: wrap hashes the text, probes, and either
// returns the cached object (with a fresh stack-reference) or
// allocates, interns and returns a new one.
type symbolPool struct {
	mgr  *Manager
	dict *dict
}

func newSymbolPool(mgr *Manager) *symbolPool {
	return &symbolPool{mgr: mgr, dict: newDict()}
}

// wrap returns the interned symbol object for name, retaining it on
// behalf of the caller (matching the lifecycle rule that every handle
// returned to a creator starts with a live stack-reference).
func (p *symbolPool) wrap(name string) *Object {
	if existing, ok := p.dict.get(name); ok {
		return p.mgr.retain(existing)
	}
	sv := &symbolValue{name: name, hash: stringHash(name)}
	sym := p.mgr.New(sv)
	p.dict.put(sym, name, sym)
	p.mgr.retain(sym) // one ref for the pool's own permanent hold
	return sym
}
