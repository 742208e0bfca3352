package interp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopeBindAndLookup(t *testing.T) {
	i := New(Options{})
	sym := i.symbols.wrap("x")
	val := i.mgr.New(intValue(10))
	child := i.newScope(i.root)
	i.bind(child, sym, val)

	got, ok := i.lookup(child, sym)
	require.True(t, ok)
	require.Same(t, val, got)
}

func TestScopeLookupWalksParentChain(t *testing.T) {
	i := New(Options{})
	sym := i.symbols.wrap("x")
	val := i.mgr.New(intValue(10))
	i.bind(i.root, sym, val)

	child := i.newScope(i.root)
	grandchild := i.newScope(child)

	got, ok := i.lookup(grandchild, sym)
	require.True(t, ok)
	require.Same(t, val, got)
}

func TestScopeLookupUnbound(t *testing.T) {
	i := New(Options{})
	sym := i.symbols.wrap("nowhere")
	_, ok := i.lookup(i.root, sym)
	require.False(t, ok)
}

func TestScopeRebindSameNamePanics(t *testing.T) {
	i := New(Options{})
	sym := i.symbols.wrap("x")
	child := i.newScope(i.root)
	i.bind(child, sym, i.mgr.New(intValue(1)))
	require.Panics(t, func() {
		i.bind(child, sym, i.mgr.New(intValue(2)))
	})
}

func TestScopeAssignUpdatesOwningScope(t *testing.T) {
	i := New(Options{})
	sym := i.symbols.wrap("x")
	i.bind(i.root, sym, i.mgr.New(intValue(1)))
	child := i.newScope(i.root)

	newVal := i.mgr.New(intValue(2))
	i.assign(child, sym, newVal)

	got, ok := i.lookup(i.root, sym)
	require.True(t, ok)
	require.Same(t, newVal, got)
}

func TestScopeAssignUnboundPanics(t *testing.T) {
	i := New(Options{})
	sym := i.symbols.wrap("nowhere")
	require.Panics(t, func() {
		i.assign(i.root, sym, i.mgr.New(intValue(1)))
	})
}
