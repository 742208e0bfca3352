package interp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDictPutGet(t *testing.T) {
	mgr := newManager()
	d := newDict()
	key := mgr.New(&symbolValue{name: "x", hash: stringHash("x")})
	val := mgr.New(intValue(42))
	require.Nil(t, d.put(key, "x", val))
	got, ok := d.get("x")
	require.True(t, ok)
	require.Same(t, val, got)
}

func TestDictPutReplacesAndReturnsOld(t *testing.T) {
	mgr := newManager()
	d := newDict()
	key := mgr.New(&symbolValue{name: "x", hash: stringHash("x")})
	v1 := mgr.New(intValue(1))
	v2 := mgr.New(intValue(2))
	d.put(key, "x", v1)
	old := d.put(key, "x", v2)
	require.Same(t, v1, old)
	got, _ := d.get("x")
	require.Same(t, v2, got)
}

func TestDictGetMissing(t *testing.T) {
	d := newDict()
	_, ok := d.get("nope")
	require.False(t, ok)
}

func TestDictGrowsAndRetainsAllEntries(t *testing.T) {
	mgr := newManager()
	d := newDict()
	const n = 500
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("sym-%d", i)
		key := mgr.New(&symbolValue{name: name, hash: stringHash(name)})
		val := mgr.New(intValue(i))
		d.put(key, name, val)
	}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("sym-%d", i)
		v, ok := d.get(name)
		require.True(t, ok, name)
		require.Equal(t, intValue(i), v.val)
	}
}

func TestDictHas(t *testing.T) {
	mgr := newManager()
	d := newDict()
	key := mgr.New(&symbolValue{name: "x", hash: stringHash("x")})
	require.False(t, d.has("x"))
	d.put(key, "x", mgr.New(intValue(1)))
	require.True(t, d.has("x"))
}

func TestDictEachVisitsEveryEntry(t *testing.T) {
	mgr := newManager()
	d := newDict()
	names := []string{"a", "b", "c"}
	for _, n := range names {
		key := mgr.New(&symbolValue{name: n, hash: stringHash(n)})
		d.put(key, n, mgr.New(intValue(1)))
	}
	seen := map[string]bool{}
	d.each(func(key, _ *Object) { seen[symbolName(key)] = true })
	for _, n := range names {
		require.True(t, seen[n])
	}
}
