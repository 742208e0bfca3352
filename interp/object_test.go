package interp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestObjectWriteVsDisplayStrings(t *testing.T) {
	mgr := newManager()
	s := mgr.New(&stringValue{bytes: []byte("hi\n")})
	require.Equal(t, `"hi\n"`, s.String())

	var buf bareBuffer
	s.WriteTo(&buf, false)
	require.Equal(t, "hi\n", string(buf))
}

func TestObjectCharacterWriteForm(t *testing.T) {
	mgr := newManager()
	nl := mgr.New(charValue('\n'))
	require.Equal(t, `#\newline`, nl.String())
	sp := mgr.New(charValue(' '))
	require.Equal(t, `#\space`, sp.String())
	a := mgr.New(charValue('a'))
	require.Equal(t, `#\a`, a.String())
}

func TestObjectPairWriteFormDottedAndProper(t *testing.T) {
	mgr := newManager()
	proper := mgr.New(&pairValue{car: mgr.New(intValue(1)), cdr: mgr.New(&pairValue{
		car: mgr.New(intValue(2)), cdr: mgr.nilObj,
	})})
	require.Equal(t, "(1 2)", proper.String())

	dotted := mgr.New(&pairValue{car: mgr.New(intValue(1)), cdr: mgr.New(intValue(2))})
	require.Equal(t, "(1 . 2)", dotted.String())
}

func TestObjectLabelStoresFirstNameOnly(t *testing.T) {
	mgr := newManager()
	o := mgr.New(intValue(1))
	o.Label("first")
	o.Label("second")
	require.Equal(t, "first", o.LabelName())
}

func TestKindStringsAreStable(t *testing.T) {
	cases := map[Kind]string{
		KindNil:    "nil",
		KindPair:   "pair",
		KindLambda: "lambda",
		KindMacro:  "macro",
	}
	for k, want := range cases {
		if diff := cmp.Diff(want, k.String()); diff != "" {
			t.Errorf("Kind.String() mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestIsTruthyOnlyFalseIsFalsy(t *testing.T) {
	mgr := newManager()
	require.False(t, isTruthy(mgr.falseObj))
	require.True(t, isTruthy(mgr.trueObj))
	require.True(t, isTruthy(mgr.nilObj))
	require.True(t, isTruthy(mgr.New(intValue(0))))
	require.True(t, isTruthy(mgr.New(&stringValue{})))
}
