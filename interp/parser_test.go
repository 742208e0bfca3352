package interp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, src string) *Object {
	t.Helper()
	i := New(Options{})
	p := newParser(i, strings.NewReader(src))
	obj, ok := p.ReadObject()
	require.True(t, ok)
	return obj
}

func TestParserAtoms(t *testing.T) {
	require.Equal(t, "42", parseOne(t, "42").String())
	require.Equal(t, "-7", parseOne(t, "-7").String())
	require.Equal(t, "#t", parseOne(t, "#t").String())
	require.Equal(t, "#f", parseOne(t, "#f").String())
	require.Equal(t, "abc", parseOne(t, "abc").String())
	require.Equal(t, `#\a`, parseOne(t, `#\a`).String())
	require.Equal(t, `#\newline`, parseOne(t, `#\newline`).String())
}

func TestParserList(t *testing.T) {
	require.Equal(t, "(1 2 3)", parseOne(t, "(1 2 3)").String())
	require.Equal(t, "()", parseOne(t, "()").String())
	require.Equal(t, "(1 . 2)", parseOne(t, "(1 . 2)").String())
	require.Equal(t, "(1 2 . 3)", parseOne(t, "(1 2 . 3)").String())
}

func TestParserNestedList(t *testing.T) {
	require.Equal(t, "((1 2) (3 4))", parseOne(t, "((1 2) (3 4))").String())
}

func TestParserQuote(t *testing.T) {
	require.Equal(t, "(quote x)", parseOne(t, "'x").String())
	require.Equal(t, "(quote (1 2))", parseOne(t, "'(1 2)").String())
}

func TestParserString(t *testing.T) {
	require.Equal(t, `"hello"`, parseOne(t, `"hello"`).String())
	require.Equal(t, `"a\nb"`, parseOne(t, `"a\nb"`).String())
}

func TestParserCommentsAndWhitespaceSkipped(t *testing.T) {
	src := "; a comment\n  (+ 1 2) ; trailing"
	require.Equal(t, "(+ 1 2)", parseOne(t, src).String())
}

func TestParserReadsMultipleTopLevelForms(t *testing.T) {
	i := New(Options{})
	p := newParser(i, strings.NewReader("1 2 3"))
	var got []string
	for {
		obj, ok := p.ReadObject()
		if !ok {
			break
		}
		got = append(got, obj.String())
	}
	require.Equal(t, []string{"1", "2", "3"}, got)
}

func TestParserUnmatchedCloseParenIsFatal(t *testing.T) {
	i := New(Options{})
	p := newParser(i, strings.NewReader(")"))
	require.Panics(t, func() { p.ReadObject() })
}
