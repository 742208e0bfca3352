package interp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinPairOps(t *testing.T) {
	require.Equal(t, "1", evalString(t, "(car (cons 1 2))").String())
	require.Equal(t, "2", evalString(t, "(cdr (cons 1 2))").String())
	require.Equal(t, "#t", evalString(t, "(pair? (cons 1 2))").String())
	require.Equal(t, "#f", evalString(t, "(pair? 1)").String())
	require.Equal(t, "#t", evalString(t, "(null? '())").String())
}

func TestBuiltinCarOfNonPairIsTypeError(t *testing.T) {
	i := New(Options{})
	_, err := i.Eval("(car 5)")
	require.Error(t, err)
	require.Contains(t, err.Error(), "type error")
}

func TestBuiltinArithmetic(t *testing.T) {
	require.Equal(t, "10", evalString(t, "(+ 1 2 3 4)").String())
	require.Equal(t, "-5", evalString(t, "(- 5 10)").String())
	require.Equal(t, "24", evalString(t, "(* (* 2 3) 4)").String())
	require.Equal(t, "3", evalString(t, "(/ 10 3)").String())
	require.Equal(t, "1", evalString(t, "(modulo 7 3)").String())
	require.Equal(t, "2", evalString(t, "(modulo -7 3)").String())
}

func TestBuiltinDivisionByZero(t *testing.T) {
	i := New(Options{})
	_, err := i.Eval("(/ 1 0)")
	require.Error(t, err)
	require.Contains(t, err.Error(), "resource error")
}

func TestBuiltinComparisons(t *testing.T) {
	require.Equal(t, "#t", evalString(t, "(< 1 2)").String())
	require.Equal(t, "#f", evalString(t, "(< 3 2)").String())
	require.Equal(t, "#t", evalString(t, "(= 2 2)").String())
}

func TestBuiltinEqAndEqual(t *testing.T) {
	require.Equal(t, "#t", evalString(t, "(eq? 'a 'a)").String())
	require.Equal(t, "#t", evalString(t, "(eq? 1 1)").String())
	require.Equal(t, "#f", evalString(t, `(eq? (list 1 2) (list 1 2))`).String())
	require.Equal(t, "#t", evalString(t, `(equal? (list 1 2) (list 1 2))`).String())
}

func TestBuiltinListAndReverse(t *testing.T) {
	require.Equal(t, "(1 2 3)", evalString(t, "(list 1 2 3)").String())
	require.Equal(t, "(3 2 1)", evalString(t, "(reverse (list 1 2 3))").String())
}

func TestBuiltinFold(t *testing.T) {
	require.Equal(t, "10", evalString(t, "(fold + 0 (list 1 2 3 4))").String())
}

func TestBuiltinStringOps(t *testing.T) {
	require.Equal(t, "5", evalString(t, `(string-length "hello")`).String())
	require.Equal(t, `#\h`, evalString(t, `(string-ref "hello" 0)`).String())
	require.Equal(t, `"hello world"`, evalString(t, `(string-append "hello" " " "world")`).String())
	require.Equal(t, `"ell"`, evalString(t, `(substring "hello" 1 4)`).String())
	require.Equal(t, "#t", evalString(t, `(string=? "a" "a")`).String())
	require.Equal(t, "#f", evalString(t, `(string=? "a" "b")`).String())
}

func TestBuiltinSymbolStringConversions(t *testing.T) {
	require.Equal(t, `"abc"`, evalString(t, "(symbol->string 'abc)").String())
	require.Equal(t, "abc", evalString(t, `(string->symbol "abc")`).String())
}

func TestBuiltinNotAndBooleanPredicate(t *testing.T) {
	require.Equal(t, "#t", evalString(t, "(not #f)").String())
	require.Equal(t, "#f", evalString(t, "(not 0)").String())
	require.Equal(t, "#t", evalString(t, "(boolean? #t)").String())
}
