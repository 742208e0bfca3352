package interp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMacroSimpleRewrite(t *testing.T) {
	src := `
		(define-syntax my-if
		  (syntax-rules ()
		    ((my-if c t e) (cond (c t) (else e)))))
		(my-if (< 1 2) "yes" "no")
	`
	require.Equal(t, `"yes"`, evalString(t, src).String())
}

func TestMacroEllipsisVariadic(t *testing.T) {
	src := `
		(define-syntax my-list
		  (syntax-rules ()
		    ((my-list e ...) (list e ...))))
		(my-list 1 2 3 4)
	`
	require.Equal(t, "(1 2 3 4)", evalString(t, src).String())
}

func TestMacroEllipsisWithFixedTail(t *testing.T) {
	src := `
		(define-syntax swap-first
		  (syntax-rules ()
		    ((swap-first a b rest ...) (list b a rest ...))))
		(swap-first 1 2 3 4)
	`
	require.Equal(t, "(2 1 3 4)", evalString(t, src).String())
}

func TestMacroLiteralKeyword(t *testing.T) {
	src := `
		(define-syntax my-cond
		  (syntax-rules (else)
		    ((my-cond (else e)) e)
		    ((my-cond (c e) rest ...) (cond (c e) (else (my-cond rest ...))))))
		(my-cond (#f 1) (else 2))
	`
	require.Equal(t, "2", evalString(t, src).String())
}

func TestBootstrapBeginViaSyntaxRules(t *testing.T) {
	src := `
		(define-syntax begin2
		  (syntax-rules ()
		    ((begin2 e ...) (let () e ...))))
		(begin2 1 2 3)
	`
	require.Equal(t, "3", evalString(t, src).String())
}
