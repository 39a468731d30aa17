package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAcceptsConsistentRelateArity(t *testing.T) {
	prog := parseProgram(t, `fib(0) ~ 1; fib(1) ~ 1; fib(x) { x > 1 relate fib(x-1) + fib(x-2) };`)
	assert.NoError(t, Check(prog))
}

func TestCheckRejectsInconsistentRelateArity(t *testing.T) {
	prog := parseProgram(t, `bad(x) { x > 0 relate x relate (x, x) };`)
	err := Check(prog)
	require.Error(t, err)
	checkErrs, ok := err.(CheckErrors)
	require.True(t, ok)
	assert.Len(t, checkErrs, 1)
}

func TestCheckRejectsArithmeticOnListLiteral(t *testing.T) {
	prog := parseProgram(t, `bad(x) { x ~ [1, 2] + 3 };`)
	err := Check(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arithmetic operator applied to a list literal")
}

func TestCheckAccumulatesAllErrors(t *testing.T) {
	prog := parseProgram(t, `bad(x) { x ~ [1] + 2 relate x relate (x, x) };`)
	err := Check(prog)
	require.Error(t, err)
	checkErrs, ok := err.(CheckErrors)
	require.True(t, ok)
	assert.Len(t, checkErrs, 2)
}
