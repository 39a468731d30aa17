package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torrencem/bevel/pkg/term"
)

func TestOptimizeDropsTrivialTemporaryAlias(t *testing.T) {
	user := term.Variable{Name: "x"}
	tmp := term.Variable{Name: "<Tmp>1"}
	body := []term.Term{
		term.Compound{Name: "=", Args: []term.Term{user, tmp}},
		term.Compound{Name: "print", Args: []term.Term{tmp}},
	}

	got := optimizeClauseBody(body)

	require.Len(t, got, 1)
	call := got[0].(term.Compound)
	assert.Equal(t, "print", call.Name)
	assert.Equal(t, user, call.Args[0])
}

func TestOptimizePreservesUserNamedVariables(t *testing.T) {
	a := term.Variable{Name: "x"}
	b := term.Variable{Name: "y"}
	body := []term.Term{
		term.Compound{Name: "=", Args: []term.Term{a, b}},
	}

	got := optimizeClauseBody(body)
	require.Len(t, got, 1, "neither side is a lowering temporary, so the alias is not trivial")
}

func TestOptimizeDropsIdentityEquation(t *testing.T) {
	x := term.Variable{Name: "<Free>1"}
	body := []term.Term{
		term.Compound{Name: "=", Args: []term.Term{x, x}},
	}
	got := optimizeClauseBody(body)
	assert.Empty(t, got)
}
