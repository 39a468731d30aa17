package ast

import "github.com/torrencem/bevel/pkg/term"

// optimizeClauseBody eliminates trivial aliases from a lowered clause
// body: repeatedly find a goal of the form =(Var(a), Var(b)) where at
// least one side is lowering-introduced, fold it into a substitution
// (preferring to keep the user-named variable when exactly one side is a
// temporary), apply that substitution to the whole body, and drop goals
// that degenerated into =(x, x). Runs to a fixpoint.
func optimizeClauseBody(body []term.Term) []term.Term {
	for {
		changed := false
		for i, g := range body {
			c, ok := g.(term.Compound)
			if !ok || c.Name != "=" || len(c.Args) != 2 {
				continue
			}
			a, aok := c.Args[0].(term.Variable)
			b, bok := c.Args[1].(term.Variable)
			if !aok || !bok {
				continue
			}
			from, to, ok := chooseAliasDirection(a, b)
			if !ok {
				continue
			}
			body = append(append([]term.Term{}, body[:i]...), body[i+1:]...)
			body = substituteVarEverywhere(body, from, to)
			changed = true
			break
		}
		if !changed {
			return body
		}
	}
}

// chooseAliasDirection decides which variable to eliminate in favor of the
// other. At least one side must be lowering-introduced (otherwise the goal
// computes a user-visible binding, not a trivial alias); when only one side
// is a temporary, it is always the one eliminated, so user-named variables
// survive into the printed answer.
func chooseAliasDirection(a, b term.Variable) (from, to term.Variable, ok bool) {
	if a.Equal(b) {
		return a, b, true // =(x, x): drop with an identity substitution
	}
	aTmp := a.IsLoweringTemporary()
	bTmp := b.IsLoweringTemporary()
	switch {
	case aTmp && bTmp:
		return a, b, true
	case aTmp:
		return a, b, true
	case bTmp:
		return b, a, true
	default:
		return a, b, false
	}
}

func substituteVarEverywhere(goals []term.Term, from, to term.Variable) []term.Term {
	out := make([]term.Term, len(goals))
	for i, g := range goals {
		out[i] = replaceVar(g, from, to)
	}
	return out
}

func replaceVar(t term.Term, from, to term.Variable) term.Term {
	switch v := t.(type) {
	case term.Variable:
		if v.Equal(from) {
			return to
		}
		return v
	case term.Atom, term.Number:
		return v
	case term.List:
		front := make([]term.Term, len(v.Front))
		for i, e := range v.Front {
			front[i] = replaceVar(e, from, to)
		}
		tail := v.Tail
		if tail != nil && tail.Equal(from) {
			nt := to
			tail = &nt
		}
		return term.List{Front: front, Tail: tail}
	case term.Compound:
		args := make([]term.Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = replaceVar(a, from, to)
		}
		return term.Compound{Name: v.Name, Args: args}
	default:
		return t
	}
}
