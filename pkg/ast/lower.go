package ast

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/torrencem/bevel/pkg/clausedb"
	"github.com/torrencem/bevel/pkg/term"
)

// ReplFrameID marks variables that originated in a top-level query; only
// bindings tagged with this frame id survive into the printed answer.
const ReplFrameID uint32 = 1

// clauseFrameID is the fixed frame id clause-body lowering uses for every
// relation definition's own variables. Sharing one constant across all
// relations is safe: two stored clause templates are never unified
// against each other directly, only against a goal, and the solver
// renames a clause's variables into a fresh activation frame before a
// second clause could ever see them.
const clauseFrameID uint32 = 0

// lowerer carries the per-relation state clause-body lowering threads
// through recursive descent: the growing goal list and a counter for
// synthesizing wildcard (`<Free>`) and expression-temporary (`<Tmp>`)
// variable names.
type lowerer struct {
	frameID uint32
	fresh   int
	goals   []term.Term
}

func (l *lowerer) freshVar(prefix string) term.Variable {
	l.fresh++
	return term.Variable{Name: fmt.Sprintf("%s%d", prefix, l.fresh), FrameID: l.frameID}
}

func (l *lowerer) emit(g term.Term) {
	l.goals = append(l.goals, g)
}

// Lower converts a parsed Program into a clause database, flattening
// every relation body into a sequence of atomic goals.
func Lower(prog *Program) (*clausedb.Database, error) {
	db := clausedb.New()
	for _, rel := range prog.Relations {
		clause, err := lowerRelation(rel)
		if err != nil {
			return nil, errors.Wrapf(err, "relation %s", rel.Name)
		}
		if err := db.AddClause(clause); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// LowerQuery lowers a standalone statement list (the REPL/batch query
// form) the same way a clause body is lowered, except every introduced
// variable is tagged with ReplFrameID instead of a clause-local frame.
func LowerQuery(stmts []*Statement) ([]term.Term, error) {
	l := &lowerer{frameID: ReplFrameID}
	for _, s := range stmts {
		if err := lowerStatement(l, s, nil); err != nil {
			return nil, err
		}
	}
	return l.goals, nil
}

func lowerRelation(rel *Relation) (clausedb.Clause, error) {
	l := &lowerer{frameID: clauseFrameID}

	headArgs := make([]term.Term, 0, len(rel.Patterns)+1)
	for _, p := range rel.Patterns {
		headArgs = append(headArgs, lowerPattern(l, p))
	}

	if rel.Value != nil {
		headArgs = append(headArgs, lowerPattern(l, rel.Value))
		return clausedb.Clause{Head: term.Compound{Name: rel.Name, Args: headArgs}}, nil
	}

	if rel.Block == nil {
		// Bare fact like `color('red);`: the patterns are the entire
		// head, with no appended output argument and no body.
		return clausedb.Clause{Head: term.Compound{Name: rel.Name, Args: headArgs}}, nil
	}

	resultArity := firstRelateArity(rel.Block)
	resultVars := make([]term.Variable, resultArity)
	for i := range resultVars {
		resultVars[i] = term.Variable{Name: fmt.Sprintf("Result%d", i), FrameID: clauseFrameID}
		headArgs = append(headArgs, resultVars[i])
	}

	for _, stmt := range rel.Block.Statements {
		if err := lowerStatement(l, stmt, resultVars); err != nil {
			return clausedb.Clause{}, err
		}
	}

	return clausedb.Clause{Head: term.Compound{Name: rel.Name, Args: headArgs}, Body: optimizeClauseBody(l.goals)}, nil
}

// firstRelateArity reports the output arity of a block-bodied relation:
// the number of result expressions of its first `relate` statement.
// Consistency across the rest of the block is enforced by Check.
func firstRelateArity(b *Block) int {
	for _, s := range b.Statements {
		if s.Relate != nil {
			return len(s.Relate.Exprs)
		}
	}
	return 0
}

func lowerStatement(l *lowerer, s *Statement, resultVars []term.Variable) error {
	switch {
	case s.Relate != nil:
		for i, e := range s.Relate.Exprs {
			n := lowerExpr(l, e)
			if i >= len(resultVars) {
				return errors.Errorf("relate produces more results than the relation's declared output arity")
			}
			l.emit(term.Compound{Name: "=", Args: []term.Term{resultVars[i], n}})
		}
		return nil
	case s.Refute != nil:
		call := lowerCallGoal(l, s.Refute.Call)
		l.emit(term.Compound{Name: `\+`, Args: []term.Term{call}})
		return nil
	case s.TupleAssn != nil:
		args := make([]term.Term, 0, len(s.TupleAssn.Call.Args)+len(s.TupleAssn.Patterns))
		for _, a := range s.TupleAssn.Call.Args {
			args = append(args, lowerExpr(l, a))
		}
		for _, p := range s.TupleAssn.Patterns {
			args = append(args, lowerPattern(l, p))
		}
		l.emit(term.Compound{Name: s.TupleAssn.Call.Name, Args: args})
		return nil
	case s.Assign != nil:
		pat := lowerPattern(l, s.Assign.Pattern)
		n := lowerExpr(l, s.Assign.Expr)
		l.emit(term.Compound{Name: "=", Args: []term.Term{pat, n}})
		return nil
	case s.Comparison != nil:
		left := lowerExpr(l, s.Comparison.Left)
		right := lowerExpr(l, s.Comparison.Right)
		l.emit(term.Compound{Name: s.Comparison.Op, Args: []term.Term{left, right}})
		return nil
	case s.Call != nil:
		l.emit(lowerCallGoal(l, s.Call))
		return nil
	default:
		return errors.New("empty statement")
	}
}

func lowerCallGoal(l *lowerer, c *CallExpr) term.Term {
	args := make([]term.Term, len(c.Args))
	for i, a := range c.Args {
		args[i] = lowerExpr(l, a)
	}
	return term.Compound{Name: c.Name, Args: args}
}

// lowerPattern converts a surface Pattern into the Term it denotes:
// variables become Variable terms, wildcards become fresh `<Free>`
// variables, literals become Atom/Number, and list/cons patterns become
// List terms.
func lowerPattern(l *lowerer, p *Pattern) term.Term {
	switch {
	case p.Wildcard:
		return l.freshVar("<Free>")
	case p.Var != "":
		return term.Variable{Name: p.Var, FrameID: l.frameID}
	case p.Atom != "":
		return term.Atom(p.Atom[1:]) // strip the leading '
	case p.Number != nil:
		return term.NewInt(*p.Number)
	case p.List != nil:
		front := make([]term.Term, len(p.List))
		for i, e := range p.List {
			front[i] = lowerPattern(l, e)
		}
		return term.List{Front: front}
	case p.Cons != nil:
		return lowerConsPattern(l, p.Cons)
	default:
		return term.EmptyList()
	}
}

// lowerConsPattern lowers a `(h:t)` cons pattern: every element but the
// last becomes a front entry; the last becomes the
// tail if it is a variable or wildcard, or is spliced in if it is itself
// a list pattern, nesting as deep as the source wrote it.
func lowerConsPattern(l *lowerer, elems []*Pattern) term.Term {
	last := elems[len(elems)-1]
	front := make([]term.Term, 0, len(elems)-1)
	for _, e := range elems[:len(elems)-1] {
		front = append(front, lowerPattern(l, e))
	}

	switch {
	case last.Wildcard:
		v := l.freshVar("<Free>")
		return term.List{Front: front, Tail: &v}
	case last.Var != "":
		v := term.Variable{Name: last.Var, FrameID: l.frameID}
		return term.List{Front: front, Tail: &v}
	case last.List != nil:
		tailList := lowerPattern(l, last).(term.List)
		return term.List{Front: append(front, tailList.Front...), Tail: tailList.Tail}
	case last.Cons != nil:
		tailList := lowerConsPattern(l, last.Cons).(term.List)
		return term.List{Front: append(front, tailList.Front...), Tail: tailList.Tail}
	default:
		front = append(front, lowerPattern(l, last))
		return term.List{Front: front}
	}
}

// lowerExpr flattens an expression: every case returns a single result
// Variable (except a bare variable reference, returned as itself) after
// appending whatever goals are needed to compute it.
func lowerExpr(l *lowerer, e *Expr) term.Term {
	acc := lowerTerm(l, e.Left)
	for i, op := range e.Ops {
		rhs := lowerTerm(l, e.Rest[i])
		n := l.freshVar("<Tmp>")
		l.emit(term.Compound{Name: op, Args: []term.Term{acc, rhs, n}})
		acc = n
	}
	return acc
}

func lowerTerm(l *lowerer, t *Term) term.Term {
	acc := lowerFactor(l, t.Left)
	for i, op := range t.Ops {
		rhs := lowerFactor(l, t.Rest[i])
		n := l.freshVar("<Tmp>")
		l.emit(term.Compound{Name: op, Args: []term.Term{acc, rhs, n}})
		acc = n
	}
	return acc
}

func lowerFactor(l *lowerer, f *Factor) term.Term {
	switch {
	case f.Number != nil:
		val := *f.Number
		if f.Neg {
			val = -val
		}
		n := l.freshVar("<Tmp>")
		l.emit(term.Compound{Name: "=", Args: []term.Term{term.NewInt(val), n}})
		return n
	case f.Atom != "":
		n := l.freshVar("<Tmp>")
		l.emit(term.Compound{Name: "=", Args: []term.Term{term.Atom(f.Atom[1:]), n}})
		return n
	case f.Call != nil:
		args := make([]term.Term, len(f.Call.Args))
		for i, a := range f.Call.Args {
			args[i] = lowerExpr(l, a)
		}
		n := l.freshVar("<Tmp>")
		args = append(args, n)
		l.emit(term.Compound{Name: f.Call.Name, Args: args})
		return n
	case f.Var != "":
		return term.Variable{Name: f.Var, FrameID: l.frameID}
	case f.List != nil:
		front := make([]term.Term, len(f.List))
		for i, e := range f.List {
			front[i] = lowerExpr(l, e)
		}
		n := l.freshVar("<Tmp>")
		l.emit(term.Compound{Name: "=", Args: []term.Term{term.List{Front: front}, n}})
		return n
	case f.Cons != nil:
		return lowerConsExpr(l, f.Cons)
	case f.Paren != nil:
		return lowerExpr(l, f.Paren)
	default:
		n := l.freshVar("<Tmp>")
		l.emit(term.Compound{Name: "=", Args: []term.Term{term.EmptyList(), n}})
		return n
	}
}

// lowerConsExpr lowers a cons-literal expression: the last element
// becomes the list's tail if it denotes a bare variable, or is spliced
// in if it is itself a list literal.
func lowerConsExpr(l *lowerer, elems []*Expr) term.Term {
	last := elems[len(elems)-1]
	front := make([]term.Term, 0, len(elems)-1)
	for _, e := range elems[:len(elems)-1] {
		front = append(front, lowerExpr(l, e))
	}

	var tail *term.Variable
	var spliced []term.Term
	switch {
	case isBareVar(last):
		v := term.Variable{Name: last.Left.Left.Var, FrameID: l.frameID}
		tail = &v
	case isListLiteral(last):
		for _, e := range last.Left.Left.List {
			spliced = append(spliced, lowerExpr(l, e))
		}
	default:
		spliced = append(spliced, lowerExpr(l, last))
	}

	n := l.freshVar("<Tmp>")
	l.emit(term.Compound{Name: "=", Args: []term.Term{term.List{Front: append(front, spliced...), Tail: tail}, n}})
	return n
}

func isBareVar(e *Expr) bool {
	return len(e.Ops) == 0 && len(e.Left.Ops) == 0 && e.Left.Left.Var != "" && !e.Left.Left.Neg
}

func isListLiteral(e *Expr) bool {
	return len(e.Ops) == 0 && len(e.Left.Ops) == 0 && e.Left.Left.List != nil
}
