package ast

import "github.com/pkg/errors"

// CheckErrors collects every static-check failure found in a program so the
// CLI can report all of them at once rather than stopping at the first.
type CheckErrors []error

func (c CheckErrors) Error() string {
	s := ""
	for i, e := range c {
		if i > 0 {
			s += "; "
		}
		s += e.Error()
	}
	return s
}

// Check runs two static checks a complete front end needs beyond the
// solver's own scope: arity consistency among a relation's `relate`
// statements, and rejection of arithmetic applied directly to a list
// literal. It returns nil, or a non-nil CheckErrors holding every
// violation found, in the same accumulate-and-report-all style both
// passes share.
func Check(prog *Program) error {
	var errs CheckErrors
	for _, rel := range prog.Relations {
		if rel.Block == nil {
			continue
		}
		if err := checkRelateArity(rel); err != nil {
			errs = append(errs, err)
		}
		for _, s := range rel.Block.Statements {
			checkStatementArithmetic(rel.Name, s, &errs)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// checkRelateArity enforces that every `relate` statement in one block
// produces the same number of results as the first.
func checkRelateArity(rel *Relation) error {
	want := -1
	for _, s := range rel.Block.Statements {
		if s.Relate == nil {
			continue
		}
		got := len(s.Relate.Exprs)
		if want == -1 {
			want = got
			continue
		}
		if got != want {
			return errors.Errorf("relation %s: relate produces %d result(s) here but %d elsewhere in the same block", rel.Name, got, want)
		}
	}
	return nil
}

// checkStatementArithmetic rejects arithmetic operators applied directly to
// a list literal operand, e.g. `[1,2] + 3`. A list used as a plain value (passed to a
// call, compared, or assigned) is unaffected; only `+ - * %` chains rooted
// in a list literal operand are flagged. `/` is division and participates
// in the same chain grammar, so it is checked identically.
func checkStatementArithmetic(relName string, s *Statement, errs *CheckErrors) {
	switch {
	case s.Assign != nil:
		checkExprArithmetic(relName, s.Assign.Expr, errs)
	case s.Comparison != nil:
		checkExprArithmetic(relName, s.Comparison.Left, errs)
		checkExprArithmetic(relName, s.Comparison.Right, errs)
	case s.Relate != nil:
		for _, e := range s.Relate.Exprs {
			checkExprArithmetic(relName, e, errs)
		}
	case s.TupleAssn != nil:
		for _, a := range s.TupleAssn.Call.Args {
			checkExprArithmetic(relName, a, errs)
		}
	case s.Call != nil:
		for _, a := range s.Call.Args {
			checkExprArithmetic(relName, a, errs)
		}
	case s.Refute != nil:
		for _, a := range s.Refute.Call.Args {
			checkExprArithmetic(relName, a, errs)
		}
	}
}

func checkExprArithmetic(relName string, e *Expr, errs *CheckErrors) {
	if e == nil {
		return
	}
	if len(e.Ops) > 0 && isListFactor(e.Left) {
		*errs = append(*errs, errors.Errorf("relation %s: arithmetic operator applied to a list literal", relName))
	}
	checkTermArithmetic(relName, e.Left, errs)
	for _, t := range e.Rest {
		checkTermArithmetic(relName, t, errs)
	}
}

func checkTermArithmetic(relName string, t *Term, errs *CheckErrors) {
	if t == nil {
		return
	}
	if len(t.Ops) > 0 && isListFactorLiteral(t.Left) {
		*errs = append(*errs, errors.Errorf("relation %s: arithmetic operator applied to a list literal", relName))
	}
	checkFactorArithmetic(relName, t.Left, errs)
	for _, f := range t.Rest {
		checkFactorArithmetic(relName, f, errs)
	}
}

func checkFactorArithmetic(relName string, f *Factor, errs *CheckErrors) {
	if f == nil {
		return
	}
	if f.Call != nil {
		for _, a := range f.Call.Args {
			checkExprArithmetic(relName, a, errs)
		}
	}
	if f.Paren != nil {
		checkExprArithmetic(relName, f.Paren, errs)
	}
	for _, e := range f.List {
		checkExprArithmetic(relName, e, errs)
	}
	for _, e := range f.Cons {
		checkExprArithmetic(relName, e, errs)
	}
}

func isListFactor(t *Term) bool {
	return t != nil && len(t.Ops) == 0 && t.Left != nil && t.Left.List != nil
}

func isListFactorLiteral(f *Factor) bool {
	return f != nil && f.List != nil
}
