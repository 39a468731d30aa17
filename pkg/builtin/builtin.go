// Package builtin implements the foreign goal handlers consulted before
// the clause database on every solver step: unification, relational
// arithmetic, comparisons, structural equality, and print.
//
// Arithmetic builtins are relational rather than purely functional: each
// tries every combination of which argument is unbound before falling
// back to failure, and reports a typed GroundnessError when too few
// arguments are ground to determine an answer.
package builtin

import (
	"fmt"
	"io"

	"github.com/torrencem/bevel/pkg/term"
	"github.com/torrencem/bevel/pkg/unify"
)

// GroundnessError reports that an arithmetic builtin (+ - * / %) was
// called without enough ground (Number) arguments to determine an answer.
// Comparison builtins never report it: a non-Number argument simply fails.
// This is fatal: the solver driver aborts the whole query on it rather
// than treating it as an ordinary failure, so the CLI can print a clean
// diagnostic instead of silently reporting "no more answers".
type GroundnessError struct {
	Goal term.Compound
}

func (e *GroundnessError) Error() string {
	return fmt.Sprintf("insufficient ground arguments to %s/%d", e.Goal.Name, e.Goal.Arity())
}

// Func is a builtin goal handler: given the already-walked argument list of
// a Compound goal, it returns the unifier witnessing success, or
// (nil, nil) on an ordinary failure (which triggers backtracking), or a
// non-nil error for the fatal insufficient-ground-arguments case.
type Func func(goal term.Compound, out io.Writer) (*unify.Unifier, error)

// Registry maps a builtin's name to its handler. Bevel does not support
// overloading by arity: every registered name here has a single fixed or
// variadic arity, and the handlers index their arguments without checking
// the argument count.
type Registry map[string]Func

// Default returns the registry of every builtin this engine supports.
func Default() Registry {
	return Registry{
		"=":     eq,
		"+":     arith("+", func(a, b term.Rational) (term.Rational, bool) { return a.Add(b), true }, subtractInverse, subtractInverse),
		"-":     arith("-", func(a, b term.Rational) (term.Rational, bool) { return a.Sub(b), true }, addInverse, subFromInverse),
		"*":     arith("*", func(a, b term.Rational) (term.Rational, bool) { return a.Mul(b), true }, divInverse, divInverse),
		"/":     divBuiltin,
		"%":     modBuiltin,
		">":     cmp(func(c int) bool { return c > 0 }),
		"<":     cmp(func(c int) bool { return c < 0 }),
		"<=":    cmp(func(c int) bool { return c <= 0 }),
		">=":    cmp(func(c int) bool { return c >= 0 }),
		"==":    structEq,
		"!=":    structNeq,
		"print": printBuiltin,
	}
}

func asNumber(t term.Term) (term.Rational, bool) {
	n, ok := t.(term.Number)
	return term.Rational(n), ok
}

func isUnboundVar(t term.Term) bool {
	_, ok := t.(term.Variable)
	return ok
}

// eq implements "=": unify(a, b).
func eq(goal term.Compound, _ io.Writer) (*unify.Unifier, error) {
	u, ok := unify.ComputeMGU([]unify.Equation{{LHS: goal.Args[0], RHS: goal.Args[1]}})
	if !ok {
		return nil, nil
	}
	return u, nil
}

// forward computes C from A and B; the inverse functions compute the
// missing operand from the other two. For +,-,*: if exactly one of A,B,C
// is unbound, bind it; if all three are ground, verify; otherwise fail
// with insufficient-ground-arguments.
type forwardFn func(a, b term.Rational) (term.Rational, bool)

func subtractInverse(known, other term.Rational) (term.Rational, bool) { return known.Sub(other), true }
func addInverse(known, other term.Rational) (term.Rational, bool)      { return known.Add(other), true }
func subFromInverse(known, other term.Rational) (term.Rational, bool)  { return other.Sub(known), true }
func divInverse(known, other term.Rational) (term.Rational, bool)      { return known.Div(other) }

// arith builds a ternary relational-arithmetic builtin op(A,B,C) for +,-,*.
// invB computes B from (A,C); invA computes A from (B,C).
func arith(name string, fwd forwardFn, invA, invB forwardFn) Func {
	return func(goal term.Compound, _ io.Writer) (*unify.Unifier, error) {
		a, b, c := goal.Args[0], goal.Args[1], goal.Args[2]
		an, aok := asNumber(a)
		bn, bok := asNumber(b)
		cn, cok := asNumber(c)

		switch {
		case aok && bok && cok:
			r, _ := fwd(an, bn)
			if r.Equal(cn) {
				return unify.New(), nil
			}
			return nil, nil
		case aok && bok && isUnboundVar(c):
			r, _ := fwd(an, bn)
			return bindResult(c.(term.Variable), r), nil
		case aok && cok && isUnboundVar(b):
			r, ok := invB(cn, an)
			if !ok {
				return nil, nil
			}
			return bindResult(b.(term.Variable), r), nil
		case bok && cok && isUnboundVar(a):
			r, ok := invA(cn, bn)
			if !ok {
				return nil, nil
			}
			return bindResult(a.(term.Variable), r), nil
		default:
			return nil, &GroundnessError{Goal: goal}
		}
	}
}

func bindResult(v term.Variable, r term.Rational) *unify.Unifier {
	u := unify.New()
	u.Set(v, term.Number(r))
	return u
}

// divBuiltin implements "/" separately from arith because division by
// zero is a plain goal failure, not a clash or a groundness error.
func divBuiltin(goal term.Compound, _ io.Writer) (*unify.Unifier, error) {
	a, b, c := goal.Args[0], goal.Args[1], goal.Args[2]
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	cn, cok := asNumber(c)

	switch {
	case aok && bok && cok:
		r, ok := an.Div(bn)
		if !ok || !r.Equal(cn) {
			return nil, nil
		}
		return unify.New(), nil
	case aok && bok && isUnboundVar(c):
		r, ok := an.Div(bn)
		if !ok {
			return nil, nil
		}
		return bindResult(c.(term.Variable), r), nil
	case aok && cok && isUnboundVar(b):
		// a / B = c  =>  B = a / c
		r, ok := an.Div(cn)
		if !ok {
			return nil, nil
		}
		return bindResult(b.(term.Variable), r), nil
	case bok && cok && isUnboundVar(a):
		// A / b = c  =>  A = c * b
		if bn.Num == 0 {
			return nil, nil
		}
		return bindResult(a.(term.Variable), cn.Mul(bn)), nil
	default:
		return nil, &GroundnessError{Goal: goal}
	}
}

// modBuiltin implements "%": only the forward direction (C unknown given
// A,B) and the all-ground check are defined; a call whose A or B is not a
// Number, or whose C is neither a Number nor a variable, fails with
// insufficient-ground-arguments.
func modBuiltin(goal term.Compound, _ io.Writer) (*unify.Unifier, error) {
	a, b, c := goal.Args[0], goal.Args[1], goal.Args[2]
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	if !aok || !bok {
		return nil, &GroundnessError{Goal: goal}
	}
	r, ok := an.Mod(bn)
	if !ok {
		return nil, nil // division by zero or non-integer operands: goal failure
	}
	if cn, ok := asNumber(c); ok {
		if r.Equal(cn) {
			return unify.New(), nil
		}
		return nil, nil
	}
	if v, ok := c.(term.Variable); ok {
		return bindResult(v, r), nil
	}
	return nil, &GroundnessError{Goal: goal}
}

// cmp builds a numeric-ground comparison builtin (>,<,<=,>=): succeeds
// only when both args are Numbers and ok(Cmp(a,b)) holds.
func cmp(ok func(int) bool) Func {
	return func(goal term.Compound, _ io.Writer) (*unify.Unifier, error) {
		a, aok := asNumber(goal.Args[0])
		b, bok := asNumber(goal.Args[1])
		if !aok || !bok {
			return nil, nil
		}
		if ok(a.Cmp(b)) {
			return unify.New(), nil
		}
		return nil, nil
	}
}

// structEq implements "==": structural equality on Numbers, Atoms,
// fully-ground Lists (End tails only), and fully-ground Compounds (same
// name, arity, and equal args), requiring both sides fully ground; an
// operand containing any Variable fails without binding.
func structEq(goal term.Compound, _ io.Writer) (*unify.Unifier, error) {
	a, b := goal.Args[0], goal.Args[1]
	if !term.IsGround(a) || !term.IsGround(b) {
		return nil, nil
	}
	if term.StructuralEqual(a, b) {
		return unify.New(), nil
	}
	return nil, nil
}

// structNeq implements "!=": succeed when both args are Numbers and
// unequal.
func structNeq(goal term.Compound, _ io.Writer) (*unify.Unifier, error) {
	a, aok := asNumber(goal.Args[0])
	b, bok := asNumber(goal.Args[1])
	if !aok || !bok {
		return nil, nil
	}
	if !a.Equal(b) {
		return unify.New(), nil
	}
	return nil, nil
}

// printBuiltin implements the variadic print/_ builtin: write each
// argument separated by tabs, then a newline; always succeeds with the
// empty unifier.
func printBuiltin(goal term.Compound, out io.Writer) (*unify.Unifier, error) {
	for i, a := range goal.Args {
		if i > 0 {
			fmt.Fprint(out, "\t")
		}
		fmt.Fprint(out, a.String())
	}
	fmt.Fprintln(out)
	return unify.New(), nil
}
