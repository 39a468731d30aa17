package unify

import (
	"testing"

	"github.com/torrencem/bevel/pkg/term"
)

func v(name string) term.Variable { return term.Variable{Name: name} }

func TestUnifyVariableWithAtom(t *testing.T) {
	x := v("X")
	u, ok := ComputeMGU([]Equation{{LHS: x, RHS: term.Atom("a")}})
	if !ok {
		t.Fatal("X = a should unify")
	}
	got, bound := u.Get(x)
	if !bound || got != term.Atom("a") {
		t.Errorf("X should be bound to a, got %v", got)
	}
}

func TestUnifyCompoundMatchingArity(t *testing.T) {
	x := v("X")
	lhs := term.Compound{Name: "f", Args: []term.Term{x, term.Atom("b")}}
	rhs := term.Compound{Name: "f", Args: []term.Term{term.Atom("a"), term.Atom("b")}}
	u, ok := ComputeMGU([]Equation{{LHS: lhs, RHS: rhs}})
	if !ok {
		t.Fatal("f(X,b) = f(a,b) should unify")
	}
	got, _ := u.Get(x)
	if got != term.Atom("a") {
		t.Errorf("X should be bound to a, got %v", got)
	}
}

func TestUnifyCompoundArityMismatchFails(t *testing.T) {
	lhs := term.Compound{Name: "f", Args: []term.Term{term.Atom("a")}}
	rhs := term.Compound{Name: "f", Args: []term.Term{term.Atom("a"), term.Atom("b")}}
	if _, ok := ComputeMGU([]Equation{{LHS: lhs, RHS: rhs}}); ok {
		t.Fatal("f/1 and f/2 should clash")
	}
}

func TestUnifyCompoundNameMismatchFails(t *testing.T) {
	lhs := term.Compound{Name: "f", Args: []term.Term{term.Atom("a")}}
	rhs := term.Compound{Name: "g", Args: []term.Term{term.Atom("a")}}
	if _, ok := ComputeMGU([]Equation{{LHS: lhs, RHS: rhs}}); ok {
		t.Fatal("f/1 and g/1 should clash")
	}
}

func TestEmptyListUnifiesWithOpenListIffTailIsEmpty(t *testing.T) {
	tail := v("T")
	lhs := term.List{}
	rhs := term.List{Tail: &tail}
	u, ok := ComputeMGU([]Equation{{LHS: lhs, RHS: rhs}})
	if !ok {
		t.Fatal("[] should unify with [|T]")
	}
	got, bound := u.Get(tail)
	if !bound {
		t.Fatal("T should be bound")
	}
	gotList, isList := got.(term.List)
	if !isList || len(gotList.Front) != 0 || gotList.Tail != nil {
		t.Errorf("T should be bound to the empty list, got %v", got)
	}
}

func TestConsPrefixUnifiesRemainderIntoTail(t *testing.T) {
	tail := v("T")
	lhs := term.List{Front: []term.Term{term.Atom("a"), term.Atom("b")}, Tail: &tail}
	rhs := term.List{Front: []term.Term{term.Atom("a"), term.Atom("b"), term.Atom("c"), term.Atom("d")}}
	u, ok := ComputeMGU([]Equation{{LHS: lhs, RHS: rhs}})
	if !ok {
		t.Fatal("[a,b|T] should unify with [a,b,c,d]")
	}
	got, _ := u.Get(tail)
	want := term.List{Front: []term.Term{term.Atom("c"), term.Atom("d")}}
	if !term.StructuralEqual(got, want) {
		t.Errorf("T should be bound to [c,d], got %v", got)
	}
}

func TestListLengthMismatchNoTailsClash(t *testing.T) {
	lhs := term.List{Front: []term.Term{term.Atom("a")}}
	rhs := term.List{Front: []term.Term{term.Atom("a"), term.Atom("b")}}
	if _, ok := ComputeMGU([]Equation{{LHS: lhs, RHS: rhs}}); ok {
		t.Fatal("proper lists of different length should clash")
	}
}

func TestSolveChasesVariableChain(t *testing.T) {
	x, y, z := v("X"), v("Y"), v("Z")
	u, ok := ComputeMGU([]Equation{
		{LHS: x, RHS: y},
		{LHS: y, RHS: z},
		{LHS: z, RHS: term.Atom("a")},
	})
	if !ok {
		t.Fatal("chained equalities should unify")
	}
	solved := Solve(u)
	got, _ := solved.Get(x)
	if got != term.Atom("a") {
		t.Errorf("X should chase through Y,Z to a, got %v", got)
	}
}

func TestSubstituteAllAppliesBindings(t *testing.T) {
	x := v("X")
	u, ok := ComputeMGU([]Equation{{LHS: x, RHS: term.Atom("a")}})
	if !ok {
		t.Fatal("setup unification failed")
	}
	result := SubstituteAll(term.Compound{Name: "f", Args: []term.Term{x}}, u)
	want := term.Compound{Name: "f", Args: []term.Term{term.Atom("a")}}
	if !term.StructuralEqual(result, want) {
		t.Errorf("got %v, want %v", result, want)
	}
}

func TestUnifyIsSymmetric(t *testing.T) {
	x := v("X")
	a := term.Compound{Name: "f", Args: []term.Term{x, term.Atom("b")}}
	b := term.Compound{Name: "f", Args: []term.Term{term.Atom("a"), term.Atom("b")}}

	u1, ok1 := ComputeMGU([]Equation{{LHS: a, RHS: b}})
	u2, ok2 := ComputeMGU([]Equation{{LHS: b, RHS: a}})
	if ok1 != ok2 {
		t.Fatal("unification success should not depend on argument order")
	}
	g1, _ := u1.Get(x)
	g2, _ := u2.Get(x)
	if !term.StructuralEqual(g1, g2) {
		t.Errorf("symmetric unification should bind X identically, got %v vs %v", g1, g2)
	}
}

func TestAtomClash(t *testing.T) {
	if _, ok := ComputeMGU([]Equation{{LHS: term.Atom("a"), RHS: term.Atom("b")}}); ok {
		t.Fatal("distinct atoms should clash")
	}
}

func TestNumberUnification(t *testing.T) {
	if _, ok := ComputeMGU([]Equation{{LHS: term.NewInt(2), RHS: term.NewNumber(4, 2)}}); !ok {
		t.Fatal("2 and 4/2 should unify (same normalized rational)")
	}
}
