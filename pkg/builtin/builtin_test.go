package builtin

import (
	"bytes"
	"testing"

	"github.com/torrencem/bevel/pkg/term"
)

func n(i int64) term.Term { return term.NewInt(i) }

func TestArithForward(t *testing.T) {
	reg := Default()
	goal := term.Compound{Name: "+", Args: []term.Term{n(2), n(3), n(5)}}
	u, err := reg["+"](goal, nil)
	if err != nil || u == nil {
		t.Fatalf("2+3=5 should succeed, got u=%v err=%v", u, err)
	}
}

func TestArithForwardMismatch(t *testing.T) {
	reg := Default()
	goal := term.Compound{Name: "+", Args: []term.Term{n(2), n(3), n(6)}}
	u, err := reg["+"](goal, nil)
	if err != nil {
		t.Fatalf("ground mismatch is failure, not error: %v", err)
	}
	if u != nil {
		t.Fatal("2+3=6 should fail")
	}
}

func TestArithSolveForResult(t *testing.T) {
	reg := Default()
	x := term.Variable{Name: "X"}
	goal := term.Compound{Name: "+", Args: []term.Term{n(2), n(3), x}}
	u, err := reg["+"](goal, nil)
	if err != nil || u == nil {
		t.Fatalf("2+3=X should bind X, got u=%v err=%v", u, err)
	}
	got, ok := u.Get(x)
	if !ok || !term.StructuralEqual(got, n(5)) {
		t.Errorf("X should be bound to 5, got %v", got)
	}
}

func TestArithSolveForOperand(t *testing.T) {
	reg := Default()
	x := term.Variable{Name: "X"}
	// X + 3 = 5  =>  X = 2
	goal := term.Compound{Name: "+", Args: []term.Term{x, n(3), n(5)}}
	u, err := reg["+"](goal, nil)
	if err != nil || u == nil {
		t.Fatalf("X+3=5 should bind X, got u=%v err=%v", u, err)
	}
	got, _ := u.Get(x)
	if !term.StructuralEqual(got, n(2)) {
		t.Errorf("X should be bound to 2, got %v", got)
	}
}

func TestArithInsufficientGround(t *testing.T) {
	reg := Default()
	x, y := term.Variable{Name: "X"}, term.Variable{Name: "Y"}
	goal := term.Compound{Name: "+", Args: []term.Term{x, y, n(5)}}
	_, err := reg["+"](goal, nil)
	if _, ok := err.(*GroundnessError); !ok {
		t.Fatalf("two unbound operands should be a GroundnessError, got %v", err)
	}
}

func TestDivisionByZeroIsFailureNotError(t *testing.T) {
	reg := Default()
	goal := term.Compound{Name: "/", Args: []term.Term{n(1), n(0), term.Variable{Name: "X"}}}
	u, err := reg["/"](goal, nil)
	if err != nil {
		t.Fatalf("division by zero is a goal failure, not an error: %v", err)
	}
	if u != nil {
		t.Error("division by zero should not produce a unifier")
	}
}

func TestModForward(t *testing.T) {
	reg := Default()
	goal := term.Compound{Name: "%", Args: []term.Term{n(7), n(3), term.Variable{Name: "X"}}}
	u, err := reg["%"](goal, nil)
	if err != nil || u == nil {
		t.Fatalf("7 %% 3 should succeed: %v %v", u, err)
	}
}

func TestComparisons(t *testing.T) {
	reg := Default()
	if u, _ := reg[">"](term.Compound{Name: ">", Args: []term.Term{n(5), n(3)}}, nil); u == nil {
		t.Error("5 > 3 should succeed")
	}
	if u, _ := reg["<="](term.Compound{Name: "<=", Args: []term.Term{n(3), n(3)}}, nil); u == nil {
		t.Error("3 <= 3 should succeed")
	}
}

func TestStructuralEqualityBuiltin(t *testing.T) {
	reg := Default()
	list1 := term.List{Front: []term.Term{n(1), term.Atom("a")}}
	list2 := term.List{Front: []term.Term{n(1), term.Atom("a")}}
	u, _ := reg["=="](term.Compound{Name: "==", Args: []term.Term{list1, list2}}, nil)
	if u == nil {
		t.Error("structurally equal ground lists should satisfy ==")
	}

	v := term.Variable{Name: "X"}
	u, _ = reg["=="](term.Compound{Name: "==", Args: []term.Term{v, n(1)}}, nil)
	if u != nil {
		t.Error("== with an unbound variable should fail, not error")
	}
}

func TestUnifyBuiltin(t *testing.T) {
	reg := Default()
	x := term.Variable{Name: "X"}
	u, err := reg["="](term.Compound{Name: "=", Args: []term.Term{x, n(7)}}, nil)
	if err != nil || u == nil {
		t.Fatal("X = 7 should succeed")
	}
	got, _ := u.Get(x)
	if !term.StructuralEqual(got, n(7)) {
		t.Errorf("X should be bound to 7, got %v", got)
	}
}

func TestPrintAlwaysSucceeds(t *testing.T) {
	var buf bytes.Buffer
	reg := Default()
	u, err := reg["print"](term.Compound{Name: "print", Args: []term.Term{term.Atom("hi"), n(1)}}, &buf)
	if err != nil || u == nil {
		t.Fatal("print should always succeed")
	}
	if buf.String() != "hi\t1\n" {
		t.Errorf("got %q", buf.String())
	}
}
