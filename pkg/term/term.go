// Package term implements the universal data value of the Bevel logic
// engine: Variable, Atom, Number, List, and Compound. Variables are
// identified by (name, frame id) rather than a process-global counter, and
// lists are represented as front++tail rather than nested cons pairs.
package term

import (
	"fmt"
	"strings"
)

// Term is any value in the Bevel universe: Variable, Atom, Number, List,
// or Compound.
type Term interface {
	fmt.Stringer
	isTerm()
}

// Variable is an unbound placeholder scoped by (Name, FrameID). Two
// variables are the same iff both fields match; FrameID distinguishes
// activations of the same clause from one another.
type Variable struct {
	Name    string
	FrameID uint32
}

func (Variable) isTerm() {}

// Equal reports whether two variables denote the same logical slot.
func (v Variable) Equal(other Variable) bool {
	return v.Name == other.Name && v.FrameID == other.FrameID
}

func (v Variable) String() string {
	return v.Name
}

// IsLoweringTemporary reports whether the variable was synthesized by
// clause-body lowering rather than written by the program's author: its
// name starts with "<Free>" (wildcards) or "<Tmp>" (expression results),
// the two prefixes the lowerer generates, or with "<Tmp_WC>" or "_<",
// which are recognized as temporaries as well.
func (v Variable) IsLoweringTemporary() bool {
	for _, prefix := range []string{"<Free>", "<Tmp_WC>", "<Tmp>", "_<"} {
		if strings.HasPrefix(v.Name, prefix) {
			return true
		}
	}
	return false
}

// Atom is an interned symbolic constant; equality is by name.
type Atom string

func (Atom) isTerm() {}

func (a Atom) String() string {
	return string(a)
}

// Number is an exact rational constant.
type Number Rational

func (Number) isTerm() {}

func (n Number) String() string {
	return Rational(n).String()
}

// NewNumber builds a Number in lowest terms.
func NewNumber(num, den int64) Number {
	return Number(NewRational(num, den))
}

// NewInt builds an integer Number.
func NewInt(n int64) Number {
	return Number(IntRational(n))
}

// List represents [Front[0], ..., Front[k-1] | Tail]. Tail is nil for a
// proper (End-terminated) list, or a variable for an open list whose tail
// is still unbound. A List with no Front and a nil Tail is the empty
// list.
type List struct {
	Front []Term
	Tail  *Variable
}

func (List) isTerm() {}

// EmptyList is the canonical empty list term.
func EmptyList() List {
	return List{}
}

// IsProper reports whether the list's tail is End (as opposed to an
// open/unbound tail variable).
func (l List) IsProper() bool {
	return l.Tail == nil
}

func (l List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, t := range l.Front {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	if l.Tail != nil {
		if len(l.Front) > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(l.Tail.Name)
	}
	b.WriteByte(']')
	return b.String()
}

// Compound is a named term of fixed arity: name(args...). Arity is
// len(Args); two compounds unify only when both name and arity match.
type Compound struct {
	Name string
	Args []Term
}

func (Compound) isTerm() {}

func (c Compound) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Arity returns len(Args).
func (c Compound) Arity() int {
	return len(c.Args)
}

// WithFrameID returns a copy of t with every Variable's FrameID overwritten
// to frameID. This is the per-activation variable-renaming trick: the
// clause database stores one immutable copy of a rule; each activation
// rewrites the frame id of the variables that appear in that activation's
// bindings rather than deep-cloning the clause.
func WithFrameID(t Term, frameID uint32) Term {
	switch v := t.(type) {
	case Variable:
		return Variable{Name: v.Name, FrameID: frameID}
	case Atom, Number:
		return t
	case List:
		front := make([]Term, len(v.Front))
		for i, e := range v.Front {
			front[i] = WithFrameID(e, frameID)
		}
		var tail *Variable
		if v.Tail != nil {
			nt := Variable{Name: v.Tail.Name, FrameID: frameID}
			tail = &nt
		}
		return List{Front: front, Tail: tail}
	case Compound:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = WithFrameID(a, frameID)
		}
		return Compound{Name: v.Name, Args: args}
	default:
		panic(fmt.Sprintf("term: unknown term kind %T", t))
	}
}

// IsGround reports whether t contains no Variable anywhere, including list
// tails. Used by the == builtin.
func IsGround(t Term) bool {
	switch v := t.(type) {
	case Variable:
		return false
	case Atom, Number:
		return true
	case List:
		if v.Tail != nil {
			return false
		}
		for _, e := range v.Front {
			if !IsGround(e) {
				return false
			}
		}
		return true
	case Compound:
		for _, a := range v.Args {
			if !IsGround(a) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// StructuralEqual reports whether two terms are identical as written, with
// no unification or substitution — used for ==.
func StructuralEqual(a, b Term) bool {
	switch av := a.(type) {
	case Variable:
		bv, ok := b.(Variable)
		return ok && av.Equal(bv)
	case Atom:
		bv, ok := b.(Atom)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && Rational(av).Equal(Rational(bv))
	case List:
		bv, ok := b.(List)
		if !ok || len(av.Front) != len(bv.Front) {
			return false
		}
		if (av.Tail == nil) != (bv.Tail == nil) {
			return false
		}
		if av.Tail != nil && !av.Tail.Equal(*bv.Tail) {
			return false
		}
		for i := range av.Front {
			if !StructuralEqual(av.Front[i], bv.Front[i]) {
				return false
			}
		}
		return true
	case Compound:
		bv, ok := b.(Compound)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !StructuralEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
