// Package unify implements the Bevel unifier: Martelli-Montanari
// most-general-unifier computation over term.Term, plus the
// idempotent-resolution and substitution-application helpers the solver
// needs on every step.
package unify

import "github.com/torrencem/bevel/pkg/term"

// Unifier is a finite, insertion-ordered mapping from Variable to Term.
// Ordering exists only so answer printing can be deterministic; it plays
// no role in unification itself.
type Unifier struct {
	bindings map[term.Variable]term.Term
	order    []term.Variable
}

// New returns an empty unifier.
func New() *Unifier {
	return &Unifier{bindings: make(map[term.Variable]term.Term)}
}

// Clone returns a deep-enough copy (terms are immutable, so only the map
// and order slice need copying) suitable for a choice-point snapshot.
func (u *Unifier) Clone() *Unifier {
	nb := make(map[term.Variable]term.Term, len(u.bindings))
	for k, v := range u.bindings {
		nb[k] = v
	}
	no := make([]term.Variable, len(u.order))
	copy(no, u.order)
	return &Unifier{bindings: nb, order: no}
}

// Get returns the term bound to v and whether it is bound.
func (u *Unifier) Get(v term.Variable) (term.Term, bool) {
	t, ok := u.bindings[v]
	return t, ok
}

// Set binds v to t, recording insertion order the first time v is bound.
func (u *Unifier) Set(v term.Variable, t term.Term) {
	if _, exists := u.bindings[v]; !exists {
		u.order = append(u.order, v)
	}
	u.bindings[v] = t
}

// Len reports the number of bindings.
func (u *Unifier) Len() int {
	return len(u.bindings)
}

// Pairs returns the bindings in insertion order.
func (u *Unifier) Pairs() []struct {
	Var  term.Variable
	Term term.Term
} {
	out := make([]struct {
		Var  term.Variable
		Term term.Term
	}, 0, len(u.order))
	for _, k := range u.order {
		out = append(out, struct {
			Var  term.Variable
			Term term.Term
		}{k, u.bindings[k]})
	}
	return out
}

// Merge copies every binding of other into u, in other's insertion order.
func (u *Unifier) Merge(other *Unifier) {
	for _, k := range other.order {
		u.Set(k, other.bindings[k])
	}
}

// Equation is one (Term, Term) pair the unifier must reconcile.
type Equation struct {
	LHS, RHS term.Term
}

// workItem is an equation tagged with whether it has reached its final,
// resolved (Variable -> Term) shape. Mirrors the "done" flag the reference
// algorithm carries on its worklist.
type workItem struct {
	resolved bool
	lhs, rhs term.Term
}

// ComputeMGU computes the most general unifier solving every equation in
// goal, or reports ok=false if no unifier exists. The occurs check is
// intentionally omitted: a goal that unifies a variable with a term
// containing it produces an unbounded structure rather than failing.
func ComputeMGU(goal []Equation) (*Unifier, bool) {
	work := make([]workItem, 0, len(goal))
	for _, e := range goal {
		work = append(work, workItem{lhs: e.LHS, rhs: e.RHS})
	}

	for {
		idx := -1
		for i, w := range work {
			if !w.resolved {
				idx = i
				break
			}
		}
		if idx == -1 {
			break
		}
		eq := work[idx]
		work = append(work[:idx], work[idx+1:]...)

		switch lhs := eq.lhs.(type) {
		case term.Variable:
			if rv, ok := eq.rhs.(term.Variable); ok && lhs.Equal(rv) {
				// delete: Var(x) = Var(x)
				continue
			}
			// eliminate: Var(x) = t
			ok := true
			for i := range work {
				if work[i].resolved {
					continue
				}
				work[i].lhs, ok = substituteVar(work[i].lhs, lhs, eq.rhs)
				if !ok {
					return nil, false
				}
				work[i].rhs, ok = substituteVar(work[i].rhs, lhs, eq.rhs)
				if !ok {
					return nil, false
				}
			}
			work = append(work, workItem{resolved: true, lhs: lhs, rhs: eq.rhs})
			continue
		default:
			if rv, ok := eq.rhs.(term.Variable); ok {
				// orient: t = Var(x), t non-variable
				work = append(work, workItem{lhs: rv, rhs: eq.lhs})
				continue
			}
		}

		// Neither side is a variable: decompose, delete, or clash.
		switch l := eq.lhs.(type) {
		case term.Atom:
			r, ok := eq.rhs.(term.Atom)
			if !ok || l != r {
				return nil, false
			}
		case term.Number:
			r, ok := eq.rhs.(term.Number)
			if !ok || !term.Rational(l).Equal(term.Rational(r)) {
				return nil, false
			}
		case term.Compound:
			r, ok := eq.rhs.(term.Compound)
			if !ok || l.Name != r.Name || len(l.Args) != len(r.Args) {
				return nil, false
			}
			for i := range l.Args {
				work = append(work, workItem{lhs: l.Args[i], rhs: r.Args[i]})
			}
		case term.List:
			r, ok := eq.rhs.(term.List)
			if !ok {
				return nil, false
			}
			more, ok := decomposeLists(l, r)
			if !ok {
				return nil, false
			}
			work = append(work, more...)
		default:
			return nil, false
		}
	}

	u := New()
	for _, w := range work {
		if v, ok := w.lhs.(term.Variable); ok {
			u.Set(v, w.rhs)
		}
	}
	return u, true
}

// decomposeLists implements the List = List decomposition rule:
// pairwise-unify the common front prefix, then equate the remaining
// elements of the longer front against the shorter list's tail (turned
// into an End-terminated list), and finally unify the two tails.
func decomposeLists(a, b term.List) ([]workItem, bool) {
	minLen := len(a.Front)
	if len(b.Front) < minLen {
		minLen = len(b.Front)
	}
	out := make([]workItem, 0, minLen+1)
	for i := 0; i < minLen; i++ {
		out = append(out, workItem{lhs: a.Front[i], rhs: b.Front[i]})
	}

	switch {
	case len(a.Front) == len(b.Front):
		switch {
		case a.Tail == nil && b.Tail == nil:
			// delete
		case a.Tail != nil && b.Tail == nil:
			out = append(out, workItem{lhs: *a.Tail, rhs: term.List{}})
		case a.Tail == nil && b.Tail != nil:
			out = append(out, workItem{lhs: *b.Tail, rhs: term.List{}})
		default:
			out = append(out, workItem{lhs: *a.Tail, rhs: *b.Tail})
		}
	case len(a.Front) < len(b.Front):
		if a.Tail == nil {
			return nil, false // clash: shorter list has no tail to absorb the rest
		}
		rest := append([]term.Term{}, b.Front[minLen:]...)
		out = append(out, workItem{lhs: *a.Tail, rhs: term.List{Front: rest}})
	default: // len(a.Front) > len(b.Front)
		if b.Tail == nil {
			return nil, false
		}
		rest := append([]term.Term{}, a.Front[minLen:]...)
		out = append(out, workItem{lhs: *b.Tail, rhs: term.List{Front: rest}})
	}
	return out, true
}

// substituteVar applies x -> replacement within t, as in the reference's
// simple_substitution. Returns ok=false only when an open list's tail
// variable is substituted with a non-List term: [H | T] with T bound to a
// non-list can never be satisfied.
func substituteVar(t term.Term, x term.Variable, replacement term.Term) (term.Term, bool) {
	switch v := t.(type) {
	case term.Variable:
		if v.Equal(x) {
			return replacement, true
		}
		return t, true
	case term.Atom, term.Number:
		return t, true
	case term.List:
		front := make([]term.Term, len(v.Front))
		for i, e := range v.Front {
			nt, ok := substituteVar(e, x, replacement)
			if !ok {
				return nil, false
			}
			front[i] = nt
		}
		if v.Tail != nil && v.Tail.Equal(x) {
			rl, ok := replacement.(term.List)
			if !ok {
				return nil, false
			}
			front = append(front, rl.Front...)
			return term.List{Front: front, Tail: rl.Tail}, true
		}
		return term.List{Front: front, Tail: v.Tail}, true
	case term.Compound:
		args := make([]term.Term, len(v.Args))
		for i, a := range v.Args {
			nt, ok := substituteVar(a, x, replacement)
			if !ok {
				return nil, false
			}
			args[i] = nt
		}
		return term.Compound{Name: v.Name, Args: args}, true
	default:
		return t, true
	}
}

// Project returns the subset of u's bindings whose variable belongs to
// frameID, in insertion order. The query driver uses this to strip every
// binding solver-internal clause activations introduced, leaving only the
// variables the user's own query named.
func Project(u *Unifier, frameID uint32) *Unifier {
	out := New()
	for _, k := range u.order {
		if k.FrameID == frameID {
			out.Set(k, u.bindings[k])
		}
	}
	return out
}

// Solve chases every binding through Variable-to-Variable links until it
// reaches a non-Variable term or an unmapped Variable, so afterward no key
// maps directly to a bound Variable. Variables nested inside a List or
// Compound value are left as they are, even when they are themselves keys.
func Solve(u *Unifier) *Unifier {
	res := New()
	for _, k := range u.order {
		result := term.Term(k)
		curr := k
		for {
			val, ok := u.bindings[curr]
			if !ok {
				break
			}
			result = val
			if nextVar, ok := val.(term.Variable); ok {
				curr = nextVar
				continue
			}
			break
		}
		res.Set(k, result)
	}
	return res
}

// SubstituteAll applies every binding in u to t once, in u's insertion
// order. A variable that only appears inside a value substituted by a
// later binding is not replaced.
func SubstituteAll(t term.Term, u *Unifier) term.Term {
	result := t
	for _, pair := range u.Pairs() {
		nt, ok := substituteVar(result, pair.Var, pair.Term)
		if !ok {
			// An ill-typed substitution (list tail bound to a
			// non-list) leaves the term unchanged; the caller's
			// subsequent unification attempt will fail cleanly.
			continue
		}
		result = nt
	}
	return result
}
