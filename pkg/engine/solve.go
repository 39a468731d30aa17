// Package engine implements the Bevel solver: SLD resolution over a
// clause database with chronological backtracking, builtin dispatch, and
// negation-as-failure.
//
// Search is an iterative stack-of-frames walk rather than recursive
// descent: a frame here is a choice point, a saved master unifier plus
// pending query plus clause-scan index, pushed every time a goal matches
// a clause (resuming at the next clause) and popped on backtracking. Frame
// ids are assigned from a monotonic counter, which only affects the
// reproducibility of variable *names* shown in intermediate bindings,
// never solver behavior.
package engine

import (
	"io"

	"github.com/torrencem/bevel/pkg/builtin"
	"github.com/torrencem/bevel/pkg/clausedb"
	"github.com/torrencem/bevel/pkg/term"
	"github.com/torrencem/bevel/pkg/unify"
)

// RefuteName is the distinguished goal kind clause-body lowering emits
// for a `refute` statement: \+(G) succeeds iff G, solved in total
// isolation, has no solution. It is handled directly by the solver and
// is not a user-callable builtin.
const RefuteName = `\+`

// Session holds everything needed to find the next answer to a query and
// to resume the search for another one afterward: the running unifier,
// the goal list still to prove, the clause database's scan position for
// the goal in front, and the stack of choice points left to retry on
// backtracking.
type Session struct {
	db       *clausedb.Database
	builtins builtin.Registry
	out      io.Writer

	master       *unify.Unifier
	currQuery    []term.Term
	factIdx      int
	choicePoints []choicePoint
	exhausted    bool

	frames *frameCounter
}

type choicePoint struct {
	master  *unify.Unifier
	query   []term.Term
	factIdx int
}

// frameCounter hands out fresh per-activation frame ids. Shared by pointer
// with nested Refute sessions so ids never collide within one query.
type frameCounter struct{ next uint32 }

func newFrameCounter() *frameCounter { return &frameCounter{next: 1} }

func (f *frameCounter) allocate() uint32 {
	f.next++
	return f.next
}

// NewSession starts a session solving query against db using the given
// builtin registry. out receives print/_ output. query's variables
// should already be tagged with the caller's chosen frame id; the query
// driver uses a fixed REPL frame id so its own variables survive into
// the printed answer.
func NewSession(db *clausedb.Database, builtins builtin.Registry, out io.Writer, query []term.Term) *Session {
	return newSessionWithFrames(db, builtins, out, query, newFrameCounter())
}

func newSessionWithFrames(db *clausedb.Database, builtins builtin.Registry, out io.Writer, query []term.Term, frames *frameCounter) *Session {
	return &Session{
		db:        db,
		builtins:  builtins,
		out:       out,
		master:    unify.New(),
		currQuery: query,
		factIdx:   0,
		frames:    frames,
	}
}

// Next drives the solver forward and returns the next answer's resolved
// unifier and whether one was found; callers project it down to the
// frame they care about (unify.Project). A (nil, false, nil) result
// means the query has no more answers; calling Next again after that
// keeps returning (nil, false, nil). A non-nil error is the fatal
// insufficient-ground-arguments condition: the caller should abort the
// whole query, not just this answer.
func (s *Session) Next() (*unify.Unifier, bool, error) {
	if s.exhausted {
		return nil, false, nil
	}
	for {
		if len(s.currQuery) == 0 {
			answer := unify.Solve(s.master)
			if !s.backtrackForNextCall() {
				// No choice points remain: any further call to
				// Next() reports exhaustion immediately.
				s.exhausted = true
			}
			return answer, true, nil
		}

		goal := s.currQuery[0]
		rest := s.currQuery[1:]

		if c, ok := goal.(term.Compound); ok {
			if c.Name == RefuteName && len(c.Args) == 1 {
				ok, err := s.solveRefute(c.Args[0])
				if err != nil {
					return nil, false, err
				}
				if !ok {
					if !s.backtrack() {
						s.exhausted = true
						return nil, false, nil
					}
					continue
				}
				s.currQuery = rest
				s.factIdx = 0
				continue
			}

			if fn, isBuiltin := s.builtins[c.Name]; isBuiltin {
				walked := term.Compound{Name: c.Name, Args: make([]term.Term, len(c.Args))}
				for i, a := range c.Args {
					walked.Args[i] = unify.SubstituteAll(a, s.master)
				}
				u, err := fn(walked, s.out)
				if err != nil {
					return nil, false, err
				}
				if u == nil {
					if !s.backtrack() {
						s.exhausted = true
						return nil, false, nil
					}
					continue
				}
				solved := unify.Solve(u)
				s.master.Merge(solved)
				s.master = unify.Solve(s.master)
				s.currQuery = substituteQuery(rest, solved)
				s.factIdx = 0
				continue
			}
		}

		if !s.matchClause(goal, rest) {
			if !s.backtrack() {
				s.exhausted = true
				return nil, false, nil
			}
			continue
		}
	}
}

// matchClause scans the database from s.factIdx for a clause whose head
// unifies with goal. On the first match it pushes a choice point for the
// remaining clauses, freshens the clause with a new frame id, and
// installs its body ahead of rest as the new query.
func (s *Session) matchClause(goal term.Term, rest []term.Term) bool {
	c, ok := goal.(term.Compound)
	if !ok {
		return false
	}
	clauses := s.db.ClausesFor(c.Name, c.Arity())
	for i := s.factIdx; i < len(clauses); i++ {
		clause := clauses[i]
		u, ok := unify.ComputeMGU([]unify.Equation{{LHS: goal, RHS: term.Term(clause.Head)}})
		if !ok {
			continue
		}
		u = unify.Solve(u)

		s.choicePoints = append(s.choicePoints, choicePoint{
			master:  s.master.Clone(),
			query:   append([]term.Term{goal}, rest...),
			factIdx: i + 1,
		})

		// Every value bound in the head unifier is either a ground
		// term (renaming is a no-op) or one of the clause's own
		// template variables (still tagged with frame 0, since the
		// database holds one shared copy of the clause): goal-side
		// variables always land as keys, never as values, because
		// the equations feeding ComputeMGU always list the goal's
		// subterm first. Renaming every value to this activation's
		// frame id therefore gives the clause's variables a fresh,
		// call-specific identity without touching the caller's.
		frameID := s.frames.allocate()
		u2 := unify.New()
		for _, p := range u.Pairs() {
			u2.Set(p.Var, term.WithFrameID(p.Term, frameID))
		}

		s.master.Merge(u2)
		s.master = unify.Solve(s.master)

		body := make([]term.Term, len(clause.Body))
		for j, g := range clause.Body {
			body[j] = term.WithFrameID(unify.SubstituteAll(g, u2), frameID)
		}
		newRest := substituteQuery(rest, u2)
		s.currQuery = append(body, newRest...)
		s.factIdx = 0
		return true
	}
	return false
}

// solveRefute proves inner in a brand-new, fully isolated session and
// reports whether that proof succeeded; negation-as-failure discards
// every binding the inner search produced.
func (s *Session) solveRefute(inner term.Term) (bool, error) {
	sub := newSessionWithFrames(s.db, s.builtins, io.Discard, []term.Term{inner}, s.frames)
	_, ok, err := sub.Next()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// backtrack restores the most recent choice point, returning false when
// none remain (the query has failed outright).
func (s *Session) backtrack() bool {
	if len(s.choicePoints) == 0 {
		return false
	}
	last := len(s.choicePoints) - 1
	cp := s.choicePoints[last]
	s.choicePoints = s.choicePoints[:last]
	s.master = cp.master
	s.currQuery = cp.query
	s.factIdx = cp.factIdx
	return true
}

// backtrackForNextCall prepares the session to search for another answer
// after Next() has just returned a success, leaving the choice-point
// stack intact across successive calls. It behaves exactly like
// backtrack, except returning false simply means the stream of answers
// is now exhausted rather than that the current answer itself failed.
func (s *Session) backtrackForNextCall() bool {
	return s.backtrack()
}

func substituteQuery(goals []term.Term, u *unify.Unifier) []term.Term {
	out := make([]term.Term, len(goals))
	for i, g := range goals {
		out[i] = unify.SubstituteAll(g, u)
	}
	return out
}
