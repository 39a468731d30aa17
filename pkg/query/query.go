// Package query implements the Bevel query driver: parsing and lowering
// one query line, handing it to a fresh pkg/engine.Session, and
// formatting answers. The interactive REPL and `-i` batch mode share
// this one code path so both print answers identically.
package query

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/torrencem/bevel/pkg/ast"
	"github.com/torrencem/bevel/pkg/builtin"
	"github.com/torrencem/bevel/pkg/clausedb"
	"github.com/torrencem/bevel/pkg/engine"
	"github.com/torrencem/bevel/pkg/term"
	"github.com/torrencem/bevel/pkg/unify"
)

// Query is one parsed and lowered query line, ready to be solved
// repeatedly for answer enumeration.
type Query struct {
	goals []term.Term
}

// Parse lexes, parses, and lowers a single query line into its goal
// sequence. The clause database and builtin registry are supplied later,
// to Validate and NewSession.
func Parse(line string) (*Query, error) {
	parsed, err := ast.QueryParser.ParseString("", line)
	if err != nil {
		return nil, errors.Wrap(err, "parsing query")
	}
	goals, err := ast.LowerQuery(parsed.Statements)
	if err != nil {
		return nil, errors.Wrap(err, "lowering query")
	}
	return &Query{goals: goals}, nil
}

// Validate reports a typo'd relation call before solving begins: every
// goal that is neither a registered builtin nor a negation wrapper must
// name a relation the program defines at that arity. Solving an unknown
// relation would just fail, which reads as "no answer" rather than "no
// such relation"; the REPL and batch mode prefer the sharper diagnostic.
func (q *Query) Validate(db *clausedb.Database, builtins builtin.Registry) error {
	return validateGoals(q.goals, db, builtins)
}

func validateGoals(goals []term.Term, db *clausedb.Database, builtins builtin.Registry) error {
	for _, g := range goals {
		c, ok := g.(term.Compound)
		if !ok {
			continue
		}
		if c.Name == engine.RefuteName {
			if err := validateGoals(c.Args, db, builtins); err != nil {
				return err
			}
			continue
		}
		if _, isBuiltin := builtins[c.Name]; isBuiltin {
			continue
		}
		if _, err := db.Require(c.Name, c.Arity()); err != nil {
			return err
		}
	}
	return nil
}

// Session wraps an engine.Session with query-specific answer projection
// and formatting.
type Session struct {
	inner *engine.Session
}

// NewSession starts a session that will produce answers to q, one at a time
// via Next.
func NewSession(db *clausedb.Database, builtins builtin.Registry, out io.Writer, q *Query) *Session {
	return &Session{inner: engine.NewSession(db, builtins, out, q.goals)}
}

// Next finds the next answer, renders it with Format, and reports whether
// one was found. A non-nil error is the fatal insufficient-ground-arguments
// condition: the caller should stop enumerating and report it.
func (s *Session) Next() (text string, found bool, err error) {
	ans, ok, err := s.inner.Next()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return Format(ans), true, nil
}

// RunOnce parses, lowers, and solves line once against db, returning the
// formatted answer (or "fail" on no solution) the way `-i` batch mode
// prints one line per query.
func RunOnce(db *clausedb.Database, builtins builtin.Registry, out io.Writer, line string) (string, error) {
	q, err := Parse(line)
	if err != nil {
		return "", err
	}
	if err := q.Validate(db, builtins); err != nil {
		return "", err
	}
	sess := NewSession(db, builtins, out, q)
	text, ok, err := sess.Next()
	if err != nil {
		return "", err
	}
	if !ok {
		return "fail", nil
	}
	return text, nil
}

// Format renders an answer unifier as `name = term, name = term, ...` over
// only the REPL-frame bindings whose name is not a lowering temporary,
// or "success" when that projection is empty.
func Format(ans *unify.Unifier) string {
	proj := unify.Project(ans, ast.ReplFrameID)
	var parts []string
	for _, p := range proj.Pairs() {
		if p.Var.IsLoweringTemporary() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s = %s", p.Var.Name, p.Term))
	}
	if len(parts) == 0 {
		return "success"
	}
	return strings.Join(parts, ", ")
}
