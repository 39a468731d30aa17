// Package clausedb stores the lowered Horn clauses that back every
// relation a Bevel program defines: a relation name maps to an ordered
// list of clauses, each a head pattern plus a conjunctive body of goals,
// consulted top-to-bottom during search.
package clausedb

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/torrencem/bevel/pkg/term"
)

// Clause is one alternative definition of a relation: Head unifies
// against a call, and on success Body is solved as a conjunction of
// goals. A fact (no body) is represented with an empty Body.
type Clause struct {
	Head term.Compound
	Body []term.Term
}

// Database holds every relation defined by a lowered Bevel program,
// keyed by name/arity pair, preserving source order for the solver's
// top-to-bottom clause scan.
type Database struct {
	relations map[key][]Clause
	order     []key
}

type key struct {
	name  string
	arity int
}

// New returns an empty clause database.
func New() *Database {
	return &Database{relations: make(map[key][]Clause)}
}

// AddClause appends clause to the database under its head's name/arity.
// A name may be registered at several arities; each (name, arity) pair
// is a distinct relation with its own clause order, so a goal only ever
// scans the clauses whose head could match it.
func (db *Database) AddClause(c Clause) error {
	k := key{name: c.Head.Name, arity: c.Head.Arity()}
	if _, ok := db.relations[k]; !ok {
		db.order = append(db.order, k)
	}
	db.relations[k] = append(db.relations[k], c)
	return nil
}

// Lookup returns the clauses registered for name/arity, in the order
// they were added, or (nil, false) if the relation is undefined.
func (db *Database) Lookup(name string, arity int) ([]Clause, bool) {
	cs, ok := db.relations[key{name: name, arity: arity}]
	return cs, ok
}

// Relations reports every (name, arity) pair defined in the database, in
// definition order; used by pkg/prologprint to render the whole program.
func (db *Database) Relations() []struct {
	Name  string
	Arity int
} {
	out := make([]struct {
		Name  string
		Arity int
	}, 0, len(db.order))
	for _, k := range db.order {
		out = append(out, struct {
			Name  string
			Arity int
		}{k.name, k.arity})
	}
	return out
}

// ClausesFor returns the clauses for name/arity, or an empty slice if
// undefined. A relation call against an undefined relation fails rather
// than erroring: no matching clause means the goal simply fails, so this
// never itself reports an error.
func (db *Database) ClausesFor(name string, arity int) []Clause {
	return db.relations[key{name: name, arity: arity}]
}

// ErrUnknownRelation distinguishes "no clauses defined at all" from
// "defined but none matched". The query driver's pre-flight check wraps
// it to report a typo'd relation name before solving begins.
var ErrUnknownRelation = errors.New("clausedb: relation not defined")

// Require returns the clauses for name/arity, or an error wrapping
// ErrUnknownRelation if no clause has ever been registered under that
// name/arity.
func (db *Database) Require(name string, arity int) ([]Clause, error) {
	cs, ok := db.Lookup(name, arity)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownRelation, "%s/%d", name, arity)
	}
	return cs, nil
}

func (c Clause) String() string {
	if len(c.Body) == 0 {
		return fmt.Sprintf("%s.", c.Head)
	}
	return fmt.Sprintf("%s :- %s.", c.Head, joinTerms(c.Body))
}

func joinTerms(ts []term.Term) string {
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s
}
