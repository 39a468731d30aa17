// Package prologprint renders a lowered clause database as an equivalent
// Prolog source text (the `-p` flag): one `head :- body.` or `head.`
// line per clause, in definition order. Printing from the database
// rather than the surface AST means the same term rendering that drives
// answer text also drives the Prolog dump.
package prologprint

import (
	"fmt"
	"io"

	"github.com/torrencem/bevel/pkg/clausedb"
)

// Write renders every relation in db to w, one clause per line.
func Write(w io.Writer, db *clausedb.Database) error {
	for _, rel := range db.Relations() {
		clauses := db.ClausesFor(rel.Name, rel.Arity)
		for _, c := range clauses {
			if _, err := fmt.Fprintln(w, c.String()); err != nil {
				return err
			}
		}
	}
	return nil
}
