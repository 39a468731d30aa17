// Package ast defines the Bevel surface syntax grammar and the lowering
// pass that turns a parsed program into a pkg/clausedb.Database. Lexing
// and parsing sit outside the solver proper, but a complete repository
// needs a concrete front end to drive it, so this package supplies one.
//
// Built with the participle/v2 struct-tag grammar style: token rules
// ordered longest-match-first in a lexer.Simple table, and AST node
// types whose fields carry `parser:"..."` tags describing the
// production each matches.
package ast

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// bevelLexer tokenizes Bevel source. Longer operators are listed ahead of
// their single-character prefixes so the lexer commits to the longest
// match: `<=`, `>=`, `==`, `!=` must not lex as `<`/`>`/`=`/`!` followed
// by a stray character.
var bevelLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	// Unsigned only: a leading '-' is always its own Punct token, so
	// `x-1` lexes as Ident, '-', Number even with no surrounding
	// whitespace. Factor.Neg (and the grammar's unary '-') supply sign.
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Atom", Pattern: `'[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "OpLe", Pattern: `<=`},
	{Name: "OpGe", Pattern: `>=`},
	{Name: "OpEq", Pattern: `==`},
	{Name: "OpNe", Pattern: `!=`},
	{Name: "Tilde", Pattern: `~`},
	{Name: "Refute", Pattern: `refute\b`},
	{Name: "Relate", Pattern: `relate\b`},
	{Name: "Wildcard", Pattern: `_`},
	{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[(){}\[\],;:<>+\-*/%]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Parser is the compiled participle grammar for a whole Bevel program.
// MaxLookahead gives the branch alternatives full backtracking: a
// statement like `relate ((z+2)*3/4) % 5` commits to the tuple branch of
// RelateStmt on '(' and only abandons it at the missing comma, well past
// any fixed token horizon.
var Parser = participle.MustBuild[Program](
	participle.Lexer(bevelLexer),
	participle.Elide("whitespace", "Comment"),
	participle.UseLookahead(participle.MaxLookahead),
)

// QueryParser is the compiled grammar for a single interactive/batch query
// line: a comma-separated sequence of the same statement forms a clause
// body accepts, reusing Statement's alternatives directly.
var QueryParser = participle.MustBuild[QueryLine](
	participle.Lexer(bevelLexer),
	participle.Elide("whitespace", "Comment"),
	participle.UseLookahead(participle.MaxLookahead),
)

// QueryLine is the top-level grammar for one query: statements separated
// by commas rather than the whitespace separation a block body uses.
type QueryLine struct {
	Pos        lexer.Position `parser:""`
	Statements []*Statement   `parser:"@@ (',' @@)*"`
}

// Program is a sequence of relation definitions: name(pats) followed by
// either `~ value;` or `{ stmts };`.
type Program struct {
	Pos       lexer.Position `parser:""`
	Relations []*Relation    `parser:"@@*"`
}

// Relation is one surface definition contributing exactly one clause to
// the database: a constant-value relation (`name(pats) ~ value;`), a
// block-bodied one (`name(pats) { stmts };`), or a bare ground fact with
// no appended output argument at all (`name(pats);`, e.g. `color('red);`
// style facts) — Value and Block are both nil in that third case.
type Relation struct {
	Pos      lexer.Position `parser:""`
	Name     string         `parser:"@Ident"`
	Patterns []*Pattern     `parser:"'(' (@@ (',' @@)*)? ')'"`
	Value    *Pattern       `parser:"(Tilde @@)?"`
	Block    *Block         `parser:"@@?"`
	Semi     string         `parser:"';'"`
}

// Block is the brace-delimited statement sequence of a block-bodied
// relation. Statements are separated only by whitespace.
type Block struct {
	Pos        lexer.Position `parser:""`
	Statements []*Statement   `parser:"'{' @@* '}'"`
}

// Pattern is a parameter or sub-pattern appearing in a relation's head or
// in a tuple-assignment LHS.
type Pattern struct {
	Pos      lexer.Position `parser:""`
	Wildcard bool           `parser:"(  @Wildcard"`
	Var      string         `parser:" | @Ident"`
	Atom     string         `parser:" | @Atom"`
	Number   *int64         `parser:" | @Number"`
	List     []*Pattern     `parser:" | '[' (@@ (',' @@)*)? ']'"`
	Cons     []*Pattern     `parser:" | '(' @@ (':' @@)+ ')' )"`
}

// Statement is one line of a block body. Exactly one alternative is
// populated; they are tried in the order given, most syntactically
// distinctive first, so a `(pats) ~ call` tuple assignment wins over a
// parenthesized comparison operand and an assignment wins over a
// comparison whose left side happens to be a bare variable.
type Statement struct {
	Pos        lexer.Position `parser:""`
	Relate     *RelateStmt    `parser:"(  @@"`
	Refute     *RefuteStmt    `parser:" | @@"`
	TupleAssn  *TupleAssign   `parser:" | @@"`
	Assign     *AssignStmt    `parser:" | @@"`
	Comparison *CompareStmt   `parser:" | @@"`
	Call       *CallExpr      `parser:" | @@ )"`
}

// RelateStmt is `relate expr` or `relate (exprs)`: it binds the
// relation's synthesized Result0, Result1, ... output variables. The
// tuple branch requires at least one comma so that a parenthesized
// single expression (`relate (x+1) * 2`) falls through to the plain
// expression branch, where the parens are ordinary grouping.
type RelateStmt struct {
	Pos   lexer.Position `parser:""`
	Exprs []*Expr        `parser:"Relate ( '(' @@ (',' @@)+ ')' | @@ )"`
}

// RefuteStmt is `refute call`: lowers to the distinguished
// negation-as-failure goal, never a user-callable builtin.
type RefuteStmt struct {
	Pos  lexer.Position `parser:""`
	Call *CallExpr      `parser:"Refute @@"`
}

// TupleAssign is `(pats) ~ call(args)`: the LHS patterns become the
// trailing output arguments of the call.
type TupleAssign struct {
	Pos      lexer.Position `parser:""`
	Patterns []*Pattern     `parser:"'(' @@ (',' @@)+ ')'"`
	Call     *CallExpr      `parser:"Tilde @@"`
}

// AssignStmt is `pat ~ expr`: the single-LHS assignment form.
type AssignStmt struct {
	Pos     lexer.Position `parser:""`
	Pattern *Pattern       `parser:"@@"`
	Tilde   string         `parser:"Tilde"`
	Expr    *Expr          `parser:"@@"`
}

// CompareStmt is `lhs op rhs`: lowers to a single comparison builtin goal.
type CompareStmt struct {
	Pos   lexer.Position `parser:""`
	Left  *Expr          `parser:"@@"`
	Op    string         `parser:"@(OpLe | OpGe | OpEq | OpNe | '<' | '>')"`
	Right *Expr          `parser:"@@"`
}

// Expr is an arithmetic expression: a sum of terms, each a product of
// factors, each a primary. Comparison operators are deliberately absent
// here — they are only allowed at the statement level, never nested
// inside an expression.
type Expr struct {
	Pos  lexer.Position `parser:""`
	Left *Term          `parser:"@@"`
	Ops  []string       `parser:"( @('+' | '-')"`
	Rest []*Term        `parser:"  @@ )*"`
}

// Term is a product/quotient/modulus chain of Factors.
type Term struct {
	Pos  lexer.Position `parser:""`
	Left *Factor        `parser:"@@"`
	Ops  []string       `parser:"( @('*' | '/' | '%')"`
	Rest []*Factor      `parser:"  @@ )*"`
}

// Factor is a single primary expression: a literal, a variable, a call,
// a list literal, a cons literal, or a parenthesized sub-expression.
// Unary minus is only admitted on number literals; everywhere else a
// leading '-' is the binary operator of the enclosing Expr.
type Factor struct {
	Pos    lexer.Position `parser:""`
	Neg    bool           `parser:"(  @'-'?"`
	Number *int64         `parser:"   @Number"`
	Atom   string         `parser:" | @Atom"`
	Call   *CallExpr      `parser:" | @@"`
	Var    string         `parser:" | @Ident"`
	List   []*Expr        `parser:" | '[' (@@ (',' @@)*)? ']'"`
	Cons   []*Expr        `parser:" | '(' @@ (':' @@)+ ')'"`
	Paren  *Expr          `parser:" | '(' @@ ')' )"`
}

// CallExpr is `name(args)`, a call to a relation, used both as a bare
// statement and as an expression.
type CallExpr struct {
	Pos  lexer.Position `parser:""`
	Name string         `parser:"@Ident"`
	Args []*Expr        `parser:"'(' (@@ (',' @@)*)? ')'"`
}
