// Command bevel is the Bevel language front end: it parses a source
// file, runs the static checks, and then either prints the equivalent
// Prolog source (-p), answers queries read from stdin one per line (-i),
// or starts an interactive REPL. Exit code is 0 on success and 1 on a
// file-read, parse, or static-check failure.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/torrencem/bevel/pkg/ast"
	"github.com/torrencem/bevel/pkg/builtin"
	"github.com/torrencem/bevel/pkg/clausedb"
	"github.com/torrencem/bevel/pkg/prologprint"
	"github.com/torrencem/bevel/pkg/query"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "bevel",
		Output: stderr,
		Level:  hclog.Warn,
	})

	fs := flag.NewFlagSet("bevel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	prologFlag := fs.Bool("p", false, "print the program as an equivalent Prolog source form and exit")
	stdinFlag := fs.Bool("i", false, "read queries from standard input, one per line")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: bevel [-p] [-i] <source-file>")
		return 1
	}
	path := fs.Arg(0)

	src, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read source file", "path", path, "error", err)
		return 1
	}

	prog, err := ast.Parser.ParseString(path, string(src))
	if err != nil {
		fmt.Fprintln(stderr, errors.Wrap(err, "parse error"))
		return 1
	}

	if err := ast.Check(prog); err != nil {
		checkErrs := err.(ast.CheckErrors)
		for _, e := range checkErrs {
			fmt.Fprintln(stderr, e)
		}
		fmt.Fprintf(stderr, "aborting due to the previous %d error(s)\n", len(checkErrs))
		return 1
	}

	db, err := ast.Lower(prog)
	if err != nil {
		fmt.Fprintln(stderr, errors.Wrap(err, "lowering error"))
		return 1
	}
	logger.Debug("program lowered", "relations", len(db.Relations()))

	if *prologFlag {
		if err := prologprint.Write(stdout, db); err != nil {
			logger.Error("failed writing prolog output", "error", err)
			return 1
		}
		return 0
	}

	builtins := builtin.Default()

	if *stdinFlag {
		return runBatch(db, builtins, stdin, stdout, stderr)
	}
	return runREPL(db, builtins, stdout, stderr)
}

// runBatch implements `-i` mode: one query per line of stdin, one line
// of answer text per query.
func runBatch(db *clausedb.Database, builtins builtin.Registry, stdin io.Reader, stdout, stderr io.Writer) int {
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		text, err := query.RunOnce(db, builtins, stdout, line)
		if err != nil {
			fmt.Fprintln(stderr, err)
			continue
		}
		fmt.Fprintln(stdout, text)
	}
	return 0
}

// runREPL implements the interactive mode (prompt `?#>`): each query
// produces one answer; pressing Enter requests the next, and any input
// starting with "q" stops enumeration for that query.
func runREPL(db *clausedb.Database, builtins builtin.Registry, stdout, stderr io.Writer) int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "?#> ",
		Stdout: stdout,
		Stderr: stderr,
	})
	if err != nil {
		fmt.Fprintln(stderr, errors.Wrap(err, "starting REPL"))
		return 1
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return 0
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		q, err := query.Parse(line)
		if err != nil {
			fmt.Fprintln(stderr, err)
			continue
		}
		if err := q.Validate(db, builtins); err != nil {
			fmt.Fprintln(stderr, err)
			continue
		}
		sess := query.NewSession(db, builtins, stdout, q)
		enumerateAnswers(sess, rl, stdout, stderr)
	}
}

func enumerateAnswers(sess *query.Session, rl *readline.Instance, stdout, stderr io.Writer) {
	for {
		text, ok, err := sess.Next()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return
		}
		if !ok {
			fmt.Fprintln(stdout, "fail")
			return
		}
		fmt.Fprintf(stdout, "%s ", text)

		cont, err := rl.Readline()
		if err != nil {
			return
		}
		if strings.HasPrefix(strings.TrimSpace(cont), "q") {
			return
		}
	}
}
