package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSource writes src to a temp file and returns its path.
func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.bvl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestBatchModeFibonacci(t *testing.T) {
	path := writeSource(t, `fib(0) ~ 1; fib(1) ~ 1; fib(x) { x > 1 relate fib(x-1) + fib(x-2) };`)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-i", path}, strings.NewReader("y ~ fib(7)\n"), &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Equal(t, "y = 21\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestBatchModeFamilyGrandfather(t *testing.T) {
	src := `
parent('matt) ~ 'kathy;
parent('kathy) ~ 'gdad;
parent('kathy) ~ 'gmom;
male() ~ 'matt;
male() ~ 'gdad;
female() ~ 'kathy;
female() ~ 'gmom;
grandfather(x) { gp ~ parent(parent(x)) male(gp) relate gp };
`
	path := writeSource(t, src)
	var stdout, stderr bytes.Buffer
	queries := "gf ~ grandfather('matt)\ngf ~ grandfather('kathy)\nn ~ grandfather('matt), n ~ parent('matt)\n"
	code := run([]string{"-i", path}, strings.NewReader(queries), &stdout, &stderr)

	assert.Equal(t, 0, code)
	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "gf = gdad", lines[0])
	assert.Equal(t, "fail", lines[1])
	assert.Equal(t, "fail", lines[2])
}

func TestBatchModeLists(t *testing.T) {
	src := `
head((x:_)) ~ x;
sameleading((x:y:_)) { x == y };
samehead((x:_)) ~ (x:_);
`
	path := writeSource(t, src)
	var stdout, stderr bytes.Buffer
	queries := "x ~ head([[1,2], 3])\nsameleading([1,1,200])\nx ~ head([[1,2],3,4]), y ~ head([[1,3],10,5]), samehead(x, y)\n"
	code := run([]string{"-i", path}, strings.NewReader(queries), &stdout, &stderr)

	assert.Equal(t, 0, code)
	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "x = [1, 2]", lines[0])
	assert.Equal(t, "success", lines[1])
	assert.Equal(t, "x = [1, 2], y = [1, 3]", lines[2])
}

func TestBatchModeArithmeticChain(t *testing.T) {
	src := `
transform(z) { relate ((z+2)*3/4) % 5 };
aroundzero(x) { x<1  x>-1  x<=1  x>=-1  x!=1  x==0 };
`
	path := writeSource(t, src)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-i", path}, strings.NewReader("x ~ transform(10), aroundzero(0)\n"), &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Equal(t, "x = 4\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestBatchModeNegationAsFailure(t *testing.T) {
	path := writeSource(t, `p('a); p('b);`)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-i", path}, strings.NewReader("refute p('c)\nrefute p('a)\n"), &stdout, &stderr)

	assert.Equal(t, 0, code)
	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "success", lines[0])
	assert.Equal(t, "fail", lines[1])
}

func TestBatchModeUnknownRelationReportsDiagnostic(t *testing.T) {
	path := writeSource(t, `parent('matt) ~ 'kathy;`)
	var stdout, stderr bytes.Buffer
	queries := "x ~ parnet('matt)\nx ~ parent('matt)\n"
	code := run([]string{"-i", path}, strings.NewReader(queries), &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stderr.String(), "not defined")
	assert.Equal(t, "x = kathy\n", stdout.String())
}

func TestStaticCheckFailureExitsNonZero(t *testing.T) {
	path := writeSource(t, `bad(x) { x > 0 relate x relate (x, x) };`)
	var stdout, stderr bytes.Buffer
	code := run([]string{path}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "relate")
}

func TestMissingFileExitsNonZero(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "nope.bvl")}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
}

func TestPrologPrintMode(t *testing.T) {
	path := writeSource(t, `parent('matt) ~ 'kathy;`)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-p", path}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "parent(matt, kathy)")
}
