package eval

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesc-lang/tesc/internal/ast"
	"github.com/tesc-lang/tesc/internal/diag"
	"github.com/tesc-lang/tesc/internal/lexer"
	"github.com/tesc-lang/tesc/internal/parser"
)

// fakeIO is an in-memory stand-in for the driver's child process, letting
// evaluator tests exercise input()/output()/print()/println() without
// spawning anything.
type fakeIO struct {
	toRead  []string
	readIdx int
	written []string
	printed string
}

func (f *fakeIO) ReadLine() (string, error) {
	if f.readIdx >= len(f.toRead) {
		return "", io.EOF
	}
	s := f.toRead[f.readIdx]
	f.readIdx++
	return s, nil
}

func (f *fakeIO) WriteLine(s string) error {
	f.written = append(f.written, s)
	return nil
}

func (f *fakeIO) Print(s string)   { f.printed += s }
func (f *fakeIO) Println(s string) { f.printed += s + "\n" }

// parseSource parses src (a whole file, functions plus exactly one test
// declaration) and returns its function table and its TestDecl.
func parseSource(t *testing.T, src string) (map[string]*ast.FuncDecl, *ast.TestDecl) {
	t.Helper()
	sink := diag.NewSink()
	l := lexer.New("test.tesc", src)
	p := parser.New(l, sink)
	prog := p.ParseProgram()
	require.False(t, sink.HasErrors(), "%v", sink.All())

	funcs := make(map[string]*ast.FuncDecl)
	var td *ast.TestDecl
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			funcs[decl.Name.Value] = decl
		case *ast.TestDecl:
			td = decl
		}
	}
	require.NotNil(t, td, "source must declare one test")
	return funcs, td
}

// runTestBody parses src and evaluates its sole test body against io,
// returning any error EvalTest produced.
func runTestBody(t *testing.T, src string, io IO) error {
	t.Helper()
	funcs, td := parseSource(t, src)
	fileScope := NewEnvironment()
	ev := New(funcs, io, 4, "test.tesc")
	require.NoError(t, ev.EvalFileScope(&ast.Program{}, fileScope))
	return ev.EvalTest(td, fileScope)
}

func TestEvalArithmeticIntAndFloat(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, `t("/bin/cat") {
		let a: int = 2 + 3 * 4;
		let b: float = 1.5 + 2.5;
		println(a as string);
		println(b as string);
	}`, io)
	require.NoError(t, err)
	assert.Equal(t, "14\n4\n", io.printed)
}

func TestEvalStringConcatenation(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, `t("/bin/cat") {
		let a: string = "foo" + "bar";
		println(a);
	}`, io)
	require.NoError(t, err)
	assert.Equal(t, "foobar\n", io.printed)
}

func TestEvalStringRepetition(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, `t("/bin/cat") {
		let a: string = "ab" * 3;
		println(a);
	}`, io)
	require.NoError(t, err)
	assert.Equal(t, "ababab\n", io.printed)
}

func TestEvalCastRoundTrip(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, `t("/bin/cat") {
		let s: string = "42";
		let n: int = s as int;
		let f: float = n as float;
		println(f as string);
	}`, io)
	require.NoError(t, err)
	assert.Equal(t, "42\n", io.printed)
}

func TestEvalDivisionByZeroIsRuntimeError(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, `t("/bin/cat") {
		println((1 / 0) as string);
	}`, io)
	require.Error(t, err)
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Error(), "division by zero")
}

func TestEvalLetShadowingDifferentType(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, `t("/bin/cat") {
		let a: int = 1;
		let a: string = "1";
		a = a + "1";
		println(a);
	}`, io)
	require.NoError(t, err)
	assert.Equal(t, "11\n", io.printed)
}

func TestEvalForOverList(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, `t("/bin/cat") {
		let total: int = 0;
		for x: int in [1, 2, 3] {
			total = total + x;
		}
		println(total as string);
	}`, io)
	require.NoError(t, err)
	assert.Equal(t, "6\n", io.printed)
}

func TestEvalForOverRegexOrderedEnumeration(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, "t(\"/bin/cat\") {\n"+
		"for i: string in `\\d{1,2}` {\n"+
		"input(i);\n"+
		"}\n"+
		"}", io)
	require.NoError(t, err)
	require.Len(t, io.written, 110)
	assert.Equal(t, "0", io.written[0])
	assert.Equal(t, "9", io.written[9])
	assert.Equal(t, "00", io.written[10])
	assert.Equal(t, "99", io.written[109])
}

func TestEvalInWithRegexAndList(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, "t(\"/bin/cat\") {\n"+
		"let ok: bool = \"5\" in `\\d`;\n"+
		"let notOk: bool = \"x\" in `\\d`;\n"+
		"let inList: bool = 2 in [1, 2, 3];\n"+
		"println(ok as string);\n"+
		"println(notOk as string);\n"+
		"println(inList as string);\n"+
		"}", io)
	require.NoError(t, err)
	assert.Equal(t, "true\nfalse\ntrue\n", io.printed)
}

func TestEvalInputWritesToChildStdin(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, `t("/bin/cat") {
		input("hello");
	}`, io)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, io.written)
}

func TestEvalOutputReadsAndComparesChildStdout(t *testing.T) {
	io := &fakeIO{toRead: []string{"hi"}}
	err := runTestBody(t, `t("/bin/cat") {
		output("hi");
	}`, io)
	assert.NoError(t, err)
}

func TestEvalOutputMismatchFailsTest(t *testing.T) {
	io := &fakeIO{toRead: []string{"bye"}}
	err := runTestBody(t, `t("/bin/cat") {
		output("hi");
	}`, io)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output mismatch")
}

func TestEvalOutputEOFFailsTest(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, `t("/bin/cat") {
		output("hi");
	}`, io)
	require.Error(t, err)
}

func TestEvalRecursiveFunctionCall(t *testing.T) {
	sink := diag.NewSink()
	l := lexer.New("test.tesc", `
fn fact(n: int): int {
	let result: int = 1;
	if n > 1 {
		result = n * fact(n - 1);
	}
	result;
}
t("/bin/cat") {
	println(fact(5) as string);
}`)
	p := parser.New(l, sink)
	prog := p.ParseProgram()
	require.False(t, sink.HasErrors(), "%v", sink.All())

	funcs := make(map[string]*ast.FuncDecl)
	var td *ast.TestDecl
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			funcs[decl.Name.Value] = decl
		case *ast.TestDecl:
			td = decl
		}
	}

	io := &fakeIO{}
	fileScope := NewEnvironment()
	ev := New(funcs, io, 4, "test.tesc")
	require.NoError(t, ev.EvalTest(td, fileScope))
	assert.Equal(t, "120\n", io.printed)
}

func TestEvalIfElseBranches(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, `t("/bin/cat") {
		let x: int = 5;
		if x > 10 {
			println("big");
		} else {
			println("small");
		}
	}`, io)
	require.NoError(t, err)
	assert.Equal(t, "small\n", io.printed)
}

func TestEvalListIndexOutOfRange(t *testing.T) {
	io := &fakeIO{}
	err := runTestBody(t, `t("/bin/cat") {
		let xs: [int] = [1, 2, 3];
		println(xs[5] as string);
	}`, io)
	require.Error(t, err)
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Error(), "out of range")
}
