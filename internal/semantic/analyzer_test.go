package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesc-lang/tesc/internal/diag"
	"github.com/tesc-lang/tesc/internal/lexer"
	"github.com/tesc-lang/tesc/internal/parser"
)

// analyze parses src and runs the analyser over it with noMagicWarning,
// returning the diagnostic sink it reported into.
func analyze(t *testing.T, src string, noMagicWarning bool) *diag.Sink {
	t.Helper()
	sink := diag.NewSink()
	l := lexer.New("test.tesc", src)
	p := parser.New(l, sink)
	prog := p.ParseProgram()
	require.False(t, sink.HasErrors(), "parse errors: %v", sink.All())

	a := New(sink, "test.tesc", noMagicWarning)
	a.Analyze(prog)
	return sink
}

func TestAnalyzeValidProgramHasNoErrors(t *testing.T) {
	sink := analyze(t, `
fn add(a: int, b: int): int {
	a + b;
}
smoke("/bin/cat") {
	let x: int = add(1, 2);
	println(x as string);
}`, true)
	assert.False(t, sink.HasErrors(), "%v", sink.All())
}

func TestAnalyzeConstReassignmentIsError(t *testing.T) {
	sink := analyze(t, `
t("/bin/cat") {
	const x: int = 1;
	x = 2;
}`, true)
	assert.True(t, sink.HasErrors())
}

func TestAnalyzeLetShadowingConstIsError(t *testing.T) {
	sink := analyze(t, `
t("/bin/cat") {
	const x: int = 1;
	let x: string = "1";
	println(x);
}`, true)
	assert.True(t, sink.HasErrors())
}

func TestAnalyzeLetTypeMismatchIsError(t *testing.T) {
	sink := analyze(t, `
t("/bin/cat") {
	let x: int = "not a number";
}`, true)
	assert.True(t, sink.HasErrors())
}

func TestAnalyzeStringRepetitionIsString(t *testing.T) {
	sink := analyze(t, `
t("/bin/cat") {
	let s: string = "ab" * 3;
}`, true)
	assert.False(t, sink.HasErrors(), "%v", sink.All())
}

func TestAnalyzeForOverRegexBindsString(t *testing.T) {
	sink := analyze(t, "t(\"/bin/cat\") {\n"+
		"for x: string in `\\d` {\n"+
		"input(x);\n"+
		"}\n"+
		"}", true)
	assert.False(t, sink.HasErrors(), "%v", sink.All())
}

func TestAnalyzeForOverListTypeMismatchIsError(t *testing.T) {
	sink := analyze(t, `
t("/bin/cat") {
	for x: string in [1, 2, 3] {
		println(x);
	}
}`, true)
	assert.True(t, sink.HasErrors())
}

func TestAnalyzeUnusedBindingWarns(t *testing.T) {
	sink := analyze(t, `
t("/bin/cat") {
	let x: int = 1;
}`, true)
	assert.False(t, sink.HasErrors())
	assert.NotEmpty(t, sink.Warnings())
}

func TestAnalyzeMagicNumberWarns(t *testing.T) {
	sink := analyze(t, `
t("/bin/cat") {
	let x: int = 42;
	println(x as string);
}`, false)
	assert.False(t, sink.HasErrors())
	assert.NotEmpty(t, sink.Warnings())
}

func TestAnalyzeMagicNumberSuppressedByFlag(t *testing.T) {
	sink := analyze(t, `
t("/bin/cat") {
	let x: int = 42;
	println(x as string);
}`, true)
	assert.False(t, sink.HasErrors())
	assert.Empty(t, sink.Warnings())
}

func TestAnalyzeUndefinedFunctionCallIsError(t *testing.T) {
	sink := analyze(t, `
t("/bin/cat") {
	let x: int = missing(1);
}`, true)
	assert.True(t, sink.HasErrors())
}

func TestAnalyzeBoolCastIsError(t *testing.T) {
	sink := analyze(t, `
t("/bin/cat") {
	let ok: bool = true;
	let n: int = ok as int;
}`, true)
	assert.True(t, sink.HasErrors())
}

func TestAnalyzeCallArityMismatchIsError(t *testing.T) {
	sink := analyze(t, `
fn add(a: int, b: int): int {
	a + b;
}
t("/bin/cat") {
	let x: int = add(1);
}`, true)
	assert.True(t, sink.HasErrors())
}

func TestAnalyzeEmptyListLiteralNeedsAnnotation(t *testing.T) {
	sink := analyze(t, `
t("/bin/cat") {
	let xs: [int] = [];
	println("ok");
}`, true)
	assert.False(t, sink.HasErrors(), "%v", sink.All())
}
