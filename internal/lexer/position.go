package lexer

import "fmt"

// Position is a single point in a source file: a 1-based line, a 1-based
// column counted in runes (not bytes — see the Lexer doc comment), and the
// byte offset from the start of the file.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span covers a half-open range of a source file, from Start (inclusive) to
// End (exclusive). File is the path given on the command line, or "<eval>"
// when the source came from an inline string.
type Span struct {
	File  string
	Start Position
	End   Position
}
