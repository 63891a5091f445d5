package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextToken(t *testing.T) {
	input := `let x = 5;
x = x + 10;
`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"let", LET},
		{"x", IDENT},
		{"=", ASSIGN},
		{"5", INT},
		{";", SEMI},
		{"x", IDENT},
		{"=", ASSIGN},
		{"x", IDENT},
		{"+", PLUS},
		{"10", INT},
		{";", SEMI},
		{"", EOF},
	}

	l := New("test.tesc", input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywordsAndPunctuation(t *testing.T) {
	input := `fn if else for in as true false none { } ( ) [ ] , : ;`

	expected := []TokenType{
		FN, IF, ELSE, FOR, IN, AS, TRUE, FALSE, NONE,
		LBRACE, RBRACE, LPAREN, RPAREN, LBRACKET, RBRACKET, COMMA, COLON, SEMI, EOF,
	}

	l := New("test.tesc", input)
	for i, want := range expected {
		tok := l.NextToken()
		assert.Equalf(t, want, tok.Type, "token %d", i)
	}
}

func TestOperators(t *testing.T) {
	// A '/' right after an operator would open a regex literal, so the
	// division operator is checked after an operand.
	input := `== != <= >= < > && || - * x /`
	expected := []TokenType{EQ, NEQ, LTE, GTE, LT, GT, AND, OR, MINUS, STAR, IDENT, SLASH, EOF}

	l := New("test.tesc", input)
	for i, want := range expected {
		tok := l.NextToken()
		assert.Equalf(t, want, tok.Type, "token %d", i)
	}
}

func TestDivisionVsRegexDisambiguation(t *testing.T) {
	l := New("test.tesc", `a / b; f(/ab+/); [/x/];`)

	want := []TokenType{
		IDENT, SLASH, IDENT, SEMI,
		IDENT, LPAREN, REGEX, RPAREN, SEMI,
		LBRACKET, REGEX, RBRACKET, SEMI,
		EOF,
	}
	for i, w := range want {
		tok := l.NextToken()
		assert.Equalf(t, w, tok.Type, "token %d (literal=%q)", i, tok.Literal)
	}
}

func TestStringEscapes(t *testing.T) {
	l := New("test.tesc", `"hello\nworld\t\"quoted\""`)
	tok := l.NextToken()
	assert.Equal(t, STRING, tok.Type)
	assert.Equal(t, "hello\nworld\t\"quoted\"", tok.Literal)
}

func TestBacktickRegexLiteral(t *testing.T) {
	l := New("test.tesc", "`\\d{2,3}`")
	tok := l.NextToken()
	assert.Equal(t, REGEX, tok.Type)
	assert.Equal(t, `\d{2,3}`, tok.Literal)
}

func TestUnterminatedStringIsError(t *testing.T) {
	l := New("test.tesc", `"unterminated`)
	l.NextToken()
	assert.NotEmpty(t, l.Errors())
}

func TestColumnsCountRunes(t *testing.T) {
	l := New("test.tesc", "Δx = 1;")
	tok := l.NextToken() // Δx
	assert.Equal(t, 1, tok.Span.Start.Column)
	tok = l.NextToken() // =
	assert.Equal(t, 4, tok.Span.Start.Column)
}
