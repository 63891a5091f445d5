package ast

import (
	"testing"

	"github.com/tesc-lang/tesc/internal/lexer"
)

func ident(name string) *Identifier {
	return &Identifier{Token: lexer.Token{Literal: name}, Value: name}
}

func TestProgramString(t *testing.T) {
	prog := &Program{
		Decls: []Decl{
			&FileLetDecl{&LetStmt{
				Token: lexer.Token{Literal: "let"},
				Name:  ident("x"),
				Type:  "int",
				Value: &IntLiteral{Token: lexer.Token{Literal: "1"}, Value: 1},
			}},
		},
	}

	want := "let x: int = 1;\n"
	if got := prog.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestBinaryExprString(t *testing.T) {
	e := &BinaryExpr{
		Left:     ident("a"),
		Operator: "+",
		Right:    &IntLiteral{Token: lexer.Token{Literal: "1"}, Value: 1},
	}
	if got, want := e.String(), "(a + 1)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestIfStmtWithElseIfChainString(t *testing.T) {
	inner := &IfStmt{
		Cond: ident("b"),
		Then: &BlockStmt{},
	}
	outer := &IfStmt{
		Cond: ident("a"),
		Then: &BlockStmt{},
		Else: inner,
	}
	want := "if a {\n} else if b {\n}"
	if got := outer.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestFileLetDeclSatisfiesDeclAndStatement(t *testing.T) {
	d := &FileLetDecl{&LetStmt{Name: ident("x"), Value: ident("y")}}
	var _ Decl = d
	var _ Statement = d.LetStmt
}

func TestProgramPosOnEmptyProgram(t *testing.T) {
	prog := &Program{}
	pos := prog.Pos()
	if pos.Line != 1 || pos.Column != 1 {
		t.Fatalf("empty program Pos() = %+v, want line 1 column 1", pos)
	}
}
