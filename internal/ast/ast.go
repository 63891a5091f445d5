// Package ast defines the Abstract Syntax Tree node types for tesc.
package ast

import (
	"bytes"
	"strings"

	"github.com/tesc-lang/tesc/internal/lexer"
)

// Node is the base interface for all AST nodes.
type Node interface {
	// TokenLiteral returns the literal value of the token this node is associated with.
	TokenLiteral() string

	// String returns a string representation of the node for debugging and testing.
	String() string

	// Pos returns the position of the node in the source for diagnostics.
	Pos() lexer.Position
}

// Expression represents any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement represents a node that performs an action but doesn't produce a value.
type Statement interface {
	Node
	statementNode()
}

// Decl is a top-level declaration: a test, a function, or a file-scope
// let/const binding.
type Decl interface {
	Node
	declNode()
}

// Program is the root node of the AST: an ordered list of top-level
// declarations.
type Program struct {
	Decls []Decl
}

func (p *Program) TokenLiteral() string {
	if len(p.Decls) > 0 {
		return p.Decls[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, d := range p.Decls {
		out.WriteString(d.String())
		out.WriteString("\n")
	}
	return out.String()
}

func (p *Program) Pos() lexer.Position {
	if len(p.Decls) > 0 {
		return p.Decls[0].Pos()
	}
	return lexer.Position{Line: 1, Column: 1, Offset: 0}
}

// Identifier is a name reference: a variable, function, or parameter name.
type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }
func (i *Identifier) Pos() lexer.Position  { return i.Token.Span.Start }

// IntLiteral is an integer literal: 42.
type IntLiteral struct {
	Token lexer.Token
	Value int64
}

func (l *IntLiteral) expressionNode()      {}
func (l *IntLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *IntLiteral) String() string       { return l.Token.Literal }
func (l *IntLiteral) Pos() lexer.Position  { return l.Token.Span.Start }

// FloatLiteral is a floating-point literal: 3.14.
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (l *FloatLiteral) expressionNode()      {}
func (l *FloatLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *FloatLiteral) String() string       { return l.Token.Literal }
func (l *FloatLiteral) Pos() lexer.Position  { return l.Token.Span.Start }

// StringLiteral is a string literal, already unescaped by the lexer.
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (l *StringLiteral) expressionNode()      {}
func (l *StringLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *StringLiteral) String() string       { return "\"" + l.Value + "\"" }
func (l *StringLiteral) Pos() lexer.Position  { return l.Token.Span.Start }

// RegexLiteral is a regex literal, stored as its raw pattern text (the
// lexer strips delimiters but keeps escapes intact for internal/rex to
// parse).
type RegexLiteral struct {
	Token   lexer.Token
	Pattern string
}

func (l *RegexLiteral) expressionNode()      {}
func (l *RegexLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *RegexLiteral) String() string       { return "`" + l.Pattern + "`" }
func (l *RegexLiteral) Pos() lexer.Position  { return l.Token.Span.Start }

// BoolLiteral is the literal true or false.
type BoolLiteral struct {
	Token lexer.Token
	Value bool
}

func (l *BoolLiteral) expressionNode()      {}
func (l *BoolLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *BoolLiteral) String() string       { return l.Token.Literal }
func (l *BoolLiteral) Pos() lexer.Position  { return l.Token.Span.Start }

// NoneLiteral is the literal none, the sole value of the none type.
type NoneLiteral struct {
	Token lexer.Token
}

func (l *NoneLiteral) expressionNode()      {}
func (l *NoneLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *NoneLiteral) String() string       { return "none" }
func (l *NoneLiteral) Pos() lexer.Position  { return l.Token.Span.Start }

// ListLiteral is a bracketed list of expressions: [1, 2, 3].
type ListLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (l *ListLiteral) expressionNode()      {}
func (l *ListLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *ListLiteral) Pos() lexer.Position  { return l.Token.Span.Start }
func (l *ListLiteral) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// BinaryExpr is a binary operation: a + b, x < y, a in xs.
type BinaryExpr struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (e *BinaryExpr) expressionNode()      {}
func (e *BinaryExpr) TokenLiteral() string { return e.Token.Literal }
func (e *BinaryExpr) Pos() lexer.Position  { return e.Token.Span.Start }
func (e *BinaryExpr) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(e.Left.String())
	out.WriteString(" " + e.Operator + " ")
	out.WriteString(e.Right.String())
	out.WriteString(")")
	return out.String()
}

// UnaryExpr is a unary operation: -x, !b.
type UnaryExpr struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (e *UnaryExpr) expressionNode()      {}
func (e *UnaryExpr) TokenLiteral() string { return e.Token.Literal }
func (e *UnaryExpr) Pos() lexer.Position  { return e.Token.Span.Start }
func (e *UnaryExpr) String() string {
	return "(" + e.Operator + e.Right.String() + ")"
}

// CastExpr is a type-cast expression: x as int.
type CastExpr struct {
	Token  lexer.Token // the 'as' token
	Value  Expression
	Target string // "string" | "int" | "float"
}

func (e *CastExpr) expressionNode()      {}
func (e *CastExpr) TokenLiteral() string { return e.Token.Literal }
func (e *CastExpr) Pos() lexer.Position  { return e.Token.Span.Start }
func (e *CastExpr) String() string {
	return "(" + e.Value.String() + " as " + e.Target + ")"
}

// GroupedExpr is a parenthesized expression.
type GroupedExpr struct {
	Token lexer.Token // the '(' token
	Inner Expression
}

func (e *GroupedExpr) expressionNode()      {}
func (e *GroupedExpr) TokenLiteral() string { return e.Token.Literal }
func (e *GroupedExpr) Pos() lexer.Position  { return e.Token.Span.Start }
func (e *GroupedExpr) String() string       { return "(" + e.Inner.String() + ")" }

// CallExpr is a function call: f(a, b).
type CallExpr struct {
	Token    lexer.Token // the '(' token
	Callee   Expression
	Args     []Expression
}

func (e *CallExpr) expressionNode()      {}
func (e *CallExpr) TokenLiteral() string { return e.Token.Literal }
func (e *CallExpr) Pos() lexer.Position  { return e.Token.Span.Start }
func (e *CallExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}

// IndexExpr is a list index: xs[i].
type IndexExpr struct {
	Token lexer.Token // the '[' token
	Value Expression
	Index Expression
}

func (e *IndexExpr) expressionNode()      {}
func (e *IndexExpr) TokenLiteral() string { return e.Token.Literal }
func (e *IndexExpr) Pos() lexer.Position  { return e.Token.Span.Start }
func (e *IndexExpr) String() string {
	return e.Value.String() + "[" + e.Index.String() + "]"
}

// BlockStmt is a brace-delimited sequence of statements, introducing a new
// lexical scope.
type BlockStmt struct {
	Token lexer.Token // the '{' token
	Stmts []Statement
}

func (s *BlockStmt) statementNode()      {}
func (s *BlockStmt) TokenLiteral() string { return s.Token.Literal }
func (s *BlockStmt) Pos() lexer.Position  { return s.Token.Span.Start }
func (s *BlockStmt) String() string {
	var out bytes.Buffer
	out.WriteString("{\n")
	for _, st := range s.Stmts {
		out.WriteString("  ")
		out.WriteString(strings.ReplaceAll(st.String(), "\n", "\n  "))
		out.WriteString("\n")
	}
	out.WriteString("}")
	return out.String()
}

// ExprStmt is a statement consisting of a single expression followed by ';'.
type ExprStmt struct {
	Token lexer.Token
	Expr  Expression
}

func (s *ExprStmt) statementNode()      {}
func (s *ExprStmt) TokenLiteral() string { return s.Token.Literal }
func (s *ExprStmt) Pos() lexer.Position  { return s.Token.Span.Start }
func (s *ExprStmt) String() string {
	if s.Expr != nil {
		return s.Expr.String() + ";"
	}
	return ";"
}

// LetStmt declares a mutable local binding: let x: int = 1;
type LetStmt struct {
	Token lexer.Token // the 'let' token
	Name  *Identifier
	Type  string
	Value Expression
}

func (s *LetStmt) statementNode()      {}
func (s *LetStmt) TokenLiteral() string { return s.Token.Literal }
func (s *LetStmt) Pos() lexer.Position  { return s.Token.Span.Start }
func (s *LetStmt) String() string {
	return "let " + s.Name.String() + ": " + s.Type + " = " + s.Value.String() + ";"
}

// ConstStmt declares an immutable local binding: const x: int = 1;
type ConstStmt struct {
	Token lexer.Token // the 'const' token
	Name  *Identifier
	Type  string
	Value Expression
}

func (s *ConstStmt) statementNode()      {}
func (s *ConstStmt) TokenLiteral() string { return s.Token.Literal }
func (s *ConstStmt) Pos() lexer.Position  { return s.Token.Span.Start }
func (s *ConstStmt) String() string {
	return "const " + s.Name.String() + ": " + s.Type + " = " + s.Value.String() + ";"
}

// AssignStmt assigns a new value to an existing binding: x = y + 1;
type AssignStmt struct {
	Token  lexer.Token // the '=' token
	Target *Identifier
	Value  Expression
}

func (s *AssignStmt) statementNode()      {}
func (s *AssignStmt) TokenLiteral() string { return s.Token.Literal }
func (s *AssignStmt) Pos() lexer.Position  { return s.Token.Span.Start }
func (s *AssignStmt) String() string {
	return s.Target.String() + " = " + s.Value.String() + ";"
}

// IfStmt is a conditional statement with an optional else branch (which may
// itself be another IfStmt, for "else if" chains).
type IfStmt struct {
	Token     lexer.Token // the 'if' token
	Cond      Expression
	Then      *BlockStmt
	Else      Statement // *BlockStmt, *IfStmt, or nil
}

func (s *IfStmt) statementNode()      {}
func (s *IfStmt) TokenLiteral() string { return s.Token.Literal }
func (s *IfStmt) Pos() lexer.Position  { return s.Token.Span.Start }
func (s *IfStmt) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(s.Cond.String())
	out.WriteString(" ")
	out.WriteString(s.Then.String())
	if s.Else != nil {
		out.WriteString(" else ")
		out.WriteString(s.Else.String())
	}
	return out.String()
}

// ForStmt is a "for x: type in xs { ... }" loop over a regex or a list.
type ForStmt struct {
	Token    lexer.Token // the 'for' token
	Var      *Identifier
	VarType  string
	Iterable Expression
	Body     *BlockStmt
}

func (s *ForStmt) statementNode()      {}
func (s *ForStmt) TokenLiteral() string { return s.Token.Literal }
func (s *ForStmt) Pos() lexer.Position  { return s.Token.Span.Start }
func (s *ForStmt) String() string {
	return "for " + s.Var.String() + ": " + s.VarType + " in " + s.Iterable.String() + " " + s.Body.String()
}

// Param is a single function parameter: a name and its declared type.
type Param struct {
	Name *Identifier
	Type string
}

// FuncDecl declares a named function: fn name(params) : type { ... }
type FuncDecl struct {
	Token      lexer.Token // the 'fn' token
	Name       *Identifier
	Params     []Param
	ReturnType string
	Body       *BlockStmt
}

func (d *FuncDecl) declNode()          {}
func (d *FuncDecl) TokenLiteral() string { return d.Token.Literal }
func (d *FuncDecl) Pos() lexer.Position  { return d.Token.Span.Start }
func (d *FuncDecl) String() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.Name.String() + ": " + p.Type
	}
	return "fn " + d.Name.String() + "(" + strings.Join(parts, ", ") + ") : " + d.ReturnType + " " + d.Body.String()
}

// TestDecl declares a test: a command line to run and the body that drives
// its input/output. The declaration is its name directly followed by "(" —
// there is no leading keyword.
type TestDecl struct {
	Token   lexer.Token // the name identifier's token
	Name    *Identifier
	Command Expression // must evaluate to a string
	Body    *BlockStmt
}

func (d *TestDecl) declNode()          {}
func (d *TestDecl) TokenLiteral() string { return d.Token.Literal }
func (d *TestDecl) Pos() lexer.Position  { return d.Token.Span.Start }
func (d *TestDecl) String() string {
	return d.Name.String() + "(" + d.Command.String() + ") " + d.Body.String()
}

// FileLetDecl and FileConstDecl wrap a top-level let/const binding so they
// satisfy Decl as well as appearing inside function/test bodies as
// Statements.
type FileLetDecl struct{ *LetStmt }

func (d *FileLetDecl) declNode() {}

type FileConstDecl struct{ *ConstStmt }

func (d *FileConstDecl) declNode() {}
