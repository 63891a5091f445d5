// Package parser implements a recursive-descent, precedence-climbing
// parser for tesc source.
package parser

import (
	"github.com/tesc-lang/tesc/internal/ast"
	"github.com/tesc-lang/tesc/internal/diag"
	"github.com/tesc-lang/tesc/internal/lexer"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	OR      // ||
	AND     // &&
	EQUALS  // == !=
	COMPARE // < <= > >=
	MEMBERSHIP // in
	SUM     // + -
	PRODUCT // * /
	CAST    // as
	PREFIX  // -x, !x
	CALLIDX // f(x), xs[i]
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:       OR,
	lexer.AND:      AND,
	lexer.EQ:       EQUALS,
	lexer.NEQ:      EQUALS,
	lexer.LT:       COMPARE,
	lexer.LTE:      COMPARE,
	lexer.GT:       COMPARE,
	lexer.GTE:      COMPARE,
	lexer.IN:       MEMBERSHIP,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.STAR:     PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.AS:       CAST,
	lexer.LPAREN:   CALLIDX,
	lexer.LBRACKET: CALLIDX,
}

// Parser turns a token stream from internal/lexer into an *ast.Program,
// recording fatal syntax errors in a diag.Sink as it goes and recovering
// by skipping to the next statement boundary.
type Parser struct {
	l    *lexer.Lexer
	sink *diag.Sink

	curTok  lexer.Token
	peekTok lexer.Token
}

// New creates a Parser reading tokens from l, reporting errors into sink.
func New(l *lexer.Lexer, sink *diag.Sink) *Parser {
	p := &Parser{l: l, sink: sink}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.curTok.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peekTok.Type == t }

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peekTok.Span, "expected %s, got %s", t, p.peekTok.Type)
	return false
}

func (p *Parser) errorf(span lexer.Span, format string, args ...any) {
	p.sink.Error(span, format, args...)
}

// parseTypeName parses a type annotation: a bare identifier (int, string,
// float, bool, regex, none) or a bracketed list type ([int], [[string]]).
// The peeked token must be '[' or an identifier; on success curTok ends on
// the annotation's last token, matching the expect() calling convention.
func (p *Parser) parseTypeName() (string, bool) {
	if p.peekIs(lexer.LBRACKET) {
		p.nextToken()
		inner, ok := p.parseTypeName()
		if !ok {
			return "", false
		}
		if !p.expect(lexer.RBRACKET) {
			return "", false
		}
		return "[" + inner + "]", true
	}
	if !p.expect(lexer.IDENT) {
		return "", false
	}
	return p.curTok.Literal, true
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekTok.Type]; ok {
		return pr
	}
	return LOWEST
}

// synchronize skips tokens until the next statement boundary, so one
// syntax error doesn't cascade into spurious follow-on errors.
func (p *Parser) synchronize() {
	for !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SEMI) {
			p.nextToken()
			return
		}
		if p.peekIs(lexer.RBRACE) {
			p.nextToken()
			return
		}
		p.nextToken()
	}
}

// ParseProgram parses the whole input as a sequence of top-level
// declarations.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(lexer.EOF) {
		d := p.parseDecl()
		if d != nil {
			prog.Decls = append(prog.Decls, d)
			p.nextToken()
		} else {
			p.synchronize()
		}
	}
	return prog
}

func (p *Parser) parseDecl() ast.Decl {
	switch p.curTok.Type {
	case lexer.FN:
		return p.parseFuncDecl()
	case lexer.IDENT:
		if p.peekIs(lexer.LPAREN) {
			return p.parseTestDecl()
		}
		p.errorf(p.curTok.Span, "unexpected token %s at top level", p.curTok.Literal)
		return nil
	case lexer.LET:
		if s := p.parseLetStmt(); s != nil {
			return &ast.FileLetDecl{LetStmt: s}
		}
		return nil
	case lexer.CONST:
		if s := p.parseConstStmt(); s != nil {
			return &ast.FileConstDecl{ConstStmt: s}
		}
		return nil
	default:
		p.errorf(p.curTok.Span, "unexpected token %s at top level", p.curTok.Type)
		return nil
	}
}

// parseTestDecl parses: name("command line") { ... }
//
// A test declaration is a bare identifier directly followed by "(" — the
// identifier itself is the test's name, not a leading keyword.
func (p *Parser) parseTestDecl() *ast.TestDecl {
	tok := p.curTok
	name := &ast.Identifier{Token: p.curTok, Value: p.curTok.Literal}
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	cmd := p.parseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockStmt()
	return &ast.TestDecl{Token: tok, Name: name, Command: cmd, Body: body}
}

// parseFuncDecl parses: fn name(p1: type, p2: type) : returntype { ... }
func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	tok := p.curTok
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curTok, Value: p.curTok.Literal}
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	var params []ast.Param
	for !p.peekIs(lexer.RPAREN) {
		if !p.expect(lexer.IDENT) {
			return nil
		}
		pname := &ast.Identifier{Token: p.curTok, Value: p.curTok.Literal}
		if !p.expect(lexer.COLON) {
			return nil
		}
		ptype, ok := p.parseTypeName()
		if !ok {
			return nil
		}
		params = append(params, ast.Param{Name: pname, Type: ptype})
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	if !p.expect(lexer.COLON) {
		return nil
	}
	retType, ok := p.parseTypeName()
	if !ok {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockStmt()
	return &ast.FuncDecl{Token: tok, Name: name, Params: params, ReturnType: retType, Body: body}
}

func (p *Parser) parseBlockStmt() *ast.BlockStmt {
	tok := p.curTok // '{'
	block := &ast.BlockStmt{Token: tok}
	p.nextToken()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		stmt := p.parseStmt()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		} else {
			p.synchronize()
			continue
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseStmt() ast.Statement {
	switch p.curTok.Type {
	case lexer.LET:
		return p.parseLetStmt()
	case lexer.CONST:
		return p.parseConstStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.LBRACE:
		return p.parseBlockStmt()
	case lexer.IDENT:
		if p.peekIs(lexer.ASSIGN) {
			return p.parseAssignStmt()
		}
		return p.parseExprStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseLetStmt() *ast.LetStmt {
	tok := p.curTok
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curTok, Value: p.curTok.Literal}
	if !p.expect(lexer.COLON) {
		return nil
	}
	letType, ok := p.parseTypeName()
	if !ok {
		return nil
	}
	if !p.expect(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if !p.expect(lexer.SEMI) {
		return nil
	}
	return &ast.LetStmt{Token: tok, Name: name, Type: letType, Value: value}
}

func (p *Parser) parseConstStmt() *ast.ConstStmt {
	tok := p.curTok
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curTok, Value: p.curTok.Literal}
	if !p.expect(lexer.COLON) {
		return nil
	}
	constType, ok := p.parseTypeName()
	if !ok {
		return nil
	}
	if !p.expect(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if !p.expect(lexer.SEMI) {
		return nil
	}
	return &ast.ConstStmt{Token: tok, Name: name, Type: constType, Value: value}
}

func (p *Parser) parseAssignStmt() *ast.AssignStmt {
	target := &ast.Identifier{Token: p.curTok, Value: p.curTok.Literal}
	p.nextToken() // '='
	tok := p.curTok
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if !p.expect(lexer.SEMI) {
		return nil
	}
	return &ast.AssignStmt{Token: tok, Target: target, Value: value}
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	tok := p.curTok
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	then := p.parseBlockStmt()
	stmt := &ast.IfStmt{Token: tok, Cond: cond, Then: then}
	if p.peekIs(lexer.ELSE) {
		p.nextToken()
		if p.peekIs(lexer.IF) {
			p.nextToken()
			stmt.Else = p.parseIfStmt()
		} else if p.expect(lexer.LBRACE) {
			stmt.Else = p.parseBlockStmt()
		}
	}
	return stmt
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	tok := p.curTok
	if !p.expect(lexer.IDENT) {
		return nil
	}
	v := &ast.Identifier{Token: p.curTok, Value: p.curTok.Literal}
	if !p.expect(lexer.COLON) {
		return nil
	}
	varType, ok := p.parseTypeName()
	if !ok {
		return nil
	}
	if !p.expect(lexer.IN) {
		return nil
	}
	p.nextToken()
	iter := p.parseExpression(LOWEST)
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockStmt()
	return &ast.ForStmt{Token: tok, Var: v, VarType: varType, Iterable: iter, Body: body}
}

func (p *Parser) parseExprStmt() *ast.ExprStmt {
	tok := p.curTok
	expr := p.parseExpression(LOWEST)
	if !p.expect(lexer.SEMI) {
		return nil
	}
	return &ast.ExprStmt{Token: tok, Expr: expr}
}

// parseExpression is the precedence-climbing core: it parses one prefix
// expression, then repeatedly folds in infix/cast/call/index operators
// whose precedence exceeds minPrec. All binary operators including `as`
// are left-associative; `in` is not chainable: `a in b in c` is reported
// as a syntax error (a parenthesized `(a in b) in c` is accepted).
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for !p.peekIs(lexer.SEMI) && minPrec < p.peekPrecedence() {
		switch p.peekTok.Type {
		case lexer.LPAREN:
			p.nextToken()
			left = p.parseCall(left)
		case lexer.LBRACKET:
			p.nextToken()
			left = p.parseIndex(left)
		case lexer.AS:
			p.nextToken()
			left = p.parseCast(left)
		default:
			if p.peekIs(lexer.IN) {
				if be, ok := left.(*ast.BinaryExpr); ok && be.Operator == "in" {
					p.errorf(p.peekTok.Span, "`in` cannot be chained")
				}
			}
			p.nextToken()
			left = p.parseBinary(left)
		}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.curTok.Type {
	case lexer.IDENT:
		return &ast.Identifier{Token: p.curTok, Value: p.curTok.Literal}
	case lexer.INT:
		return p.parseIntLiteral()
	case lexer.FLOAT:
		return p.parseFloatLiteral()
	case lexer.STRING:
		return &ast.StringLiteral{Token: p.curTok, Value: p.curTok.Literal}
	case lexer.REGEX:
		return &ast.RegexLiteral{Token: p.curTok, Pattern: p.curTok.Literal}
	case lexer.TRUE, lexer.FALSE:
		return &ast.BoolLiteral{Token: p.curTok, Value: p.curTok.Type == lexer.TRUE}
	case lexer.NONE:
		return &ast.NoneLiteral{Token: p.curTok}
	case lexer.MINUS, lexer.NOT:
		return p.parseUnary()
	case lexer.LPAREN:
		return p.parseGrouped()
	case lexer.LBRACKET:
		return p.parseListLiteral()
	default:
		p.errorf(p.curTok.Span, "unexpected token %s", p.curTok.Type)
		return nil
	}
}

func (p *Parser) parseIntLiteral() ast.Expression {
	tok := p.curTok
	var v int64
	for _, r := range tok.Literal {
		v = v*10 + int64(r-'0')
	}
	return &ast.IntLiteral{Token: tok, Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.curTok
	var v float64
	intPart := true
	div := 1.0
	for _, r := range tok.Literal {
		if r == '.' {
			intPart = false
			continue
		}
		d := float64(r - '0')
		if intPart {
			v = v*10 + d
		} else {
			div *= 10
			v += d / div
		}
	}
	return &ast.FloatLiteral{Token: tok, Value: v}
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.curTok
	op := tok.Literal
	p.nextToken()
	right := p.parseExpression(PREFIX)
	return &ast.UnaryExpr{Token: tok, Operator: op, Right: right}
}

func (p *Parser) parseGrouped() ast.Expression {
	tok := p.curTok
	p.nextToken()
	inner := p.parseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return &ast.GroupedExpr{Token: tok, Inner: inner}
}

func (p *Parser) parseListLiteral() ast.Expression {
	tok := p.curTok
	lit := &ast.ListLiteral{Token: tok}
	if p.peekIs(lexer.RBRACKET) {
		p.nextToken()
		return lit
	}
	p.nextToken()
	lit.Elements = append(lit.Elements, p.parseExpression(LOWEST))
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		lit.Elements = append(lit.Elements, p.parseExpression(LOWEST))
	}
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	return lit
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	tok := p.curTok
	prec := precedences[tok.Type]
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.BinaryExpr{Token: tok, Left: left, Operator: tok.Literal, Right: right}
}

func (p *Parser) parseCast(left ast.Expression) ast.Expression {
	tok := p.curTok // 'as'
	if !p.expect(lexer.IDENT) {
		return nil
	}
	return &ast.CastExpr{Token: tok, Value: left, Target: p.curTok.Literal}
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	tok := p.curTok // '('
	call := &ast.CallExpr{Token: tok, Callee: callee}
	if p.peekIs(lexer.RPAREN) {
		p.nextToken()
		return call
	}
	p.nextToken()
	call.Args = append(call.Args, p.parseExpression(LOWEST))
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		call.Args = append(call.Args, p.parseExpression(LOWEST))
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return call
}

func (p *Parser) parseIndex(value ast.Expression) ast.Expression {
	tok := p.curTok // '['
	p.nextToken()
	idx := p.parseExpression(LOWEST)
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	return &ast.IndexExpr{Token: tok, Value: value, Index: idx}
}
