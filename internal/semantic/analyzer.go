// Package semantic implements tesc's scoped type checker and lints: one
// pass assigns and checks static types for every expression the parser
// produced, and the same pass reports unused bindings, magic numbers, and
// discarded expression results.
package semantic

import (
	"github.com/tesc-lang/tesc/internal/ast"
	"github.com/tesc-lang/tesc/internal/diag"
	"github.com/tesc-lang/tesc/internal/lexer"
	"github.com/tesc-lang/tesc/internal/types"
)

// Signature is a function's static type: its parameter types in order and
// its return type.
type Signature struct {
	Params []types.Type
	Return types.Type
}

// Analyzer walks a parsed Program, assigning types and reporting
// diagnostics into a shared diag.Sink.
type Analyzer struct {
	sink           *diag.Sink
	file           string
	funcs          map[string]*Signature
	noMagicWarning bool
	inConstInit    bool
}

// New creates an Analyzer over one source file (used to tag diagnostic
// spans). noMagicWarning disables the magic-number lint, mirroring the
// CLI's -M/--no-magic-warning flag.
func New(sink *diag.Sink, file string, noMagicWarning bool) *Analyzer {
	a := &Analyzer{
		sink:           sink,
		file:           file,
		noMagicWarning: noMagicWarning,
		funcs:          builtinSignatures(),
	}
	return a
}

// span builds a diagnostic span covering just the start position of an
// AST node, which is what every node's Pos() gives.
func (a *Analyzer) span(pos lexer.Position) lexer.Span {
	return lexer.Span{File: a.file, Start: pos, End: pos}
}

func builtinSignatures() map[string]*Signature {
	return map[string]*Signature{
		"input":   {Params: []types.Type{types.String}, Return: types.None},
		"output":  {Params: []types.Type{types.String}, Return: types.None},
		"print":   {Params: []types.Type{types.String}, Return: types.None},
		"println": {Params: []types.Type{types.String}, Return: types.None},
	}
}

// Analyze type-checks and lints the whole program. It never returns an
// error value — callers check sink.HasErrors() after it returns, since a
// single pass keeps checking past the first problem to report as much as
// it safely can.
func (a *Analyzer) Analyze(prog *ast.Program) {
	file := NewScope()

	// First pass: register every function's signature so calls can appear
	// before the declaration they call (and so functions can call each
	// other, including themselves, regardless of declaration order).
	for _, d := range prog.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if _, exists := a.funcs[fd.Name.Value]; exists {
			a.sink.Error(a.span(fd.Pos()), "function %q already declared", fd.Name.Value)
			continue
		}
		sig := &Signature{Return: types.None}
		if rt, ok := types.FromName(fd.ReturnType); ok {
			sig.Return = rt
		} else {
			a.sink.Error(a.span(fd.Pos()), "unknown return type %q", fd.ReturnType)
		}
		for _, p := range fd.Params {
			pt, ok := types.FromName(p.Type)
			if !ok {
				a.sink.Error(a.span(fd.Pos()), "unknown parameter type %q", p.Type)
			}
			sig.Params = append(sig.Params, pt)
		}
		a.funcs[fd.Name.Value] = sig
	}

	// Second pass: file-scope let/const bindings in declaration order (so a
	// file-scope const must precede its first use just like a local one),
	// then every function and test body in declaration order.
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FileLetDecl:
			a.analyzeLet(decl.LetStmt, file)
		case *ast.FileConstDecl:
			a.analyzeConst(decl.ConstStmt, file)
		}
	}
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			a.analyzeFunc(decl, file)
		case *ast.TestDecl:
			a.analyzeTest(decl, file)
		}
	}
	a.reportUnused(file)
}

func (a *Analyzer) analyzeFunc(fd *ast.FuncDecl, file *Scope) {
	scope := file.Enclose()
	sig := a.funcs[fd.Name.Value]
	for i, p := range fd.Params {
		scope.Define(&Binding{Name: p.Name.Value, Type: sig.Params[i], DeclSpan: p.Name.Token.Span, Used: true})
	}
	retType := sig.Return
	a.analyzeBlockReturning(fd.Body, scope, retType)
}

func (a *Analyzer) analyzeTest(td *ast.TestDecl, file *Scope) {
	scope := file.Enclose()
	cmdType := a.analyzeExpr(td.Command, scope)
	if !cmdType.Equal(types.String) {
		a.sink.Error(a.span(td.Command.Pos()), "test command must be a string, got %s", cmdType)
	}
	a.analyzeBlock(td.Body, scope)
}

// analyzeBlock analyzes a block whose trailing expression value (if any)
// is discarded — if/for bodies and test bodies all work this way.
func (a *Analyzer) analyzeBlock(b *ast.BlockStmt, parent *Scope) {
	scope := parent.Enclose()
	for _, stmt := range b.Stmts {
		a.analyzeStmt(stmt, scope)
	}
	a.reportUnused(scope)
}

// analyzeBlockReturning analyzes a function body: every statement is
// checked the same way, but if want is not types.None the final statement
// must be an expression statement whose type matches want — that
// expression supplies the function's result.
func (a *Analyzer) analyzeBlockReturning(b *ast.BlockStmt, parent *Scope, want types.Type) {
	scope := parent.Enclose()
	for i, stmt := range b.Stmts {
		if i == len(b.Stmts)-1 && !want.Equal(types.None) {
			es, ok := stmt.(*ast.ExprStmt)
			if !ok {
				a.sink.Error(a.span(b.Pos()), "function must end with an expression of type %s", want)
				continue
			}
			got := a.analyzeExpr(es.Expr, scope)
			if !got.Equal(want) {
				a.sink.Error(a.span(es.Expr.Pos()), "function returns %s, body produces %s", want, got)
			}
			continue
		}
		a.analyzeStmt(stmt, scope)
	}
	if len(b.Stmts) == 0 && !want.Equal(types.None) {
		a.sink.Error(a.span(b.Pos()), "function must end with an expression of type %s", want)
	}
	a.reportUnused(scope)
}

func (a *Analyzer) analyzeStmt(stmt ast.Statement, scope *Scope) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		a.analyzeLet(s, scope)
	case *ast.ConstStmt:
		a.analyzeConst(s, scope)
	case *ast.AssignStmt:
		a.analyzeAssign(s, scope)
	case *ast.IfStmt:
		a.analyzeIf(s, scope)
	case *ast.ForStmt:
		a.analyzeFor(s, scope)
	case *ast.BlockStmt:
		a.analyzeBlock(s, scope)
	case *ast.ExprStmt:
		a.analyzeExprStmt(s, scope)
	}
}

func (a *Analyzer) analyzeLet(s *ast.LetStmt, scope *Scope) {
	a.checkRedeclare(s.Name, scope)
	t := a.analyzeExpr(s.Value, scope)
	declared := a.bindingType(s.Type, t, s.Name.Pos(), s.Value.Pos())
	scope.Define(&Binding{Name: s.Name.Value, Type: declared, DeclSpan: s.Name.Token.Span})
}

func (a *Analyzer) analyzeConst(s *ast.ConstStmt, scope *Scope) {
	a.checkRedeclare(s.Name, scope)
	a.inConstInit = true
	t := a.analyzeExpr(s.Value, scope)
	a.inConstInit = false
	declared := a.bindingType(s.Type, t, s.Name.Pos(), s.Value.Pos())
	scope.Define(&Binding{Name: s.Name.Value, Type: declared, Const: true, DeclSpan: s.Name.Token.Span})
}

// bindingType resolves a let/const's annotated type name against the
// initializer's inferred type t, reporting a mismatch. An empty list
// literal infers as [none], which unifies with any declared list type
// rather than being compared for equality, since an empty list literal
// has no inferable element type on its own.
func (a *Analyzer) bindingType(name string, t types.Type, namePos, valuePos lexer.Position) types.Type {
	declared, ok := types.FromName(name)
	if !ok {
		a.sink.Error(a.span(namePos), "unknown type %q", name)
		return t
	}
	if t.Kind == types.KindList && t.Elem != nil && t.Elem.Equal(types.None) && declared.Kind == types.KindList {
		return declared
	}
	if !t.Equal(declared) {
		a.sink.Error(a.span(valuePos), "initializer has type %s, expected %s", t, declared)
	}
	return declared
}

// checkRedeclare enforces that a let/const never shadows an existing const
// anywhere in the enclosing chain — shadowing a const is treated as
// reassigning it. Redeclaring a let binding, even in the same scope and
// with a different type, is allowed and replaces the earlier binding.
func (a *Analyzer) checkRedeclare(name *ast.Identifier, scope *Scope) {
	if b, ok := scope.Lookup(name.Value); ok && b.Const {
		a.sink.ErrorWithSecondary(name.Token.Span, b.DeclSpan, "originally declared here",
			"cannot redeclare constant %q", name.Value)
	}
}

func (a *Analyzer) analyzeAssign(s *ast.AssignStmt, scope *Scope) {
	valType := a.analyzeExpr(s.Value, scope)
	if s.Target.Value == "_" {
		return
	}
	b, ok := scope.Lookup(s.Target.Value)
	if !ok {
		a.sink.Error(s.Target.Token.Span, "undefined: %q", s.Target.Value)
		return
	}
	if b.Const {
		a.sink.ErrorWithSecondary(s.Target.Token.Span, b.DeclSpan, "declared here",
			"cannot assign to constant %q", s.Target.Value)
		return
	}
	if !valType.Equal(b.Type) {
		a.sink.Error(a.span(s.Value.Pos()), "cannot assign %s to %q of type %s", valType, s.Target.Value, b.Type)
	}
}

func (a *Analyzer) analyzeIf(s *ast.IfStmt, scope *Scope) {
	condType := a.analyzeExpr(s.Cond, scope)
	if !condType.Equal(types.Bool) {
		a.sink.Error(a.span(s.Cond.Pos()), "if condition must be bool, got %s", condType)
	}
	a.analyzeBlock(s.Then, scope)
	switch e := s.Else.(type) {
	case *ast.BlockStmt:
		a.analyzeBlock(e, scope)
	case *ast.IfStmt:
		a.analyzeIf(e, scope)
	}
}

func (a *Analyzer) analyzeFor(s *ast.ForStmt, scope *Scope) {
	iterType := a.analyzeExpr(s.Iterable, scope)
	var elemType types.Type
	switch iterType.Kind {
	case types.KindList:
		elemType = *iterType.Elem
	case types.KindRegex:
		elemType = types.String
	default:
		a.sink.Error(a.span(s.Iterable.Pos()), "for-in requires a regex or a list, got %s", iterType)
		elemType = types.None
	}
	varType, ok := types.FromName(s.VarType)
	if !ok {
		a.sink.Error(a.span(s.Var.Pos()), "unknown type %q", s.VarType)
		varType = elemType
	} else if !elemType.Equal(types.None) && !varType.Equal(elemType) {
		a.sink.Error(a.span(s.Var.Pos()), "loop variable %q declared as %s, but iterable elements are %s", s.Var.Value, varType, elemType)
	}
	body := scope.Enclose()
	body.Define(&Binding{Name: s.Var.Value, Type: varType, DeclSpan: s.Var.Token.Span})
	for _, stmt := range s.Body.Stmts {
		a.analyzeStmt(stmt, body)
	}
	a.reportUnused(body)
}

func (a *Analyzer) analyzeExprStmt(s *ast.ExprStmt, scope *Scope) {
	t := a.analyzeExpr(s.Expr, scope)
	if !t.Equal(types.None) {
		a.sink.Warn(a.span(s.Expr.Pos()), "result of type %s is discarded; assign to _ if intentional", t)
	}
}

func (a *Analyzer) reportUnused(scope *Scope) {
	for _, b := range scope.Own() {
		if !b.Used && b.Name != "_" {
			a.sink.Warn(b.DeclSpan, "%q declared but never used", b.Name)
		}
	}
}
