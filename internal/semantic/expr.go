package semantic

import (
	"github.com/tesc-lang/tesc/internal/ast"
	"github.com/tesc-lang/tesc/internal/lexer"
	"github.com/tesc-lang/tesc/internal/rex"
	"github.com/tesc-lang/tesc/internal/types"
)

// numericMagicExempt are integer/float values common enough in ordinary
// arithmetic (loop bounds, sign flips) that flagging them as magic numbers
// would be noise rather than signal.
var numericMagicExempt = map[float64]bool{0: true, 1: true, -1: true}

// analyzeExpr assigns and returns the static type of e, reporting any
// type error it finds along the way. It always returns a usable Type —
// types.None on error — so callers can keep checking the surrounding
// statement instead of aborting at the first mistake.
func (a *Analyzer) analyzeExpr(e ast.Expression, scope *Scope) types.Type {
	switch expr := e.(type) {
	case *ast.Identifier:
		return a.analyzeIdentifier(expr, scope)
	case *ast.IntLiteral:
		a.checkMagic(float64(expr.Value), expr.Pos())
		return types.Int
	case *ast.FloatLiteral:
		a.checkMagic(expr.Value, expr.Pos())
		return types.Float
	case *ast.StringLiteral:
		return types.String
	case *ast.BoolLiteral:
		return types.Bool
	case *ast.NoneLiteral:
		return types.None
	case *ast.RegexLiteral:
		if _, err := rex.Parse(expr.Pattern); err != nil {
			a.sink.Error(a.span(expr.Pos()), "invalid regex literal: %s", err)
		}
		return types.Regex
	case *ast.ListLiteral:
		return a.analyzeListLiteral(expr, scope)
	case *ast.BinaryExpr:
		return a.analyzeBinary(expr, scope)
	case *ast.UnaryExpr:
		return a.analyzeUnary(expr, scope)
	case *ast.CastExpr:
		return a.analyzeCast(expr, scope)
	case *ast.GroupedExpr:
		return a.analyzeExpr(expr.Inner, scope)
	case *ast.CallExpr:
		return a.analyzeCall(expr, scope)
	case *ast.IndexExpr:
		return a.analyzeIndexExpr(expr, scope)
	default:
		a.sink.Error(a.span(e.Pos()), "unsupported expression")
		return types.None
	}
}

func (a *Analyzer) checkMagic(v float64, pos lexer.Position) {
	if a.noMagicWarning || a.inConstInit {
		return
	}
	if numericMagicExempt[v] {
		return
	}
	a.sink.Warn(a.span(pos), "magic number %v; consider declaring a named const", v)
}

func (a *Analyzer) analyzeIdentifier(id *ast.Identifier, scope *Scope) types.Type {
	b, ok := scope.Lookup(id.Value)
	if !ok {
		a.sink.Error(a.span(id.Pos()), "undefined: %q", id.Value)
		return types.None
	}
	b.Used = true
	return b.Type
}

func (a *Analyzer) analyzeListLiteral(l *ast.ListLiteral, scope *Scope) types.Type {
	if len(l.Elements) == 0 {
		return types.List(types.None)
	}
	elemType := a.analyzeExpr(l.Elements[0], scope)
	for _, elem := range l.Elements[1:] {
		t := a.analyzeExpr(elem, scope)
		if !t.Equal(elemType) {
			a.sink.Error(a.span(elem.Pos()), "list element has type %s, expected %s", t, elemType)
		}
	}
	return types.List(elemType)
}

func (a *Analyzer) analyzeBinary(e *ast.BinaryExpr, scope *Scope) types.Type {
	left := a.analyzeExpr(e.Left, scope)
	right := a.analyzeExpr(e.Right, scope)

	switch e.Operator {
	case "&&", "||":
		if !left.Equal(types.Bool) || !right.Equal(types.Bool) {
			a.sink.Error(a.span(e.Pos()), "%s requires bool operands, got %s and %s", e.Operator, left, right)
			return types.Bool
		}
		return types.Bool
	case "==", "!=":
		if !left.Equal(right) {
			a.sink.Error(a.span(e.Pos()), "cannot compare %s and %s", left, right)
		}
		return types.Bool
	case "<", "<=", ">", ">=":
		if !isOrdered(left) || !left.Equal(right) {
			a.sink.Error(a.span(e.Pos()), "%s requires two operands of the same ordered type, got %s and %s", e.Operator, left, right)
		}
		return types.Bool
	case "+", "-", "*", "/":
		return a.analyzeArith(e, left, right)
	case "in":
		return a.analyzeMembership(e, left, right)
	default:
		a.sink.Error(a.span(e.Pos()), "unknown operator %q", e.Operator)
		return types.None
	}
}

func isOrdered(t types.Type) bool {
	return t.Equal(types.Int) || t.Equal(types.Float) || t.Equal(types.String)
}

func (a *Analyzer) analyzeArith(e *ast.BinaryExpr, left, right types.Type) types.Type {
	if e.Operator == "+" && left.Equal(types.String) && right.Equal(types.String) {
		return types.String
	}
	if e.Operator == "*" && left.Equal(types.String) && right.Equal(types.Int) {
		return types.String
	}
	isNum := func(t types.Type) bool { return t.Equal(types.Int) || t.Equal(types.Float) }
	if !isNum(left) || !isNum(right) {
		a.sink.Error(a.span(e.Pos()), "%s requires numeric operands, got %s and %s", e.Operator, left, right)
		return types.Int
	}
	if left.Equal(types.Float) || right.Equal(types.Float) {
		return types.Float
	}
	return types.Int
}

func (a *Analyzer) analyzeMembership(e *ast.BinaryExpr, left, right types.Type) types.Type {
	if right.Equal(types.Regex) {
		if !left.Equal(types.String) {
			a.sink.Error(a.span(e.Pos()), "in requires a string on the left of a regex, got %s", left)
		}
		return types.Bool
	}
	if right.Kind == types.KindList {
		if !left.Equal(*right.Elem) {
			a.sink.Error(a.span(e.Pos()), "in requires an operand of %s, got %s", *right.Elem, left)
		}
		return types.Bool
	}
	a.sink.Error(a.span(e.Pos()), "in requires a list or regex on the right, got %s", right)
	return types.Bool
}

func (a *Analyzer) analyzeUnary(e *ast.UnaryExpr, scope *Scope) types.Type {
	right := a.analyzeExpr(e.Right, scope)
	switch e.Operator {
	case "-":
		if !right.Equal(types.Int) && !right.Equal(types.Float) {
			a.sink.Error(a.span(e.Pos()), "unary - requires a numeric operand, got %s", right)
			return types.Int
		}
		return right
	case "!":
		if !right.Equal(types.Bool) {
			a.sink.Error(a.span(e.Pos()), "! requires a bool operand, got %s", right)
		}
		return types.Bool
	default:
		a.sink.Error(a.span(e.Pos()), "unknown unary operator %q", e.Operator)
		return types.None
	}
}

// castTable lists every (source, target) pair accepted by `as`. bool is
// never a valid source or target for a cast.
var castTable = map[[2]types.Kind]bool{
	{types.KindString, types.KindInt}:    true,
	{types.KindString, types.KindFloat}:  true,
	{types.KindInt, types.KindString}:    true,
	{types.KindInt, types.KindFloat}:     true,
	{types.KindFloat, types.KindString}:  true,
	{types.KindFloat, types.KindInt}:     true,
	{types.KindString, types.KindString}: true,
	{types.KindInt, types.KindInt}:       true,
	{types.KindFloat, types.KindFloat}:   true,
}

func (a *Analyzer) analyzeCast(e *ast.CastExpr, scope *Scope) types.Type {
	src := a.analyzeExpr(e.Value, scope)
	target, ok := types.FromName(e.Target)
	if !ok || target.Equal(types.Bool) {
		a.sink.Error(a.span(e.Pos()), "invalid cast target %q", e.Target)
		return types.None
	}
	if !castTable[[2]types.Kind{src.Kind, target.Kind}] {
		a.sink.Error(a.span(e.Pos()), "cannot cast %s as %s", src, target)
	}
	return target
}

func (a *Analyzer) analyzeCall(e *ast.CallExpr, scope *Scope) types.Type {
	ident, ok := e.Callee.(*ast.Identifier)
	if !ok {
		a.sink.Error(a.span(e.Pos()), "call target must be a function name")
		return types.None
	}
	sig, ok := a.funcs[ident.Value]
	if !ok {
		a.sink.Error(a.span(e.Pos()), "undefined function %q", ident.Value)
		return types.None
	}
	if len(e.Args) != len(sig.Params) {
		a.sink.Error(a.span(e.Pos()), "%q expects %d argument(s), got %d", ident.Value, len(sig.Params), len(e.Args))
	}
	for i, arg := range e.Args {
		t := a.analyzeExpr(arg, scope)
		if i < len(sig.Params) && !t.Equal(sig.Params[i]) {
			a.sink.Error(a.span(arg.Pos()), "argument %d to %q has type %s, expected %s", i+1, ident.Value, t, sig.Params[i])
		}
	}
	return sig.Return
}

func (a *Analyzer) analyzeIndexExpr(e *ast.IndexExpr, scope *Scope) types.Type {
	val := a.analyzeExpr(e.Value, scope)
	idx := a.analyzeExpr(e.Index, scope)
	if !idx.Equal(types.Int) {
		a.sink.Error(a.span(e.Index.Pos()), "list index must be int, got %s", idx)
	}
	if val.Kind != types.KindList {
		a.sink.Error(a.span(e.Value.Pos()), "cannot index %s", val)
		return types.None
	}
	return *val.Elem
}
