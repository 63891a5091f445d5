package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tesc-lang/tesc/internal/ast"
	"github.com/tesc-lang/tesc/internal/lexer"
	"github.com/tesc-lang/tesc/internal/rex"
	"github.com/tesc-lang/tesc/internal/types"
)

// RuntimeError is a failure raised while walking the tree — a failed
// cast, a call into the test driver's I/O that the process refused, or a
// builtin precondition the analyser can't rule out ahead of time (e.g.
// "string as int" on text that isn't actually an integer). Span pins it to
// the offending node so a reporter can name the line/column it happened at.
type RuntimeError struct {
	Message string
	Span    lexer.Span
}

func (e *RuntimeError) Error() string { return e.Message }

// IO is the hook the test driver supplies so `input`/`output` reach the
// child process's stdin/stdout — any part of the evaluator that doesn't
// run inside a test body can pass a nil IO: input()/output() then fail
// with a RuntimeError, and print()/println() write straight to os.Stdout.
type IO interface {
	// ReadLine returns the next line of the child process's stdout, with
	// its trailing newline stripped.
	ReadLine() (string, error)
	// WriteLine writes s followed by a newline to the child process's
	// stdin.
	WriteLine(s string) error
	// Print writes s to the test runner's own stdout, unbuffered and
	// without a trailing newline.
	Print(s string)
	// Println writes s to the test runner's own stdout followed by a
	// newline.
	Println(s string)
}

// Evaluator walks an *ast.Program's functions and test bodies against a
// shared Environment chain, calling out to IO for the four builtins.
type Evaluator struct {
	funcs  map[string]*ast.FuncDecl
	io     IO
	maxLen int
	file   string
}

// New creates an Evaluator. funcs indexes every FuncDecl in the program by
// name so calls can resolve regardless of declaration order, matching the
// analyser's forward-reference pass. maxLen is the process-wide regex
// quantifier bound: the regex enumerator reads it once, at the point a
// regex value is iterated or tested with `in`. file tags the span of any
// RuntimeError the evaluator raises with the source file it came from.
func New(funcs map[string]*ast.FuncDecl, io IO, maxLen int, file string) *Evaluator {
	return &Evaluator{funcs: funcs, io: io, maxLen: maxLen, file: file}
}

// span builds a zero-width diagnostic span at pos, tagged with the
// evaluator's source file.
func (ev *Evaluator) span(pos lexer.Position) lexer.Span {
	return lexer.Span{File: ev.file, Start: pos, End: pos}
}

// rtErrf builds a RuntimeError at pos with a formatted message.
func (ev *Evaluator) rtErrf(pos lexer.Position, format string, args ...any) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Span: ev.span(pos)}
}

// EvalFileScope evaluates every top-level let/const declaration in order
// into env — run once, before any test, so tests share one set of
// file-scope bindings.
func (ev *Evaluator) EvalFileScope(prog *ast.Program, env *Environment) error {
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FileLetDecl:
			v, err := ev.Eval(decl.Value, env)
			if err != nil {
				return err
			}
			env.Define(decl.Name.Value, v)
		case *ast.FileConstDecl:
			v, err := ev.Eval(decl.Value, env)
			if err != nil {
				return err
			}
			env.Define(decl.Name.Value, v)
		}
	}
	return nil
}

// EvalTest runs one TestDecl's body in a fresh scope enclosing fileScope.
func (ev *Evaluator) EvalTest(td *ast.TestDecl, fileScope *Environment) error {
	env := NewEnclosedEnvironment(fileScope)
	return ev.evalBlock(td.Body, env)
}

// CallFunction invokes a user-defined function by name with already-
// evaluated arguments, returning its result (types.None for a function
// declared with return type none). pos is the call site, used only to
// span a RuntimeError if name isn't defined.
func (ev *Evaluator) CallFunction(name string, args []Value, enclosing *Environment, pos lexer.Position) (Value, error) {
	fd, ok := ev.funcs[name]
	if !ok {
		return Value{}, ev.rtErrf(pos, "undefined function %q", name)
	}
	env := NewEnclosedEnvironment(enclosing)
	for i, p := range fd.Params {
		env.Define(p.Name.Value, args[i])
	}
	return ev.evalFuncBody(fd, env)
}

// evalFuncBody runs every statement in a function's body except the last,
// then evaluates the last as the function's result — mirroring the
// analyser's analyzeBlockReturning.
func (ev *Evaluator) evalFuncBody(fd *ast.FuncDecl, env *Environment) (Value, error) {
	stmts := fd.Body.Stmts
	if len(stmts) == 0 {
		return NoneValue(), nil
	}
	for _, s := range stmts[:len(stmts)-1] {
		if err := ev.evalStmt(s, env); err != nil {
			return Value{}, err
		}
	}
	last := stmts[len(stmts)-1]
	if es, ok := last.(*ast.ExprStmt); ok {
		return ev.Eval(es.Expr, env)
	}
	if err := ev.evalStmt(last, env); err != nil {
		return Value{}, err
	}
	return NoneValue(), nil
}

func (ev *Evaluator) evalBlock(b *ast.BlockStmt, env *Environment) error {
	scope := NewEnclosedEnvironment(env)
	for _, s := range b.Stmts {
		if err := ev.evalStmt(s, scope); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) evalStmt(stmt ast.Statement, env *Environment) error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		v, err := ev.Eval(s.Value, env)
		if err != nil {
			return err
		}
		env.Define(s.Name.Value, v)
		return nil
	case *ast.ConstStmt:
		v, err := ev.Eval(s.Value, env)
		if err != nil {
			return err
		}
		env.Define(s.Name.Value, v)
		return nil
	case *ast.AssignStmt:
		v, err := ev.Eval(s.Value, env)
		if err != nil {
			return err
		}
		if s.Target.Value == "_" {
			return nil
		}
		env.Set(s.Target.Value, v)
		return nil
	case *ast.IfStmt:
		return ev.evalIf(s, env)
	case *ast.ForStmt:
		return ev.evalFor(s, env)
	case *ast.BlockStmt:
		return ev.evalBlock(s, env)
	case *ast.ExprStmt:
		_, err := ev.Eval(s.Expr, env)
		return err
	default:
		return ev.rtErrf(stmt.Pos(), "unsupported statement")
	}
}

func (ev *Evaluator) evalIf(s *ast.IfStmt, env *Environment) error {
	cond, err := ev.Eval(s.Cond, env)
	if err != nil {
		return err
	}
	if cond.Bool {
		return ev.evalBlock(s.Then, env)
	}
	switch e := s.Else.(type) {
	case *ast.BlockStmt:
		return ev.evalBlock(e, env)
	case *ast.IfStmt:
		return ev.evalIf(e, env)
	}
	return nil
}

func (ev *Evaluator) evalFor(s *ast.ForStmt, env *Environment) error {
	iterable, err := ev.Eval(s.Iterable, env)
	if err != nil {
		return err
	}

	runBody := func(item Value) error {
		scope := NewEnclosedEnvironment(env)
		scope.Define(s.Var.Value, item)
		for _, stmt := range s.Body.Stmts {
			if err := ev.evalStmt(stmt, scope); err != nil {
				return err
			}
		}
		return nil
	}

	if iterable.Type.Kind == types.KindRegex {
		node, err := rex.Parse(iterable.Regex)
		if err != nil {
			return ev.rtErrf(s.Iterable.Pos(), "invalid regex %q: %v", iterable.Regex, err)
		}
		next := rex.NewEnumerator(node, ev.maxLen).Iter()
		for {
			str, ok := next()
			if !ok {
				break
			}
			if err := runBody(StringValue(str)); err != nil {
				return err
			}
		}
		return nil
	}

	for _, item := range iterable.List {
		if err := runBody(item); err != nil {
			return err
		}
	}
	return nil
}

// Eval evaluates a single expression node to a Value.
func (ev *Evaluator) Eval(e ast.Expression, env *Environment) (Value, error) {
	switch expr := e.(type) {
	case *ast.Identifier:
		v, ok := env.Get(expr.Value)
		if !ok {
			return Value{}, ev.rtErrf(expr.Pos(), "undefined: %q", expr.Value)
		}
		return v, nil
	case *ast.IntLiteral:
		return IntValue(expr.Value), nil
	case *ast.FloatLiteral:
		return FloatValue(expr.Value), nil
	case *ast.StringLiteral:
		return StringValue(expr.Value), nil
	case *ast.BoolLiteral:
		return BoolValue(expr.Value), nil
	case *ast.NoneLiteral:
		return NoneValue(), nil
	case *ast.RegexLiteral:
		return RegexValue(expr.Pattern), nil
	case *ast.ListLiteral:
		return ev.evalListLiteral(expr, env)
	case *ast.GroupedExpr:
		return ev.Eval(expr.Inner, env)
	case *ast.UnaryExpr:
		return ev.evalUnary(expr, env)
	case *ast.BinaryExpr:
		return ev.evalBinary(expr, env)
	case *ast.CastExpr:
		return ev.evalCast(expr, env)
	case *ast.CallExpr:
		return ev.evalCall(expr, env)
	case *ast.IndexExpr:
		return ev.evalIndex(expr, env)
	default:
		return Value{}, ev.rtErrf(e.Pos(), "unsupported expression")
	}
}

func (ev *Evaluator) evalListLiteral(l *ast.ListLiteral, env *Environment) (Value, error) {
	items := make([]Value, 0, len(l.Elements))
	elemType := types.None
	for i, e := range l.Elements {
		v, err := ev.Eval(e, env)
		if err != nil {
			return Value{}, err
		}
		if i == 0 {
			elemType = v.Type
		}
		items = append(items, v)
	}
	return ListValue(elemType, items), nil
}

func (ev *Evaluator) evalUnary(u *ast.UnaryExpr, env *Environment) (Value, error) {
	right, err := ev.Eval(u.Right, env)
	if err != nil {
		return Value{}, err
	}
	switch u.Operator {
	case "-":
		if right.Type.Equal(types.Float) {
			return FloatValue(-right.Flt), nil
		}
		return IntValue(-right.Int), nil
	case "!":
		return BoolValue(!right.Bool), nil
	default:
		return Value{}, ev.rtErrf(u.Pos(), "unknown unary operator %q", u.Operator)
	}
}

func (ev *Evaluator) evalBinary(b *ast.BinaryExpr, env *Environment) (Value, error) {
	left, err := ev.Eval(b.Left, env)
	if err != nil {
		return Value{}, err
	}
	// Short-circuit && and || before evaluating the right side.
	if b.Operator == "&&" && !left.Bool {
		return BoolValue(false), nil
	}
	if b.Operator == "||" && left.Bool {
		return BoolValue(true), nil
	}
	right, err := ev.Eval(b.Right, env)
	if err != nil {
		return Value{}, err
	}

	switch b.Operator {
	case "&&", "||":
		return BoolValue(right.Bool), nil
	case "==":
		return BoolValue(left.Equal(right)), nil
	case "!=":
		return BoolValue(!left.Equal(right)), nil
	case "<", "<=", ">", ">=":
		return evalCompare(b.Operator, left, right), nil
	case "+":
		return evalAdd(left, right), nil
	case "-", "*", "/":
		v, err := evalArith(b.Operator, left, right)
		if err != nil {
			return Value{}, ev.rtErrf(b.Pos(), "%s", err)
		}
		return v, nil
	case "in":
		return ev.evalIn(left, right), nil
	default:
		return Value{}, ev.rtErrf(b.Pos(), "unknown operator %q", b.Operator)
	}
}

func evalCompare(op string, left, right Value) Value {
	var lt, eq bool
	switch left.Type.Kind {
	case types.KindString:
		lt = left.Str < right.Str
		eq = left.Str == right.Str
	case types.KindFloat:
		lf := left.Flt
		rf := right.Flt
		if right.Type.Equal(types.Int) {
			rf = float64(right.Int)
		}
		lt = lf < rf
		eq = lf == rf
	default:
		li := left.Int
		ri := right.Int
		var rf float64
		if right.Type.Equal(types.Float) {
			rf = right.Flt
			lt = float64(li) < rf
			eq = float64(li) == rf
		} else {
			lt = li < ri
			eq = li == ri
		}
	}
	switch op {
	case "<":
		return BoolValue(lt)
	case "<=":
		return BoolValue(lt || eq)
	case ">":
		return BoolValue(!lt && !eq)
	default: // ">="
		return BoolValue(!lt)
	}
}

func evalAdd(left, right Value) Value {
	if left.Type.Equal(types.String) {
		return StringValue(left.Str + right.Str)
	}
	if left.Type.Equal(types.Float) || right.Type.Equal(types.Float) {
		return FloatValue(asFloat(left) + asFloat(right))
	}
	return IntValue(left.Int + right.Int)
}

func evalArith(op string, left, right Value) (Value, error) {
	if op == "*" && left.Type.Equal(types.String) && right.Type.Equal(types.Int) {
		if right.Int < 0 {
			return Value{}, fmt.Errorf("string repetition count must be non-negative")
		}
		return StringValue(strings.Repeat(left.Str, int(right.Int))), nil
	}
	if left.Type.Equal(types.Float) || right.Type.Equal(types.Float) {
		l, r := asFloat(left), asFloat(right)
		switch op {
		case "-":
			return FloatValue(l - r), nil
		case "*":
			return FloatValue(l * r), nil
		case "/":
			if r == 0 {
				return Value{}, fmt.Errorf("division by zero")
			}
			return FloatValue(l / r), nil
		}
	}
	switch op {
	case "-":
		return IntValue(left.Int - right.Int), nil
	case "*":
		return IntValue(left.Int * right.Int), nil
	case "/":
		if right.Int == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return IntValue(left.Int / right.Int), nil
	}
	return Value{}, fmt.Errorf("unknown arithmetic operator %q", op)
}

func asFloat(v Value) float64 {
	if v.Type.Equal(types.Float) {
		return v.Flt
	}
	return float64(v.Int)
}

func (ev *Evaluator) evalIn(left, right Value) Value {
	if right.Type.Equal(types.Regex) {
		node, err := rex.Parse(right.Regex)
		if err != nil {
			return BoolValue(false)
		}
		it := rex.NewEnumerator(node, ev.maxLen).Iter()
		for {
			s, ok := it()
			if !ok {
				return BoolValue(false)
			}
			if s == left.Str {
				return BoolValue(true)
			}
		}
	}
	for _, item := range right.List {
		if item.Equal(left) {
			return BoolValue(true)
		}
	}
	return BoolValue(false)
}

func (ev *Evaluator) evalCast(c *ast.CastExpr, env *Environment) (Value, error) {
	v, err := ev.Eval(c.Value, env)
	if err != nil {
		return Value{}, err
	}
	switch c.Target {
	case "string":
		return StringValue(v.String()), nil
	case "int":
		n, err := castToInt(v)
		if err != nil {
			return Value{}, ev.rtErrf(c.Pos(), "%s", err)
		}
		return n, nil
	case "float":
		f, err := castToFloat(v)
		if err != nil {
			return Value{}, ev.rtErrf(c.Pos(), "%s", err)
		}
		return f, nil
	default:
		return Value{}, ev.rtErrf(c.Pos(), "invalid cast target %q", c.Target)
	}
}

func castToInt(v Value) (Value, error) {
	switch v.Type.Kind {
	case types.KindInt:
		return v, nil
	case types.KindFloat:
		return IntValue(int64(v.Flt)), nil
	case types.KindString:
		n, err := strconv.ParseInt(v.Str, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot cast %q as int", v.Str)
		}
		return IntValue(n), nil
	default:
		return Value{}, fmt.Errorf("cannot cast %s as int", v.Type)
	}
}

func castToFloat(v Value) (Value, error) {
	switch v.Type.Kind {
	case types.KindFloat:
		return v, nil
	case types.KindInt:
		return FloatValue(float64(v.Int)), nil
	case types.KindString:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot cast %q as float", v.Str)
		}
		return FloatValue(f), nil
	default:
		return Value{}, fmt.Errorf("cannot cast %s as float", v.Type)
	}
}

func (ev *Evaluator) evalCall(c *ast.CallExpr, env *Environment) (Value, error) {
	ident, ok := c.Callee.(*ast.Identifier)
	if !ok {
		return Value{}, ev.rtErrf(c.Pos(), "call target must be a function name")
	}
	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		v, err := ev.Eval(a, env)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	switch ident.Value {
	case "input":
		return NoneValue(), ev.callInput(args[0], c.Pos())
	case "output":
		return NoneValue(), ev.callOutput(args[0], c.Pos())
	case "print":
		if ev.io == nil {
			fmt.Print(args[0].Str)
		} else {
			ev.io.Print(args[0].Str)
		}
		return NoneValue(), nil
	case "println":
		if ev.io == nil {
			fmt.Println(args[0].Str)
		} else {
			ev.io.Println(args[0].Str)
		}
		return NoneValue(), nil
	default:
		return ev.CallFunction(ident.Value, args, env, c.Pos())
	}
}

// callInput implements the input(s) builtin: it writes s to the child's
// stdin. A closed pipe or dead child surfaces as a runtime error, failing
// the current test. pos spans the input() call itself for diagnostics.
func (ev *Evaluator) callInput(v Value, pos lexer.Position) error {
	if ev.io == nil {
		return ev.rtErrf(pos, "input() called outside a running test")
	}
	if err := ev.io.WriteLine(v.Str); err != nil {
		return ev.rtErrf(pos, "input(%q): %v", v.Str, err)
	}
	return nil
}

// callOutput implements the output(s) builtin: it reads one line from the
// child's stdout and requires it to equal s exactly (newline-stripped on
// both sides). A mismatch or premature EOF is a runtime error, which aborts
// the test body and fails the test. pos spans the output() call itself so
// a failure report can name the line/column it happened at.
func (ev *Evaluator) callOutput(v Value, pos lexer.Position) error {
	if ev.io == nil {
		return ev.rtErrf(pos, "output() called outside a running test")
	}
	got, err := ev.io.ReadLine()
	if err != nil {
		return ev.rtErrf(pos, "output(%q): %v", v.Str, err)
	}
	if got != v.Str {
		return ev.rtErrf(pos, "output mismatch: expected %q, got %q", v.Str, got)
	}
	return nil
}

func (ev *Evaluator) evalIndex(idx *ast.IndexExpr, env *Environment) (Value, error) {
	v, err := ev.Eval(idx.Value, env)
	if err != nil {
		return Value{}, err
	}
	i, err := ev.Eval(idx.Index, env)
	if err != nil {
		return Value{}, err
	}
	if i.Int < 0 || int(i.Int) >= len(v.List) {
		return Value{}, ev.rtErrf(idx.Pos(), "index %d out of range (list has %d elements)", i.Int, len(v.List))
	}
	return v.List[i.Int], nil
}
