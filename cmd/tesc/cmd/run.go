package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tesc-lang/tesc/internal/ast"
	"github.com/tesc-lang/tesc/internal/diag"
	"github.com/tesc-lang/tesc/internal/driver"
	"github.com/tesc-lang/tesc/internal/eval"
	"github.com/tesc-lang/tesc/internal/lexer"
	"github.com/tesc-lang/tesc/internal/parser"
	"github.com/tesc-lang/tesc/internal/semantic"
)

// testDeadline bounds how long any single test's child process may run
// before it is killed and reported as a timeout.
const testDeadline = 10 * time.Second

// Exit codes (see DESIGN.md): 0 success, 1 unreadable source file or
// lex/parse/analysis failure, 21 test command not found, 22 test command
// not runnable, 101 internal error, 3 one or more tests failed.
const (
	exitOK             = 0
	exitCompileError   = 1
	exitCommandMissing = 21
	exitCommandDenied  = 22
	exitInternal       = 101
	exitTestFailure    = 3
)

func runFile(_ *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			err = exitCode(exitInternal)
		}
	}()

	filename := args[0]
	content, readErr := os.ReadFile(filename)
	if readErr != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", filename, readErr)
		return exitCode(exitCompileError)
	}
	source := string(content)

	sink := diag.NewSink()
	l := lexer.New(filename, source)
	p := parser.New(l, sink)
	program := p.ParseProgram()

	for _, le := range l.Errors() {
		sink.Error(lexer.Span{File: filename, Start: le.Pos, End: le.Pos}, "%s", le.Message)
	}

	printer := diag.NewPrinter(source, noColor)

	if sink.HasErrors() {
		printer.WriteAll(os.Stderr, sink.All())
		return exitCode(exitCompileError)
	}

	analyzer := semantic.New(sink, filename, noMagicWarning)
	analyzer.Analyze(program)

	printer.WriteAll(os.Stderr, sink.Warnings())
	if sink.HasErrors() {
		printer.WriteAll(os.Stderr, sink.Errors())
		return exitCode(exitCompileError)
	}

	funcs := make(map[string]*ast.FuncDecl)
	var tests []*ast.TestDecl
	for _, d := range program.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			funcs[decl.Name.Value] = decl
		case *ast.TestDecl:
			tests = append(tests, decl)
		}
	}

	fileScope := eval.NewEnvironment()
	bootstrap := eval.New(funcs, nil, maxLen, filename)
	if err := bootstrap.EvalFileScope(program, fileScope); err != nil {
		fmt.Fprintf(os.Stderr, "error initializing file-scope bindings: %v\n", err)
		return exitCode(exitInternal)
	}

	anyFailed := false
	for _, td := range tests {
		outcome, runErr := runTest(td, funcs, fileScope, maxLen, filename)
		status := "PASS"
		if outcome != driver.OutcomeOK {
			status = "FAIL"
			anyFailed = true
		}
		fmt.Printf("%s %s", status, td.Name.Value)
		if outcome != driver.OutcomeOK {
			fmt.Printf(" (%s)", outcome)
		}
		fmt.Println()

		// A runtime error carries its own span (the failing input()/
		// output()/cast/etc. call); report it as a proper diagnostic on
		// stderr instead of folding it into the one-line stdout summary.
		if runErr != nil {
			reportRuntimeError(printer, runErr)
		}

		switch outcome {
		case driver.OutcomeCommandNotFound:
			return exitCode(exitCommandMissing)
		case driver.OutcomePermissionDenied:
			return exitCode(exitCommandDenied)
		}
	}

	if anyFailed {
		return exitCode(exitTestFailure)
	}
	return nil
}

// reportRuntimeError prints a runtime failure to stderr. A *eval.RuntimeError
// carries the span of the node that failed (the input()/output() call, the
// cast, the division) and is rendered through diag.Printer so it names the
// same line/column a compile-time diagnostic would; anything else (an
// internal error with no span) is printed plainly.
func reportRuntimeError(printer *diag.Printer, runErr error) {
	var rtErr *eval.RuntimeError
	if errors.As(runErr, &rtErr) {
		printer.WriteAll(os.Stderr, []diag.Diagnostic{{
			Severity: diag.Error,
			Span:     rtErr.Span,
			Message:  rtErr.Message,
		}})
		return
	}
	fmt.Fprintf(os.Stderr, "%v\n", runErr)
}

// runTest spawns the test's command and drives it to completion, returning
// the outcome classification and the error that produced it, if any.
func runTest(td *ast.TestDecl, funcs map[string]*ast.FuncDecl, fileScope *eval.Environment, maxLen int, filename string) (driver.Outcome, error) {
	ctx := context.Background()

	cmdEval := eval.New(funcs, nil, maxLen, filename)
	cmdVal, err := cmdEval.Eval(td.Command, fileScope)
	if err != nil {
		return driver.OutcomeIOMismatch, err
	}

	proc, cancel, err := driver.Start(ctx, cmdVal.Str, testDeadline, os.Stdout)
	if err != nil {
		return driver.StartOutcome(err), err
	}
	defer cancel()

	ev := eval.New(funcs, proc, maxLen, filename)
	runErr := ev.EvalTest(td, fileScope)

	if runErr != nil {
		proc.Kill()
		proc.Wait(ctx)
		return driver.OutcomeIOMismatch, runErr
	}
	result := proc.Wait(ctx)
	return result.Outcome, result.Err
}
