package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tesc-lang/tesc/internal/ast"
	"github.com/tesc-lang/tesc/internal/diag"
	"github.com/tesc-lang/tesc/internal/lexer"
	"github.com/tesc-lang/tesc/internal/parser"
)

var parseDumpAST bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a tesc file and print its AST",
	Long: `Parse a .tesc file and display its Abstract Syntax Tree, either as
re-printed source (the default) or as an indented node dump
(--dump-ast), for debugging the parser without running anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the AST structure instead of re-printed source")
}

func runParse(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", filename, err)
	}

	sink := diag.NewSink()
	l := lexer.New(filename, string(content))
	p := parser.New(l, sink)
	program := p.ParseProgram()

	if len(l.Errors()) > 0 || sink.HasErrors() {
		printer := diag.NewPrinter(string(content), noColor)
		printer.WriteAll(os.Stderr, sink.All())
		return fmt.Errorf("parsing failed")
	}

	if parseDumpAST {
		dumpDecl(program, 0)
		return nil
	}
	fmt.Println(program.String())
	return nil
}

func dumpDecl(node any, indent int) {
	pad := ""
	for i := 0; i < indent; i++ {
		pad += "  "
	}
	switch n := node.(type) {
	case *ast.Program:
		fmt.Printf("%sProgram (%d decls)\n", pad, len(n.Decls))
		for _, d := range n.Decls {
			dumpDecl(d, indent+1)
		}
	case *ast.FuncDecl:
		fmt.Printf("%sFuncDecl %s : %s\n", pad, n.Name.Value, n.ReturnType)
		dumpDecl(n.Body, indent+1)
	case *ast.TestDecl:
		fmt.Printf("%sTestDecl %s\n", pad, n.Name.Value)
		dumpDecl(n.Body, indent+1)
	case *ast.FileLetDecl:
		fmt.Printf("%sFileLetDecl %s\n", pad, n.Name.Value)
	case *ast.FileConstDecl:
		fmt.Printf("%sFileConstDecl %s\n", pad, n.Name.Value)
	case *ast.BlockStmt:
		fmt.Printf("%sBlockStmt (%d stmts)\n", pad, len(n.Stmts))
		for _, s := range n.Stmts {
			dumpDecl(s, indent+1)
		}
	case *ast.IfStmt:
		fmt.Printf("%sIfStmt\n", pad)
		dumpDecl(n.Then, indent+1)
		if n.Else != nil {
			dumpDecl(n.Else, indent+1)
		}
	case *ast.ForStmt:
		fmt.Printf("%sForStmt %s in ...\n", pad, n.Var.Value)
		dumpDecl(n.Body, indent+1)
	default:
		fmt.Printf("%s%T: %v\n", pad, node, node)
	}
}
