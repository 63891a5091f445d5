package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tesc-lang/tesc/internal/diag"
	"github.com/tesc-lang/tesc/internal/lexer"
	"github.com/tesc-lang/tesc/internal/parser"
)

var (
	fmtWrite     bool
	fmtList      bool
	fmtDiff      bool
	fmtRecursive bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [files or directories...]",
	Short: "Format tesc source files by re-printing their parsed AST",
	Long: `Format .tesc source files by parsing them and re-printing the AST.

Usage:
  tesc fmt file.tesc      # format to stdout
  tesc fmt -w file.tesc   # overwrite the file with its formatted form
  tesc fmt -l -r src/     # list files that need formatting
  tesc fmt -d file.tesc   # show a line diff of what would change`,
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result to (source) file instead of stdout")
	fmtCmd.Flags().BoolVarP(&fmtList, "list", "l", false, "list files whose formatting differs")
	fmtCmd.Flags().BoolVarP(&fmtDiff, "diff", "d", false, "display diffs instead of rewriting files")
	fmtCmd.Flags().BoolVarP(&fmtRecursive, "recursive", "r", false, "process directories recursively")
}

func runFmt(_ *cobra.Command, args []string) error {
	if fmtWrite && fmtList {
		return fmt.Errorf("cannot use -w and -l together")
	}
	if fmtWrite && fmtDiff {
		return fmt.Errorf("cannot use -w and -d together")
	}

	if len(args) == 0 {
		return fmt.Errorf("no files given")
	}

	hasErrors := false
	for _, path := range args {
		if err := processPath(path); err != nil {
			fmt.Fprintf(os.Stderr, "error processing %s: %v\n", path, err)
			hasErrors = true
		}
	}
	if hasErrors {
		return fmt.Errorf("formatting failed for one or more files")
	}
	return nil
}

func processPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		if !fmtRecursive {
			return fmt.Errorf("%s is a directory (use -r to process recursively)", path)
		}
		return processDirectory(path)
	}
	return formatFile(path)
}

func processDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".tesc") {
			return nil
		}
		if err := formatFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "error formatting %s: %v\n", path, err)
		}
		return nil
	})
}

func formatFile(filename string) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}
	original := string(src)

	formatted, err := formatSource(filename, original)
	if err != nil {
		return err
	}
	changed := original != formatted

	switch {
	case fmtList:
		if changed {
			fmt.Println(filename)
		}
	case fmtDiff:
		if changed {
			fmt.Printf("--- %s (original)\n", filename)
			fmt.Printf("+++ %s (formatted)\n", filename)
			showDiff(original, formatted)
		}
	case fmtWrite:
		if changed {
			if err := os.WriteFile(filename, []byte(formatted), 0o644); err != nil {
				return fmt.Errorf("error writing file: %w", err)
			}
		}
	default:
		fmt.Print(formatted)
	}
	return nil
}

func formatSource(filename, source string) (string, error) {
	sink := diag.NewSink()
	l := lexer.New(filename, source)
	p := parser.New(l, sink)
	program := p.ParseProgram()

	if len(l.Errors()) > 0 || sink.HasErrors() {
		printer := diag.NewPrinter(source, true)
		return "", fmt.Errorf("parse errors:\n%s", printer.FormatAll(sink.All()))
	}
	return program.String() + "\n", nil
}

// showDiff prints a naive line-by-line diff, good enough for a quick look
// at what reformatting changed without pulling in a diff library.
func showDiff(original, formatted string) {
	origLines := strings.Split(original, "\n")
	fmtLines := strings.Split(formatted, "\n")

	maxLines := len(origLines)
	if len(fmtLines) > maxLines {
		maxLines = len(fmtLines)
	}
	for i := 0; i < maxLines; i++ {
		var o, f string
		if i < len(origLines) {
			o = origLines[i]
		}
		if i < len(fmtLines) {
			f = fmtLines[i]
		}
		if o != f {
			if o != "" {
				fmt.Printf("- %s\n", o)
			}
			if f != "" {
				fmt.Printf("+ %s\n", f)
			}
		}
	}
}
