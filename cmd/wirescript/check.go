package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ruiyangke/wirescript/wireparser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Parse, resolve, and validate wireframe documents",
	Long:  "Parse each document, resolve its includes relative to the file's directory, and run the validation rules. Exits 1 when any error is found; warnings alone exit 0.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Bool("sarif", false, "Emit diagnostics as a SARIF 2.1.0 log on stdout")
	rootCmd.AddCommand(checkCmd)
}

// fileFindings collects everything check discovered about one file.
type fileFindings struct {
	path       string
	src        string
	parseErrs  []*wireparser.ParseError
	validation *wireparser.ValidationResult
}

func (ff *fileFindings) errorCount() int {
	n := len(ff.parseErrs)
	if ff.validation != nil {
		n += len(ff.validation.Errors)
	}
	return n
}

func (ff *fileFindings) warningCount() int {
	if ff.validation == nil {
		return 0
	}
	return len(ff.validation.Warnings)
}

func runCheck(cmd *cobra.Command, args []string) error {
	sarifOut, _ := cmd.Flags().GetBool("sarif")
	verbose := viper.GetBool("verbose")
	noIncludes := viper.GetBool("no_includes")

	var findings []*fileFindings
	totalErrors := 0
	for _, path := range args {
		ff, err := checkFile(cmd.Context(), path, noIncludes)
		if err != nil {
			return err
		}
		findings = append(findings, ff)
		totalErrors += ff.errorCount()
		if verbose {
			fmt.Fprintf(os.Stderr, "%s: %d error(s), %d warning(s)\n",
				ff.path, ff.errorCount(), ff.warningCount())
		}
	}

	if sarifOut {
		if err := writeSARIF(os.Stdout, findings); err != nil {
			return err
		}
	} else {
		for _, ff := range findings {
			printFindings(ff)
		}
	}

	if totalErrors > 0 {
		return fmt.Errorf("%d error(s)", totalErrors)
	}
	return nil
}

func checkFile(ctx context.Context, path string, noIncludes bool) (*fileFindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	opts := wireparser.CompileOptions{FilePath: abs}
	if !noIncludes {
		opts.Resolver = fileResolver()
	}
	res := wireparser.Compile(ctx, string(data), opts)

	ff := &fileFindings{path: path, src: string(data), parseErrs: res.Errors}
	if res.Document != nil {
		ff.validation = wireparser.Validate(res.Document)
	}
	return ff, nil
}

// fileResolver loads includes from disk, relative to the including file.
// filepath.Abs doubles as the canonicalizer, so two spellings of one file
// resolve to the same path and cycle detection holds.
func fileResolver() wireparser.ResolveFunc {
	return func(_ context.Context, includePath, fromPath string) (wireparser.ResolvedInclude, error) {
		p := includePath
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(fromPath), p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return wireparser.ResolvedInclude{}, err
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return wireparser.ResolvedInclude{}, err
		}
		return wireparser.ResolvedInclude{Content: string(data), ResolvedPath: abs}, nil
	}
}

func printFindings(ff *fileFindings) {
	for _, e := range ff.parseErrs {
		if e.Pos.Line > 0 {
			fmt.Printf("%s:%d:%d: [ERROR] parse: %s\n", ff.path, e.Pos.Line, e.Pos.Column, e.Message)
			fmt.Print(renderSnippet(ff.src, e.Pos))
		} else {
			fmt.Printf("%s: [ERROR] parse: %s\n", ff.path, e.Message)
		}
	}
	if ff.validation == nil {
		return
	}
	for _, d := range ff.validation.Errors {
		printDiagnostic(ff, d)
	}
	for _, d := range ff.validation.Warnings {
		printDiagnostic(ff, d)
	}
}

func printDiagnostic(ff *fileFindings, d wireparser.Diagnostic) {
	if d.Pos.Line > 0 {
		fmt.Printf("%s:%d:%d: [%s] %s: %s\n", ff.path, d.Pos.Line, d.Pos.Column, d.Severity, d.Rule, d.Message)
		fmt.Print(renderSnippet(ff.src, d.Pos))
	} else {
		fmt.Printf("%s: [%s] %s: %s\n", ff.path, d.Severity, d.Rule, d.Message)
	}
	if d.Fix != "" {
		fmt.Printf("  fix: %s\n", d.Fix)
	}
}

// renderSnippet shows the offending line with a caret under the column, plus
// one line of context on each side when available. Positions that fall outside
// src render nothing; merged include definitions keep their own file's
// coordinates, which may not land in the entry document.
func renderSnippet(src string, pos wireparser.Position) string {
	lines := strings.Split(src, "\n")
	line, col := pos.Line, pos.Column
	if line < 1 || line > len(lines) {
		return ""
	}
	if col < 1 {
		col = 1
	}
	if col > utf8.RuneCountInString(lines[line-1])+1 {
		return ""
	}

	var b strings.Builder
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
