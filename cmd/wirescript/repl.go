package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/peterh/liner"
	"github.com/ruiyangke/wirescript/wireparser"
	"github.com/spf13/cobra"
)

const (
	replHistoryFile = ".wirescript_history"
	replPrompt      = "ws> "
	replPromptCont  = "... "
	replBanner      = "WireScript REPL. Ctrl+C clears the current input, Ctrl+D or :quit exits."

	replHelp = `REPL commands:
  :help         Show this help
  :quit, :exit  Exit the REPL
  :fmt <form>   Canonically format a form (single line only)

Enter a full (wire ...) document or a bare form; bare forms are checked
inside a scratch screen. Input continues on the next line until all
parens balance.
`
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively parse and validate wireframe forms",
	RunE:  runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	fmt.Println(replBanner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completeWord)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, replHistoryFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	for {
		src, ok := readForm(ln)
		if !ok {
			fmt.Println()
			break
		}
		input := strings.TrimSpace(src)
		if input == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		if strings.HasPrefix(input, ":") {
			if runReplCommand(input) {
				break
			}
			continue
		}

		doc, bare := replDocument(input)
		replReport(wireparser.Parse(doc), bare)
	}

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return nil
}

// readForm reads one input, continuing across lines while the parens are
// unbalanced. The second return is false on Ctrl+D.
func readForm(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := replPrompt
		if b.Len() > 0 {
			prompt = replPromptCont
		}
		line, err := ln.Prompt(prompt)
		if err == io.EOF {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the partial input.
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := strings.TrimSpace(b.String())
		if src == "" || strings.HasPrefix(src, ":") || !needsMoreInput(src) {
			return b.String(), true
		}
	}
}

// needsMoreInput reports whether src looks cut off mid-form: unbalanced
// parens, or a string or escape still waiting for its closing delimiter.
func needsMoreInput(src string) bool {
	tokens, err := wireparser.Tokenize(src)
	if err != nil {
		return strings.Contains(err.Error(), "unterminated")
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case wireparser.TokenLParen:
			depth++
		case wireparser.TokenRParen:
			if depth > 0 {
				depth--
			}
		}
	}
	return depth > 0
}

func runReplCommand(input string) (exit bool) {
	switch cmd := strings.Fields(input)[0]; cmd {
	case ":help":
		fmt.Print(replHelp)
	case ":quit", ":exit":
		return true
	case ":fmt":
		snippet := strings.TrimSpace(strings.TrimPrefix(input, ":fmt"))
		if snippet == "" {
			fmt.Println("usage: :fmt <form>")
		} else {
			fmt.Print(wireparser.Format(snippet))
		}
	default:
		fmt.Printf("unknown command %s; :help lists commands\n", cmd)
	}
	return false
}

// replDocument wraps bare input into a parseable document. Full documents
// pass through untouched; top-level forms get a wire wrapper; anything else
// is checked inside a scratch screen.
func replDocument(src string) (doc string, bare bool) {
	if strings.HasPrefix(src, "(wire") {
		return src, false
	}
	switch replHead(src) {
	case "include", "meta", "define", "layout", "screen":
		return "(wire " + src + ")", true
	}
	return `(wire (screen repl "" ` + src + `))`, true
}

func replHead(src string) string {
	s := strings.TrimPrefix(src, "(")
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '(', ')':
			return s[:i]
		}
	}
	return s
}

// replReport prints parse errors and validation diagnostics. Wrapped input
// has synthetic coordinates, so bare forms report messages without positions.
func replReport(res *wireparser.ParseResult, bare bool) {
	for _, e := range res.Errors {
		if bare {
			fmt.Printf("error: %s\n", e.Message)
		} else {
			fmt.Printf("error: %s\n", e.Error())
		}
	}
	if res.Document == nil {
		return
	}

	vres := wireparser.Validate(res.Document)
	for _, d := range vres.Errors {
		printReplDiagnostic(d, bare)
	}
	for _, d := range vres.Warnings {
		printReplDiagnostic(d, bare)
	}

	if res.Success && vres.Valid && len(vres.Warnings) == 0 {
		if bare {
			fmt.Println("ok")
		} else {
			fmt.Printf("ok: %d screen(s), %d component(s)\n",
				len(res.Document.Screens), len(res.Document.Components))
		}
	}
}

func printReplDiagnostic(d wireparser.Diagnostic, bare bool) {
	if bare {
		fmt.Printf("[%s] %s: %s\n", d.Severity, d.Rule, d.Message)
		if d.Fix != "" {
			fmt.Printf("  fix: %s\n", d.Fix)
		}
		return
	}
	fmt.Println(d.String())
}

// completeWord offers element and form names for the word being typed.
func completeWord(line string) []string {
	i := strings.LastIndexAny(line, "( \t")
	prefix, word := line[:i+1], line[i+1:]
	if word == "" {
		return nil
	}
	names := append(wireparser.BuiltinElementNames(),
		"wire", "screen", "define", "layout", "meta", "include", "repeat",
		"modal", "drawer", "popover")
	slices.Sort(names)

	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, word) {
			out = append(out, prefix+name)
		}
	}
	return out
}
