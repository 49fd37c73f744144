package main

import (
	"fmt"
	"os"

	"github.com/ruiyangke/wirescript/wireparser"
	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Dump the token stream of a wireframe document",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	tokens, err := wireparser.Tokenize(string(data))
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		fmt.Printf("%4d:%-4d %-11s %q\n", tok.Pos.Line, tok.Pos.Column, tok.Kind, tok.Literal)
	}
	return nil
}
