package main

import (
	"fmt"
	"os"

	"github.com/ruiyangke/wirescript/wireparser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>...",
	Short: "Format wireframe documents canonically",
	Long:  "Rewrite each document in canonical layout, balancing any unclosed forms. Without flags the result goes to stdout.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().BoolP("write", "w", false, "Write result back to the source file instead of stdout")
	fmtCmd.Flags().Bool("check", false, "List files whose formatting would change and exit 1")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	write, _ := cmd.Flags().GetBool("write")
	checkOnly, _ := cmd.Flags().GetBool("check")
	verbose := viper.GetBool("verbose")

	var wouldChange []string
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		formatted := wireparser.Format(string(data))
		changed := formatted != string(data)

		switch {
		case checkOnly:
			if changed {
				wouldChange = append(wouldChange, path)
			}
		case write:
			if !changed {
				continue
			}
			if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "formatted %s\n", path)
			}
		default:
			fmt.Print(formatted)
		}
	}

	if len(wouldChange) > 0 {
		for _, path := range wouldChange {
			fmt.Println(path)
		}
		return fmt.Errorf("%d file(s) would be reformatted", len(wouldChange))
	}
	return nil
}
