// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/pyscan/docs"
	"github.com/luthersystems/pyscan/lint"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

const rulesWrapWidth = 72

var (
	rulesShort bool
	rulesGuide bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules [rule...]",
	Short: "Describe the available rules",
	Long: `Describe the rules pyscan runs.

With no arguments every rule is listed in report order. Name one or more
rules to describe only those.

Examples:
  pyscan rules                       Describe every rule
  pyscan rules --short               List rule ids only
  pyscan rules bare-except           Describe one rule
  pyscan rules --guide               Describe the JSON report format`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rulesGuide {
			_, err := io.WriteString(cmd.OutOrStdout(), docs.ReportGuide)
			return err
		}
		analyzers, err := lint.SelectAnalyzers(args)
		if err != nil {
			return err
		}
		return writeRules(cmd.OutOrStdout(), analyzers, rulesShort)
	},
}

// writeRules prints one block per analyzer: its id, category and severity
// followed by its wrapped documentation.
func writeRules(w io.Writer, analyzers []*lint.Analyzer, short bool) error {
	for i, a := range analyzers {
		if short {
			if _, err := fmt.Fprintln(w, a.Name); err != nil {
				return err
			}
			continue
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s (%s, %s)\n", a.Name, a.Category, a.Severity)
		for _, para := range strings.Split(a.Doc, "\n\n") {
			sb.WriteString(indent.String(wordwrap.String(para, rulesWrapWidth), 2))
			sb.WriteString("\n")
		}
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().BoolVar(&rulesShort, "short", false, "List rule ids only.")
	rulesCmd.Flags().BoolVar(&rulesGuide, "guide", false, "Print the report format reference.")
}
