// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/luthersystems/pyscan/lsp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// LSPCommand creates the "lsp" cobra command.
func LSPCommand() *cobra.Command {
	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the pyscan Language Server Protocol server",
		Long: `Start an LSP server for Python source files.

The language server publishes pyscan issues as diagnostics while files are
edited and serves document symbols, folding ranges and hover summaries
built from the symbol table. The rule selection and thresholds are read
from the same flags, environment and config file as the command line.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  pyscan lsp                         Start with stdio transport
  pyscan lsp --stdio                 Same as above (explicit)
  pyscan lsp --port 7998             Start with TCP on port 7998`,
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			linter, err := loadLinter(viper.GetViper())
			if err != nil {
				fmt.Fprintf(os.Stderr, "pyscan lsp: %v\n", err)
				os.Exit(2)
			}
			srv := lsp.New(lsp.WithLinter(linter))

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.Info().Str("addr", addr).Msg("pyscan LSP server listening")
				if err := srv.RunTCP(addr); err != nil {
					fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
					os.Exit(1)
				}
			} else {
				if err := srv.RunStdio(); err != nil {
					fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
					os.Exit(1)
				}
			}
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
