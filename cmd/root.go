// Copyright © 2018 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/luthersystems/pyscan/telemetry"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pyscan <file>",
	Short: "pyscan — static analysis for Python source files",
	Long: `pyscan parses a single Python source file, collects its functions,
classes, variables and imports, runs a fixed set of code-quality rules and
prints a JSON report to stdout.

Getting started:
  pyscan app.py                      Analyze a file and print the JSON report
  pyscan --format text app.py        Print issues with annotated source
  pyscan --checks bare-except app.py Run a subset of the rules
  pyscan rules                       Describe every rule
  pyscan lsp                         Start the language server

Exit codes:
  0  A report was printed (including syntax and parse errors)
  1  The command line did not name exactly one file
  2  Bad invocation (unknown check, invalid option, unreadable config)

Configuration keys can be set in a file given with --config, in the
environment with the PYSCAN_ prefix (PYSCAN_MAX_COMPLEXITY=15) or with the
matching flag. Flags take precedence.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		code := runRoot(cmd.Context(), viper.GetViper(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		if code != 0 {
			os.Exit(code)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// runRoot analyzes the single file named by args and writes the report.
// It returns the process exit code.
func runRoot(ctx context.Context, v *viper.Viper, stdout, stderr io.Writer, args []string) int {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(args) != 1 {
		return writeMissingFilePath(stdout)
	}
	opts, err := loadOptions(v)
	if err != nil {
		fmt.Fprintf(stderr, "pyscan: %v\n", err)
		return 2
	}
	if opts.Trace {
		shutdown, err := telemetry.Setup(stderr)
		if err != nil {
			fmt.Fprintf(stderr, "pyscan: %v\n", err)
			return 2
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("trace shutdown failed")
			}
		}()
	}
	return scan(ctx, stdout, args[0], opts)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML, TOML or JSON)")
	flags.String("log-level", "warn", `Log level written to stderr: "debug", "info", "warn" or "error".`)
	flags.Bool("trace", false, "Print OpenTelemetry spans for each analysis to stderr.")
	flags.String("color", "auto", `Control colored output: "auto", "always", or "never".`)
	flags.String("checks", "", "Comma-separated list of checks to run (default: all).")
	flags.Int("long-function-lines", 50, "Longest function, in lines, before long-function reports it.")
	flags.Int("max-complexity", 10, "Highest cyclomatic complexity high-complexity accepts.")
	flags.String("ignored-names", "", "Comma-separated names unused-variable never reports, in addition to _, __, self and cls.")
	flags.String("unused-line", "binding", `Line reported by unused-variable: "binding" or "text".`)
	rootCmd.Flags().String("format", "json", `Output format: "json" or "text".`)

	bindFlags(viper.GetViper(), rootCmd)
}

// bindFlags binds every flag of cmd to the viper key with underscores in
// place of dashes.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	bind := func(f *pflag.Flag) {
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	}
	cmd.PersistentFlags().VisitAll(bind)
	cmd.Flags().VisitAll(bind)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("PYSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "pyscan: reading config: %v\n", err)
			os.Exit(2)
		}
	}
	setupLogging(viper.GetString("log_level"))
	if cfgFile != "" {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	}
}

// setupLogging sends zerolog output to stderr at the named level. An
// unknown level falls back to warn.
func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !isatty.IsTerminal(os.Stderr.Fd())}).
		With().Timestamp().Logger()
}
