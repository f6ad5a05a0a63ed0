// Copyright © 2024 The ELPS authors

// Package report runs the full pipeline over one Python file and shapes the
// outcome into the JSON documents printed by the command line.
//
// A successful run yields a *Success. Failures are plain errors: a
// *parser.SyntaxError becomes a syntax_error document and anything else a
// parse_error document carrying a traceback.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/luthersystems/pyscan/analysis"
	"github.com/luthersystems/pyscan/lint"
	"github.com/luthersystems/pyscan/parser"
	"github.com/luthersystems/pyscan/telemetry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// Success is the report for a file that parsed.
type Success struct {
	Success  bool                  `json:"success"`
	Symbols  *analysis.SymbolTable `json:"symbols"`
	Issues   []lint.Issue          `json:"issues"`
	FilePath string                `json:"file_path"`

	// Source is the text that was analyzed.
	Source []byte `json:"-"`
}

// SyntaxFailure is the report for a file that does not parse.
type SyntaxFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// Failure is the report for any other error.
type Failure struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Traceback string `json:"traceback,omitempty"`
}

// MissingFilePath is the report printed when the command line does not
// name exactly one file.
func MissingFilePath() *Failure {
	return &Failure{Error: "missing_file_path"}
}

// FromError converts an error returned by Analyze or AnalyzeFile into its
// report document.
func FromError(err error) interface{} {
	var synErr *parser.SyntaxError
	if errors.As(err, &synErr) {
		return &SyntaxFailure{
			Error:   "syntax_error",
			Message: synErr.Error(),
			Line:    synErr.Line,
			Column:  synErr.Col,
		}
	}
	return &Failure{
		Error:     "parse_error",
		Message:   err.Error(),
		Traceback: Traceback(err),
	}
}

// Traceback renders the stack recorded with err.
func Traceback(err error) string {
	var p *panicError
	if errors.As(err, &p) {
		return fmt.Sprintf("%s\n\n%s", p.Error(), p.stack)
	}
	return fmt.Sprintf("%+v", err)
}

type panicError struct {
	value interface{}
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("internal error: %v", p.value)
}

// AnalyzeFile reads path and analyzes it. See Analyze.
func AnalyzeFile(ctx context.Context, path string, linter *lint.Linter) (*Success, error) {
	src, err := readFile(path)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("file", path).Int("bytes", len(src)).Msg("read source")
	return Analyze(ctx, path, src, linter)
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close() //nolint:errcheck // read-only file
	src, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return src, nil
}

// Analyze parses src, collects its symbols and runs linter over it. A nil
// linter runs the default rules. A panic anywhere in the pipeline is
// returned as an error carrying the goroutine stack.
func Analyze(ctx context.Context, filename string, src []byte, linter *lint.Linter) (rep *Success, err error) {
	ctx, span := telemetry.Start(ctx, "pyscan.analyze", attribute.String("file", filename))
	defer func() {
		if r := recover(); r != nil {
			rep, err = nil, &panicError{value: r, stack: debug.Stack()}
			log.Error().Interface("panic", r).Str("file", filename).Msg("analysis panicked")
		}
		telemetry.End(span, err)
	}()
	if linter == nil {
		linter = lint.NewLinter(nil)
	}

	_, parseSpan := telemetry.Start(ctx, "pyscan.parse")
	start := time.Now()
	tree, err := parser.Parse(ctx, filename, src)
	telemetry.End(parseSpan, err)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("file", filename).Dur("elapsed", time.Since(start)).Msg("parsed source")

	_, collectSpan := telemetry.Start(ctx, "pyscan.collect")
	res := analysis.Analyze(tree, src)
	collectSpan.SetAttributes(
		attribute.Int("functions", len(res.Symbols.Functions)),
		attribute.Int("classes", len(res.Symbols.Classes)),
		attribute.Int("variables", len(res.Symbols.Variables)),
		attribute.Int("imports", len(res.Symbols.Imports)),
	)
	telemetry.End(collectSpan, nil)

	_, lintSpan := telemetry.Start(ctx, "pyscan.lint", attribute.Int("rules", len(linter.Analyzers)))
	issues := linter.Lint(filename, res)
	lintSpan.SetAttributes(attribute.Int("issues", len(issues)))
	telemetry.End(lintSpan, nil)

	log.Debug().
		Str("file", filename).
		Int("functions", len(res.Symbols.Functions)).
		Int("classes", len(res.Symbols.Classes)).
		Int("issues", len(issues)).
		Msg("analysis complete")

	return &Success{
		Success:  true,
		Symbols:  res.Symbols,
		Issues:   issues,
		FilePath: filename,
		Source:   src,
	}, nil
}

// Write encodes v as JSON with two-space indentation.
func Write(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
