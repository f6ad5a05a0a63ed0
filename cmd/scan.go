// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"io"

	"github.com/luthersystems/pyscan/report"
	"github.com/rs/zerolog/log"
)

// writeMissingFilePath prints the report for a bad command line and
// returns exit code 1.
func writeMissingFilePath(w io.Writer) int {
	if err := report.Write(w, report.MissingFilePath()); err != nil {
		log.Error().Err(err).Msg("write report")
	}
	return 1
}

// scan analyzes path and writes the report in the configured format.
// Syntax and parse errors are reports too, so the exit code is 0 unless
// the output cannot be written.
func scan(ctx context.Context, w io.Writer, path string, opts *options) int {
	rep, err := report.AnalyzeFile(ctx, path, opts.Linter)
	if err != nil {
		log.Debug().Err(err).Str("file", path).Msg("analysis failed")
	}

	var werr error
	switch opts.Format {
	case formatText:
		werr = renderText(w, path, rep, err, opts.Color)
	default:
		var doc interface{} = rep
		if err != nil {
			doc = report.FromError(err)
		}
		werr = report.Write(w, doc)
	}
	if werr != nil {
		log.Error().Err(werr).Msg("write report")
		return 2
	}
	return 0
}
