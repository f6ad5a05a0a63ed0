// Copyright © 2024 The ELPS authors

// Package docs embeds the pyscan report reference for use by the CLI.
package docs

import _ "embed"

//go:embed report.md
var ReportGuide string
