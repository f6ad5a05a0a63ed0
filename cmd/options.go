// Copyright © 2024 The ELPS authors

package cmd

import (
	"strings"

	"github.com/luthersystems/pyscan/diagnostic"
	"github.com/luthersystems/pyscan/lint"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Output formats accepted by --format.
const (
	formatJSON = "json"
	formatText = "text"
)

// options is the resolved configuration of one invocation.
type options struct {
	Format string
	Trace  bool
	Color  diagnostic.ColorMode
	Linter *lint.Linter
}

// loadOptions resolves the configuration keys in v. Keys missing from v
// take their built-in defaults.
func loadOptions(v *viper.Viper) (*options, error) {
	format := strings.ToLower(strings.TrimSpace(v.GetString("format")))
	switch format {
	case "":
		format = formatJSON
	case formatJSON, formatText:
	default:
		return nil, errors.Errorf("unknown format %q (want %q or %q)", format, formatJSON, formatText)
	}
	linter, err := loadLinter(v)
	if err != nil {
		return nil, err
	}
	return &options{
		Format: format,
		Trace:  v.GetBool("trace"),
		Color:  diagnostic.ParseColorMode(v.GetString("color")),
		Linter: linter,
	}, nil
}

// loadLinter builds the rule set and thresholds from v.
func loadLinter(v *viper.Viper) (*lint.Linter, error) {
	analyzers, err := lint.SelectAnalyzers(stringList(v, "checks"))
	if err != nil {
		return nil, err
	}
	cfg := lint.DefaultConfig()
	if v.IsSet("long_function_lines") {
		cfg.LongFunctionLines = v.GetInt("long_function_lines")
	}
	if v.IsSet("max_complexity") {
		cfg.MaxComplexity = v.GetInt("max_complexity")
	}
	if v.IsSet("ignored_names") {
		cfg.IgnoredNames = stringList(v, "ignored_names")
	}
	if cfg.UnusedLine, err = lint.ParseUnusedLineMode(v.GetString("unused_line")); err != nil {
		return nil, err
	}
	return &lint.Linter{Analyzers: analyzers, Config: cfg}, nil
}

// stringList reads key as a list. Strings are split on commas so the same
// key works from flags, the environment and config files.
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	switch val := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(val, ",")
	case []string:
		raw = val
	case []interface{}:
		for _, x := range val {
			if s, ok := x.(string); ok {
				raw = append(raw, s)
			}
		}
	default:
		raw = v.GetStringSlice(key)
	}
	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
