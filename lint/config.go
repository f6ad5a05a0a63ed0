// Copyright © 2024 The ELPS authors

package lint

import (
	"strings"

	"github.com/pkg/errors"
)

// UnusedLineMode selects how the unused-variable rule picks a line.
type UnusedLineMode string

const (
	// UnusedLineBinding reports the line of the first binding of the name.
	UnusedLineBinding UnusedLineMode = "binding"
	// UnusedLineText reports the first source line containing "<name> ="
	// or "<name>:", or line 1 when none does.
	UnusedLineText UnusedLineMode = "text"
)

// ParseUnusedLineMode validates a mode name.
func ParseUnusedLineMode(s string) (UnusedLineMode, error) {
	switch m := UnusedLineMode(strings.ToLower(strings.TrimSpace(s))); m {
	case UnusedLineBinding, UnusedLineText:
		return m, nil
	case "":
		return UnusedLineBinding, nil
	}
	return "", errors.Errorf("unknown unused-line mode %q (want %q or %q)", s, UnusedLineBinding, UnusedLineText)
}

// Config holds rule thresholds and options.
type Config struct {
	// LongFunctionLines is the longest a function may be before
	// long-function reports it.
	LongFunctionLines int

	// MaxComplexity is the highest complexity high-complexity accepts.
	MaxComplexity int

	// IgnoredNames are never reported by unused-variable. They extend
	// the fixed set of _, __, self and cls, and names starting with an
	// underscore are always ignored.
	IgnoredNames []string

	UnusedLine UnusedLineMode
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() *Config {
	return &Config{
		LongFunctionLines: 50,
		MaxComplexity:     10,
		UnusedLine:        UnusedLineBinding,
	}
}

var alwaysIgnored = map[string]bool{"_": true, "__": true, "self": true, "cls": true}

func (c *Config) ignored(name string) bool {
	if alwaysIgnored[name] || strings.HasPrefix(name, "_") {
		return true
	}
	for _, n := range c.IgnoredNames {
		if n == name {
			return true
		}
	}
	return false
}
