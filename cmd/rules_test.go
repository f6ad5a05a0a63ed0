// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/luthersystems/pyscan/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRules(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRules(&buf, lint.DefaultAnalyzers(), false))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "long-function (code_smell, warning)\n  Warn when"))
	assert.Contains(t, out, "\nbare-except (potential_issue, warning)\n")
	assert.Contains(t, out, "\nold-string-formatting (suggestion, info)\n")
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "  ") {
			assert.LessOrEqual(t, len(line), rulesWrapWidth+2, "line not wrapped: %q", line)
		}
	}
}

func TestWriteRules_Short(t *testing.T) {
	analyzers, err := lint.SelectAnalyzers([]string{"bare-except", "long-function"})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, writeRules(&buf, analyzers, true))
	assert.Equal(t, "long-function\nbare-except\n", buf.String())
}

func TestRulesCommand_UnknownRule(t *testing.T) {
	err := rulesCmd.RunE(rulesCmd, []string{"nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown check(s): nope")
}

func TestRulesCommand_Guide(t *testing.T) {
	var buf bytes.Buffer
	rulesCmd.SetOut(&buf)
	rulesGuide = true
	t.Cleanup(func() {
		rulesGuide = false
		rulesCmd.SetOut(nil)
	})
	require.NoError(t, rulesCmd.RunE(rulesCmd, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "# pyscan report format"))
	assert.Contains(t, buf.String(), "missing_file_path")
}
