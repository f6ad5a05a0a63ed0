// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/luthersystems/pyscan/pyscantest"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mutableDefaultSource = "def f(a, b=[]):\n    pass\n"

func runWith(t *testing.T, v *viper.Viper, args ...string) (int, string, string) {
	t.Helper()
	pyscantest.CaptureLog(t)
	if v == nil {
		v = viper.New()
	}
	var stdout, stderr bytes.Buffer
	code := runRoot(context.Background(), v, &stdout, &stderr, args)
	return code, stdout.String(), stderr.String()
}

func TestRootCommand_Flags(t *testing.T) {
	assert.Equal(t, "pyscan <file>", rootCmd.Use)
	for _, name := range []string{"config", "log-level", "trace", "color", "checks", "long-function-lines", "max-complexity", "ignored-names", "unused-line"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing flag: %s", name)
	}
	assert.NotNil(t, rootCmd.Flags().Lookup("format"))

	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "rules")
	assert.Contains(t, names, "lsp")
}

func TestRunRoot_MissingFilePath(t *testing.T) {
	want := "{\n  \"success\": false,\n  \"error\": \"missing_file_path\"\n}\n"
	for _, args := range [][]string{nil, {"a.py", "b.py"}} {
		code, stdout, _ := runWith(t, nil, args...)
		assert.Equal(t, 1, code)
		assert.Equal(t, want, stdout)
	}
}

func TestRunRoot_Success(t *testing.T) {
	path := pyscantest.WriteSource(t, "sample.py", mutableDefaultSource)
	code, stdout, _ := runWith(t, nil, path)
	require.Equal(t, 0, code)

	doc := pyscantest.DecodeReport(t, []byte(stdout))
	assert.Equal(t, true, doc["success"])
	assert.Equal(t, path, doc["file_path"])
	assert.Equal(t, []string{"missing-docstring", "unused-variable", "mutable-default-argument"}, pyscantest.IssueRules(t, doc))
	assert.Contains(t, stdout, "\n  \"symbols\": {\n")
}

func TestRunRoot_SyntaxError(t *testing.T) {
	path := pyscantest.WriteSource(t, "bad.py", "x = 1\ndef broken(:\n    pass\n")
	code, stdout, _ := runWith(t, nil, path)
	require.Equal(t, 0, code)

	doc := pyscantest.DecodeReport(t, []byte(stdout))
	assert.Equal(t, false, doc["success"])
	assert.Equal(t, "syntax_error", doc["error"])
	assert.Equal(t, float64(2), doc["line"])
	assert.Contains(t, doc, "column")
	assert.NotContains(t, doc, "traceback")
}

func TestRunRoot_PrintStatement(t *testing.T) {
	path := pyscantest.WriteSource(t, "legacy.py", "import os\nprint os.sep\n")
	code, stdout, _ := runWith(t, nil, path)
	require.Equal(t, 0, code)

	doc := pyscantest.DecodeReport(t, []byte(stdout))
	assert.Equal(t, false, doc["success"])
	assert.Equal(t, "syntax_error", doc["error"])
	assert.Equal(t, float64(2), doc["line"])
	assert.Equal(t, float64(1), doc["column"])
	assert.Contains(t, doc["message"], "Missing parentheses in call to 'print'")
}

func TestRunRoot_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.py")
	code, stdout, _ := runWith(t, nil, path)
	require.Equal(t, 0, code)

	doc := pyscantest.DecodeReport(t, []byte(stdout))
	assert.Equal(t, false, doc["success"])
	assert.Equal(t, "parse_error", doc["error"])
	assert.Contains(t, doc["message"], "absent.py")
	assert.NotEmpty(t, doc["traceback"])
}

func TestRunRoot_Checks(t *testing.T) {
	path := pyscantest.WriteSource(t, "sample.py", mutableDefaultSource)
	v := viper.New()
	v.Set("checks", "mutable-default-argument, bare-except")
	code, stdout, _ := runWith(t, v, path)
	require.Equal(t, 0, code)
	doc := pyscantest.DecodeReport(t, []byte(stdout))
	assert.Equal(t, []string{"mutable-default-argument"}, pyscantest.IssueRules(t, doc))
}

func TestRunRoot_UnknownCheck(t *testing.T) {
	path := pyscantest.WriteSource(t, "sample.py", mutableDefaultSource)
	v := viper.New()
	v.Set("checks", "no-such-rule")
	code, stdout, stderr := runWith(t, v, path)
	assert.Equal(t, 2, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "unknown check(s): no-such-rule")
}

func TestRunRoot_Thresholds(t *testing.T) {
	src := "def _g(x):\n    \"\"\"Doc.\"\"\"\n    if x:\n        return 1\n    return 2\n"
	path := pyscantest.WriteSource(t, "sample.py", src)

	code, stdout, _ := runWith(t, nil, path)
	require.Equal(t, 0, code)
	assert.Empty(t, pyscantest.IssueRules(t, pyscantest.DecodeReport(t, []byte(stdout))))

	v := viper.New()
	v.Set("max_complexity", 1)
	v.Set("long_function_lines", 4)
	code, stdout, _ = runWith(t, v, path)
	require.Equal(t, 0, code)
	assert.Equal(t, []string{"long-function", "high-complexity"},
		pyscantest.IssueRules(t, pyscantest.DecodeReport(t, []byte(stdout))))
}

func TestRunRoot_IgnoredNames(t *testing.T) {
	path := pyscantest.WriteSource(t, "sample.py", "total = 1\ncount = 2\nself = 3\ncls = 4\n")
	v := viper.New()
	v.Set("ignored_names", "total")
	code, stdout, _ := runWith(t, v, path)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Variable 'count' is defined but never used")
	assert.NotContains(t, stdout, "Variable 'total'")
	assert.NotContains(t, stdout, "Variable 'self'")
	assert.NotContains(t, stdout, "Variable 'cls'")
}

func TestRunRoot_TextFormat(t *testing.T) {
	path := pyscantest.WriteSource(t, "sample.py", mutableDefaultSource)
	v := viper.New()
	v.Set("format", "text")
	v.Set("color", "never")
	code, stdout, _ := runWith(t, v, path)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "info[missing-docstring]: Public function 'f' is missing a docstring")
	assert.Contains(t, stdout, "warning[mutable-default-argument]: Mutable default argument in function 'f'")
	assert.Contains(t, stdout, "--> "+path+":1")
	assert.Contains(t, stdout, "def f(a, b=[]):")
	assert.Contains(t, stdout, "3 issue(s)")
}

func TestRunRoot_TextFormatSyntaxError(t *testing.T) {
	path := pyscantest.WriteSource(t, "bad.py", "x = 1\ndef broken(:\n    pass\n")
	v := viper.New()
	v.Set("format", "text")
	v.Set("color", "never")
	code, stdout, _ := runWith(t, v, path)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "error[syntax_error]:")
	assert.Contains(t, stdout, "def broken(:")
}

func TestRunRoot_BadFormat(t *testing.T) {
	path := pyscantest.WriteSource(t, "sample.py", mutableDefaultSource)
	v := viper.New()
	v.Set("format", "yaml")
	code, _, stderr := runWith(t, v, path)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown format "yaml"`)
}

func TestRunRoot_Trace(t *testing.T) {
	path := pyscantest.WriteSource(t, "sample.py", mutableDefaultSource)
	v := viper.New()
	v.Set("trace", true)
	code, stdout, stderr := runWith(t, v, path)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "\"success\": true")
	assert.Contains(t, stderr, "pyscan.analyze")
	assert.Contains(t, stderr, "pyscan.parse")
}

func TestStringList(t *testing.T) {
	v := viper.New()
	v.Set("csv", " a, b ,,c")
	v.Set("slice", []interface{}{"x", " y "})
	assert.Equal(t, []string{"a", "b", "c"}, stringList(v, "csv"))
	assert.Equal(t, []string{"x", "y"}, stringList(v, "slice"))
	assert.Nil(t, stringList(v, "missing"))
}

func TestSetupLogging(t *testing.T) {
	setupLogging("bogus")
	setupLogging("debug")
	t.Cleanup(func() { setupLogging("warn") })
}
