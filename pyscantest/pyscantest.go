// Copyright © 2024 The ELPS authors

// Package pyscantest holds helpers shared by pyscan tests.
package pyscantest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

// WriteSource writes src to name inside a fresh temporary directory and
// returns the file path.
func WriteSource(t testing.TB, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

// DecodeReport unmarshals a JSON report into a generic map.
func DecodeReport(t testing.TB, data []byte) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc), "report is not a JSON object:\n%s", data)
	return doc
}

// IssueRules returns the rule of every issue in a decoded success report.
func IssueRules(t testing.TB, doc map[string]interface{}) []string {
	t.Helper()
	issues, ok := doc["issues"].([]interface{})
	require.True(t, ok, "report has no issues array")
	rules := []string{}
	for _, it := range issues {
		m, ok := it.(map[string]interface{})
		require.True(t, ok)
		rule, _ := m["rule"].(string)
		rules = append(rules, rule)
	}
	return rules
}

// CaptureLog routes the global zerolog logger to t.Log for the rest of
// the test.
func CaptureLog(t testing.TB) {
	prev := log.Logger
	log.Logger = Zerolog(t)
	t.Cleanup(func() { log.Logger = prev })
}
