package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediaid/platform/pkg/analysis"
	"github.com/mediaid/platform/pkg/symptoms"
	"github.com/mediaid/platform/pkg/terminology"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommandTable(t *testing.T) {
	out, err := run(t, "", "analyze", "severe", "headache")
	require.NoError(t, err)
	assert.Contains(t, out, "C0018681")
	assert.Contains(t, out, "Severe Headache")
	assert.Contains(t, out, "phrase")
}

func TestAnalyzeCommandJSONFromStdin(t *testing.T) {
	out, err := run(t, "I feel nauseous and dizzy", "analyze", "-o", "json", "--min-confidence", "0.5")
	require.NoError(t, err)

	var resp analysis.AnalyzeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestAnalyzeCommandNoSymptoms(t *testing.T) {
	out, err := run(t, "", "analyze", "all good")
	require.NoError(t, err)
	assert.Contains(t, out, "no symptoms detected")
}

func TestSearchAndConceptCommands(t *testing.T) {
	out, err := run(t, "", "search", "breath")
	require.NoError(t, err)
	assert.Contains(t, out, "C4230442")
	assert.Contains(t, out, terminology.MatchInKeywords)

	out, err = run(t, "", "concept", "C0015967")
	require.NoError(t, err)
	assert.Contains(t, out, "Fever")

	_, err = run(t, "", "concept", "C0000000")
	assert.ErrorIs(t, err, analysis.ErrNotFound)
}

func TestStatsCommandJSON(t *testing.T) {
	out, err := run(t, "", "stats", "--output", "json")
	require.NoError(t, err)

	var stats terminology.Statistics
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 20, stats.TotalConcepts)
}

func TestDemoCommand(t *testing.T) {
	out, err := run(t, "", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "5. \"No headache today, feeling much better\"")
	assert.Contains(t, out, "Palpitations")
}

func TestEnvironmentAndConfigFile(t *testing.T) {
	t.Setenv("SYMPTOMS_NEGATION_SCOPE", "bogus")
	_, err := run(t, "", "stats")
	require.Error(t, err)

	t.Setenv("SYMPTOMS_NEGATION_SCOPE", "")
	path := filepath.Join(t.TempDir(), "symptomctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: json\n"), 0o600))
	out, err := run(t, "", "--config", path, "stats")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))

	_, err = run(t, "", "-o", "xml", "stats")
	assert.Error(t, err)
}

func TestServerMode(t *testing.T) {
	d, err := symptoms.NewDefaultDetector()
	require.NoError(t, err)
	svc := analysis.NewService(d, analysis.NewValidator(0), analysis.Options{})
	router := mux.NewRouter()
	analysis.NewHTTPHandler(svc, 1<<20).Register(router.PathPrefix("/api/v1").Subrouter())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	out, err := run(t, "", "--server", srv.URL, "analyze", "persistent", "cough", "and", "fever")
	require.NoError(t, err)
	assert.Contains(t, out, "C0015967")
	assert.Equal(t, int64(1), svc.Statistics().Usage.TextAnalyses)

	_, err = run(t, "", "--server", srv.URL, "concept", "C0000000")
	assert.ErrorIs(t, err, analysis.ErrNotFound)
}
