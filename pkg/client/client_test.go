package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediaid/platform/pkg/analysis"
	"github.com/mediaid/platform/pkg/symptoms"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	d, err := symptoms.NewDefaultDetector()
	require.NoError(t, err)
	svc := analysis.NewService(d, analysis.NewValidator(1000), analysis.Options{})

	router := mux.NewRouter()
	analysis.NewHTTPHandler(svc, 1<<20).Register(router.PathPrefix("/api/v1").Subrouter())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAgainstService(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL+"/", 5*time.Second, 1)
	ctx := context.Background()

	text := "sharp chest pain"
	resp, err := c.Analyze(ctx, analysis.AnalyzeRequest{Text: &text})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Symptoms)
	assert.Equal(t, "C3807341", resp.Symptoms[0].ConceptID)

	search, err := c.Search(ctx, "vision")
	require.NoError(t, err)
	require.Equal(t, 1, search.Count)
	assert.Equal(t, "C0344232", search.Results[0].ID)

	concept, err := c.Concept(ctx, "C1969971")
	require.NoError(t, err)
	assert.Equal(t, "Insomnia", concept.Name)

	stats, err := c.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Usage.TextAnalyses)

	_, err = c.Concept(ctx, "C0000000")
	assert.ErrorIs(t, err, analysis.ErrNotFound)

	_, err = c.History(ctx, "any")
	assert.ErrorIs(t, err, analysis.ErrHistoryDisabled)

	_, err = c.Analyze(ctx, analysis.AnalyzeRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "missing 'text' field", apiErr.Message)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "try again", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"concept_id":"C0015967","name":"Fever"}`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, time.Second, 3)
	concept, err := c.Concept(context.Background(), "C0015967")
	require.NoError(t, err)
	assert.Equal(t, "Fever", concept.Name)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, time.Second, 5)
	_, err := c.Search(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
