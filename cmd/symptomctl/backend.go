package main

import (
	"context"

	"github.com/mediaid/platform/pkg/analysis"
	"github.com/mediaid/platform/pkg/terminology"
)

// backend is either the in-process service or a remote one reached through
// pkg/client.
type backend interface {
	Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.AnalyzeResponse, error)
	Search(ctx context.Context, query string) (*analysis.SearchResponse, error)
	Concept(ctx context.Context, id string) (terminology.Concept, error)
	Statistics(ctx context.Context) (*analysis.StatsResponse, error)
}

type localBackend struct {
	svc *analysis.Service
}

func (b localBackend) Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.AnalyzeResponse, error) {
	return b.svc.Analyze(ctx, req)
}

func (b localBackend) Search(_ context.Context, query string) (*analysis.SearchResponse, error) {
	return b.svc.Search(query)
}

func (b localBackend) Concept(_ context.Context, id string) (terminology.Concept, error) {
	return b.svc.Concept(id)
}

func (b localBackend) Statistics(_ context.Context) (*analysis.StatsResponse, error) {
	stats := b.svc.Statistics()
	return &stats, nil
}
