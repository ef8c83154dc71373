package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mediaid/platform/pkg/common/logger"
	"github.com/mediaid/platform/pkg/common/models"
	"github.com/mediaid/platform/pkg/observability/metrics"
	"github.com/mediaid/platform/pkg/symptoms"
	"github.com/mediaid/platform/pkg/terminology"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

// Options carries the optional collaborators. Nil fields are skipped.
type Options struct {
	Cache      ResultCache
	History    HistoryStore
	Publisher  Publisher
	DeadLetter Publisher
	Metrics    *metrics.Metrics
}

type Service struct {
	detector  *symptoms.Detector
	validator *Validator
	opts      Options
	started   time.Time

	textAnalyses     atomic.Int64
	cacheHits        atomic.Int64
	symptomsReported atomic.Int64
	processingMicros atomic.Int64
}

func NewService(detector *symptoms.Detector, validator *Validator, opts Options) *Service {
	return &Service{
		detector:  detector,
		validator: validator,
		opts:      opts,
		started:   time.Now(),
	}
}

func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	source := req.Source
	if source == "" {
		source = SourceHTTP
	}
	text := *req.Text
	hash := TextHash(text)

	result, cached := s.lookupCache(ctx, hash)
	if !cached {
		result = s.detector.Analyze(text)
		s.storeCache(ctx, hash, result)
	}
	result = filterByConfidence(result, req.MinConfidence)

	elapsed := time.Since(start)
	s.textAnalyses.Add(1)
	s.symptomsReported.Add(int64(len(result)))
	s.processingMicros.Add(elapsed.Microseconds())
	s.opts.Metrics.ObserveAnalysis(source, elapsed)
	for _, sym := range result {
		s.opts.Metrics.ObserveSymptom(sym.Category.String(), string(sym.Strategy))
	}

	resp := &AnalyzeResponse{
		ID:               uuid.New().String(),
		Success:          true,
		Symptoms:         result,
		Count:            len(result),
		ProcessingTimeMs: float64(elapsed.Microseconds()) / 1000,
		Model:            ModelName,
		Cached:           cached,
		Timestamp:        time.Now().UTC(),
	}

	s.record(ctx, resp, hash, utf8.RuneCountInString(text), source, req.RequestID)
	s.publish(ctx, resp, hash, source, req.RequestID)

	logger.Log.WithFields(map[string]interface{}{
		"analysis_id": resp.ID,
		"source":      source,
		"count":       resp.Count,
		"cached":      cached,
		"duration_ms": resp.ProcessingTimeMs,
	}).Debug("Text analyzed")

	return resp, nil
}

func (s *Service) lookupCache(ctx context.Context, hash string) ([]symptoms.Symptom, bool) {
	if s.opts.Cache == nil {
		return nil, false
	}
	result, ok, err := s.opts.Cache.Get(ctx, hash)
	if err != nil {
		logger.Log.WithError(err).Warn("Result cache lookup failed")
		s.opts.Metrics.ObserveFailure("cache")
		return nil, false
	}
	s.opts.Metrics.ObserveCache(ok)
	if ok {
		s.cacheHits.Add(1)
	}
	return result, ok
}

func (s *Service) storeCache(ctx context.Context, hash string, result []symptoms.Symptom) {
	if s.opts.Cache == nil {
		return
	}
	if err := s.opts.Cache.Set(ctx, hash, result); err != nil {
		logger.Log.WithError(err).Warn("Result cache write failed")
		s.opts.Metrics.ObserveFailure("cache")
	}
}

func (s *Service) record(ctx context.Context, resp *AnalyzeResponse, hash string, length int, source, requestID string) {
	if s.opts.History == nil {
		return
	}

	payload, err := json.Marshal(resp.Symptoms)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to encode symptoms for history")
		s.opts.Metrics.ObserveFailure("history")
		return
	}

	rec := &AnalysisRecord{
		ID:           resp.ID,
		TextHash:     hash,
		TextLength:   length,
		Symptoms:     datatypes.JSON(payload),
		SymptomCount: resp.Count,
		Source:       source,
		RequestID:    requestID,
		ProcessingMs: resp.ProcessingTimeMs,
		CreatedAt:    resp.Timestamp,
	}
	if resp.Count > 0 {
		rec.TopConceptID = resp.Symptoms[0].ConceptID
	}

	if err := s.opts.History.Save(ctx, rec); err != nil {
		logger.Log.WithError(err).WithField("analysis_id", resp.ID).Error("Failed to persist analysis record")
		s.opts.Metrics.ObserveFailure("history")
	}
}

func (s *Service) publish(ctx context.Context, resp *AnalyzeResponse, hash, source, requestID string) {
	if s.opts.Publisher == nil {
		return
	}

	data := map[string]interface{}{
		"analysis_id":  resp.ID,
		"request_id":   requestID,
		"text_hash":    hash,
		"symptoms":     resp.Symptoms,
		"count":        resp.Count,
		"model":        resp.Model,
		"processed_at": resp.Timestamp,
	}
	if err := s.opts.Publisher.PublishEvent(ctx, models.EventTypeSymptomsDetected, source, data); err != nil {
		logger.Log.WithError(err).WithField("analysis_id", resp.ID).Error("Failed to publish analysis event")
		s.opts.Metrics.ObserveFailure("publish")
	}
}

func filterByConfidence(result []symptoms.Symptom, min *float64) []symptoms.Symptom {
	if min == nil {
		return result
	}
	out := make([]symptoms.Symptom, 0, len(result))
	for _, sym := range result {
		if sym.Confidence >= *min {
			out = append(out, sym)
		}
	}
	return out
}

func (s *Service) Search(query string) (*SearchResponse, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ValidationError{reason: errEmptyQuery}
	}
	results := s.detector.Search(q)
	return &SearchResponse{Query: q, Results: results, Count: len(results)}, nil
}

func (s *Service) Concept(id string) (terminology.Concept, error) {
	c, ok := s.detector.Lookup(strings.TrimSpace(id))
	if !ok {
		return terminology.Concept{}, fmt.Errorf("concept %q: %w", id, ErrNotFound)
	}
	return c, nil
}

func (s *Service) Statistics() StatsResponse {
	return StatsResponse{
		Usage: UsageStats{
			TextAnalyses:          s.textAnalyses.Load(),
			CacheHits:             s.cacheHits.Load(),
			SymptomsReported:      s.symptomsReported.Load(),
			TotalProcessingTimeMs: float64(s.processingMicros.Load()) / 1000,
			UptimeSeconds:         math.Round(time.Since(s.started).Seconds()),
		},
		Database: s.detector.Statistics(),
		Model:    ModelName,
	}
}

func (s *Service) History(ctx context.Context, id string) (*AnalysisRecord, error) {
	if s.opts.History == nil {
		return nil, ErrHistoryDisabled
	}
	return s.opts.History.Get(ctx, id)
}

// HandleEvent analyzes symptom-text events from the broker. Malformed events
// go to the dead-letter publisher when one is set and are otherwise dropped,
// so they are never redelivered.
func (s *Service) HandleEvent(ctx context.Context, event models.Event) error {
	if event.Type != "" && event.Type != models.EventTypeSymptomText {
		logger.Log.WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Debug("Skipping unrelated event")
		return nil
	}

	req := AnalyzeRequest{Source: SourceKafka, RequestID: event.ID}
	if text, ok := event.Data["text"].(string); ok {
		req.Text = &text
	}
	if id, ok := event.Data["request_id"].(string); ok && id != "" {
		req.RequestID = id
	}
	if mc, ok := event.Data["min_confidence"].(float64); ok {
		req.MinConfidence = &mc
	}

	_, err := s.Analyze(ctx, req)
	if err == nil {
		return nil
	}
	if !IsValidationError(err) {
		return err
	}

	logger.Log.WithError(err).WithField("event_id", event.ID).Warn("Rejecting malformed symptom-text event")
	if s.opts.DeadLetter != nil {
		data := map[string]interface{}{
			"event_id": event.ID,
			"source":   event.Source,
			"error":    err.Error(),
		}
		if dlqErr := s.opts.DeadLetter.PublishEvent(ctx, models.EventTypeSymptomText, event.Source, data); dlqErr != nil {
			logger.Log.WithError(dlqErr).Error("Failed to push event to DLQ")
			return dlqErr
		}
	}
	return nil
}
