package analysis

import (
	"time"

	"gorm.io/datatypes"

	"github.com/mediaid/platform/pkg/symptoms"
	"github.com/mediaid/platform/pkg/terminology"
)

const (
	ModelName = "Advanced Keywords + CUI"

	SourceHTTP  = "http"
	SourceKafka = "kafka"
	SourceCLI   = "cli"
)

// AnalyzeRequest is the body of POST /api/v1/text/analyze. Text is a pointer
// so a missing field can be told apart from an empty one.
type AnalyzeRequest struct {
	Text          *string  `json:"text"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
	RequestID     string   `json:"request_id,omitempty"`
	Source        string   `json:"-"`
}

type AnalyzeResponse struct {
	ID               string             `json:"analysis_id"`
	Success          bool               `json:"success"`
	Symptoms         []symptoms.Symptom `json:"symptoms"`
	Count            int                `json:"count"`
	ProcessingTimeMs float64            `json:"processing_time_ms"`
	Model            string             `json:"model"`
	Cached           bool               `json:"cached"`
	Timestamp        time.Time          `json:"timestamp"`
}

type SearchRequest struct {
	Query *string `json:"query"`
}

type SearchResponse struct {
	Query   string                     `json:"query"`
	Results []terminology.SearchResult `json:"results"`
	Count   int                        `json:"count"`
}

type UsageStats struct {
	TextAnalyses          int64   `json:"text_analyses"`
	CacheHits             int64   `json:"cache_hits"`
	SymptomsReported      int64   `json:"symptoms_reported"`
	TotalProcessingTimeMs float64 `json:"total_processing_time_ms"`
	UptimeSeconds         float64 `json:"uptime_seconds"`
}

type StatsResponse struct {
	Usage    UsageStats             `json:"usage_stats"`
	Database terminology.Statistics `json:"database"`
	Model    string                 `json:"model"`
}

// AnalysisRecord is the persisted summary of one analysis. Only a hash and the
// length of the input are kept.
type AnalysisRecord struct {
	ID           string         `json:"id" gorm:"primaryKey;column:id"`
	TextHash     string         `json:"text_hash" gorm:"column:text_hash;index"`
	TextLength   int            `json:"text_length" gorm:"column:text_length"`
	Symptoms     datatypes.JSON `json:"symptoms" gorm:"column:symptoms"`
	SymptomCount int            `json:"symptom_count" gorm:"column:symptom_count"`
	TopConceptID string         `json:"top_concept_id,omitempty" gorm:"column:top_concept_id"`
	Source       string         `json:"source" gorm:"column:source"`
	RequestID    string         `json:"request_id,omitempty" gorm:"column:request_id"`
	ProcessingMs float64        `json:"processing_ms" gorm:"column:processing_ms"`
	CreatedAt    time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"column:updated_at"`
}

func (AnalysisRecord) TableName() string {
	return "symptom_analyses"
}
