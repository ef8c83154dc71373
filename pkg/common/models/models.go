package models

import "time"

// Event is the envelope exchanged over Kafka.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // symptom-text, symptoms-detected
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

const (
	EventTypeSymptomText      = "symptom-text"
	EventTypeSymptomsDetected = "symptoms-detected"
)
