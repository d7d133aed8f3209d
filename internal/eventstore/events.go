package eventstore

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// Event type names.
const (
	TypeRunStarted        = "RunStarted"
	TypeDocumentProcessed = "DocumentProcessed"
	TypeDocumentFailed    = "DocumentFailed"
	TypeRunCompleted      = "RunCompleted"
)

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// RunStartedData is the payload of a RunStarted event.
type RunStartedData struct {
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
	FileCount int    `json:"file_count"`
	Trigger   string `json:"trigger,omitempty"`
}

// DocumentProcessedData is the payload of a DocumentProcessed event.
type DocumentProcessedData struct {
	File       string `json:"file"`
	Output     string `json:"output"`
	Dialect    string `json:"dialect"`
	Status     string `json:"status"`
	Warnings   int    `json:"warnings"`
	DurationMS int64  `json:"duration_ms"`
}

// DocumentFailedData is the payload of a DocumentFailed event.
type DocumentFailedData struct {
	File     string `json:"file"`
	Stage    string `json:"stage,omitempty"`
	Category string `json:"category,omitempty"`
	Error    string `json:"error"`
}

// RunCompletedData is the payload of a RunCompleted event.
type RunCompletedData struct {
	Counts     map[string]int `json:"counts"`
	DurationMS int64          `json:"duration_ms"`
}

// NewRunStarted creates a RunStarted event.
func NewRunStarted(runID string, data RunStartedData) (*BaseEvent, error) {
	return newEvent(runID, TypeRunStarted, data)
}

// NewDocumentProcessed creates a DocumentProcessed event.
func NewDocumentProcessed(runID string, data DocumentProcessedData) (*BaseEvent, error) {
	return newEvent(runID, TypeDocumentProcessed, data, "file", data.File, "status", data.Status)
}

// NewDocumentFailed creates a DocumentFailed event.
func NewDocumentFailed(runID string, data DocumentFailedData) (*BaseEvent, error) {
	return newEvent(runID, TypeDocumentFailed, data, "file", data.File)
}

// NewRunCompleted creates a RunCompleted event.
func NewRunCompleted(runID string, data RunCompletedData) (*BaseEvent, error) {
	return newEvent(runID, TypeRunCompleted, data)
}

func newEvent(runID, eventType string, data any, meta ...string) (*BaseEvent, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryEventStore, "failed to marshal "+eventType+" payload").
			WithContext("run_id", runID).
			Build()
	}
	e := &BaseEvent{
		EventRunID:     runID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   payload,
	}
	for i := 0; i+1 < len(meta); i += 2 {
		if e.EventMetadata == nil {
			e.EventMetadata = map[string]string{}
		}
		e.EventMetadata[meta[i]] = meta[i+1]
	}
	return e, nil
}

// Decode unmarshals the payload of e into v.
func Decode(e Event, v any) error {
	if err := json.Unmarshal(e.Payload(), v); err != nil {
		return errors.WrapError(err, errors.CategoryEventStore, "failed to unmarshal "+e.Type()+" payload").
			WithContext("run_id", e.RunID()).
			Build()
	}
	return nil
}
