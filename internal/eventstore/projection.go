package eventstore

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusPartial   = "partial"
)

const defaultHistorySize = 100

// DocumentFailure names one document that failed within a run.
type DocumentFailure struct {
	File     string `json:"file"`
	Category string `json:"category,omitempty"`
	Error    string `json:"error"`
}

// RunSummary is the read model of a run.
type RunSummary struct {
	RunID       string            `json:"run_id"`
	Status      string            `json:"status"`
	Trigger     string            `json:"trigger,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Duration    time.Duration     `json:"duration,omitempty"`
	FileCount   int               `json:"file_count"`
	Counts      map[string]int    `json:"counts,omitempty"`
	Warnings    int               `json:"warnings"`
	Failures    []DocumentFailure `json:"failures,omitempty"`
}

// RunHistoryProjection folds stored events into run summaries.
type RunHistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	runs    map[string]*RunSummary
	history []*RunSummary // newest first
	maxSize int
}

// NewRunHistoryProjection creates a projection keeping at most maxHistorySize
// finished runs.
func NewRunHistoryProjection(store Store, maxHistorySize int) *RunHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = defaultHistorySize
	}
	return &RunHistoryProjection{
		store:   store,
		runs:    make(map[string]*RunSummary),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from every event in the store.
func (p *RunHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = make(map[string]*RunSummary)
	p.history = nil
	for _, e := range events {
		p.applyLocked(e)
	}
	slices.SortStableFunc(p.history, func(a, b *RunSummary) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	p.trimLocked()
	return nil
}

// Apply folds a single event into the projection.
func (p *RunHistoryProjection) Apply(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(e)
}

func (p *RunHistoryProjection) applyLocked(e Event) {
	runID := e.RunID()
	if runID == "" {
		return
	}
	summary, ok := p.runs[runID]
	if !ok {
		summary = &RunSummary{
			RunID:     runID,
			Status:    RunStatusRunning,
			StartedAt: e.Timestamp(),
			Counts:    map[string]int{},
		}
		p.runs[runID] = summary
	}

	// Undecodable payloads leave the summary as it was.
	switch e.Type() {
	case TypeRunStarted:
		var data RunStartedData
		if Decode(e, &data) == nil {
			summary.StartedAt = e.Timestamp()
			summary.FileCount = data.FileCount
			summary.Trigger = data.Trigger
		}
	case TypeDocumentProcessed:
		var data DocumentProcessedData
		if Decode(e, &data) == nil {
			summary.Counts[data.Status]++
			summary.Warnings += data.Warnings
		}
	case TypeDocumentFailed:
		var data DocumentFailedData
		if Decode(e, &data) == nil {
			summary.Failures = append(summary.Failures, DocumentFailure{
				File: data.File, Category: data.Category, Error: data.Error,
			})
		}
	case TypeRunCompleted:
		done := e.Timestamp()
		summary.CompletedAt = &done
		summary.Duration = done.Sub(summary.StartedAt)
		summary.Status = RunStatusCompleted
		if len(summary.Failures) > 0 {
			summary.Status = RunStatusPartial
		}
		if !slices.Contains(p.history, summary) {
			p.history = append([]*RunSummary{summary}, p.history...)
			p.trimLocked()
		}
	}
}

// trimLocked bounds the history and forgets finished runs that fell out of it.
func (p *RunHistoryProjection) trimLocked() {
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	for id, s := range p.runs {
		if s.Status != RunStatusRunning && !slices.Contains(p.history, s) {
			delete(p.runs, id)
		}
	}
}

// History returns finished runs, newest first.
func (p *RunHistoryProjection) History() []RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]RunSummary, 0, len(p.history))
	for _, s := range p.history {
		out = append(out, copySummary(s))
	}
	return out
}

// Run returns the summary of one run, finished or not.
func (p *RunHistoryProjection) Run(runID string) (RunSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.runs[runID]
	if !ok {
		return RunSummary{}, false
	}
	return copySummary(s), true
}

func copySummary(s *RunSummary) RunSummary {
	cp := *s
	cp.Counts = make(map[string]int, len(s.Counts))
	for k, v := range s.Counts {
		cp.Counts[k] = v
	}
	cp.Failures = slices.Clone(s.Failures)
	return cp
}
