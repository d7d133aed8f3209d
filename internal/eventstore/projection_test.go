package eventstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendRun(t *testing.T, ctx context.Context, store Store, runID string, failed bool) {
	t.Helper()
	mustAppend := func(e *BaseEvent, err error) {
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, e))
	}
	mustAppend(NewRunStarted(runID, RunStartedData{InputDir: "raw", OutputDir: "out", FileCount: 3}))
	mustAppend(NewDocumentProcessed(runID, DocumentProcessedData{File: "a.xml", Output: "a.md", Dialect: "cpp", Status: "NEW", Warnings: 2}))
	mustAppend(NewDocumentProcessed(runID, DocumentProcessedData{File: "b.xml", Output: "b.md", Dialect: "py", Status: "UNCHANGED"}))
	if failed {
		mustAppend(NewDocumentFailed(runID, DocumentFailedData{File: "c.xml", Category: "structural", Error: "boom"}))
	}
	mustAppend(NewRunCompleted(runID, RunCompletedData{Counts: map[string]int{"NEW": 1}}))
}

func TestRunHistoryProjection_Rebuild(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	appendRun(t, ctx, store, "run-1", false)
	appendRun(t, ctx, store, "run-2", true)

	p := NewRunHistoryProjection(store, 10)
	require.NoError(t, p.Rebuild(ctx))

	history := p.History()
	require.Len(t, history, 2)

	byID := map[string]RunSummary{}
	for _, s := range history {
		byID[s.RunID] = s
	}
	ok := byID["run-1"]
	assert.Equal(t, RunStatusCompleted, ok.Status)
	assert.Equal(t, 3, ok.FileCount)
	assert.Equal(t, map[string]int{"NEW": 1, "UNCHANGED": 1}, ok.Counts)
	assert.Equal(t, 2, ok.Warnings)
	assert.NotNil(t, ok.CompletedAt)

	partial := byID["run-2"]
	assert.Equal(t, RunStatusPartial, partial.Status)
	require.Len(t, partial.Failures, 1)
	assert.Equal(t, "c.xml", partial.Failures[0].File)
}

func TestRunHistoryProjection_ApplyTracksRunningRun(t *testing.T) {
	p := NewRunHistoryProjection(newTestStore(t), 10)

	e, err := NewRunStarted("live", RunStartedData{FileCount: 1, Trigger: "watch"})
	require.NoError(t, err)
	p.Apply(e)

	s, ok := p.Run("live")
	require.True(t, ok)
	assert.Equal(t, RunStatusRunning, s.Status)
	assert.Equal(t, "watch", s.Trigger)
	assert.Empty(t, p.History())
}

func TestRunHistoryProjection_BoundedNewestFirst(t *testing.T) {
	p := NewRunHistoryProjection(newTestStore(t), 2)
	base := time.Now()

	for i, id := range []string{"r1", "r2", "r3"} {
		start := &BaseEvent{EventRunID: id, EventType: TypeRunStarted, EventTimestamp: base.Add(time.Duration(i) * time.Minute), EventPayload: []byte(`{}`)}
		done := &BaseEvent{EventRunID: id, EventType: TypeRunCompleted, EventTimestamp: start.EventTimestamp.Add(time.Second), EventPayload: []byte(`{}`)}
		p.Apply(start)
		p.Apply(done)
	}

	history := p.History()
	require.Len(t, history, 2)
	assert.Equal(t, "r3", history[0].RunID)
	assert.Equal(t, "r2", history[1].RunID)
	assert.Equal(t, time.Second, history[0].Duration)

	_, ok := p.Run("r1")
	assert.False(t, ok)
}

func TestRunHistoryProjection_ReturnsCopies(t *testing.T) {
	p := NewRunHistoryProjection(newTestStore(t), 10)
	e, err := NewDocumentProcessed("r", DocumentProcessedData{Status: "NEW"})
	require.NoError(t, err)
	p.Apply(e)

	s, _ := p.Run("r")
	s.Counts["NEW"] = 99
	again, _ := p.Run("r")
	assert.Equal(t, 1, again.Counts["NEW"])
}
