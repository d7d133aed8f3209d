package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("adapt", 2*time.Millisecond)
	pr.IncStageResult("adapt", ResultSuccess)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncDocumentOutcome("NEW")
	pr.AddRenderWarnings(3)
	pr.AddRenderWarnings(0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["hugoify_stage_duration_seconds"])
	assert.True(t, names["hugoify_documents_total"])
	assert.True(t, names["hugoify_render_warnings_total"])
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncDocumentOutcome("CHANGED")

	path := filepath.Join(t.TempDir(), "hugoify.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `hugoify_documents_total{outcome="CHANGED"} 1`)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveStageDuration("adapt", time.Second)
		pr.IncDocumentOutcome("NEW")
		pr.AddRenderWarnings(1)
	})
}

func TestTestRecorderCounts(t *testing.T) {
	r := newTestRecorder()
	r.IncStageResult("members", ResultFatal)
	r.IncStageResult("members", ResultFatal)
	r.AddRenderWarnings(2)
	assert.Equal(t, 2, r.stageResults["members"][ResultFatal])
	assert.Equal(t, 2, r.warnings)
}
