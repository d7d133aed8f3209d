package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"

	"git.home.luguber.info/inful/hugoify/internal/eventstore"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
	"git.home.luguber.info/inful/hugoify/internal/frontmatterops"
	"git.home.luguber.info/inful/hugoify/internal/logfields"
	"git.home.luguber.info/inful/hugoify/internal/metrics"
	"git.home.luguber.info/inful/hugoify/internal/observability"
)

// OutcomeFailed is the document outcome recorded for a failed document.
const OutcomeFailed = "FAILED"

// Options configure one run.
type Options struct {
	InputDir  string
	OutputDir string

	ExceptionSuffix string
	WarnOnce        bool
	// DumpStages writes each normalization stage's tree next to the page.
	DumpStages bool
	// RunLog, when set, receives the list of new and changed pages.
	RunLog string
	// Trigger records what started the run (cli, watch, schedule).
	Trigger string
}

// FileResult is the outcome of one processed document.
type FileResult struct {
	File     string
	Output   string
	Dialect  string
	Status   frontmatterops.Status
	Warnings int
	Duration time.Duration
}

// Result summarizes a run.
type Result struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Files     []FileResult
	Failed    []string
}

// Count returns how many documents ended with status.
func (r *Result) Count(status frontmatterops.Status) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Counts returns the number of documents per outcome, failures included.
func (r *Result) Counts() map[string]int {
	counts := map[string]int{}
	for _, f := range r.Files {
		counts[string(f.Status)]++
	}
	if len(r.Failed) > 0 {
		counts[OutcomeFailed] = len(r.Failed)
	}
	return counts
}

// Service executes runs. Its dependencies are optional and default to no-ops.
type Service struct {
	logger     *slog.Logger
	recorder   metrics.Recorder
	store      eventstore.Store
	projection *eventstore.RunHistoryProjection
	now        func() time.Time
}

// NewService creates a Service that logs through slog.Default and records nothing.
func NewService() *Service {
	return &Service{
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *slog.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithEventStore records run history in store.
func (s *Service) WithEventStore(store eventstore.Store) *Service {
	s.store = store
	return s
}

// WithProjection keeps p up to date with the events of every run.
func (s *Service) WithProjection(p *eventstore.RunHistoryProjection) *Service {
	s.projection = p
	return s
}

// WithClock replaces time.Now, for page dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run processes every document of the input directory. A missing input
// directory is not an error: there is nothing to do. The returned error
// aggregates the per-document failures; the Result is always complete.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: eventstore.NewRunID(), StartTime: start}
	ctx = observability.WithRunID(ctx, result.RunID)
	defer func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(start)
		s.recorder.ObserveBuildDuration(result.Duration)
	}()

	if _, err := os.Stat(opts.InputDir); os.IsNotExist(err) {
		s.log(ctx, slog.LevelInfo, "Exiting because there are no files to process",
			slog.String("input_dir", opts.InputDir))
		return result, nil
	}
	files, err := Discover(opts.InputDir)
	if err != nil {
		return result, err
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return result, errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", opts.OutputDir).
			Build()
	}

	s.emit(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewRunStarted(result.RunID, eventstore.RunStartedData{
			InputDir: opts.InputDir, OutputDir: opts.OutputDir, FileCount: len(files), Trigger: opts.Trigger,
		})
	})
	s.log(ctx, slog.LevelInfo, "Starting run", logfields.Count(len(files)))

	var failures *multierror.Error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			failures = multierror.Append(failures, err)
			break
		}
		fileCtx := observability.WithFile(ctx, filepath.Base(file))
		fr, err := s.processDocument(fileCtx, opts, file)
		if err != nil {
			failures = multierror.Append(failures, s.fail(fileCtx, result, file, err))
			continue
		}
		result.Files = append(result.Files, *fr)
	}

	if err := writeRunLog(opts.RunLog, result.Files); err != nil {
		failures = multierror.Append(failures, err)
	}

	s.emit(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewRunCompleted(result.RunID, eventstore.RunCompletedData{
			Counts: result.Counts(), DurationMS: time.Since(start).Milliseconds(),
		})
	})
	s.log(ctx, slog.LevelInfo, "Run complete",
		logfields.Count(len(result.Files)),
		slog.Int("failed", len(result.Failed)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))

	if failures != nil {
		failures.ErrorFormat = formatFailures
	}
	return result, failures.ErrorOrNil()
}

// fail records a document failure and returns err annotated with the file.
func (s *Service) fail(ctx context.Context, result *Result, file string, err error) error {
	name := filepath.Base(file)
	result.Failed = append(result.Failed, name)
	s.recorder.IncDocumentOutcome(OutcomeFailed)

	var category, stage string
	if ce, ok := errors.AsClassified(err); ok {
		category = string(ce.Category())
		stage, _ = ce.Context().GetString("stage")
		err = ce.WithContext("file", name)
	} else {
		err = errors.WrapError(err, errors.CategoryInternal, "document failed").WithContext("file", name).Build()
	}
	s.log(ctx, slog.LevelError, "Failed to process document", logfields.Error(err))
	s.emit(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewDocumentFailed(result.RunID, eventstore.DocumentFailedData{
			File: name, Stage: stage, Category: category, Error: err.Error(),
		})
	})
	return err
}

// emit appends an event to the history. History is best effort: a store
// failure is logged and the run goes on.
func (s *Service) emit(ctx context.Context, build func() (*eventstore.BaseEvent, error)) {
	if s.store == nil && s.projection == nil {
		return
	}
	e, err := build()
	if err != nil {
		s.log(ctx, slog.LevelWarn, "Failed to build history event", logfields.Error(err))
		return
	}
	if s.store != nil {
		if err := s.store.Append(ctx, e); err != nil {
			s.log(ctx, slog.LevelWarn, "Failed to record history event", logfields.Error(err))
		}
	}
	if s.projection != nil {
		s.projection.Apply(e)
	}
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	observability.Log(ctx, s.logger, level, msg, attrs...)
}

func formatFailures(errs []error) string {
	if len(errs) == 1 {
		return fmt.Sprintf("1 document failed: %v", errs[0])
	}
	msg := fmt.Sprintf("%d documents failed:", len(errs))
	for _, err := range errs {
		msg += "\n\t* " + err.Error()
	}
	return msg
}
