package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/hugoify/internal/build"
	"git.home.luguber.info/inful/hugoify/internal/config"
	"git.home.luguber.info/inful/hugoify/internal/eventstore"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
	"git.home.luguber.info/inful/hugoify/internal/logfields"
	"git.home.luguber.info/inful/hugoify/internal/metrics"
)

// RunFlags override the configuration of a run. They are shared by build and watch.
type RunFlags struct {
	Input           string `short:"i" help:"Input directory of XML trees" type:"path"`
	Output          string `short:"o" help:"Output directory for Hugo pages" type:"path"`
	ExceptionSuffix string `name:"exception-suffix" help:"Class-name suffix that marks C++ classes as exceptions"`
	WarnOnce        bool   `name:"warn-once" help:"Report each missing render rule once per document"`
	DumpStages      bool   `name:"dump-stages" help:"Write every normalization stage as XML next to the page"`
	HistoryDB       string `name:"history-db" help:"SQLite database recording run history" type:"path"`
	MetricsFile     string `name:"metrics-file" help:"Write Prometheus metrics to this textfile after each run" type:"path"`
	RunLog          string `name:"run-log" help:"Write the list of new and changed pages to this file" type:"path"`
}

func (f *RunFlags) apply(cfg *config.Config) error {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.InputDir, f.Input)
	set(&cfg.OutputDir, f.Output)
	set(&cfg.ExceptionSuffix, f.ExceptionSuffix)
	set(&cfg.HistoryDB, f.HistoryDB)
	set(&cfg.MetricsFile, f.MetricsFile)
	set(&cfg.RunLog, f.RunLog)
	cfg.WarnOnce = cfg.WarnOnce || f.WarnOnce
	cfg.DumpStages = cfg.DumpStages || f.DumpStages
	return cfg.Validate()
}

// session wires a build.Service to the configured history and metrics sinks.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	service  *build.Service
	store    *eventstore.SQLiteStore
	history  *eventstore.RunHistoryProjection
	recorder *metrics.PrometheusRecorder
}

func openSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*session, error) {
	s := &session{cfg: cfg, logger: logger}
	s.service = build.NewService().WithLogger(logger)

	if cfg.MetricsFile != "" {
		s.recorder = metrics.NewPrometheusRecorder(prom.NewRegistry())
		s.service.WithRecorder(s.recorder)
	}
	if cfg.HistoryDB != "" {
		store, err := eventstore.NewSQLiteStore(cfg.HistoryDB)
		if err != nil {
			return nil, err
		}
		s.store = store
		s.history = eventstore.NewRunHistoryProjection(store, 0)
		if err := s.history.Rebuild(ctx); err != nil {
			logger.Warn("Failed to load run history", logfields.Error(err))
		}
		s.service.WithEventStore(store).WithProjection(s.history)
	}
	return s, nil
}

func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("Failed to close history database", logfields.Error(err))
		}
	}
}

// run executes one batch and writes the metrics textfile.
func (s *session) run(ctx context.Context, trigger string) (*build.Result, error) {
	res, err := s.service.Run(ctx, build.Options{
		InputDir:        s.cfg.InputDir,
		OutputDir:       s.cfg.OutputDir,
		ExceptionSuffix: s.cfg.ExceptionSuffix,
		WarnOnce:        s.cfg.WarnOnce,
		DumpStages:      s.cfg.DumpStages,
		RunLog:          s.cfg.RunLog,
		Trigger:         trigger,
	})
	if s.recorder != nil {
		if werr := s.recorder.WriteTextfile(s.cfg.MetricsFile); werr != nil {
			s.logger.Warn("Failed to write metrics textfile", logfields.Error(werr))
		}
	}
	if err != nil && res != nil && len(res.Failed) > 0 {
		category := errors.CategoryInternal
		if ce, ok := errors.AsClassified(err); ok {
			category = ce.Category()
		}
		total := len(res.Failed) + len(res.Files)
		err = errors.WrapError(err, category, fmt.Sprintf("%d of %d documents failed: %s",
			len(res.Failed), total, strings.Join(res.Failed, ", "))).Build()
	}
	return res, err
}

// printSummary writes one line per outcome, in a fixed order.
func printSummary(w io.Writer, res *build.Result) {
	counts := res.Counts()
	if len(counts) == 0 {
		_, _ = fmt.Fprintln(w, "No documents processed.")
		return
	}
	order := []string{"NEW", "CHANGED", "UNCHANGED", build.OutcomeFailed}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return slices.Index(order, a) - slices.Index(order, b)
	})
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d %s", counts[k], strings.ToLower(k)))
	}
	_, _ = fmt.Fprintf(w, "Processed %d documents in %s: %s\n",
		len(res.Files)+len(res.Failed), res.Duration.Round(time.Millisecond), strings.Join(parts, ", "))
}
