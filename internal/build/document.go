package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
	"git.home.luguber.info/inful/hugoify/internal/eventstore"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
	"git.home.luguber.info/inful/hugoify/internal/frontmatterops"
	"git.home.luguber.info/inful/hugoify/internal/logfields"
	"git.home.luguber.info/inful/hugoify/internal/metrics"
	"git.home.luguber.info/inful/hugoify/internal/normalize"
	"git.home.luguber.info/inful/hugoify/internal/observability"
	"git.home.luguber.info/inful/hugoify/internal/render"
)

// Stages timed around the normalization pipeline.
const (
	StageParse     = "parse"
	StageRender    = "render"
	StageSerialize = "serialize"
	StageWrite     = "write"
)

// processDocument takes one input file through every stage. Nothing is written
// unless all stages succeed.
func (s *Service) processDocument(ctx context.Context, opts Options, file string) (*FileResult, error) {
	start := time.Now()
	outName := OutputName(file)
	outPath := filepath.Join(opts.OutputDir, outName)

	var raw *doctree.Node
	err := s.stage(ctx, StageParse, func() (err error) {
		raw, err = docmodel.ParseFile(file)
		return err
	})
	if err != nil {
		return nil, err
	}

	dumps := newStageDumps(outPath, opts.DumpStages)
	normOpts := normalize.DefaultOptions()
	if opts.ExceptionSuffix != "" {
		normOpts.ExceptionSuffix = opts.ExceptionSuffix
	}
	failedStage := "normalize"
	normOpts.Observer = func(stage string, tree *doctree.Node, elapsed time.Duration, err error) {
		s.recordStage(stage, elapsed, err, 0)
		if err != nil {
			failedStage = stage
		}
		dumps.observe(stage, tree, err)
	}
	doc, err := normalize.New(normOpts).Run(raw)
	if dumpErr := dumps.flush(); dumpErr != nil {
		s.log(ctx, slog.LevelWarn, "Failed to write stage dumps", logfields.Error(dumpErr))
	}
	if err != nil {
		return nil, tagStage(ctx, failedStage, err)
	}

	renderStart := time.Now()
	out, err := render.New(render.Options{
		WarnOnce: opts.WarnOnce,
		Logger:   s.stageLogger(ctx, StageRender),
	}).Render(doc.Tree)
	warnings := 0
	if out != nil {
		warnings = out.Diagnostics.Count()
	}
	s.recordStage(StageRender, time.Since(renderStart), err, warnings)
	if err != nil {
		return nil, tagStage(ctx, StageRender, err)
	}
	s.recorder.AddRenderWarnings(warnings)

	var pg *page
	err = s.stage(ctx, StageSerialize, func() error {
		markup, err := render.Serialize(out.Nodes)
		if err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "failed to serialize page").Build()
		}
		stem := strings.TrimSuffix(outName, outputExt)
		pg, err = composePage(outPath, pageInfo(stem, doc.Title, doc.Description, s.now()), markup)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.stage(ctx, StageWrite, pg.write); err != nil {
		return nil, err
	}

	fr := &FileResult{
		File:     filepath.Base(file),
		Output:   outName,
		Dialect:  doc.Dialect.String(),
		Status:   pg.status,
		Warnings: warnings,
		Duration: time.Since(start),
	}
	s.recorder.IncDocumentOutcome(string(fr.Status))
	s.report(ctx, fr)
	return fr, nil
}

// stage times fn and tags a classified failure with the stage name.
func (s *Service) stage(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.recordStage(name, time.Since(start), err, 0)
	if err != nil {
		return tagStage(ctx, name, err)
	}
	return nil
}

func (s *Service) recordStage(name string, d time.Duration, err error, warnings int) {
	s.recorder.ObserveStageDuration(name, d)
	s.recorder.IncStageResult(name, resultLabel(err, warnings))
}

// tagStage records the failing stage in the error context unless an inner
// stage already did.
func tagStage(ctx context.Context, name string, err error) error {
	if ce, ok := errors.AsClassified(err); ok {
		if _, set := ce.Context().GetString("stage"); !set {
			return ce.WithContext("stage", name)
		}
		return ce
	}
	observability.DebugContext(ctx, "Stage failed with an unclassified error", logfields.Stage(name))
	return errors.WrapError(err, errors.CategoryInternal, name+" failed").WithContext("stage", name).Build()
}

func (s *Service) stageLogger(ctx context.Context, stage string) *slog.Logger {
	lc := observability.GetContext(ctx)
	return s.logger.With(logfields.RunID(lc.RunID), logfields.File(lc.File), logfields.Stage(stage))
}

// report logs the outcome of a document. New and changed pages get the
// line that also goes into the run log.
func (s *Service) report(ctx context.Context, fr *FileResult) {
	attrs := []slog.Attr{
		logfields.Output(fr.Output),
		logfields.Dialect(fr.Dialect),
		logfields.Status(string(fr.Status)),
		logfields.Warnings(fr.Warnings),
		logfields.DurationMS(float64(fr.Duration.Microseconds()) / 1000),
	}
	msg := processedLine(*fr)
	level := slog.LevelInfo
	if msg == "" {
		msg = "Page unchanged"
		level = slog.LevelDebug
	}
	s.log(ctx, level, msg, attrs...)

	runID := observability.GetContext(ctx).RunID
	s.emit(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewDocumentProcessed(runID, eventstore.DocumentProcessedData{
			File:       fr.File,
			Output:     fr.Output,
			Dialect:    fr.Dialect,
			Status:     string(fr.Status),
			Warnings:   fr.Warnings,
			DurationMS: fr.Duration.Milliseconds(),
		})
	})
}

func resultLabel(err error, warnings int) metrics.ResultLabel {
	switch {
	case err != nil:
		return metrics.ResultFatal
	case warnings > 0:
		return metrics.ResultWarning
	default:
		return metrics.ResultSuccess
	}
}

// processedLine is the run log line for a page, empty for an unchanged one.
func processedLine(fr FileResult) string {
	switch fr.Status {
	case frontmatterops.StatusNew, frontmatterops.StatusChanged:
		return "Processed the " + string(fr.Status) + " file " + fr.File + "."
	default:
		return ""
	}
}

// writeRunLog writes the new and changed pages as a markdown list. An empty
// path disables the log.
func writeRunLog(path string, files []FileResult) error {
	if path == "" {
		return nil
	}
	var lines []string
	for _, fr := range files {
		if line := processedLine(fr); line != "" {
			lines = append(lines, "- "+line)
		}
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write run log").
			WithContext("path", path).
			Build()
	}
	return nil
}
