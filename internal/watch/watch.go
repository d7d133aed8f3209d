// Package watch reruns a batch when its input directory changes and, optionally,
// on a fixed interval.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
	"git.home.luguber.info/inful/hugoify/internal/logfields"
)

// DefaultDebounce collapses bursts of file events into one run.
const DefaultDebounce = 300 * time.Millisecond

// Triggers passed to the Runner.
const (
	TriggerInitial  = "initial"
	TriggerChange   = "watch"
	TriggerSchedule = "schedule"
)

// Runner executes one batch. Its error is logged; watching continues.
type Runner func(ctx context.Context, trigger string) error

// Options configure a Watcher.
type Options struct {
	Dir      string
	Debounce time.Duration
	// Every schedules a full run at this interval. Zero disables it.
	Every time.Duration
	// InitialRun runs once before waiting for changes.
	InitialRun bool
	// Ext limits the watched files. Defaults to ".xml".
	Ext    string
	Logger *slog.Logger
}

// Watcher serializes runs: a change or a tick during a run queues at most one
// more run.
type Watcher struct {
	opts    Options
	run     Runner
	watcher *fsnotify.Watcher
	sched   gocron.Scheduler
	kick    chan string
}

// New prepares a Watcher on opts.Dir. Call Run to start it.
func New(opts Options, run Runner) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Ext == "" {
		opts.Ext = ".xml"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	if err := fw.Add(opts.Dir); err != nil {
		_ = fw.Close()
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to watch input directory").
			WithContext("path", opts.Dir).
			Build()
	}
	w := &Watcher{opts: opts, run: run, watcher: fw, kick: make(chan string, 1)}

	if opts.Every > 0 {
		if err := w.schedule(); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) schedule() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to create scheduler").Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Every),
		gocron.NewTask(func() { w.trigger(TriggerSchedule) }),
		gocron.WithName("periodic-run"),
	)
	if err != nil {
		_ = s.Shutdown()
		return errors.WrapError(err, errors.CategoryConfig, "failed to schedule periodic run").
			WithContext("every", w.opts.Every.String()).
			Build()
	}
	w.sched = s
	return nil
}

// trigger queues a run unless one is already queued.
func (w *Watcher) trigger(reason string) {
	select {
	case w.kick <- reason:
	default:
	}
}

// Run blocks until ctx is done, then releases the watcher and scheduler.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()
	if w.sched != nil {
		w.sched.Start()
	}
	w.opts.Logger.Info("Watching for changes",
		slog.String("dir", w.opts.Dir),
		slog.Duration("every", w.opts.Every))

	if w.opts.InitialRun {
		w.execute(ctx, TriggerInitial)
	}

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.opts.Logger.Debug("Input change detected",
				logfields.File(filepath.Base(event.Name)),
				slog.String("op", event.Op.String()))
			if debounce == nil {
				debounce = time.NewTimer(w.opts.Debounce)
			} else {
				debounce.Reset(w.opts.Debounce)
			}
			fire = debounce.C
		case <-fire:
			fire = nil
			w.execute(ctx, TriggerChange)
		case reason := <-w.kick:
			w.execute(ctx, reason)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), w.opts.Ext) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func (w *Watcher) execute(ctx context.Context, trigger string) {
	start := time.Now()
	err := w.run(ctx, trigger)
	attrs := []any{
		slog.String("trigger", trigger),
		logfields.DurationMS(float64(time.Since(start).Microseconds()) / 1000),
	}
	if err != nil {
		w.opts.Logger.Error("Run finished with errors", append(attrs, logfields.Error(err))...)
		return
	}
	w.opts.Logger.Info("Run finished", attrs...)
}

func (w *Watcher) close() {
	if w.sched != nil {
		if err := w.sched.Shutdown(); err != nil {
			w.opts.Logger.Warn("Failed to stop scheduler", logfields.Error(err))
		}
	}
	if err := w.watcher.Close(); err != nil {
		w.opts.Logger.Warn("Failed to close file watcher", logfields.Error(err))
	}
}

