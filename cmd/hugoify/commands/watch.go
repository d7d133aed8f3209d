package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/hugoify/internal/logfields"
	"git.home.luguber.info/inful/hugoify/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	RunFlags `embed:""`
	Debounce time.Duration `help:"Quiet period after a change before rebuilding" default:"300ms"`
	Every    time.Duration `help:"Also rebuild on this interval (0 disables)" default:"0s"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.Load(g)
	if err != nil {
		return err
	}
	if err := w.apply(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.InputDir, 0o755); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := openSession(ctx, cfg, g.Logger)
	if err != nil {
		return err
	}
	defer s.Close()

	runner := func(ctx context.Context, trigger string) error {
		res, err := s.run(ctx, trigger)
		if res != nil && s.history != nil {
			if summary, ok := s.history.Run(res.RunID); ok {
				g.Logger.Info("Run recorded",
					logfields.RunID(summary.RunID),
					logfields.Status(summary.Status),
					logfields.Warnings(summary.Warnings))
			}
		}
		return err
	}
	watcher, err := watch.New(watch.Options{
		Dir:        cfg.InputDir,
		Debounce:   w.Debounce,
		Every:      w.Every,
		InitialRun: true,
		Logger:     g.Logger,
	}, runner)
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}
