package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/hugoify/internal/eventstore"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	HistoryDB string `name:"history-db" help:"SQLite database recording run history" type:"path"`
	Limit     int    `short:"n" help:"Number of runs to show" default:"20"`
	JSON      bool   `help:"Print runs as JSON"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.Load(g)
	if err != nil {
		return err
	}
	if h.HistoryDB != "" {
		cfg.HistoryDB = h.HistoryDB
	}
	if cfg.HistoryDB == "" {
		return errors.ConfigError("no history database configured (set history_db or --history-db)").Build()
	}

	store, err := eventstore.NewSQLiteStore(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	projection := eventstore.NewRunHistoryProjection(store, h.Limit)
	if err := projection.Rebuild(context.Background()); err != nil {
		return err
	}
	runs := projection.History()

	if h.JSON {
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(g.Out, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tDURATION\tFILES\tOUTCOMES\tWARNINGS")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%d\n",
			shortID(r.RunID), r.StartedAt.Format(time.DateTime), r.Status,
			r.Duration.Round(time.Millisecond), r.FileCount, outcomes(r), r.Warnings)
		for _, f := range r.Failures {
			_, _ = fmt.Fprintf(tw, "\t\t  failed: %s\t%s\t\t\t\n", f.File, f.Category)
		}
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func outcomes(r eventstore.RunSummary) string {
	if len(r.Counts) == 0 && len(r.Failures) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(r.Counts)+1)
	for _, k := range slices.Sorted(maps.Keys(r.Counts)) {
		parts = append(parts, fmt.Sprintf("%s=%d", strings.ToLower(k), r.Counts[k]))
	}
	if len(r.Failures) > 0 {
		parts = append(parts, fmt.Sprintf("failed=%d", len(r.Failures)))
	}
	return strings.Join(parts, " ")
}
