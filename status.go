package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/netdisk-go/internal/eventlog"
	"github.com/tonimelisma/netdisk-go/internal/server"
)

const defaultStatusLimit = 20

var flagStatusLimit int

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent token cache events",
		Long: `Show recent token cache diagnostics: hits, misses, corrupt or unreadable
cache files, fetch and persist failures. Requires events_db in gateway.toml.`,
		RunE: runStatus,
	}

	cmd.Flags().IntVar(&flagStatusLimit, "limit", defaultStatusLimit, "number of events to show")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	path := cfgHolder.Config().EventsDBPath(resolver.Dir)
	if path == "" {
		statusf("Diagnostics are disabled. Set events_db = \"default\" in %s.\n", resolver.Path)
		return nil
	}

	events, err := eventlog.Open(cmd.Context(), path, logger)
	if err != nil {
		return fmt.Errorf("opening events database: %w", err)
	}
	defer events.Close()

	return printStatus(cmd.Context(), os.Stdout, events, flagStatusLimit, flagJSON)
}

// statusOutput is the --json form.
type statusOutput struct {
	Counts map[eventlog.Kind]int `json:"counts"`
	Recent []statusEvent         `json:"recent"`
}

type statusEvent struct {
	OccurredAt time.Time     `json:"occurredAt"`
	Kind       eventlog.Kind `json:"kind"`
	CachePath  string        `json:"cachePath"`
	Detail     string        `json:"detail,omitempty"`
}

func printStatus(ctx context.Context, w io.Writer, src server.EventSource, limit int, asJSON bool) error {
	if limit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", limit)
	}

	counts, err := src.Counts(ctx)
	if err != nil {
		return fmt.Errorf("counting events: %w", err)
	}

	recent, err := src.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("reading events: %w", err)
	}

	if asJSON {
		out := statusOutput{Counts: counts, Recent: make([]statusEvent, 0, len(recent))}
		for _, ev := range recent {
			out.Recent = append(out.Recent, statusEvent{
				OccurredAt: ev.OccurredAt,
				Kind:       ev.Kind,
				CachePath:  ev.CachePath,
				Detail:     ev.Detail,
			})
		}

		return printJSON(w, out)
	}

	if len(recent) == 0 {
		fmt.Fprintln(w, "No events recorded.")
		return nil
	}

	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}

	slices.Sort(kinds)

	countRows := make([][]string, 0, len(kinds))
	for _, k := range kinds {
		countRows = append(countRows, []string{k, strconv.Itoa(counts[eventlog.Kind(k)])})
	}

	printTable(w, []string{"KIND", "COUNT"}, countRows)
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(recent))
	for _, ev := range recent {
		rows = append(rows, []string{formatTime(ev.OccurredAt), string(ev.Kind), ev.CachePath, ev.Detail})
	}

	printTable(w, []string{"TIME", "KIND", "CACHE", "DETAIL"}, rows)

	return nil
}
