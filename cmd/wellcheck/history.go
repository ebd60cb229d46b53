package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dshills/wellcheck/internal/config"
	"github.com/dshills/wellcheck/internal/history"
	"github.com/dshills/wellcheck/internal/scoring"
	"github.com/spf13/cobra"
)

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	var (
		historyDB string
		limit     int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent results and per-band counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), os.Stdout, historyDB, limit, asJSON)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&historyDB, "history-db", cfg.HistoryDB, "SQLite history file")
	flags.IntVar(&limit, "limit", history.DefaultLimit, "Number of recent results to show")
	flags.BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

func runHistory(ctx context.Context, w io.Writer, path string, limit int, asJSON bool) error {
	if path == "" {
		return exitError(3, "--history-db or WELLCHECK_HISTORY_DB is required")
	}
	h, err := history.Open(path)
	if err != nil {
		return exitError(4, "failed to open history: %v", err)
	}
	defer h.Close()

	list, err := h.Recent(ctx, limit)
	if err != nil {
		return err
	}
	sum, err := h.Summarize(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Recent  []history.Entry  `json:"recent"`
			Summary *history.Summary `json:"summary"`
		}{list, sum})
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tPROFILE\tINDEX\tBAND\tCLUSTER")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Profile, e.SeverityIndex, e.RiskBand, e.ClusterID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal: %d", sum.Total)
	for _, b := range scoring.Bands() {
		fmt.Fprintf(w, "  %s: %d", b, sum.Bands[b])
	}
	fmt.Fprintln(w)
	return nil
}
