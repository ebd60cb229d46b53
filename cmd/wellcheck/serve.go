package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/wellcheck/internal/assessment"
	"github.com/dshills/wellcheck/internal/config"
	"github.com/dshills/wellcheck/internal/history"
	"github.com/dshills/wellcheck/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var (
		profileName string
		profileFile string
		artifacts   string
		historyDB   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the questionnaire and assessments over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, profileName, profileFile, artifacts, historyDB)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "Listen address")
	flags.StringVar(&profileName, "profile", cfg.Profile, "Built-in profile name")
	flags.StringVar(&profileFile, "profile-file", cfg.ProfileFile, "Profile YAML file (overrides --profile)")
	flags.StringVar(&artifacts, "artifacts", cfg.Artifacts, "Artifact directory (default: built-in bundle)")
	flags.StringVar(&historyDB, "history-db", cfg.HistoryDB, "Record results in this SQLite file")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, profileName, profileFile, artifacts, historyDB string) error {
	logger := newLogger(os.Stderr, cfg.LogLevel, false).WithGroup("server")

	prof, err := loadProfile(profileName, profileFile)
	if err != nil {
		return exitError(3, "failed to load profile: %v", err)
	}

	opts := []assessment.Option{assessment.WithVersion(version), assessment.WithLogger(logger)}
	if historyDB != "" {
		h, err := history.Open(historyDB)
		if err != nil {
			return exitError(4, "failed to open history: %v", err)
		}
		defer h.Close()
		opts = append(opts, assessment.WithHistory(h))
	}

	svc, err := assessment.Load(prof, artifacts, opts...)
	if err != nil {
		return exitError(4, "failed to load scoring artifacts: %v", err)
	}
	logger.Info("ready", "profile", prof.Name, "history", historyDB != "")

	router := server.NewRouter(svc, server.Options{Logger: logger, AllowedOrigins: cfg.Server.CORSOrigins})
	return server.Serve(ctx, cfg.Server.Addr, router, cfg.Server.ShutdownTimeout, logger)
}
