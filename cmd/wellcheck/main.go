package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dshills/wellcheck/internal/config"
	"github.com/dshills/wellcheck/internal/logging"
	"github.com/dshills/wellcheck/internal/profile"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "wellcheck",
		Short:         "Score well-being questionnaires into a risk band and cluster",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, or error")

	root.AddCommand(
		newAssessCmd(cfg),
		newQuestionsCmd(cfg),
		newProfilesCmd(),
		newServeCmd(cfg),
		newHistoryCmd(cfg),
	)

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	lev := logging.ParseLogLevel(level)
	if verbose {
		lev = slog.LevelDebug
	}
	return slog.New(logging.NewCLIHandler(w, lev))
}

// loadProfile prefers a profile file over a built-in name.
func loadProfile(name, file string) (*profile.Profile, error) {
	if file != "" {
		return profile.Load(file)
	}
	return profile.LoadBuiltin(name)
}
