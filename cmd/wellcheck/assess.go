package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/wellcheck/internal/answers"
	"github.com/dshills/wellcheck/internal/assessment"
	"github.com/dshills/wellcheck/internal/config"
	"github.com/dshills/wellcheck/internal/history"
	"github.com/dshills/wellcheck/internal/render"
	"github.com/dshills/wellcheck/internal/report"
	"github.com/dshills/wellcheck/internal/scoring"
	"github.com/spf13/cobra"
)

type assessFlags struct {
	format      string
	out         string
	profileName string
	profileFile string
	artifacts   string
	name        string
	failOn      string
	historyDB   string
	logLevel    string
	interactive bool
	verbose     bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newAssessCmd(cfg *config.Config) *cobra.Command {
	f := &assessFlags{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}

	cmd := &cobra.Command{
		Use:   "assess [answers-file]",
		Short: "Score an answer set and produce a report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.logLevel = cfg.LogLevel
			return runAssess(cmd.Context(), args, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.format, "format", "md", "Output format: json, md, or pdf")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	flags.StringVar(&f.profileName, "profile", cfg.Profile, "Built-in profile name")
	flags.StringVar(&f.profileFile, "profile-file", cfg.ProfileFile, "Profile YAML file (overrides --profile)")
	flags.StringVar(&f.artifacts, "artifacts", cfg.Artifacts, "Artifact directory (default: built-in bundle)")
	flags.StringVar(&f.name, "name", "", "Name printed on the report")
	flags.StringVar(&f.failOn, "fail-on", "", "Exit 2 if the risk band meets this level: moderate or high")
	flags.StringVar(&f.historyDB, "history-db", cfg.HistoryDB, "Record the result in this SQLite file")
	flags.BoolVarP(&f.interactive, "interactive", "i", false, "Ask the questions on the terminal")
	flags.BoolVar(&f.verbose, "verbose", false, "Print processing steps to stderr")

	return cmd
}

func runAssess(ctx context.Context, args []string, f *assessFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(f.stderr, f.logLevel, f.verbose)

	format, err := render.ParseFormat(f.format)
	if err != nil {
		return exitError(3, "%v", err)
	}
	var failOn scoring.RiskBand
	if f.failOn != "" {
		if failOn, err = parseFailOn(f.failOn); err != nil {
			return exitError(3, "%v", err)
		}
	}

	// 1. Load profile
	logger.Debug("loading profile", "name", f.profileName, "file", f.profileFile)
	prof, err := loadProfile(f.profileName, f.profileFile)
	if err != nil {
		return exitError(3, "failed to load profile: %v", err)
	}

	// 2. Collect answers
	var set *answers.Set
	switch {
	case f.interactive && len(args) > 0:
		return exitError(3, "an answers file cannot be combined with --interactive")
	case f.interactive:
		set, err = answers.Prompt(f.stdin, f.stderr, prof, f.name == "")
		if err != nil {
			return exitError(3, "failed to read answers: %v", err)
		}
	case len(args) == 1:
		logger.Debug("loading answers", "path", args[0])
		set, err = answers.Load(args[0])
		if err != nil {
			return exitError(3, "failed to load answers: %v", err)
		}
	default:
		return exitError(3, "an answers file or --interactive is required")
	}
	if f.name != "" {
		set.Name = f.name
	}

	// 3. Open history
	opts := []assessment.Option{assessment.WithVersion(version), assessment.WithLogger(logger)}
	if f.historyDB != "" {
		logger.Debug("opening history", "path", f.historyDB)
		h, err := history.Open(f.historyDB)
		if err != nil {
			return exitError(4, "failed to open history: %v", err)
		}
		defer h.Close()
		opts = append(opts, assessment.WithHistory(h))
	}

	// 4. Load artifacts and build the engine
	logger.Debug("loading artifacts", "dir", f.artifacts)
	svc, err := assessment.Load(prof, f.artifacts, opts...)
	if err != nil {
		return exitError(4, "failed to load scoring artifacts: %v", err)
	}

	// 5. Assess
	req := assessment.Request{Answers: set.Answers, Name: set.Name, AnswersHash: set.Hash, Profile: set.Profile}
	if set.FilePath != "" {
		req.AnswersFile = filepath.Base(set.FilePath)
	}
	rep, err := svc.Assess(ctx, req)
	if err != nil {
		return assessExit(err)
	}
	for _, w := range rep.Warnings {
		logger.Warn(w)
	}

	// 6. Output
	if err := writeReport(rep, format, f); err != nil {
		return err
	}

	// 7. Exit code based on --fail-on
	if failOn != "" && report.MeetsThreshold(rep.Result.RiskBand, failOn) {
		return exitError(2, "risk band %s meets fail threshold %s", rep.Result.RiskBand, failOn)
	}
	return nil
}

// createOutput opens the --out file; swapped in tests.
var createOutput = func(name string) (io.WriteCloser, error) { return os.Create(name) }

func writeReport(rep *report.Report, format render.Format, f *assessFlags) (err error) {
	w := f.stdout
	if f.out != "" {
		file, cerr := createOutput(f.out)
		if cerr != nil {
			return fmt.Errorf("failed to create output: %w", cerr)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to write output: %w", cerr)
			}
		}()
		w = file
	}

	switch format {
	case render.FormatJSON:
		data, err := render.JSON(rep)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case render.FormatPDF:
		return render.PDF(w, rep)
	default:
		_, err := io.WriteString(w, render.Markdown(rep))
		return err
	}
}

func assessExit(err error) error {
	var (
		missing *scoring.MissingAnswerError
		cfgErr  *scoring.ConfigurationError
		artErr  *scoring.ArtifactLoadError
	)
	switch {
	case errors.As(err, &missing):
		return exitError(5, "%v", err)
	case errors.As(err, &cfgErr), errors.As(err, &artErr):
		return exitError(4, "%v", err)
	}
	return err
}

func parseFailOn(s string) (scoring.RiskBand, error) {
	band, ok := scoring.ParseRiskBand(s)
	if !ok || band == scoring.BandLow {
		return "", fmt.Errorf("unrecognized --fail-on value %q (valid: %s)", s,
			strings.ToLower(string(scoring.BandModerate)+", "+string(scoring.BandHigh)))
	}
	return band, nil
}
