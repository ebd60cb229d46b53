// Package assessment runs one questionnaire through the scoring engine and
// assembles the report. It is shared by the CLI and the HTTP server.
package assessment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dshills/wellcheck/internal/answers"
	"github.com/dshills/wellcheck/internal/artifact"
	"github.com/dshills/wellcheck/internal/content"
	"github.com/dshills/wellcheck/internal/history"
	"github.com/dshills/wellcheck/internal/profile"
	"github.com/dshills/wellcheck/internal/report"
	"github.com/dshills/wellcheck/internal/schema"
	"github.com/dshills/wellcheck/internal/scoring"
	"github.com/google/uuid"
)

// Request is one set of answers to assess.
type Request struct {
	Answers scoring.AnswerSet
	// Name is printed on the report only; it never reaches the engine or history.
	Name        string
	AnswersFile string
	AnswersHash string
	// Profile is the profile the answers were written for, if they say.
	// A mismatch with the service's profile is reported as a warning.
	Profile string
}

// Service assesses answer sets for a single profile.
type Service struct {
	profile *profile.Profile
	engine  *scoring.Engine
	history *history.Store
	logger  *slog.Logger
	version string
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithHistory records every result in h.
func WithHistory(h *history.Store) Option {
	return func(s *Service) { s.history = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithVersion sets the version stamped on reports.
func WithVersion(v string) Option {
	return func(s *Service) { s.version = v }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service for p using eng.
func New(p *profile.Profile, eng *scoring.Engine, opts ...Option) (*Service, error) {
	if p == nil || eng == nil {
		return nil, fmt.Errorf("assessment.New: profile and engine are required")
	}
	if err := content.Check(); err != nil {
		return nil, fmt.Errorf("assessment.New: %w", err)
	}
	s := &Service{
		profile: p,
		engine:  eng,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		version: "dev",
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Load builds a Service from a profile and an artifact directory (empty for
// the built-in bundle).
func Load(p *profile.Profile, artifactsDir string, opts ...Option) (*Service, error) {
	b, err := artifact.ForProfile(p, artifactsDir)
	if err != nil {
		return nil, err
	}
	eng, err := b.Engine(p.Scoring)
	if err != nil {
		return nil, err
	}
	return New(p, eng, opts...)
}

func (s *Service) Profile() *profile.Profile { return s.profile }

// History returns the history store, or nil when history is disabled.
func (s *Service) History() *history.Store { return s.history }

// Assess classifies req.Answers and returns the report. Engine errors
// (*scoring.MissingAnswerError, *scoring.ConfigurationError,
// *scoring.ArtifactLoadError) are returned unwrapped.
func (s *Service) Assess(ctx context.Context, req Request) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.engine.Classify(req.Answers)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.engine.Explain(req.Answers)
	if err != nil {
		return nil, err
	}
	c, ok := content.For(res.RiskBand)
	if !ok {
		return nil, &scoring.ConfigurationError{Field: "content", Reason: "no content for band " + string(res.RiskBand)}
	}

	cfg := s.engine.Config()
	hash := req.AnswersHash
	if hash == "" {
		hash = answers.Hash(req.Answers)
	}
	r := &report.Report{
		Tool:        report.Tool,
		Version:     s.version,
		ID:          uuid.NewString(),
		GeneratedAt: s.now(),
		PreparedFor: strings.TrimSpace(req.Name),
		Profile:     s.profile.Name,
		Input: report.Input{
			AnswersFile: req.AnswersFile,
			AnswersHash: hash,
		},
		Result: report.Result{
			SeverityIndex: res.SeverityIndex,
			MaxIndex:      scoring.MaxIndex(cfg),
			RiskBand:      res.RiskBand,
			ClusterID:     res.ClusterID,
			Thresholds:    cfg.Thresholds,
		},
		Scale:     report.ScaleFor(res.RiskBand),
		Content:   c,
		Breakdown: breakdown,
		Warnings:  s.warnings(req.Profile, req.Answers, breakdown),
	}

	if errs := schema.ValidateReport(r); len(errs) > 0 {
		return nil, fmt.Errorf("assessment.Assess: inconsistent report: %v", errs[0])
	}

	s.logger.Debug("assessed",
		"profile", r.Profile,
		"index", res.SeverityIndex,
		"band", res.RiskBand,
		"cluster", res.ClusterID,
		"warnings", len(r.Warnings))

	if s.history != nil {
		if _, err := s.history.Record(ctx, history.Entry{
			ID:            r.ID,
			Profile:       r.Profile,
			SeverityIndex: res.SeverityIndex,
			RiskBand:      res.RiskBand,
			ClusterID:     res.ClusterID,
			CreatedAt:     r.GeneratedAt,
		}); err != nil {
			s.logger.Warn("history record failed", "error", err)
		}
	}

	return r, nil
}

func (s *Service) warnings(written string, a scoring.AnswerSet, breakdown []scoring.Contribution) []string {
	var out []string
	if written != "" && written != s.profile.Name {
		out = append(out, fmt.Sprintf("profile: answers were written for profile %s, assessed with %s", written, s.profile.Name))
	}
	for _, e := range schema.ValidateAnswers(s.profile, a) {
		switch e.Kind {
		case schema.KindUnknownOption:
			out = append(out, fmt.Sprintf("%s: %s", e.Path, e.Message))
		case schema.KindMissing:
			out = append(out, fmt.Sprintf("%s: not answered", e.Path))
		case schema.KindUnexpected:
			out = append(out, fmt.Sprintf("%s: ignored, %s", e.Path, e.Message))
		}
	}
	for _, c := range breakdown {
		if !c.Known {
			out = append(out, fmt.Sprintf("answers.%s: scored with default weight %d", c.Key, c.Weight))
		}
	}
	return out
}
