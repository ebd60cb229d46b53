// Package scoring turns questionnaire answers into a severity index, a risk
// band, and a band-specific cluster id.
package scoring

import (
	"fmt"
	"slices"
)

// Embedder is a pre-fitted categorical embedding transform.
// Transform must return a fresh slice of length Dims; entries it cannot
// compute are NaN.
type Embedder interface {
	Features() []string
	Dims() int
	Transform(row []string) ([]float64, error)
}

// Classifier is a pre-fitted model returning a cluster id for a vector.
type Classifier interface {
	Predict(vec []float64) (int, error)
}

// Registry holds one classifier per risk band.
type Registry map[RiskBand]Classifier

// Check reports the first band without a classifier.
func (r Registry) Check() error {
	for _, b := range Bands() {
		if r[b] == nil {
			return &ConfigurationError{Field: "classifiers", Reason: fmt.Sprintf("no classifier for band %s", b)}
		}
	}
	return nil
}

// Result is the engine output for one answer set.
type Result struct {
	SeverityIndex int      `json:"severity_index"`
	RiskBand      RiskBand `json:"risk_band"`
	ClusterID     int      `json:"cluster_id"`
}

// Engine classifies answer sets against a fixed set of loaded artifacts.
// It holds no mutable state and is safe for concurrent use as long as the
// artifacts are not mutated after construction.
type Engine struct {
	cfg      Config
	severity SeverityMap
	embedder Embedder
	registry Registry
}

// New validates the configuration against the artifacts and returns an Engine.
func New(cfg Config, sev SeverityMap, emb Embedder, reg Registry) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkSeverityMap(cfg, sev); err != nil {
		return nil, err
	}
	if emb == nil {
		return nil, &ConfigurationError{Field: "embedding", Reason: "not loaded"}
	}
	if !slices.Equal(emb.Features(), cfg.EmbedKeys()) {
		return nil, &ConfigurationError{
			Field:  "embedding.features",
			Reason: fmt.Sprintf("transform expects %v, configuration embeds %v", emb.Features(), cfg.EmbedKeys()),
		}
	}
	if cfg.Reweight.Dims > emb.Dims() {
		return nil, &ConfigurationError{
			Field:  "reweight.dims",
			Reason: fmt.Sprintf("%d exceeds embedding dims %d", cfg.Reweight.Dims, emb.Dims()),
		}
	}
	if err := reg.Check(); err != nil {
		return nil, err
	}
	return newEngine(cfg, sev, emb, reg), nil
}

// NewUnchecked builds an Engine without load-time validation. Classify still
// checks for a missing embedder and an unregistered band on every call.
func NewUnchecked(cfg Config, sev SeverityMap, emb Embedder, reg Registry) *Engine {
	return newEngine(cfg, sev, emb, reg)
}

func newEngine(cfg Config, sev SeverityMap, emb Embedder, reg Registry) *Engine {
	r := make(Registry, len(reg))
	for b, c := range reg {
		r[b] = c
	}
	s := make(SeverityMap, len(sev))
	for k, v := range sev {
		s[k] = v
	}
	return &Engine{cfg: cfg, severity: s, embedder: emb, registry: r}
}

// Config returns the engine's scoring configuration.
func (e *Engine) Config() Config { return e.cfg }

// Classify computes (severity index, risk band, cluster id) for a.
func (e *Engine) Classify(a AnswerSet) (Result, error) {
	if err := RequireKeys(a, e.cfg.RequiredKeys()); err != nil {
		return Result{}, err
	}

	index, err := ComputeIndex(e.cfg, e.severity, a)
	if err != nil {
		return Result{}, err
	}
	band := AssignBand(index, e.cfg.Thresholds)

	vec, err := e.Vector(a)
	if err != nil {
		return Result{}, err
	}

	clf := e.registry[band]
	if clf == nil {
		return Result{}, &ConfigurationError{Field: "classifiers", Reason: fmt.Sprintf("no classifier for band %s", band)}
	}
	id, err := clf.Predict(vec)
	if err != nil {
		return Result{}, fmt.Errorf("scoring.Classify: band %s: %w", band, err)
	}

	return Result{SeverityIndex: index, RiskBand: band, ClusterID: id}, nil
}

// Vector returns the null-filled, reweighted embedding the classifier sees.
func (e *Engine) Vector(a AnswerSet) ([]float64, error) {
	if e.embedder == nil {
		return nil, &ConfigurationError{Field: "embedding", Reason: "not loaded"}
	}
	keys := e.cfg.EmbedKeys()
	if err := RequireKeys(a, keys); err != nil {
		return nil, err
	}
	row := make([]string, len(keys))
	for i, k := range keys {
		row[i] = a[k]
	}

	raw, err := e.embedder.Transform(row)
	if err != nil {
		return nil, fmt.Errorf("scoring.Vector: transform: %w", err)
	}
	if len(raw) != e.embedder.Dims() {
		return nil, &ArtifactLoadError{
			Artifact: "embedding",
			Err:      fmt.Errorf("transform returned %d dims, want %d", len(raw), e.embedder.Dims()),
		}
	}
	vec := make([]float64, len(raw))
	copy(vec, raw)
	FillMissing(vec)
	return Reweight(vec, e.cfg.Reweight.Dims, e.cfg.Reweight.Factor), nil
}

// Explain returns the per-key severity breakdown for a.
func (e *Engine) Explain(a AnswerSet) ([]Contribution, error) {
	return Contributions(e.cfg, e.severity, a)
}
