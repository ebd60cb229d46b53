package artifact

import (
	"fmt"
	"io/fs"
	"math"

	"github.com/dshills/wellcheck/internal/scoring"
	"github.com/pkg/errors"
)

type embeddingFile struct {
	Features   []string                        `yaml:"features"`
	Dims       int                             `yaml:"dims"`
	Categories map[string]map[string][]float64 `yaml:"categories"`
}

// CategoricalEmbedding projects a row of categorical answers onto fitted
// category coordinates. The row vector is the mean of the coordinates of the
// selected categories. It is read-only after load.
type CategoricalEmbedding struct {
	features []string
	dims     int
	coords   []map[string][]float64
}

// NewCategoricalEmbedding builds a transform from per-feature category
// coordinates. Every coordinate vector must have length dims.
func NewCategoricalEmbedding(features []string, dims int, categories map[string]map[string][]float64) (*CategoricalEmbedding, error) {
	if len(features) == 0 {
		return nil, errors.New("no features")
	}
	if dims <= 0 {
		return nil, errors.Errorf("dims must be positive, got %d", dims)
	}
	e := &CategoricalEmbedding{
		features: append([]string(nil), features...),
		dims:     dims,
		coords:   make([]map[string][]float64, len(features)),
	}
	for i, f := range features {
		cats, ok := categories[f]
		if !ok || len(cats) == 0 {
			return nil, errors.Errorf("no categories for feature %q", f)
		}
		m := make(map[string][]float64, len(cats))
		for c, v := range cats {
			if len(v) != dims {
				return nil, errors.Errorf("feature %q category %q has %d dims, want %d", f, c, len(v), dims)
			}
			m[c] = append([]float64(nil), v...)
		}
		e.coords[i] = m
	}
	return e, nil
}

// LoadEmbedding reads a fitted categorical embedding.
func LoadEmbedding(fsys fs.FS, name string) (*CategoricalEmbedding, error) {
	var f embeddingFile
	if err := readYAML(fsys, name, "embedding", &f); err != nil {
		return nil, err
	}
	e, err := NewCategoricalEmbedding(f.Features, f.Dims, f.Categories)
	if err != nil {
		return nil, &scoring.ArtifactLoadError{Artifact: "embedding", Path: name, Err: err}
	}
	return e, nil
}

func (e *CategoricalEmbedding) Features() []string {
	return append([]string(nil), e.features...)
}

func (e *CategoricalEmbedding) Dims() int { return e.dims }

// Transform returns the row coordinates: the mean of the coordinates of the
// row's known categories. Categories the transform was not fitted on are
// left out of the mean. A row with no known category cannot be placed, and
// every entry of the result is NaN.
func (e *CategoricalEmbedding) Transform(row []string) ([]float64, error) {
	if len(row) != len(e.features) {
		return nil, fmt.Errorf("row has %d values, transform expects %d", len(row), len(e.features))
	}
	out := make([]float64, e.dims)
	known := 0
	for i, v := range row {
		c, ok := e.coords[i][v]
		if !ok {
			continue
		}
		known++
		for d := range out {
			out[d] += c[d]
		}
	}
	if known == 0 {
		for d := range out {
			out[d] = math.NaN()
		}
		return out, nil
	}
	n := float64(known)
	for d := range out {
		out[d] /= n
	}
	return out, nil
}
