package artifact

import (
	"fmt"
	"io/fs"

	"github.com/dshills/wellcheck/internal/scoring"
	"github.com/pkg/errors"
)

type bandModel struct {
	Centroids [][]float64 `yaml:"centroids"`
	Labels    []int       `yaml:"labels"`
}

type classifiersFile struct {
	Bands map[string]bandModel `yaml:"bands"`
}

// NearestCentroid assigns the label of the closest centroid by squared
// Euclidean distance; the first centroid wins ties. It is read-only after load.
type NearestCentroid struct {
	centroids [][]float64
	labels    []int
}

// NewNearestCentroid builds a classifier. labels may be nil, in which case the
// centroid index is the label.
func NewNearestCentroid(centroids [][]float64, labels []int) (*NearestCentroid, error) {
	if len(centroids) == 0 {
		return nil, errors.New("no centroids")
	}
	dims := len(centroids[0])
	if dims == 0 {
		return nil, errors.New("empty centroid")
	}
	c := &NearestCentroid{centroids: make([][]float64, len(centroids))}
	for i, v := range centroids {
		if len(v) != dims {
			return nil, errors.Errorf("centroid %d has %d dims, want %d", i, len(v), dims)
		}
		c.centroids[i] = append([]float64(nil), v...)
	}
	if labels == nil {
		labels = make([]int, len(centroids))
		for i := range labels {
			labels[i] = i
		}
	}
	if len(labels) != len(centroids) {
		return nil, errors.Errorf("%d labels for %d centroids", len(labels), len(centroids))
	}
	for _, l := range labels {
		if l < 0 {
			return nil, errors.Errorf("negative label %d", l)
		}
	}
	c.labels = append([]int(nil), labels...)
	return c, nil
}

// Dims returns the centroid dimensionality.
func (c *NearestCentroid) Dims() int { return len(c.centroids[0]) }

// Predict returns the label of the nearest centroid.
func (c *NearestCentroid) Predict(vec []float64) (int, error) {
	if len(vec) != c.Dims() {
		return 0, fmt.Errorf("vector has %d dims, classifier expects %d", len(vec), c.Dims())
	}
	best, bestDist := 0, -1.0
	for i, cen := range c.centroids {
		var d float64
		for j := range cen {
			diff := vec[j] - cen[j]
			d += diff * diff
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return c.labels[best], nil
}

// LoadClassifiers reads the per-band classifier registry. Completeness of the
// registry is checked when the engine is built.
func LoadClassifiers(fsys fs.FS, name string) (scoring.Registry, error) {
	var f classifiersFile
	if err := readYAML(fsys, name, "classifiers", &f); err != nil {
		return nil, err
	}
	reg := make(scoring.Registry, len(f.Bands))
	for bandName, m := range f.Bands {
		band, ok := scoring.ParseRiskBand(bandName)
		if !ok {
			return nil, &scoring.ArtifactLoadError{Artifact: "classifiers", Path: name, Err: errors.Errorf("unknown band %q", bandName)}
		}
		c, err := NewNearestCentroid(m.Centroids, m.Labels)
		if err != nil {
			return nil, &scoring.ArtifactLoadError{Artifact: "classifiers", Path: name, Err: errors.Wrapf(err, "band %s", band)}
		}
		reg[band] = c
	}
	return reg, nil
}
