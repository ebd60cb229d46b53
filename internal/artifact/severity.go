package artifact

import (
	"io/fs"

	"github.com/dshills/wellcheck/internal/scoring"
	"github.com/pkg/errors"
)

type severityFile struct {
	Weights map[string]int `yaml:"weights"`
}

// LoadSeverityMap reads an option → weight table.
func LoadSeverityMap(fsys fs.FS, name string) (scoring.SeverityMap, error) {
	var f severityFile
	if err := readYAML(fsys, name, "severity_map", &f); err != nil {
		return nil, err
	}
	if len(f.Weights) == 0 {
		return nil, &scoring.ArtifactLoadError{Artifact: "severity_map", Path: name, Err: errors.New("no weights")}
	}
	m := make(scoring.SeverityMap, len(f.Weights))
	for opt, w := range f.Weights {
		if w < 0 {
			return nil, &scoring.ArtifactLoadError{
				Artifact: "severity_map",
				Path:     name,
				Err:      errors.Errorf("negative weight %d for %q", w, opt),
			}
		}
		m[opt] = w
	}
	return m, nil
}
