// Package artifact loads the pre-fitted scoring artifacts: the severity map,
// the categorical embedding transform, and the per-band classifier registry.
//
// Artifacts are YAML files. Built-in bundles are embedded per profile under
// builtin/<profile>/; a directory bundle can be loaded from disk instead.
package artifact

import (
	"embed"
	"io/fs"
	"os"
	"path"

	"github.com/dshills/wellcheck/internal/profile"
	"github.com/dshills/wellcheck/internal/scoring"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

//go:embed builtin
var builtinFS embed.FS

// Bundle is the full set of loaded artifacts for one profile.
type Bundle struct {
	Source      string
	Severity    scoring.SeverityMap
	Embedding   *CategoricalEmbedding
	Classifiers scoring.Registry
}

// LoadBuiltin loads the embedded bundle fitted for the named profile.
func LoadBuiltin(profileName string, files profile.ArtifactFiles) (*Bundle, error) {
	b, err := Load(builtinFS, path.Join("builtin", profileName), files)
	if err != nil {
		return nil, err
	}
	b.Source = "builtin:" + profileName
	return b, nil
}

// LoadDir loads a bundle from a directory on disk.
func LoadDir(dir string, files profile.ArtifactFiles) (*Bundle, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, &scoring.ArtifactLoadError{Artifact: "bundle", Path: dir, Err: errors.Wrap(err, "bundle directory")}
	}
	b, err := Load(os.DirFS(dir), ".", files)
	if err != nil {
		return nil, err
	}
	b.Source = dir
	return b, nil
}

// ForProfile loads the artifacts for p from dir, or the built-in bundle when
// dir is empty.
func ForProfile(p *profile.Profile, dir string) (*Bundle, error) {
	if dir == "" {
		return LoadBuiltin(p.Name, p.Artifacts)
	}
	return LoadDir(dir, p.Artifacts)
}

// Load reads the three artifacts from fsys concurrently and checks that their
// shapes agree. Any failure is returned as *scoring.ArtifactLoadError.
func Load(fsys fs.FS, dir string, files profile.ArtifactFiles) (*Bundle, error) {
	var (
		b Bundle
		g errgroup.Group
	)
	g.Go(func() error {
		sev, err := LoadSeverityMap(fsys, path.Join(dir, files.SeverityMap))
		b.Severity = sev
		return err
	})
	g.Go(func() error {
		emb, err := LoadEmbedding(fsys, path.Join(dir, files.Embedding))
		b.Embedding = emb
		return err
	})
	g.Go(func() error {
		reg, err := LoadClassifiers(fsys, path.Join(dir, files.Classifiers))
		b.Classifiers = reg
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for band, c := range b.Classifiers {
		nc, ok := c.(*NearestCentroid)
		if !ok {
			continue
		}
		if nc.Dims() != b.Embedding.Dims() {
			return nil, &scoring.ArtifactLoadError{
				Artifact: "classifiers",
				Path:     path.Join(dir, files.Classifiers),
				Err:      errors.Errorf("band %s centroids have %d dims, embedding has %d", band, nc.Dims(), b.Embedding.Dims()),
			}
		}
	}
	return &b, nil
}

// Engine builds a scoring engine from the bundle.
func (b *Bundle) Engine(cfg scoring.Config) (*scoring.Engine, error) {
	return scoring.New(cfg, b.Severity, b.Embedding, b.Classifiers)
}

func readYAML(fsys fs.FS, name, artifact string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return &scoring.ArtifactLoadError{Artifact: artifact, Path: name, Err: errors.Wrap(err, "read")}
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return &scoring.ArtifactLoadError{Artifact: artifact, Path: name, Err: errors.Wrap(err, "parse")}
	}
	return nil
}
