// Package profile handles loading and formatting built-in questionnaire profiles.
package profile

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dshills/wellcheck/internal/scoring"
	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// DefaultName is the profile used when none is selected.
const DefaultName = "standard"

// Profile is one explicit configuration variant: the questionnaire, the
// scoring rules, and the artifact files fitted for them.
type Profile struct {
	Name        string         `yaml:"name" json:"name"`
	Version     int            `yaml:"version" json:"version"`
	Description string         `yaml:"description" json:"description,omitempty"`
	Questions   []Question     `yaml:"questions" json:"questions"`
	Scoring     scoring.Config `yaml:"scoring" json:"scoring"`
	Artifacts   ArtifactFiles  `yaml:"artifacts" json:"artifacts"`
}

// Question is a single categorical question.
type Question struct {
	Key     string   `yaml:"key" json:"key"`
	Prompt  string   `yaml:"prompt" json:"prompt"`
	Options []string `yaml:"options" json:"options"`
}

// ArtifactFiles names the artifact files relative to the bundle directory.
type ArtifactFiles struct {
	SeverityMap string `yaml:"severity_map" json:"severity_map"`
	Embedding   string `yaml:"embedding" json:"embedding"`
	Classifiers string `yaml:"classifiers" json:"classifiers"`
}

// LoadBuiltin loads a built-in profile by name.
func LoadBuiltin(name string) (*Profile, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("profile.LoadBuiltin: unknown profile %q: %w", name, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile.LoadBuiltin: %q: %w", name, err)
	}
	return p, nil
}

// Load reads a profile from a YAML file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile.Load: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile.Load: %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a profile.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	p.Artifacts.fillDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *ArtifactFiles) fillDefaults() {
	if a.SeverityMap == "" {
		a.SeverityMap = "severity_map.yaml"
	}
	if a.Embedding == "" {
		a.Embedding = "embedding.yaml"
	}
	if a.Classifiers == "" {
		a.Classifiers = "classifiers.yaml"
	}
}

// Validate checks the questionnaire and that every scored key is a question.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return &scoring.ConfigurationError{Field: "name", Reason: "required"}
	}
	if len(p.Questions) == 0 {
		return &scoring.ConfigurationError{Field: "questions", Reason: "at least one question required"}
	}
	seen := make(map[string]bool)
	for i, q := range p.Questions {
		field := fmt.Sprintf("questions[%d]", i)
		if q.Key == "" {
			return &scoring.ConfigurationError{Field: field + ".key", Reason: "required"}
		}
		if seen[q.Key] {
			return &scoring.ConfigurationError{Field: field + ".key", Reason: fmt.Sprintf("duplicate %q", q.Key)}
		}
		seen[q.Key] = true
		if len(q.Options) == 0 {
			return &scoring.ConfigurationError{Field: field + ".options", Reason: "at least one option required"}
		}
	}
	if err := p.Scoring.Validate(); err != nil {
		return err
	}
	for _, k := range p.Scoring.RequiredKeys() {
		if !seen[k] {
			return &scoring.ConfigurationError{Field: "scoring", Reason: fmt.Sprintf("key %q is not a question", k)}
		}
	}
	return nil
}

// Question returns the question with the given key.
func (p *Profile) Question(key string) (Question, bool) {
	for _, q := range p.Questions {
		if q.Key == key {
			return q, true
		}
	}
	return Question{}, false
}

// Keys returns the question keys in questionnaire order.
func (p *Profile) Keys() []string {
	keys := make([]string, len(p.Questions))
	for i, q := range p.Questions {
		keys[i] = q.Key
	}
	return keys
}

// HasOption reports whether value is one of the question's options.
func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}
	return false
}

// List returns the names of all available built-in profiles.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ".yaml") {
			names = append(names, strings.TrimSuffix(n, ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// FormatQuestions renders the questionnaire as plain text.
func FormatQuestions(p *Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Profile: %s (v%d)\n\n", p.Name, p.Version)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(p.Description))
	}

	for i, q := range p.Questions {
		fmt.Fprintf(&b, "%d. %s [%s]\n", i+1, q.Prompt, q.Key)
		for j, o := range q.Options {
			fmt.Fprintf(&b, "   %d) %s\n", j+1, o)
		}
		b.WriteString("\n")
	}

	s := p.Scoring
	b.WriteString("### Scoring\n\n")
	fmt.Fprintf(&b, "- index keys: %s\n", strings.Join(s.IndexKeys(), ", "))
	if len(s.Reversed) > 0 {
		fmt.Fprintf(&b, "- reversed: %s\n", strings.Join(s.Reversed, ", "))
	}
	fmt.Fprintf(&b, "- unknown answer weight: %d\n", s.DefaultWeight)
	fmt.Fprintf(&b, "- bands: High >= %d, Moderate >= %d, otherwise Low\n", s.Thresholds.High, s.Thresholds.Moderate)
	return b.String()
}
