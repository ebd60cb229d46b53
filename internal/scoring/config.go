package scoring

import "fmt"

const (
	// DefaultUnknownWeight is the severity weight used for an answer value
	// that has no entry in the severity map.
	DefaultUnknownWeight = 1

	// DefaultReweightDims is the number of leading embedding dimensions
	// emphasised before classification. Must match classifier training.
	DefaultReweightDims = 3

	// DefaultReweightFactor multiplies the leading embedding dimensions.
	// Must match classifier training.
	DefaultReweightFactor = 2.0
)

// Thresholds split the severity index into risk bands.
// index >= High is High, index >= Moderate is Moderate, anything lower is Low.
type Thresholds struct {
	High     int `yaml:"high" json:"high"`
	Moderate int `yaml:"moderate" json:"moderate"`
}

// Reweighting scales the first Dims embedding entries by Factor.
type Reweighting struct {
	Dims   int     `yaml:"dims" json:"dims"`
	Factor float64 `yaml:"factor" json:"factor"`
}

// Config is one explicit scoring variant.
type Config struct {
	CoreSymptoms     []string `yaml:"core_symptoms" json:"core_symptoms"`
	FunctionalImpact []string `yaml:"functional_impact" json:"functional_impact,omitempty"`

	// IndexFunctional and EmbedFunctional add the functional impact keys to
	// the severity index and the embedding row respectively.
	IndexFunctional bool `yaml:"index_functional" json:"index_functional"`
	EmbedFunctional bool `yaml:"embed_functional" json:"embed_functional"`

	// Reversed lists keys whose weights run opposite to distress; known
	// values contribute MaxWeight-weight.
	Reversed []string `yaml:"reversed" json:"reversed,omitempty"`

	DefaultWeight int         `yaml:"default_weight" json:"default_weight"`
	MaxWeight     int         `yaml:"max_weight" json:"max_weight"`
	Thresholds    Thresholds  `yaml:"thresholds" json:"thresholds"`
	Reweight      Reweighting `yaml:"reweight" json:"reweight"`
}

// DefaultConfig returns the standard variant.
func DefaultConfig() Config {
	return Config{
		CoreSymptoms: []string{
			"Growing_Stress",
			"Changes_Habits",
			"Mood_Swings",
			"Coping_Struggles",
			"Work_Interest",
			"Social_Weakness",
		},
		Reversed:      []string{"Work_Interest"},
		DefaultWeight: DefaultUnknownWeight,
		MaxWeight:     2,
		Thresholds:    Thresholds{High: 8, Moderate: 4},
		Reweight:      Reweighting{Dims: DefaultReweightDims, Factor: DefaultReweightFactor},
	}
}

// IndexKeys returns the keys summed into the severity index.
func (c Config) IndexKeys() []string {
	keys := append([]string(nil), c.CoreSymptoms...)
	if c.IndexFunctional {
		keys = append(keys, c.FunctionalImpact...)
	}
	return keys
}

// EmbedKeys returns the keys passed to the embedding transform, in order.
func (c Config) EmbedKeys() []string {
	keys := append([]string(nil), c.CoreSymptoms...)
	if c.EmbedFunctional {
		keys = append(keys, c.FunctionalImpact...)
	}
	return keys
}

// RequiredKeys returns the union of index and embedding keys, preserving
// first-seen order.
func (c Config) RequiredKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, k := range append(c.IndexKeys(), c.EmbedKeys()...) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

func (c Config) isReversed(key string) bool {
	for _, k := range c.Reversed {
		if k == key {
			return true
		}
	}
	return false
}

// Validate checks the configuration on its own, without artifacts.
func (c Config) Validate() error {
	if len(c.CoreSymptoms) == 0 {
		return &ConfigurationError{Field: "core_symptoms", Reason: "at least one key required"}
	}
	seen := make(map[string]bool)
	for _, k := range append(append([]string(nil), c.CoreSymptoms...), c.FunctionalImpact...) {
		if k == "" {
			return &ConfigurationError{Field: "core_symptoms", Reason: "empty key"}
		}
		if seen[k] {
			return &ConfigurationError{Field: "core_symptoms", Reason: fmt.Sprintf("duplicate key %q", k)}
		}
		seen[k] = true
	}
	for _, k := range c.Reversed {
		if !seen[k] {
			return &ConfigurationError{Field: "reversed", Reason: fmt.Sprintf("key %q is not scored", k)}
		}
	}
	if c.MaxWeight <= 0 {
		return &ConfigurationError{Field: "max_weight", Reason: "must be positive"}
	}
	if c.DefaultWeight < 0 || c.DefaultWeight > c.MaxWeight {
		return &ConfigurationError{Field: "default_weight", Reason: fmt.Sprintf("%d outside [0, %d]", c.DefaultWeight, c.MaxWeight)}
	}
	if c.Thresholds.Moderate < 0 {
		return &ConfigurationError{Field: "thresholds.moderate", Reason: "must be >= 0"}
	}
	if c.Thresholds.High <= c.Thresholds.Moderate {
		return &ConfigurationError{
			Field:  "thresholds",
			Reason: fmt.Sprintf("high (%d) must be greater than moderate (%d)", c.Thresholds.High, c.Thresholds.Moderate),
		}
	}
	if c.Reweight.Dims < 0 {
		return &ConfigurationError{Field: "reweight.dims", Reason: "must be >= 0"}
	}
	if c.Reweight.Factor <= 0 {
		return &ConfigurationError{Field: "reweight.factor", Reason: "must be positive"}
	}
	return nil
}
