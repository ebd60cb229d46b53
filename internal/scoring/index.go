package scoring

import "fmt"

// SeverityMap maps an answer option to its severity weight.
type SeverityMap map[string]int

// Weight looks up value, reporting whether it was found.
func (m SeverityMap) Weight(value string) (int, bool) {
	w, ok := m[value]
	return w, ok
}

// AnswerSet maps question keys to the selected option.
type AnswerSet map[string]string

// Contribution records how one answer fed the severity index.
type Contribution struct {
	Key          string `json:"key"`
	Answer       string `json:"answer"`
	Weight       int    `json:"weight"`
	Contribution int    `json:"contribution"`
	Known        bool   `json:"known"`
	Reversed     bool   `json:"reversed,omitempty"`
}

// RequireKeys returns a MissingAnswerError for the first key absent from a.
func RequireKeys(a AnswerSet, keys []string) error {
	for _, k := range keys {
		if _, ok := a[k]; !ok {
			return &MissingAnswerError{Key: k}
		}
	}
	return nil
}

// Contributions computes the per-key breakdown of the severity index.
// Values missing from sev fall back to cfg.DefaultWeight, which is never
// reversed.
func Contributions(cfg Config, sev SeverityMap, a AnswerSet) ([]Contribution, error) {
	keys := cfg.IndexKeys()
	if err := RequireKeys(a, keys); err != nil {
		return nil, err
	}
	out := make([]Contribution, 0, len(keys))
	for _, k := range keys {
		v := a[k]
		w, known := sev.Weight(v)
		if !known {
			w = cfg.DefaultWeight
		}
		c := Contribution{Key: k, Answer: v, Weight: w, Contribution: w, Known: known}
		if known && cfg.isReversed(k) {
			c.Reversed = true
			c.Contribution = cfg.MaxWeight - w
		}
		out = append(out, c)
	}
	return out, nil
}

// ComputeIndex sums the severity contributions over the index keys.
func ComputeIndex(cfg Config, sev SeverityMap, a AnswerSet) (int, error) {
	cs, err := Contributions(cfg, sev, a)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range cs {
		total += c.Contribution
	}
	return total, nil
}

// MaxIndex is the largest index the configuration can produce.
func MaxIndex(cfg Config) int {
	return len(cfg.IndexKeys()) * cfg.MaxWeight
}

func checkSeverityMap(cfg Config, sev SeverityMap) error {
	if sev == nil {
		return &ConfigurationError{Field: "severity_map", Reason: "not loaded"}
	}
	for v, w := range sev {
		if w < 0 || w > cfg.MaxWeight {
			return &ConfigurationError{
				Field:  "severity_map",
				Reason: fmt.Sprintf("weight %d for %q outside [0, %d]", w, v, cfg.MaxWeight),
			}
		}
	}
	return nil
}
