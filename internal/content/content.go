// Package content holds the static report text shown for each risk band.
package content

import (
	"fmt"

	"github.com/dshills/wellcheck/internal/scoring"
)

// Content is the text block for one risk band.
type Content struct {
	Diagnosis   string   `json:"diagnosis"`
	Meaning     string   `json:"meaning"`
	Suggestions []string `json:"suggestions"`
}

var table = map[scoring.RiskBand]Content{
	scoring.BandLow: {
		Diagnosis: "Your responses suggest stable emotional well-being with healthy coping patterns.",
		Meaning: "This suggests that current stressors are being managed effectively and " +
			"no immediate intervention is indicated.",
		Suggestions: []string{
			"Maintain consistent sleep and daily routines.",
			"Continue activities that help you relax or feel fulfilled.",
			"Stay socially connected with trusted people.",
			"Practice occasional self-reflection or journaling.",
			"Maintain healthy work–life boundaries.",
			"Respond early when stress levels increase.",
		},
	},
	scoring.BandModerate: {
		Diagnosis: "Your responses indicate ongoing stress that may be affecting balance and daily functioning.",
		Meaning: "This suggests rising emotional strain that may begin to interfere with daily " +
			"functioning if left unaddressed.",
		Suggestions: []string{
			"Break daily tasks into smaller, manageable steps.",
			"Schedule intentional rest or recovery time.",
			"Reduce non-essential commitments temporarily.",
			"Engage in light physical activity such as walking.",
			"Practice breathing or grounding exercises.",
			"Talk openly with a trusted person.",
			"Rebuild consistent sleep and meal routines.",
		},
	},
	scoring.BandHigh: {
		Diagnosis: "Your responses reflect significant emotional strain that may be overwhelming your current coping capacity.",
		Meaning: "This suggests significant emotional distress where additional support or " +
			"professional guidance may be beneficial.",
		Suggestions: []string{
			"Prioritize rest and reduce mental overload.",
			"Seek support instead of coping alone.",
			"Use grounding techniques like slow breathing.",
			"Avoid major decisions while overwhelmed.",
			"Create predictable daily routines.",
			"Limit unnecessary stress exposure.",
			"Consider professional mental health support.",
			"Spend time in calming environments.",
		},
	},
}

// For returns a copy of the content for band.
func For(band scoring.RiskBand) (Content, bool) {
	c, ok := table[band]
	if !ok {
		return Content{}, false
	}
	c.Suggestions = append([]string(nil), c.Suggestions...)
	return c, true
}

// Check reports the first band with missing or empty content.
func Check() error {
	for _, b := range scoring.Bands() {
		c, ok := table[b]
		if !ok {
			return fmt.Errorf("content: no entry for band %s", b)
		}
		if c.Diagnosis == "" || c.Meaning == "" || len(c.Suggestions) == 0 {
			return fmt.Errorf("content: incomplete entry for band %s", b)
		}
	}
	return nil
}
