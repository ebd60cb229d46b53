// Package schema validates answer sets against a questionnaire and reports
// for internal consistency.
package schema

import (
	"fmt"
	"sort"

	"github.com/dshills/wellcheck/internal/content"
	"github.com/dshills/wellcheck/internal/profile"
	"github.com/dshills/wellcheck/internal/report"
	"github.com/dshills/wellcheck/internal/scoring"
)

// Kind classifies an answer set problem.
type Kind string

const (
	KindMissing       Kind = "missing"
	KindUnknownOption Kind = "unknown_option"
	KindUnexpected    Kind = "unexpected"
)

// ValidationError describes a single schema violation.
type ValidationError struct {
	Path    string
	Kind    Kind
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// ValidateAnswers checks a against the questionnaire of p. Questions are
// checked in profile order, then unexpected keys in sorted order.
func ValidateAnswers(p *profile.Profile, a scoring.AnswerSet) []ValidationError {
	var errs []ValidationError
	for _, q := range p.Questions {
		path := "answers." + q.Key
		v, ok := a[q.Key]
		if !ok {
			errs = append(errs, ValidationError{path, KindMissing, "required"})
			continue
		}
		if !q.HasOption(v) {
			errs = append(errs, ValidationError{path, KindUnknownOption, fmt.Sprintf("unknown option %q", v)})
		}
	}

	var extra []string
	for k := range a {
		if _, ok := p.Question(k); !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		errs = append(errs, ValidationError{"answers." + k, KindUnexpected, "not a question in profile " + p.Name})
	}
	return errs
}

// ValidateReport checks a report for structural validity and for agreement
// between its index, band, scale, and content.
func ValidateReport(r *report.Report) []ValidationError {
	var errs []ValidationError

	if r.Tool == "" {
		errs = append(errs, ValidationError{Path: "tool", Message: "required"})
	}
	if r.Version == "" {
		errs = append(errs, ValidationError{Path: "version", Message: "required"})
	}
	if r.ID == "" {
		errs = append(errs, ValidationError{Path: "id", Message: "required"})
	}

	res := r.Result
	if !res.RiskBand.Valid() {
		errs = append(errs, ValidationError{Path: "result.risk_band", Message: fmt.Sprintf("invalid band: %q", res.RiskBand)})
		return errs
	}
	if res.SeverityIndex < 0 || res.SeverityIndex > res.MaxIndex {
		errs = append(errs, ValidationError{Path: "result.severity_index", Message: fmt.Sprintf("%d outside [0, %d]", res.SeverityIndex, res.MaxIndex)})
	}
	if want := scoring.AssignBand(res.SeverityIndex, res.Thresholds); want != res.RiskBand {
		errs = append(errs, ValidationError{Path: "result.risk_band", Message: fmt.Sprintf("band %s does not match index %d (expected %s)", res.RiskBand, res.SeverityIndex, want)})
	}
	if res.ClusterID < 0 {
		errs = append(errs, ValidationError{Path: "result.cluster_id", Message: "must be >= 0"})
	}
	if want := report.ScaleFor(res.RiskBand); r.Scale != want {
		errs = append(errs, ValidationError{Path: "scale", Message: fmt.Sprintf("expected position %d of %d", want.Position, want.Slots)})
	}

	if want, ok := content.For(res.RiskBand); ok && r.Content.Diagnosis != want.Diagnosis {
		errs = append(errs, ValidationError{Path: "content.diagnosis", Message: "does not match band " + string(res.RiskBand)})
	}

	if len(r.Breakdown) > 0 {
		sum := 0
		for _, c := range r.Breakdown {
			sum += c.Contribution
		}
		if sum != res.SeverityIndex {
			errs = append(errs, ValidationError{Path: "breakdown", Message: fmt.Sprintf("contributions sum to %d, index is %d", sum, res.SeverityIndex)})
		}
	}

	return errs
}
