// Package render produces Markdown, JSON, and PDF output from a report.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/wellcheck/internal/report"
)

const (
	DateLayout = "02/01/2006, 03:04 PM"
	Disclaimer = "This report is not a medical diagnosis."
	Footer     = "Generated by Mental Health Cluster Insight Tool"
	Tagline    = "Data-informed mental well-being insights"
)

// Format is an output format accepted by the CLI and the server.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
)

// ParseFormat accepts json, md (or markdown), and pdf.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown format: %s", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// JSON renders the report as indented JSON with a trailing newline.
func JSON(r *report.Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render.JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Markdown renders a report as a Markdown document.
func Markdown(r *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", report.Title)
	fmt.Fprintf(&b, "**Date Generated:** %s\n", r.GeneratedAt.Format(DateLayout))
	if r.PreparedFor != "" {
		fmt.Fprintf(&b, "**Prepared For:** %s\n", r.PreparedFor)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Risk Level: %s\n\n", r.Result.RiskBand)
	b.WriteString("```\n")
	b.WriteString("Low  Moderate  High\n")
	b.WriteString(r.Scale.Marker() + "\n")
	b.WriteString("```\n\n")
	fmt.Fprintf(&b, "**Severity Index:** %d / %d\n\n", r.Result.SeverityIndex, r.Result.MaxIndex)

	b.WriteString("## Clinical Summary\n\n")
	fmt.Fprintf(&b, "%s\n\n", r.Content.Diagnosis)

	b.WriteString("## What This Means\n\n")
	fmt.Fprintf(&b, "%s\n\n", r.Content.Meaning)

	b.WriteString("## Recommended Activities\n\n")
	for _, s := range r.Content.Suggestions {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	b.WriteString("\n")

	if len(r.Breakdown) > 0 {
		b.WriteString("## Score Breakdown\n\n")
		b.WriteString("| Question | Answer | Points |\n|---|---|---|\n")
		for _, c := range r.Breakdown {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", c.Key, c.Answer, c.Contribution)
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Notes\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "_%s. %s._\n\n", Footer, Tagline)
	fmt.Fprintf(&b, "**Disclaimer:** %s\n", Disclaimer)

	return b.String()
}
