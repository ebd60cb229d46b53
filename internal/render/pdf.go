package render

import (
	"fmt"
	"io"

	"github.com/dshills/wellcheck/internal/report"
	"github.com/dshills/wellcheck/internal/scoring"
	"github.com/go-pdf/fpdf"
)

type rgb struct{ r, g, b int }

var (
	bandColors = map[scoring.RiskBand]rgb{
		scoring.BandLow:      {0x27, 0xae, 0x60},
		scoring.BandModerate: {0xf3, 0x9c, 0x12},
		scoring.BandHigh:     {0xc0, 0x39, 0x2b},
	}
	mutedColor = rgb{0x7f, 0x8c, 0x8d}
	textColor  = rgb{0x22, 0x22, 0x22}
)

// PDF writes the report as a single-page letter-size document.
func PDF(w io.Writer, r *report.Report) error {
	return buildPDF(r, true).Output(w)
}

func buildPDF(r *report.Report, compress bool) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(compress)
	pdf.SetMargins(48, 48, 48)
	pdf.SetAutoPageBreak(true, 48)
	pdf.SetTitle(report.Title, true)
	pdf.SetCreator(report.Tool+" "+r.Version, true)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetModificationDate(r.GeneratedAt)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	bodyW := pageW - left - right

	setText := func(c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
	heading := func(s string) {
		setText(textColor)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 20, tr(s), "", 1, "L", false, 0, "")
		pdf.Ln(4)
	}
	body := func(s string) {
		setText(textColor)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 15, tr(s), "", "L", false)
	}

	// Title
	setText(textColor)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 30, tr(report.Title), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 14, tr("Date Generated: "+r.GeneratedAt.Format(DateLayout)), "", 1, "L", false, 0, "")
	if r.PreparedFor != "" {
		pdf.CellFormat(0, 14, tr("Prepared For: "+r.PreparedFor), "", 1, "L", false, 0, "")
	}
	pdf.Ln(12)

	// Risk badge
	c, ok := bandColors[r.Result.RiskBand]
	if !ok {
		c = mutedColor
	}
	badgeW := 400.0
	pdf.SetX(left + (bodyW-badgeW)/2)
	pdf.SetFillColor(c.r, c.g, c.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(badgeW, 34, tr(fmt.Sprintf("Risk Level: %s", r.Result.RiskBand)), "", 1, "C", true, 0, "")
	pdf.Ln(12)

	drawScale(pdf, r.Scale, c, left, bodyW)
	setText(mutedColor)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 12, fmt.Sprintf("Severity Index: %d / %d", r.Result.SeverityIndex, r.Result.MaxIndex), "", 1, "C", false, 0, "")
	pdf.Ln(16)

	heading("Clinical Summary")
	body(r.Content.Diagnosis)
	pdf.Ln(12)

	heading("What This Means")
	body(r.Content.Meaning)
	pdf.Ln(12)

	heading("Recommended Activities")
	for _, s := range r.Content.Suggestions {
		body("•  " + s)
	}
	pdf.Ln(20)

	// Footer
	setText(mutedColor)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 11, tr(Footer), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 11, tr(Tagline), "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(0, 11, tr("Disclaimer: "+Disclaimer), "", 1, "L", false, 0, "")

	return pdf
}

// drawScale draws the Low/Moderate/High labels over a row of boxes with the
// band's slot filled.
func drawScale(pdf *fpdf.Fpdf, s report.Scale, c rgb, left, bodyW float64) {
	const box, gap = 14.0, 4.0
	rowW := float64(s.Slots)*box + float64(s.Slots-1)*gap

	pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 14, "Low    Moderate    High", "", 1, "C", false, 0, "")

	x := left + (bodyW-rowW)/2
	y := pdf.GetY() + 2
	pdf.SetDrawColor(mutedColor.r, mutedColor.g, mutedColor.b)
	pdf.SetFillColor(c.r, c.g, c.b)
	for i := 0; i < s.Slots; i++ {
		style := "D"
		if i == s.Position {
			style = "FD"
		}
		pdf.Rect(x+float64(i)*(box+gap), y, box, box, style)
	}
	pdf.SetY(y + box + 4)
}
