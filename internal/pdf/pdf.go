// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdf lays out an export document as an A4 PDF.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/healthdash/pkg/types"
)

// Page geometry in millimetres.
const (
	Margin     = 15.0
	lineHeight = 5.5
)

// Exporter renders export documents. It holds no per-document state and
// may be shared.
type Exporter struct {
	cfg      types.ExportConfig
	compress bool
}

// NewExporter creates an exporter.
func NewExporter(cfg types.ExportConfig) *Exporter {
	return &Exporter{cfg: cfg, compress: true}
}

// layout carries the fpdf document and its cp1252 translator through one
// render.
type layout struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	w   float64 // content width
}

// Render writes doc to w. Nothing is written when layout fails.
func (e *Exporter) Render(doc types.ExportDocument, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(true, Margin+5)
	pdf.AliasNbPages("{nb}")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(e.cfg.Author, true)
	pdf.SetCreator("healthdash", true)
	pdf.SetCreationDate(time.Now().UTC())

	pdf.SetFooterFunc(func() {
		pdf.SetY(-Margin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(107, 114, 128)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pageW, _ := pdf.GetPageSize()
	l := &layout{pdf: pdf, tr: tr, w: pageW - 2*Margin}
	pdf.AddPage()

	for i, b := range doc.Blocks {
		switch b := b.(type) {
		case types.HeaderBlock:
			l.header(b)
		case types.SummaryBlock:
			l.summary(b)
		case types.ChartBlock:
			l.chart(i, b.Chart)
		case types.SectionBlock:
			l.section(b.Section)
		case types.RecommendationsBlock:
			l.recommendations(b.Rows)
		case types.DefinitionsBlock:
			l.definitions(b.Entries)
		case types.ConclusionsBlock:
			l.conclusions(b.Conclusions)
		case types.MethodologyBlock:
			l.methodology(b)
		case types.FooterBlock:
			l.footer(b.Text)
		default:
			return fmt.Errorf("laying out block %d: unsupported kind %s", i, b.Kind())
		}
		if pdf.Err() {
			return fmt.Errorf("laying out block %d (%s): %w", i, b.Kind(), pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("encoding pdf: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func (l *layout) heading(text string, size float64) {
	l.pdf.Ln(2)
	l.pdf.SetFont("Helvetica", "B", size)
	l.pdf.SetTextColor(17, 24, 39)
	l.pdf.MultiCell(l.w, size*0.5, l.tr(text), "", "L", false)
	l.pdf.Ln(1.5)
}

func (l *layout) paragraph(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	l.pdf.SetFont("Helvetica", "", 10)
	l.pdf.SetTextColor(31, 41, 55)
	l.pdf.MultiCell(l.w, lineHeight, l.tr(text), "", "J", false)
	l.pdf.Ln(2)
}

func (l *layout) bullets(items []string) {
	l.pdf.SetFont("Helvetica", "", 10)
	for _, it := range items {
		l.pdf.SetX(Margin + 4)
		l.pdf.MultiCell(l.w-4, lineHeight, l.tr("• "+it), "", "L", false)
	}
	l.pdf.Ln(2)
}

func (l *layout) header(b types.HeaderBlock) {
	l.pdf.SetFont("Helvetica", "B", 18)
	l.pdf.SetTextColor(37, 99, 235)
	l.pdf.MultiCell(l.w, 8, l.tr(b.Title), "", "L", false)
	l.pdf.Ln(1)
	l.pdf.SetFont("Helvetica", "", 9)
	l.pdf.SetTextColor(107, 114, 128)
	l.pdf.MultiCell(l.w, 4.5, l.tr("Query: "+b.Query), "", "L", false)
	l.pdf.MultiCell(l.w, 4.5, l.tr("Generated: "+b.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")), "", "L", false)
	l.pdf.SetDrawColor(209, 213, 219)
	y := l.pdf.GetY() + 2
	l.pdf.Line(Margin, y, Margin+l.w, y)
	l.pdf.Ln(5)
}

func (l *layout) summary(b types.SummaryBlock) {
	l.heading("Executive summary", 13)
	l.paragraph(b.Text)
	if len(b.Bullets) > 0 {
		l.bullets(b.Bullets)
	}
}

// chart places a captured bitmap at full content width, starting a new page
// when it would not fit.
func (l *layout) chart(i int, c types.RasterizedChart) {
	if len(c.PNG) == 0 || c.Width <= 0 || c.Height <= 0 {
		return
	}
	h := l.w * float64(c.Height) / float64(c.Width)
	_, pageH := l.pdf.GetPageSize()
	_, _, _, bottom := l.pdf.GetMargins()
	if l.pdf.GetY()+h+12 > pageH-bottom {
		l.pdf.AddPage()
	}

	l.heading(c.Title, 11)
	name := fmt.Sprintf("chart-%d", i)
	l.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(c.PNG))
	l.pdf.ImageOptions(name, Margin, l.pdf.GetY(), l.w, h, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	l.pdf.Ln(4)
}

func (l *layout) section(s types.Section) {
	l.heading(s.Title, 12)
	l.paragraph(s.Body)
}

var recColumns = []struct {
	title string
	width float64 // share of content width
}{
	{"Priority", 0.10}, {"Action", 0.26}, {"Timeline", 0.12},
	{"Investment", 0.14}, {"Responsible", 0.18}, {"Expected impact", 0.20},
}

// recommendations draws a wrapped six-column table; each row is as tall as
// its longest cell.
func (l *layout) recommendations(rows []types.Recommendation) {
	l.heading("Recommendations", 12)

	widths := make([]float64, len(recColumns))
	header := make([]string, len(recColumns))
	for i, c := range recColumns {
		widths[i] = l.w * c.width
		header[i] = c.title
	}

	l.pdf.SetFillColor(229, 231, 235)
	l.pdf.SetDrawColor(209, 213, 219)
	l.row(header, widths, "B", true)
	for _, r := range rows {
		l.row([]string{r.Priority, r.Action, r.Timeline, r.Investment, r.Responsible, r.ExpectedImpact}, widths, "", false)
	}
	l.pdf.Ln(4)
}

func (l *layout) row(cells []string, widths []float64, style string, fill bool) {
	const cellLine = 4.5
	l.pdf.SetFont("Helvetica", style, 8.5)

	lines := 1
	for i, c := range cells {
		n := len(l.pdf.SplitLines([]byte(l.tr(c)), widths[i]-2))
		lines = max(lines, n)
	}
	h := float64(lines)*cellLine + 2

	_, pageH := l.pdf.GetPageSize()
	_, _, _, bottom := l.pdf.GetMargins()
	if l.pdf.GetY()+h > pageH-bottom {
		l.pdf.AddPage()
	}

	rectStyle := "D"
	if fill {
		rectStyle = "FD"
	}
	x, y := Margin, l.pdf.GetY()
	for i, c := range cells {
		l.pdf.Rect(x, y, widths[i], h, rectStyle)
		l.pdf.SetXY(x+1, y+1)
		l.pdf.MultiCell(widths[i]-2, cellLine, l.tr(c), "", "L", false)
		x += widths[i]
	}
	l.pdf.SetXY(Margin, y+h)
}

func (l *layout) definitions(entries []types.Definition) {
	if len(entries) == 0 {
		return
	}
	l.heading("Definitions", 12)
	for _, d := range entries {
		l.pdf.SetFont("Helvetica", "B", 10)
		l.pdf.MultiCell(l.w, lineHeight, l.tr(d.Term), "", "L", false)
		l.paragraph(d.Meaning)
	}
}

func (l *layout) conclusions(c types.Conclusions) {
	l.heading("Conclusions", 12)
	for _, p := range []struct{ label, text string }{
		{"Positive findings", c.Positive},
		{"Challenges", c.Challenges},
		{"Next steps", c.NextSteps},
	} {
		l.pdf.SetFont("Helvetica", "B", 10)
		l.pdf.MultiCell(l.w, lineHeight, l.tr(p.label), "", "L", false)
		l.paragraph(p.text)
	}
}

func (l *layout) methodology(b types.MethodologyBlock) {
	l.heading("Methodology", 12)
	l.bullets(b.Notes)
	if len(b.Sources) > 0 {
		l.heading("Sources", 11)
		l.bullets(b.Sources)
	}
}

func (l *layout) footer(text string) {
	if text == "" {
		return
	}
	l.pdf.Ln(4)
	l.pdf.SetFont("Helvetica", "I", 8)
	l.pdf.SetTextColor(107, 114, 128)
	l.pdf.MultiCell(l.w, 4, l.tr(text), "T", "C", false)
}
