package pdf

import (
	"log/slog"
	"os"

	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/go-pdf/fpdf"
)

// canvas draws one document's pages.
type canvas struct {
	pdf     *fpdf.Fpdf
	profile engine.Profile
	palette Palette
	tr      func(string) string
	logger  *slog.Logger
}

// y flips a bottom-left coordinate to fpdf's top-left one.
func (c *canvas) y(v float64) float64 {
	return c.profile.PageHeight - v
}

func (c *canvas) text(x, y float64, s string) {
	if s == "" {
		return
	}
	c.pdf.Text(x, y, c.tr(s))
}

func (c *canvas) textColor(t engine.Tone) {
	rgb := c.palette.color(t)
	c.pdf.SetTextColor(rgb.R, rgb.G, rgb.B)
}

func (c *canvas) drawColor(t engine.Tone) {
	rgb := c.palette.color(t)
	c.pdf.SetDrawColor(rgb.R, rgb.G, rgb.B)
}

func (c *canvas) font(style engine.CellStyle) {
	switch style {
	case engine.StyleGroupHeader, engine.StyleHeader:
		c.pdf.SetFont(fontFamily, "B", headerFontSize)
	case engine.StyleSummary:
		c.pdf.SetFont(fontFamily, "B", bodyFontSize)
	default:
		c.pdf.SetFont(fontFamily, "", bodyFontSize)
	}
}

func (c *canvas) table(t engine.Table) {
	for _, cell := range t.Cells {
		c.font(cell.Style)
		tone := cell.Tone
		if cell.Style == engine.StyleSummary && tone == engine.ToneDefault {
			tone = engine.ToneAccent
		}
		c.textColor(tone)
		c.text(cell.X, c.y(cell.Y), cell.Text)
	}

	for _, rule := range t.Rules {
		c.drawColor(rule.Tone)
		width := 0.2
		if rule.Tone == engine.ToneAccent {
			width = 0.4
		}
		c.pdf.SetLineWidth(width)
		c.pdf.Line(rule.X1, c.y(rule.Y), rule.X2, c.y(rule.Y))
	}
}

func (c *canvas) header(h engine.HeaderBlock) {
	p := c.profile
	right := p.PageWidth - p.MarginRight
	top := p.MarginTop

	c.logo(h.LogoPath, h.Kind)

	c.pdf.SetFont(fontFamily, "", bodyFontSize)
	c.textColor(engine.ToneDefault)
	label := c.tr(h.PageLabel)
	c.pdf.Text(right-c.pdf.GetStringWidth(label), top+3, label)

	if h.Kind == engine.HeaderCompact {
		return
	}

	lineHeight := 3.5

	// Holder block on the left under the logo.
	y := top + 26
	c.pdf.SetFont(fontFamily, "B", headerFontSize)
	for i, line := range h.HolderLines {
		if i == 1 {
			c.pdf.SetFont(fontFamily, "", bodyFontSize)
		}
		c.text(p.MarginLeft, y, line)
		y += lineHeight
	}

	// Institution block right-aligned.
	y = top + 8
	c.pdf.SetFont(fontFamily, "", bodyFontSize)
	for _, line := range h.Institution {
		s := c.tr(line)
		c.pdf.Text(right-c.pdf.GetStringWidth(s), y, s)
		y += lineHeight
	}

	c.pdf.SetFont(fontFamily, "B", titleFontSize)
	c.textColor(engine.ToneAccent)
	title := c.tr(h.Title)
	c.pdf.Text((p.PageWidth-c.pdf.GetStringWidth(title))/2, p.FirstTableTop-6, title)
}

func (c *canvas) logo(path string, kind engine.HeaderKind) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		c.logger.Warn("logo not found, skipping", "path", path, "error", err)
		return
	}

	width := 40.0
	if kind == engine.HeaderCompact {
		width = 20
	}
	c.pdf.ImageOptions(path, c.profile.MarginLeft, c.profile.MarginTop, width, 0, false,
		fpdf.ImageOptions{ReadDpi: true}, 0, "")
}

func (c *canvas) footer(f engine.FooterBlock) {
	if len(f.Lines) == 0 {
		return
	}
	p := c.profile
	c.pdf.SetFont(fontFamily, "", footerFontSize)
	c.textColor(engine.ToneDefault)

	y := p.PageHeight - p.MarginBottom - footerLeading*float64(len(f.Lines)-1)
	for _, line := range f.Lines {
		c.text(p.MarginLeft, y, line)
		y += footerLeading
	}
}
