// Package pdf draws composed statement pages with go-pdf/fpdf.
package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/go-pdf/fpdf"
)

// Font sizes in points.
const (
	bodyFontSize   = 7
	headerFontSize = 7.5
	titleFontSize  = 11
	footerFontSize = 6
	footerLeading  = 3
)

const fontFamily = "Helvetica"

// RGB is a color in 0-255 components.
type RGB struct {
	R, G, B int
}

// Palette maps layout tones to colors.
type Palette map[engine.Tone]RGB

// DefaultPalette is the statement color scheme.
func DefaultPalette() Palette {
	return Palette{
		engine.ToneDefault:  {R: 80, G: 80, B: 80},
		engine.ToneAccent:   {R: 190, G: 0, B: 0},
		engine.ToneNeutral:  {R: 230, G: 230, B: 230},
		engine.TonePurchase: {R: 244, G: 164, B: 96},
		engine.ToneSale:     {R: 87, G: 75, B: 144},
	}
}

func (p Palette) color(t engine.Tone) RGB {
	if c, ok := p[t]; ok {
		return c
	}
	return p[engine.ToneDefault]
}

// Document is a composed statement ready to be drawn.
type Document struct {
	Title   string
	Author  string
	Created time.Time
	Profile engine.Profile
	Pages   []engine.PageRenderPlan
}

// Renderer turns page render plans into PDF bytes. Coordinates coming from
// the layout engine have their origin at the bottom-left of the page; fpdf
// measures from the top-left.
type Renderer struct {
	logger  *slog.Logger
	palette Palette
	onPage  func(done, total int)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPalette overrides the tone colors.
func WithPalette(p Palette) Option {
	return func(r *Renderer) { r.palette = p }
}

// WithProgress registers a callback run after every drawn page.
func WithProgress(fn func(done, total int)) Option {
	return func(r *Renderer) { r.onPage = fn }
}

// NewRenderer creates a PDF renderer.
func NewRenderer(logger *slog.Logger, opts ...Option) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		logger:  logger.With("component", "pdf"),
		palette: DefaultPalette(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws every page of doc and writes the PDF to w.
func (r *Renderer) Render(ctx context.Context, w io.Writer, doc Document) error {
	if len(doc.Pages) == 0 {
		return fmt.Errorf("render %q: no pages", doc.Title)
	}

	p := doc.Profile
	f := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: p.PageWidth, Ht: p.PageHeight},
	})
	f.SetMargins(p.MarginLeft, p.MarginTop, p.MarginRight)
	f.SetAutoPageBreak(false, p.MarginBottom)
	f.SetTitle(doc.Title, true)
	f.SetAuthor(doc.Author, true)
	f.SetCreator("statement-press", false)
	if !doc.Created.IsZero() {
		f.SetCreationDate(doc.Created)
		f.SetModificationDate(doc.Created)
	}

	c := &canvas{
		pdf:     f,
		profile: p,
		palette: r.palette,
		tr:      f.UnicodeTranslatorFromDescriptor(""),
		logger:  r.logger,
	}

	for i, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		f.AddPage()
		c.header(page.Header)
		c.table(page.Table)
		c.footer(page.Footer)
		if f.Err() {
			return fmt.Errorf("render page %d of %q: %w", i+1, doc.Title, f.Error())
		}
		if r.onPage != nil {
			r.onPage(i+1, len(doc.Pages))
		}
	}

	if err := f.Output(w); err != nil {
		return fmt.Errorf("write %q: %w", doc.Title, err)
	}

	r.logger.Debug("rendered statement", "title", doc.Title, "pages", len(doc.Pages))
	return nil
}

// RenderFile renders doc to path, creating its directory if needed. A
// partially written file is removed on failure.
func (r *Renderer) RenderFile(ctx context.Context, path string, doc Document) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	out, err := os.Create(path) //nolint:gosec // path comes from the operator's config
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := r.Render(ctx, out, doc); err != nil {
		return err
	}

	r.logger.Info("wrote statement", "path", path, "pages", len(doc.Pages))
	return nil
}
