package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/format"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// FooterWidth is the column limit the footer paragraph is wrapped to.
const FooterWidth = 100

// Branding is the issuing institution's fixed header and footer content.
type Branding struct {
	FooterText  string   `mapstructure:"footer_text"`
	LogoPath    string   `mapstructure:"logo_path"`
	Institution []string `mapstructure:"institution"`
}

// DefaultBranding returns the institution block and footer printed when no
// branding is configured.
func DefaultBranding() Branding {
	return Branding{
		Institution: []string{
			"P.O Box: 59485-00200",
			"Nairobi, Kenya",
			"Tel: 2823000",
			"Fax: 2823344",
			"CIC Plaza Mara Road,",
			"Upper Hill.",
			"cic.asset@cic.co.ke",
			"www.cic.co.ke",
		},
		FooterText: "Bank account details: CO-OP Bank, CIC Dollar Fund Collection account, " +
			"Acct No: 02120190806600 Branch: CO-OP House, Swift Code: KCOOKENA. " +
			"Remember to always quote your Member No. indicated at the top right hand corner.",
	}
}

// Statement is everything needed to lay out one statement document.
type Statement struct {
	GeneratedAt  time.Time
	Holder       model.Holder
	Branding     Branding
	Name         string
	Transactions []model.Transaction
	Profile      Profile
}

// Variant is the variant of the statement's profile.
func (s Statement) Variant() model.Variant {
	return s.Profile.Variant
}

// HeaderKind distinguishes the full first-page header from the compact one.
type HeaderKind int

const (
	HeaderFull HeaderKind = iota
	HeaderCompact
)

// HeaderBlock is the page header placeholder. The renderer owns fonts and
// the logo; the engine only decides what goes where.
type HeaderBlock struct {
	Holder      model.Holder
	PageLabel   string
	Title       string
	LogoPath    string
	HolderLines []string
	Institution []string
	Kind        HeaderKind
}

// FooterBlock is the footer paragraph, already wrapped.
type FooterBlock struct {
	Lines []string
}

// PageRenderPlan is one fully laid-out page.
type PageRenderPlan struct {
	Header HeaderBlock
	Footer FooterBlock
	Table  Table
	Layout PageLayout
}

// Composer assembles statement pages. Aggregates and the page plan are
// computed once in NewComposer; pages are built on demand.
type Composer struct {
	stmt     Statement
	schedule Schedule
	plan     PagePlan
	agg      Aggregates
	footer   FooterBlock
}

// NewComposer validates the statement and precomputes everything shared by
// its pages.
func NewComposer(stmt Statement) (*Composer, error) {
	if err := stmt.Profile.Validate(); err != nil {
		return nil, err
	}

	schedule, err := NewSchedule(stmt.Profile)
	if err != nil {
		return nil, err
	}

	agg, err := Aggregate(stmt.Transactions, stmt.Variant())
	if err != nil {
		return nil, err
	}

	plan, err := Plan(len(stmt.Transactions), stmt.Profile.FirstPageCapacity, stmt.Profile.LaterPageCapacity)
	if err != nil {
		return nil, err
	}

	return &Composer{
		stmt:     stmt,
		schedule: schedule,
		plan:     plan,
		agg:      agg,
		footer:   NewFooter(stmt.Branding.FooterText),
	}, nil
}

// TotalPages is the number of pages the statement needs.
func (c *Composer) TotalPages() int {
	return c.plan.TotalPages
}

// Plan returns the page plan.
func (c *Composer) Plan() PagePlan {
	return c.plan
}

// Aggregates returns the statement totals.
func (c *Composer) Aggregates() Aggregates {
	return c.agg
}

// Statement returns the statement being composed.
func (c *Composer) Statement() Statement {
	return c.stmt
}

// Schedule returns the column schedule in use.
func (c *Composer) Schedule() Schedule {
	return c.schedule
}

// Page lays out page i (0-based).
func (c *Composer) Page(i int) (PageRenderPlan, error) {
	if i < 0 || i >= c.plan.TotalPages {
		return PageRenderPlan{}, fmt.Errorf("%w: page %d of %d", common.ErrNotFound, i+1, c.plan.TotalPages)
	}

	slice := c.plan.Page(i)
	originY := c.stmt.Profile.LaterOriginY()
	if slice.IsFirst {
		originY = c.stmt.Profile.FirstOriginY()
	}

	layout := PageLayout{
		Records:       c.stmt.Transactions[slice.Start:slice.End()],
		Index:         i,
		TotalPages:    c.plan.TotalPages,
		OriginY:       originY,
		IsFirst:       slice.IsFirst,
		IsLast:        slice.IsLast,
		RenderSummary: slice.RenderSummary(),
	}

	table, err := LayoutPage(layout, c.agg, c.schedule, originY)
	if err != nil {
		return PageRenderPlan{}, err
	}

	return PageRenderPlan{
		Header: c.header(layout),
		Footer: c.footer,
		Table:  table,
		Layout: layout,
	}, nil
}

// Pages lays out every page in order.
func (c *Composer) Pages() ([]PageRenderPlan, error) {
	pages := make([]PageRenderPlan, 0, c.plan.TotalPages)
	for i := 0; i < c.plan.TotalPages; i++ {
		p, err := c.Page(i)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// Compose lays out a whole statement. A failure on any page aborts the
// statement; no partial result is returned.
func Compose(stmt Statement) ([]PageRenderPlan, error) {
	c, err := NewComposer(stmt)
	if err != nil {
		return nil, err
	}
	return c.Pages()
}

func (c *Composer) header(layout PageLayout) HeaderBlock {
	label := fmt.Sprintf("page %d/%d", layout.Index+1, layout.TotalPages)
	if !layout.IsFirst {
		return HeaderBlock{
			Kind:      HeaderCompact,
			PageLabel: label,
			LogoPath:  c.stmt.Branding.LogoPath,
		}
	}

	h := c.stmt.Holder
	institution := append([]string(nil), c.stmt.Branding.Institution...)
	institution = append(institution, "",
		"Member No. "+h.MemberNo,
		"Account No. "+h.AccountNo,
	)

	return HeaderBlock{
		Kind:      HeaderFull,
		PageLabel: label,
		Holder:    h,
		HolderLines: []string{
			h.Name,
			"P.O Box: " + h.PostalAddress,
			"Email: " + h.Email,
			"Tel. No. " + h.Phone,
		},
		Institution: institution,
		Title:       strings.TrimSpace(h.Product + " | " + format.Date(c.generatedAt())),
		LogoPath:    c.stmt.Branding.LogoPath,
	}
}

// generatedAt falls back to the closing date so output stays deterministic
// when the caller does not stamp the statement.
func (c *Composer) generatedAt() time.Time {
	if !c.stmt.GeneratedAt.IsZero() {
		return c.stmt.GeneratedAt
	}
	return c.agg.ClosingDate
}

// NewFooter wraps text to FooterWidth columns.
func NewFooter(text string) FooterBlock {
	text = strings.TrimSpace(text)
	if text == "" {
		return FooterBlock{}
	}
	// Hyphen breakpoints are written without counting toward the line
	// length, so break on spaces only and hard-wrap words over the limit.
	ww := wordwrap.NewWriter(FooterWidth)
	ww.Breakpoints = nil
	_, _ = ww.Write([]byte(text))
	_ = ww.Close()

	return FooterBlock{Lines: strings.Split(wrap.String(ww.String(), FooterWidth), "\n")}
}
