package engine

import (
	"math"
	"strconv"

	"github.com/Veraticus/statement-press/internal/format"
	"github.com/Veraticus/statement-press/internal/model"
)

// Unit counts and prices carry four decimals.
const unitPlaces = 4

// CellStyle tells the renderer which font weight and color to use.
type CellStyle int

const (
	StyleGroupHeader CellStyle = iota
	StyleHeader
	StyleBody
	StyleSummary
)

func (s CellStyle) String() string {
	switch s {
	case StyleGroupHeader:
		return "group-header"
	case StyleHeader:
		return "header"
	case StyleBody:
		return "body"
	case StyleSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// RuleKind says why a separator line was drawn.
type RuleKind int

const (
	RuleHeader RuleKind = iota
	RuleBody
	RuleClosing
	RuleSummary
)

// PageLayout is one page of the statement: its record slice and the flags
// the layout engine needs.
type PageLayout struct {
	Records       []model.Transaction
	Index         int
	TotalPages    int
	OriginY       float64
	IsFirst       bool
	IsLast        bool
	RenderSummary bool
}

// Cell is a positioned piece of table text. X and Y are in millimetres from
// the bottom-left corner of the page.
type Cell struct {
	Text   string
	Row    int
	Column int
	Span   int
	X      float64
	Y      float64
	Style  CellStyle
	Tone   Tone
}

// Rule is a horizontal separator line.
type Rule struct {
	Y    float64
	X1   float64
	X2   float64
	Tone Tone
	Kind RuleKind
}

// Table is everything the layout engine draws for one page.
type Table struct {
	Cells []Cell
	Rules []Rule
}

// Rows returns the cell texts grouped by row index, padded so every row has
// one entry per column. Group header cells are skipped.
func (t Table) Rows(columns int) [][]string {
	var rows [][]string
	index := map[int]int{}
	for _, c := range t.Cells {
		if c.Style == StyleGroupHeader {
			continue
		}
		i, ok := index[c.Row]
		if !ok {
			i = len(rows)
			index[c.Row] = i
			rows = append(rows, make([]string, columns))
		}
		if c.Column < columns {
			rows[i][c.Column] = c.Text
		}
	}
	return rows
}

// LayoutPage positions every header, body and summary cell of one page
// together with its separator rules. Row r of the table has its top edge at
// originY - r*RowHeight and its text baseline one padding below that.
func LayoutPage(page PageLayout, agg Aggregates, sched Schedule, originY float64) (Table, error) {
	if err := sched.Validate(); err != nil {
		return Table{}, err
	}

	b := &tableBuilder{sched: sched, originY: originY}
	b.header()

	for i := range page.Records {
		b.emit(b.bodyRow(&page.Records[i]), StyleBody, ToneDefault)
		switch {
		case i < len(page.Records)-1:
			b.ruleBelow(ToneNeutral, RuleBody)
		case !page.RenderSummary:
			b.ruleBelow(ToneNeutral, RuleClosing)
		}
	}

	if page.RenderSummary {
		b.summary(agg)
	}

	return b.table, nil
}

type tableBuilder struct {
	table   Table
	sched   Schedule
	originY float64
	row     int // next row to emit
}

func (b *tableBuilder) top(row int) float64 {
	return b.originY - float64(row)*b.sched.RowHeight
}

func (b *tableBuilder) addRule(y float64, tone Tone, kind RuleKind) {
	b.table.Rules = append(b.table.Rules, Rule{
		Y:    y,
		X1:   b.sched.Left,
		X2:   b.sched.Right(),
		Tone: tone,
		Kind: kind,
	})
}

// ruleBelow draws a line under the most recently emitted row.
func (b *tableBuilder) ruleBelow(tone Tone, kind RuleKind) {
	b.addRule(b.top(b.row), tone, kind)
}

func (b *tableBuilder) place(col, span int, text string, style CellStyle, tone Tone) {
	b.table.Cells = append(b.table.Cells, Cell{
		Text:   text,
		Row:    b.row,
		Column: col,
		Span:   span,
		X:      b.sched.ColumnX(col),
		Y:      b.top(b.row) - b.sched.CellPadding,
		Style:  style,
		Tone:   tone,
	})
}

func (b *tableBuilder) emit(texts []string, style CellStyle, tone Tone) {
	for col, text := range texts {
		t := tone
		if style == StyleHeader {
			t = b.sched.Columns[col].Tone
		}
		b.place(col, 1, text, style, t)
	}
	b.row++
}

func (b *tableBuilder) header() {
	if len(b.sched.Groups) > 0 {
		col := 0
		for _, g := range b.sched.Groups {
			b.place(col, g.Span, g.Title, StyleGroupHeader, g.Tone)
			col += g.Span
		}
		b.row++
		b.ruleBelow(ToneAccent, RuleHeader)
	}

	titles := make([]string, len(b.sched.Columns))
	for i, c := range b.sched.Columns {
		titles[i] = c.Title
	}
	b.emit(titles, StyleHeader, ToneDefault)
	b.ruleBelow(ToneAccent, RuleHeader)
}

func (b *tableBuilder) bodyRow(t *model.Transaction) []string {
	if b.sched.Variant == model.VariantUnitFund {
		return b.unitFundRow(t)
	}
	return b.cashFlowRow(t)
}

func (b *tableBuilder) cashFlowRow(t *model.Transaction) []string {
	s := b.sched
	row := []string{
		strconv.FormatInt(t.ID, 10),
		format.Date(t.Date),
		t.Label(),
		"", "", "",
		s.money(math.Abs(t.TaxAmount)),
		s.money(t.RunningBalance),
	}
	switch t.Type {
	case model.TypePurchase:
		row[3] = s.money(t.Amount)
	case model.TypeInterest:
		row[4] = s.money(t.Amount)
	case model.TypeWithdrawal:
		row[5] = s.money(math.Abs(t.Amount))
	}
	return row
}

func (b *tableBuilder) unitFundRow(t *model.Transaction) []string {
	s := b.sched
	price := unitText(t.UnitPrice)
	row := []string{
		strconv.FormatInt(t.ID, 10),
		format.Date(t.Date),
		t.Label(),
		"", "", "",
		"", "", "",
		format.Places(t.RunningUnits, unitPlaces),
		price,
	}
	switch t.Type {
	case model.TypePurchase:
		row[3], row[4], row[5] = unitText(t.Units), price, s.money(t.Amount)
	case model.TypeWithdrawal:
		row[6], row[7], row[8] = magnitudeText(t.Units), price, s.money(math.Abs(t.Amount))
	}
	return row
}

// summary writes the accent-colored totals block: a top line, one line
// between summary rows and a closing line beneath the block.
func (b *tableBuilder) summary(agg Aggregates) {
	s := b.sched

	var rows [][]string
	if s.Variant == model.VariantUnitFund {
		totals := []string{
			"Summations", "", "",
			format.DecimalPlaces(agg.PurchaseUnits, unitPlaces), "", s.moneyDecimal(agg.PurchaseCost),
			format.DecimalPlaces(agg.SaleUnits.Abs(), unitPlaces), "", s.moneyDecimal(agg.SaleCost.Abs()),
			format.DecimalPlaces(agg.FinalUnits, unitPlaces),
			format.DecimalPlaces(agg.LatestPrice, unitPlaces),
		}
		closing := make([]string, len(s.Columns))
		closing[0] = "Closing balance as at: " + format.Date(agg.ClosingDate)
		closing[8] = "Market Value:"
		closing[9] = s.moneyDecimal(agg.MarketValue())
		rows = [][]string{totals, closing}
	} else {
		rows = [][]string{{
			"Summations", "", "",
			s.moneyDecimal(agg.TotalDeposits),
			s.moneyDecimal(agg.TotalInterest),
			s.moneyDecimal(agg.TotalWithdrawals.Abs()),
			s.moneyDecimal(agg.TotalTax.Abs()),
			s.moneyDecimal(agg.FinalBalance),
		}}
	}

	b.addRule(b.top(b.row), ToneAccent, RuleSummary)
	for i, row := range rows {
		b.emit(row, StyleSummary, ToneAccent)
		if i < len(rows)-1 {
			b.ruleBelow(ToneAccent, RuleSummary)
		}
	}
	b.ruleBelow(ToneAccent, RuleClosing)
}

func unitText(v *float64) string {
	if v == nil {
		return ""
	}
	return format.Places(*v, unitPlaces)
}

func magnitudeText(v *float64) string {
	if v == nil {
		return ""
	}
	return format.Places(math.Abs(*v), unitPlaces)
}
