package engine

import (
	"fmt"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/format"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/shopspring/decimal"
)

// Tone is a color tag the renderer maps to an actual color.
type Tone int

const (
	// ToneDefault is the dark body text color.
	ToneDefault Tone = iota
	// ToneAccent marks header rules and the summary block.
	ToneAccent
	// ToneNeutral is the light gray used for body rules.
	ToneNeutral
	// TonePurchase marks the purchase column group.
	TonePurchase
	// ToneSale marks the sale column group.
	ToneSale
)

// Column is one table column title and its color group.
type Column struct {
	Title string
	Tone  Tone
}

// Group is a super-header label spanning consecutive columns.
type Group struct {
	Title string
	Span  int
	Tone  Tone
}

var cashFlowColumns = []Column{
	{Title: "Trans No."},
	{Title: "Trans Date"},
	{Title: "Description"},
	{Title: "Deposit"},
	{Title: "Interest"},
	{Title: "Withdrawal"},
	{Title: "Withholding Tax"},
	{Title: "Running Balance"},
}

var unitFundColumns = []Column{
	{Title: "Trans Id"},
	{Title: "Trans Date"},
	{Title: "Description"},
	{Title: "Units", Tone: TonePurchase},
	{Title: "Price", Tone: TonePurchase},
	{Title: "Cost", Tone: TonePurchase},
	{Title: "Units", Tone: ToneSale},
	{Title: "Price", Tone: ToneSale},
	{Title: "Cost", Tone: ToneSale},
	{Title: "Units"},
	{Title: "Nav"},
}

var unitFundGroups = []Group{
	{Title: "", Span: 3},
	{Title: "Purchases", Span: 3, Tone: TonePurchase},
	{Title: "Sales", Span: 3, Tone: ToneSale},
	{Title: "Balance", Span: 2},
}

// ColumnsFor returns the fixed column set of a variant.
func ColumnsFor(variant model.Variant) []Column {
	if variant == model.VariantUnitFund {
		return unitFundColumns
	}
	return cashFlowColumns
}

// GroupsFor returns the super-header groups of a variant, if any.
func GroupsFor(variant model.Variant) []Group {
	if variant == model.VariantUnitFund {
		return unitFundGroups
	}
	return nil
}

// Schedule is the column schedule and table geometry the layout engine
// works from.
type Schedule struct {
	Variant     model.Variant
	Columns     []Column
	Groups      []Group
	Widths      []float64
	Left        float64
	Width       float64
	RowHeight   float64
	CellPadding float64
	WholeUnits  bool
}

// NewSchedule builds the schedule for a profile.
func NewSchedule(p Profile) (Schedule, error) {
	s := Schedule{
		Variant:     p.Variant,
		Columns:     ColumnsFor(p.Variant),
		Groups:      GroupsFor(p.Variant),
		Widths:      append([]float64(nil), p.ColumnWidths...),
		Left:        p.TableLeft,
		Width:       p.TableWidth,
		RowHeight:   p.RowHeight,
		CellPadding: p.CellPadding,
		WholeUnits:  p.WholeUnits,
	}
	return s, s.Validate()
}

// Validate checks that the width schedule matches the variant's columns.
func (s Schedule) Validate() error {
	want := len(ColumnsFor(s.Variant))
	if len(s.Widths) != want {
		return fmt.Errorf("%w: %s expects %d column widths, got %d",
			common.ErrColumnScheduleMismatch, s.Variant, want, len(s.Widths))
	}
	return nil
}

// ColumnX is the left edge of column k: the table origin plus the widths of
// the preceding columns plus one padding per preceding column.
func (s Schedule) ColumnX(k int) float64 {
	x := s.Left
	for _, w := range s.Widths[:k] {
		x += w
	}
	return x + s.CellPadding*float64(k)
}

// HeaderRows is the number of header rows above the first body row.
func (s Schedule) HeaderRows() int {
	if len(s.Groups) > 0 {
		return 2
	}
	return 1
}

// Right is the x coordinate where separator rules end.
func (s Schedule) Right() float64 {
	return s.Left + s.Width
}

func (s Schedule) money(v float64) string {
	if s.WholeUnits {
		return format.Whole(v)
	}
	return format.Amount(v)
}

func (s Schedule) moneyDecimal(d decimal.Decimal) string {
	if s.WholeUnits {
		d = d.Round(0)
	}
	return format.Decimal(d)
}
