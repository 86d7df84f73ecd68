package engine

import (
	"fmt"
	"sort"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/model"
)

// Built-in profile names.
const (
	ProfileCashFlow    = "cash-flow"
	ProfileMoneyMarket = "money-market"
	ProfileUnitFund    = "unit-fund"
)

// Profile is a named set of page geometry and pagination constants. Each
// statement product ships its own profile; they are not interchangeable.
type Profile struct {
	Name    string        `mapstructure:"name"`
	Variant model.Variant `mapstructure:"variant"`

	ColumnWidths []float64 `mapstructure:"column_widths"`

	PageWidth    float64 `mapstructure:"page_width"`
	PageHeight   float64 `mapstructure:"page_height"`
	MarginTop    float64 `mapstructure:"margin_top"`
	MarginRight  float64 `mapstructure:"margin_right"`
	MarginBottom float64 `mapstructure:"margin_bottom"`
	MarginLeft   float64 `mapstructure:"margin_left"`

	// Distance from the top edge of the page to the table origin.
	FirstTableTop float64 `mapstructure:"first_table_top"`
	LaterTableTop float64 `mapstructure:"later_table_top"`

	TableLeft   float64 `mapstructure:"table_left"`
	TableWidth  float64 `mapstructure:"table_width"`
	RowHeight   float64 `mapstructure:"row_height"`
	CellPadding float64 `mapstructure:"cell_padding"`

	FirstPageCapacity int `mapstructure:"first_page_capacity"`
	LaterPageCapacity int `mapstructure:"later_page_capacity"`

	// WholeUnits rounds money to whole units before printing two decimals.
	WholeUnits bool `mapstructure:"whole_units"`
}

// CashFlowWidths is the column width schedule of the cash-flow table, in mm.
var CashFlowWidths = []float64{15, 20, 20, 15, 15, 20, 23, 20}

// UnitFundWidths is the column width schedule of the unit-fund table, in mm.
var UnitFundWidths = []float64{10, 12, 15, 13, 10, 13, 15, 12, 15, 15, 10}

func a4(name string, variant model.Variant) Profile {
	return Profile{
		Name:         name,
		Variant:      variant,
		PageWidth:    210,
		PageHeight:   297,
		MarginTop:    10,
		MarginRight:  10,
		MarginBottom: 10,
		MarginLeft:   10,
		TableLeft:    10,
		TableWidth:   190,
		CellPadding:  5,
	}
}

// DefaultProfiles returns the built-in profiles keyed by name.
func DefaultProfiles() map[string]Profile {
	cash := a4(ProfileCashFlow, model.VariantCashFlow)
	cash.ColumnWidths = append([]float64(nil), CashFlowWidths...)
	cash.FirstPageCapacity = 28
	cash.LaterPageCapacity = 35
	cash.RowHeight = 7
	cash.FirstTableTop = 73
	cash.LaterTableTop = 25

	mmf := a4(ProfileMoneyMarket, model.VariantCashFlow)
	mmf.ColumnWidths = append([]float64(nil), CashFlowWidths...)
	mmf.FirstPageCapacity = 26
	mmf.LaterPageCapacity = 31
	mmf.RowHeight = 8
	mmf.FirstTableTop = 66
	mmf.LaterTableTop = 22
	mmf.WholeUnits = true

	fund := a4(ProfileUnitFund, model.VariantUnitFund)
	fund.ColumnWidths = append([]float64(nil), UnitFundWidths...)
	fund.FirstPageCapacity = 26
	fund.LaterPageCapacity = 31
	fund.RowHeight = 8
	fund.FirstTableTop = 60
	fund.LaterTableTop = 22

	return map[string]Profile{
		cash.Name: cash,
		mmf.Name:  mmf,
		fund.Name: fund,
	}
}

// LookupProfile returns a built-in profile by name.
func LookupProfile(name string) (Profile, error) {
	p, ok := DefaultProfiles()[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w %q", common.ErrUnknownProfile, name)
	}
	return p, nil
}

// DefaultProfileFor returns the built-in profile for a variant.
func DefaultProfileFor(variant model.Variant) Profile {
	if variant == model.VariantUnitFund {
		return DefaultProfiles()[ProfileUnitFund]
	}
	return DefaultProfiles()[ProfileCashFlow]
}

// ProfileNames lists the built-in profile names in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, 3)
	for name := range DefaultProfiles() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FirstOriginY is the table origin on the first page.
func (p Profile) FirstOriginY() float64 {
	return p.PageHeight - p.FirstTableTop
}

// LaterOriginY is the table origin on every page after the first.
func (p Profile) LaterOriginY() float64 {
	return p.PageHeight - p.LaterTableTop
}

// UsableWidth is the page width inside the left and right margins.
func (p Profile) UsableWidth() float64 {
	return p.PageWidth - p.MarginLeft - p.MarginRight
}

// UsableHeight is the page height inside the top and bottom margins.
func (p Profile) UsableHeight() float64 {
	return p.PageHeight - p.MarginTop - p.MarginBottom
}

// Validate checks the profile for configuration errors. Column schedule
// problems are reported by NewSchedule.
func (p Profile) Validate() error {
	if p.FirstPageCapacity < 1 || p.LaterPageCapacity < 1 {
		return fmt.Errorf("profile %s: %w (first=%d, later=%d)",
			p.Name, common.ErrInvalidCapacity, p.FirstPageCapacity, p.LaterPageCapacity)
	}
	if p.PageWidth <= 0 || p.PageHeight <= 0 {
		return fmt.Errorf("profile %s: %w: page size %.1fx%.1f", p.Name, common.ErrInvalidConfig, p.PageWidth, p.PageHeight)
	}
	if p.RowHeight <= 0 {
		return fmt.Errorf("profile %s: %w: row height must be positive", p.Name, common.ErrInvalidConfig)
	}
	if p.FirstTableTop <= 0 || p.FirstTableTop >= p.PageHeight ||
		p.LaterTableTop <= 0 || p.LaterTableTop >= p.PageHeight {
		return fmt.Errorf("profile %s: %w: table origin outside the page", p.Name, common.ErrInvalidConfig)
	}
	if _, err := model.ParseVariant(string(p.Variant)); err != nil {
		return fmt.Errorf("profile %s: %w: %v", p.Name, common.ErrInvalidConfig, err)
	}
	return nil
}
