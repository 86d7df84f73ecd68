package sheets

import (
	"github.com/Veraticus/statement-press/internal/engine"
)

// BuildValues flattens composed pages into spreadsheet rows: the statement
// title and holder, one column header row, every body row across all pages
// and the summary rows. Page breaks do not exist in a sheet, so repeated
// headers are dropped.
func BuildValues(pages []engine.PageRenderPlan, columns int) [][]any {
	if len(pages) == 0 {
		return nil
	}

	first := pages[0].Header
	values := [][]any{
		{first.Title},
		{first.Holder.Name, "Member No. " + first.Holder.MemberNo, "Account No. " + first.Holder.AccountNo},
		{},
	}

	headerDone := false
	for _, page := range pages {
		for _, row := range styledRows(page.Table, columns) {
			if row.style == engine.StyleHeader {
				if headerDone {
					continue
				}
				headerDone = true
			}
			values = append(values, toAny(row.texts))
		}
	}

	return values
}

type styledRow struct {
	texts []string
	style engine.CellStyle
}

func styledRows(t engine.Table, columns int) []styledRow {
	texts := t.Rows(columns)
	styles := make([]engine.CellStyle, 0, len(texts))
	last := -1
	for _, c := range t.Cells {
		if c.Style == engine.StyleGroupHeader || c.Row == last {
			continue
		}
		last = c.Row
		styles = append(styles, c.Style)
	}

	rows := make([]styledRow, len(texts))
	for i := range texts {
		rows[i] = styledRow{texts: texts[i], style: styles[i]}
	}
	return rows
}

func toAny(texts []string) []any {
	out := make([]any, len(texts))
	for i, s := range texts {
		out[i] = s
	}
	return out
}
