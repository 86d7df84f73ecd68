package engine

import (
	"fmt"

	"github.com/Veraticus/statement-press/internal/common"
)

// PagePlan splits a ledger of Total records into pages. The first page holds
// up to FirstCapacity records, every later page up to LaterCapacity.
type PagePlan struct {
	Total         int
	FirstCapacity int
	LaterCapacity int
	TotalPages    int
}

// PageSlice is the record range of one page.
type PageSlice struct {
	Index   int
	Start   int
	Count   int
	IsFirst bool
	IsLast  bool
}

// RenderSummary reports whether the summary block goes on this page. It is
// true only for the page holding the final record.
func (s PageSlice) RenderSummary() bool {
	return s.IsLast
}

// End is the exclusive end offset of the slice.
func (s PageSlice) End() int {
	return s.Start + s.Count
}

// Plan computes the page count for total records.
func Plan(total, firstCapacity, laterCapacity int) (PagePlan, error) {
	if firstCapacity < 1 || laterCapacity < 1 {
		return PagePlan{}, fmt.Errorf("%w (first=%d, later=%d)",
			common.ErrInvalidCapacity, firstCapacity, laterCapacity)
	}
	if total < 1 {
		return PagePlan{}, common.ErrEmptyStatement
	}

	pages := 1
	if total > firstCapacity {
		rest := total - firstCapacity
		pages += rest / laterCapacity
		if rest%laterCapacity != 0 {
			pages++
		}
	}

	return PagePlan{
		Total:         total,
		FirstCapacity: firstCapacity,
		LaterCapacity: laterCapacity,
		TotalPages:    pages,
	}, nil
}

// Slice returns the start offset and record count of page. Pages outside
// the plan are empty.
func (p PagePlan) Slice(page int) (start, count int) {
	if page < 0 || page >= p.TotalPages {
		return p.Total, 0
	}
	if page == 0 {
		return 0, min(p.Total, p.FirstCapacity)
	}

	start = p.FirstCapacity + (page-1)*p.LaterCapacity
	return start, min(p.LaterCapacity, p.Total-start)
}

// Page returns the slice of page together with its first/last flags.
func (p PagePlan) Page(page int) PageSlice {
	start, count := p.Slice(page)
	return PageSlice{
		Index:   page,
		Start:   start,
		Count:   count,
		IsFirst: page == 0,
		IsLast:  page == p.TotalPages-1,
	}
}
