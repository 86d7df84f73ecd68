// Package engine lays out paginated statement documents.
//
// The engine is pure: it turns an ordered ledger plus a layout Profile into
// page descriptors (cell text and positions, separator rules, header and
// footer placeholders) and never touches fonts, files or a drawing surface.
// Coordinates are millimetres measured from the bottom-left corner of the
// page, the convention PDF content streams use.
//
// The pieces compose leaf to root:
//
//	Aggregate   totals over the whole ledger, computed once
//	Plan        page count and the record slice of every page
//	LayoutPage  cell and rule geometry for one page
//	Composer    one PageRenderPlan per page, header and footer included
package engine
