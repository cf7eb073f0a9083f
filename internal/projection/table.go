// Package projection converts a reduced dataset into the two read-only
// views consumed by external renderers: a flat, pagination-ready row
// list and a node/edge set for the graph.
package projection

import (
	"cobitscope/internal/dataset"
	"cobitscope/internal/filter"
)

// Row is one table row. Objective/practice/activity labels are the
// composite "ID - name" form; Level and Tool are display-formatted with
// "-" for absent values. ObjectiveID and Domain ride along for the
// aggregator and are not rendered as columns.
type Row struct {
	ObjectiveID string         `json:"objective_id"`
	Domain      dataset.Domain `json:"domain"`

	Objective     string `json:"objective"`
	Practice      string `json:"practice"`
	Activity      string `json:"activity"`
	Level         string `json:"level"`
	Tool          string `json:"tool"`
	Justification string `json:"justification"`
	Observations  string `json:"observations"`
	Integration   string `json:"integration"`

	// RawLevel preserves the numeric level (nil when not informed).
	RawLevel *int `json:"-"`
}

// Table is the flat row projection. Row order is stable: objective
// source order, then practice source order, then activity source order;
// no implicit sorting by level or tool.
type Table struct {
	Rows []Row `json:"rows"`
}

// BuildTable flattens the reduced dataset into rows.
func BuildTable(r *filter.Reduced) Table {
	var t Table
	if r == nil {
		return t
	}
	for _, obj := range r.Objectives {
		for _, pr := range obj.Practices {
			for _, act := range pr.Activities {
				t.Rows = append(t.Rows, Row{
					ObjectiveID:   obj.ID,
					Domain:        obj.Domain,
					Objective:     obj.Label(),
					Practice:      pr.Label(),
					Activity:      act.Label(),
					Level:         dataset.FormatLevel(act.Level),
					Tool:          dataset.FormatTool(act.Tool),
					Justification: act.Justification,
					Observations:  act.Observations,
					Integration:   act.Integration,
					RawLevel:      act.Level,
				})
			}
		}
	}
	return t
}

// Total returns the stable row count, the denominator for pagination.
func (t Table) Total() int {
	return len(t.Rows)
}

// Pages returns how many pages the table spans at the given page size,
// never less than 1.
func (t Table) Pages(perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	pages := (len(t.Rows) + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Page returns the rows of one 1-based page. Ordering is stable, so any
// page slice is reproducible for the same projection.
func (t Table) Page(page, perPage int) []Row {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(t.Rows) {
		return nil
	}
	end := start + perPage
	if end > len(t.Rows) {
		end = len(t.Rows)
	}
	return t.Rows[start:end]
}
