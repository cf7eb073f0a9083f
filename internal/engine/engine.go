// Package engine wires the normalized dataset, the selection state and
// the projection builders together: every state change recomputes the
// table and graph projections as one consistent pair.
package engine

import (
	"cobitscope/internal/catalog"
	"cobitscope/internal/dataset"
	"cobitscope/internal/filter"
	"cobitscope/internal/projection"
	"cobitscope/internal/report"
	"cobitscope/internal/selection"
)

// Projections is the consistent output of one recomputation. Both views
// and the summary derive from the same reduced dataset, so they can
// never disagree about what is in scope.
type Projections struct {
	Table   projection.Table
	Graph   projection.Graph
	Summary report.Summary
}

// Engine computes projections from immutable inputs plus a selection
// state. The dataset and catalog are read-only after load; the state is
// owned by the selection manager.
type Engine struct {
	Dataset *dataset.Dataset
	Catalog *catalog.Catalog
	Scale   catalog.Scale

	// ObjectiveRadius is the fixed display radius of objective nodes.
	ObjectiveRadius float64

	// ExternalRefs restricts the effective objective set (imported
	// reference list); empty means unrestricted.
	ExternalRefs []string

	current Projections
}

// New builds an engine with the default display scale.
func New(ds *dataset.Dataset, cat *catalog.Catalog) *Engine {
	return &Engine{
		Dataset: ds,
		Catalog: cat,
		Scale:   catalog.NewScale(cat, 0, 0, 0),
	}
}

// Compute derives fresh projections for a state. It is a pure function
// of (dataset, catalog, refs, state); the same state always produces
// identical projections.
func (e *Engine) Compute(state selection.State) Projections {
	reduced := filter.Reduce(e.Dataset, filter.Params{
		State:        state,
		ExternalRefs: e.ExternalRefs,
	})
	table := projection.BuildTable(reduced)
	graph := projection.BuildGraph(e.Dataset, reduced, projection.GraphOptions{
		Catalog:         e.Catalog,
		Scale:           e.Scale,
		ObjectiveRadius: e.ObjectiveRadius,
	})
	return Projections{
		Table:   table,
		Graph:   graph,
		Summary: report.Summarize(table),
	}
}

// Recompute replaces the cached projections atomically. It is the
// intended OnChange hook for a selection manager.
func (e *Engine) Recompute(state selection.State) {
	e.current = e.Compute(state)
}

// Current returns the projections of the last recompute.
func (e *Engine) Current() Projections {
	return e.current
}
