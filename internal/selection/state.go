// Package selection owns the single mutable resource of the engine: which
// objectives are selected, their capability ceilings, and the active
// table filters.
package selection

import "sort"

// State is the full selection state. It is a value type: managers hand
// out copies, never internal references.
type State struct {
	// SelectedObjectiveIDs keeps selection order for display; membership
	// is what filtering uses.
	SelectedObjectiveIDs []string

	// LevelByObjective holds the per-objective capability level for the
	// assignment workflow. Keys track SelectedObjectiveIDs; a selected
	// objective without an assigned level is absent from the map.
	LevelByObjective map[string]int

	// GlobalCeiling is the single ceiling of the global workflow, nil
	// when no ceiling is configured.
	GlobalCeiling *int

	FreeText   string
	ToolFilter string
}

// Clone returns an independent copy.
func (s State) Clone() State {
	out := s
	out.SelectedObjectiveIDs = append([]string(nil), s.SelectedObjectiveIDs...)
	if s.LevelByObjective != nil {
		out.LevelByObjective = make(map[string]int, len(s.LevelByObjective))
		for k, v := range s.LevelByObjective {
			out.LevelByObjective[k] = v
		}
	}
	if s.GlobalCeiling != nil {
		c := *s.GlobalCeiling
		out.GlobalCeiling = &c
	}
	return out
}

// IsSelected reports whether the objective is in the current selection.
func (s State) IsSelected(objectiveID string) bool {
	for _, id := range s.SelectedObjectiveIDs {
		if id == objectiveID {
			return true
		}
	}
	return false
}

// CeilingFor resolves the capability ceiling that applies to one
// objective. A per-objective assigned level takes precedence over the
// global ceiling; with neither, there is no ceiling and all levels pass.
func (s State) CeilingFor(objectiveID string) *int {
	if lvl, ok := s.LevelByObjective[objectiveID]; ok {
		c := lvl
		return &c
	}
	if s.GlobalCeiling != nil {
		c := *s.GlobalCeiling
		return &c
	}
	return nil
}

// SortedSelection returns the selected ids in lexical order, for
// deterministic persistence and diffs.
func (s State) SortedSelection() []string {
	ids := append([]string(nil), s.SelectedObjectiveIDs...)
	sort.Strings(ids)
	return ids
}
