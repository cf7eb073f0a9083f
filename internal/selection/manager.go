package selection

import (
	"fmt"

	"cobitscope/internal/dataset"
)

// Store persists selection state. The second Load result reports whether
// a persisted state existed.
type Store interface {
	Load() (State, bool, error)
	Save(State) error
}

// Manager owns the selection state, validates every mutation against the
// loaded dataset, and notifies an observer after each change so callers
// recompute projections. All mutations are synchronous.
type Manager struct {
	ds    *dataset.Dataset
	store Store
	state State

	// OnChange, when set, runs synchronously after every applied
	// mutation with a copy of the new state.
	OnChange func(State)
}

// NewManager creates a manager bound to a loaded dataset. store may be
// nil for an in-memory session.
func NewManager(ds *dataset.Dataset, store Store) (*Manager, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is required")
	}
	m := &Manager{ds: ds, store: store}
	if store != nil {
		persisted, ok, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("load selection state: %w", err)
		}
		if ok {
			// Ids that no longer exist in the dataset are dropped, not
			// errors, mirroring the import rule.
			m.state = m.pruned(persisted)
		}
	}
	return m, nil
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	return m.state.Clone()
}

// ToggleObjective adds or removes an objective from the selection.
// Unknown ids are rejected.
func (m *Manager) ToggleObjective(id string) error {
	if !m.ds.Has(id) {
		return fmt.Errorf("unknown objective %q", id)
	}
	if m.state.IsSelected(id) {
		kept := m.state.SelectedObjectiveIDs[:0]
		for _, sel := range m.state.SelectedObjectiveIDs {
			if sel != id {
				kept = append(kept, sel)
			}
		}
		m.state.SelectedObjectiveIDs = kept
		delete(m.state.LevelByObjective, id)
	} else {
		m.state.SelectedObjectiveIDs = append(m.state.SelectedObjectiveIDs, id)
	}
	return m.commit()
}

// SetObjectiveLevel assigns a capability level (1..5) to a selected
// objective, or unsets it when level is 0. Out-of-range levels are
// rejected at this boundary; the filter engine applies whatever ceiling
// it is handed.
func (m *Manager) SetObjectiveLevel(id string, level int) error {
	if !m.state.IsSelected(id) {
		return fmt.Errorf("objective %q is not selected", id)
	}
	if level == 0 {
		delete(m.state.LevelByObjective, id)
		return m.commit()
	}
	if level < 1 || level > 5 {
		return fmt.Errorf("capability level must be between 1 and 5, got %d", level)
	}
	if m.state.LevelByObjective == nil {
		m.state.LevelByObjective = make(map[string]int)
	}
	m.state.LevelByObjective[id] = level
	return m.commit()
}

// SetGlobalCeiling sets the global capability ceiling; nil clears it.
func (m *Manager) SetGlobalCeiling(level *int) error {
	if level != nil && (*level < 1 || *level > 5) {
		return fmt.Errorf("capability ceiling must be between 1 and 5, got %d", *level)
	}
	if level == nil {
		m.state.GlobalCeiling = nil
	} else {
		c := *level
		m.state.GlobalCeiling = &c
	}
	return m.commit()
}

// SetFreeText sets the free-text filter.
func (m *Manager) SetFreeText(s string) error {
	m.state.FreeText = s
	return m.commit()
}

// SetToolFilter sets the exact-match tool filter; empty clears it.
func (m *Manager) SetToolFilter(s string) error {
	m.state.ToolFilter = s
	return m.commit()
}

// ClearAll resets the whole selection state.
func (m *Manager) ClearAll() error {
	m.state = State{}
	return m.commit()
}

// ImportExternalSelection replaces the selection with an externally
// supplied id list plus optional per-objective levels. Ids not present in
// the dataset are silently dropped; levels outside 1..5 are dropped with
// the count reported back.
func (m *Manager) ImportExternalSelection(ids []string, levels map[string]int) (dropped int, err error) {
	next, dropped := m.PreviewImport(ids, levels)
	m.state = next
	return dropped, m.commit()
}

// PreviewImport computes the state an import would produce without
// applying it. Free-text and tool filters carry over unchanged.
func (m *Manager) PreviewImport(ids []string, levels map[string]int) (State, int) {
	next := State{
		FreeText:   m.state.FreeText,
		ToolFilter: m.state.ToolFilter,
	}
	dropped := 0
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if !m.ds.Has(id) {
			dropped++
			continue
		}
		next.SelectedObjectiveIDs = append(next.SelectedObjectiveIDs, id)
		if lvl, ok := levels[id]; ok {
			if lvl < 1 || lvl > 5 {
				dropped++
				continue
			}
			if next.LevelByObjective == nil {
				next.LevelByObjective = make(map[string]int)
			}
			next.LevelByObjective[id] = lvl
		}
	}
	return next, dropped
}

// ReadyToProceed reports whether the assignment workflow can continue:
// at least one objective selected and every selected objective carrying
// a level in 1..5.
func (m *Manager) ReadyToProceed() bool {
	if len(m.state.SelectedObjectiveIDs) == 0 {
		return false
	}
	for _, id := range m.state.SelectedObjectiveIDs {
		lvl, ok := m.state.LevelByObjective[id]
		if !ok || lvl < 1 || lvl > 5 {
			return false
		}
	}
	return true
}

func (m *Manager) pruned(s State) State {
	out := State{
		GlobalCeiling: s.GlobalCeiling,
		FreeText:      s.FreeText,
		ToolFilter:    s.ToolFilter,
	}
	for _, id := range s.SelectedObjectiveIDs {
		if !m.ds.Has(id) {
			continue
		}
		out.SelectedObjectiveIDs = append(out.SelectedObjectiveIDs, id)
		if lvl, ok := s.LevelByObjective[id]; ok {
			if out.LevelByObjective == nil {
				out.LevelByObjective = make(map[string]int)
			}
			out.LevelByObjective[id] = lvl
		}
	}
	return out.Clone()
}

func (m *Manager) commit() error {
	if m.store != nil {
		if err := m.store.Save(m.state.Clone()); err != nil {
			return fmt.Errorf("save selection state: %w", err)
		}
	}
	if m.OnChange != nil {
		m.OnChange(m.state.Clone())
	}
	return nil
}
