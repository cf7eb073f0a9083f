package selection

import (
	"reflect"
	"testing"

	"cobitscope/internal/dataset"
)

const managerDataset = `[
  {"id": "EDM01", "nombre": "Governance", "practicas": []},
  {"id": "APO01", "nombre": "Management framework", "practicas": []},
  {"id": "DSS05", "nombre": "Security services", "practicas": []}
]`

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse([]byte(managerDataset), "test.json")
	if err != nil {
		t.Fatalf("parse dataset: %v", err)
	}
	return ds
}

// memStore is the in-memory Store used by manager tests.
type memStore struct {
	state State
	ok    bool
	saves int
}

func (m *memStore) Load() (State, bool, error) { return m.state, m.ok, nil }
func (m *memStore) Save(s State) error {
	m.state = s
	m.ok = true
	m.saves++
	return nil
}

func TestToggleObjectiveIsItsOwnInverse(t *testing.T) {
	m, err := NewManager(testDataset(t), nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if err := m.ToggleObjective("EDM01"); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !m.State().IsSelected("EDM01") {
		t.Fatalf("expected EDM01 selected after toggle")
	}
	if err := m.SetObjectiveLevel("EDM01", 3); err != nil {
		t.Fatalf("set level: %v", err)
	}

	if err := m.ToggleObjective("EDM01"); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	state := m.State()
	if state.IsSelected("EDM01") {
		t.Fatalf("expected EDM01 deselected after second toggle")
	}
	if _, ok := state.LevelByObjective["EDM01"]; ok {
		t.Fatalf("expected level removed on deselection")
	}
}

func TestToggleUnknownObjectiveRejected(t *testing.T) {
	m, err := NewManager(testDataset(t), nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := m.ToggleObjective("ZZZ99"); err == nil {
		t.Fatalf("expected error for unknown objective")
	}
}

func TestSetObjectiveLevelValidation(t *testing.T) {
	m, err := NewManager(testDataset(t), nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if err := m.SetObjectiveLevel("EDM01", 3); err == nil {
		t.Fatalf("expected error for level on unselected objective")
	}

	if err := m.ToggleObjective("EDM01"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := m.SetObjectiveLevel("EDM01", 6); err == nil {
		t.Fatalf("expected error for level 6")
	}
	if err := m.SetObjectiveLevel("EDM01", -1); err == nil {
		t.Fatalf("expected error for negative level")
	}
	if err := m.SetObjectiveLevel("EDM01", 4); err != nil {
		t.Fatalf("set level 4: %v", err)
	}
	if got := m.State().LevelByObjective["EDM01"]; got != 4 {
		t.Fatalf("expected level 4, got %d", got)
	}

	if err := m.SetObjectiveLevel("EDM01", 0); err != nil {
		t.Fatalf("unset level: %v", err)
	}
	if _, ok := m.State().LevelByObjective["EDM01"]; ok {
		t.Fatalf("expected level unset")
	}
}

func TestCeilingPrecedence(t *testing.T) {
	m, err := NewManager(testDataset(t), nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := m.ToggleObjective("EDM01"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := m.ToggleObjective("APO01"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := m.SetObjectiveLevel("EDM01", 2); err != nil {
		t.Fatalf("set level: %v", err)
	}
	g := 4
	if err := m.SetGlobalCeiling(&g); err != nil {
		t.Fatalf("set ceiling: %v", err)
	}

	state := m.State()
	if c := state.CeilingFor("EDM01"); c == nil || *c != 2 {
		t.Fatalf("expected per-objective level 2 to shadow the global ceiling, got %v", c)
	}
	if c := state.CeilingFor("APO01"); c == nil || *c != 4 {
		t.Fatalf("expected global ceiling 4 for APO01, got %v", c)
	}

	if err := m.SetGlobalCeiling(nil); err != nil {
		t.Fatalf("clear ceiling: %v", err)
	}
	if c := m.State().CeilingFor("APO01"); c != nil {
		t.Fatalf("expected no ceiling for APO01 after clear, got %d", *c)
	}

	bad := 9
	if err := m.SetGlobalCeiling(&bad); err == nil {
		t.Fatalf("expected error for ceiling 9")
	}
}

func TestClearAllResetsEverything(t *testing.T) {
	m, err := NewManager(testDataset(t), nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := m.ToggleObjective("EDM01"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := m.SetFreeText("security"); err != nil {
		t.Fatalf("set text: %v", err)
	}
	if err := m.SetToolFilter("Jira"); err != nil {
		t.Fatalf("set tool: %v", err)
	}
	if err := m.ClearAll(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !reflect.DeepEqual(m.State(), State{}) {
		t.Fatalf("expected empty state after clear, got %+v", m.State())
	}
}

func TestImportExternalSelectionDropsInvalidEntries(t *testing.T) {
	m, err := NewManager(testDataset(t), nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := m.SetFreeText("risk"); err != nil {
		t.Fatalf("set text: %v", err)
	}

	ids := []string{"EDM01", "UNKNOWN", "APO01", "EDM01", "DSS05"}
	levels := map[string]int{"EDM01": 3, "APO01": 7, "DSS05": 1}
	dropped, err := m.ImportExternalSelection(ids, levels)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	// UNKNOWN and the out-of-range APO01 level both drop; the duplicate
	// EDM01 is collapsed silently.
	if dropped != 2 {
		t.Fatalf("expected 2 dropped entries, got %d", dropped)
	}

	state := m.State()
	want := []string{"APO01", "DSS05", "EDM01"}
	if !reflect.DeepEqual(state.SortedSelection(), want) {
		t.Fatalf("expected selection %v, got %v", want, state.SortedSelection())
	}
	if _, ok := state.LevelByObjective["APO01"]; ok {
		t.Fatalf("expected out-of-range APO01 level to be dropped")
	}
	if state.LevelByObjective["EDM01"] != 3 || state.LevelByObjective["DSS05"] != 1 {
		t.Fatalf("unexpected levels: %v", state.LevelByObjective)
	}
	if state.FreeText != "risk" {
		t.Fatalf("expected free text to carry over, got %q", state.FreeText)
	}
}

func TestPreviewImportDoesNotMutate(t *testing.T) {
	m, err := NewManager(testDataset(t), nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := m.ToggleObjective("EDM01"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	next, dropped := m.PreviewImport([]string{"APO01"}, nil)
	if dropped != 0 {
		t.Fatalf("expected no drops, got %d", dropped)
	}
	if !next.IsSelected("APO01") || next.IsSelected("EDM01") {
		t.Fatalf("unexpected preview state: %+v", next)
	}
	if !m.State().IsSelected("EDM01") {
		t.Fatalf("preview must not change the live state")
	}
}

func TestReadyToProceed(t *testing.T) {
	m, err := NewManager(testDataset(t), nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if m.ReadyToProceed() {
		t.Fatalf("empty selection must not be ready")
	}

	if err := m.ToggleObjective("EDM01"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := m.ToggleObjective("APO01"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := m.SetObjectiveLevel("EDM01", 2); err != nil {
		t.Fatalf("set level: %v", err)
	}
	if m.ReadyToProceed() {
		t.Fatalf("selection with an unleveled objective must not be ready")
	}

	if err := m.SetObjectiveLevel("APO01", 5); err != nil {
		t.Fatalf("set level: %v", err)
	}
	if !m.ReadyToProceed() {
		t.Fatalf("expected ready once every selected objective has a level")
	}
}

func TestManagerPrunesPersistedUnknownIDs(t *testing.T) {
	store := &memStore{
		state: State{
			SelectedObjectiveIDs: []string{"EDM01", "GONE01"},
			LevelByObjective:     map[string]int{"EDM01": 2, "GONE01": 3},
		},
		ok: true,
	}
	m, err := NewManager(testDataset(t), store)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	state := m.State()
	if state.IsSelected("GONE01") {
		t.Fatalf("expected unknown persisted id to be pruned")
	}
	if !state.IsSelected("EDM01") || state.LevelByObjective["EDM01"] != 2 {
		t.Fatalf("expected known persisted entry to survive, got %+v", state)
	}
}

func TestOnChangeFiresAfterEveryMutation(t *testing.T) {
	m, err := NewManager(testDataset(t), nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	var seen []State
	m.OnChange = func(s State) { seen = append(seen, s) }

	if err := m.ToggleObjective("EDM01"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := m.SetObjectiveLevel("EDM01", 2); err != nil {
		t.Fatalf("set level: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if !seen[1].IsSelected("EDM01") || seen[1].LevelByObjective["EDM01"] != 2 {
		t.Fatalf("unexpected notified state: %+v", seen[1])
	}
}
