package selection

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// Persisted keys. The layout is a contract with external collaborators:
// a flat list of selected ids and an {objectiveId: level} map.
const (
	keySelectedIDs   = "selected_ids"
	keyLevelsByObj   = "levels_by_objective"
	keyGlobalCeiling = "global_ceiling"
	keyFreeText      = "free_text"
	keyToolFilter    = "tool_filter"
)

// SQLiteStore persists selection state in a small key/value table.
type SQLiteStore struct {
	DBPath string
	db     *sql.DB
}

// Open opens or creates the selection state database.
func Open(path string) (*SQLiteStore, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve state db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure state db dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	s := &SQLiteStore{DBPath: absPath, db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS selection_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("create selection schema: %w", err)
	}
	return nil
}

// Load reads the persisted state. ok is false when nothing was ever
// saved.
func (s *SQLiteStore) Load() (State, bool, error) {
	rows, err := s.db.Query("SELECT key, value FROM selection_state")
	if err != nil {
		return State{}, false, fmt.Errorf("read selection state: %w", err)
	}
	defer rows.Close()

	kv := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return State{}, false, fmt.Errorf("scan selection state: %w", err)
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return State{}, false, fmt.Errorf("read selection state: %w", err)
	}
	if len(kv) == 0 {
		return State{}, false, nil
	}

	var state State
	if raw, ok := kv[keySelectedIDs]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &state.SelectedObjectiveIDs); err != nil {
			return State{}, false, fmt.Errorf("decode selected ids: %w", err)
		}
	}
	if raw, ok := kv[keyLevelsByObj]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &state.LevelByObjective); err != nil {
			return State{}, false, fmt.Errorf("decode objective levels: %w", err)
		}
	}
	if raw, ok := kv[keyGlobalCeiling]; ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return State{}, false, fmt.Errorf("decode global ceiling: %w", err)
		}
		state.GlobalCeiling = &n
	}
	state.FreeText = kv[keyFreeText]
	state.ToolFilter = kv[keyToolFilter]
	return state, true, nil
}

// Save replaces the persisted state atomically.
func (s *SQLiteStore) Save(state State) error {
	ids, err := json.Marshal(state.SortedSelection())
	if err != nil {
		return fmt.Errorf("encode selected ids: %w", err)
	}
	levels := state.LevelByObjective
	if levels == nil {
		levels = map[string]int{}
	}
	levelsJSON, err := json.Marshal(levels)
	if err != nil {
		return fmt.Errorf("encode objective levels: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM selection_state"); err != nil {
		return fmt.Errorf("clear selection state: %w", err)
	}

	put := func(k, v string) error {
		_, err := tx.Exec("INSERT INTO selection_state (key, value) VALUES (?, ?)", k, v)
		return err
	}
	if err := put(keySelectedIDs, string(ids)); err != nil {
		return fmt.Errorf("save selected ids: %w", err)
	}
	if err := put(keyLevelsByObj, string(levelsJSON)); err != nil {
		return fmt.Errorf("save objective levels: %w", err)
	}
	if state.GlobalCeiling != nil {
		if err := put(keyGlobalCeiling, strconv.Itoa(*state.GlobalCeiling)); err != nil {
			return fmt.Errorf("save global ceiling: %w", err)
		}
	}
	if state.FreeText != "" {
		if err := put(keyFreeText, state.FreeText); err != nil {
			return fmt.Errorf("save free text: %w", err)
		}
	}
	if state.ToolFilter != "" {
		if err := put(keyToolFilter, state.ToolFilter); err != nil {
			return fmt.Errorf("save tool filter: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit selection state: %w", err)
	}
	return nil
}

// Encode renders a state as stable, indented JSON in the persisted
// contract shape. Import previews diff two encodings.
func Encode(state State) (string, error) {
	levels := state.LevelByObjective
	if levels == nil {
		levels = map[string]int{}
	}
	doc := struct {
		SelectedIDs      []string       `json:"selected_ids"`
		LevelByObjective map[string]int `json:"levels_by_objective"`
		GlobalCeiling    *int           `json:"global_ceiling,omitempty"`
	}{
		SelectedIDs:      state.SortedSelection(),
		LevelByObjective: levels,
		GlobalCeiling:    state.GlobalCeiling,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode selection state: %w", err)
	}
	return string(data) + "\n", nil
}
