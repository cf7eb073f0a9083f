package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cobitscope/internal/projection"
)

// ExportSchemaVersion tags the export artifact format.
const ExportSchemaVersion = 1

// Export is the artifact handed to the reporting/export collaborator:
// the three summary structures plus the full, unpaginated table.
type Export struct {
	SchemaVersion int              `json:"schema_version"`
	GeneratedAt   string           `json:"generated_at"`
	Summary       Summary          `json:"summary"`
	Rows          []projection.Row `json:"rows"`
}

// BuildExport assembles the export from a filtered projection.
func BuildExport(t projection.Table, now time.Time) Export {
	return Export{
		SchemaVersion: ExportSchemaVersion,
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		Summary:       Summarize(t),
		Rows:          t.Rows,
	}
}

// WriteExport writes the export artifact as indented JSON.
func WriteExport(path string, exp Export) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure export dir: %w", err)
	}
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// ExportPathForDate names the export artifact for a given day, mirroring
// the snapshot naming convention.
func ExportPathForDate(dir string, asOf time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("cobit_export_%s.json", asOf.UTC().Format("2006-01-02")))
}
