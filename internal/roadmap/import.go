// Package roadmap imports an externally produced objective selection: a
// CSV export of the roadmap spreadsheet with a reference column and a
// capability-level column, located by header.
package roadmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Import is the parsed result of a roadmap file: the ordered distinct
// references and the level each carries. Warnings record tolerated
// problems (unparseable levels), not failures.
type Import struct {
	Refs     []string
	Levels   map[string]int
	Warnings []string
}

// columns holds the detected header positions.
type columns struct {
	ref   int
	level int
}

// locateColumns finds the reference and level columns in a header row.
// Matching is case-insensitive on trimmed headers.
func locateColumns(header []string) (columns, error) {
	cols := columns{ref: -1, level: -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if cols.ref == -1 {
			if h == "ref" || h == "id" || strings.Contains(h, "referenc") ||
				strings.Contains(h, "id objetivo") || strings.HasPrefix(h, "ogg") {
				cols.ref = i
				continue
			}
		}
		if cols.level == -1 {
			if strings.Contains(h, "madur") || strings.Contains(h, "nivel") ||
				strings.Contains(h, "capab") {
				cols.level = i
			}
		}
	}
	if cols.ref == -1 {
		return cols, fmt.Errorf("reference column not found in header")
	}
	if cols.level == -1 {
		return cols, fmt.Errorf("capability level column not found in header")
	}
	return cols, nil
}

// ReadFile parses a roadmap CSV from disk.
func ReadFile(path string) (*Import, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roadmap: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a roadmap CSV. The first row is the header; rows without a
// reference are skipped; duplicate references keep the first level seen.
func Read(r io.Reader) (*Import, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("roadmap file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read roadmap header: %w", err)
	}
	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	imp := &Import{Levels: make(map[string]int)}
	seen := make(map[string]struct{})

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roadmap row %d: %w", line, err)
		}

		ref := field(record, cols.ref)
		if ref == "" {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		imp.Refs = append(imp.Refs, ref)

		raw := field(record, cols.level)
		if raw == "" {
			continue
		}
		lvl, err := strconv.Atoi(raw)
		if err != nil {
			imp.Warnings = append(imp.Warnings,
				fmt.Sprintf("row %d: level %q for %s is not a number", line, raw, ref))
			continue
		}
		imp.Levels[ref] = lvl
	}

	if len(imp.Refs) == 0 {
		return nil, fmt.Errorf("no references found in roadmap")
	}
	return imp, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
