package roadmap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"cobitscope/internal/selection"
)

// Preview renders a unified diff between the current selection state and
// the state a roadmap import would produce. An empty string means the
// import changes nothing.
func Preview(current, proposed selection.State) (string, error) {
	oldText, err := selection.Encode(current)
	if err != nil {
		return "", err
	}
	newText, err := selection.Encode(proposed)
	if err != nil {
		return "", err
	}

	diff := difflib.UnifiedDiff{
		A:        strings.Split(oldText, "\n"),
		B:        strings.Split(newText, "\n"),
		FromFile: "selection/current",
		ToFile:   "selection/imported",
		Context:  3,
	}
	diffText, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff selection states: %w", err)
	}
	if strings.TrimSpace(diffText) == "" {
		return "", nil
	}
	return diffText, nil
}

// WritePreview stores the diff under the artifacts directory and returns
// its path. Nothing is written for an empty diff.
func WritePreview(artifactsDir, diffText string) (string, error) {
	if strings.TrimSpace(diffText) == "" {
		return "", nil
	}
	dir := filepath.Join(artifactsDir, "imports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure imports dir: %w", err)
	}
	path := filepath.Join(dir, "selection.diff")
	if err := os.WriteFile(path, []byte(diffText), 0o644); err != nil {
		return "", fmt.Errorf("write import preview: %w", err)
	}
	return path, nil
}
