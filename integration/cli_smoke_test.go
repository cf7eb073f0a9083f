package integration_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cobitscope/integration/harness"
)

func TestCLISmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	workspace := t.TempDir()
	runDir := t.TempDir()

	fixture := filepath.Join(harness.RepoRoot(t), "integration", "fixtures", "workspace-min")
	harness.CopyDir(t, fixture, workspace)

	stdout, stderr, code := harness.Run(t, binPath, runDir, []string{"--help"})
	if code != 0 {
		t.Fatalf("cobitscope --help exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout+stderr, "COBIT capability explorer") {
		t.Fatalf("expected help output to include header\nstdout:\n%s\nstderr:\n%s", stdout, stderr)
	}

	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"validate", "--workspace", workspace,
	})
	if code != 0 {
		t.Fatalf("cobitscope validate exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "2 objectives") || !strings.Contains(stdout, "4 activities") {
		t.Fatalf("unexpected validate output:\n%s", stdout)
	}

	// Build up a selection and verify the table narrows accordingly.
	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"select", "toggle", "EDM01", "--workspace", workspace,
	})
	if code != 0 {
		t.Fatalf("cobitscope select toggle exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"select", "level", "EDM01", "3", "--workspace", workspace,
	})
	if code != 0 {
		t.Fatalf("cobitscope select level exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "Ready to proceed: yes") {
		t.Fatalf("expected leveled selection to be ready:\n%s", stdout)
	}

	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"table", "--json", "--workspace", workspace,
	})
	if code != 0 {
		t.Fatalf("cobitscope table exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	var page struct {
		Total int `json:"total"`
		Rows  []struct {
			ObjectiveID string `json:"objective_id"`
			Level       string `json:"level"`
		} `json:"rows"`
	}
	if err := json.Unmarshal([]byte(stdout), &page); err != nil {
		t.Fatalf("decode table JSON: %v\noutput:\n%s", err, stdout)
	}
	// EDM01 at level 3 keeps only the level-2 activity; the level-4 and
	// uninformed rows drop.
	if page.Total != 1 {
		t.Fatalf("expected 1 row for EDM01 at level 3, got %d\noutput:\n%s", page.Total, stdout)
	}
	if page.Rows[0].ObjectiveID != "EDM01" || page.Rows[0].Level != "2" {
		t.Fatalf("unexpected row: %+v", page.Rows[0])
	}

	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"export", "--workspace", workspace,
	})
	if code != 0 {
		t.Fatalf("cobitscope export exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	exportPath := filepath.Join(workspace, "artifacts", "exports",
		"cobit_export_"+time.Now().UTC().Format("2006-01-02")+".json")
	if _, err := os.Stat(exportPath); err != nil {
		t.Fatalf("export artifact not written at %s: %v", exportPath, err)
	}

	auditPath := filepath.Join(workspace, "audit", "audit.sqlite")
	if _, err := os.Stat(auditPath); err != nil {
		t.Fatalf("audit db not written at %s: %v", auditPath, err)
	}
	requireAuditEvents(t, auditPath, []string{
		"dataset_validated",
		"selection_toggled",
		"objective_level_set",
		"table_viewed",
		"export_written",
	})
}

func TestGraphSmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	workspace := t.TempDir()
	runDir := t.TempDir()

	fixture := filepath.Join(harness.RepoRoot(t), "integration", "fixtures", "workspace-min")
	harness.CopyDir(t, fixture, workspace)

	stdout, stderr, code := harness.Run(t, binPath, runDir, []string{
		"graph", "--workspace", workspace,
	})
	if code != 0 {
		t.Fatalf("cobitscope graph exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}

	var graph struct {
		Nodes []struct {
			ID     string  `json:"id"`
			Kind   string  `json:"kind"`
			Radius float64 `json:"radius"`
		} `json:"nodes"`
		Edges []struct {
			Source string `json:"source"`
			Target string `json:"target"`
		} `json:"edges"`
	}
	if err := json.Unmarshal([]byte(stdout), &graph); err != nil {
		t.Fatalf("decode graph JSON: %v\noutput:\n%s", err, stdout)
	}

	// 2 objectives plus jira and confluence, case-insensitively merged.
	if len(graph.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d\noutput:\n%s", len(graph.Nodes), stdout)
	}
	kinds := map[string]int{}
	for _, n := range graph.Nodes {
		kinds[n.Kind]++
		if n.Radius <= 0 {
			t.Fatalf("node %s has no radius", n.ID)
		}
	}
	if kinds["objective"] != 2 || kinds["tool"] != 2 {
		t.Fatalf("unexpected node kinds %v", kinds)
	}
	// The uninformed Confluence reference at EDM01 carries no link; only
	// the informed pairs produce edges.
	if len(graph.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %+v", graph.Edges)
	}
}
