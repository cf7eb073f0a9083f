package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cobitscope/integration/harness"
)

func TestSelectImportSmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	workspace := t.TempDir()
	runDir := t.TempDir()

	fixture := filepath.Join(harness.RepoRoot(t), "integration", "fixtures", "workspace-min")
	harness.CopyDir(t, fixture, workspace)

	csvPath := filepath.Join(workspace, "roadmap.csv")
	csvDoc := "Referencia,Nivel de madurez\nEDM01,3\nAPO01,2\nZZZ99,1\n"
	if err := os.WriteFile(csvPath, []byte(csvDoc), 0o644); err != nil {
		t.Fatalf("write roadmap csv: %v", err)
	}

	// Preview only: the stored selection stays untouched.
	stdout, stderr, code := harness.Run(t, binPath, runDir, []string{
		"select", "import", "--from", csvPath, "--workspace", workspace,
	})
	if code != 0 {
		t.Fatalf("cobitscope select import exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "selection/imported") {
		t.Fatalf("expected a diff preview:\n%s", stdout)
	}
	if !strings.Contains(stdout, "--apply") {
		t.Fatalf("expected apply hint:\n%s", stdout)
	}

	diffPath := filepath.Join(workspace, "artifacts", "imports", "selection.diff")
	if _, err := os.Stat(diffPath); err != nil {
		t.Fatalf("preview artifact not written at %s: %v", diffPath, err)
	}

	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"select", "show", "--workspace", workspace,
	})
	if code != 0 {
		t.Fatalf("cobitscope select show exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "Selected objectives: (none)") {
		t.Fatalf("preview must not change the selection:\n%s", stdout)
	}

	// Apply: unknown refs drop, known refs and levels land.
	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"select", "import", "--from", csvPath, "--apply", "--workspace", workspace,
	})
	if code != 0 {
		t.Fatalf("cobitscope select import --apply exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "Imported 2 objectives") {
		t.Fatalf("expected 2 imported objectives:\n%s", stdout)
	}
	if !strings.Contains(stdout, "1 entries dropped") {
		t.Fatalf("expected dropped-entry report:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Ready to proceed: yes") {
		t.Fatalf("expected fully leveled import to be ready:\n%s", stdout)
	}

	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"select", "show", "--workspace", workspace,
	})
	if code != 0 {
		t.Fatalf("cobitscope select show exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "APO01") || !strings.Contains(stdout, "EDM01") {
		t.Fatalf("expected imported selection persisted:\n%s", stdout)
	}

	auditPath := filepath.Join(workspace, "audit", "audit.sqlite")
	requireAuditEvents(t, auditPath, []string{"selection_imported"})
}
