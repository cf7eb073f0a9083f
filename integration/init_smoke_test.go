package integration_test

import (
	"os"
	"path/filepath"
	"testing"

	"cobitscope/integration/harness"
)

func TestInitSmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	runDir := t.TempDir()
	workspaceRoot := filepath.Join(t.TempDir(), "workspace-init")

	args := []string{
		"init",
		"--workspace", workspaceRoot,
	}
	stdout, stderr, code := harness.Run(t, binPath, runDir, args)
	if code != 0 {
		t.Fatalf("cobitscope init exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}

	paths := []string{
		filepath.Join(workspaceRoot, "data"),
		filepath.Join(workspaceRoot, "artifacts"),
		filepath.Join(workspaceRoot, "artifacts", "exports"),
		filepath.Join(workspaceRoot, "artifacts", "imports"),
		filepath.Join(workspaceRoot, "audit"),
		filepath.Join(workspaceRoot, "cobitscope.yml"),
		filepath.Join(workspaceRoot, "data", "actividades.json"),
		filepath.Join(workspaceRoot, "data", "grafo.json"),
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing init path %s: %v", path, err)
		}
	}

	auditPath := filepath.Join(workspaceRoot, "audit", "audit.sqlite")
	if _, err := os.Stat(auditPath); err != nil {
		t.Fatalf("audit db not written at %s: %v", auditPath, err)
	}
	requireAuditEvents(t, auditPath, []string{
		"workspace_init_started",
		"workspace_init_finished",
	})

	// The seeded workspace validates out of the box.
	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"validate", "--workspace", workspaceRoot,
	})
	if code != 0 {
		t.Fatalf("cobitscope validate exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}

	// Re-running init must not clobber existing files.
	stdout, stderr, code = harness.Run(t, binPath, runDir, args)
	if code != 0 {
		t.Fatalf("cobitscope init rerun exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
}
