package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cobitscope/internal/audit"
	"cobitscope/internal/workspace"
)

func runInit(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	template := fs.String("template", "minimal", "Workspace template (default: minimal)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *template != "minimal" {
		return fmt.Errorf("unknown template: %s", *template)
	}
	if strings.TrimSpace(workspacePath) == "" {
		return fmt.Errorf("--workspace is required")
	}

	root, err := workspace.ResolveRoot(workspacePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create workspace root: %w", err)
	}
	ws, err := workspace.Resolve(root)
	if err != nil {
		return err
	}

	logger := audit.NewLogger(ws.AuditDBPath)
	startPayload := map[string]any{
		"workspace": ws.Root,
		"template":  *template,
	}
	if err := logger.LogEvent("cli", "workspace_init_started", startPayload); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}
	var finishErr error
	defer func() {
		finishPayload := map[string]any{
			"workspace": ws.Root,
			"template":  *template,
		}
		if finishErr != nil {
			finishPayload["error"] = finishErr.Error()
		}
		_ = logger.LogEvent("cli", "workspace_init_finished", finishPayload)
	}()

	if err := ws.EnsureDirs(); err != nil {
		finishErr = err
		return finishErr
	}

	if err := writeFileIfMissing(ws.ConfigPath, minimalConfigTemplate); err != nil {
		finishErr = err
		return finishErr
	}
	if err := writeFileIfMissing(ws.DatasetPath, minimalDatasetTemplate); err != nil {
		finishErr = err
		return finishErr
	}
	if err := writeFileIfMissing(ws.MetadataPath, minimalMetadataTemplate); err != nil {
		finishErr = err
		return finishErr
	}

	fmt.Fprintf(os.Stdout, "Initialized workspace: %s\n", ws.Root)
	fmt.Fprintln(os.Stdout, "Next steps:")
	fmt.Fprintf(os.Stdout, "  %s validate --workspace %s\n", appName, ws.Root)
	fmt.Fprintf(os.Stdout, "  %s select toggle EDM01 --workspace %s\n", appName, ws.Root)
	fmt.Fprintf(os.Stdout, "  %s table --workspace %s\n", appName, ws.Root)
	return nil
}

func writeFileIfMissing(path string, contents string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure dir for %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}

const minimalConfigTemplate = `# cobitscope workspace settings. Every field is optional.
# dataset_path: data/actividades.json
# metadata_path: data/grafo.json
# per_page: 50
# tool_exponent: 1.25
# tool_min_radius: 14
# tool_max_radius: 40
# objective_radius: 16
`

const minimalDatasetTemplate = `[
  {
    "id": "EDM01",
    "nombre": "Ensured Governance Framework Setting and Maintenance",
    "practicas": [
      {
        "id": "EDM01.01",
        "nombre": "Evaluate the governance system",
        "actividades": [
          {
            "id": "EDM01.01.01",
            "descripcion": "Analyse and identify the internal and external environmental factors",
            "nivel_capacidad": 2,
            "herramienta": "Confluence",
            "justificacion": "",
            "observaciones": "",
            "integracion": ""
          }
        ]
      }
    ]
  }
]
`

const minimalMetadataTemplate = `{
  "nodes": [
    {
      "id": "EDM01",
      "tipo": "objetivo",
      "nombre": "Ensured Governance Framework Setting and Maintenance",
      "proposito": "Provide a consistent approach integrated and aligned with the enterprise governance approach."
    },
    {
      "id": "confluence",
      "tipo": "herramienta",
      "nombre": "Confluence",
      "categoria": "Documentation",
      "casos_uso": ["Shared documentation", "Decision records"]
    }
  ],
  "links": [
    {"source": "EDM01", "target": "confluence"}
  ]
}
`
