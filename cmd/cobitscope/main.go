package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cobitscope/internal/audit"
	"cobitscope/internal/catalog"
	"cobitscope/internal/config"
	"cobitscope/internal/dataset"
	"cobitscope/internal/engine"
	"cobitscope/internal/report"
	"cobitscope/internal/roadmap"
	"cobitscope/internal/selection"
	"cobitscope/internal/workspace"
)

const appName = "cobitscope"

func main() {
	flag.String("workspace", "", "Path to workspace root")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s: COBIT capability explorer\n\n", appName)
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [command] [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  init      Initialize a new workspace")
		fmt.Fprintln(os.Stderr, "  validate  Load and validate the dataset")
		fmt.Fprintln(os.Stderr, "  table     Show the filtered activity table")
		fmt.Fprintln(os.Stderr, "  graph     Emit the filtered graph projection")
		fmt.Fprintln(os.Stderr, "  summary   Show summary statistics")
		fmt.Fprintln(os.Stderr, "  export    Write the export report artifact")
		fmt.Fprintln(os.Stderr, "  select    Manage the objective selection")
		fmt.Fprintln(os.Stderr, "  status    Show selection state and recent events")
		fmt.Fprintln(os.Stderr, "  help      Show this help")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	workspacePath, remaining, err := extractWorkspaceFlag(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	args := remaining
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		flag.Usage()
		return
	}

	var runErr error
	switch args[0] {
	case "init":
		runErr = runInit(args[1:], workspacePath)
	case "validate":
		runErr = runValidate(args[1:], workspacePath)
	case "table":
		runErr = runTable(args[1:], workspacePath)
	case "graph":
		runErr = runGraph(args[1:], workspacePath)
	case "summary":
		runErr = runSummary(args[1:], workspacePath)
	case "export":
		runErr = runExport(args[1:], workspacePath)
	case "select":
		runErr = runSelect(args[1:], workspacePath)
	case "status":
		runErr = runStatus(args[1:], workspacePath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}

func extractWorkspaceFlag(args []string) (string, []string, error) {
	var workspacePath string
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--workspace" {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--workspace requires a value")
			}
			workspacePath = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--workspace=") {
			workspacePath = strings.TrimPrefix(arg, "--workspace=")
			continue
		}
		remaining = append(remaining, arg)
	}
	return workspacePath, remaining, nil
}

// pathOverrides are the per-command flag overrides for workspace paths.
type pathOverrides struct {
	Dataset  string
	Metadata string
	Config   string
	AuditDB  string
	StateDB  string
}

func registerOverrides(fs *flag.FlagSet) *pathOverrides {
	o := &pathOverrides{}
	fs.StringVar(&o.Dataset, "dataset", "", "Path to activities dataset (default: <workspace>/data/actividades.json)")
	fs.StringVar(&o.Metadata, "metadata", "", "Path to graph metadata (default: <workspace>/data/grafo.json)")
	fs.StringVar(&o.Config, "config", "", "Path to config file (default: <workspace>/cobitscope.yml)")
	fs.StringVar(&o.AuditDB, "audit-db", "", "Path to audit SQLite DB (default: <workspace>/audit/audit.sqlite)")
	fs.StringVar(&o.StateDB, "state-db", "", "Path to selection state DB (default: <workspace>/audit/state.sqlite)")
	return o
}

// appEnv is everything a loaded command works with.
type appEnv struct {
	WS      *workspace.Workspace
	Cfg     config.Config
	Dataset *dataset.Dataset
	Catalog *catalog.Catalog
	Engine  *engine.Engine
	Store   *selection.SQLiteStore
	Manager *selection.Manager
	Logger  *audit.Logger
}

func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func loadEnv(workspacePath string, o *pathOverrides) (*appEnv, error) {
	root := strings.TrimSpace(workspacePath)
	if root == "" {
		return nil, fmt.Errorf("--workspace is required")
	}
	ws, err := workspace.Resolve(root)
	if err != nil {
		return nil, err
	}
	if err := ws.EnsureDirs(); err != nil {
		return nil, err
	}

	configPath := ws.ConfigPath
	if o.Config != "" {
		configPath, err = ws.ResolvePath(o.Config)
		if err != nil {
			return nil, fmt.Errorf("resolve --config: %w", err)
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	datasetPath := ws.DatasetPath
	if cfg.DatasetPath != "" {
		datasetPath, err = ws.ResolvePath(cfg.DatasetPath)
		if err != nil {
			return nil, fmt.Errorf("resolve dataset path: %w", err)
		}
	}
	if o.Dataset != "" {
		datasetPath, err = ws.ResolvePath(o.Dataset)
		if err != nil {
			return nil, fmt.Errorf("resolve --dataset: %w", err)
		}
	}

	metadataPath := ws.MetadataPath
	if cfg.MetadataPath != "" {
		metadataPath, err = ws.ResolvePath(cfg.MetadataPath)
		if err != nil {
			return nil, fmt.Errorf("resolve metadata path: %w", err)
		}
	}
	if o.Metadata != "" {
		metadataPath, err = ws.ResolvePath(o.Metadata)
		if err != nil {
			return nil, fmt.Errorf("resolve --metadata: %w", err)
		}
	}

	ds, err := dataset.LoadFile(datasetPath)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.LoadFile(metadataPath)
	if err != nil {
		return nil, err
	}

	stateDB := ws.StateDBPath
	if o.StateDB != "" {
		stateDB, err = ws.ResolvePath(o.StateDB)
		if err != nil {
			return nil, fmt.Errorf("resolve --state-db: %w", err)
		}
	}
	store, err := selection.Open(stateDB)
	if err != nil {
		return nil, err
	}
	manager, err := selection.NewManager(ds, store)
	if err != nil {
		store.Close()
		return nil, err
	}

	eng := engine.New(ds, cat)
	eng.Scale = catalog.NewScale(cat, cfg.ToolExponent, cfg.ToolMinRadius, cfg.ToolMaxRadius)
	eng.ObjectiveRadius = cfg.ObjectiveRadius
	manager.OnChange = eng.Recompute

	auditDB := ws.AuditDBPath
	if o.AuditDB != "" {
		auditDB, err = ws.ResolvePath(o.AuditDB)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("resolve --audit-db: %w", err)
		}
	}

	return &appEnv{
		WS:      ws,
		Cfg:     cfg,
		Dataset: ds,
		Catalog: cat,
		Engine:  eng,
		Store:   store,
		Manager: manager,
		Logger:  audit.NewLogger(auditDB),
	}, nil
}

// filterFlags lets table/graph/summary/export override the persisted
// selection from the command line.
type filterFlags struct {
	Objectives string
	Ceiling    int
	Text       string
	Tool       string
	NoState    bool
}

func registerFilterFlags(fs *flag.FlagSet) *filterFlags {
	f := &filterFlags{}
	fs.StringVar(&f.Objectives, "objectives", "", "Comma-separated objective ids (overrides the stored selection)")
	fs.IntVar(&f.Ceiling, "ceiling", 0, "Global capability ceiling 1..5 (overrides the stored ceiling)")
	fs.StringVar(&f.Text, "text", "", "Free-text filter (overrides the stored filter)")
	fs.StringVar(&f.Tool, "tool", "", "Exact tool filter (overrides the stored filter)")
	fs.BoolVar(&f.NoState, "no-state", false, "Ignore the stored selection entirely")
	return f
}

func (f *filterFlags) apply(env *appEnv) (selection.State, error) {
	state := env.Manager.State()
	if f.NoState {
		state = selection.State{}
	}
	if f.Objectives != "" {
		state.SelectedObjectiveIDs = nil
		state.LevelByObjective = nil
		for _, id := range strings.Split(f.Objectives, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if !env.Dataset.Has(id) {
				return state, fmt.Errorf("unknown objective %q", id)
			}
			state.SelectedObjectiveIDs = append(state.SelectedObjectiveIDs, id)
		}
	}
	if f.Ceiling != 0 {
		if f.Ceiling < 1 || f.Ceiling > 5 {
			return state, fmt.Errorf("--ceiling must be between 1 and 5, got %d", f.Ceiling)
		}
		c := f.Ceiling
		state.GlobalCeiling = &c
	}
	if f.Text != "" {
		state.FreeText = f.Text
	}
	if f.Tool != "" {
		state.ToolFilter = f.Tool
	}
	return state, nil
}

func runValidate(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	objectives := len(env.Dataset.Objectives)
	practices := 0
	activities := 0
	for _, obj := range env.Dataset.Objectives {
		practices += len(obj.Practices)
		for _, pr := range obj.Practices {
			activities += len(pr.Activities)
		}
	}
	tools := env.Dataset.Tools()

	payload := map[string]any{
		"objectives": objectives,
		"practices":  practices,
		"activities": activities,
		"tools":      len(tools),
	}
	if err := env.Logger.LogEvent("cli", "dataset_validated", payload); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	fmt.Fprintf(os.Stdout, "Dataset OK: %d objectives, %d practices, %d activities, %d tools\n",
		objectives, practices, activities, len(tools))
	if env.Catalog == nil {
		fmt.Fprintln(os.Stdout, "Graph metadata: not present (nodes render without display metadata)")
	} else {
		fmt.Fprintf(os.Stdout, "Graph metadata: %d nodes, %d links\n",
			len(env.Catalog.Nodes), len(env.Catalog.Links))
	}
	return nil
}

func runTable(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("table", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	f := registerFilterFlags(fs)
	page := fs.Int("page", 1, "Page number (1-based)")
	perPage := fs.Int("per-page", 0, "Rows per page (default from config)")
	asJSON := fs.Bool("json", false, "Emit the page as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	state, err := f.apply(env)
	if err != nil {
		return err
	}
	proj := env.Engine.Compute(state)

	size := *perPage
	if size <= 0 {
		size = env.Cfg.PerPage
	}
	rows := proj.Table.Page(*page, size)

	payload := map[string]any{
		"total":    proj.Table.Total(),
		"page":     *page,
		"per_page": size,
	}
	if err := env.Logger.LogEvent("cli", "table_viewed", payload); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	if *asJSON {
		out := tablePage{
			Total:   proj.Table.Total(),
			Page:    *page,
			PerPage: size,
			Pages:   proj.Table.Pages(size),
			Rows:    rows,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal table page: %w", err)
		}
		data = append(data, '\n')
		_, err = os.Stdout.Write(data)
		return err
	}

	printTable(proj, rows, *page, size)
	return nil
}

func runGraph(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	f := registerFilterFlags(fs)
	output := fs.String("output", "", "Write the projection to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	state, err := f.apply(env)
	if err != nil {
		return err
	}
	proj := env.Engine.Compute(state)

	payload := map[string]any{
		"nodes": len(proj.Graph.Nodes),
		"edges": len(proj.Graph.Edges),
	}
	if err := env.Logger.LogEvent("cli", "graph_projected", payload); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	data, err := json.MarshalIndent(proj.Graph, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph projection: %w", err)
	}
	data = append(data, '\n')

	if *output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	outPath, err := env.WS.ResolvePath(*output)
	if err != nil {
		return fmt.Errorf("resolve --output: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write graph projection: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Wrote graph projection: %s\n", outPath)
	return nil
}

func runSummary(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	f := registerFilterFlags(fs)
	asJSON := fs.Bool("json", false, "Emit the summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	state, err := f.apply(env)
	if err != nil {
		return err
	}
	proj := env.Engine.Compute(state)

	if err := env.Logger.LogEvent("cli", "summary_viewed", map[string]any{
		"total": proj.Summary.TotalActivities,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	if *asJSON {
		data, err := json.MarshalIndent(proj.Summary, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		data = append(data, '\n')
		_, err = os.Stdout.Write(data)
		return err
	}

	printSummary(proj.Summary)
	return nil
}

func runExport(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	f := registerFilterFlags(fs)
	output := fs.String("output", "", "Output path (default: <workspace>/artifacts/exports/cobit_export_<date>.json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	state, err := f.apply(env)
	if err != nil {
		return err
	}
	proj := env.Engine.Compute(state)

	now := time.Now()
	outPath := *output
	if outPath == "" {
		outPath = report.ExportPathForDate(filepath.Join(env.WS.ArtifactsDir, "exports"), now)
	} else {
		outPath, err = env.WS.ResolvePath(outPath)
		if err != nil {
			return fmt.Errorf("resolve --output: %w", err)
		}
	}

	exp := report.BuildExport(proj.Table, now)
	if err := report.WriteExport(outPath, exp); err != nil {
		_ = env.Logger.LogEvent("cli", "export_failed", map[string]any{
			"output": outPath,
			"error":  err.Error(),
		})
		return err
	}

	if err := env.Logger.LogEvent("cli", "export_written", map[string]any{
		"output": outPath,
		"rows":   len(exp.Rows),
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	fmt.Fprintf(os.Stdout, "Wrote export: %s\n", outPath)
	return nil
}

func runSelect(args []string, workspacePath string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		return fmt.Errorf("%s select: missing subcommand (toggle|level|ceiling|text|tool|clear|show|import)", appName)
	}

	switch args[0] {
	case "toggle":
		return runSelectToggle(args[1:], workspacePath)
	case "level":
		return runSelectLevel(args[1:], workspacePath)
	case "ceiling":
		return runSelectCeiling(args[1:], workspacePath)
	case "text":
		return runSelectText(args[1:], workspacePath)
	case "tool":
		return runSelectTool(args[1:], workspacePath)
	case "clear":
		return runSelectClear(args[1:], workspacePath)
	case "show":
		return runSelectShow(args[1:], workspacePath)
	case "import":
		return runSelectImport(args[1:], workspacePath)
	default:
		return fmt.Errorf("%s select: unknown subcommand %q", appName, args[0])
	}
}

func runSelectToggle(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("select toggle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids := fs.Args()
	if len(ids) == 0 {
		return fmt.Errorf("objective id is required")
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	for _, id := range ids {
		if err := env.Manager.ToggleObjective(id); err != nil {
			return err
		}
	}

	state := env.Manager.State()
	if err := env.Logger.LogEvent("cli", "selection_toggled", map[string]any{
		"ids":      ids,
		"selected": state.SortedSelection(),
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	fmt.Fprintf(os.Stdout, "Selected objectives: %s\n", joinOrDash(state.SortedSelection()))
	return nil
}

func runSelectLevel(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("select level", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("usage: %s select level <objective-id> <1..5|unset>", appName)
	}
	id := rest[0]

	level := 0
	if rest[1] != "unset" {
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("parse level: %w", err)
		}
		level = n
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.Manager.SetObjectiveLevel(id, level); err != nil {
		return err
	}

	if err := env.Logger.LogEvent("cli", "objective_level_set", map[string]any{
		"objective_id": id,
		"level":        level,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	if level == 0 {
		fmt.Fprintf(os.Stdout, "Unset level for %s\n", id)
	} else {
		fmt.Fprintf(os.Stdout, "Set %s to capability level %d\n", id, level)
	}
	printReady(env.Manager)
	return nil
}

func runSelectCeiling(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("select ceiling", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return fmt.Errorf("usage: %s select ceiling <1..5|clear>", appName)
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	var ceiling *int
	if rest[0] != "clear" {
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("parse ceiling: %w", err)
		}
		ceiling = &n
	}
	if err := env.Manager.SetGlobalCeiling(ceiling); err != nil {
		return err
	}

	payload := map[string]any{}
	if ceiling != nil {
		payload["ceiling"] = *ceiling
	}
	if err := env.Logger.LogEvent("cli", "global_ceiling_set", payload); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	if ceiling == nil {
		fmt.Fprintln(os.Stdout, "Cleared global capability ceiling (all levels pass)")
	} else {
		fmt.Fprintf(os.Stdout, "Global capability ceiling: ≤ %d\n", *ceiling)
	}
	return nil
}

func runSelectText(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("select text", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	text := strings.Join(fs.Args(), " ")
	if err := env.Manager.SetFreeText(text); err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintln(os.Stdout, "Cleared free-text filter")
	} else {
		fmt.Fprintf(os.Stdout, "Free-text filter: %q\n", text)
	}
	return nil
}

func runSelectTool(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("select tool", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return fmt.Errorf("usage: %s select tool <name|clear>", appName)
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	tool := rest[0]
	if tool == "clear" {
		tool = ""
	}
	if err := env.Manager.SetToolFilter(tool); err != nil {
		return err
	}
	if tool == "" {
		fmt.Fprintln(os.Stdout, "Cleared tool filter")
	} else {
		fmt.Fprintf(os.Stdout, "Tool filter: %q\n", tool)
	}
	return nil
}

func runSelectClear(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("select clear", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.Manager.ClearAll(); err != nil {
		return err
	}
	if err := env.Logger.LogEvent("cli", "selection_cleared", map[string]any{}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}
	fmt.Fprintln(os.Stdout, "Cleared selection, levels and filters")
	return nil
}

func runSelectShow(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("select show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	asJSON := fs.Bool("json", false, "Emit the state as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	state := env.Manager.State()
	if *asJSON {
		text, err := selection.Encode(state)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, text)
		return nil
	}

	printState(env, state)
	printReady(env.Manager)
	return nil
}

func runSelectImport(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("select import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	from := fs.String("from", "", "Path to roadmap CSV")
	apply := fs.Bool("apply", false, "Apply the import (default: preview only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *from == "" {
		return fmt.Errorf("--from path is required")
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	fromPath, err := env.WS.ResolvePath(*from)
	if err != nil {
		return fmt.Errorf("resolve --from: %w", err)
	}

	imp, err := roadmap.ReadFile(fromPath)
	if err != nil {
		_ = env.Logger.LogEvent("cli", "selection_import_failed", map[string]any{
			"from":  fromPath,
			"error": err.Error(),
		})
		return err
	}
	for _, w := range imp.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	proposed, dropped := env.Manager.PreviewImport(imp.Refs, imp.Levels)
	diffText, err := roadmap.Preview(env.Manager.State(), proposed)
	if err != nil {
		return err
	}

	if diffText == "" {
		fmt.Fprintln(os.Stdout, "Import matches the current selection; nothing to change.")
		return nil
	}

	diffPath, err := roadmap.WritePreview(env.WS.ArtifactsDir, diffText)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, diffText)
	if diffPath != "" {
		fmt.Fprintf(os.Stdout, "Preview written: %s\n", diffPath)
	}
	if dropped > 0 {
		fmt.Fprintf(os.Stdout, "%d entries dropped (unknown objective or level outside 1..5)\n", dropped)
	}

	if !*apply {
		fmt.Fprintf(os.Stdout, "Run again with --apply to replace the stored selection.\n")
		return nil
	}

	if _, err := env.Manager.ImportExternalSelection(imp.Refs, imp.Levels); err != nil {
		return err
	}
	if err := env.Logger.LogEvent("cli", "selection_imported", map[string]any{
		"from":     fromPath,
		"refs":     len(imp.Refs),
		"dropped":  dropped,
		"selected": env.Manager.State().SortedSelection(),
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	fmt.Fprintf(os.Stdout, "Imported %d objectives from %s\n",
		len(env.Manager.State().SelectedObjectiveIDs), filepath.Base(fromPath))
	printReady(env.Manager)
	return nil
}

func runStatus(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	events := fs.Int("events", 5, "Recent audit events to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := loadEnv(workspacePath, o)
	if err != nil {
		return err
	}
	defer env.Close()

	state := env.Manager.State()
	printState(env, state)
	printReady(env.Manager)

	recent, err := env.Logger.Recent(*events)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nRecent events (last %d):\n", len(recent))
	for _, ev := range recent {
		fmt.Fprintf(os.Stdout, "  %s  %-24s %s\n",
			ev.Timestamp.Format(time.RFC3339), ev.Type, ev.PayloadJSON)
	}
	return nil
}
