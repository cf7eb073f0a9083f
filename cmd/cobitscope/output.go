package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"cobitscope/internal/dataset"
	"cobitscope/internal/engine"
	"cobitscope/internal/projection"
	"cobitscope/internal/report"
	"cobitscope/internal/selection"
)

// tablePage is the JSON shape of one table page.
type tablePage struct {
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
	Pages   int              `json:"pages"`
	Rows    []projection.Row `json:"rows"`
}

func printTable(proj engine.Projections, rows []projection.Row, page, perPage int) {
	fmt.Println(proj.Summary.Headline())
	if len(rows) == 0 {
		return
	}
	fmt.Printf("Page %d/%d (%d rows per page, %d total)\n\n",
		page, proj.Table.Pages(perPage), perPage, proj.Table.Total())

	lastObjective := ""
	lastPractice := ""
	for _, row := range rows {
		if row.Objective != lastObjective {
			fmt.Printf("%s\n", color.New(color.FgCyan, color.Bold).Sprint(row.Objective))
			lastObjective = row.Objective
			lastPractice = ""
		}
		if row.Practice != lastPractice {
			fmt.Printf("  %s\n", color.New(color.FgBlue).Sprint(row.Practice))
			lastPractice = row.Practice
		}
		fmt.Printf("    %s  %s  %s\n",
			levelBadge(row.RawLevel), toolBadge(row.Tool), row.Activity)
		if row.Justification != dataset.Placeholder {
			fmt.Printf("        %s\n", row.Justification)
		}
	}
}

func levelBadge(level *int) string {
	if level == nil {
		return color.New(color.FgHiBlack).Sprint("[N-]")
	}
	switch {
	case *level <= 2:
		return color.New(color.FgGreen).Sprintf("[N%d]", *level)
	case *level == 3:
		return color.New(color.FgYellow).Sprintf("[N%d]", *level)
	default:
		return color.New(color.FgRed).Sprintf("[N%d]", *level)
	}
}

func toolBadge(tool string) string {
	if tool == dataset.Placeholder {
		return color.New(color.FgHiBlack).Sprintf("%-14s", "(no tool)")
	}
	return color.New(color.FgMagenta).Sprintf("%-14s", tool)
}

func printSummary(s report.Summary) {
	fmt.Println(s.Headline())
	if s.TotalActivities == 0 {
		return
	}

	fmt.Printf("\n%s\n", color.New(color.Bold).Sprint("Per domain"))
	for _, d := range s.PerDomain {
		fmt.Printf("  %-4s %3d objectives  %4d activities\n",
			d.Domain, d.ObjectiveCount, d.ActivityCount)
	}

	fmt.Printf("\n%s\n", color.New(color.Bold).Sprint("Per capability level"))
	for _, l := range s.PerLevel {
		fmt.Printf("  N%d %5d\n", l.Level, l.Count)
	}
	if s.NoLevelCount > 0 {
		fmt.Printf("  %s %5d\n", color.New(color.FgHiBlack).Sprint("N-"), s.NoLevelCount)
	}

	fmt.Printf("\n%s\n", color.New(color.Bold).Sprint("Per tool"))
	for _, t := range s.PerTool {
		name := t.Tool
		if name == dataset.Placeholder {
			name = "(no tool)"
		}
		fmt.Printf("  %-30s %5d\n", name, t.Count)
	}
}

func printState(env *appEnv, state selection.State) {
	fmt.Printf("Workspace: %s\n", env.WS.Root)
	fmt.Printf("Selected objectives: %s\n", joinOrDash(state.SortedSelection()))

	for _, id := range state.SortedSelection() {
		if lvl, ok := state.LevelByObjective[id]; ok {
			fmt.Printf("  %-6s target level %d\n", id, lvl)
		} else {
			fmt.Printf("  %-6s %s\n", id, color.New(color.FgYellow).Sprint("level not set"))
		}
	}

	if state.GlobalCeiling != nil {
		fmt.Printf("Global ceiling: ≤ %d\n", *state.GlobalCeiling)
	}
	if state.FreeText != "" {
		fmt.Printf("Free-text filter: %q\n", state.FreeText)
	}
	if state.ToolFilter != "" {
		fmt.Printf("Tool filter: %q\n", state.ToolFilter)
	}
}

func printReady(m *selection.Manager) {
	if m.ReadyToProceed() {
		fmt.Fprintf(os.Stdout, "Ready to proceed: %s\n", color.New(color.FgGreen).Sprint("yes"))
	} else {
		fmt.Fprintf(os.Stdout, "Ready to proceed: %s (every selected objective needs a level 1..5)\n",
			color.New(color.FgYellow).Sprint("no"))
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
