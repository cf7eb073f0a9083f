// Package report derives summary statistics from a table projection and
// writes the export artifact. Counts always reflect the currently
// filtered projection, never the full dataset.
package report

import (
	"fmt"
	"sort"
	"strings"

	"cobitscope/internal/dataset"
	"cobitscope/internal/projection"
)

// ToolCount is one per-tool counter. Tool "-" groups the rows without a
// tool.
type ToolCount struct {
	Tool  string `json:"tool"`
	Count int    `json:"count"`
}

// DomainCount aggregates one domain: distinct in-scope objectives and
// their activity rows.
type DomainCount struct {
	Domain         dataset.Domain `json:"domain"`
	ObjectiveCount int            `json:"objective_count"`
	ActivityCount  int            `json:"activity_count"`
}

// LevelCount counts activities at one exact capability level.
type LevelCount struct {
	Level int `json:"level"`
	Count int `json:"count"`
}

// Summary holds the three derived structures consumed by the on-screen
// summary and the export.
type Summary struct {
	TotalActivities int `json:"total_activities"`

	// PerTool is sorted by count descending, ties by ascending lexical
	// tool name.
	PerTool []ToolCount `json:"per_tool"`

	// PerDomain lists EDM, APO, BAI, DSS, MEA in fixed order.
	PerDomain []DomainCount `json:"per_domain"`

	// PerLevel lists levels 1..5 in order with exact-level counts.
	PerLevel []LevelCount `json:"per_level"`

	// NoLevelCount counts rows without an informed level, so that
	// sum(PerLevel) + NoLevelCount == TotalActivities.
	NoLevelCount int `json:"no_level_count"`
}

// Summarize computes the summary over an already filtered projection.
// A zero-row projection yields all-zero counts.
func Summarize(t projection.Table) Summary {
	s := Summary{TotalActivities: len(t.Rows)}

	toolCounts := make(map[string]int)
	domainObjectives := make(map[dataset.Domain]map[string]struct{})
	domainActivities := make(map[dataset.Domain]int)
	levelCounts := make(map[int]int)

	for _, row := range t.Rows {
		toolCounts[row.Tool]++

		if domainObjectives[row.Domain] == nil {
			domainObjectives[row.Domain] = make(map[string]struct{})
		}
		domainObjectives[row.Domain][row.ObjectiveID] = struct{}{}
		domainActivities[row.Domain]++

		if row.RawLevel == nil {
			s.NoLevelCount++
		} else {
			levelCounts[*row.RawLevel]++
		}
	}

	s.PerTool = make([]ToolCount, 0, len(toolCounts))
	for tool, count := range toolCounts {
		s.PerTool = append(s.PerTool, ToolCount{Tool: tool, Count: count})
	}
	sort.Slice(s.PerTool, func(i, j int) bool {
		if s.PerTool[i].Count != s.PerTool[j].Count {
			return s.PerTool[i].Count > s.PerTool[j].Count
		}
		return s.PerTool[i].Tool < s.PerTool[j].Tool
	})

	for _, dom := range dataset.Domains {
		s.PerDomain = append(s.PerDomain, DomainCount{
			Domain:         dom,
			ObjectiveCount: len(domainObjectives[dom]),
			ActivityCount:  domainActivities[dom],
		})
	}

	for lvl := 1; lvl <= 5; lvl++ {
		s.PerLevel = append(s.PerLevel, LevelCount{Level: lvl, Count: levelCounts[lvl]})
	}

	return s
}

// Headline renders the one-line description shown above the table. An
// empty projection gets an informational message, not an error.
func (s Summary) Headline() string {
	if s.TotalActivities == 0 {
		return "No activities match the applied filters."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Total activities: %d", s.TotalActivities)
	if len(s.PerTool) > 0 {
		top := s.PerTool[0]
		fmt.Fprintf(&b, " · top tool: %s (%d)", top.Tool, top.Count)
	}
	return b.String()
}
