// Package filter reduces the normalized dataset to the triples and links
// in scope for a given selection state. Reduction is a pure function of
// (dataset, state, external refs); re-invoking simply supersedes the
// prior result.
package filter

import (
	"sort"
	"strings"

	"cobitscope/internal/dataset"
	"cobitscope/internal/selection"
)

// Params parameterizes one reduction.
type Params struct {
	State selection.State

	// ExternalRefs is an externally supplied allowed-objective list
	// (e.g. an imported roadmap). Empty means no external restriction.
	ExternalRefs []string
}

// Reduced is the filtered dataset: surviving objectives with their
// surviving practices and activities, plus the qualifying
// (objective, tool) links.
type Reduced struct {
	Objectives []ScopedObjective
}

// ScopedObjective is one in-scope objective after reduction. Links hold
// the tools linked to it under the active ceiling, keyed and ordered by
// the tool identity (lowercased normalized name).
type ScopedObjective struct {
	dataset.Objective
	Ceiling *int
	Links   []Link
}

// Link is a derived (objective, tool) relationship. MinLevel is the
// minimum informed level among the objective's activities referencing
// the tool; the link qualifies at any ceiling >= MinLevel.
type Link struct {
	ObjectiveID string
	Tool        string
	MinLevel    int
}

// EffectiveObjectives resolves which objective ids are in scope:
//
//   - no selection and no external refs: all objectives (fail-open
//     default for the first render);
//   - external refs present: selection ∩ refs, falling back to the refs
//     alone when the intersection is empty, never to the full dataset;
//   - otherwise: the selection.
//
// Ids unknown to the dataset are ignored. Order follows dataset source
// order.
func EffectiveObjectives(ds *dataset.Dataset, p Params) []string {
	refs := known(ds, p.ExternalRefs)
	sel := known(ds, p.State.SelectedObjectiveIDs)

	var base map[string]struct{}
	switch {
	case len(refs) > 0:
		base = intersect(sel, refs)
		if len(base) == 0 {
			base = toSet(refs)
		}
	case len(sel) > 0:
		base = toSet(sel)
	default:
		return ds.ObjectiveIDs()
	}

	ordered := make([]string, 0, len(base))
	for _, id := range ds.ObjectiveIDs() {
		if _, ok := base[id]; ok {
			ordered = append(ordered, id)
		}
	}
	return ordered
}

// Reduce applies the full filter semantics and returns the reduced
// dataset: per effective objective, the practices and activities that
// survive the text/tool/ceiling predicates, and the qualifying links.
func Reduce(ds *dataset.Dataset, p Params) *Reduced {
	out := &Reduced{}
	needle := strings.ToLower(strings.TrimSpace(p.State.FreeText))
	toolFilter := dataset.ToolKey(p.State.ToolFilter)
	toolFilterSet := strings.TrimSpace(p.State.ToolFilter) != ""

	for _, id := range EffectiveObjectives(ds, p) {
		obj, ok := ds.Objective(id)
		if !ok {
			continue
		}
		ceiling := p.State.CeilingFor(id)

		scoped := ScopedObjective{
			Objective: dataset.Objective{
				ID:     obj.ID,
				Name:   obj.Name,
				Domain: obj.Domain,
			},
			Ceiling: ceiling,
			Links:   links(ds, obj.ID, ceiling),
		}

		for _, pr := range obj.Practices {
			kept := dataset.Practice{ID: pr.ID, Name: pr.Name}
			for _, act := range pr.Activities {
				if !activityInScope(obj, pr, act, needle, toolFilterSet, toolFilter, ceiling) {
					continue
				}
				kept.Activities = append(kept.Activities, act)
			}
			if len(kept.Activities) > 0 {
				scoped.Practices = append(scoped.Practices, kept)
			}
		}

		// Every effective objective stays in scope: an objective with no
		// surviving rows still renders as a graph node.
		out.Objectives = append(out.Objectives, scoped)
	}
	return out
}

// activityInScope applies the three activity-level predicates: free-text
// substring, exact tool match, and the capability ceiling. An activity
// without an informed level is excluded whenever a ceiling is active;
// without a ceiling all levels pass, nil included.
func activityInScope(obj *dataset.Objective, pr dataset.Practice, act dataset.Activity, needle string, toolFilterSet bool, toolFilter string, ceiling *int) bool {
	if needle != "" && !strings.Contains(haystack(obj, pr, act), needle) {
		return false
	}
	if toolFilterSet && strings.ToLower(act.Tool) != toolFilter {
		return false
	}
	if ceiling != nil {
		if act.Level == nil {
			return false
		}
		if *act.Level > *ceiling {
			return false
		}
	}
	return true
}

// haystack joins the searchable fields of one activity row, lowercased,
// the way the table search does.
func haystack(obj *dataset.Objective, pr dataset.Practice, act dataset.Activity) string {
	parts := []string{
		obj.Label(),
		pr.Label(),
		act.Label(),
		dataset.FormatTool(act.Tool),
		act.Justification,
		act.Observations,
		act.Integration,
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// links derives the qualifying (objective, tool) links. A tool links to
// the objective iff its recorded minimum level is informed and at or
// below the ceiling; with no ceiling every indexed tool links.
func links(ds *dataset.Dataset, objectiveID string, ceiling *int) []Link {
	idx := ds.ToolLevels(objectiveID)
	if len(idx) == 0 {
		return nil
	}
	keys := make([]string, 0, len(idx))
	for tool := range idx {
		keys = append(keys, tool)
	}
	// Map order is random; links keep a stable order for projections.
	sort.Strings(keys)

	out := make([]Link, 0, len(keys))
	for _, tool := range keys {
		min := idx[tool]
		if ceiling != nil && min > *ceiling {
			continue
		}
		out = append(out, Link{ObjectiveID: objectiveID, Tool: tool, MinLevel: min})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func known(ds *dataset.Dataset, ids []string) []string {
	var out []string
	for _, id := range ids {
		if ds.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func intersect(a, b []string) map[string]struct{} {
	bs := toSet(b)
	out := make(map[string]struct{})
	for _, id := range a {
		if _, ok := bs[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}
