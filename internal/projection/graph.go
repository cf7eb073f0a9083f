package projection

import (
	"sort"
	"strings"

	"cobitscope/internal/catalog"
	"cobitscope/internal/dataset"
	"cobitscope/internal/filter"
)

// NodeKind discriminates the graph node variants.
type NodeKind string

const (
	NodeObjective NodeKind = "objective"
	NodeTool      NodeKind = "tool"
)

// Node is a tagged graph node. Consumers switch on Kind instead of
// probing for field presence. Display metadata is filled from the graph
// metadata document when a matching identity exists; otherwise the node
// is reduced to id and kind.
type Node struct {
	ID   string   `json:"id"`
	Kind NodeKind `json:"kind"`
	Name string   `json:"name,omitempty"`

	// Objective-only fields.
	Domain  dataset.Domain `json:"domain,omitempty"`
	Purpose string         `json:"purpose,omitempty"`

	// Tool-only fields.
	Category string   `json:"category,omitempty"`
	UseCases []string `json:"use_cases,omitempty"`

	Description string `json:"description,omitempty"`

	// Radius is the display weight: fixed for objectives, the unfiltered
	// degree scale for tools. Filters never change it.
	Radius float64 `json:"radius"`
}

// Edge connects an objective node to a tool node by node id.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the node/edge projection ready for physical layout.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// GraphOptions carries the catalog and scale used for enrichment and
// display weight. Both are optional.
type GraphOptions struct {
	Catalog         *catalog.Catalog
	Scale           catalog.Scale
	ObjectiveRadius float64
}

// BuildGraph assembles the graph projection from a reduced dataset: one
// node per in-scope objective, one node per tool referenced by at least
// one qualifying link (deduplicated case-insensitively across
// objectives), and one edge per qualifying (objective, tool) pair.
func BuildGraph(ds *dataset.Dataset, r *filter.Reduced, opts GraphOptions) Graph {
	var g Graph
	if r == nil {
		return g
	}
	objRadius := opts.ObjectiveRadius
	if objRadius <= 0 {
		objRadius = catalog.DefaultObjectiveRadius
	}
	if opts.Scale.Max <= 0 {
		opts.Scale = catalog.NewScale(opts.Catalog, 0, 0, 0)
	}

	toolSeen := make(map[string]struct{})
	var toolKeys []string

	for _, obj := range r.Objectives {
		node := Node{
			ID:     obj.ID,
			Kind:   NodeObjective,
			Name:   obj.Name,
			Domain: obj.Domain,
			Radius: objRadius,
		}
		if meta, ok := opts.Catalog.Lookup(obj.ID); ok {
			node.Description = meta.Description
			node.Purpose = meta.Purpose
		}
		g.Nodes = append(g.Nodes, node)

		for _, link := range obj.Links {
			if _, ok := toolSeen[link.Tool]; !ok {
				toolSeen[link.Tool] = struct{}{}
				toolKeys = append(toolKeys, link.Tool)
			}
			g.Edges = append(g.Edges, Edge{Source: obj.ID, Target: link.Tool})
		}
	}

	sort.Strings(toolKeys)
	for _, key := range toolKeys {
		node := Node{
			ID:     key,
			Kind:   NodeTool,
			Name:   ds.ToolName(key),
			Radius: opts.Scale.Radius(opts.Catalog.Degree(key)),
		}
		if meta, ok := opts.Catalog.Lookup(node.Name); ok {
			node.Name = pick(meta.Name, node.Name)
			node.Description = meta.Description
			node.Category = meta.Category
			node.UseCases = meta.UseCases
			// The metadata document may use its own node id; keep the
			// normalized identity so edges stay consistent.
		}
		g.Nodes = append(g.Nodes, node)
	}
	return g
}

func pick(first, fallback string) string {
	if strings.TrimSpace(first) != "" {
		return first
	}
	return fallback
}
