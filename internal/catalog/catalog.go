// Package catalog loads the optional graph metadata document: display
// metadata for objective and tool nodes plus the complete objective→tool
// link set, which anchors the size scale of tool nodes.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cobitscope/internal/dataset"
)

// NodeKind discriminates the two node variants in the metadata document.
type NodeKind string

const (
	KindObjective NodeKind = "objetivo"
	KindTool      NodeKind = "herramienta"
)

// Node carries display metadata for one graph node.
type Node struct {
	ID          string   `json:"id"`
	Kind        NodeKind `json:"tipo"`
	Name        string   `json:"nombre"`
	Description string   `json:"descripcion"`
	Category    string   `json:"categoria"`
	UseCases    []string `json:"casos_uso"`
	Purpose     string   `json:"proposito"`
}

// Link is one objective→tool edge of the complete, unfiltered graph.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Catalog is the loaded metadata document. The engine's inclusion logic
// never depends on it; it only enriches nodes and anchors the size scale.
type Catalog struct {
	Nodes []Node
	Links []Link

	byID   map[string]*Node
	byName map[string]*Node
	degree map[string]int
}

type rawCatalog struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// LoadFile reads a graph metadata document. A missing file is not an
// error; it yields a nil catalog, which every method tolerates.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read graph metadata: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from a raw metadata document.
func Parse(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse graph metadata: %w", err)
	}

	c := &Catalog{
		Nodes:  raw.Nodes,
		Links:  raw.Links,
		byID:   make(map[string]*Node, len(raw.Nodes)),
		byName: make(map[string]*Node, len(raw.Nodes)),
		degree: make(map[string]int),
	}
	for i := range c.Nodes {
		n := &c.Nodes[i]
		if n.ID != "" {
			if _, ok := c.byID[n.ID]; !ok {
				c.byID[n.ID] = n
			}
		}
		nameKey := dataset.ToolKey(n.Name)
		if nameKey != "" {
			if _, ok := c.byName[nameKey]; !ok {
				c.byName[nameKey] = n
			}
		}
	}
	// Tool degree is counted over the complete link set so a tool's
	// display weight does not move when filters change.
	for _, l := range c.Links {
		c.degree[strings.ToLower(l.Target)]++
	}
	return c, nil
}

// Lookup finds display metadata for a node, first by exact id, then by
// case-insensitive normalized name.
func (c *Catalog) Lookup(idOrName string) (*Node, bool) {
	if c == nil {
		return nil, false
	}
	if n, ok := c.byID[idOrName]; ok {
		return n, true
	}
	if n, ok := c.byName[dataset.ToolKey(idOrName)]; ok {
		return n, true
	}
	return nil, false
}

// Degree returns a tool's edge count in the complete, unfiltered graph.
// Unknown tools count as 1 so they still get the minimum radius.
func (c *Catalog) Degree(tool string) int {
	if c == nil {
		return 1
	}
	if d := c.degree[strings.ToLower(tool)]; d > 0 {
		return d
	}
	return 1
}

// MaxDegree returns the highest tool degree, at least 1.
func (c *Catalog) MaxDegree() int {
	max := 1
	if c == nil {
		return max
	}
	for _, d := range c.degree {
		if d > max {
			max = d
		}
	}
	return max
}
