// Package dataset loads and normalizes the objective → practice → activity
// structure that drives every projection.
package dataset

import "strings"

// Domain is the COBIT governance domain an objective belongs to.
type Domain string

const (
	DomainEDM   Domain = "EDM"
	DomainAPO   Domain = "APO"
	DomainBAI   Domain = "BAI"
	DomainDSS   Domain = "DSS"
	DomainMEA   Domain = "MEA"
	DomainOther Domain = "OTHER"
)

// Domains lists the named domains in their fixed presentation order.
var Domains = []Domain{DomainEDM, DomainAPO, DomainBAI, DomainDSS, DomainMEA}

// DomainOf derives the domain from the first three characters of an
// objective id, case-insensitively. Anything unrecognized maps to OTHER.
func DomainOf(objectiveID string) Domain {
	if len(objectiveID) < 3 {
		return DomainOther
	}
	switch Domain(strings.ToUpper(objectiveID[:3])) {
	case DomainEDM:
		return DomainEDM
	case DomainAPO:
		return DomainAPO
	case DomainBAI:
		return DomainBAI
	case DomainDSS:
		return DomainDSS
	case DomainMEA:
		return DomainMEA
	default:
		return DomainOther
	}
}

// Objective is a governance/management objective with its practices in
// source order.
type Objective struct {
	ID        string
	Name      string
	Domain    Domain
	Practices []Practice
}

// Label returns the composite display label used by the table and the
// free-text haystack.
func (o Objective) Label() string {
	return o.ID + " - " + o.Name
}

// Practice is a named sub-unit of an objective. Practices keep source order.
type Practice struct {
	ID         string
	Name       string
	Activities []Activity
}

func (p Practice) Label() string {
	return p.ID + " - " + p.Name
}

// Activity is the smallest unit of work. Level is nil when the source did
// not inform a capability level. Tool is the normalized tool name, empty
// when absent.
type Activity struct {
	ID            string
	Description   string
	Level         *int
	Tool          string
	Justification string
	Observations  string
	Integration   string
}

func (a Activity) Label() string {
	return a.ID + " - " + a.Description
}

// Dataset is the normalized, read-only result of a load. The tool index
// maps objective id → normalized tool → minimum informed level.
type Dataset struct {
	Objectives []Objective

	byID      map[string]*Objective
	index     map[string]map[string]int
	toolNames map[string]string
}

// ToolName returns the display casing for a tool identity key (first
// occurrence in source order wins). Unknown keys come back unchanged.
func (d *Dataset) ToolName(key string) string {
	if d == nil {
		return key
	}
	if name, ok := d.toolNames[key]; ok {
		return name
	}
	return key
}

// Objective returns the objective with the given id, if present.
func (d *Dataset) Objective(id string) (*Objective, bool) {
	if d == nil {
		return nil, false
	}
	obj, ok := d.byID[id]
	return obj, ok
}

// Has reports whether an objective id exists in the dataset.
func (d *Dataset) Has(id string) bool {
	_, ok := d.Objective(id)
	return ok
}

// ObjectiveIDs returns all objective ids in source order.
func (d *Dataset) ObjectiveIDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.Objectives))
	for _, obj := range d.Objectives {
		ids = append(ids, obj.ID)
	}
	return ids
}

// MinToolLevel returns the minimum informed capability level among the
// objective's activities referencing the tool. The tool is matched on its
// normalized, lowercased name.
func (d *Dataset) MinToolLevel(objectiveID, tool string) (int, bool) {
	if d == nil {
		return 0, false
	}
	tools, ok := d.index[objectiveID]
	if !ok {
		return 0, false
	}
	lvl, ok := tools[strings.ToLower(NormalizeTool(tool))]
	return lvl, ok
}

// ToolLevels returns the tool → min level index for one objective. The
// returned map must not be mutated.
func (d *Dataset) ToolLevels(objectiveID string) map[string]int {
	if d == nil {
		return nil
	}
	return d.index[objectiveID]
}
