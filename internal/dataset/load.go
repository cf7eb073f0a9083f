package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Wire types mirror the published data files, which use Spanish keys.
type rawObjective struct {
	ID        string        `json:"id"`
	Name      string        `json:"nombre"`
	Practices []rawPractice `json:"practicas"`
}

type rawPractice struct {
	ID         string        `json:"id"`
	Name       string        `json:"nombre"`
	Activities []rawActivity `json:"actividades"`
}

type rawActivity struct {
	ID            string          `json:"id"`
	Description   string          `json:"descripcion"`
	Level         json.RawMessage `json:"nivel_capacidad"`
	Tool          string          `json:"herramienta"`
	Justification string          `json:"justificacion"`
	Observations  string          `json:"observaciones"`
	Integration   string          `json:"integracion"`
}

// ValidationError captures a single structural problem in the dataset.
type ValidationError struct {
	Source  string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Field, e.Message)
}

// ValidationErrors aggregates the problems that make a dataset unloadable.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// LoadFile reads and normalizes an activities dataset from disk.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data, path)
}

// Parse normalizes a raw activities document. The one hard failure is a
// top-level structure that is not a list, or an objective without an id;
// malformed activities degrade to placeholders.
func Parse(data []byte, source string) (*Dataset, error) {
	var raw []rawObjective
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ValidationErrors{{
			Source:  source,
			Field:   "json",
			Message: "top-level structure must be a list of objectives: " + err.Error(),
		}}
	}

	var errs ValidationErrors
	ds := &Dataset{
		byID:      make(map[string]*Objective, len(raw)),
		index:     make(map[string]map[string]int, len(raw)),
		toolNames: make(map[string]string),
	}

	for idx, ro := range raw {
		id := strings.TrimSpace(ro.ID)
		if id == "" {
			errs = append(errs, ValidationError{
				Source:  source,
				Field:   fmt.Sprintf("objectives[%d].id", idx),
				Message: "objective id is required",
			})
			continue
		}
		if _, dup := ds.byID[id]; dup {
			// Identity is immutable once loaded: first occurrence wins.
			continue
		}
		ds.byID[id] = nil

		obj := Objective{
			ID:     id,
			Name:   orPlaceholder(ro.Name),
			Domain: DomainOf(id),
		}
		for _, rp := range ro.Practices {
			pr := Practice{
				ID:   orPlaceholder(strings.TrimSpace(rp.ID)),
				Name: orPlaceholder(rp.Name),
			}
			for _, ra := range rp.Activities {
				pr.Activities = append(pr.Activities, Activity{
					ID:            orPlaceholder(strings.TrimSpace(ra.ID)),
					Description:   orPlaceholder(ra.Description),
					Level:         ParseLevel(ra.Level),
					Tool:          NormalizeTool(ra.Tool),
					Justification: orPlaceholder(ra.Justification),
					Observations:  orPlaceholder(ra.Observations),
					Integration:   orPlaceholder(ra.Integration),
				})
			}
			obj.Practices = append(obj.Practices, pr)
		}

		ds.Objectives = append(ds.Objectives, obj)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	for i := range ds.Objectives {
		obj := &ds.Objectives[i]
		ds.byID[obj.ID] = obj
		ds.index[obj.ID] = buildToolIndex(obj)
		for _, pr := range obj.Practices {
			for _, act := range pr.Activities {
				if act.Tool == "" {
					continue
				}
				key := strings.ToLower(act.Tool)
				if _, ok := ds.toolNames[key]; !ok {
					ds.toolNames[key] = act.Tool
				}
			}
		}
	}

	return ds, nil
}

// buildToolIndex records, per tool, the minimum informed level among the
// objective's activities. Activities without a tool or without a level do
// not contribute.
func buildToolIndex(obj *Objective) map[string]int {
	idx := make(map[string]int)
	for _, pr := range obj.Practices {
		for _, act := range pr.Activities {
			if act.Tool == "" || act.Level == nil {
				continue
			}
			key := strings.ToLower(act.Tool)
			if prev, ok := idx[key]; !ok || *act.Level < prev {
				idx[key] = *act.Level
			}
		}
	}
	return idx
}

// Tools returns the distinct normalized tool names across the whole
// dataset, sorted case-insensitively. Absent tools are not listed.
func (d *Dataset) Tools() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]string)
	for _, obj := range d.Objectives {
		for _, pr := range obj.Practices {
			for _, act := range pr.Activities {
				if act.Tool == "" {
					continue
				}
				key := strings.ToLower(act.Tool)
				if _, ok := seen[key]; !ok {
					seen[key] = act.Tool
				}
			}
		}
	}
	tools := make([]string, 0, len(seen))
	for _, name := range seen {
		tools = append(tools, name)
	}
	sort.Slice(tools, func(i, j int) bool {
		return strings.ToLower(tools[i]) < strings.ToLower(tools[j])
	})
	return tools
}
