// Package yamlfile loads an engine construction triple from a YAML
// workflow description. The format is deliberately close to the engine's
// construction input:
//
//	items:
//	  - name: Fetch Data
//	    id: fetch_data
//	    type: process
//	    permit: true          # optional, default true
//	    config:               # passed verbatim to the item factory
//	      command: python
//	      args: ["fetch.py"]
//	successors:
//	  Fetch Data: [Clean Data]
//
// Item implementations are resolved through a registry, keyed by the
// "type" field.
package yamlfile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fabianoP/spine-engine/pkg/domain"
	"github.com/fabianoP/spine-engine/pkg/ports"
	"github.com/fabianoP/spine-engine/pkg/registry"
)

type document struct {
	Items      []itemSpec          `yaml:"items"`
	Successors map[string][]string `yaml:"successors"`
}

type itemSpec struct {
	Name   string         `yaml:"name"`
	ID     string         `yaml:"id"`
	Type   string         `yaml:"type"`
	Permit *bool          `yaml:"permit"`
	Config map[string]any `yaml:"config"`
}

// Loader implements ports.WorkflowLoader for a YAML file on disk.
type Loader struct {
	path     string
	registry *registry.Registry
}

var _ ports.WorkflowLoader = (*Loader)(nil)

// New creates a loader for the given description file.
func New(path string, reg *registry.Registry) *Loader {
	return &Loader{path: path, registry: reg}
}

// Load reads, parses and materializes the description. Deep workflow
// validation (unknown successors, cycles, duplicate IDs) is left to
// engine construction; the loader only rejects documents it cannot
// materialize.
func (l *Loader) Load(ctx context.Context) (*ports.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read workflow description: %w", err)
	}
	return l.parse(raw)
}

func (l *Loader) parse(raw []byte) (*ports.Definition, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse workflow description: %w", err)
	}
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("workflow description has no items")
	}

	def := &ports.Definition{
		Items:      make([]domain.WorkItem, 0, len(doc.Items)),
		Successors: doc.Successors,
		Permits:    make(map[string]bool, len(doc.Items)),
	}
	if def.Successors == nil {
		def.Successors = make(map[string][]string)
	}

	for _, spec := range doc.Items {
		if spec.Name == "" || spec.ID == "" || spec.Type == "" {
			return nil, fmt.Errorf("item entries need name, id and type (got name=%q id=%q type=%q)", spec.Name, spec.ID, spec.Type)
		}
		item, err := l.registry.Build(spec.Type, spec.Name, spec.ID, spec.Config)
		if err != nil {
			return nil, err
		}
		def.Items = append(def.Items, item)

		permit := true
		if spec.Permit != nil {
			permit = *spec.Permit
		}
		def.Permits[spec.Name] = permit
	}
	return def, nil
}
