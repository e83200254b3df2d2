// Package graph renders a workflow definition as a Mermaid flowchart for
// the CLI and documentation tooling.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fabianoP/spine-engine/pkg/domain"
	"github.com/fabianoP/spine-engine/pkg/ports"
)

// Overlay contains dynamic run data to visualize on the graph.
type Overlay struct {
	// Statuses are the forward-pass node statuses, keyed by item ID.
	Statuses map[string]domain.NodeStatus
}

// GenerateMermaid produces a Mermaid flowchart (graph TD) of the forward
// DAG. Items whose permit is off are drawn as stadium pass-through nodes.
// If an overlay is given, terminal statuses are styled.
func GenerateMermaid(def *ports.Definition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make(map[string]string, len(def.Items)) // name -> id
	for _, item := range def.Items {
		ids[item.Name()] = item.ID()
	}

	for _, item := range def.Items {
		label := fmt.Sprintf("    %s[\"%s\"]\n", item.ID(), escape(item.Name()))
		if !def.Permits[item.Name()] {
			// Permit off: resources flow, logic does not.
			label = fmt.Sprintf("    %s([\"%s (pass-through)\"])\n", item.ID(), escape(item.Name()))
		}
		sb.WriteString(label)
	}

	names := make([]string, 0, len(def.Successors))
	for name := range def.Successors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, succ := range def.Successors[name] {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", ids[name], ids[succ]))
		}
	}

	if overlay != nil {
		sb.WriteString("\n")
		sb.WriteString("    classDef succeeded fill:#e8f5e9,stroke:#1b5e20,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#b71c1c,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#eceff1,stroke:#455a64,color:#000;\n")

		for _, class := range []domain.NodeStatus{domain.NodeSucceeded, domain.NodeFailed, domain.NodeSkipped} {
			members := make([]string, 0)
			for _, item := range def.Items {
				if overlay.Statuses[item.ID()] == class {
					members = append(members, item.ID())
				}
			}
			if len(members) > 0 {
				sort.Strings(members)
				sb.WriteString(fmt.Sprintf("    class %s %s;\n", strings.Join(members, ","), class))
			}
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
