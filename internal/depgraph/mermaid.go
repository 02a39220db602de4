package depgraph

import (
	"fmt"
	"strings"
)

// ToMermaid renders the dependency graph as a Mermaid flowchart of a
// module's signal/memo wiring.
func (g *Graph) ToMermaid() string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	for id, node := range g.Nodes {
		nodeID := sanitizeID(id)
		sb.WriteString(fmt.Sprintf("    %s[\"%s (%s)\"]\n", nodeID, node.Name, node.Kind))
	}

	sb.WriteString("\n")

	for _, edge := range g.Edges {
		fromID := sanitizeID(edge.SourceID)
		toID := sanitizeID(edge.TargetID)
		sb.WriteString(fmt.Sprintf("    %s -->|%s| %s\n", fromID, edge.Kind, toID))
	}

	sb.WriteString("\n")
	for id, node := range g.Nodes {
		nodeID := sanitizeID(id)
		var color string
		switch node.Kind {
		case KindSignal:
			color = "#e1f5e1"
		case KindMemo:
			color = "#fff4e1"
		case KindEffect:
			color = "#e1f0ff"
		}
		sb.WriteString(fmt.Sprintf("    style %s fill:%s\n", nodeID, color))
	}

	return sb.String()
}

// ToMermaidWithTitle wraps ToMermaid in a titled markdown code block.
func (g *Graph) ToMermaidWithTitle(title string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString("```mermaid\n")
	sb.WriteString(g.ToMermaid())
	sb.WriteString("```\n")
	return sb.String()
}

// sanitizeID converts a graph node ID to a valid Mermaid node ID.
func sanitizeID(id string) string {
	sanitized := strings.ReplaceAll(id, ":", "_")
	sanitized = strings.ReplaceAll(sanitized, "/", "_")
	sanitized = strings.ReplaceAll(sanitized, ".", "_")
	sanitized = strings.ReplaceAll(sanitized, "-", "_")
	sanitized = strings.ReplaceAll(sanitized, " ", "_")

	if len(sanitized) > 0 && (sanitized[0] < 'A' || sanitized[0] > 'z') {
		sanitized = "node_" + sanitized
	}
	return sanitized
}
