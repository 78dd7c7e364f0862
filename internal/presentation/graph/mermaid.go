package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/diagraph/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart from a list of nodes.
// Shapes follow the node type:
// - START: ((Circle))
// - QUESTION, VARIABLE: [/Parallelogram/] (waits for the user)
// - LOGIC: {Rhombus}
// - UPDATE: [[Subroutine]]
// - INFO: [Rectangle]
// Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(nodes []domain.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type {
		case domain.NodeTypeStart:
			opener, closer = "((", "))"
		case domain.NodeTypeQuestion, domain.NodeTypeVariable:
			opener, closer = "[/", "/]"
		case domain.NodeTypeLogic:
			opener, closer = "{", "}"
		case domain.NodeTypeUpdate:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, node.ID, closer)

		for _, e := range edges(node) {
			arrow := "-->"
			if e.label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", e.label)
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(e.to))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	s := r.Replace(id)
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		// Mermaid rejects ids that start with a digit in some renderers.
		s = "n" + s
	}
	return s
}
