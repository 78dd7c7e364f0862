package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/awalterschulze/gographviz"
)

const dotGraphName = "dialog"

var dotShapes = map[domain.NodeType]string{
	domain.NodeTypeStart:    "circle",
	domain.NodeTypeQuestion: "parallelogram",
	domain.NodeTypeVariable: "parallelogram",
	domain.NodeTypeLogic:    "diamond",
	domain.NodeTypeUpdate:   "box3d",
	domain.NodeTypeInfo:     "box",
}

// GenerateDOT renders the nodes as a Graphviz digraph. Edges pointing to
// unknown nodes are drawn to a red placeholder so broken graphs stay visible.
func GenerateDOT(nodes []domain.Node, overlay *GraphOverlay) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(dotGraphName); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}

	visited := make(map[string]bool)
	current := ""
	if overlay != nil {
		for _, id := range overlay.VisitedNodes {
			visited[id] = true
		}
		current = overlay.CurrentNode
	}

	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
		attrs := map[string]string{
			"label": quote(fmt.Sprintf("%s\\n%s", n.ID, n.Type)),
			"shape": dotShapes[n.Type],
		}
		switch {
		case n.ID == current:
			attrs["style"] = "filled"
			attrs["fillcolor"] = quote("#ffeb3b")
		case visited[n.ID]:
			attrs["style"] = "filled"
			attrs["fillcolor"] = quote("#e1f5fe")
		}
		if err := g.AddNode(dotGraphName, quote(n.ID), attrs); err != nil {
			return "", fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}

	for _, n := range nodes {
		for _, e := range edges(n) {
			if !known[e.to] {
				known[e.to] = true
				missing := map[string]string{"color": "red", "label": quote(e.to + "\\n(missing)")}
				if err := g.AddNode(dotGraphName, quote(e.to), missing); err != nil {
					return "", fmt.Errorf("add node %s: %w", e.to, err)
				}
			}
			attrs := map[string]string{}
			if e.label != "" {
				attrs["label"] = quote(e.label)
			}
			if err := g.AddEdge(quote(n.ID), quote(e.to), true, attrs); err != nil {
				return "", fmt.Errorf("add edge %s -> %s: %w", n.ID, e.to, err)
			}
		}
	}
	return g.String(), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
