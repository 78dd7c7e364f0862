package graph

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/diagraph/pkg/domain"
)

// maxLabel bounds edge labels so long answer texts keep the chart readable.
const maxLabel = 40

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

type edge struct {
	to    string
	label string
}

// edges lists the outgoing edges of a node: the direct successor first, then
// one edge per answer in index order.
func edges(n domain.Node) []edge {
	var out []edge
	if n.HasSuccessor() {
		out = append(out, edge{to: n.Successor})
	}
	for _, a := range n.Answers {
		if !a.HasSuccessor() {
			continue
		}
		out = append(out, edge{to: a.Successor, label: answerLabel(a.Text)})
	}
	return out
}

func answerLabel(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxLabel {
		r := []rune(s)
		s = string(r[:maxLabel-1]) + "…"
	}
	return s
}
