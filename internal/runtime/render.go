package runtime

import (
	"strings"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/template"
)

// Placeholder answers the editor inserts into fresh nodes.
var placeholderAnswers = []string{"[null]", "Add a user response..."}

// render fills the display template of node. On failure the raw markup is shown.
func (t *turn) render(node *domain.Node) string {
	src := node.Markup
	if src == "" {
		src = node.Text
	}
	text, err := t.e.templates.Render(t.ctx, src, t.scope())
	if err != nil {
		t.log.Warn("failed to render node", "node", node.ID, "turn", t.turnCount, "err", err)
		return src
	}
	return text
}

// candidates lists the answer texts a user may pick from. Answer templates
// expand to yes/no for BOOLEAN variables and to nothing otherwise.
func (e *Engine) candidates(answers []domain.Answer, belief domain.BeliefState) []string {
	out := []string{}
	for _, a := range answers {
		if a.IsTemplate() {
			b, err := template.ParseBinding(a.Text)
			if err == nil && b.Type == template.TypeBoolean {
				out = append(out, "yes", "no")
			}
			continue
		}
		if isPlaceholder(a.Text) || strings.TrimSpace(a.Text) == "" {
			continue
		}
		out = append(out, a.Text)
	}
	if e.maxCandidates > 0 && len(out) > e.maxCandidates {
		out = out[:e.maxCandidates]
	}
	return out
}

func isPlaceholder(text string) bool {
	for _, p := range placeholderAnswers {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
