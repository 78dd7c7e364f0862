package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
)

// Mask replaces the value of every masked belief variable.
const Mask = "***"

type piiMiddleware struct {
	next     ports.Publisher
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks belief state variables whose name matches one of
// the patterns. Only the beliefstate topic is rewritten; the engine's own
// belief state is never touched.
func NewPIIMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return func(next ports.Publisher) ports.Publisher {
		return &piiMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *piiMiddleware) Publish(ctx context.Context, userID, topic string, payload any) error {
	if topic == domain.TopicBelief && len(m.patterns) > 0 {
		switch b := payload.(type) {
		case domain.BeliefState:
			payload = domain.BeliefState(m.masked(b))
		case map[string]any:
			payload = m.masked(b)
		}
	}
	return m.next.Publish(ctx, userID, topic, payload)
}

func (m *piiMiddleware) masked(src map[string]any) map[string]any {
	out := deepCopyMap(src)
	maskMap(out, m.patterns)
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
			continue
		}
		out[k] = v
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchesAny(k, patterns) {
			m[k] = Mask
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			maskMap(sub, patterns)
		}
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
