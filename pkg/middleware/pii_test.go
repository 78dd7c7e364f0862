package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	rec := &recordingPublisher{}
	mw, err := middleware.NewPIIMiddleware([]string{"(?i)password", "^SSN"})
	require.NoError(t, err)
	pub := mw(rec)

	belief := domain.BeliefState{
		"NAME":          "jdoe",
		"USER_PASSWORD": "secret123",
		"DETAILS": map[string]any{
			"ADDRESS":    "123 St",
			"SSN_NUMBER": "999-99-9999",
		},
	}
	require.NoError(t, pub.Publish(context.Background(), "alice", domain.TopicBelief, belief))

	sent := rec.last()
	assert.Equal(t, "alice", sent.UserID)
	masked, ok := sent.Payload.(domain.BeliefState)
	require.True(t, ok, "payload type %T", sent.Payload)
	assert.Equal(t, "jdoe", masked["NAME"])
	assert.Equal(t, middleware.Mask, masked["USER_PASSWORD"])
	details := masked["DETAILS"].(map[string]any)
	assert.Equal(t, middleware.Mask, details["SSN_NUMBER"])
	assert.Equal(t, "123 St", details["ADDRESS"])

	assert.Equal(t, "secret123", belief["USER_PASSWORD"], "caller's belief state must stay intact")
	assert.Equal(t, "999-99-9999", belief["DETAILS"].(map[string]any)["SSN_NUMBER"])
}

func TestPIIMiddleware_OtherTopics(t *testing.T) {
	rec := &recordingPublisher{}
	mw, err := middleware.NewPIIMiddleware([]string{"PASSWORD"})
	require.NoError(t, err)
	pub := mw(rec)

	tests := []struct {
		topic   string
		payload any
	}{
		{domain.TopicNodeID, "ask"},
		{domain.TopicTerminal, false},
		{domain.TopicUtterances, []string{"PASSWORD please"}},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			require.NoError(t, pub.Publish(context.Background(), "bob", tt.topic, tt.payload))
			assert.Equal(t, tt.payload, rec.last().Payload)
		})
	}
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}
