package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineStub struct {
	handleTurnFn func(ctx context.Context, req ports.TurnRequest) (*domain.TurnResult, error)
}

func (s *engineStub) HandleTurn(ctx context.Context, req ports.TurnRequest) (*domain.TurnResult, error) {
	return s.handleTurnFn(ctx, req)
}

func (s *engineStub) OnDialogStart(ctx context.Context, userID string) error { return nil }

func (s *engineStub) PossibleAnswers(ctx context.Context, graphID, nodeID string, belief domain.BeliefState) ([]string, error) {
	return nil, nil
}

func (s *engineStub) Validate(ctx context.Context, graphID string) (*domain.ValidationReport, error) {
	return &domain.ValidationReport{GraphID: graphID}, nil
}

func echoEngine() *engineStub {
	return &engineStub{handleTurnFn: func(ctx context.Context, req ports.TurnRequest) (*domain.TurnResult, error) {
		if req.GraphID == "missing" {
			return nil, fmt.Errorf("load graph: %w", domain.ErrNotFound)
		}
		return &domain.TurnResult{NodeID: req.GraphID + "/" + req.UserID, Belief: req.Belief}, nil
	}}
}

func TestHandler_Turn(t *testing.T) {
	h := NewHandler(echoEngine(), WithMaxInputSize(8))

	tests := []struct {
		name   string
		req    events.APIGatewayV2HTTPRequest
		status int
		node   string
	}{
		{
			name:   "body fields",
			req:    events.APIGatewayV2HTTPRequest{Body: `{"user_id":"u","graph_id":"g"}`},
			status: http.StatusOK,
			node:   "g/u",
		},
		{
			name: "path parameters win",
			req: events.APIGatewayV2HTTPRequest{
				Body:           `{"user_id":"u","graph_id":"g"}`,
				PathParameters: map[string]string{"graphID": "other", "userID": "v"},
			},
			status: http.StatusOK,
			node:   "other/v",
		},
		{
			name: "base64 body",
			req: events.APIGatewayV2HTTPRequest{
				Body:            base64.StdEncoding.EncodeToString([]byte(`{"user_id":"u","graph_id":"g"}`)),
				IsBase64Encoded: true,
			},
			status: http.StatusOK,
			node:   "g/u",
		},
		{name: "invalid json", req: events.APIGatewayV2HTTPRequest{Body: "{"}, status: http.StatusBadRequest},
		{name: "invalid base64", req: events.APIGatewayV2HTTPRequest{Body: "%%%", IsBase64Encoded: true}, status: http.StatusBadRequest},
		{name: "missing ids", req: events.APIGatewayV2HTTPRequest{Body: `{}`}, status: http.StatusBadRequest},
		{
			name: "invalid utf8",
			req: events.APIGatewayV2HTTPRequest{
				Body:            base64.StdEncoding.EncodeToString([]byte("{\"user_id\":\"u\",\"graph_id\":\"g\",\"user_acts\":[{\"type\":\"answer\",\"text\":\"\xff\"}]}")),
				IsBase64Encoded: true,
			},
			status: http.StatusBadRequest,
		},
		{
			name:   "oversized act",
			req:    events.APIGatewayV2HTTPRequest{Body: `{"user_id":"u","graph_id":"g","user_acts":[{"type":"answer","text":"much too long"}]}`},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown graph",
			req:    events.APIGatewayV2HTTPRequest{Body: `{"user_id":"u","graph_id":"missing"}`},
			status: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.Turn(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode, resp.Body)
			assert.Equal(t, "application/json", resp.Headers["content-type"])
			if tt.node == "" {
				return
			}
			var out domain.TurnResult
			require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
			assert.Equal(t, tt.node, out.NodeID)
		})
	}
}
