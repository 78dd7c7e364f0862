// Package lambda serves dialog turns behind an API Gateway HTTP API.
package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/aretw0/diagraph/internal/logging"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/aretw0/diagraph/pkg/runner"
	"github.com/aws/aws-lambda-go/events"
)

// Handler turns API Gateway v2 events into dialog turns.
type Handler struct {
	engine       ports.DialogEngine
	logger       *slog.Logger
	maxInputSize int
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMaxInputSize sets the sanitizer limit for user act fields.
func WithMaxInputSize(n int) Option {
	return func(h *Handler) {
		h.maxInputSize = n
	}
}

func NewHandler(engine ports.DialogEngine, opts ...Option) *Handler {
	h := &Handler{engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Turn handles one turn. The body is a TurnRequest; graphID and userID path
// parameters, when routed, take precedence over the body fields.
func (h *Handler) Turn(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body, err := readBody(req)
	if err != nil {
		return jsonResp(http.StatusBadRequest, map[string]any{"error": "invalid body", "details": err.Error()}), nil
	}

	var in ports.TurnRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResp(http.StatusBadRequest, map[string]any{"error": "invalid json", "details": err.Error()}), nil
	}
	if v := req.PathParameters["graphID"]; v != "" {
		in.GraphID = v
	}
	if v := req.PathParameters["userID"]; v != "" {
		in.UserID = v
	}
	if in.UserID == "" || in.GraphID == "" {
		return jsonResp(http.StatusBadRequest, map[string]any{"error": "user_id and graph_id are required"}), nil
	}
	if err := runner.SanitizeActs(in.Acts, h.maxInputSize); err != nil {
		h.logger.Warn("lambda: input rejected", "error", err, "user", in.UserID)
		return jsonResp(http.StatusBadRequest, map[string]any{"error": "invalid input", "details": err.Error()}), nil
	}

	res, err := h.engine.HandleTurn(ctx, in)
	if err != nil {
		h.logger.Error("lambda: turn failed", "error", err, "user", in.UserID, "graph", in.GraphID)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
		return jsonResp(status, map[string]any{"error": "turn failed", "details": err.Error()}), nil
	}
	return jsonResp(http.StatusOK, res), nil
}

func readBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, err
		}
		body = decoded
	}
	if !utf8.Valid(body) {
		return nil, runner.ErrInvalidUTF8
	}
	return body, nil
}

func jsonResp(status int, body any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(b),
	}
}
