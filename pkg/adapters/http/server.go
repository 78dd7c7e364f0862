// Package http exposes a dialog engine over HTTP with chi.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/aretw0/diagraph/internal/logging"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/aretw0/diagraph/pkg/runner"
	"github.com/go-chi/chi/v5"
)

// MaxBodySize bounds request bodies.
const MaxBodySize = 1 << 20

// Engine is the dialog engine surface served over HTTP.
type Engine interface {
	ports.DialogEngine
	Graph(ctx context.Context, graphID string) ([]domain.Node, error)
}

// TurnBody is the JSON body of a turn request.
type TurnBody struct {
	Belief domain.BeliefState `json:"belief_state"`
	Acts   []domain.UserAct   `json:"user_acts"`
}

// TurnEvent is pushed to the event stream of a user after every turn.
type TurnEvent struct {
	GraphID string             `json:"graph_id"`
	Result  *domain.TurnResult `json:"result"`
	Diff    *domain.BeliefDiff `json:"belief_diff,omitempty"`
}

// Server serves the dialog engine routes.
type Server struct {
	Engine       Engine
	Streams      *StreamManager
	Logger       *slog.Logger
	MaxInputSize int
	Metrics      http.Handler
	AppName      string
	Version      string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMaxInputSize sets the sanitizer limit for user act fields.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.MaxInputSize = n
	}
}

// WithMetrics mounts a metrics handler on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		Logger:  logging.NewNop(),
		AppName: "diagraph-http",
		Version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.Logger)

	r := chi.NewRouter()
	r.Use(enableCORS)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/graphs/{graphID}/users/{userID}/turns", s.HandleTurn)
		r.Post("/users/{userID}/start", s.StartDialog)
		r.Get("/users/{userID}/events", s.SubscribeEvents)
		r.Get("/graphs/{graphID}/nodes", s.GetGraph)
		r.Get("/graphs/{graphID}/nodes/{nodeID}/answers", s.GetAnswers)
		r.Get("/graphs/{graphID}/validate", s.Validate)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decodeBody reads a bounded JSON body into v. The raw bytes are checked for
// UTF-8 first since encoding/json replaces invalid sequences with U+FFFD.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		return err
	}
	if !utf8.Valid(data) {
		return runner.ErrInvalidUTF8
	}
	return json.Unmarshal(data, v)
}

// HandleTurn handles POST /v1/graphs/{graphID}/users/{userID}/turns.
func (s *Server) HandleTurn(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	userID := chi.URLParam(r, "userID")

	var body TurnBody
	if err := decodeBody(w, r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("HandleTurn: invalid request body", "error", err)
		return
	}

	// Sanitize Input (Global Policy)
	if err := runner.SanitizeActs(body.Acts, s.MaxInputSize); err != nil {
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		s.Logger.Warn("HandleTurn: input rejected", "error", err, "user", userID)
		return
	}

	res, err := s.Engine.HandleTurn(r.Context(), ports.TurnRequest{
		UserID:  userID,
		GraphID: graphID,
		Belief:  body.Belief,
		Acts:    body.Acts,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("Turn error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("HandleTurn failed", "error", err, "user", userID, "graph", graphID)
		return
	}

	if s.Streams.Subscribers(userID) > 0 {
		event := TurnEvent{GraphID: graphID, Result: res, Diff: domain.Diff(userID, body.Belief, res.Belief)}
		if bytes, err := json.Marshal(event); err == nil {
			s.Streams.Broadcast(userID, string(bytes))
		}
	}

	s.writeJSON(w, http.StatusOK, res)
}

// StartDialog handles POST /v1/users/{userID}/start.
func (s *Server) StartDialog(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := s.Engine.OnDialogStart(r.Context(), userID); err != nil {
		http.Error(w, fmt.Sprintf("Start error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("StartDialog failed", "error", err, "user", userID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /v1/graphs/{graphID}/nodes.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.Engine.Graph(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		s.storeError(w, "GetGraph", err)
		return
	}
	s.writeJSON(w, http.StatusOK, nodes)
}

// GetAnswers handles GET /v1/graphs/{graphID}/nodes/{nodeID}/answers.
// An optional "belief" query parameter carries the belief state as JSON.
func (s *Server) GetAnswers(w http.ResponseWriter, r *http.Request) {
	belief := domain.NewBeliefState()
	if raw := r.URL.Query().Get("belief"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &belief); err != nil {
			http.Error(w, "Invalid belief parameter", http.StatusBadRequest)
			return
		}
	}
	answers, err := s.Engine.PossibleAnswers(r.Context(), chi.URLParam(r, "graphID"), chi.URLParam(r, "nodeID"), belief)
	if err != nil {
		s.storeError(w, "GetAnswers", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"answers": answers})
}

// Validate handles GET /v1/graphs/{graphID}/validate.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	report, err := s.Engine.Validate(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		s.storeError(w, "Validate", err)
		return
	}
	status := http.StatusOK
	if !report.Valid() {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, report)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     s.AppName,
		"version": s.Version,
	})
}

// SubscribeEvents handles GET /v1/users/{userID}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: streaming not supported")
		return
	}
	userID := chi.URLParam(r, "userID")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(userID)
	defer cancel()
	s.Logger.Info("SSE: subscribed to turn events", "user", userID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE: client disconnected", "user", userID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: turn\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
	s.Logger.Error(op+" failed", "error", err)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}
