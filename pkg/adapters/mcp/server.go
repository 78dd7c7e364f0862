// Package mcp exposes a dialog engine as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/diagraph/internal/logging"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/aretw0/diagraph/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphsURI is the resource listing the served graphs.
const GraphsURI = "diagraph://graphs"

// Engine defines the interface required by the MCP server.
type Engine interface {
	ports.DialogEngine
	Graph(ctx context.Context, graphID string) ([]domain.Node, error)
	GraphIDs(ctx context.Context) ([]string, error)
}

// TurnArgs are the arguments of the handle_turn tool. Belief and acts travel
// as JSON strings.
type TurnArgs struct {
	GraphID string `json:"graph_id"`
	UserID  string `json:"user_id"`
	Belief  string `json:"belief_state"`
	Acts    string `json:"user_acts"`
}

// AnswersArgs are the arguments of the possible_answers tool.
type AnswersArgs struct {
	GraphID string `json:"graph_id"`
	NodeID  string `json:"node_id"`
	Belief  string `json:"belief_state"`
}

// GraphArgs are the arguments of the graph scoped tools.
type GraphArgs struct {
	GraphID string `json:"graph_id"`
}

// AnswersResponse lists the candidate answers of a node.
type AnswersResponse struct {
	Answers []string `json:"answers" jsonschema_description:"Answers the user can give at the node"`
}

// Server wraps the dialog engine and exposes it as an MCP Server.
type Server struct {
	engine       Engine
	mcpServer    *server.MCPServer
	logger       *slog.Logger
	maxInputSize int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInputSize sets the sanitizer limit for user act fields.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("diagraph-mcp", version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the protocol over SSE until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("MCP Server shutting down")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	turnTool := mcp.NewTool("handle_turn",
		mcp.WithDescription("Advance the dialog of a user by one turn and return the system utterances."),
		mcp.WithString("graph_id", mcp.Required(), mcp.Description("Dialog graph to run")),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User whose dialog advances")),
		mcp.WithString("belief_state", mcp.Description("JSON object with the known variables (optional)")),
		mcp.WithString("user_acts", mcp.Description(`JSON array of user acts, e.g. [{"type":"answer","text":"yes"}] (optional)`)),
		mcp.WithOutputSchema[domain.TurnResult](),
	)
	s.mcpServer.AddTool(turnTool, mcp.NewStructuredToolHandler(s.handleTurn))

	startTool := mcp.NewTool("start_dialog",
		mcp.WithDescription("Forget the dialog position of a user so the next turn starts over."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User to reset")),
	)
	s.mcpServer.AddTool(startTool, s.handleStart)

	answersTool := mcp.NewTool("possible_answers",
		mcp.WithDescription("List the answers a user can give at a node."),
		mcp.WithString("graph_id", mcp.Required(), mcp.Description("Dialog graph")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node to inspect")),
		mcp.WithString("belief_state", mcp.Description("JSON object used to render answer templates (optional)")),
		mcp.WithOutputSchema[AnswersResponse](),
	)
	s.mcpServer.AddTool(answersTool, mcp.NewStructuredToolHandler(s.handleAnswers))

	validateTool := mcp.NewTool("validate_graph",
		mcp.WithDescription("Check a dialog graph for authoring errors and warnings."),
		mcp.WithString("graph_id", mcp.Required(), mcp.Description("Dialog graph to check")),
		mcp.WithOutputSchema[domain.ValidationReport](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the full node list of a dialog graph for introspection."),
		mcp.WithString("graph_id", mcp.Required(), mcp.Description("Dialog graph")),
	), s.handleGetGraph)
}

func (s *Server) handleTurn(ctx context.Context, request mcp.CallToolRequest, args TurnArgs) (domain.TurnResult, error) {
	belief, err := parseBelief(args.Belief)
	if err != nil {
		return domain.TurnResult{}, err
	}
	var acts []domain.UserAct
	if args.Acts != "" {
		if err := json.Unmarshal([]byte(args.Acts), &acts); err != nil {
			return domain.TurnResult{}, fmt.Errorf("invalid user_acts: %w", err)
		}
	}
	if err := runner.SanitizeActs(acts, s.maxInputSize); err != nil {
		s.logger.Warn("MCP handle_turn: input rejected", "error", err, "user", args.UserID)
		return domain.TurnResult{}, fmt.Errorf("input rejected: %w", err)
	}

	res, err := s.engine.HandleTurn(ctx, ports.TurnRequest{
		UserID:  args.UserID,
		GraphID: args.GraphID,
		Belief:  belief,
		Acts:    acts,
	})
	if err != nil {
		return domain.TurnResult{}, fmt.Errorf("turn failed: %w", err)
	}
	return *res, nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.engine.OnDialogStart(ctx, userID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("start failed: %v", err)), nil
	}
	return mcp.NewToolResultText("dialog reset for " + userID), nil
}

func (s *Server) handleAnswers(ctx context.Context, request mcp.CallToolRequest, args AnswersArgs) (AnswersResponse, error) {
	belief, err := parseBelief(args.Belief)
	if err != nil {
		return AnswersResponse{}, err
	}
	answers, err := s.engine.PossibleAnswers(ctx, args.GraphID, args.NodeID, belief)
	if err != nil {
		return AnswersResponse{}, fmt.Errorf("answers failed: %w", err)
	}
	if answers == nil {
		answers = []string{}
	}
	return AnswersResponse{Answers: answers}, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args GraphArgs) (domain.ValidationReport, error) {
	report, err := s.engine.Validate(ctx, args.GraphID)
	if err != nil {
		return domain.ValidationReport{}, fmt.Errorf("validate failed: %w", err)
	}
	return *report, nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	graphID, err := request.RequireString("graph_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nodes, err := s.engine.Graph(ctx, graphID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
	}
	jsonBytes, err := json.Marshal(nodes)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphsURI, "Served dialog graphs",
		mcp.WithMIMEType("application/json"),
	), s.readGraphs)
}

func (s *Server) readGraphs(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.engine.GraphIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	jsonBytes, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func parseBelief(raw string) (domain.BeliefState, error) {
	belief := domain.NewBeliefState()
	if raw == "" {
		return belief, nil
	}
	if err := json.Unmarshal([]byte(raw), &belief); err != nil {
		return nil, fmt.Errorf("invalid belief_state: %w", err)
	}
	return belief, nil
}
