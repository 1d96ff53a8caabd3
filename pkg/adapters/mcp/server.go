package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/slotfill/pkg/adapters/memory"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/observability"
	"github.com/aretw0/slotfill/pkg/ports"
	"github.com/aretw0/slotfill/pkg/runner"
	"github.com/aretw0/slotfill/pkg/schema"
	"github.com/aretw0/slotfill/pkg/session"
)

// Transport labels turn metrics recorded by this adapter.
const Transport = "mcp"

const templatesURI = "slotfill://templates"

// TurnResult aligns with the HTTP TurnResponse and provides a unified structure across adapters.
type TurnResult struct {
	SessionID string         `json:"session_id" jsonschema_description:"Session to pass to advance"`
	Prompt    string         `json:"prompt" jsonschema_description:"What to ask the user next"`
	Mode      domain.Mode    `json:"mode" jsonschema_description:"Dialogue mode after the turn"`
	Terminal  bool           `json:"terminal" jsonschema_description:"True once every field is collected"`
	Memory    domain.Memory  `json:"memory,omitempty" jsonschema_description:"Values collected so far"`
	Summary   []runner.Field `json:"summary,omitempty" jsonschema_description:"Collected fields once terminal"`
}

// ValidationResult is returned by validate_template.
type ValidationResult struct {
	Valid  bool          `json:"valid"`
	ID     string        `json:"id,omitempty"`
	Issues schema.Issues `json:"issues,omitempty"`
}

// StartArgs are the arguments of start_session.
type StartArgs struct {
	TemplateID string `json:"template_id"`
	SessionID  string `json:"session_id,omitempty"`
}

// AdvanceArgs are the arguments of advance.
type AdvanceArgs struct {
	SessionID string `json:"session_id"`
	Utterance string `json:"utterance"`
}

// SessionArgs are the arguments of get_session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// ValidateArgs are the arguments of validate_template.
type ValidateArgs struct {
	Document string `json:"document"`
}

// Server exposes slotfill sessions as MCP tools.
type Server struct {
	engine    ports.Engine
	templates ports.TemplateLoader
	sessions  *session.Manager
	metrics   *observability.Metrics
	logger    *slog.Logger
	version   string
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithSessions sets the session manager. The default keeps sessions in memory.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithMetrics records turn durations.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version announced to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(v)
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Engine, templates ports.TemplateLoader, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		templates: templates,
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}
	s.mcpServer = server.NewMCPServer("slotfill-mcp", s.version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start collecting the fields of a template. Returns the first question to ask."),
		mcp.WithString("template_id", mcp.Required(), mcp.Description("Template to fill")),
		mcp.WithString("session_id", mcp.Description("Session id to use; generated when omitted. An existing session is resumed.")),
		mcp.WithOutputSchema[TurnResult](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Pass the user's reply to a session. Returns the next question, or the collected values once terminal."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by start_session")),
		mcp.WithString("utterance", mcp.Description("The user's reply, verbatim. Empty means the user said nothing.")),
		mcp.WithOutputSchema[TurnResult](),
	), mcp.NewStructuredToolHandler(s.handleAdvance))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Show the pending question and collected values of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[TurnResult](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("validate_template",
		mcp.WithDescription("Validate a YAML or JSON template document and list every problem found."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Template source")),
		mcp.WithOutputSchema[ValidationResult](),
	), mcp.NewStructuredToolHandler(s.handleValidate))
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args StartArgs) (TurnResult, error) {
	if args.TemplateID == "" {
		return TurnResult{}, errors.New("template_id is required")
	}
	if args.SessionID == "" {
		args.SessionID = uuid.NewString()
	}
	tpl, err := s.templates.Get(ctx, args.TemplateID)
	if err != nil {
		return TurnResult{}, err
	}

	var started *runner.Response
	state, created, err := s.sessions.LoadOrStart(ctx, args.SessionID, func(ctx context.Context) (*domain.State, error) {
		resp, err := runner.Start(ctx, s.engine, args.SessionID, tpl)
		if err != nil {
			return nil, err
		}
		started = resp
		return resp.State, nil
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("start failed: %w", err)
	}
	if !created {
		if state.TemplateID != tpl.ID {
			return TurnResult{}, fmt.Errorf("session %s uses template %s", state.SessionID, state.TemplateID)
		}
		return s.view(tpl, state), nil
	}
	s.logger.Info("MCP session started", "session_id", args.SessionID, "template", tpl.ID)
	return result(started), nil
}

func (s *Server) handleAdvance(ctx context.Context, _ mcp.CallToolRequest, args AdvanceArgs) (TurnResult, error) {
	started := time.Now()
	clean, err := runner.SanitizeInput(args.Utterance)
	if err != nil {
		s.logger.Warn("MCP advance: input rejected", "err", err, "size", len(args.Utterance))
		return TurnResult{}, fmt.Errorf("input rejected: %w", err)
	}

	var resp *runner.Response
	_, err = s.sessions.Update(ctx, args.SessionID, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		tpl, err := s.templates.Get(ctx, state.TemplateID)
		if err != nil {
			return nil, err
		}
		resp, err = runner.Respond(ctx, s.engine, tpl, state, clean)
		if err != nil {
			return nil, err
		}
		return resp.State, nil
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("advance failed: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveTurn(Transport, started)
	}
	return result(resp), nil
}

func (s *Server) handleGet(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (TurnResult, error) {
	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return TurnResult{}, err
	}
	tpl, err := s.templates.Get(ctx, state.TemplateID)
	if err != nil {
		return TurnResult{}, err
	}
	return s.view(tpl, state), nil
}

func (s *Server) handleValidate(_ context.Context, _ mcp.CallToolRequest, args ValidateArgs) (ValidationResult, error) {
	tpl, err := schema.Compile([]byte(args.Document))
	if err != nil {
		if issues := schema.IssuesOf(err); issues != nil {
			return ValidationResult{Issues: issues}, nil
		}
		return ValidationResult{}, err
	}
	return ValidationResult{Valid: true, ID: tpl.ID}, nil
}

// view renders the pending prompt of a stored state without recording it.
func (s *Server) view(tpl *schema.Template, state *domain.State) TurnResult {
	resp := &runner.Response{
		State:    state,
		Prompt:   s.engine.Prompt(tpl, state),
		Terminal: state.Terminal(),
	}
	if resp.Terminal {
		resp.Summary = runner.Summary(state)
	}
	return result(resp)
}

func result(resp *runner.Response) TurnResult {
	return TurnResult{
		SessionID: resp.State.SessionID,
		Prompt:    resp.Prompt.Text,
		Mode:      resp.State.Mode,
		Terminal:  resp.Terminal,
		Memory:    resp.State.Memory,
		Summary:   resp.Summary,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(templatesURI, "Available templates",
		mcp.WithResourceDescription("Ids of the templates start_session accepts"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.templates.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list templates: %w", err)
		}
		return jsonContents(templatesURI, ids)
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(templatesURI+"/{id}", "Template definition",
		mcp.WithTemplateDescription("Fields, steps and messages of one template"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, templatesURI+"/")
		tpl, err := s.templates.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return jsonContents(request.Params.URI, tpl)
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
