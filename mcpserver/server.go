// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes the
// lesson sandbox to the surrounding textbook application. It uses the
// mark3labs/mcp-go library to handle the protocol details and provides the
// execute_lesson_code tool as the primary interface, plus list_contexts for
// discovering the configured lesson contexts.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/devanik21/lessonbox/config"
	"github.com/devanik21/lessonbox/policy"
	"github.com/devanik21/lessonbox/sandbox"
)

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	box       *sandbox.Sandbox
	mcpServer *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, box *sandbox.Sandbox) (*MCPServer, error) {
	s := &MCPServer{
		config: cfg,
		logger: logger,
		box:    box,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.String("sandbox.backend", s.config.Sandbox.Backend),
		zap.String("sandbox.python_bin", s.config.Sandbox.PythonBin),
		zap.String("sandbox.contexts_file", s.config.Sandbox.ContextsFile),
		zap.Int("limits.max_source_chars", s.config.Limits.MaxSourceChars),
		zap.Int("limits.timeout_sec", s.config.Limits.TimeoutSec),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("lessonbox", "A restricted execution sandbox for lesson code")

	s.registerExecuteLessonCodeTool()
	s.registerListContextsTool()

	return s, nil
}

// registerExecuteLessonCodeTool registers the execute_lesson_code tool
func (s *MCPServer) registerExecuteLessonCodeTool() {
	tool := mcp.Tool{
		Name:        "execute_lesson_code",
		Description: "Validate and execute lesson code in a restricted sandbox",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Learner-submitted source code",
				},
				"context": map[string]any{
					"type":        "string",
					"description": "Lesson context id selecting the allow-list policy (optional)",
				},
			},
			Required: []string{"code"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleExecuteLessonCode)
}

// handleExecuteLessonCode handles the execute_lesson_code tool
func (s *MCPServer) handleExecuteLessonCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	lessonContext := request.GetString("context", policy.DefaultContext)

	s.logger.Info("code execution requested",
		zap.String("context", lessonContext),
		zap.Int("code_len", len(code)))

	// The facade never returns an error; every failure mode is encoded in
	// the outcome.
	outcome := s.box.Execute(ctx, code, lessonContext)

	payload, err := json.Marshal(outcome)
	if err != nil {
		return nil, fmt.Errorf("failed to encode outcome: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(payload),
			},
		},
	}, nil
}

// registerListContextsTool registers the list_contexts tool
func (s *MCPServer) registerListContextsTool() {
	tool := mcp.Tool{
		Name:        "list_contexts",
		Description: "List the configured lesson contexts and their limits",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}

	s.mcpServer.AddTool(tool, s.handleListContexts)
}

// contextInfo is the per-context entry returned by list_contexts.
type contextInfo struct {
	Context        string   `json:"context"`
	MaxSourceChars int      `json:"max_source_chars"`
	TimeoutSec     float64  `json:"timeout_sec"`
	AllowedModules []string `json:"allowed_modules,omitempty"`
	WaivedFuncs    []string `json:"waived_functions,omitempty"`
}

// handleListContexts handles the list_contexts tool
func (s *MCPServer) handleListContexts(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	registry := s.box.Registry()

	infos := make([]contextInfo, 0, len(registry.Contexts()))
	for _, name := range registry.Contexts() {
		pol := registry.Resolve(name)
		infos = append(infos, contextInfo{
			Context:        name,
			MaxSourceChars: pol.MaxSourceChars,
			TimeoutSec:     pol.MaxDuration.Seconds(),
			AllowedModules: pol.AllowedModules,
			WaivedFuncs:    pol.WaivedFunctions,
		})
	}

	payload, err := json.Marshal(infos)
	if err != nil {
		return nil, fmt.Errorf("failed to encode contexts: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(payload),
			},
		},
	}, nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
