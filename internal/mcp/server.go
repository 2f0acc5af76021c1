// Package mcp exposes the solving pipeline and case memory as MCP
// tools, so editor agents can solve problems and query past cases.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/mathmentor/mentor/internal/casebank"
	"github.com/mathmentor/mentor/internal/pipeline"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes solving and case memory tools.
type Server struct {
	orch *pipeline.Orchestrator
	bank *casebank.Store
	mcp  *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(orch *pipeline.Orchestrator, bank *casebank.Store) *Server {
	s := &Server{
		orch: orch,
		bank: bank,
	}

	s.mcp = server.NewMCPServer(
		"mentor",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(solveProblemTool, s.handleSolveProblem)
	s.mcp.AddTool(recordFeedbackTool, s.handleRecordFeedback)
	s.mcp.AddTool(discardTraceTool, s.handleDiscardTrace)
	s.mcp.AddTool(findSimilarCasesTool, s.handleFindSimilarCases)
	s.mcp.AddTool(listCasesTool, s.handleListCases)
	s.mcp.AddTool(resetCaseMemoryTool, s.handleResetCaseMemory)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
