package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewServer creates an MCP server with the find_dead_code and
// get_issue_counts tools registered, mirroring the teacher's
// NewCodeIntelMCPServer registration pattern but against this linter's
// own Service.
func NewServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "deadcode",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_dead_code",
		Description: "Analyze a project for unused files, exports, types, enum/class members, unlisted and unresolved specifiers, and unused dependencies. Returns every finding grouped by issue type.",
	}, svc.FindDeadCode)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_issue_counts",
		Description: "Analyze a project and return only the issue counts by type plus the processed/total file counters, without the full finding list.",
	}, svc.GetIssueCounts)

	return server
}

// RunServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunServerStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunServerHTTP starts an HTTP server exposing the tools at addr.
func RunServerHTTP(ctx context.Context, svc *Service, addr string) error {
	server := NewServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
