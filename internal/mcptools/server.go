// Package mcptools exposes the detection pipeline as an MCP server, so that
// agent frontends can submit documents as structured tool calls instead of
// shelling out to the CLI.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scrubworks/piimap/internal/pipeline"
)

// version is stamped by the build; it doubles as the MCP server version.
var version = "dev"

// NewServer creates an MCP server with the detection tools registered:
// detect_pii and get_pipeline_config.
func NewServer(p *pipeline.Pipeline, opts pipeline.Options) *mcp.Server {
	svc := NewService(p, opts)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "piimap",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_pii",
		Description: "Detect PII spans in a batch of documents. Returns one deduplicated detection list per document.",
	}, svc.DetectPII)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_pipeline_config",
		Description: "Report the pipeline's effective chunking, concurrency and reprompting configuration.",
	}, svc.GetPipelineConfig)

	return server
}

// RunStdio serves MCP on stdio, blocking until stdin closes or the context
// is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
