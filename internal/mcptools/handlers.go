package mcptools

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scrubworks/piimap/internal/document"
	"github.com/scrubworks/piimap/internal/oracle"
	"github.com/scrubworks/piimap/internal/pipeline"
)

// DocumentInput is one document submitted through the detect_pii tool.
type DocumentInput struct {
	ID       string `json:"id" jsonschema:"stable document identifier"`
	Filename string `json:"filename,omitempty" jsonschema:"original file name"`
	MimeType string `json:"mimeType,omitempty" jsonschema:"declared mimetype"`
	Content  string `json:"content" jsonschema:"extracted text content"`
}

// DetectPIIInput is the input for the detect_pii MCP tool.
type DetectPIIInput struct {
	Documents []DocumentInput `json:"documents" jsonschema:"documents to scan"`
}

// DocumentDetections is the per-document slice of the detect_pii output.
type DocumentDetections struct {
	ID  string          `json:"id"`
	PII []oracle.Record `json:"pii"`
}

// DetectPIIOutput is the result of the detect_pii MCP tool.
type DetectPIIOutput struct {
	RunID     string               `json:"runId"`
	Rounds    int                  `json:"rounds"`
	Documents []DocumentDetections `json:"documents"`
	Skipped   []string             `json:"skippedDocuments,omitempty"`
}

// GetPipelineConfigInput is the (empty) input for get_pipeline_config.
type GetPipelineConfigInput struct{}

// GetPipelineConfigOutput reports the effective pipeline configuration.
type GetPipelineConfigOutput struct {
	ChunkSize               int  `json:"chunkSize"`
	ChunkOverlap            int  `json:"chunkOverlap"`
	RepromptingEnabled      bool `json:"repromptingEnabled"`
	MaxRounds               int  `json:"maxRounds"`
	MaxConcurrentDetections int  `json:"maxConcurrentDetections"`
}

// Service handles MCP tool calls by delegating to a Pipeline.
type Service struct {
	pipeline *pipeline.Pipeline
	opts     pipeline.Options
}

// NewService creates a Service around the given pipeline.
func NewService(p *pipeline.Pipeline, opts pipeline.Options) *Service {
	return &Service{pipeline: p, opts: opts}
}

// DetectPII runs the full detection pipeline over the submitted documents.
func (s *Service) DetectPII(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DetectPIIInput,
) (*mcp.CallToolResult, DetectPIIOutput, error) {
	descs := make([]document.Descriptor, 0, len(input.Documents))
	for _, d := range input.Documents {
		descs = append(descs, document.Descriptor{
			ID:       d.ID,
			Filename: d.Filename,
			MimeType: d.MimeType,
			Content:  d.Content,
		})
	}

	res, err := s.pipeline.Run(ctx, descs)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoInput) {
			return nil, DetectPIIOutput{}, errors.New("detect_pii: no documents supplied")
		}
		return nil, DetectPIIOutput{}, err
	}

	out := DetectPIIOutput{
		RunID:   res.RunID,
		Rounds:  res.Rounds,
		Skipped: res.Skipped,
	}
	for _, r := range res.Results {
		pii := r.PII
		if pii == nil {
			pii = []oracle.Record{}
		}
		out.Documents = append(out.Documents, DocumentDetections{ID: r.ID, PII: pii})
	}

	return nil, out, nil
}

// GetPipelineConfig reports the configuration the server was started with.
func (s *Service) GetPipelineConfig(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GetPipelineConfigInput,
) (*mcp.CallToolResult, GetPipelineConfigOutput, error) {
	return nil, GetPipelineConfigOutput{
		ChunkSize:               s.opts.ChunkSize,
		ChunkOverlap:            s.opts.ChunkOverlap,
		RepromptingEnabled:      s.opts.RepromptingEnabled,
		MaxRounds:               s.opts.MaxRounds,
		MaxConcurrentDetections: s.opts.MaxConcurrentDetections,
	}, nil
}
