package mcptools

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrubworks/piimap/internal/oracle"
	"github.com/scrubworks/piimap/internal/pipeline"
)

// spanClassifier reports each configured record whose text occurs in the
// fragment.
type spanClassifier struct {
	spans []oracle.Record
}

func (c *spanClassifier) Classify(_ context.Context, text string) ([]oracle.Record, error) {
	var found []oracle.Record
	for _, r := range c.spans {
		if strings.Contains(text, r.Text) {
			found = append(found, r)
		}
	}
	return found, nil
}

func newTestService(t *testing.T, classifier oracle.Classifier) *Service {
	t.Helper()

	opts := pipeline.DefaultOptions()
	opts.LogLevel = "error"

	p, err := pipeline.New(classifier, opts)
	require.NoError(t, err)
	t.Cleanup(p.Close)

	return NewService(p, opts)
}

func TestDetectPII(t *testing.T) {
	svc := newTestService(t, &spanClassifier{spans: []oracle.Record{
		{Text: "John Doe", Category: "Name", Type: "direct", Justification: "personal name"},
	}})

	_, out, err := svc.DetectPII(context.Background(), nil, DetectPIIInput{
		Documents: []DocumentInput{
			{ID: "doc-1", Filename: "note.txt", Content: "John Doe works here."},
			{ID: "doc-2", Content: "nothing sensitive"},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, 2, out.Rounds)
	require.Len(t, out.Documents, 2)

	assert.Equal(t, "doc-1", out.Documents[0].ID)
	require.Len(t, out.Documents[0].PII, 1)
	assert.Equal(t, "John Doe", out.Documents[0].PII[0].Text)

	// Clean documents still appear, with an empty (non-nil) list.
	assert.Equal(t, "doc-2", out.Documents[1].ID)
	assert.NotNil(t, out.Documents[1].PII)
	assert.Empty(t, out.Documents[1].PII)
}

func TestDetectPII_NoDocuments(t *testing.T) {
	svc := newTestService(t, &spanClassifier{})

	_, _, err := svc.DetectPII(context.Background(), nil, DetectPIIInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no documents")
}

func TestDetectPII_ReportsSkippedDocuments(t *testing.T) {
	svc := newTestService(t, &spanClassifier{})

	_, out, err := svc.DetectPII(context.Background(), nil, DetectPIIInput{
		Documents: []DocumentInput{
			{ID: "doc-1", Content: "some text"},
			{ID: "doc-empty", Content: ""},
		},
	})
	require.NoError(t, err)

	require.Len(t, out.Documents, 1)
	assert.Equal(t, []string{"doc-empty"}, out.Skipped)
}

func TestGetPipelineConfig(t *testing.T) {
	svc := newTestService(t, &spanClassifier{})

	_, out, err := svc.GetPipelineConfig(context.Background(), nil, GetPipelineConfigInput{})
	require.NoError(t, err)

	assert.Equal(t, 1024, out.ChunkSize)
	assert.Equal(t, 128, out.ChunkOverlap)
	assert.True(t, out.RepromptingEnabled)
	assert.Equal(t, 2, out.MaxRounds)
	assert.Equal(t, 25, out.MaxConcurrentDetections)
}
