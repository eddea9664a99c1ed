package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrubworks/piimap/internal/oracle"
	"github.com/scrubworks/piimap/internal/pipeline"
)

func sampleRun() *pipeline.RunResult {
	return &pipeline.RunResult{
		RunID:  "run-1234",
		Rounds: 2,
		Results: []pipeline.Result{
			{
				ID:   "doc-1",
				Name: "contract.docx",
				PII: []oracle.Record{
					{Text: "John Doe", Category: "Name", Type: "direct", Justification: "personal name"},
				},
			},
			{ID: "doc-2", Name: "memo.txt", PII: nil},
		},
		Skipped: []string{"doc-3"},
	}
}

func TestBuild(t *testing.T) {
	report := Build(sampleRun())

	assert.Equal(t, "run-1234", report.RunID)
	assert.Equal(t, 2, report.Rounds)
	assert.NotEmpty(t, report.GeneratedAt)
	assert.Equal(t, []string{"doc-3"}, report.Skipped)

	require.Len(t, report.Documents, 2)
	assert.Equal(t, "doc-1", report.Documents[0].ID)
	assert.Len(t, report.Documents[0].PII, 1)

	// Documents without detections render an empty list, not null.
	assert.NotNil(t, report.Documents[1].PII)
	assert.Empty(t, report.Documents[1].PII)
}

func TestWrite_RendersJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Build(sampleRun())))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "run-1234", decoded["runId"])
	assert.Equal(t, float64(2), decoded["rounds"])

	docs, ok := decoded["documents"].([]any)
	require.True(t, ok)
	require.Len(t, docs, 2)

	second := docs[1].(map[string]any)
	pii, ok := second["pii"].([]any)
	require.True(t, ok, "pii must be an array even when empty")
	assert.Empty(t, pii)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteFile(path, Build(sampleRun())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "run-1234", report.RunID)
	require.Len(t, report.Documents, 2)
	assert.Equal(t, "contract.docx", report.Documents[0].Name)
}
