// Package export renders a finished run as a JSON report.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/scrubworks/piimap/internal/oracle"
	"github.com/scrubworks/piimap/internal/pipeline"
)

// Report is the top-level JSON export structure for one run.
type Report struct {
	RunID       string           `json:"runId"`
	GeneratedAt string           `json:"generatedAt"`
	Rounds      int              `json:"rounds"`
	Documents   []DocumentReport `json:"documents"`
	Skipped     []string         `json:"skippedDocuments,omitempty"`
}

// DocumentReport is the final detection list for one document.
type DocumentReport struct {
	ID   string          `json:"id"`
	Name string          `json:"name,omitempty"`
	PII  []oracle.Record `json:"pii"`
}

// Build assembles a Report from a run result.
func Build(res *pipeline.RunResult) *Report {
	report := &Report{
		RunID:       res.RunID,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Rounds:      res.Rounds,
		Skipped:     res.Skipped,
	}
	for _, r := range res.Results {
		pii := r.PII
		if pii == nil {
			pii = []oracle.Record{} // render as [] rather than null
		}
		report.Documents = append(report.Documents, DocumentReport{ID: r.ID, Name: r.Name, PII: pii})
	}
	return report
}

// Write renders the report as indented JSON to w.
func Write(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("export: encode report: %w", err)
	}
	return nil
}

// WriteFile renders the report to the given path, or to stdout when path is
// empty or "-".
func WriteFile(path string, report *Report) error {
	if path == "" || path == "-" {
		return Write(os.Stdout, report)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, report); err != nil {
		return err
	}
	return f.Sync()
}
