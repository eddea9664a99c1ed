// Package oracle wraps the external text-classification model that reports
// candidate PII spans for a text fragment.
//
// The pipeline never interprets a record's category or justification; it
// only schedules classify calls and reconciles their outputs. A failing or
// malformed oracle response is therefore a per-fragment event, surfaced as a
// typed error that the caller downgrades to an empty result.
package oracle

import (
	"context"
	"fmt"
	"strings"
)

// Record is one candidate PII span as reported by the oracle. Text is the
// span exactly as it appears in the classified fragment; the remaining
// fields are opaque payload passed through to the final report.
type Record struct {
	Text          string `json:"text"`
	Category      string `json:"category"`
	Type          string `json:"type"`
	Justification string `json:"justification"`
}

// Key is the identity of a record for deduplication purposes.
func (r Record) Key() string {
	return r.Text + "\x00" + r.Category
}

// IsMaskArtifact reports whether the record's text consists entirely of mask
// characters. The oracle sometimes re-detects an already-masked span; such
// records carry no information and are dropped.
func (r Record) IsMaskArtifact() bool {
	if r.Text == "" {
		return false
	}
	return strings.Trim(r.Text, "*") == ""
}

// Classifier is the contract the pipeline consumes: classify one text
// fragment and return the candidate PII spans found in it.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Record, error)
}

// CallError reports a transport-level classify failure (connection refused,
// timeout, non-2xx status). The affected fragment contributes an empty
// result; the run continues.
type CallError struct {
	Err error
}

func (e *CallError) Error() string { return fmt.Sprintf("oracle: call failed: %v", e.Err) }
func (e *CallError) Unwrap() error { return e.Err }

// ParseError reports an oracle response that could not be decoded as a JSON
// array of records. Treated exactly like a CallError by the pipeline.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("oracle: unparseable response: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }
