// Package document defines the canonical in-pipeline document and the
// normalization applied to raw extracted text before chunking.
package document

import (
	"fmt"
	"strings"
)

// MimeDOCX is the mimetype emitted by loaders for Word documents, the most
// common upload format this pipeline sees.
const MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Descriptor is one uploaded document as handed over by an external loader:
// raw extracted text plus identity metadata. Format extraction (DOCX, PDF,
// RTF, ODT) happens upstream of this package.
type Descriptor struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Content  string `json:"rawContent"`
}

// Document is the pipeline-owned document. Content is canonical text
// produced by Normalize; it is never mutated in place — masking rounds
// derive fresh snapshots from it.
type Document struct {
	ID       string
	Name     string
	MimeType string
	Content  string
}

// LoadError reports a document that could not be admitted into a run.
// It is per-document: the pipeline skips the document and continues.
type LoadError struct {
	ID     string
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("document: load %q: %s", e.ID, e.Reason)
}

// New builds a Document from a descriptor, normalizing its content.
// It returns a *LoadError when the descriptor is missing an id or when
// normalization leaves no content to scan.
func New(d Descriptor) (Document, error) {
	if strings.TrimSpace(d.ID) == "" {
		return Document{}, &LoadError{ID: d.ID, Reason: "missing document id"}
	}

	content := Normalize(d.Content)
	if content == "" {
		return Document{}, &LoadError{ID: d.ID, Reason: "no content after normalization"}
	}

	return Document{
		ID:       d.ID,
		Name:     d.Filename,
		MimeType: d.MimeType,
		Content:  content,
	}, nil
}

// IsWordDocument reports whether a descriptor looks like a DOCX upload.
// Callers that accept every format simply skip this predicate.
func IsWordDocument(d Descriptor) bool {
	return strings.HasSuffix(strings.ToLower(d.Filename), ".docx") && d.MimeType == MimeDOCX
}
