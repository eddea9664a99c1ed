package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoInput is returned when a run is started without any documents.
// It is the only per-run fatal error besides invalid configuration.
var ErrNoInput = errors.New("pipeline: no documents supplied")

// UnknownDocumentError reports a partial result whose document id does not
// belong to the run. The result is dropped and logged; the run continues.
type UnknownDocumentError struct {
	DocumentID string
}

func (e *UnknownDocumentError) Error() string {
	return fmt.Sprintf("pipeline: partial result references unknown document %q", e.DocumentID)
}
