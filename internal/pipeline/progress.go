package pipeline

import "fmt"

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{ch: make(chan ProgressEvent, 64)}
}

// Emit sends a progress event without blocking. If no consumer keeps up,
// the event is dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress renders an event as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	where := event.Phase.String()
	if event.DocumentID != "" {
		where = fmt.Sprintf("%s %s", where, event.DocumentID)
	}
	switch event.Status {
	case ProgressWorking:
		return fmt.Sprintf("  ● round %d: %s...", event.Round, where)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ round %d: %s", event.Round, where)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ round %d: %s: %s", event.Round, where, event.Message)
	default:
		return fmt.Sprintf("  ? round %d: %s", event.Round, where)
	}
}
