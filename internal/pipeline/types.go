package pipeline

import (
	"github.com/scrubworks/piimap/internal/oracle"
)

// Phase identifies a state of the per-run detection state machine.
//
// The only cycle is Decide → Mask → Split, and it is bounded by the run's
// round limit; every other transition moves strictly forward to Done.
type Phase int

const (
	PhaseLoad Phase = iota
	PhaseSplit
	PhaseDetect
	PhaseAggregate
	PhaseDecide
	PhaseMask
	PhaseReduce
	PhaseDedup
	PhaseDone
)

func (p Phase) String() string {
	names := [...]string{
		"load", "split", "detect", "aggregate", "decide", "mask", "reduce", "dedup", "done",
	}
	if int(p) < len(names) {
		return names[p]
	}
	return "unknown"
}

// PartialResult is one chunk's oracle output, tagged with the document and
// round it belongs to. Round is 1-based: it names the detection round that
// produced the result, matching RunState.Round once that round completes.
// A failed classify call yields an empty Records slice; Err is kept for
// logging only and never aborts the run.
type PartialResult struct {
	DocumentID string
	ChunkIndex int
	Round      int
	Records    []oracle.Record
	Err        error
}

// DocumentAccumulator collects a single document's partial results across
// all rounds. MergedRecords is filled only at finalization.
type DocumentAccumulator struct {
	DocumentID    string
	RoundResults  []PartialResult
	MergedRecords []oracle.Record
}

// Result is the final output for one document.
type Result struct {
	ID   string          `json:"id"`
	Name string          `json:"name,omitempty"`
	PII  []oracle.Record `json:"pii"`
}

// RunResult is the outcome of one pipeline run.
type RunResult struct {
	RunID   string
	Rounds  int
	Results []Result

	// Skipped lists documents that failed to load and were excluded.
	Skipped []string
}

// ProgressStatus is the state of a unit of work within a phase.
type ProgressStatus string

const (
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// ProgressEvent is emitted while a run executes.
type ProgressEvent struct {
	Phase      Phase
	Round      int
	DocumentID string
	Status     ProgressStatus
	Message    string
}
