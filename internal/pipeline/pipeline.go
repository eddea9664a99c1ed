// Package pipeline implements the map-reduce PII detection pipeline:
// normalize and load documents, split them into overlapping chunks, fan the
// chunks out to the classification oracle under a concurrency cap, aggregate
// partial results per document, optionally mask found spans and reprompt for
// a bounded number of rounds, then reduce and deduplicate into one final
// record list per document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scrubworks/piimap/internal/chunk"
	"github.com/scrubworks/piimap/internal/document"
	"github.com/scrubworks/piimap/internal/logger"
	"github.com/scrubworks/piimap/internal/mask"
	"github.com/scrubworks/piimap/internal/oracle"
)

// Options configures a Pipeline.
type Options struct {
	ChunkSize               int
	ChunkOverlap            int
	RepromptingEnabled      bool
	MaxRounds               int
	MaxConcurrentDetections int
	TaskTimeout             time.Duration
	LogLevel                string
}

// DefaultOptions mirrors the service defaults.
func DefaultOptions() Options {
	return Options{
		ChunkSize:               1024,
		ChunkOverlap:            128,
		RepromptingEnabled:      true,
		MaxRounds:               2,
		MaxConcurrentDetections: 25,
		TaskTimeout:             30 * time.Second,
		LogLevel:                "info",
	}
}

// Pipeline coordinates detection runs. It holds no per-run state: Run builds
// everything it needs per invocation, so one Pipeline may serve concurrent,
// unrelated runs.
type Pipeline struct {
	classifier oracle.Classifier
	opts       Options
	splitter   *chunk.Splitter
	fanout     *FanOut
	progress   *ProgressReporter
	log        *logger.Logger
}

// New validates opts and creates a Pipeline around the given classifier.
// Invalid chunk parameters surface as *chunk.ConfigError before any
// document is touched.
func New(classifier oracle.Classifier, opts Options) (*Pipeline, error) {
	splitter, err := chunk.NewSplitter(opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if opts.MaxRounds < 1 {
		return nil, fmt.Errorf("pipeline: max rounds must be at least 1, got %d", opts.MaxRounds)
	}

	log := logger.New("pipeline", opts.LogLevel)
	progress := NewProgressReporter()

	return &Pipeline{
		classifier: classifier,
		opts:       opts,
		splitter:   splitter,
		fanout:     NewFanOut(classifier, opts.MaxConcurrentDetections, opts.TaskTimeout, progress.Emit, log),
		progress:   progress,
		log:        log,
	}, nil
}

// Progress returns a channel that emits progress events across runs.
func (p *Pipeline) Progress() <-chan ProgressEvent {
	return p.progress.Subscribe()
}

// Close shuts down the progress reporter.
func (p *Pipeline) Close() {
	p.progress.Close()
}

// run carries the state of one pipeline invocation.
type run struct {
	id       string
	docs     []document.Document
	contents map[string]string // current (possibly masked) snapshot per doc
	agg      *Aggregator
	state    *RunState
	skipped  []string
	chunks   []chunk.Chunk   // chunks of the round being detected
	partials []PartialResult // results of the round being aggregated
}

// Run executes the full state machine over the given document descriptors.
// It returns ErrNoInput when descs is empty; individual documents that fail
// to load are skipped and reported in RunResult.Skipped.
func (p *Pipeline) Run(ctx context.Context, descs []document.Descriptor) (*RunResult, error) {
	r := &run{
		id:       uuid.NewString(),
		contents: make(map[string]string),
		state: &RunState{
			MaxRounds:          p.opts.MaxRounds,
			RepromptingEnabled: p.opts.RepromptingEnabled,
		},
	}

	p.log.Infof("run_start", "run=%s documents=%d max_rounds=%d reprompting=%v",
		r.id, len(descs), p.opts.MaxRounds, p.opts.RepromptingEnabled)

	var results []Result

	for phase := PhaseLoad; phase != PhaseDone; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch phase {
		case PhaseLoad:
			if err := p.load(r, descs); err != nil {
				return nil, err
			}
			phase = PhaseSplit

		case PhaseSplit:
			p.split(r)
			phase = PhaseDetect

		case PhaseDetect:
			r.partials = p.fanout.Run(ctx, r.state.Round+1, r.chunks)
			phase = PhaseAggregate

		case PhaseAggregate:
			// The detection barrier has passed, so the round is complete
			// before its partials are grouped; a partial's round label
			// never exceeds the completed-round count.
			r.state.CompleteRound()
			p.aggregate(r)
			phase = PhaseDecide

		case PhaseDecide:
			if r.state.ShouldReprompt() {
				phase = PhaseMask
			} else {
				phase = PhaseReduce
			}

		case PhaseMask:
			p.maskDocuments(r)
			phase = PhaseSplit

		case PhaseReduce:
			for _, doc := range r.docs {
				r.agg.Merge(doc.ID)
			}
			phase = PhaseDedup

		case PhaseDedup:
			results = p.finalize(r)
			phase = PhaseDone
		}
	}

	p.log.Infof("run_done", "run=%s rounds=%d documents=%d", r.id, r.state.Round, len(r.docs))

	return &RunResult{
		RunID:   r.id,
		Rounds:  r.state.Round,
		Results: results,
		Skipped: r.skipped,
	}, nil
}

// load admits documents into the run. An empty descriptor list is fatal;
// a document that fails to load is skipped and logged.
func (p *Pipeline) load(r *run, descs []document.Descriptor) error {
	if len(descs) == 0 {
		return ErrNoInput
	}

	for _, d := range descs {
		doc, err := document.New(d)
		if err != nil {
			var loadErr *document.LoadError
			if errors.As(err, &loadErr) {
				p.log.Warnf("load_skipped", "run=%s doc=%s: %s", r.id, d.ID, loadErr.Reason)
				r.skipped = append(r.skipped, d.ID)
				continue
			}
			return err
		}
		r.docs = append(r.docs, doc)
		r.contents[doc.ID] = doc.Content
	}

	ids := make([]string, len(r.docs))
	for i, doc := range r.docs {
		ids[i] = doc.ID
	}
	r.agg = NewAggregator(ids)

	p.log.Debugf("load_done", "run=%s loaded=%d skipped=%d", r.id, len(r.docs), len(r.skipped))
	return nil
}

// split derives this round's chunks from the current content snapshots.
func (p *Pipeline) split(r *run) {
	r.chunks = r.chunks[:0]
	for _, doc := range r.docs {
		fragments := p.splitter.Split(r.contents[doc.ID])
		for i, text := range fragments {
			r.chunks = append(r.chunks, chunk.Chunk{DocumentID: doc.ID, Index: i, Text: text})
		}
		p.log.Debugf("split", "run=%s doc=%s round=%d chunks=%d", r.id, doc.ID, r.state.Round+1, len(fragments))
	}
}

// aggregate groups the round's partial results per document, dropping any
// that reference a document outside the run.
func (p *Pipeline) aggregate(r *run) {
	for _, pr := range r.partials {
		if err := r.agg.Add(pr); err != nil {
			p.log.Warnf("aggregate_dropped", "run=%s: %v", r.id, err)
		}
	}
	r.partials = nil
}

// maskDocuments rewrites each document's snapshot so that spans found so far
// are hidden from the next round. Documents without accumulated records pass
// through unchanged.
func (p *Pipeline) maskDocuments(r *run) {
	for _, doc := range r.docs {
		spans := r.agg.Spans(doc.ID)
		if len(spans) == 0 {
			continue
		}
		masked := mask.Apply(r.contents[doc.ID], spans)
		r.contents[doc.ID] = masked
		p.progress.Emit(ProgressEvent{
			Phase: PhaseMask, Round: r.state.Round, DocumentID: doc.ID, Status: ProgressComplete,
		})
	}
}

// finalize deduplicates each document's merged records and builds the final
// per-document results. Every successfully loaded document gets an entry;
// the PII list is empty for documents without detections.
func (p *Pipeline) finalize(r *run) []Result {
	results := make([]Result, 0, len(r.docs))
	for _, doc := range r.docs {
		acc := r.agg.Accumulator(doc.ID)
		final := Dedup(acc.MergedRecords)
		results = append(results, Result{ID: doc.ID, Name: doc.Name, PII: final})
		p.log.Infof("document_done", "run=%s doc=%s detections=%d", r.id, doc.ID, len(final))
	}
	return results
}
