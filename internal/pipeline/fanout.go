package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scrubworks/piimap/internal/chunk"
	"github.com/scrubworks/piimap/internal/logger"
	"github.com/scrubworks/piimap/internal/oracle"
)

// FanOut dispatches one classify task per chunk under a global concurrency
// cap and collects every outcome before returning (fan-in barrier).
//
// Task failures are isolated by design: a classify error or timeout resolves
// that task to an empty partial result and is logged, while sibling tasks
// run to completion undisturbed. Nothing cancels the round.
type FanOut struct {
	classifier  oracle.Classifier
	limit       int
	taskTimeout time.Duration
	onProgress  func(ProgressEvent)
	log         *logger.Logger
}

// NewFanOut creates a FanOut. onProgress may be nil.
func NewFanOut(classifier oracle.Classifier, limit int, taskTimeout time.Duration, onProgress func(ProgressEvent), log *logger.Logger) *FanOut {
	if limit < 1 {
		limit = 1
	}
	if taskTimeout <= 0 {
		taskTimeout = 30 * time.Second
	}
	return &FanOut{
		classifier:  classifier,
		limit:       limit,
		taskTimeout: taskTimeout,
		onProgress:  onProgress,
		log:         log,
	}
}

// Run classifies every chunk of a round in parallel and returns one
// PartialResult per chunk, in chunk order. It does not return until all
// tasks have completed or definitively failed.
func (f *FanOut) Run(ctx context.Context, round int, chunks []chunk.Chunk) []PartialResult {
	results := make([]PartialResult, len(chunks))

	var g errgroup.Group
	g.SetLimit(f.limit)

	for i, c := range chunks {
		g.Go(func() error {
			results[i] = f.classify(ctx, round, c)
			return nil
		})
	}

	// Workers never return errors; Wait is purely the fan-in barrier.
	_ = g.Wait()

	return results
}

// classify runs one bounded classify call. Every failure path produces an
// empty partial result for this chunk only.
func (f *FanOut) classify(ctx context.Context, round int, c chunk.Chunk) PartialResult {
	tctx, cancel := context.WithTimeout(ctx, f.taskTimeout)
	defer cancel()

	f.emit(ProgressEvent{Phase: PhaseDetect, Round: round, DocumentID: c.DocumentID, Status: ProgressWorking})

	records, err := f.classifier.Classify(tctx, c.Text)
	if err != nil {
		f.log.Warnf("classify_failed", "doc=%s chunk=%d round=%d: %v", c.DocumentID, c.Index, round, err)
		f.emit(ProgressEvent{
			Phase: PhaseDetect, Round: round, DocumentID: c.DocumentID,
			Status: ProgressFailed, Message: err.Error(),
		})
		return PartialResult{DocumentID: c.DocumentID, ChunkIndex: c.Index, Round: round, Err: err}
	}

	f.emit(ProgressEvent{Phase: PhaseDetect, Round: round, DocumentID: c.DocumentID, Status: ProgressComplete})
	return PartialResult{DocumentID: c.DocumentID, ChunkIndex: c.Index, Round: round, Records: records}
}

func (f *FanOut) emit(ev ProgressEvent) {
	if f.onProgress != nil {
		f.onProgress(ev)
	}
}
