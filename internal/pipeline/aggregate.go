package pipeline

import (
	"github.com/scrubworks/piimap/internal/oracle"
)

// Aggregator groups completed partial results by document id. Grouping is a
// pure keyed append, so the arrival order of parallel tasks never changes
// the grouped structure beyond slice order within a round, which the fan-out
// already fixes to chunk order.
type Aggregator struct {
	known map[string]bool
	byDoc map[string]*DocumentAccumulator
	order []string
}

// NewAggregator creates an Aggregator for the given run documents. Results
// for any other document id are rejected.
func NewAggregator(documentIDs []string) *Aggregator {
	known := make(map[string]bool, len(documentIDs))
	byDoc := make(map[string]*DocumentAccumulator, len(documentIDs))
	for _, id := range documentIDs {
		known[id] = true
		byDoc[id] = &DocumentAccumulator{DocumentID: id}
	}
	return &Aggregator{
		known: known,
		byDoc: byDoc,
		order: append([]string(nil), documentIDs...),
	}
}

// Add appends a partial result to its document's accumulator. A result
// referencing a document outside the run yields *UnknownDocumentError; the
// caller logs it and drops the result.
func (a *Aggregator) Add(pr PartialResult) error {
	if !a.known[pr.DocumentID] {
		return &UnknownDocumentError{DocumentID: pr.DocumentID}
	}
	acc := a.byDoc[pr.DocumentID]
	acc.RoundResults = append(acc.RoundResults, pr)
	return nil
}

// Accumulator returns the accumulator for a document id, or nil.
func (a *Aggregator) Accumulator(documentID string) *DocumentAccumulator {
	return a.byDoc[documentID]
}

// Spans returns all span texts accumulated so far for a document, with mask
// artifacts filtered out. This is the candidate set the masking engine
// hides before the next round.
func (a *Aggregator) Spans(documentID string) []string {
	acc := a.byDoc[documentID]
	if acc == nil {
		return nil
	}
	var spans []string
	for _, pr := range acc.RoundResults {
		for _, r := range pr.Records {
			if r.IsMaskArtifact() || r.Text == "" {
				continue
			}
			spans = append(spans, r.Text)
		}
	}
	return spans
}

// Merge concatenates all rounds' records for a document in round and chunk
// order and stores them on the accumulator. Deduplication is deliberately
// left to Dedup: plain concatenation keeps the reducer a cheap, pure,
// order-stable merge.
func (a *Aggregator) Merge(documentID string) []oracle.Record {
	acc := a.byDoc[documentID]
	if acc == nil {
		return nil
	}
	var merged []oracle.Record
	for _, pr := range acc.RoundResults {
		merged = append(merged, pr.Records...)
	}
	acc.MergedRecords = merged
	return merged
}

// Dedup removes duplicate records, keeping the first occurrence of each
// (text, category) pair, and drops records whose text is entirely mask
// characters. Running it on its own output changes nothing.
func Dedup(records []oracle.Record) []oracle.Record {
	if len(records) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(records))
	var unique []oracle.Record
	for _, r := range records {
		if r.IsMaskArtifact() {
			continue
		}
		key := r.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, r)
	}
	return unique
}
