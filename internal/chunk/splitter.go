// Package chunk splits canonical document text into bounded, overlapping
// fragments for parallel classification.
//
// Fragments are literal substrings of the input: the splitter never drops or
// rewrites characters, so concatenating fragments while removing the overlap
// regions reconstructs the original text exactly. Split points prefer
// paragraph breaks, then line and sentence breaks, then clause breaks, then
// plain spaces, and fall back to a raw rune boundary when a fragment has no
// usable separator.
package chunk

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators is the split-point preference order, strongest first.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", " "}

// ConfigError reports invalid chunking parameters. It is structural: a run
// is rejected before any document is processed.
type ConfigError struct {
	Size    int
	Overlap int
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("chunk: invalid parameters size=%d overlap=%d: %s", e.Size, e.Overlap, e.Reason)
}

// Chunk is one fragment of a document's content, ordered by Index within a
// round. Boundaries may shift between rounds because masking changes the
// text, but within a round they are deterministic.
type Chunk struct {
	DocumentID string
	Index      int
	Text       string
}

// Splitter produces overlapping fragments of at most size bytes, where each
// fragment after the first repeats up to overlap bytes of its predecessor.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// NewSplitter validates the chunking parameters and returns a Splitter.
func NewSplitter(size, overlap int) (*Splitter, error) {
	switch {
	case size <= 0:
		return nil, &ConfigError{Size: size, Overlap: overlap, Reason: "size must be positive"}
	case overlap < 0:
		return nil, &ConfigError{Size: size, Overlap: overlap, Reason: "overlap must be non-negative"}
	case overlap >= size:
		return nil, &ConfigError{Size: size, Overlap: overlap, Reason: "overlap must be less than size"}
	}
	return &Splitter{size: size, overlap: overlap, separators: DefaultSeparators}, nil
}

// Size returns the configured fragment size.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured fragment overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// Split cuts text into ordered fragments. Text shorter than the configured
// size is returned whole as a single fragment. The result is deterministic:
// the same text and parameters always produce the same fragments.
func (s *Splitter) Split(text string) []string {
	if len(text) < s.size {
		return []string{text}
	}

	var fragments []string
	start := 0

	for {
		if len(text)-start <= s.size {
			fragments = append(fragments, text[start:])
			return fragments
		}

		cut := s.cutPoint(text, start)
		fragments = append(fragments, text[start:cut])

		// The next fragment re-reads up to overlap bytes of this one.
		next := cut - s.overlap
		if next <= start {
			next = start + 1
		}
		// Never start mid-rune.
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}
}

// cutPoint finds where the fragment beginning at start should end. It picks
// the latest occurrence of the strongest separator inside the window, as
// long as cutting there still makes progress past the overlap region.
// Without any usable separator it cuts at the window edge on a rune boundary.
func (s *Splitter) cutPoint(text string, start int) int {
	window := text[start : start+s.size]
	floor := s.overlap // a cut at or before this yields no forward progress

	for _, sep := range s.separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := idx + len(sep)
		if cut > floor {
			return start + cut
		}
	}

	// Raw boundary: back off to the start of the rune straddling the edge.
	cut := start + s.size
	for cut > start+floor+1 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return cut
}
