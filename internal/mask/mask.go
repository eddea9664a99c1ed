// Package mask rewrites text so that already-detected PII spans are hidden
// before a further detection round.
//
// Matching is done on a normalized view of the text (Unicode canonical
// decomposition, combining marks stripped, case folded) so that accented and
// case variants of a detected span are caught, while replacement happens on
// the original bytes: every matched byte becomes '*', everything else stays
// byte-for-byte unchanged. Masked output therefore always has the same
// length as the input, and masking is idempotent for a fixed span set.
package mask

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaskRune is the placeholder character written over matched spans.
const MaskRune = '*'

// folded is a normalized rendering of a string together with a map from
// every normalized byte back to the original rune that produced it.
type folded struct {
	text  string
	start []int // start[i]: original byte offset of the source rune
	end   []int // end[i]: original byte offset just past the source rune
}

// Fold returns the normalized form used for matching: NFD decomposition with
// combining marks removed and all runes lowercased. "José" and "jose" fold
// to the same string.
func Fold(s string) string {
	return fold(s).text
}

func fold(s string) folded {
	var b strings.Builder
	var starts, ends []int

	// Decode explicitly rather than ranging: an invalid byte decodes to
	// U+FFFD but consumes exactly one source byte, and the offset map must
	// record the consumed width, not the replacement rune's width.
	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		for _, dr := range norm.NFD.String(string(r)) {
			if unicode.Is(unicode.Mn, dr) {
				continue
			}
			lr := unicode.ToLower(dr)
			n, _ := b.WriteRune(lr)
			for k := 0; k < n; k++ {
				starts = append(starts, i)
				ends = append(ends, i+w)
			}
		}
		i += w
	}

	return folded{text: b.String(), start: starts, end: ends}
}

// span is a half-open byte range [start, end) in the original text.
type span struct {
	start, end int
}

// Apply masks every occurrence of the given candidate spans in text.
// Candidates that are empty or consist entirely of mask characters are
// ignored; a candidate made of asterisks would otherwise match previously
// masked regions and break idempotence. When nothing matches, the input
// string is returned unchanged.
func Apply(text string, candidates []string) string {
	if text == "" || len(candidates) == 0 {
		return text
	}

	f := fold(text)
	var ranges []span

	for _, cand := range candidates {
		needle := Fold(cand)
		if needle == "" || strings.Trim(needle, string(MaskRune)) == "" {
			continue
		}
		for _, m := range findAll(f.text, needle) {
			ranges = append(ranges, span{
				start: f.start[m],
				end:   f.end[m+len(needle)-1],
			})
		}
	}

	if len(ranges) == 0 {
		return text
	}

	out := []byte(text)
	for _, r := range mergeSpans(ranges) {
		for i := r.start; i < r.end; i++ {
			out[i] = MaskRune
		}
	}
	return string(out)
}

// findAll returns the start offsets of every occurrence of needle in
// haystack, overlapping matches included.
func findAll(haystack, needle string) []int {
	var offsets []int
	for from := 0; ; {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return offsets
		}
		offsets = append(offsets, from+idx)
		from += idx + 1
	}
}

// mergeSpans collapses overlapping and adjacent ranges into the minimal set
// of non-overlapping spans.
func mergeSpans(ranges []span) []span {
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].start != ranges[j].start {
			return ranges[i].start < ranges[j].start
		}
		return ranges[i].end < ranges[j].end
	})

	merged := ranges[:1]
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
