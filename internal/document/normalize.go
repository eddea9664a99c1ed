package document

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	htmlTagRe     = regexp.MustCompile(`<[^>]+>`)
	multiSpaceRe  = regexp.MustCompile(` {2,}`)
	multiBlankRe  = regexp.MustCompile(`\n{3,}`)
	// Loaders break "Label.: value" lines apart ("Αριθμός Γ.Ε.ΜΗ .: 1805…").
	brokenLabelRe = regexp.MustCompile(`([a-zA-Zα-ωΑ-Ω])\.\s+:`)
	spacePunctRe  = regexp.MustCompile(` ([.,:])`)
)

// Normalize turns raw extracted text into canonical document content:
// HTML comments and tags are stripped, entities decoded, runs of spaces and
// blank lines collapsed, and loader layout artifacts repaired. Applying it
// to already-canonical text changes nothing.
//
// Entities are decoded exactly once, after tag stripping. Markup that is
// itself entity-encoded (&lt;b&gt;) therefore decodes to literal tags and is
// preserved in the output rather than stripped; only a re-normalization
// would remove it. Extracted documents never legitimately carry
// double-encoded markup, so the single pass is deliberate.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = htmlCommentRe.ReplaceAllString(text, "")
	text = htmlTagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = multiBlankRe.ReplaceAllString(text, "\n\n")

	text = brokenLabelRe.ReplaceAllString(text, "$1.:")
	text = spacePunctRe.ReplaceAllString(text, "$1")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")

	return strings.TrimSpace(text)
}
