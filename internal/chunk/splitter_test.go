package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSplitter_InvalidParameters(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -10, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewSplitter(tc.size, tc.overlap)
			require.Error(t, err)
			assert.Nil(t, s)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.size, cfgErr.Size)
			assert.Equal(t, tc.overlap, cfgErr.Overlap)
		})
	}
}

func TestSplit_ShortTextIsSingleFragment(t *testing.T) {
	s, err := NewSplitter(1024, 128)
	require.NoError(t, err)

	text := "John Doe's email is d.joe@brand.co"
	fragments := s.Split(text)

	require.Len(t, fragments, 1)
	assert.Equal(t, text, fragments[0])
}

func TestSplit_FragmentsRespectSizeBound(t *testing.T) {
	s, err := NewSplitter(64, 16)
	require.NoError(t, err)

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	fragments := s.Split(text)

	require.Greater(t, len(fragments), 1)
	for i, f := range fragments {
		assert.LessOrEqualf(t, len(f), 64, "fragment %d exceeds size", i)
		assert.NotEmpty(t, f)
	}
}

// Removing the declared overlap from every fragment after the first must
// reconstruct the original text exactly.
func TestSplit_Reconstruction(t *testing.T) {
	const overlap = 16
	s, err := NewSplitter(80, overlap)
	require.NoError(t, err)

	texts := []string{
		strings.Repeat("Sentence one. Sentence two! Sentence three; done. ", 30),
		strings.Repeat("word ", 200),
		strings.Repeat("paragraph body text here.\n\nanother paragraph follows.\n", 25),
	}

	for _, text := range texts {
		fragments := s.Split(text)
		require.Greater(t, len(fragments), 1)

		var b strings.Builder
		b.WriteString(fragments[0])
		for _, f := range fragments[1:] {
			b.WriteString(f[overlap:])
		}
		assert.Equal(t, text, b.String())
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s, err := NewSplitter(100, 20)
	require.NoError(t, err)

	text := strings.Repeat("Alpha beta gamma delta. Epsilon zeta eta theta! ", 50)

	first := s.Split(text)
	second := s.Split(text)
	assert.Equal(t, first, second)
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	s, err := NewSplitter(60, 8)
	require.NoError(t, err)

	// Each paragraph fits in a fragment; the splitter should cut at the
	// paragraph boundary rather than mid-sentence.
	text := strings.Repeat("A short paragraph of text here.\n\n", 10)
	fragments := s.Split(text)

	require.Greater(t, len(fragments), 1)
	for _, f := range fragments[:len(fragments)-1] {
		assert.True(t, strings.HasSuffix(f, "\n\n"), "fragment %q should end at a paragraph break", f)
	}
}

func TestSplit_NeverCutsMidRune(t *testing.T) {
	s, err := NewSplitter(50, 10)
	require.NoError(t, err)

	text := strings.Repeat("Αριθμός μητρώου πελάτη και διεύθυνση κατοικίας. ", 30)
	for _, f := range s.Split(text) {
		assert.True(t, utf8.ValidString(f), "fragment cut mid-rune: %q", f)
	}
}

func TestSplit_NoSeparatorFallsBackToRawBoundary(t *testing.T) {
	s, err := NewSplitter(32, 4)
	require.NoError(t, err)

	text := strings.Repeat("x", 200)
	fragments := s.Split(text)

	require.Greater(t, len(fragments), 1)
	for _, f := range fragments {
		assert.LessOrEqual(t, len(f), 32)
	}

	var b strings.Builder
	b.WriteString(fragments[0])
	for _, f := range fragments[1:] {
		b.WriteString(f[4:])
	}
	assert.Equal(t, text, b.String())
}
