package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse_PlainJSONArray(t *testing.T) {
	raw := `[
		{"text": "John Doe", "category": "Name", "type": "direct", "justification": "full personal name"},
		{"text": "d.joe@brand.co", "category": "Email", "type": "direct", "justification": "personal email address"}
	]`

	records, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "John Doe", records[0].Text)
	assert.Equal(t, "Name", records[0].Category)
	assert.Equal(t, "Email", records[1].Category)
}

func TestParseResponse_StripsCodeFence(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"json fence", "```json\n[{\"text\": \"Jane Roe\", \"category\": \"Name\"}]\n```"},
		{"bare fence", "```\n[{\"text\": \"Jane Roe\", \"category\": \"Name\"}]\n```"},
		{"padded fence", "  ```json\n[{\"text\": \"Jane Roe\", \"category\": \"Name\"}]\n```  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := ParseResponse(tc.raw)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "Jane Roe", records[0].Text)
		})
	}
}

func TestParseResponse_EmptyArray(t *testing.T) {
	records, err := ParseResponse("[]")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseResponse_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"prose", "I could not find any PII in this text."},
		{"object not array", `{"text": "John Doe", "category": "Name"}`},
		{"truncated", `[{"text": "John Doe", "cat`},
		{"empty", ""},
		{"record without text", `[{"text": "", "category": "Name"}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseResponse(tc.raw)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tc.raw, parseErr.Raw)
		})
	}
}

func TestRecord_Key(t *testing.T) {
	a := Record{Text: "John Doe", Category: "Name"}
	b := Record{Text: "John Doe", Category: "Name", Justification: "different wording"}
	c := Record{Text: "John Doe", Category: "Email"}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestRecord_IsMaskArtifact(t *testing.T) {
	assert.True(t, Record{Text: "****"}.IsMaskArtifact())
	assert.True(t, Record{Text: "*"}.IsMaskArtifact())
	assert.False(t, Record{Text: "**JD**"}.IsMaskArtifact())
	assert.False(t, Record{Text: "John Doe"}.IsMaskArtifact())
	assert.False(t, Record{Text: ""}.IsMaskArtifact())
}
