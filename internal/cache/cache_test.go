package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrubworks/piimap/internal/oracle"
)

// countingClassifier records every fragment it is asked to classify.
type countingClassifier struct {
	calls   int
	records []oracle.Record
	err     error
}

func (c *countingClassifier) Classify(_ context.Context, _ string) ([]oracle.Record, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.records, nil
}

func TestKey_Deterministic(t *testing.T) {
	assert.Equal(t, Key("John Doe"), Key("John Doe"))
	assert.NotEqual(t, Key("John Doe"), Key("Jane Roe"))
	assert.Len(t, Key("anything"), 64)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	defer s.Close()

	_, ok := s.Get(Key("fragment"))
	assert.False(t, ok)

	want := []oracle.Record{{Text: "John Doe", Category: "Name"}}
	s.Set(Key("fragment"), want)

	got, ok := s.Get(Key("fragment"))
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestBoltStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classify.db")

	s, err := NewBolt(path)
	require.NoError(t, err)

	want := []oracle.Record{
		{Text: "d.joe@brand.co", Category: "Email", Type: "direct", Justification: "personal email"},
	}
	s.Set(Key("fragment"), want)

	got, ok := s.Get(Key("fragment"))
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, s.Close())

	// Reopen: entries survive the restart.
	s, err = NewBolt(path)
	require.NoError(t, err)
	defer s.Close()

	got, ok = s.Get(Key("fragment"))
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestBoltStore_MissingKey(t *testing.T) {
	s, err := NewBolt(filepath.Join(t.TempDir(), "classify.db"))
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.Get(Key("never stored"))
	assert.False(t, ok)
}

func TestWrap_CachesSuccessfulResults(t *testing.T) {
	next := &countingClassifier{records: []oracle.Record{{Text: "John Doe", Category: "Name"}}}
	c := Wrap(next, NewMemory())

	first, err := c.Classify(context.Background(), "fragment text")
	require.NoError(t, err)

	second, err := c.Classify(context.Background(), "fragment text")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
}

func TestWrap_DistinctFragmentsMissSeparately(t *testing.T) {
	next := &countingClassifier{}
	c := Wrap(next, NewMemory())

	_, err := c.Classify(context.Background(), "fragment one")
	require.NoError(t, err)
	_, err = c.Classify(context.Background(), "fragment two")
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
}

func TestWrap_NeverCachesErrors(t *testing.T) {
	next := &countingClassifier{err: errors.New("oracle down")}
	c := Wrap(next, NewMemory())

	_, err := c.Classify(context.Background(), "fragment text")
	require.Error(t, err)

	// The failure was not recorded; the next call reaches the oracle again.
	next.err = nil
	next.records = []oracle.Record{{Text: "John Doe", Category: "Name"}}

	got, err := c.Classify(context.Background(), "fragment text")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, next.calls)
}
