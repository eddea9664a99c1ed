package cache

import (
	"context"

	"github.com/scrubworks/piimap/internal/oracle"
)

// Compile-time check.
var _ oracle.Classifier = (*Classifier)(nil)

// Classifier wraps an oracle.Classifier with a Store. Hits skip the model
// entirely; misses are classified and then recorded. Failed classify calls
// are never cached, so transient oracle errors stay transient.
type Classifier struct {
	next  oracle.Classifier
	store Store
}

// Wrap decorates next with the given store.
func Wrap(next oracle.Classifier, store Store) *Classifier {
	return &Classifier{next: next, store: store}
}

// Classify consults the store before delegating to the wrapped classifier.
func (c *Classifier) Classify(ctx context.Context, text string) ([]oracle.Record, error) {
	key := Key(text)
	if recs, ok := c.store.Get(key); ok {
		return recs, nil
	}

	recs, err := c.next.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	c.store.Set(key, recs)
	return recs, nil
}
