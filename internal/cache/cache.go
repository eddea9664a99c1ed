// Package cache stores oracle classify results across runs.
//
// Re-running detection over the same corpus re-sends identical fragments to
// the model; caching the parsed records per fragment hash avoids paying for
// those calls twice. Two stores are provided: an in-memory map for tests and
// cache-less setups, and an embedded bbolt database that survives restarts.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/scrubworks/piimap/internal/oracle"
)

// Store is the classify-result cache. Implementations must be safe for
// concurrent use; fan-out workers read and write in parallel.
type Store interface {
	// Get returns the cached records for a fragment key, if present.
	Get(key string) ([]oracle.Record, bool)

	// Set stores records for a fragment key, overwriting silently.
	Set(key string, records []oracle.Record)

	// Close releases underlying resources.
	Close() error
}

// Key derives the cache key for a text fragment.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// --- memory store --------------------------------------------------------

type memoryStore struct {
	mu      sync.RWMutex
	records map[string][]oracle.Record
}

// NewMemory returns an in-memory Store.
func NewMemory() Store {
	return &memoryStore{records: make(map[string][]oracle.Record)}
}

func (m *memoryStore) Get(key string) ([]oracle.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs, ok := m.records[key]
	return recs, ok
}

func (m *memoryStore) Set(key string, records []oracle.Record) {
	m.mu.Lock()
	m.records[key] = records
	m.mu.Unlock()
}

func (m *memoryStore) Close() error { return nil }

// --- bbolt store ---------------------------------------------------------

const bucketName = "classify_results"

type boltStore struct {
	db *bolt.DB
}

// NewBolt opens (or creates) the bbolt database at path and ensures the
// results bucket exists.
func NewBolt(path string) (Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("cache: open %q: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create bucket: %w", err)
	}
	return &boltStore{db: db}, nil
}

func (b *boltStore) Get(key string) ([]oracle.Record, bool) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketName)).Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || data == nil {
		return nil, false
	}

	var recs []oracle.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, false
	}
	return recs, true
}

func (b *boltStore) Set(key string, records []oracle.Record) {
	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	// Best effort: a failed cache write only costs a future oracle call.
	_ = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
}

func (b *boltStore) Close() error { return b.db.Close() }
