// Package hotstore is the low-latency queryable tier: TTL-bearing document
// records for real-time and dashboard consumers.
package hotstore

import (
	"context"
	"time"
)

// Write is one pending merge-upsert.
type Write struct {
	Collection string
	Key        string
	Data       map[string]any
	// ExpiresAt is the absolute expiry, derived from the entry's creation
	// timestamp so buffering delay never extends a record's lifetime. Zero
	// means no expiry change.
	ExpiresAt time.Time
}

// Filter is one field predicate in a query.
type Filter struct {
	Field string
	// Op is one of ==, !=, >, >=, <, <=.
	Op    string
	Value any
}

// Query describes a filtered, ordered, bounded read.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Store is the hot-tier contract. Implementations must treat Upsert as a
// merge: only provided fields overwrite, everything else is preserved.
type Store interface {
	// Upsert merge-writes a single record and replaces its expiry when
	// expiresAt is non-zero.
	Upsert(ctx context.Context, collection, key string, data map[string]any, expiresAt time.Time) error
	// UpsertBatch attempts one atomic multi-write. On failure the caller
	// degrades to per-record Upsert calls; the batch is all-or-nothing.
	UpsertBatch(ctx context.Context, writes []Write) error
	// Query returns records matching the filters. Each record carries its
	// key under "_key".
	Query(ctx context.Context, collection string, q Query) ([]map[string]any, error)
	// Count returns the number of records in a collection.
	Count(ctx context.Context, collection string) (int64, error)
	// DeleteExpired removes at most batchLimit records whose expiry is at or
	// before cutoff. Callers loop until it returns zero.
	DeleteExpired(ctx context.Context, collection string, cutoff time.Time, batchLimit int) (int, error)
	// Delete removes the given records. Used by hot-to-cold migration after
	// the cold write is confirmed.
	Delete(ctx context.Context, collection string, keys []string) (int, error)
	// Acknowledge marks an alert-type record as read. Not a deletion.
	Acknowledge(ctx context.Context, collection, key string) error
	// Resolve marks an alert-type record as handled. Not a deletion.
	Resolve(ctx context.Context, collection, key string) error
	// NextSequence atomically increments and returns a named counter. Backs
	// the strict archive version sequence.
	NextSequence(ctx context.Context, name string) (int64, error)
	// Close releases the underlying connection.
	Close() error
}
