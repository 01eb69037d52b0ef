// Package store keeps typed record collections as whole JSON arrays in a
// storage backend.
//
// Every mutation is a read-modify-write of the complete collection. There is
// no locking and no multi-record transaction: two writers racing on the same
// collection both succeed and the last whole-collection write wins, and a
// composite operation spanning collections can be left half-applied.
// Callers that need consistency across writes must tolerate or repair drift.
//
// Decimal amounts are written as bare JSON numbers: New switches
// decimal.MarshalJSONWithoutQuotes on for the whole process. Reading accepts
// both quoted and unquoted amounts, so older documents still load.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/billing-api/internal/storage"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no record has the requested id
var ErrNotFound = errors.New("record not found")

// Entity is the contract every stored record satisfies. Implementations are
// pointer types, so a nil element compares equal to the zero value.
type Entity interface {
	comparable
	GetID() string
	SetID(id string)
	Stamp(createdAt time.Time)
	Touch(updatedAt time.Time)
}

// Store shares a backend, logger and clock between collections
type Store struct {
	backend storage.Backend
	logger  *zap.Logger
	now     func() time.Time
}

var numericDecimals sync.Once

// New creates a store over backend
func New(backend storage.Backend, logger *zap.Logger) *Store {
	numericDecimals.Do(func() {
		decimal.MarshalJSONWithoutQuotes = true
	})
	return &Store{
		backend: backend,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for ids and timestamps
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Now returns the store's current time
func (s *Store) Now() time.Time {
	return s.now()
}

// Ping checks the backend
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// NewID returns base36(unix millis) followed by a random base36 suffix
func NewID(t time.Time) string {
	u := uuid.New()
	suffix := binary.BigEndian.Uint64(u[:8])
	return strconv.FormatInt(t.UnixMilli(), 36) + strconv.FormatUint(suffix, 36)
}

// Collection is a typed view over one named collection.
// T is a pointer type such as *domain.Client.
type Collection[T Entity] struct {
	store *Store
	name  string
}

// NewCollection binds a collection name to a record type
func NewCollection[T Entity](s *Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

// Name returns the collection name
func (c *Collection[T]) Name() string {
	return c.name
}

// GetAll returns every record. A missing, unreadable or corrupt collection
// reads as empty and null elements are skipped; the failure is logged, never
// returned.
func (c *Collection[T]) GetAll(ctx context.Context) []T {
	data, err := c.store.backend.Read(ctx, c.name)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			c.store.logger.Warn("Failed to read collection, treating as empty",
				zap.String("collection", c.name),
				zap.Error(err),
			)
		}
		return []T{}
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		c.store.logger.Warn("Corrupt collection, treating as empty",
			zap.String("collection", c.name),
			zap.Error(err),
		)
		return []T{}
	}
	var zero T
	kept := records[:0]
	for _, rec := range records {
		if rec != zero {
			kept = append(kept, rec)
		}
	}
	if dropped := len(records) - len(kept); dropped > 0 {
		c.store.logger.Warn("Skipping null records in collection",
			zap.String("collection", c.name),
			zap.Int("skipped", dropped),
		)
	}
	if len(kept) == 0 {
		return []T{}
	}
	return kept
}

// WriteAll overwrites the whole collection with records
func (c *Collection[T]) WriteAll(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.name, err)
	}
	if err := c.store.backend.Write(ctx, c.name, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.name, err)
	}
	return nil
}

// Create assigns a fresh id and timestamps to rec and appends it
func (c *Collection[T]) Create(ctx context.Context, rec T) (T, error) {
	now := c.store.now()
	rec.SetID(NewID(now))
	rec.Stamp(now)

	records := c.GetAll(ctx)
	records = append(records, rec)
	if err := c.WriteAll(ctx, records); err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// FindByID returns the record with id or ErrNotFound
func (c *Collection[T]) FindByID(ctx context.Context, id string) (T, error) {
	for _, rec := range c.GetAll(ctx) {
		if rec.GetID() == id {
			return rec, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

// Find returns the records matching pred, in stored order
func (c *Collection[T]) Find(ctx context.Context, pred func(T) bool) []T {
	var out []T
	for _, rec := range c.GetAll(ctx) {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// FindOne returns the first record matching pred or ErrNotFound
func (c *Collection[T]) FindOne(ctx context.Context, pred func(T) bool) (T, error) {
	for _, rec := range c.GetAll(ctx) {
		if pred(rec) {
			return rec, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

// Update applies mutate to the record with id, bumps updatedAt and writes
// the collection back. An error from mutate aborts without writing.
func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(T) error) (T, error) {
	var zero T
	records := c.GetAll(ctx)
	for _, rec := range records {
		if rec.GetID() != id {
			continue
		}
		if err := mutate(rec); err != nil {
			return zero, err
		}
		rec.SetID(id)
		rec.Touch(c.store.now())
		if err := c.WriteAll(ctx, records); err != nil {
			return zero, err
		}
		return rec, nil
	}
	return zero, ErrNotFound
}

// Delete removes the record with id
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	records := c.GetAll(ctx)
	for i, rec := range records {
		if rec.GetID() == id {
			records = append(records[:i], records[i+1:]...)
			return c.WriteAll(ctx, records)
		}
	}
	return ErrNotFound
}

// DeleteWhere removes every record matching pred and returns how many were removed.
// Nothing is written when no record matches.
func (c *Collection[T]) DeleteWhere(ctx context.Context, pred func(T) bool) (int, error) {
	records := c.GetAll(ctx)
	kept := records[:0]
	for _, rec := range records {
		if !pred(rec) {
			kept = append(kept, rec)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := c.WriteAll(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Count returns the number of stored records
func (c *Collection[T]) Count(ctx context.Context) int {
	return len(c.GetAll(ctx))
}
