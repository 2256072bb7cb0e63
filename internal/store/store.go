// Package store implements the generic record store backing every entity
// kind: one human-inspectable JSON file per kind, holding an ordered
// sequence of records, with CRUD, predicate find, sort and pagination.
//
// Every read-modify-write cycle runs under a per-store mutex, so two
// concurrent writers against the same kind cannot lose updates: the store
// is a single logical writer per backing file.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/invoiceflow/invoiceflow/internal/shared"
)

// Store persists records of one entity kind in a single JSON file.
type Store[T Record] struct {
	mu   sync.Mutex
	kind string
	path string
}

// New builds a store for one entity kind backed by <dir>/<kind>.json.
// Nothing is created on disk until the first write.
func New[T Record](dir, kind string) *Store[T] {
	return &Store[T]{kind: kind, path: filepath.Join(dir, kind+".json")}
}

// Kind returns the entity kind this store persists.
func (s *Store[T]) Kind() string { return s.kind }

// Read returns the full persisted collection in stored order. A missing
// backing file reads as an empty collection; an unreadable or corrupt file
// surfaces as *IOError.
func (s *Store[T]) Read(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Write replaces the entire persisted collection. The new contents are
// written to a temporary file and renamed into place, so concurrent
// readers never observe a partially written collection and a failed write
// leaves the prior state intact.
func (s *Store[T]) Write(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(records)
}

// FindByID returns the record with the given id, or the zero value when
// absent.
func (s *Store[T]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T
	records, err := s.Read(ctx)
	if err != nil {
		return zero, err
	}
	for _, record := range records {
		if record.GetID() == id {
			return record, nil
		}
	}
	return zero, nil
}

// FindBy returns all records matching the criteria, in stored order.
func (s *Store[T]) FindBy(ctx context.Context, where Where) ([]T, error) {
	return s.FindAll(ctx, Options{Where: where})
}

// FindOneBy returns the first record matching the criteria, or the zero
// value when none match.
func (s *Store[T]) FindOneBy(ctx context.Context, where Where) (T, error) {
	var zero T
	matched, err := s.FindBy(ctx, where)
	if err != nil {
		return zero, err
	}
	if len(matched) == 0 {
		return zero, nil
	}
	return matched[0], nil
}

// Create assigns an id (when absent) and timestamps, appends the record
// and persists the collection. The stored record is returned.
func (s *Store[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(record)
}

// Update merges the partial updates onto the stored record. The merge is
// shallow at the top level: nested objects in updates replace the stored
// ones wholesale. The record id is preserved and updatedAt refreshed.
// Returns shared.ErrNotFound when the id is absent.
func (s *Store[T]) Update(ctx context.Context, id string, updates map[string]any) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return zero, err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return zero, fmt.Errorf("%s %q: %w", s.kind, id, shared.ErrNotFound)
	}

	doc, err := toDoc(records[idx])
	if err != nil {
		return zero, &IOError{Kind: s.kind, Op: "encode", Err: err}
	}
	for field, value := range updates {
		doc[field] = value
	}
	doc["id"] = id
	doc["updatedAt"] = nowStamp()

	merged, err := fromDoc[T](doc)
	if err != nil {
		return zero, &IOError{Kind: s.kind, Op: "decode", Err: err}
	}
	records[idx] = merged
	if err := s.write(records); err != nil {
		return zero, err
	}
	return merged, nil
}

// Delete removes the record from the collection and returns it. Returns
// shared.ErrNotFound when the id is absent.
func (s *Store[T]) Delete(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return zero, err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return zero, fmt.Errorf("%s %q: %w", s.kind, id, shared.ErrNotFound)
	}
	removed := records[idx]
	records = append(records[:idx], records[idx+1:]...)
	if err := s.write(records); err != nil {
		return zero, err
	}
	return removed, nil
}

// FindAll filters, sorts and slices the collection. Sorting is stable:
// ties keep the filtered order.
func (s *Store[T]) FindAll(ctx context.Context, opts Options) ([]T, error) {
	records, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}

	type entry struct {
		record T
		doc    map[string]any
	}
	entries := make([]entry, 0, len(records))
	for _, record := range records {
		doc, err := toDoc(record)
		if err != nil {
			return nil, &IOError{Kind: s.kind, Op: "encode", Err: err}
		}
		if matches(doc, opts.Where) {
			entries = append(entries, entry{record: record, doc: doc})
		}
	}

	if opts.OrderBy != nil {
		field := opts.OrderBy.Field
		desc := opts.OrderBy.Direction == Descending
		sort.SliceStable(entries, func(i, j int) bool {
			a, _ := lookup(entries[i].doc, field)
			b, _ := lookup(entries[j].doc, field)
			if desc {
				return compareValues(a, b) > 0
			}
			return compareValues(a, b) < 0
		})
	}

	result := make([]T, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.record)
	}

	if opts.Limit > 0 {
		offset := opts.Offset
		if offset > len(result) {
			offset = len(result)
		}
		end := offset + opts.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[offset:end]
	}
	return result, nil
}

// Count returns the number of records matching the criteria.
func (s *Store[T]) Count(ctx context.Context, where Where) (int, error) {
	matched, err := s.FindBy(ctx, where)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// Tx exposes store operations while the store's writer lock is held.
type Tx[T Record] struct {
	s *Store[T]
}

// Locked runs fn under the store's writer lock so a derived read (such as
// computing the next invoice number) and the write that depends on it form
// one critical section. fn must use only the Tx it is given.
func (s *Store[T]) Locked(ctx context.Context, fn func(tx Tx[T]) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(Tx[T]{s: s})
}

// Read returns the collection within the critical section.
func (tx Tx[T]) Read() ([]T, error) { return tx.s.read() }

// Create appends and persists a record within the critical section.
func (tx Tx[T]) Create(record T) (T, error) { return tx.s.create(record) }

func (s *Store[T]) create(record T) (T, error) {
	var zero T
	records, err := s.read()
	if err != nil {
		return zero, err
	}
	if record.GetID() == "" {
		record.SetID(uuid.NewString())
	}
	if record.GetCreatedAt() == "" {
		record.SetCreatedAt(nowStamp())
	}
	record.SetUpdatedAt(nowStamp())
	records = append(records, record)
	if err := s.write(records); err != nil {
		return zero, err
	}
	return record, nil
}

func (s *Store[T]) read() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, &IOError{Kind: s.kind, Op: "read", Err: err}
	}
	records := []T{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &IOError{Kind: s.kind, Op: "decode", Err: err}
	}
	return records, nil
}

func (s *Store[T]) write(records []T) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Kind: s.kind, Op: "mkdir", Err: err}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &IOError{Kind: s.kind, Op: "encode", Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+s.kind+"-*.json")
	if err != nil {
		return &IOError{Kind: s.kind, Op: "write", Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &IOError{Kind: s.kind, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &IOError{Kind: s.kind, Op: "write", Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return &IOError{Kind: s.kind, Op: "write", Err: err}
	}
	return nil
}

func indexOf[T Record](records []T, id string) int {
	for i, record := range records {
		if record.GetID() == id {
			return i
		}
	}
	return -1
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
