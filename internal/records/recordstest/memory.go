// Package recordstest provides an in-memory records.DocumentStore for tests.
package recordstest

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/achievementflow/internal/records"
)

// ErrUnavailable is returned while reads or writes are switched off.
var ErrUnavailable = errors.New("document store unavailable")

// MemoryStore keeps documents per collection in insertion order.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string][]records.Document
	failWrites  bool
	failReads   bool
	adds        int
	queries     int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: map[string][]records.Document{}}
}

// FailWrites toggles simulated write unavailability.
func (s *MemoryStore) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// FailReads toggles simulated read unavailability.
func (s *MemoryStore) FailReads(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReads = fail
}

func (s *MemoryStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adds++
	if s.failWrites {
		return "", ErrUnavailable
	}
	id := uuid.NewString()
	s.collections[collection] = append(s.collections[collection], records.Document{ID: id, Fields: maps.Clone(fields)})
	return id, nil
}

func (s *MemoryStore) OrderedBy(ctx context.Context, collection, field string, dir records.Direction) ([]records.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if s.failReads {
		return nil, ErrUnavailable
	}
	docs := make([]records.Document, 0, len(s.collections[collection]))
	for _, d := range s.collections[collection] {
		docs = append(docs, records.Document{ID: d.ID, Fields: maps.Clone(d.Fields)})
	}
	slices.SortStableFunc(docs, func(a, b records.Document) int {
		c := compare(a.Fields[field], b.Fields[field])
		if dir == records.Desc {
			return -c
		}
		return c
	})
	return docs, nil
}

// Len is the number of documents in collection.
func (s *MemoryStore) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

// Adds counts every Add call, including failed ones.
func (s *MemoryStore) Adds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adds
}

// Queries counts every OrderedBy call, including failed ones.
func (s *MemoryStore) Queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

func compare(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
