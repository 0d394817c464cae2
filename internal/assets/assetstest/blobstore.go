// Package assetstest provides an in-memory assets.BlobStore for tests.
package assetstest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrInjected is the failure returned when FailNext or FailAll is set.
var ErrInjected = errors.New("simulated transport error")

// BlobStore keeps objects in memory and serves them from BaseURL.
type BlobStore struct {
	BaseURL string

	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	puts     []string
	failNext bool
	failAll  bool
}

// NewBlobStore returns an empty store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		BaseURL: "https://blobs.test",
		objects: map[string][]byte{},
		types:   map[string]string{},
	}
}

// FailNext makes the next Put fail after reading up to 16 bytes of the
// stream, as a transfer interrupted mid-way would.
func (s *BlobStore) FailNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = true
}

// FailAll makes every Put fail until cleared.
func (s *BlobStore) FailAll(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAll = fail
}

func (s *BlobStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, key)
	if s.failAll || s.failNext {
		s.failNext = false
		if r != nil {
			_, _ = io.CopyN(io.Discard, r, 16)
		}
		return "", ErrInjected
	}
	if _, ok := s.objects[key]; ok {
		return "", fmt.Errorf("%s: object already exists", key)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	s.types[key] = contentType
	return s.BaseURL + "/" + key, nil
}

// Object returns the stored bytes for key.
func (s *BlobStore) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	return b, ok
}

// ContentType returns the content type recorded for key.
func (s *BlobStore) ContentType(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types[key]
}

// Len is the number of stored objects.
func (s *BlobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Attempts lists every key Put was called with, including failed ones.
func (s *BlobStore) Attempts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.puts...)
}
