package memory

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-storefront/internal/kv"
)

// Store keeps values in a map and enforces a byte quota over keys plus values,
// the way a browser storage area counts usage. QuotaBytes <= 0 disables the limit.
type Store struct {
	mu         sync.RWMutex
	data       map[string]string
	used       int64
	quotaBytes int64
}

func New(quotaBytes int64) *Store {
	return &Store{
		data:       make(map[string]string),
		quotaBytes: quotaBytes,
	}
}

var _ kv.Store = (*Store)(nil)

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.used + entrySize(key, value)
	if old, ok := s.data[key]; ok {
		next -= entrySize(key, old)
	}
	if s.quotaBytes > 0 && next > s.quotaBytes {
		return kv.ErrQuotaExceeded
	}
	s.data[key] = value
	s.used = next
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.data[key]; ok {
		s.used -= entrySize(key, old)
		delete(s.data, key)
	}
	return nil
}

func (s *Store) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
	s.used = 0
	return nil
}

// Used reports the bytes currently counted against the quota.
func (s *Store) Used() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}

func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
