package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/kv/memory"
	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/notify"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%04d", n)
	}
}

func newTestStore(t *testing.T, backend kv.Store) (*Store, *notify.Recorder) {
	t.Helper()
	if backend == nil {
		backend = memory.New(0)
	}
	rec := &notify.Recorder{}
	clock := &testClock{t: testNow}
	s := New(backend, rec, logger.NewNop(), WithClock(clock.now), WithIDGenerator(sequentialIDs()))
	return s, rec
}

// limitStore rejects values longer than limit bytes for the listed keys, or
// for every key when none are listed.
type limitStore struct {
	*memory.Store
	limit int
	keys  map[string]bool

	mu     sync.Mutex
	writes map[string]int
}

func newLimitStore(limit int, keys ...string) *limitStore {
	l := &limitStore{Store: memory.New(0), limit: limit, writes: make(map[string]int)}
	if len(keys) > 0 {
		l.keys = make(map[string]bool, len(keys))
		for _, k := range keys {
			l.keys[k] = true
		}
	}
	return l
}

func (l *limitStore) Set(ctx context.Context, key, value string) error {
	l.mu.Lock()
	l.writes[key]++
	l.mu.Unlock()
	if (l.keys == nil || l.keys[key]) && len(value) > l.limit {
		return kv.ErrQuotaExceeded
	}
	return l.Store.Set(ctx, key, value)
}

// failingStore fails every write with err.
type failingStore struct {
	*memory.Store
	err error
}

func (f *failingStore) Set(context.Context, string, string) error { return f.err }

// expectedCounts counts products per category name by brute force.
func expectedCounts(products []model.Product, categories []model.Category) map[string]int {
	out := make(map[string]int, len(categories))
	for _, c := range categories {
		n := 0
		for _, p := range products {
			if p.Category == c.Name {
				n++
			}
		}
		out[c.Name] = n
	}
	return out
}

func actualCounts(categories []model.Category) map[string]int {
	out := make(map[string]int, len(categories))
	for _, c := range categories {
		out[c.Name] = c.ProductCount
	}
	return out
}

func storedOrders(t *testing.T, backend kv.Store) []model.Order {
	t.Helper()
	raw, ok, err := backend.Get(context.Background(), kv.KeyOrders)
	if err != nil || !ok {
		t.Fatalf("orders snapshot missing: ok=%v err=%v", ok, err)
	}
	var out []model.Order
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("decode orders snapshot: %v", err)
	}
	return out
}

func seed(t *testing.T, backend kv.Store, key, value string) {
	t.Helper()
	if err := backend.Set(context.Background(), key, value); err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
}
