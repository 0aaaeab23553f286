package listener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/kv/memory"
	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/fekuna/omnipos-storefront/internal/notify"
	"github.com/fekuna/omnipos-storefront/internal/store"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued results and then blocks until the context ends.
type fakeReader struct {
	mu      sync.Mutex
	results []fakeResult
	drained chan struct{}
	once    sync.Once
}

type fakeResult struct {
	value []byte
	err   error
}

func newFakeReader(results ...fakeResult) *fakeReader {
	return &fakeReader{results: results, drained: make(chan struct{})}
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.results) > 0 {
		r := f.results[0]
		f.results = f.results[1:]
		f.mu.Unlock()
		return kafka.Message{Value: r.value}, r.err
	}
	f.mu.Unlock()
	f.once.Do(func() { close(f.drained) })
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) Close() error { return nil }

func msg(s string) fakeResult { return fakeResult{value: []byte(s)} }

func newOrdersStore(t *testing.T) *store.Store {
	t.Helper()
	backend := memory.New(0)
	require.NoError(t, backend.Set(context.Background(), kv.KeyOrders, `[]`))
	s := store.New(backend, &notify.Recorder{}, logger.NewNop())
	s.Load(context.Background())
	return s
}

func runListener(t *testing.T, reader *fakeReader, s *store.Store) {
	t.Helper()
	l := NewOrderListener(reader, s, logger.NewNop())
	l.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	select {
	case <-reader.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not drain the reader")
	}
	cancel()
	<-done
}

const validEvent = `{
	"event_id": "evt-1",
	"event_type": "OrderCreated",
	"timestamp": "2024-05-01T10:00:00Z",
	"payload": {
		"id": "remote-9",
		"customer_name": "Ada",
		"customer_email": "ada@example.com",
		"items": [
			{"product_id": "1", "name": "Shirt", "price": 10, "quantity": 2, "selected_size": "M"},
			{"product_id": "2", "name": "Chino", "price": 7.5, "quantity": 1}
		],
		"shipping_cost": 5
	}
}`

func TestOrderListener_AddsValidOrders(t *testing.T) {
	s := newOrdersStore(t)
	reader := newFakeReader(
		msg(validEvent),
		msg(`not json`),
		msg(`{"event_id":"evt-2","event_type":"OrderCancelled","payload":{}}`),
		msg(`{"event_id":"evt-3","event_type":"OrderCreated","payload":{"customer_name":"","items":[]}}`),
		fakeResult{err: errors.New("broker unavailable")},
		msg(validEvent),
	)

	runListener(t, reader, s)

	orders := s.Orders()
	require.Len(t, orders, 1, "invalid, foreign and duplicate events are skipped")
	o := orders[0]
	assert.Equal(t, "Ada", o.CustomerName)
	assert.Equal(t, "pending", o.Status)
	assert.Equal(t, 32.5, o.Total, "total is derived when the event carries none")
	require.Len(t, o.Items, 2)
	assert.Equal(t, "M", o.Items[0].SelectedSize)
	assert.Equal(t, "remote-9", o.Metadata[metaSourceOrderID])
	require.Len(t, o.Timeline, 1)
	assert.Equal(t, "2024-05-01T10:00:00Z", o.Timeline[0].At)
}

func TestOrderListener_StopsOnCancel(t *testing.T) {
	s := newOrdersStore(t)
	l := NewOrderListener(newFakeReader(), s, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}
