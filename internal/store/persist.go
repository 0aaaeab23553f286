package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/notify"
	"go.uber.org/zap"
)

const (
	// ordersWriteCap bounds every orders snapshot.
	ordersWriteCap = 100
	// ordersFallbackCap is used once the capped snapshot no longer fits.
	ordersFallbackCap = 50
)

// Persister is the effect half of every store operation: it receives the new
// state of a collection and writes it to the key-value store. It never
// changes in-memory state, and write failures never propagate as panics.
type Persister struct {
	kv       kv.Store
	notifier notify.Notifier
	logger   logger.ZapLogger

	mu     sync.Mutex
	states map[string]State
}

func NewPersister(store kv.Store, notifier notify.Notifier, log logger.ZapLogger) *Persister {
	return &Persister{
		kv:       store,
		notifier: notifier,
		logger:   log.With(zap.String("component", "persister")),
		states:   make(map[string]State),
	}
}

// State reports the outcome of the last write of key. Keys never written are Normal.
func (p *Persister) State(key string) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.states[key]
}

// Save writes a full snapshot. Quota failures are logged; there is no
// reduction rule outside the orders key.
func (p *Persister) Save(ctx context.Context, key string, v any) error {
	if orders, ok := v.([]model.Order); ok && key == kv.KeyOrders {
		return p.SaveOrders(ctx, orders)
	}

	err := p.write(ctx, key, v)
	if err != nil {
		p.logger.Error("failed to persist collection",
			zap.String("key", key),
			zap.Bool("quota_exceeded", kv.IsQuotaExceeded(err)),
			zap.Error(err))
		p.setState(key, StateFailed)
		return err
	}
	p.setState(key, StateNormal)
	return nil
}

// SaveOrders always writes the summary projection of at most the 100 most
// recent orders. If that does not fit, it warns the user (once, when leaving
// the normal state) and retries with the 50 most recent. If that fails too,
// the user also gets an error and the write is abandoned.
func (p *Persister) SaveOrders(ctx context.Context, orders []model.Order) error {
	reduced := summarize(tail(orders, ordersWriteCap))

	err := p.write(ctx, kv.KeyOrders, reduced)
	if err == nil {
		p.setState(kv.KeyOrders, StateNormal)
		return nil
	}
	if !kv.IsQuotaExceeded(err) {
		p.logger.Error("failed to persist orders", zap.Error(err))
		p.setState(kv.KeyOrders, StateFailed)
		return err
	}

	p.logger.Warn("orders snapshot over quota, retrying with fewer entries",
		zap.Int("orders", len(reduced)),
		zap.Int("retry_with", min(len(reduced), ordersFallbackCap)))

	if p.State(kv.KeyOrders) == StateNormal {
		p.notifier.Warn(notify.MsgOrdersTrimmed, map[string]any{"Count": ordersFallbackCap})
	}

	err = p.write(ctx, kv.KeyOrders, tail(reduced, ordersFallbackCap))
	if err == nil {
		p.setState(kv.KeyOrders, StateDegraded)
		return nil
	}

	p.logger.Error("failed to persist orders after trimming", zap.Error(err))
	p.setState(kv.KeyOrders, StateFailed)
	p.notifier.Error(notify.MsgOrdersNotSaved, nil)
	return err
}

func (p *Persister) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.kv.Set(ctx, key, string(data))
}

// setState records s and returns the previous state.
func (p *Persister) setState(key string, s State) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.states[key]
	p.states[key] = s
	return prev
}

func summarize(orders []model.Order) []model.Order {
	out := make([]model.Order, len(orders))
	for i, o := range orders {
		out[i] = o.Summary()
	}
	return out
}
