package store

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/notify"
	"go.uber.org/zap"
)

const (
	compactOrdersKeep   = 50
	compactProductsKeep = 100
)

// ClearOldData keeps the 50 most recent orders and the 100 most recent
// products, in memory and in storage. Category counts are rebuilt for the
// trimmed catalog. The result is reported to the user and returned.
func (s *Store) ClearOldData(ctx context.Context) error {
	s.mu.Lock()
	prevOrders, prevProducts := s.orders, s.products
	s.orders = append([]model.Order(nil), tail(s.orders, compactOrdersKeep)...)
	s.products = append([]model.Product(nil), tail(s.products, compactProductsKeep)...)
	s.categories = recomputeCounts(s.categories, s.products, s.now())

	errOrders := s.persister.Save(ctx, kv.KeyOrders, s.orders)
	errProducts := s.persister.Save(ctx, kv.KeyProducts, s.products)
	errCategories := s.persister.Save(ctx, kv.KeyCategories, s.categories)
	orders := BulkChange{Remaining: len(s.orders), RemovedIDs: missingIDs(prevOrders, s.orders)}
	products := BulkChange{Remaining: len(s.products), RemovedIDs: missingIDs(prevProducts, s.products)}
	s.mu.Unlock()

	s.listeners.notify(Event{Collection: kv.KeyOrders, Action: ActionCompact, Payload: orders})
	s.listeners.notify(Event{Collection: kv.KeyProducts, Action: ActionCompact, Payload: products})

	if err := errors.Join(errOrders, errProducts, errCategories); err != nil {
		s.logger.Error("failed to compact storage", zap.Error(err))
		s.notifier.Error(notify.MsgStorageCompactFailed, nil)
		return err
	}

	s.logger.Info("storage compacted", zap.Int("orders", orders.Remaining), zap.Int("products", products.Remaining))
	s.notifier.Info(notify.MsgStorageCompacted, map[string]any{"Orders": orders.Remaining, "Products": products.Remaining})
	return nil
}

// ResetToDefaults wipes the key-value store and reloads the bundled datasets.
func (s *Store) ResetToDefaults(ctx context.Context) error {
	s.mu.RLock()
	prevProducts := s.products
	s.mu.RUnlock()

	if err := s.kv.ClearAll(ctx); err != nil {
		s.logger.Error("failed to clear storage", zap.Error(err))
		return err
	}
	s.Load(ctx)

	s.mu.RLock()
	s.persistAll(ctx)
	products := BulkChange{Remaining: len(s.products), RemovedIDs: missingIDs(prevProducts, s.products)}
	s.mu.RUnlock()

	s.listeners.notify(Event{Collection: kv.KeyProducts, Action: ActionReset, Payload: products})
	for _, key := range []string{
		kv.KeyCategories, kv.KeyBlogs, kv.KeyOrders,
		kv.KeyCustomers, kv.KeySliders, kv.KeyCampaigns, kv.KeyBrands,
	} {
		s.listeners.notify(Event{Collection: key, Action: ActionReset})
	}
	return nil
}
