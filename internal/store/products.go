package store

import (
	"context"

	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/model"
)

// Product writes also patch the productCount of the affected categories in
// the same locked step, so the counts never lag behind the catalog.

func (s *Store) AddProduct(ctx context.Context, p model.Product) model.Product {
	s.mu.Lock()
	now := s.now()
	next, created := insertRecord(s.products, p, s.newID(), now)
	s.commitProducts(ctx, next, productDelta(nil, &created))
	s.mu.Unlock()

	s.listeners.notify(Event{Collection: kv.KeyProducts, Action: ActionAdd, Payload: created})
	return created
}

// UpdateProduct applies mutate to a copy of the product. Moving a product to
// another category shifts one unit of count from the old category to the new
// one; a category that does not exist is simply not counted.
func (s *Store) UpdateProduct(ctx context.Context, id string, mutate func(*model.Product)) (model.Product, bool) {
	s.mu.Lock()
	next, old, updated, ok := updateRecord(s.products, id, s.now(), mutate)
	if !ok {
		s.mu.Unlock()
		return updated, false
	}
	s.commitProducts(ctx, next, productDelta(&old, &updated))
	s.mu.Unlock()

	s.listeners.notify(Event{Collection: kv.KeyProducts, Action: ActionUpdate, Payload: updated})
	return updated, true
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (model.Product, bool) {
	s.mu.Lock()
	next, removed, ok := deleteRecord(s.products, id)
	if !ok {
		s.mu.Unlock()
		return removed, false
	}
	s.commitProducts(ctx, next, productDelta(&removed, nil))
	s.mu.Unlock()

	s.listeners.notify(Event{Collection: kv.KeyProducts, Action: ActionDelete, Payload: removed})
	return removed, true
}

// commitProducts must be called with s.mu held.
func (s *Store) commitProducts(ctx context.Context, products []model.Product, delta countDelta) {
	s.products = products
	_ = s.persister.Save(ctx, kv.KeyProducts, products)

	if len(delta) == 0 {
		return
	}
	if cats, changed := applyCountDelta(s.categories, delta, s.now()); changed {
		s.categories = cats
		_ = s.persister.Save(ctx, kv.KeyCategories, cats)
	}
}
