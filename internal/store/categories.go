package store

import (
	"context"
	"slices"

	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/model"
)

// AddCategory ignores any productCount on c and derives it from the current
// products, so products added before their category are counted.
func (s *Store) AddCategory(ctx context.Context, c model.Category) model.Category {
	s.mu.Lock()
	next, created := insertRecord(s.categories, c, s.newID(), s.now())
	created = s.commitCategories(ctx, next, created.ID)
	s.mu.Unlock()

	s.listeners.notify(Event{Collection: kv.KeyCategories, Action: ActionAdd, Payload: created})
	return created
}

// UpdateCategory re-derives the counts after mutate, which covers renames.
func (s *Store) UpdateCategory(ctx context.Context, id string, mutate func(*model.Category)) (model.Category, bool) {
	s.mu.Lock()
	next, _, updated, ok := updateRecord(s.categories, id, s.now(), mutate)
	if !ok {
		s.mu.Unlock()
		return updated, false
	}
	updated = s.commitCategories(ctx, next, id)
	s.mu.Unlock()

	s.listeners.notify(Event{Collection: kv.KeyCategories, Action: ActionUpdate, Payload: updated})
	return updated, true
}

// DeleteCategory leaves products untouched. They move to another category
// of the same name if there is one and otherwise stop being counted.
func (s *Store) DeleteCategory(ctx context.Context, id string) (model.Category, bool) {
	s.mu.Lock()
	next, removed, ok := deleteRecord(s.categories, id)
	if !ok {
		s.mu.Unlock()
		return removed, false
	}
	s.commitCategories(ctx, next, id)
	s.mu.Unlock()

	s.listeners.notify(Event{Collection: kv.KeyCategories, Action: ActionDelete, Payload: removed})
	return removed, true
}

// RecomputeCategoryCounts rebuilds every productCount from the product
// collection. It is used on load and for repair; running it twice without a
// product change in between yields the same counts.
func (s *Store) RecomputeCategoryCounts(ctx context.Context) []model.Category {
	s.mu.Lock()
	s.categories = recomputeCounts(s.categories, s.products, s.now())
	_ = s.persister.Save(ctx, kv.KeyCategories, s.categories)
	cats := slices.Clone(s.categories)
	s.mu.Unlock()

	s.listeners.notify(Event{Collection: kv.KeyCategories, Action: ActionRecompute, Payload: cats})
	return cats
}

// commitCategories reconciles the counts of next, stores it and returns the
// committed entry for id. Must be called with s.mu held.
func (s *Store) commitCategories(ctx context.Context, next []model.Category, id string) model.Category {
	next = reconcileCounts(next, s.products, s.now())
	s.categories = next
	_ = s.persister.Save(ctx, kv.KeyCategories, next)
	c, _ := findByID(next, id)
	return c
}
