package store

import (
	"context"

	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/model"
)

// Generic operations for collections without derived fields. Unknown ids are
// a silent no-op reported through ok=false.

func addTo[T any, P entity[T]](ctx context.Context, s *Store, list *[]T, key string, rec T) T {
	s.mu.Lock()
	next, created := insertRecord[T, P](*list, rec, s.newID(), s.now())
	*list = next
	_ = s.persister.Save(ctx, key, next)
	s.mu.Unlock()

	s.listeners.notify(Event{Collection: key, Action: ActionAdd, Payload: created})
	return created
}

func updateIn[T any, P entity[T]](ctx context.Context, s *Store, list *[]T, key, id string, mutate func(*T)) (T, bool) {
	s.mu.Lock()
	next, _, updated, ok := updateRecord[T, P](*list, id, s.now(), mutate)
	if !ok {
		s.mu.Unlock()
		return updated, false
	}
	*list = next
	_ = s.persister.Save(ctx, key, next)
	s.mu.Unlock()

	s.listeners.notify(Event{Collection: key, Action: ActionUpdate, Payload: updated})
	return updated, true
}

func deleteFrom[T any, P entity[T]](ctx context.Context, s *Store, list *[]T, key, id string) (T, bool) {
	s.mu.Lock()
	next, removed, ok := deleteRecord[T, P](*list, id)
	if !ok {
		s.mu.Unlock()
		return removed, false
	}
	*list = next
	_ = s.persister.Save(ctx, key, next)
	s.mu.Unlock()

	s.listeners.notify(Event{Collection: key, Action: ActionDelete, Payload: removed})
	return removed, true
}

func (s *Store) AddBlog(ctx context.Context, b model.Blog) model.Blog {
	return addTo(ctx, s, &s.blogs, kv.KeyBlogs, b)
}

func (s *Store) UpdateBlog(ctx context.Context, id string, mutate func(*model.Blog)) (model.Blog, bool) {
	return updateIn(ctx, s, &s.blogs, kv.KeyBlogs, id, mutate)
}

func (s *Store) DeleteBlog(ctx context.Context, id string) (model.Blog, bool) {
	return deleteFrom(ctx, s, &s.blogs, kv.KeyBlogs, id)
}

// AddOrder stores an order; a missing status defaults to pending.
func (s *Store) AddOrder(ctx context.Context, o model.Order) model.Order {
	if o.Status == "" {
		o.Status = model.OrderStatusPending
	}
	return addTo(ctx, s, &s.orders, kv.KeyOrders, o)
}

func (s *Store) UpdateOrder(ctx context.Context, id string, mutate func(*model.Order)) (model.Order, bool) {
	return updateIn(ctx, s, &s.orders, kv.KeyOrders, id, mutate)
}

func (s *Store) DeleteOrder(ctx context.Context, id string) (model.Order, bool) {
	return deleteFrom(ctx, s, &s.orders, kv.KeyOrders, id)
}

func (s *Store) AddCustomer(ctx context.Context, c model.Customer) model.Customer {
	return addTo(ctx, s, &s.customers, kv.KeyCustomers, c)
}

func (s *Store) UpdateCustomer(ctx context.Context, id string, mutate func(*model.Customer)) (model.Customer, bool) {
	return updateIn(ctx, s, &s.customers, kv.KeyCustomers, id, mutate)
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) (model.Customer, bool) {
	return deleteFrom(ctx, s, &s.customers, kv.KeyCustomers, id)
}

func (s *Store) AddSlider(ctx context.Context, sl model.Slider) model.Slider {
	return addTo(ctx, s, &s.sliders, kv.KeySliders, sl)
}

func (s *Store) UpdateSlider(ctx context.Context, id string, mutate func(*model.Slider)) (model.Slider, bool) {
	return updateIn(ctx, s, &s.sliders, kv.KeySliders, id, mutate)
}

func (s *Store) DeleteSlider(ctx context.Context, id string) (model.Slider, bool) {
	return deleteFrom(ctx, s, &s.sliders, kv.KeySliders, id)
}

func (s *Store) AddCampaign(ctx context.Context, c model.Campaign) model.Campaign {
	return addTo(ctx, s, &s.campaigns, kv.KeyCampaigns, c)
}

func (s *Store) UpdateCampaign(ctx context.Context, id string, mutate func(*model.Campaign)) (model.Campaign, bool) {
	return updateIn(ctx, s, &s.campaigns, kv.KeyCampaigns, id, mutate)
}

func (s *Store) DeleteCampaign(ctx context.Context, id string) (model.Campaign, bool) {
	return deleteFrom(ctx, s, &s.campaigns, kv.KeyCampaigns, id)
}

func (s *Store) AddBrand(ctx context.Context, b model.Brand) model.Brand {
	return addTo(ctx, s, &s.brands, kv.KeyBrands, b)
}

func (s *Store) UpdateBrand(ctx context.Context, id string, mutate func(*model.Brand)) (model.Brand, bool) {
	return updateIn(ctx, s, &s.brands, kv.KeyBrands, id, mutate)
}

func (s *Store) DeleteBrand(ctx context.Context, id string) (model.Brand, bool) {
	return deleteFrom(ctx, s, &s.brands, kv.KeyBrands, id)
}
