// Package store is the storefront document store: the in-memory catalog,
// categories, content, orders and customers, kept consistent with the
// derived category product counts and snapshotted into a key-value store.
//
// Every mutation builds the new collection state with pure functions, commits
// it in memory, hands it to the Persister, and then notifies listeners after
// the store lock is released. Collections are replaced wholesale, so a reader
// always sees either the old or the new state of an operation.
package store

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/notify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Store struct {
	mu         sync.RWMutex
	products   []model.Product
	categories []model.Category
	blogs      []model.Blog
	orders     []model.Order
	customers  []model.Customer
	sliders    []model.Slider
	campaigns  []model.Campaign
	brands     []model.Brand

	kv        kv.Store
	persister *Persister
	notifier  notify.Notifier
	listeners *listeners
	logger    logger.ZapLogger

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func New(store kv.Store, notifier notify.Notifier, log logger.ZapLogger, opts ...Option) *Store {
	log = log.With(zap.String("component", "store"))
	s := &Store{
		kv:        store,
		persister: NewPersister(store, notifier, log),
		notifier:  notifier,
		listeners: newListeners(log),
		logger:    log,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fills every collection from its stored snapshot, falling back to the
// bundled defaults per collection, and then recomputes category counts.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = loadCollection(ctx, s, kv.KeyProducts, decodeProducts)
	s.categories = loadCollection(ctx, s, kv.KeyCategories, decodeJSON[model.Category])
	s.blogs = loadCollection(ctx, s, kv.KeyBlogs, decodeJSON[model.Blog])
	s.orders = loadCollection(ctx, s, kv.KeyOrders, decodeJSON[model.Order])
	s.customers = loadCollection(ctx, s, kv.KeyCustomers, decodeJSON[model.Customer])
	s.sliders = loadCollection(ctx, s, kv.KeySliders, decodeJSON[model.Slider])
	s.campaigns = loadCollection(ctx, s, kv.KeyCampaigns, decodeJSON[model.Campaign])
	s.brands = loadCollection(ctx, s, kv.KeyBrands, decodeJSON[model.Brand])

	s.categories = recomputeCounts(s.categories, s.products, s.now())
	_ = s.persister.Save(ctx, kv.KeyCategories, s.categories)

	s.logger.Info("store loaded",
		zap.Int("products", len(s.products)),
		zap.Int("categories", len(s.categories)),
		zap.Int("orders", len(s.orders)))
}

func loadCollection[T any, P entity[T]](ctx context.Context, s *Store, key string, decode func([]byte) ([]T, error)) []T {
	raw, ok, err := s.kv.Get(ctx, key)
	switch {
	case err != nil:
		s.logger.Warn("failed to read snapshot, using defaults", zap.String("key", key), zap.Error(err))
	case !ok:
		s.logger.Debug("no snapshot, using defaults", zap.String("key", key))
	default:
		list, err := decode([]byte(raw))
		if err == nil {
			return dedupe[T, P](list)
		}
		s.logger.Warn("unreadable snapshot, using defaults", zap.String("key", key), zap.Error(err))
	}

	data, err := bundledDefaults(key)
	if err != nil {
		s.logger.Error("missing bundled defaults", zap.String("key", key), zap.Error(err))
		return []T{}
	}
	list, err := decode(data)
	if err != nil {
		s.logger.Error("invalid bundled defaults", zap.String("key", key), zap.Error(err))
		return []T{}
	}
	return dedupe[T, P](list)
}

func decodeJSON[T any](data []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// decodeProducts accepts every stored product shape and normalizes it.
func decodeProducts(data []byte) ([]model.Product, error) {
	raws, err := decodeJSON[model.RawProduct](data)
	if err != nil {
		return nil, err
	}
	out := make([]model.Product, len(raws))
	for i, r := range raws {
		out[i] = r.Normalize()
	}
	return out, nil
}

// AddUpdateListener registers fn for every committed mutation. The returned
// function unregisters it and is safe to call more than once.
func (s *Store) AddUpdateListener(fn Listener) (unsubscribe func()) {
	return s.listeners.add(fn)
}

// PersistState reports how the last write of a collection key went.
func (s *Store) PersistState(key string) State {
	return s.persister.State(key)
}

// Flush rewrites every collection snapshot.
func (s *Store) Flush(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.persistAll(ctx)
}

func (s *Store) persistAll(ctx context.Context) {
	_ = s.persister.Save(ctx, kv.KeyProducts, s.products)
	_ = s.persister.Save(ctx, kv.KeyCategories, s.categories)
	_ = s.persister.Save(ctx, kv.KeyBlogs, s.blogs)
	_ = s.persister.Save(ctx, kv.KeyOrders, s.orders)
	_ = s.persister.Save(ctx, kv.KeyCustomers, s.customers)
	_ = s.persister.Save(ctx, kv.KeySliders, s.sliders)
	_ = s.persister.Save(ctx, kv.KeyCampaigns, s.campaigns)
	_ = s.persister.Save(ctx, kv.KeyBrands, s.brands)
}

// Read models. Records are shared with the store and must be treated as
// read-only; use the update operations to change them.

func (s *Store) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

func (s *Store) Product(id string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findByID(s.products, id)
}

func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

func (s *Store) Category(id string) (model.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findByID(s.categories, id)
}

func (s *Store) Blogs() []model.Blog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.blogs)
}

func (s *Store) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

func (s *Store) Order(id string) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findByID(s.orders, id)
}

func (s *Store) Customers() []model.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.customers)
}

func (s *Store) Sliders() []model.Slider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sliders)
}

func (s *Store) Campaigns() []model.Campaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.campaigns)
}

func (s *Store) Brands() []model.Brand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.brands)
}
