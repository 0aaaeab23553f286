// Package app owns the runtime context of the storefront data layer: one
// document store, one cart engine and the optional remote catalog client,
// built once and passed to consumers.
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/fekuna/omnipos-storefront/internal/cart"
	"github.com/fekuna/omnipos-storefront/internal/catalog"
	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/fekuna/omnipos-storefront/internal/notify"
	"github.com/fekuna/omnipos-storefront/internal/store"
	"go.uber.org/zap"
)

var ErrNotInitialized = errors.New("app: not initialized")

// Deps are the collaborators of the runtime. StoreOptions are passed to
// store.New. Catalog may be nil when no remote catalog is configured.
type Deps struct {
	KV           kv.Store
	Notifier     notify.Notifier
	Logger       logger.ZapLogger
	Catalog      *catalog.Client
	StoreOptions []store.Option
}

type App struct {
	Store   *store.Store
	Cart    *cart.Engine
	Catalog *catalog.Client

	logger logger.ZapLogger

	mu          sync.Mutex
	initialized bool
	unsubscribe []func()
}

func New(deps Deps) *App {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &App{
		Store:   store.New(deps.KV, notifier, log, deps.StoreOptions...),
		Cart:    cart.NewEngine(deps.KV, log),
		Catalog: deps.Catalog,
		logger:  log.With(zap.String("component", "app")),
	}
}

// Init loads the document store and the cart from storage. Calling it again
// is a no-op.
func (a *App) Init(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized {
		return
	}
	a.Store.Load(ctx)
	a.Cart.Load(ctx)
	a.initialized = true
	a.logger.Info("runtime initialized",
		zap.Int("cart_lines", len(a.Cart.Lines())),
		zap.Int("cart_units", a.Cart.Count()),
		zap.Bool("remote_catalog", a.Catalog != nil))
}

// Subscribe registers fn on the document store; it is removed on Teardown.
func (a *App) Subscribe(fn store.Listener) {
	unsubscribe := a.Store.AddUpdateListener(fn)
	a.mu.Lock()
	a.unsubscribe = append(a.unsubscribe, unsubscribe)
	a.mu.Unlock()
}

// Teardown removes every subscription and writes a final snapshot of each
// collection and the cart.
func (a *App) Teardown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return ErrNotInitialized
	}

	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil

	a.Store.Flush(ctx)
	a.Cart.Flush(ctx)
	a.initialized = false
	a.logger.Info("runtime torn down")
	return nil
}
