package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-storefront/internal/catalog"
	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/kv/memory"
	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/notify"
	"github.com/fekuna/omnipos-storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestApp_Lifecycle(t *testing.T) {
	ctx := context.Background()
	backend := memory.New(0)
	a := New(Deps{KV: backend, Notifier: &notify.Recorder{}})

	require.ErrorIs(t, a.Teardown(ctx), ErrNotInitialized)

	a.Init(ctx)
	a.Init(ctx)
	require.Len(t, a.Store.Products(), 8)

	var events int
	a.Subscribe(func(store.Event) { events++ })

	p, ok := a.Store.Product("1")
	require.True(t, ok)
	a.Cart.Add(ctx, p, "M", "white", 2)
	a.Store.AddBlog(ctx, model.Blog{Title: "Launch"})
	assert.Equal(t, 1, events)

	require.NoError(t, a.Teardown(ctx))
	a.Store.AddBlog(ctx, model.Blog{Title: "After"})
	assert.Equal(t, 1, events, "subscriptions end with teardown")

	for _, key := range []string{kv.KeyProducts, kv.KeyCategories, kv.KeyBrands, kv.KeyCart} {
		_, ok, err := backend.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
	}

	restarted := New(Deps{KV: backend, Notifier: &notify.Recorder{}})
	restarted.Init(ctx)
	assert.Equal(t, 2, restarted.Cart.Count())
	assert.Len(t, restarted.Store.Blogs(), 4)
}

func TestApp_InitWithCatalogAndCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"categories":[{"_id":"c1","name":"Men"}]}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	backend := memory.New(0)
	seeded := New(Deps{KV: backend})
	seeded.Init(ctx)
	p, ok := seeded.Store.Product("1")
	require.True(t, ok)
	seeded.Cart.Add(ctx, p, "M", "white", 3)
	require.NoError(t, seeded.Teardown(ctx))

	core, logs := observer.New(zapcore.InfoLevel)
	client := catalog.NewClient(catalog.Config{BaseURL: srv.URL}, logger.NewNop())
	a := New(Deps{KV: backend, Logger: logger.Wrap(zap.New(core)), Catalog: client})
	a.Init(ctx)

	require.Same(t, client, a.Catalog)
	cats, err := a.Catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "c1", cats[0].ID)

	entries := logs.FilterMessage("runtime initialized").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 1, fields["cart_lines"])
	assert.EqualValues(t, 3, fields["cart_units"])
	assert.Equal(t, true, fields["remote_catalog"])
}
