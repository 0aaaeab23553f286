// Package kv defines the persistent key-value boundary the storefront data
// layer snapshots itself into. Backends are synchronous and capacity-limited;
// a write that does not fit fails with ErrQuotaExceeded.
package kv

import (
	"context"
	"errors"
)

// Keys written by the cart engine and the document store.
const (
	KeyProducts   = "products"
	KeyCategories = "categories"
	KeyBlogs      = "blogs"
	KeySliders    = "sliders"
	KeyCampaigns  = "campaigns"
	KeyBrands     = "brands"
	KeyOrders     = "orders"
	KeyCustomers  = "customers"
	KeyCart       = "cart"
)

var ErrQuotaExceeded = errors.New("kv: quota exceeded")

type Store interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	ClearAll(ctx context.Context) error
}

func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}
