package search

import (
	"context"
	"sync"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/store"
	"go.uber.org/zap"
)

const ProductMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"description": { "type": "text" },
			"category": { "type": "keyword" },
			"brand": { "type": "keyword" },
			"price": { "type": "double" },
			"stock": { "type": "integer" },
			"isActive": { "type": "boolean" },
			"isFeatured": { "type": "boolean" },
			"createdAt": { "type": "date" }
		}
	}
}`

// DocumentIndex is the part of Client used by the Indexer.
type DocumentIndex interface {
	Index(ctx context.Context, index, id string, doc any) error
	Delete(ctx context.Context, index, id string) error
}

type Document struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"isActive"`
	IsFeatured  bool      `json:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewDocument(p model.Product) Document {
	return Document{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       p.Price,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		IsFeatured:  p.IsFeatured,
		CreatedAt:   p.CreatedAt,
	}
}

type jobKind int

const (
	jobIndex jobKind = iota
	jobDelete
	jobReindex
)

type job struct {
	kind    jobKind
	id      string
	product model.Product
	removed []string
}

// Indexer mirrors product changes of the document store into a search index.
// Events are queued and applied by one background worker; when the queue is
// full the event is dropped and logged.
type Indexer struct {
	client   DocumentIndex
	index    string
	products func() []model.Product
	logger   logger.ZapLogger
	timeout  time.Duration

	mu     sync.Mutex
	queue  chan job
	closed bool
	wg     sync.WaitGroup
}

// NewIndexer builds an indexer. products is used to rebuild the index after
// bulk changes such as a reset or a compaction; the ids those changes remove
// are deleted first.
func NewIndexer(client DocumentIndex, index string, queueSize int, products func() []model.Product, log logger.ZapLogger) *Indexer {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Indexer{
		client:   client,
		index:    index,
		products: products,
		logger:   log.With(zap.String("component", "search_indexer"), zap.String("index", index)),
		timeout:  10 * time.Second,
		queue:    make(chan job, queueSize),
	}
}

// Start runs the worker until Close is called.
func (ix *Indexer) Start(ctx context.Context) {
	ix.wg.Add(1)
	go func() {
		defer ix.wg.Done()
		ix.logger.Info("Starting search indexer")
		for j := range ix.queue {
			ix.apply(ctx, j)
		}
		ix.logger.Info("Search indexer stopped")
	}()
}

// Close stops accepting events, drains the queue and waits for the worker.
func (ix *Indexer) Close() {
	ix.mu.Lock()
	if !ix.closed {
		ix.closed = true
		close(ix.queue)
	}
	ix.mu.Unlock()
	ix.wg.Wait()
}

// Handle is a store.Listener.
func (ix *Indexer) Handle(e store.Event) {
	if e.Collection != kv.KeyProducts {
		return
	}

	var j job
	switch e.Action {
	case store.ActionAdd, store.ActionUpdate:
		p, ok := e.Payload.(model.Product)
		if !ok {
			return
		}
		j = job{kind: jobIndex, id: p.ID, product: p}
	case store.ActionDelete:
		p, ok := e.Payload.(model.Product)
		if !ok {
			return
		}
		j = job{kind: jobDelete, id: p.ID}
	case store.ActionReset, store.ActionCompact:
		j = job{kind: jobReindex}
		if change, ok := e.Payload.(store.BulkChange); ok {
			j.removed = change.RemovedIDs
		}
	default:
		return
	}
	ix.enqueue(j)
}

func (ix *Indexer) enqueue(j job) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return
	}
	select {
	case ix.queue <- j:
	default:
		ix.logger.Warn("search queue full, dropping event", zap.String("product_id", j.id))
	}
}

func (ix *Indexer) apply(ctx context.Context, j job) {
	switch j.kind {
	case jobIndex:
		ix.indexOne(ctx, j.product)
	case jobDelete:
		ix.deleteOne(ctx, j.id)
	case jobReindex:
		for _, id := range j.removed {
			ix.deleteOne(ctx, id)
		}
		products := ix.products()
		for _, p := range products {
			ix.indexOne(ctx, p)
		}
		ix.logger.Info("search index rebuilt", zap.Int("products", len(products)), zap.Int("removed", len(j.removed)))
	}
}

func (ix *Indexer) deleteOne(ctx context.Context, id string) {
	opCtx, cancel := context.WithTimeout(ctx, ix.timeout)
	defer cancel()
	if err := ix.client.Delete(opCtx, ix.index, id); err != nil {
		ix.logger.Error("failed to delete product from search index", zap.String("product_id", id), zap.Error(err))
	}
}

func (ix *Indexer) indexOne(ctx context.Context, p model.Product) {
	opCtx, cancel := context.WithTimeout(ctx, ix.timeout)
	defer cancel()
	if err := ix.client.Index(opCtx, ix.index, p.ID, NewDocument(p)); err != nil {
		ix.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}
