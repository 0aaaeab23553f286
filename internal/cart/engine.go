package cart

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"go.uber.org/zap"
)

const defaultVariant = "default"

// LineID is the composite key lines are merged on. Add and Lookup must both
// go through it.
func LineID(productID, size, color string) string {
	return strings.Join([]string{productID, orDefault(size), orDefault(color)}, "-")
}

func orDefault(s string) string {
	if s == "" {
		return defaultVariant
	}
	return s
}

// Engine owns the shopping cart. The in-memory lines are authoritative for the
// session; every change writes a full snapshot to the key-value store, and a
// failed write is only logged.
type Engine struct {
	mu     sync.RWMutex
	lines  []model.CartLine
	store  kv.Store
	logger logger.ZapLogger
}

func NewEngine(store kv.Store, log logger.ZapLogger) *Engine {
	return &Engine{
		store:  store,
		logger: log.With(zap.String("component", "cart")),
	}
}

// Load restores the last snapshot. An absent or unreadable snapshot leaves the
// cart empty.
func (e *Engine) Load(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = nil
	raw, ok, err := e.store.Get(ctx, kv.KeyCart)
	if err != nil {
		e.logger.Warn("failed to read cart snapshot", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	var lines []model.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		e.logger.Warn("discarding unreadable cart snapshot", zap.Error(err))
		return
	}
	e.lines = mergeLines(lines)
}

// Add puts quantity units of the product variant into the cart. An existing
// line for the same variant only has its quantity increased.
func (e *Engine) Add(ctx context.Context, p model.Product, size, color string, quantity int) model.CartLine {
	if quantity < 1 {
		quantity = 1
	}
	id := LineID(p.ID, size, color)

	e.mu.Lock()
	defer e.mu.Unlock()

	next := slices.Clone(e.lines)
	var line model.CartLine
	if i := indexOf(next, id); i >= 0 {
		next[i].Quantity += quantity
		line = next[i]
	} else {
		line = newLine(p, id, size, color, quantity)
		next = append(next, line)
	}
	e.commit(ctx, next)
	return line
}

// Remove is a no-op for unknown ids.
func (e *Engine) Remove(ctx context.Context, cartLineID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := indexOf(e.lines, cartLineID)
	if i < 0 {
		return
	}
	e.commit(ctx, slices.Delete(slices.Clone(e.lines), i, i+1))
}

// SetQuantity removes the line when quantity <= 0.
func (e *Engine) SetQuantity(ctx context.Context, cartLineID string, quantity int) {
	if quantity <= 0 {
		e.Remove(ctx, cartLineID)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i := indexOf(e.lines, cartLineID)
	if i < 0 {
		return
	}
	next := slices.Clone(e.lines)
	next[i].Quantity = quantity
	e.commit(ctx, next)
}

func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commit(ctx, []model.CartLine{})
}

// Total is the raw sum of unitPrice*quantity. Rounding is left to display code.
func (e *Engine) Total() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var total float64
	for _, l := range e.lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// Count is the number of units, not lines.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := 0
	for _, l := range e.lines {
		n += l.Quantity
	}
	return n
}

func (e *Engine) Lookup(productID, size, color string) (model.CartLine, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if i := indexOf(e.lines, LineID(productID, size, color)); i >= 0 {
		return e.lines[i], true
	}
	return model.CartLine{}, false
}

// Lines returns a copy in display order.
func (e *Engine) Lines() []model.CartLine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.lines)
}

// Flush rewrites the current snapshot.
func (e *Engine) Flush(ctx context.Context) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	e.persist(ctx, e.lines)
}

func (e *Engine) commit(ctx context.Context, next []model.CartLine) {
	e.lines = next
	e.persist(ctx, next)
}

func (e *Engine) persist(ctx context.Context, lines []model.CartLine) {
	if lines == nil {
		lines = []model.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		e.logger.Error("failed to encode cart", zap.Error(err))
		return
	}
	if err := e.store.Set(ctx, kv.KeyCart, string(data)); err != nil {
		e.logger.Warn("failed to persist cart", zap.Int("lines", len(lines)), zap.Error(err))
	}
}

func newLine(p model.Product, id, size, color string, quantity int) model.CartLine {
	name := p.Name
	if name == "" {
		name = model.PlaceholderName
	}
	image := p.PrimaryImage()
	if image == "" {
		image = model.PlaceholderImage
	}
	return model.CartLine{
		ProductID:     p.ID,
		CartLineID:    id,
		Name:          name,
		UnitPrice:     p.Price,
		Image:         image,
		Quantity:      quantity,
		SelectedSize:  size,
		SelectedColor: color,
	}
}

func indexOf(lines []model.CartLine, cartLineID string) int {
	return slices.IndexFunc(lines, func(l model.CartLine) bool { return l.CartLineID == cartLineID })
}

// mergeLines heals a snapshot written by older code: ids are recomputed and
// duplicates folded into the first occurrence.
func mergeLines(lines []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 || l.ProductID == "" {
			continue
		}
		l.CartLineID = LineID(l.ProductID, l.SelectedSize, l.SelectedColor)
		if i := indexOf(out, l.CartLineID); i >= 0 {
			out[i].Quantity += l.Quantity
			continue
		}
		out = append(out, l)
	}
	return out
}
