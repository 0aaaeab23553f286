package store

import (
	"fmt"
	"sync"

	"github.com/fekuna/omnipos-storefront/internal/logger"
	"go.uber.org/zap"
)

type Action string

const (
	ActionAdd       Action = "add"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionRecompute Action = "recompute"
	ActionCompact   Action = "compact"
	ActionReset     Action = "reset"
)

type Event struct {
	Collection string
	Action     Action
	Payload    any
}

// BulkChange is the payload of compact events and of the products reset
// event. RemovedIDs lists the records that no longer exist.
type BulkChange struct {
	Remaining  int
	RemovedIDs []string
}

// Listener is called synchronously after a mutation is committed. Listeners
// must not call mutating store methods on the same collection.
type Listener func(Event)

type listeners struct {
	mu     sync.RWMutex
	nextID uint64
	byID   map[uint64]Listener
	order  []uint64
	logger logger.ZapLogger
}

func newListeners(log logger.ZapLogger) *listeners {
	return &listeners{byID: make(map[uint64]Listener), logger: log}
}

func (l *listeners) add(fn Listener) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.byID[id] = fn
	l.order = append(l.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *listeners) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.byID, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i:i], l.order[i+1:]...)
			break
		}
	}
}

func (l *listeners) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byID)
}

func (l *listeners) notify(ev Event) {
	l.mu.RLock()
	fns := make([]Listener, 0, len(l.order))
	for _, id := range l.order {
		fns = append(fns, l.byID[id])
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		l.call(fn, ev)
	}
}

// call isolates a failing listener from the mutation and from the others.
func (l *listeners) call(fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("store listener panicked",
				zap.String("collection", ev.Collection),
				zap.String("action", string(ev.Action)),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()
	fn(ev)
}
