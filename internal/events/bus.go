package events

import (
	"fmt"
	"sync"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"go.uber.org/zap"
)

// Listener handles a graph event. A returned error is logged and does not
// stop delivery to the remaining listeners.
type Listener func(domain.GraphEvent) error

type subscription struct {
	id       uint64
	listener Listener
}

// Bus is a synchronous observer registry. Emit calls every listener on the
// caller's goroutine in registration order, so a slow listener blocks the
// emitting mutation.
type Bus struct {
	mu        sync.Mutex
	listeners []subscription
	nextID    uint64
	logger    *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger}
}

// Subscribe registers l and returns a function that removes it. Calling the
// returned function more than once is a no-op.
func (b *Bus) Subscribe(l Listener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, subscription{id: id, listener: l})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.listeners {
		if s.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

func (b *Bus) Emit(e domain.GraphEvent) {
	b.mu.Lock()
	snapshot := make([]subscription, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	for _, s := range snapshot {
		if err := b.deliver(s.listener, e); err != nil {
			b.logger.Warn("event listener failed",
				zap.String("event", string(e.Type)),
				zap.Uint64("listener_id", s.id),
				zap.Error(err))
		}
	}
}

// Len reports the number of registered listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

func (b *Bus) deliver(l Listener, e domain.GraphEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return l(e)
}
