package cache

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Stats represents cache statistics
type Stats struct {
	Items   int     `json:"items"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Cache is an LRU of computed read results (chains, visualization data)
// keyed by request shape. Any graph mutation makes every entry stale, so
// the whole cache is purged rather than tracking per-node dependencies.
type Cache[V any] struct {
	name   string
	lru    *lru.Cache[string, V]
	logger *zap.Logger

	// gen counts purges; PutAt drops values computed before the last one.
	mu  sync.Mutex
	gen uint64

	hits   uint64
	misses uint64
}

func New[V any](name string, size int, logger *zap.Logger) (*Cache[V], error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache %s: size must be positive, got %d", name, size)
	}
	l, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("cache %s: %w", name, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache[V]{name: name, lru: l, logger: logger}, nil
}

func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		atomic.AddUint64(&c.hits, 1)
	} else {
		atomic.AddUint64(&c.misses, 1)
	}
	return v, ok
}

func (c *Cache[V]) Put(key string, v V) {
	c.lru.Add(key, v)
}

// Generation returns the purge count to pass to PutAt.
func (c *Cache[V]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// PutAt stores v only if no purge happened since gen was read, so a result
// computed against an older graph is not cached after the graph changed.
func (c *Cache[V]) PutAt(gen uint64, key string, v V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.lru.Add(key, v)
	return true
}

func (c *Cache[V]) Purge() {
	c.mu.Lock()
	c.gen++
	n := c.lru.Len()
	c.lru.Purge()
	c.mu.Unlock()
	if n > 0 {
		c.logger.Debug("cache purged", zap.String("cache", c.name), zap.Int("entries", n))
	}
}

func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

func (c *Cache[V]) Stats() Stats {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)

	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Items:   c.lru.Len(),
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
	}
}

// PurgeOnMutation is an event listener that drops every entry when the
// graph changes. Read-only events leave the cache alone.
func (c *Cache[V]) PurgeOnMutation(e domain.GraphEvent) error {
	switch e.Type {
	case domain.EventNodeAdded, domain.EventEdgeAdded, domain.EventNodeUpdated:
		c.Purge()
	}
	return nil
}

// TraceKey identifies a chain by its root, direction and depth bound.
func TraceKey(nodeID string, dir domain.Direction, depth int) string {
	return string(dir) + "|" + strconv.Itoa(depth) + "|" + nodeID
}

// VisualizationKey identifies visualization data by its root.
func VisualizationKey(rootID string) string {
	return "viz|" + rootID
}
