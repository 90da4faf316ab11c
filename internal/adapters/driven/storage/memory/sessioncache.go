package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// maxJanitorInterval caps how long an expired session may linger before teardown.
const maxJanitorInterval = 10 * time.Minute

// Ensure SessionCache implements the interface.
var _ driven.SessionCache[int] = (*SessionCache[int])(nil)

// SessionCache is a go-cache backed store of live sessions.
// Entries expire after the idle timeout; reading an entry restarts its clock.
type SessionCache[T any] struct {
	mu    sync.Mutex
	cache *cache.Cache
	idle  time.Duration
}

// NewSessionCache creates a cache evicting entries idle for longer than idle.
// A zero or negative idle keeps entries until they are deleted.
func NewSessionCache[T any](idle time.Duration) *SessionCache[T] {
	expiration := cache.NoExpiration
	if idle > 0 {
		expiration = idle
	}
	return &SessionCache[T]{
		cache: cache.New(expiration, janitorInterval(idle)),
		idle:  idle,
	}
}

// IdleTimeout returns the configured idle timeout.
func (c *SessionCache[T]) IdleTimeout() time.Duration {
	return c.idle
}

// Get returns the value for id and refreshes its idle deadline.
func (c *SessionCache[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	x, found := c.cache.Get(id)
	if !found {
		return zero, false
	}
	value, ok := x.(T)
	if !ok {
		return zero, false
	}
	c.cache.Set(id, value, cache.DefaultExpiration)
	return value, true
}

// Peek returns the value for id without refreshing its idle deadline.
func (c *SessionCache[T]) Peek(id string) (T, bool) {
	var zero T
	x, found := c.cache.Get(id)
	if !found {
		return zero, false
	}
	value, ok := x.(T)
	if !ok {
		return zero, false
	}
	return value, true
}

// Add stores value under id unless a live entry already exists.
func (c *SessionCache[T]) Add(id string, value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Add(id, value, cache.DefaultExpiration) == nil
}

// Delete removes id. The eviction callback runs if the entry existed.
func (c *SessionCache[T]) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Delete(id)
}

// IDs returns the live ids in sorted order.
func (c *SessionCache[T]) IDs() []string {
	items := c.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of unexpired entries.
func (c *SessionCache[T]) Len() int {
	return len(c.cache.Items())
}

// OnEvicted registers fn for entries that expire or are deleted.
func (c *SessionCache[T]) OnEvicted(fn func(id string, value T)) {
	if fn == nil {
		c.cache.OnEvicted(nil)
		return
	}
	c.cache.OnEvicted(func(id string, x interface{}) {
		if value, ok := x.(T); ok {
			fn(id, value)
		}
	})
}

// PurgeExpired tears down expired entries now instead of waiting for the janitor.
func (c *SessionCache[T]) PurgeExpired() {
	c.cache.DeleteExpired()
}

func janitorInterval(idle time.Duration) time.Duration {
	if idle <= 0 {
		return 0
	}
	interval := idle / 2
	if interval > maxJanitorInterval {
		interval = maxJanitorInterval
	}
	return interval
}
