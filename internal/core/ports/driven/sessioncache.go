package driven

// SessionCache holds live values keyed by session id.
// Entries idle past the configured timeout are evicted and reported
// through the eviction callback.
type SessionCache[T any] interface {
	// Get returns the value and refreshes its idle deadline.
	Get(id string) (T, bool)

	// Peek returns the value without touching its idle deadline.
	Peek(id string) (T, bool)

	// Add stores value unless id is present. It reports whether it stored.
	Add(id string, value T) bool

	// Delete removes id, invoking the eviction callback.
	Delete(id string)

	// IDs returns the live ids.
	IDs() []string

	// Len returns the number of live entries.
	Len() int

	// OnEvicted registers the callback for expired or deleted entries.
	OnEvicted(fn func(id string, value T))
}
