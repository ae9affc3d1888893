package cache

import "net/http"

// Entry is a fully captured upstream response.
// It is created exactly once, when the complete response body has been
// received, and is never mutated afterwards. A repeated Put for the same key
// replaces the entry wholesale.
type Entry struct {
	Status int
	Header http.Header
	Body   []byte
}

// Provider is an interface for a cache provider.
// It maps cache keys to captured responses. There is no expiry and no
// eviction: an entry lives until Clear is called or the provider is gone.
//
// Implementations must be thread-safe!
type Provider interface {
	// Get returns the entry stored under the given key, if it exists.
	// The boolean indicates whether the key was present. A returned entry
	// is always fully formed; entries are never partially visible.
	Get(key string) (Entry, bool, error)
	// Put unconditionally stores the entry under the given key,
	// replacing any previous entry.
	Put(key string, entry Entry) error
	// Clear removes all entries.
	Clear() error
	// Len returns the number of stored entries.
	Len() (int, error)
	// Close releases any resources held by the provider.
	Close() error
}
