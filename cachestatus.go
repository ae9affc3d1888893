package forecache

// CacheStatus is the value of the Cache-Status header added to every
// response sent to a client.
type CacheStatus string

const (
	// StatusHit means the response was served from the cache store.
	StatusHit CacheStatus = "HIT"
	// StatusMiss means the request was forwarded to the upstream and the
	// captured response was stored.
	StatusMiss CacheStatus = "MISS"
)

const cacheStatusHeader = "Cache-Status"
