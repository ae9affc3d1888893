package forecache

import "net/http"

// Key returns the cache key for a request: the path-plus-query portion of
// the request URL. The scheme and host of the client's request URL are not
// part of the key, and neither are the method or the body, so two requests
// with the same path and query always collide on the same entry.
//
// No normalization is applied. Letter case, trailing slashes and query
// parameter order are all significant.
func Key(r *http.Request) string {
	return r.URL.RequestURI()
}
