package forecache

import "net/http"

// Hop-by-hop headers per RFC 9110 section 7.6.1. These describe a single
// connection and must not be forwarded to the upstream or replayed from the
// store.
var hopByHopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

func removeHopByHopHeaders(header http.Header) {
	for _, key := range hopByHopHeaders {
		header.Del(key)
	}
}

// copyHeader copies the headers from one http.Header to another,
// preserving multiple values per name.
func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
