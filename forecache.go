package forecache

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/forecache/forecache/cache"
	"github.com/forecache/forecache/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Storage for cache entries.
	Cache cache.Provider
	// URL of the upstream target. Requests are forwarded to its host and
	// port; its path acts as a base path prefix for outbound requests.
	TargetURL url.URL
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
	// HTTP client for upstream requests. If nil, a client that does not
	// follow redirects is used.
	Client *http.Client
}

// Forecache is the request pipeline: compute the cache key, look it up,
// serve a hit from the store, or forward a miss to the upstream, capture
// the full response, store it and serve it. It implements http.Handler.
type Forecache struct {
	cache    cache.Provider
	upstream *Upstream
	target   url.URL
	log      zerolog.Logger
}

// New initializes a forecache instance with the given store and target.
// The store is owned by the returned pipeline; there is no process-global
// cache state.
func New(config Config) *Forecache {
	// use the global logger if not specified in config
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = log.Logger
	} else {
		logger = *config.Logger
	}

	// create a child logger and add defaults
	logger = logger.With().
		Str("target", config.TargetURL.String()).
		Logger()

	target := config.TargetURL
	return &Forecache{
		cache:    config.Cache,
		upstream: NewUpstream(&target, config.Client, logger),
		target:   config.TargetURL,
		log:      logger,
	}
}

// ServeHTTP implements the http.Handler interface.
// Exactly one response is written per request: either the stored entry, the
// freshly captured upstream response, or a 500 on upstream failure.
func (f *Forecache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := f.getLogger(r)
	key := Key(r)

	entry, ok, err := f.cache.Get(key)
	if err != nil {
		// a corrupt or unreadable entry is treated as a miss
		logger.Error().Err(err).Str("key", key).Msg("Could not read from cache")
		ok = false
	}
	if ok {
		logger.Trace().Str("key", key).Msg("Cache hit and serving")
		f.send(w, entry, StatusHit, logger)
		metrics.ResponsesTotal.WithLabelValues("hit").Inc()
		f.logRequest(logger, r, StatusHit, entry.Status)
		return
	}

	logger.Trace().Str("key", key).Msg("Cache miss, forwarding to target")
	res, err := f.upstream.Fetch(r)
	if err != nil {
		f.sendError(w, err, logger)
		f.logRequest(logger, r, StatusMiss, http.StatusInternalServerError)
		return
	}

	entry = cache.Entry{
		Status: res.Status,
		Header: res.Header,
		Body:   res.Body,
	}
	// capture is best-effort once the upstream has answered:
	// the response is served even if the store write fails
	if err := f.cache.Put(key, entry); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Could not write to cache")
	}
	f.send(w, entry, StatusMiss, logger)
	metrics.ResponsesTotal.WithLabelValues("miss").Inc()
	f.logRequest(logger, r, StatusMiss, entry.Status)
}

// send writes the entry to the client with the Cache-Status header added.
func (f *Forecache) send(w http.ResponseWriter, entry cache.Entry, status CacheStatus, logger *zerolog.Logger) {
	copyHeader(w.Header(), entry.Header)
	w.Header().Add(cacheStatusHeader, string(status))
	statusCode := entry.Status
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	w.WriteHeader(statusCode)
	if _, err := w.Write(entry.Body); err != nil {
		logger.Error().Err(err).Msg("Could not write response body to client")
	}
}

// sendError responds with a 500 for an upstream failure. The failure is
// terminal for this request only: nothing is stored and nothing is retried.
func (f *Forecache) sendError(w http.ResponseWriter, err error, logger *zerolog.Logger) {
	var unavailable *UnavailableError
	var stream *StreamError
	switch {
	case errors.As(err, &unavailable):
		metrics.UpstreamErrors.WithLabelValues("unavailable").Inc()
	case errors.As(err, &stream):
		metrics.UpstreamErrors.WithLabelValues("stream").Inc()
	}
	metrics.ResponsesTotal.WithLabelValues("error").Inc()
	logger.Error().Err(err).Msg("Could not get response from target")
	w.Header().Add(cacheStatusHeader, string(StatusMiss))
	http.Error(w, "Could not get response", http.StatusInternalServerError)
}

// getLogger returns the logger from the request context.
// If no logger is found, it will return the pipeline logger.
func (f *Forecache) getLogger(r *http.Request) *zerolog.Logger {
	logger := hlog.FromRequest(r)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &f.log
	}
	return logger
}

func (f *Forecache) logRequest(logger *zerolog.Logger, r *http.Request, status CacheStatus, statusCode int) {
	isHit := 0
	if status == StatusHit {
		isHit = 1
	}
	logger.Debug().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Str("sourceIp", getRequestSourceIp(r)).
		Str("target", f.target.String()).
		Str("status", string(status)).
		Int("httpStatus", statusCode).
		Int("hit", isHit).
		Msg("Sending response to client")
}

func getRequestSourceIp(r *http.Request) string {
	// RemoteAddr is in the format:
	// 1.2.3.4:10000 for ipv4
	// [1:2:3]:10000 for ipv6
	ipAndPort := r.RemoteAddr
	portSepIdx := strings.LastIndex(ipAndPort, ":")
	// if not found, return
	if portSepIdx < 0 {
		return ipAndPort
	}
	ip := ipAndPort[:portSepIdx]
	return ip
}
