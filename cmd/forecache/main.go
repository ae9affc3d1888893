package main

import (
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/forecache/forecache"
	"github.com/forecache/forecache/cache"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	configFilenameFlag string
	portFlag           int
	targetFlag         string
	clearCacheFlag     bool
	dbFilenameFlag     string
	metricsAddrFlag    string
	verbosityTraceFlag bool
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to YAML config file")
	flag.IntVar(&portFlag, "port", 3000, "Port to listen on")
	flag.IntVar(&portFlag, "p", 3000, "Port to listen on (shorthand)")
	flag.StringVar(&targetFlag, "target", "", "Base URL of the upstream server")
	flag.StringVar(&targetFlag, "t", "", "Base URL of the upstream server (shorthand)")
	flag.BoolVar(&clearCacheFlag, "clearCache", false, "Empty the cache store at startup")
	flag.BoolVar(&clearCacheFlag, "c", false, "Empty the cache store at startup (shorthand)")
	flag.StringVar(&dbFilenameFlag, "db", "", "Cache DB file name (use 'memory' for an in-memory db, empty for the map store)")
	flag.StringVar(&metricsAddrFlag, "metrics", "", "Listen address for Prometheus metrics (disabled if empty)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}
	log.Logger = log.Level(logLevel).Output(zerolog.ConsoleWriter{Out: os.Stdout})

	// config file first, flags given on the command line override it
	config := defaultConfig()
	if configFilenameFlag != "" {
		var err error
		config, err = getConfig(configFilenameFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not read config file")
		}
	}
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "port", "p":
			config.Port = portFlag
		case "target", "t":
			config.Target = targetFlag
		case "clearCache", "c":
			config.ClearCache = clearCacheFlag
		case "db":
			config.DB = dbFilenameFlag
		case "metrics":
			config.Metrics = metricsAddrFlag
		}
	})

	if config.Target == "" {
		log.Fatal().Msg("Please specify target")
	}
	targetURL, err := url.Parse(config.Target)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not parse target url")
	}
	if targetURL.Scheme == "" || targetURL.Host == "" {
		log.Fatal().Str("target", config.Target).Msg("Target must be an absolute URL")
	}

	provider := newProvider(config.DB)
	defer provider.Close()

	if config.ClearCache {
		entries, _ := provider.Len()
		if err := provider.Clear(); err != nil {
			log.Fatal().Err(err).Msg("Could not clear cache")
		}
		log.Info().Int("entries", entries).Msg("Cleared cache store")
	}

	fc := forecache.New(forecache.Config{
		Cache:     provider,
		TargetURL: *targetURL,
		Logger:    &log.Logger,
	})

	r := chi.NewRouter()
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(middleware.Recoverer)
	r.Handle("/*", fc)

	if config.Metrics != "" {
		go serveMetrics(config.Metrics)
	}

	log.Info().Msgf("Proxying port %v to %s", config.Port, targetURL.String())
	if err := http.ListenAndServe(fmt.Sprintf(":%d", config.Port), r); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

// newProvider selects the cache store backend. An empty db name means the
// in-process map store; anything else is SQLite, with the special name
// "memory" selecting an in-memory database.
func newProvider(dbFilename string) cache.Provider {
	if dbFilename == "" {
		return cache.NewMemCache()
	}
	if dbFilename == "memory" {
		dbFilename = "file::memory:?cache=shared"
	}
	return cache.NewSQLiteCache(dbFilename)
}

// serveMetrics exposes Prometheus metrics on a separate listener, so the
// proxy's own catch-all route is not shadowed by a /metrics path.
func serveMetrics(addr string) {
	m := chi.NewRouter()
	m.Handle("/metrics", promhttp.Handler())
	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, m); err != nil {
		log.Error().Err(err).Msg("Metrics server stopped")
	}
}
