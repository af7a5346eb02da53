package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Scrapes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hopmetrics", Name: "scrapes_total", Help: "Scrapes by outcome."},
		[]string{"outcome"}, // items|no_match|fetch_failed|error
	)
	ItemsPersisted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "hopmetrics", Name: "items_persisted_total", Help: "Beers written by reconciliation."},
	)
	StrategyWins = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hopmetrics", Name: "strategy_wins_total", Help: "Winning structural strategy per site."},
		[]string{"site", "strategy"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hopmetrics", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hopmetrics", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hopmetrics", Name: "cache_events_total", Help: "Cache hits/misses/sets/errors."},
		[]string{"cache", "event"},
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(Scrapes, ItemsPersisted, StrategyWins, ExternalRequests, ExternalLatency, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObserveExternal records one outbound call. status 0 means a transport error.
func ObserveExternal(service string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|error
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveScrape(outcome string, persisted int) {
	Scrapes.WithLabelValues(outcome).Inc()
	ItemsPersisted.Add(float64(persisted))
}

func ObserveStrategy(site, strategy string) {
	StrategyWins.WithLabelValues(site, strategy).Inc()
}
