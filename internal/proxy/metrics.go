package proxy

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/five82/shinyhunt/internal/pokeapi"
)

const metricsNamespace = "shinyhunt"

// Metrics holds the proxy's collectors on a private registry. It also
// implements pokeapi.Observer so upstream fetches are counted.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	upstreamFetches *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
	upstreamRetries *prometheus.CounterVec
	batchSize       prometheus.Histogram
}

var _ pokeapi.Observer = (*Metrics)(nil)

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Proxy requests by route and status code",
		}, []string{"route", "code"}),
		upstreamFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "upstream",
			Name:      "fetches_total",
			Help:      "PokeAPI fetches by result (ok, error, cached)",
		}, []string{"result"}),
		upstreamLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "upstream",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of uncached PokeAPI requests",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		upstreamRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "upstream",
			Name:      "retries_total",
			Help:      "PokeAPI retries by reason",
		}, []string{"reason"}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "proxy",
			Name:      "batch_size",
			Help:      "Number of paths per batch request",
			Buckets:   []float64{1, 5, 10, 20, 50, 100},
		}),
	}
}

func (m *Metrics) ObserveFetch(result string, elapsed time.Duration) {
	m.upstreamFetches.WithLabelValues(result).Inc()
	if result != pokeapi.ResultCached {
		m.upstreamLatency.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) ObserveRetry(reason string) {
	m.upstreamRetries.WithLabelValues(reason).Inc()
}

func (m *Metrics) observeBatch(n int) {
	m.batchSize.Observe(float64(n))
}

// Registry exposes the registry for tests and embedding.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
