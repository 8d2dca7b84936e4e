package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gxd/internal/services"
	"gxd/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncGiftsSent()
	IncGiftsOpened()
	IncCoinsGranted(amount int)
	SetGiftsInTransit(count int)
	SetGiftsUnlockable(count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	giftsSent           prometheus.Counter
	giftsOpened         prometheus.Counter
	coinsGranted        prometheus.Counter
	giftsInTransit      prometheus.Gauge
	giftsUnlockable     prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncGiftsSent() {
	m.giftsSent.Inc()
}

func (m *MetricsProvider) IncGiftsOpened() {
	m.giftsOpened.Inc()
}

func (m *MetricsProvider) IncCoinsGranted(amount int) {
	if amount > 0 {
		m.coinsGranted.Add(float64(amount))
	}
}

func (m *MetricsProvider) SetGiftsInTransit(count int) {
	m.giftsInTransit.Set(float64(count))
}

func (m *MetricsProvider) SetGiftsUnlockable(count int) {
	m.giftsUnlockable.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, service services.AccountServiceInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gxd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gxd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gxd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gxd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gxd_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		giftsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gxd_gifts_sent_total",
			Help: "Total number of gifts sent",
		}),

		giftsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gxd_gifts_opened_total",
			Help: "Total number of gifts opened",
		}),

		coinsGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gxd_coins_granted_total",
			Help: "Total coins granted through minigame rewards",
		}),

		giftsInTransit: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gxd_gifts_in_transit",
			Help: "Unopened gifts currently sitting in inboxes",
		}),

		giftsUnlockable: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gxd_gifts_unlockable",
			Help: "Inbox gifts whose unlock date has passed",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gxd_accounts_total",
		Help: "Total number of registered accounts",
	}, func() float64 {
		return float64(service.Count())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncGiftsSent()                                    {}
func (n *noopMetrics) IncGiftsOpened()                                  {}
func (n *noopMetrics) IncCoinsGranted(_ int)                            {}
func (n *noopMetrics) SetGiftsInTransit(_ int)                          {}
func (n *noopMetrics) SetGiftsUnlockable(_ int)                         {}
