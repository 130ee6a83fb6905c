package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the poll loop collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	offersEmitted     *prometheus.CounterVec
	candidatesSkipped *prometheus.CounterVec
	storeFailures     *prometheus.CounterVec
	submitFailures    *prometheus.CounterVec
	cycleDuration     prometheus.Histogram
	lastCycleTS       prometheus.Gauge
}

// New creates the collectors on a dedicated registry
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.offersEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freegames",
		Name:      "offers_emitted_total",
		Help:      "New free offers produced by a storefront adapter",
	}, []string{"store"})
	m.candidatesSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freegames",
		Name:      "candidates_skipped_total",
		Help:      "Listing entries dropped before emission",
	}, []string{"store", "reason"})
	m.storeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freegames",
		Name:      "store_failures_total",
		Help:      "Poll cycles in which a storefront listing could not be read",
	}, []string{"store"})
	m.submitFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freegames",
		Name:      "catalog_submit_failures_total",
		Help:      "Offers the catalog service refused or could not be reached for",
	}, []string{"store"})
	m.cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "freegames",
		Name:      "poll_cycle_duration_seconds",
		Help:      "Time spent polling every storefront once",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
	})
	m.lastCycleTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "freegames",
		Name:      "last_poll_cycle_timestamp_seconds",
		Help:      "Unix time the last poll cycle finished",
	})

	m.registry.MustRegister(
		m.offersEmitted,
		m.candidatesSkipped,
		m.storeFailures,
		m.submitFailures,
		m.cycleDuration,
		m.lastCycleTS,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collected metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OfferEmitted counts an offer an adapter returned
func (m *Metrics) OfferEmitted(store string) {
	if m == nil {
		return
	}
	m.offersEmitted.WithLabelValues(store).Inc()
}

// CandidateSkipped counts a listing entry dropped for reason
func (m *Metrics) CandidateSkipped(store, reason string) {
	if m == nil {
		return
	}
	m.candidatesSkipped.WithLabelValues(store, reason).Inc()
}

// StoreFailed counts a poll whose listing could not be fetched or decoded
func (m *Metrics) StoreFailed(store string) {
	if m == nil {
		return
	}
	m.storeFailures.WithLabelValues(store).Inc()
}

// SubmitFailed counts an offer the catalog refused
func (m *Metrics) SubmitFailed(store string) {
	if m == nil {
		return
	}
	m.submitFailures.WithLabelValues(store).Inc()
}

// CycleFinished records the duration of a poll cycle ending at end
func (m *Metrics) CycleFinished(d time.Duration, end time.Time) {
	if m == nil {
		return
	}
	m.cycleDuration.Observe(d.Seconds())
	m.lastCycleTS.Set(float64(end.Unix()))
}
