package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup results
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Tier outcomes
const (
	TierSuccess = "success"
	TierAbsent  = "absent"
	TierError   = "error"
	TierSkipped = "skipped"
)

var cacheEntriesDesc = prometheus.NewDesc(
	"menuengine_cache_entries",
	"Number of menu documents held by the in-process cache, expired entries included",
	nil,
	nil,
)

// Sizer is satisfied by caches that can report how many entries they hold
type Sizer interface {
	Len() int
}

// CacheCollector reads the cache size on each scrape.
type CacheCollector struct {
	cache Sizer
}

// Describe sends the metric descriptor to the channel.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- cacheEntriesDesc
}

// Collect emits the current entry count as a gauge.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(cacheEntriesDesc, prometheus.GaugeValue, float64(c.cache.Len()))
}

// Recorder holds the resolution metrics. A nil *Recorder records nothing.
type Recorder struct {
	cacheLookups *prometheus.CounterVec
	tierOutcomes *prometheus.CounterVec
	resolutions  *prometheus.HistogramVec
}

// NewRecorder creates the metrics and registers them with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menuengine_cache_lookups_total",
			Help: "Menu cache lookups by result",
		}, []string{"result"}),
		tierOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menuengine_tier_outcomes_total",
			Help: "Tier invocations by tier and outcome",
		}, []string{"tier", "outcome"}),
		resolutions: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "menuengine_resolution_duration_seconds",
			Help:    "End-to-end menu resolution latency",
			Buckets: []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 10, 20},
		}, []string{"mode", "result"}),
	}
	reg.MustRegister(r.cacheLookups, r.tierOutcomes, r.resolutions)
	return r
}

// RegisterCache adds a scrape-time collector for cache size
func RegisterCache(reg prometheus.Registerer, cache Sizer) {
	reg.MustRegister(&CacheCollector{cache: cache})
}

// CacheLookup counts one cache read
func (r *Recorder) CacheLookup(result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// TierOutcome counts one tier invocation
func (r *Recorder) TierOutcome(tier, outcome string) {
	if r == nil {
		return
	}
	r.tierOutcomes.WithLabelValues(tier, outcome).Inc()
}

// Resolution observes the duration of one resolution. mode is auto or
// explicit; result is a menu source or a no-menu reason.
func (r *Recorder) Resolution(mode, result string, d time.Duration) {
	if r == nil {
		return
	}
	r.resolutions.WithLabelValues(mode, result).Observe(d.Seconds())
}
