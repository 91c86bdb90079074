// Package prom adapts sinecache's Metrics interface to Prometheus
// counters and gauges.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sinecache/sinecache"
)

// Adapter implements sinecache.Metrics. Safe for concurrent use; every
// Prometheus metric type is goroutine-safe.
type Adapter struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	evicts        *prometheus.CounterVec
	sizeEntries   prometheus.Gauge
	flushOK       prometheus.Counter
	flushFailed   prometheus.Counter
	flushedRecord prometheus.Counter
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache hits",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Cache evictions by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		sizeEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
		flushOK: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "journal_flushes_ok_total",
			Help:        "Successful journal flushes",
			ConstLabels: constLabels,
		}),
		flushFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "journal_flushes_failed_total",
			Help:        "Failed journal flushes",
			ConstLabels: constLabels,
		}),
		flushedRecord: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "journal_flushed_records_total",
			Help:        "Records included in a journal flush attempt, successful or not",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.sizeEntries, a.flushOK, a.flushFailed, a.flushedRecord)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r sinecache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Size updates the resident-entry-count gauge.
func (a *Adapter) Size(entries int) {
	a.sizeEntries.Set(float64(entries))
}

// JournalFlush records the outcome of a journal flush attempt.
func (a *Adapter) JournalFlush(ok bool, records int) {
	if ok {
		a.flushOK.Inc()
	} else {
		a.flushFailed.Inc()
	}
	a.flushedRecord.Add(float64(records))
}

// Compile-time check: ensure Adapter implements sinecache.Metrics.
var _ sinecache.Metrics = (*Adapter)(nil)
