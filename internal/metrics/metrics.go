package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the corpus collectors.
type Recorder struct {
	Queries   *prometheus.CounterVec
	Mutations *prometheus.CounterVec
	Rejected  *prometheus.CounterVec
	CacheHits prometheus.Counter
	Entries   prometheus.Gauge
	Authors   prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diary",
			Name:      "queries_total",
			Help:      "Corpus queries by kind.",
		}, []string{"kind"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diary",
			Name:      "mutations_total",
			Help:      "Applied corpus mutations by operation.",
		}, []string{"op"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diary",
			Name:      "rejected_total",
			Help:      "Operations rejected with an error, by operation.",
		}, []string{"op"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "diary",
			Name:      "search_cache_hits_total",
			Help:      "Word searches answered from the cache.",
		}),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "diary",
			Name:      "entries",
			Help:      "Diary entries currently registered.",
		}),
		Authors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "diary",
			Name:      "authors",
			Help:      "Authors currently registered.",
		}),
	}
	if reg != nil {
		reg.MustRegister(r.Queries, r.Mutations, r.Rejected, r.CacheHits, r.Entries, r.Authors)
	}
	return r
}
