// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics collects this module's Prometheus instrumentation:
// block/transaction/gas throughput from the block executor, and node
// cache hit rate from the trie layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "evmcore"

// Metrics holds every collector this module exports, registered on
// its own registry so an embedding application decides whether and
// how to expose it (e.g. promhttp.HandlerFor over Gatherer()).
type Metrics struct {
	registry *prometheus.Registry

	BlocksProcessed       prometheus.Counter
	TransactionsProcessed prometheus.Counter
	GasUsed               prometheus.Counter
	BlockProcessingTime   prometheus.Histogram

	TrieCacheHits   prometheus.Counter
	TrieCacheMisses prometheus.Counter
}

// New builds and registers the full collector set.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BlocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "blocks_processed_total",
			Help:      "Number of blocks applied by the block executor.",
		}),
		TransactionsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "transactions_processed_total",
			Help:      "Number of transactions applied by the transaction processor.",
		}),
		GasUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "gas_used_total",
			Help:      "Cumulative gas used across all applied blocks.",
		}),
		BlockProcessingTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "block_processing_seconds",
			Help:      "Wall-clock time spent applying one block.",
			Buckets:   prometheus.DefBuckets,
		}),
		TrieCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trie",
			Name:      "cache_hits_total",
			Help:      "Trie node lookups served from the in-memory node cache.",
		}),
		TrieCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trie",
			Name:      "cache_misses_total",
			Help:      "Trie node lookups that missed the in-memory node cache and went to the backing store.",
		}),
	}
	m.registry.MustRegister(
		m.BlocksProcessed,
		m.TransactionsProcessed,
		m.GasUsed,
		m.BlockProcessingTime,
		m.TrieCacheHits,
		m.TrieCacheMisses,
	)
	return m
}

// Gatherer exposes the registered collectors, e.g. for
// promhttp.HandlerFor(m.Gatherer(), promhttp.HandlerOpts{}).
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

// ObserveBlock records one applied block's transaction count, gas
// used, and wall-clock processing time.
func (m *Metrics) ObserveBlock(txCount int, gasUsed uint64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BlocksProcessed.Inc()
	m.TransactionsProcessed.Add(float64(txCount))
	m.GasUsed.Add(float64(gasUsed))
	m.BlockProcessingTime.Observe(elapsed.Seconds())
}

// CacheHit and CacheMiss record one trie node cache lookup outcome.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.TrieCacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.TrieCacheMisses.Inc()
}
