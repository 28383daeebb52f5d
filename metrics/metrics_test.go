// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestObserveBlock(t *testing.T) {
	m := New()

	m.ObserveBlock(3, 21000*3, 5*time.Millisecond)
	m.ObserveBlock(1, 21000, 2*time.Millisecond)

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)

	values := make(map[string]float64, len(families))
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[mf.GetName()] = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				values[mf.GetName()] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}

	require.Equal(t, float64(2), values["evmcore_chain_blocks_processed_total"])
	require.Equal(t, float64(4), values["evmcore_chain_transactions_processed_total"])
	require.Equal(t, float64(21000*4), values["evmcore_chain_gas_used_total"])
	require.Equal(t, float64(2), values["evmcore_chain_block_processing_seconds"])
}

func TestCacheHitMiss(t *testing.T) {
	m := New()
	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)

	values := make(map[string]float64, len(families))
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[mf.GetName()] = c.GetValue()
			}
		}
	}
	require.Equal(t, float64(2), values["evmcore_trie_cache_hits_total"])
	require.Equal(t, float64(1), values["evmcore_trie_cache_misses_total"])
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveBlock(1, 21000, time.Millisecond)
		m.CacheHit()
		m.CacheMiss()
	})
}
