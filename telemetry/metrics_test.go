package telemetry_test

import (
	"bytes"
	"testing"

	"github.com/katalvlaran/meridian/telemetry"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	tick                                         uint64
	energy, epsilon, meanSurprise                float64
	vertexCap, edgeCap, liveVertices, liveEdges  uint32
	capacityExhausted, invalidVertexOps          uint64
}

func (f fakeSource) Tick() uint64 { return f.tick }
func (f fakeSource) Energy() (float64, float64, float64) {
	return f.energy, f.epsilon, f.meanSurprise
}
func (f fakeSource) ArenaStatsSnapshot() (uint32, uint32, uint32, uint32, uint64, uint64) {
	return f.vertexCap, f.edgeCap, f.liveVertices, f.liveEdges, f.capacityExhausted, f.invalidVertexOps
}

func TestMetricsSampleLogsStatusLine(t *testing.T) {
	m := telemetry.NewMetrics()
	var buf bytes.Buffer
	log := telemetry.NewLogger(&buf)

	src := fakeSource{
		tick: 7, energy: 0.5, epsilon: 0.1, meanSurprise: 0.2,
		vertexCap: 100, edgeCap: 200, liveVertices: 10, liveEdges: 20,
	}
	m.Sample(src, log)
	require.NoError(t, log.Sync())

	require.Contains(t, buf.String(), "[TICK 7] status")
}

func TestMetricsSampleOnlyAddsCounterDeltas(t *testing.T) {
	m := telemetry.NewMetrics()
	var buf bytes.Buffer
	log := telemetry.NewLogger(&buf)

	src := fakeSource{tick: 1, capacityExhausted: 3, invalidVertexOps: 2}
	m.Sample(src, log)
	requireGaugeValue(t, m, "meridian_arena_capacity_exhausted_total", 3)
	requireGaugeValue(t, m, "meridian_arena_invalid_vertex_ops_total", 2)

	src.tick = 2
	src.capacityExhausted = 5
	src.invalidVertexOps = 2 // unchanged: must not double-count
	m.Sample(src, log)
	requireGaugeValue(t, m, "meridian_arena_capacity_exhausted_total", 5)
	requireGaugeValue(t, m, "meridian_arena_invalid_vertex_ops_total", 2)
}

// requireGaugeValue gathers m's private registry and asserts the named
// metric's single sample value, covering both gauges and counters (both
// expose a GetValue()-shaped field in the gathered proto form).
func requireGaugeValue(t *testing.T, m *telemetry.Metrics, name string, want float64) {
	t.Helper()
	mfs, err := m.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		metric := mf.GetMetric()[0]
		var got float64
		switch {
		case metric.GetCounter() != nil:
			got = metric.GetCounter().GetValue()
		case metric.GetGauge() != nil:
			got = metric.GetGauge().GetValue()
		default:
			t.Fatalf("metric %s has neither counter nor gauge", name)
		}
		require.InDelta(t, want, got, 1e-9)
		return
	}
	t.Fatalf("metric %s not found", name)
}
