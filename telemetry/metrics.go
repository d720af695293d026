package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors mirroring core.Stats() and the
// learner's live energy/epsilon values, plus the private Registry they are
// registered against. A private registry (rather than the global default
// one) means a process can construct more than one Metrics — and tests
// can construct many — without a duplicate-registration panic; whoever
// embeds this binary serves Registry() behind its own /metrics handler.
type Metrics struct {
	Registry *prometheus.Registry

	vertexLive  prometheus.Gauge
	vertexCap   prometheus.Gauge
	edgeLive    prometheus.Gauge
	edgeCap     prometheus.Gauge
	capExhaust  prometheus.Counter
	invalidVert prometheus.Counter
	energy      prometheus.Gauge
	epsilon     prometheus.Gauge
	meanSurp    prometheus.Gauge
	tick        prometheus.Gauge

	prevCapEx  uint64
	prevInvVtx uint64
}

// NewMetrics builds a fresh Metrics against a new, private prometheus.Registry.
func NewMetrics() *Metrics {
	const ns = "meridian"
	reg := prometheus.NewRegistry()
	fac := promauto.With(reg)
	return &Metrics{
		Registry: reg,

		vertexLive: fac.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "arena", Name: "vertices_live",
			Help: "Number of currently live vertices.",
		}),
		vertexCap: fac.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "arena", Name: "vertex_capacity",
			Help: "Configured vertex arena capacity.",
		}),
		edgeLive: fac.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "arena", Name: "edges_live",
			Help: "Number of currently live edges.",
		}),
		edgeCap: fac.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "arena", Name: "edge_capacity",
			Help: "Configured edge arena capacity.",
		}),
		capExhaust: fac.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "arena", Name: "capacity_exhausted_total",
			Help: "Count of allocation attempts dropped due to capacity exhaustion.",
		}),
		invalidVert: fac.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "arena", Name: "invalid_vertex_ops_total",
			Help: "Count of operations dropped due to a dead or out-of-range vertex id.",
		}),
		energy: fac.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "learn", Name: "energy",
			Help: "Current global energy level.",
		}),
		epsilon: fac.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "learn", Name: "epsilon",
			Help: "Current action-selection exploration rate.",
		}),
		meanSurp: fac.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "learn", Name: "mean_surprise",
			Help: "Running mean prediction surprise.",
		}),
		tick: fac.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Name: "tick",
			Help: "Current tick counter.",
		}),
	}
}

// reportSource is the narrow slice of engine.Core's exported surface
// StartReporting needs. Defined here rather than imported from package
// engine to keep telemetry free of a dependency on engine; engine.Core
// satisfies this interface structurally.
type reportSource interface {
	Tick() uint64
	Energy() (energy, epsilon, meanSurprise float64)
	ArenaStatsSnapshot() (vertexCap, edgeCap, liveVertices, liveEdges uint32, capacityExhausted, invalidVertexOps uint64)
}

// Sample pulls one reading from src into m's collectors and logs a
// `[TICK n]` status line through log. CapacityExhausted/InvalidVertexOps
// are cumulative counters on the arena side; since Prometheus counters
// must never decrease, only their delta since the previous Sample call is
// added.
func (m *Metrics) Sample(src reportSource, log *Logger) {
	tick := src.Tick()
	energy, epsilon, meanSurprise := src.Energy()
	vertexCap, edgeCap, liveVertices, liveEdges, capEx, invVtx := src.ArenaStatsSnapshot()

	m.tick.Set(float64(tick))
	m.vertexLive.Set(float64(liveVertices))
	m.vertexCap.Set(float64(vertexCap))
	m.edgeLive.Set(float64(liveEdges))
	m.edgeCap.Set(float64(edgeCap))
	m.energy.Set(energy)
	m.epsilon.Set(epsilon)
	m.meanSurp.Set(meanSurprise)

	if capEx > m.prevCapEx {
		m.capExhaust.Add(float64(capEx - m.prevCapEx))
		m.prevCapEx = capEx
	}
	if invVtx > m.prevInvVtx {
		m.invalidVert.Add(float64(invVtx - m.prevInvVtx))
		m.prevInvVtx = invVtx
	}

	log.Info(tick, "status",
		"vertices", liveVertices, "vertex_cap", vertexCap,
		"edges", liveEdges, "edge_cap", edgeCap,
		"energy", energy, "epsilon", epsilon, "mean_surprise", meanSurprise,
	)
}

// StartReporting launches a background goroutine sampling src every
// interval until ctx is done. The returned func blocks until the goroutine
// has exited, for orderly shutdown.
func (m *Metrics) StartReporting(ctx context.Context, src reportSource, log *Logger, interval time.Duration) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sample(src, log)
			}
		}
	}()
	return func() { <-done }
}
