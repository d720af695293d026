package propagate_test

import (
	"testing"

	"github.com/katalvlaran/meridian/core"
	"github.com/katalvlaran/meridian/propagate"
	"github.com/stretchr/testify/require"
)

func defaultParams() propagate.Params {
	return propagate.Params{Gamma: 0.5, TemporalDecay: 0.1, SpatialK: 0.1, ActivationScale: 32}
}

func TestPassActivatesDownstreamVertex(t *testing.T) {
	a := core.NewArena(core.WithVertexCapacity(2), core.WithEdgeCapacity(2))
	src, _ := a.AllocateVertex(0)
	dst, _ := a.AllocateVertex(0)
	slot, _ := a.AllocateEdge(src, dst)

	sv, _ := a.Vertex(src)
	sv.Activation = 1.0
	sv.Flags |= core.FlagSensory

	e, _ := a.Edge(slot)
	e.WFast = 200

	propagate.Pass(a, defaultParams())

	dv, _ := a.Vertex(dst)
	require.Greater(t, dv.Activation, 0.5)
	require.LessOrEqual(t, dv.Activation, 1.0)
}

func TestPassKeepsSensoryActivationFixed(t *testing.T) {
	a := core.NewArena(core.WithVertexCapacity(1))
	v, _ := a.AllocateVertex(0)
	sv, _ := a.Vertex(v)
	sv.Flags |= core.FlagSensory
	sv.Activation = 0.42

	propagate.Pass(a, defaultParams())

	got, _ := a.Vertex(v)
	require.Equal(t, 0.42, got.Activation, "sensory activation must not be overwritten by propagation")
}

func TestPassOutputStaysInUnitRange(t *testing.T) {
	a := core.NewArena(core.WithVertexCapacity(2), core.WithEdgeCapacity(2))
	src, _ := a.AllocateVertex(0)
	dst, _ := a.AllocateVertex(0)
	slot, _ := a.AllocateEdge(src, dst)
	sv, _ := a.Vertex(src)
	sv.Activation = 1.0
	sv.Flags |= core.FlagSensory
	e, _ := a.Edge(slot)
	e.WFast = 255
	e.WSlow = 255

	propagate.Pass(a, propagate.Params{Gamma: 0.9, TemporalDecay: 0, SpatialK: 0, ActivationScale: 1})

	dv, _ := a.Vertex(dst)
	require.GreaterOrEqual(t, dv.Activation, 0.0)
	require.LessOrEqual(t, dv.Activation, 1.0)
}
