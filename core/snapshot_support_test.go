package core_test

import (
	"testing"

	"github.com/katalvlaran/meridian/core"
	"github.com/stretchr/testify/require"
)

func TestExportRestoreRoundTripsLiveGraph(t *testing.T) {
	a := core.NewArena(core.WithVertexCapacity(4), core.WithEdgeCapacity(4), core.WithWeightMax(255))
	src, _ := a.AllocateVertex(0)
	dst, _ := a.AllocateVertex(0)
	slot, _ := a.AllocateEdge(src, dst)
	e, _ := a.Edge(slot)
	e.WFast = 42

	restored := core.RestoreArena(core.RestoreParams{
		WeightMax:      a.WeightMax(),
		Vertices:       a.ExportVertices(),
		Edges:          a.ExportEdges(),
		VertexFreeHead: a.VertexFreeHead(),
		EdgeFreeHead:   a.EdgeFreeHead(),
		LiveVertices:   a.Stats().LiveVertices,
		LiveEdges:      a.Stats().LiveEdges,
	})

	require.Equal(t, a.Stats(), restored.Stats())

	rv, err := restored.Vertex(src)
	require.NoError(t, err)
	require.Equal(t, src, rv.ID)

	re, err := restored.Edge(slot)
	require.NoError(t, err)
	require.Equal(t, 42.0, re.WFast)

	foundSlot, ok := restored.FindEdge(src, dst)
	require.True(t, ok, "restoring must rebuild the edge index, not just the edge table")
	require.Equal(t, slot, foundSlot)
}

func TestExportRestorePreservesFreeListForFutureAllocation(t *testing.T) {
	a := core.NewArena(core.WithVertexCapacity(2))
	v1, _ := a.AllocateVertex(0)
	a.FreeVertex(v1)

	restored := core.RestoreArena(core.RestoreParams{
		WeightMax:      a.WeightMax(),
		Vertices:       a.ExportVertices(),
		Edges:          a.ExportEdges(),
		VertexFreeHead: a.VertexFreeHead(),
		EdgeFreeHead:   a.EdgeFreeHead(),
		LiveVertices:   a.Stats().LiveVertices,
		LiveEdges:      a.Stats().LiveEdges,
	})

	id, err := restored.AllocateVertex(1)
	require.NoError(t, err)
	require.Equal(t, v1, id, "the freed slot should still be at the head of the restored free list")
}
