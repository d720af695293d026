package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/katalvlaran/meridian/core"
	"github.com/katalvlaran/meridian/homeostat"
	"github.com/katalvlaran/meridian/prng"
	"github.com/katalvlaran/meridian/snapshot"
	"github.com/stretchr/testify/require"
)

func buildArena(t *testing.T) *core.Arena {
	t.Helper()
	a := core.NewArena(core.WithVertexCapacity(8), core.WithEdgeCapacity(8), core.WithWeightMax(64))
	src, err := a.AllocateVertex(0)
	require.NoError(t, err)
	dst, err := a.AllocateVertex(0)
	require.NoError(t, err)
	slot, err := a.AllocateEdge(src, dst)
	require.NoError(t, err)
	e, err := a.Edge(slot)
	require.NoError(t, err)
	e.WFast = 12.5
	e.WSlow = 3
	e.UseCount = 9
	v, err := a.Vertex(src)
	require.NoError(t, err)
	v.Activation = 0.75
	v.Flags = core.FlagSensory | core.FlagProtected
	return a
}

func buildState(t *testing.T) snapshot.State {
	t.Helper()
	rng := prng.New(42)
	rngState, err := rng.MarshalBinary()
	require.NoError(t, err)

	return snapshot.State{
		Tick:         1234,
		Homeostat:    homeostat.DefaultParams(),
		Energy:       0.42,
		MeanSurprise: 0.11,
		PRNGState:    rngState,
		Baseline: map[core.VertexID]float64{
			0: 0.2,
			1: 0.8,
		},
	}
}

func TestSaveLoadRoundTripsArenaAndState(t *testing.T) {
	a := buildArena(t)
	st := buildState(t)
	path := filepath.Join(t.TempDir(), "state.meridian")

	require.NoError(t, snapshot.Save(path, a, st))

	loaded, loadedState, err := snapshot.Load(path)
	require.NoError(t, err)

	require.Equal(t, a.Stats(), loaded.Stats())
	require.Equal(t, st.Tick, loadedState.Tick)
	// The header stores the fourteen adaptive parameters and energy as f32
	// (spec.md §6.3), so round-tripping loses some precision; everything
	// else in the file is stored at full float64 width.
	requireParamsEqualWithinFloat32Precision(t, st.Homeostat, loadedState.Homeostat)
	require.InDelta(t, st.Energy, loadedState.Energy, 1e-6)
	require.InDelta(t, st.MeanSurprise, loadedState.MeanSurprise, 1e-12)
	require.Equal(t, st.PRNGState, loadedState.PRNGState)
	require.Equal(t, st.Baseline, loadedState.Baseline)

	origV, err := a.Vertex(0)
	require.NoError(t, err)
	loadedV, err := loaded.Vertex(0)
	require.NoError(t, err)
	require.Equal(t, origV.Activation, loadedV.Activation)
	require.Equal(t, origV.Flags, loadedV.Flags)

	slot, ok := loaded.FindEdge(0, 1)
	require.True(t, ok)
	e, err := loaded.Edge(slot)
	require.NoError(t, err)
	require.Equal(t, 12.5, e.WFast)
	require.Equal(t, uint64(9), e.UseCount)
}

func TestSaveWritesAtomicallyLeavingNoTempFileBehind(t *testing.T) {
	a := buildArena(t)
	st := buildState(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "state.meridian")

	require.NoError(t, snapshot.Save(path, a, st))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "state.meridian", entries[0].Name())
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, _, err := snapshot.Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.ErrorIs(t, err, snapshot.ErrCorrupt)
}

func TestLoadRejectsTruncatedFile(t *testing.T) {
	a := buildArena(t)
	st := buildState(t)
	path := filepath.Join(t.TempDir(), "state.meridian")
	require.NoError(t, snapshot.Save(path, a, st))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)/2], 0o644))

	_, _, err = snapshot.Load(path)
	require.ErrorIs(t, err, snapshot.ErrCorrupt)
}

func TestLoadRejectsCorruptedPayload(t *testing.T) {
	a := buildArena(t)
	st := buildState(t)
	path := filepath.Join(t.TempDir(), "state.meridian")
	require.NoError(t, snapshot.Save(path, a, st))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[10] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, _, err = snapshot.Load(path)
	require.ErrorIs(t, err, snapshot.ErrCorrupt)
}

func TestLoadedPRNGStateResumesIdenticalSequence(t *testing.T) {
	a := buildArena(t)
	st := buildState(t)
	path := filepath.Join(t.TempDir(), "state.meridian")
	require.NoError(t, snapshot.Save(path, a, st))

	_, loadedState, err := snapshot.Load(path)
	require.NoError(t, err)

	want := prng.New(42)
	got := prng.New(1)
	require.NoError(t, got.Restore(loadedState.PRNGState))

	for i := 0; i < 16; i++ {
		require.Equal(t, want.Float64(), got.Float64())
	}
}

func requireParamsEqualWithinFloat32Precision(t *testing.T, want, got homeostat.Params) {
	t.Helper()
	const eps = 1e-6
	require.InDelta(t, want.PruneRate, got.PruneRate, eps)
	require.InDelta(t, want.CreateRate, got.CreateRate, eps)
	require.InDelta(t, want.ActivationScale, got.ActivationScale, eps)
	require.InDelta(t, want.EnergyAlpha, got.EnergyAlpha, eps)
	require.InDelta(t, want.EnergyDecay, got.EnergyDecay, eps)
	require.InDelta(t, want.SigmoidK, got.SigmoidK, eps)
	require.InDelta(t, want.EpsilonMax, got.EpsilonMax, eps)
	require.InDelta(t, want.EpsilonMin, got.EpsilonMin, eps)
	require.InDelta(t, want.LayerRate, got.LayerRate, eps)
	require.Equal(t, want.MaxThoughtHops, got.MaxThoughtHops)
	require.InDelta(t, want.StabilityEps, got.StabilityEps, eps)
	require.InDelta(t, want.ActivationEps, got.ActivationEps, eps)
	require.InDelta(t, want.TemporalDecay, got.TemporalDecay, eps)
	require.InDelta(t, want.SpatialK, got.SpatialK, eps)
	require.InDelta(t, want.ActivationFloor, got.ActivationFloor, eps)
}
