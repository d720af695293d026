package action_test

import (
	"testing"

	"github.com/katalvlaran/meridian/action"
	"github.com/katalvlaran/meridian/macro"
	"github.com/katalvlaran/meridian/prng"
	"github.com/stretchr/testify/require"
)

func TestSelectReturnsMinusOneForEmptyTable(t *testing.T) {
	tbl, err := macro.NewStaticTable(macro.WithPayload([]byte("a")))
	require.NoError(t, err)
	// At least one macro is required to construct a StaticTable, so exercise
	// the empty-table guard directly against a table stub instead.
	require.Equal(t, -1, action.Select(emptyTable{}, action.Params{}, prng.New(1)))
	_ = tbl
}

type emptyTable struct{}

func (emptyTable) Len() int           { return 0 }
func (emptyTable) At(i int) *macro.Macro { return nil }

func TestSelectExploitsHighestBlendedUtilityWhenEpsilonZero(t *testing.T) {
	tbl, err := macro.NewStaticTable(macro.WithPayload([]byte("a")), macro.WithPayload([]byte("b")), macro.WithPayload([]byte("c")))
	require.NoError(t, err)
	tbl.At(1).UFast = 1.0
	tbl.At(1).USlow = 1.0

	idx := action.Select(tbl, action.Params{Gamma: 0.5, Epsilon: 0}, prng.New(1))
	require.Equal(t, 1, idx)
}

func TestSelectAlwaysExploresWhenEpsilonOne(t *testing.T) {
	tbl, err := macro.NewStaticTable(macro.WithPayload([]byte("a")), macro.WithPayload([]byte("b")))
	require.NoError(t, err)
	tbl.At(0).UFast, tbl.At(0).USlow = 1, 1 // would win on exploitation alone

	rng := prng.New(7)
	seenOther := false
	for i := 0; i < 50; i++ {
		if action.Select(tbl, action.Params{Gamma: 0.5, Epsilon: 1}, rng) != 0 {
			seenOther = true
			break
		}
	}
	require.True(t, seenOther, "epsilon=1 should explore uniformly rather than always picking the best macro")
}

func TestRewardUpdatesChosenMacroOnly(t *testing.T) {
	tbl, err := macro.NewStaticTable(macro.WithPayload([]byte("a")), macro.WithPayload([]byte("b")))
	require.NoError(t, err)

	action.Reward(tbl, 0, 0.2, 5)

	require.InDelta(t, 0.05*0.8, tbl.At(0).UFast, 1e-9)
	require.InDelta(t, 0.001*0.8, tbl.At(0).USlow, 1e-9)
	require.Equal(t, uint64(1), tbl.At(0).UseCount)
	require.Equal(t, uint64(5), tbl.At(0).LastUsedTick)

	require.Equal(t, 0.0, tbl.At(1).UFast)
	require.Equal(t, uint64(0), tbl.At(1).UseCount)
}

func TestRewardIgnoresOutOfRangeIndex(t *testing.T) {
	tbl, err := macro.NewStaticTable(macro.WithPayload([]byte("a")))
	require.NoError(t, err)
	require.NotPanics(t, func() { action.Reward(tbl, -1, 0.5, 1) })
	require.NotPanics(t, func() { action.Reward(tbl, 99, 0.5, 1) })
}
