package macro_test

import (
	"testing"

	"github.com/katalvlaran/meridian/macro"
	"github.com/stretchr/testify/require"
)

func TestNewStaticTableRejectsEmptyTable(t *testing.T) {
	_, err := macro.NewStaticTable()
	require.ErrorIs(t, err, macro.ErrEmptyTable)
}

func TestNewStaticTableBuildsInOrder(t *testing.T) {
	tbl, err := macro.NewStaticTable(macro.WithPayload([]byte("a")), macro.WithPayload([]byte("b")))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, []byte("a"), tbl.At(0).Bytes)
	require.Equal(t, []byte("b"), tbl.At(1).Bytes)
}

func TestWithPayloadCopiesInput(t *testing.T) {
	src := []byte("x")
	tbl, err := macro.NewStaticTable(macro.WithPayload(src))
	require.NoError(t, err)

	src[0] = 'y'
	require.Equal(t, byte('x'), tbl.At(0).Bytes[0], "StaticTable must not alias the caller's slice")
}
