package ringbuf_test

import (
	"testing"

	"github.com/katalvlaran/meridian/ringbuf"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	r := ringbuf.New(8)
	n := r.Write([]byte("hello"))
	require.Equal(t, 5, n)
	require.Equal(t, 5, r.Len())

	out := make([]byte, 5)
	got := r.Read(out)
	require.Equal(t, 5, got)
	require.Equal(t, "hello", string(out))
	require.Equal(t, 0, r.Len())
}

func TestWriteDropsBytesPastCapacity(t *testing.T) {
	r := ringbuf.New(4)
	n := r.Write([]byte("hello"))
	require.Equal(t, 4, n, "a full ring must drop the overflow instead of blocking or growing")
	require.Equal(t, 4, r.Len())
}

func TestRingWrapsAroundAfterPartialDrain(t *testing.T) {
	r := ringbuf.New(4)
	r.Write([]byte("ab"))
	out := make([]byte, 1)
	r.Read(out) // drains 'a'; the next write fills the last two slots and wraps tail to 0
	r.Write([]byte("cd"))

	require.Equal(t, 3, r.Len())
	rest := make([]byte, 3)
	got := r.Read(rest)
	require.Equal(t, 3, got)
	require.Equal(t, "bcd", string(rest))
}

func TestReadOnEmptyRingReturnsZero(t *testing.T) {
	r := ringbuf.New(4)
	out := make([]byte, 4)
	require.Equal(t, 0, r.Read(out))
}
