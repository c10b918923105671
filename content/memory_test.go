package content

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/JimSP/jimfs"
)

func TestMemory_ReadWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory([]byte("hello"))
	n, err := m.Write(ctx, 5, []byte(" world"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	buf := make([]byte, 5)
	n, err = m.Read(ctx, 6, buf)
	require.NoError(t, err)
	assert.Equal(t, "world", string(buf[:n]))

	n, err = m.Read(ctx, 9, buf)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "ld", string(buf[:n]))

	_, err = m.Read(ctx, 11, buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestMemory_WriteGapIsZeroFilled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory(nil)
	_, err := m.Write(ctx, 3, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 'x'}, m.Bytes())
}

func TestMemory_Truncate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory([]byte("abcdef"))
	require.NoError(t, m.Truncate(ctx, 2))
	size, err := m.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)

	require.NoError(t, m.Truncate(ctx, 4))
	assert.Equal(t, []byte{'a', 'b', 0, 0}, m.Bytes(), "old bytes must not reappear")

	assert.ErrorIs(t, m.Truncate(ctx, -1), jimfs.ErrArgument)
}

func TestMemory_NegativeOffset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory(nil)
	_, err := m.Read(ctx, -1, make([]byte, 1))
	assert.ErrorIs(t, err, jimfs.ErrArgument)
	_, err = m.Write(ctx, -1, []byte("x"))
	assert.ErrorIs(t, err, jimfs.ErrArgument)
}

func TestMemory_Close(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory([]byte("data"))
	require.NoError(t, m.Close())

	_, err := m.Size(ctx)
	assert.ErrorIs(t, err, ErrReleased)
	_, err = m.Read(ctx, 0, make([]byte, 1))
	assert.ErrorIs(t, err, ErrReleased)
	_, err = m.Write(ctx, 0, []byte("x"))
	assert.ErrorIs(t, err, ErrReleased)
}

func TestMemory_ConcurrentWriters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory(nil)
	var g errgroup.Group
	for i := range 16 {
		g.Go(func() error {
			_, err := m.Write(ctx, int64(i*4), []byte("abcd"))
			return err
		})
	}
	require.NoError(t, g.Wait())

	size, err := m.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(64), size)
}
