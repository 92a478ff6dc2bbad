package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryProviderPutAndGet(t *testing.T) {
	t.Parallel()

	p := NewMemoryProvider()
	require.NoError(t, p.Put(context.Background(), "raw/1001/a.jpg", "image/jpeg", []byte("bytes")))

	got, ok := p.Get("raw/1001/a.jpg")
	require.True(t, ok)
	require.Equal(t, []byte("bytes"), got)
	require.Equal(t, "image/jpeg", p.ContentType("raw/1001/a.jpg"))
	require.Equal(t, 1, p.Len())

	_, ok = p.Get("missing")
	require.False(t, ok)
}

func TestMemoryProviderCopiesData(t *testing.T) {
	t.Parallel()

	p := NewMemoryProvider()
	data := []byte("original")
	require.NoError(t, p.Put(context.Background(), "k", "text/plain", data))

	data[0] = 'X'
	got, _ := p.Get("k")
	require.Equal(t, []byte("original"), got)
}

func TestMemoryProviderFailWith(t *testing.T) {
	t.Parallel()

	p := NewMemoryProvider()
	p.FailWith = errors.New("boom")
	require.Error(t, p.Put(context.Background(), "k", "", nil))
	require.Zero(t, p.Len())
}

func TestNoOpProvider(t *testing.T) {
	t.Parallel()

	require.NoError(t, NoOpProvider{}.Put(context.Background(), "k", "", []byte("x")))
}
