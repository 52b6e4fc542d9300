package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKVRoundTrip(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, kv.Set(context.Background(), "social:feed", `[{"id":"u1"}]`))

	got, err := kv.Get(context.Background(), "social:feed")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"u1"}]`, got)
}

func TestFileKVMissingKey(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	_, err = kv.Get(context.Background(), "social:friends")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileKVOverwrite(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "slot", "one"))
	require.NoError(t, kv.Set(ctx, "slot", "two"))

	got, err := kv.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, "two", got)
}
