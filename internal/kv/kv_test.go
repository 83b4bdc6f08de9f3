package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowr-app/flowr/internal/kv"
)

func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := kv.NewMemory()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, m.Put(ctx, "a", "1"))
	require.NoError(t, m.Put(ctx, "a", "2"))
	v, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
	assert.Equal(t, map[string]string{"a": "2"}, m.Snapshot())

	require.NoError(t, m.Delete(ctx, "a"))
	require.NoError(t, m.Delete(ctx, "a"))
	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &kv.Error{Op: kv.OpPut, Key: "k", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "kv put k: disk full", err.Error())
}
