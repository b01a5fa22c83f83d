package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benchorch/pkg/storage"
)

func TestLocalLogStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	store, err := storage.NewLocalLogStore(dir)
	require.NoError(t, err)

	ref, err := store.Store(context.Background(), "track-a.log", []byte("one\ntwo\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "track-a.log"), ref)

	data, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestNewLocalLogStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_, err := storage.NewLocalLogStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
