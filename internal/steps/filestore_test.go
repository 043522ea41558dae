package steps_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/snaptrip/backend/internal/steps"
)

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	fs, err := steps.NewFileStore(filepath.Join(t.TempDir(), "steps.toml"))
	require.NoError(t, err)

	_, ok, err := fs.Get(context.Background(), "trip-1")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "steps.toml")

	fs, err := steps.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, fs.Put(ctx, "trip-1", steps.Baseline{Offset: 900, HasOffset: true, Last: 42}))

	reopened, err := steps.NewFileStore(path)
	require.NoError(t, err)
	b, ok, err := reopened.Get(ctx, "trip-1")

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, steps.Baseline{Offset: 900, HasOffset: true, Last: 42}, b)

	require.NoError(t, reopened.Delete(ctx, "trip-1"))
	_, ok, err = fs.Get(ctx, "trip-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_DefaultPathExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	fs, err := steps.NewFileStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "snaptrip", "steps.toml"), fs.Path())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steps.toml")
	require.NoError(t, os.WriteFile(path, []byte("trips = [not toml"), 0o644))

	fs, err := steps.NewFileStore(path)
	require.NoError(t, err)

	_, _, err = fs.Get(context.Background(), "trip-1")

	assert.ErrorContains(t, err, "parse step baselines")
}

func TestFileStore_WithCounter(t *testing.T) {
	ctx := context.Background()
	fs, err := steps.NewFileStore(filepath.Join(t.TempDir(), "steps.toml"))
	require.NoError(t, err)

	c := steps.NewCounter(fs)
	_, err = c.Apply(ctx, "trip-1", 1000)
	require.NoError(t, err)
	n, err := c.Apply(ctx, "trip-1", 1333)
	require.NoError(t, err)

	assert.Equal(t, 333, n)
}
