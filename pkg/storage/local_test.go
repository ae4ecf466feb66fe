package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageUploadOpenRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://cdn.local/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.EnsureBuckets(ctx, "project-images", ""))
	require.NoError(t, store.Upload(ctx, "project-images", "projects/site.png", strings.NewReader("png"), 3, "image/png"))

	file, err := store.Open("project-images", "projects/site.png")
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, "png", string(data))

	require.NoError(t, store.Remove(ctx, "project-images", "projects/site.png"))
	_, err = os.Stat(filepath.Join(dir, "project-images", "projects", "site.png"))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, store.Remove(ctx, "project-images", "projects/site.png"))

	assert.Equal(t, "http://cdn.local/project-images/projects/site.png", store.PublicURL("project-images", "projects/site.png"))
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	err = store.Remove(context.Background(), "gantt-charts", "../../etc/passwd")
	assert.Error(t, err)
	err = store.Remove(context.Background(), "", "gantt/a.png")
	assert.Error(t, err)
}

func TestLocalStorageHonoursCancelledContext(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Remove(ctx, "b", "k"), context.Canceled)
}
