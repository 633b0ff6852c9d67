package audiostore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naija-speech/tts-api/internal/audiostore"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	return log
}

func TestJanitor_SweepRemovesOnlyOldFiles(t *testing.T) {
	t.Parallel()

	store, err := audiostore.New(t.TempDir())
	require.NoError(t, err)

	oldFile, err := store.Save([]byte("old"))
	require.NoError(t, err)

	freshFile, err := store.Save([]byte("fresh"))
	require.NoError(t, err)

	// Backdate the old artifact past the maximum age.
	oldPath := filepath.Join(store.BaseDir(), oldFile)
	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	janitor := audiostore.NewJanitor(store, time.Hour, time.Hour, newTestLogger(t))

	removed, err := janitor.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Read(oldFile)
	require.ErrorIs(t, err, audiostore.ErrNotFound)

	_, err = store.Read(freshFile)
	require.NoError(t, err)
}

func TestJanitor_SweepIgnoresNonAudioFiles(t *testing.T) {
	t.Parallel()

	store, err := audiostore.New(t.TempDir())
	require.NoError(t, err)

	notesPath := filepath.Join(store.BaseDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notesPath, []byte("keep"), 0o600))

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(notesPath, stale, stale))

	janitor := audiostore.NewJanitor(store, time.Hour, time.Hour, newTestLogger(t))

	removed, err := janitor.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	_, err = os.Stat(notesPath)
	require.NoError(t, err)
}

func TestJanitor_SweepEmptyDirectory(t *testing.T) {
	t.Parallel()

	store, err := audiostore.New(t.TempDir())
	require.NoError(t, err)

	janitor := audiostore.NewJanitor(store, time.Hour, time.Hour, newTestLogger(t))

	removed, err := janitor.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestJanitor_RunSurvivesNonPositiveInterval(t *testing.T) {
	t.Parallel()

	store, err := audiostore.New(t.TempDir())
	require.NoError(t, err)

	// A zero interval would panic time.NewTicker without the fallback.
	janitor := audiostore.NewJanitor(store, 0, 0, newTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NotPanics(t, func() { janitor.Run(ctx) })
}

// recordingDeleter captures the keys the janitor asks the mirror to drop.
type recordingDeleter struct {
	keys []string
	err  error
}

func (d *recordingDeleter) Delete(_ context.Context, key string) error {
	d.keys = append(d.keys, key)

	return d.err
}

func TestJanitor_SweepFollowsThroughToRemote(t *testing.T) {
	t.Parallel()

	store, err := audiostore.New(t.TempDir())
	require.NoError(t, err)

	oldFile, err := store.Save([]byte("old"))
	require.NoError(t, err)

	oldPath := filepath.Join(store.BaseDir(), oldFile)
	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	remote := &recordingDeleter{}
	janitor := audiostore.NewJanitor(store, time.Hour, time.Hour, newTestLogger(t)).
		WithRemote(remote)

	removed, err := janitor.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{oldFile}, remote.keys)
}

func TestJanitor_SweepToleratesRemoteErrors(t *testing.T) {
	t.Parallel()

	store, err := audiostore.New(t.TempDir())
	require.NoError(t, err)

	oldFile, err := store.Save([]byte("old"))
	require.NoError(t, err)

	oldPath := filepath.Join(store.BaseDir(), oldFile)
	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	remote := &recordingDeleter{err: assert.AnError}
	janitor := audiostore.NewJanitor(store, time.Hour, time.Hour, newTestLogger(t)).
		WithRemote(remote)

	removed, err := janitor.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "remote failures must not undo the local removal")
}
