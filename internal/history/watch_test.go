package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/kv"
)

func TestFileWatcherEmitsOnExternalWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "history.json")
	backend, err := kv.NewFileStore(path)
	require.NoError(t, err)

	counts := make(chan int, 4)
	store := NewStore(backend, WithNotifier(NotifierFunc(func(m CountMessage) error {
		counts <- m.Count
		return nil
	})))

	fw, err := NewFileWatcher(store, path)
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Stop()

	// Simulate an external collaborator rewriting the store file.
	_, err = store.AddEntry(validEntry("https://gemini.google.com/app/ab12"))
	require.NoError(t, err)
	<-counts // the save's own notification

	select {
	case n := <-counts:
		require.Equal(t, 1, n)
	case <-time.After(3 * time.Second):
		t.Fatal("no badge re-emit after external write")
	}
}

func TestFileWatcherStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "history.json")
	backend, err := kv.NewFileStore(path)
	require.NoError(t, err)
	fw, err := NewFileWatcher(NewStore(backend), path)
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	fw.Stop()
	fw.Stop()
}
