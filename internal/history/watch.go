package history

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/logging"
)

// FileWatcher re-emits the badge count when the JSON store file changes on
// disk, which happens when an external collaborator (the dashboard, a manual
// edit) deletes or clears entries behind the daemon's back.
type FileWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	store    *Store
	path     string
	debounce time.Duration
	lastSeen time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewFileWatcher watches the store file at path for external writes.
func NewFileWatcher(store *Store, path string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		watcher:  w,
		store:    store,
		path:     path,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. The parent directory is watched rather than the
// file itself so atomic rename writes are seen.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.running {
		return nil
	}
	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}
	fw.running = true
	go fw.loop()
	return nil
}

func (fw *FileWatcher) loop() {
	defer close(fw.doneCh)
	for {
		select {
		case <-fw.stopCh:
			return
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(fw.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
				continue
			}
			fw.mu.Lock()
			now := time.Now()
			debounced := now.Sub(fw.lastSeen) < fw.debounce
			if !debounced {
				fw.lastSeen = now
			}
			fw.mu.Unlock()
			if debounced {
				continue
			}
			logging.History("store file changed externally, re-emitting count")
			fw.store.NotifyCount()
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.HistoryWarn("file watch error: %v", err)
		}
	}
}

// Stop tears the watcher down and waits for the loop to exit.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return
	}
	fw.running = false
	fw.mu.Unlock()

	close(fw.stopCh)
	_ = fw.watcher.Close()
	<-fw.doneCh
}
