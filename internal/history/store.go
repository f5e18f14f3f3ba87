package history

import (
	"encoding/json"
	"fmt"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/kv"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/logging"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/status"
)

// StorageKey is the single key the record list lives under.
const StorageKey = "chatHistory"

// CountMessage is the badge notification payload.
type CountMessage struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// Notifier receives the badge count after every successful save. Delivery
// failures are logged by the store and otherwise ignored.
type Notifier interface {
	Notify(CountMessage) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(CountMessage) error

func (f NotifierFunc) Notify(m CountMessage) error { return f(m) }

// ChannelNotifier posts badge messages onto a channel without blocking.
type ChannelNotifier struct {
	C chan CountMessage
}

// NewChannelNotifier returns a notifier with a buffered channel.
func NewChannelNotifier() *ChannelNotifier {
	return &ChannelNotifier{C: make(chan CountMessage, 16)}
}

// Notify delivers the message or reports a full channel.
func (n *ChannelNotifier) Notify(m CountMessage) error {
	select {
	case n.C <- m:
		return nil
	default:
		return fmt.Errorf("badge channel full, dropping count %d", m.Count)
	}
}

// Store holds the persisted history list behind the key-value collaborator.
type Store struct {
	kv       kv.Store
	notifier Notifier
	status   status.Reporter
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets the badge count listener.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithStatus sets the visible feedback surface.
func WithStatus(r status.Reporter) Option {
	return func(s *Store) { s.status = r }
}

// NewStore wraps a key-value backend.
func NewStore(backend kv.Store, opts ...Option) *Store {
	s := &Store{kv: backend, status: status.Nop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the persisted list. Missing, non-list or corrupt storage reads
// as an empty list; Load never fails outward.
func (s *Store) Load() []Entry {
	raw, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		logging.HistoryWarn("load: storage read failed, treating as empty: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		logging.HistoryWarn("load: corrupt history value, treating as empty: %v", err)
		return nil
	}
	return entries
}

// Save persists the full list, then notifies the badge listener. A storage
// failure surfaces a visible error and is returned to the caller so a retry
// can be attempted.
func (s *Store) Save(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		s.status.Show(status.Error, "Failed to encode history")
		return fmt.Errorf("history: encode: %w", err)
	}
	if err := s.kv.Set(StorageKey, data); err != nil {
		s.status.Show(status.Error, "Failed to save history")
		return fmt.Errorf("history: save: %w", err)
	}
	logging.History("saved %d entries", len(entries))
	s.notifyCount(len(entries))
	return nil
}

// AddEntry validates, deduplicates and prepends a record (most recent
// first). It returns false without error when the candidate is rejected; the
// only returned errors are storage failures from the underlying save.
func (s *Store) AddEntry(candidate Entry) (bool, error) {
	if !candidate.Valid() {
		logging.HistoryWarn("addEntry: rejected invalid entry url=%q title=%q model=%q",
			candidate.URL, candidate.Title, candidate.Model)
		s.status.Show(status.Warning, "History entry incomplete, not saved")
		return false, nil
	}
	entries := s.Load()
	for _, e := range entries {
		if e.URL == candidate.URL {
			logging.History("addEntry: duplicate url %s", candidate.URL)
			s.status.Show(status.Info, "Conversation already in history")
			return false, nil
		}
	}
	entries = append([]Entry{candidate}, entries...)
	if err := s.Save(entries); err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of persisted entries.
func (s *Store) Count() int {
	return len(s.Load())
}

// Clear removes every entry.
func (s *Store) Clear() error {
	return s.Save(nil)
}

// NotifyCount re-emits the current badge count, for external store edits.
func (s *Store) NotifyCount() {
	s.notifyCount(s.Count())
}

func (s *Store) notifyCount(count int) {
	if s.notifier == nil {
		return
	}
	msg := CountMessage{Action: "updateHistoryCount", Count: count}
	if err := s.notifier.Notify(msg); err != nil {
		logging.HistoryWarn("badge notify failed: %v", err)
	}
}
