package history

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/kv"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/status"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	backend, err := kv.NewFileStore(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	return NewStore(backend, opts...)
}

func validEntry(url string) Entry {
	return Entry{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		URL:       url,
		Title:     "Quicksort Algorithm Overview",
		Model:     "2.5 Pro",
		Prompt:    "Explain quicksort",
	}
}

func TestAddEntryAndLoad(t *testing.T) {
	s := newTestStore(t)

	added, err := s.AddEntry(validEntry("https://gemini.google.com/app/ab12"))
	require.NoError(t, err)
	require.True(t, added)

	added, err = s.AddEntry(validEntry("https://gemini.google.com/app/cd34"))
	require.NoError(t, err)
	require.True(t, added)

	entries := s.Load()
	require.Len(t, entries, 2)
	// Most recent first.
	assert.Equal(t, "https://gemini.google.com/app/cd34", entries[0].URL)
	assert.Equal(t, "https://gemini.google.com/app/ab12", entries[1].URL)
}

func TestAddEntryValidation(t *testing.T) {
	rec := &status.Recorder{}
	s := newTestStore(t, WithStatus(rec))

	base := validEntry("https://gemini.google.com/app/ab12")

	mutations := map[string]func(Entry) Entry{
		"missing timestamp": func(e Entry) Entry { e.Timestamp = time.Time{}; return e },
		"missing url":       func(e Entry) Entry { e.URL = ""; return e },
		"missing title":     func(e Entry) Entry { e.Title = ""; return e },
		"missing model":     func(e Entry) Entry { e.Model = ""; return e },
		"url without id":    func(e Entry) Entry { e.URL = "https://gemini.google.com/app"; return e },
		"foreign host":      func(e Entry) Entry { e.URL = "https://example.com/app/ab12"; return e },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			added, err := s.AddEntry(mutate(base))
			require.NoError(t, err)
			assert.False(t, added)
		})
	}
	assert.Equal(t, 0, s.Count(), "no invalid entry may persist")

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, status.Warning, last.Level)
}

func TestAddEntryDuplicateRejectedNotOverwritten(t *testing.T) {
	rec := &status.Recorder{}
	s := newTestStore(t, WithStatus(rec))

	first := validEntry("https://gemini.google.com/app/ab12")
	added, err := s.AddEntry(first)
	require.NoError(t, err)
	require.True(t, added)

	second := first
	second.Title = "A different title"
	added, err = s.AddEntry(second)
	require.NoError(t, err)
	assert.False(t, added)

	entries := s.Load()
	require.Len(t, entries, 1)
	assert.Equal(t, "Quicksort Algorithm Overview", entries[0].Title,
		"duplicate must be rejected, not overwritten")

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, status.Info, last.Level)
}

func TestLoadToleratesCorruptValue(t *testing.T) {
	backend, err := kv.NewFileStore(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	require.NoError(t, backend.Set(StorageKey, []byte(`{"not":"a list"}`)))

	s := NewStore(backend)
	assert.Empty(t, s.Load())

	// The store must still accept a fresh entry afterwards.
	added, err := s.AddEntry(validEntry("https://gemini.google.com/app/ab12"))
	require.NoError(t, err)
	assert.True(t, added)
}

func TestSaveNotifiesBadge(t *testing.T) {
	var got []CountMessage
	s := newTestStore(t, WithNotifier(NotifierFunc(func(m CountMessage) error {
		got = append(got, m)
		return nil
	})))

	_, err := s.AddEntry(validEntry("https://gemini.google.com/app/ab12"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "updateHistoryCount", got[0].Action)
	assert.Equal(t, 1, got[0].Count)

	require.NoError(t, s.Clear())
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[1].Count)
}

func TestBadgeFailureIsIgnored(t *testing.T) {
	s := newTestStore(t, WithNotifier(NotifierFunc(func(CountMessage) error {
		return errors.New("listener gone")
	})))
	added, err := s.AddEntry(validEntry("https://gemini.google.com/app/ab12"))
	require.NoError(t, err, "badge failure must not fail the save")
	assert.True(t, added)
}

type failingKV struct{}

func (failingKV) Get(string) ([]byte, bool, error) { return nil, false, nil }
func (failingKV) Set(string, []byte) error         { return errors.New("disk full") }
func (failingKV) Close() error                     { return nil }

func TestSaveFailurePropagates(t *testing.T) {
	rec := &status.Recorder{}
	s := NewStore(failingKV{}, WithStatus(rec))

	added, err := s.AddEntry(validEntry("https://gemini.google.com/app/ab12"))
	require.Error(t, err)
	assert.False(t, added)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, status.Error, last.Level)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestStore(t)
	_, err := src.AddEntry(validEntry("https://gemini.google.com/app/ab12"))
	require.NoError(t, err)
	e2 := validEntry("https://gemini.google.com/app/cd34")
	e2.GemID = "coding-partner"
	e2.GemName = "Coding partner"
	e2.GemURL = "https://gemini.google.com/gem/coding-partner"
	_, err = src.AddEntry(e2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))

	dst := newTestStore(t)
	added, err := dst.Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	byURL := func(entries []Entry) map[string]Entry {
		m := map[string]Entry{}
		for _, e := range entries {
			m[e.URL] = e
		}
		return m
	}
	want := byURL(src.Load())
	got := byURL(dst.Load())
	require.Equal(t, len(want), len(got))
	for url, w := range want {
		g, ok := got[url]
		require.True(t, ok, "missing %s", url)
		assert.True(t, w.Timestamp.Equal(g.Timestamp))
		assert.Equal(t, w.Title, g.Title)
		assert.Equal(t, w.Model, g.Model)
		assert.Equal(t, w.GemName, g.GemName)
	}

	// Re-importing the same payload adds nothing.
	var buf2 bytes.Buffer
	require.NoError(t, src.Export(&buf2))
	added, err = dst.Import(&buf2)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}
