package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	_, ok, err := s.Get("chatHistory")
	require.NoError(t, err)
	require.False(t, ok, "missing key must read as absent")

	require.NoError(t, s.Set("chatHistory", []byte(`[{"url":"x"}]`)))

	v, ok, err := s.Get("chatHistory")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"url":"x"}]`, string(v))

	// Reopen and read back.
	s2, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok, err = s2.Get("chatHistory")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"url":"x"}]`, string(v))
}

func TestFileStoreCorruptReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	_, ok, err := s.Get("chatHistory")
	require.NoError(t, err)
	require.False(t, ok)

	// A corrupt store must still accept writes.
	require.NoError(t, s.Set("chatHistory", []byte(`[]`)))
	v, ok, err := s.Get("chatHistory")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[]`, string(v))
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get("chatHistory")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set("chatHistory", []byte(`[1,2]`)))
	require.NoError(t, s.Set("chatHistory", []byte(`[1,2,3]`)))

	v, ok, err := s.Get("chatHistory")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[1,2,3]`, string(v))
}
