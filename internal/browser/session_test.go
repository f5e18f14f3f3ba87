package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "browser", "control.txt")
	const url = "ws://127.0.0.1:9222/devtools/browser/abc"

	require.NoError(t, WriteControlFile(path, url))

	got, err := ReadControlFile(path)
	require.NoError(t, err)
	assert.Equal(t, url, got)
}

func TestReadControlFileMissing(t *testing.T) {
	_, err := ReadControlFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestReadControlFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control.txt")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	_, err := ReadControlFile(path)
	assert.Error(t, err)
}
