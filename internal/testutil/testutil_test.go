package testutil

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestConfig(t *testing.T) {
	tmpDir := t.TempDir()
	got := SetupTestConfig(t, tmpDir, "http://127.0.0.1:1/export")

	want := filepath.Join(tmpDir, "config.yml")
	assert.Equal(t, want, got)

	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Contains(t, string(content), "source_url: http://127.0.0.1:1/export")
	assert.Contains(t, string(content), "directory: "+filepath.Join(tmpDir, "cache"))

	info, err := os.Stat(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewDictionaryServer(t *testing.T) {
	server := NewDictionaryServer(t, http.StatusOK, SampleCSV)

	for i := 1; i <= 2; i++ {
		res, err := http.Get(server.ExportURL())
		require.NoError(t, err)
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		require.NoError(t, res.Body.Close())

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, SampleCSV, string(body))
		assert.Equal(t, i, server.Requests())
	}
}

func TestUnreachableURL(t *testing.T) {
	_, err := http.Get(UnreachableURL(t))
	assert.Error(t, err)
}
