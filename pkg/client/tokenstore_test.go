package client

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contactbook", "session.yaml")
	fs := NewFileTokenStore(path)

	token, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, fs.Save("abc.def.ghi"))
	token, err = fs.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	require.NoError(t, fs.Clear())
	require.NoError(t, fs.Clear())
	token, err = fs.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestFileTokenStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), 0o600))
	_, err := NewFileTokenStore(path).Load()
	assert.Error(t, err)
}
