package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE", "")
	os.Unsetenv("STORAGE")

	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Equal(t, StorageMySQL, c.Storage)
	assert.Equal(t, "approved", c.CommentPolicy)
	assert.Equal(t, 5*time.Second, c.ShutdownTimeout)
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("STORAGE", "")
	os.Unsetenv("STORAGE")
	t.Setenv("COMMENT_POLICY", "")
	os.Unsetenv("COMMENT_POLICY")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STORAGE=memory\nCOMMENT_POLICY=any\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, c.Storage)
	assert.Equal(t, "any", c.CommentPolicy)
}

func TestLoad_InvalidStorage(t *testing.T) {
	t.Setenv("STORAGE", "postgres")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "STORAGE")
}
