package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSGateway_WriteRead(t *testing.T) {
	gw := NewOSGateway(nil)
	path := filepath.Join(t.TempDir(), "users.json")

	require.NoError(t, gw.Write(path, []byte(`{"a":1}`)))

	content, err := gw.Read(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(content))
}

func TestOSGateway_WriteReplaces(t *testing.T) {
	gw := NewOSGateway(nil)
	path := filepath.Join(t.TempDir(), "users.json")

	require.NoError(t, gw.Write(path, []byte("first")))
	require.NoError(t, gw.Write(path, []byte("second")))

	content, err := gw.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestOSGateway_ReadMissing(t *testing.T) {
	gw := NewOSGateway(nil)

	_, err := gw.Read(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Path, "absent.json")
}

func TestOSGateway_Exists(t *testing.T) {
	gw := NewOSGateway(nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")

	assert.False(t, gw.Exists(path))
	require.NoError(t, gw.Write(path, []byte("{}")))
	assert.True(t, gw.Exists(path))
}

func TestOSGateway_Mkdir(t *testing.T) {
	gw := NewOSGateway(nil)
	dir := filepath.Join(t.TempDir(), "nested", "base")

	require.NoError(t, gw.Mkdir(dir))
	assert.True(t, gw.Exists(dir))

	// Succeeds when the directory already exists.
	require.NoError(t, gw.Mkdir(dir))
}
