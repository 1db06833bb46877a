package casconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightningrodlabs/where/storage"
	"github.com/lightningrodlabs/where/storage/casregistry"
	_ "github.com/lightningrodlabs/where/storage/localfs"
	_ "github.com/lightningrodlabs/where/storage/memory"
)

func TestParse_Validation(t *testing.T) {
	_, err := Parse([]byte(`{"backends":[]}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"backends":[{"name":"memory"},{"name":"memory"}]}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"write_policy":"some","backends":[{"name":"memory"}]}`))
	assert.Error(t, err)

	cfg, err := Parse([]byte(`{"backends":[{"name":"memory"},{"name":"memory","id":"second"}]}`))
	require.NoError(t, err)
	assert.Len(t, cfg.Backends, 2)
}

func TestOpen_ReplicatingWritesAll(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	cfg := Config{
		WritePolicy: "all",
		Backends: []BackendConfig{
			{Name: "localfs", ID: "a", Config: map[string]string{"localfs-dir": dirA}},
			{Name: "localfs", ID: "b", Config: map[string]string{"localfs-dir": dirB}},
		},
	}
	cas, closeFn, err := cfg.Open(casregistry.UsageDaemon)
	require.NoError(t, err)
	defer closeFn()

	_, ok := cas.(storage.ReplicatingCAS)
	require.True(t, ok)

	id, err := cas.Put([]byte("mirrored"))
	require.NoError(t, err)

	for _, dir := range []string{dirA, dirB} {
		s := id.String()
		_, err := os.Stat(filepath.Join(dir, s[:2], s))
		assert.NoError(t, err)
	}
}

func TestOpen_FirstPolicyLayers(t *testing.T) {
	cfg := Config{Backends: []BackendConfig{
		{Name: "memory", ID: "front"},
		{Name: "localfs", Config: map[string]string{"localfs-dir": t.TempDir()}},
	}}
	cas, _, err := cfg.Open(casregistry.UsageDaemon)
	require.NoError(t, err)
	_, ok := cas.(storage.MultiCAS)
	assert.True(t, ok)
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := Config{Backends: []BackendConfig{{Name: "nope"}}}
	_, _, err := cfg.Open(casregistry.UsageDaemon)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cas.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"backends":[{"name":"memory"}]}`), 0o600))
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Backends[0].Name)
}
