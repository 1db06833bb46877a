package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7420", cfg.Server.Listen)
	assert.Equal(t, 5*time.Second, cfg.Remote.DialTimeout)
	assert.Equal(t, 30*time.Second, cfg.Remote.RPCTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Remote.Peers)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("WHERE_STORE_DIR", "/var/lib/where/cas")
	t.Setenv("WHERE_SERVER_LISTEN", ":9000")
	t.Setenv("WHERE_REMOTE_PEERS", "alice=127.0.0.1:7001, bob=dns:///bob:7002")
	t.Setenv("WHERE_REMOTE_RPC_TIMEOUT", "2s")
	t.Setenv("WHERE_LOG_DEV", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/where/cas", cfg.Store.Dir)
	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, Peers{"alice": "127.0.0.1:7001", "bob": "dns:///bob:7002"}, cfg.Remote.Peers)
	assert.Equal(t, 2*time.Second, cfg.Remote.RPCTimeout)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_BadPeers(t *testing.T) {
	t.Setenv("WHERE_REMOTE_PEERS", "alice")
	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, Default(), cfg)
}

func TestPeers_SetAndString(t *testing.T) {
	var p Peers
	require.NoError(t, p.Set("b=host-b:1"))
	require.NoError(t, p.Set("a=host-a:1"))
	assert.Equal(t, "a=host-a:1,b=host-b:1", p.String())

	assert.Error(t, p.Set("c="))
	assert.Error(t, p.Decode("x=1,x=2"))
}
