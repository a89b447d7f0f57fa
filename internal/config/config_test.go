package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
environment: staging
node:
  listen_addr: "0.0.0.0:7100"
  peer_id: "peer-a"
peers:
  - id: peer-b
    addr: "127.0.0.1:7101"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "0.0.0.0:7100", cfg.Node.ListenAddr)
	assert.Equal(t, "peer-a", cfg.Node.PeerID)
	require.Len(t, cfg.Peers, 1)
	assert.Equal(t, "peer-b", cfg.Peers[0].ID)
	// defaults still apply to unset fields
	assert.Equal(t, int64(10*1024), cfg.Transport.MaxResponseBytes)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0:7000", cfg.Node.ListenAddr)
	assert.Equal(t, ".tss-node/shares", cfg.Node.StorageDir)
	assert.Equal(t, int64(10*1024), cfg.Transport.MaxResponseBytes)
	assert.Equal(t, 6, cfg.Auth.EmailHOTP.Digits)
	assert.Equal(t, 30, cfg.Auth.GATOTP.PeriodSeconds)
	assert.Equal(t, "127.0.0.1:9090", cfg.Metrics.Addr)
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Node.PeerID = "peer-a"
	cfg.Peers = []PeerConfig{{ID: "peer-b", Addr: "127.0.0.1:7200"}}

	path := filepath.Join(t.TempDir(), "roundtrip.yaml")
	require.NoError(t, SaveToFile(cfg, path))

	reloaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Node.PeerID, reloaded.Node.PeerID)
	assert.Equal(t, cfg.Peers, reloaded.Peers)
}

func TestValidateConfiguration(t *testing.T) {
	t.Run("valid config has no error-level issues", func(t *testing.T) {
		cfg := &Config{}
		setDefaults(cfg)
		cfg.Peers = []PeerConfig{{ID: "peer-b", Addr: "127.0.0.1:7200"}}

		issues := ValidateConfiguration(cfg)
		for _, issue := range issues {
			assert.NotEqual(t, "error", issue.Level)
		}
	})

	t.Run("missing listen addr is an error", func(t *testing.T) {
		cfg := &Config{Node: &NodeConfig{}}
		issues := ValidateConfiguration(cfg)

		found := false
		for _, issue := range issues {
			if issue.Field == "node.listen_addr" && issue.Level == "error" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("malformed peer entries are flagged", func(t *testing.T) {
		cfg := &Config{Node: &NodeConfig{ListenAddr: "0.0.0.0:7000"}, Peers: []PeerConfig{{ID: "peer-b"}}}
		issues := ValidateConfiguration(cfg)

		found := false
		for _, issue := range issues {
			if issue.Field == "peers[0]" {
				found = true
			}
		}
		assert.True(t, found)
	})
}

func TestSubstituteEnvVars(t *testing.T) {
	os.Setenv("TSS_NODE_TEST_VAR", "resolved")
	defer os.Unsetenv("TSS_NODE_TEST_VAR")

	assert.Equal(t, "resolved", SubstituteEnvVars("${TSS_NODE_TEST_VAR}"))
	assert.Equal(t, "fallback", SubstituteEnvVars("${TSS_NODE_UNSET_VAR:fallback}"))
}

func TestGetEnvironment(t *testing.T) {
	os.Unsetenv("TSS_NODE_ENV")
	os.Unsetenv("ENVIRONMENT")
	assert.Equal(t, "development", GetEnvironment())

	os.Setenv("TSS_NODE_ENV", "Production")
	defer os.Unsetenv("TSS_NODE_ENV")
	assert.Equal(t, "production", GetEnvironment())
	assert.True(t, IsProduction())
}
