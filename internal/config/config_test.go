package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
blockchain:
  chainId: 11155111
  contractAddress: "0x0000000000000000000000000000000000000001"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, int64(11155111), cfg.Blockchain.ChainID)
	assert.Equal(t, uint64(120), cfg.Blockchain.GasMultiplierPercent)
	assert.Equal(t, 2*time.Second, cfg.Mint.PacingInterval())
	assert.Equal(t, 100, cfg.Gallery.MaxConsecutiveFailures)
	assert.Equal(t, 1000, cfg.Gallery.MaxAttempts)
	assert.Equal(t, uint64(1), cfg.Gallery.StartID)
	assert.Equal(t, RecordIDStrategyLedger, cfg.Mint.RecordIDStrategy)
	assert.Equal(t, StorageBackendPinata, cfg.Storage.Backend)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
storage:
  backend: memory
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("RPC_ENDPOINTS", "http://a:8545, http://b:8545")
	t.Setenv("RECORD_ID_STRATEGY", "uuid")
	t.Setenv("CHAIN_ID", "5")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"http://a:8545", "http://b:8545"}, cfg.Blockchain.RPCEndpoints)
	assert.Equal(t, RecordIDStrategyUUID, cfg.Mint.RecordIDStrategy)
	assert.Equal(t, int64(5), cfg.Blockchain.ChainID)
	assert.Equal(t, StorageBackendMemory, cfg.Storage.Backend)
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	cases := map[string]string{
		"storage":  "storage:\n  backend: s3\n",
		"gcs":      "storage:\n  backend: gcs\n",
		"history":  "history:\n  source: graph\n",
		"strategy": "mint:\n  recordIdStrategy: random\n",
		"gas":      "blockchain:\n  gasMultiplierPercent: 90\n",
		"burst":    "mint:\n  pacingBurst: 3\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigAcceptsTokenBucketPacing(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "mint:\n  pacingBurst: 1\n  pacingIntervalMs: 500\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Mint.PacingBurst)
	assert.Equal(t, 500*time.Millisecond, cfg.Mint.PacingInterval())
}
