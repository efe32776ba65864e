package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/founders-mint/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"rpc_list": ["https://api.devnet.solana.com"],
		"program_id": "C4FiFWofsjxRGXrcF5i1RnxPHc7QDcSf9XzhFgLQyioh",
		"master_mint": "So11111111111111111111111111111111111111112",
		"wallet_file": "wallet.key"
	}`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultCollectionName, cfg.CollectionName)
	assert.Equal(t, config.DefaultSymbol, cfg.Symbol)
	assert.Equal(t, config.DefaultRoyaltyBps, cfg.RoyaltyBps)
	assert.Equal(t, config.DefaultRetries, cfg.Retries)
	assert.Equal(t, config.DefaultLogFile, cfg.LogFile)
}

func TestLoadConfigRejectsMissingFields(t *testing.T) {
	for name, content := range map[string]string{
		"no rpc list": `{
			"program_id": "C4FiFWofsjxRGXrcF5i1RnxPHc7QDcSf9XzhFgLQyioh",
			"master_mint": "So11111111111111111111111111111111111111112"
		}`,
		"no program id": `{
			"rpc_list": ["https://api.devnet.solana.com"],
			"master_mint": "So11111111111111111111111111111111111111112"
		}`,
		"no master mint": `{
			"rpc_list": ["https://api.devnet.solana.com"],
			"program_id": "C4FiFWofsjxRGXrcF5i1RnxPHc7QDcSf9XzhFgLQyioh"
		}`,
		"bad rpc scheme": `{
			"rpc_list": ["ftp://api.devnet.solana.com"],
			"program_id": "C4FiFWofsjxRGXrcF5i1RnxPHc7QDcSf9XzhFgLQyioh",
			"master_mint": "So11111111111111111111111111111111111111112"
		}`,
		"royalty above 100 percent": `{
			"rpc_list": ["https://api.devnet.solana.com"],
			"program_id": "C4FiFWofsjxRGXrcF5i1RnxPHc7QDcSf9XzhFgLQyioh",
			"master_mint": "So11111111111111111111111111111111111111112",
			"royalty_bps": 10001
		}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestEnvironmentOverridesRPCList(t *testing.T) {
	path := writeConfig(t, `{
		"rpc_list": ["https://api.devnet.solana.com"],
		"program_id": "C4FiFWofsjxRGXrcF5i1RnxPHc7QDcSf9XzhFgLQyioh",
		"master_mint": "So11111111111111111111111111111111111111112"
	}`)

	t.Setenv("FOUNDERS_MINT_RPC_LIST", "https://one.example.com, https://two.example.com")
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://one.example.com", "https://two.example.com"}, cfg.RPCList)
}
