package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *AirdropServerConfig {
	return &AirdropServerConfig{
		Port:              DefaultPort,
		ChainID:           ChainId_EthereumAnvil,
		VerifyingContract: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		MerkleFile:        "output.json",
		TokenType:         TokenType_Memory,
		TokenAddress:      "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
		PersistenceType:   PersistenceType_Memory,
		RateLimit:         DefaultRateLimit,
		RateBurst:         DefaultRateBurst,
	}
}

func Test_AirdropServerConfigValidate(t *testing.T) {
	t.Run("valid config fills chain name", func(t *testing.T) {
		cfg := validConfig()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, ChainName_EthereumAnvil, cfg.ChainName)
	})

	tests := []struct {
		name    string
		mutate  func(c *AirdropServerConfig)
		wantErr string
	}{
		{"port too low", func(c *AirdropServerConfig) { c.Port = 0 }, "port"},
		{"port too high", func(c *AirdropServerConfig) { c.Port = 70000 }, "port"},
		{"unsupported chain", func(c *AirdropServerConfig) { c.ChainID = 5 }, "chainId"},
		{"missing verifying contract", func(c *AirdropServerConfig) { c.VerifyingContract = "" }, "verifyingContract"},
		{"bad verifying contract", func(c *AirdropServerConfig) { c.VerifyingContract = "0x1234" }, "verifyingContract"},
		{"missing merkle file", func(c *AirdropServerConfig) { c.MerkleFile = "" }, "merkleFile"},
		{"missing token address", func(c *AirdropServerConfig) { c.TokenAddress = "" }, "token.address"},
		{"unknown token type", func(c *AirdropServerConfig) { c.TokenType = "erc721" }, "token.type"},
		{"bad reserve funding", func(c *AirdropServerConfig) { c.ReserveFunding = "-5" }, "token.reserveFunding"},
		{"erc20 without rpc", func(c *AirdropServerConfig) {
			c.TokenType = TokenType_ERC20
			c.ReservePrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
		}, "token.rpcUrl"},
		{"erc20 without key", func(c *AirdropServerConfig) {
			c.TokenType = TokenType_ERC20
			c.RpcUrl = "http://localhost:8545"
		}, "token.reservePrivateKey"},
		{"erc20 short key", func(c *AirdropServerConfig) {
			c.TokenType = TokenType_ERC20
			c.RpcUrl = "http://localhost:8545"
			c.ReservePrivateKey = "0xabcd"
		}, "token.reservePrivateKey"},
		{"badger without path", func(c *AirdropServerConfig) { c.PersistenceType = PersistenceType_Badger }, "persistence.dataPath"},
		{"redis without address", func(c *AirdropServerConfig) { c.PersistenceType = PersistenceType_Redis }, "persistence.redisAddress"},
		{"unknown persistence", func(c *AirdropServerConfig) { c.PersistenceType = "postgres" }, "persistence.type"},
		{"zero rate limit", func(c *AirdropServerConfig) { c.RateLimit = 0 }, "rateLimit"},
		{"zero burst", func(c *AirdropServerConfig) { c.RateBurst = 0 }, "rateBurst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid erc20 and badger", func(t *testing.T) {
		cfg := validConfig()
		cfg.TokenType = TokenType_ERC20
		cfg.RpcUrl = "http://localhost:8545"
		cfg.ReservePrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
		cfg.PersistenceType = PersistenceType_Badger
		cfg.DataPath = t.TempDir()
		require.NoError(t, cfg.Validate())
	})

	t.Run("all problems reported together", func(t *testing.T) {
		cfg := validConfig()
		cfg.Port = 0
		cfg.MerkleFile = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "port")
		assert.Contains(t, err.Error(), "merkleFile")
	})

	t.Run("private key never printed", func(t *testing.T) {
		cfg := validConfig()
		cfg.TokenType = TokenType_ERC20
		cfg.RpcUrl = "http://localhost:8545"
		cfg.ReservePrivateKey = "0xdeadbeef"
		err := cfg.Validate()
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "deadbeef")
	})
}

func Test_ChainTables(t *testing.T) {
	for _, id := range GetSupportedChainIDs() {
		name, ok := ChainIdToName[id]
		require.True(t, ok)
		assert.Equal(t, id, ChainNameToId[name])
	}
	assert.Equal(t, int64(31337), ChainId_EthereumAnvil.BigInt().Int64())
	assert.Contains(t, GetSupportedChainIDsString(), "31337")
}
