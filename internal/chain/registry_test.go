package chain_test

import (
	"testing"

	"github.com/sovieth88-oss/presalectl/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHasAllChains(t *testing.T) {
	registry := chain.NewRegistry()
	assert.Equal(t, 3, len(registry.All()))
}

func TestRegistryGetByName(t *testing.T) {
	registry := chain.NewRegistry()

	tests := []struct {
		name    string
		chainID int64
	}{
		{"ethereum", 1},
		{"bsc-testnet", 97},
		{"localhost", 31337},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := registry.GetByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name)
			assert.Equal(t, tt.chainID, c.ChainID)
		})
	}
}

func TestRegistryGetByNameCaseInsensitive(t *testing.T) {
	c, err := chain.NewRegistry().GetByName("BSC-Testnet")
	require.NoError(t, err)
	assert.Equal(t, int64(97), c.ChainID)
}

func TestRegistryGetUnknownChain(t *testing.T) {
	registry := chain.NewRegistry()
	_, err := registry.GetByName("unknownchain")
	assert.ErrorIs(t, err, chain.ErrChainNotFound)

	_, err = registry.GetByChainID(5)
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestRegistryLookup(t *testing.T) {
	registry := chain.NewRegistry()

	c, err := registry.Lookup("97")
	require.NoError(t, err)
	assert.Equal(t, "bsc-testnet", c.Name)

	c, err = registry.Lookup("localhost")
	require.NoError(t, err)
	assert.Equal(t, int64(31337), c.ChainID)

	for _, bad := range []string{"", "abc", "-1", "12x"} {
		_, err = registry.Lookup(bad)
		assert.ErrorIs(t, err, chain.ErrChainNotFound, "input %q", bad)
	}
}

func TestAllChainsHaveRPC(t *testing.T) {
	registry := chain.NewRegistry()
	for _, c := range registry.All() {
		t.Run(c.Name, func(t *testing.T) {
			assert.NotEmpty(t, c.RPCs, "chain %s has no RPCs", c.Name)
			assert.NotEmpty(t, c.NativeCurrency)
		})
	}
}

func TestExplorerURLs(t *testing.T) {
	registry := chain.NewRegistry()

	bsc, err := registry.GetByChainID(97)
	require.NoError(t, err)
	assert.Equal(t, "https://testnet.bscscan.com/tx/0xabc", bsc.TxURL("0xabc"))
	assert.Equal(t, "https://testnet.bscscan.com/address/0xdef", bsc.AddressURL("0xdef"))

	local, err := registry.GetByChainID(31337)
	require.NoError(t, err)
	assert.Empty(t, local.TxURL("0xabc"))
	assert.Empty(t, local.AddressURL("0xdef"))
}
