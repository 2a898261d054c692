package network_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sovieth88-oss/presalectl/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnownChains(t *testing.T) {
	r := network.Default()

	addr, err := r.Resolve(network.BSCTestnet)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x4A352D535A417cbec0Ab529F7A438669702FBB8C"), addr)

	addr, err = r.Resolve(network.Localhost)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), addr)
}

func TestResolveDeterministic(t *testing.T) {
	r := network.Default()
	first, err := r.Resolve(network.Localhost)
	require.NoError(t, err)
	for range 5 {
		again, err := r.Resolve(network.Localhost)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolveUnknownChain(t *testing.T) {
	for _, id := range []int64{0, 5, 56, 11155111, -1} {
		_, err := network.Default().Resolve(id)
		assert.ErrorIs(t, err, network.ErrUnsupported, "chain %d", id)
	}
}

func TestResolveEmptyAddressIsUnsupported(t *testing.T) {
	_, err := network.Default().Resolve(network.Mainnet)
	assert.ErrorIs(t, err, network.ErrUnsupported)
}

func TestResolveMalformedAddress(t *testing.T) {
	r := network.New(map[int64]string{7: "0xnothex"})
	_, err := r.Resolve(7)
	assert.ErrorIs(t, err, network.ErrUnsupported)
}

func TestWithOverrides(t *testing.T) {
	base := network.Default()
	over := base.With(map[int64]string{
		network.Mainnet:    "0x1111111111111111111111111111111111111111",
		network.BSCTestnet: "",
	})

	addr, err := over.Resolve(network.Mainnet)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), addr)

	_, err = over.Resolve(network.BSCTestnet)
	assert.ErrorIs(t, err, network.ErrUnsupported)

	// The base table is untouched.
	_, err = base.Resolve(network.Mainnet)
	assert.ErrorIs(t, err, network.ErrUnsupported)
	_, err = base.Resolve(network.BSCTestnet)
	assert.NoError(t, err)
}

func TestSupported(t *testing.T) {
	assert.Equal(t, []int64{network.BSCTestnet, network.Localhost}, network.Default().Supported())
	assert.Empty(t, network.Resolver{}.Supported())
}

func TestZeroResolver(t *testing.T) {
	var r network.Resolver
	_, err := r.Resolve(network.Localhost)
	assert.ErrorIs(t, err, network.ErrUnsupported)

	r = r.With(map[int64]string{9: "0x2222222222222222222222222222222222222222"})
	_, err = r.Resolve(9)
	assert.NoError(t, err)
}
