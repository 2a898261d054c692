package contract_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sovieth88-oss/presalectl/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

// packOutputs ABI-encodes the return values of method.
func packOutputs(t *testing.T, method string, vals ...any) []byte {
	t.Helper()
	data, err := contract.ABI().Methods[method].Outputs.Pack(vals...)
	require.NoError(t, err)
	return data
}

// ---------------------------------------------------------------------------
// calldata
// ---------------------------------------------------------------------------

func TestPackSelectors(t *testing.T) {
	abi := contract.ABI()
	tests := []struct {
		method string
		data   []byte
	}{
		{contract.MethodGetPresaleStats, contract.PackGetPresaleStats()},
		{contract.MethodTokenPrice, contract.PackTokenPrice()},
		{contract.MethodMaxPurchase, contract.PackMaxPurchase()},
		{contract.MethodOwner, contract.PackOwner()},
		{contract.MethodBuyTokens, contract.PackBuyTokens()},
		{contract.MethodPausePresale, contract.PackPausePresale()},
		{contract.MethodUnpausePresale, contract.PackUnpausePresale()},
		{contract.MethodGetUserInfo, contract.PackGetUserInfo(alice)},
		{contract.MethodIsWhitelisted, contract.PackIsWhitelisted(alice)},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			require.GreaterOrEqual(t, len(tt.data), 4)
			assert.Equal(t, abi.Methods[tt.method].ID, tt.data[:4])
		})
	}
}

func TestABIMethodByID(t *testing.T) {
	m, err := contract.ABI().MethodById(contract.PackBuyTokens())
	require.NoError(t, err)
	assert.Equal(t, contract.MethodBuyTokens, m.Name)

	_, err = contract.ABI().MethodById([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.Error(t, err)
}

func TestPackWhitelistPreservesOrder(t *testing.T) {
	batch := []common.Address{bob, alice, bob}
	for _, method := range []string{contract.MethodAddToWhitelist, contract.MethodRemoveFromWhitelist} {
		var data []byte
		if method == contract.MethodAddToWhitelist {
			data = contract.PackAddToWhitelist(batch)
		} else {
			data = contract.PackRemoveFromWhitelist(batch)
		}
		vals, err := contract.ABI().Methods[method].Inputs.Unpack(data[4:])
		require.NoError(t, err)
		assert.Equal(t, batch, vals[0], method)
	}
}

func TestPackWhitelistNilBatch(t *testing.T) {
	data := contract.PackAddToWhitelist(nil)
	vals, err := contract.ABI().Methods[contract.MethodAddToWhitelist].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Empty(t, vals[0])
}

func TestPackWithdrawETH(t *testing.T) {
	data := contract.PackWithdrawETH(ether(3), bob)
	vals, err := contract.ABI().Methods[contract.MethodWithdrawETH].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, ether(3), vals[0])
	assert.Equal(t, bob, vals[1])
}

func TestPackUpdatePresaleConfig(t *testing.T) {
	data := contract.PackUpdatePresaleConfig(ether(10), ether(100), big.NewInt(1e15), nil)
	vals, err := contract.ABI().Methods[contract.MethodUpdatePresaleConfig].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Len(t, vals, 4)
	assert.Equal(t, ether(10), vals[0])
	assert.Equal(t, ether(100), vals[1])
	assert.Equal(t, big.NewInt(1e15), vals[2])
	assert.Equal(t, 0, vals[3].(*big.Int).Sign(), "nil packs as zero")
}

func TestPackUnknownMethodPanics(t *testing.T) {
	assert.Panics(t, func() { contract.Pack("selfdestruct") })
}

// ---------------------------------------------------------------------------
// results
// ---------------------------------------------------------------------------

func TestDecodePresaleStats(t *testing.T) {
	data := packOutputs(t, contract.MethodGetPresaleStats,
		ether(10), ether(100), ether(6), ether(1), big.NewInt(42), ether(5), true, false)

	s, err := contract.DecodePresaleStats(data)
	require.NoError(t, err)
	assert.Equal(t, ether(10), s.Softcap)
	assert.Equal(t, ether(100), s.Hardcap)
	assert.Equal(t, ether(6), s.TotalRaised)
	assert.Equal(t, ether(1), s.TotalWithdrawn)
	assert.Equal(t, int64(42), s.TotalParticipants.Int64())
	assert.Equal(t, ether(5), s.ContractBalance)
	assert.True(t, s.Paused)
	assert.False(t, s.SoftcapReached)
}

func TestDecodePresaleStatsRejectsFiveFieldShape(t *testing.T) {
	// totalRaised, totalWithdrawn, totalParticipants, contractBalance, paused
	short := make([]byte, 5*32)
	_, err := contract.DecodePresaleStats(short)
	assert.ErrorIs(t, err, contract.ErrDecode)
}

func TestDecodePresaleStatsEmpty(t *testing.T) {
	_, err := contract.DecodePresaleStats(nil)
	assert.ErrorIs(t, err, contract.ErrDecode)
}

func TestDecodeUserInfo(t *testing.T) {
	data := packOutputs(t, contract.MethodGetUserInfo, ether(2), big.NewInt(2000), true)
	u, err := contract.DecodeUserInfo(data)
	require.NoError(t, err)
	assert.Equal(t, ether(2), u.Contribution)
	assert.Equal(t, int64(2000), u.TokenAllocation.Int64())
	assert.True(t, u.Whitelisted)

	_, err = contract.DecodeUserInfo(data[:64])
	assert.ErrorIs(t, err, contract.ErrDecode)
}

func TestDecodeScalars(t *testing.T) {
	v, err := contract.DecodeUint(contract.MethodTokenPrice, packOutputs(t, contract.MethodTokenPrice, big.NewInt(1e15)))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1e15), v)

	b, err := contract.DecodeBool(contract.MethodPaused, packOutputs(t, contract.MethodPaused, true))
	require.NoError(t, err)
	assert.True(t, b)

	a, err := contract.DecodeAddress(contract.MethodOwner, packOutputs(t, contract.MethodOwner, alice))
	require.NoError(t, err)
	assert.Equal(t, alice, a)
}

func TestDecodeArityMismatch(t *testing.T) {
	stats := packOutputs(t, contract.MethodGetPresaleStats,
		ether(1), ether(2), ether(0), ether(0), big.NewInt(0), ether(0), false, false)

	_, err := contract.DecodeUint(contract.MethodGetPresaleStats, stats)
	assert.ErrorIs(t, err, contract.ErrDecode)

	_, err = contract.DecodeUint("nope", stats)
	assert.ErrorIs(t, err, contract.ErrDecode)
}

func TestDecodeTypeMismatch(t *testing.T) {
	// paused() returns bool; decoding it as uint256 must fail, not coerce.
	data := packOutputs(t, contract.MethodPaused, true)
	_, err := contract.DecodeUint(contract.MethodPaused, data)
	assert.ErrorIs(t, err, contract.ErrDecode)

	_, err = contract.DecodeBool(contract.MethodTokenPrice, packOutputs(t, contract.MethodTokenPrice, big.NewInt(1)))
	assert.ErrorIs(t, err, contract.ErrDecode)
}
