package contract_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sovieth88-oss/presalectl/internal/chain"
	"github.com/sovieth88-oss/presalectl/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventLog builds a log for a presale event from its indexed topics and
// non-indexed values.
func eventLog(t *testing.T, name string, topics []common.Hash, vals ...any) chain.Log {
	t.Helper()
	ev := contract.ABI().Events[name]
	data, err := ev.Inputs.NonIndexed().Pack(vals...)
	require.NoError(t, err)
	return chain.Log{
		Address:     presaleAddr,
		Topics:      append([]common.Hash{ev.ID}, topics...),
		Data:        data,
		BlockNumber: 12,
		TxHash:      common.HexToHash("0xabc"),
		LogIndex:    3,
	}
}

func purchaseLog(t *testing.T, buyer common.Address, eth, tokens *big.Int) chain.Log {
	t.Helper()
	return eventLog(t, "TokensPurchased", []common.Hash{common.BytesToHash(buyer.Bytes())}, eth, tokens)
}

// logJSON renders l the way a node returns it from eth_getLogs.
func logJSON(l chain.Log) map[string]any {
	topics := make([]string, len(l.Topics))
	for i, tp := range l.Topics {
		topics[i] = tp.Hex()
	}
	return map[string]any{
		"address":         l.Address.Hex(),
		"topics":          topics,
		"data":            hexutil.Encode(l.Data),
		"blockNumber":     hexutil.EncodeUint64(uint64(l.BlockNumber)),
		"transactionHash": l.TxHash.Hex(),
		"logIndex":        hexutil.EncodeUint64(uint64(l.LogIndex)),
	}
}

func TestDecodeTokensPurchased(t *testing.T) {
	ev, err := contract.DecodeEvent(purchaseLog(t, alice, ether(2), ether(2000)))
	require.NoError(t, err)
	assert.Equal(t, "TokensPurchased", ev.Name)
	assert.Equal(t, uint64(12), ev.BlockNumber)
	assert.Equal(t, uint(3), ev.LogIndex)
	assert.Equal(t, alice, ev.Args["buyer"])
	assert.Equal(t, ether(2), ev.Args["ethAmount"])
	assert.Equal(t, ether(2000), ev.Args["tokenAmount"])
	assert.Equal(t, "buyer="+alice.Hex()+" ethAmount=2.0000 tokenAmount=2000.0000", ev.Summary())
}

func TestDecodeWhitelistAdded(t *testing.T) {
	batch := []common.Address{alice, bob}
	ev, err := contract.DecodeEvent(eventLog(t, "WhitelistAdded", nil, batch))
	require.NoError(t, err)
	assert.Equal(t, batch, ev.Args["addresses"])
	assert.Equal(t, "addresses=["+alice.Hex()+","+bob.Hex()+"]", ev.Summary())
}

func TestDecodeETHWithdrawn(t *testing.T) {
	l := eventLog(t, "ETHWithdrawn", []common.Hash{common.BytesToHash(bob.Bytes())}, ether(5))
	ev, err := contract.DecodeEvent(l)
	require.NoError(t, err)
	assert.Equal(t, ether(5), ev.Args["amount"])
	assert.Equal(t, bob, ev.Args["to"])
	assert.Equal(t, "amount=5.0000 to="+bob.Hex(), ev.Summary())
}

func TestDecodeConfigAndSoftcapEvents(t *testing.T) {
	ev, err := contract.DecodeEvent(eventLog(t, "PresaleConfigUpdated", nil,
		ether(10), ether(100), big.NewInt(1e15), ether(5)))
	require.NoError(t, err)
	assert.Equal(t, "softcap=10.0000 hardcap=100.0000 tokenPrice=0.0010 maxPurchase=5.0000", ev.Summary())

	ev, err = contract.DecodeEvent(eventLog(t, "SoftcapReached", nil, ether(10)))
	require.NoError(t, err)
	assert.Equal(t, "totalRaised=10.0000", ev.Summary())

	ev, err = contract.DecodeEvent(eventLog(t, "WhitelistRemoved", nil, []common.Address{bob}))
	require.NoError(t, err)
	assert.Equal(t, "WhitelistRemoved", ev.Name)
}

func TestDecodeEventUnknown(t *testing.T) {
	_, err := contract.DecodeEvent(chain.Log{Topics: []common.Hash{common.HexToHash("0xdead")}})
	assert.ErrorIs(t, err, contract.ErrUnknownEvent)

	_, err = contract.DecodeEvent(chain.Log{})
	assert.ErrorIs(t, err, contract.ErrUnknownEvent)
}

func TestDecodeEventBadData(t *testing.T) {
	l := purchaseLog(t, alice, ether(1), ether(1))
	l.Data = l.Data[:10]
	_, err := contract.DecodeEvent(l)
	assert.ErrorIs(t, err, contract.ErrDecode)
}
