package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/sovieth88-oss/presalectl/internal/chain"
	"github.com/sovieth88-oss/presalectl/internal/wallet"
)

// ErrReadOnly is returned by Send when the client has no signing wallet.
var ErrReadOnly = errors.New("no signing wallet configured")

const (
	defaultPollInterval = 2 * time.Second
	fallbackGasLimit    = 300_000
)

// Client reads from and sends transactions to a contract on one chain.
type Client struct {
	rpc     *chain.EVMClient
	chainID *big.Int
	signer  *wallet.Signer
	from    common.Address
	poll    time.Duration
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithSigner enables Send. Reads are also issued from the signer's address.
func WithSigner(s *wallet.Signer) Option {
	return func(c *Client) {
		c.signer = s
		if s != nil {
			c.from = s.Address()
		}
	}
}

// WithFrom sets the caller address used for eth_call.
func WithFrom(addr common.Address) Option {
	return func(c *Client) { c.from = addr }
}

// WithPollInterval sets how often WaitMined polls for a receipt.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.poll = d
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a Client for chainID on top of rpc.
func NewClient(rpc *chain.EVMClient, chainID int64, opts ...Option) *Client {
	c := &Client{
		rpc:     rpc,
		chainID: big.NewInt(chainID),
		poll:    defaultPollInterval,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChainID returns the chain the client signs for.
func (c *Client) ChainID() int64 { return c.chainID.Int64() }

// From returns the address reads and writes are issued from.
func (c *Client) From() common.Address { return c.from }

// CanSign reports whether Send is available.
func (c *Client) CanSign() bool { return c.signer != nil }

// Call executes a read-only call.
func (c *Client) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := c.rpc.CallContract(ctx, chain.CallMsg{From: c.from, To: to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}
	return out, nil
}

// Send simulates, signs and broadcasts a transaction and returns its hash.
// A call that would revert is rejected before anything is signed.
func (c *Client) Send(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	if c.signer == nil {
		return common.Hash{}, ErrReadOnly
	}
	if value == nil {
		value = new(big.Int)
	}
	from := c.signer.Address()
	msg := chain.CallMsg{From: from, To: to, Data: data, Value: value}

	// Preflight so revert reasons surface before signing.
	if _, err := c.rpc.CallContract(ctx, msg); err != nil {
		c.log.Debug("preflight reverted", zap.Stringer("to", to), zap.String("reason", chain.RevertReason(err)))
		return common.Hash{}, fmt.Errorf("simulating transaction: %w", err)
	}

	gas, err := c.rpc.EstimateGas(ctx, msg)
	if err != nil {
		c.log.Warn("gas estimation failed, using fallback", zap.Error(err), zap.Uint64("gas", fallbackGasLimit))
		gas = fallbackGasLimit
	} else {
		gas += gas / 5
	}

	gasPrice, err := c.rpc.GasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := c.rpc.PendingNonce(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	raw, err := c.signer.SignTx(tx, c.chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := c.rpc.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	c.log.Info("transaction broadcast",
		zap.String("hash", hash.Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas),
	)
	return hash, nil
}

// WaitMined blocks until hash is mined. It returns an error wrapping
// chain.ErrReverted for a failed transaction.
func (c *Client) WaitMined(ctx context.Context, hash common.Hash) error {
	receipt, err := c.rpc.WaitForReceipt(ctx, hash, c.poll)
	if err != nil {
		return err
	}
	c.log.Debug("transaction mined", zap.String("hash", hash.Hex()), zap.Uint64("block", receipt.BlockNumber))
	return nil
}

// BalanceAt returns the native balance of addr.
func (c *Client) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	return c.rpc.BalanceAt(ctx, addr)
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.rpc.BlockNumber(ctx)
}

// Events returns the decoded presale events emitted by contract since
// fromBlock. Logs that do not match the ABI are skipped.
func (c *Client) Events(ctx context.Context, contract common.Address, fromBlock uint64) ([]Event, error) {
	logs, err := c.rpc.GetLogs(ctx, chain.FilterQuery{Address: contract, FromBlock: fromBlock})
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(logs))
	for _, l := range logs {
		ev, err := DecodeEvent(l)
		if err != nil {
			c.log.Debug("skipping log", zap.String("tx", l.TxHash.Hex()), zap.Error(err))
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}
