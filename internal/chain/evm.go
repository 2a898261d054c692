package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrReverted is returned when a mined transaction has status 0.
var ErrReverted = errors.New("transaction reverted")

// EVMClient is a minimal JSON-RPC client for EVM chains.
type EVMClient struct {
	url    string
	client *http.Client
	nextID atomic.Int64
}

// CallMsg describes an eth_call / eth_estimateGas request.
type CallMsg struct {
	From  common.Address // zero = omitted
	To    common.Address
	Data  []byte
	Value *big.Int
}

// Receipt holds the parts of a transaction receipt the client cares about.
type Receipt struct {
	TxHash      common.Hash
	Status      uint64 // 1 = success, 0 = reverted
	BlockNumber uint64
	GasUsed     uint64
}

// Log is one event log entry.
type Log struct {
	Address     common.Address `json:"address"`
	Topics      []common.Hash  `json:"topics"`
	Data        hexutil.Bytes  `json:"data"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	TxHash      common.Hash    `json:"transactionHash"`
	LogIndex    hexutil.Uint   `json:"logIndex"`
}

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string) *EVMClient {
	return &EVMClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// URL returns the endpoint the client talks to.
func (c *EVMClient) URL() string { return c.url }

// CallContract executes a read-only call against the latest block.
func (c *EVMClient) CallContract(ctx context.Context, msg CallMsg) ([]byte, error) {
	var out hexutil.Bytes
	if err := c.call(ctx, &out, "eth_call", toCallArg(msg), "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// EstimateGas estimates the gas needed to execute msg.
func (c *EVMClient) EstimateGas(ctx context.Context, msg CallMsg) (uint64, error) {
	var out hexutil.Uint64
	if err := c.call(ctx, &out, "eth_estimateGas", toCallArg(msg)); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// GasPrice returns the node's suggested gas price.
func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	var out hexutil.Big
	if err := c.call(ctx, &out, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	var out hexutil.Big
	if err := c.call(ctx, &out, "eth_chainId"); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// PendingNonce returns the account nonce including queued transactions.
func (c *EVMClient) PendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	var out hexutil.Uint64
	if err := c.call(ctx, &out, "eth_getTransactionCount", addr, "pending"); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// BalanceAt returns the native balance of addr in wei.
func (c *EVMClient) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	var out hexutil.Big
	if err := c.call(ctx, &out, "eth_getBalance", addr, "latest"); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// BlockNumber returns the latest block number.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	var out hexutil.Uint64
	if err := c.call(ctx, &out, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// SendRawTransaction broadcasts a signed, RLP-encoded transaction.
func (c *EVMClient) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var out common.Hash
	if err := c.call(ctx, &out, "eth_sendRawTransaction", hexutil.Bytes(raw)); err != nil {
		return common.Hash{}, err
	}
	return out, nil
}

// TransactionReceipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending.
func (c *EVMClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	var r *struct {
		Status      hexutil.Uint64 `json:"status"`
		BlockNumber hexutil.Uint64 `json:"blockNumber"`
		GasUsed     hexutil.Uint64 `json:"gasUsed"`
	}
	if err := c.call(ctx, &r, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil // still pending
	}
	return &Receipt{
		TxHash:      hash,
		Status:      uint64(r.Status),
		BlockNumber: uint64(r.BlockNumber),
		GasUsed:     uint64(r.GasUsed),
	}, nil
}

// WaitForReceipt polls every interval until the transaction is mined or ctx
// is done. A reverted transaction returns its receipt and ErrReverted.
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		receipt, err := c.TransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if receipt.Status == 0 {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
			}
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// FilterQuery selects logs for GetLogs.
type FilterQuery struct {
	Address   common.Address
	Topics    [][]common.Hash
	FromBlock uint64
	ToBlock   uint64 // 0 = latest
}

// GetLogs queries event logs matching q.
func (c *EVMClient) GetLogs(ctx context.Context, q FilterQuery) ([]Log, error) {
	filter := map[string]any{
		"address":   q.Address,
		"fromBlock": hexutil.Uint64(q.FromBlock),
		"toBlock":   "latest",
	}
	if q.ToBlock > 0 {
		filter["toBlock"] = hexutil.Uint64(q.ToBlock)
	}
	if len(q.Topics) > 0 {
		filter["topics"] = q.Topics
	}
	var logs []Log
	if err := c.call(ctx, &logs, "eth_getLogs", filter); err != nil {
		return nil, fmt.Errorf("fetching logs: %w", err)
	}
	return logs, nil
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	return time.Since(start), blockNum, err
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int64  `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func (c *EVMClient) call(ctx context.Context, result any, method string, params ...any) error {
	if params == nil {
		params = []any{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("parsing %s result: %w", method, err)
	}
	return nil
}

func toCallArg(msg CallMsg) map[string]any {
	arg := map[string]any{"to": msg.To}
	if msg.From != (common.Address{}) {
		arg["from"] = msg.From
	}
	if len(msg.Data) > 0 {
		arg["data"] = hexutil.Bytes(msg.Data)
	}
	if msg.Value != nil && msg.Value.Sign() > 0 {
		arg["value"] = (*hexutil.Big)(msg.Value)
	}
	return arg
}

// RevertReason extracts the human part of a revert error message, e.g.
// "execution reverted: Presale is paused" → "Presale is paused".
func RevertReason(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if idx := strings.Index(msg, "execution reverted:"); idx >= 0 {
		return strings.TrimSpace(msg[idx+len("execution reverted:"):])
	}
	if idx := strings.Index(msg, "reverted with reason string"); idx >= 0 {
		return strings.Trim(strings.TrimSpace(msg[idx+len("reverted with reason string"):]), "'\"")
	}
	return msg
}
