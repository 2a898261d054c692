// Package network maps chain identifiers to the presale contract deployed
// on that chain.
package network

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnsupported is returned for chains with no known deployment.
var ErrUnsupported = errors.New("unsupported chain")

// Known chain IDs.
const (
	Mainnet    int64 = 1
	BSCTestnet int64 = 97
	Localhost  int64 = 31337 // hardhat / anvil
)

// deployments is the static chain → contract table. An empty address means
// the presale is not deployed on that chain yet.
var deployments = map[int64]string{
	Mainnet:    "",
	BSCTestnet: "0x4A352D535A417cbec0Ab529F7A438669702FBB8C",
	Localhost:  "0x5FbDB2315678afecb367f032d93F642f64180aa3",
}

// Resolver resolves contract addresses from a fixed table.
// The zero value resolves nothing.
type Resolver struct {
	table map[int64]string
}

// Default returns a resolver over the built-in deployment table.
func Default() Resolver {
	return New(deployments)
}

// New returns a resolver over a copy of table.
func New(table map[int64]string) Resolver {
	return Resolver{table: maps.Clone(table)}
}

// With returns a copy of r with overrides applied on top. An override with
// an empty address marks the chain as not deployed.
func (r Resolver) With(overrides map[int64]string) Resolver {
	t := maps.Clone(r.table)
	if t == nil {
		t = make(map[int64]string, len(overrides))
	}
	maps.Copy(t, overrides)
	return Resolver{table: t}
}

// Resolve returns the presale contract address for chainID.
func (r Resolver) Resolve(chainID int64) (common.Address, error) {
	addr, ok := r.table[chainID]
	if !ok || addr == "" {
		return common.Address{}, fmt.Errorf("%w: chain id %d", ErrUnsupported, chainID)
	}
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("%w: chain id %d has malformed address %q", ErrUnsupported, chainID, addr)
	}
	return common.HexToAddress(addr), nil
}

// Supported returns the chain IDs with a deployment, in ascending order.
func (r Resolver) Supported() []int64 {
	ids := make([]int64, 0, len(r.table))
	for id, addr := range r.table {
		if addr != "" {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
