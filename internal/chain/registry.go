package chain

import (
	"errors"
	"strconv"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Chain holds all metadata for a single chain.
type Chain struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency string   `json:"native_currency"`
	RPCs           []string `json:"rpcs"`
	Explorer       string   `json:"explorer,omitempty"`
}

// TxURL returns the explorer link for a transaction, or "" if the chain
// has no explorer.
func (c *Chain) TxURL(hash string) string {
	if c.Explorer == "" {
		return ""
	}
	return strings.TrimRight(c.Explorer, "/") + "/tx/" + hash
}

// AddressURL returns the explorer link for an address.
func (c *Chain) AddressURL(addr string) string {
	if c.Explorer == "" {
		return ""
	}
	return strings.TrimRight(c.Explorer, "/") + "/address/" + addr
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry creates and returns the registry of chains the presale knows.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
	}
	return r
}

// All returns every chain in the registry.
func (r *Registry) All() []Chain {
	return r.chains
}

// GetByName finds a chain by its slug name (e.g. "bsc-testnet").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// Lookup accepts either a slug or a decimal chain ID.
func (r *Registry) Lookup(nameOrID string) (*Chain, error) {
	if c, err := r.GetByName(nameOrID); err == nil {
		return c, nil
	}
	id, err := strconv.ParseInt(nameOrID, 10, 64)
	if err != nil {
		return nil, ErrChainNotFound
	}
	return r.GetByChainID(id)
}

func allChains() []Chain {
	return []Chain{
		{
			Name:           "ethereum",
			DisplayName:    "Ethereum",
			ChainID:        1,
			NativeCurrency: "ETH",
			RPCs: []string{
				"https://eth.llamarpc.com",
				"https://rpc.ankr.com/eth",
				"https://ethereum.publicnode.com",
			},
			Explorer: "https://etherscan.io",
		},
		{
			Name:           "bsc-testnet",
			DisplayName:    "BNB Smart Chain Testnet",
			ChainID:        97,
			NativeCurrency: "BNB",
			RPCs: []string{
				"https://data-seed-prebsc-1-s1.binance.org:8545",
				"https://bsc-testnet.publicnode.com",
			},
			Explorer: "https://testnet.bscscan.com",
		},
		{
			Name:           "localhost",
			DisplayName:    "Localhost",
			ChainID:        31337,
			NativeCurrency: "ETH",
			RPCs:           []string{"http://127.0.0.1:8545"},
		},
	}
}
