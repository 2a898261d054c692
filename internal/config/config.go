// Package config loads and persists presalectl settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/sovieth88-oss/presalectl/internal/network"
)

const (
	defaultChain           = network.BSCTestnet
	defaultAlgorithm       = "fastest"
	defaultRefreshInterval = 10
	defaultConfirmTimeout  = 180

	configFile  = "config.json"
	walletsFile = "wallets.json"
	keyringDir  = "keyring"
)

// ErrInvalidAddress is returned when a deployment override is malformed.
var ErrInvalidAddress = errors.New("invalid contract address")

// Load reads config from dir (or creates defaults). dir defaults to
// ~/.presalectl. Environment overrides are applied on top of the file.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".presalectl")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[int64][]string)
	}
	if cfg.Deployments == nil {
		cfg.Deployments = make(map[int64]string)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	return cfg, nil
}

// LoadEnv loads KEY=value pairs from files (".env" when none are given)
// into the process environment. Missing files are skipped and variables
// already set are not overridden.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chainID int64, url string) error {
	if slices.Contains(c.CustomRPCs[chainID], url) {
		return fmt.Errorf("RPC %s already exists for chain %d", url, chainID)
	}
	c.CustomRPCs[chainID] = append(c.CustomRPCs[chainID], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chainID int64, url string) error {
	rpcs := c.CustomRPCs[chainID]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %d", url, chainID)
	}
	c.CustomRPCs[chainID] = slices.Delete(rpcs, idx, idx+1)
	if len(c.CustomRPCs[chainID]) == 0 {
		delete(c.CustomRPCs, chainID)
	}
	return nil
}

// RPCs returns the endpoints to try for a chain: the environment pin for
// the default chain, then custom RPCs, then builtin.
func (c *Config) RPCs(chainID int64, builtin []string) []string {
	var out []string
	if c.RPCURL != "" && chainID == c.DefaultChain {
		out = append(out, c.RPCURL)
	}
	for _, u := range slices.Concat(c.CustomRPCs[chainID], builtin) {
		if !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

// SetDeployment records the presale address for a chain. An empty address
// marks the chain as not deployed.
func (c *Config) SetDeployment(chainID int64, addr string) error {
	if addr != "" && !common.IsHexAddress(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	if addr != "" {
		addr = common.HexToAddress(addr).Hex()
	}
	c.Deployments[chainID] = addr
	return nil
}

// ClearDeployment drops the override for a chain.
func (c *Config) ClearDeployment(chainID int64) {
	delete(c.Deployments, chainID)
}

// Resolver returns the built-in deployment table with overrides applied.
func (c *Config) Resolver() network.Resolver {
	return network.Default().With(c.Deployments)
}

// RefreshEvery is the dashboard polling interval.
func (c *Config) RefreshEvery() time.Duration {
	if c.RefreshInterval <= 0 {
		return defaultRefreshInterval * time.Second
	}
	return time.Duration(c.RefreshInterval) * time.Second
}

// ConfirmWithin bounds how long a command waits for a transaction.
func (c *Config) ConfirmWithin() time.Duration {
	if c.ConfirmTimeout <= 0 {
		return defaultConfirmTimeout * time.Second
	}
	return time.Duration(c.ConfirmTimeout) * time.Second
}

// Dir returns the config directory.
func (c *Config) Dir() string { return c.configDir }

// WalletsPath is where the wallet list is stored.
func (c *Config) WalletsPath() string { return filepath.Join(c.configDir, walletsFile) }

// KeyringDir is the directory of the file keyring fallback.
func (c *Config) KeyringDir() string { return filepath.Join(c.configDir, keyringDir) }

func defaults(dir string) *Config {
	return &Config{
		DefaultChain:    defaultChain,
		RPCAlgorithm:    defaultAlgorithm,
		RefreshInterval: defaultRefreshInterval,
		ConfirmTimeout:  defaultConfirmTimeout,
		CustomRPCs:      make(map[int64][]string),
		Deployments:     make(map[int64]string),
		configDir:       dir,
	}
}
