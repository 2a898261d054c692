package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovieth88-oss/presalectl/internal/config"
	"github.com/sovieth88-oss/presalectl/internal/network"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, network.BSCTestnet, cfg.DefaultChain)
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.Equal(t, 10*time.Second, cfg.RefreshEvery())
	assert.Equal(t, 3*time.Minute, cfg.ConfirmWithin())
	assert.Empty(t, cfg.Deployments)
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.DefaultChain = network.Localhost
	cfg.DefaultWallet = "deployer"
	cfg.RPCAlgorithm = "round-robin"
	cfg.RefreshInterval = 3
	require.NoError(t, cfg.AddRPC(network.Localhost, "http://127.0.0.1:8546"))
	require.NoError(t, cfg.SetDeployment(network.Mainnet, "0x5fbdb2315678afecb367f032d93f642f64180aa3"))
	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, network.Localhost, reloaded.DefaultChain)
	assert.Equal(t, "deployer", reloaded.DefaultWallet)
	assert.Equal(t, "round-robin", reloaded.RPCAlgorithm)
	assert.Equal(t, 3*time.Second, reloaded.RefreshEvery())
	assert.Equal(t, []string{"http://127.0.0.1:8546"}, reloaded.CustomRPCs[network.Localhost])
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", reloaded.Deployments[network.Mainnet])
}

func TestConfigFileCreatedOnSave(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err, "config.json should be created on save")
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadFromNonExistentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir")
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir())
	assert.Equal(t, filepath.Join(dir, "wallets.json"), cfg.WalletsPath())
	assert.Equal(t, filepath.Join(dir, "keyring"), cfg.KeyringDir())
}

func TestLoadMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{"), 0o600))
	_, err := config.Load(dir)
	assert.ErrorContains(t, err, "parsing config")
}

// ---------------------------------------------------------------------------
// RPCs
// ---------------------------------------------------------------------------

func TestAddDuplicateRPCErrors(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	require.NoError(t, cfg.AddRPC(network.Mainnet, "https://rpc.one"))
	assert.Error(t, cfg.AddRPC(network.Mainnet, "https://rpc.one"))
}

func TestRemoveCustomRPC(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	cfg.AddRPC(network.Mainnet, "https://rpc1") //nolint:errcheck
	cfg.AddRPC(network.Mainnet, "https://rpc2") //nolint:errcheck

	require.NoError(t, cfg.RemoveRPC(network.Mainnet, "https://rpc1"))
	assert.Equal(t, []string{"https://rpc2"}, cfg.CustomRPCs[network.Mainnet])

	require.NoError(t, cfg.RemoveRPC(network.Mainnet, "https://rpc2"))
	assert.NotContains(t, cfg.CustomRPCs, network.Mainnet)

	assert.Error(t, cfg.RemoveRPC(network.Mainnet, "https://nonexistent"))
}

func TestRPCsOrder(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	cfg.DefaultChain = network.Localhost
	cfg.RPCURL = "http://pinned:8545"
	cfg.AddRPC(network.Localhost, "http://custom:8545") //nolint:errcheck

	got := cfg.RPCs(network.Localhost, []string{"http://127.0.0.1:8545", "http://custom:8545"})
	assert.Equal(t, []string{"http://pinned:8545", "http://custom:8545", "http://127.0.0.1:8545"}, got)

	// the pin only applies to the default chain
	assert.Equal(t, []string{"https://a"}, cfg.RPCs(network.Mainnet, []string{"https://a"}))
}

// ---------------------------------------------------------------------------
// deployments
// ---------------------------------------------------------------------------

func TestSetDeploymentInvalid(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	err := cfg.SetDeployment(network.Mainnet, "0x1234")
	assert.ErrorIs(t, err, config.ErrInvalidAddress)
	assert.Empty(t, cfg.Deployments)
}

func TestResolverAppliesOverrides(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	addr := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	_, err := cfg.Resolver().Resolve(network.Mainnet)
	require.ErrorIs(t, err, network.ErrUnsupported)

	require.NoError(t, cfg.SetDeployment(network.Mainnet, addr.Hex()))
	got, err := cfg.Resolver().Resolve(network.Mainnet)
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	// an empty override disables a built-in deployment
	require.NoError(t, cfg.SetDeployment(network.Localhost, ""))
	_, err = cfg.Resolver().Resolve(network.Localhost)
	assert.ErrorIs(t, err, network.ErrUnsupported)

	cfg.ClearDeployment(network.Localhost)
	_, err = cfg.Resolver().Resolve(network.Localhost)
	assert.NoError(t, err)
}
