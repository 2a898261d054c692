package config

// Config holds all presalectl configuration. File values come from
// config.json; PRESALECTL_* environment variables override them.
type Config struct {
	DefaultChain    int64  `json:"default_chain"    envconfig:"CHAIN"`
	DefaultWallet   string `json:"default_wallet"   envconfig:"WALLET"`
	RPCAlgorithm    string `json:"rpc_algorithm"    envconfig:"RPC_ALGORITHM"`    // "fastest" | "round-robin" | "failover"
	RefreshInterval int    `json:"refresh_interval" envconfig:"REFRESH_INTERVAL"` // seconds
	ConfirmTimeout  int    `json:"confirm_timeout"  envconfig:"CONFIRM_TIMEOUT"`  // seconds

	// CustomRPCs are tried before the built-in endpoints of a chain.
	CustomRPCs map[int64][]string `json:"custom_rpcs" ignored:"true"`
	// Deployments override the built-in chain → presale address table.
	// An empty address marks the chain as not deployed.
	Deployments map[int64]string `json:"deployments" ignored:"true"`

	SyncSource string `json:"sync_source,omitempty" envconfig:"SYNC_SOURCE"`
	LastSynced string `json:"last_synced,omitempty" ignored:"true"`

	// RPCURL pins the endpoint for the selected chain. Environment only.
	RPCURL string `json:"-" envconfig:"RPC_URL"`

	configDir string
}
