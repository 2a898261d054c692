package config

import "time"

// Timeouts used by commands that talk to a node.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint benchmark before dialing
	ReadTimeout      = 30 * time.Second // one-shot reads (stats, user, owner)
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "PRESALECTL"
