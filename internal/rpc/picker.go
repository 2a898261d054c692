// Package rpc chooses which JSON-RPC endpoint of a chain to talk to.
package rpc

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no endpoint answered correctly.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Nodes more than this many blocks behind the best are skipped.
	staleBlockThreshold = 3
	// The fastest winner is reused for this long.
	cacheTTL = 5 * time.Minute
)

// ParseAlgorithm validates a configured algorithm name. Empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmRoundRobin, AlgorithmFailover:
		return a, nil
	default:
		return "", fmt.Errorf("unknown RPC algorithm %q (want fastest, round-robin or failover)", s)
	}
}

// Endpoint is one checked RPC URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error // why the endpoint is unusable, nil when healthy
}

// Healthy reports whether the check succeeded.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Picker selects an endpoint according to its algorithm. It is safe for
// concurrent use.
type Picker struct {
	algo Algorithm
	now  func() time.Time

	mu          sync.Mutex
	next        int
	cachedURL   string
	cacheExpiry time.Time
}

// NewPicker creates a Picker with the given algorithm.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo, now: time.Now}
}

// Pick selects an endpoint from endpoints, which keep their priority
// order.
func (p *Picker) Pick(endpoints []Endpoint) (Endpoint, error) {
	healthy := fresh(endpoints)
	if len(healthy) == 0 {
		return Endpoint{}, ErrNoHealthyRPC
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.algo {
	case AlgorithmRoundRobin:
		e := healthy[p.next%len(healthy)]
		p.next = (p.next + 1) % len(healthy)
		return e, nil
	case AlgorithmFailover:
		return healthy[0], nil
	default:
		return p.fastest(healthy), nil
	}
}

// fastest returns the lowest-latency endpoint, preferring the cached
// winner while it stays healthy. Callers hold p.mu.
func (p *Picker) fastest(healthy []Endpoint) Endpoint {
	if p.cachedURL != "" && p.now().Before(p.cacheExpiry) {
		for _, e := range healthy {
			if e.URL == p.cachedURL {
				return e
			}
		}
	}
	winner := healthy[0]
	for _, e := range healthy[1:] {
		if e.Latency < winner.Latency ||
			(e.Latency == winner.Latency && e.BlockNumber > winner.BlockNumber) {
			winner = e
		}
	}
	p.cachedURL = winner.URL
	p.cacheExpiry = p.now().Add(cacheTTL)
	return winner
}

// fresh keeps healthy endpoints that are not lagging behind the best block.
func fresh(endpoints []Endpoint) []Endpoint {
	var best uint64
	for _, e := range endpoints {
		if e.Healthy() && e.BlockNumber > best {
			best = e.BlockNumber
		}
	}
	var out []Endpoint
	for _, e := range endpoints {
		if !e.Healthy() || best-e.BlockNumber > staleBlockThreshold {
			continue
		}
		out = append(out, e)
	}
	return out
}
