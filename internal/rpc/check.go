package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sovieth88-oss/presalectl/internal/chain"
)

// ErrWrongChain marks an endpoint that serves a different chain.
var ErrWrongChain = errors.New("endpoint serves a different chain")

// checkTimeout bounds a single endpoint check.
const checkTimeout = 5 * time.Second

// Check queries every URL in parallel: it must answer eth_chainId with
// chainID and report a block number. Results keep the order of urls.
func Check(ctx context.Context, urls []string, chainID int64) []Endpoint {
	out := make([]Endpoint, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = check(ctx, u, chainID)
		}()
	}
	wg.Wait()
	return out
}

func check(ctx context.Context, url string, chainID int64) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	c := chain.NewEVMClient(url)
	ep := Endpoint{URL: url}
	id, err := c.ChainID(ctx)
	if err != nil {
		ep.Err = err
		return ep
	}
	if id.Int64() != chainID {
		ep.Err = fmt.Errorf("%w: got %s, want %d", ErrWrongChain, id, chainID)
		return ep
	}
	ep.Latency, ep.BlockNumber, ep.Err = c.Ping(ctx)
	return ep
}

// Select checks the urls and picks one with algo. A single URL is returned
// without probing.
func Select(ctx context.Context, urls []string, chainID int64, algo Algorithm, log *zap.Logger) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	endpoints := Check(ctx, urls, chainID)
	for _, e := range endpoints {
		if e.Healthy() {
			log.Debug("rpc check", zap.String("url", e.URL),
				zap.Duration("latency", e.Latency), zap.Uint64("block", e.BlockNumber))
		} else {
			log.Debug("rpc check failed", zap.String("url", e.URL), zap.Error(e.Err))
		}
	}

	winner, err := NewPicker(algo).Pick(endpoints)
	if err != nil {
		return "", fmt.Errorf("chain %d: %w", chainID, err)
	}
	log.Info("rpc selected", zap.String("url", winner.URL), zap.String("algorithm", string(algo)))
	return winner.URL, nil
}
