// Package sync pulls presale deployment addresses from a manifest and
// records them as config overrides.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sovieth88-oss/presalectl/internal/chain"
	"github.com/sovieth88-oss/presalectl/internal/config"
)

// ErrNoSource is returned by Run when no manifest source is configured.
var ErrNoSource = errors.New("no sync source configured; run: presalectl network set-source <url>")

const maxManifestSize = 1 << 20

// Manifest is a deployments.json document, typically written by the
// contract deploy script. Keys are chain names or decimal chain IDs.
type Manifest struct {
	Deployments map[string]string `json:"deployments"`
}

// Result reports what a Run changed.
type Result struct {
	Updated map[int64]string // chain ID → checksummed address
	Skipped []string         // manifest keys that could not be applied
}

// aliases maps deploy-tool network names onto registry names.
var aliases = map[string]string{
	"mainnet": "ethereum",
	"hardhat": "localhost",
	"anvil":   "localhost",
}

// Syncer applies a remote or local manifest to the config.
type Syncer struct {
	cfg    *config.Config
	reg    *chain.Registry
	client *http.Client
	log    *zap.Logger
}

// New creates a Syncer.
func New(cfg *config.Config, reg *chain.Registry, log *zap.Logger) *Syncer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{
		cfg:    cfg,
		reg:    reg,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}
}

// Run fetches the manifest from the configured source, records every
// usable entry as a deployment override and saves the config.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	if s.cfg.SyncSource == "" {
		return Result{}, ErrNoSource
	}

	m, err := s.fetch(ctx, s.cfg.SyncSource)
	if err != nil {
		return Result{}, fmt.Errorf("fetching manifest: %w", err)
	}

	res := Result{Updated: make(map[int64]string)}
	for key, addr := range m.Deployments {
		id, err := s.chainID(key)
		if err != nil {
			s.log.Warn("skipping manifest entry", zap.String("chain", key), zap.Error(err))
			res.Skipped = append(res.Skipped, key)
			continue
		}
		if err := s.cfg.SetDeployment(id, addr); err != nil {
			s.log.Warn("skipping manifest entry", zap.String("chain", key), zap.Error(err))
			res.Skipped = append(res.Skipped, key)
			continue
		}
		res.Updated[id] = s.cfg.Deployments[id]
	}
	slices.Sort(res.Skipped)

	s.cfg.LastSynced = time.Now().UTC().Format(time.RFC3339)
	if err := s.cfg.Save(); err != nil {
		return res, fmt.Errorf("saving config: %w", err)
	}
	s.log.Info("deployments synced", zap.Int("updated", len(res.Updated)), zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

// SetSource sets the manifest location: an http(s) URL or a local file.
func (s *Syncer) SetSource(source string) error {
	if u, err := url.Parse(source); err == nil && u.Scheme != "" {
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("unsupported manifest scheme %q", u.Scheme)
		}
	} else if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("manifest source: %w", err)
	}
	s.cfg.SyncSource = source
	return s.cfg.Save()
}

// Watch runs Run on a ticker until ctx is cancelled. Only the first run's
// error is returned; later failures are logged.
func (s *Syncer) Watch(ctx context.Context, interval time.Duration) error {
	if _, err := s.Run(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				s.log.Warn("deployment sync failed", zap.Error(err))
			}
		}
	}
}

func (s *Syncer) chainID(key string) (int64, error) {
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	if c, err := s.reg.Lookup(key); err == nil {
		return c.ChainID, nil
	}
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", chain.ErrChainNotFound, key)
	}
	return id, nil
}

func (s *Syncer) fetch(ctx context.Context, source string) (*Manifest, error) {
	var body []byte
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		if body, err = io.ReadAll(io.LimitReader(resp.Body, maxManifestSize)); err != nil {
			return nil, err
		}
	} else {
		if body, err = os.ReadFile(source); err != nil {
			return nil, err
		}
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
