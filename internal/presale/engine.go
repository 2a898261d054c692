// Package presale keeps a local read model of the presale contract fresh
// and tracks the writes submitted against it.
package presale

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sovieth88-oss/presalectl/internal/classify"
	"github.com/sovieth88-oss/presalectl/internal/contract"
	"github.com/sovieth88-oss/presalectl/internal/network"
)

// ErrNotReady is returned when no chain has been selected yet.
var ErrNotReady = errors.New("presale contract not resolved")

const subscriberBuffer = 16

// Chain reads from and writes to contracts on one chain.
type Chain interface {
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	Send(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) error
}

// Dialer returns the Chain collaborator for a chain ID.
type Dialer func(ctx context.Context, chainID int64) (Chain, error)

// Static returns a Dialer that hands out c for every chain.
func Static(c Chain) Dialer {
	return func(context.Context, int64) (Chain, error) { return c, nil }
}

// Engine is the presale session: chain, contract, connected account, the
// latest snapshots and the most recent write.
type Engine struct {
	dial     Dialer
	resolver network.Resolver
	log      *zap.Logger
	metrics  *metrics
	reg      prometheus.Registerer
	now      func() time.Time

	mu         sync.RWMutex
	state      State
	chainID    int64
	chainGen   uint64
	contract   common.Address
	client     Chain
	resolveErr error
	account    common.Address
	accountGen uint64
	snapshot   Snapshot
	user       UserSnapshot
	pending    *PendingAction
	err        error
	draft      ConfigDraft

	subsMu  sync.Mutex
	subs    map[uint64]chan Update
	nextSub uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithResolver replaces the built-in deployment table.
func WithResolver(r network.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// WithRegisterer registers the engine's Prometheus metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) { e.reg = reg }
}

// New creates an engine in the disconnected state.
func New(dial Dialer, opts ...Option) *Engine {
	e := &Engine{
		dial:     dial,
		resolver: network.Default(),
		log:      zap.NewNop(),
		now:      time.Now,
		state:    StateDisconnected,
		user:     zeroUser(common.Address{}),
		subs:     make(map[uint64]chan Update),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.metrics = newMetrics(e.reg)
	return e
}

// ---------------------------------------------------------------------------
// transitions
// ---------------------------------------------------------------------------

// SwitchChain selects chainID: it resolves the contract address and, on
// success, refreshes. An unknown chain moves the engine to
// StateUnsupported, clears the contract address and surfaces a
// network-unsupported error.
func (e *Engine) SwitchChain(ctx context.Context, chainID int64) error {
	e.mu.Lock()
	e.chainGen++
	gen := e.chainGen
	e.state = StateResolving
	e.chainID = chainID
	e.contract = common.Address{}
	e.client = nil
	e.resolveErr = nil
	e.snapshot = Snapshot{}
	e.user = zeroUser(e.account)
	e.draft = ConfigDraft{}
	e.mu.Unlock()
	e.publish(ReasonState)

	log := e.log.With(zap.Int64("chain_id", chainID))

	addr, err := e.resolver.Resolve(chainID)
	if err != nil {
		ce := classify.Classify(err)
		e.mu.Lock()
		if e.chainGen == gen {
			e.state = StateUnsupported
			e.resolveErr = ce
			e.err = ce
		}
		e.mu.Unlock()
		log.Warn("chain not supported", zap.Error(err))
		e.publish(ReasonState)
		return ce
	}

	client, err := e.dial(ctx, chainID)
	if err != nil {
		ce := classify.Classify(fmt.Errorf("connecting to chain %d: %w", chainID, err))
		e.mu.Lock()
		if e.chainGen == gen {
			e.state = StateDisconnected
			e.err = ce
		}
		e.mu.Unlock()
		log.Warn("dialing chain failed", zap.Error(err))
		e.publish(ReasonState)
		return ce
	}

	e.mu.Lock()
	if e.chainGen != gen {
		e.mu.Unlock()
		return nil
	}
	e.contract = addr
	e.client = client
	e.state = StateSynced
	e.err = nil
	e.mu.Unlock()
	log.Info("presale contract resolved", zap.String("contract", addr.Hex()))
	e.publish(ReasonState)

	return e.Refresh(ctx)
}

// Connect sets the connected wallet address. The user snapshot is reset
// and, when the contract is known, re-read.
func (e *Engine) Connect(ctx context.Context, addr common.Address) error {
	if addr == (common.Address{}) {
		return e.reject(invalid("address", "cannot connect the zero address"))
	}
	e.mu.Lock()
	e.account = addr
	e.accountGen++
	e.user = zeroUser(addr)
	synced := e.state == StateSynced
	e.mu.Unlock()
	e.publish(ReasonUser)

	if !synced {
		return nil
	}
	return e.refreshUser(ctx)
}

// Disconnect forgets the connected address and zeroes the user snapshot.
func (e *Engine) Disconnect() {
	e.mu.Lock()
	e.account = common.Address{}
	e.accountGen++
	e.user = zeroUser(common.Address{})
	e.mu.Unlock()
	e.publish(ReasonUser)
}

// Refresh re-reads the presale snapshot and, when a wallet is connected,
// the user snapshot. Results of a read that finishes after a chain switch
// or account change are discarded.
func (e *Engine) Refresh(ctx context.Context) error {
	client, to, gen, err := e.target()
	if err != nil {
		return err
	}
	e.metrics.refreshes.Inc()

	snap, err := e.readSnapshot(ctx, client, to)
	if err != nil {
		e.metrics.refreshFailures.Inc()
		ce := classify.Classify(err)
		e.log.Warn("refresh failed", zap.String("category", string(ce.Category)), zap.Error(err))
		return e.rejectOnChain(gen, ce)
	}

	e.mu.Lock()
	if e.chainGen != gen {
		e.mu.Unlock()
		return nil
	}
	e.snapshot = snap
	if !e.draft.Edited {
		e.draft = draftFrom(snap)
	}
	e.mu.Unlock()
	e.log.Debug("snapshot refreshed",
		zap.String("raised", snap.TotalRaised),
		zap.Float64("hardcap_progress", snap.HardcapProgress),
	)
	e.publish(ReasonSnapshot)

	return e.refreshUser(ctx)
}

// Run refreshes every interval until ctx is done. Failed refreshes are
// surfaced through Err and do not stop the loop.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if e.State() != StateSynced {
				continue
			}
			e.Refresh(ctx) //nolint:errcheck
		}
	}
}

// ---------------------------------------------------------------------------
// observation
// ---------------------------------------------------------------------------

// View returns a consistent copy of the engine's observable state.
func (e *Engine) View() View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v := View{
		State:    e.state,
		ChainID:  e.chainID,
		Contract: e.contract,
		Account:  e.account,
		Snapshot: e.snapshot,
		User:     e.user,
		Err:      e.err,
		Draft:    e.draft,
	}
	if e.pending != nil {
		p := *e.pending
		v.Pending = &p
	}
	return v
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// ContractAddress returns the resolved contract, or the zero address.
func (e *Engine) ContractAddress() common.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.contract
}

// Snapshot returns the latest presale snapshot.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// User returns the latest user snapshot.
func (e *Engine) User() UserSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.user
}

// Pending returns the most recent write, if any.
func (e *Engine) Pending() (PendingAction, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.pending == nil {
		return PendingAction{}, false
	}
	return *e.pending, true
}

// Busy reports whether a write is submitted or awaiting confirmation.
func (e *Engine) Busy() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pending != nil && e.pending.InFlight()
}

// Err returns the current error, if any.
func (e *Engine) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.err
}

// ClearErr drops the current error.
func (e *Engine) ClearErr() {
	e.mu.Lock()
	e.err = nil
	e.mu.Unlock()
	e.publish(ReasonError)
}

// Draft returns the config draft.
func (e *Engine) Draft() ConfigDraft {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.draft
}

// EditDraft applies fn to the config draft and marks it edited, which
// detaches it from later snapshots.
func (e *Engine) EditDraft(fn func(*ConfigDraft)) {
	e.mu.Lock()
	fn(&e.draft)
	e.draft.Edited = true
	e.mu.Unlock()
	e.publish(ReasonDraft)
}

// ResetDraft discards edits and reseeds the draft from the snapshot.
func (e *Engine) ResetDraft() {
	e.mu.Lock()
	if e.snapshot.Loaded() {
		e.draft = draftFrom(e.snapshot)
	} else {
		e.draft = ConfigDraft{}
	}
	e.mu.Unlock()
	e.publish(ReasonDraft)
}

// Subscribe returns a channel of updates and a function that ends the
// subscription. Updates are dropped for a subscriber whose buffer is full;
// View always has the latest state.
func (e *Engine) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, subscriberBuffer)
	e.subsMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.subsMu.Lock()
			delete(e.subs, id)
			close(ch)
			e.subsMu.Unlock()
		})
	}
}

// ---------------------------------------------------------------------------
// internals
// ---------------------------------------------------------------------------

func (e *Engine) publish(reason string) {
	u := Update{Reason: reason, View: e.View()}
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

// target returns what reads and writes go to, or why there is nothing.
func (e *Engine) target() (Chain, common.Address, uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	switch e.state {
	case StateSynced:
		return e.client, e.contract, e.chainGen, nil
	case StateUnsupported:
		return nil, common.Address{}, 0, e.resolveErr
	default:
		return nil, common.Address{}, 0, ErrNotReady
	}
}

// rejectOnChain is reject for a read taken at chain generation gen. A
// failure that lands after a chain switch is dropped and nil is returned.
func (e *Engine) rejectOnChain(gen uint64, err error) error {
	e.mu.Lock()
	if e.chainGen != gen {
		e.mu.Unlock()
		e.log.Debug("discarding stale read failure", zap.Error(err))
		return nil
	}
	e.err = err
	e.mu.Unlock()
	e.publish(ReasonError)
	return err
}

// reject records err as the current error and returns it.
func (e *Engine) reject(err error) error {
	e.mu.Lock()
	e.err = err
	e.mu.Unlock()
	e.publish(ReasonError)
	return err
}

func (e *Engine) readSnapshot(ctx context.Context, client Chain, to common.Address) (Snapshot, error) {
	raw, err := client.Call(ctx, to, contract.PackGetPresaleStats())
	if err != nil {
		return Snapshot{}, err
	}
	stats, err := contract.DecodePresaleStats(raw)
	if err != nil {
		return Snapshot{}, err
	}
	price, err := e.readUint(ctx, client, to, contract.MethodTokenPrice, contract.PackTokenPrice())
	if err != nil {
		return Snapshot{}, err
	}
	maxPurchase, err := e.readUint(ctx, client, to, contract.MethodMaxPurchase, contract.PackMaxPurchase())
	if err != nil {
		return Snapshot{}, err
	}
	return newSnapshot(stats, price, maxPurchase, e.now())
}

func (e *Engine) readUint(ctx context.Context, client Chain, to common.Address, method string, data []byte) (*big.Int, error) {
	raw, err := client.Call(ctx, to, data)
	if err != nil {
		return nil, err
	}
	return contract.DecodeUint(method, raw)
}

func (e *Engine) readUser(ctx context.Context, client Chain, to, addr common.Address) (UserSnapshot, error) {
	raw, err := client.Call(ctx, to, contract.PackGetUserInfo(addr))
	if err != nil {
		return UserSnapshot{}, err
	}
	info, err := contract.DecodeUserInfo(raw)
	if err != nil {
		return UserSnapshot{}, err
	}
	return newUser(addr, info), nil
}

// refreshUser re-reads the connected account's snapshot. It is a no-op
// without a connected account.
func (e *Engine) refreshUser(ctx context.Context) error {
	e.mu.RLock()
	account, accountGen := e.account, e.accountGen
	e.mu.RUnlock()
	if account == (common.Address{}) {
		return nil
	}
	client, to, chainGen, err := e.target()
	if err != nil {
		return err
	}

	u, err := e.readUser(ctx, client, to, account)
	if err != nil {
		ce := classify.Classify(err)
		e.log.Warn("user refresh failed", zap.String("account", account.Hex()), zap.Error(err))
		return e.rejectOnChain(chainGen, ce)
	}

	e.mu.Lock()
	if e.accountGen != accountGen || e.chainGen != chainGen {
		e.mu.Unlock()
		e.log.Debug("discarding stale user read", zap.String("account", account.Hex()))
		return nil
	}
	e.user = u
	e.mu.Unlock()
	e.publish(ReasonUser)
	return nil
}
