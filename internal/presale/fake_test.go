package presale_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/sovieth88-oss/presalectl/internal/contract"
	"github.com/sovieth88-oss/presalectl/internal/network"
	"github.com/sovieth88-oss/presalectl/internal/presale"
)

const (
	localChain = network.Localhost
	testChain  = network.BSCTestnet
)

var (
	presaleAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	ownerAddr   = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	alice       = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob         = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func ether(s string) *big.Int {
	v, ok := new(big.Rat).SetString(s)
	if !ok {
		panic("bad ether literal " + s)
	}
	v.Mul(v, new(big.Rat).SetInt(big.NewInt(1e18)))
	return new(big.Int).Quo(v.Num(), v.Denom())
}

// ---------------------------------------------------------------------------
// fake presale contract
// ---------------------------------------------------------------------------

type fakeUser struct {
	contribution *big.Int
	allocation   *big.Int
	whitelisted  bool
}

// fakeChain executes presale calls and writes in memory. Writes take effect
// when sent and are signed by from.
type fakeChain struct {
	mu sync.Mutex

	from         common.Address
	owner        common.Address
	softcap      *big.Int
	hardcap      *big.Int
	raised       *big.Int
	withdrawn    *big.Int
	balance      *big.Int
	price        *big.Int
	maxPurchase  *big.Int
	participants int64
	paused       bool
	users        map[common.Address]*fakeUser

	calls     map[string]int
	sends     []string
	lastBatch []common.Address
	nonce     int64

	// rawParticipants replaces participants in getPresaleStats when set.
	rawParticipants *big.Int

	callErr  map[string]error
	sendErr  error
	waitErr  error
	waitGate chan struct{}
	onCall   func(method string)
}

// newFakeChain is a presale with 5 of 10 ether raised against a softcap
// of 2, a price of 0.001 ether and a max purchase of 1 ether.
func newFakeChain() *fakeChain {
	return &fakeChain{
		from:         alice,
		owner:        ownerAddr,
		softcap:      ether("2"),
		hardcap:      ether("10"),
		raised:       ether("5"),
		withdrawn:    new(big.Int),
		balance:      ether("5"),
		price:        ether("0.001"),
		maxPurchase:  ether("1"),
		participants: 3,
		users:        map[common.Address]*fakeUser{},
		calls:        map[string]int{},
		callErr:      map[string]error{},
	}
}

func (f *fakeChain) whitelist(addrs ...common.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range addrs {
		f.user(a).whitelisted = true
	}
}

// user returns the entry for a, creating it. Callers hold f.mu.
func (f *fakeChain) user(a common.Address) *fakeUser {
	u, ok := f.users[a]
	if !ok {
		u = &fakeUser{contribution: new(big.Int), allocation: new(big.Int)}
		f.users[a] = u
	}
	return u
}

func (f *fakeChain) called(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeChain) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sends...)
}

func (f *fakeChain) set(fn func(f *fakeChain)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeChain) Call(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	m, err := contract.ABI().MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.calls[m.Name]++
	hook := f.onCall
	f.mu.Unlock()
	if hook != nil {
		hook(m.Name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.callErr[m.Name]; err != nil {
		return nil, err
	}
	if to != presaleAddr {
		return nil, nil
	}
	var out []any
	switch m.Name {
	case contract.MethodGetPresaleStats:
		participants := big.NewInt(f.participants)
		if f.rawParticipants != nil {
			participants = f.rawParticipants
		}
		out = []any{
			f.softcap, f.hardcap, f.raised, f.withdrawn,
			participants, f.balance, f.paused, f.raised.Cmp(f.softcap) >= 0,
		}
	case contract.MethodGetUserInfo:
		u := f.user(args[0].(common.Address))
		out = []any{u.contribution, u.allocation, u.whitelisted}
	case contract.MethodTokenPrice:
		out = []any{f.price}
	case contract.MethodMaxPurchase:
		out = []any{f.maxPurchase}
	case contract.MethodOwner:
		out = []any{f.owner}
	default:
		return nil, errors.New("fake: unhandled call " + m.Name)
	}
	return m.Outputs.Pack(out...)
}

func (f *fakeChain) Send(_ context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	m, err := contract.ABI().MethodById(data[:4])
	if err != nil {
		return common.Hash{}, err
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return common.Hash{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, m.Name)
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	if to != presaleAddr {
		return common.Hash{}, errors.New("fake: wrong contract")
	}
	if err := f.execute(m.Name, args, value); err != nil {
		return common.Hash{}, err
	}
	f.nonce++
	return common.BigToHash(big.NewInt(f.nonce)), nil
}

func (f *fakeChain) execute(method string, args []any, value *big.Int) error {
	ownerOnly := method != contract.MethodBuyTokens
	if ownerOnly && f.from != f.owner {
		return errors.New("execution reverted: Ownable: caller is not the owner")
	}
	switch method {
	case contract.MethodBuyTokens:
		u := f.user(f.from)
		switch {
		case f.paused:
			return errors.New("execution reverted: Presale is paused")
		case !u.whitelisted:
			return errors.New("execution reverted: Address not whitelisted")
		case value.Cmp(f.maxPurchase) > 0:
			return errors.New("execution reverted: Above maximum purchase")
		case new(big.Int).Add(f.raised, value).Cmp(f.hardcap) > 0:
			return errors.New("execution reverted: Would exceed hardcap")
		}
		if u.contribution.Sign() == 0 {
			f.participants++
		}
		tokens := new(big.Int).Mul(value, big.NewInt(1e18))
		tokens.Quo(tokens, f.price)
		u.contribution = new(big.Int).Add(u.contribution, value)
		u.allocation = new(big.Int).Add(u.allocation, tokens)
		f.raised = new(big.Int).Add(f.raised, value)
		f.balance = new(big.Int).Add(f.balance, value)
	case contract.MethodAddToWhitelist, contract.MethodRemoveFromWhitelist:
		batch := args[0].([]common.Address)
		f.lastBatch = batch
		for _, a := range batch {
			f.user(a).whitelisted = method == contract.MethodAddToWhitelist
		}
	case contract.MethodWithdrawETH:
		amount := args[0].(*big.Int)
		if amount.Cmp(f.balance) > 0 {
			return errors.New("execution reverted: Insufficient balance")
		}
		f.balance = new(big.Int).Sub(f.balance, amount)
		f.withdrawn = new(big.Int).Add(f.withdrawn, amount)
	case contract.MethodUpdatePresaleConfig:
		f.softcap = args[0].(*big.Int)
		f.hardcap = args[1].(*big.Int)
		f.price = args[2].(*big.Int)
		f.maxPurchase = args[3].(*big.Int)
	case contract.MethodPausePresale:
		f.paused = true
	case contract.MethodUnpausePresale:
		f.paused = false
	}
	return nil
}

func (f *fakeChain) WaitMined(ctx context.Context, _ common.Hash) error {
	f.mu.Lock()
	gate, err := f.waitGate, f.waitErr
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func testResolver() network.Resolver {
	return network.New(map[int64]string{
		localChain: presaleAddr.Hex(),
		testChain:  presaleAddr.Hex(),
	})
}

// synced returns an engine switched to the local chain on top of f.
func synced(t *testing.T, f *fakeChain, opts ...presale.Option) *presale.Engine {
	t.Helper()
	opts = append([]presale.Option{presale.WithResolver(testResolver())}, opts...)
	e := presale.New(presale.Static(f), opts...)
	require.NoError(t, e.SwitchChain(context.Background(), localChain))
	return e
}

// connected is synced with the fake's signer connected.
func connected(t *testing.T, f *fakeChain, opts ...presale.Option) *presale.Engine {
	t.Helper()
	e := synced(t, f, opts...)
	require.NoError(t, e.Connect(context.Background(), f.from))
	return e
}
