package presale

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/sovieth88-oss/presalectl/internal/codec"
	"github.com/sovieth88-oss/presalectl/internal/contract"
)

// State is where the engine is in its chain lifecycle.
type State string

const (
	// StateDisconnected: no chain selected yet.
	StateDisconnected State = "disconnected"
	// StateResolving: a chain switch is looking up the contract address.
	StateResolving State = "resolving"
	// StateUnsupported: the current chain has no deployment; reads are off.
	StateUnsupported State = "unsupported"
	// StateSynced: the contract address is known and reads are live.
	StateSynced State = "synced"
)

// Action identifies which write a PendingAction tracks.
type Action string

const (
	ActionPurchase        Action = "purchase"
	ActionWithdraw        Action = "withdraw"
	ActionWhitelistAdd    Action = "whitelist-add"
	ActionWhitelistRemove Action = "whitelist-remove"
	ActionPause           Action = "pause"
	ActionUnpause         Action = "unpause"
	ActionConfigUpdate    Action = "config-update"
)

// TxState is the lifecycle of a submitted write.
type TxState string

const (
	TxSubmitted            TxState = "submitted"
	TxAwaitingConfirmation TxState = "awaiting-confirmation"
	TxConfirmed            TxState = "confirmed"
	TxFailed               TxState = "failed"
)

// PendingAction is the most recently submitted write.
type PendingAction struct {
	ID          uuid.UUID
	Action      Action
	State       TxState
	Hash        common.Hash // zero until the transaction is broadcast
	Err         error       // set when State is TxFailed
	SubmittedAt time.Time
	SettledAt   time.Time
}

// InFlight reports whether the action has not settled yet.
func (p PendingAction) InFlight() bool {
	return p.State == TxSubmitted || p.State == TxAwaitingConfirmation
}

// SnapshotWei holds the exact on-chain amounts behind a Snapshot.
type SnapshotWei struct {
	Softcap         *big.Int
	Hardcap         *big.Int
	TotalRaised     *big.Int
	TotalWithdrawn  *big.Int
	ContractBalance *big.Int
	TokenPrice      *big.Int
	MaxPurchase     *big.Int
}

// Snapshot is a point-in-time read of the presale. Amounts are in ether
// with four decimals, truncated toward zero.
type Snapshot struct {
	Softcap         string
	Hardcap         string
	TotalRaised     string
	TotalWithdrawn  string
	ContractBalance string
	TokenPrice      string
	MaxPurchase     string
	Participants    uint64
	Paused          bool
	SoftcapReached  bool

	// HardcapProgress is raised/hardcap and SoftcapProgress raised/softcap,
	// both as percentages in [0,100].
	HardcapProgress float64
	SoftcapProgress float64

	Wei    SnapshotWei
	ReadAt time.Time
}

// Loaded reports whether the snapshot came from a successful read.
func (s Snapshot) Loaded() bool { return !s.ReadAt.IsZero() }

// newSnapshot builds the display snapshot. A participant count that does
// not fit in uint64 is reported as contract.ErrDecode.
func newSnapshot(stats contract.PresaleStats, price, maxPurchase *big.Int, at time.Time) (Snapshot, error) {
	if stats.TotalParticipants == nil || !stats.TotalParticipants.IsUint64() {
		return Snapshot{}, fmt.Errorf("%w: participant count %v out of range", contract.ErrDecode, stats.TotalParticipants)
	}
	return Snapshot{
		Softcap:         codec.FormatEther(stats.Softcap),
		Hardcap:         codec.FormatEther(stats.Hardcap),
		TotalRaised:     codec.FormatEther(stats.TotalRaised),
		TotalWithdrawn:  codec.FormatEther(stats.TotalWithdrawn),
		ContractBalance: codec.FormatEther(stats.ContractBalance),
		TokenPrice:      codec.FormatEther(price),
		MaxPurchase:     codec.FormatEther(maxPurchase),
		Participants:    stats.TotalParticipants.Uint64(),
		Paused:          stats.Paused,
		SoftcapReached:  stats.SoftcapReached,
		HardcapProgress: codec.ProgressWei(stats.TotalRaised, stats.Hardcap),
		SoftcapProgress: codec.ProgressWei(stats.TotalRaised, stats.Softcap),
		Wei: SnapshotWei{
			Softcap:         stats.Softcap,
			Hardcap:         stats.Hardcap,
			TotalRaised:     stats.TotalRaised,
			TotalWithdrawn:  stats.TotalWithdrawn,
			ContractBalance: stats.ContractBalance,
			TokenPrice:      price,
			MaxPurchase:     maxPurchase,
		},
		ReadAt: at,
	}, nil
}

// UserSnapshot is the presale state of one address.
type UserSnapshot struct {
	Address         common.Address
	Contribution    string
	TokenAllocation string
	Whitelisted     bool
	ContributionWei *big.Int
	AllocationWei   *big.Int
}

// zeroUser is the user snapshot before any read for addr succeeded.
func zeroUser(addr common.Address) UserSnapshot {
	return UserSnapshot{
		Address:         addr,
		Contribution:    codec.FormatEther(nil),
		TokenAllocation: codec.FormatEther(nil),
		ContributionWei: new(big.Int),
		AllocationWei:   new(big.Int),
	}
}

func newUser(addr common.Address, info contract.UserInfo) UserSnapshot {
	return UserSnapshot{
		Address:         addr,
		Contribution:    codec.FormatEther(info.Contribution),
		TokenAllocation: codec.FormatEther(info.TokenAllocation),
		Whitelisted:     info.Whitelisted,
		ContributionWei: info.Contribution,
		AllocationWei:   info.TokenAllocation,
	}
}

// ConfigDraft holds proposed presale parameters as ether decimal strings.
// While Edited is false it follows the latest snapshot.
type ConfigDraft struct {
	Softcap     string
	Hardcap     string
	TokenPrice  string
	MaxPurchase string
	Edited      bool
}

func draftFrom(s Snapshot) ConfigDraft {
	return ConfigDraft{
		Softcap:     codec.FormatExact(s.Wei.Softcap),
		Hardcap:     codec.FormatExact(s.Wei.Hardcap),
		TokenPrice:  codec.FormatExact(s.Wei.TokenPrice),
		MaxPurchase: codec.FormatExact(s.Wei.MaxPurchase),
	}
}

// View is an immutable copy of everything the engine exposes.
type View struct {
	State    State
	ChainID  int64
	Contract common.Address
	Account  common.Address // zero when no wallet is connected
	Snapshot Snapshot
	User     UserSnapshot
	Pending  *PendingAction
	Err      error
	Draft    ConfigDraft
}

// Connected reports whether a wallet address is connected.
func (v View) Connected() bool { return v.Account != (common.Address{}) }

// Busy reports whether a write is in flight.
func (v View) Busy() bool { return v.Pending != nil && v.Pending.InFlight() }

// Update is delivered to subscribers after every observable change.
type Update struct {
	Reason string
	View
}

// Update reasons.
const (
	ReasonState    = "state"
	ReasonSnapshot = "snapshot"
	ReasonUser     = "user"
	ReasonPending  = "pending"
	ReasonError    = "error"
	ReasonDraft    = "draft"
)
